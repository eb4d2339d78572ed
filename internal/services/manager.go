package services

import (
	"log/slog"

	"github.com/permalearn/assessment-service/internal/cache"
	"github.com/permalearn/assessment-service/internal/events"
	"github.com/permalearn/assessment-service/internal/repositories"
	"github.com/permalearn/assessment-service/internal/utils"
)

type serviceManager struct {
	grading  GradingService
	attempt  AttemptService
	progress ProgressService
	export   ExportService
}

// NewServiceManager wires the service graph in dependency order: grading
// and progress first, then the attempt service that composes both.
func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) ServiceManager {
	grading := NewGradingService(repo, logger)
	progress := NewProgressService(repo, cacheService, publisher, logger, validator)
	attempt := NewAttemptService(repo, grading, progress, publisher, logger, validator)
	export := NewExportService(repo, logger)

	return &serviceManager{
		grading:  grading,
		attempt:  attempt,
		progress: progress,
		export:   export,
	}
}

func (m *serviceManager) Grading() GradingService   { return m.grading }
func (m *serviceManager) Attempt() AttemptService   { return m.attempt }
func (m *serviceManager) Progress() ProgressService { return m.progress }
func (m *serviceManager) Export() ExportService     { return m.export }
