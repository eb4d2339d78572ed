package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/permalearn/assessment-service/internal/cache"
	"github.com/permalearn/assessment-service/internal/events"
	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
	"github.com/permalearn/assessment-service/internal/utils"
)

// moduleChainTTL bounds how stale the cached module ordering can get
// after a course edit in the content service.
const moduleChainTTL = 10 * time.Minute

type progressService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *utils.Validator
}

func NewProgressService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) ProgressService {
	return &progressService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "assessment-service", Component: "progress"}),
		validator: validator,
	}
}

// ===== GATE CHECKS =====

func (s *progressService) IsModuleCompleted(ctx context.Context, studentID, moduleID uint) (bool, error) {
	progress, err := s.repo.Progress().GetByStudentAndModule(ctx, studentID, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, NewStorageError("load progress", err)
	}
	return progress.IsCompleted(), nil
}

// CanAccessModule applies the sequential gate: the first module of a
// course is always open, every other module opens only once its
// immediate predecessor is completed. Completing module N says nothing
// about N+2.
func (s *progressService) CanAccessModule(ctx context.Context, studentID, moduleID uint) (bool, error) {
	module, err := s.repo.Course().GetModuleByID(ctx, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrModuleNotFound
		}
		return false, NewStorageError("load course module", err)
	}

	modules, err := s.orderedModules(ctx, module.CourseID)
	if err != nil {
		return false, err
	}

	idx := -1
	for i, m := range modules {
		if m.ID == moduleID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, ErrModuleNotInCourse
	}
	if idx == 0 {
		return true, nil
	}

	return s.IsModuleCompleted(ctx, studentID, modules[idx-1].ID)
}

// ===== MUTATIONS =====

// CompleteModule marks a module done for a student. Idempotent: repeat
// calls keep the first completion's timestamp and emit no further
// events.
func (s *progressService) CompleteModule(ctx context.Context, req *CompleteModuleRequest) (err error) {
	done := s.ops.TrackOperation(ctx, "complete_module", req.StudentID, req.ModuleID, "module")
	defer func() { done(err) }()

	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	module, err := s.moduleInCourse(ctx, req.ModuleID, req.CourseID)
	if err != nil {
		return err
	}

	accessible, err := s.CanAccessModule(ctx, req.StudentID, req.ModuleID)
	if err != nil {
		return err
	}
	if !accessible {
		return ErrModuleLocked
	}

	alreadyCompleted, err := s.IsModuleCompleted(ctx, req.StudentID, req.ModuleID)
	if err != nil {
		return err
	}
	if alreadyCompleted {
		s.logger.Info("Module already completed, skipping",
			"student_id", req.StudentID, "module_id", req.ModuleID)
		return nil
	}

	completedAt := time.Now()
	if err := s.repo.Progress().MarkCompleted(ctx,
		req.StudentID, req.ModuleID, req.CourseID, req.Score, completedAt); err != nil {
		return NewStorageError("mark module completed", err)
	}

	s.logger.Info("Module completed",
		"student_id", req.StudentID,
		"course_id", req.CourseID,
		"module_id", req.ModuleID,
		"score", req.Score)

	event := events.NewLearningEvent(events.EventModuleCompleted, events.ModuleCompletedEvent{
		StudentID:   req.StudentID,
		CourseID:    req.CourseID,
		ModuleID:    req.ModuleID,
		ModuleTitle: module.Title,
		Score:       req.Score,
		CompletedAt: completedAt,
	})
	if err := s.publisher.PublishLearningEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish module completed event",
			"module_id", req.ModuleID, "error", err)
	}

	s.maybePublishCourseCompleted(ctx, req.StudentID, req.CourseID, completedAt)

	return nil
}

// TouchModule records a content view: creates the progress row as
// in_progress on first access, accumulates time spent afterwards.
// Completed modules stay completed.
func (s *progressService) TouchModule(ctx context.Context, req *TouchModuleRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.moduleInCourse(ctx, req.ModuleID, req.CourseID); err != nil {
		return err
	}

	accessible, err := s.CanAccessModule(ctx, req.StudentID, req.ModuleID)
	if err != nil {
		return err
	}
	if !accessible {
		return ErrModuleLocked
	}

	now := time.Now()
	progress := &models.StudentProgress{
		StudentID:        req.StudentID,
		ModuleID:         req.ModuleID,
		CourseID:         req.CourseID,
		Status:           models.ProgressInProgress,
		Position:         req.Position,
		TimeSpentSeconds: req.TimeSpentSeconds,
		LastAccessedAt:   now,
	}

	existing, err := s.repo.Progress().GetByStudentAndModule(ctx, req.StudentID, req.ModuleID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return NewStorageError("load progress", err)
	}
	if existing != nil {
		progress.TimeSpentSeconds = existing.TimeSpentSeconds + req.TimeSpentSeconds
		if existing.IsCompleted() {
			progress.Status = models.ProgressCompleted
			progress.Score = existing.Score
			progress.CompletedAt = existing.CompletedAt
		}
	}

	if err := s.repo.Progress().Upsert(ctx, progress); err != nil {
		return NewStorageError("upsert progress", err)
	}

	event := events.NewLearningEvent(events.EventModuleAccessed, events.ModuleAccessedEvent{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		ModuleID:   req.ModuleID,
		Position:   req.Position,
		AccessedAt: now,
	})
	if err := s.publisher.PublishLearningEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish module accessed event",
			"module_id", req.ModuleID, "error", err)
	}

	return nil
}

// ===== COURSE VIEW =====

func (s *progressService) GetCourseProgress(ctx context.Context, studentID, courseID uint) (*CourseProgressResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, NewStorageError("load course", err)
	}

	modules, err := s.orderedModules(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Progress().GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, NewStorageError("load course progress", err)
	}
	byModule := make(map[uint]*models.StudentProgress, len(rows))
	for _, row := range rows {
		byModule[row.ModuleID] = row
	}

	resp := &CourseProgressResponse{
		CourseID: courseID,
		Modules:  make([]ModuleProgressEntry, 0, len(modules)),
	}

	prevCompleted := true // first module is always open
	for i, module := range modules {
		entry := ModuleProgressEntry{
			ModuleID:   module.ID,
			Title:      module.Title,
			Order:      module.Order,
			Status:     models.ProgressNotStarted,
			Accessible: i == 0 || prevCompleted,
		}

		row := byModule[module.ID]
		if row != nil {
			entry.Status = row.Status
			entry.Score = row.Score
			entry.CompletedAt = row.CompletedAt
		}

		if entry.Accessible && entry.Status != models.ProgressCompleted && resp.CurrentModuleID == nil {
			id := module.ID
			resp.CurrentModuleID = &id
		}

		prevCompleted = row != nil && row.IsCompleted()
		resp.Modules = append(resp.Modules, entry)
	}

	stats, err := s.repo.Progress().GetCourseStats(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("Failed to load course stats",
			"course_id", courseID, "student_id", studentID, "error", err)
	} else {
		resp.Stats = stats
	}

	return resp, nil
}

// ===== HELPERS =====

func moduleChainCacheKey(courseID uint) string {
	return fmt.Sprintf("course:%d:modules", courseID)
}

// orderedModules returns the course's module chain sorted by order. The
// chain is read on every gate check, so it is cached.
func (s *progressService) orderedModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error) {
	key := moduleChainCacheKey(courseID)

	var cached []*models.CourseModule
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Module chain cache read failed", "course_id", courseID, "error", err)
	}

	modules, err := s.repo.Course().GetCourseModules(ctx, courseID)
	if err != nil {
		return nil, NewStorageError("load course modules", err)
	}

	if err := s.cache.Set(ctx, key, modules, moduleChainTTL); err != nil {
		s.logger.Warn("Module chain cache write failed", "course_id", courseID, "error", err)
	}

	return modules, nil
}

func (s *progressService) moduleInCourse(ctx context.Context, moduleID, courseID uint) (*models.CourseModule, error) {
	module, err := s.repo.Course().GetModuleByID(ctx, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, NewStorageError("load course module", err)
	}
	if module.CourseID != courseID {
		return nil, ErrModuleNotInCourse
	}
	return module, nil
}

func (s *progressService) maybePublishCourseCompleted(ctx context.Context, studentID, courseID uint, completedAt time.Time) {
	modules, err := s.orderedModules(ctx, courseID)
	if err != nil {
		s.logger.Error("Failed to check course completion", "course_id", courseID, "error", err)
		return
	}
	completed, err := s.repo.Progress().CountCompletedInCourse(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("Failed to count completed modules", "course_id", courseID, "error", err)
		return
	}
	if len(modules) == 0 || completed < len(modules) {
		return
	}

	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		s.logger.Error("Failed to load course for completion event", "course_id", courseID, "error", err)
		return
	}

	stats, err := s.repo.Progress().GetCourseStats(ctx, studentID, courseID)
	avgScore := 0.0
	if err == nil {
		avgScore = stats.AverageScore
	}

	event := events.NewLearningEvent(events.EventCourseCompleted, events.CourseCompletedEvent{
		StudentID:    studentID,
		CourseID:     courseID,
		CourseTitle:  course.Title,
		ModuleCount:  len(modules),
		AverageScore: avgScore,
		CompletedAt:  completedAt,
	})
	if err := s.publisher.PublishLearningEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish course completed event",
			"course_id", courseID, "error", err)
	}
}
