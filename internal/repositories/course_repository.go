package repositories

import (
	"context"

	"github.com/permalearn/assessment-service/internal/models"
)

// CourseRepository interface for course/module read operations. Course
// authoring lives in the content service; this service only needs the
// ordered module chain for gating.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByIDWithModules(ctx context.Context, id uint) (*models.Course, error)

	// Module operations
	GetModuleByID(ctx context.Context, moduleID uint) (*models.CourseModule, error)
	GetCourseModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error) // ordered by "order"
	GetPrecedingModule(ctx context.Context, module *models.CourseModule) (*models.CourseModule, error)

	// Validation helpers
	ExistsByID(ctx context.Context, id uint) (bool, error)
	ModuleBelongsToCourse(ctx context.Context, moduleID, courseID uint) (bool, error)
}
