package repositories

import (
	"context"
	"time"

	"github.com/permalearn/assessment-service/internal/models"
)

// ProgressRepository interface for per-(student, module) progress rows.
// Rows are created on first access and only ever updated afterwards.
type ProgressRepository interface {
	GetByStudentAndModule(ctx context.Context, studentID, moduleID uint) (*models.StudentProgress, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) ([]*models.StudentProgress, error)
	List(ctx context.Context, studentID uint, filters ProgressFilters) ([]*models.StudentProgress, int64, error)

	// Upsert creates the row if absent, otherwise updates the mutable
	// fields. Keyed on the (student_id, module_id) unique index so
	// concurrent first accesses collapse into one row.
	Upsert(ctx context.Context, progress *models.StudentProgress) error

	// MarkCompleted transitions the row to completed with the given score
	// and timestamp. Rows already completed are left untouched, which is
	// what keeps CompleteModule idempotent.
	MarkCompleted(ctx context.Context, studentID, moduleID, courseID uint, score int, completedAt time.Time) error

	// Access tracking
	TouchAccess(ctx context.Context, studentID, moduleID uint, accessedAt time.Time) error

	// Statistics
	GetCourseStats(ctx context.Context, studentID, courseID uint) (*CourseProgressStats, error)
	CountCompletedInCourse(ctx context.Context, studentID, courseID uint) (int, error)
}
