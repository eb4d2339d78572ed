package repositories

import (
	"context"

	"github.com/permalearn/assessment-service/internal/models"
)

// AttemptRepository interface for test attempt operations.
type AttemptRepository interface {
	// Basic operations. Attempts are immutable after creation except for
	// the completion timestamp.
	Create(ctx context.Context, attempt *models.TestAttempt) error
	GetByID(ctx context.Context, id uint) (*models.TestAttempt, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.TestAttempt, error)

	// Query operations
	List(ctx context.Context, filters AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetByStudent(ctx context.Context, studentID uint, filters AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetByStudentAndTest(ctx context.Context, studentID, testID uint) ([]*models.TestAttempt, error)
	GetBestAttempt(ctx context.Context, studentID, testID uint) (*models.TestAttempt, error)

	// LockForSubmission serializes attempt creation for one
	// (student, test) pair. At READ COMMITTED a transaction alone does
	// not stop two racing submissions from both counting under the cap
	// and both inserting; callers must take this lock inside
	// Repository.WithTransaction before the count. Released at commit
	// or rollback.
	LockForSubmission(ctx context.Context, studentID, testID uint) error

	// CountByStudentAndTest is the attempt-cap read. Only safe against
	// concurrent submissions after LockForSubmission in the same
	// transaction.
	CountByStudentAndTest(ctx context.Context, studentID, testID uint) (int, error)

	// Statistics
	GetStats(ctx context.Context, testID uint) (*AttemptStats, error)
}
