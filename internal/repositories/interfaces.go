package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/permalearn/assessment-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type AttemptFilters struct {
	TestID    *uint      `json:"test_id"`
	StudentID *uint      `json:"student_id"`
	Passed    *bool      `json:"passed"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "started_at", "score"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type ProgressFilters struct {
	CourseID *uint                  `json:"course_id"`
	Status   *models.ProgressStatus `json:"status"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type AttemptStats struct {
	TotalAttempts  int     `json:"total_attempts"`
	PassedAttempts int     `json:"passed_attempts"`
	AverageScore   float64 `json:"average_score"`
	BestScore      int     `json:"best_score"`
	PassRate       float64 `json:"pass_rate"`
	UniqueStudents int     `json:"unique_students"`
}

type CourseProgressStats struct {
	TotalModules     int     `json:"total_modules"`
	CompletedModules int     `json:"completed_modules"`
	InProgress       int     `json:"in_progress"`
	AverageScore     float64 `json:"average_score"`
	TimeSpentSeconds int     `json:"time_spent_seconds"`
}

// ===== AGGREGATE REPOSITORY =====

// Repository aggregates all per-entity repositories. WithTransaction runs
// fn against a transaction-scoped Repository; returning an error rolls
// everything back.
type Repository interface {
	Course() CourseRepository
	ModuleTest() ModuleTestRepository
	Attempt() AttemptRepository
	Progress() ProgressRepository
	User() UserRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err is the storage layer's record-miss.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
