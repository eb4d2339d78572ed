package services

import (
	"context"
	"time"

	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
)

// ===== REQUEST / RESPONSE TYPES =====

// SubmitTestRequest is one scored submission of answers for a module
// test. Answers maps question ID -> submitted answer.
type SubmitTestRequest struct {
	TestID           uint            `json:"test_id" validate:"required"`
	StudentID        uint            `json:"student_id" validate:"required"`
	Answers          map[uint]string `json:"answers" validate:"required,min=1"`
	TimeSpentSeconds *int            `json:"time_spent_seconds" validate:"omitempty,min=0"`
	StartedAt        *time.Time      `json:"started_at"`
}

// ScoreResult is the outcome of grading one submission.
type ScoreResult struct {
	Score   int                     `json:"score"`
	Passed  bool                    `json:"passed"`
	Results []models.QuestionResult `json:"results"`

	EarnedPoints int `json:"earned_points"`
	TotalPoints  int `json:"total_points"`
}

// SubmitTestResponse is what the learner gets back after a submission.
type SubmitTestResponse struct {
	AttemptID         uint                    `json:"attempt_id"`
	Score             int                     `json:"score"`
	Passed            bool                    `json:"passed"`
	Results           []models.QuestionResult `json:"results"`
	AttemptsRemaining int                     `json:"attempts_remaining"`
	ModuleCompleted   bool                    `json:"module_completed"`
}

// ModuleProgressEntry is one module's gate state within a course.
type ModuleProgressEntry struct {
	ModuleID    uint                  `json:"module_id"`
	Title       string                `json:"title"`
	Order       int                   `json:"order"`
	Status      models.ProgressStatus `json:"status"`
	Score       int                   `json:"score"`
	Accessible  bool                  `json:"accessible"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// CourseProgressResponse is the learner's view of a whole course chain.
type CourseProgressResponse struct {
	CourseID        uint                  `json:"course_id"`
	Modules         []ModuleProgressEntry `json:"modules"`
	CurrentModuleID *uint                 `json:"current_module_id,omitempty"`
	Stats           *repositories.CourseProgressStats `json:"stats,omitempty"`
}

// TouchModuleRequest records a content view (first view creates the
// progress row as in_progress).
type TouchModuleRequest struct {
	StudentID        uint `json:"student_id" validate:"required"`
	CourseID         uint `json:"course_id" validate:"required"`
	ModuleID         uint `json:"module_id" validate:"required"`
	Position         int  `json:"position" validate:"min=0"`
	TimeSpentSeconds int  `json:"time_spent_seconds" validate:"min=0"`
}

// CompleteModuleRequest marks a module completed. Callers must only use
// this after a genuine pass; the gate trusts its caller here.
type CompleteModuleRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
	CourseID  uint `json:"course_id" validate:"required"`
	ModuleID  uint `json:"module_id" validate:"required"`
	Score     int  `json:"score" validate:"min=0,max=100"`
}

// ===== SERVICE INTERFACES =====

// GradingService converts a submitted answer set into a deterministic
// score and pass/fail verdict. ScoreAttempt is pure: no side effects, no
// retries, same inputs always produce the same result.
type GradingService interface {
	ScoreAttempt(questions []models.Question, answers map[uint]string, passingScore int) (*ScoreResult, error)
	ScoreTestSubmission(ctx context.Context, testID uint, answers map[uint]string) (*ScoreResult, error)
}

// AttemptService owns the submission flow: attempt-cap policy, scoring,
// atomic persistence, and progress completion on pass.
type AttemptService interface {
	Submit(ctx context.Context, req *SubmitTestRequest) (*SubmitTestResponse, error)
	GetByID(ctx context.Context, id uint, userID uint) (*models.TestAttempt, error)
	GetByStudent(ctx context.Context, studentID uint, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetForStudent(ctx context.Context, studentID uint, userID uint, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error)
	GetByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters, userID uint) ([]*models.TestAttempt, int64, error)
	RemainingAttempts(ctx context.Context, testID, studentID uint) (int, error)
	GetStats(ctx context.Context, testID uint, userID uint) (*repositories.AttemptStats, error)
}

// ProgressService is the topic progression gate: strictly sequential
// unlock of course modules based on completion state.
type ProgressService interface {
	IsModuleCompleted(ctx context.Context, studentID, moduleID uint) (bool, error)
	CanAccessModule(ctx context.Context, studentID, moduleID uint) (bool, error)
	CompleteModule(ctx context.Context, req *CompleteModuleRequest) error
	TouchModule(ctx context.Context, req *TouchModuleRequest) error
	GetCourseProgress(ctx context.Context, studentID, courseID uint) (*CourseProgressResponse, error)
}

// ExportService produces instructor-facing result exports.
type ExportService interface {
	ExportTestResultsToExcel(ctx context.Context, testID uint, userID uint) ([]byte, error)
	ExportTestResultsToCSV(ctx context.Context, testID uint, userID uint) ([]byte, error)
}

// ServiceManager aggregates all services for handler wiring.
type ServiceManager interface {
	Grading() GradingService
	Attempt() AttemptService
	Progress() ProgressService
	Export() ExportService
}
