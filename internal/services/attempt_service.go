package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/permalearn/assessment-service/internal/events"
	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
	"github.com/permalearn/assessment-service/internal/utils"
)

type attemptService struct {
	repo      repositories.Repository
	grading   GradingService
	progress  ProgressService
	publisher events.EventPublisher
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *utils.Validator
}

func NewAttemptService(
	repo repositories.Repository,
	grading GradingService,
	progress ProgressService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) AttemptService {
	return &attemptService{
		repo:      repo,
		grading:   grading,
		progress:  progress,
		publisher: publisher,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "assessment-service", Component: "attempts"}),
		validator: validator,
	}
}

// ===== SUBMISSION FLOW =====

// Submit grades one answer set and persists the attempt. The attempt-cap
// check and the insert run under a per-(student, test) advisory lock
// inside one transaction, so two racing submissions cannot both count
// under the cap and both insert. Progress completion on a pass commits
// atomically with the attempt.
func (s *attemptService) Submit(ctx context.Context, req *SubmitTestRequest) (resp *SubmitTestResponse, err error) {
	done := s.ops.TrackOperation(ctx, "submit_test", req.StudentID, req.TestID, "test")
	defer func() { done(err) }()

	s.logger.Info("Submitting test attempt",
		"test_id", req.TestID,
		"student_id", req.StudentID,
		"answers_count", len(req.Answers))

	// Validate request
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Get test with questions
	test, err := s.repo.ModuleTest().GetByIDWithQuestions(ctx, req.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, NewStorageError("load module test", err)
	}
	if test.Status != models.TestPublished {
		return nil, ErrTestNotPublished
	}

	// Get the owning module for the gate check and course linkage
	module, err := s.repo.Course().GetModuleByID(ctx, test.ModuleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, NewStorageError("load course module", err)
	}

	// Locked modules cannot be attempted
	accessible, err := s.progress.CanAccessModule(ctx, req.StudentID, module.ID)
	if err != nil {
		return nil, err
	}
	if !accessible {
		return nil, ErrModuleLocked
	}

	// Grade before touching storage: a scoring error must not consume an
	// attempt slot.
	result, err := s.grading.ScoreAttempt(test.Questions, req.Answers, test.EffectivePassingScore())
	if err != nil {
		return nil, err
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}
	resultsJSON, err := json.Marshal(result.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	now := time.Now()
	startedAt := now
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	attempt := &models.TestAttempt{
		TestID:           req.TestID,
		StudentID:        req.StudentID,
		Answers:          answersJSON,
		Results:          resultsJSON,
		Score:            result.Score,
		Passed:           result.Passed,
		TimeSpentSeconds: req.TimeSpentSeconds,
		StartedAt:        startedAt,
		CompletedAt:      &now,
	}

	var attemptNumber int
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		// Serialize per (student, test) so a concurrent submission cannot
		// count under the cap alongside this one.
		if err := txRepo.Attempt().LockForSubmission(ctx, req.StudentID, req.TestID); err != nil {
			return NewStorageError("lock attempt submission", err)
		}

		count, err := txRepo.Attempt().CountByStudentAndTest(ctx, req.StudentID, req.TestID)
		if err != nil {
			return NewStorageError("count attempts", err)
		}
		if test.MaxAttempts > 0 && count >= test.MaxAttempts {
			return ErrAttemptLimitExceeded
		}
		attemptNumber = count + 1

		if err := txRepo.Attempt().Create(ctx, attempt); err != nil {
			return NewStorageError("create attempt", err)
		}

		if result.Passed {
			if err := txRepo.Progress().MarkCompleted(ctx,
				req.StudentID, module.ID, module.CourseID, result.Score, now); err != nil {
				return NewStorageError("mark module completed", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Test attempt recorded",
		"attempt_id", attempt.ID,
		"test_id", req.TestID,
		"student_id", req.StudentID,
		"score", result.Score,
		"passed", result.Passed,
		"attempt_number", attemptNumber)

	s.publishResultEvents(ctx, attempt, test, module, result, attemptNumber)

	return &SubmitTestResponse{
		AttemptID:         attempt.ID,
		Score:             result.Score,
		Passed:            result.Passed,
		Results:           result.Results,
		AttemptsRemaining: remainingAttempts(test.MaxAttempts, attemptNumber),
		ModuleCompleted:   result.Passed,
	}, nil
}

// publishResultEvents emits the result events after commit. Publish
// failures are logged and swallowed: the attempt is already durable.
func (s *attemptService) publishResultEvents(ctx context.Context, attempt *models.TestAttempt, test *models.ModuleTest, module *models.CourseModule, result *ScoreResult, attemptNumber int) {
	eventType := events.EventAssessmentFailed
	if result.Passed {
		eventType = events.EventAssessmentPassed
	}

	resultEvent := events.NewLearningEvent(eventType, events.AssessmentResultEvent{
		AttemptID:     attempt.ID,
		TestID:        test.ID,
		TestTitle:     test.Title,
		ModuleID:      module.ID,
		StudentID:     attempt.StudentID,
		Score:         result.Score,
		Passed:        result.Passed,
		AttemptNumber: attemptNumber,
		SubmittedAt:   *attempt.CompletedAt,
	})
	if err := s.publisher.PublishLearningEvent(ctx, resultEvent); err != nil {
		s.logger.Error("Failed to publish assessment result event",
			"attempt_id", attempt.ID, "error", err)
	}

	if !result.Passed {
		return
	}

	completedEvent := events.NewLearningEvent(events.EventModuleCompleted, events.ModuleCompletedEvent{
		StudentID:   attempt.StudentID,
		CourseID:    module.CourseID,
		ModuleID:    module.ID,
		ModuleTitle: module.Title,
		Score:       result.Score,
		CompletedAt: *attempt.CompletedAt,
	})
	if err := s.publisher.PublishLearningEvent(ctx, completedEvent); err != nil {
		s.logger.Error("Failed to publish module completed event",
			"module_id", module.ID, "error", err)
	}
}

// ===== GET OPERATIONS =====

func (s *attemptService) GetByID(ctx context.Context, id uint, userID uint) (*models.TestAttempt, error) {
	attempt, err := s.repo.Attempt().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, NewStorageError("load attempt", err)
	}

	canAccess, err := s.canAccessAttempt(ctx, attempt, userID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, NewPermissionError(userID, id, "attempt", "read", "not owner or insufficient permissions")
	}

	return attempt, nil
}

func (s *attemptService) GetByStudent(ctx context.Context, studentID uint, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	filters.StudentID = &studentID

	attempts, total, err := s.repo.Attempt().GetByStudent(ctx, studentID, filters)
	if err != nil {
		return nil, 0, NewStorageError("list attempts by student", err)
	}

	return attempts, total, nil
}

// GetForStudent lists another student's attempts. Students may only read
// their own history; instructors and admins may read anyone's.
func (s *attemptService) GetForStudent(ctx context.Context, studentID uint, userID uint, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	if studentID != userID {
		isStaff, err := s.isStaff(ctx, userID)
		if err != nil {
			return nil, 0, err
		}
		if !isStaff {
			return nil, 0, NewPermissionError(userID, studentID, "student", "view_attempts", "insufficient permissions")
		}
	}

	return s.GetByStudent(ctx, studentID, filters)
}

func (s *attemptService) GetByTest(ctx context.Context, testID uint, filters repositories.AttemptFilters, userID uint) ([]*models.TestAttempt, int64, error) {
	// Only staff may read other students' attempts
	isStaff, err := s.isStaff(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if !isStaff {
		return nil, 0, NewPermissionError(userID, testID, "test", "view_attempts", "insufficient permissions")
	}

	filters.TestID = &testID
	attempts, total, err := s.repo.Attempt().List(ctx, filters)
	if err != nil {
		return nil, 0, NewStorageError("list attempts by test", err)
	}

	return attempts, total, nil
}

// RemainingAttempts reports how many submissions the student has left for
// a test. Returns -1 when the test has no cap.
func (s *attemptService) RemainingAttempts(ctx context.Context, testID, studentID uint) (int, error) {
	test, err := s.repo.ModuleTest().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrTestNotFound
		}
		return 0, NewStorageError("load module test", err)
	}

	count, err := s.repo.Attempt().CountByStudentAndTest(ctx, studentID, testID)
	if err != nil {
		return 0, NewStorageError("count attempts", err)
	}

	return remainingAttempts(test.MaxAttempts, count), nil
}

func (s *attemptService) GetStats(ctx context.Context, testID uint, userID uint) (*repositories.AttemptStats, error) {
	isStaff, err := s.isStaff(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isStaff {
		return nil, NewPermissionError(userID, testID, "test", "view_stats", "insufficient permissions")
	}

	stats, err := s.repo.Attempt().GetStats(ctx, testID)
	if err != nil {
		return nil, NewStorageError("load attempt stats", err)
	}

	return stats, nil
}

// ===== HELPERS =====

func (s *attemptService) canAccessAttempt(ctx context.Context, attempt *models.TestAttempt, userID uint) (bool, error) {
	if attempt.StudentID == userID {
		return true, nil
	}
	return s.isStaff(ctx, userID)
}

func (s *attemptService) isStaff(ctx context.Context, userID uint) (bool, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrUserNotFound
		}
		return false, NewStorageError("load user", err)
	}
	return user.Role == models.RoleInstructor || user.Role == models.RoleAdmin, nil
}

func remainingAttempts(maxAttempts, used int) int {
	if maxAttempts <= 0 {
		return -1 // unlimited
	}
	remaining := maxAttempts - used
	if remaining < 0 {
		return 0
	}
	return remaining
}
