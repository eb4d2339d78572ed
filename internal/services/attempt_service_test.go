package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/permalearn/assessment-service/internal/cache"
	"github.com/permalearn/assessment-service/internal/events"
	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
	"github.com/permalearn/assessment-service/internal/utils"
)

func newAttemptServiceForTest(repo *MockRepository, publisher *events.MockEventPublisher) AttemptService {
	logger := testLogger()
	validator := utils.NewValidator()
	grading := NewGradingService(repo, logger)
	progress := NewProgressService(repo, cache.NewNoopCache(), publisher, logger, validator)
	return NewAttemptService(repo, grading, progress, publisher, logger, validator)
}

func publishedTest(id, moduleID uint, maxAttempts int) *models.ModuleTest {
	return &models.ModuleTest{
		ID:          id,
		ModuleID:    moduleID,
		Title:       "Soil Basics Quiz",
		Status:      models.TestPublished,
		MaxAttempts: maxAttempts,
		Questions: []models.Question{
			mcQuestion(1, "a", 5),
			mcQuestion(2, "b", 5),
		},
	}
}

func firstModule(id, courseID uint) *models.CourseModule {
	return &models.CourseModule{ID: id, CourseID: courseID, Title: "Soil Basics", Order: 1}
}

func TestAttemptService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("passing submission records attempt and completes module", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newAttemptServiceForTest(repo, publisher)

		module := firstModule(5, 2)
		test := publishedTest(10, 5, 3)

		repo.TestRepo.On("GetByIDWithQuestions", ctx, uint(10)).Return(test, nil)
		repo.CourseRepo.On("GetModuleByID", ctx, uint(5)).Return(module, nil)
		repo.CourseRepo.On("GetCourseModules", ctx, uint(2)).Return([]*models.CourseModule{module}, nil)
		repo.AttemptRepo.On("LockForSubmission", ctx, uint(1), uint(10)).Return(nil)
		repo.AttemptRepo.On("CountByStudentAndTest", ctx, uint(1), uint(10)).Return(0, nil)
		repo.AttemptRepo.On("Create", ctx, mock.MatchedBy(func(a *models.TestAttempt) bool {
			return a.TestID == 10 && a.StudentID == 1 && a.Score == 100 && a.Passed
		})).Return(nil)
		repo.ProgressRepo.On("MarkCompleted", ctx, uint(1), uint(5), uint(2), 100, mock.Anything).Return(nil)

		resp, err := svc.Submit(ctx, &SubmitTestRequest{
			TestID:    10,
			StudentID: 1,
			Answers:   map[uint]string{1: "a", 2: "b"},
		})

		assert.NoError(t, err)
		assert.Equal(t, 100, resp.Score)
		assert.True(t, resp.Passed)
		assert.True(t, resp.ModuleCompleted)
		assert.Equal(t, 2, resp.AttemptsRemaining)

		published := publisher.GetPublishedEvents()
		assert.Len(t, published, 2)
		assert.Equal(t, events.EventAssessmentPassed, published[0].Type)
		assert.Equal(t, events.EventModuleCompleted, published[1].Type)

		repo.AssertExpectations(t)
	})

	t.Run("failing submission does not complete module", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newAttemptServiceForTest(repo, publisher)

		module := firstModule(5, 2)
		test := publishedTest(10, 5, 3)

		repo.TestRepo.On("GetByIDWithQuestions", ctx, uint(10)).Return(test, nil)
		repo.CourseRepo.On("GetModuleByID", ctx, uint(5)).Return(module, nil)
		repo.CourseRepo.On("GetCourseModules", ctx, uint(2)).Return([]*models.CourseModule{module}, nil)
		repo.AttemptRepo.On("LockForSubmission", ctx, uint(1), uint(10)).Return(nil)
		repo.AttemptRepo.On("CountByStudentAndTest", ctx, uint(1), uint(10)).Return(1, nil)
		repo.AttemptRepo.On("Create", ctx, mock.Anything).Return(nil)

		resp, err := svc.Submit(ctx, &SubmitTestRequest{
			TestID:    10,
			StudentID: 1,
			Answers:   map[uint]string{1: "x", 2: "y"},
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, resp.Score)
		assert.False(t, resp.Passed)
		assert.False(t, resp.ModuleCompleted)
		assert.Equal(t, 1, resp.AttemptsRemaining)

		published := publisher.GetPublishedEvents()
		assert.Len(t, published, 1)
		assert.Equal(t, events.EventAssessmentFailed, published[0].Type)

		repo.ProgressRepo.AssertNotCalled(t, "MarkCompleted",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("attempt limit enforced", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newAttemptServiceForTest(repo, publisher)

		module := firstModule(5, 2)
		test := publishedTest(10, 5, 3)

		repo.TestRepo.On("GetByIDWithQuestions", ctx, uint(10)).Return(test, nil)
		repo.CourseRepo.On("GetModuleByID", ctx, uint(5)).Return(module, nil)
		repo.CourseRepo.On("GetCourseModules", ctx, uint(2)).Return([]*models.CourseModule{module}, nil)
		repo.AttemptRepo.On("LockForSubmission", ctx, uint(1), uint(10)).Return(nil)
		repo.AttemptRepo.On("CountByStudentAndTest", ctx, uint(1), uint(10)).Return(3, nil)

		resp, err := svc.Submit(ctx, &SubmitTestRequest{
			TestID:    10,
			StudentID: 1,
			Answers:   map[uint]string{1: "a", 2: "b"},
		})

		assert.ErrorIs(t, err, ErrAttemptLimitExceeded)
		assert.Nil(t, resp)
		assert.Empty(t, publisher.GetPublishedEvents())

		repo.AttemptRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("submission lock precedes cap check", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newAttemptServiceForTest(repo, publisher)

		module := firstModule(5, 2)
		test := publishedTest(10, 5, 3)

		var calls []string
		repo.TestRepo.On("GetByIDWithQuestions", ctx, uint(10)).Return(test, nil)
		repo.CourseRepo.On("GetModuleByID", ctx, uint(5)).Return(module, nil)
		repo.CourseRepo.On("GetCourseModules", ctx, uint(2)).Return([]*models.CourseModule{module}, nil)
		repo.AttemptRepo.On("LockForSubmission", ctx, uint(1), uint(10)).Run(func(mock.Arguments) {
			calls = append(calls, "lock")
		}).Return(nil)
		repo.AttemptRepo.On("CountByStudentAndTest", ctx, uint(1), uint(10)).Run(func(mock.Arguments) {
			calls = append(calls, "count")
		}).Return(0, nil)
		repo.AttemptRepo.On("Create", ctx, mock.Anything).Run(func(mock.Arguments) {
			calls = append(calls, "create")
		}).Return(nil)
		repo.ProgressRepo.On("MarkCompleted", ctx, uint(1), uint(5), uint(2), 100, mock.Anything).Return(nil)

		_, err := svc.Submit(ctx, &SubmitTestRequest{
			TestID:    10,
			StudentID: 1,
			Answers:   map[uint]string{1: "a", 2: "b"},
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"lock", "count", "create"}, calls)
	})

	t.Run("lock failure aborts submission", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newAttemptServiceForTest(repo, publisher)

		module := firstModule(5, 2)
		test := publishedTest(10, 5, 3)

		repo.TestRepo.On("GetByIDWithQuestions", ctx, uint(10)).Return(test, nil)
		repo.CourseRepo.On("GetModuleByID", ctx, uint(5)).Return(module, nil)
		repo.CourseRepo.On("GetCourseModules", ctx, uint(2)).Return([]*models.CourseModule{module}, nil)
		repo.AttemptRepo.On("LockForSubmission", ctx, uint(1), uint(10)).Return(errors.New("connection reset"))

		resp, err := svc.Submit(ctx, &SubmitTestRequest{
			TestID:    10,
			StudentID: 1,
			Answers:   map[uint]string{1: "a", 2: "b"},
		})

		assert.True(t, IsStorage(err))
		assert.Nil(t, resp)
		assert.Empty(t, publisher.GetPublishedEvents())
		repo.AttemptRepo.AssertNotCalled(t, "CountByStudentAndTest", mock.Anything, mock.Anything, mock.Anything)
		repo.AttemptRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("locked module rejects submission", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newAttemptServiceForTest(repo, publisher)

		first := firstModule(5, 2)
		second := &models.CourseModule{ID: 6, CourseID: 2, Title: "Water Systems", Order: 2}
		test := publishedTest(11, 6, 3)

		repo.TestRepo.On("GetByIDWithQuestions", ctx, uint(11)).Return(test, nil)
		repo.CourseRepo.On("GetModuleByID", ctx, uint(6)).Return(second, nil)
		repo.CourseRepo.On("GetCourseModules", ctx, uint(2)).Return([]*models.CourseModule{first, second}, nil)
		repo.ProgressRepo.On("GetByStudentAndModule", ctx, uint(1), uint(5)).Return(nil, gorm.ErrRecordNotFound)

		resp, err := svc.Submit(ctx, &SubmitTestRequest{
			TestID:    11,
			StudentID: 1,
			Answers:   map[uint]string{1: "a", 2: "b"},
		})

		assert.ErrorIs(t, err, ErrModuleLocked)
		assert.Nil(t, resp)
		repo.AttemptRepo.AssertNotCalled(t, "CountByStudentAndTest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unpublished test rejected", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newAttemptServiceForTest(repo, publisher)

		test := publishedTest(10, 5, 3)
		test.Status = models.TestDraft
		repo.TestRepo.On("GetByIDWithQuestions", ctx, uint(10)).Return(test, nil)

		resp, err := svc.Submit(ctx, &SubmitTestRequest{
			TestID:    10,
			StudentID: 1,
			Answers:   map[uint]string{1: "a"},
		})

		assert.ErrorIs(t, err, ErrTestNotPublished)
		assert.Nil(t, resp)
	})

	t.Run("missing answers fail validation", func(t *testing.T) {
		repo := NewMockRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newAttemptServiceForTest(repo, publisher)

		resp, err := svc.Submit(ctx, &SubmitTestRequest{TestID: 10, StudentID: 1})

		assert.Error(t, err)
		assert.Nil(t, resp)
		repo.TestRepo.AssertNotCalled(t, "GetByIDWithQuestions", mock.Anything, mock.Anything)
	})
}

func TestAttemptService_RemainingAttempts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		maxAttempts int
		used        int
		want        int
	}{
		{name: "fresh test", maxAttempts: 3, used: 0, want: 3},
		{name: "one used", maxAttempts: 3, used: 1, want: 2},
		{name: "cap reached", maxAttempts: 3, used: 3, want: 0},
		{name: "over cap clamps to zero", maxAttempts: 3, used: 5, want: 0},
		{name: "uncapped test", maxAttempts: 0, used: 7, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockRepository()
			publisher := events.NewMockEventPublisher(testLogger())
			svc := newAttemptServiceForTest(repo, publisher)

			repo.TestRepo.On("GetByID", ctx, uint(10)).Return(&models.ModuleTest{
				ID:          10,
				MaxAttempts: tt.maxAttempts,
			}, nil)
			repo.AttemptRepo.On("CountByStudentAndTest", ctx, uint(1), uint(10)).Return(tt.used, nil)

			remaining, err := svc.RemainingAttempts(ctx, 10, 1)

			assert.NoError(t, err)
			assert.Equal(t, tt.want, remaining)
		})
	}
}

func TestAttemptService_GetByID_Permissions(t *testing.T) {
	ctx := context.Background()

	attempt := &models.TestAttempt{ID: 7, TestID: 10, StudentID: 1, Score: 80, Passed: true}

	t.Run("owner can read", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newAttemptServiceForTest(repo, events.NewMockEventPublisher(testLogger()))

		repo.AttemptRepo.On("GetByIDWithDetails", ctx, uint(7)).Return(attempt, nil)

		got, err := svc.GetByID(ctx, 7, 1)
		assert.NoError(t, err)
		assert.Equal(t, attempt, got)
	})

	t.Run("instructor can read", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newAttemptServiceForTest(repo, events.NewMockEventPublisher(testLogger()))

		repo.AttemptRepo.On("GetByIDWithDetails", ctx, uint(7)).Return(attempt, nil)
		repo.UserRepo.On("GetByID", ctx, uint(2)).Return(&models.User{ID: 2, Role: models.RoleInstructor}, nil)

		got, err := svc.GetByID(ctx, 7, 2)
		assert.NoError(t, err)
		assert.Equal(t, attempt, got)
	})

	t.Run("other student denied", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newAttemptServiceForTest(repo, events.NewMockEventPublisher(testLogger()))

		repo.AttemptRepo.On("GetByIDWithDetails", ctx, uint(7)).Return(attempt, nil)
		repo.UserRepo.On("GetByID", ctx, uint(3)).Return(&models.User{ID: 3, Role: models.RoleStudent}, nil)

		got, err := svc.GetByID(ctx, 7, 3)
		assert.Nil(t, got)

		var pe *PermissionError
		assert.ErrorAs(t, err, &pe)
	})
}

func TestAttemptService_GetForStudent_Permissions(t *testing.T) {
	ctx := context.Background()

	history := []*models.TestAttempt{{ID: 7, TestID: 10, StudentID: 1, Score: 80, Passed: true}}

	t.Run("own history without role lookup", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newAttemptServiceForTest(repo, events.NewMockEventPublisher(testLogger()))

		repo.AttemptRepo.On("GetByStudent", ctx, uint(1), mock.Anything).Return(history, int64(1), nil)

		got, total, err := svc.GetForStudent(ctx, 1, 1, repositories.AttemptFilters{})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, history, got)
		repo.UserRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("instructor reads another student", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newAttemptServiceForTest(repo, events.NewMockEventPublisher(testLogger()))

		repo.UserRepo.On("GetByID", ctx, uint(2)).Return(&models.User{ID: 2, Role: models.RoleInstructor}, nil)
		repo.AttemptRepo.On("GetByStudent", ctx, uint(1), mock.Anything).Return(history, int64(1), nil)

		got, total, err := svc.GetForStudent(ctx, 1, 2, repositories.AttemptFilters{})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, got, 1)
	})

	t.Run("student denied for another student", func(t *testing.T) {
		repo := NewMockRepository()
		svc := newAttemptServiceForTest(repo, events.NewMockEventPublisher(testLogger()))

		repo.UserRepo.On("GetByID", ctx, uint(3)).Return(&models.User{ID: 3, Role: models.RoleStudent}, nil)

		got, _, err := svc.GetForStudent(ctx, 1, 3, repositories.AttemptFilters{})
		assert.Nil(t, got)

		var pe *PermissionError
		assert.ErrorAs(t, err, &pe)
		repo.AttemptRepo.AssertNotCalled(t, "GetByStudent", mock.Anything, mock.Anything, mock.Anything)
	})
}
