package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
)

// MockCourseRepository is a mock implementation of CourseRepository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepository) GetByIDWithModules(ctx context.Context, id uint) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepository) GetModuleByID(ctx context.Context, moduleID uint) (*models.CourseModule, error) {
	args := m.Called(ctx, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseModule), args.Error(1)
}

func (m *MockCourseRepository) GetCourseModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CourseModule), args.Error(1)
}

func (m *MockCourseRepository) GetPrecedingModule(ctx context.Context, module *models.CourseModule) (*models.CourseModule, error) {
	args := m.Called(ctx, module)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CourseModule), args.Error(1)
}

func (m *MockCourseRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCourseRepository) ModuleBelongsToCourse(ctx context.Context, moduleID, courseID uint) (bool, error) {
	args := m.Called(ctx, moduleID, courseID)
	return args.Bool(0), args.Error(1)
}

// MockModuleTestRepository is a mock implementation of ModuleTestRepository
type MockModuleTestRepository struct {
	mock.Mock
}

func (m *MockModuleTestRepository) Create(ctx context.Context, test *models.ModuleTest) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockModuleTestRepository) GetByID(ctx context.Context, id uint) (*models.ModuleTest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModuleTest), args.Error(1)
}

func (m *MockModuleTestRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.ModuleTest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModuleTest), args.Error(1)
}

func (m *MockModuleTestRepository) GetByModuleID(ctx context.Context, moduleID uint) (*models.ModuleTest, error) {
	args := m.Called(ctx, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ModuleTest), args.Error(1)
}

func (m *MockModuleTestRepository) Update(ctx context.Context, test *models.ModuleTest) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockModuleTestRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockModuleTestRepository) UpdateStatus(ctx context.Context, id uint, status models.TestStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockModuleTestRepository) GetQuestions(ctx context.Context, testID uint) ([]*models.Question, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockModuleTestRepository) AddQuestions(ctx context.Context, testID uint, questions []*models.Question) error {
	args := m.Called(ctx, testID, questions)
	return args.Error(0)
}

func (m *MockModuleTestRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockModuleTestRepository) IsPublished(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockModuleTestRepository) HasAttempts(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockAttemptRepository is a mock implementation of AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.TestAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.TestAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByIDWithDetails(ctx context.Context, id uint) (*models.TestAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepository) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.TestAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GetByStudent(ctx context.Context, studentID uint, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	args := m.Called(ctx, studentID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.TestAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GetByStudentAndTest(ctx context.Context, studentID, testID uint) ([]*models.TestAttempt, error) {
	args := m.Called(ctx, studentID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepository) GetBestAttempt(ctx context.Context, studentID, testID uint) (*models.TestAttempt, error) {
	args := m.Called(ctx, studentID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepository) LockForSubmission(ctx context.Context, studentID, testID uint) error {
	args := m.Called(ctx, studentID, testID)
	return args.Error(0)
}

func (m *MockAttemptRepository) CountByStudentAndTest(ctx context.Context, studentID, testID uint) (int, error) {
	args := m.Called(ctx, studentID, testID)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptRepository) GetStats(ctx context.Context, testID uint) (*repositories.AttemptStats, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.AttemptStats), args.Error(1)
}

// MockProgressRepository is a mock implementation of ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) GetByStudentAndModule(ctx context.Context, studentID, moduleID uint) (*models.StudentProgress, error) {
	args := m.Called(ctx, studentID, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudentProgress), args.Error(1)
}

func (m *MockProgressRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) ([]*models.StudentProgress, error) {
	args := m.Called(ctx, studentID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudentProgress), args.Error(1)
}

func (m *MockProgressRepository) List(ctx context.Context, studentID uint, filters repositories.ProgressFilters) ([]*models.StudentProgress, int64, error) {
	args := m.Called(ctx, studentID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.StudentProgress), args.Get(1).(int64), args.Error(2)
}

func (m *MockProgressRepository) Upsert(ctx context.Context, progress *models.StudentProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockProgressRepository) MarkCompleted(ctx context.Context, studentID, moduleID, courseID uint, score int, completedAt time.Time) error {
	args := m.Called(ctx, studentID, moduleID, courseID, score, completedAt)
	return args.Error(0)
}

func (m *MockProgressRepository) TouchAccess(ctx context.Context, studentID, moduleID uint, accessedAt time.Time) error {
	args := m.Called(ctx, studentID, moduleID, accessedAt)
	return args.Error(0)
}

func (m *MockProgressRepository) GetCourseStats(ctx context.Context, studentID, courseID uint) (*repositories.CourseProgressStats, error) {
	args := m.Called(ctx, studentID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.CourseProgressStats), args.Error(1)
}

func (m *MockProgressRepository) CountCompletedInCourse(ctx context.Context, studentID, courseID uint) (int, error) {
	args := m.Called(ctx, studentID, courseID)
	return args.Int(0), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) IsActive(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) HasRole(ctx context.Context, id uint, role models.UserRole) (bool, error) {
	args := m.Called(ctx, id, role)
	return args.Bool(0), args.Error(1)
}

// MockRepository aggregates the entity mocks. WithTransaction runs the
// callback against the same mocks, which is enough to test transactional
// flows without a database.
type MockRepository struct {
	CourseRepo   *MockCourseRepository
	TestRepo     *MockModuleTestRepository
	AttemptRepo  *MockAttemptRepository
	ProgressRepo *MockProgressRepository
	UserRepo     *MockUserRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		CourseRepo:   &MockCourseRepository{},
		TestRepo:     &MockModuleTestRepository{},
		AttemptRepo:  &MockAttemptRepository{},
		ProgressRepo: &MockProgressRepository{},
		UserRepo:     &MockUserRepository{},
	}
}

func (m *MockRepository) Course() repositories.CourseRepository         { return m.CourseRepo }
func (m *MockRepository) ModuleTest() repositories.ModuleTestRepository { return m.TestRepo }
func (m *MockRepository) Attempt() repositories.AttemptRepository       { return m.AttemptRepo }
func (m *MockRepository) Progress() repositories.ProgressRepository     { return m.ProgressRepo }
func (m *MockRepository) User() repositories.UserRepository             { return m.UserRepo }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

func (m *MockRepository) AssertExpectations(t mock.TestingT) {
	m.CourseRepo.AssertExpectations(t)
	m.TestRepo.AssertExpectations(t)
	m.AttemptRepo.AssertExpectations(t)
	m.ProgressRepo.AssertExpectations(t)
	m.UserRepo.AssertExpectations(t)
}
