package postgres

import (
	"context"
	"errors"

	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.TestAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	if err := a.db.WithContext(ctx).
		Preload("Student").
		Preload("Test").
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	var attempts []*models.TestAttempt
	var total int64

	// apply filter first
	query := a.db.WithContext(ctx).Model(&models.TestAttempt{})
	query = a.helpers.ApplyAttemptFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a AttemptPostgreSQL) GetByStudent(ctx context.Context, studentID uint, filters repositories.AttemptFilters) ([]*models.TestAttempt, int64, error) {
	filters.StudentID = &studentID
	return a.List(ctx, filters)
}

func (a AttemptPostgreSQL) GetByStudentAndTest(ctx context.Context, studentID, testID uint) ([]*models.TestAttempt, error) {
	var attempts []*models.TestAttempt
	if err := a.db.WithContext(ctx).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		Order("started_at ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a AttemptPostgreSQL) GetBestAttempt(ctx context.Context, studentID, testID uint) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	err := a.db.WithContext(ctx).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		Order("score DESC, started_at ASC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// LockForSubmission takes a transaction-scoped advisory lock keyed on
// the (student, test) pair. Postgres releases it at commit/rollback, so
// this only has an effect when a.db is a transaction handle.
func (a AttemptPostgreSQL) LockForSubmission(ctx context.Context, studentID, testID uint) error {
	return a.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(?, ?)", int32(studentID), int32(testID)).Error
}

func (a AttemptPostgreSQL) CountByStudentAndTest(ctx context.Context, studentID, testID uint) (int, error) {
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (a AttemptPostgreSQL) GetStats(ctx context.Context, testID uint) (*repositories.AttemptStats, error) {
	var stats repositories.AttemptStats

	var totalAttempts, passedCount, uniqueStudents int64
	var avgScore float64
	var bestScore int

	if err := a.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("test_id = ?", testID).
		Count(&totalAttempts).Error; err != nil {
		return nil, err
	}

	if totalAttempts == 0 {
		return &stats, nil
	}

	if err := a.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("test_id = ? AND passed = true", testID).
		Count(&passedCount).Error; err != nil {
		return nil, err
	}

	if err := a.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("test_id = ?", testID).
		Select("COALESCE(AVG(score), 0)").
		Scan(&avgScore).Error; err != nil {
		return nil, err
	}

	if err := a.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("test_id = ?", testID).
		Select("COALESCE(MAX(score), 0)").
		Scan(&bestScore).Error; err != nil {
		return nil, err
	}

	if err := a.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("test_id = ?", testID).
		Distinct("student_id").
		Count(&uniqueStudents).Error; err != nil {
		return nil, err
	}

	stats = repositories.AttemptStats{
		TotalAttempts:  int(totalAttempts),
		PassedAttempts: int(passedCount),
		AverageScore:   avgScore,
		BestScore:      bestScore,
		PassRate:       float64(passedCount) / float64(totalAttempts),
		UniqueStudents: int(uniqueStudents),
	}

	return &stats, nil
}
