package postgres

import (
	"context"

	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type ModuleTestPostgreSQL struct {
	db *gorm.DB
}

func NewModuleTestPostgreSQL(db *gorm.DB) repositories.ModuleTestRepository {
	return &ModuleTestPostgreSQL{db: db}
}

func (m ModuleTestPostgreSQL) Create(ctx context.Context, test *models.ModuleTest) error {
	return m.db.WithContext(ctx).Create(test).Error
}

func (m ModuleTestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ModuleTest, error) {
	var test models.ModuleTest
	if err := m.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (m ModuleTestPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.ModuleTest, error) {
	var test models.ModuleTest
	if err := m.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC, id ASC`)
		}).
		First(&test, id).Error; err != nil {
		return nil, err
	}
	for _, q := range test.Questions {
		test.TotalPoints += q.Points
	}
	return &test, nil
}

func (m ModuleTestPostgreSQL) GetByModuleID(ctx context.Context, moduleID uint) (*models.ModuleTest, error) {
	var test models.ModuleTest
	if err := m.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		First(&test).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (m ModuleTestPostgreSQL) Update(ctx context.Context, test *models.ModuleTest) error {
	return m.db.WithContext(ctx).Save(test).Error
}

func (m ModuleTestPostgreSQL) Delete(ctx context.Context, id uint) error {
	return m.db.WithContext(ctx).Delete(&models.ModuleTest{}, id).Error
}

func (m ModuleTestPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.TestStatus) error {
	return m.db.WithContext(ctx).
		Model(&models.ModuleTest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (m ModuleTestPostgreSQL) GetQuestions(ctx context.Context, testID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := m.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order(`"order" ASC, id ASC`).
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (m ModuleTestPostgreSQL) AddQuestions(ctx context.Context, testID uint, questions []*models.Question) error {
	for _, q := range questions {
		q.TestID = testID
	}
	return m.db.WithContext(ctx).Create(&questions).Error
}

func (m ModuleTestPostgreSQL) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := m.db.WithContext(ctx).
		Model(&models.ModuleTest{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m ModuleTestPostgreSQL) IsPublished(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := m.db.WithContext(ctx).
		Model(&models.ModuleTest{}).
		Where("id = ? AND status = ?", id, models.TestPublished).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m ModuleTestPostgreSQL) HasAttempts(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := m.db.WithContext(ctx).
		Model(&models.TestAttempt{}).
		Where("test_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
