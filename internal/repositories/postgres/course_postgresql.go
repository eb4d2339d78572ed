package postgres

import (
	"context"
	"errors"

	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c CoursePostgreSQL) GetByIDWithModules(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := c.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC, id ASC`)
		}).
		First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (c CoursePostgreSQL) GetModuleByID(ctx context.Context, moduleID uint) (*models.CourseModule, error) {
	var module models.CourseModule
	if err := c.db.WithContext(ctx).First(&module, moduleID).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

// GetCourseModules returns the gating chain. Order ties are broken by id
// so the chain is deterministic even on bad data.
func (c CoursePostgreSQL) GetCourseModules(ctx context.Context, courseID uint) ([]*models.CourseModule, error) {
	var modules []*models.CourseModule
	if err := c.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order(`"order" ASC, id ASC`).
		Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (c CoursePostgreSQL) GetPrecedingModule(ctx context.Context, module *models.CourseModule) (*models.CourseModule, error) {
	var prev models.CourseModule
	err := c.db.WithContext(ctx).
		Where(`course_id = ? AND "order" < ?`, module.CourseID, module.Order).
		Order(`"order" DESC, id DESC`).
		First(&prev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // first module in the chain
		}
		return nil, err
	}
	return &prev, nil
}

func (c CoursePostgreSQL) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c CoursePostgreSQL) ModuleBelongsToCourse(ctx context.Context, moduleID, courseID uint) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.CourseModule{}).
		Where("id = ? AND course_id = ?", moduleID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
