package postgres

import (
	"context"
	"time"

	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

func (p ProgressPostgreSQL) GetByStudentAndModule(ctx context.Context, studentID, moduleID uint) (*models.StudentProgress, error) {
	var progress models.StudentProgress
	if err := p.db.WithContext(ctx).
		Where("student_id = ? AND module_id = ?", studentID, moduleID).
		First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (p ProgressPostgreSQL) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) ([]*models.StudentProgress, error) {
	var rows []*models.StudentProgress
	if err := p.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (p ProgressPostgreSQL) List(ctx context.Context, studentID uint, filters repositories.ProgressFilters) ([]*models.StudentProgress, int64, error) {
	var rows []*models.StudentProgress
	var total int64

	query := p.db.WithContext(ctx).Model(&models.StudentProgress{}).Where("student_id = ?", studentID)
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("last_accessed_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// Upsert is keyed on the (student_id, module_id) unique index. Concurrent
// first accesses resolve to a single row instead of a constraint error.
func (p ProgressPostgreSQL) Upsert(ctx context.Context, progress *models.StudentProgress) error {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "score", "position", "time_spent_seconds",
				"completed_at", "last_accessed_at", "updated_at",
			}),
		}).
		Create(progress).Error
}

// MarkCompleted only touches rows that are not yet completed, so the
// first completion wins and its timestamp is preserved on repeat calls.
func (p ProgressPostgreSQL) MarkCompleted(ctx context.Context, studentID, moduleID, courseID uint, score int, completedAt time.Time) error {
	res := p.db.WithContext(ctx).
		Model(&models.StudentProgress{}).
		Where("student_id = ? AND module_id = ? AND status <> ?", studentID, moduleID, models.ProgressCompleted).
		Updates(map[string]interface{}{
			"status":           models.ProgressCompleted,
			"score":            score,
			"completed_at":     completedAt,
			"last_accessed_at": completedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// No row updated: either already completed (idempotent no-op) or the
	// row does not exist yet (pass without a prior content view).
	var count int64
	if err := p.db.WithContext(ctx).
		Model(&models.StudentProgress{}).
		Where("student_id = ? AND module_id = ?", studentID, moduleID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	progress := &models.StudentProgress{
		StudentID:      studentID,
		ModuleID:       moduleID,
		CourseID:       courseID,
		Status:         models.ProgressCompleted,
		Score:          score,
		CompletedAt:    &completedAt,
		LastAccessedAt: completedAt,
	}
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "module_id"}},
			DoNothing: true,
		}).
		Create(progress).Error
}

func (p ProgressPostgreSQL) TouchAccess(ctx context.Context, studentID, moduleID uint, accessedAt time.Time) error {
	return p.db.WithContext(ctx).
		Model(&models.StudentProgress{}).
		Where("student_id = ? AND module_id = ?", studentID, moduleID).
		Update("last_accessed_at", accessedAt).Error
}

func (p ProgressPostgreSQL) GetCourseStats(ctx context.Context, studentID, courseID uint) (*repositories.CourseProgressStats, error) {
	var stats repositories.CourseProgressStats

	var totalModules int64
	if err := p.db.WithContext(ctx).
		Model(&models.CourseModule{}).
		Where("course_id = ?", courseID).
		Count(&totalModules).Error; err != nil {
		return nil, err
	}
	stats.TotalModules = int(totalModules)

	rows, err := p.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	var scoreSum, scored int
	for _, row := range rows {
		switch row.Status {
		case models.ProgressCompleted:
			stats.CompletedModules++
			scoreSum += row.Score
			scored++
		case models.ProgressInProgress:
			stats.InProgress++
		}
		stats.TimeSpentSeconds += row.TimeSpentSeconds
	}
	if scored > 0 {
		stats.AverageScore = float64(scoreSum) / float64(scored)
	}

	return &stats, nil
}

func (p ProgressPostgreSQL) CountCompletedInCourse(ctx context.Context, studentID, courseID uint) (int, error) {
	var count int64
	if err := p.db.WithContext(ctx).
		Model(&models.StudentProgress{}).
		Where("student_id = ? AND course_id = ? AND status = ?", studentID, courseID, models.ProgressCompleted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
