package models

import (
	"time"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// StudentProgress is one row per (student, module). Created on first
// access to the module, mutated when a test is passed, never deleted.
// The unique index is what lets completion upserts stay idempotent under
// concurrent submissions.
type StudentProgress struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_progress_student_module,priority:1"`
	ModuleID  uint `json:"module_id" gorm:"not null;uniqueIndex:idx_progress_student_module,priority:2;index"`
	CourseID  uint `json:"course_id" gorm:"not null;index"`

	Status ProgressStatus `json:"status" gorm:"not null;default:not_started;index" validate:"omitempty,progress_status"`
	Score  int            `json:"score" gorm:"not null;default:0" validate:"min=0,max=100"`

	// Position is the playback/reading position within the module content.
	Position         int `json:"position" gorm:"not null;default:0"`
	TimeSpentSeconds int `json:"time_spent_seconds" gorm:"not null;default:0"`

	CompletedAt    *time.Time `json:"completed_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student User         `json:"-" gorm:"foreignKey:StudentID"`
	Module  CourseModule `json:"-" gorm:"foreignKey:ModuleID"`
}

func (StudentProgress) TableName() string {
	return "student_progress"
}

// IsCompleted reports whether this module is done for the student.
func (p *StudentProgress) IsCompleted() bool {
	return p.Status == ProgressCompleted
}
