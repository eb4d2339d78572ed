package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

const DefaultPassingScore = 70

type TestStatus string

const (
	TestDraft     TestStatus = "draft"
	TestPublished TestStatus = "published"
	TestArchived  TestStatus = "archived"
)

// ModuleTest is the assessment attached to a course module.
type ModuleTest struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	ModuleID uint       `json:"module_id" gorm:"not null;uniqueIndex"`
	Title    string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Status   TestStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,oneof=draft published archived"`

	// PassingScore is the pass threshold in percent. Zero means "use the
	// platform default" (DefaultPassingScore).
	PassingScore       int  `json:"passing_score" gorm:"not null;default:0" validate:"min=0,max=100"`
	TimeLimitMinutes   *int `json:"time_limit_minutes" validate:"omitempty,min=1,max=300"`
	MaxAttempts        int  `json:"max_attempts" gorm:"not null;default:3" validate:"min=1,max=10"`
	RandomizeQuestions bool `json:"randomize_questions" gorm:"default:false"`

	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Module    CourseModule `json:"-" gorm:"foreignKey:ModuleID"`
	Questions []Question   `json:"questions" gorm:"foreignKey:TestID"`

	// Computed, not stored.
	TotalPoints int `json:"total_points" gorm:"-"`
}

func (ModuleTest) TableName() string {
	return "module_tests"
}

// EffectivePassingScore resolves the pass threshold for this test.
func (t *ModuleTest) EffectivePassingScore() int {
	if t.PassingScore > 0 {
		return t.PassingScore
	}
	return DefaultPassingScore
}

func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
