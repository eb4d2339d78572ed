package models

import (
	"time"

	"gorm.io/datatypes"
)

// TestAttempt is one scored submission of answers against a module test.
// Immutable after creation except CompletedAt.
type TestAttempt struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	TestID    uint `json:"test_id" gorm:"not null;index:idx_attempt_student_test,priority:2;index"`
	StudentID uint `json:"student_id" gorm:"not null;index:idx_attempt_student_test,priority:1"`

	// Answers is the submitted map of question ID -> answer string.
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb;not null"`
	// Results is the per-question breakdown ([]QuestionResult) kept for
	// learner feedback and audit.
	Results datatypes.JSON `json:"results" gorm:"type:jsonb"`

	Score            int  `json:"score" gorm:"not null" validate:"min=0,max=100"`
	Passed           bool `json:"passed" gorm:"not null;index"`
	TimeSpentSeconds *int `json:"time_spent_seconds"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Student User       `json:"-" gorm:"foreignKey:StudentID"`
	Test    ModuleTest `json:"-" gorm:"foreignKey:TestID"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// QuestionResult is the graded outcome for a single question within an
// attempt, surfaced to the learner as feedback.
type QuestionResult struct {
	QuestionIndex int    `json:"question_index"`
	QuestionID    uint   `json:"question_id"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Points        int    `json:"points"`
}
