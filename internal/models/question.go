package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

// Question belongs to a ModuleTest. Questions are immutable once the test
// is published; edits require a new test version.
type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	TestID uint         `json:"test_id" gorm:"not null;index"`
	Type   QuestionType `json:"type" gorm:"not null;size:20" validate:"required,question_type"`
	Prompt string       `json:"prompt" gorm:"type:text;not null" validate:"required,min=1"`

	// Options holds the choice list for choice-based types ([]string).
	Options       datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb"`
	CorrectAnswer string         `json:"correct_answer" gorm:"type:text;not null" validate:"required"`
	Points        int            `json:"points" gorm:"not null;default:1" validate:"min=0"`
	Order         int            `json:"order" gorm:"column:order;not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the stored option list. Empty for short answers.
func (q *Question) OptionList() ([]string, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var opts []string
	if err := unmarshalJSON(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}
