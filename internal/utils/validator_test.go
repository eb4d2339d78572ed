package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	apperrors "github.com/permalearn/assessment-service/internal/errors"
	"github.com/permalearn/assessment-service/internal/models"
)

func TestValidator_ValidateQuestion(t *testing.T) {
	v := NewValidator()

	mcOptions := datatypes.JSON([]byte(`["Mulch","Gravel","Sand"]`))

	tests := []struct {
		name      string
		question  models.Question
		wantField string
	}{
		{
			name: "valid multiple choice",
			question: models.Question{
				Type:          models.MultipleChoice,
				Options:       mcOptions,
				CorrectAnswer: "Mulch",
				Points:        10,
			},
		},
		{
			name: "multiple choice answer matched case-insensitively",
			question: models.Question{
				Type:          models.MultipleChoice,
				Options:       mcOptions,
				CorrectAnswer: " mulch ",
				Points:        5,
			},
		},
		{
			name: "multiple choice needs at least two options",
			question: models.Question{
				Type:          models.MultipleChoice,
				Options:       datatypes.JSON([]byte(`["Mulch"]`)),
				CorrectAnswer: "Mulch",
			},
			wantField: "options",
		},
		{
			name: "multiple choice answer must be an option",
			question: models.Question{
				Type:          models.MultipleChoice,
				Options:       mcOptions,
				CorrectAnswer: "Clay",
			},
			wantField: "correct_answer",
		},
		{
			name: "true false accepts boolean answers",
			question: models.Question{
				Type:          models.TrueFalse,
				CorrectAnswer: "True",
				Points:        5,
			},
		},
		{
			name: "true false rejects other answers",
			question: models.Question{
				Type:          models.TrueFalse,
				CorrectAnswer: "yes",
			},
			wantField: "correct_answer",
		},
		{
			name: "short answer needs a non-blank key",
			question: models.Question{
				Type:          models.ShortAnswer,
				CorrectAnswer: "   ",
			},
			wantField: "correct_answer",
		},
		{
			name: "unknown type rejected",
			question: models.Question{
				Type:          models.QuestionType("essay"),
				CorrectAnswer: "anything",
			},
			wantField: "type",
		},
		{
			name: "negative points rejected",
			question: models.Question{
				Type:          models.TrueFalse,
				CorrectAnswer: "false",
				Points:        -1,
			},
			wantField: "points",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateQuestion(&tt.question)

			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}

			assert.NotEmpty(t, errs)
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidator_CustomTagValidations(t *testing.T) {
	v := NewValidator()

	type enrollmentUpdate struct {
		Role   string `json:"role" validate:"required,user_role"`
		Status string `json:"status" validate:"required,progress_status"`
	}

	t.Run("valid role and status pass", func(t *testing.T) {
		err := v.Validate(&enrollmentUpdate{
			Role:   string(models.RoleInstructor),
			Status: string(models.ProgressInProgress),
		})
		assert.NoError(t, err)
	})

	t.Run("unknown role reported under json tag name", func(t *testing.T) {
		err := v.Validate(&enrollmentUpdate{
			Role:   "superuser",
			Status: string(models.ProgressCompleted),
		})

		var ve apperrors.ValidationErrors
		assert.ErrorAs(t, err, &ve)
		assert.Len(t, ve, 1)
		assert.Equal(t, "role", ve[0].Field)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		err := v.Validate(&enrollmentUpdate{
			Role:   string(models.RoleStudent),
			Status: "paused",
		})

		var ve apperrors.ValidationErrors
		assert.ErrorAs(t, err, &ve)
		assert.Len(t, ve, 1)
		assert.Equal(t, "status", ve[0].Field)
	})
}
