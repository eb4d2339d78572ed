package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/permalearn/assessment-service/internal/errors"
	"github.com/permalearn/assessment-service/internal/models"
)

// Validator wraps go-playground struct validation plus the domain
// question checks that tags cannot express.
type Validator struct {
	structValidator *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// Validate validates struct tags and converts failures into the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// ValidateQuestion checks the cross-field rules for a question that
// struct tags cannot cover.
func (v *Validator) ValidateQuestion(q *models.Question) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	switch q.Type {
	case models.MultipleChoice:
		opts, err := q.OptionList()
		if err != nil || len(opts) < 2 {
			errs = append(errs, *apperrors.NewValidationError("options", "multiple choice questions need at least 2 options", string(q.Options)))
			break
		}
		if !containsFold(opts, q.CorrectAnswer) {
			errs = append(errs, *apperrors.NewValidationError("correct_answer", "must be one of the options", q.CorrectAnswer))
		}
	case models.TrueFalse:
		answer := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
		if answer != "true" && answer != "false" {
			errs = append(errs, *apperrors.NewValidationError("correct_answer", "must be true or false", q.CorrectAnswer))
		}
	case models.ShortAnswer:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			errs = append(errs, *apperrors.NewValidationError("correct_answer", "is required", q.CorrectAnswer))
		}
	default:
		errs = append(errs, *apperrors.NewValidationError("type", "must be a valid question type (multiple_choice, true_false, short_answer)", string(q.Type)))
	}

	if q.Points < 0 {
		errs = append(errs, *apperrors.NewValidationError("points", "must not be negative", q.Points))
	}

	return errs
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

// Custom validation functions

func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.MultipleChoice,
		models.TrueFalse,
		models.ShortAnswer,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleStudent,
		models.RoleInstructor,
		models.RoleAdmin,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

func validateProgressStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.ProgressStatus{
		models.ProgressNotStarted,
		models.ProgressInProgress,
		models.ProgressCompleted,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

// registerCustomValidators registers all custom validators
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("progress_status", validateProgressStatus)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
