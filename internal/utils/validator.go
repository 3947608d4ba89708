package utils

import (
	"reflect"
	"strings"

	"github.com/error-404/learning-service/internal/errors"
	"github.com/error-404/learning-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground struct validation with the custom rules used
// across the service.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator instance with all custom rules registered
func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate validates struct tags and converts failures into ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if ve := errors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// Var validates a single value against a rule expression
func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// Custom validation functions

func ValidateDifficultyLevel(fl validator.FieldLevel) bool {
	return models.ValidDifficulty(models.DifficultyLevel(fl.Field().String()))
}

func ValidateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleStudent,
		models.RoleTeacher,
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

func ValidateClanRole(fl validator.FieldLevel) bool {
	validRoles := []models.ClanRole{
		models.ClanRoleOwner,
		models.ClanRoleMember,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

// ValidatePerformanceScore checks the recall performance range used by the
// spaced repetition scheduler.
func ValidatePerformanceScore(fl validator.FieldLevel) bool {
	value := fl.Field().Float()
	return value >= 0.0 && value <= 1.0
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("difficulty_level", ValidateDifficultyLevel)
	validate.RegisterValidation("user_role", ValidateUserRole)
	validate.RegisterValidation("clan_role", ValidateClanRole)
	validate.RegisterValidation("performance_score", ValidatePerformanceScore)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
