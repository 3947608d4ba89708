package services

import (
	"errors"
	"fmt"

	apperrors "github.com/error-404/learning-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Session specific errors
	ErrSessionNotFound         = errors.New("test session not found")
	ErrSessionExpired          = errors.New("test session has expired")
	ErrSessionAlreadyCompleted = errors.New("test session already completed")
	ErrSessionNotActive        = errors.New("test session is not active")
	ErrNoPendingQuestion       = errors.New("no question pending for this session")
	ErrNoQuestionsAvailable    = errors.New("no questions available for requested lesson")

	// Content specific errors
	ErrCourseNotFound      = errors.New("course not found")
	ErrModuleNotFound      = errors.New("module not found")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrCourseNotPublished  = errors.New("course is not published")
	ErrDuplicateCourseName = errors.New("course title already exists")

	// Question specific errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionInvalidOptions = errors.New("question options must cover at least two answer keys")
	ErrQuestionInvalidAnswer  = errors.New("correct answer must be one of the option keys")
	ErrQuestionInUse          = errors.New("question cannot be deleted - referenced by recorded responses")

	// Review specific errors
	ErrReviewCardNotFound = errors.New("review card not found")

	// Clan specific errors
	ErrClanNotFound      = errors.New("clan not found")
	ErrClanNameTaken     = errors.New("clan name already exists")
	ErrClanFull          = errors.New("clan has reached its member limit")
	ErrAlreadyInClan     = errors.New("user already belongs to a clan")
	ErrNotClanMember     = errors.New("user is not a member of this clan")
	ErrOwnerCannotLeave  = errors.New("clan owner cannot leave - transfer ownership or disband")
	ErrNotClanOwner      = errors.New("only the clan owner may perform this action")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrModuleNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrReviewCardNotFound) ||
		errors.Is(err, ErrClanNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrQuestionInvalidOptions) ||
		errors.Is(err, ErrQuestionInvalidAnswer) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict or a state the
// caller can resolve (retrying, completing the session, picking another clan)
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionAlreadyCompleted) ||
		errors.Is(err, ErrSessionNotActive) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrNoPendingQuestion) ||
		errors.Is(err, ErrNoQuestionsAvailable) ||
		errors.Is(err, ErrDuplicateCourseName) ||
		errors.Is(err, ErrQuestionInUse) ||
		errors.Is(err, ErrClanNameTaken) ||
		errors.Is(err, ErrClanFull) ||
		errors.Is(err, ErrAlreadyInClan) ||
		errors.Is(err, ErrOwnerCannotLeave)
}

// IsForbidden checks if error represents an action the caller is not allowed
// to perform on the resource
func IsForbidden(err error) bool {
	return errors.Is(err, ErrNotClanMember) ||
		errors.Is(err, ErrNotClanOwner)
}
