package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/error-404/learning-service/internal/services"
	"github.com/error-404/learning-service/internal/utils"
)

func errorStatus(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

	h := NewBaseHandler(utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	h.handleServiceError(c, err)
	return rec.Code
}

func TestHandleServiceError_NotFound(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errorStatus(t, services.ErrSessionNotFound))
	assert.Equal(t, http.StatusNotFound, errorStatus(t, services.ErrClanNotFound))
}

func TestHandleServiceError_ClientStateConflicts(t *testing.T) {
	// Caller-caused conditions must not surface as internal errors.
	for _, err := range []error{
		services.ErrSessionNotActive,
		services.ErrSessionAlreadyCompleted,
		services.ErrNoPendingQuestion,
		services.ErrNoQuestionsAvailable,
		services.ErrOwnerCannotLeave,
		services.ErrClanFull,
	} {
		assert.Equal(t, http.StatusConflict, errorStatus(t, err), "error: %v", err)
	}
}

func TestHandleServiceError_Forbidden(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, errorStatus(t, services.ErrNotClanMember))
	assert.Equal(t, http.StatusForbidden, errorStatus(t, services.ErrNotClanOwner))
}

func TestHandleServiceError_BusinessRule(t *testing.T) {
	err := services.NewBusinessRuleError("module_empty", "module has no lessons", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, errorStatus(t, err))
}

func TestHandleServiceError_UnknownFallsBackTo500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, errorStatus(t, assert.AnError))
}
