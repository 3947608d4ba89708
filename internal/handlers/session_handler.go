package handlers

import (
	"net/http"

	"github.com/error-404/learning-service/internal/services"
	"github.com/error-404/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	reportService  services.ReportService
}

func NewSessionHandler(
	sessionService services.SessionService,
	reportService services.ReportService,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		reportService:  reportService,
	}
}

// StartSession opens a new adaptive test session for a module
func (h *SessionHandler) StartSession(c *gin.Context) {
	h.LogRequest(c, "Starting session")

	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.sessionService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// SetConfidence records the pre-assessment lesson confidence marks
func (h *SessionHandler) SetConfidence(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.ConfidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.sessionService.SetConfidence(c.Request.Context(), sessionID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Confidence recorded"})
}

// StartLesson switches the session to a new lesson
func (h *SessionHandler) StartLesson(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.StartLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.sessionService.StartLesson(c.Request.Context(), sessionID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Lesson started"})
}

// NextQuestion serves the next question at the controller's difficulty
func (h *SessionHandler) NextQuestion(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	question, err := h.sessionService.NextQuestion(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// SubmitResponse grades the pending question and advances the controller
func (h *SessionHandler) SubmitResponse(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.sessionService.SubmitResponse(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Status reports the live state of a session
func (h *SessionHandler) Status(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	status, err := h.sessionService.Status(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// Complete finalizes the session and persists its results
func (h *SessionHandler) Complete(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	h.LogRequest(c, "Completing session", "session_id", sessionID)

	summary, err := h.sessionService.Complete(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Report builds the post-session performance report
func (h *SessionHandler) Report(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	report, err := h.reportService.Report(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Abandon discards a live session
func (h *SessionHandler) Abandon(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	if err := h.sessionService.Abandon(c.Request.Context(), sessionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Session abandoned"})
}
