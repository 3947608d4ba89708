package handlers

import (
	"net/http"

	"github.com/error-404/learning-service/internal/services"
	"github.com/error-404/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
	}
}

// SessionAnalytics returns analytics for one recorded session
func (h *AnalyticsHandler) SessionAnalytics(c *gin.Context) {
	sessionID := parseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	analytics, err := h.analyticsService.SessionAnalytics(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GlobalStats returns the service-wide aggregates
func (h *AnalyticsHandler) GlobalStats(c *gin.Context) {
	stats, err := h.analyticsService.GlobalStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// UserLessonStats returns a user's accuracy per lesson across sessions
func (h *AnalyticsHandler) UserLessonStats(c *gin.Context) {
	userID := parseStringIDParam(c, "user_id")
	if userID == "" {
		return
	}

	stats, err := h.analyticsService.UserLessonStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
