package handlers

import (
	"net/http"

	"github.com/error-404/learning-service/internal/services"
	"github.com/error-404/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
	}
}

// DueCards lists the user's review cards that are currently due
func (h *ReviewHandler) DueCards(c *gin.Context) {
	userID := requireQuery(c, "user_id")
	if userID == "" {
		return
	}
	limit := parseIntQuery(c, "limit", 0)

	cards, err := h.reviewService.DueCards(c.Request.Context(), userID, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cards)
}

// PlanSession builds a prioritized review session for the user
func (h *ReviewHandler) PlanSession(c *gin.Context) {
	userID := requireQuery(c, "user_id")
	if userID == "" {
		return
	}
	minutes := parseIntQuery(c, "minutes", 0)

	plan, err := h.reviewService.PlanSession(c.Request.Context(), userID, minutes)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// RecordReview records a recall performance and reschedules the card
func (h *ReviewHandler) RecordReview(c *gin.Context) {
	h.LogRequest(c, "Recording review")

	var req services.RecordReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	outcome, err := h.reviewService.RecordReview(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// Retention reports the user's spaced repetition retention stats
func (h *ReviewHandler) Retention(c *gin.Context) {
	userID := requireQuery(c, "user_id")
	if userID == "" {
		return
	}

	stats, err := h.reviewService.Retention(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListCards lists all of the user's review cards
func (h *ReviewHandler) ListCards(c *gin.Context) {
	userID := requireQuery(c, "user_id")
	if userID == "" {
		return
	}

	cards, err := h.reviewService.ListCards(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cards)
}
