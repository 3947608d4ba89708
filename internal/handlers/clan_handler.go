package handlers

import (
	"net/http"

	"github.com/error-404/learning-service/internal/repositories"
	"github.com/error-404/learning-service/internal/services"
	"github.com/error-404/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ClanHandler struct {
	BaseHandler
	clanService services.ClanService
}

func NewClanHandler(clanService services.ClanService, logger utils.Logger) *ClanHandler {
	return &ClanHandler{
		BaseHandler: NewBaseHandler(logger),
		clanService: clanService,
	}
}

type membershipRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *ClanHandler) CreateClan(c *gin.Context) {
	h.LogRequest(c, "Creating clan")

	var req services.CreateClanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	clan, err := h.clanService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, clan)
}

func (h *ClanHandler) GetClan(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	clan, err := h.clanService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, clan)
}

func (h *ClanHandler) ListClans(c *gin.Context) {
	filters := repositories.ClanFilters{
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if name := c.Query("name"); name != "" {
		filters.Name = &name
	}

	clans, total, err := h.clanService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Items:  clans,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
}

func (h *ClanHandler) DisbandClan(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID := requireQuery(c, "user_id")
	if userID == "" {
		return
	}

	if err := h.clanService.Disband(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Clan disbanded"})
}

func (h *ClanHandler) JoinClan(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req membershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	member, err := h.clanService.Join(c.Request.Context(), id, req.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

func (h *ClanHandler) LeaveClan(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req membershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.clanService.Leave(c.Request.Context(), id, req.UserID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Left clan"})
}

// ClanLeaderboard ranks members within one clan
func (h *ClanHandler) ClanLeaderboard(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}
	limit := parseIntQuery(c, "limit", 10)

	board, err := h.clanService.ClanLeaderboard(c.Request.Context(), id, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// GlobalLeaderboard ranks clans by total score
func (h *ClanHandler) GlobalLeaderboard(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 10)

	board, err := h.clanService.GlobalLeaderboard(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}
