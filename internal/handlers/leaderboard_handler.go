package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/submisoon/assessment-service/internal/services"
	"github.com/submisoon/assessment-service/internal/utils"
)

type LeaderboardHandler struct {
	BaseHandler
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService, logger utils.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		BaseHandler:        NewBaseHandler(logger),
		leaderboardService: leaderboardService,
	}
}

// GetLeaderboard ranks students by completed assessments
// @Summary Get leaderboard
// @Tags leaderboard
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param sortBy query string false "Sort field: name or assessment"
// @Param order query string false "Sort order: asc or desc"
// @Success 200 {object} SuccessResponse{data=[]models.LeaderboardEntry}
// @Failure 400 {object} ErrorResponse
// @Router /leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	page, size := paginationParams(c)
	sortBy := c.Query("sortBy")
	order := c.Query("order")

	entries, paging, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), page, size, sortBy, order)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, entries, paging, "")
}

// ExportLeaderboard downloads the full leaderboard as a spreadsheet
// @Summary Export leaderboard
// @Tags leaderboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /leaderboard/export [get]
func (h *LeaderboardHandler) ExportLeaderboard(c *gin.Context) {
	h.LogRequest(c, "Exporting leaderboard")

	content, filename, err := h.leaderboardService.ExportLeaderboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
