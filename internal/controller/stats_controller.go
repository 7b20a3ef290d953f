package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Quizzine/internal/dto"
	"github.com/lshigami/Quizzine/internal/middleware"
	"github.com/lshigami/Quizzine/internal/service"
	"github.com/rs/zerolog/log"
)

type StatsController struct {
	statsService service.StatsService
}

func NewStatsController(ss service.StatsService) *StatsController {
	return &StatsController{statsService: ss}
}

// Dashboard godoc
// @Summary Dashboard summary for the current user
// @Description Quiz count, attempt count, average and best score, total time spent and the five most recent attempts.
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard [get]
func (c *StatsController) Dashboard(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Not authenticated"})
		return
	}
	dashboard, err := c.statsService.Dashboard(userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("Dashboard: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to build dashboard"})
		return
	}
	ctx.JSON(http.StatusOK, dashboard)
}

// History godoc
// @Summary Attempt history for the current user
// @Description Filterable by a title/topic search term and difficulty; both filters must match. Sortable by completion date (default) or score.
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive substring match on quiz title or topic"
// @Param difficulty query string false "easy, medium, hard or all"
// @Param sort query string false "date (default) or score"
// @Success 200 {array} dto.AttemptSummaryResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /attempts [get]
func (c *StatsController) History(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Not authenticated"})
		return
	}
	attempts, err := c.statsService.History(userID, ctx.Query("search"), ctx.Query("difficulty"), ctx.Query("sort"))
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("History: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch attempt history"})
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// Analytics godoc
// @Summary Performance analytics for the current user
// @Description Score trend, per-difficulty and per-topic breakdowns and an improvement figure over the selected time window.
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param window query string false "7d, 30d or 90d; anything else means all time"
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /analytics [get]
func (c *StatsController) Analytics(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Not authenticated"})
		return
	}
	analytics, err := c.statsService.Analytics(userID, ctx.Query("window"))
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("Analytics: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to compute analytics"})
		return
	}
	ctx.JSON(http.StatusOK, analytics)
}
