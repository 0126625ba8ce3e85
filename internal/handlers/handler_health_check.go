package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// healthCheckHandler handles HTTP requests for debt health checks.
type healthCheckHandler struct {
	healthCheckService portssvc.HealthCheckSvcFacade
}

func newHealthCheckHandler(hs portssvc.HealthCheckSvcFacade) *healthCheckHandler {
	return &healthCheckHandler{healthCheckService: hs}
}

// registerHealthCheckRoutes registers health check and score history routes.
func registerHealthCheckRoutes(rg *gin.RouterGroup, hs portssvc.HealthCheckSvcFacade) {
	h := newHealthCheckHandler(hs)

	checks := rg.Group("/health-check")
	{
		checks.POST("", h.runBureauCheck)
		checks.POST("/aggregator", h.runAggregatorCheck)
		checks.GET("/:subjectID/history", h.listHealthScores)
	}
	rg.GET("/health-score/:id", h.getHealthScore)
}

// runBureauCheck godoc
// @Summary Run a bureau health check
// @Description Pulls a credit report, normalizes the accounts and computes the Debt Health Score. Limited to a few pulls per phone per day.
// @Tags health-check
// @Accept  json
// @Produce  json
// @Param   request body dto.HealthCheckRequest true "PAN, phone, name and consent"
// @Success 200 {object} dto.HealthCheckResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 429 {object} map[string]interface{} "Too many credit checks"
// @Failure 502 {object} map[string]string "Credit bureau unavailable"
// @Failure 500 {object} map[string]string "Internal error"
// @Router /health-check [post]
func (h *healthCheckHandler) runBureauCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.HealthCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for health check", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	outcome, err := h.healthCheckService.RunBureauCheck(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondServiceError(c, logger, err, "", "Failed to run health check")
		return
	}

	logger.Info("Health check completed",
		slog.String("health_score_id", outcome.Record.ID),
		slog.Int("score", outcome.Record.Result.Score))
	c.JSON(http.StatusOK, dto.ToHealthCheckResponse(outcome))
}

// runAggregatorCheck godoc
// @Summary Run an account-aggregator health check
// @Description Scores the accounts shared under an approved aggregator consent.
// @Tags health-check
// @Accept  json
// @Produce  json
// @Param   request body dto.AggregatorHealthCheckRequest true "Subject and consent"
// @Success 200 {object} dto.HealthCheckResponse
// @Failure 400 {object} map[string]string "Invalid input or consent not approved"
// @Failure 404 {object} map[string]string "Subject or consent not found"
// @Failure 502 {object} map[string]string "Aggregator unavailable"
// @Router /health-check/aggregator [post]
func (h *healthCheckHandler) runAggregatorCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AggregatorHealthCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for aggregator health check", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	outcome, err := h.healthCheckService.RunAggregatorCheck(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondServiceError(c, logger, err, "", "Failed to run health check")
		return
	}
	c.JSON(http.StatusOK, dto.ToHealthCheckResponse(outcome))
}

// getHealthScore godoc
// @Summary Get a stored health score
// @Tags health-check
// @Produce  json
// @Param   id path string true "Health score ID"
// @Success 200 {object} dto.HealthCheckResponse
// @Failure 404 {object} map[string]string "Health score not found"
// @Router /health-score/{id} [get]
func (h *healthCheckHandler) getHealthScore(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("health_score_id", c.Param("id")))

	record, err := h.healthCheckService.GetHealthScore(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Health score not found.", "Failed to retrieve health score")
		return
	}
	c.JSON(http.StatusOK, dto.ToHealthScoreResponse(record))
}

// listHealthScores godoc
// @Summary List a subject's score history
// @Description Newest first. Pass the returned next_token to fetch the following page.
// @Tags health-check
// @Produce  json
// @Param   subjectID path string true "Subject ID"
// @Param   limit query int false "Page size (max 100)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListHealthScoresResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Router /health-check/{subjectID}/history [get]
func (h *healthCheckHandler) listHealthScores(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	subjectID := c.Param("subjectID")

	var params dto.ListHealthScoresParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for score history", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	records, nextToken, err := h.healthCheckService.ListHealthScores(c.Request.Context(), subjectID, params)
	if err != nil {
		respondServiceError(c, logger, err, "", "Failed to list health scores")
		return
	}
	c.JSON(http.StatusOK, dto.ToListHealthScoresResponse(records, nextToken))
}
