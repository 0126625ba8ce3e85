package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type advisoryHandler struct {
	advisoryService portssvc.AdvisorySvc
}

func registerAdvisoryRoutes(rg *gin.RouterGroup, as portssvc.AdvisorySvc) {
	h := &advisoryHandler{advisoryService: as}

	advisory := rg.Group("/advisory")
	{
		advisory.POST("/purchase", h.purchase)
		advisory.GET("/:advisoryID", h.getPlan)
	}
}

// purchase godoc
// @Summary Buy an advisory package
// @Description Creates a pending advisory plan and a payment order for it.
// @Tags engagement
// @Accept  json
// @Produce  json
// @Param   request body dto.AdvisoryPurchaseRequest true "Tier to buy"
// @Success 201 {object} dto.AdvisoryResponse
// @Failure 400 {object} map[string]string "Unknown tier"
// @Failure 404 {object} map[string]string "Subject not found"
// @Failure 502 {object} map[string]string "Payment service unavailable"
// @Router /advisory/purchase [post]
func (h *advisoryHandler) purchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AdvisoryPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for advisory purchase", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	plan, err := h.advisoryService.PurchaseAdvisory(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondServiceError(c, logger, err, "User not found.", "Failed to create advisory plan")
		return
	}

	logger.Info("Advisory plan created", slog.String("advisory_id", plan.ID), slog.String("tier", string(plan.Tier)))
	c.JSON(http.StatusCreated, dto.ToAdvisoryResponse(plan, true))
}

// getPlan godoc
// @Summary Get an advisory plan
// @Tags engagement
// @Produce  json
// @Param   advisoryID path string true "Advisory plan ID"
// @Success 200 {object} dto.AdvisoryResponse
// @Failure 404 {object} map[string]string "Plan not found"
// @Router /advisory/{advisoryID} [get]
func (h *advisoryHandler) getPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	plan, err := h.advisoryService.GetAdvisoryPlan(c.Request.Context(), c.Param("advisoryID"))
	if err != nil {
		respondServiceError(c, logger, err, "Advisory plan not found.", "Failed to retrieve advisory plan")
		return
	}
	c.JSON(http.StatusOK, dto.ToAdvisoryResponse(plan, false))
}
