package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const settlementCreatedMessage = "Settlement case created. Our team will contact you within 24 hours."

// settlementHandler handles HTTP requests for settlement cases.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

func newSettlementHandler(ss portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{settlementService: ss}
}

// registerSettlementRoutes registers the public settlement routes.
func registerSettlementRoutes(rg *gin.RouterGroup, ss portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(ss)

	settlement := rg.Group("/settlement")
	{
		settlement.POST("/intake", h.createCase)
		settlement.GET("/pricing", h.getPricing)
		settlement.GET("/:subjectID", h.getLatestCase)
	}
}

// registerInternalSettlementRoutes registers operator-only settlement routes.
func registerInternalSettlementRoutes(rg *gin.RouterGroup, ss portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(ss)
	rg.POST("/settlement/cases/:caseID/transition", h.transitionCase)
}

// createCase godoc
// @Summary Open a settlement case
// @Description Opens a settlement case for a subject with at least ₹1,00,000 of debt.
// @Tags settlement
// @Accept  json
// @Produce  json
// @Param   request body dto.SettlementIntakeRequest true "Intake details"
// @Success 201 {object} dto.SettlementIntakeResponse
// @Failure 400 {object} map[string]string "Below minimum debt or case already active"
// @Failure 404 {object} map[string]string "Subject not found"
// @Router /settlement/intake [post]
func (h *settlementHandler) createCase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SettlementIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for settlement intake", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	settlementCase, err := h.settlementService.CreateCase(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondServiceError(c, logger, err, "User not found.", "Failed to create settlement case")
		return
	}

	logger.Info("Settlement case created", slog.String("case_id", settlementCase.ID))
	c.JSON(http.StatusCreated, dto.SettlementIntakeResponse{
		Case:    dto.ToSettlementCaseResponse(settlementCase),
		Message: settlementCreatedMessage,
	})
}

// getLatestCase godoc
// @Summary Get a subject's latest settlement case
// @Tags settlement
// @Produce  json
// @Param   subjectID path string true "Subject ID"
// @Success 200 {object} dto.SettlementCaseResponse
// @Failure 404 {object} map[string]string "No case found"
// @Router /settlement/{subjectID} [get]
func (h *settlementHandler) getLatestCase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	settlementCase, err := h.settlementService.GetLatestCase(c.Request.Context(), c.Param("subjectID"))
	if err != nil {
		respondServiceError(c, logger, err, "No settlement case found for this user.", "Failed to retrieve settlement case")
		return
	}
	c.JSON(http.StatusOK, dto.ToSettlementCaseResponse(settlementCase))
}

// getPricing godoc
// @Summary Settlement pricing
// @Tags settlement
// @Produce  json
// @Success 200 {object} dto.SettlementPricing
// @Router /settlement/pricing [get]
func (h *settlementHandler) getPricing(c *gin.Context) {
	c.JSON(http.StatusOK, dto.DefaultSettlementPricing())
}

// transitionCase godoc
// @Summary Move a settlement case to a new status
// @Description intake → negotiating|closed, negotiating → settled|closed, settled → closed. Settling computes the fee.
// @Tags internal
// @Accept  json
// @Produce  json
// @Param   caseID path string true "Case ID"
// @Param   request body dto.TransitionCaseRequest true "Target status"
// @Success 200 {object} dto.SettlementCaseResponse
// @Failure 400 {object} map[string]string "Invalid transition"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Case not found"
// @Failure 409 {object} map[string]string "Concurrent modification"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /internal/settlement/cases/{caseID}/transition [post]
func (h *settlementHandler) transitionCase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransitionCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for case transition", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	caseID := c.Param("caseID")
	logger = logger.With(slog.String("case_id", caseID), slog.String("actor", actor))
	updated, err := h.settlementService.TransitionCase(c.Request.Context(), caseID, req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Settlement case not found.", "Failed to update settlement case")
		return
	}

	logger.Info("Settlement case transitioned", slog.String("status", string(updated.Status)))
	c.JSON(http.StatusOK, dto.ToSettlementCaseResponse(updated))
}
