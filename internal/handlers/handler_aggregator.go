package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type aggregatorHandler struct {
	aggregatorService portssvc.AggregatorSvcFacade
}

func newAggregatorHandler(as portssvc.AggregatorSvcFacade) *aggregatorHandler {
	return &aggregatorHandler{aggregatorService: as}
}

func registerAggregatorRoutes(rg *gin.RouterGroup, as portssvc.AggregatorSvcFacade) {
	h := newAggregatorHandler(as)

	consents := rg.Group("/aa/consents")
	{
		consents.POST("", h.createConsent)
		consents.GET("/:consentID", h.getConsent)
		consents.POST("/:consentID/approve", h.approveConsent)
		consents.GET("/:consentID/data", h.fetchData)
	}
}

// createConsent godoc
// @Summary Create an account-aggregator consent
// @Tags aggregator
// @Accept  json
// @Produce  json
// @Param   request body dto.CreateConsentRequest true "Phone and FI types"
// @Success 201 {object} dto.ConsentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 502 {object} map[string]string "Aggregator unavailable"
// @Router /aa/consents [post]
func (h *aggregatorHandler) createConsent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for consent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	consent, err := h.aggregatorService.CreateConsent(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondServiceError(c, logger, err, "", "Failed to create consent")
		return
	}
	c.JSON(http.StatusCreated, dto.ToConsentResponse(consent))
}

// getConsent godoc
// @Summary Get consent status
// @Tags aggregator
// @Produce  json
// @Param   consentID path string true "Consent ID"
// @Success 200 {object} domain.AggregatorConsent
// @Failure 404 {object} map[string]string "Consent not found"
// @Router /aa/consents/{consentID} [get]
func (h *aggregatorHandler) getConsent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	consent, err := h.aggregatorService.GetConsent(c.Request.Context(), c.Param("consentID"))
	if err != nil {
		respondServiceError(c, logger, err, "Consent not found.", "Failed to get consent")
		return
	}
	c.JSON(http.StatusOK, consent)
}

// approveConsent godoc
// @Summary Approve a consent (sandbox only)
// @Tags aggregator
// @Produce  json
// @Param   consentID path string true "Consent ID"
// @Success 200 {object} domain.AggregatorConsent
// @Failure 404 {object} map[string]string "Consent not found"
// @Router /aa/consents/{consentID}/approve [post]
func (h *aggregatorHandler) approveConsent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	consent, err := h.aggregatorService.ApproveConsent(c.Request.Context(), c.Param("consentID"))
	if err != nil {
		respondServiceError(c, logger, err, "Consent not found.", "Failed to approve consent")
		return
	}
	c.JSON(http.StatusOK, consent)
}

// fetchData godoc
// @Summary Fetch and normalize aggregator data
// @Tags aggregator
// @Produce  json
// @Param   consentID path string true "Consent ID"
// @Success 200 {object} dto.AggregatorDataResponse
// @Failure 400 {object} map[string]string "Consent not approved"
// @Failure 404 {object} map[string]string "Consent not found"
// @Failure 502 {object} map[string]string "Aggregator unavailable"
// @Router /aa/consents/{consentID}/data [get]
func (h *aggregatorHandler) fetchData(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	data, accounts, err := h.aggregatorService.FetchAccounts(c.Request.Context(), c.Param("consentID"))
	if err != nil {
		respondServiceError(c, logger, err, "Consent not found.", "Failed to fetch aggregator data")
		return
	}
	c.JSON(http.StatusOK, dto.ToAggregatorDataResponse(data, accounts))
}
