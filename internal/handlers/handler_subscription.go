package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// subscriptionHandler handles HTTP requests for plans and subscriptions.
type subscriptionHandler struct {
	subscriptionService portssvc.SubscriptionSvcFacade
	now                 func() time.Time
}

func newSubscriptionHandler(ss portssvc.SubscriptionSvcFacade, now func() time.Time) *subscriptionHandler {
	if now == nil {
		now = time.Now
	}
	return &subscriptionHandler{subscriptionService: ss, now: now}
}

// registerSubscriptionRoutes registers the public subscription routes.
func registerSubscriptionRoutes(rg *gin.RouterGroup, ss portssvc.SubscriptionSvcFacade, now func() time.Time) {
	h := newSubscriptionHandler(ss, now)

	subscription := rg.Group("/subscription")
	{
		subscription.GET("/plans", h.listPlans)
		subscription.GET("/:subjectID", h.getStatus)
		subscription.POST("/upgrade", h.upgrade)
		subscription.POST("/shield-consent", h.recordShieldConsent)
	}
}

// registerInternalSubscriptionRoutes registers operator-only subscription routes.
func registerInternalSubscriptionRoutes(rg *gin.RouterGroup, ss portssvc.SubscriptionSvcFacade) {
	h := newSubscriptionHandler(ss, nil)
	rg.POST("/subscription/expire-trials", h.expireTrials)
}

// listPlans godoc
// @Summary List plans and prices
// @Tags subscription
// @Produce  json
// @Success 200 {object} dto.PlansResponse
// @Router /subscription/plans [get]
func (h *subscriptionHandler) listPlans(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewPlansResponse())
}

// getStatus godoc
// @Summary Get a subject's subscription
// @Description Starts a trial when the subject has none and expires a lapsed trial.
// @Tags subscription
// @Produce  json
// @Param   subjectID path string true "Subject ID"
// @Success 200 {object} dto.SubscriptionStatusResponse
// @Failure 404 {object} map[string]string "Subject not found"
// @Router /subscription/{subjectID} [get]
func (h *subscriptionHandler) getStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	subjectID := c.Param("subjectID")

	sub, err := h.subscriptionService.GetOrCreate(c.Request.Context(), subjectID)
	if err != nil {
		respondServiceError(c, logger, err, "User not found.", "Failed to retrieve subscription")
		return
	}
	hasConsent, err := h.subscriptionService.HasShieldConsent(c.Request.Context(), subjectID)
	if err != nil {
		respondServiceError(c, logger, err, "", "Failed to retrieve subscription")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubscriptionStatusResponse(sub, hasConsent, h.now()))
}

// upgrade godoc
// @Summary Upgrade to a paid plan
// @Description Charges the plan price less any prorated credit from the current paid plan.
// @Tags subscription
// @Accept  json
// @Produce  json
// @Param   request body dto.UpgradeSubscriptionRequest true "Target plan"
// @Success 200 {object} dto.UpgradeSubscriptionResponse
// @Failure 400 {object} map[string]string "Invalid plan or missing Shield consent"
// @Failure 404 {object} map[string]string "Subject not found"
// @Failure 409 {object} map[string]string "Concurrent modification"
// @Router /subscription/upgrade [post]
func (h *subscriptionHandler) upgrade(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpgradeSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for upgrade", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	sub, err := h.subscriptionService.Upgrade(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondServiceError(c, logger, err, "User not found.", "Failed to upgrade subscription")
		return
	}

	message := fmt.Sprintf("Successfully upgraded to %s (%s).", sub.Tier.DisplayName(), sub.BillingPeriod)
	c.JSON(http.StatusOK, dto.ToUpgradeSubscriptionResponse(sub, message))
}

// recordShieldConsent godoc
// @Summary Record Shield consent
// @Tags subscription
// @Accept  json
// @Produce  json
// @Param   request body dto.ShieldConsentRequest true "Subject"
// @Success 201 {object} dto.ShieldConsentResponse
// @Failure 404 {object} map[string]string "Subject not found"
// @Router /subscription/shield-consent [post]
func (h *subscriptionHandler) recordShieldConsent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ShieldConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for shield consent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	consent, err := h.subscriptionService.RecordShieldConsent(c.Request.Context(), req.SubjectID, c.ClientIP())
	if err != nil {
		respondServiceError(c, logger, err, "User not found.", "Failed to record consent")
		return
	}
	c.JSON(http.StatusCreated, dto.ShieldConsentResponse{
		Message:   "Shield consent recorded.",
		ConsentID: consent.ID,
		Timestamp: consent.Timestamp,
	})
}

// expireTrials godoc
// @Summary Expire lapsed trials now
// @Tags internal
// @Produce  json
// @Success 200 {object} map[string]int64
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /internal/subscription/expire-trials [post]
func (h *subscriptionHandler) expireTrials(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	count, err := h.subscriptionService.ExpireLapsedTrials(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "", "Failed to expire trials")
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": count})
}
