package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type callbackHandler struct {
	callbackService portssvc.CallbackSvc
}

func registerCallbackRoutes(rg *gin.RouterGroup, cs portssvc.CallbackSvc) {
	h := &callbackHandler{callbackService: cs}
	rg.POST("/callback", h.scheduleCallback)
}

// scheduleCallback godoc
// @Summary Schedule an advisor callback
// @Description Books a callback at a future time and passes the lead to the CRM.
// @Tags engagement
// @Accept  json
// @Produce  json
// @Param   request body dto.CallbackRequest true "Callback details"
// @Success 201 {object} dto.CallbackResponse
// @Failure 400 {object} map[string]string "Time not in the future"
// @Failure 404 {object} map[string]string "Subject not found"
// @Router /callback [post]
func (h *callbackHandler) scheduleCallback(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for callback", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	callback, err := h.callbackService.ScheduleCallback(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondServiceError(c, logger, err, "User not found.", "Failed to schedule callback")
		return
	}

	logger.Info("Callback scheduled", slog.String("callback_id", callback.ID))
	c.JSON(http.StatusCreated, dto.ToCallbackResponse(callback))
}
