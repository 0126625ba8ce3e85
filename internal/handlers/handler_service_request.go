package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/dto"
	"github.com/exitdebt/exitdebt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type serviceRequestHandler struct {
	requestService portssvc.ServiceRequestSvc
}

func registerServiceRequestRoutes(rg *gin.RouterGroup, rs portssvc.ServiceRequestSvc) {
	h := &serviceRequestHandler{requestService: rs}

	requests := rg.Group("/service-request")
	{
		requests.POST("", h.createRequest)
		requests.GET("/:subjectID", h.listRequests)
	}
}

// createRequest godoc
// @Summary Raise a Shield service request
// @Description Asks ExitDebt to handle lender harassment or creditor communication. Requires an active Shield subscription.
// @Tags engagement
// @Accept  json
// @Produce  json
// @Param   request body dto.CreateServiceRequest true "Request details"
// @Success 201 {object} dto.ServiceRequestResponse
// @Failure 400 {object} map[string]string "Invalid request type"
// @Failure 403 {object} map[string]string "No active Shield subscription"
// @Failure 404 {object} map[string]string "Subject not found"
// @Router /service-request [post]
func (h *serviceRequestHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for service request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	request, err := h.requestService.CreateServiceRequest(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		respondServiceError(c, logger, err, "User not found.", "Failed to create service request")
		return
	}

	logger.Info("Service request created", slog.String("request_id", request.ID), slog.String("type", string(request.Type)))
	c.JSON(http.StatusCreated, dto.ToServiceRequestResponse(request))
}

// listRequests godoc
// @Summary List a subject's service requests
// @Tags engagement
// @Produce  json
// @Param   subjectID path string true "Subject ID"
// @Success 200 {object} dto.ServiceRequestListResponse
// @Router /service-request/{subjectID} [get]
func (h *serviceRequestHandler) listRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requests, err := h.requestService.ListServiceRequests(c.Request.Context(), c.Param("subjectID"))
	if err != nil {
		respondServiceError(c, logger, err, "", "Failed to list service requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToServiceRequestListResponse(requests))
}
