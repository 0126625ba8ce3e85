package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindingMessages replaces validator output for tags whose wording users see.
var bindingMessages = map[string]string{
	"pan":       "Invalid PAN format. Expected: ABCDE1234F",
	"e164phone": "Invalid phone number.",
}

// bindErrorMessage turns a ShouldBind error into the text returned to clients.
func bindErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if msg, ok := bindingMessages[fe.Tag()]; ok {
				return msg
			}
		}
	}
	return "Invalid request format: " + err.Error()
}

// respondServiceError maps a service error onto a status code and writes
// {"error": ...}. notFoundMsg, when set, replaces the text for ErrNotFound.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, notFoundMsg, fallbackMsg string) {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		msg := notFoundMsg
		if msg == "" {
			msg = err.Error()
		}
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
	case errors.Is(err, apperrors.ErrRateLimited):
		logger.Warn("Rate limited", slog.String("error", err.Error()))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error(), "remaining": 0})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Concurrent modification", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": "The record was changed by another request. Please retry."})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate resource", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUpstream):
		logger.Error("Upstream provider failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 500:
		logger.Warn("Request rejected", slog.String("error", err.Error()))
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
	default:
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}
