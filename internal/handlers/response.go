// Package handlers contains HTTP request handlers for the voting portal.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError writes a JSON error body.
func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// LogAndRespondError logs err with request context and returns message to the client.
func LogAndRespondError(c *gin.Context, logger *zap.Logger, status int, err error, message string) {
	logger.Error(message,
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
	)
	RespondError(c, status, message)
}

// respondServiceError maps the service error taxonomy onto HTTP responses.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validationErr *service.ValidationError
		uploadErr     *service.UploadError
		storeErr      *service.StoreError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  strings.Join(validationErr.Messages, " "),
			"errors": validationErr.Messages,
		})
	case errors.As(err, &uploadErr):
		LogAndRespondError(c, logger, http.StatusInternalServerError, err, uploadErr.Message)
	case errors.As(err, &storeErr):
		LogAndRespondError(c, logger, http.StatusInternalServerError, err, service.MsgInternal)
	case errors.Is(err, service.ErrDuplicate):
		RespondError(c, http.StatusConflict, service.MsgDuplicateIdentity)
	case errors.Is(err, service.ErrMissingCredentials):
		RespondError(c, http.StatusBadRequest, service.MsgMissingCredentials)
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, service.MsgInvalidCredentials)
	case errors.Is(err, service.ErrWeakPassword):
		RespondError(c, http.StatusBadRequest, service.MsgWeakPassword)
	case errors.Is(err, service.ErrInvalidToken):
		RespondError(c, http.StatusBadRequest, service.MsgInvalidToken)
	case errors.Is(err, service.ErrRequestNotFound):
		RespondError(c, http.StatusNotFound, "Registration request not found.")
	case errors.Is(err, service.ErrUserNotFound):
		RespondError(c, http.StatusNotFound, "Account not found.")
	case errors.Is(err, service.ErrAlreadyVerified):
		RespondError(c, http.StatusConflict, "Your email address is already verified.")
	case errors.Is(err, service.ErrResendThrottled):
		RespondError(c, http.StatusTooManyRequests, service.MsgResendThrottled)
	case errors.Is(err, service.ErrNotificationFailed):
		LogAndRespondError(c, logger, http.StatusServiceUnavailable, err, "Verification email could not be sent. Please try again later.")
	default:
		LogAndRespondError(c, logger, http.StatusInternalServerError, err, service.MsgInternal)
	}
}
