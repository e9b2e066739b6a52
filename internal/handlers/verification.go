package handlers

import (
	"net/http"

	"github.com/GunarsK-portfolio/voting-portal/internal/middleware"
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerificationHandler handles email verification links and resends.
type VerificationHandler struct {
	verification service.VerificationService
	sessions     service.SessionManager
	activity     *ActivityRecorder
	logger       *zap.Logger
}

// NewVerificationHandler creates a new VerificationHandler instance.
func NewVerificationHandler(
	verification service.VerificationService,
	sessions service.SessionManager,
	activity *ActivityRecorder,
	logger *zap.Logger,
) *VerificationHandler {
	return &VerificationHandler{
		verification: verification,
		sessions:     sessions,
		activity:     activity,
		logger:       logger,
	}
}

// Verify consumes a verification link token.
func (h *VerificationHandler) Verify(c *gin.Context) {
	user, err := h.verification.Verify(c.Request.Context(), c.Query("token"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	redirect := service.RouteHome
	if session, ok := middleware.CurrentSession(c); ok && session.UserID == user.ID {
		data := session.SessionData
		data.AuthVerified = true
		if err := h.sessions.Update(c.Request.Context(), session.Token, data); err != nil {
			h.logger.Warn("failed to refresh session after verification", zap.Int64("user_id", user.ID), zap.Error(err))
		} else {
			redirect = service.RouteFor(data.Role, true)
		}
	}

	h.activity.Record(c, user.ID, models.ActionEmailVerified, "Email address verified")
	c.JSON(http.StatusOK, gin.H{
		"message":  "Your email address has been verified.",
		"redirect": redirect,
	})
}

// Resend mails a fresh verification link to the session's voter.
func (h *VerificationHandler) Resend(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": service.RouteHome})
		return
	}

	if err := h.verification.Resend(c.Request.Context(), session.UserID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "A new verification email has been sent."})
}
