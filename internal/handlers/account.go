package handlers

import (
	"net/http"

	"github.com/GunarsK-portfolio/voting-portal/internal/middleware"
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountHandler handles self-service account changes.
type AccountHandler struct {
	authService service.AuthService
	activity    *ActivityRecorder
	logger      *zap.Logger
}

// NewAccountHandler creates a new AccountHandler instance.
func NewAccountHandler(authService service.AuthService, activity *ActivityRecorder, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{authService: authService, activity: activity, logger: logger}
}

// ChangePasswordRequest is the password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

// ChangePassword replaces the caller's password.
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": service.RouteHome})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid request.")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), session.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.activity.Record(c, session.UserID, models.ActionPasswordChanged, "Password changed")
	c.JSON(http.StatusOK, gin.H{"message": "Your password has been updated."})
}
