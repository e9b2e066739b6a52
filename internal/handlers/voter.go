package handlers

import (
	"errors"
	"net/http"

	"github.com/GunarsK-portfolio/voting-portal/internal/middleware"
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/repository"
	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const recentActivityLimit = 10

// VoterHandler serves the verified voter area.
type VoterHandler struct {
	users    repository.UserRepository
	activity repository.ActivityLogRepository
	logger   *zap.Logger
}

// NewVoterHandler creates a new VoterHandler instance.
func NewVoterHandler(users repository.UserRepository, activity repository.ActivityLogRepository, logger *zap.Logger) *VoterHandler {
	return &VoterHandler{users: users, activity: activity, logger: logger}
}

// DashboardResponse is the voter dashboard payload.
type DashboardResponse struct {
	User           *models.User         `json:"user"`
	RecentActivity []models.ActivityLog `json:"recent_activity"`
}

// Dashboard returns the voter's profile and recent account activity.
func (h *VoterHandler) Dashboard(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": service.RouteHome})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": service.RouteHome})
			return
		}
		LogAndRespondError(c, h.logger, http.StatusInternalServerError, err, service.MsgInternal)
		return
	}

	recent, err := h.activity.ListByUser(c.Request.Context(), user.ID, recentActivityLimit)
	if err != nil {
		h.logger.Warn("failed to load recent activity", zap.Int64("user_id", user.ID), zap.Error(err))
		recent = []models.ActivityLog{}
	}

	c.JSON(http.StatusOK, DashboardResponse{User: user, RecentActivity: recent})
}
