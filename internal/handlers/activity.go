package handlers

import (
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActivityRecorder writes audit entries for request-level actions. Failures
// are logged and never affect the response.
type ActivityRecorder struct {
	repo   repository.ActivityLogRepository
	logger *zap.Logger
}

// NewActivityRecorder creates a new ActivityRecorder.
func NewActivityRecorder(repo repository.ActivityLogRepository, logger *zap.Logger) *ActivityRecorder {
	return &ActivityRecorder{repo: repo, logger: logger}
}

// Record stores action for userID (zero for anonymous requests).
func (r *ActivityRecorder) Record(c *gin.Context, userID int64, action, details string) {
	entry := &models.ActivityLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: c.ClientIP(),
	}
	if err := r.repo.LogAction(c.Request.Context(), entry); err != nil {
		r.logger.Warn("failed to record activity",
			zap.String("action", action),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}
