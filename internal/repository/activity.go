package repository

import (
	"context"
	"fmt"

	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"gorm.io/gorm"
)

// ActivityLogRepository persists the audit trail.
type ActivityLogRepository interface {
	LogAction(ctx context.Context, entry *models.ActivityLog) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.ActivityLog, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new ActivityLogRepository instance.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) LogAction(ctx context.Context, entry *models.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to log action %s: %w", entry.Action, err)
	}
	return nil
}

func (r *activityLogRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list actions for user %d: %w", userID, err)
	}
	return entries, nil
}
