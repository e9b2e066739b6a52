package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunPurger calls PurgeExpired every interval until ctx is cancelled.
// It returns immediately when interval is not positive.
func RunPurger(ctx context.Context, registrations RegistrationService, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// PurgeExpired logs its own count
			if _, err := registrations.PurgeExpired(ctx); err != nil {
				logger.Error("failed to purge expired registrations", zap.Error(err))
			}
		}
	}
}
