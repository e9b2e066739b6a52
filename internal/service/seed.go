package service

import (
	"context"
	"errors"

	"github.com/GunarsK-portfolio/voting-portal/internal/config"
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/repository"
	"go.uber.org/zap"
)

// SeedAdmin creates the configured administrator when no user with that
// username exists. It is a no-op when seeding is not configured.
func SeedAdmin(ctx context.Context, userRepo repository.UserRepository, seed config.AdminSeed, logger *zap.Logger) error {
	if !seed.Enabled() {
		return nil
	}

	_, err := userRepo.FindByUsername(ctx, seed.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return storeError("seed admin lookup", err)
	}

	hash, err := HashPassword(seed.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     seed.Username,
		Email:        seed.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		FullName:     seed.FullName,
		AuthVerified: true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Warn("admin seed skipped, identity already claimed", zap.String("username", seed.Username))
			return nil
		}
		return storeError("seed admin", err)
	}

	logger.Info("seeded administrator account", zap.String("username", admin.Username))
	return nil
}
