package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegistrationRepository defines data operations for pending registration requests.
type RegistrationRepository interface {
	// IdentityTaken reports whether any of the values is already used by a
	// user or a pending request.
	IdentityTaken(ctx context.Context, username, email, nationalID string) (bool, error)
	// Create inserts the request and reserves its identity claims atomically.
	// A concurrent duplicate surfaces as ErrDuplicate.
	Create(ctx context.Context, req *models.RegistrationRequest) error
	FindByID(ctx context.Context, id int64) (*models.RegistrationRequest, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.RegistrationRequest, int64, error)
	ListCreatedBefore(ctx context.Context, before time.Time) ([]models.RegistrationRequest, error)
	// Approve converts the request into the given user and transfers its claims.
	Approve(ctx context.Context, id int64, user *models.User) error
	// Delete removes the request with its claims and returns the removed row.
	Delete(ctx context.Context, id int64) (*models.RegistrationRequest, error)
}

type registrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository creates a new RegistrationRepository instance.
func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) IdentityTaken(ctx context.Context, username, email, nationalID string) (bool, error) {
	username = models.NormalizeClaim(models.ClaimUsername, username)
	email = models.NormalizeClaim(models.ClaimEmail, email)
	nationalID = models.NormalizeClaim(models.ClaimNationalID, nationalID)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.IdentityClaim{}).
		Where("(kind = ? AND value = ?) OR (kind = ? AND value = ?) OR (kind = ? AND value = ?)",
			models.ClaimUsername, username,
			models.ClaimEmail, email,
			models.ClaimNationalID, nationalID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check identity claims: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	// Rows written before claims existed (seed scripts, manual inserts)
	for _, model := range []interface{}{&models.RegistrationRequest{}, &models.User{}} {
		err := r.db.WithContext(ctx).
			Model(model).
			Where("LOWER(username) = ? OR LOWER(email) = ? OR UPPER(national_id) = ?", username, email, nationalID).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("failed to check existing identities: %w", err)
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *registrationRepository) Create(ctx context.Context, req *models.RegistrationRequest) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		claims := models.Claims(models.OwnerRegistration, req.ID, req.Username, req.Email, req.NationalID)
		return tx.Create(&claims).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create registration request for %s: %w", req.Username, translate(err))
	}
	return nil
}

func (r *registrationRepository) FindByID(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	var req models.RegistrationRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find registration request %d: %w", id, translate(err))
	}
	return &req, nil
}

func (r *registrationRepository) ListPending(ctx context.Context, limit, offset int) ([]models.RegistrationRequest, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.RegistrationRequest{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count registration requests: %w", err)
	}

	var requests []models.RegistrationRequest
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list registration requests: %w", err)
	}
	return requests, total, nil
}

func (r *registrationRepository) ListCreatedBefore(ctx context.Context, before time.Time) ([]models.RegistrationRequest, error) {
	var requests []models.RegistrationRequest
	err := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list registration requests before %s: %w", before.Format(time.RFC3339), err)
	}
	return requests, nil
}

func (r *registrationRepository) Approve(ctx context.Context, id int64, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.RegistrationRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			return err
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		err := tx.Model(&models.IdentityClaim{}).
			Where("owner_type = ? AND owner_id = ?", models.OwnerRegistration, req.ID).
			Updates(map[string]interface{}{
				"owner_type": models.OwnerUser,
				"owner_id":   user.ID,
			}).Error
		if err != nil {
			return err
		}
		return tx.Delete(&req).Error
	})
	if err != nil {
		return fmt.Errorf("failed to approve registration request %d: %w", id, translate(err))
	}
	return nil
}

func (r *registrationRepository) Delete(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	var req models.RegistrationRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			return err
		}
		err := tx.Where("owner_type = ? AND owner_id = ?", models.OwnerRegistration, req.ID).
			Delete(&models.IdentityClaim{}).Error
		if err != nil {
			return err
		}
		return tx.Delete(&req).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete registration request %d: %w", id, translate(err))
	}
	return &req, nil
}
