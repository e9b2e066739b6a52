package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/notify"
	"github.com/GunarsK-portfolio/voting-portal/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	resendKeyPrefix = "verify_resend:"
	resendInterval  = 60 * time.Second
	verifyPath      = "/api/v1/auth/verify"
)

// VerificationURL builds the link mailed to voters.
func VerificationURL(siteURL, token string) string {
	return strings.TrimRight(siteURL, "/") + verifyPath + "?token=" + url.QueryEscape(token)
}

// VerificationService confirms voter email addresses.
type VerificationService interface {
	Verify(ctx context.Context, token string) (*models.User, error)
	Resend(ctx context.Context, userID int64) error
}

type verificationService struct {
	userRepo repository.UserRepository
	tokens   TokenService
	notifier notify.Notifier
	redis    *redis.Client
	siteURL  string
	logger   *zap.Logger
}

// NewVerificationService creates a new VerificationService instance.
func NewVerificationService(
	userRepo repository.UserRepository,
	tokens TokenService,
	notifier notify.Notifier,
	redisClient *redis.Client,
	siteURL string,
	logger *zap.Logger,
) VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &verificationService{
		userRepo: userRepo,
		tokens:   tokens,
		notifier: notifier,
		redis:    redisClient,
		siteURL:  siteURL,
		logger:   logger,
	}
}

func (s *verificationService) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.ValidateVerificationToken(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, storeError("verification lookup", err)
	}
	if !strings.EqualFold(user.Email, claims.Email) {
		return nil, ErrInvalidToken
	}
	if user.AuthVerified {
		return user, nil
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return nil, storeError("mark verified", err)
	}
	user.AuthVerified = true
	return user, nil
}

func (s *verificationService) Resend(ctx context.Context, userID int64) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeError("resend lookup", err)
	}
	if user.AuthVerified || user.Role != models.RoleVoter {
		return ErrAlreadyVerified
	}

	key := fmt.Sprintf("%s%d", resendKeyPrefix, user.ID)
	ok, err := s.redis.SetNX(ctx, key, 1, resendInterval).Result()
	if err != nil {
		return fmt.Errorf("failed to check resend throttle: %w", err)
	}
	if !ok {
		return ErrResendThrottled
	}

	if err := s.sendVerification(ctx, user); err != nil {
		// Allow an immediate retry when delivery failed
		s.redis.Del(ctx, key)
		return err
	}
	return nil
}

func (s *verificationService) sendVerification(ctx context.Context, user *models.User) error {
	token, err := s.tokens.GenerateVerificationToken(user.ID, user.Email)
	if err != nil {
		return err
	}

	err = s.notifier.Send(ctx, notify.Message{
		To:          user.Email,
		Template:    notify.TemplateEmailVerification,
		DisplayName: user.DisplayName(),
		Data: map[string]interface{}{
			"verification_url": VerificationURL(s.siteURL, token),
			"expires_in":       humanizeDuration(s.tokens.Expiry()),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

func humanizeDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}
