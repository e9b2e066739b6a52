package service

import (
	"context"
	"errors"
	"strings"

	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/notify"
	"github.com/GunarsK-portfolio/voting-portal/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ApprovalResult describes an approved registration. InitialPassword is set
// only when the credentials email could not be delivered, so the
// administrator can hand the password over another way.
type ApprovalResult struct {
	User            *models.User `json:"user"`
	EmailSent       bool         `json:"email_sent"`
	InitialPassword string       `json:"initial_password,omitempty"`
}

// RejectionResult describes a rejected registration.
type RejectionResult struct {
	RequestID int64 `json:"request_id"`
	EmailSent bool  `json:"email_sent"`
}

// ApprovalService lets administrators review pending registrations.
type ApprovalService interface {
	ListPending(ctx context.Context, limit, offset int) ([]models.RegistrationRequest, int64, error)
	Get(ctx context.Context, id int64) (*models.RegistrationRequest, error)
	Approve(ctx context.Context, id int64) (*ApprovalResult, error)
	Reject(ctx context.Context, id int64, reason string) (*RejectionResult, error)
}

type approvalService struct {
	repo     repository.RegistrationRepository
	docs     DocumentStore
	tokens   TokenService
	notifier notify.Notifier
	siteURL  string
	logger   *zap.Logger
}

// NewApprovalService creates a new ApprovalService instance.
func NewApprovalService(
	repo repository.RegistrationRepository,
	docs DocumentStore,
	tokens TokenService,
	notifier notify.Notifier,
	siteURL string,
	logger *zap.Logger,
) ApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &approvalService{
		repo:     repo,
		docs:     docs,
		tokens:   tokens,
		notifier: notifier,
		siteURL:  siteURL,
		logger:   logger,
	}
}

func (s *approvalService) ListPending(ctx context.Context, limit, offset int) ([]models.RegistrationRequest, int64, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	requests, total, err := s.repo.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, 0, storeError("list pending registrations", err)
	}
	return requests, total, nil
}

func (s *approvalService) Get(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, storeError("get registration", err)
	}
	return req, nil
}

func (s *approvalService) Approve(ctx context.Context, id int64) (*ApprovalResult, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	password, err := GeneratePassword()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	nationalID := req.NationalID
	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleVoter,
		FullName:     req.FullName,
		NationalID:   &nationalID,
	}
	if err := s.repo.Approve(ctx, id, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrRequestNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicate
		default:
			return nil, storeError("approve registration", err)
		}
	}

	result := &ApprovalResult{User: user}
	token, err := s.tokens.GenerateVerificationToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to issue verification token", zap.Int64("user_id", user.ID), zap.Error(err))
		result.InitialPassword = password
		return result, nil
	}

	err = s.notifier.Send(ctx, notify.Message{
		To:          user.Email,
		Template:    notify.TemplateRegistrationApproved,
		DisplayName: user.DisplayName(),
		Data: map[string]interface{}{
			"username":         user.Username,
			"password":         password,
			"verification_url": VerificationURL(s.siteURL, token),
		},
	})
	result.EmailSent = err == nil
	if !result.EmailSent {
		s.logger.Warn("approval email not sent; returning credentials to administrator",
			zap.Int64("user_id", user.ID), zap.Error(err))
		result.InitialPassword = password
	}
	return result, nil
}

func (s *approvalService) Reject(ctx context.Context, id int64, reason string) (*RejectionResult, error) {
	req, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, storeError("reject registration", err)
	}

	if err := s.docs.Remove(ctx, req.VerificationDocument); err != nil {
		s.logger.Warn("failed to remove rejected document", zap.String("document", req.VerificationDocument), zap.Error(err))
	}

	err = s.notifier.Send(ctx, notify.Message{
		To:          req.Email,
		Template:    notify.TemplateRegistrationRejected,
		DisplayName: req.FullName,
		Data: map[string]interface{}{
			"request_id": req.ID,
			"reason":     strings.TrimSpace(reason),
		},
	})
	return &RejectionResult{RequestID: req.ID, EmailSent: err == nil}, nil
}
