package service

import (
	"context"
	"errors"
	"time"

	"github.com/GunarsK-portfolio/voting-portal/internal/metrics"
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/notify"
	"github.com/GunarsK-portfolio/voting-portal/internal/repository"
	"go.uber.org/zap"
)

// Registration outcome messages.
const (
	MsgRegistrationEmailed    = "Registration submitted successfully! A confirmation email has been sent to your email address."
	MsgRegistrationNotEmailed = "Registration submitted successfully! However, confirmation email could not be sent. You will be notified once your registration is approved."
)

// RegistrationResult is returned for an accepted registration.
type RegistrationResult struct {
	RequestID int64  `json:"request_id"`
	EmailSent bool   `json:"email_sent"`
	Message   string `json:"message"`
}

// RegistrationOptions tunes RegistrationService.
type RegistrationOptions struct {
	MaxDocumentBytes int64
	// TTL is the age after which pending requests are purged. Zero keeps them forever.
	TTL time.Duration
	Now func() time.Time
}

// RegistrationService accepts voter applications.
type RegistrationService interface {
	Submit(ctx context.Context, form RegistrationForm, doc *Upload) (*RegistrationResult, error)
	PurgeExpired(ctx context.Context) (int, error)
}

type registrationService struct {
	repo     repository.RegistrationRepository
	docs     DocumentStore
	notifier notify.Notifier
	opts     RegistrationOptions
	logger   *zap.Logger
}

// NewRegistrationService creates a new RegistrationService instance.
func NewRegistrationService(
	repo repository.RegistrationRepository,
	docs DocumentStore,
	notifier notify.Notifier,
	opts RegistrationOptions,
	logger *zap.Logger,
) RegistrationService {
	if opts.MaxDocumentBytes <= 0 {
		opts.MaxDocumentBytes = 5 << 20
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &registrationService{
		repo:     repo,
		docs:     docs,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

func (s *registrationService) Submit(ctx context.Context, form RegistrationForm, doc *Upload) (*RegistrationResult, error) {
	form.Normalize()
	now := s.opts.Now()

	dob, messages := form.Validate(now)
	if msg := CheckDocument(doc, s.opts.MaxDocumentBytes); msg != "" {
		messages = append(messages, msg)
	}
	if len(messages) > 0 {
		metrics.Registrations.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, &ValidationError{Messages: messages}
	}

	taken, err := s.repo.IdentityTaken(ctx, form.Username, form.Email, form.NationalID)
	if err != nil {
		metrics.Registrations.WithLabelValues(metrics.ResultError).Inc()
		return nil, storeError("registration uniqueness check", err)
	}
	if taken {
		metrics.Registrations.WithLabelValues(metrics.ResultDuplicate).Inc()
		return nil, ErrDuplicate
	}

	name := DocumentName(doc.Filename, now)
	if err := s.docs.Save(ctx, name, doc.Content, s.opts.MaxDocumentBytes); err != nil {
		metrics.Registrations.WithLabelValues(metrics.ResultError).Inc()
		return nil, &UploadError{Message: MsgUploadFailed, Err: err}
	}

	req := &models.RegistrationRequest{
		Username:             form.Username,
		Email:                form.Email,
		FullName:             form.FullName,
		Phone:                form.Phone,
		Address:              form.Address,
		DateOfBirth:          dob,
		Gender:               form.Gender,
		NationalID:           form.NationalID,
		VerificationDocument: name,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		s.removeDocument(ctx, name)
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.Registrations.WithLabelValues(metrics.ResultDuplicate).Inc()
			return nil, ErrDuplicate
		}
		metrics.Registrations.WithLabelValues(metrics.ResultError).Inc()
		return nil, storeError("registration insert", err)
	}
	metrics.Registrations.WithLabelValues(metrics.ResultSuccess).Inc()

	result := &RegistrationResult{RequestID: req.ID, Message: MsgRegistrationNotEmailed}
	err = s.notifier.Send(ctx, notify.Message{
		To:          req.Email,
		Template:    notify.TemplateRegistrationSubmitted,
		DisplayName: req.FullName,
		Data: map[string]interface{}{
			"full_name":   req.FullName,
			"username":    req.Username,
			"email":       req.Email,
			"phone":       req.Phone,
			"national_id": req.NationalID,
			"request_id":  req.ID,
		},
	})
	if err == nil {
		result.EmailSent = true
		result.Message = MsgRegistrationEmailed
	}
	return result, nil
}

func (s *registrationService) removeDocument(ctx context.Context, name string) {
	if err := s.docs.Remove(ctx, name); err != nil {
		s.logger.Warn("failed to remove orphaned document", zap.String("document", name), zap.Error(err))
	}
}

// PurgeExpired deletes pending requests older than the configured TTL and
// returns how many were removed.
func (s *registrationService) PurgeExpired(ctx context.Context) (int, error) {
	if s.opts.TTL <= 0 {
		return 0, nil
	}

	expired, err := s.repo.ListCreatedBefore(ctx, s.opts.Now().Add(-s.opts.TTL))
	if err != nil {
		return 0, storeError("list expired registrations", err)
	}

	purged := 0
	for _, req := range expired {
		if err := ctx.Err(); err != nil {
			return purged, err
		}
		removed, err := s.repo.Delete(ctx, req.ID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return purged, storeError("purge registration", err)
		}
		s.removeDocument(ctx, removed.VerificationDocument)
		purged++
	}

	if purged > 0 {
		s.logger.Info("purged expired registration requests", zap.Int("count", purged))
	}
	return purged, nil
}
