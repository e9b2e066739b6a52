// Package notify delivers templated email notifications.
package notify

import (
	"context"
	"errors"
)

// Template names.
const (
	TemplateRegistrationSubmitted = "registration_submitted"
	TemplateRegistrationApproved  = "registration_approved"
	TemplateRegistrationRejected  = "registration_rejected"
	TemplateEmailVerification     = "email_verification"
)

var (
	// ErrNotConfigured is returned when no mail transport is configured.
	ErrNotConfigured = errors.New("email notifier not configured")
	// ErrUnknownTemplate is returned for template names without a definition.
	ErrUnknownTemplate = errors.New("unknown email template")
	// ErrEmptyRecipient is returned when the message has no recipient.
	ErrEmptyRecipient = errors.New("empty recipient")
)

// Message is one templated notification.
type Message struct {
	To          string
	Template    string
	Data        map[string]interface{}
	CC          string
	DisplayName string
}

// Notifier sends notifications. Callers treat failures as non-fatal.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
