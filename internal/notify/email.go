package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/GunarsK-portfolio/voting-portal/internal/config"
	"github.com/GunarsK-portfolio/voting-portal/internal/metrics"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[string]string{
	TemplateRegistrationSubmitted: "Registration received",
	TemplateRegistrationApproved:  "Your voter account is ready",
	TemplateRegistrationRejected:  "Registration update",
	TemplateEmailVerification:     "Confirm your email address",
}

// Dialer is the subset of gomail.Dialer used to deliver messages.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier implements Notifier over SMTP.
type EmailNotifier struct {
	cfg       config.SMTPConfig
	dialer    Dialer
	templates *template.Template
	logger    *zap.Logger
}

// NewEmailNotifier creates an SMTP notifier. When cfg is incomplete every Send
// returns ErrNotConfigured.
func NewEmailNotifier(cfg config.SMTPConfig, logger *zap.Logger) (*EmailNotifier, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &EmailNotifier{
		cfg:       cfg,
		templates: tmpl,
		logger:    logger,
	}
	if cfg.Configured() {
		n.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	return n, nil
}

// WithDialer replaces the SMTP transport.
func (n *EmailNotifier) WithDialer(d Dialer) *EmailNotifier {
	n.dialer = d
	return n
}

// Send renders msg.Template and delivers it.
func (n *EmailNotifier) Send(ctx context.Context, msg Message) error {
	err := n.send(ctx, msg)
	switch {
	case err == nil:
		metrics.Notifications.WithLabelValues(msg.Template, metrics.ResultSuccess).Inc()
	case errors.Is(err, ErrNotConfigured):
		metrics.Notifications.WithLabelValues(msg.Template, metrics.ResultSkipped).Inc()
		n.logger.Warn("email config missing, skip notification", zap.String("template", msg.Template))
	default:
		metrics.Notifications.WithLabelValues(msg.Template, metrics.ResultFailure).Inc()
		n.logger.Warn("send email failed",
			zap.String("template", msg.Template),
			zap.String("to", msg.To),
			zap.Error(err),
		)
	}
	return err
}

func (n *EmailNotifier) send(ctx context.Context, msg Message) error {
	if n.dialer == nil || n.cfg.From == "" {
		return ErrNotConfigured
	}
	if strings.TrimSpace(msg.To) == "" {
		return ErrEmptyRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body, err := n.Render(msg)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.cfg.From, n.cfg.FromName)
	if msg.DisplayName != "" {
		m.SetAddressHeader("To", msg.To, msg.DisplayName)
	} else {
		m.SetHeader("To", msg.To)
	}
	if msg.CC != "" {
		m.SetHeader("Cc", msg.CC)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("email notification sent", zap.String("to", msg.To), zap.String("template", msg.Template))
	return nil
}

// Render returns the subject and HTML body for msg.
func (n *EmailNotifier) Render(msg Message) (string, string, error) {
	subject, ok := subjects[msg.Template]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, msg.Template)
	}

	siteName := n.cfg.FromName
	if siteName == "" {
		siteName = "E-Voting Portal"
	}

	var buf bytes.Buffer
	err := n.templates.ExecuteTemplate(&buf, msg.Template+".html", map[string]interface{}{
		"SiteName":    siteName,
		"DisplayName": msg.DisplayName,
		"Data":        msg.Data,
	})
	if err != nil {
		return "", "", fmt.Errorf("render template %s: %w", msg.Template, err)
	}
	return fmt.Sprintf("[%s] %s", siteName, subject), buf.String(), nil
}
