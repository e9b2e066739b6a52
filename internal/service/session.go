package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GunarsK-portfolio/voting-portal/internal/metrics"
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionData is the authenticated identity snapshot kept server-side.
type SessionData struct {
	UserID       int64       `json:"user_id"`
	Username     string      `json:"username"`
	Role         models.Role `json:"role"`
	DisplayName  string      `json:"display_name"`
	AuthVerified bool        `json:"auth_verified"`
}

// Session is a stored session together with its token.
type Session struct {
	SessionData
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// SessionManager manages Redis-backed sessions keyed by opaque tokens.
type SessionManager interface {
	Create(ctx context.Context, data SessionData) (string, error)
	Get(ctx context.Context, token string) (*Session, error)
	Update(ctx context.Context, token string, data SessionData) error
	Destroy(ctx context.Context, token string) error
	TTL() time.Duration
}

type sessionManager struct {
	redis *redis.Client
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionManager creates a new SessionManager instance.
func NewSessionManager(redisClient *redis.Client, ttl time.Duration) SessionManager {
	return &sessionManager{
		redis: redisClient,
		ttl:   ttl,
		now:   time.Now,
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// validToken rejects anything that is not a canonical UUID before touching Redis.
func validToken(token string) bool {
	id, err := uuid.Parse(token)
	return err == nil && id.String() == token
}

func (m *sessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *sessionManager) Create(ctx context.Context, data SessionData) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(Session{SessionData: data, CreatedAt: m.now().UTC()})
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	if err := m.redis.Set(ctx, sessionKey(token), payload, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	metrics.SessionEvents.WithLabelValues(metrics.SessionCreated).Inc()
	return token, nil
}

func (m *sessionManager) Get(ctx context.Context, token string) (*Session, error) {
	if !validToken(token) {
		return nil, ErrSessionNotFound
	}

	raw, err := m.redis.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, ErrSessionNotFound
	}
	session.Token = token

	// Sliding expiry
	if err := m.redis.Expire(ctx, sessionKey(token), m.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return &session, nil
}

func (m *sessionManager) Update(ctx context.Context, token string, data SessionData) error {
	current, err := m.Get(ctx, token)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(Session{SessionData: data, CreatedAt: current.CreatedAt})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ok, err := m.redis.SetXX(ctx, sessionKey(token), payload, m.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func (m *sessionManager) Destroy(ctx context.Context, token string) error {
	if !validToken(token) {
		return nil
	}

	deleted, err := m.redis.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if deleted > 0 {
		metrics.SessionEvents.WithLabelValues(metrics.SessionDestroyed).Inc()
	}
	return nil
}
