package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by LoadSession.
const (
	ContextSession = "session"
	ContextUserID  = "user_id"
)

// LoadSession resolves the session cookie into the request context. Requests
// without a valid session continue anonymously.
func LoadSession(sessions service.SessionManager, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		session, err := sessions.Get(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(ContextSession, session)
			c.Set(ContextUserID, session.UserID)
		case !errors.Is(err, service.ErrSessionNotFound):
			logger.Error("failed to load session", zap.Error(err))
		}
		c.Next()
	}
}

// CurrentSession returns the request's session, if any.
func CurrentSession(c *gin.Context) (*service.Session, bool) {
	value, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	session, ok := value.(*service.Session)
	return session, ok && session != nil
}

// IsAuthenticated reports whether the request carries a valid session.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := CurrentSession(c)
	return ok
}

// CurrentRole returns the session role, or "" for anonymous requests.
func CurrentRole(c *gin.Context) models.Role {
	if session, ok := CurrentSession(c); ok {
		return session.Role
	}
	return ""
}

// RequireAuth rejects anonymous requests with 401 and a redirect to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"redirect": service.RouteHome,
			})
			return
		}
		c.Next()
	}
}

// RequireRole rejects sessions whose role differs from role. It must run
// after RequireAuth.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"redirect": service.RouteHome,
			})
			return
		}
		if session.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "insufficient permissions",
				"redirect": service.RouteFor(session.Role, session.AuthVerified),
			})
			return
		}
		c.Next()
	}
}

// UserLookup loads the stored account behind a session.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// RequireVerifiedVoter keeps voters who have not confirmed their email on the
// verification step. A stale unverified snapshot is checked against users and
// refreshed when the link was confirmed elsewhere.
func RequireVerifiedVoter(users UserLookup, sessions service.SessionManager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"redirect": service.RouteHome,
			})
			return
		}
		if session.Role != models.RoleVoter {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "insufficient permissions",
				"redirect": service.RouteFor(session.Role, session.AuthVerified),
			})
			return
		}
		if !session.AuthVerified && !refreshVerified(c, session, users, sessions, logger) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "email verification required",
				"redirect": service.RouteVerification,
			})
			return
		}
		c.Next()
	}
}

func refreshVerified(c *gin.Context, session *service.Session, users UserLookup, sessions service.SessionManager, logger *zap.Logger) bool {
	if users == nil {
		return false
	}

	ctx := c.Request.Context()
	user, err := users.FindByID(ctx, session.UserID)
	if err != nil {
		logger.Warn("failed to reload verification state", zap.Int64("user_id", session.UserID), zap.Error(err))
		return false
	}
	if !user.AuthVerified {
		return false
	}

	session.AuthVerified = true
	if sessions != nil {
		if err := sessions.Update(ctx, session.Token, session.SessionData); err != nil {
			logger.Warn("failed to refresh session after verification", zap.Int64("user_id", session.UserID), zap.Error(err))
		}
	}
	c.Set(ContextSession, session)
	return true
}
