package handlers

import (
	"errors"
	"net/http"

	"github.com/GunarsK-portfolio/voting-portal/internal/metrics"
	"github.com/GunarsK-portfolio/voting-portal/internal/middleware"
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles login, logout and session HTTP requests.
type AuthHandler struct {
	authService service.AuthService
	sessions    service.SessionManager
	cookies     *CookieHelper
	activity    *ActivityRecorder
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	authService service.AuthService,
	sessions service.SessionManager,
	cookies *CookieHelper,
	activity *ActivityRecorder,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		cookies:     cookies,
		activity:    activity,
		logger:      logger,
	}
}

// Login authenticates a username/password pair (JSON or form body), starts a
// session and returns the landing route for the account.
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		RespondError(c, http.StatusBadRequest, service.MsgMissingCredentials)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			metrics.LoginAttempts.WithLabelValues(metrics.ResultInvalid).Inc()
		case errors.Is(err, service.ErrInvalidCredentials):
			metrics.LoginAttempts.WithLabelValues(metrics.ResultFailure).Inc()
			h.activity.Record(c, 0, models.ActionLoginFailure, "Failed login attempt for username: "+req.Username)
		default:
			metrics.LoginAttempts.WithLabelValues(metrics.ResultError).Inc()
		}
		respondServiceError(c, h.logger, err)
		return
	}

	// Drop whatever session the client presented before this login
	if previous := h.cookies.SessionToken(c); previous != "" {
		if err := h.sessions.Destroy(c.Request.Context(), previous); err != nil {
			h.logger.Warn("failed to destroy previous session", zap.Error(err))
		}
	}

	token, err := h.sessions.Create(c.Request.Context(), result.SessionData())
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(metrics.ResultError).Inc()
		LogAndRespondError(c, h.logger, http.StatusInternalServerError, err, service.MsgInternal)
		return
	}
	h.cookies.SetSession(c, token, h.sessions.TTL())

	metrics.LoginAttempts.WithLabelValues(metrics.ResultSuccess).Inc()
	h.activity.Record(c, result.UserID, models.ActionLoginSuccess, "User logged in successfully")

	c.JSON(http.StatusOK, result)
}

// Logout destroys the server-side session and clears the cookie. It succeeds
// for anonymous callers too.
func (h *AuthHandler) Logout(c *gin.Context) {
	session, authenticated := middleware.CurrentSession(c)

	if token := h.cookies.SessionToken(c); token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			LogAndRespondError(c, h.logger, http.StatusInternalServerError, err, service.MsgInternal)
			return
		}
	}
	h.cookies.ClearSession(c)

	if authenticated {
		h.activity.Record(c, session.UserID, models.ActionLogout, "User logged out")
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "You have been logged out successfully.",
		"redirect": service.RouteHome,
	})
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	UserID       int64       `json:"user_id"`
	Username     string      `json:"username"`
	Role         models.Role `json:"role"`
	DisplayName  string      `json:"display_name"`
	AuthVerified bool        `json:"auth_verified"`
	Redirect     string      `json:"redirect"`
}

// Session returns the current session snapshot. Requires authentication.
func (h *AuthHandler) Session(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": service.RouteHome})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		UserID:       session.UserID,
		Username:     session.Username,
		Role:         session.Role,
		DisplayName:  session.DisplayName,
		AuthVerified: session.AuthVerified,
		Redirect:     service.RouteFor(session.Role, session.AuthVerified),
	})
}
