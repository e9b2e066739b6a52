// Package routes defines HTTP routes for the voting portal.
package routes

import (
	"github.com/GunarsK-portfolio/voting-portal/internal/config"
	"github.com/GunarsK-portfolio/voting-portal/internal/handlers"
	"github.com/GunarsK-portfolio/voting-portal/internal/middleware"
	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Registration *handlers.RegistrationHandler
	Verification *handlers.VerificationHandler
	Account      *handlers.AccountHandler
	Admin        *handlers.AdminHandler
	Voter        *handlers.VoterHandler
	Health       *handlers.HealthHandler
}

// Setup configures all HTTP routes for the application.
func Setup(
	router *gin.Engine,
	h Handlers,
	sessions service.SessionManager,
	users middleware.UserLookup,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *zap.Logger,
) {
	// CSRF accepts the public site as well as the CORS origins
	trusted := append([]string{}, cfg.AllowedOrigins...)
	if cfg.SiteURL != "" {
		trusted = append(trusted, cfg.SiteURL)
	}

	router.Use(
		middleware.RequestLogger(logger),
		middleware.Security(cfg.AllowedOrigins),
		middleware.CSRF(middleware.CSRFConfig{AllowedOrigins: trusted, Logger: logger}),
		middleware.LoadSession(sessions, cfg.Cookie.Name, logger),
	)

	// Health check
	router.GET("/health", h.Health.Check)
	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticated := middleware.RequireAuth()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", middleware.LoginThrottle(redisClient, cfg.LoginRateLimit, cfg.LoginRateWindow, logger), h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/session", authenticated, h.Auth.Session)
		auth.POST("/register", h.Registration.Register)
		auth.GET("/verify", h.Verification.Verify)
		auth.POST("/verify/resend", authenticated, middleware.RequireRole(models.RoleVoter), h.Verification.Resend)
	}

	account := router.Group("/api/v1/account", authenticated)
	{
		account.POST("/password", h.Account.ChangePassword)
	}

	voter := router.Group("/api/v1/voter", authenticated, middleware.RequireVerifiedVoter(users, sessions, logger))
	{
		voter.GET("/dashboard", h.Voter.Dashboard)
	}

	admin := router.Group("/api/v1/admin", authenticated, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/registrations", h.Admin.ListPending)
		admin.GET("/registrations/:id", h.Admin.Get)
		admin.POST("/registrations/:id/approve", h.Admin.Approve)
		admin.POST("/registrations/:id/reject", h.Admin.Reject)
	}
}
