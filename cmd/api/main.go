// Package main is the entry point for the voting portal API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GunarsK-portfolio/voting-portal/internal/config"
	"github.com/GunarsK-portfolio/voting-portal/internal/handlers"
	"github.com/GunarsK-portfolio/voting-portal/internal/notify"
	"github.com/GunarsK-portfolio/voting-portal/internal/repository"
	"github.com/GunarsK-portfolio/voting-portal/internal/routes"
	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/GunarsK-portfolio/voting-portal/pkg/logger"
	"github.com/GunarsK-portfolio/voting-portal/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(logger.Options{
		Name:        "voting-portal",
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
		FilePath:    cfg.LogFile,
	})
	defer func() { _ = appLogger.Sync() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("voting portal stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, appLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := repository.Open(cfg)
	if err != nil {
		return err
	}
	if err := repository.Migrate(db); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisClient, err := redis.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	// Initialize services
	notifier, err := notify.NewEmailNotifier(cfg.SMTP, appLogger.Named("notify"))
	if err != nil {
		return err
	}
	if !cfg.SMTP.Configured() {
		appLogger.Warn("SMTP is not configured; notification emails will be skipped")
	}

	tokens, err := service.NewTokenService(cfg.VerificationSecret, cfg.VerificationExpiry)
	if err != nil {
		return err
	}
	documents := service.NewLocalDocumentStore(cfg.UploadDir)
	sessions := service.NewSessionManager(redisClient, cfg.SessionTTL)

	authService := service.NewAuthService(userRepo)
	registrationService := service.NewRegistrationService(registrationRepo, documents, notifier, service.RegistrationOptions{
		MaxDocumentBytes: cfg.UploadMaxBytes,
		TTL:              cfg.RegistrationTTL,
	}, appLogger.Named("registration"))
	verificationService := service.NewVerificationService(userRepo, tokens, notifier, redisClient, cfg.SiteURL, appLogger.Named("verification"))
	approvalService := service.NewApprovalService(registrationRepo, documents, tokens, notifier, cfg.SiteURL, appLogger.Named("approval"))

	if err := service.SeedAdmin(ctx, userRepo, cfg.Admin, appLogger); err != nil {
		return err
	}

	// Initialize handlers
	cookies := handlers.NewCookieHelper(cfg.Cookie)
	activity := handlers.NewActivityRecorder(activityRepo, appLogger)
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, sessions, cookies, activity, appLogger),
		Registration: handlers.NewRegistrationHandler(registrationService, activity, cfg.UploadMaxBytes, appLogger),
		Verification: handlers.NewVerificationHandler(verificationService, sessions, activity, appLogger),
		Account:      handlers.NewAccountHandler(authService, activity, appLogger),
		Admin:        handlers.NewAdminHandler(approvalService, activity, appLogger),
		Voter:        handlers.NewVoterHandler(userRepo, activityRepo, appLogger),
		Health:       handlers.NewHealthHandler(db, redisClient, appLogger),
	}

	// Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	routes.Setup(router, h, sessions, userRepo, redisClient, cfg, appLogger)

	go service.RunPurger(ctx, registrationService, cfg.PurgeInterval, appLogger.Named("purge"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting voting portal", zap.String("addr", server.Addr), zap.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down voting portal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
