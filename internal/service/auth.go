package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Landing routes returned after login.
const (
	RouteHome         = "/"
	RouteAdmin        = "/admin"
	RouteDashboard    = "/voter/dashboard"
	RouteVerification = "/voter/verify"
)

// LoginRequest is the login form body.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginResult describes the authenticated account and where to send it.
type LoginResult struct {
	UserID       int64       `json:"user_id"`
	Username     string      `json:"username"`
	Role         models.Role `json:"role"`
	DisplayName  string      `json:"display_name"`
	AuthVerified bool        `json:"auth_verified"`
	Route        string      `json:"redirect"`
}

// SessionData returns the session snapshot for the result.
func (r *LoginResult) SessionData() SessionData {
	return SessionData{
		UserID:       r.UserID,
		Username:     r.Username,
		Role:         r.Role,
		DisplayName:  r.DisplayName,
		AuthVerified: r.AuthVerified,
	}
}

// RouteFor returns the landing route for a role and verification state.
func RouteFor(role models.Role, authVerified bool) string {
	switch {
	case role == models.RoleAdmin:
		return RouteAdmin
	case authVerified:
		return RouteDashboard
	default:
		return RouteVerification
	}
}

// AuthService authenticates users and manages their passwords.
type AuthService interface {
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
}

type authService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy spends the same bcrypt work as a real check for unknown users.
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("evoting-dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.FindByUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			compareDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, storeError("login lookup", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &LoginResult{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		DisplayName:  user.DisplayName(),
		AuthVerified: user.AuthVerified,
		Route:        RouteFor(user.Role, user.AuthVerified),
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if current == "" || next == "" {
		return ErrMissingCredentials
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeError("password lookup", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	if err := CheckPasswordPolicy(next); err != nil {
		return err
	}

	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeError("password update", err)
	}
	return nil
}
