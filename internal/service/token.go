package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeEmailVerification marks tokens issued for verification links.
const PurposeEmailVerification = "email_verification"

const minSecretLength = 32

// VerificationClaims represents the claims of an email verification token.
type VerificationClaims struct {
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService issues and checks signed email verification tokens.
type TokenService interface {
	GenerateVerificationToken(userID int64, email string) (string, error)
	ValidateVerificationToken(tokenString string) (*VerificationClaims, error)
	Expiry() time.Duration
}

type tokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService creates a new TokenService instance. The secret must be at
// least 32 bytes.
func NewTokenService(secret string, expiry time.Duration) (TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("verification secret must be at least %d bytes", minSecretLength)
	}
	if expiry <= 0 {
		return nil, errors.New("verification expiry must be positive")
	}
	return &tokenService{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}, nil
}

func (s *tokenService) Expiry() time.Duration {
	return s.expiry
}

func (s *tokenService) GenerateVerificationToken(userID int64, email string) (string, error) {
	now := s.now()
	claims := VerificationClaims{
		UserID:  userID,
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Purpose: PurposeEmailVerification,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign verification token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) ValidateVerificationToken(tokenString string) (*VerificationClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &VerificationClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Purpose != PurposeEmailVerification || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
