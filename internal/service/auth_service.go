package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	AdminRole    = "admin"
	AdminSubject = "admin"
)

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthConfig struct {
	PasswordHash string
	Secret       []byte
	TokenTTL     time.Duration
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type authService struct {
	cfg AuthConfig
	now func() time.Time
}

func NewAuthService(cfg AuthConfig) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &authService{cfg: cfg, now: time.Now}
}

// Login checks the shared admin password and issues a signed admin token.
func (s *authService) Login(_ context.Context, req LoginRequest) (*LoginResponse, error) {
	if s.cfg.PasswordHash == "" {
		return nil, ErrUnauthorized("admin login is not configured")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrUnauthorized("invalid password")
	}

	now := s.now()
	token, expiresAt, err := IssueAdminToken(s.cfg.Secret, s.cfg.TokenTTL, now)
	if err != nil {
		return nil, ErrInternal("failed to sign token", err)
	}
	return &LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// IssueAdminToken signs an HS256 token carrying {role, timestamp, exp}.
func IssueAdminToken(secret []byte, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       AdminSubject,
		"role":      AdminRole,
		"timestamp": now.UnixMilli(),
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
