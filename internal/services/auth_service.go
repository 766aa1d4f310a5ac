package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/smartdebt-api/internal/config"
	"github.com/sjperalta/smartdebt-api/internal/repository"
	"github.com/sjperalta/smartdebt-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// Principal is the authenticated owner of the ledger
type Principal struct {
	Username string `json:"username"`
	Mode     string `json:"mode"`
}

// AuthProvider decides whether a username/password pair may sign in
type AuthProvider interface {
	Authenticate(ctx context.Context, username, password string) (*Principal, error)
}

// PasswordAuthProvider accepts a single account whose password is stored as a bcrypt hash
type PasswordAuthProvider struct {
	username string
	hash     []byte
}

func NewPasswordAuthProvider(username, passwordHash string) *PasswordAuthProvider {
	return &PasswordAuthProvider{username: username, hash: []byte(passwordHash)}
}

func (p *PasswordAuthProvider) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(p.username)) != 1 {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(p.hash, []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	return &Principal{Username: p.username, Mode: config.AuthModePassword}, nil
}

// OpenAuthProvider lets anyone in under any name. Development only.
type OpenAuthProvider struct{}

func (OpenAuthProvider) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		name = "admin"
	}
	return &Principal{Username: name, Mode: config.AuthModeOpen}, nil
}

// NewAuthProvider picks the provider for the configured mode
func NewAuthProvider(cfg *config.Config) (AuthProvider, error) {
	switch cfg.AuthMode {
	case config.AuthModeOpen:
		if cfg.IsProduction() {
			return nil, fmt.Errorf("%w: AUTH_MODE=open in production", ErrForbiddenMode)
		}
		return OpenAuthProvider{}, nil
	case config.AuthModePassword, "":
		if cfg.AuthPasswordHash == "" {
			return nil, fmt.Errorf("%w: AUTH_PASSWORD_HASH is empty", ErrNotConfigured)
		}
		return NewPasswordAuthProvider(cfg.AuthUsername, cfg.AuthPasswordHash), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      *Principal `json:"user"`
}

// SessionInfo reports whether the app was left signed in
type SessionInfo struct {
	LoggedIn bool       `json:"logged_in"`
	User     *Principal `json:"user,omitempty"`
}

// AuthService handles sign-in, tokens and the persisted login flag
type AuthService struct {
	provider AuthProvider
	repo     repository.StateRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(provider AuthProvider, repo repository.StateRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		provider: provider,
		repo:     repo,
		secret:   []byte(cfg.JWTSecret),
		ttl:      time.Duration(cfg.JWTExpirationHours) * time.Hour,
		now:      time.Now,
	}
}

// Login authenticates and returns a signed token
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	p, err := s.provider.Authenticate(ctx, username, password)
	if err != nil {
		logger.Warn("Login rejected", "username", username)
		return nil, err
	}

	expiresAt := s.now().Add(s.ttl)
	token, err := s.generateJWT(p, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.repo.SaveLoggedIn(ctx, true); err != nil {
		logger.Error("Failed to persist login flag", "error", err)
	}
	logger.Info("User logged in", "username", p.Username, "mode", p.Mode)

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: p}, nil
}

// Logout clears the persisted login flag
func (s *AuthService) Logout(ctx context.Context) error {
	return s.repo.SaveLoggedIn(ctx, false)
}

// Session reports the stored login flag together with the caller, when known
func (s *AuthService) Session(ctx context.Context, p *Principal) (*SessionInfo, error) {
	loggedIn, err := s.repo.LoadLoggedIn(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionInfo{LoggedIn: loggedIn, User: p}, nil
}

// ValidateToken parses a bearer token issued by Login
func (s *AuthService) ValidateToken(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	mode, _ := claims["mode"].(string)
	if sub == "" {
		return nil, ErrUnauthorized
	}
	return &Principal{Username: sub, Mode: mode}, nil
}

func (s *AuthService) generateJWT(p *Principal, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  p.Username,
		"mode": p.Mode,
		"exp":  expiresAt.Unix(),
		"iat":  s.now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
