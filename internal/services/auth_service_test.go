package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sjperalta/smartdebt-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testAuthConfig(t *testing.T) *config.Config {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &config.Config{
		Environment:        "development",
		AuthMode:           config.AuthModePassword,
		AuthUsername:       "admin",
		AuthPasswordHash:   string(hash),
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
	}
}

func TestPasswordAuthProvider(t *testing.T) {
	cfg := testAuthConfig(t)
	p := NewPasswordAuthProvider(cfg.AuthUsername, cfg.AuthPasswordHash)

	principal, err := p.Authenticate(context.Background(), " admin ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "admin", principal.Username)

	_, err = p.Authenticate(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = p.Authenticate(context.Background(), "root", "s3cret")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNewAuthProvider(t *testing.T) {
	cfg := testAuthConfig(t)

	p, err := NewAuthProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &PasswordAuthProvider{}, p)

	cfg.AuthMode = config.AuthModeOpen
	p, err = NewAuthProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, OpenAuthProvider{}, p)

	cfg.Environment = "production"
	_, err = NewAuthProvider(cfg)
	assert.ErrorIs(t, err, ErrForbiddenMode)

	cfg.AuthMode = config.AuthModePassword
	cfg.AuthPasswordHash = ""
	_, err = NewAuthProvider(cfg)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAuthService_LoginPersistsFlagAndIssuesToken(t *testing.T) {
	cfg := testAuthConfig(t)
	repo := &memStateRepo{}
	provider, err := NewAuthProvider(cfg)
	require.NoError(t, err)
	svc := NewAuthService(provider, repo, cfg)

	res, err := svc.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, repo.loggedIn)

	principal, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", principal.Username)
	assert.Equal(t, config.AuthModePassword, principal.Mode)

	info, err := svc.Session(context.Background(), principal)
	require.NoError(t, err)
	assert.True(t, info.LoggedIn)

	require.NoError(t, svc.Logout(context.Background()))
	assert.False(t, repo.loggedIn)
}

func TestAuthService_LoginRejected(t *testing.T) {
	cfg := testAuthConfig(t)
	repo := &memStateRepo{}
	svc := NewAuthService(NewPasswordAuthProvider(cfg.AuthUsername, cfg.AuthPasswordHash), repo, cfg)

	_, err := svc.Login(context.Background(), "admin", "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, repo.loggedIn)
}

func TestAuthService_ValidateToken(t *testing.T) {
	cfg := testAuthConfig(t)
	svc := NewAuthService(OpenAuthProvider{}, &memStateRepo{}, cfg)
	svc.now = func() time.Time { return fixedNow }

	res, err := svc.Login(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "admin", res.User.Username)

	svc.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	_, err = svc.ValidateToken(res.Token)
	assert.ErrorIs(t, err, ErrUnauthorized, "expired")

	_, err = svc.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin", "exp": fixedNow.Add(time.Hour).Unix()})
	forged, err := other.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow }
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
