package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/pkg/jwt"
	"github.com/revpulse/feedback_go_server/internal/repository"
	"github.com/revpulse/feedback_go_server/internal/testutil"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 24},
	}
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestAuthService_Register(t *testing.T) {
	svc := setupAuthService(t)

	resp, err := svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)

	user, err := svc.GetProfile(resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "operator", user.Role)
	// 密码必须加密存储
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(&dto.RegisterRequest{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "password456",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice2@example.com",
		Password: "password456",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestAuthService_Login(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	resp, err := svc.Login(&dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.NotEmpty(t, resp.Token)

	claims, err := jwt.ParseToken(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Login(&dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetProfile_NotFound(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.GetProfile(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
