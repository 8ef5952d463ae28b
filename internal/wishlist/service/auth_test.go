package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ataraxii/wishlist/pkg/errors"

	"github.com/ataraxii/wishlist/internal/wishlist/domain"
)

func newTestAuthService(userRepo *mockUserRepository, tokenRepo *mockRefreshTokenRepository) *AuthService {
	return NewAuthService(userRepo, tokenRepo, newTestJWTManager(), newTestEventProducer(), newTestLogger())
}

func TestAuthService_Register(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" && u.PasswordHash != "" && u.PasswordHash != "password123"
	})).Return(nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userRepo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.Conflict("user", "username", "alice"))

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Password: "password123",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_Register_UsernameTooLong(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: strings.Repeat("a", 33),
		Password: "password123",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "at most 32")
	userRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Password: "short",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	userRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_Login(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userRepo.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: hashForTest("password123"),
	}, nil)
	tokenRepo.On("Store", mock.Anything, mock.MatchedBy(func(rt *domain.RefreshToken) bool {
		return rt.UserID == "user-1" && rt.TokenHash != ""
	})).Return(nil)

	user, tokens, err := svc.Login(context.Background(), LoginInput{
		Username: "alice",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Positive(t, tokens.ExpiresIn)
	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

func TestAuthService_Login_UnknownUsername(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userRepo.On("GetByUsername", mock.Anything, "ghost").
		Return(nil, apperrors.NotFoundMsg("user not found"))

	_, _, err := svc.Login(context.Background(), LoginInput{
		Username: "ghost",
		Password: "password123",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	userRepo.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: hashForTest("password123"),
	}, nil)

	_, _, err := svc.Login(context.Background(), LoginInput{
		Username: "alice",
		Password: "wrong-password",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	tokenRepo.AssertNotCalled(t, "Store")
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	refreshToken, err := newTestJWTManager().GenerateRefreshToken("user-1")
	require.NoError(t, err)
	storedHash := hashToken(refreshToken)

	tokenRepo.On("GetByHash", mock.Anything, storedHash).Return(&domain.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		TokenHash: storedHash,
	}, nil)
	userRepo.On("GetByID", mock.Anything, "user-1").Return(&domain.User{
		ID:       "user-1",
		Username: "alice",
	}, nil)
	tokenRepo.On("Delete", mock.Anything, storedHash).Return(nil)
	tokenRepo.On("Store", mock.Anything, mock.MatchedBy(func(rt *domain.RefreshToken) bool {
		return rt.UserID == "user-1" && rt.TokenHash != storedHash
	})).Return(nil)

	tokens, err := svc.Refresh(context.Background(), refreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEqual(t, refreshToken, tokens.RefreshToken)
	tokenRepo.AssertExpectations(t)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	tokenRepo.AssertNotCalled(t, "GetByHash")
}

func TestAuthService_Refresh_RevokedToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	refreshToken, err := newTestJWTManager().GenerateRefreshToken("user-1")
	require.NoError(t, err)

	tokenRepo.On("GetByHash", mock.Anything, hashToken(refreshToken)).
		Return(nil, apperrors.Unauthorized("invalid or expired refresh token"))

	_, err = svc.Refresh(context.Background(), refreshToken)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Logout(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	refreshToken, err := newTestJWTManager().GenerateRefreshToken("user-1")
	require.NoError(t, err)

	tokenRepo.On("Delete", mock.Anything, hashToken(refreshToken)).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), refreshToken))
	tokenRepo.AssertExpectations(t)
}

func TestAuthService_ValidateAccessToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)

	token, err := newTestJWTManager().GenerateAccessToken("user-1", "alice")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}
