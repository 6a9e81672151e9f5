package services

import (
	"context"
	"testing"

	"github.com/lexora/translation-gateway/internal/auth"
	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthService(users *MockUserRepository, wallets *MockWalletRepository) *AuthService {
	return NewAuthService(users, wallets, AuthConfig{JWTSecret: "test-secret"})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and wallet", func(t *testing.T) {
		users := new(MockUserRepository)
		wallets := new(MockWalletRepository)
		service := newAuthService(users, wallets)

		users.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)
		wallets.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			// Normalized email, never the plaintext password.
			return u.Email == "alice@example.com" &&
				u.PasswordHash != "" &&
				u.PasswordHash != "Str0ngPass" &&
				auth.CheckPassword("Str0ngPass", u.PasswordHash)
		})).Return(&model.User{ID: "user-1", Email: "alice@example.com"}, nil)
		wallets.On("GetOrCreate", mock.Anything, "user-1").Return(&model.Wallet{UserID: "user-1"}, nil)

		created, err := service.Register(ctx, model.RegisterRequest{
			Email:    "  Alice@Example.COM ",
			Password: "Str0ngPass",
		})
		require.NoError(t, err)
		assert.Equal(t, "user-1", created.ID)

		users.AssertExpectations(t)
		wallets.AssertExpectations(t)
	})

	t.Run("rejects taken email", func(t *testing.T) {
		users := new(MockUserRepository)
		wallets := new(MockWalletRepository)
		service := newAuthService(users, wallets)

		users.On("ExistsByEmail", ctx, "alice@example.com").Return(true, nil)

		_, err := service.Register(ctx, model.RegisterRequest{
			Email:    "alice@example.com",
			Password: "Str0ngPass",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("maps constraint race to the same error", func(t *testing.T) {
		users := new(MockUserRepository)
		wallets := new(MockWalletRepository)
		service := newAuthService(users, wallets)

		users.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)
		wallets.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		users.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrEmailTaken)

		_, err := service.Register(ctx, model.RegisterRequest{
			Email:    "alice@example.com",
			Password: "Str0ngPass",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("rejects invalid input before any lookup", func(t *testing.T) {
		users := new(MockUserRepository)
		wallets := new(MockWalletRepository)
		service := newAuthService(users, wallets)

		_, err := service.Register(ctx, model.RegisterRequest{Email: "not-an-email", Password: "Str0ngPass"})
		assert.ErrorIs(t, err, model.ErrInvalidEmail)

		_, err = service.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "short"})
		assert.ErrorIs(t, err, model.ErrWeakPassword)

		users.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := auth.HashPassword("Str0ngPass")
	require.NoError(t, err)
	stored := &model.User{ID: "user-1", Email: "alice@example.com", PasswordHash: hash}

	t.Run("issues a parseable token", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newAuthService(users, new(MockWalletRepository))

		users.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)

		token, user, err := service.Login(ctx, "alice@example.com", "Str0ngPass")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)

		claims, err := auth.ParseToken(token, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.False(t, claims.IsAdmin)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newAuthService(users, new(MockWalletRepository))

		users.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)

		_, _, err := service.Login(ctx, "alice@example.com", "WrongPass1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		users := new(MockUserRepository)
		service := newAuthService(users, new(MockWalletRepository))

		users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

		_, _, err := service.Login(ctx, "nobody@example.com", "Str0ngPass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_GetProfile(t *testing.T) {
	ctx := context.Background()

	users := new(MockUserRepository)
	service := newAuthService(users, new(MockWalletRepository))

	users.On("GetByID", ctx, "user-1").Return(&model.User{ID: "user-1", Email: "alice@example.com"}, nil)
	users.On("GetByID", ctx, "missing").Return(nil, repository.ErrUserNotFound)

	user, err := service.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = service.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
