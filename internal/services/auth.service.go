package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lexora/translation-gateway/internal/auth"
	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type AuthConfig struct {
	JWTSecret     string
	TokenLifetime time.Duration
}

// AuthService handles registration and login. Every registered user
// gets a zero-balance wallet in the same transaction.
type AuthService struct {
	userRepo      UserRepository
	walletRepo    WalletRepository
	jwtSecret     string
	tokenLifetime time.Duration
}

func NewAuthService(userRepo UserRepository, walletRepo WalletRepository, config AuthConfig) *AuthService {
	if config.TokenLifetime <= 0 {
		config.TokenLifetime = 24 * time.Hour
	}
	return &AuthService{
		userRepo:      userRepo,
		walletRepo:    walletRepo,
		jwtSecret:     config.JWTSecret,
		tokenLifetime: config.TokenLifetime,
	}
}

// Register validates the credentials, stores the user with a bcrypt
// hash, and provisions the wallet. A racing registration of the same
// email loses on the unique constraint and gets ErrEmailTaken, the same
// answer the pre-check gives.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := model.NormalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created *model.User
	err = s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.userRepo.Create(ctx, &model.User{
			Email:        email,
			PasswordHash: hash,
		})
		if err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}

		if _, err := s.walletRepo.GetOrCreate(ctx, created.ID); err != nil {
			return fmt.Errorf("create wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies the password and issues an access token. Unknown email
// and wrong password return the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.IsAdmin, s.jwtSecret, s.tokenLifetime)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
