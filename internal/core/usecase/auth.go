package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/core/ports"
)

const minPasswordLength = 8

type AuthUsecase struct {
	users  ports.UserRepository
	logger *slog.Logger
}

func NewAuthUsecase(users ports.UserRepository, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{users: users, logger: logger}
}

func (u *AuthUsecase) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "register", fmt.Errorf("name is required"))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "register", fmt.Errorf("invalid email address"))
	}
	if len(password) < minPasswordLength {
		return nil, domain.WrapError(domain.ErrInvalidInput, "register",
			fmt.Errorf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	u.logger.Info("user_registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials. A missing account and a wrong password are
// reported identically.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("invalid credentials"))
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("invalid credentials"))
	}

	u.logger.Info("user_logged_in", "user_id", user.ID)
	return user, nil
}

func (u *AuthUsecase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return u.users.GetByID(ctx, id)
}
