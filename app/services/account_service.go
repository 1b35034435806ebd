package services

import (
	"context"
	"errors"
	"time"

	"github.com/chefbazaar/backend/app/models"
	"github.com/chefbazaar/backend/app/repositories"
	"github.com/chefbazaar/backend/pkg/apperr"
	"github.com/chefbazaar/backend/pkg/auth"
	"github.com/chefbazaar/backend/pkg/metrics"
)

// AccountService owns account creation, sign-in, and the fraud flag.
type AccountService struct {
	users repositories.UserRepository
}

func NewAccountService(users repositories.UserRepository) *AccountService {
	return &AccountService{users: users}
}

// CreateUserInput is the first-sign-in payload.
type CreateUserInput struct {
	UID         string `json:"uid" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required"`
	Address     string `json:"address"`
}

// Create records an account at first sign-in. Idempotent: a repeat call for
// an existing email is a no-op; the caller is told the account already
// exists via the created return.
func (s *AccountService) Create(ctx context.Context, in CreateUserInput) (created bool, err error) {
	user := &models.User{
		UID:         in.UID,
		Email:       in.Email,
		DisplayName: in.DisplayName,
		Address:     in.Address,
		Role:        models.RoleUser,
		Status:      models.StatusActive,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.users.Create(ctx, user)
	if errors.Is(err, repositories.ErrDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to create user", err)
	}
	return true, nil
}

// RegisterInput is the password sign-up payload.
type RegisterInput struct {
	DisplayName string `json:"displayName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Address     string `json:"address"`
}

// Register creates a password-backed account and returns a bearer token.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (string, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}

	user := &models.User{
		UID:          "local:" + in.Email,
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		Address:      in.Address,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return "", apperr.New(apperr.AlreadyExists, "account already exists")
		}
		return "", apperr.Wrap(apperr.Internal, "failed to create user", err)
	}

	token, err := auth.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to issue token", err)
	}
	return token, nil
}

// Login verifies a password and returns a bearer token.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", apperr.New(apperr.Unauthenticated, "invalid credentials")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to load user", err)
	}

	if user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, password) {
		return "", apperr.New(apperr.Unauthenticated, "invalid credentials")
	}

	token, err := auth.GenerateToken(user.UID, user.Email)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to issue token", err)
	}
	return token, nil
}

// Get loads one account by email.
func (s *AccountService) Get(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to load user", err)
	}
	return user, nil
}

// MarkFraud flags an account. Admin accounts can never be flagged, and
// flagging is one-way: there is no unflag operation.
func (s *AccountService) MarkFraud(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to load user", err)
	}

	if user.Role == models.RoleAdmin {
		return apperr.New(apperr.Forbidden, "admin accounts cannot be flagged")
	}
	if user.IsFraud() {
		return apperr.New(apperr.AlreadyExists, "account is already flagged")
	}

	if _, err := s.users.SetStatus(ctx, email, models.StatusFraud); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to flag account", err)
	}

	metrics.FraudFlags.Inc()
	return nil
}

// List returns accounts with pagination.
func (s *AccountService) List(ctx context.Context, page, limit int64) ([]models.User, int64, error) {
	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, "failed to list users", err)
	}
	return users, total, nil
}
