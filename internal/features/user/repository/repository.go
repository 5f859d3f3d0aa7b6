package repository

import (
	"context"
	"errors"

	"coachmarket-backend/internal/features/user/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id int64, fullName string) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	// IncrementFailedLogins bumps the failed attempt counter and returns the
	// new value.
	IncrementFailedLogins(ctx context.Context, id int64) (int, error)
	// RecordLoginSuccess resets the counter and stamps the last login time.
	RecordLoginSuccess(ctx context.Context, id int64) error
	// Unblock clears the blocked status and the failed attempt counter.
	Unblock(ctx context.Context, id int64) error
}
