package repository

import (
	"context"
	"errors"

	"coachmarket-backend/internal/features/admin/models"
)

var (
	ErrAdminNotFound = errors.New("admin not found")
	ErrEmailTaken    = errors.New("email already registered")
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	List(ctx context.Context) ([]*models.Admin, error)
	Update(ctx context.Context, id int64, fullName, role string) error
	Delete(ctx context.Context, id int64) error
	IncrementFailedLogins(ctx context.Context, id int64) (int, error)
	RecordLoginSuccess(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Unblock(ctx context.Context, id int64) error

	InsertLog(ctx context.Context, entry *models.AdminLog) error
	ListLogs(ctx context.Context, limit, offset int) ([]*models.AdminLog, error)

	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	Analytics(ctx context.Context) (*models.Analytics, error)
}
