package repository

import (
	"context"
	"errors"

	"coachmarket-backend/internal/features/listing/models"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrCoachNotFound   = errors.New("coach not found")
)

type ListingRepository interface {
	ListServices(ctx context.Context, filter models.ServiceFilter) ([]*models.PublishedService, error)
	GetServiceByID(ctx context.Context, id int64) (*models.PublishedService, error)
	SetServiceActive(ctx context.Context, id int64, active bool) error
	ListCoaches(ctx context.Context) ([]*models.Coach, error)
	GetCoach(ctx context.Context, userID int64) (*models.Coach, error)
	AddSpecialization(ctx context.Context, userID int64, name string) error
}
