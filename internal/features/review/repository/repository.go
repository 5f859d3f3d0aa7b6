package repository

import (
	"context"
	"errors"

	"coachmarket-backend/internal/features/review/models"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrAlreadyExists  = errors.New("request already reviewed")
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByCoach(ctx context.Context, coachID int64) ([]*models.Review, error)
}
