package repository

import (
	"context"
	"errors"

	"coachmarket-backend/internal/features/game/models"
)

var ErrGameNotFound = errors.New("game not found")

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id int64) (*models.Game, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Game, error)
	Update(ctx context.Context, game *models.Game) error
	// Deactivate retires a game and deactivates its published services in
	// one transaction.
	Deactivate(ctx context.Context, id int64) error
}
