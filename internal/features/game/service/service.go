package service

import (
	"context"

	"coachmarket-backend/internal/common/validation"
	"coachmarket-backend/internal/features/game/models"
	"coachmarket-backend/internal/features/game/repository"
)

var ErrGameNotFound = repository.ErrGameNotFound

type GameService interface {
	CreateGame(ctx context.Context, req *models.CreateGameRequest) (*models.Game, error)
	GetGame(ctx context.Context, id int64) (*models.Game, error)
	ListGames(ctx context.Context, includeInactive bool) ([]*models.Game, error)
	UpdateGame(ctx context.Context, id int64, req *models.UpdateGameRequest) (*models.Game, error)
	DeactivateGame(ctx context.Context, id int64) error
}

type gameService struct {
	repo repository.GameRepository
}

func NewGameService(repo repository.GameRepository) GameService {
	return &gameService{repo: repo}
}

func (s *gameService) CreateGame(ctx context.Context, req *models.CreateGameRequest) (*models.Game, error) {
	name, err := validation.SanitizeText("name", req.Name)
	if err != nil {
		return nil, err
	}

	game := &models.Game{
		Name:        name,
		Description: validation.Sanitize(req.Description),
	}
	if err := s.repo.Create(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

func (s *gameService) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *gameService) ListGames(ctx context.Context, includeInactive bool) ([]*models.Game, error) {
	return s.repo.List(ctx, !includeInactive)
}

func (s *gameService) UpdateGame(ctx context.Context, id int64, req *models.UpdateGameRequest) (*models.Game, error) {
	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		name, err := validation.SanitizeText("name", req.Name)
		if err != nil {
			return nil, err
		}
		game.Name = name
	}
	if req.Description != "" {
		game.Description = validation.Sanitize(req.Description)
	}
	if req.IsActive != nil {
		game.IsActive = *req.IsActive
	}

	// Update cascades the listing deactivation inside its own transaction
	// when is_active drops.
	if err := s.repo.Update(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

func (s *gameService) DeactivateGame(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}
