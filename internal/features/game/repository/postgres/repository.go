package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"coachmarket-backend/internal/features/game/models"
	"coachmarket-backend/internal/features/game/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.GameRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (name, description, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING id, is_active, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, game.Name, game.Description).
		Scan(&game.ID, &game.IsActive, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	query := `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM games WHERE id = $1
	`
	var g models.Game
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Description, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &g, nil
}

func (r *postgresRepository) List(ctx context.Context, activeOnly bool) ([]*models.Game, error) {
	query := `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM games
	`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.IsActive,
			&g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		games = append(games, &g)
	}
	return games, rows.Err()
}

// Update rewrites the game. An inactive game takes its published services
// down in the same transaction, so a listing can never outlive its game.
func (r *postgresRepository) Update(ctx context.Context, game *models.Game) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE games
		SET name = $2, description = $3, is_active = $4, updated_at = NOW()
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query, game.ID, game.Name, game.Description, game.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrGameNotFound
	}

	if !game.IsActive {
		_, err = tx.ExecContext(ctx,
			`UPDATE published_services SET is_active = FALSE, updated_at = NOW() WHERE game_id = $1`,
			game.ID)
		if err != nil {
			return fmt.Errorf("failed to deactivate game services: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) Deactivate(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE games SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate game: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrGameNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE published_services SET is_active = FALSE, updated_at = NOW() WHERE game_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate game services: %w", err)
	}

	return tx.Commit()
}
