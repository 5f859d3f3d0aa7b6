package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"coachmarket-backend/internal/features/review/models"
	"coachmarket-backend/internal/features/review/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.ReviewRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (request_id, coach_id, reviewer_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		review.RequestID, review.CoachID, review.ReviewerID, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		// unique request_id: each request is reviewed at most once.
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListByCoach(ctx context.Context, coachID int64) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_id, coach_id, reviewer_id, rating, comment, created_at
		FROM reviews
		WHERE coach_id = $1
		ORDER BY created_at DESC
	`, coachID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		var rv models.Review
		err := rows.Scan(&rv.ID, &rv.RequestID, &rv.CoachID, &rv.ReviewerID,
			&rv.Rating, &rv.Comment, &rv.CreatedAt)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, &rv)
	}
	return reviews, rows.Err()
}
