package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"coachmarket-backend/internal/features/listing/models"
	"coachmarket-backend/internal/features/listing/repository"
)

const serviceColumns = `id, application_id, user_id, game_id, title, description,
	price, is_active, created_at, updated_at`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.ListingRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListServices(ctx context.Context, filter models.ServiceFilter) ([]*models.PublishedService, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + serviceColumns + ` FROM published_services WHERE is_active`
	args := []interface{}{}
	if filter.GameID != 0 {
		args = append(args, filter.GameID)
		query += fmt.Sprintf(` AND game_id = $%d`, len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*models.PublishedService
	for rows.Next() {
		var s models.PublishedService
		if err := rows.Scan(&s.ID, &s.ApplicationID, &s.UserID, &s.GameID,
			&s.Title, &s.Description, &s.Price, &s.IsActive,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, &s)
	}
	return services, rows.Err()
}

func (r *postgresRepository) GetServiceByID(ctx context.Context, id int64) (*models.PublishedService, error) {
	query := `SELECT ` + serviceColumns + ` FROM published_services WHERE id = $1`
	var s models.PublishedService
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.ApplicationID, &s.UserID, &s.GameID, &s.Title, &s.Description,
		&s.Price, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &s, nil
}

func (r *postgresRepository) SetServiceActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE published_services SET is_active = $2, updated_at = NOW() WHERE id = $1`,
		id, active)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrServiceNotFound
	}
	return nil
}

const coachQuery = `
	SELECT u.id, u.full_name, p.bio, u.created_at,
		COALESCE(ARRAY_AGG(s.name) FILTER (WHERE s.name IS NOT NULL), '{}'),
		COALESCE(AVG(r.rating), 0),
		COUNT(DISTINCT r.id)
	FROM users u
	JOIN employee_profiles p ON p.user_id = u.id
	LEFT JOIN employee_specializations s ON s.user_id = u.id
	LEFT JOIN reviews r ON r.coach_id = u.id
	WHERE u.is_employee
`

func (r *postgresRepository) ListCoaches(ctx context.Context) ([]*models.Coach, error) {
	query := coachQuery + ` GROUP BY u.id, u.full_name, p.bio, u.created_at ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list coaches: %w", err)
	}
	defer rows.Close()

	var coaches []*models.Coach
	for rows.Next() {
		coach, err := scanCoach(rows)
		if err != nil {
			return nil, err
		}
		coaches = append(coaches, coach)
	}
	return coaches, rows.Err()
}

func (r *postgresRepository) GetCoach(ctx context.Context, userID int64) (*models.Coach, error) {
	query := coachQuery + ` AND u.id = $1 GROUP BY u.id, u.full_name, p.bio, u.created_at`
	coach, err := scanCoach(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrCoachNotFound
		}
		return nil, fmt.Errorf("failed to get coach: %w", err)
	}
	return coach, nil
}

func (r *postgresRepository) AddSpecialization(ctx context.Context, userID int64, name string) error {
	query := `
		INSERT INTO employee_specializations (user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID, name)
	if err != nil {
		return fmt.Errorf("failed to add specialization: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCoach(row rowScanner) (*models.Coach, error) {
	var c models.Coach
	var specs pq.StringArray
	if err := row.Scan(&c.UserID, &c.FullName, &c.Bio, &c.JoinedAt,
		&specs, &c.AverageRating, &c.ReviewCount); err != nil {
		return nil, err
	}
	c.Specializations = []string(specs)
	return &c, nil
}
