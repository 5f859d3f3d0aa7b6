package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"coachmarket-backend/internal/features/application/models"
	"coachmarket-backend/internal/features/application/repository"
	listingmodels "coachmarket-backend/internal/features/listing/models"
)

const appColumns = `id, user_id, game_id, title, description, price, status,
	review_notes, created_at, updated_at`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.ApplicationRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, app *models.ServiceApplication) error {
	query := `
		INSERT INTO service_applications (user_id, game_id, title, description, price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		app.UserID, app.GameID, app.Title, app.Description, app.Price, models.StatusPending).
		Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if isDuplicatePending(err) {
			return repository.ErrDuplicatePending
		}
		return fmt.Errorf("failed to create application: %w", err)
	}
	app.Status = models.StatusPending
	return nil
}

// isDuplicatePending reports whether the partial unique index on pending
// applications rejected the write. 23505 = unique_violation.
func isDuplicatePending(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.ServiceApplication, error) {
	query := `SELECT ` + appColumns + ` FROM service_applications WHERE id = $1`
	return scanApplication(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.ServiceApplication, error) {
	query := `SELECT ` + appColumns + ` FROM service_applications WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *postgresRepository) ListPending(ctx context.Context) ([]*models.ServiceApplication, error) {
	query := `SELECT ` + appColumns + ` FROM service_applications WHERE status = $1 ORDER BY created_at`
	return r.list(ctx, query, models.StatusPending)
}

// Update rewrites the editable fields and resets the status to pending so
// the application goes back for review.
func (r *postgresRepository) Update(ctx context.Context, app *models.ServiceApplication) error {
	query := `
		UPDATE service_applications
		SET title = $2, description = $3, price = $4, status = $5, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		app.ID, app.Title, app.Description, app.Price, models.StatusPending)
	if err != nil {
		// An edit resets a decided application to pending, so it can also
		// collide with an existing pending pitch for the same game.
		if isDuplicatePending(err) {
			return repository.ErrDuplicatePending
		}
		return fmt.Errorf("failed to update application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrApplicationNotFound
	}
	app.Status = models.StatusPending
	return nil
}

func (r *postgresRepository) Approve(ctx context.Context, id int64) (*listingmodels.PublishedService, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the row so two admins cannot decide the same application.
	app, err := scanApplication(tx.QueryRowContext(ctx,
		`SELECT `+appColumns+` FROM service_applications WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusPending {
		return nil, repository.ErrAlreadyDecided
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE service_applications SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, models.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to approve application: %w", err)
	}

	// The listing copies the application's fields as they are at approval
	// time.
	service := &listingmodels.PublishedService{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		GameID:        app.GameID,
		Title:         app.Title,
		Description:   app.Description,
		Price:         app.Price,
		IsActive:      true,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO published_services (application_id, user_id, game_id, title, description, price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id, created_at, updated_at
	`, app.ID, app.UserID, app.GameID, app.Title, app.Description, app.Price).
		Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to publish service: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET is_employee = TRUE, updated_at = NOW() WHERE id = $1`, app.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO employee_profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, app.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure employee profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}
	return service, nil
}

func (r *postgresRepository) Reject(ctx context.Context, id int64, notes string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	app, err := scanApplication(tx.QueryRowContext(ctx,
		`SELECT `+appColumns+` FROM service_applications WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return err
	}
	if app.Status != models.StatusPending {
		return repository.ErrAlreadyDecided
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE service_applications
		SET status = $2, review_notes = $3, updated_at = NOW()
		WHERE id = $1
	`, id, models.StatusRejected, notes)
	if err != nil {
		return fmt.Errorf("failed to reject application: %w", err)
	}
	return tx.Commit()
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.ServiceApplication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.ServiceApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.ServiceApplication, error) {
	var app models.ServiceApplication
	err := row.Scan(&app.ID, &app.UserID, &app.GameID, &app.Title, &app.Description,
		&app.Price, &app.Status, &app.ReviewNotes, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}
