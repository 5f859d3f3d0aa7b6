package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"coachmarket-backend/internal/features/admin/models"
	"coachmarket-backend/internal/features/admin/repository"
	usermodels "coachmarket-backend/internal/features/user/models"
)

var (
	ErrAdminNotFound = repository.ErrAdminNotFound
	ErrEmailTaken    = repository.ErrEmailTaken
)

const adminColumns = `id, email, password_hash, full_name, role, account_status,
	failed_login_attempts, last_login_at, created_at, updated_at`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.AdminRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, admin *models.Admin) error {
	query := `
		INSERT INTO admins (email, password_hash, full_name, role, account_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		admin.Email, admin.PasswordHash, admin.FullName, admin.Role, admin.AccountStatus).
		Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresRepository) List(ctx context.Context) ([]*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []*models.Admin
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Role,
			&a.AccountStatus, &a.FailedLoginAttempts, &a.LastLoginAt,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		admins = append(admins, &a)
	}
	return admins, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, id int64, fullName, role string) error {
	query := `UPDATE admins SET full_name = $2, role = $3, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id, fullName, role)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
}

func (r *postgresRepository) IncrementFailedLogins(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE admins
		SET failed_login_attempts = failed_login_attempts + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING failed_login_attempts
	`
	var attempts int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAdminNotFound
		}
		return 0, fmt.Errorf("failed to increment failed logins: %w", err)
	}
	return attempts, nil
}

func (r *postgresRepository) RecordLoginSuccess(ctx context.Context, id int64) error {
	query := `
		UPDATE admins
		SET failed_login_attempts = 0, last_login_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, id)
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE admins SET account_status = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id, status)
}

func (r *postgresRepository) Unblock(ctx context.Context, id int64) error {
	query := `
		UPDATE admins
		SET account_status = $2, failed_login_attempts = 0, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, usermodels.StatusActive)
}

func (r *postgresRepository) InsertLog(ctx context.Context, entry *models.AdminLog) error {
	query := `
		INSERT INTO admin_logs (admin_id, action, target_type, target_id, details, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.AdminID, entry.Action, entry.TargetType, entry.TargetID,
		entry.Details, entry.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to insert admin log: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListLogs(ctx context.Context, limit, offset int) ([]*models.AdminLog, error) {
	query := `
		SELECT id, admin_id, action, target_type, target_id, details, ip_address, created_at
		FROM admin_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AdminLog
	for rows.Next() {
		var l models.AdminLog
		if err := rows.Scan(&l.ID, &l.AdminID, &l.Action, &l.TargetType,
			&l.TargetID, &l.Details, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

func (r *postgresRepository) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_employee),
			(SELECT COUNT(*) FROM published_services WHERE is_active),
			(SELECT COUNT(*) FROM service_applications WHERE status = 'pending'),
			(SELECT COUNT(*) FROM service_completions WHERE status = 'pending_review'),
			(SELECT COUNT(*) FROM service_requests WHERE status NOT IN ('closed', 'cancelled'))
	`
	var stats models.DashboardStats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalUsers, &stats.TotalEmployees, &stats.ActiveServices,
		&stats.PendingApplication, &stats.PendingCompletions, &stats.OpenRequests)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &stats, nil
}

func (r *postgresRepository) Analytics(ctx context.Context) (*models.Analytics, error) {
	analytics := &models.Analytics{RequestsByStatus: make(map[string]int64)}

	query := `
		SELECT COUNT(*), COALESCE(SUM(gross_amount), 0), COALESCE(SUM(commission), 0)
		FROM transactions
	`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&analytics.ClosedRequests, &analytics.GrossVolume, &analytics.Revenue)
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM service_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to load request counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		analytics.RequestsByStatus[status] = count
	}
	return analytics, rows.Err()
}

func (r *postgresRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *postgresRepository) scanOne(row *sql.Row) (*models.Admin, error) {
	var a models.Admin
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Role,
		&a.AccountStatus, &a.FailedLoginAttempts, &a.LastLoginAt,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}
