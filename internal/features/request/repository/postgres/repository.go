package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"coachmarket-backend/internal/features/request/models"
	"coachmarket-backend/internal/features/request/repository"
)

const requestColumns = `id, service_id, requester_id, employee_id, amount,
	service_details, status, created_at, updated_at`

const completionColumns = `id, request_id, employee_notes, admin_notes, status,
	created_at, updated_at`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.RequestRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, req *models.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (service_id, requester_id, employee_id, amount, service_details, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		req.ServiceID, req.RequesterID, req.EmployeeID, req.Amount,
		req.ServiceDetails, models.StatusPending).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Status = models.StatusPending
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id = $1`
	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

func (r *postgresRepository) ListByParticipant(ctx context.Context, userID int64) ([]*models.ServiceRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM service_requests
		WHERE requester_id = $1 OR employee_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *postgresRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.ServiceRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT ` + requestColumns + ` FROM service_requests ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

// lockRequest reads the request row FOR UPDATE inside tx.
func lockRequest(ctx context.Context, tx *sql.Tx, id int64) (*models.ServiceRequest, error) {
	req, err := scanRequest(tx.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to lock request: %w", err)
	}
	return req, nil
}

func setStatus(ctx context.Context, tx *sql.Tx, id int64, status models.Status) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE service_requests SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	return nil
}

func (r *postgresRepository) Accept(ctx context.Context, id, employeeID int64) (*models.ServiceRequest, error) {
	return r.transition(ctx, id, models.StatusEmployeeAccepted, func(req *models.ServiceRequest) error {
		if req.EmployeeID != employeeID {
			return repository.ErrNotParticipant
		}
		return nil
	}, nil)
}

func (r *postgresRepository) Confirm(ctx context.Context, id, requesterID int64) (*models.ServiceRequest, error) {
	return r.transition(ctx, id, models.StatusInProgress, func(req *models.ServiceRequest) error {
		if req.RequesterID != requesterID {
			return repository.ErrNotParticipant
		}
		return nil
	}, func(ctx context.Context, tx *sql.Tx, req *models.ServiceRequest) error {
		// Confirmation unlocks the chat.
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chats (request_id) VALUES ($1)
			ON CONFLICT (request_id) DO NOTHING
		`, req.ID)
		if err != nil {
			return fmt.Errorf("failed to create chat: %w", err)
		}
		return nil
	})
}

func (r *postgresRepository) Cancel(ctx context.Context, id, actorID int64) (*models.ServiceRequest, error) {
	return r.transition(ctx, id, models.StatusCancelled, func(req *models.ServiceRequest) error {
		if req.RequesterID != actorID && req.EmployeeID != actorID {
			return repository.ErrNotParticipant
		}
		return nil
	}, nil)
}

func (r *postgresRepository) Complete(ctx context.Context, id, employeeID int64, notes string) (*models.ServiceRequest, error) {
	return r.transition(ctx, id, models.StatusPendingCompletion, func(req *models.ServiceRequest) error {
		if req.EmployeeID != employeeID {
			return repository.ErrNotParticipant
		}
		return nil
	}, func(ctx context.Context, tx *sql.Tx, req *models.ServiceRequest) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO service_completions (request_id, employee_notes, status)
			VALUES ($1, $2, $3)
		`, req.ID, notes, models.CompletionPendingReview)
		if err != nil {
			return fmt.Errorf("failed to create completion: %w", err)
		}
		return nil
	})
}

// transition is the single path every lifecycle move goes through.
func (r *postgresRepository) transition(
	ctx context.Context,
	id int64,
	target models.Status,
	authorize func(*models.ServiceRequest) error,
	sideEffects func(context.Context, *sql.Tx, *models.ServiceRequest) error,
) (*models.ServiceRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := lockRequest(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if authorize != nil {
		if err := authorize(req); err != nil {
			return nil, err
		}
	}
	if !req.Status.CanTransitionTo(target) {
		return nil, repository.ErrIllegalTransition
	}

	if err := setStatus(ctx, tx, id, target); err != nil {
		return nil, err
	}
	if sideEffects != nil {
		if err := sideEffects(ctx, tx, req); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}
	req.Status = target
	return req, nil
}

func (r *postgresRepository) ApproveCompletion(ctx context.Context, id int64, adminNotes string) (*models.CloseResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := lockRequest(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransitionTo(models.StatusClosed) {
		return nil, repository.ErrIllegalTransition
	}

	// Guard against re-approving an already settled completion: only a
	// pending_review completion can be closed, so the payout happens at
	// most once.
	completion, err := lockLatestCompletion(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if completion.Status != models.CompletionPendingReview {
		return nil, repository.ErrIllegalTransition
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE service_completions
		SET status = $2, admin_notes = $3, updated_at = NOW()
		WHERE id = $1
	`, completion.ID, models.CompletionClosed, adminNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to close completion: %w", err)
	}

	if err := setStatus(ctx, tx, id, models.StatusClosed); err != nil {
		return nil, err
	}

	commission, earnings := models.SplitAmount(req.Amount)
	txn := &models.Transaction{
		RequestID:   req.ID,
		PayerID:     req.RequesterID,
		PayeeID:     req.EmployeeID,
		GrossAmount: req.Amount,
		Commission:  commission,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO transactions (request_id, payer_id, payee_id, gross_amount, commission)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, txn.RequestID, txn.PayerID, txn.PayeeID, txn.GrossAmount, txn.Commission).
		Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET wallet_balance = wallet_balance + $2, updated_at = NOW()
		WHERE id = $1
	`, req.EmployeeID, earnings)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE chats SET is_archived = TRUE WHERE request_id = $1`, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to archive chat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit closure: %w", err)
	}
	req.Status = models.StatusClosed
	return &models.CloseResult{Request: req, Transaction: txn}, nil
}

func (r *postgresRepository) ReopenCompletion(ctx context.Context, id int64, adminNotes string) (*models.ServiceRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := lockRequest(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPendingCompletion {
		return nil, repository.ErrIllegalTransition
	}

	completion, err := lockLatestCompletion(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if completion.Status != models.CompletionPendingReview {
		return nil, repository.ErrIllegalTransition
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE service_completions
		SET status = $2, admin_notes = $3, updated_at = NOW()
		WHERE id = $1
	`, completion.ID, models.CompletionNeedsRevision, adminNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen completion: %w", err)
	}

	// The chat stays open; only the request goes back to in_progress.
	if err := setStatus(ctx, tx, id, models.StatusInProgress); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reopen: %w", err)
	}
	req.Status = models.StatusInProgress
	return req, nil
}

func lockLatestCompletion(ctx context.Context, tx *sql.Tx, requestID int64) (*models.ServiceCompletion, error) {
	completion, err := scanCompletion(tx.QueryRowContext(ctx, `
		SELECT `+completionColumns+` FROM service_completions
		WHERE request_id = $1
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrCompletionNotFound
		}
		return nil, fmt.Errorf("failed to lock completion: %w", err)
	}
	return completion, nil
}

func (r *postgresRepository) LatestCompletion(ctx context.Context, requestID int64) (*models.ServiceCompletion, error) {
	completion, err := scanCompletion(r.db.QueryRowContext(ctx, `
		SELECT `+completionColumns+` FROM service_completions
		WHERE request_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrCompletionNotFound
		}
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}
	return completion, nil
}

func (r *postgresRepository) ListPendingCompletions(ctx context.Context) ([]*models.ServiceCompletion, error) {
	query := `
		SELECT ` + completionColumns + ` FROM service_completions
		WHERE status = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, models.CompletionPendingReview)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending completions: %w", err)
	}
	defer rows.Close()

	var completions []*models.ServiceCompletion
	for rows.Next() {
		completion, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, completion)
	}
	return completions, rows.Err()
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.ServiceRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ServiceRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	err := row.Scan(&req.ID, &req.ServiceID, &req.RequesterID, &req.EmployeeID,
		&req.Amount, &req.ServiceDetails, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func scanCompletion(row rowScanner) (*models.ServiceCompletion, error) {
	var c models.ServiceCompletion
	err := row.Scan(&c.ID, &c.RequestID, &c.EmployeeNotes, &c.AdminNotes,
		&c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
