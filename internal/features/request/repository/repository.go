package repository

import (
	"context"
	"errors"

	"coachmarket-backend/internal/features/request/models"
)

var (
	ErrRequestNotFound    = errors.New("request not found")
	ErrCompletionNotFound = errors.New("completion not found")
	// ErrIllegalTransition is returned when the locked row is not in a state
	// the requested transition is legal from. A losing concurrent actor sees
	// this instead of silently overwriting.
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrNotParticipant    = errors.New("caller is not a participant of this request")
)

type RequestRepository interface {
	Create(ctx context.Context, req *models.ServiceRequest) error
	GetByID(ctx context.Context, id int64) (*models.ServiceRequest, error)
	ListByParticipant(ctx context.Context, userID int64) ([]*models.ServiceRequest, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.ServiceRequest, error)

	// All transition methods lock the request row FOR UPDATE, re-verify the
	// acting party and the legality of the transition, and commit
	// atomically.
	Accept(ctx context.Context, id, employeeID int64) (*models.ServiceRequest, error)
	Confirm(ctx context.Context, id, requesterID int64) (*models.ServiceRequest, error)
	Cancel(ctx context.Context, id, actorID int64) (*models.ServiceRequest, error)
	Complete(ctx context.Context, id, employeeID int64, notes string) (*models.ServiceRequest, error)
	// ApproveCompletion closes the request: stamps the completion, records
	// the transaction, credits the employee wallet with amount minus
	// commission and archives the chat, all in one transaction. It requires
	// the latest completion to be pending_review, which makes re-approval a
	// conflict instead of a double payout.
	ApproveCompletion(ctx context.Context, id int64, adminNotes string) (*models.CloseResult, error)
	ReopenCompletion(ctx context.Context, id int64, adminNotes string) (*models.ServiceRequest, error)

	LatestCompletion(ctx context.Context, requestID int64) (*models.ServiceCompletion, error)
	ListPendingCompletions(ctx context.Context) ([]*models.ServiceCompletion, error)
}
