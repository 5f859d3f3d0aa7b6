package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the service-request lifecycle state. Transitions go through
// CanTransitionTo; nothing else writes the status column.
type Status string

const (
	StatusPending           Status = "pending"
	StatusEmployeeAccepted  Status = "employee_accepted"
	StatusInProgress        Status = "in_progress"
	StatusPendingCompletion Status = "pending_completion"
	StatusClosed            Status = "closed"
	StatusCancelled         Status = "cancelled"
)

// transitions is the single source of truth for legal lifecycle moves.
// closed and cancelled are absorbing.
var transitions = map[Status][]Status{
	StatusPending:           {StatusEmployeeAccepted, StatusCancelled},
	StatusEmployeeAccepted:  {StatusInProgress, StatusCancelled},
	StatusInProgress:        {StatusPendingCompletion, StatusCancelled},
	StatusPendingCompletion: {StatusClosed, StatusInProgress},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether either party may still cancel.
func (s Status) Cancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// Completion status values.
const (
	CompletionPendingReview = "pending_review"
	CompletionClosed        = "closed"
	CompletionNeedsRevision = "needs_revision"
)

// CommissionRate is the platform's cut of a closed request.
var CommissionRate = decimal.RequireFromString("0.10")

// SplitAmount returns the commission and the employee earnings for a gross
// amount. The two always sum back to the gross amount exactly.
func SplitAmount(amount decimal.Decimal) (commission, earnings decimal.Decimal) {
	commission = amount.Mul(CommissionRate).Round(2)
	earnings = amount.Sub(commission)
	return commission, earnings
}

// ServiceRequest is one user's engagement of one employee for one service
// instance. Amount is copied from the service price at creation time and
// never re-read, so later price changes do not affect open requests.
type ServiceRequest struct {
	ID             int64           `json:"id"`
	ServiceID      int64           `json:"service_id"`
	RequesterID    int64           `json:"requester_id"`
	EmployeeID     int64           `json:"employee_id"`
	Amount         decimal.Decimal `json:"amount"`
	ServiceDetails string          `json:"service_details,omitempty"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ServiceCompletion is the employee's claim of finished work, pending admin
// sign-off. A reopened request accumulates completion records; the latest
// one is authoritative.
type ServiceCompletion struct {
	ID            int64     `json:"id"`
	RequestID     int64     `json:"request_id"`
	EmployeeNotes string    `json:"employee_notes,omitempty"`
	AdminNotes    string    `json:"admin_notes,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Transaction records the money split of a closed request.
type Transaction struct {
	ID          int64           `json:"id"`
	RequestID   int64           `json:"request_id"`
	PayerID     int64           `json:"payer_id"`
	PayeeID     int64           `json:"payee_id"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
	Commission  decimal.Decimal `json:"commission"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CreateRequestRequest struct {
	ServiceID      int64  `json:"service_id" binding:"required"`
	ServiceDetails string `json:"service_details"`
}

type CompleteRequest struct {
	Notes string `json:"notes"`
}

type ReviewCompletionRequest struct {
	Notes string `json:"notes"`
}

// CloseResult is what completion approval returns: the closed request and
// the recorded transaction.
type CloseResult struct {
	Request     *ServiceRequest `json:"request"`
	Transaction *Transaction    `json:"transaction"`
}
