package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Application status values. Editing a decided application resets it to
// pending so a rejected applicant can revise and resubmit the same record.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ServiceApplication is a coach's pitch awaiting admin review.
type ServiceApplication struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	GameID      int64           `json:"game_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
	ReviewNotes string          `json:"review_notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type CreateApplicationRequest struct {
	GameID      int64           `json:"game_id" binding:"required"`
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
}

type UpdateApplicationRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

type RejectApplicationRequest struct {
	Notes string `json:"notes"`
}
