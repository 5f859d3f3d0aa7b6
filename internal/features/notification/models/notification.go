package models

import "time"

// Notification types emitted by request transitions.
const (
	TypeNewRequest         = "new_request"
	TypeRequestAccepted    = "request_accepted"
	TypeRequestConfirmed   = "request_confirmed"
	TypeCompletionRequest  = "completion_requested"
	TypeRequestPaid        = "request_paid"
	TypeCompletionReopened = "completion_reopened"
	TypeRequestCancelled   = "request_cancelled"
	TypeRequestRejected    = "request_rejected"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
