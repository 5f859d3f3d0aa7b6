package models

import "time"

// Chat is the per-request conversation. It exists only after the requester
// confirms and is archived when the request closes; archived chats stay
// readable but reject new messages.
type Chat struct {
	ID          int64     `json:"id"`
	RequestID   int64     `json:"request_id"`
	RequesterID int64     `json:"requester_id"`
	EmployeeID  int64     `json:"employee_id"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
}

type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
