package repository

import (
	"context"
	"errors"

	"coachmarket-backend/internal/features/chat/models"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrChatArchived = errors.New("chat is archived")
)

type ChatRepository interface {
	// GetByID joins the owning request so the service can check
	// participation without a second query.
	GetByID(ctx context.Context, id int64) (*models.Chat, error)
	GetByRequestID(ctx context.Context, requestID int64) (*models.Chat, error)
	ListByParticipant(ctx context.Context, userID int64) ([]*models.Chat, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Chat, error)

	ListMessages(ctx context.Context, chatID int64) ([]*models.Message, error)
	// AppendMessage fails with ErrChatArchived on an archived chat.
	AppendMessage(ctx context.Context, msg *models.Message) error
}
