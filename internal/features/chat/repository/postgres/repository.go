package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"coachmarket-backend/internal/features/chat/models"
	"coachmarket-backend/internal/features/chat/repository"
)

const chatQuery = `
	SELECT c.id, c.request_id, r.requester_id, r.employee_id, c.is_archived, c.created_at
	FROM chats c
	JOIN service_requests r ON r.id = c.request_id
`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.ChatRepository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.Chat, error) {
	chat, err := scanChat(r.db.QueryRowContext(ctx, chatQuery+`WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return chat, nil
}

func (r *postgresRepository) GetByRequestID(ctx context.Context, requestID int64) (*models.Chat, error) {
	chat, err := scanChat(r.db.QueryRowContext(ctx, chatQuery+`WHERE c.request_id = $1`, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return chat, nil
}

func (r *postgresRepository) ListByParticipant(ctx context.Context, userID int64) ([]*models.Chat, error) {
	query := chatQuery + `
		WHERE r.requester_id = $1 OR r.employee_id = $1
		ORDER BY c.created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *postgresRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Chat, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := chatQuery + `ORDER BY c.created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

func (r *postgresRepository) ListMessages(ctx context.Context, chatID int64) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chat_id, sender_id, content, created_at
		FROM chat_messages
		WHERE chat_id = $1
		ORDER BY created_at, id
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func (r *postgresRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	// The archived check and the insert share one statement so an admin
	// archiving the chat mid-flight cannot let a message slip in.
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO chat_messages (chat_id, sender_id, content)
		SELECT $1, $2, $3
		WHERE EXISTS (SELECT 1 FROM chats WHERE id = $1 AND NOT is_archived)
		RETURNING id, created_at
	`, msg.ChatID, msg.SenderID, msg.Content).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrChatArchived
		}
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Chat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChat(row rowScanner) (*models.Chat, error) {
	var c models.Chat
	err := row.Scan(&c.ID, &c.RequestID, &c.RequesterID, &c.EmployeeID, &c.IsArchived, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
