package service

import (
	"context"
	"errors"

	"coachmarket-backend/internal/common/validation"
	"coachmarket-backend/internal/features/chat/models"
	"coachmarket-backend/internal/features/chat/repository"
)

var (
	ErrChatNotFound   = repository.ErrChatNotFound
	ErrChatArchived   = repository.ErrChatArchived
	ErrNotParticipant = errors.New("caller is not a participant of this chat")
)

type ChatService interface {
	ListMine(ctx context.Context, userID int64) ([]*models.Chat, error)
	// Messages returns the chat history oldest first. Participants only;
	// admins go through ReadAny.
	Messages(ctx context.Context, actorID, chatID int64) ([]*models.Message, error)
	Send(ctx context.Context, actorID, chatID int64, content string) (*models.Message, error)

	ListAll(ctx context.Context, limit, offset int) ([]*models.Chat, error)
	ReadAny(ctx context.Context, chatID int64) ([]*models.Message, error)
}

type chatService struct {
	repo repository.ChatRepository
}

func NewChatService(repo repository.ChatRepository) ChatService {
	return &chatService{repo: repo}
}

func (s *chatService) ListMine(ctx context.Context, userID int64) ([]*models.Chat, error) {
	return s.repo.ListByParticipant(ctx, userID)
}

func (s *chatService) Messages(ctx context.Context, actorID, chatID int64) ([]*models.Message, error) {
	if _, err := s.participantChat(ctx, actorID, chatID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, chatID)
}

func (s *chatService) Send(ctx context.Context, actorID, chatID int64, content string) (*models.Message, error) {
	content, err := validation.SanitizeText("content", content)
	if err != nil {
		return nil, err
	}

	chat, err := s.participantChat(ctx, actorID, chatID)
	if err != nil {
		return nil, err
	}
	if chat.IsArchived {
		return nil, ErrChatArchived
	}

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: actorID,
		Content:  content,
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *chatService) ListAll(ctx context.Context, limit, offset int) ([]*models.Chat, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

func (s *chatService) ReadAny(ctx context.Context, chatID int64) ([]*models.Message, error) {
	if _, err := s.repo.GetByID(ctx, chatID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, chatID)
}

func (s *chatService) participantChat(ctx context.Context, actorID, chatID int64) (*models.Chat, error) {
	chat, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.RequesterID != actorID && chat.EmployeeID != actorID {
		return nil, ErrNotParticipant
	}
	return chat, nil
}
