package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachmarket-backend/internal/features/chat/models"
	"coachmarket-backend/internal/features/chat/repository"
)

type fakeChatRepo struct {
	chats    map[int64]*models.Chat
	messages map[int64][]*models.Message
	nextID   int64
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:    map[int64]*models.Chat{},
		messages: map[int64][]*models.Message{},
		nextID:   1,
	}
}

func (r *fakeChatRepo) GetByID(_ context.Context, id int64) (*models.Chat, error) {
	c, ok := r.chats[id]
	if !ok {
		return nil, repository.ErrChatNotFound
	}
	return c, nil
}

func (r *fakeChatRepo) GetByRequestID(_ context.Context, requestID int64) (*models.Chat, error) {
	for _, c := range r.chats {
		if c.RequestID == requestID {
			return c, nil
		}
	}
	return nil, repository.ErrChatNotFound
}

func (r *fakeChatRepo) ListByParticipant(_ context.Context, userID int64) ([]*models.Chat, error) {
	var out []*models.Chat
	for _, c := range r.chats {
		if c.RequesterID == userID || c.EmployeeID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) ListAll(_ context.Context, _, _ int) ([]*models.Chat, error) {
	return nil, nil
}

func (r *fakeChatRepo) ListMessages(_ context.Context, chatID int64) ([]*models.Message, error) {
	return r.messages[chatID], nil
}

func (r *fakeChatRepo) AppendMessage(_ context.Context, msg *models.Message) error {
	c, ok := r.chats[msg.ChatID]
	if !ok || c.IsArchived {
		return repository.ErrChatArchived
	}
	msg.ID = r.nextID
	r.nextID++
	r.messages[msg.ChatID] = append(r.messages[msg.ChatID], msg)
	return nil
}

var _ repository.ChatRepository = (*fakeChatRepo)(nil)

func TestSendAndRead(t *testing.T) {
	repo := newFakeChatRepo()
	repo.chats[1] = &models.Chat{ID: 1, RequestID: 5, RequesterID: 10, EmployeeID: 20}
	svc := NewChatService(repo)

	msg, err := svc.Send(context.Background(), 10, 1, "when do we start?")
	require.NoError(t, err)
	assert.Equal(t, int64(10), msg.SenderID)

	_, err = svc.Send(context.Background(), 20, 1, "tomorrow at eight")
	require.NoError(t, err)

	messages, err := svc.Messages(context.Background(), 20, 1)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "when do we start?", messages[0].Content)
}

func TestSendIsParticipantOnly(t *testing.T) {
	repo := newFakeChatRepo()
	repo.chats[1] = &models.Chat{ID: 1, RequestID: 5, RequesterID: 10, EmployeeID: 20}
	svc := NewChatService(repo)

	_, err := svc.Send(context.Background(), 99, 1, "let me in")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.Messages(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestArchivedChatIsReadOnly(t *testing.T) {
	repo := newFakeChatRepo()
	repo.chats[1] = &models.Chat{ID: 1, RequestID: 5, RequesterID: 10, EmployeeID: 20, IsArchived: true}
	repo.messages[1] = []*models.Message{{ID: 1, ChatID: 1, SenderID: 10, Content: "history"}}
	svc := NewChatService(repo)

	_, err := svc.Send(context.Background(), 10, 1, "one more thing")
	assert.ErrorIs(t, err, ErrChatArchived)

	messages, err := svc.Messages(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestAdminReadAny(t *testing.T) {
	repo := newFakeChatRepo()
	repo.chats[1] = &models.Chat{ID: 1, RequestID: 5, RequesterID: 10, EmployeeID: 20}
	repo.messages[1] = []*models.Message{{ID: 1, ChatID: 1, SenderID: 10, Content: "hi"}}
	svc := NewChatService(repo)

	messages, err := svc.ReadAny(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	_, err = svc.ReadAny(context.Background(), 2)
	assert.ErrorIs(t, err, ErrChatNotFound)
}
