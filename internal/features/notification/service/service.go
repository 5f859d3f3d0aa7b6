package service

import (
	"context"

	"coachmarket-backend/internal/common/logger"
	"coachmarket-backend/internal/features/notification/models"
	"coachmarket-backend/internal/features/notification/repository"
)

type NotificationService interface {
	// Notify inserts a notification best-effort: failures are logged and
	// never block the transition that produced them.
	Notify(ctx context.Context, userID int64, notifType, title, body string)
	ListMine(ctx context.Context, userID int64, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Notify(ctx context.Context, userID int64, notifType, title, body string) {
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		logger.Warn().
			Err(err).
			Int64("user_id", userID).
			Str("type", notifType).
			Msg("notification insert failed")
	}
}

func (s *notificationService) ListMine(ctx context.Context, userID int64, limit int) ([]*models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}
