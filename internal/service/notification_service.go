package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jamiljuma2/assignhub-backend/internal/logger"
	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
)

// NotificationRepository описывает зависимости сервиса уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// NotificationBroadcaster доставляет событие подключённым клиентам.
type NotificationBroadcaster interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// NotificationService создаёт и доставляет уведомления. Уведомления —
// побочный эффект переходов состояний: ошибка создания или доставки
// логируется и никогда не откатывает бизнес-операцию.
type NotificationService struct {
	repo NotificationRepository
	hub  NotificationBroadcaster
}

// NewNotificationService создаёт сервис уведомлений.
func NewNotificationService(repo NotificationRepository, hub NotificationBroadcaster) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

// Notify сохраняет уведомление и отправляет его по WebSocket.
// Вызывающие не проверяют ошибку: гарантии доставки нет.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, nType, title, message string, relatedID *uuid.UUID) {
	n := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      nType,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		if logger.Log != nil {
			logger.Log.WithFields(map[string]interface{}{
				"user_id": userID,
				"type":    nType,
				"error":   err.Error(),
			}).Warn("notification service: не удалось сохранить уведомление")
		}
		return
	}

	if s.hub != nil {
		if err := s.hub.BroadcastToUser(userID, nType, n); err != nil && logger.Log != nil {
			logger.Log.WithField("user_id", userID).Warnf("notification service: не удалось доставить уведомление: %v", err)
		}
	}
}

// List возвращает уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, onlyUnread, limit, offset)
}

// UnreadCount возвращает количество непрочитанных уведомлений.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead помечает уведомление прочитанным.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.ErrNotificationNotFound
		}
		return err
	}
	return nil
}

// Delete удаляет уведомление пользователя.
func (s *NotificationService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.ErrNotificationNotFound
		}
		return err
	}
	return nil
}

// MarkAllRead помечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}
