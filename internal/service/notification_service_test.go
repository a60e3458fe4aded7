package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, onlyUnread, limit, offset)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	args := m.Called(userID, event, data)
	return args.Error(0)
}

func TestNotificationService_Notify_PersistsThenBroadcasts(t *testing.T) {
	repo := new(mockNotificationRepo)
	hub := new(mockBroadcaster)
	svc := NewNotificationService(repo, hub)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Notification")).Return(nil)
	hub.On("BroadcastToUser", userID, models.NotificationTaskClaimed, mock.Anything).Return(nil)

	svc.Notify(ctx, userID, models.NotificationTaskClaimed, "Задача взята", "Автор взял задачу", nil)

	repo.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestNotificationService_Notify_PersistFailureSkipsBroadcast(t *testing.T) {
	repo := new(mockNotificationRepo)
	hub := new(mockBroadcaster)
	svc := NewNotificationService(repo, hub)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Notification")).Return(errors.New("db down"))

	// Ошибка сохранения не паникует и не доходит до вызывающего.
	svc.Notify(ctx, userID, models.NotificationTaskClaimed, "Задача взята", "Автор взял задачу", nil)

	hub.AssertNotCalled(t, "BroadcastToUser")
}

func TestNotificationService_Notify_BroadcastFailureIsSwallowed(t *testing.T) {
	repo := new(mockNotificationRepo)
	hub := new(mockBroadcaster)
	svc := NewNotificationService(repo, hub)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Notification")).Return(nil)
	hub.On("BroadcastToUser", userID, mock.Anything, mock.Anything).Return(errors.New("no clients"))

	svc.Notify(ctx, userID, models.NotificationPaymentReleased, "Кошелёк пополнен", "Зачислено 500 KES", nil)

	repo.AssertExpectations(t)
}

func TestNotificationService_List_DefaultLimit(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, new(mockBroadcaster))
	ctx := context.Background()
	userID := uuid.New()

	repo.On("ListByUser", ctx, userID, true, 20, 0).Return([]models.Notification{}, nil)

	_, err := svc.List(ctx, userID, true, 0, 0)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestNotificationService_Delete_NotFound(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, new(mockBroadcaster))
	ctx := context.Background()
	id := uuid.New()
	userID := uuid.New()

	repo.On("Delete", ctx, id, userID).Return(repository.ErrNotificationNotFound)

	err := svc.Delete(ctx, id, userID)
	assert.ErrorIs(t, err, apperror.ErrNotificationNotFound)
	assert.Equal(t, 404, apperror.Status(err))
}

func TestNotificationService_MarkRead_ForeignNotification(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo, new(mockBroadcaster))
	ctx := context.Background()
	id := uuid.New()
	userID := uuid.New()

	repo.On("MarkRead", ctx, id, userID).Return(repository.ErrNotificationNotFound)

	err := svc.MarkRead(ctx, id, userID)
	assert.ErrorIs(t, err, apperror.ErrNotificationNotFound)
}
