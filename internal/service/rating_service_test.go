package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
)

type mockRatingRepo struct {
	mock.Mock
}

func (m *mockRatingRepo) Create(ctx context.Context, rating *models.Rating) (float64, error) {
	args := m.Called(ctx, rating)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockRatingRepo) GetByTask(ctx context.Context, taskID uuid.UUID) (*models.Rating, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *mockRatingRepo) ListByWriter(ctx context.Context, writerID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	args := m.Called(ctx, writerID, limit, offset)
	return args.Get(0).([]models.Rating), args.Error(1)
}

type mockStatsRepo struct {
	mock.Mock
}

func (m *mockStatsRepo) GetWriterStats(ctx context.Context, writerID uuid.UUID) (*models.WriterStats, error) {
	args := m.Called(ctx, writerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WriterStats), args.Error(1)
}

func completedTask(studentID, writerID uuid.UUID) *models.Task {
	return &models.Task{
		ID:        uuid.New(),
		StudentID: studentID,
		WriterID:  &writerID,
		Title:     "Реферат по истории",
		Status:    models.TaskStatusCompleted,
	}
}

func TestRatingService_Rate_Success(t *testing.T) {
	repo := new(mockRatingRepo)
	tasks := new(mockTaskRepo)
	notifier := new(mockNotifier)
	svc := NewRatingService(repo, tasks, new(mockStatsRepo), notifier)
	ctx := context.Background()

	studentID := uuid.New()
	writerID := uuid.New()
	task := completedTask(studentID, writerID)

	tasks.On("GetByID", ctx, task.ID).Return(task, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Rating")).Return(4.5, nil)
	notifier.On("Notify", ctx, writerID, models.NotificationRatingReceived,
		mock.Anything, mock.Anything, mock.Anything).Return()

	rating, err := svc.Rate(ctx, task.ID, studentID, 5, nil)
	assert.NoError(t, err)
	assert.Equal(t, 5, rating.Score)
	assert.Equal(t, writerID, rating.WriterID)
	notifier.AssertExpectations(t)
}

func TestRatingService_Rate_InvalidScore(t *testing.T) {
	svc := NewRatingService(new(mockRatingRepo), new(mockTaskRepo), new(mockStatsRepo), new(mockNotifier))

	_, err := svc.Rate(context.Background(), uuid.New(), uuid.New(), 0, nil)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Rate(context.Background(), uuid.New(), uuid.New(), 6, nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestRatingService_Rate_TaskNotCompleted(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := NewRatingService(new(mockRatingRepo), tasks, new(mockStatsRepo), new(mockNotifier))
	ctx := context.Background()

	studentID := uuid.New()
	task := completedTask(studentID, uuid.New())
	task.Status = models.TaskStatusSubmitted
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)

	_, err := svc.Rate(ctx, task.ID, studentID, 4, nil)
	assert.True(t, apperror.IsCode(err, apperror.ErrCodeInvalidState))
}

func TestRatingService_Rate_NotTaskOwner(t *testing.T) {
	tasks := new(mockTaskRepo)
	svc := NewRatingService(new(mockRatingRepo), tasks, new(mockStatsRepo), new(mockNotifier))
	ctx := context.Background()

	task := completedTask(uuid.New(), uuid.New())
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)

	_, err := svc.Rate(ctx, task.ID, uuid.New(), 4, nil)
	assert.True(t, apperror.IsForbidden(err))
}

func TestRatingService_Rate_Duplicate(t *testing.T) {
	repo := new(mockRatingRepo)
	tasks := new(mockTaskRepo)
	notifier := new(mockNotifier)
	svc := NewRatingService(repo, tasks, new(mockStatsRepo), notifier)
	ctx := context.Background()

	studentID := uuid.New()
	task := completedTask(studentID, uuid.New())
	tasks.On("GetByID", ctx, task.ID).Return(task, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Rating")).Return(0.0, repository.ErrDuplicateRating)

	_, err := svc.Rate(ctx, task.ID, studentID, 4, nil)
	assert.ErrorIs(t, err, apperror.ErrDuplicateRating)
	assert.Equal(t, 409, apperror.Status(err))
	notifier.AssertNotCalled(t, "Notify")
}

func TestRatingService_WriterStats(t *testing.T) {
	stats := new(mockStatsRepo)
	svc := NewRatingService(new(mockRatingRepo), new(mockTaskRepo), stats, new(mockNotifier))
	ctx := context.Background()
	writerID := uuid.New()

	expected := &models.WriterStats{
		Rating:         4.7,
		CompletedTasks: 63,
		Badge:          models.BadgeGold,
	}
	stats.On("GetWriterStats", ctx, writerID).Return(expected, nil)

	got, err := svc.WriterStats(ctx, writerID)
	assert.NoError(t, err)
	assert.Equal(t, models.BadgeGold, got.Badge)
}

func TestRatingService_WriterStats_NotFound(t *testing.T) {
	stats := new(mockStatsRepo)
	svc := NewRatingService(new(mockRatingRepo), new(mockTaskRepo), stats, new(mockNotifier))
	ctx := context.Background()
	writerID := uuid.New()

	stats.On("GetWriterStats", ctx, writerID).Return(nil, repository.ErrProfileNotFound)

	_, err := svc.WriterStats(ctx, writerID)
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}
