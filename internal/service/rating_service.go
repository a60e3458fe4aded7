package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
	"github.com/jamiljuma2/assignhub-backend/internal/validation"
)

// RatingRepository описывает зависимости RatingService.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) (float64, error)
	GetByTask(ctx context.Context, taskID uuid.UUID) (*models.Rating, error)
	ListByWriter(ctx context.Context, writerID uuid.UUID, limit, offset int) ([]models.Rating, error)
}

// TaskRepoForRating читает задачи для проверки прав.
type TaskRepoForRating interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
}

// StatsRepoForRating читает агрегированную статистику автора.
type StatsRepoForRating interface {
	GetWriterStats(ctx context.Context, writerID uuid.UUID) (*models.WriterStats, error)
}

// RatingService управляет оценками завершённых задач и статистикой
// авторов. Значок автора выводится из числа завершённых задач и не
// хранится отдельно.
type RatingService struct {
	repo     RatingRepository
	tasks    TaskRepoForRating
	stats    StatsRepoForRating
	notifier Notifier
}

// NewRatingService создаёт сервис оценок.
func NewRatingService(repo RatingRepository, tasks TaskRepoForRating, stats StatsRepoForRating, notifier Notifier) *RatingService {
	return &RatingService{repo: repo, tasks: tasks, stats: stats, notifier: notifier}
}

// Rate выставляет оценку завершённой задаче. Оценка допускается один раз
// и только владельцем задачи; средний рейтинг автора пересчитывается
// тут же.
func (s *RatingService) Rate(ctx context.Context, taskID, studentID uuid.UUID, score int, comment *string) (*models.Rating, error) {
	if err := validation.ValidateScore(score); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, err
	}

	if task.StudentID != studentID {
		return nil, apperror.ErrForbidden
	}
	if task.Status != models.TaskStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "оценить можно только завершённую задачу")
	}
	if task.WriterID == nil {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "у задачи нет исполнителя")
	}

	rating := &models.Rating{
		ID:        uuid.New(),
		TaskID:    taskID,
		StudentID: studentID,
		WriterID:  *task.WriterID,
		Score:     score,
		Comment:   comment,
	}

	newAverage, err := s.repo.Create(ctx, rating)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRating) {
			return nil, apperror.ErrDuplicateRating
		}
		return nil, err
	}

	s.notifier.Notify(ctx, rating.WriterID, models.NotificationRatingReceived,
		"Получена оценка",
		fmt.Sprintf("Студент оценил задачу «%s» на %d из 5, ваш рейтинг %.1f", task.Title, score, newAverage),
		&rating.ID)

	return rating, nil
}

// ListWriterRatings возвращает оценки автора.
func (s *RatingService) ListWriterRatings(ctx context.Context, writerID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByWriter(ctx, writerID, limit, offset)
}

// WriterStats возвращает публичную статистику автора: рейтинг, число
// завершённых задач, текущий значок и прогресс до следующего.
func (s *RatingService) WriterStats(ctx context.Context, writerID uuid.UUID) (*models.WriterStats, error) {
	stats, err := s.stats.GetWriterStats(ctx, writerID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return stats, nil
}
