package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
)

// TaskRepository описывает зависимости TaskService.
type TaskRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListAvailable(ctx context.Context, limit, offset int) ([]models.Task, error)
	ListByWriter(ctx context.Context, writerID uuid.UUID, status string, limit, offset int) ([]models.Task, error)
	Claim(ctx context.Context, taskID, writerID uuid.UUID) (*models.Task, int, error)
}

// ProfileRepoForTask читает профиль автора с ленивым сбросом квоты.
type ProfileRepoForTask interface {
	GetWriterProfile(ctx context.Context, userID uuid.UUID) (*models.WriterProfile, error)
}

// ClaimResult — итог взятия задачи в работу.
type ClaimResult struct {
	Task           *models.Task `json:"task"`
	TasksRemaining int          `json:"tasks_remaining"`
}

// TaskService координирует пул доступных задач и взятие их в работу.
// Вся атомарность обеспечивается транзакцией репозитория: при гонке
// нескольких авторов за одну задачу ровно один получает её, остальные —
// конфликт без списания квоты.
type TaskService struct {
	repo     TaskRepository
	profiles ProfileRepoForTask
	notifier Notifier
}

// NewTaskService создаёт сервис задач.
func NewTaskService(repo TaskRepository, profiles ProfileRepoForTask, notifier Notifier) *TaskService {
	return &TaskService{repo: repo, profiles: profiles, notifier: notifier}
}

// ListAvailable возвращает открытые задачи, ближайший дедлайн первым.
func (s *TaskService) ListAvailable(ctx context.Context, limit, offset int) ([]models.Task, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListAvailable(ctx, limit, offset)
}

// ListMy возвращает задачи автора.
func (s *TaskService) ListMy(ctx context.Context, writerID uuid.UUID, status string, limit, offset int) ([]models.Task, error) {
	if status != "" {
		if _, ok := models.ValidTaskStatuses[status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестный статус задачи")
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByWriter(ctx, writerID, status, limit, offset)
}

// Get возвращает задачу. Доступные задачи видны всем авторам, занятые —
// участникам и администратору.
func (s *TaskService) Get(ctx context.Context, id, requesterID uuid.UUID, requesterRole string) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, err
	}

	if task.Status == models.TaskStatusAvailable || requesterRole == models.RoleAdmin {
		return task, nil
	}
	if task.StudentID == requesterID {
		return task, nil
	}
	if task.WriterID != nil && *task.WriterID == requesterID {
		return task, nil
	}
	return nil, apperror.ErrForbidden
}

// Claim берёт задачу в работу от имени автора. Квота проверяется и
// списывается в той же транзакции, что и смена статуса задачи.
func (s *TaskService) Claim(ctx context.Context, taskID, writerID uuid.UUID) (*ClaimResult, error) {
	task, remaining, err := s.repo.Claim(ctx, taskID, writerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			return nil, apperror.ErrTaskNotFound
		case errors.Is(err, repository.ErrTaskAlreadyClaimed):
			return nil, apperror.ErrTaskAlreadyClaimed
		case errors.Is(err, repository.ErrQuotaExceeded):
			return nil, apperror.ErrQuotaExceeded
		case errors.Is(err, repository.ErrProfileNotFound):
			return nil, apperror.New(apperror.ErrCodeForbidden, "брать задачи могут только авторы")
		default:
			return nil, err
		}
	}

	s.notifier.Notify(ctx, task.StudentID, models.NotificationTaskClaimed,
		"Задача взята в работу",
		fmt.Sprintf("Автор взял в работу задачу «%s»", task.Title),
		&task.ID)

	return &ClaimResult{Task: task, TasksRemaining: remaining}, nil
}

// Quota возвращает профиль автора с актуальным остатком квоты.
func (s *TaskService) Quota(ctx context.Context, writerID uuid.UUID) (*models.WriterProfile, error) {
	profile, err := s.profiles.GetWriterProfile(ctx, writerID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.New(apperror.ErrCodeForbidden, "квота доступна только авторам")
		}
		return nil, err
	}
	return profile, nil
}
