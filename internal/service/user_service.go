package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
)

// UserRepository описывает зависимости UserService.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, role string, limit, offset int) ([]models.User, error)
	GetWriterProfile(ctx context.Context, userID uuid.UUID) (*models.WriterProfile, error)
}

// AssignmentRepoForStats считает задания по статусам.
type AssignmentRepoForStats interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// TaskRepoForStats считает задачи по статусам.
type TaskRepoForStats interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// PlatformStats — сводка для административной панели.
type PlatformStats struct {
	AssignmentsByStatus map[string]int `json:"assignments_by_status"`
	TasksByStatus       map[string]int `json:"tasks_by_status"`
}

// UserProfile объединяет пользователя с данными его роли.
type UserProfile struct {
	User    *models.User          `json:"user"`
	Profile *models.WriterProfile `json:"writer_profile,omitempty"`
	Badge   string                `json:"badge,omitempty"`
}

// UserService отдаёт профили и административную сводку.
type UserService struct {
	repo        UserRepository
	assignments AssignmentRepoForStats
	tasks       TaskRepoForStats
}

// NewUserService создаёт сервис пользователей.
func NewUserService(repo UserRepository, assignments AssignmentRepoForStats, tasks TaskRepoForStats) *UserService {
	return &UserService{repo: repo, assignments: assignments, tasks: tasks}
}

// Profile возвращает пользователя, а для авторов — профиль со значком
// и актуальной квотой.
func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	result := &UserProfile{User: user}

	if user.Role == models.RoleWriter {
		profile, err := s.repo.GetWriterProfile(ctx, userID)
		if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
			return nil, err
		}
		if profile != nil {
			result.Profile = profile
			result.Badge = profile.Badge()
		}
	}

	return result, nil
}

// ListUsers возвращает пользователей, опционально по роли.
func (s *UserService) ListUsers(ctx context.Context, role string, limit, offset int) ([]models.User, error) {
	if role != "" {
		if _, ok := models.ValidRoles[role]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, "неизвестная роль")
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, role, limit, offset)
}

// Stats возвращает сводку по платформе.
func (s *UserService) Stats(ctx context.Context) (*PlatformStats, error) {
	assignments, err := s.assignments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &PlatformStats{
		AssignmentsByStatus: assignments,
		TasksByStatus:       tasks,
	}, nil
}
