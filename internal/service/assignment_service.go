package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
	"github.com/jamiljuma2/assignhub-backend/internal/validation"
)

// Notifier отправляет уведомления как побочный эффект бизнес-операций.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, nType, title, message string, relatedID *uuid.UUID)
}

// AssignmentRepository описывает зависимости AssignmentService.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment, fileIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]models.Assignment, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Assignment, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Assignment, *models.Task, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Assignment, error)
}

// FileRepoForAssignment проверяет принадлежность вложений.
type FileRepoForAssignment interface {
	GetOwned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.StoredFile, error)
}

// AssignmentService управляет жизненным циклом заданий от размещения
// до модерации.
type AssignmentService struct {
	repo     AssignmentRepository
	files    FileRepoForAssignment
	notifier Notifier
}

// CreateAssignmentInput содержит данные нового задания.
type CreateAssignmentInput struct {
	Title       string
	Description string
	Budget      float64
	Deadline    time.Time
	FileIDs     []uuid.UUID
}

// NewAssignmentService создаёт сервис заданий.
func NewAssignmentService(repo AssignmentRepository, files FileRepoForAssignment, notifier Notifier) *AssignmentService {
	return &AssignmentService{repo: repo, files: files, notifier: notifier}
}

// Create размещает задание. Новое задание всегда начинает путь со
// статуса pending_approval и не видно авторам до одобрения.
func (s *AssignmentService) Create(ctx context.Context, studentID uuid.UUID, in CreateAssignmentInput) (*models.Assignment, error) {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBudget(in.Budget); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDeadline(in.Deadline, time.Now()); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if len(in.FileIDs) > 0 {
		if _, err := s.files.GetOwned(ctx, studentID, in.FileIDs); err != nil {
			if errors.Is(err, repository.ErrFileNotFound) {
				return nil, apperror.New(apperror.ErrCodeValidation, "вложение не найдено или принадлежит другому пользователю")
			}
			return nil, err
		}
	}

	assignment := &models.Assignment{
		ID:          uuid.New(),
		StudentID:   studentID,
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Deadline:    in.Deadline,
		Status:      models.AssignmentStatusPendingApproval,
	}

	if err := s.repo.Create(ctx, assignment, in.FileIDs); err != nil {
		return nil, err
	}

	return assignment, nil
}

// Get возвращает задание. Студент видит только свои задания, автор — те,
// что назначены на него, администратор — любые.
func (s *AssignmentService) Get(ctx context.Context, id, requesterID uuid.UUID, requesterRole string) (*models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return nil, apperror.ErrAssignmentNotFound
		}
		return nil, err
	}

	if !s.canView(assignment, requesterID, requesterRole) {
		return nil, apperror.ErrForbidden
	}
	return assignment, nil
}

// ListMy возвращает задания студента.
func (s *AssignmentService) ListMy(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]models.Assignment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByStudent(ctx, studentID, limit, offset)
}

// ListPending возвращает задания, ожидающие модерации.
func (s *AssignmentService) ListPending(ctx context.Context, limit, offset int) ([]models.Assignment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByStatus(ctx, models.AssignmentStatusPendingApproval, limit, offset)
}

// Approve одобряет задание и публикует порождённую задачу в пуле
// доступных. Одобрить можно только задание в статусе pending_approval.
func (s *AssignmentService) Approve(ctx context.Context, id uuid.UUID) (*models.Assignment, *models.Task, error) {
	assignment, task, err := s.repo.Approve(ctx, id)
	if err != nil {
		return nil, nil, mapAssignmentErr(err, "одобрить можно только задание на модерации")
	}

	s.notifier.Notify(ctx, assignment.StudentID, models.NotificationAssignmentApproved,
		"Задание одобрено",
		fmt.Sprintf("Задание «%s» прошло модерацию и опубликовано для авторов", assignment.Title),
		&assignment.ID)

	return assignment, task, nil
}

// Reject отклоняет задание с обязательной причиной. Статус rejected
// терминален.
func (s *AssignmentService) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Assignment, error) {
	if err := validation.ValidateNonEmpty("причина отклонения", reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	assignment, err := s.repo.Reject(ctx, id, reason)
	if err != nil {
		return nil, mapAssignmentErr(err, "отклонить можно только задание на модерации")
	}

	s.notifier.Notify(ctx, assignment.StudentID, models.NotificationAssignmentRejected,
		"Задание отклонено",
		fmt.Sprintf("Задание «%s» отклонено: %s", assignment.Title, reason),
		&assignment.ID)

	return assignment, nil
}

func (s *AssignmentService) canView(assignment *models.Assignment, requesterID uuid.UUID, role string) bool {
	switch {
	case role == models.RoleAdmin:
		return true
	case assignment.StudentID == requesterID:
		return true
	case assignment.WriterID != nil && *assignment.WriterID == requesterID:
		return true
	}
	return false
}

func mapAssignmentErr(err error, conflictMsg string) error {
	switch {
	case errors.Is(err, repository.ErrAssignmentNotFound):
		return apperror.ErrAssignmentNotFound
	case errors.Is(err, repository.ErrAssignmentConflict):
		return apperror.New(apperror.ErrCodeInvalidState, conflictMsg)
	default:
		return err
	}
}
