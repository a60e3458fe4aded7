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

// SubmissionRepository описывает зависимости SubmissionService.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission, fileIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	GetPendingByTask(ctx context.Context, taskID uuid.UUID) (*models.Submission, error)
	HasPending(ctx context.Context, writerID uuid.UUID) (bool, error)
	ListByWriter(ctx context.Context, writerID uuid.UUID, limit, offset int) ([]models.Submission, error)
	Approve(ctx context.Context, submissionID uuid.UUID, payoutAmount float64, payoutReference string) (*models.Submission, *models.Payment, error)
	Reject(ctx context.Context, submissionID uuid.UUID, reason string) (*models.Submission, error)
}

// TaskRepoForSubmission читает задачи для проверки прав.
type TaskRepoForSubmission interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
}

// FileRepoForSubmission проверяет принадлежность вложений.
type FileRepoForSubmission interface {
	GetOwned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.StoredFile, error)
}

// SubmissionService управляет сдачей работ и выплатами по одобрению.
type SubmissionService struct {
	repo     SubmissionRepository
	tasks    TaskRepoForSubmission
	files    FileRepoForSubmission
	notifier Notifier
}

// NewSubmissionService создаёт сервис сдач.
func NewSubmissionService(repo SubmissionRepository, tasks TaskRepoForSubmission, files FileRepoForSubmission, notifier Notifier) *SubmissionService {
	return &SubmissionService{repo: repo, tasks: tasks, files: files, notifier: notifier}
}

// Submit сдаёт работу по задаче. У автора не может быть больше одной
// работы на проверке одновременно независимо от числа задач в работе.
func (s *SubmissionService) Submit(ctx context.Context, taskID, writerID uuid.UUID, fileIDs []uuid.UUID) (*models.Submission, error) {
	if len(fileIDs) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сдача должна содержать хотя бы один файл")
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, err
	}

	if task.WriterID == nil || *task.WriterID != writerID {
		return nil, apperror.ErrForbidden
	}
	if task.Status != models.TaskStatusInProgress {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "сдать работу можно только по задаче в работе")
	}

	// Ранняя проверка; окончательную гарантию даёт уникальный индекс.
	hasPending, err := s.repo.HasPending(ctx, writerID)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, apperror.ErrPendingSubmission
	}

	if _, err := s.files.GetOwned(ctx, writerID, fileIDs); err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, apperror.New(apperror.ErrCodeValidation, "вложение не найдено или принадлежит другому пользователю")
		}
		return nil, err
	}

	submission := &models.Submission{
		ID:       uuid.New(),
		TaskID:   taskID,
		WriterID: writerID,
	}

	if err := s.repo.Create(ctx, submission, fileIDs); err != nil {
		switch {
		case errors.Is(err, repository.ErrPendingSubmission):
			return nil, apperror.ErrPendingSubmission
		case errors.Is(err, repository.ErrSubmissionConflict):
			return nil, apperror.New(apperror.ErrCodeInvalidState, "задача уже не в работе")
		default:
			return nil, err
		}
	}

	s.notifier.Notify(ctx, task.StudentID, models.NotificationSubmissionUploaded,
		"Работа сдана на проверку",
		fmt.Sprintf("Автор сдал работу по задаче «%s»", task.Title),
		&submission.ID)

	return submission, nil
}

// Approve принимает работу от имени администратора. В одной транзакции
// сдача одобряется, задача и задание завершаются, автору проводится
// выплата в размере бюджета задачи.
func (s *SubmissionService) Approve(ctx context.Context, submissionID uuid.UUID, reviewerRole string) (*models.Submission, *models.Payment, error) {
	submission, task, err := s.authorizeDecision(ctx, submissionID, reviewerRole)
	if err != nil {
		return nil, nil, err
	}

	reference := fmt.Sprintf("PAYOUT-%s", submission.ID.String())
	approved, payout, err := s.repo.Approve(ctx, submissionID, task.Budget, reference)
	if err != nil {
		return nil, nil, mapSubmissionErr(err)
	}

	s.notifier.Notify(ctx, approved.WriterID, models.NotificationSubmissionApproved,
		"Работа принята",
		fmt.Sprintf("Работа по задаче «%s» принята", task.Title),
		&approved.ID)
	s.notifier.Notify(ctx, approved.WriterID, models.NotificationPaymentReleased,
		"Выплата зачислена",
		fmt.Sprintf("На ваш кошелёк зачислено %.2f KES за задачу «%s»", payout.Amount, task.Title),
		&payout.ID)
	s.notifier.Notify(ctx, task.StudentID, models.NotificationSubmissionApproved,
		"Задание выполнено",
		fmt.Sprintf("Работа по вашему заданию «%s» принята, задание завершено", task.Title),
		&approved.ID)

	return approved, payout, nil
}

// Reject возвращает работу на доработку с обязательной причиной. Задача
// возвращается в работу, слот ожидающей сдачи автора освобождается сразу.
func (s *SubmissionService) Reject(ctx context.Context, submissionID uuid.UUID, reviewerRole, reason string) (*models.Submission, error) {
	if err := validation.ValidateNonEmpty("причина отклонения", reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	submission, task, err := s.authorizeDecision(ctx, submissionID, reviewerRole)
	if err != nil {
		return nil, err
	}

	rejected, err := s.repo.Reject(ctx, submission.ID, reason)
	if err != nil {
		return nil, mapSubmissionErr(err)
	}

	s.notifier.Notify(ctx, rejected.WriterID, models.NotificationSubmissionRejected,
		"Работа возвращена на доработку",
		fmt.Sprintf("Работа по задаче «%s» отклонена: %s", task.Title, reason),
		&rejected.ID)

	return rejected, nil
}

// Get возвращает сдачу с файлами участникам задачи и администратору.
func (s *SubmissionService) Get(ctx context.Context, id, requesterID uuid.UUID, requesterRole string) (*models.Submission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, apperror.ErrSubmissionNotFound
		}
		return nil, err
	}

	if requesterRole == models.RoleAdmin || submission.WriterID == requesterID {
		return submission, nil
	}

	task, err := s.tasks.GetByID(ctx, submission.TaskID)
	if err != nil {
		return nil, err
	}
	if task.StudentID != requesterID {
		return nil, apperror.ErrForbidden
	}
	return submission, nil
}

// ListMy возвращает сдачи автора.
func (s *SubmissionService) ListMy(ctx context.Context, writerID uuid.UUID, limit, offset int) ([]models.Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByWriter(ctx, writerID, limit, offset)
}

// authorizeDecision проверяет, что решение по сдаче принимает
// администратор, и загружает сдачу вместе с задачей.
func (s *SubmissionService) authorizeDecision(ctx context.Context, submissionID uuid.UUID, reviewerRole string) (*models.Submission, *models.Task, error) {
	if reviewerRole != models.RoleAdmin {
		return nil, nil, apperror.ErrForbidden
	}

	submission, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, nil, apperror.ErrSubmissionNotFound
		}
		return nil, nil, err
	}

	task, err := s.tasks.GetByID(ctx, submission.TaskID)
	if err != nil {
		return nil, nil, err
	}

	return submission, task, nil
}

func mapSubmissionErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrSubmissionNotFound):
		return apperror.ErrSubmissionNotFound
	case errors.Is(err, repository.ErrSubmissionConflict):
		return apperror.New(apperror.ErrCodeInvalidState, "решение по этой работе уже принято")
	default:
		return err
	}
}
