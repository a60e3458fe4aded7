package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSubmissionConflict = errors.New("submission status conflict")
	ErrPendingSubmission  = errors.New("pending submission already exists")
)

// SubmissionRepository управляет сдачами работ и связанными с ними
// переходами задач и выплатами. Все многошаговые изменения выполняются
// в одной транзакции.
type SubmissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create регистрирует сдачу работы и переводит задачу и задание в статус
// submitted. Частичный уникальный индекс по (writer_id) WHERE status =
// 'submitted' гарантирует не более одной ожидающей сдачи на автора даже
// при конкурентных запросах.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission, fileIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, submission, `
		INSERT INTO submissions (id, task_id, writer_id, status, submitted_at)
		VALUES ($1, $2, $3, 'submitted', NOW())
		RETURNING id, task_id, writer_id, status, submitted_at, approved_at, rejection_reason
	`, submission.ID, submission.TaskID, submission.WriterID)
	if err != nil {
		if isUniqueViolation(err, "idx_submissions_one_pending") {
			return ErrPendingSubmission
		}
		return fmt.Errorf("submission repository: create %w", err)
	}

	for _, fileID := range fileIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO submission_files (submission_id, file_id) VALUES ($1, $2)
		`, submission.ID, fileID)
		if err != nil {
			return fmt.Errorf("submission repository: link file %w", err)
		}
	}

	var assignmentID uuid.UUID
	err = tx.GetContext(ctx, &assignmentID, `
		UPDATE tasks SET status = 'submitted', submitted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'in_progress' AND writer_id = $2
		RETURNING assignment_id
	`, submission.TaskID, submission.WriterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSubmissionConflict
		}
		return fmt.Errorf("submission repository: mark task submitted %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE assignments SET status = 'submitted', updated_at = NOW() WHERE id = $1
	`, assignmentID)
	if err != nil {
		return fmt.Errorf("submission repository: sync assignment %w", err)
	}

	return tx.Commit()
}

// GetByID возвращает сдачу вместе с файлами.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, `SELECT * FROM submissions WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("submission repository: get by id %w", err)
	}
	files, err := r.listFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	submission.Files = files
	return &submission, nil
}

// GetPendingByTask возвращает ожидающую сдачу по задаче.
func (r *SubmissionRepository) GetPendingByTask(ctx context.Context, taskID uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.GetContext(ctx, &submission, `
		SELECT * FROM submissions WHERE task_id = $1 AND status = 'submitted'
	`, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("submission repository: get pending by task %w", err)
	}
	return &submission, nil
}

// HasPending сообщает, есть ли у автора ожидающая решения сдача.
func (r *SubmissionRepository) HasPending(ctx context.Context, writerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM submissions WHERE writer_id = $1 AND status = 'submitted')
	`, writerID)
	if err != nil {
		return false, fmt.Errorf("submission repository: has pending %w", err)
	}
	return exists, nil
}

// ListByWriter возвращает сдачи автора, новые первыми.
func (r *SubmissionRepository) ListByWriter(ctx context.Context, writerID uuid.UUID, limit, offset int) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.SelectContext(ctx, &submissions, `
		SELECT * FROM submissions WHERE writer_id = $1
		ORDER BY submitted_at DESC LIMIT $2 OFFSET $3
	`, writerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("submission repository: list by writer %w", err)
	}
	return submissions, nil
}

// Approve одобряет сдачу и в той же транзакции завершает задачу и задание,
// увеличивает счётчик выполненных работ автора, проводит выплату и
// зачисляет её в кошелёк. Либо всё, либо ничего.
func (r *SubmissionRepository) Approve(ctx context.Context, submissionID uuid.UUID, payoutAmount float64, payoutReference string) (*models.Submission, *models.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var submission models.Submission
	err = tx.GetContext(ctx, &submission, `
		UPDATE submissions SET status = 'approved', approved_at = NOW()
		WHERE id = $1 AND status = 'submitted'
		RETURNING id, task_id, writer_id, status, submitted_at, approved_at, rejection_reason
	`, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, r.classifyConflict(ctx, submissionID)
		}
		return nil, nil, fmt.Errorf("submission repository: approve %w", err)
	}

	var task models.Task
	err = tx.GetContext(ctx, &task, `
		UPDATE tasks SET status = 'completed', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'submitted'
		RETURNING *
	`, submission.TaskID)
	if err != nil {
		return nil, nil, fmt.Errorf("submission repository: complete task %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE assignments SET status = 'completed', updated_at = NOW() WHERE id = $1
	`, task.AssignmentID)
	if err != nil {
		return nil, nil, fmt.Errorf("submission repository: sync assignment %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE writer_profiles SET completed_tasks = completed_tasks + 1, updated_at = NOW()
		WHERE user_id = $1
	`, submission.WriterID)
	if err != nil {
		return nil, nil, fmt.Errorf("submission repository: bump completed tasks %w", err)
	}

	var payment models.Payment
	err = tx.GetContext(ctx, &payment, `
		INSERT INTO payments (id, user_id, task_id, type, amount, status, reference, description, completed_at)
		VALUES ($1, $2, $3, 'payout', $4, 'completed', $5, 'выплата за выполненную задачу', NOW())
		RETURNING *
	`, uuid.New(), submission.WriterID, submission.TaskID, payoutAmount, payoutReference)
	if err != nil {
		return nil, nil, fmt.Errorf("submission repository: create payout %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets SET balance = balance + $2, updated_at = NOW() WHERE user_id = $1
	`, submission.WriterID, payoutAmount)
	if err != nil {
		return nil, nil, fmt.Errorf("submission repository: credit wallet %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("submission repository: approve commit %w", err)
	}

	return &submission, &payment, nil
}

// Reject отклоняет сдачу и возвращает задачу и задание в работу, чтобы
// автор мог сдать исправленную версию. Слот ожидающей сдачи освобождается
// сразу.
func (r *SubmissionRepository) Reject(ctx context.Context, submissionID uuid.UUID, reason string) (*models.Submission, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var submission models.Submission
	err = tx.GetContext(ctx, &submission, `
		UPDATE submissions SET status = 'rejected', rejection_reason = $2
		WHERE id = $1 AND status = 'submitted'
		RETURNING id, task_id, writer_id, status, submitted_at, approved_at, rejection_reason
	`, submissionID, reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifyConflict(ctx, submissionID)
		}
		return nil, fmt.Errorf("submission repository: reject %w", err)
	}

	var assignmentID uuid.UUID
	err = tx.GetContext(ctx, &assignmentID, `
		UPDATE tasks SET status = 'in_progress', submitted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'submitted'
		RETURNING assignment_id
	`, submission.TaskID)
	if err != nil {
		return nil, fmt.Errorf("submission repository: reopen task %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE assignments SET status = 'in_progress', updated_at = NOW() WHERE id = $1
	`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("submission repository: sync assignment %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("submission repository: reject commit %w", err)
	}

	return &submission, nil
}

// classifyConflict различает отсутствие сдачи и уже принятое решение.
// Чтение выполняется после отката транзакции: сдача, удалённая в этот
// промежуток, будет названа несуществующей.
func (r *SubmissionRepository) classifyConflict(ctx context.Context, submissionID uuid.UUID) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE id = $1)`, submissionID); err != nil {
		return fmt.Errorf("submission repository: classify conflict %w", err)
	}
	if !exists {
		return ErrSubmissionNotFound
	}
	return ErrSubmissionConflict
}

func (r *SubmissionRepository) listFiles(ctx context.Context, submissionID uuid.UUID) ([]models.StoredFile, error) {
	var files []models.StoredFile
	err := r.db.SelectContext(ctx, &files, `
		SELECT f.* FROM stored_files f
		JOIN submission_files sf ON sf.file_id = f.id
		WHERE sf.submission_id = $1
		ORDER BY f.uploaded_at
	`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("submission repository: list files %w", err)
	}
	return files, nil
}

// isUniqueViolation проверяет нарушение конкретного уникального ограничения.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return constraint == "" || strings.Contains(pqErr.Constraint, constraint)
	}
	return false
}
