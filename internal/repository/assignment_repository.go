package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAssignmentConflict = errors.New("assignment status conflict")
)

// AssignmentRepository отвечает за задания студентов и их модерацию.
type AssignmentRepository struct {
	db *sqlx.DB
}

func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create создаёт задание в статусе pending_approval и привязывает файлы.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment, fileIDs []uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO assignments (student_id, title, description, budget, deadline, status)
		VALUES ($1, $2, $3, $4, $5, 'pending_approval')
		RETURNING id, status, created_at, updated_at
	`
	if err := tx.QueryRowxContext(
		ctx, query,
		assignment.StudentID, assignment.Title, assignment.Description,
		assignment.Budget, assignment.Deadline,
	).Scan(&assignment.ID, &assignment.Status, &assignment.CreatedAt, &assignment.UpdatedAt); err != nil {
		return fmt.Errorf("assignment repository: create %w", err)
	}

	for _, fileID := range fileIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO assignment_files (assignment_id, file_id) VALUES ($1, $2)`,
			assignment.ID, fileID)
		if err != nil {
			return fmt.Errorf("assignment repository: link file %w", err)
		}
	}

	return tx.Commit()
}

// GetByID возвращает задание с прикреплёнными файлами.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, `SELECT * FROM assignments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("assignment repository: get by id %w", err)
	}

	files, err := r.listFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	assignment.Files = files

	return &assignment, nil
}

// ListByStudent возвращает задания студента.
func (r *AssignmentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.SelectContext(ctx, &assignments, `
		SELECT * FROM assignments WHERE student_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, studentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("assignment repository: list by student %w", err)
	}
	return assignments, nil
}

// ListByStatus возвращает задания в указанном статусе (очередь модерации).
func (r *AssignmentRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.SelectContext(ctx, &assignments, `
		SELECT * FROM assignments WHERE status = $1
		ORDER BY created_at ASC LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("assignment repository: list by status %w", err)
	}
	return assignments, nil
}

// Approve переводит задание из pending_approval в approved и в той же
// транзакции порождает задачу в пуле доступных. Условный UPDATE гарантирует,
// что повторное одобрение не создаст вторую задачу.
func (r *AssignmentRepository) Approve(ctx context.Context, id uuid.UUID) (*models.Assignment, *models.Task, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var assignment models.Assignment
	err = tx.GetContext(ctx, &assignment, `
		UPDATE assignments SET status = 'approved', updated_at = NOW()
		WHERE id = $1 AND status = 'pending_approval'
		RETURNING *
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, r.classifyConflict(ctx, id)
		}
		return nil, nil, fmt.Errorf("assignment repository: approve %w", err)
	}

	var task models.Task
	err = tx.GetContext(ctx, &task, `
		INSERT INTO tasks (assignment_id, student_id, title, description, budget, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'available')
		RETURNING *
	`, assignment.ID, assignment.StudentID, assignment.Title, assignment.Description,
		assignment.Budget, assignment.Deadline)
	if err != nil {
		return nil, nil, fmt.Errorf("assignment repository: spawn task %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("assignment repository: approve commit %w", err)
	}

	return &assignment, &task, nil
}

// Reject переводит задание из pending_approval в терминальный rejected.
func (r *AssignmentRepository) Reject(ctx context.Context, id uuid.UUID, reason string) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.GetContext(ctx, &assignment, `
		UPDATE assignments SET status = 'rejected', rejection_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending_approval'
		RETURNING *
	`, id, reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifyConflict(ctx, id)
		}
		return nil, fmt.Errorf("assignment repository: reject %w", err)
	}
	return &assignment, nil
}

// classifyConflict различает отсутствие задания и неподходящий статус.
// Чтение выполняется после отката транзакции: задание, удалённое в этот
// промежуток, будет названо несуществующим.
func (r *AssignmentRepository) classifyConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM assignments WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("assignment repository: classify conflict %w", err)
	}
	if !exists {
		return ErrAssignmentNotFound
	}
	return ErrAssignmentConflict
}

// CountByStatus возвращает количество заданий по статусам (для статистики).
func (r *AssignmentRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) FROM assignments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("assignment repository: count by status %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("assignment repository: scan count %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *AssignmentRepository) listFiles(ctx context.Context, assignmentID uuid.UUID) ([]models.StoredFile, error) {
	var files []models.StoredFile
	err := r.db.SelectContext(ctx, &files, `
		SELECT f.* FROM stored_files f
		JOIN assignment_files af ON af.file_id = f.id
		WHERE af.assignment_id = $1
		ORDER BY f.uploaded_at
	`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("assignment repository: list files %w", err)
	}
	return files, nil
}
