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
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskAlreadyClaimed = errors.New("task already claimed")
	ErrQuotaExceeded      = errors.New("daily task quota exceeded")
)

// TaskRepository — единственный источник истины по пулу доступных задач
// и эксклюзивности взятия задачи в работу.
type TaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// GetByID возвращает задачу по идентификатору.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := r.db.GetContext(ctx, &task, `SELECT * FROM tasks WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("task repository: get by id %w", err)
	}
	return &task, nil
}

// ListAvailable возвращает доступные задачи, ближайший дедлайн первым.
func (r *TaskRepository) ListAvailable(ctx context.Context, limit, offset int) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.SelectContext(ctx, &tasks, `
		SELECT * FROM tasks WHERE status = 'available'
		ORDER BY deadline ASC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("task repository: list available %w", err)
	}
	return tasks, nil
}

// ListByWriter возвращает задачи автора, опционально по статусу.
func (r *TaskRepository) ListByWriter(ctx context.Context, writerID uuid.UUID, status string, limit, offset int) ([]models.Task, error) {
	query := `SELECT * FROM tasks WHERE writer_id = $1`
	args := []interface{}{writerID}
	argIndex := 2

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY claimed_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("task repository: list by writer %w", err)
	}
	return tasks, nil
}

// Claim атомарно берёт задачу в работу: в одной транзакции блокируется
// строка профиля автора (сериализация по writer_id), лениво сбрасывается
// квота, проверяется остаток и выполняется условный UPDATE задачи
// (сериализация по task_id через строчную блокировку UPDATE ... WHERE
// status = 'available'). При гонке за одну задачу побеждает ровно один
// автор, квота списывается только у победителя.
func (r *TaskRepository) Claim(ctx context.Context, taskID, writerID uuid.UUID) (*models.Task, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var profile models.WriterProfile
	err = tx.GetContext(ctx, &profile, `
		SELECT * FROM writer_profiles WHERE user_id = $1 FOR UPDATE
	`, writerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrProfileNotFound
		}
		return nil, 0, fmt.Errorf("task repository: lock writer profile %w", err)
	}

	// Ленивый сброс скользящего окна квоты внутри транзакции.
	err = tx.GetContext(ctx, &profile, `
		UPDATE writer_profiles
		SET tasks_remaining = CASE
				WHEN NOW() - quota_reset_at >= INTERVAL '24 hours'
				THEN CASE tier WHEN 'free' THEN 0 WHEN 'basic' THEN 5 WHEN 'pro' THEN 9 ELSE -1 END
				ELSE tasks_remaining
			END,
			quota_reset_at = CASE
				WHEN NOW() - quota_reset_at >= INTERVAL '24 hours' THEN NOW()
				ELSE quota_reset_at
			END
		WHERE user_id = $1
		RETURNING user_id, rating, completed_tasks, tier, tasks_remaining, quota_reset_at, is_subscribed, updated_at
	`, writerID)
	if err != nil {
		return nil, 0, fmt.Errorf("task repository: refresh quota %w", err)
	}

	unlimited := profile.TasksRemaining == models.UnlimitedTasks
	if !unlimited && profile.TasksRemaining <= 0 {
		return nil, 0, ErrQuotaExceeded
	}

	var task models.Task
	err = tx.GetContext(ctx, &task, `
		UPDATE tasks
		SET status = 'in_progress', writer_id = $2, claimed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'available'
		RETURNING *
	`, taskID, writerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, r.classifyClaimConflict(ctx, taskID)
		}
		return nil, 0, fmt.Errorf("task repository: claim update %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE assignments SET status = 'in_progress', writer_id = $2, updated_at = NOW()
		WHERE id = $1
	`, task.AssignmentID, writerID)
	if err != nil {
		return nil, 0, fmt.Errorf("task repository: sync assignment %w", err)
	}

	remaining := models.UnlimitedTasks
	if !unlimited {
		err = tx.GetContext(ctx, &remaining, `
			UPDATE writer_profiles SET tasks_remaining = tasks_remaining - 1, updated_at = NOW()
			WHERE user_id = $1
			RETURNING tasks_remaining
		`, writerID)
		if err != nil {
			return nil, 0, fmt.Errorf("task repository: consume quota %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("task repository: claim commit %w", err)
	}

	return &task, remaining, nil
}

// classifyClaimConflict различает неизвестную задачу и проигранную гонку.
// Чтение выполняется уже после отката транзакции: задача, удалённая в
// этот промежуток, будет названа несуществующей.
func (r *TaskRepository) classifyClaimConflict(ctx context.Context, taskID uuid.UUID) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, taskID); err != nil {
		return fmt.Errorf("task repository: classify claim conflict %w", err)
	}
	if !exists {
		return ErrTaskNotFound
	}
	return ErrTaskAlreadyClaimed
}

// CountByStatus возвращает количество задач по статусам (для статистики).
func (r *TaskRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("task repository: count by status %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("task repository: scan count %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
