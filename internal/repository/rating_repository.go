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
	ErrRatingNotFound  = errors.New("rating not found")
	ErrDuplicateRating = errors.New("rating already exists")
)

// RatingRepository хранит оценки задач и поддерживает актуальный средний
// рейтинг в профиле автора.
type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create сохраняет оценку и в той же транзакции пересчитывает средний
// рейтинг автора по всем его оценкам. Уникальное ограничение на пару
// (task_id, student_id) отсекает повторные оценки и при гонке.
func (r *RatingRepository) Create(ctx context.Context, rating *models.Rating) (float64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, rating, `
		INSERT INTO ratings (id, task_id, student_id, writer_id, score, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, rating.ID, rating.TaskID, rating.StudentID, rating.WriterID, rating.Score, rating.Comment)
	if err != nil {
		if isUniqueViolation(err, "") {
			return 0, ErrDuplicateRating
		}
		return 0, fmt.Errorf("rating repository: create %w", err)
	}

	var newRating float64
	err = tx.GetContext(ctx, &newRating, `
		UPDATE writer_profiles
		SET rating = (SELECT ROUND(AVG(score)::numeric, 1) FROM ratings WHERE writer_id = $1),
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING rating
	`, rating.WriterID)
	if err != nil {
		return 0, fmt.Errorf("rating repository: recompute rating %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("rating repository: create commit %w", err)
	}

	return newRating, nil
}

// GetByTask возвращает оценку задачи, если она выставлена.
func (r *RatingRepository) GetByTask(ctx context.Context, taskID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.GetContext(ctx, &rating, `SELECT * FROM ratings WHERE task_id = $1`, taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("rating repository: get by task %w", err)
	}
	return &rating, nil
}

// ListByWriter возвращает оценки автора, новые первыми.
func (r *RatingRepository) ListByWriter(ctx context.Context, writerID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.SelectContext(ctx, &ratings, `
		SELECT * FROM ratings WHERE writer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, writerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("rating repository: list by writer %w", err)
	}
	return ratings, nil
}
