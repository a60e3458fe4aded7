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

var ErrFileNotFound = errors.New("file not found")

// FileRepository хранит метаданные загруженных файлов. Содержимым
// занимается файловое хранилище.
type FileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *models.StoredFile) error {
	err := r.db.GetContext(ctx, file, `
		INSERT INTO stored_files (id, owner_id, name, url, size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, file.ID, file.OwnerID, file.Name, file.URL, file.Size, file.MimeType)
	if err != nil {
		return fmt.Errorf("file repository: create %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredFile, error) {
	var file models.StoredFile
	if err := r.db.GetContext(ctx, &file, `SELECT * FROM stored_files WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("file repository: get by id %w", err)
	}
	return &file, nil
}

// GetOwned возвращает файлы из списка, принадлежащие владельцу. Если хоть
// один идентификатор чужой или неизвестный, возвращается ошибка.
func (r *FileRepository) GetOwned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.StoredFile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM stored_files WHERE owner_id = ? AND id IN (?)`, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("file repository: build query %w", err)
	}

	var files []models.StoredFile
	if err := r.db.SelectContext(ctx, &files, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("file repository: get owned %w", err)
	}
	if len(files) != len(ids) {
		return nil, ErrFileNotFound
	}
	return files, nil
}
