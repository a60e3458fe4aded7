package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
)

// FileRepository хранит метаданные файлов.
type FileRepository interface {
	Create(ctx context.Context, file *models.StoredFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StoredFile, error)
}

// FileSaver сохраняет содержимое файла.
type FileSaver interface {
	Save(ctx context.Context, ownerID uuid.UUID, originalName string, r io.Reader) (string, int64, string, error)
	Delete(ctx context.Context, relativePath string) error
}

// FileService принимает загрузки вложений. Тип файла определяется по
// содержимому, размер ограничен хранилищем.
type FileService struct {
	repo    FileRepository
	storage FileSaver
}

// NewFileService создаёт сервис файлов.
func NewFileService(repo FileRepository, storage FileSaver) *FileService {
	return &FileService{repo: repo, storage: storage}
}

// Upload сохраняет файл и возвращает его метаданные.
func (s *FileService) Upload(ctx context.Context, ownerID uuid.UUID, name string, r io.Reader) (*models.StoredFile, error) {
	relativePath, size, mimeType, err := s.storage.Save(ctx, ownerID, name, r)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	file := &models.StoredFile{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Name:     name,
		URL:      "/uploads/" + relativePath,
		Size:     size,
		MimeType: mimeType,
	}

	if err := s.repo.Create(ctx, file); err != nil {
		// Содержимое без метаданных бесполезно, убираем его.
		_ = s.storage.Delete(ctx, relativePath)
		return nil, err
	}

	return file, nil
}
