package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment описывает задание, размещённое студентом.
// Жизненный цикл: pending_approval -> approved -> in_progress -> submitted -> completed,
// с терминальной веткой pending_approval -> rejected.
type Assignment struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	StudentID       uuid.UUID    `db:"student_id" json:"student_id"`
	Title           string       `db:"title" json:"title"`
	Description     string       `db:"description" json:"description"`
	Budget          float64      `db:"budget" json:"budget"`
	Deadline        time.Time    `db:"deadline" json:"deadline"`
	Status          string       `db:"status" json:"status"`
	WriterID        *uuid.UUID   `db:"writer_id" json:"writer_id,omitempty"`
	RejectionReason *string      `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
	Files           []StoredFile `json:"files,omitempty"`
}

// Task — единица работы, порождаемая 1:1 из одобренного задания.
// Задача доступна для взятия (available) тогда и только тогда, когда
// родительское задание одобрено и автор ещё не назначен.
type Task struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	AssignmentID uuid.UUID  `db:"assignment_id" json:"assignment_id"`
	StudentID    uuid.UUID  `db:"student_id" json:"student_id"`
	WriterID     *uuid.UUID `db:"writer_id" json:"writer_id,omitempty"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	Budget       float64    `db:"budget" json:"budget"`
	Deadline     time.Time  `db:"deadline" json:"deadline"`
	Status       string     `db:"status" json:"status"`
	ClaimedAt    *time.Time `db:"claimed_at" json:"claimed_at,omitempty"`
	SubmittedAt  *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Submission представляет сданную автором работу по задаче.
type Submission struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	TaskID          uuid.UUID    `db:"task_id" json:"task_id"`
	WriterID        uuid.UUID    `db:"writer_id" json:"writer_id"`
	Status          string       `db:"status" json:"status"`
	SubmittedAt     time.Time    `db:"submitted_at" json:"submitted_at"`
	ApprovedAt      *time.Time   `db:"approved_at" json:"approved_at,omitempty"`
	RejectionReason *string      `db:"rejection_reason" json:"rejection_reason,omitempty"`
	Files           []StoredFile `json:"files,omitempty"`
}

// StoredFile описывает загруженный файл: метаданные возвращает файловое
// хранилище, бизнес-слой хранит только их.
type StoredFile struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OwnerID    uuid.UUID `db:"owner_id" json:"owner_id"`
	Name       string    `db:"name" json:"name"`
	URL        string    `db:"url" json:"url"`
	Size       int64     `db:"size" json:"size"`
	MimeType   string    `db:"mime_type" json:"mime_type"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Rating описывает оценку задачи студентом. Не более одной оценки
// на пару (задача, студент).
type Rating struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TaskID    uuid.UUID `db:"task_id" json:"task_id"`
	StudentID uuid.UUID `db:"student_id" json:"student_id"`
	WriterID  uuid.UUID `db:"writer_id" json:"writer_id"`
	Score     int       `db:"score" json:"score"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Notification описывает уведомление пользователя. Уведомления создаются
// как побочный эффект переходов состояний и никогда не меняют бизнес-состояние.
type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Type      string     `db:"type" json:"type"`
	Title     string     `db:"title" json:"title"`
	Message   string     `db:"message" json:"message"`
	IsRead    bool       `db:"is_read" json:"is_read"`
	RelatedID *uuid.UUID `db:"related_id" json:"related_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
