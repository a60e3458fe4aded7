package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment представляет финансовую операцию: пополнение кошелька,
// выплату автору или возврат. Reference уникален на попытку платежа
// и служит ключом идемпотентности для колбэков шлюза.
type Payment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	TaskID      *uuid.UUID `db:"task_id" json:"task_id,omitempty"`
	Type        string     `db:"type" json:"type"`
	Amount      float64    `db:"amount" json:"amount"`
	Status      string     `db:"status" json:"status"`
	PhoneNumber *string    `db:"phone_number" json:"phone_number,omitempty"`
	Reference   string     `db:"reference" json:"reference"`
	Description *string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
