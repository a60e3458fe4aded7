package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает пользователя платформы: студента, автора или администратора.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// WriterProfile хранит поля, специфичные для роли автора: рейтинг,
// количество завершённых задач и дневную квоту по подписке.
type WriterProfile struct {
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Rating         float64   `db:"rating" json:"rating"`
	CompletedTasks int       `db:"completed_tasks" json:"completed_tasks"`
	Tier           string    `db:"tier" json:"tier"`
	TasksRemaining int       `db:"tasks_remaining" json:"tasks_remaining"`
	QuotaResetAt   time.Time `db:"quota_reset_at" json:"quota_reset_at"`
	IsSubscribed   bool      `db:"is_subscribed" json:"is_subscribed"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Badge возвращает значок автора, вычисляемый из количества завершённых задач.
func (p *WriterProfile) Badge() string {
	return BadgeForCompletedTasks(p.CompletedTasks)
}

// Wallet представляет кошелёк пользователя.
type Wallet struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Balance   float64   `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// WriterStats содержит агрегированную статистику автора для публичного профиля.
type WriterStats struct {
	Rating         float64       `json:"rating"`
	RatingCount    int           `json:"rating_count"`
	CompletedTasks int           `json:"completed_tasks"`
	Badge          string        `json:"badge"`
	BadgeProgress  BadgeProgress `json:"badge_progress"`
	TotalEarnings  float64       `json:"total_earnings"`
}
