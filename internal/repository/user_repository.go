package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("writer profile not found")
	ErrSessionNotFound = errors.New("session not found")
)

// UserRepository отвечает за пользователей, сессии, профили авторов и кошельки.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт пользователя. Для авторов заводится профиль с квотой,
// для студентов и авторов — кошелёк.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (email, first_name, last_name, password_hash, role, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at, updated_at
	`
	if err := tx.QueryRowxContext(
		ctx, query,
		strings.ToLower(user.Email), user.FirstName, user.LastName,
		user.PasswordHash, user.Role, user.Phone,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return fmt.Errorf("user repository: create %w", err)
	}

	if user.Role == models.RoleWriter {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO writer_profiles (user_id, tier, tasks_remaining, quota_reset_at)
			VALUES ($1, 'free', 0, NOW())
		`, user.ID)
		if err != nil {
			return fmt.Errorf("user repository: create writer profile %w", err)
		}
	}

	if user.Role != models.RoleAdmin {
		_, err = tx.ExecContext(ctx, `INSERT INTO wallets (user_id, balance) VALUES ($1, 0)`, user.ID)
		if err != nil {
			return fmt.Errorf("user repository: create wallet %w", err)
		}
	}

	return tx.Commit()
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, strings.ToLower(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}
	return &user, nil
}

// List возвращает пользователей с фильтром по роли (для админки).
func (r *UserRepository) List(ctx context.Context, role string, limit, offset int) ([]models.User, error) {
	query := `SELECT * FROM users`
	args := []interface{}{}
	argIndex := 1

	if role != "" {
		query += fmt.Sprintf(" WHERE role = $%d", argIndex)
		args = append(args, role)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("user repository: list %w", err)
	}
	return users, nil
}

// UpdateLastLoginAt обновляет время последнего входа.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("user repository: update last login %w", err)
	}
	return nil
}

// GetWriterProfile возвращает профиль автора. Квота лениво сбрасывается,
// если с последнего сброса прошло 24 часа: правило now - quota_reset_at >= 24h,
// скользящее окно без привязки к календарным суткам.
func (r *UserRepository) GetWriterProfile(ctx context.Context, userID uuid.UUID) (*models.WriterProfile, error) {
	var profile models.WriterProfile
	query := `
		UPDATE writer_profiles
		SET tasks_remaining = CASE
				WHEN NOW() - quota_reset_at >= INTERVAL '24 hours'
				THEN CASE tier
					WHEN 'free' THEN 0
					WHEN 'basic' THEN 5
					WHEN 'pro' THEN 9
					ELSE -1
				END
				ELSE tasks_remaining
			END,
			quota_reset_at = CASE
				WHEN NOW() - quota_reset_at >= INTERVAL '24 hours' THEN NOW()
				ELSE quota_reset_at
			END
		WHERE user_id = $1
		RETURNING user_id, rating, completed_tasks, tier, tasks_remaining, quota_reset_at, is_subscribed, updated_at
	`
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("user repository: get writer profile %w", err)
	}
	return &profile, nil
}

// UpdateTier немедленно переводит автора на новый тариф и выставляет
// квоту по новому тарифу.
func (r *UserRepository) UpdateTier(ctx context.Context, userID uuid.UUID, tier string) (*models.WriterProfile, error) {
	var profile models.WriterProfile
	query := `
		UPDATE writer_profiles
		SET tier = $2,
			tasks_remaining = $3,
			quota_reset_at = NOW(),
			is_subscribed = ($2 <> 'free'),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING user_id, rating, completed_tasks, tier, tasks_remaining, quota_reset_at, is_subscribed, updated_at
	`
	if err := r.db.GetContext(ctx, &profile, query, userID, tier, models.TasksPerDayForTier(tier)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("user repository: update tier %w", err)
	}
	return &profile, nil
}

// GetWallet возвращает кошелёк пользователя, создаёт если не существует.
func (r *UserRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING user_id, balance, updated_at
	`
	if err := r.db.GetContext(ctx, &wallet, query, userID); err != nil {
		return nil, fmt.Errorf("user repository: get wallet %w", err)
	}
	return &wallet, nil
}

// CreateSession сохраняет refresh сессию.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		session.UserID, session.RefreshToken, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}
	return nil
}

// GetSessionByToken возвращает сессию по refresh токену.
func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	if err := r.db.GetContext(ctx, &session, `SELECT * FROM sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("user repository: get session %w", err)
	}
	return &session, nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}

// ListSessions возвращает активные сессии пользователя.
func (r *UserRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions WHERE user_id = $1 AND expires_at > NOW() ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("user repository: list sessions %w", err)
	}
	return sessions, nil
}

// DeleteExpiredSessions удаляет протухшие сессии.
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("user repository: delete expired sessions %w", err)
	}
	return result.RowsAffected()
}

// GetWriterStats собирает агрегированную статистику автора.
func (r *UserRepository) GetWriterStats(ctx context.Context, writerID uuid.UUID) (*models.WriterStats, error) {
	profile, err := r.GetWriterProfile(ctx, writerID)
	if err != nil {
		return nil, err
	}

	var ratingCount int
	if err := r.db.GetContext(ctx, &ratingCount,
		`SELECT COUNT(*) FROM ratings WHERE writer_id = $1`, writerID); err != nil {
		return nil, fmt.Errorf("user repository: rating count %w", err)
	}

	var earnings float64
	if err := r.db.GetContext(ctx, &earnings, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE user_id = $1 AND type = 'payout' AND status = 'completed'
	`, writerID); err != nil {
		return nil, fmt.Errorf("user repository: earnings %w", err)
	}

	return &models.WriterStats{
		Rating:         profile.Rating,
		RatingCount:    ratingCount,
		CompletedTasks: profile.CompletedTasks,
		Badge:          profile.Badge(),
		BadgeProgress:  models.ProgressToNextBadge(profile.CompletedTasks),
		TotalEarnings:  earnings,
	}, nil
}
