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
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentSettled    = errors.New("payment already settled")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
)

// PaymentRepository хранит историю финансовых операций и проводит
// зачисления по колбэкам платёжного шлюза.
type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create регистрирует платёж. Для пополнений статус pending до получения
// колбэка шлюза.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	err := r.db.GetContext(ctx, payment, `
		INSERT INTO payments (id, user_id, task_id, type, amount, status, phone_number, reference, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING *
	`, payment.ID, payment.UserID, payment.TaskID, payment.Type, payment.Amount,
		payment.Status, payment.PhoneNumber, payment.Reference, payment.Description)
	if err != nil {
		return fmt.Errorf("payment repository: create %w", err)
	}
	return nil
}

// GetByID возвращает платёж по идентификатору.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, `SELECT * FROM payments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payment repository: get by id %w", err)
	}
	return &payment, nil
}

// GetByReference ищет платёж по ключу идемпотентности шлюза.
func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, `SELECT * FROM payments WHERE reference = $1`, reference); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payment repository: get by reference %w", err)
	}
	return &payment, nil
}

// SettleByReference проводит успешное пополнение: переводит платёж из
// pending в completed и зачисляет сумму в кошелёк в одной транзакции.
// Условный UPDATE делает операцию идемпотентной: повторный колбэк с тем
// же reference не изменит ни платёж, ни баланс.
func (r *PaymentRepository) SettleByReference(ctx context.Context, reference string) (*models.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var payment models.Payment
	err = tx.GetContext(ctx, &payment, `
		UPDATE payments SET status = 'completed', completed_at = NOW()
		WHERE reference = $1 AND status = 'pending'
		RETURNING *
	`, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifySettleConflict(ctx, reference)
		}
		return nil, fmt.Errorf("payment repository: settle %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets SET balance = balance + $2, updated_at = NOW() WHERE user_id = $1
	`, payment.UserID, payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("payment repository: credit wallet %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("payment repository: settle commit %w", err)
	}

	return &payment, nil
}

// FailByReference помечает пополнение неуспешным. Идемпотентна так же,
// как и SettleByReference.
func (r *PaymentRepository) FailByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, `
		UPDATE payments SET status = 'failed', completed_at = NOW()
		WHERE reference = $1 AND status = 'pending'
		RETURNING *
	`, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifySettleConflict(ctx, reference)
		}
		return nil, fmt.Errorf("payment repository: fail %w", err)
	}
	return &payment, nil
}

// classifySettleConflict различает неизвестный reference и уже
// закрытый платёж. Чтение выполняется после отката транзакции: платёж,
// удалённый в этот промежуток, будет назван несуществующим.
func (r *PaymentRepository) classifySettleConflict(ctx context.Context, reference string) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE reference = $1)`, reference); err != nil {
		return fmt.Errorf("payment repository: classify settle conflict %w", err)
	}
	if !exists {
		return ErrPaymentNotFound
	}
	return ErrPaymentSettled
}

// PurchaseSubscription списывает стоимость тарифа с кошелька, фиксирует
// платёж и переводит автора на новый тариф в одной транзакции. Квота
// устанавливается в полный лимит нового тарифа сразу. Условный UPDATE
// кошелька отсекает покупку при недостаточном балансе.
func (r *PaymentRepository) PurchaseSubscription(ctx context.Context, userID uuid.UUID, tier string, price float64, tasksPerDay int) (*models.Payment, *models.WriterProfile, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE wallets SET balance = balance - $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
	`, userID, price)
	if err != nil {
		return nil, nil, fmt.Errorf("payment repository: debit wallet %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("payment repository: debit wallet rows %w", err)
	}
	if affected == 0 {
		return nil, nil, ErrInsufficientFunds
	}

	var payment models.Payment
	err = tx.GetContext(ctx, &payment, `
		INSERT INTO payments (id, user_id, type, amount, status, reference, description, completed_at)
		VALUES ($1, $2, 'subscription', $3, 'completed', $4, $5, NOW())
		RETURNING *
	`, uuid.New(), userID, price,
		fmt.Sprintf("SUB-%s-%d", userID.String(), uuid.New().ID()),
		fmt.Sprintf("подписка на тариф %s", tier))
	if err != nil {
		return nil, nil, fmt.Errorf("payment repository: record subscription %w", err)
	}

	var profile models.WriterProfile
	err = tx.GetContext(ctx, &profile, `
		UPDATE writer_profiles
		SET tier = $2, tasks_remaining = $3, quota_reset_at = NOW(),
		    is_subscribed = ($2 <> 'free'), updated_at = NOW()
		WHERE user_id = $1
		RETURNING user_id, rating, completed_tasks, tier, tasks_remaining, quota_reset_at, is_subscribed, updated_at
	`, userID, tier, tasksPerDay)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrProfileNotFound
		}
		return nil, nil, fmt.Errorf("payment repository: switch tier %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("payment repository: subscription commit %w", err)
	}

	return &payment, &profile, nil
}

// GetWallet возвращает кошелёк пользователя.
func (r *PaymentRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.GetContext(ctx, &wallet, `SELECT * FROM wallets WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("payment repository: get wallet %w", err)
	}
	return &wallet, nil
}

// ListByUser возвращает историю операций пользователя, новые первыми.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT * FROM payments WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("payment repository: list by user %w", err)
	}
	return payments, nil
}
