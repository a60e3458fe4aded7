package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/mpesa"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
	"github.com/jamiljuma2/assignhub-backend/internal/validation"
)

// PaymentRepository описывает зависимости PaymentService.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	SettleByReference(ctx context.Context, reference string) (*models.Payment, error)
	FailByReference(ctx context.Context, reference string) (*models.Payment, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Payment, error)
}

// StkPusher инициирует STK Push на телефон плательщика.
type StkPusher interface {
	InitiateStkPush(ctx context.Context, phoneNumber string, amount float64, reference string) (*mpesa.StkPushResult, error)
}

// TopUpResult — итог инициации пополнения.
type TopUpResult struct {
	Payment         *models.Payment `json:"payment"`
	CustomerMessage string          `json:"customer_message"`
}

// PaymentService управляет кошельком и пополнениями через M-Pesa.
// Пополнение двухфазное: STK Push создаёт платёж в статусе pending,
// зачисление происходит только по колбэку шлюза.
type PaymentService struct {
	repo        PaymentRepository
	gateway     StkPusher
	notifier    Notifier
	minTopupKES float64
}

// NewPaymentService создаёт сервис платежей.
func NewPaymentService(repo PaymentRepository, gateway StkPusher, notifier Notifier, minTopupKES float64) *PaymentService {
	return &PaymentService{
		repo:        repo,
		gateway:     gateway,
		notifier:    notifier,
		minTopupKES: minTopupKES,
	}
}

// Wallet возвращает кошелёк пользователя.
func (s *PaymentService) Wallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return wallet, nil
}

// TopUp инициирует пополнение кошелька через STK Push. Баланс не
// меняется до подтверждения платежа шлюзом.
func (s *PaymentService) TopUp(ctx context.Context, userID uuid.UUID, amount float64, phone string) (*TopUpResult, error) {
	if amount < s.minTopupKES {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("минимальная сумма пополнения %.0f KES", s.minTopupKES))
	}

	normalizedPhone, err := validation.NormalizePhone(phone)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	payment := &models.Payment{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        models.PaymentTypeTopup,
		Amount:      amount,
		Status:      models.PaymentStatusPending,
		PhoneNumber: &normalizedPhone,
		Reference:   fmt.Sprintf("TOPUP-%s", uuid.NewString()),
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	result, err := s.gateway.InitiateStkPush(ctx, normalizedPhone, amount, payment.Reference)
	if err != nil {
		// Платёж остаётся pending; шлюз может прислать колбэк позже,
		// а неоплаченные pending не влияют на баланс.
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest,
			"платёжный шлюз отклонил запрос, попробуйте позже")
	}

	return &TopUpResult{Payment: payment, CustomerMessage: result.CustomerMessage}, nil
}

// HandleCallback обрабатывает колбэк шлюза. Повторные колбэки с тем же
// reference не меняют состояние: зачисление идемпотентно.
func (s *PaymentService) HandleCallback(ctx context.Context, payload *mpesa.CallbackPayload) error {
	if payload.InvoiceNumber == "" {
		return apperror.New(apperror.ErrCodeValidation, "колбэк без reference")
	}

	if !payload.Succeeded() {
		_, err := s.repo.FailByReference(ctx, payload.InvoiceNumber)
		if errors.Is(err, repository.ErrPaymentSettled) {
			// Шлюз отменил уже зачисленный платёж. Фиксируем возврат
			// отдельной записью, баланс корректирует оператор вручную.
			return s.recordRefund(ctx, payload.InvoiceNumber)
		}
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return apperror.ErrPaymentNotFound
		}
		return err
	}

	payment, err := s.repo.SettleByReference(ctx, payload.InvoiceNumber)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentSettled) {
			return nil
		}
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return apperror.ErrPaymentNotFound
		}
		return err
	}

	s.notifier.Notify(ctx, payment.UserID, models.NotificationPaymentReleased,
		"Кошелёк пополнен",
		fmt.Sprintf("Пополнение на %.2f KES зачислено", payment.Amount),
		&payment.ID)

	return nil
}

func (s *PaymentService) recordRefund(ctx context.Context, reference string) error {
	original, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return err
	}
	if original.Status != models.PaymentStatusCompleted {
		return nil
	}

	refundRef := fmt.Sprintf("REFUND-%s", original.ID)
	if _, err := s.repo.GetByReference(ctx, refundRef); err == nil {
		// Возврат уже зафиксирован, повторный колбэк игнорируем.
		return nil
	} else if !errors.Is(err, repository.ErrPaymentNotFound) {
		return err
	}

	refund := &models.Payment{
		ID:        uuid.New(),
		UserID:    original.UserID,
		Type:      models.PaymentTypeRefund,
		Amount:    original.Amount,
		Status:    models.PaymentStatusPending,
		Reference: refundRef,
	}
	description := fmt.Sprintf("отмена шлюзом платежа %s", original.Reference)
	refund.Description = &description

	return s.repo.Create(ctx, refund)
}

// History возвращает историю операций пользователя.
func (s *PaymentService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
