package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/mpesa"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
)

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) SettleByReference(ctx context.Context, reference string) (*models.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) FailByReference(ctx context.Context, reference string) (*models.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockPaymentRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Payment, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Payment), args.Error(1)
}

type mockStkPusher struct {
	mock.Mock
}

func (m *mockStkPusher) InitiateStkPush(ctx context.Context, phoneNumber string, amount float64, reference string) (*mpesa.StkPushResult, error) {
	args := m.Called(ctx, phoneNumber, amount, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mpesa.StkPushResult), args.Error(1)
}

func TestPaymentService_TopUp_Success(t *testing.T) {
	repo := new(mockPaymentRepo)
	gateway := new(mockStkPusher)
	svc := NewPaymentService(repo, gateway, new(mockNotifier), 10)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(nil)
	gateway.On("InitiateStkPush", ctx, "254712345678", float64(500), mock.AnythingOfType("string")).
		Return(&mpesa.StkPushResult{CustomerMessage: "Введите PIN на телефоне"}, nil)

	result, err := svc.TopUp(ctx, userID, 500, "0712345678")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, result.Payment.Status)
	assert.Equal(t, models.PaymentTypeTopup, result.Payment.Type)
	assert.Equal(t, "Введите PIN на телефоне", result.CustomerMessage)
	gateway.AssertExpectations(t)
}

func TestPaymentService_TopUp_BelowMinimum(t *testing.T) {
	svc := NewPaymentService(new(mockPaymentRepo), new(mockStkPusher), new(mockNotifier), 10)

	_, err := svc.TopUp(context.Background(), uuid.New(), 5, "0712345678")
	assert.True(t, apperror.IsValidation(err))
}

func TestPaymentService_TopUp_InvalidPhone(t *testing.T) {
	svc := NewPaymentService(new(mockPaymentRepo), new(mockStkPusher), new(mockNotifier), 10)

	_, err := svc.TopUp(context.Background(), uuid.New(), 500, "12345")
	assert.True(t, apperror.IsValidation(err))
}

func TestPaymentService_TopUp_GatewayRejected(t *testing.T) {
	repo := new(mockPaymentRepo)
	gateway := new(mockStkPusher)
	svc := NewPaymentService(repo, gateway, new(mockNotifier), 10)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Payment")).Return(nil)
	gateway.On("InitiateStkPush", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("gateway timeout"))

	_, err := svc.TopUp(ctx, uuid.New(), 500, "0712345678")
	assert.Error(t, err)
	assert.Equal(t, 400, apperror.Status(err))
}

func TestPaymentService_HandleCallback_Success(t *testing.T) {
	repo := new(mockPaymentRepo)
	notifier := new(mockNotifier)
	svc := NewPaymentService(repo, new(mockStkPusher), notifier, 10)
	ctx := context.Background()

	userID := uuid.New()
	settled := &models.Payment{ID: uuid.New(), UserID: userID, Amount: 500, Status: models.PaymentStatusCompleted}
	repo.On("SettleByReference", ctx, "TOPUP-abc").Return(settled, nil)
	notifier.On("Notify", ctx, userID, models.NotificationPaymentReleased,
		mock.Anything, mock.Anything, mock.Anything).Return()

	err := svc.HandleCallback(ctx, &mpesa.CallbackPayload{InvoiceNumber: "TOPUP-abc", ResultCode: "0"})
	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestPaymentService_HandleCallback_Idempotent(t *testing.T) {
	repo := new(mockPaymentRepo)
	notifier := new(mockNotifier)
	svc := NewPaymentService(repo, new(mockStkPusher), notifier, 10)
	ctx := context.Background()

	// Повторный колбэк по уже зачисленному платежу не является ошибкой
	// и не порождает ни второго зачисления, ни уведомления.
	repo.On("SettleByReference", ctx, "TOPUP-abc").Return(nil, repository.ErrPaymentSettled)

	err := svc.HandleCallback(ctx, &mpesa.CallbackPayload{InvoiceNumber: "TOPUP-abc", ResultCode: "0"})
	assert.NoError(t, err)
	notifier.AssertNotCalled(t, "Notify")
}

func TestPaymentService_HandleCallback_Failed(t *testing.T) {
	repo := new(mockPaymentRepo)
	notifier := new(mockNotifier)
	svc := NewPaymentService(repo, new(mockStkPusher), notifier, 10)
	ctx := context.Background()

	failed := &models.Payment{ID: uuid.New(), Status: models.PaymentStatusFailed}
	repo.On("FailByReference", ctx, "TOPUP-abc").Return(failed, nil)

	err := svc.HandleCallback(ctx, &mpesa.CallbackPayload{InvoiceNumber: "TOPUP-abc", ResultCode: "1032"})
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "SettleByReference")
	notifier.AssertNotCalled(t, "Notify")
}

func TestPaymentService_HandleCallback_FailureAfterSettleRecordsRefund(t *testing.T) {
	repo := new(mockPaymentRepo)
	notifier := new(mockNotifier)
	svc := NewPaymentService(repo, new(mockStkPusher), notifier, 10)
	ctx := context.Background()

	settled := &models.Payment{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Type:   models.PaymentTypeTopup,
		Amount: 750,
		Status: models.PaymentStatusCompleted,
	}
	repo.On("FailByReference", ctx, "TOPUP-abc").Return(nil, repository.ErrPaymentSettled)
	repo.On("GetByReference", ctx, "TOPUP-abc").Return(settled, nil)
	repo.On("GetByReference", ctx, "REFUND-"+settled.ID.String()).Return(nil, repository.ErrPaymentNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(p *models.Payment) bool {
		return p.Type == models.PaymentTypeRefund &&
			p.UserID == settled.UserID &&
			p.Amount == settled.Amount &&
			p.Status == models.PaymentStatusPending
	})).Return(nil)

	err := svc.HandleCallback(ctx, &mpesa.CallbackPayload{InvoiceNumber: "TOPUP-abc", ResultCode: "1032"})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
	notifier.AssertNotCalled(t, "Notify")
}

func TestPaymentService_HandleCallback_UnknownReference(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockStkPusher), new(mockNotifier), 10)
	ctx := context.Background()

	repo.On("SettleByReference", ctx, "TOPUP-ghost").Return(nil, repository.ErrPaymentNotFound)

	err := svc.HandleCallback(ctx, &mpesa.CallbackPayload{InvoiceNumber: "TOPUP-ghost", ResultCode: "0"})
	assert.ErrorIs(t, err, apperror.ErrPaymentNotFound)
}

func TestPaymentService_HandleCallback_MissingReference(t *testing.T) {
	svc := NewPaymentService(new(mockPaymentRepo), new(mockStkPusher), new(mockNotifier), 10)

	err := svc.HandleCallback(context.Background(), &mpesa.CallbackPayload{ResultCode: "0"})
	assert.True(t, apperror.IsValidation(err))
}

func TestPaymentService_Wallet(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockStkPusher), new(mockNotifier), 10)
	ctx := context.Background()
	userID := uuid.New()

	wallet := &models.Wallet{UserID: userID, Balance: 1250.50}
	repo.On("GetWallet", ctx, userID).Return(wallet, nil)

	got, err := svc.Wallet(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, 1250.50, got.Balance)
}

func TestPaymentService_History_DefaultLimit(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := NewPaymentService(repo, new(mockStkPusher), new(mockNotifier), 10)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("ListByUser", ctx, userID, 20, 0).Return([]models.Payment{}, nil)

	_, err := svc.History(ctx, userID, 0, 0)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
