package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jamiljuma2/assignhub-backend/internal/models"
	"github.com/jamiljuma2/assignhub-backend/internal/pkg/apperror"
	"github.com/jamiljuma2/assignhub-backend/internal/repository"
)

// SubscriptionRepository описывает зависимости SubscriptionService.
type SubscriptionRepository interface {
	PurchaseSubscription(ctx context.Context, userID uuid.UUID, tier string, price float64, tasksPerDay int) (*models.Payment, *models.WriterProfile, error)
}

// ProfileRepoForSubscription читает профиль автора.
type ProfileRepoForSubscription interface {
	GetWriterProfile(ctx context.Context, userID uuid.UUID) (*models.WriterProfile, error)
}

// SubscriptionService управляет тарифами авторов. Смена тарифа действует
// немедленно: квота устанавливается в полный лимит нового тарифа.
type SubscriptionService struct {
	repo     SubscriptionRepository
	profiles ProfileRepoForSubscription
	notifier Notifier
}

// NewSubscriptionService создаёт сервис подписок.
func NewSubscriptionService(repo SubscriptionRepository, profiles ProfileRepoForSubscription, notifier Notifier) *SubscriptionService {
	return &SubscriptionService{repo: repo, profiles: profiles, notifier: notifier}
}

// Plans возвращает каталог тарифов.
func (s *SubscriptionService) Plans() []models.SubscriptionPlan {
	return models.SubscriptionPlans
}

// Subscribe переводит автора на платный тариф, списывая стоимость с
// кошелька. Повторная покупка текущего тарифа отклоняется.
func (s *SubscriptionService) Subscribe(ctx context.Context, writerID uuid.UUID, tier string) (*models.Payment, *models.WriterProfile, error) {
	plan, ok := models.PlanByTier(tier)
	if !ok {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "неизвестный тариф")
	}
	if tier == models.TierFree {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "бесплатный тариф не требует покупки")
	}

	profile, err := s.profiles.GetWriterProfile(ctx, writerID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, nil, apperror.New(apperror.ErrCodeForbidden, "подписки доступны только авторам")
		}
		return nil, nil, err
	}
	if profile.Tier == tier {
		return nil, nil, apperror.New(apperror.ErrCodeConflict, "этот тариф уже активен")
	}

	payment, updated, err := s.repo.PurchaseSubscription(ctx, writerID, tier, plan.Price, plan.TasksPerDay)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, nil, apperror.New(apperror.ErrCodeConflict, "недостаточно средств на кошельке")
		case errors.Is(err, repository.ErrProfileNotFound):
			return nil, nil, apperror.New(apperror.ErrCodeForbidden, "подписки доступны только авторам")
		default:
			return nil, nil, err
		}
	}

	s.notifier.Notify(ctx, writerID, models.NotificationSubscriptionChanged,
		"Тариф изменён",
		fmt.Sprintf("Активирован тариф %s, доступно задач в день: %s", plan.Name, formatQuota(updated.TasksRemaining)),
		&payment.ID)

	return payment, updated, nil
}

func formatQuota(remaining int) string {
	if remaining == models.UnlimitedTasks {
		return "без ограничений"
	}
	return fmt.Sprintf("%d", remaining)
}
