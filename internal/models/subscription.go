package models

// Уровни подписки автора
const (
	TierFree    = "free"
	TierBasic   = "basic"
	TierPro     = "pro"
	TierPremium = "premium"
)

// UnlimitedTasks — сентинел безлимитной дневной квоты.
const UnlimitedTasks = -1

// SubscriptionPlan описывает тариф подписки автора.
type SubscriptionPlan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	TasksPerDay int      `json:"tasks_per_day"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// SubscriptionPlans — каталог тарифов. Цены в KES, квоты в задачах в сутки.
var SubscriptionPlans = []SubscriptionPlan{
	{
		ID:          TierFree,
		Name:        "Free",
		Price:       0,
		TasksPerDay: 0,
		Description: "Просмотр задач без возможности брать их в работу",
		Features:    []string{"Просмотр доступных задач", "Профиль автора"},
	},
	{
		ID:          TierBasic,
		Name:        "Basic",
		Price:       200,
		TasksPerDay: 5,
		Description: "До 5 задач в день",
		Features:    []string{"5 задач в день", "Базовая поддержка", "Еженедельные выплаты"},
	},
	{
		ID:          TierPro,
		Name:        "Professional",
		Price:       500,
		TasksPerDay: 9,
		Description: "До 9 задач в день",
		Features:    []string{"9 задач в день", "Приоритетная поддержка", "Ежедневные выплаты", "Продвижение профиля"},
	},
	{
		ID:          TierPremium,
		Name:        "Premium",
		Price:       1000,
		TasksPerDay: UnlimitedTasks,
		Description: "Без ограничений по задачам",
		Features:    []string{"Безлимитные задачи", "Поддержка 24/7", "Уведомления в реальном времени", "Premium значок"},
	},
}

// PlanByTier возвращает тариф по идентификатору уровня.
func PlanByTier(tier string) (SubscriptionPlan, bool) {
	for _, plan := range SubscriptionPlans {
		if plan.ID == tier {
			return plan, true
		}
	}
	return SubscriptionPlan{}, false
}

// TasksPerDayForTier возвращает дневную квоту тарифа.
// Неизвестный тариф трактуется как free.
func TasksPerDayForTier(tier string) int {
	if plan, ok := PlanByTier(tier); ok {
		return plan.TasksPerDay
	}
	return 0
}
