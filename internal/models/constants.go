package models

// AssignmentStatus константы статусов заданий
const (
	AssignmentStatusPendingApproval = "pending_approval"
	AssignmentStatusApproved        = "approved"
	AssignmentStatusRejected        = "rejected"
	AssignmentStatusInProgress      = "in_progress"
	AssignmentStatusSubmitted       = "submitted"
	AssignmentStatusCompleted       = "completed"
)

// TaskStatus константы статусов задач
const (
	TaskStatusAvailable  = "available"
	TaskStatusInProgress = "in_progress"
	TaskStatusSubmitted  = "submitted"
	TaskStatusCompleted  = "completed"
)

// SubmissionStatus константы статусов сданных работ
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusApproved  = "approved"
	SubmissionStatusRejected  = "rejected"
)

// PaymentType типы платежей
const (
	PaymentTypeTopup        = "topup"
	PaymentTypePayout       = "payout"
	PaymentTypeRefund       = "refund"
	PaymentTypeSubscription = "subscription"
)

// PaymentStatus статусы платежей
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
)

// Роли пользователей
const (
	RoleStudent = "student"
	RoleWriter  = "writer"
	RoleAdmin   = "admin"
)

// Типы уведомлений
const (
	NotificationAssignmentApproved  = "assignment_approved"
	NotificationAssignmentRejected  = "assignment_rejected"
	NotificationTaskClaimed         = "task_claimed"
	NotificationSubmissionUploaded  = "submission_uploaded"
	NotificationSubmissionApproved  = "submission_approved"
	NotificationSubmissionRejected  = "submission_rejected"
	NotificationPaymentReleased     = "payment_released"
	NotificationRatingReceived      = "rating_received"
	NotificationSubscriptionChanged = "subscription_changed"
)

// ValidAssignmentStatuses список валидных статусов заданий
var ValidAssignmentStatuses = map[string]struct{}{
	AssignmentStatusPendingApproval: {},
	AssignmentStatusApproved:        {},
	AssignmentStatusRejected:        {},
	AssignmentStatusInProgress:      {},
	AssignmentStatusSubmitted:       {},
	AssignmentStatusCompleted:       {},
}

// ValidTaskStatuses список валидных статусов задач
var ValidTaskStatuses = map[string]struct{}{
	TaskStatusAvailable:  {},
	TaskStatusInProgress: {},
	TaskStatusSubmitted:  {},
	TaskStatusCompleted:  {},
}

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleStudent: {},
	RoleWriter:  {},
	RoleAdmin:   {},
}
