package dto

import "time"

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateAssignmentRequest represents the request to post an assignment
type CreateAssignmentRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Budget      float64   `json:"budget" binding:"required"`
	Deadline    time.Time `json:"deadline" binding:"required"`
	Attachments []string  `json:"attachment_ids"`
}

// RejectRequest carries a mandatory rejection reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateSubmissionRequest represents the request to submit completed work
type CreateSubmissionRequest struct {
	TaskID      string   `json:"task_id" binding:"required"`
	Attachments []string `json:"attachment_ids" binding:"required"`
}

// TopUpRequest represents the wallet top-up payload
type TopUpRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	PhoneNumber string  `json:"phone_number" binding:"required"`
}

// SubscribeRequest represents the tier purchase payload
type SubscribeRequest struct {
	Tier string `json:"tier" binding:"required"`
}

// CreateRatingRequest represents the request to rate a completed task
type CreateRatingRequest struct {
	Score   int     `json:"score" binding:"required"`
	Comment *string `json:"comment"`
}

// MpesaCallbackRequest mirrors the gateway callback body
type MpesaCallbackRequest struct {
	InvoiceNumber string  `json:"invoiceNumber" binding:"required"`
	ResultCode    string  `json:"resultCode"`
	ResultDesc    string  `json:"resultDesc"`
	Amount        float64 `json:"amount,string"`
	ReceiptNumber string  `json:"receiptNumber"`
}
