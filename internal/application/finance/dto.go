package finance

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDealRequest carries the fields for creating a deal
type CreateDealRequest struct {
	ClientID uuid.UUID       `json:"client_id" binding:"required"`
	Title    string          `json:"title" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    string          `json:"notes"`
}

// UpdateDealRequest carries the fields for updating a deal. Nil fields
// are left untouched.
type UpdateDealRequest struct {
	Title  *string          `json:"title"`
	Amount *decimal.Decimal `json:"amount"`
	Status *string          `json:"status"`
	Notes  *string          `json:"notes"`
}

// DealResponse is the deal representation returned to callers
type DealResponse struct {
	ID        uuid.UUID       `json:"id"`
	ClientID  uuid.UUID       `json:"client_id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Notes     string          `json:"notes"`
	ClosedAt  *time.Time      `json:"closed_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToDealResponse converts a domain deal to a response
func ToDealResponse(d *finance.Deal) DealResponse {
	return DealResponse{
		ID:        d.ID,
		ClientID:  d.ClientID,
		Title:     d.Title,
		Amount:    d.Amount,
		Status:    string(d.Status),
		Notes:     d.Notes,
		ClosedAt:  d.ClosedAt,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// CreateExpenseRequest carries the fields for creating an expense
type CreateExpenseRequest struct {
	ClientID    uuid.UUID       `json:"client_id" binding:"required"`
	Supplier    string          `json:"supplier" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Month       string          `json:"month" binding:"required"`
	IsRecurring bool            `json:"is_recurring"`
	Description string          `json:"description"`
}

// UpdateExpenseRequest carries the fields for updating an expense. Nil
// fields are left untouched.
type UpdateExpenseRequest struct {
	Supplier    *string          `json:"supplier"`
	Amount      *decimal.Decimal `json:"amount"`
	IsRecurring *bool            `json:"is_recurring"`
	Description *string          `json:"description"`
}

// ExpenseResponse is the expense representation returned to callers
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	ClientID    uuid.UUID       `json:"client_id"`
	Supplier    string          `json:"supplier"`
	Amount      decimal.Decimal `json:"amount"`
	Month       string          `json:"month"`
	IsRecurring bool            `json:"is_recurring"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToExpenseResponse converts a domain expense to a response
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		ClientID:    e.ClientID,
		Supplier:    e.Supplier,
		Amount:      e.Amount,
		Month:       e.Month,
		IsRecurring: e.IsRecurring,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// CreatePaymentRequest carries the fields for creating a payment
type CreatePaymentRequest struct {
	ClientID uuid.UUID       `json:"client_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Month    string          `json:"month" binding:"required"`
	Method   string          `json:"method"`
	Notes    string          `json:"notes"`
}

// UpdatePaymentRequest carries the fields for updating a payment. Nil
// fields are left untouched.
type UpdatePaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Paid   *bool            `json:"paid"`
	Method *string          `json:"method"`
	Notes  *string          `json:"notes"`
}

// PaymentResponse is the payment representation returned to callers
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	ClientID  uuid.UUID       `json:"client_id"`
	Amount    decimal.Decimal `json:"amount"`
	Month     string          `json:"month"`
	Method    string          `json:"method"`
	Paid      bool            `json:"paid"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToPaymentResponse converts a domain payment to a response
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		ClientID:  p.ClientID,
		Amount:    p.Amount,
		Month:     p.Month,
		Method:    string(p.Method),
		Paid:      p.Paid,
		PaidAt:    p.PaidAt,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ListFilter carries list query parameters shared by the finance resources
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Month    string `form:"month"`
}

// GenerationResult reports how many rows a monthly generation run created
type GenerationResult struct {
	Month    string `json:"month"`
	Expenses int    `json:"expenses"`
	Payments int    `json:"payments"`
}
