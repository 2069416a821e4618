package finance

import (
	"context"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DealRepository defines the interface for deal persistence
type DealRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Deal, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Deal, error)
	FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]Deal, error)
	Save(ctx context.Context, deal *Deal) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Expense, error)
	FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]Expense, error)
	// FindByMonth finds all expenses recorded for a month key
	FindByMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]Expense, error)
	// FindRecurring finds the recurring expense seeds for a tenant
	FindRecurring(ctx context.Context, tenantID uuid.UUID) ([]Expense, error)
	Save(ctx context.Context, expense *Expense) error
	SaveBatch(ctx context.Context, expenses []*Expense) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Payment, error)
	FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]Payment, error)
	// FindByMonth finds all payments recorded for a month key
	FindByMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
	SaveBatch(ctx context.Context, payments []*Payment) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error
}
