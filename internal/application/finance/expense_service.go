package finance

import (
	"context"
	"fmt"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpenseService handles expense CRUD
type ExpenseService struct {
	expenses finance.ExpenseRepository
	store    *cache.Store
	activity *appaudit.ActivityLogger
	logger   *zap.Logger
}

// NewExpenseService creates an expense service
func NewExpenseService(expenses finance.ExpenseRepository, store *cache.Store, activity *appaudit.ActivityLogger, logger *zap.Logger) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		expenses: expenses,
		store:    store,
		activity: activity,
		logger:   logger,
	}
}

// Create creates a new expense
func (s *ExpenseService) Create(ctx context.Context, tenantID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := finance.NewExpense(tenantID, req.ClientID, req.Supplier, req.Month, req.Amount)
	if err != nil {
		return nil, err
	}
	if req.IsRecurring {
		expense.MarkRecurring(true)
	}
	if req.Description != "" {
		expense.Description = req.Description
	}

	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.store.UpsertExpense(tenantID, *expense)
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "expense", expense.Supplier, &expense.ID)

	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// Get returns a single expense
func (s *ExpenseService) Get(ctx context.Context, tenantID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}
	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// List returns the expenses of a tenant, optionally restricted to a month
func (s *ExpenseService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]ExpenseResponse, error) {
	var (
		expenses []finance.Expense
		err      error
	)
	if filter.Month != "" {
		if err := finance.ValidateMonthKey(filter.Month); err != nil {
			return nil, err
		}
		expenses, err = s.expenses.FindByMonth(ctx, tenantID, filter.Month)
	} else {
		expenses, err = s.expenses.FindAllForTenant(ctx, tenantID, toSharedFilter(filter))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	items := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		items[i] = ToExpenseResponse(&expenses[i])
	}
	return items, nil
}

// Update applies a partial update to an expense
func (s *ExpenseService) Update(ctx context.Context, tenantID, expenseID uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}

	if req.Supplier != nil && *req.Supplier != "" {
		expense.Supplier = *req.Supplier
	}
	if req.Amount != nil {
		if err := expense.SetAmount(*req.Amount); err != nil {
			return nil, err
		}
	}
	if req.IsRecurring != nil {
		expense.MarkRecurring(*req.IsRecurring)
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}

	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.store.UpsertExpense(tenantID, *expense)
	s.activity.Log(ctx, tenantID, audit.ActionUpdated, "expense", expense.Supplier, &expense.ID)

	resp := ToExpenseResponse(expense)
	return &resp, nil
}

// Delete removes an expense
func (s *ExpenseService) Delete(ctx context.Context, tenantID, expenseID uuid.UUID) error {
	expense, err := s.expenses.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return err
	}

	if err := s.expenses.DeleteForTenant(ctx, tenantID, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.store.RemoveExpense(tenantID, expenseID)
	s.activity.Log(ctx, tenantID, audit.ActionDeleted, "expense", expense.Supplier, &expenseID)

	return nil
}
