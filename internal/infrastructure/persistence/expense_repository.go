package persistence

import (
	"context"
	"errors"

	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByIDForTenant finds an expense by ID within a tenant
func (r *GormExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all expenses for a tenant
func (r *GormExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, error) {
	var expenseModels []models.ExpenseModel
	query := applyFilter(r.db.WithContext(ctx).Model(&models.ExpenseModel{}).Where("tenant_id = ?", tenantID), filter, []string{"supplier"})

	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}

	return expenseModelsToDomain(expenseModels), nil
}

// FindByClient finds all expenses attributed to a client
func (r *GormExpenseRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Expense, error) {
	var expenseModels []models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("month DESC").
		Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	return expenseModelsToDomain(expenseModels), nil
}

// FindByMonth finds all expenses recorded for a month key
func (r *GormExpenseRepository) FindByMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]finance.Expense, error) {
	var expenseModels []models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND month = ?", tenantID, month).
		Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	return expenseModelsToDomain(expenseModels), nil
}

// FindRecurring finds the recurring expense seeds for a tenant
func (r *GormExpenseRepository) FindRecurring(ctx context.Context, tenantID uuid.UUID) ([]finance.Expense, error) {
	var expenseModels []models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_recurring = ?", tenantID, true).
		Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	return expenseModelsToDomain(expenseModels), nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	model := models.ExpenseModelFromDomain(expense)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveBatch creates or updates multiple expenses
func (r *GormExpenseRepository) SaveBatch(ctx context.Context, expenses []*finance.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	expenseModels := make([]*models.ExpenseModel, len(expenses))
	for i, e := range expenses {
		expenseModels[i] = models.ExpenseModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Save(expenseModels).Error
}

// DeleteForTenant deletes an expense within a tenant
func (r *GormExpenseRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExpenseModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByClient deletes all expenses attributed to a client
func (r *GormExpenseRepository) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.ExpenseModel{}, "tenant_id = ? AND client_id = ?", tenantID, clientID).Error
}

func expenseModelsToDomain(expenseModels []models.ExpenseModel) []finance.Expense {
	expenses := make([]finance.Expense, len(expenseModels))
	for i, model := range expenseModels {
		expenses[i] = *model.ToDomain()
	}
	return expenses
}

// Ensure GormExpenseRepository implements ExpenseRepository
var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
