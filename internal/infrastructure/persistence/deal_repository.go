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

// GormDealRepository implements finance.DealRepository using GORM
type GormDealRepository struct {
	db *gorm.DB
}

// NewGormDealRepository creates a new GormDealRepository
func NewGormDealRepository(db *gorm.DB) *GormDealRepository {
	return &GormDealRepository{db: db}
}

// FindByIDForTenant finds a deal by ID within a tenant
func (r *GormDealRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Deal, error) {
	var model models.DealModel
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

// FindAllForTenant finds all deals for a tenant
func (r *GormDealRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Deal, error) {
	var dealModels []models.DealModel
	query := applyFilter(r.db.WithContext(ctx).Model(&models.DealModel{}).Where("tenant_id = ?", tenantID), filter, []string{"title"})

	if err := query.Find(&dealModels).Error; err != nil {
		return nil, err
	}

	deals := make([]finance.Deal, len(dealModels))
	for i, model := range dealModels {
		deals[i] = *model.ToDomain()
	}
	return deals, nil
}

// FindByClient finds all deals belonging to a client
func (r *GormDealRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Deal, error) {
	var dealModels []models.DealModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("created_at DESC").
		Find(&dealModels).Error; err != nil {
		return nil, err
	}

	deals := make([]finance.Deal, len(dealModels))
	for i, model := range dealModels {
		deals[i] = *model.ToDomain()
	}
	return deals, nil
}

// Save creates or updates a deal
func (r *GormDealRepository) Save(ctx context.Context, deal *finance.Deal) error {
	model := models.DealModelFromDomain(deal)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteForTenant deletes a deal within a tenant
func (r *GormDealRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DealModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByClient deletes all deals belonging to a client
func (r *GormDealRepository) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.DealModel{}, "tenant_id = ? AND client_id = ?", tenantID, clientID).Error
}

// Ensure GormDealRepository implements DealRepository
var _ finance.DealRepository = (*GormDealRepository)(nil)
