package persistence

import (
	"context"

	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRetainerChangeRepository implements crm.RetainerChangeRepository using GORM
type GormRetainerChangeRepository struct {
	db *gorm.DB
}

// NewGormRetainerChangeRepository creates a new GormRetainerChangeRepository
func NewGormRetainerChangeRepository(db *gorm.DB) *GormRetainerChangeRepository {
	return &GormRetainerChangeRepository{db: db}
}

// FindByClient finds retainer changes for a client, newest first
func (r *GormRetainerChangeRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]crm.RetainerChange, error) {
	var changeModels []models.RetainerChangeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("changed_at DESC").
		Find(&changeModels).Error; err != nil {
		return nil, err
	}

	changes := make([]crm.RetainerChange, len(changeModels))
	for i, model := range changeModels {
		changes[i] = *model.ToDomain()
	}
	return changes, nil
}

// FindAllForTenant finds all retainer changes for a tenant, newest first
func (r *GormRetainerChangeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]crm.RetainerChange, error) {
	var changeModels []models.RetainerChangeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("changed_at DESC").
		Find(&changeModels).Error; err != nil {
		return nil, err
	}

	changes := make([]crm.RetainerChange, len(changeModels))
	for i, model := range changeModels {
		changes[i] = *model.ToDomain()
	}
	return changes, nil
}

// Save appends a retainer change record
func (r *GormRetainerChangeRepository) Save(ctx context.Context, change *crm.RetainerChange) error {
	model := models.RetainerChangeModelFromDomain(change)
	return r.db.WithContext(ctx).Create(model).Error
}

// DeleteByClient removes the retainer history of a client
func (r *GormRetainerChangeRepository) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.RetainerChangeModel{}, "tenant_id = ? AND client_id = ?", tenantID, clientID).Error
}

// Ensure GormRetainerChangeRepository implements RetainerChangeRepository
var _ crm.RetainerChangeRepository = (*GormRetainerChangeRepository)(nil)
