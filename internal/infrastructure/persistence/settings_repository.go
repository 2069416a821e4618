package persistence

import (
	"context"
	"errors"

	"github.com/agencycrm/backend/internal/domain/settings"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// FindForTenant returns the settings row, shared.ErrNotFound when absent
func (r *GormSettingsRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*settings.TenantSettings, error) {
	var model models.TenantSettingsModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts or updates the row keyed by tenant_id. Racing
// create-if-missing calls converge on one row instead of erroring.
// Secret columns are never written here.
func (r *GormSettingsRepository) Upsert(ctx context.Context, s *settings.TenantSettings) error {
	model := models.TenantSettingsModelFromDomain(s)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"agency_name", "currency", "language", "timezone",
				"monthly_goal", "logo_key", "updated_at",
			}),
		}).
		Create(model).Error
}

// UpdateSecrets writes only the secret columns and returns the resulting
// presence flags. A nil field leaves the stored value untouched; an empty
// string clears it.
func (r *GormSettingsRepository) UpdateSecrets(ctx context.Context, tenantID uuid.UUID, update settings.SecretUpdate) (bool, bool, error) {
	updates := map[string]interface{}{}
	if update.OpenAIKey != nil {
		updates["open_ai_key"] = *update.OpenAIKey
	}
	if update.WhatsAppKey != nil {
		updates["whats_app_key"] = *update.WhatsAppKey
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.TenantSettingsModel{}).
			Where("tenant_id = ?", tenantID).
			Updates(updates)
		if result.Error != nil {
			return false, false, result.Error
		}
		if result.RowsAffected == 0 {
			return false, false, shared.ErrNotFound
		}
	}

	var model models.TenantSettingsModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, false, shared.ErrNotFound
		}
		return false, false, err
	}
	return model.OpenAIKey != "", model.WhatsAppKey != "", nil
}

// ListTenantIDs returns all tenants that have a settings row
func (r *GormSettingsRepository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.TenantSettingsModel{}).
		Pluck("tenant_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure GormSettingsRepository implements settings.Repository
var _ settings.Repository = (*GormSettingsRepository)(nil)
