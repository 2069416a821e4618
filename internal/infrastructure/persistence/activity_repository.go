package persistence

import (
	"context"

	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormActivityRepository implements audit.ActivityRepository using GORM.
// The remote table is append-only and uncapped; the in-memory ring buffer
// lives in the application layer.
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// FindRecent returns the newest entries for a tenant, newest first
func (r *GormActivityRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]audit.ActivityEntry, error) {
	if limit <= 0 {
		limit = audit.LocalLogCapacity
	}

	var entryModels []models.ActivityEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]audit.ActivityEntry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Save appends an entry
func (r *GormActivityRepository) Save(ctx context.Context, entry *audit.ActivityEntry) error {
	model := models.ActivityEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// Ensure GormActivityRepository implements ActivityRepository
var _ audit.ActivityRepository = (*GormActivityRepository)(nil)
