package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements crm.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByIDForTenant finds a client by ID within a tenant
func (r *GormClientRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	var model models.ClientModel
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

// FindAllForTenant finds all clients for a tenant
func (r *GormClientRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Client, error) {
	var clientModels []models.ClientModel
	query := applyFilter(r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("tenant_id = ?", tenantID), filter, clientSearchColumns)

	if err := query.Find(&clientModels).Error; err != nil {
		return nil, err
	}

	clients := make([]crm.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, nil
}

// FindByStatus finds clients by status for a tenant. The filter matches the
// canonical value and any legacy alias that canonicalizes to it, so rows
// written before the status migration are still found.
func (r *GormClientRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status crm.ClientStatus, filter shared.Filter) ([]crm.Client, error) {
	var clientModels []models.ClientModel
	query := applyFilter(
		r.db.WithContext(ctx).Model(&models.ClientModel{}).
			Where("tenant_id = ? AND status IN ?", tenantID, crm.ClientStatusAliases(status)),
		filter,
		clientSearchColumns,
	)

	if err := query.Find(&clientModels).Error; err != nil {
		return nil, err
	}

	clients := make([]crm.Client, len(clientModels))
	for i, model := range clientModels {
		clients[i] = *model.ToDomain()
	}
	return clients, nil
}

// FindActive finds all active clients for a tenant
func (r *GormClientRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]crm.Client, error) {
	return r.FindByStatus(ctx, tenantID, crm.ClientStatusActive, shared.Filter{})
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *crm.Client) error {
	model := models.ClientModelFromDomain(client)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteForTenant deletes a client within a tenant
func (r *GormClientRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ClientModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts clients for a tenant
func (r *GormClientRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("tenant_id = ?", tenantID)
	query = applySearch(query, filter, clientSearchColumns)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var clientSearchColumns = []string{"name", "company", "phone", "email"}

// applyFilter applies search, ordering and pagination to a query
func applyFilter(query *gorm.DB, filter shared.Filter, searchColumns []string) *gorm.DB {
	query = applySearch(query, filter, searchColumns)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applySearch applies the ILIKE search clause to a query
func applySearch(query *gorm.DB, filter shared.Filter, searchColumns []string) *gorm.DB {
	if filter.Search == "" || len(searchColumns) == 0 {
		return query
	}
	pattern := "%" + filter.Search + "%"
	conds := make([]string, len(searchColumns))
	args := make([]interface{}, len(searchColumns))
	for i, col := range searchColumns {
		conds[i] = col + " ILIKE ?"
		args[i] = pattern
	}
	return query.Where(strings.Join(conds, " OR "), args...)
}

// Ensure GormClientRepository implements ClientRepository
var _ crm.ClientRepository = (*GormClientRepository)(nil)
