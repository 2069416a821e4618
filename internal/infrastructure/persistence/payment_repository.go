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

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForTenant finds a payment by ID within a tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
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

// FindAllForTenant finds all payments for a tenant
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Payment, error) {
	var paymentModels []models.PaymentModel
	query := applyFilter(r.db.WithContext(ctx).Model(&models.PaymentModel{}).Where("tenant_id = ?", tenantID), filter, nil)

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return paymentModelsToDomain(paymentModels), nil
}

// FindByClient finds all payments from a client
func (r *GormPaymentRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("month DESC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return paymentModelsToDomain(paymentModels), nil
}

// FindByMonth finds all payments recorded for a month key
func (r *GormPaymentRepository) FindByMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]finance.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND month = ?", tenantID, month).
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return paymentModelsToDomain(paymentModels), nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveBatch creates or updates multiple payments
func (r *GormPaymentRepository) SaveBatch(ctx context.Context, payments []*finance.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	paymentModels := make([]*models.PaymentModel, len(payments))
	for i, p := range payments {
		paymentModels[i] = models.PaymentModelFromDomain(p)
	}
	return r.db.WithContext(ctx).Save(paymentModels).Error
}

// DeleteForTenant deletes a payment within a tenant
func (r *GormPaymentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByClient deletes all payments from a client
func (r *GormPaymentRepository) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.PaymentModel{}, "tenant_id = ? AND client_id = ?", tenantID, clientID).Error
}

func paymentModelsToDomain(paymentModels []models.PaymentModel) []finance.Payment {
	payments := make([]finance.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
