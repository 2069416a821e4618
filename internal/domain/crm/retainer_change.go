package crm

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RetainerChange is an immutable audit record created as a side effect of
// a client update that changes the monthly retainer or supplier cost.
// It always carries both the old and new values of each watched field.
type RetainerChange struct {
	shared.BaseEntity
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OldRetainer     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewRetainer     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OldSupplierCost decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewSupplierCost decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ChangedAt       time.Time       `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (RetainerChange) TableName() string {
	return "retainer_changes"
}

// NewRetainerChange creates a retainer change record for a client
func NewRetainerChange(tenantID, clientID uuid.UUID, oldRetainer, newRetainer, oldSupplierCost, newSupplierCost decimal.Decimal) *RetainerChange {
	return &RetainerChange{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tenantID,
		ClientID:        clientID,
		OldRetainer:     oldRetainer,
		NewRetainer:     newRetainer,
		OldSupplierCost: oldSupplierCost,
		NewSupplierCost: newSupplierCost,
		ChangedAt:       time.Now(),
	}
}
