package finance

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealStatus represents the status of a deal
type DealStatus string

const (
	DealStatusOpen DealStatus = "open"
	DealStatusWon  DealStatus = "won"
	DealStatusLost DealStatus = "lost"
)

// Deal is a one-off financial opportunity owned by exactly one client
type Deal struct {
	shared.TenantAggregateRoot
	ClientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title    string          `gorm:"type:varchar(200);not null"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status   DealStatus      `gorm:"type:varchar(20);not null;default:'open'"`
	Notes    string          `gorm:"type:text"`
	ClosedAt *time.Time
}

// TableName returns the table name for GORM
func (Deal) TableName() string {
	return "deals"
}

// NewDeal creates a new open deal for a client
func NewDeal(tenantID, clientID uuid.UUID, title string, amount decimal.Decimal) (*Deal, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT_ID", "Deal requires a client")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Deal title cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Deal amount cannot be negative")
	}

	return &Deal{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Title:               title,
		Amount:              amount,
		Status:              DealStatusOpen,
	}, nil
}

// Close moves the deal to a terminal status
func (d *Deal) Close(status DealStatus) error {
	if status != DealStatusWon && status != DealStatusLost {
		return shared.NewDomainError("INVALID_STATUS", "Deal can only close as won or lost")
	}
	if d.Status != DealStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Deal is already closed")
	}

	now := time.Now()
	d.Status = status
	d.ClosedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()

	return nil
}

// SetAmount updates the deal amount
func (d *Deal) SetAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Deal amount cannot be negative")
	}
	d.Amount = amount
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}
