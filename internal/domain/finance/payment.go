package finance

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was collected
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCredit   PaymentMethod = "credit"
	PaymentMethodCheck    PaymentMethod = "check"
	PaymentMethodOther    PaymentMethod = "other"
)

// Payment is an incoming payment from a client for a given month
type Payment struct {
	shared.TenantAggregateRoot
	ClientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Month    string          `gorm:"type:varchar(7);not null;index"`
	Method   PaymentMethod   `gorm:"type:varchar(20);not null;default:'transfer'"`
	Paid     bool            `gorm:"not null;default:false"`
	PaidAt   *time.Time
	Notes    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment record for a client in the given month
func NewPayment(tenantID, clientID uuid.UUID, month string, amount decimal.Decimal) (*Payment, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT_ID", "Payment requires a client")
	}
	if err := ValidateMonthKey(month); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Amount:              amount,
		Month:               month,
		Method:              PaymentMethodTransfer,
	}, nil
}

// MarkPaid marks the payment as collected
func (p *Payment) MarkPaid(method PaymentMethod) {
	now := time.Now()
	p.Paid = true
	p.PaidAt = &now
	if method != "" {
		p.Method = method
	}
	p.UpdatedAt = now
	p.IncrementVersion()
}

// DedupKey returns the composite key used by the monthly generation batch
func (p *Payment) DedupKey() string {
	return p.ClientID.String() + "|" + p.Month
}
