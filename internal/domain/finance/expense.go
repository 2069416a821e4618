package finance

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a supplier cost attributed to a client. A recurring expense
// seeds the monthly generation batch, which copies it into each new month
// keyed by supplier+client so repeated runs stay idempotent.
type Expense struct {
	shared.TenantAggregateRoot
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Supplier    string          `gorm:"type:varchar(200);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Month       string          `gorm:"type:varchar(7);not null;index"`
	IsRecurring bool            `gorm:"not null;default:false"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// NewExpense creates an expense for a client in the given month (YYYY-MM)
func NewExpense(tenantID, clientID uuid.UUID, supplier, month string, amount decimal.Decimal) (*Expense, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT_ID", "Expense requires a client")
	}
	if supplier == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Expense supplier cannot be empty")
	}
	if err := ValidateMonthKey(month); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount cannot be negative")
	}

	return &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		Supplier:            supplier,
		Amount:              amount,
		Month:               month,
	}, nil
}

// MarkRecurring flags the expense as a monthly-generation seed
func (e *Expense) MarkRecurring(recurring bool) {
	e.IsRecurring = recurring
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// SetAmount updates the expense amount
func (e *Expense) SetAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Expense amount cannot be negative")
	}
	e.Amount = amount
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// DedupKey returns the composite key used by the monthly generation batch
func (e *Expense) DedupKey() string {
	return e.Supplier + "|" + e.ClientID.String()
}

// CopyForMonth creates a fresh expense row for the target month, keeping the
// supplier, client and amount. The copy gets a new id and is not itself
// marked recurring.
func (e *Expense) CopyForMonth(month string) *Expense {
	return &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(e.TenantID),
		ClientID:            e.ClientID,
		Supplier:            e.Supplier,
		Amount:              e.Amount,
		Month:               month,
		Description:         e.Description,
	}
}

// ValidateMonthKey checks a YYYY-MM period key
func ValidateMonthKey(month string) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return shared.NewDomainError("INVALID_MONTH", "Month must be in YYYY-MM format")
	}
	return nil
}
