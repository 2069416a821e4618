package models

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealModel is the persistence model for the Deal domain entity.
type DealModel struct {
	TenantAggregateModel
	ClientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title    string          `gorm:"type:varchar(200);not null"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status   string          `gorm:"type:varchar(20);not null;default:'open'"`
	Notes    string          `gorm:"type:text"`
	ClosedAt *time.Time
}

// TableName returns the table name for GORM
func (DealModel) TableName() string {
	return "deals"
}

// ToDomain converts the persistence model to a domain Deal entity.
func (m *DealModel) ToDomain() *finance.Deal {
	return &finance.Deal{
		TenantAggregateRoot: m.tenantAggregateToDomain(),
		ClientID:            m.ClientID,
		Title:               m.Title,
		Amount:              m.Amount,
		Status:              finance.DealStatus(m.Status),
		Notes:               m.Notes,
		ClosedAt:            m.ClosedAt,
	}
}

// FromDomain populates the persistence model from a domain Deal entity.
func (m *DealModel) FromDomain(d *finance.Deal) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.ClientID = d.ClientID
	m.Title = d.Title
	m.Amount = d.Amount
	m.Status = string(d.Status)
	m.Notes = d.Notes
	m.ClosedAt = d.ClosedAt
}

// DealModelFromDomain creates a new persistence model from a domain Deal entity.
func DealModelFromDomain(d *finance.Deal) *DealModel {
	m := &DealModel{}
	m.FromDomain(d)
	return m
}

// ExpenseModel is the persistence model for the Expense domain entity.
type ExpenseModel struct {
	TenantAggregateModel
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Supplier    string          `gorm:"type:varchar(200);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Month       string          `gorm:"type:varchar(7);not null;index"`
	IsRecurring bool            `gorm:"not null;default:false"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense entity.
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		TenantAggregateRoot: m.tenantAggregateToDomain(),
		ClientID:            m.ClientID,
		Supplier:            m.Supplier,
		Amount:              m.Amount,
		Month:               m.Month,
		IsRecurring:         m.IsRecurring,
		Description:         m.Description,
	}
}

// FromDomain populates the persistence model from a domain Expense entity.
func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.ClientID = e.ClientID
	m.Supplier = e.Supplier
	m.Amount = e.Amount
	m.Month = e.Month
	m.IsRecurring = e.IsRecurring
	m.Description = e.Description
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense entity.
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}

// PaymentModel is the persistence model for the Payment domain entity.
type PaymentModel struct {
	TenantAggregateModel
	ClientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Month    string          `gorm:"type:varchar(7);not null;index"`
	Method   string          `gorm:"type:varchar(20);not null;default:'transfer'"`
	Paid     bool            `gorm:"not null;default:false"`
	PaidAt   *time.Time
	Notes    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		TenantAggregateRoot: m.tenantAggregateToDomain(),
		ClientID:            m.ClientID,
		Amount:              m.Amount,
		Month:               m.Month,
		Method:              finance.PaymentMethod(m.Method),
		Paid:                m.Paid,
		PaidAt:              m.PaidAt,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.ClientID = p.ClientID
	m.Amount = p.Amount
	m.Month = p.Month
	m.Method = string(p.Method)
	m.Paid = p.Paid
	m.PaidAt = p.PaidAt
	m.Notes = p.Notes
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
