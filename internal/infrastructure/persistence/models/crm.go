package models

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for the Client domain entity.
// Status values are canonicalized on read so legacy rows written with
// English statuses keep loading cleanly.
type ClientModel struct {
	TenantAggregateModel
	Name                string          `gorm:"type:varchar(200);not null"`
	Company             string          `gorm:"type:varchar(200)"`
	Phone               string          `gorm:"type:varchar(50);index"`
	Email               string          `gorm:"type:varchar(200);index"`
	Status              string          `gorm:"type:varchar(50);not null"`
	Rating              int             `gorm:"not null;default:0;check:rating >= 0"`
	MonthlyRetainer     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SupplierCostMonthly decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ServiceKeys         string          `gorm:"type:jsonb;not null;default:'[]'"`
	AssignedTo          string          `gorm:"type:varchar(100)"`
	Notes               string          `gorm:"type:text"`
	JoinedAt            time.Time       `gorm:"not null"`
	ChurnedAt           *time.Time
	NextReviewAt        *time.Time
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *crm.Client {
	return &crm.Client{
		TenantAggregateRoot: m.tenantAggregateToDomain(),
		Name:                m.Name,
		Company:             m.Company,
		Phone:               m.Phone,
		Email:               m.Email,
		Status:              crm.CanonicalClientStatus(m.Status),
		Rating:              m.Rating,
		MonthlyRetainer:     m.MonthlyRetainer,
		SupplierCostMonthly: m.SupplierCostMonthly,
		ServiceKeys:         decodeStringList(m.ServiceKeys),
		AssignedTo:          m.AssignedTo,
		Notes:               m.Notes,
		JoinedAt:            m.JoinedAt,
		ChurnedAt:           m.ChurnedAt,
		NextReviewAt:        m.NextReviewAt,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *crm.Client) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Company = c.Company
	m.Phone = c.Phone
	m.Email = c.Email
	m.Status = string(c.Status)
	m.Rating = c.Rating
	m.MonthlyRetainer = c.MonthlyRetainer
	m.SupplierCostMonthly = c.SupplierCostMonthly
	m.ServiceKeys = encodeStringList(c.ServiceKeys)
	m.AssignedTo = c.AssignedTo
	m.Notes = c.Notes
	m.JoinedAt = c.JoinedAt
	m.ChurnedAt = c.ChurnedAt
	m.NextReviewAt = c.NextReviewAt
}

// ClientModelFromDomain creates a new persistence model from a domain Client entity.
func ClientModelFromDomain(c *crm.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

// LeadModel is the persistence model for the Lead domain entity.
type LeadModel struct {
	TenantAggregateModel
	Name            string          `gorm:"type:varchar(200);not null"`
	Company         string          `gorm:"type:varchar(200)"`
	Phone           string          `gorm:"type:varchar(50);index"`
	Email           string          `gorm:"type:varchar(200);index"`
	Source          string          `gorm:"type:varchar(100)"`
	Status          string          `gorm:"type:varchar(50);not null"`
	QuotedValue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RelatedClientID *uuid.UUID      `gorm:"type:uuid;index"`
	AssignedTo      string          `gorm:"type:varchar(100)"`
	Notes           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the persistence model to a domain Lead entity.
func (m *LeadModel) ToDomain() *crm.Lead {
	return &crm.Lead{
		TenantAggregateRoot: m.tenantAggregateToDomain(),
		Name:                m.Name,
		Company:             m.Company,
		Phone:               m.Phone,
		Email:               m.Email,
		Source:              m.Source,
		Status:              crm.CanonicalLeadStatus(m.Status),
		QuotedValue:         m.QuotedValue,
		RelatedClientID:     m.RelatedClientID,
		AssignedTo:          m.AssignedTo,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Lead entity.
func (m *LeadModel) FromDomain(l *crm.Lead) {
	m.FromDomainTenantAggregateRoot(l.TenantAggregateRoot)
	m.Name = l.Name
	m.Company = l.Company
	m.Phone = l.Phone
	m.Email = l.Email
	m.Source = l.Source
	m.Status = string(l.Status)
	m.QuotedValue = l.QuotedValue
	m.RelatedClientID = l.RelatedClientID
	m.AssignedTo = l.AssignedTo
	m.Notes = l.Notes
}

// LeadModelFromDomain creates a new persistence model from a domain Lead entity.
func LeadModelFromDomain(l *crm.Lead) *LeadModel {
	m := &LeadModel{}
	m.FromDomain(l)
	return m
}

// RetainerChangeModel is the persistence model for RetainerChange records.
type RetainerChangeModel struct {
	BaseModel
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OldRetainer     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewRetainer     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OldSupplierCost decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewSupplierCost decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ChangedAt       time.Time       `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (RetainerChangeModel) TableName() string {
	return "retainer_changes"
}

// ToDomain converts the persistence model to a domain RetainerChange.
func (m *RetainerChangeModel) ToDomain() *crm.RetainerChange {
	return &crm.RetainerChange{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:        m.TenantID,
		ClientID:        m.ClientID,
		OldRetainer:     m.OldRetainer,
		NewRetainer:     m.NewRetainer,
		OldSupplierCost: m.OldSupplierCost,
		NewSupplierCost: m.NewSupplierCost,
		ChangedAt:       m.ChangedAt,
	}
}

// FromDomain populates the persistence model from a domain RetainerChange.
func (m *RetainerChangeModel) FromDomain(r *crm.RetainerChange) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.ClientID = r.ClientID
	m.OldRetainer = r.OldRetainer
	m.NewRetainer = r.NewRetainer
	m.OldSupplierCost = r.OldSupplierCost
	m.NewSupplierCost = r.NewSupplierCost
	m.ChangedAt = r.ChangedAt
}

// RetainerChangeModelFromDomain creates a new persistence model from a domain RetainerChange.
func RetainerChangeModelFromDomain(r *crm.RetainerChange) *RetainerChangeModel {
	m := &RetainerChangeModel{}
	m.FromDomain(r)
	return m
}
