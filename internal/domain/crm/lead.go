package crm

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lead represents a prospective client in the sales pipeline
type Lead struct {
	shared.TenantAggregateRoot
	Name            string          `gorm:"type:varchar(200);not null"`
	Company         string          `gorm:"type:varchar(200)"`
	Phone           string          `gorm:"type:varchar(50);index"`
	Email           string          `gorm:"type:varchar(200);index"`
	Source          string          `gorm:"type:varchar(100)"`
	Status          LeadStatus      `gorm:"type:varchar(50);not null"`
	QuotedValue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RelatedClientID *uuid.UUID      `gorm:"type:uuid;index"`
	AssignedTo      string          `gorm:"type:varchar(100)"`
	Notes           string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Lead) TableName() string {
	return "leads"
}

// NewLead creates a new lead with required fields
func NewLead(tenantID uuid.UUID, name, source string) (*Lead, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	lead := &Lead{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Source:              source,
		Status:              LeadStatusNew,
		QuotedValue:         decimal.Zero,
	}

	lead.AddDomainEvent(NewLeadCreatedEvent(lead))

	return lead, nil
}

// SetContact sets the lead's contact information
func (l *Lead) SetContact(company, phone, email string) error {
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	l.Company = company
	l.Phone = phone
	l.Email = email
	l.touch()

	return nil
}

// Rename changes the lead's display name
func (l *Lead) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	l.Name = name
	l.touch()
	return nil
}

// SetStatus sets the pipeline status. Input is canonicalized first; the
// terminal won status must be entered through MarkWon so the client link
// is always recorded alongside it.
func (l *Lead) SetStatus(status LeadStatus) error {
	canonical := CanonicalLeadStatus(string(status))
	if !IsValidLeadStatus(canonical) {
		return shared.NewDomainError("INVALID_STATUS", "Unknown lead status")
	}
	if canonical == LeadStatusWon {
		return shared.NewDomainError("INVALID_STATUS", "Won status is set by lead conversion")
	}

	oldStatus := l.Status
	l.Status = canonical
	l.touch()

	if oldStatus != canonical {
		l.AddDomainEvent(NewLeadStatusChangedEvent(l, oldStatus, canonical))
	}

	return nil
}

// SetQuotedValue sets the quoted deal value
func (l *Lead) SetQuotedValue(value decimal.Decimal) error {
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_QUOTED_VALUE", "Quoted value cannot be negative")
	}
	l.QuotedValue = value
	l.touch()
	return nil
}

// Assign sets the handler responsible for the lead
func (l *Lead) Assign(handler string) {
	l.AssignedTo = handler
	l.touch()
}

// SetNotes sets the lead's free-text notes
func (l *Lead) SetNotes(notes string) {
	l.Notes = notes
	l.touch()
}

// MarkWon moves the lead to the terminal won status and links it to the
// client created from it. The link is set exactly once and never cleared.
func (l *Lead) MarkWon(clientID uuid.UUID) error {
	if l.RelatedClientID != nil {
		return shared.ErrAlreadyConverted
	}
	if clientID == uuid.Nil {
		return shared.NewDomainError("INVALID_CLIENT_ID", "Converted lead requires a client id")
	}

	oldStatus := l.Status
	l.Status = LeadStatusWon
	l.RelatedClientID = &clientID
	l.touch()

	l.AddDomainEvent(NewLeadWonEvent(l, oldStatus, clientID))

	return nil
}

// IsConverted reports whether the lead was already converted to a client
func (l *Lead) IsConverted() bool {
	return l.RelatedClientID != nil
}

func (l *Lead) touch() {
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}
