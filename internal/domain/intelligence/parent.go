package intelligence

import (
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ParentRef identifies the owner of a satellite record: exactly one of
// ClientID or LeadID at creation time. Personality signals are the one
// exception after lead conversion, when they carry both (the lead link is
// kept and the client link is added).
type ParentRef struct {
	ClientID *uuid.UUID `gorm:"type:uuid;index"`
	LeadID   *uuid.UUID `gorm:"type:uuid;index"`
}

// ClientParent creates a reference to a client owner
func ClientParent(clientID uuid.UUID) ParentRef {
	return ParentRef{ClientID: &clientID}
}

// LeadParent creates a reference to a lead owner
func LeadParent(leadID uuid.UUID) ParentRef {
	return ParentRef{LeadID: &leadID}
}

// Validate checks that exactly one parent is set
func (p ParentRef) Validate() error {
	hasClient := p.ClientID != nil && *p.ClientID != uuid.Nil
	hasLead := p.LeadID != nil && *p.LeadID != uuid.Nil
	if hasClient == hasLead {
		return shared.NewDomainError("INVALID_PARENT", "Record must belong to exactly one client or lead")
	}
	return nil
}

// BelongsToLead reports whether the record is keyed to the given lead
func (p ParentRef) BelongsToLead(leadID uuid.UUID) bool {
	return p.LeadID != nil && *p.LeadID == leadID
}

// BelongsToClient reports whether the record is keyed to the given client
func (p ParentRef) BelongsToClient(clientID uuid.UUID) bool {
	return p.ClientID != nil && *p.ClientID == clientID
}
