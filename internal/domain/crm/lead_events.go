package crm

import (
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeLead = "Lead"

// Event type constants
const (
	EventTypeLeadCreated       = "LeadCreated"
	EventTypeLeadStatusChanged = "LeadStatusChanged"
	EventTypeLeadWon           = "LeadWon"
)

// LeadCreatedEvent is published when a new lead is created
type LeadCreatedEvent struct {
	shared.BaseDomainEvent
	LeadID uuid.UUID `json:"lead_id"`
	Name   string    `json:"name"`
	Source string    `json:"source"`
}

// NewLeadCreatedEvent creates a new LeadCreatedEvent
func NewLeadCreatedEvent(lead *Lead) *LeadCreatedEvent {
	return &LeadCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadCreated, AggregateTypeLead, lead.ID, lead.TenantID),
		LeadID:          lead.ID,
		Name:            lead.Name,
		Source:          lead.Source,
	}
}

// LeadStatusChangedEvent is published when a lead's pipeline status changes
type LeadStatusChangedEvent struct {
	shared.BaseDomainEvent
	LeadID    uuid.UUID  `json:"lead_id"`
	OldStatus LeadStatus `json:"old_status"`
	NewStatus LeadStatus `json:"new_status"`
}

// NewLeadStatusChangedEvent creates a new LeadStatusChangedEvent
func NewLeadStatusChangedEvent(lead *Lead, oldStatus, newStatus LeadStatus) *LeadStatusChangedEvent {
	return &LeadStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadStatusChanged, AggregateTypeLead, lead.ID, lead.TenantID),
		LeadID:          lead.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// LeadWonEvent is published when a lead is converted into a client
type LeadWonEvent struct {
	shared.BaseDomainEvent
	LeadID    uuid.UUID  `json:"lead_id"`
	ClientID  uuid.UUID  `json:"client_id"`
	OldStatus LeadStatus `json:"old_status"`
}

// NewLeadWonEvent creates a new LeadWonEvent
func NewLeadWonEvent(lead *Lead, oldStatus LeadStatus, clientID uuid.UUID) *LeadWonEvent {
	return &LeadWonEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadWon, AggregateTypeLead, lead.ID, lead.TenantID),
		LeadID:          lead.ID,
		ClientID:        clientID,
		OldStatus:       oldStatus,
	}
}
