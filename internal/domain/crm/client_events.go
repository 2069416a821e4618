package crm

import (
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeClient = "Client"

// Event type constants
const (
	EventTypeClientCreated       = "ClientCreated"
	EventTypeClientStatusChanged = "ClientStatusChanged"
	EventTypeClientDeleted       = "ClientDeleted"
)

// ClientCreatedEvent is published when a new client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(client *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, client.ID, client.TenantID),
		ClientID:        client.ID,
		Name:            client.Name,
	}
}

// ClientStatusChangedEvent is published when a client's status changes
type ClientStatusChangedEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID    `json:"client_id"`
	OldStatus ClientStatus `json:"old_status"`
	NewStatus ClientStatus `json:"new_status"`
}

// NewClientStatusChangedEvent creates a new ClientStatusChangedEvent
func NewClientStatusChangedEvent(client *Client, oldStatus, newStatus ClientStatus) *ClientStatusChangedEvent {
	return &ClientStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientStatusChanged, AggregateTypeClient, client.ID, client.TenantID),
		ClientID:        client.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// ClientDeletedEvent is published when a client is deleted
type ClientDeletedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
}

// NewClientDeletedEvent creates a new ClientDeletedEvent
func NewClientDeletedEvent(client *Client) *ClientDeletedEvent {
	return &ClientDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeleted, AggregateTypeClient, client.ID, client.TenantID),
		ClientID:        client.ID,
		Name:            client.Name,
	}
}
