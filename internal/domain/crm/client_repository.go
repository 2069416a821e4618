package crm

import (
	"context"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByIDForTenant finds a client by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Client, error)

	// FindAllForTenant finds all clients for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Client, error)

	// FindByStatus finds clients by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status ClientStatus, filter shared.Filter) ([]Client, error)

	// FindActive finds all active clients for a tenant
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]Client, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error

	// DeleteForTenant deletes a client within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts clients for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// LeadRepository defines the interface for lead persistence
type LeadRepository interface {
	// FindByIDForTenant finds a lead by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Lead, error)

	// FindAllForTenant finds all leads for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Lead, error)

	// FindByStatus finds leads by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status LeadStatus, filter shared.Filter) ([]Lead, error)

	// Save creates or updates a lead
	Save(ctx context.Context, lead *Lead) error

	// DeleteForTenant deletes a lead within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts leads for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// RetainerChangeRepository defines the interface for retainer change persistence.
// Retainer changes are append-only.
type RetainerChangeRepository interface {
	// FindByClient finds retainer changes for a client, newest first
	FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]RetainerChange, error)

	// FindAllForTenant finds all retainer changes for a tenant, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]RetainerChange, error)

	// Save appends a retainer change record
	Save(ctx context.Context, change *RetainerChange) error

	// DeleteByClient removes the retainer history of a client
	DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error
}
