package realtime

import (
	"context"
	"fmt"

	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LeadEventRelay bridges lead domain events onto the lead pub/sub
// channel so sibling processes can merge the change into their caches.
// It loads the current row before publishing because domain events
// carry identifiers, not full rows.
type LeadEventRelay struct {
	leads     crm.LeadRepository
	publisher *Publisher
	logger    *zap.Logger
}

// NewLeadEventRelay creates a relay over the given repository and publisher
func NewLeadEventRelay(leads crm.LeadRepository, publisher *Publisher, logger *zap.Logger) *LeadEventRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadEventRelay{leads: leads, publisher: publisher, logger: logger}
}

var _ shared.EventHandler = (*LeadEventRelay)(nil)

// EventTypes returns the lead events the relay subscribes to
func (r *LeadEventRelay) EventTypes() []string {
	return []string{
		crm.EventTypeLeadCreated,
		crm.EventTypeLeadStatusChanged,
		crm.EventTypeLeadWon,
	}
}

// Handle publishes the current lead row for the event's aggregate
func (r *LeadEventRelay) Handle(ctx context.Context, event shared.DomainEvent) error {
	lead, err := r.leads.FindByIDForTenant(ctx, event.TenantID(), event.AggregateID())
	if err != nil {
		return fmt.Errorf("failed to load lead %s for relay: %w", event.AggregateID(), err)
	}

	eventType := EventUpdate
	if event.EventType() == crm.EventTypeLeadCreated {
		eventType = EventInsert
	}

	if err := r.publisher.PublishLeadChange(ctx, eventType, lead); err != nil {
		r.logger.Warn("failed to relay lead change",
			zap.String("lead_id", lead.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
