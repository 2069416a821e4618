package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher pushes row-change notifications onto the channels the
// listener consumes. Publishing happens after the remote write succeeded;
// a publish failure is logged and does not fail the originating operation.
type Publisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewPublisher creates a publisher over an existing Redis client
func NewPublisher(client *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// PublishLeadChange announces an inserted or updated lead row
func (p *Publisher) PublishLeadChange(ctx context.Context, eventType EventType, lead *crm.Lead) error {
	row := leadRowFromDomain(lead)
	return p.publish(ctx, ChannelLeads, eventType, row)
}

// PublishSignalChange announces an inserted or updated signal row
func (p *Publisher) PublishSignalChange(ctx context.Context, eventType EventType, signal *intelligence.PersonalitySignal) error {
	row := signalRowFromDomain(signal)
	return p.publish(ctx, ChannelSignals, eventType, row)
}

func (p *Publisher) publish(ctx context.Context, channel string, eventType EventType, row any) error {
	newRow, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}
	data, err := json.Marshal(ChangeEvent{EventType: eventType, New: newRow})
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		p.logger.Error("failed to publish realtime event",
			zap.String("channel", channel),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
		return fmt.Errorf("failed to publish: %w", err)
	}

	p.logger.Debug("published realtime event",
		zap.String("channel", channel),
		zap.String("event_type", string(eventType)))
	return nil
}
