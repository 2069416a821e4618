package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const closeTimeout = 5 * time.Second

// Listener subscribes to the lead and signal channels and merges incoming
// row changes into the snapshot store. Merging is idempotent: an INSERT
// for a known id and an UPDATE for an unknown id are both no-ops, so the
// process that originated a change can safely receive its own echo.
type Listener struct {
	client   *redis.Client
	store    *cache.Store
	logger   *zap.Logger
	cancelFn context.CancelFunc
	doneCh   chan struct{}
	doneOnce sync.Once
	mu       sync.Mutex
	running  bool
}

// ListenerOption is a functional option for configuring the listener
type ListenerOption func(*Listener)

// WithListenerLogger sets the logger for the listener
func WithListenerLogger(logger *zap.Logger) ListenerOption {
	return func(l *Listener) {
		l.logger = logger
	}
}

// NewListener creates a listener over an existing Redis client. The
// caller retains ownership of the client.
func NewListener(client *redis.Client, store *cache.Store, opts ...ListenerOption) *Listener {
	listener := &Listener{
		client: client,
		store:  store,
		logger: zap.NewNop(),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(listener)
	}
	return listener
}

// Start subscribes to both channels and blocks until the context is
// cancelled or Close is called. It should run in its own goroutine.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return fmt.Errorf("listener already running")
	}
	l.running = true
	l.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancelFn = cancel
	l.mu.Unlock()

	pubsub := l.client.Subscribe(subCtx, ChannelLeads, ChannelSignals)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	l.logger.Info("realtime listener subscribed",
		zap.Strings("channels", []string{ChannelLeads, ChannelSignals}))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			l.logger.Info("realtime listener stopped")
			l.mu.Lock()
			l.running = false
			l.mu.Unlock()
			l.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				l.logger.Warn("realtime channel closed")
				l.mu.Lock()
				l.running = false
				l.mu.Unlock()
				l.markDone()
				return nil
			}
			l.handleMessage(msg.Channel, msg.Payload)
		}
	}
}

// Close tears the subscription down and waits for the loop to exit
func (l *Listener) Close() error {
	l.mu.Lock()
	cancelFn := l.cancelFn
	l.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-l.doneCh:
		case <-time.After(closeTimeout):
			l.logger.Warn("timeout waiting for realtime listener to stop")
		}
	}
	return nil
}

func (l *Listener) markDone() {
	l.doneOnce.Do(func() {
		close(l.doneCh)
	})
}

func (l *Listener) handleMessage(channel, payload string) {
	var event ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		l.logger.Error("failed to unmarshal realtime event",
			zap.String("channel", channel),
			zap.Error(err))
		return
	}

	switch channel {
	case ChannelLeads:
		l.handleLead(event)
	case ChannelSignals:
		l.handleSignal(event)
	default:
		l.logger.Warn("message on unexpected channel", zap.String("channel", channel))
	}
}

func (l *Listener) handleLead(event ChangeEvent) {
	if event.EventType == EventDelete {
		return
	}

	var row leadRow
	if err := json.Unmarshal(event.New, &row); err != nil {
		l.logger.Error("failed to decode lead row",
			zap.String("event_type", string(event.EventType)),
			zap.Error(err))
		return
	}

	lead := row.toDomain()
	switch event.EventType {
	case EventInsert:
		l.store.InsertLeadIfAbsent(lead.TenantID, lead)
	case EventUpdate:
		l.store.ReplaceLeadIfPresent(lead.TenantID, lead)
	default:
		l.logger.Warn("unknown realtime event type",
			zap.String("event_type", string(event.EventType)))
		return
	}

	l.logger.Debug("merged lead change",
		zap.String("event_type", string(event.EventType)),
		zap.String("lead_id", lead.ID.String()))
}

func (l *Listener) handleSignal(event ChangeEvent) {
	if event.EventType == EventDelete {
		return
	}

	var row signalRow
	if err := json.Unmarshal(event.New, &row); err != nil {
		l.logger.Error("failed to decode signal row",
			zap.String("event_type", string(event.EventType)),
			zap.Error(err))
		return
	}

	signal := row.toDomain()
	switch event.EventType {
	case EventInsert:
		l.store.InsertSignalIfAbsent(signal.TenantID, signal)
	case EventUpdate:
		l.store.ReplaceSignalIfPresent(signal.TenantID, signal)
	default:
		l.logger.Warn("unknown realtime event type",
			zap.String("event_type", string(event.EventType)))
		return
	}

	l.logger.Debug("merged signal change",
		zap.String("event_type", string(event.EventType)),
		zap.String("signal_id", signal.ID.String()))
}
