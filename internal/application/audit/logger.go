// Package audit provides the activity logger behind every mutation in
// the CRM.
package audit

import (
	"context"

	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/agencycrm/backend/internal/infrastructure/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityLogger records one activity entry per mutation. The local ring
// buffer is updated synchronously so the entry is visible immediately;
// the remote insert rides the task queue and its failure is logged, never
// surfaced. This is the only component allowed to swallow write errors.
type ActivityLogger struct {
	repo   audit.ActivityRepository
	store  *cache.Store
	queue  *event.TaskQueue
	logger *zap.Logger
}

// NewActivityLogger creates an activity logger
func NewActivityLogger(repo audit.ActivityRepository, store *cache.Store, queue *event.TaskQueue, logger *zap.Logger) *ActivityLogger {
	return &ActivityLogger{
		repo:   repo,
		store:  store,
		queue:  queue,
		logger: logger,
	}
}

// Log records an activity entry for a tenant. It never returns an error.
func (l *ActivityLogger) Log(ctx context.Context, tenantID uuid.UUID, action audit.ActionType, entityType, description string, entityID *uuid.UUID) {
	entry := audit.NewActivityEntry(tenantID, action, entityType, description, entityID)

	l.store.PrependActivity(tenantID, *entry)

	accepted := l.queue.Enqueue(event.Task{
		Name: "activity.save",
		Run: func(taskCtx context.Context) error {
			return l.repo.Save(taskCtx, entry)
		},
	})
	if !accepted {
		l.logger.Warn("activity entry not persisted remotely, queue full",
			zap.String("tenant_id", tenantID.String()),
			zap.String("entity_type", entityType),
			zap.String("action", string(action)),
		)
	}
}

// Recent returns the newest remote entries for a tenant
func (l *ActivityLogger) Recent(ctx context.Context, tenantID uuid.UUID, limit int) ([]audit.ActivityEntry, error) {
	return l.repo.FindRecent(ctx, tenantID, limit)
}
