package audit

import (
	"context"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActionType classifies what a mutation did
type ActionType string

const (
	ActionCreated   ActionType = "created"
	ActionUpdated   ActionType = "updated"
	ActionDeleted   ActionType = "deleted"
	ActionConverted ActionType = "converted"
	ActionGenerated ActionType = "generated"
	ActionImported  ActionType = "imported"
)

// LocalLogCapacity bounds the in-memory activity ring buffer. The remote
// table is not capped.
const LocalLogCapacity = 100

// ActivityEntry is an immutable audit record describing a mutation.
// Entries are append-only remotely and ring-buffered locally.
type ActivityEntry struct {
	shared.BaseEntity
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActionType  ActionType `gorm:"type:varchar(30);not null"`
	EntityType  string     `gorm:"type:varchar(50);not null"`
	EntityID    *uuid.UUID `gorm:"type:uuid;index"`
	Description string     `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (ActivityEntry) TableName() string {
	return "activity_log"
}

// NewActivityEntry creates an activity entry
func NewActivityEntry(tenantID uuid.UUID, action ActionType, entityType, description string, entityID *uuid.UUID) *ActivityEntry {
	return &ActivityEntry{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		ActionType:  action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	}
}

// ActivityRepository persists activity entries remotely
type ActivityRepository interface {
	// FindRecent returns the newest entries for a tenant, newest first
	FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]ActivityEntry, error)
	// Save appends an entry
	Save(ctx context.Context, entry *ActivityEntry) error
}
