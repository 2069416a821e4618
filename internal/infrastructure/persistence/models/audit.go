package models

import (
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/google/uuid"
)

// ActivityEntryModel is the persistence model for activity log entries.
type ActivityEntryModel struct {
	BaseModel
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_activity_tenant_time,priority:1"`
	ActionType  string     `gorm:"type:varchar(30);not null"`
	EntityType  string     `gorm:"type:varchar(50);not null"`
	EntityID    *uuid.UUID `gorm:"type:uuid;index"`
	Description string     `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (ActivityEntryModel) TableName() string {
	return "activity_log"
}

// ToDomain converts the persistence model to a domain ActivityEntry.
func (m *ActivityEntryModel) ToDomain() *audit.ActivityEntry {
	return &audit.ActivityEntry{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    m.TenantID,
		ActionType:  audit.ActionType(m.ActionType),
		EntityType:  m.EntityType,
		EntityID:    m.EntityID,
		Description: m.Description,
	}
}

// FromDomain populates the persistence model from a domain ActivityEntry.
func (m *ActivityEntryModel) FromDomain(e *audit.ActivityEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = e.TenantID
	m.ActionType = string(e.ActionType)
	m.EntityType = e.EntityType
	m.EntityID = e.EntityID
	m.Description = e.Description
}

// ActivityEntryModelFromDomain creates a new persistence model from a domain ActivityEntry.
func ActivityEntryModelFromDomain(e *audit.ActivityEntry) *ActivityEntryModel {
	m := &ActivityEntryModel{}
	m.FromDomain(e)
	return m
}
