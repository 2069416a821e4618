package models

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/settings"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantSettingsModel is the persistence model for tenant settings.
// Secret columns stay in this layer; the domain type only ever sees
// boolean presence flags derived from them.
type TenantSettingsModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	AgencyName  string          `gorm:"type:varchar(200)"`
	Currency    string          `gorm:"type:varchar(10);not null;default:'ILS'"`
	Language    string          `gorm:"type:varchar(10);not null;default:'he'"`
	Timezone    string          `gorm:"type:varchar(50);not null;default:'Asia/Jerusalem'"`
	MonthlyGoal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LogoKey     string          `gorm:"type:varchar(300)"`
	OpenAIKey   string          `gorm:"type:text"`
	WhatsAppKey string          `gorm:"type:text"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantSettingsModel) TableName() string {
	return "settings"
}

// ToDomain converts the persistence model to domain TenantSettings.
// Secret values are reduced to presence flags.
func (m *TenantSettingsModel) ToDomain() *settings.TenantSettings {
	return &settings.TenantSettings{
		ID:           m.ID,
		TenantID:     m.TenantID,
		AgencyName:   m.AgencyName,
		Currency:     m.Currency,
		Language:     m.Language,
		Timezone:     m.Timezone,
		MonthlyGoal:  m.MonthlyGoal,
		LogoKey:      m.LogoKey,
		HasOpenAIKey: m.OpenAIKey != "",
		HasWhatsKey:  m.WhatsAppKey != "",
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the non-secret columns from domain TenantSettings.
// Secret columns are written only through the repository's UpdateSecrets.
func (m *TenantSettingsModel) FromDomain(s *settings.TenantSettings) {
	m.ID = s.ID
	m.TenantID = s.TenantID
	m.AgencyName = s.AgencyName
	m.Currency = s.Currency
	m.Language = s.Language
	m.Timezone = s.Timezone
	m.MonthlyGoal = s.MonthlyGoal
	m.LogoKey = s.LogoKey
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

// TenantSettingsModelFromDomain creates a new persistence model from domain TenantSettings.
func TenantSettingsModelFromDomain(s *settings.TenantSettings) *TenantSettingsModel {
	m := &TenantSettingsModel{}
	m.FromDomain(s)
	return m
}
