package settings

import (
	"context"
	"time"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantSettings is the singleton configuration row for a tenant. The
// struct carries only non-secret values plus boolean presence flags for
// the stored API keys; secret values never leave the persistence layer.
type TenantSettings struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	AgencyName   string          `gorm:"type:varchar(200)"`
	Currency     string          `gorm:"type:varchar(10);not null;default:'ILS'"`
	Language     string          `gorm:"type:varchar(10);not null;default:'he'"`
	Timezone     string          `gorm:"type:varchar(50);not null;default:'Asia/Jerusalem'"`
	MonthlyGoal  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LogoKey      string          `gorm:"type:varchar(300)"`
	HasOpenAIKey bool            `gorm:"-"`
	HasWhatsKey  bool            `gorm:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (TenantSettings) TableName() string {
	return "settings"
}

// DefaultSettings returns the default settings row for a tenant
func DefaultSettings(tenantID uuid.UUID) *TenantSettings {
	now := time.Now()
	return &TenantSettings{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Currency:    "ILS",
		Language:    "he",
		Timezone:    "Asia/Jerusalem",
		MonthlyGoal: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SetMonthlyGoal updates the revenue goal
func (s *TenantSettings) SetMonthlyGoal(goal decimal.Decimal) error {
	if goal.IsNegative() {
		return shared.NewDomainError("INVALID_GOAL", "Monthly goal cannot be negative")
	}
	s.MonthlyGoal = goal
	s.UpdatedAt = time.Now()
	return nil
}

// SecretUpdate carries secret values on their way to the store. A nil
// field means the secret is left untouched; an empty string clears it.
type SecretUpdate struct {
	OpenAIKey   *string
	WhatsAppKey *string
}

// Repository persists tenant settings. Upserts key on tenant_id so racing
// create-if-missing calls resolve idempotently.
type Repository interface {
	// FindForTenant returns the settings row, shared.ErrNotFound when absent
	FindForTenant(ctx context.Context, tenantID uuid.UUID) (*TenantSettings, error)
	// Upsert inserts or updates the row keyed by tenant_id
	Upsert(ctx context.Context, s *TenantSettings) error
	// UpdateSecrets writes only the secret columns and returns the
	// resulting presence flags.
	UpdateSecrets(ctx context.Context, tenantID uuid.UUID, update SecretUpdate) (hasOpenAI, hasWhatsApp bool, err error)
	// ListTenantIDs returns all tenants that have a settings row
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}
