// Package settings manages the per-tenant settings singleton.
package settings

import (
	"context"
	"errors"
	"fmt"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/settings"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UpdateSettingsRequest carries the non-secret settings fields. Nil fields
// are left untouched.
type UpdateSettingsRequest struct {
	AgencyName  *string          `json:"agency_name"`
	Currency    *string          `json:"currency"`
	Language    *string          `json:"language"`
	Timezone    *string          `json:"timezone"`
	MonthlyGoal *decimal.Decimal `json:"monthly_goal"`
	LogoKey     *string          `json:"logo_key"`
}

// UpdateSecretsRequest carries secret values. Nil leaves a secret
// untouched; an empty string clears it.
type UpdateSecretsRequest struct {
	OpenAIKey   *string `json:"openai_key"`
	WhatsAppKey *string `json:"whatsapp_key"`
}

// SecretFlags reports which secrets are present without exposing them
type SecretFlags struct {
	HasOpenAIKey bool `json:"has_openai_key"`
	HasWhatsKey  bool `json:"has_whatsapp_key"`
}

// Service loads and updates the settings singleton. A tenant with no row
// gets the defaults written on first load, so every tenant always resolves
// to exactly one row.
type Service struct {
	repo     settings.Repository
	store    *cache.Store
	activity *appaudit.ActivityLogger
	logger   *zap.Logger
}

// NewService creates a settings service
func NewService(repo settings.Repository, store *cache.Store, activity *appaudit.ActivityLogger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		store:    store,
		activity: activity,
		logger:   logger,
	}
}

// Load returns the tenant's settings, creating the default row when none
// exists yet.
func (s *Service) Load(ctx context.Context, tenantID uuid.UUID) (*settings.TenantSettings, error) {
	doc, err := s.repo.FindForTenant(ctx, tenantID)
	if err == nil {
		s.store.SetSettings(tenantID, doc)
		return doc, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	doc = settings.DefaultSettings(tenantID)
	if err := s.repo.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	s.store.SetSettings(tenantID, doc)

	return doc, nil
}

// Update applies a partial update to the non-secret settings fields.
// Load puts the document it returns into the cache, so the update works
// on a copy; a rejected upsert leaves the cached document untouched.
func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, req UpdateSettingsRequest) (*settings.TenantSettings, error) {
	doc, err := s.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	draft := *doc

	if req.AgencyName != nil {
		draft.AgencyName = *req.AgencyName
	}
	if req.Currency != nil {
		draft.Currency = *req.Currency
	}
	if req.Language != nil {
		draft.Language = *req.Language
	}
	if req.Timezone != nil {
		draft.Timezone = *req.Timezone
	}
	if req.MonthlyGoal != nil {
		if err := draft.SetMonthlyGoal(*req.MonthlyGoal); err != nil {
			return nil, err
		}
	}
	if req.LogoKey != nil {
		draft.LogoKey = *req.LogoKey
	}

	if err := s.repo.Upsert(ctx, &draft); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	s.store.SetSettings(tenantID, &draft)
	s.activity.Log(ctx, tenantID, audit.ActionUpdated, "settings", "settings updated", nil)

	return &draft, nil
}

// UpdateSecrets writes the secret values and returns only presence flags.
// Secret values are never echoed back and never enter the snapshot.
func (s *Service) UpdateSecrets(ctx context.Context, tenantID uuid.UUID, req UpdateSecretsRequest) (*SecretFlags, error) {
	// the row must exist before secrets can be attached to it
	doc, err := s.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	hasOpenAI, hasWhatsApp, err := s.repo.UpdateSecrets(ctx, tenantID, settings.SecretUpdate{
		OpenAIKey:   req.OpenAIKey,
		WhatsAppKey: req.WhatsAppKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update secrets: %w", err)
	}

	draft := *doc
	draft.HasOpenAIKey = hasOpenAI
	draft.HasWhatsKey = hasWhatsApp
	s.store.SetSettings(tenantID, &draft)
	s.activity.Log(ctx, tenantID, audit.ActionUpdated, "settings", "api keys updated", nil)

	return &SecretFlags{HasOpenAIKey: hasOpenAI, HasWhatsKey: hasWhatsApp}, nil
}
