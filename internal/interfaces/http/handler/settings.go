package handler

import (
	"time"

	appsettings "github.com/agencycrm/backend/internal/application/settings"
	"github.com/agencycrm/backend/internal/domain/settings"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SettingsHandler exposes the per-tenant settings singleton
type SettingsHandler struct {
	BaseHandler
	settings *appsettings.Service
}

// NewSettingsHandler creates a settings handler
func NewSettingsHandler(settings *appsettings.Service) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// SettingsResponse is the settings representation returned to callers.
// Secret values are never included, only presence flags.
type SettingsResponse struct {
	AgencyName   string          `json:"agency_name"`
	Currency     string          `json:"currency"`
	Language     string          `json:"language"`
	Timezone     string          `json:"timezone"`
	MonthlyGoal  decimal.Decimal `json:"monthly_goal"`
	LogoKey      string          `json:"logo_key"`
	HasOpenAIKey bool            `json:"has_openai_key"`
	HasWhatsKey  bool            `json:"has_whatsapp_key"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toSettingsResponse(s *settings.TenantSettings) SettingsResponse {
	return SettingsResponse{
		AgencyName:   s.AgencyName,
		Currency:     s.Currency,
		Language:     s.Language,
		Timezone:     s.Timezone,
		MonthlyGoal:  s.MonthlyGoal,
		LogoKey:      s.LogoKey,
		HasOpenAIKey: s.HasOpenAIKey,
		HasWhatsKey:  s.HasWhatsKey,
		UpdatedAt:    s.UpdatedAt,
	}
}

// Get handles GET /settings. A tenant without a row gets defaults.
func (h *SettingsHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	s, err := h.settings.Load(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toSettingsResponse(s))
}

// Update handles PUT /settings
func (h *SettingsHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appsettings.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	s, err := h.settings.Update(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toSettingsResponse(s))
}

// UpdateSecrets handles PUT /settings/secrets. The response carries
// presence flags only, never the stored values.
func (h *SettingsHandler) UpdateSecrets(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appsettings.UpdateSecretsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	flags, err := h.settings.UpdateSecrets(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, flags)
}
