package crm

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateClientRequest carries the fields for creating a client
type CreateClientRequest struct {
	Name                string           `json:"name" binding:"required"`
	Company             string           `json:"company"`
	Phone               string           `json:"phone"`
	Email               string           `json:"email"`
	Status              string           `json:"status"`
	Rating              *int             `json:"rating"`
	MonthlyRetainer     *decimal.Decimal `json:"monthly_retainer"`
	SupplierCostMonthly *decimal.Decimal `json:"supplier_cost_monthly"`
	ServiceKeys         []string         `json:"service_keys"`
	AssignedTo          string           `json:"assigned_to"`
	Notes               string           `json:"notes"`
}

// UpdateClientRequest carries the fields for updating a client. Nil
// fields are left untouched.
type UpdateClientRequest struct {
	Name                *string          `json:"name"`
	Company             *string          `json:"company"`
	Phone               *string          `json:"phone"`
	Email               *string          `json:"email"`
	Status              *string          `json:"status"`
	Rating              *int             `json:"rating"`
	MonthlyRetainer     *decimal.Decimal `json:"monthly_retainer"`
	SupplierCostMonthly *decimal.Decimal `json:"supplier_cost_monthly"`
	ServiceKeys         *[]string        `json:"service_keys"`
	AssignedTo          *string          `json:"assigned_to"`
	Notes               *string          `json:"notes"`
	NextReviewAt        *time.Time       `json:"next_review_at"`
}

// ClientResponse is the client representation returned to callers
type ClientResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Company             string          `json:"company"`
	Phone               string          `json:"phone"`
	Email               string          `json:"email"`
	Status              string          `json:"status"`
	Rating              int             `json:"rating"`
	MonthlyRetainer     decimal.Decimal `json:"monthly_retainer"`
	SupplierCostMonthly decimal.Decimal `json:"supplier_cost_monthly"`
	GrossMargin         decimal.Decimal `json:"gross_margin"`
	ServiceKeys         []string        `json:"service_keys"`
	AssignedTo          string          `json:"assigned_to"`
	Notes               string          `json:"notes"`
	JoinedAt            time.Time       `json:"joined_at"`
	ChurnedAt           *time.Time      `json:"churned_at,omitempty"`
	NextReviewAt        *time.Time      `json:"next_review_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ToClientResponse converts a domain client to a response
func ToClientResponse(c *crm.Client) ClientResponse {
	return ClientResponse{
		ID:                  c.ID,
		Name:                c.Name,
		Company:             c.Company,
		Phone:               c.Phone,
		Email:               c.Email,
		Status:              string(c.Status),
		Rating:              c.Rating,
		MonthlyRetainer:     c.MonthlyRetainer,
		SupplierCostMonthly: c.SupplierCostMonthly,
		GrossMargin:         c.GrossMargin(),
		ServiceKeys:         c.ServiceKeys,
		AssignedTo:          c.AssignedTo,
		Notes:               c.Notes,
		JoinedAt:            c.JoinedAt,
		ChurnedAt:           c.ChurnedAt,
		NextReviewAt:        c.NextReviewAt,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

// ClientListFilter carries list query parameters
type ClientListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
	Status   string `form:"status"`
}

// CreateLeadRequest carries the fields for creating a lead
type CreateLeadRequest struct {
	Name        string           `json:"name" binding:"required"`
	Company     string           `json:"company"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email"`
	Source      string           `json:"source"`
	QuotedValue *decimal.Decimal `json:"quoted_value"`
	AssignedTo  string           `json:"assigned_to"`
	Notes       string           `json:"notes"`
}

// UpdateLeadRequest carries the fields for updating a lead. Nil fields
// are left untouched.
type UpdateLeadRequest struct {
	Name        *string          `json:"name"`
	Company     *string          `json:"company"`
	Phone       *string          `json:"phone"`
	Email       *string          `json:"email"`
	Source      *string          `json:"source"`
	Status      *string          `json:"status"`
	QuotedValue *decimal.Decimal `json:"quoted_value"`
	AssignedTo  *string          `json:"assigned_to"`
	Notes       *string          `json:"notes"`
}

// LeadResponse is the lead representation returned to callers
type LeadResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Company         string          `json:"company"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email"`
	Source          string          `json:"source"`
	Status          string          `json:"status"`
	QuotedValue     decimal.Decimal `json:"quoted_value"`
	RelatedClientID *uuid.UUID      `json:"related_client_id,omitempty"`
	AssignedTo      string          `json:"assigned_to"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToLeadResponse converts a domain lead to a response
func ToLeadResponse(l *crm.Lead) LeadResponse {
	return LeadResponse{
		ID:              l.ID,
		Name:            l.Name,
		Company:         l.Company,
		Phone:           l.Phone,
		Email:           l.Email,
		Source:          l.Source,
		Status:          string(l.Status),
		QuotedValue:     l.QuotedValue,
		RelatedClientID: l.RelatedClientID,
		AssignedTo:      l.AssignedTo,
		Notes:           l.Notes,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// LeadListFilter carries list query parameters
type LeadListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
	Search   string `form:"search"`
	Status   string `form:"status"`
}

// ConvertLeadRequest carries optional overrides applied to the client
// created from a lead
type ConvertLeadRequest struct {
	Name                string           `json:"name"`
	MonthlyRetainer     *decimal.Decimal `json:"monthly_retainer"`
	SupplierCostMonthly *decimal.Decimal `json:"supplier_cost_monthly"`
	ServiceKeys         []string         `json:"service_keys"`
	AssignedTo          string           `json:"assigned_to"`
}

// ConversionResponse reports the outcome of a lead conversion
type ConversionResponse struct {
	Client ClientResponse `json:"client"`
	Lead   LeadResponse   `json:"lead"`
}

// RetainerChangeResponse is the retainer change representation
type RetainerChangeResponse struct {
	ID              uuid.UUID       `json:"id"`
	ClientID        uuid.UUID       `json:"client_id"`
	OldRetainer     decimal.Decimal `json:"old_retainer"`
	NewRetainer     decimal.Decimal `json:"new_retainer"`
	OldSupplierCost decimal.Decimal `json:"old_supplier_cost"`
	NewSupplierCost decimal.Decimal `json:"new_supplier_cost"`
	ChangedAt       time.Time       `json:"changed_at"`
}

// ToRetainerChangeResponse converts a domain retainer change to a response
func ToRetainerChangeResponse(r *crm.RetainerChange) RetainerChangeResponse {
	return RetainerChangeResponse{
		ID:              r.ID,
		ClientID:        r.ClientID,
		OldRetainer:     r.OldRetainer,
		NewRetainer:     r.NewRetainer,
		OldSupplierCost: r.OldSupplierCost,
		NewSupplierCost: r.NewSupplierCost,
		ChangedAt:       r.ChangedAt,
	}
}
