package realtime

import (
	"encoding/json"
	"time"

	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pub/sub channels. Each carries row-change notifications for one table.
const (
	ChannelLeads   = "leads"
	ChannelSignals = "personality_signals"
)

// EventType classifies a row change
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ChangeEvent is the wire payload published for every row change. New and
// Old hold the raw row so each channel can decode its own shape.
type ChangeEvent struct {
	EventType EventType       `json:"event_type"`
	New       json.RawMessage `json:"new,omitempty"`
	Old       json.RawMessage `json:"old,omitempty"`
}

// leadRow is the wire shape of a leads row. Status is canonicalized on
// decode so peers running older builds stay compatible.
type leadRow struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	Name            string          `json:"name"`
	Company         string          `json:"company"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email"`
	Source          string          `json:"source"`
	Status          string          `json:"status"`
	QuotedValue     decimal.Decimal `json:"quoted_value"`
	RelatedClientID *uuid.UUID      `json:"related_client_id"`
	AssignedTo      string          `json:"assigned_to"`
	Notes           string          `json:"notes"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (r *leadRow) toDomain() crm.Lead {
	return crm.Lead{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        r.ID,
					CreatedAt: r.CreatedAt,
					UpdatedAt: r.UpdatedAt,
				},
				Version: r.Version,
			},
			TenantID: r.TenantID,
		},
		Name:            r.Name,
		Company:         r.Company,
		Phone:           r.Phone,
		Email:           r.Email,
		Source:          r.Source,
		Status:          crm.CanonicalLeadStatus(r.Status),
		QuotedValue:     r.QuotedValue,
		RelatedClientID: r.RelatedClientID,
		AssignedTo:      r.AssignedTo,
		Notes:           r.Notes,
	}
}

func leadRowFromDomain(l *crm.Lead) leadRow {
	return leadRow{
		ID:              l.ID,
		TenantID:        l.TenantID,
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
		Version:         l.Version,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// signalRow is the wire shape of a personality_signals row
type signalRow struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	ClientID   *uuid.UUID      `json:"client_id"`
	LeadID     *uuid.UUID      `json:"lead_id"`
	Trait      string          `json:"trait"`
	Evidence   string          `json:"evidence"`
	Confidence decimal.Decimal `json:"confidence"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (r *signalRow) toDomain() intelligence.PersonalitySignal {
	return intelligence.PersonalitySignal{
		BaseEntity: shared.BaseEntity{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
		TenantID: r.TenantID,
		Parent: intelligence.ParentRef{
			ClientID: r.ClientID,
			LeadID:   r.LeadID,
		},
		Trait:      r.Trait,
		Evidence:   r.Evidence,
		Confidence: r.Confidence,
	}
}

func signalRowFromDomain(s *intelligence.PersonalitySignal) signalRow {
	return signalRow{
		ID:         s.ID,
		TenantID:   s.TenantID,
		ClientID:   s.Parent.ClientID,
		LeadID:     s.Parent.LeadID,
		Trait:      s.Trait,
		Evidence:   s.Evidence,
		Confidence: s.Confidence,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
