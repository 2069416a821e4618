package intelligence

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CallTranscript is an append-only record of a recorded call
type CallTranscript struct {
	shared.BaseEntity
	TenantID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Parent          ParentRef `gorm:"embedded"`
	Title           string    `gorm:"type:varchar(200)"`
	Transcript      string    `gorm:"type:text;not null"`
	Summary         string    `gorm:"type:text"`
	RecordedAt      time.Time `gorm:"type:timestamptz;not null"`
	DurationSeconds int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CallTranscript) TableName() string {
	return "call_transcripts"
}

// NewCallTranscript creates a transcript record
func NewCallTranscript(tenantID uuid.UUID, parent ParentRef, transcript string, recordedAt time.Time) (*CallTranscript, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	if transcript == "" {
		return nil, shared.NewDomainError("INVALID_TRANSCRIPT", "Transcript text cannot be empty")
	}
	return &CallTranscript{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Parent:     parent,
		Transcript: transcript,
		RecordedAt: recordedAt,
	}, nil
}

// AIRecommendation is an append-only AI-generated recommendation
type AIRecommendation struct {
	shared.BaseEntity
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Parent   ParentRef `gorm:"embedded"`
	Topic    string    `gorm:"type:varchar(200)"`
	Body     string    `gorm:"type:text;not null"`
	Model    string    `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (AIRecommendation) TableName() string {
	return "ai_recommendations"
}

// NewAIRecommendation creates a recommendation record
func NewAIRecommendation(tenantID uuid.UUID, parent ParentRef, topic, body string) (*AIRecommendation, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Recommendation body cannot be empty")
	}
	return &AIRecommendation{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Parent:     parent,
		Topic:      topic,
		Body:       body,
	}, nil
}

// MessageStatus represents the lifecycle of a generated WhatsApp message
type MessageStatus string

const (
	MessageStatusDraft MessageStatus = "draft"
	MessageStatusSent  MessageStatus = "sent"
)

// WhatsAppMessage is an AI-generated outbound message draft
type WhatsAppMessage struct {
	shared.BaseEntity
	TenantID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Parent   ParentRef     `gorm:"embedded"`
	Body     string        `gorm:"type:text;not null"`
	Purpose  string        `gorm:"type:varchar(100)"`
	Status   MessageStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	SentAt   *time.Time
}

// TableName returns the table name for GORM
func (WhatsAppMessage) TableName() string {
	return "whatsapp_messages"
}

// NewWhatsAppMessage creates a draft message
func NewWhatsAppMessage(tenantID uuid.UUID, parent ParentRef, body, purpose string) (*WhatsAppMessage, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Message body cannot be empty")
	}
	return &WhatsAppMessage{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Parent:     parent,
		Body:       body,
		Purpose:    purpose,
		Status:     MessageStatusDraft,
	}, nil
}

// MarkSent marks the draft as sent
func (m *WhatsAppMessage) MarkSent() {
	now := time.Now()
	m.Status = MessageStatusSent
	m.SentAt = &now
	m.UpdatedAt = now
}

// StrategyPlan is an AI-generated plan for a period
type StrategyPlan struct {
	shared.BaseEntity
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Parent    ParentRef `gorm:"embedded"`
	Title     string    `gorm:"type:varchar(200)"`
	Body      string    `gorm:"type:text;not null"`
	PeriodKey string    `gorm:"type:varchar(7)"`
}

// TableName returns the table name for GORM
func (StrategyPlan) TableName() string {
	return "strategy_plans"
}

// NewStrategyPlan creates a strategy plan record
func NewStrategyPlan(tenantID uuid.UUID, parent ParentRef, title, body, periodKey string) (*StrategyPlan, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Plan body cannot be empty")
	}
	return &StrategyPlan{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Parent:     parent,
		Title:      title,
		Body:       body,
		PeriodKey:  periodKey,
	}, nil
}

// CompetitorReport is an AI-generated competitor analysis
type CompetitorReport struct {
	shared.BaseEntity
	TenantID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Parent         ParentRef `gorm:"embedded"`
	CompetitorName string    `gorm:"type:varchar(200);not null"`
	Body           string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (CompetitorReport) TableName() string {
	return "competitor_reports"
}

// NewCompetitorReport creates a competitor report record
func NewCompetitorReport(tenantID uuid.UUID, parent ParentRef, competitorName, body string) (*CompetitorReport, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	if competitorName == "" {
		return nil, shared.NewDomainError("INVALID_COMPETITOR", "Competitor name cannot be empty")
	}
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Report body cannot be empty")
	}
	return &CompetitorReport{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		Parent:         parent,
		CompetitorName: competitorName,
		Body:           body,
	}, nil
}

// PersonalitySignal is a behavioral signal extracted from conversations.
// Signals attached to a lead gain the client link when the lead converts;
// the lead link is kept so conversation history stays reachable.
type PersonalitySignal struct {
	shared.BaseEntity
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Parent     ParentRef       `gorm:"embedded"`
	Trait      string          `gorm:"type:varchar(100);not null"`
	Evidence   string          `gorm:"type:text"`
	Confidence decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PersonalitySignal) TableName() string {
	return "signals_personality"
}

// NewPersonalitySignal creates a personality signal record
func NewPersonalitySignal(tenantID uuid.UUID, parent ParentRef, trait, evidence string, confidence decimal.Decimal) (*PersonalitySignal, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	if trait == "" {
		return nil, shared.NewDomainError("INVALID_TRAIT", "Signal trait cannot be empty")
	}
	if confidence.IsNegative() || confidence.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_CONFIDENCE", "Confidence must be between 0 and 1")
	}
	return &PersonalitySignal{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Parent:     parent,
		Trait:      trait,
		Evidence:   evidence,
		Confidence: confidence,
	}, nil
}

// AttachClient adds the client link after lead conversion. The lead link
// is intentionally preserved.
func (s *PersonalitySignal) AttachClient(clientID uuid.UUID) error {
	if clientID == uuid.Nil {
		return shared.NewDomainError("INVALID_CLIENT_ID", "Client id is required")
	}
	s.Parent.ClientID = &clientID
	s.UpdatedAt = time.Now()
	return nil
}
