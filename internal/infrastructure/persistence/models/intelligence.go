package models

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notes live in two tables, client_notes and lead_notes, matching the
// external schema. Both map to the single domain Note type; the parent
// reference decides which table a note is routed to.

// ClientNoteModel is the persistence model for notes owned by a client.
type ClientNoteModel struct {
	BaseModel
	TenantID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Body     string     `gorm:"type:text;not null"`
	NoteType string     `gorm:"type:varchar(30);not null;default:'manual'"`
	SourceID *uuid.UUID `gorm:"type:uuid;index"`
	Author   string     `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ClientNoteModel) TableName() string {
	return "client_notes"
}

// ToDomain converts the persistence model to a domain Note.
func (m *ClientNoteModel) ToDomain() *intelligence.Note {
	clientID := m.ClientID
	return &intelligence.Note{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Parent:     intelligence.ParentRef{ClientID: &clientID},
		Body:       m.Body,
		NoteType:   intelligence.NoteType(m.NoteType),
		SourceID:   m.SourceID,
		Author:     m.Author,
	}
}

// FromDomain populates the persistence model from a domain Note.
func (m *ClientNoteModel) FromDomain(n *intelligence.Note) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.TenantID = n.TenantID
	if n.Parent.ClientID != nil {
		m.ClientID = *n.Parent.ClientID
	}
	m.Body = n.Body
	m.NoteType = string(n.NoteType)
	m.SourceID = n.SourceID
	m.Author = n.Author
}

// LeadNoteModel is the persistence model for notes owned by a lead.
type LeadNoteModel struct {
	BaseModel
	TenantID uuid.UUID  `gorm:"type:uuid;not null;index"`
	LeadID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Body     string     `gorm:"type:text;not null"`
	NoteType string     `gorm:"type:varchar(30);not null;default:'manual'"`
	SourceID *uuid.UUID `gorm:"type:uuid;index"`
	Author   string     `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (LeadNoteModel) TableName() string {
	return "lead_notes"
}

// ToDomain converts the persistence model to a domain Note.
func (m *LeadNoteModel) ToDomain() *intelligence.Note {
	leadID := m.LeadID
	return &intelligence.Note{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Parent:     intelligence.ParentRef{LeadID: &leadID},
		Body:       m.Body,
		NoteType:   intelligence.NoteType(m.NoteType),
		SourceID:   m.SourceID,
		Author:     m.Author,
	}
}

// FromDomain populates the persistence model from a domain Note.
func (m *LeadNoteModel) FromDomain(n *intelligence.Note) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.TenantID = n.TenantID
	if n.Parent.LeadID != nil {
		m.LeadID = *n.Parent.LeadID
	}
	m.Body = n.Body
	m.NoteType = string(n.NoteType)
	m.SourceID = n.SourceID
	m.Author = n.Author
}

// CallTranscriptModel is the persistence model for call transcripts.
type CallTranscriptModel struct {
	BaseModel
	TenantID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientID        *uuid.UUID `gorm:"type:uuid;index"`
	LeadID          *uuid.UUID `gorm:"type:uuid;index"`
	Title           string     `gorm:"type:varchar(200)"`
	Transcript      string     `gorm:"type:text;not null"`
	Summary         string     `gorm:"type:text"`
	RecordedAt      time.Time  `gorm:"type:timestamptz;not null"`
	DurationSeconds int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CallTranscriptModel) TableName() string {
	return "call_transcripts"
}

// ToDomain converts the persistence model to a domain CallTranscript.
func (m *CallTranscriptModel) ToDomain() *intelligence.CallTranscript {
	return &intelligence.CallTranscript{
		BaseEntity:      m.BaseModel.ToDomain(),
		TenantID:        m.TenantID,
		Parent:          intelligence.ParentRef{ClientID: m.ClientID, LeadID: m.LeadID},
		Title:           m.Title,
		Transcript:      m.Transcript,
		Summary:         m.Summary,
		RecordedAt:      m.RecordedAt,
		DurationSeconds: m.DurationSeconds,
	}
}

// FromDomain populates the persistence model from a domain CallTranscript.
func (m *CallTranscriptModel) FromDomain(t *intelligence.CallTranscript) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.TenantID = t.TenantID
	m.ClientID = t.Parent.ClientID
	m.LeadID = t.Parent.LeadID
	m.Title = t.Title
	m.Transcript = t.Transcript
	m.Summary = t.Summary
	m.RecordedAt = t.RecordedAt
	m.DurationSeconds = t.DurationSeconds
}

// AIRecommendationModel is the persistence model for AI recommendations.
type AIRecommendationModel struct {
	BaseModel
	TenantID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientID *uuid.UUID `gorm:"type:uuid;index"`
	LeadID   *uuid.UUID `gorm:"type:uuid;index"`
	Topic    string     `gorm:"type:varchar(200)"`
	Body     string     `gorm:"type:text;not null"`
	Model    string     `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (AIRecommendationModel) TableName() string {
	return "ai_recommendations"
}

// ToDomain converts the persistence model to a domain AIRecommendation.
func (m *AIRecommendationModel) ToDomain() *intelligence.AIRecommendation {
	return &intelligence.AIRecommendation{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Parent:     intelligence.ParentRef{ClientID: m.ClientID, LeadID: m.LeadID},
		Topic:      m.Topic,
		Body:       m.Body,
		Model:      m.Model,
	}
}

// FromDomain populates the persistence model from a domain AIRecommendation.
func (m *AIRecommendationModel) FromDomain(r *intelligence.AIRecommendation) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.ClientID = r.Parent.ClientID
	m.LeadID = r.Parent.LeadID
	m.Topic = r.Topic
	m.Body = r.Body
	m.Model = r.Model
}

// WhatsAppMessageModel is the persistence model for WhatsApp drafts.
type WhatsAppMessageModel struct {
	BaseModel
	TenantID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientID *uuid.UUID `gorm:"type:uuid;index"`
	LeadID   *uuid.UUID `gorm:"type:uuid;index"`
	Body     string     `gorm:"type:text;not null"`
	Purpose  string     `gorm:"type:varchar(100)"`
	Status   string     `gorm:"type:varchar(20);not null;default:'draft'"`
	SentAt   *time.Time
}

// TableName returns the table name for GORM
func (WhatsAppMessageModel) TableName() string {
	return "whatsapp_messages"
}

// ToDomain converts the persistence model to a domain WhatsAppMessage.
func (m *WhatsAppMessageModel) ToDomain() *intelligence.WhatsAppMessage {
	return &intelligence.WhatsAppMessage{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Parent:     intelligence.ParentRef{ClientID: m.ClientID, LeadID: m.LeadID},
		Body:       m.Body,
		Purpose:    m.Purpose,
		Status:     intelligence.MessageStatus(m.Status),
		SentAt:     m.SentAt,
	}
}

// FromDomain populates the persistence model from a domain WhatsAppMessage.
func (m *WhatsAppMessageModel) FromDomain(msg *intelligence.WhatsAppMessage) {
	m.FromDomainBaseEntity(msg.BaseEntity)
	m.TenantID = msg.TenantID
	m.ClientID = msg.Parent.ClientID
	m.LeadID = msg.Parent.LeadID
	m.Body = msg.Body
	m.Purpose = msg.Purpose
	m.Status = string(msg.Status)
	m.SentAt = msg.SentAt
}

// StrategyPlanModel is the persistence model for strategy plans.
type StrategyPlanModel struct {
	BaseModel
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientID  *uuid.UUID `gorm:"type:uuid;index"`
	LeadID    *uuid.UUID `gorm:"type:uuid;index"`
	Title     string     `gorm:"type:varchar(200)"`
	Body      string     `gorm:"type:text;not null"`
	PeriodKey string     `gorm:"type:varchar(7)"`
}

// TableName returns the table name for GORM
func (StrategyPlanModel) TableName() string {
	return "strategy_plans"
}

// ToDomain converts the persistence model to a domain StrategyPlan.
func (m *StrategyPlanModel) ToDomain() *intelligence.StrategyPlan {
	return &intelligence.StrategyPlan{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Parent:     intelligence.ParentRef{ClientID: m.ClientID, LeadID: m.LeadID},
		Title:      m.Title,
		Body:       m.Body,
		PeriodKey:  m.PeriodKey,
	}
}

// FromDomain populates the persistence model from a domain StrategyPlan.
func (m *StrategyPlanModel) FromDomain(p *intelligence.StrategyPlan) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.TenantID = p.TenantID
	m.ClientID = p.Parent.ClientID
	m.LeadID = p.Parent.LeadID
	m.Title = p.Title
	m.Body = p.Body
	m.PeriodKey = p.PeriodKey
}

// CompetitorReportModel is the persistence model for competitor reports.
type CompetitorReportModel struct {
	BaseModel
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientID       *uuid.UUID `gorm:"type:uuid;index"`
	LeadID         *uuid.UUID `gorm:"type:uuid;index"`
	CompetitorName string     `gorm:"type:varchar(200);not null"`
	Body           string     `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (CompetitorReportModel) TableName() string {
	return "competitor_reports"
}

// ToDomain converts the persistence model to a domain CompetitorReport.
func (m *CompetitorReportModel) ToDomain() *intelligence.CompetitorReport {
	return &intelligence.CompetitorReport{
		BaseEntity:     m.BaseModel.ToDomain(),
		TenantID:       m.TenantID,
		Parent:         intelligence.ParentRef{ClientID: m.ClientID, LeadID: m.LeadID},
		CompetitorName: m.CompetitorName,
		Body:           m.Body,
	}
}

// FromDomain populates the persistence model from a domain CompetitorReport.
func (m *CompetitorReportModel) FromDomain(r *intelligence.CompetitorReport) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.ClientID = r.Parent.ClientID
	m.LeadID = r.Parent.LeadID
	m.CompetitorName = r.CompetitorName
	m.Body = r.Body
}

// PersonalitySignalModel is the persistence model for personality signals.
// Unlike other satellite tables this one may carry both parent links after
// a lead conversion.
type PersonalitySignalModel struct {
	BaseModel
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID   *uuid.UUID      `gorm:"type:uuid;index"`
	LeadID     *uuid.UUID      `gorm:"type:uuid;index"`
	Trait      string          `gorm:"type:varchar(100);not null"`
	Evidence   string          `gorm:"type:text"`
	Confidence decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PersonalitySignalModel) TableName() string {
	return "signals_personality"
}

// ToDomain converts the persistence model to a domain PersonalitySignal.
func (m *PersonalitySignalModel) ToDomain() *intelligence.PersonalitySignal {
	return &intelligence.PersonalitySignal{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Parent:     intelligence.ParentRef{ClientID: m.ClientID, LeadID: m.LeadID},
		Trait:      m.Trait,
		Evidence:   m.Evidence,
		Confidence: m.Confidence,
	}
}

// FromDomain populates the persistence model from a domain PersonalitySignal.
func (m *PersonalitySignalModel) FromDomain(s *intelligence.PersonalitySignal) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.TenantID = s.TenantID
	m.ClientID = s.Parent.ClientID
	m.LeadID = s.Parent.LeadID
	m.Trait = s.Trait
	m.Evidence = s.Evidence
	m.Confidence = s.Confidence
}
