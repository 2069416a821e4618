package intelligence

import (
	"time"

	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParentRequest identifies the client or lead a record belongs to
type ParentRequest struct {
	ClientID *uuid.UUID `json:"client_id" form:"client_id"`
	LeadID   *uuid.UUID `json:"lead_id" form:"lead_id"`
}

// ToParentRef converts the request to a validated domain reference
func (r ParentRequest) ToParentRef() (intelligence.ParentRef, error) {
	parent := intelligence.ParentRef{ClientID: r.ClientID, LeadID: r.LeadID}
	if err := parent.Validate(); err != nil {
		return intelligence.ParentRef{}, err
	}
	return parent, nil
}

// ParentResponse mirrors ParentRequest in responses
type ParentResponse struct {
	ClientID *uuid.UUID `json:"client_id,omitempty"`
	LeadID   *uuid.UUID `json:"lead_id,omitempty"`
}

func toParentResponse(p intelligence.ParentRef) ParentResponse {
	return ParentResponse{ClientID: p.ClientID, LeadID: p.LeadID}
}

// CreateNoteRequest carries the fields for creating a note
type CreateNoteRequest struct {
	Parent   ParentRequest `json:"parent"`
	Body     string        `json:"body" binding:"required"`
	NoteType string        `json:"note_type"`
	Author   string        `json:"author"`
}

// NoteResponse is the note representation returned to callers
type NoteResponse struct {
	ID        uuid.UUID      `json:"id"`
	Parent    ParentResponse `json:"parent"`
	Body      string         `json:"body"`
	NoteType  string         `json:"note_type"`
	SourceID  *uuid.UUID     `json:"source_id,omitempty"`
	Author    string         `json:"author"`
	CreatedAt time.Time      `json:"created_at"`
}

// ToNoteResponse converts a domain note to a response
func ToNoteResponse(n *intelligence.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Parent:    toParentResponse(n.Parent),
		Body:      n.Body,
		NoteType:  string(n.NoteType),
		SourceID:  n.SourceID,
		Author:    n.Author,
		CreatedAt: n.CreatedAt,
	}
}

// CreateTranscriptRequest carries the fields for recording a call transcript
type CreateTranscriptRequest struct {
	Parent          ParentRequest `json:"parent"`
	Title           string        `json:"title"`
	Transcript      string        `json:"transcript" binding:"required"`
	Summary         string        `json:"summary"`
	RecordedAt      time.Time     `json:"recorded_at"`
	DurationSeconds int           `json:"duration_seconds"`
}

// TranscriptResponse is the transcript representation returned to callers
type TranscriptResponse struct {
	ID              uuid.UUID      `json:"id"`
	Parent          ParentResponse `json:"parent"`
	Title           string         `json:"title"`
	Transcript      string         `json:"transcript"`
	Summary         string         `json:"summary"`
	RecordedAt      time.Time      `json:"recorded_at"`
	DurationSeconds int            `json:"duration_seconds"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ToTranscriptResponse converts a domain transcript to a response
func ToTranscriptResponse(tr *intelligence.CallTranscript) TranscriptResponse {
	return TranscriptResponse{
		ID:              tr.ID,
		Parent:          toParentResponse(tr.Parent),
		Title:           tr.Title,
		Transcript:      tr.Transcript,
		Summary:         tr.Summary,
		RecordedAt:      tr.RecordedAt,
		DurationSeconds: tr.DurationSeconds,
		CreatedAt:       tr.CreatedAt,
	}
}

// CreateRecommendationRequest carries the fields for storing a recommendation
type CreateRecommendationRequest struct {
	Parent ParentRequest `json:"parent"`
	Topic  string        `json:"topic"`
	Body   string        `json:"body" binding:"required"`
	Model  string        `json:"model"`
}

// RecommendationResponse is the recommendation representation
type RecommendationResponse struct {
	ID        uuid.UUID      `json:"id"`
	Parent    ParentResponse `json:"parent"`
	Topic     string         `json:"topic"`
	Body      string         `json:"body"`
	Model     string         `json:"model"`
	CreatedAt time.Time      `json:"created_at"`
}

// ToRecommendationResponse converts a domain recommendation to a response
func ToRecommendationResponse(r *intelligence.AIRecommendation) RecommendationResponse {
	return RecommendationResponse{
		ID:        r.ID,
		Parent:    toParentResponse(r.Parent),
		Topic:     r.Topic,
		Body:      r.Body,
		Model:     r.Model,
		CreatedAt: r.CreatedAt,
	}
}

// CreateMessageRequest carries the fields for drafting a WhatsApp message
type CreateMessageRequest struct {
	Parent  ParentRequest `json:"parent"`
	Body    string        `json:"body" binding:"required"`
	Purpose string        `json:"purpose"`
}

// MessageResponse is the message representation returned to callers
type MessageResponse struct {
	ID        uuid.UUID      `json:"id"`
	Parent    ParentResponse `json:"parent"`
	Body      string         `json:"body"`
	Purpose   string         `json:"purpose"`
	Status    string         `json:"status"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ToMessageResponse converts a domain message to a response
func ToMessageResponse(m *intelligence.WhatsAppMessage) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Parent:    toParentResponse(m.Parent),
		Body:      m.Body,
		Purpose:   m.Purpose,
		Status:    string(m.Status),
		SentAt:    m.SentAt,
		CreatedAt: m.CreatedAt,
	}
}

// CreateStrategyPlanRequest carries the fields for storing a strategy plan
type CreateStrategyPlanRequest struct {
	Parent    ParentRequest `json:"parent"`
	Title     string        `json:"title"`
	Body      string        `json:"body" binding:"required"`
	PeriodKey string        `json:"period_key"`
}

// StrategyPlanResponse is the strategy plan representation
type StrategyPlanResponse struct {
	ID        uuid.UUID      `json:"id"`
	Parent    ParentResponse `json:"parent"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	PeriodKey string         `json:"period_key"`
	CreatedAt time.Time      `json:"created_at"`
}

// ToStrategyPlanResponse converts a domain plan to a response
func ToStrategyPlanResponse(p *intelligence.StrategyPlan) StrategyPlanResponse {
	return StrategyPlanResponse{
		ID:        p.ID,
		Parent:    toParentResponse(p.Parent),
		Title:     p.Title,
		Body:      p.Body,
		PeriodKey: p.PeriodKey,
		CreatedAt: p.CreatedAt,
	}
}

// CreateCompetitorReportRequest carries the fields for storing a report
type CreateCompetitorReportRequest struct {
	Parent         ParentRequest `json:"parent"`
	CompetitorName string        `json:"competitor_name" binding:"required"`
	Body           string        `json:"body" binding:"required"`
}

// CompetitorReportResponse is the competitor report representation
type CompetitorReportResponse struct {
	ID             uuid.UUID      `json:"id"`
	Parent         ParentResponse `json:"parent"`
	CompetitorName string         `json:"competitor_name"`
	Body           string         `json:"body"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ToCompetitorReportResponse converts a domain report to a response
func ToCompetitorReportResponse(r *intelligence.CompetitorReport) CompetitorReportResponse {
	return CompetitorReportResponse{
		ID:             r.ID,
		Parent:         toParentResponse(r.Parent),
		CompetitorName: r.CompetitorName,
		Body:           r.Body,
		CreatedAt:      r.CreatedAt,
	}
}

// CreateSignalRequest carries the fields for storing a personality signal
type CreateSignalRequest struct {
	Parent     ParentRequest   `json:"parent"`
	Trait      string          `json:"trait" binding:"required"`
	Evidence   string          `json:"evidence"`
	Confidence decimal.Decimal `json:"confidence"`
}

// SignalResponse is the signal representation returned to callers
type SignalResponse struct {
	ID         uuid.UUID       `json:"id"`
	Parent     ParentResponse  `json:"parent"`
	Trait      string          `json:"trait"`
	Evidence   string          `json:"evidence"`
	Confidence decimal.Decimal `json:"confidence"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToSignalResponse converts a domain signal to a response
func ToSignalResponse(s *intelligence.PersonalitySignal) SignalResponse {
	return SignalResponse{
		ID:         s.ID,
		Parent:     toParentResponse(s.Parent),
		Trait:      s.Trait,
		Evidence:   s.Evidence,
		Confidence: s.Confidence,
		CreatedAt:  s.CreatedAt,
	}
}
