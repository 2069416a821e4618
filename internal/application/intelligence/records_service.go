package intelligence

import (
	"context"
	"fmt"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/agencycrm/backend/internal/infrastructure/realtime"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SignalPublisher announces signal rows to other processes. Satisfied by
// realtime.Publisher.
type SignalPublisher interface {
	PublishSignalChange(ctx context.Context, eventType realtime.EventType, signal *intelligence.PersonalitySignal) error
}

// RecordsService handles the append-only intelligence records: transcripts,
// recommendations, message drafts, strategy plans, competitor reports and
// personality signals. Transcript summaries, recommendations and strategy
// plans additionally produce a derived note on the parent, de-duplicated by
// the producing record's id.
type RecordsService struct {
	transcripts     intelligence.TranscriptRepository
	recommendations intelligence.RecommendationRepository
	messages        intelligence.MessageRepository
	plans           intelligence.StrategyPlanRepository
	reports         intelligence.CompetitorReportRepository
	signals         intelligence.SignalRepository
	notes           *NoteService
	store           *cache.Store
	activity        *appaudit.ActivityLogger
	publisher       SignalPublisher
	logger          *zap.Logger
}

// RecordsServiceOption configures a RecordsService
type RecordsServiceOption func(*RecordsService)

// WithRecordsServiceLogger sets the logger
func WithRecordsServiceLogger(logger *zap.Logger) RecordsServiceOption {
	return func(s *RecordsService) {
		s.logger = logger
	}
}

// WithSignalPublisher sets the publisher used to announce new signals
func WithSignalPublisher(p SignalPublisher) RecordsServiceOption {
	return func(s *RecordsService) {
		s.publisher = p
	}
}

// NewRecordsService creates a records service
func NewRecordsService(
	transcripts intelligence.TranscriptRepository,
	recommendations intelligence.RecommendationRepository,
	messages intelligence.MessageRepository,
	plans intelligence.StrategyPlanRepository,
	reports intelligence.CompetitorReportRepository,
	signals intelligence.SignalRepository,
	notes *NoteService,
	store *cache.Store,
	activity *appaudit.ActivityLogger,
	opts ...RecordsServiceOption,
) *RecordsService {
	s := &RecordsService{
		transcripts:     transcripts,
		recommendations: recommendations,
		messages:        messages,
		plans:           plans,
		reports:         reports,
		signals:         signals,
		notes:           notes,
		store:           store,
		activity:        activity,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTranscript stores a call transcript. A non-empty summary becomes a
// derived note on the parent.
func (s *RecordsService) AddTranscript(ctx context.Context, tenantID uuid.UUID, req CreateTranscriptRequest) (*TranscriptResponse, error) {
	parent, err := req.Parent.ToParentRef()
	if err != nil {
		return nil, err
	}

	transcript, err := intelligence.NewCallTranscript(tenantID, parent, req.Transcript, req.RecordedAt)
	if err != nil {
		return nil, err
	}
	transcript.Title = req.Title
	transcript.Summary = req.Summary
	transcript.DurationSeconds = req.DurationSeconds

	if err := s.transcripts.Save(ctx, transcript); err != nil {
		return nil, fmt.Errorf("failed to save transcript: %w", err)
	}

	s.store.PrependTranscript(tenantID, *transcript)
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "call_transcript", transcript.Title, &transcript.ID)

	if req.Summary != "" {
		s.deriveNote(ctx, tenantID, parent, req.Summary, intelligence.NoteTypeTranscriptSummary, transcript.ID)
	}

	resp := ToTranscriptResponse(transcript)
	return &resp, nil
}

// ListTranscripts returns the transcripts of a client or lead
func (s *RecordsService) ListTranscripts(ctx context.Context, tenantID uuid.UUID, req ParentRequest) ([]TranscriptResponse, error) {
	parent, err := req.ToParentRef()
	if err != nil {
		return nil, err
	}
	transcripts, err := s.transcripts.FindByParent(ctx, tenantID, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	items := make([]TranscriptResponse, len(transcripts))
	for i := range transcripts {
		items[i] = ToTranscriptResponse(&transcripts[i])
	}
	return items, nil
}

// AddRecommendation stores an AI recommendation and derives a note from it
func (s *RecordsService) AddRecommendation(ctx context.Context, tenantID uuid.UUID, req CreateRecommendationRequest) (*RecommendationResponse, error) {
	parent, err := req.Parent.ToParentRef()
	if err != nil {
		return nil, err
	}

	rec, err := intelligence.NewAIRecommendation(tenantID, parent, req.Topic, req.Body)
	if err != nil {
		return nil, err
	}
	rec.Model = req.Model

	if err := s.recommendations.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save recommendation: %w", err)
	}

	s.store.PrependRecommendation(tenantID, *rec)
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "ai_recommendation", rec.Topic, &rec.ID)
	s.deriveNote(ctx, tenantID, parent, req.Body, intelligence.NoteTypeRecommendation, rec.ID)

	resp := ToRecommendationResponse(rec)
	return &resp, nil
}

// ListRecommendations returns the recommendations of a client or lead
func (s *RecordsService) ListRecommendations(ctx context.Context, tenantID uuid.UUID, req ParentRequest) ([]RecommendationResponse, error) {
	parent, err := req.ToParentRef()
	if err != nil {
		return nil, err
	}
	recs, err := s.recommendations.FindByParent(ctx, tenantID, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	items := make([]RecommendationResponse, len(recs))
	for i := range recs {
		items[i] = ToRecommendationResponse(&recs[i])
	}
	return items, nil
}

// AddMessage stores a WhatsApp message draft
func (s *RecordsService) AddMessage(ctx context.Context, tenantID uuid.UUID, req CreateMessageRequest) (*MessageResponse, error) {
	parent, err := req.Parent.ToParentRef()
	if err != nil {
		return nil, err
	}

	msg, err := intelligence.NewWhatsAppMessage(tenantID, parent, req.Body, req.Purpose)
	if err != nil {
		return nil, err
	}

	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	s.store.UpsertMessage(tenantID, *msg)
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "whatsapp_message", msg.Purpose, &msg.ID)

	resp := ToMessageResponse(msg)
	return &resp, nil
}

// MarkMessageSent marks a draft as sent
func (s *RecordsService) MarkMessageSent(ctx context.Context, tenantID, messageID uuid.UUID) (*MessageResponse, error) {
	messages, err := s.messages.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	var msg *intelligence.WhatsAppMessage
	for i := range messages {
		if messages[i].ID == messageID {
			msg = &messages[i]
			break
		}
	}
	if msg == nil {
		return nil, shared.ErrNotFound
	}
	if msg.Status == intelligence.MessageStatusSent {
		return nil, shared.ErrInvalidState
	}

	msg.MarkSent()
	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}

	s.store.UpsertMessage(tenantID, *msg)
	s.activity.Log(ctx, tenantID, audit.ActionUpdated, "whatsapp_message", msg.Purpose, &msg.ID)

	resp := ToMessageResponse(msg)
	return &resp, nil
}

// ListMessages returns the message drafts of a client or lead
func (s *RecordsService) ListMessages(ctx context.Context, tenantID uuid.UUID, req ParentRequest) ([]MessageResponse, error) {
	parent, err := req.ToParentRef()
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.FindByParent(ctx, tenantID, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	items := make([]MessageResponse, len(messages))
	for i := range messages {
		items[i] = ToMessageResponse(&messages[i])
	}
	return items, nil
}

// AddStrategyPlan stores a strategy plan and derives a note from it
func (s *RecordsService) AddStrategyPlan(ctx context.Context, tenantID uuid.UUID, req CreateStrategyPlanRequest) (*StrategyPlanResponse, error) {
	parent, err := req.Parent.ToParentRef()
	if err != nil {
		return nil, err
	}

	plan, err := intelligence.NewStrategyPlan(tenantID, parent, req.Title, req.Body, req.PeriodKey)
	if err != nil {
		return nil, err
	}

	if err := s.plans.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save strategy plan: %w", err)
	}

	s.store.PrependStrategyPlan(tenantID, *plan)
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "strategy_plan", plan.Title, &plan.ID)
	s.deriveNote(ctx, tenantID, parent, req.Body, intelligence.NoteTypeStrategy, plan.ID)

	resp := ToStrategyPlanResponse(plan)
	return &resp, nil
}

// ListStrategyPlans returns the strategy plans of a client or lead
func (s *RecordsService) ListStrategyPlans(ctx context.Context, tenantID uuid.UUID, req ParentRequest) ([]StrategyPlanResponse, error) {
	parent, err := req.ToParentRef()
	if err != nil {
		return nil, err
	}
	plans, err := s.plans.FindByParent(ctx, tenantID, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategy plans: %w", err)
	}
	items := make([]StrategyPlanResponse, len(plans))
	for i := range plans {
		items[i] = ToStrategyPlanResponse(&plans[i])
	}
	return items, nil
}

// AddCompetitorReport stores a competitor report
func (s *RecordsService) AddCompetitorReport(ctx context.Context, tenantID uuid.UUID, req CreateCompetitorReportRequest) (*CompetitorReportResponse, error) {
	parent, err := req.Parent.ToParentRef()
	if err != nil {
		return nil, err
	}

	report, err := intelligence.NewCompetitorReport(tenantID, parent, req.CompetitorName, req.Body)
	if err != nil {
		return nil, err
	}

	if err := s.reports.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save competitor report: %w", err)
	}

	s.store.PrependCompetitorReport(tenantID, *report)
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "competitor_report", report.CompetitorName, &report.ID)

	resp := ToCompetitorReportResponse(report)
	return &resp, nil
}

// ListCompetitorReports returns the competitor reports of a client or lead
func (s *RecordsService) ListCompetitorReports(ctx context.Context, tenantID uuid.UUID, req ParentRequest) ([]CompetitorReportResponse, error) {
	parent, err := req.ToParentRef()
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.FindByParent(ctx, tenantID, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitor reports: %w", err)
	}
	items := make([]CompetitorReportResponse, len(reports))
	for i := range reports {
		items[i] = ToCompetitorReportResponse(&reports[i])
	}
	return items, nil
}

// AddSignal stores a personality signal and announces it to other processes
func (s *RecordsService) AddSignal(ctx context.Context, tenantID uuid.UUID, req CreateSignalRequest) (*SignalResponse, error) {
	parent, err := req.Parent.ToParentRef()
	if err != nil {
		return nil, err
	}

	signal, err := intelligence.NewPersonalitySignal(tenantID, parent, req.Trait, req.Evidence, req.Confidence)
	if err != nil {
		return nil, err
	}

	if err := s.signals.Save(ctx, signal); err != nil {
		return nil, fmt.Errorf("failed to save signal: %w", err)
	}

	s.store.UpsertSignal(tenantID, *signal)
	if s.publisher != nil {
		if err := s.publisher.PublishSignalChange(ctx, realtime.EventInsert, signal); err != nil {
			s.logger.Warn("failed to announce signal", zap.Error(err))
		}
	}

	resp := ToSignalResponse(signal)
	return &resp, nil
}

// ListSignals returns the signals of a client or lead
func (s *RecordsService) ListSignals(ctx context.Context, tenantID uuid.UUID, req ParentRequest) ([]SignalResponse, error) {
	parent, err := req.ToParentRef()
	if err != nil {
		return nil, err
	}
	signals, err := s.signals.FindByParent(ctx, tenantID, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list signals: %w", err)
	}
	items := make([]SignalResponse, len(signals))
	for i := range signals {
		items[i] = ToSignalResponse(&signals[i])
	}
	return items, nil
}

// deriveNote writes the AI-derived note for a producing record. The parent
// record is already saved, so a failed note is logged and tolerated.
func (s *RecordsService) deriveNote(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef, body string, noteType intelligence.NoteType, sourceID uuid.UUID) {
	if _, _, err := s.notes.CreateFromSource(ctx, tenantID, parent, body, noteType, sourceID); err != nil {
		s.logger.Warn("failed to derive note",
			zap.String("note_type", string(noteType)),
			zap.String("source_id", sourceID.String()),
			zap.Error(err))
	}
}
