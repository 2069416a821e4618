// Package snapshot loads, exports and imports the full per-tenant data
// set. The in-memory snapshot is the read model for everything else, so
// Load runs once per tenant session and Replace swaps the whole snapshot
// in one step.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/agencycrm/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repos bundles the repositories the snapshot service reads and writes
type Repos struct {
	Clients         crm.ClientRepository
	Leads           crm.LeadRepository
	RetainerChanges crm.RetainerChangeRepository
	Deals           finance.DealRepository
	Expenses        finance.ExpenseRepository
	Payments        finance.PaymentRepository
	Notes           intelligence.NoteRepository
	Transcripts     intelligence.TranscriptRepository
	Recommendations intelligence.RecommendationRepository
	Messages        intelligence.MessageRepository
	Plans           intelligence.StrategyPlanRepository
	Reports         intelligence.CompetitorReportRepository
	Signals         intelligence.SignalRepository
	Activity        audit.ActivityRepository
}

// Service loads the tenant snapshot and round-trips it as flat JSON
type Service struct {
	repos    Repos
	store    *cache.Store
	activity *appaudit.ActivityLogger
	logger   *zap.Logger
}

// NewService creates a snapshot service
func NewService(repos Repos, store *cache.Store, activity *appaudit.ActivityLogger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repos:    repos,
		store:    store,
		activity: activity,
		logger:   logger,
	}
}

// unpaged is used for the bulk reads; the snapshot holds whole collections
var unpaged = shared.Filter{Page: 1, PageSize: 100000, OrderBy: "created_at", OrderDir: "desc"}

// Load fetches every collection of a tenant and swaps it into the store.
// A tenant with no data at all still ends up loaded, with empty
// collections. Refuses to load before the tenant is resolved.
func (s *Service) Load(ctx context.Context, tenantID uuid.UUID) error {
	if tenantID == uuid.Nil || tenantID == tenant.SentinelTenantID {
		return shared.ErrTenantRequired
	}

	snap := cache.Snapshot{}
	var err error

	if snap.Clients, err = s.repos.Clients.FindAllForTenant(ctx, tenantID, unpaged); err != nil {
		return fmt.Errorf("failed to load clients: %w", err)
	}
	if snap.Leads, err = s.repos.Leads.FindAllForTenant(ctx, tenantID, unpaged); err != nil {
		return fmt.Errorf("failed to load leads: %w", err)
	}
	if snap.RetainerChanges, err = s.repos.RetainerChanges.FindAllForTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to load retainer changes: %w", err)
	}
	if snap.Deals, err = s.repos.Deals.FindAllForTenant(ctx, tenantID, unpaged); err != nil {
		return fmt.Errorf("failed to load deals: %w", err)
	}
	if snap.Expenses, err = s.repos.Expenses.FindAllForTenant(ctx, tenantID, unpaged); err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}
	if snap.Payments, err = s.repos.Payments.FindAllForTenant(ctx, tenantID, unpaged); err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	if snap.Notes, err = s.repos.Notes.FindAllForTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to load notes: %w", err)
	}
	if snap.Transcripts, err = s.repos.Transcripts.FindAllForTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to load transcripts: %w", err)
	}
	if snap.Recommendations, err = s.repos.Recommendations.FindAllForTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to load recommendations: %w", err)
	}
	if snap.Messages, err = s.repos.Messages.FindAllForTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}
	if snap.StrategyPlans, err = s.repos.Plans.FindAllForTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to load strategy plans: %w", err)
	}
	if snap.CompetitorReports, err = s.repos.Reports.FindAllForTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to load competitor reports: %w", err)
	}
	if snap.Signals, err = s.repos.Signals.FindAllForTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to load signals: %w", err)
	}
	if snap.Activity, err = s.repos.Activity.FindRecent(ctx, tenantID, audit.LocalLogCapacity); err != nil {
		return fmt.Errorf("failed to load activity log: %w", err)
	}

	s.store.Replace(tenantID, snap)
	s.logger.Info("tenant snapshot loaded",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("clients", len(snap.Clients)),
		zap.Int("leads", len(snap.Leads)))

	return nil
}

// ExportDocument is the flat JSON backup format: one key per collection
type ExportDocument struct {
	Clients           []crm.Client                     `json:"clients"`
	Leads             []crm.Lead                       `json:"leads"`
	RetainerChanges   []crm.RetainerChange             `json:"retainer_changes"`
	Deals             []finance.Deal                   `json:"deals"`
	Expenses          []finance.Expense                `json:"expenses"`
	Payments          []finance.Payment                `json:"payments"`
	Notes             []intelligence.Note              `json:"notes"`
	Transcripts       []intelligence.CallTranscript    `json:"call_transcripts"`
	Recommendations   []intelligence.AIRecommendation  `json:"ai_recommendations"`
	Messages          []intelligence.WhatsAppMessage   `json:"whatsapp_messages"`
	StrategyPlans     []intelligence.StrategyPlan      `json:"strategy_plans"`
	CompetitorReports []intelligence.CompetitorReport  `json:"competitor_reports"`
	Signals           []intelligence.PersonalitySignal `json:"personality_signals"`
}

// Export serializes the tenant's current snapshot as a flat JSON document
func (s *Service) Export(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	if !s.store.Loaded(tenantID) {
		if err := s.Load(ctx, tenantID); err != nil {
			return nil, err
		}
	}
	snap := s.store.Snapshot(tenantID)

	doc := ExportDocument{
		Clients:           emptyIfNil(snap.Clients),
		Leads:             emptyIfNil(snap.Leads),
		RetainerChanges:   emptyIfNil(snap.RetainerChanges),
		Deals:             emptyIfNil(snap.Deals),
		Expenses:          emptyIfNil(snap.Expenses),
		Payments:          emptyIfNil(snap.Payments),
		Notes:             emptyIfNil(snap.Notes),
		Transcripts:       emptyIfNil(snap.Transcripts),
		Recommendations:   emptyIfNil(snap.Recommendations),
		Messages:          emptyIfNil(snap.Messages),
		StrategyPlans:     emptyIfNil(snap.StrategyPlans),
		CompetitorReports: emptyIfNil(snap.CompetitorReports),
		Signals:           emptyIfNil(snap.Signals),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

// Import replaces the tenant's data with the document's contents. The
// document must carry at least the clients and leads collections as JSON
// arrays; any other collection missing from it imports as empty. Every
// imported row is re-stamped with the importing tenant, so a backup taken
// under one tenant restores cleanly under another.
func (s *Service) Import(ctx context.Context, tenantID uuid.UUID, data []byte) error {
	if tenantID == uuid.Nil || tenantID == tenant.SentinelTenantID {
		return shared.ErrTenantRequired
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return shared.NewDomainError("INVALID_IMPORT", "Import document is not a JSON object")
	}
	for _, key := range []string{"clients", "leads"} {
		raw, ok := probe[key]
		if !ok {
			return shared.NewDomainError("INVALID_IMPORT", fmt.Sprintf("Import document is missing %q", key))
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return shared.NewDomainError("INVALID_IMPORT", fmt.Sprintf("Import key %q must be an array", key))
		}
	}

	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return shared.NewDomainError("INVALID_IMPORT", "Import document does not match the export format")
	}

	snap := cache.Snapshot{}

	for i := range doc.Clients {
		doc.Clients[i].TenantID = tenantID
		if err := s.repos.Clients.Save(ctx, &doc.Clients[i]); err != nil {
			return fmt.Errorf("failed to import client: %w", err)
		}
	}
	snap.Clients = emptyIfNil(doc.Clients)

	for i := range doc.Leads {
		doc.Leads[i].TenantID = tenantID
		if err := s.repos.Leads.Save(ctx, &doc.Leads[i]); err != nil {
			return fmt.Errorf("failed to import lead: %w", err)
		}
	}
	snap.Leads = emptyIfNil(doc.Leads)

	for i := range doc.RetainerChanges {
		doc.RetainerChanges[i].TenantID = tenantID
		if err := s.repos.RetainerChanges.Save(ctx, &doc.RetainerChanges[i]); err != nil {
			return fmt.Errorf("failed to import retainer change: %w", err)
		}
	}
	snap.RetainerChanges = emptyIfNil(doc.RetainerChanges)

	for i := range doc.Deals {
		doc.Deals[i].TenantID = tenantID
		if err := s.repos.Deals.Save(ctx, &doc.Deals[i]); err != nil {
			return fmt.Errorf("failed to import deal: %w", err)
		}
	}
	snap.Deals = emptyIfNil(doc.Deals)

	expensePtrs := make([]*finance.Expense, len(doc.Expenses))
	for i := range doc.Expenses {
		doc.Expenses[i].TenantID = tenantID
		expensePtrs[i] = &doc.Expenses[i]
	}
	if len(expensePtrs) > 0 {
		if err := s.repos.Expenses.SaveBatch(ctx, expensePtrs); err != nil {
			return fmt.Errorf("failed to import expenses: %w", err)
		}
	}
	snap.Expenses = emptyIfNil(doc.Expenses)

	paymentPtrs := make([]*finance.Payment, len(doc.Payments))
	for i := range doc.Payments {
		doc.Payments[i].TenantID = tenantID
		paymentPtrs[i] = &doc.Payments[i]
	}
	if len(paymentPtrs) > 0 {
		if err := s.repos.Payments.SaveBatch(ctx, paymentPtrs); err != nil {
			return fmt.Errorf("failed to import payments: %w", err)
		}
	}
	snap.Payments = emptyIfNil(doc.Payments)

	for i := range doc.Notes {
		doc.Notes[i].TenantID = tenantID
		if err := s.repos.Notes.Save(ctx, &doc.Notes[i]); err != nil {
			return fmt.Errorf("failed to import note: %w", err)
		}
	}
	snap.Notes = emptyIfNil(doc.Notes)

	for i := range doc.Transcripts {
		doc.Transcripts[i].TenantID = tenantID
		if err := s.repos.Transcripts.Save(ctx, &doc.Transcripts[i]); err != nil {
			return fmt.Errorf("failed to import transcript: %w", err)
		}
	}
	snap.Transcripts = emptyIfNil(doc.Transcripts)

	for i := range doc.Recommendations {
		doc.Recommendations[i].TenantID = tenantID
		if err := s.repos.Recommendations.Save(ctx, &doc.Recommendations[i]); err != nil {
			return fmt.Errorf("failed to import recommendation: %w", err)
		}
	}
	snap.Recommendations = emptyIfNil(doc.Recommendations)

	for i := range doc.Messages {
		doc.Messages[i].TenantID = tenantID
		if err := s.repos.Messages.Save(ctx, &doc.Messages[i]); err != nil {
			return fmt.Errorf("failed to import message: %w", err)
		}
	}
	snap.Messages = emptyIfNil(doc.Messages)

	for i := range doc.StrategyPlans {
		doc.StrategyPlans[i].TenantID = tenantID
		if err := s.repos.Plans.Save(ctx, &doc.StrategyPlans[i]); err != nil {
			return fmt.Errorf("failed to import strategy plan: %w", err)
		}
	}
	snap.StrategyPlans = emptyIfNil(doc.StrategyPlans)

	for i := range doc.CompetitorReports {
		doc.CompetitorReports[i].TenantID = tenantID
		if err := s.repos.Reports.Save(ctx, &doc.CompetitorReports[i]); err != nil {
			return fmt.Errorf("failed to import competitor report: %w", err)
		}
	}
	snap.CompetitorReports = emptyIfNil(doc.CompetitorReports)

	for i := range doc.Signals {
		doc.Signals[i].TenantID = tenantID
		if err := s.repos.Signals.Save(ctx, &doc.Signals[i]); err != nil {
			return fmt.Errorf("failed to import signal: %w", err)
		}
	}
	snap.Signals = emptyIfNil(doc.Signals)

	s.store.Replace(tenantID, snap)
	s.activity.Log(ctx, tenantID, audit.ActionImported, "snapshot",
		fmt.Sprintf("%d clients, %d leads imported", len(doc.Clients), len(doc.Leads)), nil)

	return nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
