package cache

import (
	"sync"

	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/domain/settings"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Snapshot holds every collection the UI works from for a single tenant.
// Collections are replaced wholesale on load and patched entry-by-entry
// after each confirmed remote write. Loaded distinguishes "empty tenant"
// from "never fetched".
type Snapshot struct {
	Clients           []crm.Client
	Leads             []crm.Lead
	RetainerChanges   []crm.RetainerChange
	Deals             []finance.Deal
	Expenses          []finance.Expense
	Payments          []finance.Payment
	Notes             []intelligence.Note
	Transcripts       []intelligence.CallTranscript
	Recommendations   []intelligence.AIRecommendation
	Messages          []intelligence.WhatsAppMessage
	StrategyPlans     []intelligence.StrategyPlan
	CompetitorReports []intelligence.CompetitorReport
	Signals           []intelligence.PersonalitySignal
	Activity          []audit.ActivityEntry
	Settings          *settings.TenantSettings
	Loaded            bool
}

// Store is the in-memory read model, keyed by tenant. All mutation goes
// through the write lock; readers get copied slices so a concurrent patch
// never shifts a list under them. The store is only ever mutated after
// the corresponding remote write succeeded.
type Store struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*Snapshot
	logger    *zap.Logger
}

// StoreOption is a functional option for configuring the store
type StoreOption func(*Store)

// WithStoreLogger sets the logger for the store
func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty snapshot store
func NewStore(opts ...StoreOption) *Store {
	store := &Store{
		snapshots: make(map[uuid.UUID]*Snapshot),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// snapshot returns the live snapshot for a tenant, creating it if needed.
// Callers must hold the write lock.
func (s *Store) snapshot(tenantID uuid.UUID) *Snapshot {
	snap, ok := s.snapshots[tenantID]
	if !ok {
		snap = &Snapshot{}
		s.snapshots[tenantID] = snap
	}
	return snap
}

// Apply runs mutate against the tenant's snapshot under the write lock.
// It is the primitive behind every typed mutator and lets callers patch
// several collections in one atomic step, which the conversion flow needs
// so a reader never sees the won lead without its new client.
func (s *Store) Apply(tenantID uuid.UUID, mutate func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(s.snapshot(tenantID))
}

// Replace swaps in a complete snapshot for a tenant and marks it loaded
func (s *Store) Replace(tenantID uuid.UUID, snap Snapshot) {
	snap.Loaded = true
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[tenantID] = &snap
	s.logger.Debug("Replaced tenant snapshot",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("clients", len(snap.Clients)),
		zap.Int("leads", len(snap.Leads)))
}

// Drop discards a tenant's snapshot entirely
func (s *Store) Drop(tenantID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, tenantID)
}

// Loaded reports whether the tenant's snapshot has been fetched at least once
func (s *Store) Loaded(tenantID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[tenantID]
	return ok && snap.Loaded
}

// Snapshot returns a copy of the tenant's snapshot. Slice headers are
// copied so callers can iterate without holding the lock; an unknown
// tenant yields a zero snapshot with Loaded false.
func (s *Store) Snapshot(tenantID uuid.UUID) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[tenantID]
	if !ok {
		return Snapshot{}
	}
	out := Snapshot{
		Clients:           copySlice(snap.Clients),
		Leads:             copySlice(snap.Leads),
		RetainerChanges:   copySlice(snap.RetainerChanges),
		Deals:             copySlice(snap.Deals),
		Expenses:          copySlice(snap.Expenses),
		Payments:          copySlice(snap.Payments),
		Notes:             copySlice(snap.Notes),
		Transcripts:       copySlice(snap.Transcripts),
		Recommendations:   copySlice(snap.Recommendations),
		Messages:          copySlice(snap.Messages),
		StrategyPlans:     copySlice(snap.StrategyPlans),
		CompetitorReports: copySlice(snap.CompetitorReports),
		Signals:           copySlice(snap.Signals),
		Activity:          copySlice(snap.Activity),
		Settings:          snap.Settings,
		Loaded:            snap.Loaded,
	}
	return out
}

// TenantIDs returns the tenants that currently hold a snapshot
func (s *Store) TenantIDs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	return ids
}

// Typed mutators. Each acquires the write lock via Apply and patches a
// single collection; services call them only after the remote write
// came back without error.

// UpsertClient replaces the client in place or prepends it when absent
func (s *Store) UpsertClient(tenantID uuid.UUID, client crm.Client) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Clients = upsertByID[crm.Client](snap.Clients, client)
	})
}

// RemoveClient drops a client from the snapshot
func (s *Store) RemoveClient(tenantID, clientID uuid.UUID) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Clients = removeByID[crm.Client](snap.Clients, clientID)
	})
}

// UpsertLead replaces the lead in place or prepends it when absent
func (s *Store) UpsertLead(tenantID uuid.UUID, lead crm.Lead) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Leads = upsertByID[crm.Lead](snap.Leads, lead)
	})
}

// RemoveLead drops a lead from the snapshot
func (s *Store) RemoveLead(tenantID, leadID uuid.UUID) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Leads = removeByID[crm.Lead](snap.Leads, leadID)
	})
}

// PrependRetainerChange records a detected retainer change, newest first
func (s *Store) PrependRetainerChange(tenantID uuid.UUID, change crm.RetainerChange) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.RetainerChanges = append([]crm.RetainerChange{change}, snap.RetainerChanges...)
	})
}

// UpsertDeal replaces the deal in place or prepends it when absent
func (s *Store) UpsertDeal(tenantID uuid.UUID, deal finance.Deal) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Deals = upsertByID[finance.Deal](snap.Deals, deal)
	})
}

// RemoveDeal drops a deal from the snapshot
func (s *Store) RemoveDeal(tenantID, dealID uuid.UUID) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Deals = removeByID[finance.Deal](snap.Deals, dealID)
	})
}

// UpsertExpense replaces the expense in place or prepends it when absent
func (s *Store) UpsertExpense(tenantID uuid.UUID, expense finance.Expense) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Expenses = upsertByID[finance.Expense](snap.Expenses, expense)
	})
}

// RemoveExpense drops an expense from the snapshot
func (s *Store) RemoveExpense(tenantID, expenseID uuid.UUID) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Expenses = removeByID[finance.Expense](snap.Expenses, expenseID)
	})
}

// PrependExpenses adds a generated batch to the front of the list
func (s *Store) PrependExpenses(tenantID uuid.UUID, expenses []finance.Expense) {
	if len(expenses) == 0 {
		return
	}
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Expenses = append(copySlice(expenses), snap.Expenses...)
	})
}

// UpsertPayment replaces the payment in place or prepends it when absent
func (s *Store) UpsertPayment(tenantID uuid.UUID, payment finance.Payment) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Payments = upsertByID[finance.Payment](snap.Payments, payment)
	})
}

// RemovePayment drops a payment from the snapshot
func (s *Store) RemovePayment(tenantID, paymentID uuid.UUID) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Payments = removeByID[finance.Payment](snap.Payments, paymentID)
	})
}

// PrependPayments adds a generated batch to the front of the list
func (s *Store) PrependPayments(tenantID uuid.UUID, payments []finance.Payment) {
	if len(payments) == 0 {
		return
	}
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Payments = append(copySlice(payments), snap.Payments...)
	})
}

// UpsertNote replaces the note in place or prepends it when absent
func (s *Store) UpsertNote(tenantID uuid.UUID, note intelligence.Note) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Notes = upsertByID[intelligence.Note](snap.Notes, note)
	})
}

// RemoveNote drops a note from the snapshot
func (s *Store) RemoveNote(tenantID, noteID uuid.UUID) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Notes = removeByID[intelligence.Note](snap.Notes, noteID)
	})
}

// PrependTranscript records a new call transcript, newest first
func (s *Store) PrependTranscript(tenantID uuid.UUID, transcript intelligence.CallTranscript) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Transcripts = upsertByID[intelligence.CallTranscript](snap.Transcripts, transcript)
	})
}

// PrependRecommendation records a new AI recommendation, newest first
func (s *Store) PrependRecommendation(tenantID uuid.UUID, rec intelligence.AIRecommendation) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Recommendations = upsertByID[intelligence.AIRecommendation](snap.Recommendations, rec)
	})
}

// UpsertMessage replaces the message in place or prepends it when absent
func (s *Store) UpsertMessage(tenantID uuid.UUID, msg intelligence.WhatsAppMessage) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Messages = upsertByID[intelligence.WhatsAppMessage](snap.Messages, msg)
	})
}

// PrependStrategyPlan records a new strategy plan, newest first
func (s *Store) PrependStrategyPlan(tenantID uuid.UUID, plan intelligence.StrategyPlan) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.StrategyPlans = upsertByID[intelligence.StrategyPlan](snap.StrategyPlans, plan)
	})
}

// PrependCompetitorReport records a new competitor report, newest first
func (s *Store) PrependCompetitorReport(tenantID uuid.UUID, report intelligence.CompetitorReport) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.CompetitorReports = upsertByID[intelligence.CompetitorReport](snap.CompetitorReports, report)
	})
}

// InsertLeadIfAbsent prepends the lead only when its id is unknown.
// Realtime inserts use it so a change the local process already applied
// comes back from the channel as a no-op.
func (s *Store) InsertLeadIfAbsent(tenantID uuid.UUID, lead crm.Lead) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Leads = insertIfAbsent[crm.Lead](snap.Leads, lead)
	})
}

// ReplaceLeadIfPresent swaps the lead in place; an unknown id is ignored
func (s *Store) ReplaceLeadIfPresent(tenantID uuid.UUID, lead crm.Lead) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Leads = replaceIfPresent[crm.Lead](snap.Leads, lead)
	})
}

// InsertSignalIfAbsent prepends the signal only when its id is unknown
func (s *Store) InsertSignalIfAbsent(tenantID uuid.UUID, signal intelligence.PersonalitySignal) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Signals = insertIfAbsent[intelligence.PersonalitySignal](snap.Signals, signal)
	})
}

// ReplaceSignalIfPresent swaps the signal in place; an unknown id is ignored
func (s *Store) ReplaceSignalIfPresent(tenantID uuid.UUID, signal intelligence.PersonalitySignal) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Signals = replaceIfPresent[intelligence.PersonalitySignal](snap.Signals, signal)
	})
}

// UpsertSignal replaces the signal in place or prepends it when absent.
// Realtime inserts and the post-conversion re-parent both land here, so
// a signal that arrives twice stays a single entry.
func (s *Store) UpsertSignal(tenantID uuid.UUID, signal intelligence.PersonalitySignal) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Signals = upsertByID[intelligence.PersonalitySignal](snap.Signals, signal)
	})
}

// SetSettings replaces the cached settings document
func (s *Store) SetSettings(tenantID uuid.UUID, doc *settings.TenantSettings) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Settings = doc
	})
}

// PrependActivity pushes an entry onto the local activity ring. The ring
// is truncated to audit.LocalLogCapacity; the remote table keeps the
// full history.
func (s *Store) PrependActivity(tenantID uuid.UUID, entry audit.ActivityEntry) {
	s.Apply(tenantID, func(snap *Snapshot) {
		snap.Activity = append([]audit.ActivityEntry{entry}, snap.Activity...)
		if len(snap.Activity) > audit.LocalLogCapacity {
			snap.Activity = snap.Activity[:audit.LocalLogCapacity]
		}
	})
}

// identifiable is satisfied by pointers to any entity embedding BaseEntity
type identifiable interface {
	GetID() uuid.UUID
}

// upsertByID replaces the matching element in place, or prepends the item
// when no element carries its id
func upsertByID[T any, PT interface {
	*T
	identifiable
}](list []T, item T) []T {
	id := PT(&item).GetID()
	for i := range list {
		if PT(&list[i]).GetID() == id {
			list[i] = item
			return list
		}
	}
	return append([]T{item}, list...)
}

// insertIfAbsent prepends the item unless its id is already present
func insertIfAbsent[T any, PT interface {
	*T
	identifiable
}](list []T, item T) []T {
	id := PT(&item).GetID()
	for i := range list {
		if PT(&list[i]).GetID() == id {
			return list
		}
	}
	return append([]T{item}, list...)
}

// replaceIfPresent swaps the matching element in place; unknown ids are ignored
func replaceIfPresent[T any, PT interface {
	*T
	identifiable
}](list []T, item T) []T {
	id := PT(&item).GetID()
	for i := range list {
		if PT(&list[i]).GetID() == id {
			list[i] = item
			return list
		}
	}
	return list
}

// removeByID drops the element with the given id, preserving order
func removeByID[T any, PT interface {
	*T
	identifiable
}](list []T, id uuid.UUID) []T {
	for i := range list {
		if PT(&list[i]).GetID() == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func copySlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
