package snapshot

import (
	"context"
	"sync"

	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// The snapshot service only bulk-reads and bulk-writes, so the fakes
// implement the full repository interfaces but stub the lookups the
// service never touches.

type fakeClientRepo struct {
	mu      sync.Mutex
	rows    []crm.Client
	findErr error
}

func (f *fakeClientRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeClientRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []crm.Client
	for _, row := range f.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeClientRepo) FindByStatus(ctx context.Context, tenantID uuid.UUID, status crm.ClientStatus, filter shared.Filter) ([]crm.Client, error) {
	return nil, nil
}

func (f *fakeClientRepo) FindActive(ctx context.Context, tenantID uuid.UUID) ([]crm.Client, error) {
	return nil, nil
}

func (f *fakeClientRepo) Save(ctx context.Context, client *crm.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == client.ID {
			f.rows[i] = *client
			return nil
		}
	}
	f.rows = append(f.rows, *client)
	return nil
}

func (f *fakeClientRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

func (f *fakeClientRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	return 0, nil
}

type fakeLeadRepo struct {
	mu   sync.Mutex
	rows []crm.Lead
}

func (f *fakeLeadRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Lead, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeLeadRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []crm.Lead
	for _, row := range f.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeLeadRepo) FindByStatus(ctx context.Context, tenantID uuid.UUID, status crm.LeadStatus, filter shared.Filter) ([]crm.Lead, error) {
	return nil, nil
}

func (f *fakeLeadRepo) Save(ctx context.Context, lead *crm.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == lead.ID {
			f.rows[i] = *lead
			return nil
		}
	}
	f.rows = append(f.rows, *lead)
	return nil
}

func (f *fakeLeadRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

func (f *fakeLeadRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	return 0, nil
}

type fakeRetainerRepo struct {
	mu   sync.Mutex
	rows []crm.RetainerChange
}

func (f *fakeRetainerRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]crm.RetainerChange, error) {
	return nil, nil
}

func (f *fakeRetainerRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]crm.RetainerChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []crm.RetainerChange
	for _, row := range f.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRetainerRepo) Save(ctx context.Context, change *crm.RetainerChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *change)
	return nil
}

func (f *fakeRetainerRepo) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return nil
}

type fakeDealRepo struct {
	mu   sync.Mutex
	rows []finance.Deal
}

func (f *fakeDealRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Deal, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeDealRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []finance.Deal
	for _, row := range f.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeDealRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Deal, error) {
	return nil, nil
}

func (f *fakeDealRepo) Save(ctx context.Context, deal *finance.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *deal)
	return nil
}

func (f *fakeDealRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

func (f *fakeDealRepo) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return nil
}

type fakeExpenseRepo struct {
	mu   sync.Mutex
	rows []finance.Expense
}

func (f *fakeExpenseRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeExpenseRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []finance.Expense
	for _, row := range f.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeExpenseRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Expense, error) {
	return nil, nil
}

func (f *fakeExpenseRepo) FindByMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]finance.Expense, error) {
	return nil, nil
}

func (f *fakeExpenseRepo) FindRecurring(ctx context.Context, tenantID uuid.UUID) ([]finance.Expense, error) {
	return nil, nil
}

func (f *fakeExpenseRepo) Save(ctx context.Context, expense *finance.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *expense)
	return nil
}

func (f *fakeExpenseRepo) SaveBatch(ctx context.Context, expenses []*finance.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, expense := range expenses {
		f.rows = append(f.rows, *expense)
	}
	return nil
}

func (f *fakeExpenseRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

func (f *fakeExpenseRepo) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return nil
}

type fakePaymentRepo struct {
	mu   sync.Mutex
	rows []finance.Payment
}

func (f *fakePaymentRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	return nil, shared.ErrNotFound
}

func (f *fakePaymentRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []finance.Payment
	for _, row := range f.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Payment, error) {
	return nil, nil
}

func (f *fakePaymentRepo) FindByMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]finance.Payment, error) {
	return nil, nil
}

func (f *fakePaymentRepo) Save(ctx context.Context, payment *finance.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *payment)
	return nil
}

func (f *fakePaymentRepo) SaveBatch(ctx context.Context, payments []*finance.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range payments {
		f.rows = append(f.rows, *payment)
	}
	return nil
}

func (f *fakePaymentRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

func (f *fakePaymentRepo) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return nil
}

type fakeNoteRepo struct {
	mu   sync.Mutex
	rows []intelligence.Note
}

func (f *fakeNoteRepo) FindByParent(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef) ([]intelligence.Note, error) {
	return nil, nil
}

func (f *fakeNoteRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]intelligence.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []intelligence.Note
	for _, row := range f.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeNoteRepo) ExistsBySource(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef, sourceID uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeNoteRepo) Save(ctx context.Context, note *intelligence.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *note)
	return nil
}

func (f *fakeNoteRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

// memSatellite is a slice-backed SatelliteRepository for any record type
type memSatellite[T any] struct {
	mu     sync.Mutex
	rows   []T
	tenant func(*T) uuid.UUID
}

func (m *memSatellite[T]) FindByParent(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef) ([]T, error) {
	return nil, nil
}

func (m *memSatellite[T]) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []T
	for i := range m.rows {
		if m.tenant(&m.rows[i]) == tenantID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memSatellite[T]) Save(ctx context.Context, record *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *record)
	return nil
}

func (m *memSatellite[T]) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

type fakeSignalRepo struct {
	memSatellite[intelligence.PersonalitySignal]
}

func (f *fakeSignalRepo) FindByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]intelligence.PersonalitySignal, error) {
	return nil, nil
}

func (f *fakeSignalRepo) AttachClientToLeadSignals(ctx context.Context, tenantID, leadID, clientID uuid.UUID) ([]intelligence.PersonalitySignal, error) {
	return nil, nil
}

type fakeActivityRepo struct {
	mu   sync.Mutex
	rows []audit.ActivityEntry
}

func (f *fakeActivityRepo) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]audit.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []audit.ActivityEntry
	for _, row := range f.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeActivityRepo) Save(ctx context.Context, entry *audit.ActivityEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *entry)
	return nil
}
