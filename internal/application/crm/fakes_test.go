package crm

import (
	"context"
	"sync"
	"testing"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/agencycrm/backend/internal/infrastructure/event"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClientRepo struct {
	mu        sync.Mutex
	clients   map[uuid.UUID]*crm.Client
	saveErr   error
	deleteErr error
	deleted   []uuid.UUID
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[uuid.UUID]*crm.Client)}
}

func (r *fakeClientRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || c.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeClientRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.Client
	for _, c := range r.clients {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) FindByStatus(ctx context.Context, tenantID uuid.UUID, status crm.ClientStatus, filter shared.Filter) ([]crm.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.Client
	for _, c := range r.clients {
		if c.TenantID == tenantID && c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) FindActive(ctx context.Context, tenantID uuid.UUID) ([]crm.Client, error) {
	return r.FindByStatus(ctx, tenantID, crm.ClientStatusActive, shared.DefaultFilter())
}

func (r *fakeClientRepo) Save(ctx context.Context, client *crm.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := *client
	r.clients[client.ID] = &copied
	return nil
}

func (r *fakeClientRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.clients, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeClientRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.clients {
		if c.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *fakeClientRepo) has(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.clients[id]
	return ok
}

type fakeLeadRepo struct {
	mu      sync.Mutex
	leads   map[uuid.UUID]*crm.Lead
	saveErr error
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[uuid.UUID]*crm.Lead)}
}

func (r *fakeLeadRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok || l.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *fakeLeadRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.Lead
	for _, l := range r.leads {
		if l.TenantID == tenantID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) FindByStatus(ctx context.Context, tenantID uuid.UUID, status crm.LeadStatus, filter shared.Filter) ([]crm.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.Lead
	for _, l := range r.leads {
		if l.TenantID == tenantID && l.Status == status {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) Save(ctx context.Context, lead *crm.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	copied := *lead
	r.leads[lead.ID] = &copied
	return nil
}

func (r *fakeLeadRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.leads, id)
	return nil
}

func (r *fakeLeadRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.leads {
		if l.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *fakeLeadRepo) get(id uuid.UUID) *crm.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return nil
	}
	copied := *l
	return &copied
}

type fakeRetainerRepo struct {
	mu             sync.Mutex
	changes        []*crm.RetainerChange
	deletedClients []uuid.UUID
}

func (r *fakeRetainerRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]crm.RetainerChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.RetainerChange
	for _, c := range r.changes {
		if c.TenantID == tenantID && c.ClientID == clientID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeRetainerRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]crm.RetainerChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.RetainerChange
	for _, c := range r.changes {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeRetainerRepo) Save(ctx context.Context, change *crm.RetainerChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	return nil
}

func (r *fakeRetainerRepo) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletedClients = append(r.deletedClients, clientID)
	return nil
}

func (r *fakeRetainerRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

// byClientDeleter records cascading child deletes for the finance repos
type byClientDeleter struct {
	mu      sync.Mutex
	deleted []uuid.UUID
	err     error
}

func (d *byClientDeleter) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.deleted = append(d.deleted, clientID)
	return nil
}

func (d *byClientDeleter) deleteCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.deleted)
}

type fakeDealRepo struct{ byClientDeleter }

func (r *fakeDealRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Deal, error) {
	return nil, shared.ErrNotFound
}
func (r *fakeDealRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Deal, error) {
	return nil, nil
}
func (r *fakeDealRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Deal, error) {
	return nil, nil
}
func (r *fakeDealRepo) Save(ctx context.Context, deal *finance.Deal) error { return nil }
func (r *fakeDealRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

type fakeExpenseRepo struct{ byClientDeleter }

func (r *fakeExpenseRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	return nil, shared.ErrNotFound
}
func (r *fakeExpenseRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, error) {
	return nil, nil
}
func (r *fakeExpenseRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Expense, error) {
	return nil, nil
}
func (r *fakeExpenseRepo) FindByMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]finance.Expense, error) {
	return nil, nil
}
func (r *fakeExpenseRepo) FindRecurring(ctx context.Context, tenantID uuid.UUID) ([]finance.Expense, error) {
	return nil, nil
}
func (r *fakeExpenseRepo) Save(ctx context.Context, expense *finance.Expense) error { return nil }
func (r *fakeExpenseRepo) SaveBatch(ctx context.Context, expenses []*finance.Expense) error {
	return nil
}
func (r *fakeExpenseRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

type fakePaymentRepo struct{ byClientDeleter }

func (r *fakePaymentRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	return nil, shared.ErrNotFound
}
func (r *fakePaymentRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Payment, error) {
	return nil, nil
}
func (r *fakePaymentRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Payment, error) {
	return nil, nil
}
func (r *fakePaymentRepo) FindByMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]finance.Payment, error) {
	return nil, nil
}
func (r *fakePaymentRepo) Save(ctx context.Context, payment *finance.Payment) error { return nil }
func (r *fakePaymentRepo) SaveBatch(ctx context.Context, payments []*finance.Payment) error {
	return nil
}
func (r *fakePaymentRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

type fakeSignalRepo struct {
	mu        sync.Mutex
	signals   []*intelligence.PersonalitySignal
	attachErr error
}

func (r *fakeSignalRepo) FindByParent(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef) ([]intelligence.PersonalitySignal, error) {
	return nil, nil
}

func (r *fakeSignalRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]intelligence.PersonalitySignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []intelligence.PersonalitySignal
	for _, s := range r.signals {
		if s.TenantID == tenantID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSignalRepo) FindByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]intelligence.PersonalitySignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []intelligence.PersonalitySignal
	for _, s := range r.signals {
		if s.TenantID == tenantID && s.Parent.BelongsToLead(leadID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSignalRepo) Save(ctx context.Context, signal *intelligence.PersonalitySignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *signal
	r.signals = append(r.signals, &copied)
	return nil
}

func (r *fakeSignalRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

func (r *fakeSignalRepo) AttachClientToLeadSignals(ctx context.Context, tenantID, leadID, clientID uuid.UUID) ([]intelligence.PersonalitySignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attachErr != nil {
		return nil, r.attachErr
	}
	var out []intelligence.PersonalitySignal
	for _, s := range r.signals {
		if s.TenantID == tenantID && s.Parent.BelongsToLead(leadID) {
			s.Parent.ClientID = &clientID
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []*audit.ActivityEntry
}

func (r *fakeActivityRepo) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]audit.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.ActivityEntry
	for _, e := range r.entries {
		if e.TenantID == tenantID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) Save(ctx context.Context, entry *audit.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// testEnv wires the crm services against in-memory fakes
type testEnv struct {
	tenantID uuid.UUID
	clients  *fakeClientRepo
	leads    *fakeLeadRepo
	retainer *fakeRetainerRepo
	deals    *fakeDealRepo
	expenses *fakeExpenseRepo
	payments *fakePaymentRepo
	signals  *fakeSignalRepo
	store    *cache.Store
	queue    *event.TaskQueue

	clientSvc     *ClientService
	leadSvc       *LeadService
	conversionSvc *ConversionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tenantID: uuid.New(),
		clients:  newFakeClientRepo(),
		leads:    newFakeLeadRepo(),
		retainer: &fakeRetainerRepo{},
		deals:    &fakeDealRepo{},
		expenses: &fakeExpenseRepo{},
		payments: &fakePaymentRepo{},
		signals:  &fakeSignalRepo{},
		store:    cache.NewStore(),
	}

	config := event.DefaultTaskQueueConfig()
	config.MaxRetries = 0
	env.queue = event.NewTaskQueue(config, zap.NewNop())
	require.NoError(t, env.queue.Start(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, env.queue.Stop(context.Background()))
	})

	activity := appaudit.NewActivityLogger(&fakeActivityRepo{}, env.store, env.queue, zap.NewNop())

	env.clientSvc = NewClientService(
		env.clients, env.retainer, env.deals, env.expenses, env.payments,
		env.store, activity, env.queue,
	)
	env.leadSvc = NewLeadService(env.leads, env.store, activity)
	env.conversionSvc = NewConversionService(
		env.leads, env.clients, env.signals,
		env.store, activity, env.queue,
	)

	env.store.Replace(env.tenantID, cache.Snapshot{})

	return env
}
