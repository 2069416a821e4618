package finance

import (
	"context"
	"sync"
	"testing"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/agencycrm/backend/internal/infrastructure/event"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClientRepo struct {
	mu      sync.Mutex
	clients []*crm.Client
}

func (r *fakeClientRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.TenantID == tenantID && c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
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
	copied := *client
	for i, c := range r.clients {
		if c.ID == client.ID {
			r.clients[i] = &copied
			return nil
		}
	}
	r.clients = append(r.clients, &copied)
	return nil
}

func (r *fakeClientRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return nil
}

func (r *fakeClientRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.clients)), nil
}

type fakeExpenseRepo struct {
	mu       sync.Mutex
	expenses []*finance.Expense
	saveErr  error
}

func (r *fakeExpenseRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.expenses {
		if e.TenantID == tenantID && e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeExpenseRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Expense
	for _, e := range r.expenses {
		if e.TenantID == tenantID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Expense
	for _, e := range r.expenses {
		if e.TenantID == tenantID && e.ClientID == clientID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) FindByMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]finance.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Expense
	for _, e := range r.expenses {
		if e.TenantID == tenantID && e.Month == month {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) FindRecurring(ctx context.Context, tenantID uuid.UUID) ([]finance.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Expense
	for _, e := range r.expenses {
		if e.TenantID == tenantID && e.IsRecurring {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) Save(ctx context.Context, expense *finance.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	for i, e := range r.expenses {
		if e.ID == expense.ID {
			copied := *expense
			r.expenses[i] = &copied
			return nil
		}
	}
	copied := *expense
	r.expenses = append(r.expenses, &copied)
	return nil
}

func (r *fakeExpenseRepo) SaveBatch(ctx context.Context, expenses []*finance.Expense) error {
	for _, e := range expenses {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeExpenseRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.expenses {
		if e.TenantID == tenantID && e.ID == id {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeExpenseRepo) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return nil
}

func (r *fakeExpenseRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.expenses)
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*finance.Payment
}

func (r *fakePaymentRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.TenantID == tenantID && p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePaymentRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Payment
	for _, p := range r.payments {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Payment
	for _, p := range r.payments {
		if p.TenantID == tenantID && p.ClientID == clientID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FindByMonth(ctx context.Context, tenantID uuid.UUID, month string) ([]finance.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Payment
	for _, p := range r.payments {
		if p.TenantID == tenantID && p.Month == month {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) Save(ctx context.Context, payment *finance.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.payments {
		if p.ID == payment.ID {
			copied := *payment
			r.payments[i] = &copied
			return nil
		}
	}
	copied := *payment
	r.payments = append(r.payments, &copied)
	return nil
}

func (r *fakePaymentRepo) SaveBatch(ctx context.Context, payments []*finance.Payment) error {
	for _, p := range payments {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakePaymentRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.payments {
		if p.TenantID == tenantID && p.ID == id {
			r.payments = append(r.payments[:i], r.payments[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakePaymentRepo) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return nil
}

func (r *fakePaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

type fakeDealRepo struct {
	mu    sync.Mutex
	deals []*finance.Deal
}

func (r *fakeDealRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deals {
		if d.TenantID == tenantID && d.ID == id {
			copied := *d
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeDealRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Deal
	for _, d := range r.deals {
		if d.TenantID == tenantID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDealRepo) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]finance.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Deal
	for _, d := range r.deals {
		if d.TenantID == tenantID && d.ClientID == clientID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDealRepo) Save(ctx context.Context, deal *finance.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.deals {
		if d.ID == deal.ID {
			copied := *deal
			r.deals[i] = &copied
			return nil
		}
	}
	copied := *deal
	r.deals = append(r.deals, &copied)
	return nil
}

func (r *fakeDealRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.deals {
		if d.TenantID == tenantID && d.ID == id {
			r.deals = append(r.deals[:i], r.deals[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeDealRepo) DeleteByClient(ctx context.Context, tenantID, clientID uuid.UUID) error {
	return nil
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

// testEnv wires the finance services against in-memory fakes
type testEnv struct {
	tenantID uuid.UUID
	clients  *fakeClientRepo
	deals    *fakeDealRepo
	expenses *fakeExpenseRepo
	payments *fakePaymentRepo
	store    *cache.Store

	dealSvc       *DealService
	expenseSvc    *ExpenseService
	paymentSvc    *PaymentService
	generationSvc *GenerationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tenantID: uuid.New(),
		clients:  &fakeClientRepo{},
		deals:    &fakeDealRepo{},
		expenses: &fakeExpenseRepo{},
		payments: &fakePaymentRepo{},
		store:    cache.NewStore(),
	}

	config := event.DefaultTaskQueueConfig()
	config.MaxRetries = 0
	queue := event.NewTaskQueue(config, zap.NewNop())
	require.NoError(t, queue.Start(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, queue.Stop(context.Background()))
	})

	activity := appaudit.NewActivityLogger(&fakeActivityRepo{}, env.store, queue, zap.NewNop())

	env.dealSvc = NewDealService(env.deals, env.store, activity, nil)
	env.expenseSvc = NewExpenseService(env.expenses, env.store, activity, nil)
	env.paymentSvc = NewPaymentService(env.payments, env.store, activity, nil)
	env.generationSvc = NewGenerationService(env.clients, env.expenses, env.payments, env.store, activity, nil)

	env.store.Replace(env.tenantID, cache.Snapshot{})

	return env
}

func (env *testEnv) seedClient(t *testing.T, name string, retainer int64) *crm.Client {
	t.Helper()
	client, err := crm.NewClient(env.tenantID, name)
	require.NoError(t, err)
	require.NoError(t, client.SetRetainer(decimal.NewFromInt(retainer), decimal.Zero))
	require.NoError(t, env.clients.Save(context.Background(), client))
	return client
}
