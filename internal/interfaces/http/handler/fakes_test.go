package handler

import (
	"context"
	"sync"
	"time"

	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
)

type memClientRepo struct {
	mu   sync.Mutex
	rows []crm.Client
}

func (r *memClientRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*crm.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].TenantID == tenantID {
			c := r.rows[i]
			return &c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memClientRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]crm.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.Client
	for i := range r.rows {
		if r.rows[i].TenantID == tenantID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *memClientRepo) FindByStatus(_ context.Context, tenantID uuid.UUID, status crm.ClientStatus, _ shared.Filter) ([]crm.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []crm.Client
	for i := range r.rows {
		if r.rows[i].TenantID == tenantID && r.rows[i].Status == status {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *memClientRepo) FindActive(ctx context.Context, tenantID uuid.UUID) ([]crm.Client, error) {
	return r.FindByStatus(ctx, tenantID, crm.ClientStatusActive, shared.Filter{})
}

func (r *memClientRepo) Save(_ context.Context, client *crm.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == client.ID {
			r.rows[i] = *client
			return nil
		}
	}
	r.rows = append(r.rows, *client)
	return nil
}

func (r *memClientRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].TenantID == tenantID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memClientRepo) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.rows {
		if r.rows[i].TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

type stubRetainerRepo struct{}

func (stubRetainerRepo) FindByClient(context.Context, uuid.UUID, uuid.UUID) ([]crm.RetainerChange, error) {
	return nil, nil
}
func (stubRetainerRepo) FindAllForTenant(context.Context, uuid.UUID) ([]crm.RetainerChange, error) {
	return nil, nil
}
func (stubRetainerRepo) Save(context.Context, *crm.RetainerChange) error          { return nil }
func (stubRetainerRepo) DeleteByClient(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubDealRepo struct{}

func (stubDealRepo) FindByIDForTenant(context.Context, uuid.UUID, uuid.UUID) (*finance.Deal, error) {
	return nil, shared.ErrNotFound
}
func (stubDealRepo) FindAllForTenant(context.Context, uuid.UUID, shared.Filter) ([]finance.Deal, error) {
	return nil, nil
}
func (stubDealRepo) FindByClient(context.Context, uuid.UUID, uuid.UUID) ([]finance.Deal, error) {
	return nil, nil
}
func (stubDealRepo) Save(context.Context, *finance.Deal) error                  { return nil }
func (stubDealRepo) DeleteForTenant(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (stubDealRepo) DeleteByClient(context.Context, uuid.UUID, uuid.UUID) error  { return nil }

type stubExpenseRepo struct{}

func (stubExpenseRepo) FindByIDForTenant(context.Context, uuid.UUID, uuid.UUID) (*finance.Expense, error) {
	return nil, shared.ErrNotFound
}
func (stubExpenseRepo) FindAllForTenant(context.Context, uuid.UUID, shared.Filter) ([]finance.Expense, error) {
	return nil, nil
}
func (stubExpenseRepo) FindByClient(context.Context, uuid.UUID, uuid.UUID) ([]finance.Expense, error) {
	return nil, nil
}
func (stubExpenseRepo) FindByMonth(context.Context, uuid.UUID, string) ([]finance.Expense, error) {
	return nil, nil
}
func (stubExpenseRepo) FindRecurring(context.Context, uuid.UUID) ([]finance.Expense, error) {
	return nil, nil
}
func (stubExpenseRepo) Save(context.Context, *finance.Expense) error               { return nil }
func (stubExpenseRepo) SaveBatch(context.Context, []*finance.Expense) error        { return nil }
func (stubExpenseRepo) DeleteForTenant(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (stubExpenseRepo) DeleteByClient(context.Context, uuid.UUID, uuid.UUID) error  { return nil }

type stubPaymentRepo struct{}

func (stubPaymentRepo) FindByIDForTenant(context.Context, uuid.UUID, uuid.UUID) (*finance.Payment, error) {
	return nil, shared.ErrNotFound
}
func (stubPaymentRepo) FindAllForTenant(context.Context, uuid.UUID, shared.Filter) ([]finance.Payment, error) {
	return nil, nil
}
func (stubPaymentRepo) FindByClient(context.Context, uuid.UUID, uuid.UUID) ([]finance.Payment, error) {
	return nil, nil
}
func (stubPaymentRepo) FindByMonth(context.Context, uuid.UUID, string) ([]finance.Payment, error) {
	return nil, nil
}
func (stubPaymentRepo) Save(context.Context, *finance.Payment) error               { return nil }
func (stubPaymentRepo) SaveBatch(context.Context, []*finance.Payment) error        { return nil }
func (stubPaymentRepo) DeleteForTenant(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (stubPaymentRepo) DeleteByClient(context.Context, uuid.UUID, uuid.UUID) error  { return nil }

type memActivityRepo struct {
	mu   sync.Mutex
	rows []audit.ActivityEntry
}

func (r *memActivityRepo) FindRecent(_ context.Context, tenantID uuid.UUID, limit int) ([]audit.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.ActivityEntry
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].TenantID == tenantID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *memActivityRepo) Save(_ context.Context, entry *audit.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, *entry)
	return nil
}

// memBlobs is an in-memory BlobStorage
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte)}
}

func (b *memBlobs) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []storage.ObjectInfo
	for key, data := range b.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data)), LastModified: time.Now()})
		}
	}
	return out, nil
}

func (b *memBlobs) SignedURL(_ context.Context, key string) (string, time.Time, error) {
	return "https://blobs.test/" + key, time.Now().Add(15 * time.Minute), nil
}

func (b *memBlobs) Upload(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}
