package crm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	retainer := decimal.NewFromInt(5000)
	resp, err := env.clientSvc.Create(ctx, env.tenantID, CreateClientRequest{
		Name:            "Acme Media",
		Email:           "billing@acme.example",
		MonthlyRetainer: &retainer,
		ServiceKeys:     []string{"ppc", "seo"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Media", resp.Name)
	assert.Equal(t, "פעיל", resp.Status)
	assert.True(t, resp.MonthlyRetainer.Equal(retainer))
	assert.True(t, env.clients.has(resp.ID))

	snap := env.store.Snapshot(env.tenantID)
	require.Len(t, snap.Clients, 1)
	assert.Equal(t, resp.ID, snap.Clients[0].ID)

	// one activity entry, visible immediately in the local ring
	require.Len(t, snap.Activity, 1)
	assert.Equal(t, audit.ActionCreated, snap.Activity[0].ActionType)
	assert.Equal(t, "client", snap.Activity[0].EntityType)
}

func TestClientService_CreateInvalidName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.clientSvc.Create(context.Background(), env.tenantID, CreateClientRequest{Name: ""})
	require.Error(t, err)

	snap := env.store.Snapshot(env.tenantID)
	assert.Empty(t, snap.Clients)
	assert.Empty(t, snap.Activity)
}

func TestClientService_CreateSaveFailureLeavesCacheUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.clients.saveErr = errors.New("connection reset")

	_, err := env.clientSvc.Create(context.Background(), env.tenantID, CreateClientRequest{Name: "Acme"})
	require.Error(t, err)

	snap := env.store.Snapshot(env.tenantID)
	assert.Empty(t, snap.Clients)
	assert.Empty(t, snap.Activity)
}

func TestClientService_UpdateRetainerChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	retainer := decimal.NewFromInt(5000)
	created, err := env.clientSvc.Create(ctx, env.tenantID, CreateClientRequest{
		Name:            "Acme",
		MonthlyRetainer: &retainer,
	})
	require.NoError(t, err)

	newRetainer := decimal.NewFromInt(6000)
	_, err = env.clientSvc.Update(ctx, env.tenantID, created.ID, UpdateClientRequest{
		MonthlyRetainer: &newRetainer,
	})
	require.NoError(t, err)

	// exactly one retainer change, carrying both old and new values
	snap := env.store.Snapshot(env.tenantID)
	require.Len(t, snap.RetainerChanges, 1)
	change := snap.RetainerChanges[0]
	assert.Equal(t, created.ID, change.ClientID)
	assert.True(t, change.OldRetainer.Equal(decimal.NewFromInt(5000)))
	assert.True(t, change.NewRetainer.Equal(decimal.NewFromInt(6000)))

	// remote persistence rides the task queue
	require.Eventually(t, func() bool {
		return env.retainer.count() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClientService_UpdateWithoutRetainerChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	retainer := decimal.NewFromInt(5000)
	created, err := env.clientSvc.Create(ctx, env.tenantID, CreateClientRequest{
		Name:            "Acme",
		MonthlyRetainer: &retainer,
	})
	require.NoError(t, err)

	name := "Acme Rebranded"
	sameRetainer := decimal.NewFromInt(5000)
	_, err = env.clientSvc.Update(ctx, env.tenantID, created.ID, UpdateClientRequest{
		Name:            &name,
		MonthlyRetainer: &sameRetainer,
	})
	require.NoError(t, err)

	snap := env.store.Snapshot(env.tenantID)
	assert.Empty(t, snap.RetainerChanges)
	assert.Equal(t, 0, env.retainer.count())
}

func TestClientService_UpdateSaveFailureLeavesCacheUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clientSvc.Create(ctx, env.tenantID, CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)

	env.clients.saveErr = errors.New("timeout")
	name := "Renamed"
	_, err = env.clientSvc.Update(ctx, env.tenantID, created.ID, UpdateClientRequest{Name: &name})
	require.Error(t, err)

	snap := env.store.Snapshot(env.tenantID)
	require.Len(t, snap.Clients, 1)
	assert.Equal(t, "Acme", snap.Clients[0].Name)
}

func TestClientService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clientSvc.Create(ctx, env.tenantID, CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, env.clientSvc.Delete(ctx, env.tenantID, created.ID))

	assert.False(t, env.clients.has(created.ID))
	assert.Equal(t, 1, env.deals.deleteCount())
	assert.Equal(t, 1, env.expenses.deleteCount())
	assert.Equal(t, 1, env.payments.deleteCount())
	assert.Contains(t, env.retainer.deletedClients, created.ID)

	snap := env.store.Snapshot(env.tenantID)
	assert.Empty(t, snap.Clients)
}

func TestClientService_DeleteChildFailureKeepsClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clientSvc.Create(ctx, env.tenantID, CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)

	env.expenses.err = errors.New("deadlock")
	err = env.clientSvc.Delete(ctx, env.tenantID, created.ID)
	require.Error(t, err)

	// parent survives and the snapshot is untouched
	assert.True(t, env.clients.has(created.ID))
	snap := env.store.Snapshot(env.tenantID)
	require.Len(t, snap.Clients, 1)
}

func TestClientService_DeleteParentFailureAfterChildren(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.clientSvc.Create(ctx, env.tenantID, CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)

	env.clients.deleteErr = errors.New("timeout")
	err = env.clientSvc.Delete(ctx, env.tenantID, created.ID)
	require.Error(t, err)

	// children are gone but the client row and its cache entry remain
	assert.Equal(t, 1, env.deals.deleteCount())
	assert.True(t, env.clients.has(created.ID))
	snap := env.store.Snapshot(env.tenantID)
	require.Len(t, snap.Clients, 1)
}

func TestClientService_ListFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.clientSvc.Create(ctx, env.tenantID, CreateClientRequest{Name: "Active Co"})
	require.NoError(t, err)
	frozen, err := env.clientSvc.Create(ctx, env.tenantID, CreateClientRequest{Name: "Frozen Co", Status: "מוקפא"})
	require.NoError(t, err)

	// legacy alias resolves to the canonical status
	result, err := env.clientSvc.List(ctx, env.tenantID, ClientListFilter{Status: "Frozen"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, frozen.ID, result.Items[0].ID)
}

func TestDetectRetainerChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	retainer := decimal.NewFromInt(5000)
	cost := decimal.NewFromInt(1000)
	created, err := env.clientSvc.Create(ctx, env.tenantID, CreateClientRequest{
		Name:                "Acme",
		MonthlyRetainer:     &retainer,
		SupplierCostMonthly: &cost,
	})
	require.NoError(t, err)

	before, err := env.clients.FindByIDForTenant(ctx, env.tenantID, created.ID)
	require.NoError(t, err)

	t.Run("no change", func(t *testing.T) {
		after := *before
		require.NoError(t, after.Rename("Other Name"))
		assert.Nil(t, DetectRetainerChange(before, &after))
	})

	t.Run("supplier cost only", func(t *testing.T) {
		after := *before
		require.NoError(t, after.SetRetainer(before.MonthlyRetainer, decimal.NewFromInt(1500)))
		change := DetectRetainerChange(before, &after)
		require.NotNil(t, change)
		assert.True(t, change.OldSupplierCost.Equal(decimal.NewFromInt(1000)))
		assert.True(t, change.NewSupplierCost.Equal(decimal.NewFromInt(1500)))
		assert.True(t, change.OldRetainer.Equal(change.NewRetainer))
	})

	t.Run("equal value different scale", func(t *testing.T) {
		after := *before
		require.NoError(t, after.SetRetainer(decimal.NewFromFloat(5000.00), cost))
		assert.Nil(t, DetectRetainerChange(before, &after))
	})
}
