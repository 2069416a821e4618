package crm

import (
	"context"
	"testing"

	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadService_Create(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.leadSvc.Create(context.Background(), env.tenantID, CreateLeadRequest{
		Name:   "Cold Call",
		Source: "webform",
	})
	require.NoError(t, err)

	assert.Equal(t, "חדש", resp.Status)
	assert.Equal(t, "webform", resp.Source)

	snap := env.store.Snapshot(env.tenantID)
	require.Len(t, snap.Leads, 1)
	require.Len(t, snap.Activity, 1)
	assert.Equal(t, audit.ActionCreated, snap.Activity[0].ActionType)
	assert.Equal(t, "lead", snap.Activity[0].EntityType)
}

func TestLeadService_UpdateStatusAlias(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.leadSvc.Create(ctx, env.tenantID, CreateLeadRequest{Name: "Prospect"})
	require.NoError(t, err)

	// legacy English alias canonicalizes on write
	status := "Contacted"
	resp, err := env.leadSvc.Update(ctx, env.tenantID, created.ID, UpdateLeadRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, string(crm.LeadStatusInProgress), resp.Status)
}

func TestLeadService_UpdateRefusesWonStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.leadSvc.Create(ctx, env.tenantID, CreateLeadRequest{Name: "Prospect"})
	require.NoError(t, err)

	status := string(crm.LeadStatusWon)
	_, err = env.leadSvc.Update(ctx, env.tenantID, created.ID, UpdateLeadRequest{Status: &status})
	require.Error(t, err)

	snap := env.store.Snapshot(env.tenantID)
	require.Len(t, snap.Leads, 1)
	assert.Equal(t, crm.LeadStatusNew, snap.Leads[0].Status)
}

func TestLeadService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.leadSvc.Create(ctx, env.tenantID, CreateLeadRequest{Name: "Prospect"})
	require.NoError(t, err)

	require.NoError(t, env.leadSvc.Delete(ctx, env.tenantID, created.ID))

	snap := env.store.Snapshot(env.tenantID)
	assert.Empty(t, snap.Leads)
	assert.Nil(t, env.leads.get(created.ID))
}
