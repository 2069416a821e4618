package realtime

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestListener(t *testing.T) (*Listener, *cache.Store) {
	t.Helper()
	store := cache.NewStore()
	return NewListener(nil, store, WithListenerLogger(zap.NewNop())), store
}

func leadEventPayload(t *testing.T, eventType EventType, lead *crm.Lead) string {
	t.Helper()
	row := leadRowFromDomain(lead)
	newRow, err := json.Marshal(row)
	require.NoError(t, err)
	data, err := json.Marshal(ChangeEvent{EventType: eventType, New: newRow})
	require.NoError(t, err)
	return string(data)
}

func signalEventPayload(t *testing.T, eventType EventType, signal *intelligence.PersonalitySignal) string {
	t.Helper()
	row := signalRowFromDomain(signal)
	newRow, err := json.Marshal(row)
	require.NoError(t, err)
	data, err := json.Marshal(ChangeEvent{EventType: eventType, New: newRow})
	require.NoError(t, err)
	return string(data)
}

func TestListener_LeadInsert(t *testing.T) {
	listener, store := newTestListener(t)
	tenantID := uuid.New()

	lead, err := crm.NewLead(tenantID, "Dana", "facebook")
	require.NoError(t, err)

	listener.handleMessage(ChannelLeads, leadEventPayload(t, EventInsert, lead))

	snap := store.Snapshot(tenantID)
	require.Len(t, snap.Leads, 1)
	assert.Equal(t, lead.ID, snap.Leads[0].ID)
	assert.Equal(t, crm.LeadStatusNew, snap.Leads[0].Status)
}

func TestListener_LeadInsertDuplicateIsNoOp(t *testing.T) {
	listener, store := newTestListener(t)
	tenantID := uuid.New()

	lead, err := crm.NewLead(tenantID, "Dana", "facebook")
	require.NoError(t, err)

	payload := leadEventPayload(t, EventInsert, lead)
	listener.handleMessage(ChannelLeads, payload)
	listener.handleMessage(ChannelLeads, payload)

	assert.Len(t, store.Snapshot(tenantID).Leads, 1)
}

func TestListener_LeadUpdateReplacesInPlace(t *testing.T) {
	listener, store := newTestListener(t)
	tenantID := uuid.New()

	lead, err := crm.NewLead(tenantID, "Dana", "facebook")
	require.NoError(t, err)
	listener.handleMessage(ChannelLeads, leadEventPayload(t, EventInsert, lead))

	require.NoError(t, lead.SetStatus(crm.LeadStatusInProgress))
	listener.handleMessage(ChannelLeads, leadEventPayload(t, EventUpdate, lead))

	snap := store.Snapshot(tenantID)
	require.Len(t, snap.Leads, 1)
	assert.Equal(t, crm.LeadStatusInProgress, snap.Leads[0].Status)
}

func TestListener_LeadUpdateUnknownIsIgnored(t *testing.T) {
	listener, store := newTestListener(t)
	tenantID := uuid.New()

	lead, err := crm.NewLead(tenantID, "Dana", "facebook")
	require.NoError(t, err)

	listener.handleMessage(ChannelLeads, leadEventPayload(t, EventUpdate, lead))
	assert.Empty(t, store.Snapshot(tenantID).Leads)
}

func TestListener_LeadLegacyStatusCanonicalized(t *testing.T) {
	listener, store := newTestListener(t)
	tenantID := uuid.New()
	leadID := uuid.New()

	payload := fmt.Sprintf(`{"event_type":"INSERT","new":{"id":%q,"tenant_id":%q,"name":"Dana","status":"Contacted","quoted_value":"0"}}`,
		leadID, tenantID)
	listener.handleMessage(ChannelLeads, payload)

	snap := store.Snapshot(tenantID)
	require.Len(t, snap.Leads, 1)
	assert.Equal(t, crm.LeadStatusInProgress, snap.Leads[0].Status)
}

func TestListener_DeleteIsIgnored(t *testing.T) {
	listener, store := newTestListener(t)
	tenantID := uuid.New()

	lead, err := crm.NewLead(tenantID, "Dana", "facebook")
	require.NoError(t, err)
	listener.handleMessage(ChannelLeads, leadEventPayload(t, EventInsert, lead))
	listener.handleMessage(ChannelLeads, leadEventPayload(t, EventDelete, lead))

	assert.Len(t, store.Snapshot(tenantID).Leads, 1)
}

func TestListener_MalformedPayloadIsSkipped(t *testing.T) {
	listener, store := newTestListener(t)

	assert.NotPanics(t, func() {
		listener.handleMessage(ChannelLeads, "not json")
		listener.handleMessage(ChannelLeads, `{"event_type":"INSERT","new":"not a row"}`)
		listener.handleMessage("unexpected", "{}")
	})
	assert.Empty(t, store.TenantIDs())
}

func TestListener_SignalInsertAndUpdate(t *testing.T) {
	listener, store := newTestListener(t)
	tenantID := uuid.New()
	leadID := uuid.New()

	signal, err := intelligence.NewPersonalitySignal(tenantID,
		intelligence.LeadParent(leadID), "direct", "short replies", decimal.NewFromFloat(0.8))
	require.NoError(t, err)

	payload := signalEventPayload(t, EventInsert, signal)
	listener.handleMessage(ChannelSignals, payload)
	listener.handleMessage(ChannelSignals, payload)

	snap := store.Snapshot(tenantID)
	require.Len(t, snap.Signals, 1)
	assert.Equal(t, "direct", snap.Signals[0].Trait)

	// Conversion re-parent arrives as an UPDATE carrying both links
	clientID := uuid.New()
	require.NoError(t, signal.AttachClient(clientID))
	listener.handleMessage(ChannelSignals, signalEventPayload(t, EventUpdate, signal))

	snap = store.Snapshot(tenantID)
	require.Len(t, snap.Signals, 1)
	require.NotNil(t, snap.Signals[0].Parent.ClientID)
	assert.Equal(t, clientID, *snap.Signals[0].Parent.ClientID)
	require.NotNil(t, snap.Signals[0].Parent.LeadID)
	assert.Equal(t, leadID, *snap.Signals[0].Parent.LeadID)
}
