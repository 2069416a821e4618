package intelligence

import (
	"context"
	"sync"
	"testing"
	"time"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/agencycrm/backend/internal/infrastructure/event"
	"github.com/agencycrm/backend/internal/infrastructure/realtime"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes []*intelligence.Note
}

func (r *fakeNoteRepo) FindByParent(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef) ([]intelligence.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []intelligence.Note
	for _, n := range r.notes {
		if n.TenantID == tenantID && sameParent(n.Parent, parent) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]intelligence.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []intelligence.Note
	for _, n := range r.notes {
		if n.TenantID == tenantID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNoteRepo) ExistsBySource(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef, sourceID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if n.TenantID == tenantID && n.SourceID != nil && *n.SourceID == sourceID && sameParent(n.Parent, parent) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNoteRepo) Save(ctx context.Context, note *intelligence.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *note
	r.notes = append(r.notes, &copied)
	return nil
}

func (r *fakeNoteRepo) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notes {
		if n.TenantID == tenantID && n.ID == id {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return nil
		}
	}
	return nil
}

func sameParent(a, b intelligence.ParentRef) bool {
	if b.ClientID != nil {
		return a.ClientID != nil && *a.ClientID == *b.ClientID
	}
	if b.LeadID != nil {
		return a.LeadID != nil && *a.LeadID == *b.LeadID
	}
	return false
}

type memSatellite[T any] struct {
	mu      sync.Mutex
	records []*T
	tenant  func(*T) uuid.UUID
	parent  func(*T) intelligence.ParentRef
	id      func(*T) uuid.UUID
}

func (r *memSatellite[T]) FindByParent(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []T
	for _, rec := range r.records {
		if r.tenant(rec) == tenantID && sameParent(r.parent(rec), parent) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memSatellite[T]) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []T
	for _, rec := range r.records {
		if r.tenant(rec) == tenantID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memSatellite[T]) Save(ctx context.Context, record *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	for i, rec := range r.records {
		if r.id(rec) == r.id(record) {
			r.records[i] = &copied
			return nil
		}
	}
	r.records = append(r.records, &copied)
	return nil
}

func (r *memSatellite[T]) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.records {
		if r.tenant(rec) == tenantID && r.id(rec) == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeSignalRepo struct {
	memSatellite[intelligence.PersonalitySignal]
}

func newFakeSignalRepo() *fakeSignalRepo {
	r := &fakeSignalRepo{}
	r.tenant = func(s *intelligence.PersonalitySignal) uuid.UUID { return s.TenantID }
	r.parent = func(s *intelligence.PersonalitySignal) intelligence.ParentRef { return s.Parent }
	r.id = func(s *intelligence.PersonalitySignal) uuid.UUID { return s.ID }
	return r
}

func (r *fakeSignalRepo) FindByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]intelligence.PersonalitySignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []intelligence.PersonalitySignal
	for _, s := range r.records {
		if s.TenantID == tenantID && s.Parent.BelongsToLead(leadID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSignalRepo) AttachClientToLeadSignals(ctx context.Context, tenantID, leadID, clientID uuid.UUID) ([]intelligence.PersonalitySignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []intelligence.PersonalitySignal
	for _, s := range r.records {
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
	return nil, nil
}

func (r *fakeActivityRepo) Save(ctx context.Context, entry *audit.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []realtime.EventType
}

func (p *recordingPublisher) PublishSignalChange(ctx context.Context, eventType realtime.EventType, signal *intelligence.PersonalitySignal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, eventType)
	return nil
}

type testEnv struct {
	tenantID  uuid.UUID
	notes     *fakeNoteRepo
	signals   *fakeSignalRepo
	publisher *recordingPublisher
	store     *cache.Store

	noteSvc    *NoteService
	recordsSvc *RecordsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tenantID:  uuid.New(),
		notes:     &fakeNoteRepo{},
		signals:   newFakeSignalRepo(),
		publisher: &recordingPublisher{},
		store:     cache.NewStore(),
	}

	config := event.DefaultTaskQueueConfig()
	config.MaxRetries = 0
	queue := event.NewTaskQueue(config, zap.NewNop())
	require.NoError(t, queue.Start(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, queue.Stop(context.Background()))
	})

	activity := appaudit.NewActivityLogger(&fakeActivityRepo{}, env.store, queue, zap.NewNop())
	env.noteSvc = NewNoteService(env.notes, env.store, activity, nil)

	transcripts := &memSatellite[intelligence.CallTranscript]{
		tenant: func(r *intelligence.CallTranscript) uuid.UUID { return r.TenantID },
		parent: func(r *intelligence.CallTranscript) intelligence.ParentRef { return r.Parent },
		id:     func(r *intelligence.CallTranscript) uuid.UUID { return r.ID },
	}
	recommendations := &memSatellite[intelligence.AIRecommendation]{
		tenant: func(r *intelligence.AIRecommendation) uuid.UUID { return r.TenantID },
		parent: func(r *intelligence.AIRecommendation) intelligence.ParentRef { return r.Parent },
		id:     func(r *intelligence.AIRecommendation) uuid.UUID { return r.ID },
	}
	messages := &memSatellite[intelligence.WhatsAppMessage]{
		tenant: func(r *intelligence.WhatsAppMessage) uuid.UUID { return r.TenantID },
		parent: func(r *intelligence.WhatsAppMessage) intelligence.ParentRef { return r.Parent },
		id:     func(r *intelligence.WhatsAppMessage) uuid.UUID { return r.ID },
	}
	plans := &memSatellite[intelligence.StrategyPlan]{
		tenant: func(r *intelligence.StrategyPlan) uuid.UUID { return r.TenantID },
		parent: func(r *intelligence.StrategyPlan) intelligence.ParentRef { return r.Parent },
		id:     func(r *intelligence.StrategyPlan) uuid.UUID { return r.ID },
	}
	reports := &memSatellite[intelligence.CompetitorReport]{
		tenant: func(r *intelligence.CompetitorReport) uuid.UUID { return r.TenantID },
		parent: func(r *intelligence.CompetitorReport) intelligence.ParentRef { return r.Parent },
		id:     func(r *intelligence.CompetitorReport) uuid.UUID { return r.ID },
	}

	env.recordsSvc = NewRecordsService(
		transcripts, recommendations, messages, plans, reports, env.signals,
		env.noteSvc, env.store, activity,
		WithSignalPublisher(env.publisher),
	)

	env.store.Replace(env.tenantID, cache.Snapshot{})

	return env
}

func clientParentReq(clientID uuid.UUID) ParentRequest {
	return ParentRequest{ClientID: &clientID}
}

func TestNoteService_CreateManual(t *testing.T) {
	env := newTestEnv(t)
	clientID := uuid.New()

	note, err := env.noteSvc.Create(context.Background(), env.tenantID, CreateNoteRequest{
		Parent: clientParentReq(clientID),
		Body:   "פגישת התנעה עברה מצוין",
		Author: "dana",
	})
	require.NoError(t, err)
	assert.Equal(t, string(intelligence.NoteTypeManual), note.NoteType)

	snap := env.store.Snapshot(env.tenantID)
	require.Len(t, snap.Notes, 1)
}

func TestNoteService_CreateRequiresOneParent(t *testing.T) {
	env := newTestEnv(t)
	clientID := uuid.New()
	leadID := uuid.New()

	_, err := env.noteSvc.Create(context.Background(), env.tenantID, CreateNoteRequest{
		Parent: ParentRequest{ClientID: &clientID, LeadID: &leadID},
		Body:   "both parents",
	})
	require.Error(t, err)

	_, err = env.noteSvc.Create(context.Background(), env.tenantID, CreateNoteRequest{
		Body: "no parent",
	})
	require.Error(t, err)
}

func TestTranscriptSummaryDerivesNoteOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clientID := uuid.New()

	transcript, err := env.recordsSvc.AddTranscript(ctx, env.tenantID, CreateTranscriptRequest{
		Parent:     clientParentReq(clientID),
		Transcript: "full call text",
		Summary:    "client wants to expand to TikTok",
		RecordedAt: time.Now(),
	})
	require.NoError(t, err)

	notes, err := env.noteSvc.ListByParent(ctx, env.tenantID, clientParentReq(clientID))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, string(intelligence.NoteTypeTranscriptSummary), notes[0].NoteType)
	require.NotNil(t, notes[0].SourceID)
	assert.Equal(t, transcript.ID, *notes[0].SourceID)

	// re-processing the same source is a no-op
	parent, err := clientParentReq(clientID).ToParentRef()
	require.NoError(t, err)
	created, ok, err := env.noteSvc.CreateFromSource(ctx, env.tenantID, parent,
		"client wants to expand to TikTok", intelligence.NoteTypeTranscriptSummary, transcript.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, created)

	notes, err = env.noteSvc.ListByParent(ctx, env.tenantID, clientParentReq(clientID))
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestTranscriptWithoutSummaryDerivesNoNote(t *testing.T) {
	env := newTestEnv(t)
	clientID := uuid.New()

	_, err := env.recordsSvc.AddTranscript(context.Background(), env.tenantID, CreateTranscriptRequest{
		Parent:     clientParentReq(clientID),
		Transcript: "full call text",
		RecordedAt: time.Now(),
	})
	require.NoError(t, err)

	notes, err := env.noteSvc.ListByParent(context.Background(), env.tenantID, clientParentReq(clientID))
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestRecommendationDerivesNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clientID := uuid.New()

	rec, err := env.recordsSvc.AddRecommendation(ctx, env.tenantID, CreateRecommendationRequest{
		Parent: clientParentReq(clientID),
		Topic:  "budget",
		Body:   "shift 20% of spend to search",
	})
	require.NoError(t, err)

	notes, err := env.noteSvc.ListByParent(ctx, env.tenantID, clientParentReq(clientID))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, string(intelligence.NoteTypeRecommendation), notes[0].NoteType)
	require.NotNil(t, notes[0].SourceID)
	assert.Equal(t, rec.ID, *notes[0].SourceID)
}

func TestMarkMessageSent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clientID := uuid.New()

	msg, err := env.recordsSvc.AddMessage(ctx, env.tenantID, CreateMessageRequest{
		Parent:  clientParentReq(clientID),
		Body:    "היי, מה שלומך?",
		Purpose: "checkin",
	})
	require.NoError(t, err)
	assert.Equal(t, string(intelligence.MessageStatusDraft), msg.Status)

	sent, err := env.recordsSvc.MarkMessageSent(ctx, env.tenantID, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, string(intelligence.MessageStatusSent), sent.Status)
	assert.NotNil(t, sent.SentAt)

	_, err = env.recordsSvc.MarkMessageSent(ctx, env.tenantID, msg.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestMarkMessageSentNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.recordsSvc.MarkMessageSent(context.Background(), env.tenantID, uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddSignalPublishes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	leadID := uuid.New()

	signal, err := env.recordsSvc.AddSignal(ctx, env.tenantID, CreateSignalRequest{
		Parent:     ParentRequest{LeadID: &leadID},
		Trait:      "analytical",
		Evidence:   "asks for data before deciding",
		Confidence: decimal.NewFromFloat(0.85),
	})
	require.NoError(t, err)
	assert.NotNil(t, signal.Parent.LeadID)

	require.Len(t, env.publisher.published, 1)
	assert.Equal(t, realtime.EventInsert, env.publisher.published[0])

	snap := env.store.Snapshot(env.tenantID)
	require.Len(t, snap.Signals, 1)
}

func TestAddSignalRejectsBadConfidence(t *testing.T) {
	env := newTestEnv(t)
	leadID := uuid.New()

	_, err := env.recordsSvc.AddSignal(context.Background(), env.tenantID, CreateSignalRequest{
		Parent:     ParentRequest{LeadID: &leadID},
		Trait:      "analytical",
		Confidence: decimal.NewFromFloat(1.5),
	})
	require.Error(t, err)
	assert.Empty(t, env.publisher.published)
}

func TestAddCompetitorReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clientID := uuid.New()

	_, err := env.recordsSvc.AddCompetitorReport(ctx, env.tenantID, CreateCompetitorReportRequest{
		Parent:         clientParentReq(clientID),
		CompetitorName: "Rival Agency",
		Body:           "strong on social, weak on search",
	})
	require.NoError(t, err)

	reports, err := env.recordsSvc.ListCompetitorReports(ctx, env.tenantID, clientParentReq(clientID))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Rival Agency", reports[0].CompetitorName)
}

func TestStrategyPlanDerivesNote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clientID := uuid.New()

	_, err := env.recordsSvc.AddStrategyPlan(ctx, env.tenantID, CreateStrategyPlanRequest{
		Parent:    clientParentReq(clientID),
		Title:     "Q4 plan",
		Body:      "double down on retargeting",
		PeriodKey: "2026-10",
	})
	require.NoError(t, err)

	notes, err := env.noteSvc.ListByParent(ctx, env.tenantID, clientParentReq(clientID))
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, string(intelligence.NoteTypeStrategy), notes[0].NoteType)
}
