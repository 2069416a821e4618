package intelligence

import (
	"context"
	"fmt"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoteService handles notes attached to clients and leads. Manual notes
// always insert; AI-derived notes carry the id of the record that produced
// them and are de-duplicated on it, so re-processing a transcript or
// recommendation never doubles its note.
type NoteService struct {
	notes    intelligence.NoteRepository
	store    *cache.Store
	activity *appaudit.ActivityLogger
	logger   *zap.Logger
}

// NewNoteService creates a note service
func NewNoteService(notes intelligence.NoteRepository, store *cache.Store, activity *appaudit.ActivityLogger, logger *zap.Logger) *NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{
		notes:    notes,
		store:    store,
		activity: activity,
		logger:   logger,
	}
}

// Create creates a manual note
func (s *NoteService) Create(ctx context.Context, tenantID uuid.UUID, req CreateNoteRequest) (*NoteResponse, error) {
	parent, err := req.Parent.ToParentRef()
	if err != nil {
		return nil, err
	}

	note, err := intelligence.NewNote(tenantID, parent, req.Body, intelligence.NoteType(req.NoteType))
	if err != nil {
		return nil, err
	}
	note.Author = req.Author

	if err := s.notes.Save(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.store.UpsertNote(tenantID, *note)
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "note", truncate(note.Body, 80), &note.ID)

	resp := ToNoteResponse(note)
	return &resp, nil
}

// CreateFromSource creates an AI-derived note keyed to the record that
// produced it. When a note for the same parent and source already exists
// the call is a no-op and returns (nil, false, nil).
func (s *NoteService) CreateFromSource(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef, body string, noteType intelligence.NoteType, sourceID uuid.UUID) (*NoteResponse, bool, error) {
	exists, err := s.notes.ExistsBySource(ctx, tenantID, parent, sourceID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check note source: %w", err)
	}
	if exists {
		return nil, false, nil
	}

	note, err := intelligence.NewNote(tenantID, parent, body, noteType)
	if err != nil {
		return nil, false, err
	}
	note.WithSource(sourceID)

	if err := s.notes.Save(ctx, note); err != nil {
		return nil, false, fmt.Errorf("failed to create derived note: %w", err)
	}

	s.store.UpsertNote(tenantID, *note)

	resp := ToNoteResponse(note)
	return &resp, true, nil
}

// ListByParent returns the notes of a client or lead
func (s *NoteService) ListByParent(ctx context.Context, tenantID uuid.UUID, req ParentRequest) ([]NoteResponse, error) {
	parent, err := req.ToParentRef()
	if err != nil {
		return nil, err
	}

	notes, err := s.notes.FindByParent(ctx, tenantID, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	items := make([]NoteResponse, len(notes))
	for i := range notes {
		items[i] = ToNoteResponse(&notes[i])
	}
	return items, nil
}

// Delete removes a note
func (s *NoteService) Delete(ctx context.Context, tenantID, noteID uuid.UUID) error {
	if err := s.notes.DeleteForTenant(ctx, tenantID, noteID); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	s.store.RemoveNote(tenantID, noteID)
	s.activity.Log(ctx, tenantID, audit.ActionDeleted, "note", "", &noteID)

	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
