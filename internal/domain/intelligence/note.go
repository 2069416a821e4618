package intelligence

import (
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NoteType tags where a note came from
type NoteType string

const (
	NoteTypeManual            NoteType = "manual"
	NoteTypeTranscriptSummary NoteType = "transcript_summary"
	NoteTypeRecommendation    NoteType = "recommendation"
	NoteTypeStrategy          NoteType = "strategy"
)

// IsValidNoteType reports whether t is a known note type
func IsValidNoteType(t NoteType) bool {
	switch t {
	case NoteTypeManual, NoteTypeTranscriptSummary, NoteTypeRecommendation, NoteTypeStrategy:
		return true
	}
	return false
}

// Note is a free-text entry attached to a client or lead. SourceID is a
// non-owning back-reference to the transcript/recommendation that produced
// an AI-derived note; it is used only for de-duplication, never for
// lifecycle control.
type Note struct {
	shared.BaseEntity
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Parent   ParentRef `gorm:"embedded"`
	Body     string    `gorm:"type:text;not null"`
	NoteType NoteType  `gorm:"type:varchar(30);not null;default:'manual'"`
	SourceID *uuid.UUID
	Author   string `gorm:"type:varchar(100)"`
}

// NewNote creates a note for a client or lead
func NewNote(tenantID uuid.UUID, parent ParentRef, body string, noteType NoteType) (*Note, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Note body cannot be empty")
	}
	if noteType == "" {
		noteType = NoteTypeManual
	}
	if !IsValidNoteType(noteType) {
		return nil, shared.NewDomainError("INVALID_NOTE_TYPE", "Unknown note type")
	}

	return &Note{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Parent:     parent,
		Body:       body,
		NoteType:   noteType,
	}, nil
}

// WithSource attaches the producing record's id for de-duplication
func (n *Note) WithSource(sourceID uuid.UUID) *Note {
	n.SourceID = &sourceID
	return n
}
