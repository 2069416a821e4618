package persistence

import (
	"context"

	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNoteRepository implements intelligence.NoteRepository using GORM.
// Notes are stored in two tables, client_notes and lead_notes; the parent
// reference decides which table an operation targets.
type GormNoteRepository struct {
	db *gorm.DB
}

// NewGormNoteRepository creates a new GormNoteRepository
func NewGormNoteRepository(db *gorm.DB) *GormNoteRepository {
	return &GormNoteRepository{db: db}
}

// FindByParent finds notes for a client or lead, newest first
func (r *GormNoteRepository) FindByParent(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef) ([]intelligence.Note, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}

	if parent.ClientID != nil {
		var noteModels []models.ClientNoteModel
		if err := r.db.WithContext(ctx).
			Where("tenant_id = ? AND client_id = ?", tenantID, *parent.ClientID).
			Order("created_at DESC").
			Find(&noteModels).Error; err != nil {
			return nil, err
		}
		notes := make([]intelligence.Note, len(noteModels))
		for i, model := range noteModels {
			notes[i] = *model.ToDomain()
		}
		return notes, nil
	}

	var noteModels []models.LeadNoteModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lead_id = ?", tenantID, *parent.LeadID).
		Order("created_at DESC").
		Find(&noteModels).Error; err != nil {
		return nil, err
	}
	notes := make([]intelligence.Note, len(noteModels))
	for i, model := range noteModels {
		notes[i] = *model.ToDomain()
	}
	return notes, nil
}

// FindAllForTenant finds all notes for a tenant across both tables
func (r *GormNoteRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]intelligence.Note, error) {
	var clientNoteModels []models.ClientNoteModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&clientNoteModels).Error; err != nil {
		return nil, err
	}

	var leadNoteModels []models.LeadNoteModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&leadNoteModels).Error; err != nil {
		return nil, err
	}

	notes := make([]intelligence.Note, 0, len(clientNoteModels)+len(leadNoteModels))
	for _, model := range clientNoteModels {
		notes = append(notes, *model.ToDomain())
	}
	for _, model := range leadNoteModels {
		notes = append(notes, *model.ToDomain())
	}
	return notes, nil
}

// ExistsBySource reports whether a note derived from the given source
// record already exists for the parent.
func (r *GormNoteRepository) ExistsBySource(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef, sourceID uuid.UUID) (bool, error) {
	if err := parent.Validate(); err != nil {
		return false, err
	}

	var count int64
	if parent.ClientID != nil {
		if err := r.db.WithContext(ctx).
			Model(&models.ClientNoteModel{}).
			Where("tenant_id = ? AND client_id = ? AND source_id = ?", tenantID, *parent.ClientID, sourceID).
			Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}

	if err := r.db.WithContext(ctx).
		Model(&models.LeadNoteModel{}).
		Where("tenant_id = ? AND lead_id = ? AND source_id = ?", tenantID, *parent.LeadID, sourceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a note, routed to the table of its parent
func (r *GormNoteRepository) Save(ctx context.Context, note *intelligence.Note) error {
	if err := note.Parent.Validate(); err != nil {
		return err
	}

	if note.Parent.ClientID != nil {
		var model models.ClientNoteModel
		model.FromDomain(note)
		return r.db.WithContext(ctx).Save(&model).Error
	}

	var model models.LeadNoteModel
	model.FromDomain(note)
	return r.db.WithContext(ctx).Save(&model).Error
}

// DeleteForTenant deletes a note by id, whichever table it lives in
func (r *GormNoteRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ClientNoteModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	result = r.db.WithContext(ctx).Delete(&models.LeadNoteModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormNoteRepository implements NoteRepository
var _ intelligence.NoteRepository = (*GormNoteRepository)(nil)
