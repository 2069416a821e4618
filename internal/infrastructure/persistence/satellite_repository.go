package persistence

import (
	"context"

	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormSatelliteRepository is the shared GORM implementation behind the
// append-only intelligence record repositories. Each instantiation binds a
// domain type to its persistence model through a pair of converters.
type gormSatelliteRepository[T any, M any] struct {
	db       *gorm.DB
	toModel  func(*T) *M
	toDomain func(*M) *T
}

// FindByParent finds records for a client or lead, newest first. A record
// carrying both parent links matches either one.
func (r *gormSatelliteRepository[T, M]) FindByParent(ctx context.Context, tenantID uuid.UUID, parent intelligence.ParentRef) ([]T, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	switch {
	case parent.ClientID != nil && *parent.ClientID != uuid.Nil:
		query = query.Where("client_id = ?", *parent.ClientID)
	case parent.LeadID != nil && *parent.LeadID != uuid.Nil:
		query = query.Where("lead_id = ?", *parent.LeadID)
	default:
		return nil, shared.NewDomainError("INVALID_PARENT", "Record lookup requires a client or lead")
	}

	var recordModels []M
	if err := query.Order("created_at DESC").Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]T, len(recordModels))
	for i := range recordModels {
		records[i] = *r.toDomain(&recordModels[i])
	}
	return records, nil
}

// FindAllForTenant finds all records for a tenant
func (r *gormSatelliteRepository[T, M]) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]T, error) {
	var recordModels []M
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]T, len(recordModels))
	for i := range recordModels {
		records[i] = *r.toDomain(&recordModels[i])
	}
	return records, nil
}

// Save creates or updates a record
func (r *gormSatelliteRepository[T, M]) Save(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Save(r.toModel(record)).Error
}

// DeleteForTenant deletes a record within a tenant
func (r *gormSatelliteRepository[T, M]) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	var model M
	result := r.db.WithContext(ctx).Delete(&model, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NewGormTranscriptRepository creates the call transcripts repository
func NewGormTranscriptRepository(db *gorm.DB) intelligence.TranscriptRepository {
	return &gormSatelliteRepository[intelligence.CallTranscript, models.CallTranscriptModel]{
		db: db,
		toModel: func(t *intelligence.CallTranscript) *models.CallTranscriptModel {
			var m models.CallTranscriptModel
			m.FromDomain(t)
			return &m
		},
		toDomain: func(m *models.CallTranscriptModel) *intelligence.CallTranscript { return m.ToDomain() },
	}
}

// NewGormRecommendationRepository creates the AI recommendations repository
func NewGormRecommendationRepository(db *gorm.DB) intelligence.RecommendationRepository {
	return &gormSatelliteRepository[intelligence.AIRecommendation, models.AIRecommendationModel]{
		db: db,
		toModel: func(r *intelligence.AIRecommendation) *models.AIRecommendationModel {
			var m models.AIRecommendationModel
			m.FromDomain(r)
			return &m
		},
		toDomain: func(m *models.AIRecommendationModel) *intelligence.AIRecommendation { return m.ToDomain() },
	}
}

// NewGormMessageRepository creates the WhatsApp drafts repository
func NewGormMessageRepository(db *gorm.DB) intelligence.MessageRepository {
	return &gormSatelliteRepository[intelligence.WhatsAppMessage, models.WhatsAppMessageModel]{
		db: db,
		toModel: func(msg *intelligence.WhatsAppMessage) *models.WhatsAppMessageModel {
			var m models.WhatsAppMessageModel
			m.FromDomain(msg)
			return &m
		},
		toDomain: func(m *models.WhatsAppMessageModel) *intelligence.WhatsAppMessage { return m.ToDomain() },
	}
}

// NewGormStrategyPlanRepository creates the strategy plans repository
func NewGormStrategyPlanRepository(db *gorm.DB) intelligence.StrategyPlanRepository {
	return &gormSatelliteRepository[intelligence.StrategyPlan, models.StrategyPlanModel]{
		db: db,
		toModel: func(p *intelligence.StrategyPlan) *models.StrategyPlanModel {
			var m models.StrategyPlanModel
			m.FromDomain(p)
			return &m
		},
		toDomain: func(m *models.StrategyPlanModel) *intelligence.StrategyPlan { return m.ToDomain() },
	}
}

// NewGormCompetitorReportRepository creates the competitor reports repository
func NewGormCompetitorReportRepository(db *gorm.DB) intelligence.CompetitorReportRepository {
	return &gormSatelliteRepository[intelligence.CompetitorReport, models.CompetitorReportModel]{
		db: db,
		toModel: func(r *intelligence.CompetitorReport) *models.CompetitorReportModel {
			var m models.CompetitorReportModel
			m.FromDomain(r)
			return &m
		},
		toDomain: func(m *models.CompetitorReportModel) *intelligence.CompetitorReport { return m.ToDomain() },
	}
}

// GormSignalRepository implements intelligence.SignalRepository using GORM
type GormSignalRepository struct {
	gormSatelliteRepository[intelligence.PersonalitySignal, models.PersonalitySignalModel]
}

// NewGormSignalRepository creates the personality signals repository
func NewGormSignalRepository(db *gorm.DB) *GormSignalRepository {
	return &GormSignalRepository{
		gormSatelliteRepository: gormSatelliteRepository[intelligence.PersonalitySignal, models.PersonalitySignalModel]{
			db: db,
			toModel: func(s *intelligence.PersonalitySignal) *models.PersonalitySignalModel {
				var m models.PersonalitySignalModel
				m.FromDomain(s)
				return &m
			},
			toDomain: func(m *models.PersonalitySignalModel) *intelligence.PersonalitySignal { return m.ToDomain() },
		},
	}
}

// FindByLead finds signals keyed to a lead
func (r *GormSignalRepository) FindByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]intelligence.PersonalitySignal, error) {
	return r.FindByParent(ctx, tenantID, intelligence.LeadParent(leadID))
}

// AttachClientToLeadSignals adds the client link to every signal keyed to
// the lead and returns the updated rows. The lead link is kept.
func (r *GormSignalRepository) AttachClientToLeadSignals(ctx context.Context, tenantID, leadID, clientID uuid.UUID) ([]intelligence.PersonalitySignal, error) {
	if err := r.db.WithContext(ctx).
		Model(&models.PersonalitySignalModel{}).
		Where("tenant_id = ? AND lead_id = ?", tenantID, leadID).
		Update("client_id", clientID).Error; err != nil {
		return nil, err
	}
	return r.FindByLead(ctx, tenantID, leadID)
}

// Ensure GormSignalRepository implements SignalRepository
var _ intelligence.SignalRepository = (*GormSignalRepository)(nil)
