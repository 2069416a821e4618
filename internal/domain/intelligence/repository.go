package intelligence

import (
	"context"

	"github.com/google/uuid"
)

// NoteRepository defines the interface for note persistence. Client notes
// and lead notes live in separate tables; the repository routes by parent.
type NoteRepository interface {
	FindByParent(ctx context.Context, tenantID uuid.UUID, parent ParentRef) ([]Note, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Note, error)
	// ExistsBySource reports whether a note derived from the given source
	// record already exists for the parent.
	ExistsBySource(ctx context.Context, tenantID uuid.UUID, parent ParentRef, sourceID uuid.UUID) (bool, error)
	Save(ctx context.Context, note *Note) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// SatelliteRepository is the common shape of the append-only intelligence
// record repositories.
type SatelliteRepository[T any] interface {
	FindByParent(ctx context.Context, tenantID uuid.UUID, parent ParentRef) ([]T, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]T, error)
	Save(ctx context.Context, record *T) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// TranscriptRepository persists call transcripts
type TranscriptRepository interface {
	SatelliteRepository[CallTranscript]
}

// RecommendationRepository persists AI recommendations
type RecommendationRepository interface {
	SatelliteRepository[AIRecommendation]
}

// MessageRepository persists WhatsApp message drafts
type MessageRepository interface {
	SatelliteRepository[WhatsAppMessage]
}

// StrategyPlanRepository persists strategy plans
type StrategyPlanRepository interface {
	SatelliteRepository[StrategyPlan]
}

// CompetitorReportRepository persists competitor reports
type CompetitorReportRepository interface {
	SatelliteRepository[CompetitorReport]
}

// SignalRepository persists personality signals and supports the
// re-parenting step of lead conversion.
type SignalRepository interface {
	SatelliteRepository[PersonalitySignal]
	// FindByLead finds signals keyed to a lead
	FindByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]PersonalitySignal, error)
	// AttachClientToLeadSignals adds the client link to every signal keyed
	// to the lead and returns the updated rows.
	AttachClientToLeadSignals(ctx context.Context, tenantID, leadID, clientID uuid.UUID) ([]PersonalitySignal, error)
}
