package crm

import (
	"context"
	"fmt"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadService handles lead pipeline operations. Conversion to a client is
// handled by ConversionService, not here; Update refuses the terminal won
// status.
type LeadService struct {
	leads    crm.LeadRepository
	store    *cache.Store
	activity *appaudit.ActivityLogger
	eventBus shared.EventBus
	logger   *zap.Logger
}

// LeadServiceOption configures a LeadService
type LeadServiceOption func(*LeadService)

// WithLeadServiceLogger sets the logger
func WithLeadServiceLogger(logger *zap.Logger) LeadServiceOption {
	return func(s *LeadService) {
		s.logger = logger
	}
}

// WithLeadServiceEventBus sets the event bus for domain events
func WithLeadServiceEventBus(bus shared.EventBus) LeadServiceOption {
	return func(s *LeadService) {
		s.eventBus = bus
	}
}

// NewLeadService creates a lead service
func NewLeadService(
	leads crm.LeadRepository,
	store *cache.Store,
	activity *appaudit.ActivityLogger,
	opts ...LeadServiceOption,
) *LeadService {
	s := &LeadService{
		leads:    leads,
		store:    store,
		activity: activity,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a new lead
func (s *LeadService) Create(ctx context.Context, tenantID uuid.UUID, req CreateLeadRequest) (*LeadResponse, error) {
	lead, err := crm.NewLead(tenantID, req.Name, req.Source)
	if err != nil {
		return nil, err
	}

	if req.Company != "" || req.Phone != "" || req.Email != "" {
		if err := lead.SetContact(req.Company, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if req.QuotedValue != nil {
		if err := lead.SetQuotedValue(*req.QuotedValue); err != nil {
			return nil, err
		}
	}
	if req.AssignedTo != "" {
		lead.Assign(req.AssignedTo)
	}
	if req.Notes != "" {
		lead.SetNotes(req.Notes)
	}

	if err := s.leads.Save(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.store.UpsertLead(tenantID, *lead)
	s.publishEvents(ctx, lead.GetDomainEvents())
	lead.ClearDomainEvents()
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "lead", lead.Name, &lead.ID)

	resp := ToLeadResponse(lead)
	return &resp, nil
}

// Get returns a single lead
func (s *LeadService) Get(ctx context.Context, tenantID, leadID uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leads.FindByIDForTenant(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	resp := ToLeadResponse(lead)
	return &resp, nil
}

// List returns a paginated lead list
func (s *LeadService) List(ctx context.Context, tenantID uuid.UUID, filter LeadListFilter) (*shared.Paginated[LeadResponse], error) {
	f := toSharedFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)

	var (
		leads []crm.Lead
		err   error
	)
	if filter.Status != "" {
		status := crm.CanonicalLeadStatus(filter.Status)
		leads, err = s.leads.FindByStatus(ctx, tenantID, status, f)
	} else {
		leads, err = s.leads.FindAllForTenant(ctx, tenantID, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	total, err := s.leads.CountForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	items := make([]LeadResponse, len(leads))
	for i := range leads {
		items[i] = ToLeadResponse(&leads[i])
	}

	result := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &result, nil
}

// Update applies a partial update to a lead
func (s *LeadService) Update(ctx context.Context, tenantID, leadID uuid.UUID, req UpdateLeadRequest) (*LeadResponse, error) {
	lead, err := s.leads.FindByIDForTenant(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := lead.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Company != nil || req.Phone != nil || req.Email != nil {
		company, phone, email := lead.Company, lead.Phone, lead.Email
		if req.Company != nil {
			company = *req.Company
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := lead.SetContact(company, phone, email); err != nil {
			return nil, err
		}
	}
	if req.Source != nil {
		lead.Source = *req.Source
	}
	if req.Status != nil {
		if err := lead.SetStatus(crm.LeadStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.QuotedValue != nil {
		if err := lead.SetQuotedValue(*req.QuotedValue); err != nil {
			return nil, err
		}
	}
	if req.AssignedTo != nil {
		lead.Assign(*req.AssignedTo)
	}
	if req.Notes != nil {
		lead.SetNotes(*req.Notes)
	}

	if err := s.leads.Save(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	s.store.UpsertLead(tenantID, *lead)
	s.publishEvents(ctx, lead.GetDomainEvents())
	lead.ClearDomainEvents()
	s.activity.Log(ctx, tenantID, audit.ActionUpdated, "lead", lead.Name, &lead.ID)

	resp := ToLeadResponse(lead)
	return &resp, nil
}

// Delete removes a lead
func (s *LeadService) Delete(ctx context.Context, tenantID, leadID uuid.UUID) error {
	lead, err := s.leads.FindByIDForTenant(ctx, tenantID, leadID)
	if err != nil {
		return err
	}

	if err := s.leads.DeleteForTenant(ctx, tenantID, leadID); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	s.store.RemoveLead(tenantID, leadID)
	s.activity.Log(ctx, tenantID, audit.ActionDeleted, "lead", lead.Name, &leadID)

	return nil
}

func (s *LeadService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil || len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
