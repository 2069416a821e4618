package finance

import (
	"context"
	"fmt"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DealService handles deal CRUD. The snapshot is only mutated after the
// remote write succeeds.
type DealService struct {
	deals    finance.DealRepository
	store    *cache.Store
	activity *appaudit.ActivityLogger
	logger   *zap.Logger
}

// NewDealService creates a deal service
func NewDealService(deals finance.DealRepository, store *cache.Store, activity *appaudit.ActivityLogger, logger *zap.Logger) *DealService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DealService{
		deals:    deals,
		store:    store,
		activity: activity,
		logger:   logger,
	}
}

// Create creates a new deal
func (s *DealService) Create(ctx context.Context, tenantID uuid.UUID, req CreateDealRequest) (*DealResponse, error) {
	deal, err := finance.NewDeal(tenantID, req.ClientID, req.Title, req.Amount)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		deal.Notes = req.Notes
	}

	if err := s.deals.Save(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	s.store.UpsertDeal(tenantID, *deal)
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "deal", deal.Title, &deal.ID)

	resp := ToDealResponse(deal)
	return &resp, nil
}

// Get returns a single deal
func (s *DealService) Get(ctx context.Context, tenantID, dealID uuid.UUID) (*DealResponse, error) {
	deal, err := s.deals.FindByIDForTenant(ctx, tenantID, dealID)
	if err != nil {
		return nil, err
	}
	resp := ToDealResponse(deal)
	return &resp, nil
}

// List returns the deals of a tenant
func (s *DealService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]DealResponse, error) {
	deals, err := s.deals.FindAllForTenant(ctx, tenantID, toSharedFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	items := make([]DealResponse, len(deals))
	for i := range deals {
		items[i] = ToDealResponse(&deals[i])
	}
	return items, nil
}

// ListByClient returns the deals owned by a client
func (s *DealService) ListByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]DealResponse, error) {
	deals, err := s.deals.FindByClient(ctx, tenantID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client deals: %w", err)
	}
	items := make([]DealResponse, len(deals))
	for i := range deals {
		items[i] = ToDealResponse(&deals[i])
	}
	return items, nil
}

// Update applies a partial update to a deal
func (s *DealService) Update(ctx context.Context, tenantID, dealID uuid.UUID, req UpdateDealRequest) (*DealResponse, error) {
	deal, err := s.deals.FindByIDForTenant(ctx, tenantID, dealID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, shared.NewDomainError("INVALID_TITLE", "Deal title cannot be empty")
		}
		deal.Title = *req.Title
	}
	if req.Amount != nil {
		if err := deal.SetAmount(*req.Amount); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := deal.Close(finance.DealStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		deal.Notes = *req.Notes
	}

	if err := s.deals.Save(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	s.store.UpsertDeal(tenantID, *deal)
	s.activity.Log(ctx, tenantID, audit.ActionUpdated, "deal", deal.Title, &deal.ID)

	resp := ToDealResponse(deal)
	return &resp, nil
}

// Delete removes a deal
func (s *DealService) Delete(ctx context.Context, tenantID, dealID uuid.UUID) error {
	deal, err := s.deals.FindByIDForTenant(ctx, tenantID, dealID)
	if err != nil {
		return err
	}

	if err := s.deals.DeleteForTenant(ctx, tenantID, dealID); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	s.store.RemoveDeal(tenantID, dealID)
	s.activity.Log(ctx, tenantID, audit.ActionDeleted, "deal", deal.Title, &dealID)

	return nil
}

func toSharedFilter(filter ListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	return f
}
