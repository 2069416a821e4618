package crm

import (
	"context"
	"errors"
	"fmt"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/intelligence"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/agencycrm/backend/internal/infrastructure/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConversionService turns a won lead into a client. The remote writes run
// as a saga: the client insert is compensated by a delete when the lead
// update fails, so no client row survives a failed conversion. The local
// snapshot is merged in a single atomic step after both writes succeed, so
// a reader never sees the won lead without its client.
type ConversionService struct {
	leads    crm.LeadRepository
	clients  crm.ClientRepository
	signals  intelligence.SignalRepository
	store    *cache.Store
	activity *appaudit.ActivityLogger
	queue    *event.TaskQueue
	logger   *zap.Logger
}

// ConversionServiceOption configures a ConversionService
type ConversionServiceOption func(*ConversionService)

// WithConversionServiceLogger sets the logger
func WithConversionServiceLogger(logger *zap.Logger) ConversionServiceOption {
	return func(s *ConversionService) {
		s.logger = logger
	}
}

// NewConversionService creates a conversion service
func NewConversionService(
	leads crm.LeadRepository,
	clients crm.ClientRepository,
	signals intelligence.SignalRepository,
	store *cache.Store,
	activity *appaudit.ActivityLogger,
	queue *event.TaskQueue,
	opts ...ConversionServiceOption,
) *ConversionService {
	s := &ConversionService{
		leads:    leads,
		clients:  clients,
		signals:  signals,
		store:    store,
		activity: activity,
		queue:    queue,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert converts a lead into a client. A lead that already carries a
// client link is refused; conversion is one way and happens once.
func (s *ConversionService) Convert(ctx context.Context, tenantID, leadID uuid.UUID, req ConvertLeadRequest) (*ConversionResponse, error) {
	lead, err := s.leads.FindByIDForTenant(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}
	if lead.IsConverted() {
		return nil, shared.ErrAlreadyConverted
	}

	client, err := s.buildClient(tenantID, lead, req)
	if err != nil {
		return nil, err
	}

	saga := shared.NewSaga().
		AddStep(shared.SagaStep{
			Name: "create client",
			Run: func(ctx context.Context) error {
				return s.clients.Save(ctx, client)
			},
			Compensate: func(ctx context.Context) error {
				return s.clients.DeleteForTenant(ctx, tenantID, client.ID)
			},
		}).
		AddStep(shared.SagaStep{
			Name: "link lead",
			Run: func(ctx context.Context) error {
				if err := lead.MarkWon(client.ID); err != nil {
					return err
				}
				return s.leads.Save(ctx, lead)
			},
		})

	if err := saga.Execute(ctx); err != nil {
		var sagaErr *shared.SagaError
		if errors.As(err, &sagaErr) && sagaErr.Inconsistent() {
			s.logger.Error("lead conversion rollback failed, remote state is inconsistent",
				zap.String("tenant_id", tenantID.String()),
				zap.String("lead_id", leadID.String()),
				zap.String("client_id", client.ID.String()),
				zap.Error(err))
		}
		return nil, fmt.Errorf("lead conversion failed: %w", err)
	}

	s.store.Apply(tenantID, func(snap *cache.Snapshot) {
		snap.Clients = prependClient(snap.Clients, *client)
		snap.Leads = replaceLead(snap.Leads, *lead)
		for i := range snap.Signals {
			if snap.Signals[i].Parent.BelongsToLead(leadID) {
				snap.Signals[i].Parent.ClientID = &client.ID
			}
		}
	})

	s.reparentSignals(tenantID, leadID, client.ID)

	client.ClearDomainEvents()
	lead.ClearDomainEvents()
	s.activity.Log(ctx, tenantID, audit.ActionConverted, "lead",
		fmt.Sprintf("%s -> %s", lead.Name, client.Name), &leadID)

	return &ConversionResponse{
		Client: ToClientResponse(client),
		Lead:   ToLeadResponse(lead),
	}, nil
}

// buildClient derives the new client from the lead's fields with the
// request overrides applied on top.
func (s *ConversionService) buildClient(tenantID uuid.UUID, lead *crm.Lead, req ConvertLeadRequest) (*crm.Client, error) {
	name := lead.Name
	if req.Name != "" {
		name = req.Name
	}

	client, err := crm.NewClient(tenantID, name)
	if err != nil {
		return nil, err
	}
	if err := client.SetContact(lead.Company, lead.Phone, lead.Email); err != nil {
		return nil, err
	}

	if req.MonthlyRetainer != nil || req.SupplierCostMonthly != nil {
		retainer := client.MonthlyRetainer
		supplierCost := client.SupplierCostMonthly
		if req.MonthlyRetainer != nil {
			retainer = *req.MonthlyRetainer
		}
		if req.SupplierCostMonthly != nil {
			supplierCost = *req.SupplierCostMonthly
		}
		if err := client.SetRetainer(retainer, supplierCost); err != nil {
			return nil, err
		}
	}
	if len(req.ServiceKeys) > 0 {
		client.SetServices(req.ServiceKeys)
	}

	assignedTo := lead.AssignedTo
	if req.AssignedTo != "" {
		assignedTo = req.AssignedTo
	}
	if assignedTo != "" {
		client.Assign(assignedTo)
	}
	if lead.Notes != "" {
		client.SetNotes(lead.Notes)
	}

	return client, nil
}

// reparentSignals adds the client link to the lead's personality signals
// off the request path. The conversion itself already committed; a failed
// re-parent is retried by the queue and logged if it keeps failing.
func (s *ConversionService) reparentSignals(tenantID, leadID, clientID uuid.UUID) {
	task := event.Task{
		Name: "signals.attach_client",
		Run: func(ctx context.Context) error {
			updated, err := s.signals.AttachClientToLeadSignals(ctx, tenantID, leadID, clientID)
			if err != nil {
				return err
			}
			for i := range updated {
				s.store.UpsertSignal(tenantID, updated[i])
			}
			return nil
		},
	}
	if !s.queue.Enqueue(task) {
		s.logger.Warn("signal re-parent dropped, task queue full",
			zap.String("tenant_id", tenantID.String()),
			zap.String("lead_id", leadID.String()))
	}
}

func prependClient(clients []crm.Client, client crm.Client) []crm.Client {
	out := make([]crm.Client, 0, len(clients)+1)
	out = append(out, client)
	return append(out, clients...)
}

func replaceLead(leads []crm.Lead, lead crm.Lead) []crm.Lead {
	for i := range leads {
		if leads[i].ID == lead.ID {
			leads[i] = lead
			return leads
		}
	}
	return append([]crm.Lead{lead}, leads...)
}
