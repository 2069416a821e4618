package crm

import (
	"context"
	"errors"
	"fmt"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/domain/shared"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/agencycrm/backend/internal/infrastructure/event"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ClientService handles client lifecycle operations. Remote persistence
// always happens first; the in-memory snapshot is only touched after the
// repository call succeeds, so a failed write leaves the local view intact.
type ClientService struct {
	clients  crm.ClientRepository
	retainer crm.RetainerChangeRepository
	deals    finance.DealRepository
	expenses finance.ExpenseRepository
	payments finance.PaymentRepository
	store    *cache.Store
	activity *appaudit.ActivityLogger
	queue    *event.TaskQueue
	eventBus shared.EventBus
	logger   *zap.Logger
}

// ClientServiceOption configures a ClientService
type ClientServiceOption func(*ClientService)

// WithClientServiceLogger sets the logger
func WithClientServiceLogger(logger *zap.Logger) ClientServiceOption {
	return func(s *ClientService) {
		s.logger = logger
	}
}

// WithClientServiceEventBus sets the event bus for domain events
func WithClientServiceEventBus(bus shared.EventBus) ClientServiceOption {
	return func(s *ClientService) {
		s.eventBus = bus
	}
}

// NewClientService creates a client service
func NewClientService(
	clients crm.ClientRepository,
	retainer crm.RetainerChangeRepository,
	deals finance.DealRepository,
	expenses finance.ExpenseRepository,
	payments finance.PaymentRepository,
	store *cache.Store,
	activity *appaudit.ActivityLogger,
	queue *event.TaskQueue,
	opts ...ClientServiceOption,
) *ClientService {
	s := &ClientService{
		clients:  clients,
		retainer: retainer,
		deals:    deals,
		expenses: expenses,
		payments: payments,
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

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	client, err := crm.NewClient(tenantID, req.Name)
	if err != nil {
		return nil, err
	}

	if req.Company != "" || req.Phone != "" || req.Email != "" {
		if err := client.SetContact(req.Company, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if req.Status != "" {
		if err := client.SetStatus(crm.ClientStatus(req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Rating != nil {
		if err := client.SetRating(*req.Rating); err != nil {
			return nil, err
		}
	}
	if req.MonthlyRetainer != nil || req.SupplierCostMonthly != nil {
		retainer := decimal.Zero
		supplierCost := decimal.Zero
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
	if req.AssignedTo != "" {
		client.Assign(req.AssignedTo)
	}
	if req.Notes != "" {
		client.SetNotes(req.Notes)
	}

	if err := s.clients.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.store.UpsertClient(tenantID, *client)
	s.publishEvents(ctx, client.GetDomainEvents())
	client.ClearDomainEvents()
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "client", client.Name, &client.ID)

	resp := ToClientResponse(client)
	return &resp, nil
}

// Get returns a single client
func (s *ClientService) Get(ctx context.Context, tenantID, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clients.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}

// List returns a paginated client list
func (s *ClientService) List(ctx context.Context, tenantID uuid.UUID, filter ClientListFilter) (*shared.Paginated[ClientResponse], error) {
	f := toSharedFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)

	var (
		clients []crm.Client
		err     error
	)
	if filter.Status != "" {
		status := crm.CanonicalClientStatus(filter.Status)
		clients, err = s.clients.FindByStatus(ctx, tenantID, status, f)
	} else {
		clients, err = s.clients.FindAllForTenant(ctx, tenantID, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	total, err := s.clients.CountForTenant(ctx, tenantID, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	items := make([]ClientResponse, len(clients))
	for i := range clients {
		items[i] = ToClientResponse(&clients[i])
	}

	result := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &result, nil
}

// Update applies a partial update to a client. A change to the monthly
// retainer or supplier cost additionally produces a retainer change record,
// persisted best effort off the request path.
func (s *ClientService) Update(ctx context.Context, tenantID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clients.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}

	before := *client

	if req.Name != nil {
		if err := client.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Company != nil || req.Phone != nil || req.Email != nil {
		company, phone, email := client.Company, client.Phone, client.Email
		if req.Company != nil {
			company = *req.Company
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := client.SetContact(company, phone, email); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		if err := client.SetStatus(crm.ClientStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Rating != nil {
		if err := client.SetRating(*req.Rating); err != nil {
			return nil, err
		}
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
	if req.ServiceKeys != nil {
		client.SetServices(*req.ServiceKeys)
	}
	if req.AssignedTo != nil {
		client.Assign(*req.AssignedTo)
	}
	if req.Notes != nil {
		client.SetNotes(*req.Notes)
	}
	if req.NextReviewAt != nil {
		client.ScheduleReview(*req.NextReviewAt)
	}

	if err := s.clients.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.store.UpsertClient(tenantID, *client)

	if change := DetectRetainerChange(&before, client); change != nil {
		s.store.PrependRetainerChange(tenantID, *change)
		s.persistRetainerChange(tenantID, change)
	}

	s.publishEvents(ctx, client.GetDomainEvents())
	client.ClearDomainEvents()
	s.activity.Log(ctx, tenantID, audit.ActionUpdated, "client", client.Name, &client.ID)

	resp := ToClientResponse(client)
	return &resp, nil
}

// persistRetainerChange saves the record off the request path. The client
// update itself already succeeded, so a lost history record is logged and
// tolerated rather than failing the update.
func (s *ClientService) persistRetainerChange(tenantID uuid.UUID, change *crm.RetainerChange) {
	task := event.Task{
		Name: "retainer_change.save",
		Run: func(ctx context.Context) error {
			return s.retainer.Save(ctx, change)
		},
	}
	if !s.queue.Enqueue(task) {
		s.logger.Warn("retainer change record dropped, task queue full",
			zap.String("tenant_id", tenantID.String()),
			zap.String("client_id", change.ClientID.String()))
	}
}

// RetainerHistory returns the retainer change records of a client, newest first
func (s *ClientService) RetainerHistory(ctx context.Context, tenantID, clientID uuid.UUID) ([]RetainerChangeResponse, error) {
	changes, err := s.retainer.FindByClient(ctx, tenantID, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load retainer history: %w", err)
	}
	items := make([]RetainerChangeResponse, len(changes))
	for i := range changes {
		items[i] = ToRetainerChangeResponse(&changes[i])
	}
	return items, nil
}

// Delete removes a client and its dependent records. Children are deleted
// before the parent so a mid-sequence failure never leaves orphaned rows
// pointing at a missing client. The snapshot is only updated after the
// whole sequence succeeds.
func (s *ClientService) Delete(ctx context.Context, tenantID, clientID uuid.UUID) error {
	client, err := s.clients.FindByIDForTenant(ctx, tenantID, clientID)
	if err != nil {
		return err
	}

	saga := shared.NewSaga().
		AddStep(shared.SagaStep{
			Name: "delete deals",
			Run: func(ctx context.Context) error {
				return s.deals.DeleteByClient(ctx, tenantID, clientID)
			},
		}).
		AddStep(shared.SagaStep{
			Name: "delete expenses",
			Run: func(ctx context.Context) error {
				return s.expenses.DeleteByClient(ctx, tenantID, clientID)
			},
		}).
		AddStep(shared.SagaStep{
			Name: "delete payments",
			Run: func(ctx context.Context) error {
				return s.payments.DeleteByClient(ctx, tenantID, clientID)
			},
		}).
		AddStep(shared.SagaStep{
			Name: "delete retainer history",
			Run: func(ctx context.Context) error {
				return s.retainer.DeleteByClient(ctx, tenantID, clientID)
			},
		}).
		AddStep(shared.SagaStep{
			Name: "delete client",
			Run: func(ctx context.Context) error {
				return s.clients.DeleteForTenant(ctx, tenantID, clientID)
			},
		})

	if err := saga.Execute(ctx); err != nil {
		var sagaErr *shared.SagaError
		if errors.As(err, &sagaErr) && sagaErr.FailedStep == "delete client" {
			// Children are already gone; the orphaned parent row needs
			// manual cleanup.
			s.logger.Error("client delete failed after dependent records were removed",
				zap.String("tenant_id", tenantID.String()),
				zap.String("client_id", clientID.String()),
				zap.Error(err))
		}
		return err
	}

	s.store.Apply(tenantID, func(snap *cache.Snapshot) {
		snap.Clients = removeClientByID(snap.Clients, clientID)
		snap.Deals = filterDealsByClient(snap.Deals, clientID)
		snap.Expenses = filterExpensesByClient(snap.Expenses, clientID)
		snap.Payments = filterPaymentsByClient(snap.Payments, clientID)
		snap.RetainerChanges = filterRetainerChangesByClient(snap.RetainerChanges, clientID)
	})

	s.activity.Log(ctx, tenantID, audit.ActionDeleted, "client", client.Name, &clientID)

	return nil
}

func (s *ClientService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}

func toSharedFilter(page, pageSize int, orderBy, orderDir, search string) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 && pageSize <= 100 {
		f.PageSize = pageSize
	}
	if orderBy != "" {
		f.OrderBy = orderBy
	}
	if orderDir != "" {
		f.OrderDir = orderDir
	}
	f.Search = search
	return f
}

func removeClientByID(clients []crm.Client, id uuid.UUID) []crm.Client {
	out := clients[:0:0]
	for i := range clients {
		if clients[i].ID != id {
			out = append(out, clients[i])
		}
	}
	return out
}

func filterDealsByClient(deals []finance.Deal, clientID uuid.UUID) []finance.Deal {
	out := deals[:0:0]
	for i := range deals {
		if deals[i].ClientID != clientID {
			out = append(out, deals[i])
		}
	}
	return out
}

func filterExpensesByClient(expenses []finance.Expense, clientID uuid.UUID) []finance.Expense {
	out := expenses[:0:0]
	for i := range expenses {
		if expenses[i].ClientID != clientID {
			out = append(out, expenses[i])
		}
	}
	return out
}

func filterPaymentsByClient(payments []finance.Payment, clientID uuid.UUID) []finance.Payment {
	out := payments[:0:0]
	for i := range payments {
		if payments[i].ClientID != clientID {
			out = append(out, payments[i])
		}
	}
	return out
}

func filterRetainerChangesByClient(changes []crm.RetainerChange, clientID uuid.UUID) []crm.RetainerChange {
	out := changes[:0:0]
	for i := range changes {
		if changes[i].ClientID != clientID {
			out = append(out, changes[i])
		}
	}
	return out
}
