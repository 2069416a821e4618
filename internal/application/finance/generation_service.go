package finance

import (
	"context"
	"fmt"

	appaudit "github.com/agencycrm/backend/internal/application/audit"
	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/infrastructure/cache"
	"github.com/agencycrm/backend/internal/infrastructure/scheduler"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerationService runs the monthly batch generation. Both generators are
// idempotent: rows already present for the target month are skipped by
// their composite dedup key, so re-running a month never duplicates data.
type GenerationService struct {
	clients  crm.ClientRepository
	expenses finance.ExpenseRepository
	payments finance.PaymentRepository
	store    *cache.Store
	activity *appaudit.ActivityLogger
	logger   *zap.Logger
}

// NewGenerationService creates a generation service
func NewGenerationService(
	clients crm.ClientRepository,
	expenses finance.ExpenseRepository,
	payments finance.PaymentRepository,
	store *cache.Store,
	activity *appaudit.ActivityLogger,
	logger *zap.Logger,
) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{
		clients:  clients,
		expenses: expenses,
		payments: payments,
		store:    store,
		activity: activity,
		logger:   logger,
	}
}

var _ scheduler.JobExecutor = (*GenerationService)(nil)

// Execute routes a scheduler job to the matching generator
func (s *GenerationService) Execute(ctx context.Context, job *scheduler.Job) (int, error) {
	switch job.JobType {
	case scheduler.JobTypeGenerateExpenses:
		return s.GenerateMonthlyExpenses(ctx, job.TenantID, job.Month)
	case scheduler.JobTypeGeneratePayments:
		return s.GenerateMonthlyPayments(ctx, job.TenantID, job.Month)
	default:
		return 0, fmt.Errorf("%w: %s", scheduler.ErrInvalidJobType, job.JobType)
	}
}

// GenerateMonthlyExpenses copies every recurring expense seed into the
// target month, skipping supplier+client pairs that already have a row
// there. Returns the number of rows created.
func (s *GenerationService) GenerateMonthlyExpenses(ctx context.Context, tenantID uuid.UUID, month string) (int, error) {
	if err := finance.ValidateMonthKey(month); err != nil {
		return 0, err
	}

	seeds, err := s.expenses.FindRecurring(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to load recurring expenses: %w", err)
	}
	if len(seeds) == 0 {
		return 0, nil
	}

	existing, err := s.expenses.FindByMonth(ctx, tenantID, month)
	if err != nil {
		return 0, fmt.Errorf("failed to load expenses for %s: %w", month, err)
	}
	taken := make(map[string]struct{}, len(existing))
	for i := range existing {
		taken[existing[i].DedupKey()] = struct{}{}
	}

	var created []*finance.Expense
	for i := range seeds {
		if _, ok := taken[seeds[i].DedupKey()]; ok {
			continue
		}
		// a duplicated seed only produces one row
		taken[seeds[i].DedupKey()] = struct{}{}
		created = append(created, seeds[i].CopyForMonth(month))
	}
	if len(created) == 0 {
		return 0, nil
	}

	if err := s.expenses.SaveBatch(ctx, created); err != nil {
		return 0, fmt.Errorf("failed to save generated expenses: %w", err)
	}

	rows := make([]finance.Expense, len(created))
	for i := range created {
		rows[i] = *created[i]
	}
	s.store.PrependExpenses(tenantID, rows)
	s.activity.Log(ctx, tenantID, audit.ActionGenerated, "expense",
		fmt.Sprintf("%d expenses generated for %s", len(created), month), nil)

	return len(created), nil
}

// GenerateMonthlyPayments creates an expected payment row for every active
// client with a positive retainer, skipping client+month pairs that already
// exist. Returns the number of rows created.
func (s *GenerationService) GenerateMonthlyPayments(ctx context.Context, tenantID uuid.UUID, month string) (int, error) {
	if err := finance.ValidateMonthKey(month); err != nil {
		return 0, err
	}

	clients, err := s.clients.FindActive(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to load active clients: %w", err)
	}
	if len(clients) == 0 {
		return 0, nil
	}

	existing, err := s.payments.FindByMonth(ctx, tenantID, month)
	if err != nil {
		return 0, fmt.Errorf("failed to load payments for %s: %w", month, err)
	}
	taken := make(map[string]struct{}, len(existing))
	for i := range existing {
		taken[existing[i].DedupKey()] = struct{}{}
	}

	var created []*finance.Payment
	for i := range clients {
		if !clients[i].MonthlyRetainer.IsPositive() {
			continue
		}
		payment, err := finance.NewPayment(tenantID, clients[i].ID, month, clients[i].MonthlyRetainer)
		if err != nil {
			return 0, err
		}
		if _, ok := taken[payment.DedupKey()]; ok {
			continue
		}
		taken[payment.DedupKey()] = struct{}{}
		created = append(created, payment)
	}
	if len(created) == 0 {
		return 0, nil
	}

	if err := s.payments.SaveBatch(ctx, created); err != nil {
		return 0, fmt.Errorf("failed to save generated payments: %w", err)
	}

	rows := make([]finance.Payment, len(created))
	for i := range created {
		rows[i] = *created[i]
	}
	s.store.PrependPayments(tenantID, rows)
	s.activity.Log(ctx, tenantID, audit.ActionGenerated, "payment",
		fmt.Sprintf("%d payments generated for %s", len(created), month), nil)

	return len(created), nil
}
