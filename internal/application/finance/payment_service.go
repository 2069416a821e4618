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

// PaymentService handles payment CRUD
type PaymentService struct {
	payments finance.PaymentRepository
	store    *cache.Store
	activity *appaudit.ActivityLogger
	logger   *zap.Logger
}

// NewPaymentService creates a payment service
func NewPaymentService(payments finance.PaymentRepository, store *cache.Store, activity *appaudit.ActivityLogger, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments: payments,
		store:    store,
		activity: activity,
		logger:   logger,
	}
}

// Create creates a new payment
func (s *PaymentService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePaymentRequest) (*PaymentResponse, error) {
	payment, err := finance.NewPayment(tenantID, req.ClientID, req.Month, req.Amount)
	if err != nil {
		return nil, err
	}
	if req.Method != "" {
		payment.Method = finance.PaymentMethod(req.Method)
	}
	if req.Notes != "" {
		payment.Notes = req.Notes
	}

	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.store.UpsertPayment(tenantID, *payment)
	s.activity.Log(ctx, tenantID, audit.ActionCreated, "payment", payment.Month, &payment.ID)

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// Get returns a single payment
func (s *PaymentService) Get(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.payments.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// List returns the payments of a tenant, optionally restricted to a month
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]PaymentResponse, error) {
	var (
		payments []finance.Payment
		err      error
	)
	if filter.Month != "" {
		if err := finance.ValidateMonthKey(filter.Month); err != nil {
			return nil, err
		}
		payments, err = s.payments.FindByMonth(ctx, tenantID, filter.Month)
	} else {
		payments, err = s.payments.FindAllForTenant(ctx, tenantID, toSharedFilter(filter))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = ToPaymentResponse(&payments[i])
	}
	return items, nil
}

// Update applies a partial update to a payment
func (s *PaymentService) Update(ctx context.Context, tenantID, paymentID uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	payment, err := s.payments.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
		}
		payment.Amount = *req.Amount
	}
	if req.Paid != nil && *req.Paid && !payment.Paid {
		method := payment.Method
		if req.Method != nil {
			method = finance.PaymentMethod(*req.Method)
		}
		payment.MarkPaid(method)
	} else if req.Method != nil {
		payment.Method = finance.PaymentMethod(*req.Method)
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}

	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	s.store.UpsertPayment(tenantID, *payment)
	s.activity.Log(ctx, tenantID, audit.ActionUpdated, "payment", payment.Month, &payment.ID)

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// Delete removes a payment
func (s *PaymentService) Delete(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	payment, err := s.payments.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return err
	}

	if err := s.payments.DeleteForTenant(ctx, tenantID, paymentID); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	s.store.RemovePayment(tenantID, paymentID)
	s.activity.Log(ctx, tenantID, audit.ActionDeleted, "payment", payment.Month, &paymentID)

	return nil
}
