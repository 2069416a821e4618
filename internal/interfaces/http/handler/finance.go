package handler

import (
	"time"

	appfinance "github.com/agencycrm/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FinanceHandler exposes deal, expense and payment endpoints plus the
// manual monthly generation trigger
type FinanceHandler struct {
	BaseHandler
	deals      *appfinance.DealService
	expenses   *appfinance.ExpenseService
	payments   *appfinance.PaymentService
	generation *appfinance.GenerationService
}

// NewFinanceHandler creates a finance handler
func NewFinanceHandler(
	deals *appfinance.DealService,
	expenses *appfinance.ExpenseService,
	payments *appfinance.PaymentService,
	generation *appfinance.GenerationService,
) *FinanceHandler {
	return &FinanceHandler{
		deals:      deals,
		expenses:   expenses,
		payments:   payments,
		generation: generation,
	}
}

// GenerateRequest selects the month for a manual generation run.
// An empty month means the current month.
type GenerateRequest struct {
	Month string `json:"month"`
}

// CreateDeal handles POST /deals
func (h *FinanceHandler) CreateDeal(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appfinance.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.deals.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetDeal handles GET /deals/:id
func (h *FinanceHandler) GetDeal(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	dealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid deal ID")
		return
	}

	resp, err := h.deals.Get(c.Request.Context(), tenantID, dealID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListDeals handles GET /deals. A client_id query parameter narrows
// the listing to one client.
func (h *FinanceHandler) ListDeals(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		clientID, err := uuid.Parse(clientIDStr)
		if err != nil {
			h.BadRequest(c, "Invalid client ID")
			return
		}
		deals, err := h.deals.ListByClient(c.Request.Context(), tenantID, clientID)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, deals)
		return
	}

	var filter appfinance.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	deals, err := h.deals.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, deals)
}

// UpdateDeal handles PUT /deals/:id
func (h *FinanceHandler) UpdateDeal(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	dealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid deal ID")
		return
	}

	var req appfinance.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.deals.Update(c.Request.Context(), tenantID, dealID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteDeal handles DELETE /deals/:id
func (h *FinanceHandler) DeleteDeal(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	dealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid deal ID")
		return
	}

	if err := h.deals.Delete(c.Request.Context(), tenantID, dealID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateExpense handles POST /expenses
func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appfinance.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.expenses.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListExpenses handles GET /expenses with an optional month filter
func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var filter appfinance.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	expenses, err := h.expenses.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, expenses)
}

// UpdateExpense handles PUT /expenses/:id
func (h *FinanceHandler) UpdateExpense(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	var req appfinance.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.expenses.Update(c.Request.Context(), tenantID, expenseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteExpense handles DELETE /expenses/:id
func (h *FinanceHandler) DeleteExpense(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	if err := h.expenses.Delete(c.Request.Context(), tenantID, expenseID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// CreatePayment handles POST /payments
func (h *FinanceHandler) CreatePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req appfinance.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.payments.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListPayments handles GET /payments with an optional month filter
func (h *FinanceHandler) ListPayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var filter appfinance.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	payments, err := h.payments.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, payments)
}

// UpdatePayment handles PUT /payments/:id
func (h *FinanceHandler) UpdatePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req appfinance.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request format: "+err.Error())
		return
	}

	resp, err := h.payments.Update(c.Request.Context(), tenantID, paymentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeletePayment handles DELETE /payments/:id
func (h *FinanceHandler) DeletePayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.payments.Delete(c.Request.Context(), tenantID, paymentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Generate handles POST /finance/generate. Running it twice for the
// same month creates nothing new.
func (h *FinanceHandler) Generate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, "Invalid request format: "+err.Error())
			return
		}
	}
	if req.Month == "" {
		req.Month = time.Now().Format("2006-01")
	}

	ctx := c.Request.Context()
	expenses, err := h.generation.GenerateMonthlyExpenses(ctx, tenantID, req.Month)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	payments, err := h.generation.GenerateMonthlyPayments(ctx, tenantID, req.Month)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, appfinance.GenerationResult{
		Month:    req.Month,
		Expenses: expenses,
		Payments: payments,
	})
}
