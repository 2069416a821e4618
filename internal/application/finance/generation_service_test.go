package finance

import (
	"context"
	"testing"

	"github.com/agencycrm/backend/internal/domain/audit"
	"github.com/agencycrm/backend/internal/domain/crm"
	"github.com/agencycrm/backend/internal/domain/finance"
	"github.com/agencycrm/backend/internal/infrastructure/scheduler"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) seedRecurringExpense(t *testing.T, client *crm.Client, supplier string, amount int64) *finance.Expense {
	t.Helper()
	expense, err := finance.NewExpense(env.tenantID, client.ID, supplier, "2026-07", decimal.NewFromInt(amount))
	require.NoError(t, err)
	expense.MarkRecurring(true)
	require.NoError(t, env.expenses.Save(context.Background(), expense))
	return expense
}

func TestGenerateMonthlyExpenses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := env.seedClient(t, "Acme", 5000)
	other := env.seedClient(t, "Beta", 3000)
	env.seedRecurringExpense(t, client, "Google Ads", 1200)
	env.seedRecurringExpense(t, other, "Google Ads", 800)

	// same supplier for a different client is a distinct dedup key
	created, err := env.generationSvc.GenerateMonthlyExpenses(ctx, env.tenantID, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	rows, err := env.expenses.FindByMonth(ctx, env.tenantID, "2026-08")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.False(t, row.IsRecurring)
		assert.Equal(t, "2026-08", row.Month)
	}

	snap := env.store.Snapshot(env.tenantID)
	assert.Len(t, snap.Expenses, 2)

	found := false
	for _, e := range snap.Activity {
		if e.ActionType == audit.ActionGenerated && e.EntityType == "expense" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateMonthlyExpensesIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := env.seedClient(t, "Acme", 5000)
	env.seedRecurringExpense(t, client, "Google Ads", 1200)

	created, err := env.generationSvc.GenerateMonthlyExpenses(ctx, env.tenantID, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// second run for the same month creates nothing
	created, err = env.generationSvc.GenerateMonthlyExpenses(ctx, env.tenantID, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	rows, err := env.expenses.FindByMonth(ctx, env.tenantID, "2026-08")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGenerateMonthlyExpensesInvalidMonth(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.generationSvc.GenerateMonthlyExpenses(context.Background(), env.tenantID, "08-2026")
	require.Error(t, err)
}

func TestGenerateMonthlyPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedClient(t, "Acme", 5000)
	env.seedClient(t, "Beta", 3000)

	// zero retainer and inactive clients are skipped
	env.seedClient(t, "Free Tier", 0)
	frozen := env.seedClient(t, "Frozen", 4000)
	require.NoError(t, frozen.SetStatus(crm.ClientStatusFrozen))
	require.NoError(t, env.clients.Save(ctx, frozen))

	created, err := env.generationSvc.GenerateMonthlyPayments(ctx, env.tenantID, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	rows, err := env.payments.FindByMonth(ctx, env.tenantID, "2026-08")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.False(t, row.Paid)
		assert.True(t, row.Amount.IsPositive())
	}

	snap := env.store.Snapshot(env.tenantID)
	assert.Len(t, snap.Payments, 2)
}

func TestGenerateMonthlyPaymentsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedClient(t, "Acme", 5000)

	created, err := env.generationSvc.GenerateMonthlyPayments(ctx, env.tenantID, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	created, err = env.generationSvc.GenerateMonthlyPayments(ctx, env.tenantID, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	assert.Equal(t, 1, env.payments.count())
}

func TestGenerationServiceExecute(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := env.seedClient(t, "Acme", 5000)
	env.seedRecurringExpense(t, client, "Google Ads", 1200)

	job := scheduler.NewJob(env.tenantID, scheduler.JobTypeGenerateExpenses, "2026-08", 3)
	generated, err := env.generationSvc.Execute(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, 1, generated)

	job = scheduler.NewJob(env.tenantID, scheduler.JobTypeGeneratePayments, "2026-08", 3)
	generated, err = env.generationSvc.Execute(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, 1, generated)

	job = scheduler.NewJob(env.tenantID, "UNKNOWN", "2026-08", 3)
	_, err = env.generationSvc.Execute(ctx, job)
	require.ErrorIs(t, err, scheduler.ErrInvalidJobType)
}
