package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpense(t *testing.T) {
	tenantID := uuid.New()
	clientID := uuid.New()

	t.Run("creates expense", func(t *testing.T) {
		expense, err := NewExpense(tenantID, clientID, "Google Ads", "2026-08", decimal.NewFromInt(900))

		require.NoError(t, err)
		assert.Equal(t, "Google Ads", expense.Supplier)
		assert.Equal(t, "2026-08", expense.Month)
		assert.False(t, expense.IsRecurring)
	})

	t.Run("rejects bad month key", func(t *testing.T) {
		_, err := NewExpense(tenantID, clientID, "Google Ads", "August 2026", decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewExpense(tenantID, clientID, "Google Ads", "2026-08", decimal.NewFromInt(-5))
		assert.Error(t, err)
	})

	t.Run("rejects missing client", func(t *testing.T) {
		_, err := NewExpense(tenantID, uuid.Nil, "Google Ads", "2026-08", decimal.Zero)
		assert.Error(t, err)
	})
}

func TestExpenseCopyForMonth(t *testing.T) {
	expense, err := NewExpense(uuid.New(), uuid.New(), "Meta", "2026-07", decimal.NewFromInt(450))
	require.NoError(t, err)
	expense.MarkRecurring(true)

	copied := expense.CopyForMonth("2026-08")

	assert.NotEqual(t, expense.ID, copied.ID)
	assert.Equal(t, expense.ClientID, copied.ClientID)
	assert.Equal(t, expense.Supplier, copied.Supplier)
	assert.Equal(t, "2026-08", copied.Month)
	assert.True(t, copied.Amount.Equal(expense.Amount))
	assert.False(t, copied.IsRecurring)
	assert.Equal(t, expense.DedupKey(), copied.DedupKey())
}

func TestDealClose(t *testing.T) {
	deal, err := NewDeal(uuid.New(), uuid.New(), "Site redesign", decimal.NewFromInt(25000))
	require.NoError(t, err)

	t.Run("rejects non-terminal status", func(t *testing.T) {
		assert.Error(t, deal.Close(DealStatusOpen))
	})

	t.Run("closes once", func(t *testing.T) {
		require.NoError(t, deal.Close(DealStatusWon))
		assert.NotNil(t, deal.ClosedAt)
		assert.Error(t, deal.Close(DealStatusLost))
	})
}

func TestPaymentMarkPaid(t *testing.T) {
	payment, err := NewPayment(uuid.New(), uuid.New(), "2026-08", decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.False(t, payment.Paid)

	payment.MarkPaid(PaymentMethodCredit)

	assert.True(t, payment.Paid)
	assert.NotNil(t, payment.PaidAt)
	assert.Equal(t, PaymentMethodCredit, payment.Method)
}
