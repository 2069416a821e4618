package crm

import (
	"github.com/agencycrm/backend/internal/domain/crm"
)

// DetectRetainerChange compares a client before and after an update and
// returns an audit record when the monthly retainer or the supplier cost
// changed. Comparison is value equality on those two fields only; every
// other field may change without producing a record. At most one record
// is produced per update, carrying old and new values of both fields.
func DetectRetainerChange(before, after *crm.Client) *crm.RetainerChange {
	if before.MonthlyRetainer.Equal(after.MonthlyRetainer) &&
		before.SupplierCostMonthly.Equal(after.SupplierCostMonthly) {
		return nil
	}
	return crm.NewRetainerChange(
		after.TenantID,
		after.ID,
		before.MonthlyRetainer,
		after.MonthlyRetainer,
		before.SupplierCostMonthly,
		after.SupplierCostMonthly,
	)
}
