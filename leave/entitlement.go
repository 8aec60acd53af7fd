/*
entitlement.go - Year-bucket normalization and total entitlement

PURPOSE:
  An employee's entitlement is stored as one amount per tracked calendar
  year. The bucket set grows over time, so records written before a year
  existed carry fewer values than the current set. This file normalizes
  such records and computes the single total every caller uses.

KEY INVARIANT:
  Missing buckets are always the most-recently-added years, never ones in
  the middle. Normalization therefore only ever appends zeros at the end.

WHY ONE TOTAL FUNCTION?
  The total feeds the balance trail on the employee view, the grouped
  all-leaves view, and both export paths. Computing it in one place is what
  keeps those four call sites in agreement - any divergence is a defect.

SEE ALSO:
  - ledger.go: Consumes the total as the replay starting point
  - store/sqlite: Adds the physical year columns on startup
*/
package leave

import "github.com/shopspring/decimal"

// Normalize pads the employee's entitlement buckets with zeros so there is
// exactly one value per tracked year. Padding is appended at the end;
// existing values are never moved or trimmed. Safe to call repeatedly.
func (e *Employee) Normalize(years Years) {
	for len(e.Entitlements) < len(years) {
		e.Entitlements = append(e.Entitlements, decimal.Zero)
	}
}

// TotalEntitlement sums all entitlement buckets. Callers normalize first;
// the sum is the same either way since padding is zero-valued.
func (e Employee) TotalEntitlement() decimal.Decimal {
	total := decimal.Zero
	for _, v := range e.Entitlements {
		total = total.Add(v)
	}
	return total
}
