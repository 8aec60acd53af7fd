/*
Package leave contains the core annual-leave domain model.

PURPOSE:
  This package holds the domain types and algorithms for tracking employee
  leave entitlements and consumption. It knows nothing about HTTP, SQLite,
  or spreadsheets - callers feed it plain records and it computes balances.

KEY CONCEPTS IN THIS FILE (types.go):
  - Years: The ordered list of tracked calendar years (the year-bucket set)
  - Employee: An employee with one entitlement amount per tracked year
  - Event: One recorded instance of leave taken
  - BalanceLine: An event paired with the remaining balance as of that event

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Determinism: Balances are always recomputed by replaying events,
     never cached or incrementally maintained
  3. Injectability: The year set is passed in explicitly, never read from
     the wall clock inside the domain

SEE ALSO:
  - entitlement.go: Bucket normalization and totals
  - ledger.go: Chronological replay and running balances
  - errors.go: Sentinel and structured errors
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE KINDS
// =============================================================================

// KindAnnual is the leave kind that consumes the annual-leave balance.
// It is also the default kind when a record carries none. Every component
// that creates or interprets events uses this constant - it is never
// re-declared at call sites.
const KindAnnual = "年假"

// Half-day period markers carried on start/end boundaries.
const (
	PeriodMorning   = "上午"
	PeriodAfternoon = "下午"
)

// =============================================================================
// YEARS - The growing set of entitlement buckets
// =============================================================================

// StartYear is the first calendar year the system tracked entitlements for.
// The bucket set always begins here.
const StartYear = 2023

// Years is the ordered list of tracked calendar years. The set only ever
// grows at the end: a new year appears when the calendar rolls over, and
// buckets are never removed or reordered.
type Years []int

// KnownYears returns the bucket set as of the given instant:
// StartYear through now's calendar year, inclusive. Computed once at
// process start and passed around explicitly so tests can pin it.
func KnownYears(now time.Time) Years {
	last := now.Year()
	if last < StartYear {
		last = StartYear
	}
	ys := make(Years, 0, last-StartYear+1)
	for y := StartYear; y <= last; y++ {
		ys = append(ys, y)
	}
	return ys
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is an employee record. ID is caller-assigned and immutable.
// Entitlements is parallel to the Years list: Entitlements[i] is the
// amount granted for Years[i]. Records read from storage may carry fewer
// values than the current year set; Normalize pads them (see entitlement.go).
type Employee struct {
	ID           int64
	Name         string
	Email        string
	Entitlements []decimal.Decimal
}

// =============================================================================
// EVENT - One recorded instance of leave taken
// =============================================================================

// Event is a single leave record owned by an employee.
//
// Days is nil when the day-count is unknown (e.g. unparseable legacy data);
// unknown counts as zero for balance arithmetic but stays nil for display.
// AppliedAt is an opaque label, not a validated timestamp - events are
// ordered by comparing these strings lexically (see ledger.go).
type Event struct {
	ID         int64
	EmployeeID int64
	Summary    string
	StartDate  *string
	EndDate    *string
	Days       *decimal.Decimal
	AppliedAt  *string
	Kind       string
	Remark     *string
}

// DaysOrZero returns the day-count, treating unknown as zero.
func (e Event) DaysOrZero() decimal.Decimal {
	if e.Days == nil {
		return decimal.Zero
	}
	return *e.Days
}

// =============================================================================
// BALANCE LINE - Point-in-time balance attached to an event
// =============================================================================

// BalanceLine pairs an event with the remaining annual-leave balance as of
// that event. A slice of BalanceLines is the balance trail: same order as
// the replay, one line per event.
type BalanceLine struct {
	Event     Event
	Remaining decimal.Decimal
}
