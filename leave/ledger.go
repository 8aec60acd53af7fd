/*
ledger.go - Chronological replay of leave events

PURPOSE:
  Computes the running remaining-balance trail for one employee by
  replaying that employee's leave events, in order, against the total
  entitlement. Balance is always a derived value - there is no stored
  "remaining" field that can drift out of sync.

ORDERING:
  Events are ordered by their application-time label compared as an opaque
  string, unknown labels first. This matches the record store's
  ORDER BY application_time ASC and is deliberate: the labels are free
  text, not validated timestamps, so a true date parse would change
  observable behavior on legacy data. Do not "fix" this into date parsing.

DEDUCTION RULE:
  Only events of kind KindAnnual with a known, strictly positive day-count
  reduce the balance. Sick leave, unpaid leave, and other kinds are carried
  in the trail but never deducted. Unknown day-counts count as zero.

DETERMINISM:
  Replay is a pure function of (total, events). The same inputs always
  produce the same trail, and every read recomputes from scratch.

SEE ALSO:
  - entitlement.go: Produces the replay starting point
  - reconcile package: Bulk-loads the events this file replays
*/
package leave

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SortEvents orders events for replay: ascending by AppliedAt compared as
// an opaque string, events without an application time first. The sort is
// stable, so equal keys keep their insertion order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].AppliedAt, events[j].AppliedAt
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return *a < *b
		}
	})
}

// Replay computes the balance trail for a sequence of events already in
// replay order. It walks the sequence once, deducting annual-leave
// day-counts from the running remainder, and attaches the post-event
// remainder to each event. The output order equals the input order;
// events are never reordered after balances are attached.
func Replay(total decimal.Decimal, events []Event) []BalanceLine {
	trail := make([]BalanceLine, 0, len(events))
	remaining := total
	for _, ev := range events {
		days := ev.DaysOrZero()
		if ev.Kind == KindAnnual && days.IsPositive() {
			remaining = remaining.Sub(days)
		}
		trail = append(trail, BalanceLine{Event: ev, Remaining: remaining})
	}
	return trail
}

// Trail sorts the events into replay order and computes the balance trail
// in one step. This is the entry point the views and exports share.
func Trail(total decimal.Decimal, events []Event) []BalanceLine {
	SortEvents(events)
	return Replay(total, events)
}
