/*
store.go - Persistence surface the reconciler depends on

PURPOSE:
  Narrow interface over the record store so imports and exports can be
  tested against any implementation. store/sqlite satisfies it.
*/
package reconcile

import (
	"context"

	"github.com/warp/leave-tracker/leave"
)

// Store is what the reconciler needs from persistence.
type Store interface {
	// ListEmployees returns all employees ordered by id.
	ListEmployees(ctx context.Context) ([]leave.Employee, error)

	// GetEmployee returns nil (not an error) when the id is unknown.
	GetEmployee(ctx context.Context, id int64) (*leave.Employee, error)

	// InsertEmployees appends a batch atomically: either every employee is
	// inserted or none, with leave.ErrDuplicateEmployee on an id conflict.
	InsertEmployees(ctx context.Context, emps []leave.Employee) error

	// InsertEvent appends one leave event and returns its assigned id.
	InsertEvent(ctx context.Context, ev leave.Event) (int64, error)

	// EventsByEmployee returns one employee's events in replay order.
	EventsByEmployee(ctx context.Context, employeeID int64) ([]leave.Event, error)

	// HasDuplicateEvent reports whether an event already exists for the
	// employee with the same application-time label and summary. Both
	// fields compare exactly, including both being absent.
	HasDuplicateEvent(ctx context.Context, employeeID int64, appliedAt *string, summary string) (bool, error)
}
