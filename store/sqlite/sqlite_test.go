package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-tracker/leave"
	"github.com/warp/leave-tracker/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T, years leave.Years) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:", years)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ptr[T any](v T) *T { return &v }

func testEmployee(id int64) leave.Employee {
	return leave.Employee{
		ID:           id,
		Name:         "Chen Wei",
		Email:        "chen.wei@example.com",
		Entitlements: []decimal.Decimal{dec("10"), dec("12.5"), dec("15")},
	}
}

// =============================================================================
// SCHEMA GROWTH
// =============================================================================

func TestMigrate_NewYearColumnAppendedOnReopen(t *testing.T) {
	// GIVEN: A database created when only 2023-2024 were tracked
	// WHEN: Reopened with 2025 in the year set
	// THEN: Existing employees read back with a zero 2025 bucket

	path := filepath.Join(t.TempDir(), "leave.db")

	store, err := sqlite.New(path, leave.Years{2023, 2024})
	require.NoError(t, err)

	emp := leave.Employee{ID: 1, Name: "a", Email: "a@x", Entitlements: []decimal.Decimal{dec("10"), dec("5")}}
	require.NoError(t, store.CreateEmployee(context.Background(), emp))
	require.NoError(t, store.Close())

	store, err = sqlite.New(path, leave.Years{2023, 2024, 2025})
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetEmployee(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Entitlements, 3)
	assert.True(t, got.Entitlements[0].Equal(dec("10")))
	assert.True(t, got.Entitlements[1].Equal(dec("5")))
	assert.True(t, got.Entitlements[2].IsZero())
}

// =============================================================================
// EMPLOYEE CRUD
// =============================================================================

func TestCreateEmployee_DuplicateIDConflicts(t *testing.T) {
	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	ctx := context.Background()

	require.NoError(t, store.CreateEmployee(ctx, testEmployee(1)))
	err := store.CreateEmployee(ctx, testEmployee(1))

	assert.ErrorIs(t, err, leave.ErrDuplicateEmployee)
}

func TestGetEmployee_UnknownIDReturnsNil(t *testing.T) {
	store := newTestStore(t, leave.Years{2023, 2024, 2025})

	got, err := store.GetEmployee(context.Background(), 999)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateEmployee_ReplacesAllBuckets(t *testing.T) {
	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, testEmployee(1)))

	updated := leave.Employee{
		ID: 1, Name: "Chen W.", Email: "cw@example.com",
		Entitlements: []decimal.Decimal{dec("1"), dec("2"), dec("3")},
	}
	require.NoError(t, store.UpdateEmployee(ctx, updated))

	got, err := store.GetEmployee(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Chen W.", got.Name)
	assert.True(t, got.TotalEntitlement().Equal(dec("6")))
}

func TestUpdateEmployee_UnknownIDNotFound(t *testing.T) {
	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	err := store.UpdateEmployee(context.Background(), testEmployee(42))
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestDeleteEmployee_CascadesToLeaveRecords(t *testing.T) {
	// GIVEN: An employee with two leave records
	// WHEN: The employee is deleted
	// THEN: The records are gone and lookups report not-found

	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, testEmployee(1)))

	id1, err := store.InsertEvent(ctx, leave.Event{EmployeeID: 1, Summary: "a", Kind: leave.KindAnnual})
	require.NoError(t, err)
	id2, err := store.InsertEvent(ctx, leave.Event{EmployeeID: 1, Summary: "b", Kind: leave.KindAnnual})
	require.NoError(t, err)

	require.NoError(t, store.DeleteEmployee(ctx, 1))

	for _, id := range []int64{id1, id2} {
		ev, err := store.GetEvent(ctx, 1, id)
		require.NoError(t, err)
		assert.Nil(t, ev)
	}
	gone, err := store.GetEmployee(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

// =============================================================================
// ATOMIC BATCH INSERT
// =============================================================================

func TestInsertEmployees_AllOrNothingOnDuplicate(t *testing.T) {
	// GIVEN: Id 2 already exists
	// WHEN: A batch of [1, 2, 3] is inserted
	// THEN: The whole batch rolls back - id 1 and 3 are not inserted

	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, testEmployee(2)))

	err := store.InsertEmployees(ctx, []leave.Employee{testEmployee(1), testEmployee(2), testEmployee(3)})
	assert.ErrorIs(t, err, leave.ErrDuplicateEmployee)

	emps, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.Equal(t, int64(2), emps[0].ID)
}

// =============================================================================
// LEAVE RECORDS
// =============================================================================

func TestInsertEvent_SequentialIDs(t *testing.T) {
	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, testEmployee(1)))

	id1, err := store.InsertEvent(ctx, leave.Event{EmployeeID: 1, Summary: "a", Kind: leave.KindAnnual})
	require.NoError(t, err)
	id2, err := store.InsertEvent(ctx, leave.Event{EmployeeID: 1, Summary: "b", Kind: leave.KindAnnual})
	require.NoError(t, err)

	assert.Greater(t, id2, id1)
}

func TestEventsByEmployee_OrderedByApplicationTimeNullsFirst(t *testing.T) {
	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, testEmployee(1)))

	// Inserted out of order; one record has no application time.
	_, err := store.InsertEvent(ctx, leave.Event{EmployeeID: 1, Summary: "feb", Kind: leave.KindAnnual, AppliedAt: ptr("2024-02-01")})
	require.NoError(t, err)
	_, err = store.InsertEvent(ctx, leave.Event{EmployeeID: 1, Summary: "none", Kind: leave.KindAnnual})
	require.NoError(t, err)
	_, err = store.InsertEvent(ctx, leave.Event{EmployeeID: 1, Summary: "jan", Kind: leave.KindAnnual, AppliedAt: ptr("2024-01-01")})
	require.NoError(t, err)

	events, err := store.EventsByEmployee(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "none", events[0].Summary)
	assert.Equal(t, "jan", events[1].Summary)
	assert.Equal(t, "feb", events[2].Summary)
}

func TestEvent_NullableFieldsRoundTrip(t *testing.T) {
	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, testEmployee(1)))

	days := dec("2.5")
	in := leave.Event{
		EmployeeID: 1,
		Summary:    "2024/1/1 上午~2024/1/3 下午, 2.5天 年假",
		StartDate:  ptr("2024-1-1 上午"),
		EndDate:    ptr("2024-1-3 下午"),
		Days:       &days,
		AppliedAt:  ptr("2024-01-04 09:00"),
		Kind:       leave.KindAnnual,
	}
	id, err := store.InsertEvent(ctx, in)
	require.NoError(t, err)

	got, err := store.GetEvent(ctx, 1, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in.Summary, got.Summary)
	assert.Equal(t, "2024-1-1 上午", *got.StartDate)
	require.NotNil(t, got.Days)
	assert.True(t, got.Days.Equal(days))
	assert.Nil(t, got.Remark)
}

func TestUpdateEvent_UnknownIDNotFound(t *testing.T) {
	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, testEmployee(1)))

	err := store.UpdateEvent(ctx, leave.Event{ID: 99, EmployeeID: 1, Summary: "x", Kind: leave.KindAnnual})
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
}

// =============================================================================
// DUPLICATE DETECTION
// =============================================================================

func TestHasDuplicateEvent_MatchesTimestampAndSummary(t *testing.T) {
	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, testEmployee(1)))

	_, err := store.InsertEvent(ctx, leave.Event{
		EmployeeID: 1, Summary: "s", Kind: leave.KindAnnual, AppliedAt: ptr("2024-01-01"),
	})
	require.NoError(t, err)

	dup, err := store.HasDuplicateEvent(ctx, 1, ptr("2024-01-01"), "s")
	require.NoError(t, err)
	assert.True(t, dup)

	// Different timestamp, same summary: not a duplicate.
	dup, err = store.HasDuplicateEvent(ctx, 1, ptr("2024-01-02"), "s")
	require.NoError(t, err)
	assert.False(t, dup)

	// Different employee: not a duplicate.
	require.NoError(t, store.CreateEmployee(ctx, testEmployee(2)))
	dup, err = store.HasDuplicateEvent(ctx, 2, ptr("2024-01-01"), "s")
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestHasDuplicateEvent_BothTimestampsAbsentMatch(t *testing.T) {
	// Two records with NULL application times still compare equal.
	store := newTestStore(t, leave.Years{2023, 2024, 2025})
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, testEmployee(1)))

	_, err := store.InsertEvent(ctx, leave.Event{EmployeeID: 1, Summary: "s", Kind: leave.KindAnnual})
	require.NoError(t, err)

	dup, err := store.HasDuplicateEvent(ctx, 1, nil, "s")
	require.NoError(t, err)
	assert.True(t, dup)
}
