package reconcile_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/warp/leave-tracker/leave"
	"github.com/warp/leave-tracker/reconcile"
	"github.com/warp/leave-tracker/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testYears = leave.Years{2023, 2024, 2025, 2026}

func newTestStore(t *testing.T, years leave.Years) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:", years)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// buildSheet writes rows into an in-memory .xlsx, first row as header.
func buildSheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	for i := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", addr, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func rosterHeader(years ...string) []any {
	header := []any{"工号", "姓名", "邮箱"}
	for _, y := range years {
		header = append(header, y+"年度总天数")
	}
	return header
}

// =============================================================================
// ROSTER IMPORT
// =============================================================================

func TestImportRoster_InsertsAllRows(t *testing.T) {
	store := newTestStore(t, testYears)

	buf := buildSheet(t, [][]any{
		rosterHeader("2023", "2024", "2025", "2026"),
		{1, "Chen Wei", "chen@example.com", 10, 12.5, 15, 15},
		{2, "Li Na", "li@example.com", 5, 5, 5, 5},
	})

	require.NoError(t, reconcile.ImportRoster(context.Background(), store, testYears, buf))

	emps, err := store.ListEmployees(context.Background())
	require.NoError(t, err)
	require.Len(t, emps, 2)
	assert.Equal(t, "Chen Wei", emps[0].Name)
	assert.True(t, emps[0].TotalEntitlement().Equal(dec("52.5")))
}

func TestImportRoster_OlderFileMissingNewYearColumns(t *testing.T) {
	// GIVEN: An export from when only 2023-2025 existed
	// WHEN: Imported against a 2023-2026 bucket set
	// THEN: The 2026 bucket is zero-filled

	store := newTestStore(t, testYears)

	buf := buildSheet(t, [][]any{
		rosterHeader("2023", "2024", "2025"),
		{1, "Chen Wei", "chen@example.com", 10, 10, 10},
	})

	require.NoError(t, reconcile.ImportRoster(context.Background(), store, testYears, buf))

	emp, err := store.GetEmployee(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, emp.Entitlements, 4)
	assert.True(t, emp.Entitlements[3].IsZero())
	assert.True(t, emp.TotalEntitlement().Equal(dec("30")))
}

func TestImportRoster_MissingRequiredColumnNamesIt(t *testing.T) {
	store := newTestStore(t, testYears)

	// No 2025 column.
	buf := buildSheet(t, [][]any{
		rosterHeader("2023", "2024"),
		{1, "Chen Wei", "chen@example.com", 10, 10},
	})

	err := reconcile.ImportRoster(context.Background(), store, testYears, buf)

	var missing *leave.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Columns, "2025年度总天数")
	assert.True(t, leave.IsValidation(err))

	emps, lerr := store.ListEmployees(context.Background())
	require.NoError(t, lerr)
	assert.Empty(t, emps, "nothing inserted on rejection")
}

func TestImportRoster_EmptyRequiredCellRejectsWholeFile(t *testing.T) {
	store := newTestStore(t, testYears)

	buf := buildSheet(t, [][]any{
		rosterHeader("2023", "2024", "2025"),
		{1, "Chen Wei", "chen@example.com", 10, 10, 10},
		{2, "", "li@example.com", 5, 5, 5},
	})

	err := reconcile.ImportRoster(context.Background(), store, testYears, buf)

	var empty *leave.EmptyCellError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "姓名", empty.Column)
	assert.Equal(t, 3, empty.Row)

	emps, lerr := store.ListEmployees(context.Background())
	require.NoError(t, lerr)
	assert.Empty(t, emps, "valid rows before the bad one are not kept")
}

func TestImportRoster_DuplicateIDAbortsBatch(t *testing.T) {
	store := newTestStore(t, testYears)
	ctx := context.Background()
	require.NoError(t, store.CreateEmployee(ctx, leave.Employee{ID: 2, Name: "x", Email: "x@x"}))

	buf := buildSheet(t, [][]any{
		rosterHeader("2023", "2024", "2025"),
		{1, "a", "a@x", 1, 1, 1},
		{2, "b", "b@x", 1, 1, 1},
	})

	err := reconcile.ImportRoster(ctx, store, testYears, buf)
	assert.ErrorIs(t, err, leave.ErrDuplicateEmployee)

	emps, lerr := store.ListEmployees(ctx)
	require.NoError(t, lerr)
	assert.Len(t, emps, 1, "batch rolled back")
}

func TestImportRoster_UnreadableFile(t *testing.T) {
	store := newTestStore(t, testYears)

	err := reconcile.ImportRoster(context.Background(), store, testYears, bytes.NewBufferString("not a spreadsheet"))

	assert.True(t, leave.IsValidation(err))
}

// =============================================================================
// ROSTER EXPORT
// =============================================================================

func TestExportRoster_RoundTripsIntoEmptyStore(t *testing.T) {
	src := newTestStore(t, testYears)
	ctx := context.Background()
	require.NoError(t, src.CreateEmployee(ctx, leave.Employee{
		ID: 7, Name: "Chen Wei", Email: "chen@example.com",
		Entitlements: []decimal.Decimal{dec("10"), dec("12.5"), dec("15"), dec("0")},
	}))

	var buf bytes.Buffer
	require.NoError(t, reconcile.ExportRoster(ctx, src, testYears, &buf))

	dst := newTestStore(t, testYears)
	require.NoError(t, reconcile.ImportRoster(ctx, dst, testYears, &buf))

	emp, err := dst.GetEmployee(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, "Chen Wei", emp.Name)
	assert.True(t, emp.TotalEntitlement().Equal(dec("37.5")))
}
