/*
export.go - Spreadsheet export

PURPOSE:
  Writes the roster and leave-history spreadsheets. The history layout is
  the canonical shape: whatever this file writes, history.go must accept
  back, and re-importing an unchanged export must insert zero rows.

BALANCE COLUMNS:
  The total and running-remaining columns are computed with the same
  leave.Trail call the views use. Export never recomputes the balance its
  own way - one code path, everywhere.

SEE ALSO:
  - history.go / roster.go: The import side of these layouts
  - leave/ledger.go: The replay that fills the remaining column
*/
package reconcile

import (
	"context"
	"io"

	"github.com/tealeg/xlsx"
	"github.com/warp/leave-tracker/leave"
)

// ExportRoster writes all employees as a roster spreadsheet: id, name,
// email, one entitlement column per tracked year.
func ExportRoster(ctx context.Context, store Store, years leave.Years, w io.Writer) error {
	emps, err := store.ListEmployees(ctx)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sheet1")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, label := range rosterColumns(years) {
		header.AddCell().Value = label
	}

	for _, emp := range emps {
		emp.Normalize(years)
		row := sheet.AddRow()
		row.AddCell().SetInt64(emp.ID)
		row.AddCell().Value = emp.Name
		row.AddCell().Value = emp.Email
		for _, v := range emp.Entitlements {
			row.AddCell().Value = v.String()
		}
	}

	return file.Write(w)
}

// ExportHistory writes the leave history of one employee. Returns
// leave.ErrEmployeeNotFound when the id is unknown.
func ExportHistory(ctx context.Context, store Store, years leave.Years, employeeID int64, w io.Writer) error {
	emp, err := store.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return leave.ErrEmployeeNotFound
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sheet1")
	if err != nil {
		return err
	}
	writeHistoryHeader(sheet, years)
	if err := writeEmployeeHistory(ctx, store, sheet, years, *emp); err != nil {
		return err
	}
	return file.Write(w)
}

// ExportAllHistory writes every employee's leave history into one sheet,
// grouped by employee in id order.
func ExportAllHistory(ctx context.Context, store Store, years leave.Years, w io.Writer) error {
	emps, err := store.ListEmployees(ctx)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sheet1")
	if err != nil {
		return err
	}
	writeHistoryHeader(sheet, years)
	for _, emp := range emps {
		if err := writeEmployeeHistory(ctx, store, sheet, years, emp); err != nil {
			return err
		}
	}
	return file.Write(w)
}

// =============================================================================
// LAYOUT
// =============================================================================

func rosterColumns(years leave.Years) []string {
	cols := []string{colID, colName, colEmail}
	for _, y := range years {
		cols = append(cols, yearColumn(y))
	}
	return cols
}

func writeHistoryHeader(sheet *xlsx.Sheet, years leave.Years) {
	row := sheet.AddRow()
	for _, label := range rosterColumns(years) {
		row.AddCell().Value = label
	}
	for _, label := range []string{colSummary, colTotal, colRemaining, colAppliedAt, colKind, colDays, colRemark} {
		row.AddCell().Value = label
	}
}

// writeEmployeeHistory appends one employee's balance trail. An employee
// with no events still gets one row, with blank leave fields and the
// remaining column equal to the untouched total.
func writeEmployeeHistory(ctx context.Context, store Store, sheet *xlsx.Sheet, years leave.Years, emp leave.Employee) error {
	events, err := store.EventsByEmployee(ctx, emp.ID)
	if err != nil {
		return err
	}

	emp.Normalize(years)
	total := emp.TotalEntitlement()

	if len(events) == 0 {
		row := addEmployeeCells(sheet, emp)
		row.AddCell().Value = "" // summary
		row.AddCell().Value = total.String()
		row.AddCell().Value = total.String()
		return nil
	}

	for _, line := range leave.Trail(total, events) {
		row := addEmployeeCells(sheet, emp)
		row.AddCell().Value = line.Event.Summary
		row.AddCell().Value = total.String()
		row.AddCell().Value = line.Remaining.String()
		row.AddCell().Value = strDeref(line.Event.AppliedAt)
		row.AddCell().Value = line.Event.Kind
		if line.Event.Days != nil {
			row.AddCell().Value = line.Event.Days.String()
		} else {
			row.AddCell().Value = ""
		}
		row.AddCell().Value = strDeref(line.Event.Remark)
	}
	return nil
}

func addEmployeeCells(sheet *xlsx.Sheet, emp leave.Employee) *xlsx.Row {
	row := sheet.AddRow()
	row.AddCell().SetInt64(emp.ID)
	row.AddCell().Value = emp.Name
	row.AddCell().Value = emp.Email
	for _, v := range emp.Entitlements {
		row.AddCell().Value = v.String()
	}
	return row
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
