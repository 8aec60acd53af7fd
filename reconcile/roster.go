/*
roster.go - Bulk employee roster import

PURPOSE:
  Reads an uploaded roster spreadsheet and appends every row to the record
  store as one atomic unit. The roster path is strict where the history
  path is forgiving: a missing required column, an empty required cell, or
  a duplicate id rejects the whole file and nothing is inserted.

COLUMN TOLERANCE:
  Required: id, name, email, and the three earliest year columns. Year
  columns added after 2025 may be absent from older files; those buckets
  are filled with zero so the row still satisfies the current schema.

SEE ALSO:
  - history.go: The forgiving, row-level import path
  - export.go: Produces the files this importer accepts back
*/
package reconcile

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/warp/leave-tracker/leave"
)

// ImportRoster reads an .xlsx roster from r and inserts all rows
// atomically. years is the injected bucket set; file columns beyond the
// required minimum are used when present and zero-filled when absent.
func ImportRoster(ctx context.Context, store Store, years leave.Years, r io.Reader) error {
	rows, header, err := readSheet(r)
	if err != nil {
		return err
	}

	required := []string{colID, colName, colEmail}
	for i, y := range years {
		if i >= minYearColumns {
			break
		}
		required = append(required, yearColumn(y))
	}
	if missing := missingColumns(header, required); len(missing) > 0 {
		return &leave.MissingColumnError{Columns: missing}
	}

	seen := make(map[int64]bool)
	emps := make([]leave.Employee, 0, len(rows))
	for i, row := range rows {
		rowNum := i + 2 // 1-based, after the header row

		for _, col := range required {
			if cell(row, header[col]) == "" {
				return &leave.EmptyCellError{Column: col, Row: rowNum}
			}
		}

		id, err := strconv.ParseInt(cell(row, header[colID]), 10, 64)
		if err != nil {
			return &leave.FieldError{Field: colID, Reason: fmt.Sprintf("not a number at row %d", rowNum)}
		}
		if seen[id] {
			return fmt.Errorf("row %d: id %d appears twice in the file: %w", rowNum, id, leave.ErrDuplicateEmployee)
		}
		seen[id] = true

		emp := leave.Employee{
			ID:           id,
			Name:         cell(row, header[colName]),
			Email:        cell(row, header[colEmail]),
			Entitlements: make([]decimal.Decimal, len(years)),
		}
		for j, y := range years {
			col, ok := header[yearColumn(y)]
			if !ok {
				continue // bucket newer than the file: stays zero
			}
			raw := cell(row, col)
			if raw == "" {
				if j < minYearColumns {
					return &leave.EmptyCellError{Column: yearColumn(y), Row: rowNum}
				}
				continue
			}
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return &leave.FieldError{Field: yearColumn(y), Reason: fmt.Sprintf("not a number at row %d", rowNum)}
			}
			emp.Entitlements[j] = d
		}
		emps = append(emps, emp)
	}

	return store.InsertEmployees(ctx, emps)
}

// =============================================================================
// SHEET HELPERS (shared with history.go)
// =============================================================================

// readSheet opens an .xlsx stream and returns the data rows of the first
// sheet plus a label -> column-index map built from the header row.
func readSheet(r io.Reader) (rows [][]string, header map[string]int, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("unreadable spreadsheet: %w: %v", leave.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("spreadsheet has no sheets: %w", leave.ErrValidation)
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("unreadable spreadsheet: %w: %v", leave.ErrValidation, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("spreadsheet has no header row: %w", leave.ErrValidation)
	}

	header = make(map[string]int, len(all[0]))
	for i, label := range all[0] {
		header[strings.TrimSpace(label)] = i
	}
	return all[1:], header, nil
}

// missingColumns returns the required labels absent from the header.
func missingColumns(header map[string]int, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// cell returns the trimmed value at column idx, tolerating short rows
// (excelize drops trailing empty cells).
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
