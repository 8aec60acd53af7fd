/*
history.go - Bulk leave-history import

PURPOSE:
  Reads a leave-history spreadsheet (the shape export.go produces) and
  merges its rows into the record store. This path deliberately uses a
  partial-success model, the opposite of roster.go: row-level problems are
  skipped and tallied, and only file-level problems (unreadable file,
  missing required column) abort the import.

ROW RULES:
  - No summary text: the row describes an employee with no leave taken
    (the export's left join writes such rows) - skipped silently
  - Id missing, non-numeric, or unknown: skipped, tallied as invalid
  - Same employee + application-time label + summary already stored
    (both fields exact, including both absent): skipped, tallied as duplicate
  - Otherwise inserted, with missing fields recovered via parser.go

SEE ALSO:
  - parser.go: Day-count and date-range recovery from summary text
  - export.go: The canonical file shape this importer accepts back
*/
package reconcile

import (
	"context"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/leave"
)

// Summary tallies the outcome of a history import. All three counts are
// reported to the caller; none of the conditions they count aborts the run.
type Summary struct {
	Inserted               int `json:"inserted"`
	SkippedUnknownEmployee int `json:"skipped_unknown_employee"`
	SkippedDuplicate       int `json:"skipped_duplicate"`
}

// ImportHistory reads an .xlsx leave history from r and merges it into the
// store. The day-count column is optional - exports predating it are still
// accepted, with the count recovered from the summary text where possible.
func ImportHistory(ctx context.Context, store Store, r io.Reader) (Summary, error) {
	var sum Summary

	rows, header, err := readSheet(r)
	if err != nil {
		return sum, err
	}
	if missing := missingColumns(header, []string{colID, colSummary}); len(missing) > 0 {
		return sum, &leave.MissingColumnError{Columns: missing}
	}

	// Optional columns: -1 when the file predates them.
	appliedAtIdx := columnIndex(header, colAppliedAt)
	kindIdx := columnIndex(header, colKind)
	daysIdx := columnIndex(header, colDays)
	remarkIdx := columnIndex(header, colRemark)

	for _, row := range rows {
		summary := cell(row, header[colSummary])
		if summary == "" {
			continue
		}

		id, err := strconv.ParseInt(cell(row, header[colID]), 10, 64)
		if err != nil {
			sum.SkippedUnknownEmployee++
			continue
		}
		emp, err := store.GetEmployee(ctx, id)
		if err != nil {
			return sum, err
		}
		if emp == nil {
			sum.SkippedUnknownEmployee++
			continue
		}

		appliedAt := optionalCell(row, appliedAtIdx)

		dup, err := store.HasDuplicateEvent(ctx, id, appliedAt, summary)
		if err != nil {
			return sum, err
		}
		if dup {
			sum.SkippedDuplicate++
			continue
		}

		ev := leave.Event{
			EmployeeID: id,
			Summary:    summary,
			AppliedAt:  appliedAt,
			Days:       rowDays(row, daysIdx, summary),
			Kind:       leave.KindAnnual,
			Remark:     optionalCell(row, remarkIdx),
		}
		if kind := cell(row, kindIdx); kindIdx >= 0 && kind != "" {
			ev.Kind = kind
		}
		ev.StartDate, ev.EndDate = ParseDateRange(summary)

		if _, err := store.InsertEvent(ctx, ev); err != nil {
			return sum, err
		}
		sum.Inserted++
	}

	return sum, nil
}

// rowDays derives the day-count: the explicit cell when present and
// numeric, else recovery from the summary text, else unknown.
func rowDays(row []string, daysIdx int, summary string) *decimal.Decimal {
	if daysIdx >= 0 {
		if raw := cell(row, daysIdx); raw != "" {
			if d, err := decimal.NewFromString(raw); err == nil {
				return &d
			}
		}
	}
	return ParseDays(summary)
}

// columnIndex returns the column's index, or -1 when the file lacks it.
func columnIndex(header map[string]int, label string) int {
	if idx, ok := header[label]; ok {
		return idx
	}
	return -1
}

// optionalCell returns the trimmed cell value as a nullable string.
func optionalCell(row []string, idx int) *string {
	if idx < 0 {
		return nil
	}
	if v := cell(row, idx); v != "" {
		return &v
	}
	return nil
}
