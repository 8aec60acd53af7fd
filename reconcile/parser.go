/*
Package reconcile is the bulk import/export subsystem.

PURPOSE:
  Moves employee rosters and leave histories between spreadsheet files and
  the record store. The import side is defensive: older export formats
  (fewer year columns, no day-count column) stay importable, parseable
  fields are recovered from free text, and duplicates are suppressed.

THIS FILE (parser.go):
  The leave-summary text format, both directions.

  A summary looks like:

      2024/1/1 上午~2024/1/3 下午, 2.5天 年假

  ComposeSummary builds that string when a record is created through the
  app. ParseDays/ParseDateRange recover fields from it on import, for rows
  whose structured columns are missing. Recovery is best effort, never a
  strict validator: every pattern miss yields "absent", not an error.

PARSE ORDER (day-count):
  1. A number immediately before the 天 unit, following a comma separator
  2. The first bare "number天" match anywhere in the string
  3. No match - day-count stays unknown

PARSE ORDER (date range):
  1. Split on the ~ separator; the end side is truncated at the first comma
  2. The / date separator is normalized to -
  3. No ~ in the text - both boundaries stay unknown

SEE ALSO:
  - history.go: Uses these fallbacks during bulk import
  - api package: Uses ComposeSummary on record create/edit
*/
package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/leave"
)

// =============================================================================
// DAY-COUNT RECOVERY
// =============================================================================

var (
	// Preferred form: the count follows a comma separator, as ComposeSummary
	// writes it. Both ASCII and fullwidth commas appear in legacy data.
	daysAfterSeparator = regexp.MustCompile(`[,，]\s*(\d+(?:\.\d+)?)天`)

	// Fallback: any "number天" in the text.
	daysAnywhere = regexp.MustCompile(`(\d+(?:\.\d+)?)天`)
)

// ParseDays recovers a day-count from summary text. Returns nil when no
// "number + 天" pattern is found.
func ParseDays(summary string) *decimal.Decimal {
	m := daysAfterSeparator.FindStringSubmatch(summary)
	if m == nil {
		m = daysAnywhere.FindStringSubmatch(summary)
	}
	if m == nil {
		return nil
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return nil
	}
	return &d
}

// =============================================================================
// DATE-RANGE RECOVERY
// =============================================================================

// ParseDateRange recovers the start/end boundary text from a summary.
// The range sits before the first comma, split on ~, with / normalized
// to - so boundaries match the directly-entered form. Without a ~ the
// text is not a range and both boundaries stay unknown.
func ParseDateRange(summary string) (start, end *string) {
	idx := strings.Index(summary, "~")
	if idx < 0 {
		return nil, nil
	}

	s := strings.TrimSpace(summary[:idx])
	rest := summary[idx+1:]
	if cut := strings.IndexAny(rest, ",，"); cut >= 0 {
		rest = rest[:cut]
	}
	e := strings.TrimSpace(rest)

	if s != "" {
		s = strings.ReplaceAll(s, "/", "-")
		start = &s
	}
	if e != "" {
		e = strings.ReplaceAll(e, "/", "-")
		end = &e
	}
	return start, end
}

// =============================================================================
// COMPOSITION
// =============================================================================

// ComposeSummary builds the canonical summary string for a record entered
// through the app. Dates go in with / separators and their half-day
// period markers; the day-count carries the 天 unit. When any of the date
// or day fields is blank there is no range to describe and the summary is
// empty, matching legacy rows.
func ComposeSummary(startDate, startPeriod, endDate, endPeriod, days, kind string) string {
	if startDate == "" || endDate == "" || days == "" {
		return ""
	}
	start := strings.ReplaceAll(startDate, "-", "/")
	if startPeriod != "" {
		start += " " + startPeriod
	}
	end := strings.ReplaceAll(endDate, "-", "/")
	if endPeriod != "" {
		end += " " + endPeriod
	}
	return fmt.Sprintf("%s~%s, %s天 %s", start, end, days, kind)
}

// JoinBoundary glues a date and its half-day period into the stored
// boundary text ("2024-01-01 上午"). Either part may be blank.
func JoinBoundary(date, period string) *string {
	if date == "" {
		return nil
	}
	s := date
	if period != "" {
		s = date + " " + period
	}
	return &s
}

// SplitBoundary is the inverse of JoinBoundary, used when editing an
// existing record: it splits stored boundary text back into the date and
// period parts, defaulting the period to morning.
func SplitBoundary(boundary *string) (date, period string) {
	if boundary == nil || *boundary == "" {
		return "", leave.PeriodMorning
	}
	parts := strings.SplitN(*boundary, " ", 2)
	if len(parts) == 2 && parts[1] != "" {
		return parts[0], parts[1]
	}
	return parts[0], leave.PeriodMorning
}
