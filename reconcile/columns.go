package reconcile

import "fmt"

// Localized spreadsheet column labels. The export writes these and the
// import resolves them back, so the labels are the wire format - changing
// one breaks round-tripping with previously exported files.
const (
	colID        = "工号"
	colName      = "姓名"
	colEmail     = "邮箱"
	colSummary   = "2023年至今已休年假信息"
	colTotal     = "总年休假天数"
	colRemaining = "剩余年休假天数"
	colAppliedAt = "邮件申请时间"
	colKind      = "假期类型"
	colDays      = "请假天数"
	colRemark    = "备注"
)

// minYearColumns is how many leading year columns a roster file must carry.
// Files exported before later buckets existed stop at 2025; anything newer
// the file lacks is filled with zero on import.
const minYearColumns = 3

// yearColumn returns the label of one year's entitlement column.
func yearColumn(year int) string {
	return fmt.Sprintf("%d年度总天数", year)
}
