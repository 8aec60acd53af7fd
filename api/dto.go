/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the external contract. Amounts cross the wire as float64; inside the
  core they are decimal.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/leave"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses. Entitlements is
// parallel to Years; Total is their sum.
type EmployeeDTO struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Years        []int     `json:"years"`
	Entitlements []float64 `json:"entitlements"`
	Total        float64   `json:"total"`
}

// EmployeeRequest creates or replaces an employee. On create the id is
// caller-assigned; on update the path id wins. Entitlements shorter than
// the tracked year set are zero-padded at the end.
type EmployeeRequest struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Entitlements []float64 `json:"entitlements"`
}

// =============================================================================
// LEAVE RECORDS
// =============================================================================

// LeaveDTO represents one leave record. Days is null when unknown.
type LeaveDTO struct {
	ID         int64    `json:"id"`
	EmployeeID int64    `json:"employee_id"`
	Summary    string   `json:"summary"`
	StartDate  *string  `json:"start_date"`
	EndDate    *string  `json:"end_date"`
	Days       *float64 `json:"days"`
	AppliedAt  *string  `json:"application_time"`
	Kind       string   `json:"leave_type"`
	Remark     *string  `json:"remark"`
}

// BalanceLineDTO is a leave record with the remaining balance as of that
// record.
type BalanceLineDTO struct {
	LeaveDTO
	Remaining float64 `json:"remaining"`
}

// EmployeeDetailDTO is the single-employee view: the record plus its
// balance trail.
type EmployeeDetailDTO struct {
	Employee EmployeeDTO      `json:"employee"`
	Trail    []BalanceLineDTO `json:"leaves"`
}

// LeaveRequest creates or edits a leave record the way the entry form
// posts it: dates and half-day periods separately, the day-count as text
// (blank or unparseable means unknown).
type LeaveRequest struct {
	StartDate   string `json:"start_date"`
	StartPeriod string `json:"start_period"`
	EndDate     string `json:"end_date"`
	EndPeriod   string `json:"end_period"`
	Days        string `json:"days"`
	AppliedAt   string `json:"application_time"`
	Kind        string `json:"leave_type"`
	Remark      string `json:"remark"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(emp leave.Employee, years leave.Years) EmployeeDTO {
	emp.Normalize(years)
	ents := make([]float64, len(emp.Entitlements))
	for i, v := range emp.Entitlements {
		ents[i], _ = v.Float64()
	}
	total, _ := emp.TotalEntitlement().Float64()
	return EmployeeDTO{
		ID:           emp.ID,
		Name:         emp.Name,
		Email:        emp.Email,
		Years:        years,
		Entitlements: ents,
		Total:        total,
	}
}

func toLeaveDTO(ev leave.Event) LeaveDTO {
	dto := LeaveDTO{
		ID:         ev.ID,
		EmployeeID: ev.EmployeeID,
		Summary:    ev.Summary,
		StartDate:  ev.StartDate,
		EndDate:    ev.EndDate,
		AppliedAt:  ev.AppliedAt,
		Kind:       ev.Kind,
		Remark:     ev.Remark,
	}
	if ev.Days != nil {
		d, _ := ev.Days.Float64()
		dto.Days = &d
	}
	return dto
}

func toTrailDTO(trail []leave.BalanceLine) []BalanceLineDTO {
	out := make([]BalanceLineDTO, len(trail))
	for i, line := range trail {
		remaining, _ := line.Remaining.Float64()
		out[i] = BalanceLineDTO{LeaveDTO: toLeaveDTO(line.Event), Remaining: remaining}
	}
	return out
}

func toEntitlements(values []float64) []decimal.Decimal {
	ents := make([]decimal.Decimal, len(values))
	for i, v := range values {
		ents[i] = decimal.NewFromFloat(v)
	}
	return ents
}
