/*
handlers.go - HTTP handlers for employees and leave records

PURPOSE:
  Translates HTTP requests into core calls and renders the results. This
  layer is glue: every balance shown here comes out of leave.Trail, every
  total out of TotalEntitlement - no arithmetic happens in a handler.

ERROR HANDLING:
  Domain errors map to HTTP statuses:
  - 400: validation (bad field, bad file)
  - 404: unknown employee or leave record, with a descriptive message
  - 409: duplicate caller-assigned employee id
  - 500: everything else

CONCURRENCY:
  Mutating sequences that read before they write (create/edit/delete of a
  leave record, employee update) run under the store's per-employee lock.

SEE ALSO:
  - dto.go: Request/response shapes
  - transfer.go: Spreadsheet import/export handlers
  - server.go: Router setup
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/leave"
	"github.com/warp/leave-tracker/reconcile"
	"github.com/warp/leave-tracker/store/sqlite"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Years leave.Years
}

// NewHandler creates a handler over the given store, pinned to the year
// set the store was migrated with.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store, Years: store.Years()}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the roster with per-employee totals.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees")
		return
	}
	dtos := make([]EmployeeDTO, len(emps))
	for i, e := range emps {
		dtos[i] = toEmployeeDTO(e, h.Years)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns one employee with its balance trail.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee")
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found")
		return
	}

	events, err := h.Store.EventsByEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leave records")
		return
	}

	emp.Normalize(h.Years)
	trail := leave.Trail(emp.TotalEntitlement(), events)
	writeJSON(w, http.StatusOK, EmployeeDetailDTO{
		Employee: toEmployeeDTO(*emp, h.Years),
		Trail:    toTrailDTO(trail),
	})
}

// CreateEmployee inserts an employee with its caller-assigned id.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	emp, err := h.employeeFromRequest(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Store.CreateEmployee(r.Context(), emp); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp, h.Years))
}

// UpdateEmployee replaces name, email, and all entitlement buckets.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ID = id
	emp, err := h.employeeFromRequest(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	err = h.Store.WithEmployeeLock(id, func() error {
		return h.Store.UpdateEmployee(r.Context(), emp)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp, h.Years))
}

// DeleteEmployee removes an employee and all of its leave records.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := h.Store.WithEmployeeLock(id, func() error {
		return h.Store.DeleteEmployee(r.Context(), id)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) employeeFromRequest(req EmployeeRequest) (leave.Employee, error) {
	if req.ID <= 0 {
		return leave.Employee{}, &leave.FieldError{Field: "id", Reason: "must be a positive integer"}
	}
	if req.Name == "" {
		return leave.Employee{}, &leave.FieldError{Field: "name", Reason: "must not be empty"}
	}
	if len(req.Entitlements) > len(h.Years) {
		return leave.Employee{}, &leave.FieldError{Field: "entitlements", Reason: "more values than tracked years"}
	}
	for _, v := range req.Entitlements {
		if v < 0 {
			return leave.Employee{}, &leave.FieldError{Field: "entitlements", Reason: "must not be negative"}
		}
	}
	emp := leave.Employee{
		ID:           req.ID,
		Name:         req.Name,
		Email:        req.Email,
		Entitlements: toEntitlements(req.Entitlements),
	}
	emp.Normalize(h.Years)
	return emp, nil
}

// =============================================================================
// ALL-LEAVES VIEW
// =============================================================================

// ListAllLeaves returns every employee with its balance trail, grouped by
// employee in id order.
func (h *Handler) ListAllLeaves(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees")
		return
	}

	out := make([]EmployeeDetailDTO, 0, len(emps))
	for _, emp := range emps {
		events, err := h.Store.EventsByEmployee(r.Context(), emp.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load leave records")
			return
		}
		emp.Normalize(h.Years)
		trail := leave.Trail(emp.TotalEntitlement(), events)
		out = append(out, EmployeeDetailDTO{
			Employee: toEmployeeDTO(emp, h.Years),
			Trail:    toTrailDTO(trail),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// LEAVE RECORD HANDLERS
// =============================================================================

// CreateLeave appends a leave record to an employee.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var created leave.Event
	err := h.Store.WithEmployeeLock(employeeID, func() error {
		emp, err := h.Store.GetEmployee(r.Context(), employeeID)
		if err != nil {
			return err
		}
		if emp == nil {
			return leave.ErrEmployeeNotFound
		}
		ev := eventFromRequest(employeeID, req)
		id, err := h.Store.InsertEvent(r.Context(), ev)
		if err != nil {
			return err
		}
		ev.ID = id
		created = ev
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(created))
}

// UpdateLeave edits an existing leave record.
func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	leaveID, ok := pathID(w, r, "leaveID")
	if !ok {
		return
	}
	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var updated leave.Event
	err := h.Store.WithEmployeeLock(employeeID, func() error {
		existing, err := h.Store.GetEvent(r.Context(), employeeID, leaveID)
		if err != nil {
			return err
		}
		if existing == nil {
			return leave.ErrLeaveNotFound
		}
		ev := eventFromRequest(employeeID, req)
		ev.ID = leaveID
		if err := h.Store.UpdateEvent(r.Context(), ev); err != nil {
			return err
		}
		updated = ev
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(updated))
}

// DeleteLeave removes one leave record.
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	leaveID, ok := pathID(w, r, "leaveID")
	if !ok {
		return
	}
	err := h.Store.WithEmployeeLock(employeeID, func() error {
		return h.Store.DeleteEvent(r.Context(), employeeID, leaveID)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// eventFromRequest builds the stored record from form-shaped input: the
// summary string is composed the canonical way, boundaries carry their
// half-day periods, and an unparseable day-count becomes unknown.
func eventFromRequest(employeeID int64, req LeaveRequest) leave.Event {
	kind := req.Kind
	if kind == "" {
		kind = leave.KindAnnual
	}

	ev := leave.Event{
		EmployeeID: employeeID,
		Summary:    reconcile.ComposeSummary(req.StartDate, req.StartPeriod, req.EndDate, req.EndPeriod, req.Days, kind),
		StartDate:  reconcile.JoinBoundary(req.StartDate, req.StartPeriod),
		EndDate:    reconcile.JoinBoundary(req.EndDate, req.EndPeriod),
		Kind:       kind,
	}
	if req.Days != "" {
		if d, err := decimal.NewFromString(req.Days); err == nil {
			ev.Days = &d
		}
	}
	if req.AppliedAt != "" {
		ev.AppliedAt = &req.AppliedAt
	}
	if req.Remark != "" {
		ev.Remark = &req.Remark
	}
	return ev
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps domain error classes onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case leave.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	case leave.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}
