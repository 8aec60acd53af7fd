/*
transfer.go - Spreadsheet upload and download handlers

PURPOSE:
  HTTP surface over the reconcile package. Uploads arrive as multipart
  forms with a "file" field and must be .xlsx; downloads stream as
  attachments with the same file names the legacy system used.

SEE ALSO:
  - reconcile: The import/export logic these handlers delegate to
*/
package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/warp/leave-tracker/reconcile"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// =============================================================================
// IMPORTS
// =============================================================================

// ImportEmployees ingests a roster spreadsheet. All-or-nothing: any
// missing column, empty required cell, or duplicate id rejects the file.
func (h *Handler) ImportEmployees(w http.ResponseWriter, r *http.Request) {
	file, ok := uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	if err := reconcile.ImportRoster(r.Context(), h.Store, h.Years, file); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportLeaves ingests a leave-history spreadsheet and reports the
// three-way row tally. Row-level problems never fail the request.
func (h *Handler) ImportLeaves(w http.ResponseWriter, r *http.Request) {
	file, ok := uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	sum, err := reconcile.ImportHistory(r.Context(), h.Store, file)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file upload")
		return nil, false
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		f.Close()
		writeError(w, http.StatusBadRequest, "Please upload a valid .xlsx file")
		return nil, false
	}
	return f, true
}

// =============================================================================
// EXPORTS
// =============================================================================

// ExportEmployees downloads the roster.
func (h *Handler) ExportEmployees(w http.ResponseWriter, r *http.Request) {
	attachmentHeaders(w, "employees.xlsx")
	if err := reconcile.ExportRoster(r.Context(), h.Store, h.Years, w); err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed")
	}
}

// ExportEmployeeLeaves downloads one employee's leave history.
func (h *Handler) ExportEmployeeLeaves(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	// Resolve before writing headers so a 404 stays a clean JSON error.
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed")
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found")
		return
	}

	attachmentHeaders(w, fmt.Sprintf("leave_records_%d.xlsx", id))
	if err := reconcile.ExportHistory(r.Context(), h.Store, h.Years, id, w); err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed")
	}
}

// ExportAllLeaves downloads the full leave history for every employee.
func (h *Handler) ExportAllLeaves(w http.ResponseWriter, r *http.Request) {
	attachmentHeaders(w, "all_leave_records.xlsx")
	if err := reconcile.ExportAllHistory(r.Context(), h.Store, h.Years, w); err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed")
	}
}

func attachmentHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
