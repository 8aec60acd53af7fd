/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a frontend

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Employee and leave-record handlers
  - transfer.go: Import/export handlers
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Post("/{id}/leaves", h.CreateLeave)
			r.Put("/{id}/leaves/{leaveID}", h.UpdateLeave)
			r.Delete("/{id}/leaves/{leaveID}", h.DeleteLeave)
		})

		// Cross-employee leave view
		r.Get("/leaves", h.ListAllLeaves)

		// Spreadsheet transfer
		r.Route("/import", func(r chi.Router) {
			r.Post("/employees", h.ImportEmployees)
			r.Post("/leaves", h.ImportLeaves)
		})
		r.Route("/export", func(r chi.Router) {
			r.Get("/employees", h.ExportEmployees)
			r.Get("/employees/{id}/leaves", h.ExportEmployeeLeaves)
			r.Get("/leaves", h.ExportAllLeaves)
		})
	})

	return r
}
