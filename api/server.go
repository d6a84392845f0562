/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for a browser front end

ROUTE GROUPS:
  /api/employees/*      Employees, their shifts and payroll
  /api/worklogs         Shifts by date
  /api/payroll/*        Aggregate payroll and export
  /api/calendar         Month grid
  /api/scenarios/*      Demo scenarios
  /api/data/save        Persist now
  /                     Endpoint index

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. With no
// origins every origin is allowed.
func NewRouter(h *Handler, origins ...string) *chi.Mux {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Get("/{id}/worklogs", h.ListMonthWorkLogs)
			r.Get("/{id}/payroll", h.GetEmployeePayroll)

			r.Route("/{id}/shifts/{date}", func(r chi.Router) {
				r.Get("/", h.GetShift)
				r.Put("/", h.RecordShift)
				r.Delete("/", h.DeleteShift)
			})
		})

		r.Get("/worklogs", h.ListWorkLogsForDate)

		r.Route("/payroll", func(r chi.Router) {
			r.Post("/", h.AggregatePayroll)
			r.Get("/export", h.ExportPayroll)
		})

		r.Get("/calendar", h.GetCalendar)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetData)
		})

		r.Post("/data/save", h.SaveData)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Shift Payroll</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Shift Payroll API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/employees">/api/employees</a> - List employees</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List scenarios</li>
<li>/api/calendar?year=&amp;month= - Month calendar</li>
<li>POST /api/payroll - Payroll for a selection</li>
<li>/api/payroll/export?ids=&amp;from=&amp;to=&amp;format=csv|xlsx - Payroll download</li>
</ul>
</body>
</html>`))
	})

	return r
}
