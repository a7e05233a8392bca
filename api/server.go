/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client IP from X-Forwarded-For / X-Real-IP
  3. Logger:     slog request logging with the request ID
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for frontends
  6. RateLimit:  Per-IP limit (ulule/limiter), only when configured

ROUTE GROUPS:
  /api/health           Liveness
  /api/employees/*      Employees and their engine inputs
  /api/components/*     Organisation salary structure
  /api/tax              Slab table lookup
  /api/payroll/*        Runs, saved records, payslips, register export
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	// AllowedOrigins for CORS. Defaults to "*".
	AllowedOrigins []string

	// RateLimit in ulule/limiter format, e.g. "300-M". Empty disables.
	RateLimit string

	Logger *slog.Logger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) (*chi.Mux, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))
	if opts.RateLimit != "" {
		rate, err := limiter.NewRateFromFormatted(opts.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit %q: %w", opts.RateLimit, err)
		}
		r.Use(limiterhttp.NewMiddleware(limiter.New(memory.NewStore(), rate)).Handler)
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Get("/{id}/payroll", h.PreviewPayroll)
			r.Post("/{id}/attendance", h.AddAttendance)
			r.Post("/{id}/leave", h.AddLeaveRequest)
			r.Post("/{id}/loans", h.AddLoan)
			r.Post("/{id}/variable-payments", h.AddVariablePayment)
			r.Post("/{id}/declarations", h.AddDeclaration)
		})

		// Component routes
		r.Route("/components", func(r chi.Router) {
			r.Get("/", h.GetComponents)
			r.Put("/", h.ReplaceComponents)
			r.Post("/validate", h.ValidateComponents)
			r.Post("/resolve", h.ResolveComponents)
		})

		r.Get("/tax", h.GetTax)

		// Payroll routes
		r.Route("/payroll", func(r chi.Router) {
			r.Post("/runs", h.RunPayroll)
			r.Get("/records", h.ListPayrollRecords)
			r.Get("/records/{employeeID}/{year}/{month}", h.GetPayrollRecord)
			r.Get("/records/{employeeID}/{year}/{month}/payslip.pdf", h.GetPayslip)
			r.Get("/export.csv", h.ExportRegister)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r, nil
}

// requestLogger logs one line per request once the response is written.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "request completed",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("latency", time.Since(start)),
			)
		})
	}
}
