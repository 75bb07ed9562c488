package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/cost-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware. When
// tokens is nil the write routes are open. When metrics is nil /metrics is
// not mounted and request durations are not recorded.
func NewRouter(svc *service.CostService, tokens *service.TokenIssuer, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc, logger))
	r.Get("/readyz", readyzHandler())
	if metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	}

	if svc == nil {
		return r
	}

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		if tokens != nil {
			r.Use(BearerAuth(tokens, logger))
		}

		// =============================================
		// Dashboard
		// =============================================
		r.Get("/summary", summaryHandler(svc, logger))
		r.Get("/monthly-details/{year}/{month}", monthlyDetailsHandler(svc, logger))
		r.Get("/cost-forecast", costForecastHandler(svc, logger))
		r.Get("/metrics/ops", opsMetricsHandler(svc))

		// =============================================
		// Catalog
		// =============================================
		r.Get("/service-categories", listCategoriesHandler(svc, logger))
		r.Post("/service-categories", createCategoryHandler(svc, logger))
		r.Get("/providers", listProvidersHandler(svc, logger))
		r.Post("/providers", createProviderHandler(svc, logger))
		r.Get("/reference-data", referenceDataHandler(svc, logger))
		r.Get("/services", listServicesHandler(svc, logger))
		r.Post("/services", createServiceHandler(svc, logger))
		r.Put("/services/{id}", updateServiceHandler(svc, logger))
		r.Delete("/services/{id}", deleteServiceHandler(svc, logger))

		// =============================================
		// Invoices & licenses
		// =============================================
		r.Get("/invoices", listInvoicesHandler(svc, logger))
		r.Post("/invoices", createInvoiceHandler(svc, logger))
		r.Get("/licenses", listLicensesHandler(svc, logger))
		r.Post("/licenses", createLicenseHandler(svc, logger))

		// =============================================
		// Budgets
		// =============================================
		r.Get("/budgets", listBudgetsHandler(svc, logger))
		r.Post("/budgets", createBudgetHandler(svc, logger))
		r.Delete("/budgets/{id}", deleteBudgetHandler(svc, logger))
		r.Get("/budget/summary", budgetSummaryHandler(svc, logger))
		r.Get("/budget/chart", budgetChartHandler(svc, logger))

		// =============================================
		// Prepaid usage
		// =============================================
		r.Route("/usage", func(r chi.Router) {
			r.Get("/topups", listTopupsHandler(svc, logger))
			r.Post("/topups", createTopupHandler(svc, logger))
			r.Post("/topups/bulk", bulkTopupsHandler(svc, logger))
			r.Post("/topups/import", importTopupsHandler(svc, logger))
			r.Get("/consumption", listConsumptionHandler(svc, logger))
			r.Post("/consumption", createConsumptionHandler(svc, logger))
			r.Get("/balance/{serviceId}", balanceHandler(svc, logger))
		})

		// =============================================
		// Alerts
		// =============================================
		r.Get("/alerts/commitments", commitmentsHandler(svc, logger))
		r.Get("/alerts/low-balance", lowBalanceHandler(svc, logger))
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "costdash-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if svc != nil {
			start := time.Now()
			err := svc.Ping(ctx)
			h := domain.ServiceHealth{
				Name: "store", Status: "healthy",
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			}
			if err != nil {
				logger.Warn("store health check failed", zap.Error(err))
				h.Status = "degraded"
				h.Error = err.Error()
			}
			services = append(services, h)
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func opsMetricsHandler(svc *service.CostService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Metrics())
	}
}
