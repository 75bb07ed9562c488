package handler

import (
	"net/http"
	"strconv"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Dashboard
// ============================================================

func summaryHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/summary")
		defer span.End()

		year, month := svc.CurrentMonth()
		year, err := queryInt(r, "year", year)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch summary", logger)
			return
		}
		month, err = queryInt(r, "month", month)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch summary", logger)
			return
		}

		sum, err := svc.Summary(ctx, year, month)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch summary", logger)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

func monthlyDetailsHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/monthly-details/{year}/{month}")
		defer span.End()

		year, yErr := strconv.Atoi(chi.URLParam(r, "year"))
		month, mErr := strconv.Atoi(chi.URLParam(r, "month"))
		if yErr != nil || mErr != nil {
			v := &domain.Validation{}
			v.Check(yErr == nil, "year", "Must be an integer")
			v.Check(mErr == nil, "month", "Must be an integer")
			handleServiceError(w, v.Err(), "Failed to fetch monthly details", logger)
			return
		}
		span.SetAttributes(attribute.Int("year", year), attribute.Int("month", month))

		details, err := svc.MonthlyDetails(ctx, year, month)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch monthly details", logger)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

// costForecastHandler projects from now, or from ?anchor=YYYY-MM when given.
func costForecastHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/cost-forecast")
		defer span.End()

		var (
			res *domain.ForecastResult
			err error
		)
		if a := r.URL.Query().Get("anchor"); a != "" {
			anchor, perr := service.ParseAnchor(a)
			if perr != nil {
				handleServiceError(w, perr, "Failed to generate cost forecast", logger)
				return
			}
			res, err = svc.CostForecastAt(ctx, anchor)
		} else {
			res, err = svc.CostForecast(ctx)
		}
		if err != nil {
			handleServiceError(w, err, "Failed to generate cost forecast", logger)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
