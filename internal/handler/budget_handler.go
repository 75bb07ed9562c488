package handler

import (
	"net/http"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Budgets
// ============================================================

func listBudgetsHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/budgets")
		defer span.End()

		budgets, err := svc.ListBudgets(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch budgets", logger)
			return
		}
		writeJSON(w, http.StatusOK, budgets)
	}
}

func createBudgetHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/budgets")
		defer span.End()

		var in domain.BudgetInput
		if !decodeJSON(w, r, &in) {
			return
		}
		b, err := svc.CreateBudget(ctx, &in)
		if err != nil {
			handleServiceError(w, err, "Failed to create budget", logger)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func deleteBudgetHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/budgets/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, err, "Failed to delete budget", logger)
			return
		}
		span.SetAttributes(attribute.Int64("budget.id", id))

		if err := svc.DeleteBudget(ctx, id); err != nil {
			handleServiceError(w, err, "Failed to delete budget", logger)
			return
		}
		logger.Info("budget deleted",
			zap.Int64("id", id),
			zap.String("subject", SubjectFromContext(ctx)),
		)
		w.WriteHeader(http.StatusNoContent)
	}
}

func budgetSummaryHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/budget/summary")
		defer span.End()

		sum, err := svc.BudgetSummary(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch budget summary", logger)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

func budgetChartHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/budget/chart")
		defer span.End()

		chart, err := svc.BudgetChart(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch budget chart", logger)
			return
		}
		writeJSON(w, http.StatusOK, chart)
	}
}
