package handler

import (
	"net/http"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Catalog
// ============================================================

func listCategoriesHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/service-categories")
		defer span.End()

		cats, err := svc.ListCategories(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch service categories", logger)
			return
		}
		writeJSON(w, http.StatusOK, cats)
	}
}

func createCategoryHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/service-categories")
		defer span.End()

		var in domain.CategoryInput
		if !decodeJSON(w, r, &in) {
			return
		}
		cat, err := svc.CreateCategory(ctx, &in)
		if err != nil {
			handleServiceError(w, err, "Failed to create service category", logger)
			return
		}
		writeJSON(w, http.StatusCreated, cat)
	}
}

func listProvidersHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/providers")
		defer span.End()

		provs, err := svc.ListProviders(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch providers", logger)
			return
		}
		writeJSON(w, http.StatusOK, provs)
	}
}

func createProviderHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/providers")
		defer span.End()

		var in domain.ProviderInput
		if !decodeJSON(w, r, &in) {
			return
		}
		p, err := svc.CreateProvider(ctx, &in)
		if err != nil {
			handleServiceError(w, err, "Failed to create provider", logger)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func referenceDataHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/reference-data")
		defer span.End()

		ref, err := svc.ReferenceData(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch reference data", logger)
			return
		}
		writeJSON(w, http.StatusOK, ref)
	}
}

func listServicesHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/services")
		defer span.End()

		services, err := svc.ListServices(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch services", logger)
			return
		}
		writeJSON(w, http.StatusOK, services)
	}
}

func createServiceHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/services")
		defer span.End()

		var in domain.ServiceInput
		if !decodeJSON(w, r, &in) {
			return
		}
		s, err := svc.CreateService(ctx, &in)
		if err != nil {
			handleServiceError(w, err, "Failed to create service", logger)
			return
		}
		writeJSON(w, http.StatusCreated, s)
	}
}

func updateServiceHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/services/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, err, "Failed to update service", logger)
			return
		}
		span.SetAttributes(attribute.Int64("service.id", id))

		var patch domain.ServicePatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		s, err := svc.UpdateService(ctx, id, &patch)
		if err != nil {
			handleServiceError(w, err, "Failed to update service", logger)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func deleteServiceHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/services/{id}")
		defer span.End()

		id, err := pathID(r, "id")
		if err != nil {
			handleServiceError(w, err, "Failed to delete service", logger)
			return
		}
		span.SetAttributes(attribute.Int64("service.id", id))

		if err := svc.DeleteService(ctx, id); err != nil {
			handleServiceError(w, err, "Failed to delete service", logger)
			return
		}
		logger.Info("service deleted",
			zap.Int64("id", id),
			zap.String("subject", SubjectFromContext(ctx)),
		)
		w.WriteHeader(http.StatusNoContent)
	}
}
