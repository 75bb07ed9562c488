package handler

import (
	"io"
	"mime"
	"net/http"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Prepaid usage
// ============================================================

func listTopupsHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/usage/topups")
		defer span.End()

		topups, err := svc.ListTopups(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch topups", logger)
			return
		}
		writeJSON(w, http.StatusOK, topups)
	}
}

func createTopupHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/usage/topups")
		defer span.End()

		var in domain.TopupInput
		if !decodeJSON(w, r, &in) {
			return
		}
		t, err := svc.CreateTopup(ctx, &in)
		if err != nil {
			handleServiceError(w, err, "Failed to create topup", logger)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

func bulkTopupsHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/usage/topups/bulk")
		defer span.End()

		var req domain.BulkTopupRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		span.SetAttributes(attribute.Int("topups.count", len(req.Records)))

		res, err := svc.BulkCreateTopups(ctx, &req)
		if err != nil {
			handleServiceError(w, err, "Failed to import topups", logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// importTopupsHandler accepts pasted CSV lines either as a text/plain body
// or as {"text": "..."}.
func importTopupsHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/usage/topups/import")
		defer span.End()

		var text string
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/json" {
			var body struct {
				Text string `json:"text"`
			}
			if !decodeJSON(w, r, &body) {
				return
			}
			text = body.Text
		} else {
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid data")
				return
			}
			text = string(raw)
		}

		res, err := svc.ImportTopupText(ctx, text)
		if err != nil {
			handleServiceError(w, err, "Failed to import topups", logger)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func listConsumptionHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/usage/consumption")
		defer span.End()

		list, err := svc.ListConsumption(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch consumption", logger)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func createConsumptionHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/usage/consumption")
		defer span.End()

		var in domain.ConsumptionInput
		if !decodeJSON(w, r, &in) {
			return
		}
		c, err := svc.CreateConsumption(ctx, &in)
		if err != nil {
			handleServiceError(w, err, "Failed to create consumption", logger)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func balanceHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/usage/balance/{serviceId}")
		defer span.End()

		id, err := pathID(r, "serviceId")
		if err != nil {
			handleServiceError(w, err, "Failed to fetch balance", logger)
			return
		}
		span.SetAttributes(attribute.Int64("service.id", id))

		b, err := svc.Balance(ctx, id)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch balance", logger)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func lowBalanceHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/alerts/low-balance")
		defer span.End()

		threshold, err := queryFloat(r, "threshold", 0)
		if err == nil && (threshold < 0 || threshold > 100) {
			err = &domain.ErrValidation{Field: "threshold", Message: "Must be between 0 and 100"}
		}
		if err != nil {
			handleServiceError(w, err, "Failed to fetch low balance alerts", logger)
			return
		}

		alerts, err := svc.LowBalanceAlerts(ctx, threshold)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch low balance alerts", logger)
			return
		}
		writeJSON(w, http.StatusOK, alerts)
	}
}
