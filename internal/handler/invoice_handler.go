package handler

import (
	"net/http"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Invoices & license plans
// ============================================================

func listInvoicesHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/invoices")
		defer span.End()

		invoices, err := svc.ListInvoices(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch invoices", logger)
			return
		}
		writeJSON(w, http.StatusOK, invoices)
	}
}

func createInvoiceHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/invoices")
		defer span.End()

		var in domain.InvoiceInput
		if !decodeJSON(w, r, &in) {
			return
		}
		inv, err := svc.CreateInvoice(ctx, &in)
		if err != nil {
			handleServiceError(w, err, "Failed to create invoice", logger)
			return
		}
		writeJSON(w, http.StatusCreated, inv)
	}
}

func listLicensesHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/licenses")
		defer span.End()

		licenses, err := svc.ListLicenses(ctx)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch licenses", logger)
			return
		}
		writeJSON(w, http.StatusOK, licenses)
	}
}

func createLicenseHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/licenses")
		defer span.End()

		var in domain.LicenseInput
		if !decodeJSON(w, r, &in) {
			return
		}
		plan, err := svc.CreateLicense(ctx, &in)
		if err != nil {
			handleServiceError(w, err, "Failed to create license", logger)
			return
		}
		writeJSON(w, http.StatusCreated, plan)
	}
}

func commitmentsHandler(svc *service.CostService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/alerts/commitments")
		defer span.End()

		days, err := queryInt(r, "days", 0)
		if err == nil && days < 0 {
			err = &domain.ErrValidation{Field: "days", Message: "Must not be negative"}
		}
		if err != nil {
			handleServiceError(w, err, "Failed to fetch commitments", logger)
			return
		}

		commitments, err := svc.ListCommitments(ctx, days)
		if err != nil {
			handleServiceError(w, err, "Failed to fetch commitments", logger)
			return
		}
		writeJSON(w, http.StatusOK, commitments)
	}
}
