package supabase

import (
	"context"
	"slices"
	"strings"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
)

// ============================================================
// Invoices & license plans
// ============================================================

func (c *Client) ListInvoices(ctx context.Context) ([]domain.InvoiceListItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListInvoices")
	defer span.End()

	rows, err := selectRows[invoiceRow](ctx, c, "invoices", query("infra_invoice",
		"select", "id,invoice_month,amount,currency,"+serviceEmbed,
		"order", "invoice_month.desc,id.desc"))
	if err != nil {
		return nil, err
	}

	out := make([]domain.InvoiceListItem, len(rows))
	for i, r := range rows {
		out[i] = domain.InvoiceListItem{
			ID:           r.ID,
			InvoiceMonth: r.InvoiceMonth,
			Amount:       r.Amount,
			Currency:     r.Currency,
			Service:      domain.Ref{ID: r.Service.ID, Name: r.Service.Name},
			Provider:     r.Service.Provider,
		}
	}
	return out, nil
}

func (c *Client) CreateInvoice(ctx context.Context, in *domain.InvoiceInput) (*domain.Invoice, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateInvoice")
	defer span.End()

	rows, err := insertRows[invoiceRow](ctx, c, "invoices", "infra_invoice", map[string]any{
		"service_id":    in.ServiceID,
		"invoice_month": in.InvoiceMonth,
		"amount":        in.Amount,
		"currency":      in.Currency,
	})
	if err != nil {
		return nil, err
	}
	r, err := first(rows, "invoices")
	if err != nil {
		return nil, err
	}
	out := r.toDomain()
	return &out, nil
}

func (c *Client) ListLicenses(ctx context.Context) ([]domain.LicenseListItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLicenses")
	defer span.End()

	rows, err := selectRows[licenseRow](ctx, c, "licenses", query("license_plan",
		"select", "*,"+serviceEmbed, "order", "id.asc"))
	if err != nil {
		return nil, err
	}

	// PostgREST cannot order a parent by an embedded column on older versions.
	slices.SortStableFunc(rows, func(a, b licenseRow) int {
		return strings.Compare(a.Service.Name, b.Service.Name)
	})

	out := make([]domain.LicenseListItem, len(rows))
	for i, r := range rows {
		out[i] = domain.LicenseListItem{
			ID:                  r.ID,
			MonthlyUnitCost:     r.MonthlyUnitCost,
			Qty:                 r.Qty,
			StartMonth:          r.StartMonth,
			EndMonth:            r.EndMonth,
			AnnualCommitmentEnd: r.AnnualCommitmentEnd,
			Service:             domain.Ref{ID: r.Service.ID, Name: r.Service.Name},
			Provider:            r.Service.Provider,
		}
	}
	return out, nil
}

func (c *Client) CreateLicense(ctx context.Context, in *domain.LicenseInput) (*domain.LicensePlan, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateLicense")
	defer span.End()

	rows, err := insertRows[licenseRow](ctx, c, "licenses", "license_plan", map[string]any{
		"service_id":            in.ServiceID,
		"monthly_unit_cost":     in.MonthlyUnitCost,
		"qty":                   in.Qty,
		"start_month":           in.StartMonth,
		"end_month":             in.EndMonth,
		"annual_commitment_end": in.AnnualCommitmentEnd,
	})
	if err != nil {
		return nil, err
	}
	r, err := first(rows, "licenses")
	if err != nil {
		return nil, err
	}
	out := r.toDomain()
	return &out, nil
}

func (c *Client) ListCommitments(ctx context.Context, from, to string) ([]domain.Commitment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCommitments")
	defer span.End()

	rows, err := selectRows[licenseRow](ctx, c, "commitments", query("license_plan",
		"select", "id,annual_commitment_end,"+serviceEmbed,
		"annual_commitment_end", "gte."+from,
		"and", "(annual_commitment_end.lte."+to+")",
		"order", "annual_commitment_end.asc,id.asc"))
	if err != nil {
		return nil, err
	}

	out := make([]domain.Commitment, 0, len(rows))
	for _, r := range rows {
		if r.AnnualCommitmentEnd == nil {
			continue
		}
		out = append(out, domain.Commitment{
			ID:                  r.ID,
			AnnualCommitmentEnd: *r.AnnualCommitmentEnd,
			Service:             domain.Ref{ID: r.Service.ID, Name: r.Service.Name},
			Provider:            r.Service.Provider,
		})
	}
	return out, nil
}
