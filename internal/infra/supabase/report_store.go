package supabase

import (
	"context"
	"slices"
	"strings"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"github.com/shopspring/decimal"
)

// ============================================================
// Dashboard aggregations: raw rows, summed in decimal by callers
// ============================================================

func (c *Client) MonthlyInvoiceTotals(ctx context.Context, since string) ([]domain.HistoricalPoint, error) {
	ctx, span := tracer.Start(ctx, "Supabase.MonthlyInvoiceTotals")
	defer span.End()

	rows, err := selectRows[invoiceRow](ctx, c, "history", query("infra_invoice",
		"select", "invoice_month,amount",
		"invoice_month", "gte."+since,
		"order", "invoice_month.asc,id.asc"))
	if err != nil {
		return nil, err
	}

	amounts := make([]domain.InvoiceAmount, len(rows))
	for i, r := range rows {
		amounts[i] = domain.InvoiceAmount{InvoiceMonth: r.InvoiceMonth, Amount: r.Amount}
	}
	return domain.AggregateMonthly(amounts), nil
}

func (c *Client) SpendByCategory(ctx context.Context, start, end string) ([]domain.CategoryAmount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SpendByCategory")
	defer span.End()

	cats, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := c.invoicesBetween(ctx, "amount,"+serviceNameEmbed, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CategoryAmount, 0, len(cats)+len(invoices))
	for _, cat := range cats {
		out = append(out, domain.CategoryAmount{CategoryName: cat.Name, Amount: decimal.Zero})
	}
	for _, inv := range invoices {
		out = append(out, domain.CategoryAmount{CategoryName: inv.Service.Category.Name, Amount: inv.Amount})
	}
	slices.SortStableFunc(out, func(a, b domain.CategoryAmount) int {
		return strings.Compare(a.CategoryName, b.CategoryName)
	})
	return out, nil
}

func (c *Client) InvoiceDetails(ctx context.Context, start, end string) ([]domain.MonthlyDetail, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InvoiceDetails")
	defer span.End()

	invoices, err := c.invoicesBetween(ctx, "amount,"+serviceNameEmbed, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MonthlyDetail, len(invoices))
	for i, inv := range invoices {
		out[i] = domain.MonthlyDetail{
			ServiceName:   inv.Service.Name,
			ProviderName:  inv.Service.Provider.Name,
			Category:      inv.Service.Category.Name,
			MonthlyAmount: inv.Amount.InexactFloat64(),
			Type:          domain.DetailInfrastructure,
		}
	}
	return out, nil
}

func (c *Client) LicenseCosts(ctx context.Context, start, end string) ([]domain.LicenseCost, error) {
	ctx, span := tracer.Start(ctx, "Supabase.LicenseCosts")
	defer span.End()

	rows, err := selectRows[licenseRow](ctx, c, "license costs", query("license_plan",
		"select", "*,"+serviceNameEmbed,
		"start_month", "lt."+end,
		"or", "(end_month.is.null,end_month.gte."+start+")",
		"order", "id.asc"))
	if err != nil {
		return nil, err
	}

	out := make([]domain.LicenseCost, len(rows))
	for i, r := range rows {
		out[i] = domain.LicenseCost{
			Plan:         r.toDomain(),
			ServiceName:  r.Service.Name,
			ProviderName: r.Service.Provider.Name,
			Category:     r.Service.Category.Name,
		}
	}
	return out, nil
}

// invoicesBetween returns invoices with invoice_month in [start, end).
func (c *Client) invoicesBetween(ctx context.Context, sel, start, end string) ([]invoiceRow, error) {
	return selectRows[invoiceRow](ctx, c, "invoices", query("infra_invoice",
		"select", sel,
		"invoice_month", "gte."+start,
		"and", "(invoice_month.lt."+end+")"))
}
