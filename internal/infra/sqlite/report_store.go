package sqlite

import (
	"context"
	"database/sql"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// MonthlyInvoiceTotals implements port.HistorySource.
func (s *Store) MonthlyInvoiceTotals(ctx context.Context, since string) ([]domain.HistoricalPoint, error) {
	ctx, span := tracer.Start(ctx, "Store.MonthlyInvoiceTotals")
	defer span.End()
	span.SetAttributes(attribute.String("since", since))

	rows := make([]domain.InvoiceAmount, 0)
	err := queryRows(ctx, s.db,
		`SELECT invoice_month, amount FROM infra_invoice WHERE invoice_month >= ? ORDER BY invoice_month`,
		func(r *sql.Rows) error {
			var a domain.InvoiceAmount
			if err := r.Scan(&a.InvoiceMonth, &a.Amount); err != nil {
				return err
			}
			rows = append(rows, a)
			return nil
		}, since)
	if err != nil {
		return nil, s.fail("monthly invoice totals", "", err)
	}
	return domain.AggregateMonthly(rows), nil
}

func (s *Store) SpendByCategory(ctx context.Context, start, end string) ([]domain.CategoryAmount, error) {
	ctx, span := tracer.Start(ctx, "Store.SpendByCategory")
	defer span.End()

	out := make([]domain.CategoryAmount, 0)
	err := queryRows(ctx, s.db, `
		SELECT name, '0' FROM service_category
		UNION ALL
		SELECT c.name, i.amount
		FROM infra_invoice i
		JOIN service s ON s.id = i.service_id
		JOIN service_category c ON c.id = s.category_id
		WHERE i.invoice_month >= ? AND i.invoice_month < ?
		ORDER BY 1`,
		func(r *sql.Rows) error {
			var row domain.CategoryAmount
			if err := r.Scan(&row.CategoryName, &row.Amount); err != nil {
				return err
			}
			out = append(out, row)
			return nil
		}, start, end)
	if err != nil {
		return nil, s.fail("spend by category", "", err)
	}
	return out, nil
}

func (s *Store) InvoiceDetails(ctx context.Context, start, end string) ([]domain.MonthlyDetail, error) {
	ctx, span := tracer.Start(ctx, "Store.InvoiceDetails")
	defer span.End()

	out := make([]domain.MonthlyDetail, 0)
	err := queryRows(ctx, s.db, `
		SELECT s.name, p.name, c.name, i.amount
		FROM infra_invoice i
		JOIN service s ON s.id = i.service_id
		JOIN provider p ON p.id = s.provider_id
		JOIN service_category c ON c.id = s.category_id
		WHERE i.invoice_month >= ? AND i.invoice_month < ?`,
		func(r *sql.Rows) error {
			var d domain.MonthlyDetail
			var amt decimal.Decimal
			if err := r.Scan(&d.ServiceName, &d.ProviderName, &d.Category, &amt); err != nil {
				return err
			}
			d.MonthlyAmount = amt.InexactFloat64()
			d.Type = domain.DetailInfrastructure
			out = append(out, d)
			return nil
		}, start, end)
	if err != nil {
		return nil, s.fail("invoice details", "", err)
	}
	return out, nil
}

func (s *Store) LicenseCosts(ctx context.Context, start, end string) ([]domain.LicenseCost, error) {
	ctx, span := tracer.Start(ctx, "Store.LicenseCosts")
	defer span.End()

	out := make([]domain.LicenseCost, 0)
	err := queryRows(ctx, s.db, `
		SELECT l.id, l.service_id, l.monthly_unit_cost, l.qty, l.start_month, l.end_month, l.annual_commitment_end,
		       s.name, p.name, c.name
		FROM license_plan l
		JOIN service s ON s.id = l.service_id
		JOIN provider p ON p.id = s.provider_id
		JOIN service_category c ON c.id = s.category_id
		WHERE l.start_month < ? AND (l.end_month IS NULL OR l.end_month >= ?)
		ORDER BY s.name, l.id`,
		func(r *sql.Rows) error {
			var lc domain.LicenseCost
			var endMonth, commit sql.NullString
			if err := r.Scan(&lc.Plan.ID, &lc.Plan.ServiceID, &lc.Plan.MonthlyUnitCost, &lc.Plan.Qty,
				&lc.Plan.StartMonth, &endMonth, &commit, &lc.ServiceName, &lc.ProviderName, &lc.Category); err != nil {
				return err
			}
			lc.Plan.EndMonth, lc.Plan.AnnualCommitmentEnd = stringPtr(endMonth), stringPtr(commit)
			out = append(out, lc)
			return nil
		}, end, start)
	if err != nil {
		return nil, s.fail("license costs", "", err)
	}
	return out, nil
}
