package sqlite

import (
	"context"
	"database/sql"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
)

func (s *Store) ListInvoices(ctx context.Context) ([]domain.InvoiceListItem, error) {
	ctx, span := tracer.Start(ctx, "Store.ListInvoices")
	defer span.End()

	out := make([]domain.InvoiceListItem, 0)
	err := queryRows(ctx, s.db, `
		SELECT i.id, i.invoice_month, i.amount, i.currency, s.id, s.name, p.id, p.name
		FROM infra_invoice i
		JOIN service s ON s.id = i.service_id
		JOIN provider p ON p.id = s.provider_id
		ORDER BY i.invoice_month DESC, i.id DESC`,
		func(rows *sql.Rows) error {
			var it domain.InvoiceListItem
			if err := rows.Scan(&it.ID, &it.InvoiceMonth, &it.Amount, &it.Currency,
				&it.Service.ID, &it.Service.Name, &it.Provider.ID, &it.Provider.Name); err != nil {
				return err
			}
			out = append(out, it)
			return nil
		})
	if err != nil {
		return nil, s.fail("list invoices", "", err)
	}
	return out, nil
}

func (s *Store) CreateInvoice(ctx context.Context, in *domain.InvoiceInput) (*domain.Invoice, error) {
	ctx, span := tracer.Start(ctx, "Store.CreateInvoice")
	defer span.End()

	ts := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO infra_invoice (service_id, invoice_month, amount, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ServiceID, in.InvoiceMonth, in.Amount.String(), in.Currency, ts, ts)
	if err != nil {
		return nil, s.fail("create invoice", "serviceId", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, s.fail("create invoice", "", err)
	}

	return &domain.Invoice{
		ID:           id,
		ServiceID:    in.ServiceID,
		InvoiceMonth: in.InvoiceMonth,
		Amount:       in.Amount,
		Currency:     in.Currency,
		CreatedAt:    parseTime(ts),
		UpdatedAt:    parseTime(ts),
	}, nil
}
