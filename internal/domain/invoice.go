package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a monthly infrastructure bill for one service.
type Invoice struct {
	ID           int64           `json:"id"`
	ServiceID    int64           `json:"serviceId"`
	InvoiceMonth string          `json:"invoiceMonth"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// InvoiceListItem is an invoice joined with its service and provider.
type InvoiceListItem struct {
	ID           int64           `json:"id"`
	InvoiceMonth string          `json:"invoiceMonth"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Service      Ref             `json:"service"`
	Provider     Ref             `json:"provider"`
}

// InvoiceInput is the body of POST /api/invoices.
type InvoiceInput struct {
	ServiceID    int64           `json:"serviceId"`
	InvoiceMonth string          `json:"invoiceMonth"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

func (in *InvoiceInput) Validate() error {
	in.Currency = NormalizeCurrency(in.Currency)
	v := &Validation{}
	v.Check(in.ServiceID > 0, "serviceId", "Required")
	v.Check(IsDate(in.InvoiceMonth), "invoiceMonth", "Must be a date (YYYY-MM-DD)")
	v.Check(in.Amount.IsPositive(), "amount", "Must be a positive number")
	v.Check(isCurrency(in.Currency), "currency", "Must be a 3-letter code")
	return v.Err()
}

// InvoiceAmount is the raw (month, amount) pair behind the forecast history.
type InvoiceAmount struct {
	InvoiceMonth string
	Amount       decimal.Decimal
}

// AggregateMonthly sums invoice amounts per YYYY-MM, ascending by month.
// Months with no invoices do not appear.
func AggregateMonthly(rows []InvoiceAmount) []HistoricalPoint {
	totals := make(map[string]decimal.Decimal)
	months := make([]string, 0)
	for _, r := range rows {
		if len(r.InvoiceMonth) < 7 {
			continue
		}
		key := r.InvoiceMonth[:7]
		if _, ok := totals[key]; !ok {
			months = append(months, key)
		}
		totals[key] = totals[key].Add(r.Amount)
	}
	slices.Sort(months)

	points := make([]HistoricalPoint, 0, len(months))
	for _, m := range months {
		points = append(points, HistoricalPoint{Month: m, TotalAmount: totals[m].InexactFloat64()})
	}
	return points
}
