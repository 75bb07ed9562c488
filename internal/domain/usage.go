package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Prepaid usage: top-ups and consumption
// ============================================================

// Topup is a prepaid credit purchase for a usage-billed service.
type Topup struct {
	ID              int64           `json:"id"`
	ServiceID       int64           `json:"serviceId"`
	TopupDate       string          `json:"topupDate"`
	AmountPurchased decimal.Decimal `json:"amountPurchased"`
	Currency        string          `json:"currency"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type TopupListItem struct {
	ID              int64           `json:"id"`
	TopupDate       string          `json:"topupDate"`
	AmountPurchased decimal.Decimal `json:"amountPurchased"`
	Currency        string          `json:"currency"`
	Service         Ref             `json:"service"`
	Provider        Ref             `json:"provider"`
}

// TopupInput is the body of POST /api/usage/topups and one entry of the bulk request.
type TopupInput struct {
	ServiceID       int64           `json:"serviceId"`
	TopupDate       string          `json:"topupDate"`
	AmountPurchased decimal.Decimal `json:"amountPurchased"`
	Currency        string          `json:"currency"`
}

func (in *TopupInput) Validate() error {
	return in.validation().Err()
}

func (in *TopupInput) validation() *Validation {
	in.Currency = NormalizeCurrency(in.Currency)
	v := &Validation{}
	v.Check(in.ServiceID > 0, "serviceId", "Required")
	v.Check(IsDate(in.TopupDate), "topupDate", "Must be a date (YYYY-MM-DD)")
	v.Check(in.AmountPurchased.IsPositive(), "amountPurchased", "Must be a positive number")
	v.Check(isCurrency(in.Currency), "currency", "Must be a 3-letter code")
	return v
}

// BulkTopupRequest is the body of POST /api/usage/topups/bulk.
type BulkTopupRequest struct {
	Records []TopupInput `json:"records"`
}

// Validate checks every record and reports all failures at once,
// with fields prefixed by the record index ("records.2.amountPurchased").
func (r *BulkTopupRequest) Validate() error {
	if len(r.Records) == 0 {
		return &ErrValidation{Field: "records", Message: "Invalid records array"}
	}
	all := &Validation{}
	for i := range r.Records {
		all.Merge("records."+strconv.Itoa(i)+".", r.Records[i].validation())
	}
	return all.Err()
}

// BulkImportResult is the response of a bulk top-up import.
type BulkImportResult struct {
	Message string  `json:"message"`
	BatchID string  `json:"batchId"`
	Records []Topup `json:"records"`
}

// ImportLine is the parse result of one line of a pasted top-up import.
type ImportLine struct {
	Line        int      `json:"line"`
	ServiceName string   `json:"serviceName"`
	Amount      string   `json:"amount"`
	Currency    string   `json:"currency"`
	Date        string   `json:"date"`
	ServiceID   int64    `json:"serviceId,omitempty"`
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors,omitempty"`
}

// TextImportResult is the response of POST /api/usage/topups/import.
type TextImportResult struct {
	Lines  []ImportLine      `json:"lines"`
	Import *BulkImportResult `json:"import,omitempty"`
}

// Consumption is usage drawn down from a prepaid balance.
type Consumption struct {
	ID              int64           `json:"id"`
	ServiceID       int64           `json:"serviceId"`
	ConsumptionDate string          `json:"consumptionDate"`
	AmountConsumed  decimal.Decimal `json:"amountConsumed"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type ConsumptionListItem struct {
	ID              int64           `json:"id"`
	ConsumptionDate string          `json:"consumptionDate"`
	AmountConsumed  decimal.Decimal `json:"amountConsumed"`
	Service         Ref             `json:"service"`
	Provider        Ref             `json:"provider"`
}

type ConsumptionInput struct {
	ServiceID       int64           `json:"serviceId"`
	ConsumptionDate string          `json:"consumptionDate"`
	AmountConsumed  decimal.Decimal `json:"amountConsumed"`
}

func (in *ConsumptionInput) Validate() error {
	v := &Validation{}
	v.Check(in.ServiceID > 0, "serviceId", "Required")
	v.Check(IsDate(in.ConsumptionDate), "consumptionDate", "Must be a date (YYYY-MM-DD)")
	v.Check(in.AmountConsumed.IsPositive(), "amountConsumed", "Must be a positive number")
	return v.Err()
}

// ServiceUsage holds the purchased/consumed totals of one service.
type ServiceUsage struct {
	ServiceID      int64
	ServiceName    string
	ProviderName   string
	TotalPurchased decimal.Decimal
	TotalConsumed  decimal.Decimal
}

// Balance is returned by GET /api/usage/balance/{serviceId}.
type Balance struct {
	Balance        float64 `json:"balance"`
	TotalPurchased float64 `json:"totalPurchased"`
	TotalConsumed  float64 `json:"totalConsumed"`
}

// Balance derives the remaining balance of the service.
func (u *ServiceUsage) Balance() Balance {
	return Balance{
		Balance:        u.TotalPurchased.Sub(u.TotalConsumed).InexactFloat64(),
		TotalPurchased: u.TotalPurchased.InexactFloat64(),
		TotalConsumed:  u.TotalConsumed.InexactFloat64(),
	}
}

// LowBalanceAlert flags a prepaid service running out of credit.
type LowBalanceAlert struct {
	ServiceID        int64   `json:"serviceId"`
	ServiceName      string  `json:"serviceName"`
	ProviderName     string  `json:"providerName"`
	Balance          float64 `json:"balance"`
	TotalPurchased   float64 `json:"totalPurchased"`
	PercentRemaining float64 `json:"percentRemaining"`
}

// LowBalance returns an alert when less than thresholdPct of the purchased
// credit remains. Services that never bought credit are never flagged.
func (u *ServiceUsage) LowBalance(thresholdPct float64) (*LowBalanceAlert, bool) {
	if !u.TotalPurchased.IsPositive() {
		return nil, false
	}
	remaining := u.TotalPurchased.Sub(u.TotalConsumed)
	pct := remaining.Div(u.TotalPurchased).Mul(decimal.NewFromInt(100)).InexactFloat64()
	if pct >= thresholdPct {
		return nil, false
	}
	return &LowBalanceAlert{
		ServiceID:        u.ServiceID,
		ServiceName:      u.ServiceName,
		ProviderName:     u.ProviderName,
		Balance:          remaining.InexactFloat64(),
		TotalPurchased:   u.TotalPurchased.InexactFloat64(),
		PercentRemaining: pct,
	}, true
}
