package domain

import "github.com/shopspring/decimal"

// CategorySpend is one row of the monthly spend-by-category chart.
type CategorySpend struct {
	CategoryName string  `json:"categoryName"`
	TotalAmount  float64 `json:"totalAmount"`
}

// CategoryAmount is a raw (category, amount) row; Amount is zero for
// categories without invoices in the period.
type CategoryAmount struct {
	CategoryName string
	Amount       decimal.Decimal
}

// SumByCategory totals raw rows per category, keeping first-seen order.
func SumByCategory(rows []CategoryAmount) []CategorySpend {
	idx := make(map[string]int)
	totals := make([]decimal.Decimal, 0)
	names := make([]string, 0)
	for _, r := range rows {
		i, ok := idx[r.CategoryName]
		if !ok {
			i = len(names)
			idx[r.CategoryName] = i
			names = append(names, r.CategoryName)
			totals = append(totals, decimal.Zero)
		}
		totals[i] = totals[i].Add(r.Amount)
	}

	out := make([]CategorySpend, len(names))
	for i, n := range names {
		out[i] = CategorySpend{CategoryName: n, TotalAmount: totals[i].InexactFloat64()}
	}
	return out
}

// Detail row types.
const (
	DetailInfrastructure = "infrastructure"
	DetailLicense        = "license"
)

// MonthlyDetail is one row of the monthly detail table.
type MonthlyDetail struct {
	ServiceName   string  `json:"serviceName"`
	ProviderName  string  `json:"providerName"`
	Category      string  `json:"category"`
	MonthlyAmount float64 `json:"monthlyAmount"`
	Type          string  `json:"type"`
}

// LicenseCost is an active license plan with its joined names.
type LicenseCost struct {
	Plan         LicensePlan
	ServiceName  string
	ProviderName string
	Category     string
}

// SummaryAlerts groups the alert lists shown on the dashboard.
type SummaryAlerts struct {
	LowBalance []LowBalanceAlert `json:"lowBalance"`
	Expiring   []Commitment      `json:"expiring"`
}

// Summary is returned by GET /api/summary.
type Summary struct {
	CurrentMonthTotal float64           `json:"currentMonthTotal"`
	ActiveLicenses    int               `json:"activeLicenses"`
	LowBalanceAlerts  int               `json:"lowBalanceAlerts"`
	ExpiringLicenses  int               `json:"expiringLicenses"`
	MonthlySpend      []CategorySpend   `json:"monthlySpend"`
	RecentInvoices    []InvoiceListItem `json:"recentInvoices"`
	Alerts            SummaryAlerts     `json:"alerts"`
}
