package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Budget scopes.
const (
	BudgetCategory = "category"
	BudgetService  = "service"
	BudgetTotal    = "total"
)

// Budget periods.
const (
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodYearly    = "yearly"
)

// BudgetStatus is where spend sits relative to a budget.
type BudgetStatus string

const (
	StatusWithinBudget     BudgetStatus = "within_budget"
	StatusApproachingLimit BudgetStatus = "approaching_limit"
	StatusOverBudget       BudgetStatus = "over_budget"
)

// DefaultAlertThreshold is the utilization percentage at which a budget
// starts approaching its limit.
const DefaultAlertThreshold = 80

// Budget is a spending target for a category, a service or the total.
type Budget struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	BudgetType     string          `json:"budgetType"`
	CategoryID     *int64          `json:"categoryId"`
	ServiceID      *int64          `json:"serviceId"`
	BudgetAmount   decimal.Decimal `json:"budgetAmount"`
	BudgetPeriod   string          `json:"budgetPeriod"`
	AlertThreshold float64         `json:"alertThreshold"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// BudgetRecord is a budget joined with the names of what it covers.
type BudgetRecord struct {
	Budget
	CategoryName string
	ServiceName  string
	ProviderName string
}

// BudgetInput is the body of POST /api/budgets.
type BudgetInput struct {
	Name           string          `json:"name"`
	BudgetType     string          `json:"budgetType"`
	CategoryID     *int64          `json:"categoryId"`
	ServiceID      *int64          `json:"serviceId"`
	BudgetAmount   decimal.Decimal `json:"budgetAmount"`
	BudgetPeriod   string          `json:"budgetPeriod"`
	AlertThreshold *float64        `json:"alertThreshold"`
	IsActive       *bool           `json:"isActive"`
}

// Validate normalizes defaults (monthly, 80%, active) and checks that the
// scope id matches the budget type.
func (in *BudgetInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.BudgetType = strings.ToLower(strings.TrimSpace(in.BudgetType))
	in.BudgetPeriod = strings.ToLower(strings.TrimSpace(in.BudgetPeriod))
	if in.BudgetPeriod == "" {
		in.BudgetPeriod = PeriodMonthly
	}
	if in.AlertThreshold == nil {
		t := float64(DefaultAlertThreshold)
		in.AlertThreshold = &t
	}
	if in.IsActive == nil {
		active := true
		in.IsActive = &active
	}

	v := &Validation{}
	v.Check(in.Name != "", "name", "Required")
	v.Check(len(in.Name) <= 128, "name", "Must be at most 128 characters")
	v.Check(in.BudgetAmount.IsPositive(), "budgetAmount", "Must be a positive number")
	v.Check(slices.Contains([]string{PeriodMonthly, PeriodQuarterly, PeriodYearly}, in.BudgetPeriod),
		"budgetPeriod", "Must be monthly, quarterly or yearly")
	v.Check(*in.AlertThreshold > 0 && *in.AlertThreshold <= 100, "alertThreshold", "Must be between 0 and 100")

	switch in.BudgetType {
	case BudgetCategory:
		v.Check(in.CategoryID != nil && *in.CategoryID > 0, "categoryId", "Required")
		in.ServiceID = nil
	case BudgetService:
		v.Check(in.ServiceID != nil && *in.ServiceID > 0, "serviceId", "Required")
		in.CategoryID = nil
	case BudgetTotal:
		in.CategoryID, in.ServiceID = nil, nil
	default:
		v.Check(false, "budgetType", "Must be category, service or total")
	}
	return v.Err()
}

// PeriodRange returns the half-open [start, end) date range of the period
// containing now.
func PeriodRange(period string, now time.Time) (start, end string) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := 1
	switch period {
	case PeriodQuarterly:
		first = first.AddDate(0, -(int(now.Month()-1) % 3), 0)
		months = 3
	case PeriodYearly:
		first = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		months = 12
	}
	return first.Format(DateLayout), first.AddDate(0, months, 0).Format(DateLayout)
}

// Covers reports whether an invoice row counts against the budget.
func (b *BudgetRecord) Covers(d MonthlyDetail) bool {
	switch b.BudgetType {
	case BudgetCategory:
		return d.Category == b.CategoryName
	case BudgetService:
		return d.ServiceName == b.ServiceName && d.ProviderName == b.ProviderName
	}
	return true
}

// BudgetItem is one row of GET /api/budgets.
type BudgetItem struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	CategoryName   string       `json:"categoryName,omitempty"`
	ServiceName    string       `json:"serviceName,omitempty"`
	BudgetType     string       `json:"budgetType"`
	BudgetAmount   float64      `json:"budgetAmount"`
	BudgetPeriod   string       `json:"budgetPeriod"`
	CurrentSpend   float64      `json:"currentSpend"`
	Utilization    float64      `json:"utilization"`
	AlertThreshold float64      `json:"alertThreshold"`
	IsActive       bool         `json:"isActive"`
	Status         BudgetStatus `json:"status"`
}

// Evaluate compares spend against the budget. Utilization is a percentage
// rounded to one decimal; spend beyond the amount is over budget and spend
// at or past the alert threshold is approaching the limit.
func (b *BudgetRecord) Evaluate(spend decimal.Decimal) BudgetItem {
	util := decimal.Zero
	if b.BudgetAmount.IsPositive() {
		util = spend.Div(b.BudgetAmount).Mul(decimal.NewFromInt(100)).Round(1)
	}

	status := StatusWithinBudget
	switch {
	case spend.GreaterThan(b.BudgetAmount):
		status = StatusOverBudget
	case util.InexactFloat64() >= b.AlertThreshold:
		status = StatusApproachingLimit
	}

	return BudgetItem{
		ID:             b.ID,
		Name:           b.Name,
		CategoryName:   b.CategoryName,
		ServiceName:    b.ServiceName,
		BudgetType:     b.BudgetType,
		BudgetAmount:   b.BudgetAmount.InexactFloat64(),
		BudgetPeriod:   b.BudgetPeriod,
		CurrentSpend:   spend.InexactFloat64(),
		Utilization:    util.InexactFloat64(),
		AlertThreshold: b.AlertThreshold,
		IsActive:       b.IsActive,
		Status:         status,
	}
}

// BudgetSummary is returned by GET /api/budget/summary. Amounts and
// utilization cover active budgets only.
type BudgetSummary struct {
	TotalBudgets      int     `json:"totalBudgets"`
	ActiveBudgets     int     `json:"activeBudgets"`
	TotalBudgetAmount float64 `json:"totalBudgetAmount"`
	TotalSpent        float64 `json:"totalSpent"`
	BudgetUtilization float64 `json:"budgetUtilization"`
	OverBudgetCount   int     `json:"overBudgetCount"`
	AlertCount        int     `json:"alertCount"`
}

// SummarizeBudgets folds evaluated budgets into the summary cards.
func SummarizeBudgets(items []BudgetItem) BudgetSummary {
	sum := BudgetSummary{TotalBudgets: len(items)}
	amount, spent := decimal.Zero, decimal.Zero
	for _, it := range items {
		if !it.IsActive {
			continue
		}
		sum.ActiveBudgets++
		amount = amount.Add(decimal.NewFromFloat(it.BudgetAmount))
		spent = spent.Add(decimal.NewFromFloat(it.CurrentSpend))
		switch it.Status {
		case StatusOverBudget:
			sum.OverBudgetCount++
			sum.AlertCount++
		case StatusApproachingLimit:
			sum.AlertCount++
		}
	}
	sum.TotalBudgetAmount = amount.InexactFloat64()
	sum.TotalSpent = spent.InexactFloat64()
	if amount.IsPositive() {
		sum.BudgetUtilization = spent.Div(amount).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
	}
	return sum
}

// BudgetChart is returned by GET /api/budget/chart: one bar pair per
// active budget.
type BudgetChart struct {
	Labels     []string  `json:"labels"`
	BudgetData []float64 `json:"budgetData"`
	SpentData  []float64 `json:"spentData"`
}

// ChartBudgets builds the budget-vs-actual chart from evaluated budgets.
func ChartBudgets(items []BudgetItem) BudgetChart {
	chart := BudgetChart{Labels: []string{}, BudgetData: []float64{}, SpentData: []float64{}}
	for _, it := range items {
		if !it.IsActive {
			continue
		}
		chart.Labels = append(chart.Labels, it.Name)
		chart.BudgetData = append(chart.BudgetData, it.BudgetAmount)
		chart.SpentData = append(chart.SpentData, it.CurrentSpend)
	}
	return chart
}
