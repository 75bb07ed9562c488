package domain

// HistoricalPoint is one month's total invoiced spend.
type HistoricalPoint struct {
	Month       string  `json:"month"` // YYYY-MM
	TotalAmount float64 `json:"totalAmount"`
}

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// MonthlyForecast is one projected month.
type MonthlyForecast struct {
	Month      string     `json:"month"` // e.g. "January 2026"
	Projected  float64    `json:"projected"`
	Confidence Confidence `json:"confidence"`
}

// BudgetAlert asks for a manual review of fast-growing spend.
type BudgetAlert struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ForecastResult is returned by GET /api/cost-forecast. It is computed per
// request and never stored.
type ForecastResult struct {
	NextMonthProjection float64           `json:"nextMonthProjection"`
	QuarterProjection   float64           `json:"quarterProjection"`
	YearProjection      float64           `json:"yearProjection"`
	Trend               Trend             `json:"trend"`
	TrendPercentage     int               `json:"trendPercentage"`
	Forecasts           []MonthlyForecast `json:"forecasts"`
	BudgetAlert         *BudgetAlert      `json:"budgetAlert"`
}
