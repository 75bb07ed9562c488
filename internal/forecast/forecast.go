// Package forecast projects monthly spend forward with a least-squares line.
//
// Compute is a pure function of the history and an anchor time. The anchor
// only labels the projected months; the regression itself uses the history
// positions 0..n-1, so calendar gaps in the history are not modelled.
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
)

const (
	// Horizon is the number of projected months.
	Horizon = 6

	stablePct   = 5.0
	alertPct    = 20.0
	criticalPct = 50.0

	// yearFactor annualizes the six projected months.
	yearFactor = 2
)

// Compute builds the forecast for history (ascending by month) anchored at anchor.
func Compute(history []domain.HistoricalPoint, anchor time.Time) *domain.ForecastResult {
	n := len(history)
	if n == 0 {
		return &domain.ForecastResult{
			Trend:     domain.TrendStable,
			Forecasts: []domain.MonthlyForecast{},
		}
	}

	ys := make([]float64, n)
	for i, p := range history {
		ys[i] = p.TotalAmount
	}

	if n == 1 {
		return flat(ys[0], anchor)
	}

	slope, intercept, ok := Regress(ys)
	if !ok {
		return flat(ys[n-1], anchor)
	}

	raw := changePct(ys[0], ys[n-1])
	trend := classify(raw)

	res := &domain.ForecastResult{
		Trend:           trend,
		TrendPercentage: int(math.Round(math.Abs(raw))),
		Forecasts:       make([]domain.MonthlyForecast, Horizon),
	}

	var total float64
	for i := 0; i < Horizon; i++ {
		x := float64(n + i)
		projected := math.Round(math.Max(0, intercept+slope*x))
		res.Forecasts[i] = domain.MonthlyForecast{
			Month:      MonthLabel(anchor, i+1),
			Projected:  projected,
			Confidence: confidenceAt(i),
		}
		total += projected
	}

	res.NextMonthProjection = res.Forecasts[0].Projected
	res.QuarterProjection = res.Forecasts[0].Projected + res.Forecasts[1].Projected + res.Forecasts[2].Projected
	res.YearProjection = total * yearFactor
	res.BudgetAlert = budgetAlert(trend, raw)

	return res
}

// Regress fits y = intercept + slope·x over x = 0..len(ys)-1.
// ok is false when the system is degenerate (fewer than two points).
func Regress(ys []float64) (slope, intercept float64, ok bool) {
	n := float64(len(ys))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, false
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}

// MonthLabel names the calendar month offset months after anchor's month,
// e.g. "January 2026".
func MonthLabel(anchor time.Time, offset int) string {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	m := first.AddDate(0, offset, 0)
	return fmt.Sprintf("%s %d", m.Month(), m.Year())
}

// flat repeats a single observed amount across the horizon.
func flat(amount float64, anchor time.Time) *domain.ForecastResult {
	res := &domain.ForecastResult{
		NextMonthProjection: amount,
		QuarterProjection:   amount * 3,
		YearProjection:      amount * 12,
		Trend:               domain.TrendStable,
		Forecasts:           make([]domain.MonthlyForecast, Horizon),
	}
	for i := 0; i < Horizon; i++ {
		res.Forecasts[i] = domain.MonthlyForecast{
			Month:      MonthLabel(anchor, i+1),
			Projected:  amount,
			Confidence: domain.ConfidenceLow,
		}
	}
	return res
}

// changePct is the first-to-last percentage change; zero when first is not positive.
func changePct(first, last float64) float64 {
	if first <= 0 {
		return 0
	}
	return (last - first) / first * 100
}

func classify(raw float64) domain.Trend {
	switch {
	case math.Abs(raw) <= stablePct:
		return domain.TrendStable
	case raw > 0:
		return domain.TrendIncreasing
	default:
		return domain.TrendDecreasing
	}
}

func confidenceAt(i int) domain.Confidence {
	switch {
	case i < 2:
		return domain.ConfidenceHigh
	case i < 4:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func budgetAlert(trend domain.Trend, raw float64) *domain.BudgetAlert {
	if trend != domain.TrendIncreasing || raw <= alertPct {
		return nil
	}
	severity := domain.SeverityWarning
	if raw > criticalPct {
		severity = domain.SeverityCritical
	}
	return &domain.BudgetAlert{
		Message:  fmt.Sprintf("Costs trending up %d%% - consider reviewing high-impact services", int(math.Round(raw))),
		Severity: severity,
	}
}
