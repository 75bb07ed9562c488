package forecast_test

import (
	"testing"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/forecast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2025, time.November, 15, 10, 30, 0, 0, time.UTC)

func points(amounts ...float64) []domain.HistoricalPoint {
	out := make([]domain.HistoricalPoint, len(amounts))
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, a := range amounts {
		out[i] = domain.HistoricalPoint{
			Month:       start.AddDate(0, i, 0).Format(domain.MonthLayout),
			TotalAmount: a,
		}
	}
	return out
}

func projected(res *domain.ForecastResult) []float64 {
	out := make([]float64, len(res.Forecasts))
	for i, f := range res.Forecasts {
		out[i] = f.Projected
	}
	return out
}

func TestCompute_Empty(t *testing.T) {
	res := forecast.Compute(nil, anchor)

	assert.Zero(t, res.NextMonthProjection)
	assert.Zero(t, res.QuarterProjection)
	assert.Zero(t, res.YearProjection)
	assert.Equal(t, domain.TrendStable, res.Trend)
	assert.Zero(t, res.TrendPercentage)
	assert.NotNil(t, res.Forecasts)
	assert.Empty(t, res.Forecasts)
	assert.Nil(t, res.BudgetAlert)
}

func TestCompute_SinglePoint(t *testing.T) {
	res := forecast.Compute(points(1000), anchor)

	assert.Equal(t, 1000.0, res.NextMonthProjection)
	assert.Equal(t, 3000.0, res.QuarterProjection)
	assert.Equal(t, 12000.0, res.YearProjection)
	assert.Equal(t, domain.TrendStable, res.Trend)
	assert.Zero(t, res.TrendPercentage)
	assert.Nil(t, res.BudgetAlert)

	require.Len(t, res.Forecasts, forecast.Horizon)
	for _, f := range res.Forecasts {
		assert.Equal(t, 1000.0, f.Projected)
		assert.Equal(t, domain.ConfidenceLow, f.Confidence)
	}
	assert.Equal(t, "December 2025", res.Forecasts[0].Month)
	assert.Equal(t, "May 2026", res.Forecasts[5].Month)
}

func TestCompute_TwoPoints(t *testing.T) {
	res := forecast.Compute(points(100, 200), anchor)

	require.Len(t, res.Forecasts, forecast.Horizon)
	assert.Equal(t, []float64{300, 400, 500, 600, 700, 800}, projected(res))
	assert.Equal(t, 300.0, res.NextMonthProjection)
	assert.Equal(t, 1200.0, res.QuarterProjection)
	assert.Equal(t, 6600.0, res.YearProjection)
	assert.Equal(t, domain.TrendIncreasing, res.Trend)
	assert.Equal(t, 100, res.TrendPercentage)

	require.NotNil(t, res.BudgetAlert)
	assert.Equal(t, domain.SeverityCritical, res.BudgetAlert.Severity)
	assert.Equal(t, "Costs trending up 100% - consider reviewing high-impact services", res.BudgetAlert.Message)
}

func TestCompute_FlatSeries(t *testing.T) {
	res := forecast.Compute(points(500, 500, 500, 500), anchor)

	assert.Equal(t, []float64{500, 500, 500, 500, 500, 500}, projected(res))
	assert.Equal(t, domain.TrendStable, res.Trend)
	assert.Zero(t, res.TrendPercentage)
	assert.Equal(t, 6000.0, res.YearProjection)
	assert.Nil(t, res.BudgetAlert)
}

func TestCompute_Idempotent(t *testing.T) {
	history := points(1200.5, 980.25, 1430, 1600.75, 1550)

	first := forecast.Compute(history, anchor)
	second := forecast.Compute(history, anchor)

	assert.Equal(t, first, second)
}

func TestCompute_ConfidenceDecays(t *testing.T) {
	want := []domain.Confidence{
		domain.ConfidenceHigh, domain.ConfidenceHigh,
		domain.ConfidenceMedium, domain.ConfidenceMedium,
		domain.ConfidenceLow, domain.ConfidenceLow,
	}

	for _, history := range [][]domain.HistoricalPoint{points(10, 20), points(5, 9, 3, 12, 7)} {
		res := forecast.Compute(history, anchor)
		require.Len(t, res.Forecasts, forecast.Horizon)
		for i, f := range res.Forecasts {
			assert.Equal(t, want[i], f.Confidence, "forecast %d", i)
		}
	}
}

func TestCompute_ClampsNegativeProjections(t *testing.T) {
	res := forecast.Compute(points(1000, 500, 100), anchor)

	for _, p := range projected(res) {
		assert.GreaterOrEqual(t, p, 0.0)
	}
	assert.Equal(t, domain.TrendDecreasing, res.Trend)
	assert.Equal(t, 90, res.TrendPercentage)
	assert.Nil(t, res.BudgetAlert)
}

func TestCompute_ZeroBaseIsStable(t *testing.T) {
	res := forecast.Compute(points(0, 100, 200), anchor)

	assert.Equal(t, domain.TrendStable, res.Trend)
	assert.Zero(t, res.TrendPercentage)
	assert.Nil(t, res.BudgetAlert)
	assert.Equal(t, 300.0, res.NextMonthProjection)
}

func TestCompute_BudgetAlertThresholds(t *testing.T) {
	tests := []struct {
		name     string
		last     float64
		trend    domain.Trend
		severity domain.Severity // empty means no alert
	}{
		{name: "within stable band", last: 105, trend: domain.TrendStable},
		{name: "just increasing", last: 106, trend: domain.TrendIncreasing},
		{name: "exactly twenty", last: 120, trend: domain.TrendIncreasing},
		{name: "above twenty", last: 121, trend: domain.TrendIncreasing, severity: domain.SeverityWarning},
		{name: "exactly fifty", last: 150, trend: domain.TrendIncreasing, severity: domain.SeverityWarning},
		{name: "above fifty", last: 151, trend: domain.TrendIncreasing, severity: domain.SeverityCritical},
		{name: "steep decrease", last: 40, trend: domain.TrendDecreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := forecast.Compute(points(100, tt.last), anchor)

			assert.Equal(t, tt.trend, res.Trend)
			if tt.severity == "" {
				assert.Nil(t, res.BudgetAlert)
				return
			}
			require.NotNil(t, res.BudgetAlert)
			assert.Equal(t, tt.severity, res.BudgetAlert.Severity)
		})
	}
}

func TestCompute_AlertMessageRoundsPercentage(t *testing.T) {
	res := forecast.Compute(points(200, 263), anchor)

	require.NotNil(t, res.BudgetAlert)
	assert.Equal(t, "Costs trending up 32% - consider reviewing high-impact services", res.BudgetAlert.Message)
	assert.Equal(t, 32, res.TrendPercentage)
	assert.Equal(t, domain.SeverityWarning, res.BudgetAlert.Severity)
}

func TestCompute_LabelsFollowAnchorNotHistory(t *testing.T) {
	// History ends in February; labels still start after the anchor month.
	res := forecast.Compute(points(100, 110), time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC))

	labels := make([]string, len(res.Forecasts))
	for i, f := range res.Forecasts {
		labels[i] = f.Month
	}
	assert.Equal(t, []string{
		"August 2026", "September 2026", "October 2026",
		"November 2026", "December 2026", "January 2027",
	}, labels)
}

func TestRegress(t *testing.T) {
	slope, intercept, ok := forecast.Regress([]float64{100, 200})
	require.True(t, ok)
	assert.InDelta(t, 100, slope, 1e-9)
	assert.InDelta(t, 100, intercept, 1e-9)

	_, _, ok = forecast.Regress([]float64{42})
	assert.False(t, ok)
}

func TestMonthLabel_YearRollover(t *testing.T) {
	dec := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "January 2026", forecast.MonthLabel(dec, 1))
	assert.Equal(t, "June 2026", forecast.MonthLabel(dec, 6))
}
