package observability_test

import (
	"testing"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/observability"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := observability.NewMetrics()
	m.RecordForecast(&domain.ForecastResult{
		Trend:       domain.TrendIncreasing,
		BudgetAlert: &domain.BudgetAlert{Severity: domain.SeverityWarning},
	}, time.Millisecond)
	m.IncrCacheHit("reference")
	m.IncrCacheMiss("reference")
	m.AddTopupsImported(3)
	m.IncrEvent(domain.EventTopupCreated, "ok")
	m.IncrEvent(domain.EventTopupCreated, "error")

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.ForecastsComputed)
	assert.Equal(t, int64(1), snap.ForecastsByTrend["increasing"])
	assert.Equal(t, int64(1), snap.BudgetAlerts["warning"])
	assert.Equal(t, int64(3), snap.TopupsImported)
	assert.Equal(t, int64(1), snap.EventsPublished)
	assert.Equal(t, int64(1), snap.EventsFailed)
	assert.InDelta(t, 0.5, snap.CacheHitRate, 1e-9)
}

func TestMetrics_NilDiscards(t *testing.T) {
	var m *observability.Metrics

	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("/api/summary", "GET", "200", time.Millisecond)
		m.IncrStoreError("history")
		m.IncrCacheHit("reference")
		m.IncrCacheMiss("reference")
		m.RecordForecast(&domain.ForecastResult{Trend: domain.TrendStable}, time.Millisecond)
		m.AddTopupsImported(2)
		m.IncrEvent(domain.EventInvoiceCreated, "ok")
	})

	snap := m.Snapshot()
	assert.Zero(t, snap.ForecastsComputed)
	assert.Equal(t, "all_time", snap.Period)
	assert.NotNil(t, snap.ForecastsByTrend)
}
