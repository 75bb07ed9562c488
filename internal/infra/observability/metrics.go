package observability

import (
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the cost dashboard. A nil
// *Metrics is valid and discards every observation.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	httpDuration     *prometheus.HistogramVec
	storeErrors      *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	forecastDuration prometheus.Histogram
	forecasts        *prometheus.CounterVec
	budgetAlerts     *prometheus.CounterVec
	topupsImported   prometheus.Counter
	events           *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "costdash_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costdash_store_errors_total",
				Help: "Total failed store operations.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costdash_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costdash_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		forecastDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "costdash_forecast_duration_seconds",
				Help:    "Time to load history and compute a cost forecast.",
				Buckets: prometheus.DefBuckets,
			},
		),
		forecasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costdash_forecasts_total",
				Help: "Forecasts computed, by resulting trend.",
			},
			[]string{"trend"},
		),
		budgetAlerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costdash_budget_alerts_total",
				Help: "Budget alerts raised by forecasts, by severity.",
			},
			[]string{"severity"},
		),
		topupsImported: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "costdash_topups_imported_total",
				Help: "Top-up records written by bulk imports.",
			},
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costdash_events_published_total",
				Help: "Cost events published, by type and outcome.",
			},
			[]string{"type", "outcome"},
		),
	}
}

// RecordHTTPRequest records the duration of one HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
}

// IncrStoreError increments the store error counter.
func (m *Metrics) IncrStoreError(operation string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordForecast records one computed forecast.
func (m *Metrics) RecordForecast(res *domain.ForecastResult, d time.Duration) {
	if m == nil {
		return
	}
	m.forecastDuration.Observe(d.Seconds())
	m.forecasts.WithLabelValues(string(res.Trend)).Inc()
	if res.BudgetAlert != nil {
		m.budgetAlerts.WithLabelValues(string(res.BudgetAlert.Severity)).Inc()
	}
}

// AddTopupsImported counts records written by a bulk import.
func (m *Metrics) AddTopupsImported(n int) {
	if m == nil {
		return
	}
	m.topupsImported.Add(float64(n))
}

// IncrEvent counts a publish attempt; outcome is "ok" or "error".
func (m *Metrics) IncrEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, outcome).Inc()
}

// Snapshot reads the counters back for GET /api/metrics/ops. A nil
// *Metrics yields an all-zero snapshot.
func (m *Metrics) Snapshot() *domain.OpsMetrics {
	trends := []domain.Trend{domain.TrendIncreasing, domain.TrendDecreasing, domain.TrendStable}
	severities := []domain.Severity{domain.SeverityWarning, domain.SeverityCritical}
	eventTypes := []string{domain.EventInvoiceCreated, domain.EventTopupCreated, domain.EventTopupsImported}

	snap := &domain.OpsMetrics{
		ForecastsByTrend: make(map[string]int64, len(trends)),
		BudgetAlerts:     make(map[string]int64, len(severities)),
		Period:           "all_time",
	}
	if m == nil {
		return snap
	}

	for _, t := range trends {
		v := int64(getCounterValue(m.forecasts, string(t)))
		snap.ForecastsByTrend[string(t)] = v
		snap.ForecastsComputed += v
	}
	for _, s := range severities {
		snap.BudgetAlerts[string(s)] = int64(getCounterValue(m.budgetAlerts, string(s)))
	}
	for _, et := range eventTypes {
		snap.EventsPublished += int64(getCounterValue(m.events, et, "ok"))
		snap.EventsFailed += int64(getCounterValue(m.events, et, "error"))
	}
	snap.TopupsImported = int64(readCounter(m.topupsImported))

	hits := getCounterValue(m.cacheHits, "reference")
	misses := getCounterValue(m.cacheMisses, "reference")
	if hits+misses > 0 {
		snap.CacheHitRate = hits / (hits + misses)
	}
	return snap
}

// getCounterValue extracts the current value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	return readCounter(cv.WithLabelValues(labels...))
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
