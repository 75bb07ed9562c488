package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of one dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
	Error       string `json:"error,omitempty"`
}

// OpsMetrics is returned by GET /api/metrics/ops.
type OpsMetrics struct {
	ForecastsComputed int64            `json:"forecastsComputed"`
	ForecastsByTrend  map[string]int64 `json:"forecastsByTrend"`
	BudgetAlerts      map[string]int64 `json:"budgetAlerts"`
	TopupsImported    int64            `json:"topupsImported"`
	EventsPublished   int64            `json:"eventsPublished"`
	EventsFailed      int64            `json:"eventsFailed"`
	CacheHitRate      float64          `json:"cacheHitRate"`
	Period            string           `json:"period"`
}

