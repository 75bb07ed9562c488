// Package service provides the business logic layer (use cases).
// CostService handles every cost-dashboard operation: catalog, invoices,
// license plans, prepaid usage, dashboard aggregations and the forecast.
package service

import (
	"context"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/cost-dashboard-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/cost")

// Options tunes the thresholds and windows used by the dashboard.
type Options struct {
	// UsageCategory names the category whose services carry prepaid balances.
	UsageCategory string
	// LowBalanceThreshold is the percent of purchased credit below which a
	// service is flagged.
	LowBalanceThreshold  float64
	CommitmentWindowDays int
	HistoryMonths        int
	// Now is the wall clock; tests pin it.
	Now func() time.Time
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		UsageCategory:        "Usage",
		LowBalanceThreshold:  20,
		CommitmentWindowDays: 30,
		HistoryMonths:        12,
		Now:                  time.Now,
	}
}

// CostService orchestrates all cost operations via the store port.
type CostService struct {
	store    port.Store
	refCache port.Cache[*domain.ReferenceData]
	events   port.EventPublisher
	metrics  *observability.Metrics
	logger   *zap.Logger
	opts     Options
}

// NewCostService creates the cost service with all dependencies injected.
// Zero-valued options fall back to DefaultOptions. metrics may be nil.
func NewCostService(
	store port.Store,
	refCache port.Cache[*domain.ReferenceData],
	events port.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts Options,
) *CostService {
	def := DefaultOptions()
	if opts.UsageCategory == "" {
		opts.UsageCategory = def.UsageCategory
	}
	if opts.LowBalanceThreshold <= 0 {
		opts.LowBalanceThreshold = def.LowBalanceThreshold
	}
	if opts.CommitmentWindowDays <= 0 {
		opts.CommitmentWindowDays = def.CommitmentWindowDays
	}
	if opts.HistoryMonths <= 0 {
		opts.HistoryMonths = def.HistoryMonths
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &CostService{
		store:    store,
		refCache: refCache,
		events:   events,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
	}
}

// Options returns the effective options.
func (s *CostService) Options() Options {
	return s.opts
}

// Ping checks the store.
func (s *CostService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Metrics exposes the metrics snapshot for the ops endpoint.
func (s *CostService) Metrics() *domain.OpsMetrics {
	return s.metrics.Snapshot()
}

// publish announces a write. A failed publish is logged and counted but
// never fails the write that triggered it.
func (s *CostService) publish(ctx context.Context, event *domain.CostEvent) {
	if s.events == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = s.opts.Now().UTC()

	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("type", event.Type),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		s.metrics.IncrEvent(event.Type, "error")
		return
	}
	s.metrics.IncrEvent(event.Type, "ok")
}
