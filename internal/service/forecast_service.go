package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/forecast"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Cost forecast
// ============================================================

// CostForecast projects the next six months from the invoice history,
// anchored at the current month.
func (s *CostService) CostForecast(ctx context.Context) (*domain.ForecastResult, error) {
	return s.CostForecastAt(ctx, s.opts.Now())
}

// CostForecastAt projects from an explicit anchor. History covers
// invoices dated on or after anchor minus the configured history window.
// Month labels follow the anchor's calendar month in its own location,
// so a local clock just past midnight on the 1st labels the new month.
// The result is recomputed on every call.
func (s *CostService) CostForecastAt(ctx context.Context, anchor time.Time) (*domain.ForecastResult, error) {
	ctx, span := tracer.Start(ctx, "CostService.CostForecast")
	defer span.End()

	since := anchor.AddDate(0, -s.opts.HistoryMonths, 0).Format(domain.DateLayout)
	span.SetAttributes(attribute.String("anchor", anchor.Format(domain.MonthLayout)), attribute.String("since", since))

	history, err := s.store.MonthlyInvoiceTotals(ctx, since)
	if err != nil {
		s.logger.Error("forecast history fetch failed", zap.String("since", since), zap.Error(err))
		s.metrics.IncrStoreError("history")
		return nil, fmt.Errorf("forecast history: %w", err)
	}

	start := time.Now()
	res := forecast.Compute(history, anchor)
	s.metrics.RecordForecast(res, time.Since(start))

	span.SetAttributes(
		attribute.Int("history.points", len(history)),
		attribute.String("trend", string(res.Trend)),
	)
	if res.BudgetAlert != nil {
		s.logger.Warn("budget alert raised",
			zap.String("severity", string(res.BudgetAlert.Severity)),
			zap.Int("trend_pct", res.TrendPercentage),
		)
	}
	return res, nil
}

// ParseAnchor turns "YYYY-MM" into the first instant of that month (UTC).
func ParseAnchor(s string) (time.Time, error) {
	t, err := time.Parse(domain.MonthLayout, s)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: "anchor", Message: "Must be a month (YYYY-MM)"}
	}
	return t, nil
}
