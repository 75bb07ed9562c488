package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/service"
)

func TestCostForecast_UsesHistoryWindow(t *testing.T) {
	store := newMockStore()
	store.history = []domain.HistoricalPoint{
		{Month: "2025-09", TotalAmount: 100},
		{Month: "2025-10", TotalAmount: 200},
	}
	svc, metrics := newService(store, nil)

	res, err := svc.CostForecast(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.gotSince != "2024-11-15" {
		t.Errorf("expected since 2024-11-15, got %s", store.gotSince)
	}
	if res.NextMonthProjection != 300 || res.Trend != domain.TrendIncreasing {
		t.Errorf("unexpected forecast: %+v", res)
	}
	if res.Forecasts[0].Month != "December 2025" {
		t.Errorf("expected first label December 2025, got %s", res.Forecasts[0].Month)
	}

	snap := metrics.Snapshot()
	if snap.ForecastsByTrend["increasing"] != 1 || snap.BudgetAlerts["critical"] != 1 {
		t.Errorf("unexpected metrics: %+v", snap)
	}
}

func TestCostForecastAt_PinnedAnchor(t *testing.T) {
	store := newMockStore()
	store.history = []domain.HistoricalPoint{{Month: "2024-12", TotalAmount: 1000}}
	svc, _ := newService(store, nil)

	anchor, err := service.ParseAnchor("2025-01")
	if err != nil {
		t.Fatalf("parse anchor: %v", err)
	}
	res, err := svc.CostForecastAt(context.Background(), anchor)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.gotSince != "2024-01-01" {
		t.Errorf("expected since 2024-01-01, got %s", store.gotSince)
	}
	if res.YearProjection != 12000 || res.Forecasts[5].Month != "July 2025" {
		t.Errorf("unexpected forecast: %+v", res)
	}
}

func TestCostForecastAt_LabelsByAnchorLocation(t *testing.T) {
	store := newMockStore()
	store.history = []domain.HistoricalPoint{{Month: "2025-02", TotalAmount: 500}}
	svc, _ := newService(store, nil)

	// Already March in Berlin, still February in UTC.
	berlin := time.FixedZone("CEST", 2*60*60)
	anchor := time.Date(2025, time.March, 1, 0, 30, 0, 0, berlin)

	res, err := svc.CostForecastAt(context.Background(), anchor)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.gotSince != "2024-03-01" {
		t.Errorf("expected since 2024-03-01, got %s", store.gotSince)
	}
	if res.Forecasts[0].Month != "April 2025" {
		t.Errorf("expected first label April 2025, got %s", res.Forecasts[0].Month)
	}
}

func TestCostForecast_EmptyHistory(t *testing.T) {
	svc, _ := newService(newMockStore(), nil)

	res, err := svc.CostForecast(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Forecasts) != 0 || res.BudgetAlert != nil || res.Trend != domain.TrendStable {
		t.Errorf("unexpected forecast: %+v", res)
	}
}

func TestCostForecast_PropagatesStoreError(t *testing.T) {
	store := newMockStore()
	store.err = errStore
	svc, _ := newService(store, nil)

	if _, err := svc.CostForecast(context.Background()); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestParseAnchor_Invalid(t *testing.T) {
	for _, in := range []string{"", "2025-13", "2025/01", "January"} {
		_, err := service.ParseAnchor(in)
		var ve *domain.ErrValidation
		if !errors.As(err, &ve) || ve.Field != "anchor" {
			t.Errorf("ParseAnchor(%q): expected anchor validation error, got %v", in, err)
		}
	}
}
