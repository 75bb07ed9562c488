package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Budgets
// ============================================================

// ListBudgets evaluates every budget against the invoices of its current
// period. Each distinct period is fetched once, concurrently.
func (s *CostService) ListBudgets(ctx context.Context) ([]domain.BudgetItem, error) {
	ctx, span := tracer.Start(ctx, "CostService.ListBudgets")
	defer span.End()

	records, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("budgets", len(records)))

	periods := make([]string, 0, 3)
	for _, r := range records {
		if !slices.Contains(periods, r.BudgetPeriod) {
			periods = append(periods, r.BudgetPeriod)
		}
	}

	now := s.opts.Now()
	var (
		mu       sync.Mutex
		byPeriod = make(map[string][]domain.MonthlyDetail, len(periods))
	)
	g, gCtx := errgroup.WithContext(ctx)
	for _, period := range periods {
		period := period // per-iteration copy; go.mod targets go1.21 loop semantics
		start, end := domain.PeriodRange(period, now)
		g.Go(func() error {
			rows, err := s.store.InvoiceDetails(gCtx, start, end)
			if err != nil {
				s.logger.Error("budget spend lookup failed", zap.String("period", period), zap.Error(err))
				s.metrics.IncrStoreError("budget spend")
				return fmt.Errorf("budget spend %s: %w", period, err)
			}
			mu.Lock()
			byPeriod[period] = rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]domain.BudgetItem, len(records))
	for i := range records {
		b := &records[i]
		spend := decimal.Zero
		for _, d := range byPeriod[b.BudgetPeriod] {
			if b.Covers(d) {
				spend = spend.Add(decimal.NewFromFloat(d.MonthlyAmount))
			}
		}
		items[i] = b.Evaluate(spend)
	}
	return items, nil
}

// BudgetSummary totals the active budgets for the summary cards.
func (s *CostService) BudgetSummary(ctx context.Context) (*domain.BudgetSummary, error) {
	ctx, span := tracer.Start(ctx, "CostService.BudgetSummary")
	defer span.End()

	items, err := s.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	sum := domain.SummarizeBudgets(items)
	if sum.OverBudgetCount > 0 {
		s.logger.Warn("budgets exceeded", zap.Int("count", sum.OverBudgetCount))
	}
	return &sum, nil
}

// BudgetChart pairs each active budget with its current spend.
func (s *CostService) BudgetChart(ctx context.Context) (*domain.BudgetChart, error) {
	ctx, span := tracer.Start(ctx, "CostService.BudgetChart")
	defer span.End()

	items, err := s.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	chart := domain.ChartBudgets(items)
	return &chart, nil
}

func (s *CostService) CreateBudget(ctx context.Context, in *domain.BudgetInput) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "CostService.CreateBudget")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	b, err := s.store.CreateBudget(ctx, in)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("budget.id", b.ID))
	s.logger.Info("budget created",
		zap.Int64("id", b.ID),
		zap.String("type", b.BudgetType),
		zap.String("period", b.BudgetPeriod),
	)
	return b, nil
}

func (s *CostService) DeleteBudget(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "CostService.DeleteBudget")
	defer span.End()
	span.SetAttributes(attribute.Int64("budget.id", id))

	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return err
	}
	s.logger.Info("budget deleted", zap.Int64("id", id))
	return nil
}
