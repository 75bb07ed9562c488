package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentInvoices = 5

// ============================================================
// Dashboard
// ============================================================

// CurrentMonth returns the year and month of the service clock.
func (s *CostService) CurrentMonth() (year, month int) {
	now := s.opts.Now().UTC()
	return now.Year(), int(now.Month())
}

// Summary builds the dashboard header for year/month. The five lookups run
// concurrently; the first failure cancels the rest.
func (s *CostService) Summary(ctx context.Context, year, month int) (*domain.Summary, error) {
	ctx, span := tracer.Start(ctx, "CostService.Summary")
	defer span.End()
	span.SetAttributes(attribute.Int("year", year), attribute.Int("month", month))

	if err := domain.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}

	var (
		spend       []domain.CategorySpend
		licenses    []domain.LicenseListItem
		lowBalance  []domain.LowBalanceAlert
		commitments []domain.Commitment
		invoices    []domain.InvoiceListItem
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		spend, err = s.MonthlySpend(gCtx, year, month)
		return s.summaryErr("monthly spend", err)
	})
	g.Go(func() error {
		var err error
		licenses, err = s.store.ListLicenses(gCtx)
		return s.summaryErr("licenses", err)
	})
	g.Go(func() error {
		var err error
		lowBalance, err = s.LowBalanceAlerts(gCtx, s.opts.LowBalanceThreshold)
		return s.summaryErr("low balance", err)
	})
	g.Go(func() error {
		var err error
		commitments, err = s.ListCommitments(gCtx, s.opts.CommitmentWindowDays)
		return s.summaryErr("commitments", err)
	})
	g.Go(func() error {
		var err error
		invoices, err = s.store.ListInvoices(gCtx)
		return s.summaryErr("invoices", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total float64
	for _, c := range spend {
		total += c.TotalAmount
	}
	recent := invoices
	if len(recent) > recentInvoices {
		recent = recent[:recentInvoices]
	}

	return &domain.Summary{
		CurrentMonthTotal: total,
		ActiveLicenses:    len(licenses),
		LowBalanceAlerts:  len(lowBalance),
		ExpiringLicenses:  len(commitments),
		MonthlySpend:      spend,
		RecentInvoices:    recent,
		Alerts: domain.SummaryAlerts{
			LowBalance: lowBalance,
			Expiring:   commitments,
		},
	}, nil
}

func (s *CostService) summaryErr(part string, err error) error {
	if err == nil {
		return nil
	}
	s.logger.Error("summary lookup failed", zap.String("part", part), zap.Error(err))
	s.metrics.IncrStoreError(part)
	return fmt.Errorf("%s: %w", part, err)
}

// MonthlySpend totals invoices per category for one month. Every category
// appears, including those with nothing invoiced.
func (s *CostService) MonthlySpend(ctx context.Context, year, month int) ([]domain.CategorySpend, error) {
	ctx, span := tracer.Start(ctx, "CostService.MonthlySpend")
	defer span.End()

	if err := domain.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	start, end := domain.MonthRange(year, month)

	rows, err := s.store.SpendByCategory(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return domain.SumByCategory(rows), nil
}

// MonthlyDetails lists the month's invoices and the license plans billing
// in it, most expensive first.
func (s *CostService) MonthlyDetails(ctx context.Context, year, month int) ([]domain.MonthlyDetail, error) {
	ctx, span := tracer.Start(ctx, "CostService.MonthlyDetails")
	defer span.End()
	span.SetAttributes(attribute.Int("year", year), attribute.Int("month", month))

	if err := domain.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	start, end := domain.MonthRange(year, month)

	var (
		invoices []domain.MonthlyDetail
		licenses []domain.LicenseCost
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.store.InvoiceDetails(gCtx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		licenses, err = s.store.LicenseCosts(gCtx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	details := make([]domain.MonthlyDetail, 0, len(invoices)+len(licenses))
	details = append(details, invoices...)
	for _, lc := range licenses {
		if !lc.Plan.ActiveDuring(start, end) {
			continue
		}
		details = append(details, domain.MonthlyDetail{
			ServiceName:   lc.ServiceName,
			ProviderName:  lc.ProviderName,
			Category:      lc.Category,
			MonthlyAmount: lc.Plan.MonthlyCost().InexactFloat64(),
			Type:          domain.DetailLicense,
		})
	}

	sort.SliceStable(details, func(i, j int) bool {
		return details[i].MonthlyAmount > details[j].MonthlyAmount
	})
	return details, nil
}
