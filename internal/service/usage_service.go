package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Prepaid usage
// ============================================================

func (s *CostService) ListTopups(ctx context.Context) ([]domain.TopupListItem, error) {
	ctx, span := tracer.Start(ctx, "CostService.ListTopups")
	defer span.End()

	return s.store.ListTopups(ctx)
}

func (s *CostService) CreateTopup(ctx context.Context, in *domain.TopupInput) (*domain.Topup, error) {
	ctx, span := tracer.Start(ctx, "CostService.CreateTopup")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := s.store.CreateTopup(ctx, in)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, &domain.CostEvent{
		Type:      domain.EventTopupCreated,
		ServiceID: t.ServiceID,
		Amount:    t.AmountPurchased.String(),
		Currency:  t.Currency,
	})
	return t, nil
}

// BulkCreateTopups validates every record before writing any, then
// writes them all in one atomic store call.
func (s *CostService) BulkCreateTopups(ctx context.Context, req *domain.BulkTopupRequest) (*domain.BulkImportResult, error) {
	ctx, span := tracer.Start(ctx, "CostService.BulkCreateTopups")
	defer span.End()
	span.SetAttributes(attribute.Int("topups.count", len(req.Records)))

	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.store.CreateTopups(ctx, req.Records)
	if err != nil {
		s.logger.Error("bulk top-up import failed", zap.Int("count", len(req.Records)), zap.Error(err))
		return nil, err
	}

	batchID := uuid.NewString()
	s.metrics.AddTopupsImported(len(records))
	s.logger.Info("top-ups imported", zap.String("batch_id", batchID), zap.Int("count", len(records)))

	s.publish(ctx, &domain.CostEvent{
		Type:    domain.EventTopupsImported,
		BatchID: batchID,
		Count:   len(records),
	})

	return &domain.BulkImportResult{
		Message: fmt.Sprintf("Successfully imported %d records", len(records)),
		BatchID: batchID,
		Records: records,
	}, nil
}

func (s *CostService) ListConsumption(ctx context.Context) ([]domain.ConsumptionListItem, error) {
	ctx, span := tracer.Start(ctx, "CostService.ListConsumption")
	defer span.End()

	return s.store.ListConsumption(ctx)
}

func (s *CostService) CreateConsumption(ctx context.Context, in *domain.ConsumptionInput) (*domain.Consumption, error) {
	ctx, span := tracer.Start(ctx, "CostService.CreateConsumption")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.store.CreateConsumption(ctx, in)
}

// Balance returns the remaining prepaid credit of one service. Unknown
// services report zeros.
func (s *CostService) Balance(ctx context.Context, serviceID int64) (*domain.Balance, error) {
	ctx, span := tracer.Start(ctx, "CostService.Balance")
	defer span.End()
	span.SetAttributes(attribute.Int64("service.id", serviceID))

	usage, err := s.store.ServiceUsage(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	b := usage.Balance()
	return &b, nil
}

// LowBalanceAlerts flags usage-category services with less than threshold
// percent of their purchased credit left. threshold <= 0 uses the
// configured default.
func (s *CostService) LowBalanceAlerts(ctx context.Context, threshold float64) ([]domain.LowBalanceAlert, error) {
	ctx, span := tracer.Start(ctx, "CostService.LowBalanceAlerts")
	defer span.End()

	if threshold <= 0 {
		threshold = s.opts.LowBalanceThreshold
	}
	span.SetAttributes(attribute.Float64("threshold", threshold))

	usage, err := s.store.UsageByCategory(ctx, s.opts.UsageCategory)
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.LowBalanceAlert, 0)
	for i := range usage {
		if a, ok := usage[i].LowBalance(threshold); ok {
			alerts = append(alerts, *a)
		}
	}
	return alerts, nil
}
