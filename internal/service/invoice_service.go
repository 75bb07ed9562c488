package service

import (
	"context"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Invoices & license plans
// ============================================================

func (s *CostService) ListInvoices(ctx context.Context) ([]domain.InvoiceListItem, error) {
	ctx, span := tracer.Start(ctx, "CostService.ListInvoices")
	defer span.End()

	return s.store.ListInvoices(ctx)
}

func (s *CostService) CreateInvoice(ctx context.Context, in *domain.InvoiceInput) (*domain.Invoice, error) {
	ctx, span := tracer.Start(ctx, "CostService.CreateInvoice")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	inv, err := s.store.CreateInvoice(ctx, in)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("invoice.id", inv.ID))
	s.logger.Info("invoice created",
		zap.Int64("id", inv.ID),
		zap.Int64("service_id", inv.ServiceID),
		zap.String("month", inv.InvoiceMonth),
	)

	s.publish(ctx, &domain.CostEvent{
		Type:      domain.EventInvoiceCreated,
		ServiceID: inv.ServiceID,
		Amount:    inv.Amount.String(),
		Currency:  inv.Currency,
	})
	return inv, nil
}

func (s *CostService) ListLicenses(ctx context.Context) ([]domain.LicenseListItem, error) {
	ctx, span := tracer.Start(ctx, "CostService.ListLicenses")
	defer span.End()

	return s.store.ListLicenses(ctx)
}

func (s *CostService) CreateLicense(ctx context.Context, in *domain.LicenseInput) (*domain.LicensePlan, error) {
	ctx, span := tracer.Start(ctx, "CostService.CreateLicense")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.store.CreateLicense(ctx, in)
}

// ListCommitments returns plans whose annual commitment ends within the
// next days days, today included. days <= 0 uses the configured window.
func (s *CostService) ListCommitments(ctx context.Context, days int) ([]domain.Commitment, error) {
	ctx, span := tracer.Start(ctx, "CostService.ListCommitments")
	defer span.End()

	if days <= 0 {
		days = s.opts.CommitmentWindowDays
	}
	span.SetAttributes(attribute.Int("days", days))

	now := s.opts.Now().UTC()
	from := now.Format(domain.DateLayout)
	to := now.AddDate(0, 0, days).Format(domain.DateLayout)
	return s.store.ListCommitments(ctx, from, to)
}
