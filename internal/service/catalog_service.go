package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const referenceKey = "reference"

// ============================================================
// Categories & providers
// ============================================================

func (s *CostService) ListCategories(ctx context.Context) ([]domain.ServiceCategory, error) {
	ctx, span := tracer.Start(ctx, "CostService.ListCategories")
	defer span.End()

	return s.store.ListCategories(ctx)
}

func (s *CostService) CreateCategory(ctx context.Context, in *domain.CategoryInput) (*domain.ServiceCategory, error) {
	ctx, span := tracer.Start(ctx, "CostService.CreateCategory")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	cat, err := s.store.CreateCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	s.refCache.Delete(referenceKey)
	s.logger.Info("category created", zap.Int64("id", cat.ID), zap.String("name", cat.Name))
	return cat, nil
}

func (s *CostService) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "CostService.ListProviders")
	defer span.End()

	return s.store.ListProviders(ctx)
}

func (s *CostService) CreateProvider(ctx context.Context, in *domain.ProviderInput) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "CostService.CreateProvider")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.store.CreateProvider(ctx, in)
	if err != nil {
		return nil, err
	}
	s.refCache.Delete(referenceKey)
	s.logger.Info("provider created", zap.Int64("id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// ReferenceData returns categories and providers, loaded concurrently and
// cached until one of them changes.
func (s *CostService) ReferenceData(ctx context.Context) (*domain.ReferenceData, error) {
	ctx, span := tracer.Start(ctx, "CostService.ReferenceData")
	defer span.End()

	if ref, ok := s.refCache.Get(referenceKey); ok && ref != nil {
		s.metrics.IncrCacheHit(referenceKey)
		return ref, nil
	}
	s.metrics.IncrCacheMiss(referenceKey)

	ref := &domain.ReferenceData{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cats, err := s.store.ListCategories(gCtx)
		if err != nil {
			s.metrics.IncrStoreError("categories")
			return fmt.Errorf("categories: %w", err)
		}
		ref.Categories = cats
		return nil
	})

	g.Go(func() error {
		provs, err := s.store.ListProviders(gCtx)
		if err != nil {
			s.metrics.IncrStoreError("providers")
			return fmt.Errorf("providers: %w", err)
		}
		ref.Providers = provs
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load reference data", zap.Error(err))
		return nil, err
	}
	s.refCache.Set(referenceKey, ref)
	return ref, nil
}

// ============================================================
// Services
// ============================================================

func (s *CostService) ListServices(ctx context.Context) ([]domain.ServiceDetail, error) {
	ctx, span := tracer.Start(ctx, "CostService.ListServices")
	defer span.End()

	return s.store.ListServices(ctx)
}

func (s *CostService) CreateService(ctx context.Context, in *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "CostService.CreateService")
	defer span.End()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.store.CreateService(ctx, in)
}

// UpdateService applies a partial update. An empty patch returns the
// service unchanged.
func (s *CostService) UpdateService(ctx context.Context, id int64, patch *domain.ServicePatch) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "CostService.UpdateService")
	defer span.End()
	span.SetAttributes(attribute.Int64("service.id", id))

	if err := patch.Validate(); err != nil {
		return nil, err
	}
	current, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}
	patch.Apply(current)
	return s.store.UpdateService(ctx, current)
}

// DeleteService deactivates a service; its invoices and plans stay.
func (s *CostService) DeleteService(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "CostService.DeleteService")
	defer span.End()
	span.SetAttributes(attribute.Int64("service.id", id))

	current, err := s.store.GetService(ctx, id)
	if err != nil {
		return err
	}
	if !current.Active {
		return nil
	}
	current.Active = false
	if _, err := s.store.UpdateService(ctx, current); err != nil {
		return err
	}
	s.logger.Info("service deactivated", zap.Int64("id", id))
	return nil
}
