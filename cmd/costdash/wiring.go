package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/boddenberg/cost-dashboard-go/internal/config"
	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/cache"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/events"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/resilience"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/sqlite"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/supabase"
	"github.com/boddenberg/cost-dashboard-go/internal/port"
	"github.com/boddenberg/cost-dashboard-go/internal/service"

	"go.uber.org/zap"
)

// app is the wired object graph behind every command.
type app struct {
	svc     *service.CostService
	tokens  *service.TokenIssuer
	metrics *observability.Metrics
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{metrics: observability.NewMetrics()}

	store, err := newStore(cfg, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	refCache, err := newReferenceCache(ctx, cfg, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher, err := newPublisher(cfg, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := service.Options{
		UsageCategory:        cfg.UsageCategory,
		LowBalanceThreshold:  cfg.LowBalanceThreshold,
		CommitmentWindowDays: cfg.CommitmentWindowDays,
		HistoryMonths:        cfg.ForecastHistory,
	}
	a.svc = service.NewCostService(store, refCache, publisher, a.metrics, logger, opts)
	a.tokens = service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if a.tokens == nil {
		logger.Warn("JWT_SECRET not set, write routes are unauthenticated")
	}
	return a, nil
}

func newStore(cfg *config.Config, logger *zap.Logger, a *app) (port.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreSupabase:
		logger.Info("using Supabase as data backend", zap.String("supabase_url", cfg.SupabaseURL))
		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		}
		cb := resilience.NewCircuitBreaker("supabase", supabase.IsSuccessful)
		return supabase.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			resilienceCfg,
			logger,
		), nil
	default:
		logger.Info("using SQLite as data backend", zap.String("path", cfg.SQLitePath))
		s, err := sqlite.Open(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	}
}

func newReferenceCache(ctx context.Context, cfg *config.Config, logger *zap.Logger, a *app) (port.Cache[*domain.ReferenceData], error) {
	if cfg.CacheBackend == config.CacheRedis {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rc := cache.NewRedisCache[*domain.ReferenceData](client, "costdash:", cfg.CacheTTL, logger)
		a.closers = append(a.closers, rc.Close)
		logger.Info("reference cache: redis", zap.String("addr", cfg.RedisAddr))
		return rc, nil
	}
	mc := cache.New[*domain.ReferenceData](cfg.CacheTTL)
	a.closers = append(a.closers, mc.Close)
	return mc, nil
}

func newPublisher(cfg *config.Config, logger *zap.Logger, a *app) (port.EventPublisher, error) {
	if cfg.AMQPURL == "" {
		return events.NopPublisher{}, nil
	}
	p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, p.Close)
	return p, nil
}
