// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// EventPublisher announces spend-affecting writes to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.CostEvent) error
}

// HistorySource supplies the monthly invoice totals the forecast is built on.
// Rows are ascending by month and only months with invoices on or after
// since (YYYY-MM-DD) are returned.
type HistorySource interface {
	MonthlyInvoiceTotals(ctx context.Context, since string) ([]domain.HistoricalPoint, error)
}

// CatalogStore persists categories, providers and services.
type CatalogStore interface {
	ListCategories(ctx context.Context) ([]domain.ServiceCategory, error)
	CreateCategory(ctx context.Context, in *domain.CategoryInput) (*domain.ServiceCategory, error)

	ListProviders(ctx context.Context) ([]domain.Provider, error)
	CreateProvider(ctx context.Context, in *domain.ProviderInput) (*domain.Provider, error)

	ListServices(ctx context.Context) ([]domain.ServiceDetail, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	CreateService(ctx context.Context, in *domain.ServiceInput) (*domain.Service, error)
	// UpdateService writes every mutable field of s.
	UpdateService(ctx context.Context, s *domain.Service) (*domain.Service, error)
}

// InvoiceStore persists infrastructure invoices.
type InvoiceStore interface {
	ListInvoices(ctx context.Context) ([]domain.InvoiceListItem, error)
	CreateInvoice(ctx context.Context, in *domain.InvoiceInput) (*domain.Invoice, error)
}

// LicenseStore persists license plans.
type LicenseStore interface {
	ListLicenses(ctx context.Context) ([]domain.LicenseListItem, error)
	CreateLicense(ctx context.Context, in *domain.LicenseInput) (*domain.LicensePlan, error)
	// ListCommitments returns plans whose annual commitment ends in [from, to].
	ListCommitments(ctx context.Context, from, to string) ([]domain.Commitment, error)
}

// UsageStore persists prepaid top-ups and consumption.
type UsageStore interface {
	ListTopups(ctx context.Context) ([]domain.TopupListItem, error)
	CreateTopup(ctx context.Context, in *domain.TopupInput) (*domain.Topup, error)
	// CreateTopups writes all records or none.
	CreateTopups(ctx context.Context, in []domain.TopupInput) ([]domain.Topup, error)

	ListConsumption(ctx context.Context) ([]domain.ConsumptionListItem, error)
	CreateConsumption(ctx context.Context, in *domain.ConsumptionInput) (*domain.Consumption, error)

	// ServiceUsage returns the purchased/consumed totals of one service;
	// unknown services have zero totals.
	ServiceUsage(ctx context.Context, serviceID int64) (*domain.ServiceUsage, error)
	// UsageByCategory returns totals for every service in the named category.
	UsageByCategory(ctx context.Context, category string) ([]domain.ServiceUsage, error)
}

// BudgetStore persists spending targets.
type BudgetStore interface {
	// ListBudgets returns every budget with its category, service and
	// provider names, ordered by name.
	ListBudgets(ctx context.Context) ([]domain.BudgetRecord, error)
	CreateBudget(ctx context.Context, in *domain.BudgetInput) (*domain.Budget, error)
	// DeleteBudget removes one budget; unknown ids are not found.
	DeleteBudget(ctx context.Context, id int64) error
}

// ReportStore serves the dashboard aggregations.
type ReportStore interface {
	HistorySource

	// SpendByCategory returns one row per invoice in [start, end) plus one
	// zero row per category, ordered by category name.
	SpendByCategory(ctx context.Context, start, end string) ([]domain.CategoryAmount, error)
	// InvoiceDetails returns invoice rows with invoiceMonth in [start, end).
	InvoiceDetails(ctx context.Context, start, end string) ([]domain.MonthlyDetail, error)
	// LicenseCosts returns plans billing anything in [start, end).
	LicenseCosts(ctx context.Context, start, end string) ([]domain.LicenseCost, error)
}

// Store is the full persistence port.
type Store interface {
	CatalogStore
	InvoiceStore
	LicenseStore
	UsageStore
	BudgetStore
	ReportStore

	Ping(ctx context.Context) error
}
