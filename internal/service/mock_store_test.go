package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/cache"
	"github.com/boddenberg/cost-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/cost-dashboard-go/internal/port"
	"github.com/boddenberg/cost-dashboard-go/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Mocks ---

// mockStore serves canned data; methods not overridden panic through the
// nil embedded interface.
type mockStore struct {
	port.Store

	mu          sync.Mutex
	categories  []domain.ServiceCategory
	providers   []domain.Provider
	services    map[int64]*domain.Service
	details     []domain.ServiceDetail
	invoices    []domain.InvoiceListItem
	licenses    []domain.LicenseListItem
	commitments []domain.Commitment
	usage       []domain.ServiceUsage
	history     []domain.HistoricalPoint
	spend       []domain.CategoryAmount
	invDetails  []domain.MonthlyDetail
	licCosts    []domain.LicenseCost
	budgets     []domain.BudgetRecord
	err         error

	categoryCalls  int32
	providerCalls  int32
	createdTopups  [][]domain.TopupInput
	createdCats    []domain.CategoryInput
	createdProvs   []domain.ProviderInput
	createdSvcs    []domain.ServiceInput
	gotSince       string
	gotRange       [2]string
	gotCommitRange [2]string
	gotCategory    string
	detailRanges   [][2]string
	createdBudgets []domain.BudgetInput
}

func newMockStore() *mockStore {
	return &mockStore{services: map[int64]*domain.Service{}}
}

func (m *mockStore) ListCategories(context.Context) ([]domain.ServiceCategory, error) {
	atomic.AddInt32(&m.categoryCalls, 1)
	return m.categories, m.err
}

func (m *mockStore) CreateCategory(_ context.Context, in *domain.CategoryInput) (*domain.ServiceCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.createdCats = append(m.createdCats, *in)
	c := domain.ServiceCategory{ID: int64(len(m.categories) + 1), Name: in.Name, Description: in.Description}
	m.categories = append(m.categories, c)
	return &c, nil
}

func (m *mockStore) ListProviders(context.Context) ([]domain.Provider, error) {
	atomic.AddInt32(&m.providerCalls, 1)
	return m.providers, m.err
}

func (m *mockStore) CreateProvider(_ context.Context, in *domain.ProviderInput) (*domain.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.createdProvs = append(m.createdProvs, *in)
	p := domain.Provider{ID: int64(len(m.providers) + 1), Name: in.Name, Website: in.Website}
	m.providers = append(m.providers, p)
	return &p, nil
}

func (m *mockStore) ListServices(context.Context) ([]domain.ServiceDetail, error) {
	return m.details, m.err
}

func (m *mockStore) GetService(_ context.Context, id int64) (*domain.Service, error) {
	svc, ok := m.services[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "service", ID: "x"}
	}
	cp := *svc
	return &cp, nil
}

func (m *mockStore) CreateService(_ context.Context, in *domain.ServiceInput) (*domain.Service, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.createdSvcs = append(m.createdSvcs, *in)
	id := int64(len(m.details) + 1)
	m.details = append(m.details, domain.ServiceDetail{ID: id, Name: in.Name, Active: *in.Active})
	return &domain.Service{ID: id, Name: in.Name, ProviderID: in.ProviderID, CategoryID: in.CategoryID, Active: *in.Active}, nil
}

func (m *mockStore) UpdateService(_ context.Context, s *domain.Service) (*domain.Service, error) {
	cp := *s
	m.services[s.ID] = &cp
	return &cp, nil
}

func (m *mockStore) ListInvoices(context.Context) ([]domain.InvoiceListItem, error) {
	return m.invoices, m.err
}

func (m *mockStore) CreateInvoice(_ context.Context, in *domain.InvoiceInput) (*domain.Invoice, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Invoice{ID: 1, ServiceID: in.ServiceID, InvoiceMonth: in.InvoiceMonth, Amount: in.Amount, Currency: in.Currency}, nil
}

func (m *mockStore) ListLicenses(context.Context) ([]domain.LicenseListItem, error) {
	return m.licenses, m.err
}

func (m *mockStore) ListCommitments(_ context.Context, from, to string) ([]domain.Commitment, error) {
	m.mu.Lock()
	m.gotCommitRange = [2]string{from, to}
	m.mu.Unlock()
	return m.commitments, m.err
}

func (m *mockStore) CreateTopup(_ context.Context, in *domain.TopupInput) (*domain.Topup, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Topup{ID: 1, ServiceID: in.ServiceID, TopupDate: in.TopupDate, AmountPurchased: in.AmountPurchased, Currency: in.Currency}, nil
}

func (m *mockStore) CreateTopups(_ context.Context, in []domain.TopupInput) ([]domain.Topup, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.createdTopups = append(m.createdTopups, in)
	out := make([]domain.Topup, len(in))
	for i, r := range in {
		out[i] = domain.Topup{ID: int64(i + 1), ServiceID: r.ServiceID, TopupDate: r.TopupDate, AmountPurchased: r.AmountPurchased, Currency: r.Currency}
	}
	return out, nil
}

func (m *mockStore) ServiceUsage(_ context.Context, id int64) (*domain.ServiceUsage, error) {
	for _, u := range m.usage {
		if u.ServiceID == id {
			cp := u
			return &cp, nil
		}
	}
	return &domain.ServiceUsage{ServiceID: id}, m.err
}

func (m *mockStore) UsageByCategory(_ context.Context, category string) ([]domain.ServiceUsage, error) {
	m.mu.Lock()
	m.gotCategory = category
	m.mu.Unlock()
	return m.usage, m.err
}

func (m *mockStore) MonthlyInvoiceTotals(_ context.Context, since string) ([]domain.HistoricalPoint, error) {
	m.gotSince = since
	return m.history, m.err
}

func (m *mockStore) SpendByCategory(_ context.Context, start, end string) ([]domain.CategoryAmount, error) {
	m.mu.Lock()
	m.gotRange = [2]string{start, end}
	m.mu.Unlock()
	return m.spend, m.err
}

func (m *mockStore) InvoiceDetails(_ context.Context, start, end string) ([]domain.MonthlyDetail, error) {
	m.mu.Lock()
	m.detailRanges = append(m.detailRanges, [2]string{start, end})
	m.mu.Unlock()
	return m.invDetails, m.err
}

func (m *mockStore) ListBudgets(context.Context) ([]domain.BudgetRecord, error) {
	return m.budgets, nil
}

func (m *mockStore) CreateBudget(_ context.Context, in *domain.BudgetInput) (*domain.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.createdBudgets = append(m.createdBudgets, *in)
	return &domain.Budget{ID: int64(len(m.createdBudgets)), Name: in.Name, BudgetType: in.BudgetType,
		BudgetAmount: in.BudgetAmount, BudgetPeriod: in.BudgetPeriod, AlertThreshold: *in.AlertThreshold, IsActive: *in.IsActive}, nil
}

func (m *mockStore) DeleteBudget(_ context.Context, id int64) error {
	for i, b := range m.budgets {
		if b.ID == id {
			m.budgets = append(m.budgets[:i], m.budgets[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "budget", ID: "x"}
}

func (m *mockStore) LicenseCosts(context.Context, string, string) ([]domain.LicenseCost, error) {
	return m.licCosts, m.err
}

func (m *mockStore) Ping(context.Context) error { return m.err }

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.CostEvent
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, e *domain.CostEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return p.err
}

// --- Helpers ---

var fixedNow = time.Date(2025, time.November, 15, 10, 0, 0, 0, time.UTC)

var errStore = errors.New("store down")

func newService(store *mockStore, pub port.EventPublisher) (*service.CostService, *observability.Metrics) {
	metrics := observability.NewMetrics()
	opts := service.DefaultOptions()
	opts.Now = func() time.Time { return fixedNow }
	svc := service.NewCostService(store, cache.New[*domain.ReferenceData](time.Minute), pub, metrics, zap.NewNop(), opts)
	return svc, metrics
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
