package supabase

import (
	"context"
	"strconv"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Budgets
// ============================================================

const budgetSelect = "*,category:category_id(id,name),service:service_id(id,name,provider:provider_id(id,name))"

type budgetRow struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	BudgetType     string          `json:"budget_type"`
	CategoryID     *int64          `json:"category_id"`
	ServiceID      *int64          `json:"service_id"`
	BudgetAmount   decimal.Decimal `json:"budget_amount"`
	BudgetPeriod   string          `json:"budget_period"`
	AlertThreshold float64         `json:"alert_threshold"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      pgTime          `json:"created_at"`
	UpdatedAt      pgTime          `json:"updated_at"`

	Category *domain.Ref      `json:"category"`
	Service  *serviceEmbedRow `json:"service"`
}

func (r budgetRow) toDomain() domain.Budget {
	return domain.Budget{
		ID:             r.ID,
		Name:           r.Name,
		BudgetType:     r.BudgetType,
		CategoryID:     r.CategoryID,
		ServiceID:      r.ServiceID,
		BudgetAmount:   r.BudgetAmount,
		BudgetPeriod:   r.BudgetPeriod,
		AlertThreshold: r.AlertThreshold,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt.Time(),
		UpdatedAt:      r.UpdatedAt.Time(),
	}
}

func (r budgetRow) toRecord() domain.BudgetRecord {
	rec := domain.BudgetRecord{Budget: r.toDomain()}
	if r.Category != nil {
		rec.CategoryName = r.Category.Name
	}
	if r.Service != nil {
		rec.ServiceName = r.Service.Name
		rec.ProviderName = r.Service.Provider.Name
	}
	return rec
}

func (c *Client) ListBudgets(ctx context.Context) ([]domain.BudgetRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBudgets")
	defer span.End()

	rows, err := selectRows[budgetRow](ctx, c, "budgets", query("budget",
		"select", budgetSelect,
		"order", "name.asc,id.asc"))
	if err != nil {
		return nil, err
	}

	out := make([]domain.BudgetRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toRecord()
	}
	return out, nil
}

func (c *Client) CreateBudget(ctx context.Context, in *domain.BudgetInput) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateBudget")
	defer span.End()

	rows, err := insertRows[budgetRow](ctx, c, "budgets", "budget", map[string]any{
		"name":            in.Name,
		"budget_type":     in.BudgetType,
		"category_id":     in.CategoryID,
		"service_id":      in.ServiceID,
		"budget_amount":   in.BudgetAmount,
		"budget_period":   in.BudgetPeriod,
		"alert_threshold": *in.AlertThreshold,
		"is_active":       *in.IsActive,
	})
	if err != nil {
		return nil, err
	}
	r, err := first(rows, "budgets")
	if err != nil {
		return nil, err
	}
	out := r.toDomain()
	return &out, nil
}

func (c *Client) DeleteBudget(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteBudget")
	defer span.End()
	span.SetAttributes(attribute.Int64("budget.id", id))

	rows, err := deleteRows[budgetRow](ctx, c, "budgets", query("budget",
		"id", "eq."+strconv.FormatInt(id, 10)))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return &domain.ErrNotFound{Resource: "budget", ID: strconv.FormatInt(id, 10)}
	}
	return nil
}
