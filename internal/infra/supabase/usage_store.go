package supabase

import (
	"context"
	"strconv"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Prepaid usage
// ============================================================

func (c *Client) ListTopups(ctx context.Context) ([]domain.TopupListItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTopups")
	defer span.End()

	rows, err := selectRows[topupRow](ctx, c, "topups", query("usage_topup",
		"select", "id,topup_date,amount_purchased,currency,"+serviceEmbed,
		"order", "topup_date.desc,id.desc"))
	if err != nil {
		return nil, err
	}

	out := make([]domain.TopupListItem, len(rows))
	for i, r := range rows {
		out[i] = domain.TopupListItem{
			ID:              r.ID,
			TopupDate:       r.TopupDate,
			AmountPurchased: r.AmountPurchased,
			Currency:        r.Currency,
			Service:         domain.Ref{ID: r.Service.ID, Name: r.Service.Name},
			Provider:        r.Service.Provider,
		}
	}
	return out, nil
}

func topupPayload(in *domain.TopupInput) map[string]any {
	return map[string]any{
		"service_id":       in.ServiceID,
		"topup_date":       in.TopupDate,
		"amount_purchased": in.AmountPurchased,
		"currency":         in.Currency,
	}
}

func (c *Client) CreateTopup(ctx context.Context, in *domain.TopupInput) (*domain.Topup, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTopup")
	defer span.End()

	rows, err := insertRows[topupRow](ctx, c, "topups", "usage_topup", topupPayload(in))
	if err != nil {
		return nil, err
	}
	r, err := first(rows, "topups")
	if err != nil {
		return nil, err
	}
	out := r.toDomain()
	return &out, nil
}

// CreateTopups sends all records as one JSON array; PostgREST inserts
// them in a single statement, so either all rows land or none do.
func (c *Client) CreateTopups(ctx context.Context, in []domain.TopupInput) ([]domain.Topup, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTopups")
	defer span.End()
	span.SetAttributes(attribute.Int("topups.count", len(in)))

	payload := make([]map[string]any, len(in))
	for i := range in {
		payload[i] = topupPayload(&in[i])
	}

	rows, err := insertRows[topupRow](ctx, c, "topups", "usage_topup", payload)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Topup, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (c *Client) ListConsumption(ctx context.Context) ([]domain.ConsumptionListItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListConsumption")
	defer span.End()

	rows, err := selectRows[consumptionRow](ctx, c, "consumption", query("usage_consumption",
		"select", "id,consumption_date,amount_consumed,"+serviceEmbed,
		"order", "consumption_date.desc,id.desc"))
	if err != nil {
		return nil, err
	}

	out := make([]domain.ConsumptionListItem, len(rows))
	for i, r := range rows {
		out[i] = domain.ConsumptionListItem{
			ID:              r.ID,
			ConsumptionDate: r.ConsumptionDate,
			AmountConsumed:  r.AmountConsumed,
			Service:         domain.Ref{ID: r.Service.ID, Name: r.Service.Name},
			Provider:        r.Service.Provider,
		}
	}
	return out, nil
}

func (c *Client) CreateConsumption(ctx context.Context, in *domain.ConsumptionInput) (*domain.Consumption, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateConsumption")
	defer span.End()

	rows, err := insertRows[consumptionRow](ctx, c, "consumption", "usage_consumption", map[string]any{
		"service_id":       in.ServiceID,
		"consumption_date": in.ConsumptionDate,
		"amount_consumed":  in.AmountConsumed,
	})
	if err != nil {
		return nil, err
	}
	r, err := first(rows, "consumption")
	if err != nil {
		return nil, err
	}
	out := r.toDomain()
	return &out, nil
}

func (c *Client) ServiceUsage(ctx context.Context, serviceID int64) (*domain.ServiceUsage, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ServiceUsage")
	defer span.End()
	span.SetAttributes(attribute.Int64("service.id", serviceID))

	usage := &domain.ServiceUsage{ServiceID: serviceID}
	svcs, err := selectRows[serviceRow](ctx, c, "usage", query("service",
		"select", "id,name,provider:provider_id(id,name)",
		"id", "eq."+strconv.FormatInt(serviceID, 10)))
	if err != nil {
		return nil, err
	}
	if len(svcs) == 0 {
		return usage, nil
	}
	usage.ServiceName, usage.ProviderName = svcs[0].Name, svcs[0].Provider.Name

	totals, err := c.usageTotals(ctx, []int64{serviceID})
	if err != nil {
		return nil, err
	}
	if t, ok := totals[serviceID]; ok {
		usage.TotalPurchased, usage.TotalConsumed = t.TotalPurchased, t.TotalConsumed
	}
	return usage, nil
}

func (c *Client) UsageByCategory(ctx context.Context, category string) ([]domain.ServiceUsage, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UsageByCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category", category))

	svcs, err := selectRows[serviceRow](ctx, c, "usage", query("service",
		"select", "id,name,provider:provider_id(id,name),category:category_id!inner(id,name)",
		"category.name", "eq."+category,
		"order", "name.asc,id.asc"))
	if err != nil {
		return nil, err
	}

	out := make([]domain.ServiceUsage, len(svcs))
	ids := make([]int64, len(svcs))
	for i, s := range svcs {
		out[i] = domain.ServiceUsage{ServiceID: s.ID, ServiceName: s.Name, ProviderName: s.Provider.Name}
		ids[i] = s.ID
	}
	if len(ids) == 0 {
		return out, nil
	}

	totals, err := c.usageTotals(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if t, ok := totals[out[i].ServiceID]; ok {
			out[i].TotalPurchased, out[i].TotalConsumed = t.TotalPurchased, t.TotalConsumed
		}
	}
	return out, nil
}

// usageTotals sums purchased and consumed amounts per service in decimal.
func (c *Client) usageTotals(ctx context.Context, ids []int64) (map[int64]*domain.ServiceUsage, error) {
	totals := make(map[int64]*domain.ServiceUsage, len(ids))
	get := func(id int64) *domain.ServiceUsage {
		t, ok := totals[id]
		if !ok {
			t = &domain.ServiceUsage{ServiceID: id, TotalPurchased: decimal.Zero, TotalConsumed: decimal.Zero}
			totals[id] = t
		}
		return t
	}

	topups, err := selectRows[topupRow](ctx, c, "usage", query("usage_topup",
		"select", "service_id,amount_purchased", "service_id", inList(ids)))
	if err != nil {
		return nil, err
	}
	for _, r := range topups {
		t := get(r.ServiceID)
		t.TotalPurchased = t.TotalPurchased.Add(r.AmountPurchased)
	}

	consumed, err := selectRows[consumptionRow](ctx, c, "usage", query("usage_consumption",
		"select", "service_id,amount_consumed", "service_id", inList(ids)))
	if err != nil {
		return nil, err
	}
	for _, r := range consumed {
		t := get(r.ServiceID)
		t.TotalConsumed = t.TotalConsumed.Add(r.AmountConsumed)
	}
	return totals, nil
}
