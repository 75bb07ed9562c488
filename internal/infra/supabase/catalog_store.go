package supabase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

var errEmptyInsert = errors.New("no row returned")

// ============================================================
// Catalog via PostgREST
// ============================================================

func (c *Client) ListCategories(ctx context.Context) ([]domain.ServiceCategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	rows, err := selectRows[categoryRow](ctx, c, "categories", query("service_category", "select", "*", "order", "name.asc"))
	if err != nil {
		return nil, err
	}
	out := make([]domain.ServiceCategory, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in *domain.CategoryInput) (*domain.ServiceCategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCategory")
	defer span.End()

	rows, err := insertRows[categoryRow](ctx, c, "categories", "service_category", map[string]any{
		"name":        in.Name,
		"description": in.Description,
	})
	if err != nil {
		return nil, err
	}
	r, err := first(rows, "categories")
	if err != nil {
		return nil, err
	}
	out := r.toDomain()
	return &out, nil
}

func (c *Client) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProviders")
	defer span.End()

	rows, err := selectRows[providerRow](ctx, c, "providers", query("provider", "select", "*", "order", "name.asc"))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Provider, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (c *Client) CreateProvider(ctx context.Context, in *domain.ProviderInput) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateProvider")
	defer span.End()

	rows, err := insertRows[providerRow](ctx, c, "providers", "provider", map[string]any{
		"name":    in.Name,
		"website": in.Website,
	})
	if err != nil {
		return nil, err
	}
	r, err := first(rows, "providers")
	if err != nil {
		return nil, err
	}
	out := r.toDomain()
	return &out, nil
}

func (c *Client) ListServices(ctx context.Context) ([]domain.ServiceDetail, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListServices")
	defer span.End()

	rows, err := selectRows[serviceRow](ctx, c, "services", query("service",
		"select", "id,name,description,active,provider:provider_id(id,name),category:category_id(id,name)",
		"order", "name.asc,id.asc"))
	if err != nil {
		return nil, err
	}
	out := make([]domain.ServiceDetail, len(rows))
	for i, r := range rows {
		out[i] = r.toDetail()
	}
	return out, nil
}

func (c *Client) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetService")
	defer span.End()
	span.SetAttributes(attribute.Int64("service.id", id))

	rows, err := selectRows[serviceRow](ctx, c, "services", query("service",
		"select", "*", "id", "eq."+strconv.FormatInt(id, 10)))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "service", ID: strconv.FormatInt(id, 10)}
	}
	out := rows[0].toDomain()
	return &out, nil
}

func (c *Client) CreateService(ctx context.Context, in *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateService")
	defer span.End()

	active := in.Active == nil || *in.Active
	rows, err := insertRows[serviceRow](ctx, c, "services", "service", map[string]any{
		"provider_id": in.ProviderID,
		"category_id": in.CategoryID,
		"name":        in.Name,
		"description": in.Description,
		"active":      active,
	})
	if err != nil {
		return nil, err
	}
	r, err := first(rows, "services")
	if err != nil {
		return nil, err
	}
	out := r.toDomain()
	return &out, nil
}

func (c *Client) UpdateService(ctx context.Context, svc *domain.Service) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateService")
	defer span.End()
	span.SetAttributes(attribute.Int64("service.id", svc.ID))

	id := strconv.FormatInt(svc.ID, 10)
	rows, err := updateRows[serviceRow](ctx, c, "services", query("service", "id", "eq."+id), map[string]any{
		"provider_id": svc.ProviderID,
		"category_id": svc.CategoryID,
		"name":        svc.Name,
		"description": svc.Description,
		"active":      svc.Active,
		"updated_at":  time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "service", ID: id}
	}
	out := rows[0].toDomain()
	return &out, nil
}
