package sqlite

import (
	"context"
	"database/sql"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Categories
// ============================================================

func (s *Store) ListCategories(ctx context.Context) ([]domain.ServiceCategory, error) {
	ctx, span := tracer.Start(ctx, "Store.ListCategories")
	defer span.End()

	out := make([]domain.ServiceCategory, 0)
	err := queryRows(ctx, s.db,
		`SELECT id, name, description, created_at, updated_at FROM service_category ORDER BY name`,
		func(rows *sql.Rows) error {
			var c domain.ServiceCategory
			var created, updated string
			if err := rows.Scan(&c.ID, &c.Name, &c.Description, &created, &updated); err != nil {
				return err
			}
			c.CreatedAt, c.UpdatedAt = parseTime(created), parseTime(updated)
			out = append(out, c)
			return nil
		})
	if err != nil {
		return nil, s.fail("list categories", "", err)
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, in *domain.CategoryInput) (*domain.ServiceCategory, error) {
	ctx, span := tracer.Start(ctx, "Store.CreateCategory")
	defer span.End()

	ts := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO service_category (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		in.Name, in.Description, ts, ts)
	if err != nil {
		return nil, s.fail("create category", "", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, s.fail("create category", "", err)
	}

	return &domain.ServiceCategory{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   parseTime(ts),
		UpdatedAt:   parseTime(ts),
	}, nil
}

// ============================================================
// Providers
// ============================================================

func (s *Store) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Store.ListProviders")
	defer span.End()

	out := make([]domain.Provider, 0)
	err := queryRows(ctx, s.db,
		`SELECT id, name, website, created_at, updated_at FROM provider ORDER BY name`,
		func(rows *sql.Rows) error {
			var p domain.Provider
			var created, updated string
			if err := rows.Scan(&p.ID, &p.Name, &p.Website, &created, &updated); err != nil {
				return err
			}
			p.CreatedAt, p.UpdatedAt = parseTime(created), parseTime(updated)
			out = append(out, p)
			return nil
		})
	if err != nil {
		return nil, s.fail("list providers", "", err)
	}
	return out, nil
}

func (s *Store) CreateProvider(ctx context.Context, in *domain.ProviderInput) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "Store.CreateProvider")
	defer span.End()

	ts := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO provider (name, website, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		in.Name, in.Website, ts, ts)
	if err != nil {
		return nil, s.fail("create provider", "", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, s.fail("create provider", "", err)
	}

	return &domain.Provider{
		ID:        id,
		Name:      in.Name,
		Website:   in.Website,
		CreatedAt: parseTime(ts),
		UpdatedAt: parseTime(ts),
	}, nil
}

// ============================================================
// Services
// ============================================================

func (s *Store) ListServices(ctx context.Context) ([]domain.ServiceDetail, error) {
	ctx, span := tracer.Start(ctx, "Store.ListServices")
	defer span.End()

	out := make([]domain.ServiceDetail, 0)
	err := queryRows(ctx, s.db, `
		SELECT s.id, s.name, s.description, s.active, p.id, p.name, c.id, c.name
		FROM service s
		JOIN provider p ON p.id = s.provider_id
		JOIN service_category c ON c.id = s.category_id
		ORDER BY s.name, s.id`,
		func(rows *sql.Rows) error {
			var d domain.ServiceDetail
			if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Active,
				&d.Provider.ID, &d.Provider.Name, &d.Category.ID, &d.Category.Name); err != nil {
				return err
			}
			out = append(out, d)
			return nil
		})
	if err != nil {
		return nil, s.fail("list services", "", err)
	}
	return out, nil
}

func (s *Store) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Store.GetService")
	defer span.End()
	span.SetAttributes(attribute.Int64("service.id", id))

	return s.getService(ctx, id)
}

func (s *Store) getService(ctx context.Context, id int64) (*domain.Service, error) {
	var svc domain.Service
	var created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, provider_id, category_id, name, description, active, created_at, updated_at
		FROM service WHERE id = ?`, id).
		Scan(&svc.ID, &svc.ProviderID, &svc.CategoryID, &svc.Name, &svc.Description, &svc.Active, &created, &updated)
	if isNoRows(err) {
		return nil, notFound("service", id)
	}
	if err != nil {
		return nil, s.fail("get service", "", err)
	}
	svc.CreatedAt, svc.UpdatedAt = parseTime(created), parseTime(updated)
	return &svc, nil
}

func (s *Store) CreateService(ctx context.Context, in *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Store.CreateService")
	defer span.End()

	active := in.Active == nil || *in.Active
	ts := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO service (provider_id, category_id, name, description, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ProviderID, in.CategoryID, in.Name, in.Description, active, ts, ts)
	if err != nil {
		return nil, s.fail("create service", s.missingServiceRef(ctx, in.ProviderID, in.CategoryID), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, s.fail("create service", "", err)
	}

	return &domain.Service{
		ID:          id,
		ProviderID:  in.ProviderID,
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		Active:      active,
		CreatedAt:   parseTime(ts),
		UpdatedAt:   parseTime(ts),
	}, nil
}

func (s *Store) UpdateService(ctx context.Context, svc *domain.Service) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Store.UpdateService")
	defer span.End()
	span.SetAttributes(attribute.Int64("service.id", svc.ID))

	res, err := s.db.ExecContext(ctx, `
		UPDATE service
		SET provider_id = ?, category_id = ?, name = ?, description = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		svc.ProviderID, svc.CategoryID, svc.Name, svc.Description, svc.Active, s.timestamp(), svc.ID)
	if err != nil {
		return nil, s.fail("update service", s.missingServiceRef(ctx, svc.ProviderID, svc.CategoryID), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, notFound("service", svc.ID)
	}
	return s.getService(ctx, svc.ID)
}

// missingServiceRef names the reference of a service write that points nowhere.
func (s *Store) missingServiceRef(ctx context.Context, providerID, categoryID int64) string {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM provider WHERE id = ?`, providerID).Scan(&n); err == nil && n == 0 {
		return "providerId"
	}
	return "categoryId"
}
