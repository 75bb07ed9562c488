package sqlite

import (
	"context"
	"database/sql"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

func (s *Store) ListBudgets(ctx context.Context) ([]domain.BudgetRecord, error) {
	ctx, span := tracer.Start(ctx, "Store.ListBudgets")
	defer span.End()

	out := make([]domain.BudgetRecord, 0)
	err := queryRows(ctx, s.db, `
		SELECT b.id, b.name, b.budget_type, b.category_id, b.service_id, b.budget_amount,
		       b.budget_period, b.alert_threshold, b.is_active, b.created_at, b.updated_at,
		       COALESCE(c.name, ''), COALESCE(s.name, ''), COALESCE(p.name, '')
		FROM budget b
		LEFT JOIN service_category c ON c.id = b.category_id
		LEFT JOIN service s ON s.id = b.service_id
		LEFT JOIN provider p ON p.id = s.provider_id
		ORDER BY b.name, b.id`,
		func(rows *sql.Rows) error {
			var (
				r                domain.BudgetRecord
				catID, svcID     sql.NullInt64
				created, updated string
			)
			if err := rows.Scan(&r.ID, &r.Name, &r.BudgetType, &catID, &svcID, &r.BudgetAmount,
				&r.BudgetPeriod, &r.AlertThreshold, &r.IsActive, &created, &updated,
				&r.CategoryName, &r.ServiceName, &r.ProviderName); err != nil {
				return err
			}
			r.CategoryID, r.ServiceID = int64Ptr(catID), int64Ptr(svcID)
			r.CreatedAt, r.UpdatedAt = parseTime(created), parseTime(updated)
			out = append(out, r)
			return nil
		})
	if err != nil {
		return nil, s.fail("list budgets", "", err)
	}
	return out, nil
}

func (s *Store) CreateBudget(ctx context.Context, in *domain.BudgetInput) (*domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Store.CreateBudget")
	defer span.End()

	fkField := "categoryId"
	if in.BudgetType == domain.BudgetService {
		fkField = "serviceId"
	}

	ts := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO budget (name, budget_type, category_id, service_id, budget_amount,
		                    budget_period, alert_threshold, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.BudgetType, nullInt64(in.CategoryID), nullInt64(in.ServiceID), in.BudgetAmount.String(),
		in.BudgetPeriod, *in.AlertThreshold, *in.IsActive, ts, ts)
	if err != nil {
		return nil, s.fail("create budget", fkField, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, s.fail("create budget", "", err)
	}

	return &domain.Budget{
		ID:             id,
		Name:           in.Name,
		BudgetType:     in.BudgetType,
		CategoryID:     in.CategoryID,
		ServiceID:      in.ServiceID,
		BudgetAmount:   in.BudgetAmount,
		BudgetPeriod:   in.BudgetPeriod,
		AlertThreshold: *in.AlertThreshold,
		IsActive:       *in.IsActive,
		CreatedAt:      parseTime(ts),
		UpdatedAt:      parseTime(ts),
	}, nil
}

func (s *Store) DeleteBudget(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "Store.DeleteBudget")
	defer span.End()
	span.SetAttributes(attribute.Int64("budget.id", id))

	res, err := s.db.ExecContext(ctx, `DELETE FROM budget WHERE id = ?`, id)
	if err != nil {
		return s.fail("delete budget", "", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.fail("delete budget", "", err)
	}
	if n == 0 {
		return notFound("budget", id)
	}
	return nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
