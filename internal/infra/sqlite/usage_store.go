package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Top-ups
// ============================================================

func (s *Store) ListTopups(ctx context.Context) ([]domain.TopupListItem, error) {
	ctx, span := tracer.Start(ctx, "Store.ListTopups")
	defer span.End()

	out := make([]domain.TopupListItem, 0)
	err := queryRows(ctx, s.db, `
		SELECT t.id, t.topup_date, t.amount_purchased, t.currency, s.id, s.name, p.id, p.name
		FROM usage_topup t
		JOIN service s ON s.id = t.service_id
		JOIN provider p ON p.id = s.provider_id
		ORDER BY t.topup_date DESC, t.id DESC`,
		func(rows *sql.Rows) error {
			var it domain.TopupListItem
			if err := rows.Scan(&it.ID, &it.TopupDate, &it.AmountPurchased, &it.Currency,
				&it.Service.ID, &it.Service.Name, &it.Provider.ID, &it.Provider.Name); err != nil {
				return err
			}
			out = append(out, it)
			return nil
		})
	if err != nil {
		return nil, s.fail("list topups", "", err)
	}
	return out, nil
}

const insertTopup = `
	INSERT INTO usage_topup (service_id, topup_date, amount_purchased, currency, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`

func (s *Store) insertTopup(ctx context.Context, q querier, in *domain.TopupInput, ts string) (*domain.Topup, error) {
	res, err := q.ExecContext(ctx, insertTopup,
		in.ServiceID, in.TopupDate, in.AmountPurchased.String(), in.Currency, ts, ts)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.Topup{
		ID:              id,
		ServiceID:       in.ServiceID,
		TopupDate:       in.TopupDate,
		AmountPurchased: in.AmountPurchased,
		Currency:        in.Currency,
		CreatedAt:       parseTime(ts),
		UpdatedAt:       parseTime(ts),
	}, nil
}

func (s *Store) CreateTopup(ctx context.Context, in *domain.TopupInput) (*domain.Topup, error) {
	ctx, span := tracer.Start(ctx, "Store.CreateTopup")
	defer span.End()

	t, err := s.insertTopup(ctx, s.db, in, s.timestamp())
	if err != nil {
		return nil, s.fail("create topup", "serviceId", err)
	}
	return t, nil
}

// CreateTopups inserts every record in one transaction.
func (s *Store) CreateTopups(ctx context.Context, in []domain.TopupInput) ([]domain.Topup, error) {
	ctx, span := tracer.Start(ctx, "Store.CreateTopups")
	defer span.End()
	span.SetAttributes(attribute.Int("topups.count", len(in)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, s.fail("begin topup import", "", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	ts := s.timestamp()
	out := make([]domain.Topup, 0, len(in))
	for i := range in {
		t, err := s.insertTopup(ctx, tx, &in[i], ts)
		if err != nil {
			return nil, s.fail("import topups", fmt.Sprintf("records.%d.serviceId", i), err)
		}
		out = append(out, *t)
	}

	if err := tx.Commit(); err != nil {
		return nil, s.fail("commit topup import", "", err)
	}

	s.logger.Debug("sqlite: topups imported", zap.Int("count", len(out)))
	return out, nil
}

// ============================================================
// Consumption
// ============================================================

func (s *Store) ListConsumption(ctx context.Context) ([]domain.ConsumptionListItem, error) {
	ctx, span := tracer.Start(ctx, "Store.ListConsumption")
	defer span.End()

	out := make([]domain.ConsumptionListItem, 0)
	err := queryRows(ctx, s.db, `
		SELECT c.id, c.consumption_date, c.amount_consumed, s.id, s.name, p.id, p.name
		FROM usage_consumption c
		JOIN service s ON s.id = c.service_id
		JOIN provider p ON p.id = s.provider_id
		ORDER BY c.consumption_date DESC, c.id DESC`,
		func(rows *sql.Rows) error {
			var it domain.ConsumptionListItem
			if err := rows.Scan(&it.ID, &it.ConsumptionDate, &it.AmountConsumed,
				&it.Service.ID, &it.Service.Name, &it.Provider.ID, &it.Provider.Name); err != nil {
				return err
			}
			out = append(out, it)
			return nil
		})
	if err != nil {
		return nil, s.fail("list consumption", "", err)
	}
	return out, nil
}

func (s *Store) CreateConsumption(ctx context.Context, in *domain.ConsumptionInput) (*domain.Consumption, error) {
	ctx, span := tracer.Start(ctx, "Store.CreateConsumption")
	defer span.End()

	ts := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_consumption (service_id, consumption_date, amount_consumed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.ServiceID, in.ConsumptionDate, in.AmountConsumed.String(), ts, ts)
	if err != nil {
		return nil, s.fail("create consumption", "serviceId", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, s.fail("create consumption", "", err)
	}

	return &domain.Consumption{
		ID:              id,
		ServiceID:       in.ServiceID,
		ConsumptionDate: in.ConsumptionDate,
		AmountConsumed:  in.AmountConsumed,
		CreatedAt:       parseTime(ts),
		UpdatedAt:       parseTime(ts),
	}, nil
}

// ============================================================
// Balances
// ============================================================

func (s *Store) ServiceUsage(ctx context.Context, serviceID int64) (*domain.ServiceUsage, error) {
	ctx, span := tracer.Start(ctx, "Store.ServiceUsage")
	defer span.End()
	span.SetAttributes(attribute.Int64("service.id", serviceID))

	u := &domain.ServiceUsage{ServiceID: serviceID}
	err := s.db.QueryRowContext(ctx, `
		SELECT s.name, p.name FROM service s JOIN provider p ON p.id = s.provider_id WHERE s.id = ?`,
		serviceID).Scan(&u.ServiceName, &u.ProviderName)
	if isNoRows(err) {
		return u, nil
	}
	if err != nil {
		return nil, s.fail("service usage", "", err)
	}

	totals, err := s.usageTotals(ctx, `s.id = ?`, serviceID)
	if err != nil {
		return nil, s.fail("service usage", "", err)
	}
	if t, ok := totals[serviceID]; ok {
		u.TotalPurchased, u.TotalConsumed = t.TotalPurchased, t.TotalConsumed
	}
	return u, nil
}

func (s *Store) UsageByCategory(ctx context.Context, category string) ([]domain.ServiceUsage, error) {
	ctx, span := tracer.Start(ctx, "Store.UsageByCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category", category))

	out := make([]domain.ServiceUsage, 0)
	err := queryRows(ctx, s.db, `
		SELECT s.id, s.name, p.name
		FROM service s
		JOIN provider p ON p.id = s.provider_id
		JOIN service_category c ON c.id = s.category_id
		WHERE c.name = ?
		ORDER BY s.name, s.id`,
		func(rows *sql.Rows) error {
			var u domain.ServiceUsage
			if err := rows.Scan(&u.ServiceID, &u.ServiceName, &u.ProviderName); err != nil {
				return err
			}
			out = append(out, u)
			return nil
		}, category)
	if err != nil {
		return nil, s.fail("usage by category", "", err)
	}

	totals, err := s.usageTotals(ctx, `s.category_id = (SELECT id FROM service_category WHERE name = ?)`, category)
	if err != nil {
		return nil, s.fail("usage by category", "", err)
	}
	for i := range out {
		if t, ok := totals[out[i].ServiceID]; ok {
			out[i].TotalPurchased, out[i].TotalConsumed = t.TotalPurchased, t.TotalConsumed
		}
	}
	return out, nil
}

// usageTotals sums top-ups and consumption per service for the services
// matching where (a predicate on alias s).
func (s *Store) usageTotals(ctx context.Context, where string, arg any) (map[int64]*domain.ServiceUsage, error) {
	totals := make(map[int64]*domain.ServiceUsage)
	get := func(id int64) *domain.ServiceUsage {
		t, ok := totals[id]
		if !ok {
			t = &domain.ServiceUsage{ServiceID: id}
			totals[id] = t
		}
		return t
	}

	err := queryRows(ctx, s.db, `
		SELECT t.service_id, t.amount_purchased
		FROM usage_topup t JOIN service s ON s.id = t.service_id
		WHERE `+where,
		func(rows *sql.Rows) error {
			var id int64
			var amt decimal.Decimal
			if err := rows.Scan(&id, &amt); err != nil {
				return err
			}
			t := get(id)
			t.TotalPurchased = t.TotalPurchased.Add(amt)
			return nil
		}, arg)
	if err != nil {
		return nil, err
	}

	err = queryRows(ctx, s.db, `
		SELECT c.service_id, c.amount_consumed
		FROM usage_consumption c JOIN service s ON s.id = c.service_id
		WHERE `+where,
		func(rows *sql.Rows) error {
			var id int64
			var amt decimal.Decimal
			if err := rows.Scan(&id, &amt); err != nil {
				return err
			}
			t := get(id)
			t.TotalConsumed = t.TotalConsumed.Add(amt)
			return nil
		}, arg)
	if err != nil {
		return nil, err
	}
	return totals, nil
}
