package sqlite

import (
	"context"
	"database/sql"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
)

func (s *Store) ListLicenses(ctx context.Context) ([]domain.LicenseListItem, error) {
	ctx, span := tracer.Start(ctx, "Store.ListLicenses")
	defer span.End()

	out := make([]domain.LicenseListItem, 0)
	err := queryRows(ctx, s.db, `
		SELECT l.id, l.monthly_unit_cost, l.qty, l.start_month, l.end_month, l.annual_commitment_end,
		       s.id, s.name, p.id, p.name
		FROM license_plan l
		JOIN service s ON s.id = l.service_id
		JOIN provider p ON p.id = s.provider_id
		ORDER BY s.name, l.id`,
		func(rows *sql.Rows) error {
			var it domain.LicenseListItem
			var end, commit sql.NullString
			if err := rows.Scan(&it.ID, &it.MonthlyUnitCost, &it.Qty, &it.StartMonth, &end, &commit,
				&it.Service.ID, &it.Service.Name, &it.Provider.ID, &it.Provider.Name); err != nil {
				return err
			}
			it.EndMonth, it.AnnualCommitmentEnd = stringPtr(end), stringPtr(commit)
			out = append(out, it)
			return nil
		})
	if err != nil {
		return nil, s.fail("list licenses", "", err)
	}
	return out, nil
}

func (s *Store) CreateLicense(ctx context.Context, in *domain.LicenseInput) (*domain.LicensePlan, error) {
	ctx, span := tracer.Start(ctx, "Store.CreateLicense")
	defer span.End()

	ts := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO license_plan
			(service_id, monthly_unit_cost, qty, start_month, end_month, annual_commitment_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ServiceID, in.MonthlyUnitCost.String(), in.Qty, in.StartMonth,
		nullString(in.EndMonth), nullString(in.AnnualCommitmentEnd), ts, ts)
	if err != nil {
		return nil, s.fail("create license", "serviceId", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, s.fail("create license", "", err)
	}

	return &domain.LicensePlan{
		ID:                  id,
		ServiceID:           in.ServiceID,
		MonthlyUnitCost:     in.MonthlyUnitCost,
		Qty:                 in.Qty,
		StartMonth:          in.StartMonth,
		EndMonth:            in.EndMonth,
		AnnualCommitmentEnd: in.AnnualCommitmentEnd,
		CreatedAt:           parseTime(ts),
		UpdatedAt:           parseTime(ts),
	}, nil
}

func (s *Store) ListCommitments(ctx context.Context, from, to string) ([]domain.Commitment, error) {
	ctx, span := tracer.Start(ctx, "Store.ListCommitments")
	defer span.End()

	out := make([]domain.Commitment, 0)
	err := queryRows(ctx, s.db, `
		SELECT l.id, l.annual_commitment_end, s.id, s.name, p.id, p.name
		FROM license_plan l
		JOIN service s ON s.id = l.service_id
		JOIN provider p ON p.id = s.provider_id
		WHERE l.annual_commitment_end IS NOT NULL
		  AND l.annual_commitment_end >= ? AND l.annual_commitment_end <= ?
		ORDER BY l.annual_commitment_end, l.id`,
		func(rows *sql.Rows) error {
			var c domain.Commitment
			if err := rows.Scan(&c.ID, &c.AnnualCommitmentEnd,
				&c.Service.ID, &c.Service.Name, &c.Provider.ID, &c.Provider.Name); err != nil {
				return err
			}
			out = append(out, c)
			return nil
		}, from, to)
	if err != nil {
		return nil, s.fail("list commitments", "", err)
	}
	return out, nil
}
