package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LicensePlan is a seat-based subscription: unit cost × qty per month.
type LicensePlan struct {
	ID                  int64           `json:"id"`
	ServiceID           int64           `json:"serviceId"`
	MonthlyUnitCost     decimal.Decimal `json:"monthlyUnitCost"`
	Qty                 int             `json:"qty"`
	StartMonth          string          `json:"startMonth"`
	EndMonth            *string         `json:"endMonth"`
	AnnualCommitmentEnd *string         `json:"annualCommitmentEnd"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// MonthlyCost is the plan's cost for one month.
func (p *LicensePlan) MonthlyCost() decimal.Decimal {
	return p.MonthlyUnitCost.Mul(decimal.NewFromInt(int64(p.Qty)))
}

// ActiveDuring reports whether the plan bills anything in [start, end).
// A plan without endMonth is open-ended.
func (p *LicensePlan) ActiveDuring(start, end string) bool {
	if p.StartMonth >= end {
		return false
	}
	return p.EndMonth == nil || *p.EndMonth >= start
}

// LicenseListItem is a plan joined with its service and provider.
type LicenseListItem struct {
	ID                  int64           `json:"id"`
	MonthlyUnitCost     decimal.Decimal `json:"monthlyUnitCost"`
	Qty                 int             `json:"qty"`
	StartMonth          string          `json:"startMonth"`
	EndMonth            *string         `json:"endMonth"`
	AnnualCommitmentEnd *string         `json:"annualCommitmentEnd"`
	Service             Ref             `json:"service"`
	Provider            Ref             `json:"provider"`
}

// LicenseInput is the body of POST /api/licenses.
type LicenseInput struct {
	ServiceID           int64           `json:"serviceId"`
	MonthlyUnitCost     decimal.Decimal `json:"monthlyUnitCost"`
	Qty                 int             `json:"qty"`
	StartMonth          string          `json:"startMonth"`
	EndMonth            *string         `json:"endMonth"`
	AnnualCommitmentEnd *string         `json:"annualCommitmentEnd"`
}

func (in *LicenseInput) Validate() error {
	if in.Qty == 0 {
		in.Qty = 1
	}
	in.EndMonth = blankToNil(in.EndMonth)
	in.AnnualCommitmentEnd = blankToNil(in.AnnualCommitmentEnd)

	v := &Validation{}
	v.Check(in.ServiceID > 0, "serviceId", "Required")
	v.Check(!in.MonthlyUnitCost.IsNegative(), "monthlyUnitCost", "Must not be negative")
	v.Check(in.Qty >= 1, "qty", "Must be at least 1")
	v.Check(IsDate(in.StartMonth), "startMonth", "Must be a date (YYYY-MM-DD)")
	if in.EndMonth != nil {
		v.Check(IsDate(*in.EndMonth), "endMonth", "Must be a date (YYYY-MM-DD)")
		v.Check(*in.EndMonth >= in.StartMonth, "endMonth", "Must not be before startMonth")
	}
	if in.AnnualCommitmentEnd != nil {
		v.Check(IsDate(*in.AnnualCommitmentEnd), "annualCommitmentEnd", "Must be a date (YYYY-MM-DD)")
	}
	return v.Err()
}

// Commitment is a plan whose annual commitment ends soon.
type Commitment struct {
	ID                  int64  `json:"id"`
	AnnualCommitmentEnd string `json:"annualCommitmentEnd"`
	Service             Ref    `json:"service"`
	Provider            Ref    `json:"provider"`
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
