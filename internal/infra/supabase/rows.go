package supabase

import (
	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Row types map PostgREST snake_case columns; embedded resources are
// requested with select=...,service:service_id(...).

const (
	serviceEmbed     = "service:service_id(id,name,provider:provider_id(id,name))"
	serviceNameEmbed = "service:service_id(id,name,provider:provider_id(id,name),category:category_id(id,name))"
)

type serviceEmbedRow struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Provider domain.Ref `json:"provider"`
	Category domain.Ref `json:"category"`
}

type categoryRow struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   pgTime `json:"created_at"`
	UpdatedAt   pgTime `json:"updated_at"`
}

func (r categoryRow) toDomain() domain.ServiceCategory {
	return domain.ServiceCategory{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.Time(),
		UpdatedAt:   r.UpdatedAt.Time(),
	}
}

type providerRow struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Website   string `json:"website"`
	CreatedAt pgTime `json:"created_at"`
	UpdatedAt pgTime `json:"updated_at"`
}

func (r providerRow) toDomain() domain.Provider {
	return domain.Provider{
		ID:        r.ID,
		Name:      r.Name,
		Website:   r.Website,
		CreatedAt: r.CreatedAt.Time(),
		UpdatedAt: r.UpdatedAt.Time(),
	}
}

type serviceRow struct {
	ID          int64      `json:"id"`
	ProviderID  int64      `json:"provider_id"`
	CategoryID  int64      `json:"category_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	CreatedAt   pgTime     `json:"created_at"`
	UpdatedAt   pgTime     `json:"updated_at"`
	Provider    domain.Ref `json:"provider"`
	Category    domain.Ref `json:"category"`
}

func (r serviceRow) toDomain() domain.Service {
	return domain.Service{
		ID:          r.ID,
		ProviderID:  r.ProviderID,
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt.Time(),
		UpdatedAt:   r.UpdatedAt.Time(),
	}
}

func (r serviceRow) toDetail() domain.ServiceDetail {
	return domain.ServiceDetail{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Active:      r.Active,
		Provider:    r.Provider,
		Category:    r.Category,
	}
}

type invoiceRow struct {
	ID           int64           `json:"id"`
	ServiceID    int64           `json:"service_id"`
	InvoiceMonth string          `json:"invoice_month"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	CreatedAt    pgTime          `json:"created_at"`
	UpdatedAt    pgTime          `json:"updated_at"`
	Service      serviceEmbedRow `json:"service"`
}

func (r invoiceRow) toDomain() domain.Invoice {
	return domain.Invoice{
		ID:           r.ID,
		ServiceID:    r.ServiceID,
		InvoiceMonth: r.InvoiceMonth,
		Amount:       r.Amount,
		Currency:     r.Currency,
		CreatedAt:    r.CreatedAt.Time(),
		UpdatedAt:    r.UpdatedAt.Time(),
	}
}

type licenseRow struct {
	ID                  int64           `json:"id"`
	ServiceID           int64           `json:"service_id"`
	MonthlyUnitCost     decimal.Decimal `json:"monthly_unit_cost"`
	Qty                 int             `json:"qty"`
	StartMonth          string          `json:"start_month"`
	EndMonth            *string         `json:"end_month"`
	AnnualCommitmentEnd *string         `json:"annual_commitment_end"`
	CreatedAt           pgTime          `json:"created_at"`
	UpdatedAt           pgTime          `json:"updated_at"`
	Service             serviceEmbedRow `json:"service"`
}

func (r licenseRow) toDomain() domain.LicensePlan {
	return domain.LicensePlan{
		ID:                  r.ID,
		ServiceID:           r.ServiceID,
		MonthlyUnitCost:     r.MonthlyUnitCost,
		Qty:                 r.Qty,
		StartMonth:          r.StartMonth,
		EndMonth:            r.EndMonth,
		AnnualCommitmentEnd: r.AnnualCommitmentEnd,
		CreatedAt:           r.CreatedAt.Time(),
		UpdatedAt:           r.UpdatedAt.Time(),
	}
}

type topupRow struct {
	ID              int64           `json:"id"`
	ServiceID       int64           `json:"service_id"`
	TopupDate       string          `json:"topup_date"`
	AmountPurchased decimal.Decimal `json:"amount_purchased"`
	Currency        string          `json:"currency"`
	CreatedAt       pgTime          `json:"created_at"`
	UpdatedAt       pgTime          `json:"updated_at"`
	Service         serviceEmbedRow `json:"service"`
}

func (r topupRow) toDomain() domain.Topup {
	return domain.Topup{
		ID:              r.ID,
		ServiceID:       r.ServiceID,
		TopupDate:       r.TopupDate,
		AmountPurchased: r.AmountPurchased,
		Currency:        r.Currency,
		CreatedAt:       r.CreatedAt.Time(),
		UpdatedAt:       r.UpdatedAt.Time(),
	}
}

type consumptionRow struct {
	ID              int64           `json:"id"`
	ServiceID       int64           `json:"service_id"`
	ConsumptionDate string          `json:"consumption_date"`
	AmountConsumed  decimal.Decimal `json:"amount_consumed"`
	CreatedAt       pgTime          `json:"created_at"`
	UpdatedAt       pgTime          `json:"updated_at"`
	Service         serviceEmbedRow `json:"service"`
}

func (r consumptionRow) toDomain() domain.Consumption {
	return domain.Consumption{
		ID:              r.ID,
		ServiceID:       r.ServiceID,
		ConsumptionDate: r.ConsumptionDate,
		AmountConsumed:  r.AmountConsumed,
		CreatedAt:       r.CreatedAt.Time(),
		UpdatedAt:       r.UpdatedAt.Time(),
	}
}

func first[T any](rows []T, op string) (*T, error) {
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/" + op, Err: errEmptyInsert}
	}
	return &rows[0], nil
}
