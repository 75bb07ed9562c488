package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodRange(t *testing.T) {
	now := time.Date(2025, time.November, 15, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		period     string
		start, end string
	}{
		{domain.PeriodMonthly, "2025-11-01", "2025-12-01"},
		{domain.PeriodQuarterly, "2025-10-01", "2026-01-01"},
		{domain.PeriodYearly, "2025-01-01", "2026-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			start, end := domain.PeriodRange(tt.period, now)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}

	start, end := domain.PeriodRange(domain.PeriodQuarterly, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-01-01", start)
	assert.Equal(t, "2025-04-01", end)
}

func TestBudgetInput_Validate(t *testing.T) {
	cat := int64(2)
	in := domain.BudgetInput{Name: " Cloud ", BudgetType: "Category", CategoryID: &cat, ServiceID: &cat, BudgetAmount: dec("100")}
	require.NoError(t, in.Validate())
	assert.Equal(t, "Cloud", in.Name)
	assert.Equal(t, domain.BudgetCategory, in.BudgetType)
	assert.Equal(t, domain.PeriodMonthly, in.BudgetPeriod)
	assert.Nil(t, in.ServiceID, "service id is dropped for category budgets")
	require.NotNil(t, in.AlertThreshold)
	assert.Equal(t, float64(domain.DefaultAlertThreshold), *in.AlertThreshold)

	over := 150.0
	bad := domain.BudgetInput{BudgetType: domain.BudgetService, BudgetAmount: dec("0"), BudgetPeriod: "weekly", AlertThreshold: &over}
	var inv *domain.ErrInvalidData
	require.True(t, errors.As(bad.Validate(), &inv))
	fields := make([]string, 0, len(inv.Errors))
	for _, fe := range inv.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"name", "budgetAmount", "budgetPeriod", "alertThreshold", "serviceId"}, fields)

	unknown := domain.BudgetInput{Name: "X", BudgetType: "team", BudgetAmount: dec("1")}
	require.True(t, errors.As(unknown.Validate(), &inv))
	assert.Equal(t, "budgetType", inv.Errors[0].Field)
}

func TestBudgetRecord_Evaluate(t *testing.T) {
	b := domain.BudgetRecord{Budget: domain.Budget{ID: 7, Name: "Cloud", BudgetType: domain.BudgetTotal,
		BudgetAmount: dec("200"), BudgetPeriod: domain.PeriodMonthly, AlertThreshold: 75, IsActive: true}}

	tests := []struct {
		name   string
		spend  string
		util   float64
		status domain.BudgetStatus
	}{
		{"nothing spent", "0", 0, domain.StatusWithinBudget},
		{"rounds up to threshold", "149.99", 75, domain.StatusApproachingLimit},
		{"well below", "100", 50, domain.StatusWithinBudget},
		{"exactly spent", "200", 100, domain.StatusApproachingLimit},
		{"over", "200.01", 100, domain.StatusOverBudget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := b.Evaluate(dec(tt.spend))
			assert.Equal(t, tt.util, item.Utilization)
			assert.Equal(t, tt.status, item.Status)
			assert.Equal(t, int64(7), item.ID)
			assert.Equal(t, 200.0, item.BudgetAmount)
		})
	}
}

func TestBudgetRecord_Covers(t *testing.T) {
	d := domain.MonthlyDetail{ServiceName: "GPT API", ProviderName: "OpenAI", Category: "Usage"}

	assert.True(t, (&domain.BudgetRecord{Budget: domain.Budget{BudgetType: domain.BudgetTotal}}).Covers(d))
	assert.True(t, (&domain.BudgetRecord{Budget: domain.Budget{BudgetType: domain.BudgetCategory}, CategoryName: "Usage"}).Covers(d))
	assert.False(t, (&domain.BudgetRecord{Budget: domain.Budget{BudgetType: domain.BudgetCategory}, CategoryName: "Infrastructure"}).Covers(d))
	assert.True(t, (&domain.BudgetRecord{Budget: domain.Budget{BudgetType: domain.BudgetService}, ServiceName: "GPT API", ProviderName: "OpenAI"}).Covers(d))
	assert.False(t, (&domain.BudgetRecord{Budget: domain.Budget{BudgetType: domain.BudgetService}, ServiceName: "GPT API", ProviderName: "Azure"}).Covers(d))
}

func TestSummarizeBudgets_Empty(t *testing.T) {
	sum := domain.SummarizeBudgets(nil)
	assert.Equal(t, domain.BudgetSummary{}, sum)

	chart := domain.ChartBudgets(nil)
	assert.NotNil(t, chart.Labels)
	assert.Empty(t, chart.Labels)
}
