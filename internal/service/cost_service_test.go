package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
)

// --- Catalog ---

func TestReferenceData_CachesUntilInvalidated(t *testing.T) {
	store := newMockStore()
	store.categories = []domain.ServiceCategory{{ID: 1, Name: "Infrastructure"}}
	store.providers = []domain.Provider{{ID: 1, Name: "AWS"}}
	svc, metrics := newService(store, nil)
	ctx := context.Background()

	ref, err := svc.ReferenceData(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ref.Categories) != 1 || len(ref.Providers) != 1 {
		t.Fatalf("unexpected reference data: %+v", ref)
	}

	if _, err := svc.ReferenceData(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.categoryCalls != 1 || store.providerCalls != 1 {
		t.Errorf("expected one store call each, got categories=%d providers=%d", store.categoryCalls, store.providerCalls)
	}
	if rate := metrics.Snapshot().CacheHitRate; rate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %v", rate)
	}

	if _, err := svc.CreateProvider(ctx, &domain.ProviderInput{Name: "Google"}); err != nil {
		t.Fatalf("create provider: %v", err)
	}
	ref, err = svc.ReferenceData(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ref.Providers) != 2 {
		t.Errorf("expected reload after create, got %d providers", len(ref.Providers))
	}
}

func TestReferenceData_StoreError(t *testing.T) {
	store := newMockStore()
	store.err = errStore
	svc, _ := newService(store, nil)

	_, err := svc.ReferenceData(context.Background())
	if !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestCreateCategory_Validation(t *testing.T) {
	svc, _ := newService(newMockStore(), nil)

	_, err := svc.CreateCategory(context.Background(), &domain.CategoryInput{Name: "   "})
	var invalid *domain.ErrInvalidData
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
	if invalid.Errors[0].Field != "name" {
		t.Errorf("expected field name, got %s", invalid.Errors[0].Field)
	}
}

func TestUpdateService_AppliesPatch(t *testing.T) {
	store := newMockStore()
	store.services[7] = &domain.Service{ID: 7, Name: "EC2", ProviderID: 1, CategoryID: 1, Active: true, Description: "old"}
	svc, _ := newService(store, nil)

	name := "  EC2 Reserved "
	got, err := svc.UpdateService(context.Background(), 7, &domain.ServicePatch{Name: &name})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Name != "EC2 Reserved" {
		t.Errorf("expected trimmed name, got %q", got.Name)
	}
	if got.Description != "old" || !got.Active {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestUpdateService_NotFound(t *testing.T) {
	svc, _ := newService(newMockStore(), nil)

	active := false
	_, err := svc.UpdateService(context.Background(), 99, &domain.ServicePatch{Active: &active})
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteService_SoftDeletes(t *testing.T) {
	store := newMockStore()
	store.services[3] = &domain.Service{ID: 3, Name: "Jira", Active: true}
	svc, _ := newService(store, nil)

	if err := svc.DeleteService(context.Background(), 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.services[3].Active {
		t.Error("expected service to be inactive")
	}
	if store.services[3].Name != "Jira" {
		t.Error("expected service to be kept")
	}
}

// --- Invoices & licenses ---

func TestCreateInvoice_PublishesEvent(t *testing.T) {
	pub := &mockPublisher{}
	svc, metrics := newService(newMockStore(), pub)

	inv, err := svc.CreateInvoice(context.Background(), &domain.InvoiceInput{
		ServiceID: 2, InvoiceMonth: "2025-10-01", Amount: dec("1234.50"), Currency: "eur",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if inv.Currency != "EUR" {
		t.Errorf("expected upper-cased currency, got %s", inv.Currency)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	e := pub.events[0]
	if e.Type != domain.EventInvoiceCreated || e.ServiceID != 2 || e.Amount != "1234.5" || e.ID == "" {
		t.Errorf("unexpected event: %+v", e)
	}
	if got := metrics.Snapshot().EventsPublished; got != 1 {
		t.Errorf("expected 1 published event, got %d", got)
	}
}

func TestCreateInvoice_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker unreachable")}
	svc, metrics := newService(newMockStore(), pub)

	_, err := svc.CreateInvoice(context.Background(), &domain.InvoiceInput{
		ServiceID: 2, InvoiceMonth: "2025-10-01", Amount: dec("10"),
	})
	if err != nil {
		t.Fatalf("expected write to succeed, got %v", err)
	}
	if got := metrics.Snapshot().EventsFailed; got != 1 {
		t.Errorf("expected 1 failed event, got %d", got)
	}
}

func TestCreateInvoice_RejectsNonPositiveAmount(t *testing.T) {
	pub := &mockPublisher{}
	svc, _ := newService(newMockStore(), pub)

	_, err := svc.CreateInvoice(context.Background(), &domain.InvoiceInput{
		ServiceID: 2, InvoiceMonth: "2025-10-01", Amount: dec("0"),
	})
	var invalid *domain.ErrInvalidData
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Error("no event expected for a rejected write")
	}
}

func TestListCommitments_Window(t *testing.T) {
	store := newMockStore()
	svc, _ := newService(store, nil)

	if _, err := svc.ListCommitments(context.Background(), 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.gotCommitRange != [2]string{"2025-11-15", "2025-12-15"} {
		t.Errorf("unexpected default window: %v", store.gotCommitRange)
	}

	if _, err := svc.ListCommitments(context.Background(), 7); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.gotCommitRange != [2]string{"2025-11-15", "2025-11-22"} {
		t.Errorf("unexpected 7-day window: %v", store.gotCommitRange)
	}
}

// --- Usage ---

func TestBulkCreateTopups(t *testing.T) {
	store := newMockStore()
	pub := &mockPublisher{}
	svc, metrics := newService(store, pub)

	res, err := svc.BulkCreateTopups(context.Background(), &domain.BulkTopupRequest{Records: []domain.TopupInput{
		{ServiceID: 1, TopupDate: "2025-01-01", AmountPurchased: dec("100")},
		{ServiceID: 2, TopupDate: "2025-01-02", AmountPurchased: dec("50"), Currency: "usd"},
	}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Message != "Successfully imported 2 records" {
		t.Errorf("unexpected message: %s", res.Message)
	}
	if res.BatchID == "" || len(res.Records) != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if got := metrics.Snapshot().TopupsImported; got != 2 {
		t.Errorf("expected 2 imported, got %d", got)
	}
	if len(pub.events) != 1 || pub.events[0].BatchID != res.BatchID || pub.events[0].Count != 2 {
		t.Errorf("unexpected events: %+v", pub.events)
	}
}

func TestBulkCreateTopups_InvalidRecordWritesNothing(t *testing.T) {
	store := newMockStore()
	svc, _ := newService(store, nil)

	_, err := svc.BulkCreateTopups(context.Background(), &domain.BulkTopupRequest{Records: []domain.TopupInput{
		{ServiceID: 1, TopupDate: "2025-01-01", AmountPurchased: dec("100")},
		{ServiceID: 1, TopupDate: "01/02/2025", AmountPurchased: dec("-1")},
	}})
	var invalid *domain.ErrInvalidData
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
	if len(invalid.Errors) != 2 || invalid.Errors[0].Field != "records.1.topupDate" {
		t.Errorf("unexpected errors: %+v", invalid.Errors)
	}
	if len(store.createdTopups) != 0 {
		t.Error("nothing should be written")
	}
}

func TestBulkCreateTopups_Empty(t *testing.T) {
	svc, _ := newService(newMockStore(), nil)

	_, err := svc.BulkCreateTopups(context.Background(), &domain.BulkTopupRequest{})
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) || ve.Message != "Invalid records array" {
		t.Fatalf("expected invalid records error, got %v", err)
	}
}

func TestBalance_UnknownServiceIsZero(t *testing.T) {
	svc, _ := newService(newMockStore(), nil)

	b, err := svc.Balance(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if *b != (domain.Balance{}) {
		t.Errorf("expected zeros, got %+v", b)
	}
}

func TestLowBalanceAlerts(t *testing.T) {
	store := newMockStore()
	store.usage = []domain.ServiceUsage{
		{ServiceID: 1, ServiceName: "GPT API", TotalPurchased: dec("100"), TotalConsumed: dec("90")},
		{ServiceID: 2, ServiceName: "Tavily", TotalPurchased: dec("100"), TotalConsumed: dec("50")},
		{ServiceID: 3, ServiceName: "Never bought", TotalPurchased: dec("0"), TotalConsumed: dec("0")},
	}
	svc, _ := newService(store, nil)

	alerts, err := svc.LowBalanceAlerts(context.Background(), 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.gotCategory != "Usage" {
		t.Errorf("expected Usage category, got %s", store.gotCategory)
	}
	if len(alerts) != 1 || alerts[0].ServiceID != 1 {
		t.Fatalf("expected only GPT API flagged, got %+v", alerts)
	}
	if alerts[0].PercentRemaining != 10 || alerts[0].Balance != 10 {
		t.Errorf("unexpected alert: %+v", alerts[0])
	}

	alerts, _ = svc.LowBalanceAlerts(context.Background(), 60)
	if len(alerts) != 2 {
		t.Errorf("expected 2 alerts at 60%%, got %d", len(alerts))
	}
}

// --- Dashboard ---

func TestMonthlySpend_RangeAndTotals(t *testing.T) {
	store := newMockStore()
	store.spend = []domain.CategoryAmount{
		{CategoryName: "AI Services", Amount: dec("0")},
		{CategoryName: "Infrastructure", Amount: dec("0")},
		{CategoryName: "Infrastructure", Amount: dec("100.10")},
		{CategoryName: "Infrastructure", Amount: dec("0.20")},
	}
	svc, _ := newService(store, nil)

	spend, err := svc.MonthlySpend(context.Background(), 2025, 12)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.gotRange != [2]string{"2025-12-01", "2026-01-01"} {
		t.Errorf("unexpected range: %v", store.gotRange)
	}
	want := []domain.CategorySpend{{CategoryName: "AI Services", TotalAmount: 0}, {CategoryName: "Infrastructure", TotalAmount: 100.3}}
	if len(spend) != 2 || spend[0] != want[0] || spend[1] != want[1] {
		t.Errorf("expected %+v, got %+v", want, spend)
	}
}

func TestMonthlySpend_InvalidMonth(t *testing.T) {
	svc, _ := newService(newMockStore(), nil)

	_, err := svc.MonthlySpend(context.Background(), 2025, 13)
	var invalid *domain.ErrInvalidData
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}

func TestMonthlyDetails_MergesAndSorts(t *testing.T) {
	store := newMockStore()
	end := "2025-10-01"
	store.invDetails = []domain.MonthlyDetail{
		{ServiceName: "AWS", MonthlyAmount: 500, Type: domain.DetailInfrastructure},
	}
	store.licCosts = []domain.LicenseCost{
		{ServiceName: "Jira", Plan: domain.LicensePlan{MonthlyUnitCost: dec("8.5"), Qty: 100, StartMonth: "2025-01-01"}},
		{ServiceName: "Office", Plan: domain.LicensePlan{MonthlyUnitCost: dec("10"), Qty: 2, StartMonth: "2025-01-01", EndMonth: &end}},
	}
	svc, _ := newService(store, nil)

	details, err := svc.MonthlyDetails(context.Background(), 2025, 11)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected ended plan to be dropped, got %+v", details)
	}
	if details[0].ServiceName != "Jira" || details[0].MonthlyAmount != 850 || details[0].Type != domain.DetailLicense {
		t.Errorf("expected Jira first, got %+v", details[0])
	}
	if details[1].ServiceName != "AWS" {
		t.Errorf("expected AWS second, got %+v", details[1])
	}
}

func TestSummary(t *testing.T) {
	store := newMockStore()
	store.spend = []domain.CategoryAmount{
		{CategoryName: "Infrastructure", Amount: dec("300")},
		{CategoryName: "User License", Amount: dec("200")},
	}
	store.licenses = []domain.LicenseListItem{{ID: 1}, {ID: 2}}
	store.usage = []domain.ServiceUsage{{ServiceID: 1, TotalPurchased: dec("100"), TotalConsumed: dec("95")}}
	store.commitments = []domain.Commitment{{ID: 1, AnnualCommitmentEnd: "2025-11-30"}}
	for i := 0; i < 7; i++ {
		store.invoices = append(store.invoices, domain.InvoiceListItem{ID: int64(i + 1)})
	}
	svc, _ := newService(store, nil)

	sum, err := svc.Summary(context.Background(), 2025, 11)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sum.CurrentMonthTotal != 500 {
		t.Errorf("expected total 500, got %v", sum.CurrentMonthTotal)
	}
	if sum.ActiveLicenses != 2 || sum.LowBalanceAlerts != 1 || sum.ExpiringLicenses != 1 {
		t.Errorf("unexpected counts: %+v", sum)
	}
	if len(sum.RecentInvoices) != 5 {
		t.Errorf("expected 5 recent invoices, got %d", len(sum.RecentInvoices))
	}
	if len(sum.Alerts.LowBalance) != 1 || len(sum.Alerts.Expiring) != 1 {
		t.Errorf("unexpected alerts: %+v", sum.Alerts)
	}
}

func TestSummary_FailsWhenAnyLookupFails(t *testing.T) {
	store := newMockStore()
	store.err = errStore
	svc, _ := newService(store, nil)

	if _, err := svc.Summary(context.Background(), 2025, 11); !errors.Is(err, errStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestCurrentMonth(t *testing.T) {
	svc, _ := newService(newMockStore(), nil)

	y, m := svc.CurrentMonth()
	if y != 2025 || m != 11 {
		t.Errorf("expected 2025-11, got %d-%d", y, m)
	}
}
