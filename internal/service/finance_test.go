package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/infra/cache"
	"github.com/smw-finance/gastos-bfa-go/internal/infra/observability"
	"github.com/smw-finance/gastos-bfa-go/internal/service"
)

// --- Mocks ---

// mockLedger implements every store port against in-memory fixtures and
// counts upstream calls so tests can assert cache behavior.
type mockLedger struct {
	cards      []domain.CreditCard
	expenses   map[string]*domain.Expense
	periods    map[string]*domain.Period
	projection []domain.Period
	categories []domain.ExpenseCategory
	user       *domain.User

	err error

	listCardsCalls  int
	projectionCalls int
	updatedPayments []string
}

func periodKey(month, year int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (m *mockLedger) ListCreditCards(_ context.Context, limit, offset int) (*domain.PaginatedCreditCards, error) {
	m.listCardsCalls++
	if m.err != nil {
		return nil, m.err
	}
	items := make([]domain.CreditCard, len(m.cards))
	copy(items, m.cards)
	return &domain.PaginatedCreditCards{
		Items:      items,
		Pagination: domain.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: len(items), PerPage: limit},
	}, nil
}

func (m *mockLedger) CreateCreditCard(_ context.Context, p *domain.CreditCardPayload) (*domain.CreditCard, error) {
	if m.err != nil {
		return nil, m.err
	}
	card := domain.CreditCard{
		ID:               "card-new",
		Alias:            p.Alias,
		Limit:            p.Limit,
		MainCreditCardID: p.MainCreditCardID,
		IsMainCreditCard: p.MainCreditCardID == nil,
	}
	return &card, nil
}

func (m *mockLedger) UpdateCreditCard(_ context.Context, cardID string, p *domain.CreditCardPayload) (*domain.CreditCard, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.CreditCard{ID: cardID, Alias: p.Alias, Limit: p.Limit, IsMainCreditCard: true}, nil
}

func (m *mockLedger) DeleteCreditCard(_ context.Context, _ string) error { return m.err }

func (m *mockLedger) ListExpenses(_ context.Context, limit, _ int, _ domain.ExpenseType) (*domain.PaginatedExpenses, error) {
	if m.err != nil {
		return nil, m.err
	}
	items := make([]domain.Expense, 0, len(m.expenses))
	for _, e := range m.expenses {
		items = append(items, *e)
	}
	return &domain.PaginatedExpenses{Items: items, Pagination: domain.Pagination{PerPage: limit}}, nil
}

func (m *mockLedger) GetExpense(_ context.Context, expenseID string, _ domain.ExpenseType) (*domain.Expense, error) {
	if m.err != nil {
		return nil, m.err
	}
	if e, ok := m.expenses[expenseID]; ok {
		return e, nil
	}
	return nil, &domain.ErrNotFound{Resource: "expense", ID: expenseID}
}

func (m *mockLedger) CreateExpense(_ context.Context, p *domain.ExpensePayload) (*domain.Expense, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Expense{
		ID:               "exp-new",
		Title:            p.Title,
		AccountID:        p.AccountID,
		ExpenseType:      p.ExpenseType,
		FirstPaymentDate: p.FirstPaymentDate,
	}, nil
}

func (m *mockLedger) UpdateExpense(_ context.Context, expenseID string, p *domain.ExpensePayload) (*domain.Expense, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Expense{ID: expenseID, Title: p.Title, ExpenseType: p.ExpenseType}, nil
}

func (m *mockLedger) DeleteExpense(_ context.Context, _ string, _ domain.ExpenseType) error {
	return m.err
}

func (m *mockLedger) UpdatePayment(_ context.Context, paymentID string, p *domain.UpdatePaymentPayload) (*domain.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updatedPayments = append(m.updatedPayments, paymentID)
	return &domain.Payment{PaymentID: paymentID, Amount: p.Amount, Status: p.Status, PaymentDate: p.PaymentDate}, nil
}

func (m *mockLedger) CreateSubscriptionPayment(_ context.Context, _ string, p *domain.CreatePaymentPayload) (*domain.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Payment{PaymentID: "pay-persisted", ExpenseID: p.ExpenseID, Amount: p.Amount, Status: domain.PaymentUnconfirmed, PaymentDate: p.PaymentDate}, nil
}

func (m *mockLedger) DeleteSubscriptionPayment(_ context.Context, _, _ string) error { return m.err }

func (m *mockLedger) GetProjection(_ context.Context, _ int) ([]domain.Period, error) {
	m.projectionCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Period, len(m.projection))
	for i := range m.projection {
		out[i] = m.projection[i]
		out[i].Payments = append([]domain.PeriodPayment(nil), m.projection[i].Payments...)
	}
	return out, nil
}

func (m *mockLedger) GetPeriod(_ context.Context, month, year int) (*domain.Period, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.periods[periodKey(month, year)]; ok {
		return p, nil
	}
	return nil, &domain.ErrNotFound{Resource: "period", ID: periodKey(month, year)}
}

func (m *mockLedger) ListCategories(_ context.Context) ([]domain.ExpenseCategory, error) {
	return m.categories, m.err
}

func (m *mockLedger) CreateCategory(_ context.Context, p *domain.ExpenseCategoryPayload) (*domain.ExpenseCategory, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ExpenseCategory{ID: "cat-new", Name: p.Name}, nil
}

func (m *mockLedger) UpdateCategory(_ context.Context, categoryID string, p *domain.ExpenseCategoryPayload) (*domain.ExpenseCategory, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ExpenseCategory{ID: categoryID, Name: p.Name}, nil
}

func (m *mockLedger) DeleteCategory(_ context.Context, _ string) error { return m.err }

func (m *mockLedger) Login(_ context.Context, _ *domain.LoginPayload) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockLedger) Register(_ context.Context, _ *domain.RegisterPayload) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockLedger) Refresh(_ context.Context, _ string) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockLedger) Me(_ context.Context) (*domain.User, error) { return m.user, m.err }

func (m *mockLedger) UpdateUser(_ context.Context, _ string, _ *domain.UpdateUserPayload) (*domain.User, error) {
	return m.user, m.err
}

func newTestService(ledger *mockLedger) *service.FinanceService {
	return service.NewFinanceService(
		ledger, ledger, ledger, ledger, ledger, ledger,
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		24, 24,
	)
}

// --- Cards ---

func TestListCreditCards_InheritsMainCardFields(t *testing.T) {
	mainID := "card-main"
	ledger := &mockLedger{cards: []domain.CreditCard{
		{ID: mainID, Alias: "Main", Limit: 5000, FinancingLimit: 2000, IsMainCreditCard: true, NextClosingDate: "2026-09-15", NextExpiringDate: "2026-09-25"},
		{ID: "card-extra", Alias: "Extra", Limit: 1, MainCreditCardID: &mainID, NextClosingDate: "2020-01-01"},
	}}
	svc := newTestService(ledger)

	page, err := svc.ListCreditCards(context.Background(), "user-1", 20, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	extra := page.Items[1]
	if extra.Limit != 5000 || extra.FinancingLimit != 2000 {
		t.Errorf("additional card should inherit limits, got limit=%v financing=%v", extra.Limit, extra.FinancingLimit)
	}
	if extra.NextClosingDate != "2026-09-15" || extra.NextExpiringDate != "2026-09-25" {
		t.Errorf("additional card should inherit cycle dates, got %s / %s", extra.NextClosingDate, extra.NextExpiringDate)
	}
	if extra.Alias != "Extra" {
		t.Errorf("alias must stay the card's own, got %s", extra.Alias)
	}
}

func TestListCreditCards_CachesPage(t *testing.T) {
	ledger := &mockLedger{cards: []domain.CreditCard{{ID: "c1", IsMainCreditCard: true}}}
	svc := newTestService(ledger)

	for i := 0; i < 3; i++ {
		if _, err := svc.ListCreditCards(context.Background(), "user-1", 20, 0); err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
	}
	if ledger.listCardsCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", ledger.listCardsCalls)
	}
}

func TestCreateCreditCard_Validation(t *testing.T) {
	svc := newTestService(&mockLedger{})

	_, err := svc.CreateCreditCard(context.Background(), "user-1", &domain.CreditCardPayload{Limit: 100})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) || verr.Field != "alias" {
		t.Fatalf("expected alias validation error, got %v", err)
	}

	_, err = svc.CreateCreditCard(context.Background(), "user-1", &domain.CreditCardPayload{Alias: "Main"})
	if !errors.As(err, &verr) || verr.Field != "limit" {
		t.Fatalf("expected limit validation error, got %v", err)
	}
}

func TestUpdateCreditCard_InvalidatesCardCache(t *testing.T) {
	ledger := &mockLedger{cards: []domain.CreditCard{{ID: "c1", Alias: "Main", IsMainCreditCard: true}}}
	svc := newTestService(ledger)

	if _, err := svc.ListCreditCards(context.Background(), "user-1", 20, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateCreditCard(context.Background(), "user-1", "c1", &domain.CreditCardPayload{Alias: "Renamed", Limit: 100}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ListCreditCards(context.Background(), "user-1", 20, 0); err != nil {
		t.Fatal(err)
	}
	if ledger.listCardsCalls != 2 {
		t.Errorf("expected refetch after update, got %d upstream calls", ledger.listCardsCalls)
	}
}

// --- Expenses ---

func TestCreateExpense_DefaultsFirstPaymentDate(t *testing.T) {
	ledger := &mockLedger{cards: []domain.CreditCard{{
		ID: "card-1", Alias: "Main", IsMainCreditCard: true,
		NextClosingDate: "2024-03-15", NextExpiringDate: "2024-03-25",
	}}}
	svc := newTestService(ledger)

	expense, err := svc.CreateExpense(context.Background(), "user-1", &domain.ExpensePayload{
		Title:        "Headphones",
		AccountID:    "card-1",
		ExpenseType:  domain.ExpensePurchase,
		Amount:       300,
		Installments: 3,
		AcquiredAt:   "2024-03-10",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if expense.FirstPaymentDate != "2024-03-25" {
		t.Errorf("expected default first payment date 2024-03-25, got %s", expense.FirstPaymentDate)
	}
}

func TestCreateExpense_KeepsExplicitFirstPaymentDate(t *testing.T) {
	ledger := &mockLedger{}
	svc := newTestService(ledger)

	expense, err := svc.CreateExpense(context.Background(), "user-1", &domain.ExpensePayload{
		Title:            "Rent",
		AccountID:        "card-1",
		ExpenseType:      domain.ExpenseSubscription,
		Amount:           1200,
		AcquiredAt:       "2024-03-10",
		FirstPaymentDate: "2024-05-01",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if expense.FirstPaymentDate != "2024-05-01" {
		t.Errorf("explicit first payment date must win, got %s", expense.FirstPaymentDate)
	}
	if ledger.listCardsCalls != 0 {
		t.Errorf("no card lookup expected, got %d calls", ledger.listCardsCalls)
	}
}

func TestUpdateExpense_TypeIsImmutable(t *testing.T) {
	ledger := &mockLedger{expenses: map[string]*domain.Expense{
		"exp-1": {ID: "exp-1", Title: "Gym", ExpenseType: domain.ExpenseSubscription},
	}}
	svc := newTestService(ledger)

	_, err := svc.UpdateExpense(context.Background(), "user-1", "exp-1", &domain.ExpensePayload{
		Title:        "Gym",
		AccountID:    "card-1",
		ExpenseType:  domain.ExpensePurchase,
		Amount:       80,
		Installments: 1,
	})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) || verr.Field != "expense_type" {
		t.Fatalf("expected expense_type validation error, got %v", err)
	}
}

// --- Categories ---

func TestUpdateCategory_IsIncomeImmutable(t *testing.T) {
	ledger := &mockLedger{categories: []domain.ExpenseCategory{
		{ID: "cat-1", Name: "Food", IsIncome: false},
	}}
	svc := newTestService(ledger)

	flipped := true
	_, err := svc.UpdateCategory(context.Background(), "user-1", "cat-1", &domain.ExpenseCategoryPayload{
		Name: "Groceries", IsIncome: &flipped,
	})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) || verr.Field != "is_income" {
		t.Fatalf("expected is_income validation error, got %v", err)
	}

	same := false
	if _, err := svc.UpdateCategory(context.Background(), "user-1", "cat-1", &domain.ExpenseCategoryPayload{
		Name: "Groceries", IsIncome: &same,
	}); err != nil {
		t.Fatalf("unchanged flag must pass, got %v", err)
	}
}

func TestUpdateCategory_InvalidatesProjectionCache(t *testing.T) {
	ledger := &mockLedger{projection: testProjection()}
	svc := newTestService(ledger)

	if _, err := svc.GetProjection(context.Background(), "user-1", 24); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateCategory(context.Background(), "user-1", "cat-1", &domain.ExpenseCategoryPayload{
		Name: "Groceries",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetProjection(context.Background(), "user-1", 24); err != nil {
		t.Fatal(err)
	}
	if ledger.projectionCalls != 2 {
		t.Errorf("category rename must refetch the projection, got %d upstream calls", ledger.projectionCalls)
	}
}

// --- Payments & projection cache ---

func testProjection() []domain.Period {
	return []domain.Period{{
		ID: "p-2026-09", PeriodStr: "09/2026", Month: 9, Year: 2026,
		Payments: []domain.PeriodPayment{
			{PaymentID: "pay-1", Amount: 100, Status: domain.PaymentConfirmed, ExpenseID: "exp-1", ExpenseType: domain.ExpensePurchase, ExpenseInstallments: 3, NoInstallment: 2, AccountID: "card-1"},
			{PaymentID: "pay-sim", Amount: 50, Status: domain.PaymentSimulated, PaymentDate: "2026-09-05", ExpenseID: "sub-1", ExpenseType: domain.ExpenseSubscription, AccountID: "card-1"},
		},
		TotalAmount: 150, TotalPendingAmount: 150, TotalPayments: 2, PendingPaymentsCount: 2, IsOpen: true,
	}}
}

func TestUpdatePayment_RejectsSimulatedStatus(t *testing.T) {
	svc := newTestService(&mockLedger{})

	_, err := svc.UpdatePayment(context.Background(), "user-1", "pay-1", &domain.UpdatePaymentPayload{
		Amount: 100, Status: domain.PaymentSimulated, PaymentDate: "2026-09-01",
	})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

func TestUpdatePayment_PatchesCachedProjection(t *testing.T) {
	ledger := &mockLedger{projection: testProjection()}
	svc := newTestService(ledger)

	if _, err := svc.GetProjection(context.Background(), "user-1", 24); err != nil {
		t.Fatal(err)
	}

	_, err := svc.UpdatePayment(context.Background(), "user-1", "pay-1", &domain.UpdatePaymentPayload{
		Amount: 100, Status: domain.PaymentPaid, PaymentDate: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	periods, err := svc.GetProjection(context.Background(), "user-1", 24)
	if err != nil {
		t.Fatal(err)
	}
	if ledger.projectionCalls != 1 {
		t.Fatalf("expected patched cache to be served, got %d upstream calls", ledger.projectionCalls)
	}
	if got := periods[0].Payments[0].Status; got != domain.PaymentPaid {
		t.Errorf("expected cached payment to be paid, got %s", got)
	}
	if periods[0].TotalPaidAmount != 100 {
		t.Errorf("expected recomputed paid total 100, got %v", periods[0].TotalPaidAmount)
	}
	if periods[0].CompletedPaymentsCount != 1 || periods[0].PendingPaymentsCount != 1 {
		t.Errorf("expected counts 1/1, got %d/%d", periods[0].CompletedPaymentsCount, periods[0].PendingPaymentsCount)
	}
}

func TestUpdatePayment_UpstreamFailureLeavesCacheUntouched(t *testing.T) {
	ledger := &mockLedger{projection: testProjection()}
	svc := newTestService(ledger)

	if _, err := svc.GetProjection(context.Background(), "user-1", 24); err != nil {
		t.Fatal(err)
	}

	ledger.err = errors.New("upstream down")
	_, err := svc.UpdatePayment(context.Background(), "user-1", "pay-1", &domain.UpdatePaymentPayload{
		Amount: 999, Status: domain.PaymentPaid, PaymentDate: "2026-09-01",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	ledger.err = nil
	periods, err := svc.GetProjection(context.Background(), "user-1", 24)
	if err != nil {
		t.Fatal(err)
	}
	if got := periods[0].Payments[0].Amount; got != 100 {
		t.Errorf("failed write must not change displayed amounts, got %v", got)
	}
	if periods[0].TotalPendingAmount != 150 {
		t.Errorf("failed write must not change totals, got %v", periods[0].TotalPendingAmount)
	}
}

func TestMaterializePayment_SwapsSimulatedInCache(t *testing.T) {
	ledger := &mockLedger{projection: testProjection()}
	svc := newTestService(ledger)

	if _, err := svc.GetProjection(context.Background(), "user-1", 24); err != nil {
		t.Fatal(err)
	}

	payment, err := svc.MaterializePayment(context.Background(), "user-1", "sub-1", &domain.CreatePaymentPayload{
		Amount: 50, PaymentDate: "2026-09-05",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if payment.PaymentID != "pay-persisted" {
		t.Fatalf("expected persisted payment id, got %s", payment.PaymentID)
	}

	periods, _ := svc.GetProjection(context.Background(), "user-1", 24)
	if ledger.projectionCalls != 1 {
		t.Fatalf("expected patched cache to be served, got %d upstream calls", ledger.projectionCalls)
	}
	var found bool
	for _, pay := range periods[0].Payments {
		if pay.PaymentID == "pay-persisted" {
			found = true
			if pay.Status != domain.PaymentUnconfirmed {
				t.Errorf("expected unconfirmed status, got %s", pay.Status)
			}
			if pay.Amount != 50 {
				t.Errorf("amount must keep projected value, got %v", pay.Amount)
			}
		}
		if pay.PaymentID == "pay-sim" {
			t.Error("simulated payment should have been replaced")
		}
	}
	if !found {
		t.Error("persisted payment not found in cached projection")
	}
	if periods[0].TotalAmount != 150 {
		t.Errorf("totals must be unchanged by materialization, got %v", periods[0].TotalAmount)
	}
}

func TestDeletePayment_RemovesFromCacheAndRecomputes(t *testing.T) {
	ledger := &mockLedger{projection: testProjection()}
	svc := newTestService(ledger)

	if _, err := svc.GetProjection(context.Background(), "user-1", 24); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeletePayment(context.Background(), "user-1", "sub-1", "pay-sim"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	periods, _ := svc.GetProjection(context.Background(), "user-1", 24)
	if len(periods[0].Payments) != 1 {
		t.Fatalf("expected 1 payment left, got %d", len(periods[0].Payments))
	}
	if periods[0].TotalAmount != 100 || periods[0].TotalPayments != 1 {
		t.Errorf("expected recomputed totals 100/1, got %v/%d", periods[0].TotalAmount, periods[0].TotalPayments)
	}
}

func TestGetProjection_DifferentHorizonRefetches(t *testing.T) {
	ledger := &mockLedger{projection: testProjection()}
	svc := newTestService(ledger)

	if _, err := svc.GetProjection(context.Background(), "user-1", 24); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetProjection(context.Background(), "user-1", 6); err != nil {
		t.Fatal(err)
	}
	if ledger.projectionCalls != 2 {
		t.Errorf("expected 2 upstream calls for 2 horizons, got %d", ledger.projectionCalls)
	}
}

func TestGetProjection_PrependsPrecedingOpenPeriods(t *testing.T) {
	// 8/2026 is still open, 7/2026 is settled; the open 6/2026 behind the
	// settled month stays out of the response.
	ledger := &mockLedger{
		projection: testProjection(),
		periods: map[string]*domain.Period{
			periodKey(8, 2026): {ID: "p-2026-08", Month: 8, Year: 2026, IsOpen: true},
			periodKey(7, 2026): {ID: "p-2026-07", Month: 7, Year: 2026, IsOpen: false},
			periodKey(6, 2026): {ID: "p-2026-06", Month: 6, Year: 2026, IsOpen: true},
		},
	}
	svc := newTestService(ledger)

	periods, err := svc.GetProjection(context.Background(), "user-1", 24)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("expected [open 8/2026, projection], got %d period(s)", len(periods))
	}
	if periods[0].Month != 8 || periods[0].Year != 2026 {
		t.Errorf("expected 8/2026 first, got %d/%d", periods[0].Month, periods[0].Year)
	}
	if periods[1].Month != 9 || periods[1].Year != 2026 {
		t.Errorf("expected projection after the prefix, got %d/%d", periods[1].Month, periods[1].Year)
	}

	cached, err := svc.GetProjection(context.Background(), "user-1", 24)
	if err != nil {
		t.Fatal(err)
	}
	if ledger.projectionCalls != 1 {
		t.Errorf("combined result must be cached, got %d upstream calls", ledger.projectionCalls)
	}
	if len(cached) != 2 {
		t.Errorf("cached entry must keep the prefix, got %d period(s)", len(cached))
	}
}

func TestGetProjection_ClosedFirstMonthSkipsWalk(t *testing.T) {
	closed := testProjection()
	closed[0].Payments = []domain.PeriodPayment{
		{PaymentID: "pay-1", Amount: 100, Status: domain.PaymentPaid},
	}
	closed[0].IsOpen = false

	ledger := &mockLedger{
		projection: closed,
		periods: map[string]*domain.Period{
			periodKey(8, 2026): {Month: 8, Year: 2026, IsOpen: true},
		},
	}
	svc := newTestService(ledger)

	periods, err := svc.GetProjection(context.Background(), "user-1", 24)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(periods) != 1 {
		t.Errorf("closed first month must not trigger the walk, got %d period(s)", len(periods))
	}
}

func TestUpdatePayment_EarlierSnapshotStaysIntact(t *testing.T) {
	ledger := &mockLedger{projection: testProjection()}
	svc := newTestService(ledger)

	snapshot, err := svc.GetProjection(context.Background(), "user-1", 24)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdatePayment(context.Background(), "user-1", "pay-1", &domain.UpdatePaymentPayload{
		Amount: 100, Status: domain.PaymentPaid, PaymentDate: "2026-09-01",
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := snapshot[0].Payments[0].Status; got != domain.PaymentConfirmed {
		t.Errorf("snapshot handed out before the write must not change, got %s", got)
	}
	if snapshot[0].TotalPendingAmount != 150 {
		t.Errorf("snapshot totals must not change, got %v", snapshot[0].TotalPendingAmount)
	}

	fresh, err := svc.GetProjection(context.Background(), "user-1", 24)
	if err != nil {
		t.Fatal(err)
	}
	if got := fresh[0].Payments[0].Status; got != domain.PaymentPaid {
		t.Errorf("fresh read must see the patch, got %s", got)
	}
}

func TestUpdatePayment_ConcurrentReadsStayConsistent(t *testing.T) {
	ledger := &mockLedger{projection: testProjection()}
	svc := newTestService(ledger)

	if _, err := svc.GetProjection(context.Background(), "user-1", 24); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			periods, err := svc.GetProjection(context.Background(), "user-1", 24)
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := json.Marshal(periods); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if _, err := svc.UpdatePayment(context.Background(), "user-1", "pay-1", &domain.UpdatePaymentPayload{
				Amount: float64(100 + i), Status: domain.PaymentConfirmed, PaymentDate: "2026-09-01",
			}); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()
}

// --- Open period walk ---

func TestFindOpenPeriod_WalksBackward(t *testing.T) {
	now := time.Now()
	month, year := int(now.Month()), now.Year()
	prevMonth, prevYear := month-1, year
	if prevMonth == 0 {
		prevMonth, prevYear = 12, year-1
	}

	// The current month has no period yet; the walk skips it.
	ledger := &mockLedger{periods: map[string]*domain.Period{
		periodKey(prevMonth, prevYear): {Month: prevMonth, Year: prevYear, IsOpen: true},
	}}
	svc := newTestService(ledger)

	period, err := svc.FindOpenPeriod(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if period == nil {
		t.Fatal("expected an open period")
	}
	if period.Month != prevMonth || period.Year != prevYear {
		t.Errorf("expected %d/%d, got %d/%d", prevMonth, prevYear, period.Month, period.Year)
	}
}

func TestFindOpenPeriod_StopsAtClosedPeriod(t *testing.T) {
	now := time.Now()
	month, year := int(now.Month()), now.Year()
	prevMonth, prevYear := month-1, year
	if prevMonth == 0 {
		prevMonth, prevYear = 12, year-1
	}

	// An open period hiding behind a closed one must not be surfaced.
	ledger := &mockLedger{periods: map[string]*domain.Period{
		periodKey(month, year):         {Month: month, Year: year, IsOpen: false},
		periodKey(prevMonth, prevYear): {Month: prevMonth, Year: prevYear, IsOpen: true},
	}}
	svc := newTestService(ledger)

	period, err := svc.FindOpenPeriod(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if period != nil {
		t.Errorf("walk must end at the closed current month, got %+v", period)
	}
}

func TestFindOpenPeriod_NoneWithinLookback(t *testing.T) {
	svc := newTestService(&mockLedger{periods: map[string]*domain.Period{}})

	period, err := svc.FindOpenPeriod(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if period != nil {
		t.Errorf("expected nil period, got %+v", period)
	}
}

// --- Dashboard ---

func TestGetDashboardSummary(t *testing.T) {
	now := time.Now()
	month, year := int(now.Month()), now.Year()
	limit := 2500.0

	ledger := &mockLedger{
		cards: []domain.CreditCard{{ID: "card-1", Alias: "Main", IsMainCreditCard: true}},
		periods: map[string]*domain.Period{
			periodKey(month, year): {
				Month: month, Year: year, IsOpen: true,
				Payments: []domain.PeriodPayment{
					{PaymentID: "pay-1", Amount: 120, Status: domain.PaymentConfirmed, AccountID: "card-1", AccountAlias: "Main"},
				},
			},
		},
		user: &domain.User{
			ID: "user-1",
			Profile: &domain.Profile{Preferences: &domain.Preferences{MonthlySpendingLimit: &limit}},
		},
	}
	svc := newTestService(ledger)

	summary, err := svc.GetDashboardSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(summary.Cards) != 1 {
		t.Errorf("expected 1 card, got %d", len(summary.Cards))
	}
	if summary.OpenPeriod == nil || summary.OpenPeriod.Month != month {
		t.Error("expected the current month as open period")
	}
	if len(summary.AccountSubtotals) != 1 || summary.AccountSubtotals[0].Total != 120 {
		t.Errorf("expected one subtotal of 120, got %+v", summary.AccountSubtotals)
	}
	if summary.MonthlySpendingLimit == nil || *summary.MonthlySpendingLimit != 2500 {
		t.Error("expected monthly spending limit 2500")
	}
}

func TestGetDashboardSummary_UpstreamError(t *testing.T) {
	svc := newTestService(&mockLedger{err: errors.New("connection refused")})

	_, err := svc.GetDashboardSummary(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
