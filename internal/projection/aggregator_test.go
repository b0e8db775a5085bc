package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
)

func purchasePayment(id string, amount float64, status domain.PaymentStatus) domain.PeriodPayment {
	return domain.PeriodPayment{
		PaymentID:           id,
		Amount:              amount,
		Status:              status,
		PaymentDate:         "2024-05-10",
		NoInstallment:       1,
		ExpenseID:           "exp-" + id,
		ExpenseType:         domain.ExpensePurchase,
		ExpenseInstallments: 1,
		AccountID:           "card-main",
		AccountAlias:        "Visa",
	}
}

func testPeriod(payments ...domain.PeriodPayment) domain.Period {
	p := domain.Period{
		ID:        "2024-05",
		PeriodStr: "05/2024",
		Month:     5,
		Year:      2024,
		Payments:  payments,
	}
	RecomputeTotals(&p)
	return p
}

func TestRecomputeTotals(t *testing.T) {
	p := testPeriod(
		purchasePayment("p1", 100, domain.PaymentUnconfirmed),
		purchasePayment("p2", 200, domain.PaymentPaid),
		purchasePayment("p3", 50, domain.PaymentConfirmed),
		purchasePayment("p4", 25, domain.PaymentCanceled),
	)

	assert.Equal(t, 375.0, p.TotalAmount)
	assert.Equal(t, 250.0, p.TotalConfirmedAmount) // confirmed + paid
	assert.Equal(t, 200.0, p.TotalPaidAmount)
	assert.Equal(t, 150.0, p.TotalPendingAmount)
	assert.Equal(t, 4, p.TotalPayments)
	assert.Equal(t, 2, p.PendingPaymentsCount)
	assert.Equal(t, 1, p.CompletedPaymentsCount)
	assert.True(t, p.IsOpen)
}

func TestRecomputeTotals_Idempotent(t *testing.T) {
	p := testPeriod(
		purchasePayment("p1", 10.10, domain.PaymentConfirmed),
		purchasePayment("p2", 20.20, domain.PaymentPaid),
	)
	before := p
	RecomputeTotals(&p)
	assert.Equal(t, before.TotalAmount, p.TotalAmount)
	assert.Equal(t, before.TotalConfirmedAmount, p.TotalConfirmedAmount)
	assert.Equal(t, before.PendingPaymentsCount, p.PendingPaymentsCount)
	assert.Equal(t, before.CompletedPaymentsCount, p.CompletedPaymentsCount)
}

func TestRecomputeTotals_NoFloatDrift(t *testing.T) {
	// 0.1 repeated: naive float64 accumulation drifts, decimal must not.
	var payments []domain.PeriodPayment
	for i := 0; i < 1000; i++ {
		payments = append(payments, purchasePayment("p", 0.10, domain.PaymentConfirmed))
	}
	p := testPeriod(payments...)
	assert.Equal(t, 100.0, p.TotalAmount)
	assert.Equal(t, 100.0, p.TotalConfirmedAmount)
}

func TestIsOpen(t *testing.T) {
	assert.True(t, IsOpen([]domain.PeriodPayment{purchasePayment("p1", 1, domain.PaymentUnconfirmed)}))
	assert.True(t, IsOpen([]domain.PeriodPayment{purchasePayment("p1", 1, domain.PaymentConfirmed)}))
	assert.False(t, IsOpen([]domain.PeriodPayment{
		purchasePayment("p1", 1, domain.PaymentPaid),
		purchasePayment("p2", 1, domain.PaymentCanceled),
		purchasePayment("p3", 1, domain.PaymentSimulated),
	}))
	assert.False(t, IsOpen(nil))
}

func TestApplyPaymentUpdate(t *testing.T) {
	periods := []domain.Period{testPeriod(
		purchasePayment("p1", 100, domain.PaymentUnconfirmed),
		purchasePayment("p2", 200, domain.PaymentPaid),
	)}

	ok := ApplyPaymentUpdate(periods, "p1", domain.UpdatePaymentPayload{
		Amount:      150,
		Status:      domain.PaymentConfirmed,
		PaymentDate: "2024-05-12",
	})
	require.True(t, ok)

	p := periods[0]
	assert.Equal(t, 350.0, p.TotalAmount)
	assert.Equal(t, 350.0, p.TotalConfirmedAmount)
	assert.Equal(t, "2024-05-12", p.Payments[0].PaymentDate)

	// Round-trip: totals always equal the sum over the current list.
	sum := 0.0
	for _, pay := range p.Payments {
		sum += pay.Amount
	}
	assert.Equal(t, sum, p.TotalAmount)
}

func TestApplyPaymentUpdate_UnknownPayment(t *testing.T) {
	periods := []domain.Period{testPeriod(purchasePayment("p1", 100, domain.PaymentUnconfirmed))}
	before := periods[0].TotalAmount

	ok := ApplyPaymentUpdate(periods, "missing", domain.UpdatePaymentPayload{Amount: 1})
	assert.False(t, ok)
	assert.Equal(t, before, periods[0].TotalAmount)
}

func TestRemovePayment(t *testing.T) {
	periods := []domain.Period{testPeriod(
		purchasePayment("p1", 100, domain.PaymentUnconfirmed),
		purchasePayment("p2", 200, domain.PaymentPaid),
	)}

	require.True(t, RemovePayment(periods, "p2"))

	p := periods[0]
	assert.Equal(t, 100.0, p.TotalAmount)
	assert.Equal(t, 0.0, p.TotalConfirmedAmount)
	assert.Equal(t, 1, p.TotalPayments)
	assert.Equal(t, 0, p.CompletedPaymentsCount)
	assert.False(t, RemovePayment(periods, "p2"))
}

func TestMaterializePayment(t *testing.T) {
	sim := purchasePayment("sim-1", 500, domain.PaymentSimulated)
	sim.ExpenseType = domain.ExpenseSubscription
	periods := []domain.Period{testPeriod(sim)}
	totalBefore := periods[0].TotalAmount

	ok := MaterializePayment(periods, "sim-1", "pay-9", domain.PaymentUnconfirmed)
	require.True(t, ok)

	p := periods[0]
	assert.Equal(t, "pay-9", p.Payments[0].PaymentID)
	assert.Equal(t, domain.PaymentUnconfirmed, p.Payments[0].Status)
	// The simulated amount already reflected the projected value.
	assert.Equal(t, totalBefore, p.TotalAmount)
	assert.True(t, p.IsOpen)
}

func TestClonePeriods_IndependentPayments(t *testing.T) {
	original := []domain.Period{testPeriod(
		purchasePayment("p1", 100, domain.PaymentConfirmed),
		purchasePayment("p2", 50, domain.PaymentUnconfirmed),
	)}

	clone := ClonePeriods(original)
	ok := ApplyPaymentUpdate(clone, "p1", domain.UpdatePaymentPayload{
		Amount: 100, Status: domain.PaymentPaid, PaymentDate: "2024-05-12",
	})
	require.True(t, ok)

	assert.Equal(t, domain.PaymentConfirmed, original[0].Payments[0].Status)
	assert.Equal(t, 150.0, original[0].TotalPendingAmount)
	assert.Equal(t, domain.PaymentPaid, clone[0].Payments[0].Status)
	assert.Equal(t, 100.0, clone[0].TotalPaidAmount)
}

func TestClassify_Priority(t *testing.T) {
	single := purchasePayment("p", 1, domain.PaymentConfirmed)
	assert.Equal(t, domain.GroupSinglePayment, Classify(single))

	last := purchasePayment("p", 1, domain.PaymentConfirmed)
	last.ExpenseInstallments = 6
	last.NoInstallment = 6
	last.IsLastPayment = true
	assert.Equal(t, domain.GroupFinalInstallment, Classify(last))

	first := purchasePayment("p", 1, domain.PaymentConfirmed)
	first.ExpenseInstallments = 6
	first.NoInstallment = 1
	assert.Equal(t, domain.GroupFirstInstallment, Classify(first))

	middle := purchasePayment("p", 1, domain.PaymentConfirmed)
	middle.ExpenseInstallments = 6
	middle.NoInstallment = 3
	assert.Equal(t, domain.GroupRegular, Classify(middle))

	sub := purchasePayment("p", 1, domain.PaymentConfirmed)
	sub.ExpenseType = domain.ExpenseSubscription
	assert.Equal(t, domain.GroupSubscription, Classify(sub))
}

func TestClassify_SimulatedBeatsFirstInstallment(t *testing.T) {
	// A subscription's simulated installment #1 of N must classify as
	// simulated, not as a first installment.
	p := purchasePayment("p", 1, domain.PaymentSimulated)
	p.ExpenseType = domain.ExpenseSubscription
	p.ExpenseInstallments = 12
	p.NoInstallment = 1
	assert.Equal(t, domain.GroupSimulated, Classify(p))
}

func TestAnnotate(t *testing.T) {
	periods := []domain.Period{testPeriod(
		purchasePayment("p1", 100, domain.PaymentUnconfirmed),
	)}
	periods[0].IsOpen = false
	periods[0].Payments[0].DisplayGroup = ""

	Annotate(periods)

	assert.True(t, periods[0].IsOpen)
	assert.Equal(t, domain.GroupSinglePayment, periods[0].Payments[0].DisplayGroup)
}

func TestAccountSubtotals(t *testing.T) {
	mainID := "card-main"
	otherID := "card-other"
	additionalID := "card-extra"
	cards := []domain.CreditCard{
		{ID: mainID, Alias: "Visa", IsMainCreditCard: true},
		{ID: otherID, Alias: "Amex", IsMainCreditCard: true},
		{ID: additionalID, Alias: "Extra", MainCreditCardID: &mainID},
	}

	p1 := purchasePayment("p1", 300, domain.PaymentConfirmed)
	p2 := purchasePayment("p2", 100, domain.PaymentConfirmed)
	p2.AccountID = otherID
	p2.AccountAlias = "Amex"
	p3 := purchasePayment("p3", 999, domain.PaymentConfirmed)
	p3.AccountID = additionalID // excluded: not a main card
	p3.AccountAlias = "Extra"
	p4 := purchasePayment("p4", 50, domain.PaymentConfirmed)

	got := AccountSubtotals(testPeriod(p1, p2, p3, p4), cards)

	require.Len(t, got, 2)
	assert.Equal(t, domain.AccountSubtotal{AccountID: mainID, AccountAlias: "Visa", Total: 350}, got[0])
	assert.Equal(t, domain.AccountSubtotal{AccountID: otherID, AccountAlias: "Amex", Total: 100}, got[1])
}
