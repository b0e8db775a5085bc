package projection

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
)

// IsOpen reports whether a payment list leaves its period open: true iff
// any payment is still confirmed or unconfirmed.
func IsOpen(payments []domain.PeriodPayment) bool {
	for _, p := range payments {
		if p.Status == domain.PaymentConfirmed || p.Status == domain.PaymentUnconfirmed {
			return true
		}
	}
	return false
}

// Classify returns the display group of a payment. Rules are checked in
// priority order; only the first match applies. The simulated check runs
// before the first-installment check, so a subscription's simulated
// installment #1 still classifies as simulated.
func Classify(p domain.PeriodPayment) domain.DisplayGroup {
	isSubscription := p.ExpenseType == domain.ExpenseSubscription

	switch {
	case !isSubscription && p.ExpenseInstallments == 1:
		return domain.GroupSinglePayment
	case !isSubscription && p.IsLastPayment && p.ExpenseInstallments > 1:
		return domain.GroupFinalInstallment
	case isSubscription && p.Status == domain.PaymentSimulated:
		return domain.GroupSimulated
	case isSubscription:
		return domain.GroupSubscription
	case p.NoInstallment == 1 && p.ExpenseInstallments > 1:
		return domain.GroupFirstInstallment
	default:
		return domain.GroupRegular
	}
}

// Annotate fills the derived fields of every period in place: IsOpen and
// each payment's DisplayGroup. Idempotent.
func Annotate(periods []domain.Period) {
	for i := range periods {
		p := &periods[i]
		p.IsOpen = IsOpen(p.Payments)
		for j := range p.Payments {
			p.Payments[j].DisplayGroup = Classify(p.Payments[j])
		}
	}
}

// RecomputeTotals rebuilds all of a period's aggregate fields from its
// current payment list. Amounts accumulate as decimals so repeated local
// mutations never introduce floating-point drift.
//
// Bucketing: "completed" means paid; "pending" means unconfirmed, confirmed
// or simulated; canceled payments count toward the total amount and payment
// count only.
func RecomputeTotals(p *domain.Period) {
	total := decimal.Zero
	confirmed := decimal.Zero
	paid := decimal.Zero
	pending := decimal.Zero
	pendingCount := 0
	completedCount := 0

	for _, pay := range p.Payments {
		amount := decimal.NewFromFloat(pay.Amount)
		total = total.Add(amount)

		switch pay.Status {
		case domain.PaymentConfirmed:
			confirmed = confirmed.Add(amount)
			pending = pending.Add(amount)
			pendingCount++
		case domain.PaymentPaid:
			confirmed = confirmed.Add(amount)
			paid = paid.Add(amount)
			completedCount++
		case domain.PaymentUnconfirmed, domain.PaymentSimulated:
			pending = pending.Add(amount)
			pendingCount++
		}
	}

	p.TotalAmount = total.InexactFloat64()
	p.TotalConfirmedAmount = confirmed.InexactFloat64()
	p.TotalPaidAmount = paid.InexactFloat64()
	p.TotalPendingAmount = pending.InexactFloat64()
	p.TotalPayments = len(p.Payments)
	p.PendingPaymentsCount = pendingCount
	p.CompletedPaymentsCount = completedCount
	p.IsOpen = IsOpen(p.Payments)
}

// ApplyPaymentUpdate replaces a payment's amount, status and date inside its
// owning period and recomputes that period's totals. Returns false if the
// payment is not present in any period; periods are then left untouched.
func ApplyPaymentUpdate(periods []domain.Period, paymentID string, upd domain.UpdatePaymentPayload) bool {
	for i := range periods {
		for j := range periods[i].Payments {
			pay := &periods[i].Payments[j]
			if pay.PaymentID != paymentID {
				continue
			}
			pay.Amount = upd.Amount
			pay.Status = upd.Status
			pay.PaymentDate = upd.PaymentDate
			pay.DisplayGroup = Classify(*pay)
			RecomputeTotals(&periods[i])
			return true
		}
	}
	return false
}

// MaterializePayment swaps a simulated payment's identity and status for the
// persisted ones, in place. The amount already reflected the projected
// value, so totals and counts are deliberately not recomputed.
func MaterializePayment(periods []domain.Period, simulatedID, persistedID string, status domain.PaymentStatus) bool {
	for i := range periods {
		for j := range periods[i].Payments {
			pay := &periods[i].Payments[j]
			if pay.PaymentID != simulatedID {
				continue
			}
			pay.PaymentID = persistedID
			pay.Status = status
			pay.DisplayGroup = Classify(*pay)
			periods[i].IsOpen = IsOpen(periods[i].Payments)
			return true
		}
	}
	return false
}

// ClonePeriods deep-copies a period list, including each payment slice.
// Local mutations of a published projection run on a clone; readers of
// the original keep a consistent snapshot.
func ClonePeriods(periods []domain.Period) []domain.Period {
	out := make([]domain.Period, len(periods))
	for i := range periods {
		out[i] = periods[i]
		out[i].Payments = append([]domain.PeriodPayment(nil), periods[i].Payments...)
	}
	return out
}

// RemovePayment deletes a payment from its owning period and recomputes the
// period's totals and counts. Returns false if no period holds the payment.
func RemovePayment(periods []domain.Period, paymentID string) bool {
	for i := range periods {
		payments := periods[i].Payments
		for j := range payments {
			if payments[j].PaymentID != paymentID {
				continue
			}
			periods[i].Payments = append(payments[:j], payments[j+1:]...)
			RecomputeTotals(&periods[i])
			return true
		}
	}
	return false
}

// AccountSubtotals sums a period's payment amounts per owning account,
// restricted to main credit cards, sorted descending by total. Additional
// cards are excluded: their spending reaches this view through the main
// card account they charge to, and listing them separately would fragment a
// shared limit.
func AccountSubtotals(p domain.Period, cards []domain.CreditCard) []domain.AccountSubtotal {
	mainCards := make(map[string]bool, len(cards))
	for _, c := range cards {
		if c.IsMainCreditCard {
			mainCards[c.ID] = true
		}
	}

	totals := make(map[string]decimal.Decimal)
	aliases := make(map[string]string)
	for _, pay := range p.Payments {
		if !mainCards[pay.AccountID] {
			continue
		}
		totals[pay.AccountID] = totals[pay.AccountID].Add(decimal.NewFromFloat(pay.Amount))
		aliases[pay.AccountID] = pay.AccountAlias
	}

	out := make([]domain.AccountSubtotal, 0, len(totals))
	for id, total := range totals {
		out = append(out, domain.AccountSubtotal{
			AccountID:    id,
			AccountAlias: aliases[id],
			Total:        total.InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].AccountAlias < out[j].AccountAlias
	})
	return out
}
