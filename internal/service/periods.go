package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/projection"
)

// ============================================================
// Periods & payment mutations
// ============================================================

// GetProjection returns the user's month-by-month payment projection,
// prefixed with the still-open periods that precede it. One cached entry
// per user; a request for a different horizon than the cached one
// refetches and overwrites it. Cached period slices are never mutated
// after publication, so returning them directly is safe for concurrent
// readers.
func (s *FinanceService) GetProjection(ctx context.Context, userID string, monthsAhead int) ([]domain.Period, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.GetProjection")
	defer span.End()
	span.SetAttributes(attribute.Int("projection.months_ahead", monthsAhead))

	if monthsAhead <= 0 {
		monthsAhead = s.defaultMonthsAhead
	}

	key := projectionKey(userID)
	if cached, ok := s.cache.Get(key); ok {
		if proj, ok := cached.(*cachedProjection); ok && proj.MonthsAhead == monthsAhead {
			s.metrics.IncrCacheHit("periods")
			return proj.Periods, nil
		}
	}
	s.metrics.IncrCacheMiss("periods")

	periods, err := s.periods.GetProjection(ctx, monthsAhead)
	if err != nil {
		return nil, err
	}
	periods = s.prependOpenPeriods(ctx, periods)

	s.cache.Set(key, &cachedProjection{MonthsAhead: monthsAhead, Periods: periods})
	return periods, nil
}

// prependOpenPeriods walks backward from the month before the first
// projected period while periods are open, putting them in chronological
// order in front of the projection. The walk only starts when the first
// projected month is itself open, stops at the first closed or missing
// month, and is bounded by the lookback limit. Best effort: an upstream
// failure mid-walk ends it and the projection is served with whatever
// prefix was gathered.
func (s *FinanceService) prependOpenPeriods(ctx context.Context, periods []domain.Period) []domain.Period {
	if len(periods) == 0 || !periods[0].IsOpen {
		return periods
	}

	var preceding []domain.Period
	month, year := projection.PreviousMonth(periods[0].Month, periods[0].Year)
	for i := 0; i < s.maxLookback; i++ {
		period, err := s.periods.GetPeriod(ctx, month, year)
		if err != nil || !period.IsOpen {
			break
		}
		preceding = append(preceding, *period)
		month, year = projection.PreviousMonth(month, year)
	}
	if len(preceding) == 0 {
		return periods
	}

	combined := make([]domain.Period, 0, len(preceding)+len(periods))
	for i := len(preceding) - 1; i >= 0; i-- {
		combined = append(combined, preceding[i])
	}
	return append(combined, periods...)
}

// GetPeriod returns a single month's period.
func (s *FinanceService) GetPeriod(ctx context.Context, month, year int) (*domain.Period, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.GetPeriod")
	defer span.End()
	span.SetAttributes(attribute.Int("period.month", month), attribute.Int("period.year", year))

	if month < 1 || month > 12 {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be 1-12"}
	}
	if year < 1970 {
		return nil, &domain.ErrValidation{Field: "year", Message: "invalid"}
	}
	return s.periods.GetPeriod(ctx, month, year)
}

// FindOpenPeriod walks backward from the current month until it finds an
// open period. Months with no period at all are skipped; the first closed
// period ends the walk, since everything before it is settled too. The
// walk is bounded; a user whose last activity is older than the bound
// gets nil.
func (s *FinanceService) FindOpenPeriod(ctx context.Context, userID string) (*domain.Period, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.FindOpenPeriod")
	defer span.End()

	now := time.Now()
	month, year := int(now.Month()), now.Year()

	for i := 0; i < s.maxLookback; i++ {
		period, err := s.periods.GetPeriod(ctx, month, year)
		if err != nil {
			if _, ok := err.(*domain.ErrNotFound); !ok {
				return nil, err
			}
		} else if period.IsOpen {
			return period, nil
		} else {
			return nil, nil
		}
		month, year = projection.PreviousMonth(month, year)
	}
	return nil, nil
}

// UpdatePayment changes a payment's status, amount or date. The upstream
// write happens first; only on success is the cached projection patched, so
// a failed write never changes displayed totals. Concurrent edits of the
// same payment resolve last-write-wins.
func (s *FinanceService) UpdatePayment(ctx context.Context, userID, paymentID string, payload *domain.UpdatePaymentPayload) (*domain.Payment, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.UpdatePayment")
	defer span.End()
	span.SetAttributes(attribute.String("payment.id", paymentID))

	if !payload.Status.Writable() {
		return nil, &domain.ErrValidation{Field: "status", Message: "not a writable payment status"}
	}
	if payload.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	payment, err := s.payments.UpdatePayment(ctx, paymentID, payload)
	if err != nil {
		return nil, err
	}

	s.patchProjection(userID, func(periods []domain.Period) bool {
		return projection.ApplyPaymentUpdate(periods, paymentID, *payload)
	})
	s.metrics.IncrPaymentMutation("update")
	s.logger.Info("payment updated",
		zap.String("user_id", userID),
		zap.String("payment_id", paymentID),
		zap.String("status", string(payload.Status)),
	)
	return payment, nil
}

// MaterializePayment turns a simulated subscription installment into a
// persisted payment. The cached projection keeps the projected amount and
// only swaps identity and status.
func (s *FinanceService) MaterializePayment(ctx context.Context, userID, subscriptionID string, payload *domain.CreatePaymentPayload) (*domain.Payment, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.MaterializePayment")
	defer span.End()
	span.SetAttributes(attribute.String("subscription.id", subscriptionID))

	if payload.ExpenseID == "" {
		payload.ExpenseID = subscriptionID
	}
	if payload.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if payload.PaymentDate == "" {
		return nil, &domain.ErrValidation{Field: "payment_date", Message: "required"}
	}

	payment, err := s.payments.CreateSubscriptionPayment(ctx, subscriptionID, payload)
	if err != nil {
		return nil, err
	}

	s.patchProjection(userID, func(periods []domain.Period) bool {
		simulatedID, ok := findSimulatedPayment(periods, subscriptionID, payload.PaymentDate)
		if !ok {
			return false
		}
		return projection.MaterializePayment(periods, simulatedID, payment.PaymentID, payment.Status)
	})
	s.metrics.IncrPaymentMutation("materialize")
	s.logger.Info("subscription payment materialized",
		zap.String("user_id", userID),
		zap.String("subscription_id", subscriptionID),
		zap.String("payment_id", payment.PaymentID),
	)
	return payment, nil
}

// DeletePayment removes a persisted subscription payment. The ledger serves
// a simulated placeholder for the slot again on the next full fetch; the
// cached projection just drops the payment and recomputes totals.
func (s *FinanceService) DeletePayment(ctx context.Context, userID, subscriptionID, paymentID string) error {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeletePayment")
	defer span.End()
	span.SetAttributes(attribute.String("payment.id", paymentID))

	if err := s.payments.DeleteSubscriptionPayment(ctx, subscriptionID, paymentID); err != nil {
		return err
	}

	s.patchProjection(userID, func(periods []domain.Period) bool {
		return projection.RemovePayment(periods, paymentID)
	})
	s.metrics.IncrPaymentMutation("delete")
	s.logger.Info("subscription payment deleted",
		zap.String("user_id", userID),
		zap.String("subscription_id", subscriptionID),
		zap.String("payment_id", paymentID),
	)
	return nil
}

// patchProjection republishes the user's cached projection with a local
// mutation applied. Published period slices are treated as immutable: the
// patch runs on a deep copy which is then swapped into the cache, so a
// concurrent reader keeps serving its consistent snapshot. The mutex
// serializes patches so none is lost to a copy race. If nothing is cached
// the patch is a no-op; if the patch cannot locate its target the whole
// entry is dropped rather than kept half-stale.
func (s *FinanceService) patchProjection(userID string, patch func([]domain.Period) bool) {
	s.projMu.Lock()
	defer s.projMu.Unlock()

	key := projectionKey(userID)
	cached, ok := s.cache.Get(key)
	if !ok {
		return
	}
	proj, ok := cached.(*cachedProjection)
	if !ok {
		s.cache.Delete(key)
		return
	}

	periods := projection.ClonePeriods(proj.Periods)
	if !patch(periods) {
		s.cache.Delete(key)
		return
	}
	s.cache.Set(key, &cachedProjection{MonthsAhead: proj.MonthsAhead, Periods: periods})
}

// findSimulatedPayment locates the simulated installment of a subscription
// in the month of the given payment date.
func findSimulatedPayment(periods []domain.Period, expenseID, paymentDate string) (string, bool) {
	day, err := projection.ParseDay(paymentDate)
	if err != nil {
		return "", false
	}
	for i := range periods {
		if periods[i].Month != int(day.Month()) || periods[i].Year != day.Year() {
			continue
		}
		for _, pay := range periods[i].Payments {
			if pay.ExpenseID == expenseID && pay.Status == domain.PaymentSimulated {
				return pay.PaymentID, true
			}
		}
	}
	return "", false
}
