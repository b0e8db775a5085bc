package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/projection"
)

// GetDashboardSummary assembles the landing page aggregate: cards with
// usage, the most recent open period with per-card subtotals, and the
// profile's spending limit reference. The three upstream reads run
// concurrently; any failure fails the whole summary.
func (s *FinanceService) GetDashboardSummary(ctx context.Context, userID string) (*domain.DashboardSummary, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.GetDashboardSummary")
	defer span.End()

	var (
		cards      []domain.CreditCard
		openPeriod *domain.Period
		user       *domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cards, err = s.listAllCards(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		openPeriod, err = s.FindOpenPeriod(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = s.identity.Me(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &domain.DashboardSummary{
		Cards:            cards,
		OpenPeriod:       openPeriod,
		AccountSubtotals: []domain.AccountSubtotal{},
	}
	if openPeriod != nil {
		summary.AccountSubtotals = projection.AccountSubtotals(*openPeriod, cards)
	}
	if user.Profile != nil && user.Profile.Preferences != nil {
		summary.MonthlySpendingLimit = user.Profile.Preferences.MonthlySpendingLimit
	}
	return summary, nil
}
