package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
)

// ============================================================
// Credit Cards
// ============================================================

// listAllLimit is the page size used when the whole card set is needed
// internally (field inheritance, subtotals, first payment date).
const listAllLimit = 100

// ListCreditCards returns a page of the user's cards with inherited fields
// and the is_main_credit_card flag filled in.
func (s *FinanceService) ListCreditCards(ctx context.Context, userID string, limit, offset int) (*domain.PaginatedCreditCards, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.ListCreditCards")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	key := cardsKey(userID, limit, offset)
	if cached, ok := s.cache.Get(key); ok {
		if page, ok := cached.(*domain.PaginatedCreditCards); ok {
			s.metrics.IncrCacheHit("cards")
			return page, nil
		}
	}
	s.metrics.IncrCacheMiss("cards")

	page, err := s.cards.ListCreditCards(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	inheritCardFields(page.Items)
	s.cache.Set(key, page)
	return page, nil
}

// CreateCreditCard creates a card. An additional card (main_credit_card_id
// set) carries its own alias but shares the main card's limits and cycle
// dates, so those payload fields are ignored upstream.
func (s *FinanceService) CreateCreditCard(ctx context.Context, userID string, payload *domain.CreditCardPayload) (*domain.CreditCard, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.CreateCreditCard")
	defer span.End()

	if payload.Alias == "" {
		return nil, &domain.ErrValidation{Field: "alias", Message: "required"}
	}
	if payload.MainCreditCardID == nil && payload.Limit <= 0 {
		return nil, &domain.ErrValidation{Field: "limit", Message: "must be positive"}
	}

	card, err := s.cards.CreateCreditCard(ctx, payload)
	if err != nil {
		s.logger.Error("failed to create credit card", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.invalidateCards(userID)
	s.logger.Info("credit card created",
		zap.String("user_id", userID),
		zap.String("card_id", card.ID),
		zap.Bool("is_main", card.IsMainCreditCard),
	)
	return card, nil
}

// UpdateCreditCard updates a card and invalidates the user's card and
// period caches. Cycle date changes shift future first payment dates, so
// stale projections must not survive the write.
func (s *FinanceService) UpdateCreditCard(ctx context.Context, userID, cardID string, payload *domain.CreditCardPayload) (*domain.CreditCard, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.UpdateCreditCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	if payload.Alias == "" {
		return nil, &domain.ErrValidation{Field: "alias", Message: "required"}
	}

	card, err := s.cards.UpdateCreditCard(ctx, cardID, payload)
	if err != nil {
		return nil, err
	}

	s.invalidateCards(userID)
	s.cache.DeletePrefix(projectionKey(userID))
	return card, nil
}

// DeleteCreditCard removes a card and invalidates the user's caches.
func (s *FinanceService) DeleteCreditCard(ctx context.Context, userID, cardID string) error {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeleteCreditCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	if err := s.cards.DeleteCreditCard(ctx, cardID); err != nil {
		return err
	}

	s.invalidateCards(userID)
	s.cache.DeletePrefix(projectionKey(userID))
	s.logger.Info("credit card deleted", zap.String("user_id", userID), zap.String("card_id", cardID))
	return nil
}

// listAllCards fetches the user's full card set for internal lookups.
func (s *FinanceService) listAllCards(ctx context.Context, userID string) ([]domain.CreditCard, error) {
	page, err := s.ListCreditCards(ctx, userID, listAllLimit, 0)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// findCard returns the user's card with the given id, or ErrNotFound.
func (s *FinanceService) findCard(ctx context.Context, userID, cardID string) (*domain.CreditCard, error) {
	cards, err := s.listAllCards(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		if cards[i].ID == cardID {
			return &cards[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "credit-card", ID: cardID}
}

func (s *FinanceService) invalidateCards(userID string) {
	s.cache.DeletePrefix(cardsPrefix(userID))
}

// inheritCardFields copies limits and cycle dates from each main card onto
// its additional cards. The ledger stores these denormalized and may serve
// stale values after a main card edit; recomputing on read keeps every
// response consistent with the main card actually served. Additional cards
// whose main card is outside the slice are left as served.
func inheritCardFields(cards []domain.CreditCard) {
	mains := make(map[string]*domain.CreditCard, len(cards))
	for i := range cards {
		if cards[i].MainCreditCardID == nil {
			mains[cards[i].ID] = &cards[i]
		}
	}
	for i := range cards {
		ref := cards[i].MainCreditCardID
		if ref == nil {
			continue
		}
		main, ok := mains[*ref]
		if !ok {
			continue
		}
		cards[i].Limit = main.Limit
		cards[i].FinancingLimit = main.FinancingLimit
		cards[i].NextClosingDate = main.NextClosingDate
		cards[i].NextExpiringDate = main.NextExpiringDate
	}
}
