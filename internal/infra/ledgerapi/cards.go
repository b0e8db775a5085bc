package ledgerapi

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
)

// --- Credit cards (implements port.CardStore) ---

// ListCreditCards fetches a page of the user's credit cards.
func (c *Client) ListCreditCards(ctx context.Context, limit, offset int) (*domain.PaginatedCreditCards, error) {
	ctx, span := tracer.Start(ctx, "Ledger.ListCreditCards")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit), attribute.Int("offset", offset))

	body, err := c.get(ctx, fmt.Sprintf("credit-cards?limit=%d&offset=%d", limit, offset))
	if err != nil {
		return nil, c.externalErr("cards", err)
	}
	if body == nil {
		return &domain.PaginatedCreditCards{Items: []domain.CreditCard{}}, nil
	}

	var page domain.PaginatedCreditCards
	if err := decode(body, &page); err != nil {
		return nil, c.externalErr("cards", err)
	}
	for i := range page.Items {
		normalizeCard(&page.Items[i])
	}
	return &page, nil
}

// CreateCreditCard creates a card and returns the stored representation.
func (c *Client) CreateCreditCard(ctx context.Context, payload *domain.CreditCardPayload) (*domain.CreditCard, error) {
	ctx, span := tracer.Start(ctx, "Ledger.CreateCreditCard")
	defer span.End()

	body, err := c.write(ctx, http.MethodPost, "credit-cards", payload)
	if err != nil {
		return nil, c.externalErr("cards", err)
	}

	var card domain.CreditCard
	if err := decode(body, &card); err != nil {
		return nil, c.externalErr("cards", err)
	}
	normalizeCard(&card)
	return &card, nil
}

// UpdateCreditCard updates a card in place.
func (c *Client) UpdateCreditCard(ctx context.Context, cardID string, payload *domain.CreditCardPayload) (*domain.CreditCard, error) {
	ctx, span := tracer.Start(ctx, "Ledger.UpdateCreditCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	body, err := c.write(ctx, http.MethodPut, "credit-cards/"+cardID, payload)
	if err != nil {
		return nil, c.externalErr("cards", err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "credit card", ID: cardID}
	}

	var card domain.CreditCard
	if err := decode(body, &card); err != nil {
		return nil, c.externalErr("cards", err)
	}
	normalizeCard(&card)
	return &card, nil
}

// DeleteCreditCard removes a card. The ledger API decides whether additional
// cards referencing it are cascaded; the BFA makes no assumption.
func (c *Client) DeleteCreditCard(ctx context.Context, cardID string) error {
	ctx, span := tracer.Start(ctx, "Ledger.DeleteCreditCard")
	defer span.End()
	span.SetAttributes(attribute.String("card.id", cardID))

	if _, err := c.write(ctx, http.MethodDelete, "credit-cards/"+cardID, nil); err != nil {
		return c.externalErr("cards", err)
	}
	return nil
}

// normalizeCard fills a card's derived field at the API boundary.
func normalizeCard(card *domain.CreditCard) {
	card.IsMainCreditCard = card.MainCreditCardID == nil
}
