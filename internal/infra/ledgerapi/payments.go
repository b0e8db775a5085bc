package ledgerapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
)

// --- Payments (implements port.PaymentStore) ---

// UpdatePayment changes the status and/or amount of a single payment.
func (c *Client) UpdatePayment(ctx context.Context, paymentID string, payload *domain.UpdatePaymentPayload) (*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "Ledger.UpdatePayment")
	defer span.End()
	span.SetAttributes(attribute.String("payment.id", paymentID))

	body, err := c.write(ctx, http.MethodPut, "expenses/payments/"+paymentID, payload)
	if err != nil {
		return nil, c.externalErr("payments", err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "payment", ID: paymentID}
	}

	var payment domain.Payment
	if err := decode(body, &payment); err != nil {
		return nil, c.externalErr("payments", err)
	}
	return &payment, nil
}

// CreateSubscriptionPayment materializes a concrete payment for a
// subscription in a given month. The ledger replaces the simulated
// placeholder with the returned payment.
func (c *Client) CreateSubscriptionPayment(ctx context.Context, subscriptionID string, payload *domain.CreatePaymentPayload) (*domain.Payment, error) {
	ctx, span := tracer.Start(ctx, "Ledger.CreateSubscriptionPayment")
	defer span.End()
	span.SetAttributes(attribute.String("subscription.id", subscriptionID))

	body, err := c.write(ctx, http.MethodPost, "subscriptions/"+subscriptionID+"/payments", payload)
	if err != nil {
		return nil, c.externalErr("payments", err)
	}

	var payment domain.Payment
	if err := decode(body, &payment); err != nil {
		return nil, c.externalErr("payments", err)
	}
	return &payment, nil
}

// DeleteSubscriptionPayment removes a concrete subscription payment. The
// ledger reverts the slot to a simulated placeholder on the next read.
func (c *Client) DeleteSubscriptionPayment(ctx context.Context, subscriptionID, paymentID string) error {
	ctx, span := tracer.Start(ctx, "Ledger.DeleteSubscriptionPayment")
	defer span.End()
	span.SetAttributes(
		attribute.String("subscription.id", subscriptionID),
		attribute.String("payment.id", paymentID),
	)

	if _, err := c.write(ctx, http.MethodDelete, "subscriptions/"+subscriptionID+"/payments/"+paymentID, nil); err != nil {
		return c.externalErr("payments", err)
	}
	return nil
}
