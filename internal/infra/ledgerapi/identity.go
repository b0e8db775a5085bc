package ledgerapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
)

// --- Identity (implements port.IdentityStore) ---
//
// All credential handling lives upstream. These methods relay payloads as-is
// and never persist what comes back.

func (c *Client) Login(ctx context.Context, payload *domain.LoginPayload) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Login")
	defer span.End()

	body, err := c.write(ctx, http.MethodPost, "auth/login", payload)
	if err != nil {
		return nil, c.externalErr("identity", err)
	}

	var user domain.User
	if err := decode(body, &user); err != nil {
		return nil, c.externalErr("identity", err)
	}
	return &user, nil
}

func (c *Client) Register(ctx context.Context, payload *domain.RegisterPayload) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Register")
	defer span.End()

	body, err := c.write(ctx, http.MethodPost, "auth/register", payload)
	if err != nil {
		return nil, c.externalErr("identity", err)
	}

	var user domain.User
	if err := decode(body, &user); err != nil {
		return nil, c.externalErr("identity", err)
	}
	return &user, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Refresh")
	defer span.End()

	payload := map[string]string{"refresh_token": refreshToken}
	body, err := c.write(ctx, http.MethodPost, "auth/refresh", payload)
	if err != nil {
		return nil, c.externalErr("identity", err)
	}

	var user domain.User
	if err := decode(body, &user); err != nil {
		return nil, c.externalErr("identity", err)
	}
	return &user, nil
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Ledger.Me")
	defer span.End()

	body, err := c.get(ctx, "users/me")
	if err != nil {
		return nil, c.externalErr("identity", err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "user", ID: "me"}
	}

	var user domain.User
	if err := decode(body, &user); err != nil {
		return nil, c.externalErr("identity", err)
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID string, payload *domain.UpdateUserPayload) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Ledger.UpdateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	body, err := c.write(ctx, http.MethodPut, "users/"+userID, payload)
	if err != nil {
		return nil, c.externalErr("identity", err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}

	var user domain.User
	if err := decode(body, &user); err != nil {
		return nil, c.externalErr("identity", err)
	}
	return &user, nil
}
