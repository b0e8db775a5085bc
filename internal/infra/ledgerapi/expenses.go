package ledgerapi

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
)

// --- Expenses (implements port.ExpenseStore) ---

// expensePath maps the expense type tag to its upstream resource. The tag
// is the single dispatch point; nothing outside this file branches on it.
func expensePath(t domain.ExpenseType) string {
	if t == domain.ExpenseSubscription {
		return "subscriptions"
	}
	return "purchases"
}

// ListExpenses fetches a page of expenses, optionally filtered by type.
func (c *Client) ListExpenses(ctx context.Context, limit, offset int, expenseType domain.ExpenseType) (*domain.PaginatedExpenses, error) {
	ctx, span := tracer.Start(ctx, "Ledger.ListExpenses")
	defer span.End()

	path := fmt.Sprintf("expenses?limit=%d&offset=%d", limit, offset)
	if expenseType != "" {
		path += "&type=" + string(expenseType)
	}

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, c.externalErr("expenses", err)
	}
	if body == nil {
		return &domain.PaginatedExpenses{Items: []domain.Expense{}}, nil
	}

	var page domain.PaginatedExpenses
	if err := decode(body, &page); err != nil {
		return nil, c.externalErr("expenses", err)
	}
	return &page, nil
}

// GetExpense fetches one expense. With an empty type tag the purchase
// resource is tried first, then subscriptions; the tag of whichever
// answered is authoritative.
func (c *Client) GetExpense(ctx context.Context, expenseID string, expenseType domain.ExpenseType) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Ledger.GetExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", expenseID))

	if expenseType != "" {
		return c.getExpenseAs(ctx, expenseID, expenseType)
	}

	expense, err := c.getExpenseAs(ctx, expenseID, domain.ExpensePurchase)
	if err == nil {
		return expense, nil
	}
	if _, ok := err.(*domain.ErrNotFound); !ok {
		return nil, err
	}
	return c.getExpenseAs(ctx, expenseID, domain.ExpenseSubscription)
}

func (c *Client) getExpenseAs(ctx context.Context, expenseID string, expenseType domain.ExpenseType) (*domain.Expense, error) {
	body, err := c.get(ctx, expensePath(expenseType)+"/"+expenseID)
	if err != nil {
		return nil, c.externalErr("expenses", err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: string(expenseType), ID: expenseID}
	}

	var expense domain.Expense
	if err := decode(body, &expense); err != nil {
		return nil, c.externalErr("expenses", err)
	}
	return &expense, nil
}

// CreateExpense creates a purchase or subscription depending on the
// payload's type tag.
func (c *Client) CreateExpense(ctx context.Context, payload *domain.ExpensePayload) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Ledger.CreateExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.type", string(payload.ExpenseType)))

	body, err := c.write(ctx, http.MethodPost, expensePath(payload.ExpenseType), payload)
	if err != nil {
		return nil, c.externalErr("expenses", err)
	}

	var expense domain.Expense
	if err := decode(body, &expense); err != nil {
		return nil, c.externalErr("expenses", err)
	}
	return &expense, nil
}

// UpdateExpense updates an expense under its type's resource.
func (c *Client) UpdateExpense(ctx context.Context, expenseID string, payload *domain.ExpensePayload) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Ledger.UpdateExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", expenseID))

	body, err := c.write(ctx, http.MethodPut, expensePath(payload.ExpenseType)+"/"+expenseID, payload)
	if err != nil {
		return nil, c.externalErr("expenses", err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: string(payload.ExpenseType), ID: expenseID}
	}

	var expense domain.Expense
	if err := decode(body, &expense); err != nil {
		return nil, c.externalErr("expenses", err)
	}
	return &expense, nil
}

// DeleteExpense removes an expense under its type's resource.
func (c *Client) DeleteExpense(ctx context.Context, expenseID string, expenseType domain.ExpenseType) error {
	ctx, span := tracer.Start(ctx, "Ledger.DeleteExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", expenseID))

	if _, err := c.write(ctx, http.MethodDelete, expensePath(expenseType)+"/"+expenseID, nil); err != nil {
		return c.externalErr("expenses", err)
	}
	return nil
}
