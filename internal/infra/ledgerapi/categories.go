package ledgerapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
)

// --- Expense categories (implements port.CategoryStore) ---

func (c *Client) ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	ctx, span := tracer.Start(ctx, "Ledger.ListCategories")
	defer span.End()

	body, err := c.get(ctx, "expense-categories")
	if err != nil {
		return nil, c.externalErr("categories", err)
	}
	if body == nil {
		return []domain.ExpenseCategory{}, nil
	}

	var categories []domain.ExpenseCategory
	if err := decode(body, &categories); err != nil {
		return nil, c.externalErr("categories", err)
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, payload *domain.ExpenseCategoryPayload) (*domain.ExpenseCategory, error) {
	ctx, span := tracer.Start(ctx, "Ledger.CreateCategory")
	defer span.End()

	body, err := c.write(ctx, http.MethodPost, "expense-categories", payload)
	if err != nil {
		return nil, c.externalErr("categories", err)
	}

	var category domain.ExpenseCategory
	if err := decode(body, &category); err != nil {
		return nil, c.externalErr("categories", err)
	}
	return &category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, categoryID string, payload *domain.ExpenseCategoryPayload) (*domain.ExpenseCategory, error) {
	ctx, span := tracer.Start(ctx, "Ledger.UpdateCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", categoryID))

	body, err := c.write(ctx, http.MethodPut, "expense-categories/"+categoryID, payload)
	if err != nil {
		return nil, c.externalErr("categories", err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "expense-category", ID: categoryID}
	}

	var category domain.ExpenseCategory
	if err := decode(body, &category); err != nil {
		return nil, c.externalErr("categories", err)
	}
	return &category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, categoryID string) error {
	ctx, span := tracer.Start(ctx, "Ledger.DeleteCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", categoryID))

	if _, err := c.write(ctx, http.MethodDelete, "expense-categories/"+categoryID, nil); err != nil {
		return c.externalErr("categories", err)
	}
	return nil
}
