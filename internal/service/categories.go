package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
)

// ============================================================
// Expense categories
// ============================================================

func (s *FinanceService) ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.ListCategories")
	defer span.End()

	return s.categories.ListCategories(ctx)
}

func (s *FinanceService) CreateCategory(ctx context.Context, payload *domain.ExpenseCategoryPayload) (*domain.ExpenseCategory, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.CreateCategory")
	defer span.End()

	if payload.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	return s.categories.CreateCategory(ctx, payload)
}

// UpdateCategory renames or redescribes a category. The income flag is
// immutable: flipping it would silently reclassify every expense already
// filed under the category.
func (s *FinanceService) UpdateCategory(ctx context.Context, userID, categoryID string, payload *domain.ExpenseCategoryPayload) (*domain.ExpenseCategory, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.UpdateCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", categoryID))

	if payload.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if payload.IsIncome != nil {
		existing, err := s.findCategory(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		if *payload.IsIncome != existing.IsIncome {
			return nil, &domain.ErrValidation{Field: "is_income", Message: "cannot be changed after creation"}
		}
	}

	category, err := s.categories.UpdateCategory(ctx, categoryID, payload)
	if err != nil {
		return nil, err
	}

	// Category names are denormalized into period payments.
	s.cache.DeletePrefix(projectionKey(userID))
	return category, nil
}

// findCategory resolves a category by id. The upstream has no single-item
// endpoint; the full list is small enough to scan.
func (s *FinanceService) findCategory(ctx context.Context, categoryID string) (*domain.ExpenseCategory, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == categoryID {
			return &categories[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
}

func (s *FinanceService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeleteCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", categoryID))

	if err := s.categories.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}

	// Category names are denormalized into period payments.
	s.cache.DeletePrefix(projectionKey(userID))
	return nil
}
