package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/projection"
)

// ============================================================
// Expenses
// ============================================================

// ListExpenses returns a page of expenses, optionally filtered by type.
func (s *FinanceService) ListExpenses(ctx context.Context, limit, offset int, expenseType domain.ExpenseType) (*domain.PaginatedExpenses, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.ListExpenses")
	defer span.End()

	if expenseType != "" && !expenseType.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be purchase or subscription"}
	}
	return s.expenses.ListExpenses(ctx, limit, offset, expenseType)
}

// GetExpense returns one expense with its payments.
func (s *FinanceService) GetExpense(ctx context.Context, expenseID string, expenseType domain.ExpenseType) (*domain.Expense, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.GetExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", expenseID))

	if expenseType != "" && !expenseType.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be purchase or subscription"}
	}
	return s.expenses.GetExpense(ctx, expenseID, expenseType)
}

// CreateExpense creates a purchase or subscription. When the payload has no
// first payment date, it defaults to the date computed from the acquisition
// date and the charged card's cycle dates.
func (s *FinanceService) CreateExpense(ctx context.Context, userID string, payload *domain.ExpensePayload) (*domain.Expense, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.CreateExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.type", string(payload.ExpenseType)))

	if err := validateExpensePayload(payload); err != nil {
		return nil, err
	}

	if payload.FirstPaymentDate == "" {
		day, err := s.FirstPaymentDate(ctx, userID, payload.AccountID, payload.AcquiredAt)
		if err != nil {
			return nil, err
		}
		payload.FirstPaymentDate = day
	}

	expense, err := s.expenses.CreateExpense(ctx, payload)
	if err != nil {
		s.logger.Error("failed to create expense", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.invalidateAfterExpenseWrite(userID)
	s.logger.Info("expense created",
		zap.String("user_id", userID),
		zap.String("expense_id", expense.ID),
		zap.String("type", string(expense.ExpenseType)),
	)
	return expense, nil
}

// UpdateExpense updates an expense. The type tag is immutable: a purchase
// can never become a subscription or vice versa.
func (s *FinanceService) UpdateExpense(ctx context.Context, userID, expenseID string, payload *domain.ExpensePayload) (*domain.Expense, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.UpdateExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", expenseID))

	if err := validateExpensePayload(payload); err != nil {
		return nil, err
	}

	existing, err := s.expenses.GetExpense(ctx, expenseID, "")
	if err != nil {
		return nil, err
	}
	if existing.ExpenseType != payload.ExpenseType {
		return nil, &domain.ErrValidation{Field: "expense_type", Message: "cannot be changed after creation"}
	}

	expense, err := s.expenses.UpdateExpense(ctx, expenseID, payload)
	if err != nil {
		return nil, err
	}

	s.invalidateAfterExpenseWrite(userID)
	return expense, nil
}

// DeleteExpense removes an expense and all its payments.
func (s *FinanceService) DeleteExpense(ctx context.Context, userID, expenseID string, expenseType domain.ExpenseType) error {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeleteExpense")
	defer span.End()
	span.SetAttributes(attribute.String("expense.id", expenseID))

	if expenseType == "" {
		existing, err := s.expenses.GetExpense(ctx, expenseID, "")
		if err != nil {
			return err
		}
		expenseType = existing.ExpenseType
	}

	if err := s.expenses.DeleteExpense(ctx, expenseID, expenseType); err != nil {
		return err
	}

	s.invalidateAfterExpenseWrite(userID)
	s.logger.Info("expense deleted", zap.String("user_id", userID), zap.String("expense_id", expenseID))
	return nil
}

// FirstPaymentDate computes when an expense acquired on acquiredAt and
// charged to the given card starts being paid.
func (s *FinanceService) FirstPaymentDate(ctx context.Context, userID, accountID, acquiredAt string) (string, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.FirstPaymentDate")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	if acquiredAt == "" {
		return "", &domain.ErrValidation{Field: "acquired_at", Message: "required"}
	}
	if _, err := projection.ParseDay(acquiredAt); err != nil {
		return "", &domain.ErrValidation{Field: "acquired_at", Message: "must be YYYY-MM-DD"}
	}

	card, err := s.findCard(ctx, userID, accountID)
	if err != nil {
		return "", err
	}
	return projection.FirstPaymentDay(acquiredAt, card.NextClosingDate, card.NextExpiringDate), nil
}

// invalidateAfterExpenseWrite drops the caches an expense write can skew:
// projections gain or lose payments, cards change their expense counters.
func (s *FinanceService) invalidateAfterExpenseWrite(userID string) {
	s.cache.DeletePrefix(projectionKey(userID))
	s.invalidateCards(userID)
}

func validateExpensePayload(p *domain.ExpensePayload) error {
	if p.Title == "" {
		return &domain.ErrValidation{Field: "title", Message: "required"}
	}
	if p.AccountID == "" {
		return &domain.ErrValidation{Field: "account_id", Message: "required"}
	}
	if !p.ExpenseType.Valid() {
		return &domain.ErrValidation{Field: "expense_type", Message: "must be purchase or subscription"}
	}
	if p.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if p.ExpenseType == domain.ExpensePurchase && p.Installments < 1 {
		return &domain.ErrValidation{Field: "installments", Message: "must be at least 1"}
	}
	return nil
}
