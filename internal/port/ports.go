// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
)

// Cache provides keyed caching with TTL. Keys identify resources
// ("periods:<user>", "cards:<user>:<limit>:<offset>"); DeletePrefix
// invalidates a whole resource family after a write.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	DeletePrefix(prefix string)
}

// CardStore defines credit card operations against the ledger API.
type CardStore interface {
	ListCreditCards(ctx context.Context, limit, offset int) (*domain.PaginatedCreditCards, error)
	CreateCreditCard(ctx context.Context, payload *domain.CreditCardPayload) (*domain.CreditCard, error)
	UpdateCreditCard(ctx context.Context, cardID string, payload *domain.CreditCardPayload) (*domain.CreditCard, error)
	DeleteCreditCard(ctx context.Context, cardID string) error
}

// ExpenseStore defines expense operations. The expense type tag selects the
// upstream resource (purchases vs subscriptions); the store owns that
// dispatch so no caller ever branches on the tag.
type ExpenseStore interface {
	ListExpenses(ctx context.Context, limit, offset int, expenseType domain.ExpenseType) (*domain.PaginatedExpenses, error)
	GetExpense(ctx context.Context, expenseID string, expenseType domain.ExpenseType) (*domain.Expense, error)
	CreateExpense(ctx context.Context, payload *domain.ExpensePayload) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, expenseID string, payload *domain.ExpensePayload) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string, expenseType domain.ExpenseType) error
}

// PaymentStore defines installment-level operations.
type PaymentStore interface {
	UpdatePayment(ctx context.Context, paymentID string, payload *domain.UpdatePaymentPayload) (*domain.Payment, error)
	CreateSubscriptionPayment(ctx context.Context, subscriptionID string, payload *domain.CreatePaymentPayload) (*domain.Payment, error)
	DeleteSubscriptionPayment(ctx context.Context, subscriptionID, paymentID string) error
}

// PeriodStore fetches period projections from the ledger API.
type PeriodStore interface {
	GetProjection(ctx context.Context, monthsAhead int) ([]domain.Period, error)
	GetPeriod(ctx context.Context, month, year int) (*domain.Period, error)
}

// CategoryStore defines expense category operations.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
	CreateCategory(ctx context.Context, payload *domain.ExpenseCategoryPayload) (*domain.ExpenseCategory, error)
	UpdateCategory(ctx context.Context, categoryID string, payload *domain.ExpenseCategoryPayload) (*domain.ExpenseCategory, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

// IdentityStore relays authentication and user operations. Credentials and
// session lifecycle are owned by the ledger API; the BFA never stores them.
type IdentityStore interface {
	Login(ctx context.Context, payload *domain.LoginPayload) (*domain.User, error)
	Register(ctx context.Context, payload *domain.RegisterPayload) (*domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.User, error)
	Me(ctx context.Context) (*domain.User, error)
	UpdateUser(ctx context.Context, userID string, payload *domain.UpdateUserPayload) (*domain.User, error)
}
