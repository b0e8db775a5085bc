// Package service provides the business logic layer (use cases).
// FinanceService orchestrates cards, expenses, payment projections and
// categories against the ledger API, with a local read cache.
package service

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/infra/observability"
	"github.com/smw-finance/gastos-bfa-go/internal/port"
)

var financeTracer = otel.Tracer("service/finance")

// MaxOpenPeriodLookback bounds the backward walk when searching for the
// most recent open period.
const MaxOpenPeriodLookback = 24

// cachedProjection is the cached shape of a user's projection. One entry
// per user; a request for a different horizon is a miss and overwrites it.
type cachedProjection struct {
	MonthsAhead int
	Periods     []domain.Period
}

// FinanceService orchestrates all finance operations via the ledger API.
type FinanceService struct {
	cards      port.CardStore
	expenses   port.ExpenseStore
	payments   port.PaymentStore
	periods    port.PeriodStore
	categories port.CategoryStore
	identity   port.IdentityStore

	cache   port.Cache[any]
	projMu  sync.Mutex
	metrics *observability.Metrics
	logger  *zap.Logger

	defaultMonthsAhead int
	maxLookback        int
}

// NewFinanceService creates a new finance service.
func NewFinanceService(
	cards port.CardStore,
	expenses port.ExpenseStore,
	payments port.PaymentStore,
	periods port.PeriodStore,
	categories port.CategoryStore,
	identity port.IdentityStore,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
	defaultMonthsAhead int,
	maxLookback int,
) *FinanceService {
	if defaultMonthsAhead <= 0 {
		defaultMonthsAhead = 24
	}
	if maxLookback <= 0 {
		maxLookback = MaxOpenPeriodLookback
	}
	return &FinanceService{
		cards:              cards,
		expenses:           expenses,
		payments:           payments,
		periods:            periods,
		categories:         categories,
		identity:           identity,
		cache:              cache,
		metrics:            metrics,
		logger:             logger,
		defaultMonthsAhead: defaultMonthsAhead,
		maxLookback:        maxLookback,
	}
}

func cardsPrefix(userID string) string {
	return fmt.Sprintf("cards:%s", userID)
}

func cardsKey(userID string, limit, offset int) string {
	return fmt.Sprintf("cards:%s:%d:%d", userID, limit, offset)
}

func projectionKey(userID string) string {
	return fmt.Sprintf("periods:%s", userID)
}
