package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/infra/observability"
	"github.com/smw-finance/gastos-bfa-go/internal/service"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes mirror what the dashboard frontend calls.
func NewRouter(svc *service.FinanceService, authSvc *service.AuthService, metrics *observability.Metrics, logger *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(MetricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Authentication (public)
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(authSvc, logger))
			r.Post("/login", authLoginHandler(authSvc, logger))
			r.Post("/refresh", authRefreshHandler(authSvc, logger))
		})

		// =============================================
		// Everything else requires a bearer token
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))

			// Users
			r.Get("/users/me", meHandler(authSvc, logger))
			r.Put("/users/{userId}", updateUserHandler(authSvc, logger))

			// Credit cards
			r.Get("/credit-cards", listCardsHandler(svc, logger))
			r.Post("/credit-cards", createCardHandler(svc, logger))
			r.Put("/credit-cards/{cardId}", updateCardHandler(svc, logger))
			r.Delete("/credit-cards/{cardId}", deleteCardHandler(svc, logger))

			// Expenses
			r.Get("/expenses", listExpensesHandler(svc, logger))
			r.Post("/expenses", createExpenseHandler(svc, logger))
			r.Get("/expenses/first-payment-date", firstPaymentDateHandler(svc, logger))
			r.Get("/expenses/{expenseId}", getExpenseHandler(svc, logger))
			r.Put("/expenses/{expenseId}", updateExpenseHandler(svc, logger))
			r.Delete("/expenses/{expenseId}", deleteExpenseHandler(svc, logger))

			// Payments
			r.Put("/expenses/payments/{paymentId}", updatePaymentHandler(svc, logger))
			r.Post("/subscriptions/{subscriptionId}/payments", materializePaymentHandler(svc, logger))
			r.Delete("/subscriptions/{subscriptionId}/payments/{paymentId}", deletePaymentHandler(svc, logger))

			// Periods
			r.Get("/periods/projection", projectionHandler(svc, logger))
			r.Get("/periods/{month}/{year}", getPeriodHandler(svc, logger))

			// Expense categories
			r.Get("/expense-categories", listCategoriesHandler(svc, logger))
			r.Post("/expense-categories", createCategoryHandler(svc, logger))
			r.Put("/expense-categories/{categoryId}", updateCategoryHandler(svc, logger))
			r.Delete("/expense-categories/{categoryId}", deleteCategoryHandler(svc, logger))

			// Dashboard
			r.Get("/dashboard/summary", dashboardSummaryHandler(svc, logger))

			// Service metrics snapshot
			r.Get("/metrics/summary", metricsSummaryHandler(metrics, logger))
		})
	})

	return r
}

// ============================================================
// Probes & health
// ============================================================

func healthzHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "gastos-bfa", Status: "healthy", LatencyMs: 0, UptimePercent: 99.99, LastChecked: now},
		}

		if svc != nil {
			// Unauthenticated probe: a 401 still proves the ledger answered.
			start := time.Now()
			_, err := svc.ListCategories(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				if _, ok := err.(*domain.ErrUnauthorized); !ok {
					status = "degraded"
				}
			}
			services = append(services, domain.ServiceHealth{
				Name: "ledger-api", Status: status, LatencyMs: latency,
				UptimePercent: 99.9, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}
