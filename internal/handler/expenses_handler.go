package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/service"
)

// ============================================================
// Expense handlers (/v1/expenses)
// ============================================================

func listExpensesHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses")
		defer span.End()

		limit, offset := parsePagination(r)
		expenseType := domain.ExpenseType(r.URL.Query().Get("type"))

		page, err := svc.ListExpenses(ctx, limit, offset, expenseType)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func getExpenseHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses/{expenseId}")
		defer span.End()

		expenseID := chi.URLParam(r, "expenseId")
		span.SetAttributes(attribute.String("expense.id", expenseID))
		expenseType := domain.ExpenseType(r.URL.Query().Get("type"))

		expense, err := svc.GetExpense(ctx, expenseID, expenseType)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, expense)
	}
}

func createExpenseHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses")
		defer span.End()

		var req domain.ExpensePayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		expense, err := svc.CreateExpense(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, expense)
	}
}

func updateExpenseHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/expenses/{expenseId}")
		defer span.End()

		expenseID := chi.URLParam(r, "expenseId")
		span.SetAttributes(attribute.String("expense.id", expenseID))

		var req domain.ExpensePayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		expense, err := svc.UpdateExpense(ctx, UserIDFromContext(ctx), expenseID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, expense)
	}
}

func deleteExpenseHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/expenses/{expenseId}")
		defer span.End()

		expenseID := chi.URLParam(r, "expenseId")
		span.SetAttributes(attribute.String("expense.id", expenseID))
		expenseType := domain.ExpenseType(r.URL.Query().Get("type"))

		if err := svc.DeleteExpense(ctx, UserIDFromContext(ctx), expenseID, expenseType); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// firstPaymentDateHandler answers the "when does this start being paid"
// preview shown on the expense form.
func firstPaymentDateHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses/first-payment-date")
		defer span.End()

		accountID := r.URL.Query().Get("account_id")
		acquiredAt := r.URL.Query().Get("acquired_at")
		if accountID == "" {
			writeError(w, http.StatusBadRequest, "account_id is required")
			return
		}

		day, err := svc.FirstPaymentDate(ctx, UserIDFromContext(ctx), accountID, acquiredAt)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"first_payment_date": day})
	}
}
