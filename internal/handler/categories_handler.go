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
// Expense category handlers (/v1/expense-categories)
// ============================================================

func listCategoriesHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expense-categories")
		defer span.End()

		categories, err := svc.ListCategories(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

func createCategoryHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expense-categories")
		defer span.End()

		var req domain.ExpenseCategoryPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		category, err := svc.CreateCategory(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, category)
	}
}

func updateCategoryHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/expense-categories/{categoryId}")
		defer span.End()

		categoryID := chi.URLParam(r, "categoryId")
		span.SetAttributes(attribute.String("category.id", categoryID))

		var req domain.ExpenseCategoryPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		category, err := svc.UpdateCategory(ctx, UserIDFromContext(ctx), categoryID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, category)
	}
}

func deleteCategoryHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/expense-categories/{categoryId}")
		defer span.End()

		categoryID := chi.URLParam(r, "categoryId")
		span.SetAttributes(attribute.String("category.id", categoryID))

		if err := svc.DeleteCategory(ctx, UserIDFromContext(ctx), categoryID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
