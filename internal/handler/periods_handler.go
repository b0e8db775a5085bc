package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/service"
)

// ============================================================
// Period and payment handlers (/v1/periods, /v1/expenses/payments,
// /v1/subscriptions/{id}/payments)
// ============================================================

func projectionHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/periods/projection")
		defer span.End()

		monthsAhead := 0
		if v := r.URL.Query().Get("months_ahead"); v != "" {
			m, err := strconv.Atoi(v)
			if err != nil || m < 1 || m > 120 {
				writeError(w, http.StatusBadRequest, "months_ahead must be between 1 and 120")
				return
			}
			monthsAhead = m
		}

		periods, err := svc.GetProjection(ctx, UserIDFromContext(ctx), monthsAhead)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, periods)
	}
}

func getPeriodHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/periods/{month}/{year}")
		defer span.End()

		month, err := strconv.Atoi(chi.URLParam(r, "month"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be a number")
			return
		}
		year, err := strconv.Atoi(chi.URLParam(r, "year"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be a number")
			return
		}
		span.SetAttributes(attribute.Int("period.month", month), attribute.Int("period.year", year))

		period, err := svc.GetPeriod(ctx, month, year)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, period)
	}
}

func updatePaymentHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/expenses/payments/{paymentId}")
		defer span.End()

		paymentID := chi.URLParam(r, "paymentId")
		span.SetAttributes(attribute.String("payment.id", paymentID))

		var req domain.UpdatePaymentPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		payment, err := svc.UpdatePayment(ctx, UserIDFromContext(ctx), paymentID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, payment)
	}
}

func materializePaymentHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/subscriptions/{subscriptionId}/payments")
		defer span.End()

		subscriptionID := chi.URLParam(r, "subscriptionId")
		span.SetAttributes(attribute.String("subscription.id", subscriptionID))

		var req domain.CreatePaymentPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		payment, err := svc.MaterializePayment(ctx, UserIDFromContext(ctx), subscriptionID, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, payment)
	}
}

func deletePaymentHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/subscriptions/{subscriptionId}/payments/{paymentId}")
		defer span.End()

		subscriptionID := chi.URLParam(r, "subscriptionId")
		paymentID := chi.URLParam(r, "paymentId")
		span.SetAttributes(
			attribute.String("subscription.id", subscriptionID),
			attribute.String("payment.id", paymentID),
		)

		if err := svc.DeletePayment(ctx, UserIDFromContext(ctx), subscriptionID, paymentID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
