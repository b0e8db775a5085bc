package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/service"
)

// dashboardSummaryHandler serves the aggregate for the landing page.
func dashboardSummaryHandler(svc *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/summary")
		defer span.End()

		summary, err := svc.GetDashboardSummary(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
