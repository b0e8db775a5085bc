package ledgerapi

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/projection"
)

// --- Periods (implements port.PeriodStore) ---

// GetProjection fetches the upcoming months' periods. Derived fields
// (is_open, display groups) are recomputed here so downstream code never
// sees a period without them.
func (c *Client) GetProjection(ctx context.Context, monthsAhead int) ([]domain.Period, error) {
	ctx, span := tracer.Start(ctx, "Ledger.GetProjection")
	defer span.End()
	span.SetAttributes(attribute.Int("projection.months_ahead", monthsAhead))

	body, err := c.get(ctx, fmt.Sprintf("periods/projection?months_ahead=%d", monthsAhead))
	if err != nil {
		return nil, c.externalErr("periods", err)
	}
	if body == nil {
		return []domain.Period{}, nil
	}

	var periods []domain.Period
	if err := decode(body, &periods); err != nil {
		return nil, c.externalErr("periods", err)
	}
	projection.Annotate(periods)
	return periods, nil
}

// GetPeriod fetches a single month's period. A missing period is not an
// error upstream; callers get ErrNotFound and decide what that means.
func (c *Client) GetPeriod(ctx context.Context, month, year int) (*domain.Period, error) {
	ctx, span := tracer.Start(ctx, "Ledger.GetPeriod")
	defer span.End()
	span.SetAttributes(
		attribute.Int("period.month", month),
		attribute.Int("period.year", year),
	)

	body, err := c.get(ctx, fmt.Sprintf("periods/%d/%d", month, year))
	if err != nil {
		return nil, c.externalErr("periods", err)
	}
	if body == nil {
		return nil, &domain.ErrNotFound{Resource: "period", ID: fmt.Sprintf("%d/%d", month, year)}
	}

	annotated := make([]domain.Period, 1)
	if err := decode(body, &annotated[0]); err != nil {
		return nil, c.externalErr("periods", err)
	}
	projection.Annotate(annotated)
	return &annotated[0], nil
}
