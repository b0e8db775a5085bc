// Package ledgerapi provides the client for the remote ledger REST API,
// which owns all persistence: credit cards, expenses, payments, period
// projections, categories and users. The BFA holds only refetchable copies.
package ledgerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/domain"
	"github.com/smw-finance/gastos-bfa-go/internal/infra/observability"
	"github.com/smw-finance/gastos-bfa-go/internal/infra/resilience"
)

var tracer = otel.Tracer("ledgerapi")

type contextKey string

const tokenKey contextKey = "ledgerToken"

// WithToken stores the caller's bearer token in the context. Every request
// the client makes forwards it, so the ledger API sees the end user's own
// session.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func tokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey).(string)
	return v
}

// Client wraps HTTP calls to the ledger API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a ledger API client.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(maxConcurrency),
		metrics:    metrics,
		logger:     logger,
	}
}

// doRequest executes one request against the ledger API, forwarding the
// caller's bearer token from the context.
//
// Returns (nil, nil) on 404 and 204 so callers can translate "no data" into
// their own ErrNotFound. 401 maps to ErrUnauthorized; any other non-2xx
// response is an opaque error for the caller to wrap.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := fmt.Sprintf("%s/api/v3/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		c.logger.Error("ledgerapi: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token := tokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ledgerapi: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("ledgerapi: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, nil // no data
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &domain.ErrUnauthorized{Message: "ledger API rejected the session token"}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warn("ledgerapi: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("ledger API returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("ledgerapi: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}

// get executes a read with circuit breaker + retry.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			b, err := c.doRequest(ctx, http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			body = b
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// write executes a mutation with circuit breaker only. Mutations are not
// retried: the ledger API exposes no idempotency keys on these resources,
// and a replayed POST would duplicate the write.
func (c *Client) write(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		b, err := c.doRequest(ctx, method, path, payload)
		if err != nil {
			return nil, err
		}
		body = b
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode ledger response: %w", err)
	}
	return nil
}

// externalErr wraps an upstream failure, preserving typed domain errors so
// the handler layer can still map them to the right status.
func (c *Client) externalErr(resource string, err error) error {
	switch err.(type) {
	case *domain.ErrUnauthorized, *domain.ErrNotFound, *domain.ErrValidation:
		return err
	}
	c.metrics.IncrUpstreamError(resource)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &domain.ErrCircuitOpen{Service: "ledgerapi/" + resource}
	}
	return &domain.ErrExternalService{Service: "ledgerapi/" + resource, Err: err}
}
