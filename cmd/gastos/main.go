package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/smw-finance/gastos-bfa-go/internal/config"
	"github.com/smw-finance/gastos-bfa-go/internal/handler"
	"github.com/smw-finance/gastos-bfa-go/internal/infra/cache"
	"github.com/smw-finance/gastos-bfa-go/internal/infra/ledgerapi"
	"github.com/smw-finance/gastos-bfa-go/internal/infra/observability"
	"github.com/smw-finance/gastos-bfa-go/internal/infra/resilience"
	"github.com/smw-finance/gastos-bfa-go/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("ledger_api_url", cfg.LedgerAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("projection_months_ahead", cfg.DefaultMonthsAhead),
		zap.Int("projection_max_lookback", cfg.ProjectionMaxLookback),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "gastos-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	readCache := cache.New[any](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("ledger-api")

	// --- Ledger client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	ledger := ledgerapi.NewClient(httpClient, cfg.LedgerAPIURL, cb, resilienceCfg, metrics, logger)

	// --- Services ---
	financeSvc := service.NewFinanceService(
		ledger, ledger, ledger, ledger, ledger, ledger,
		readCache,
		metrics,
		logger,
		cfg.DefaultMonthsAhead,
		cfg.ProjectionMaxLookback,
	)
	authSvc := service.NewAuthService(ledger, cfg.JWTSecret, logger)

	// --- Router ---
	router := handler.NewRouter(financeSvc, authSvc, metrics, logger, cfg.AllowedOrigins)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
