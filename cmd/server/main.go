// Package main serves one swap form over HTTP:
// - /api: token list, form state, pair and amount edits, price refresh, submit
// - /metrics: Prometheus metrics
// - /health: liveness
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"currency-swap/internal/config"
	"currency-swap/internal/httpapi"
	"currency-swap/internal/logging"
	"currency-swap/internal/pricefeed"
	"currency-swap/internal/session"
	"currency-swap/internal/storage/memory"
	"currency-swap/internal/submission"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config and SWAP_SERVER_ADDR)")
	feedURL := flag.String("feed-url", "", "Price feed URL (overrides config and SWAP_FEED_URL)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *feedURL != "" {
		cfg.Feed.URL = *feedURL
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client := pricefeed.NewHTTPClient(cfg.Feed.URL,
		pricefeed.WithTimeout(cfg.Feed.Timeout.Std()),
		pricefeed.WithMaxRetries(cfg.Feed.MaxRetries),
		pricefeed.WithRetryDelay(cfg.Feed.RetryDelay.Std()),
		pricefeed.WithUserAgent(cfg.Feed.UserAgent),
	)

	form := session.New(session.Options{
		Source:        client,
		Executor:      submission.NewSimulatedExecutor(submission.WithLatency(cfg.Submission.Latency.Std())),
		Store:         memory.NewReceiptStore(),
		Logger:        logger,
		DefaultAmount: cfg.Form.DefaultAmount,
	})
	defer form.Close()

	// A failed first fetch leaves the form in its error state; clients retry
	// through /api/prices/refresh.
	if err := form.Init(ctx); err != nil {
		logger.Warn("initial price fetch failed", zap.String("feed_url", client.URL()), zap.Error(err))
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.NewHandler(httpapi.Options{
			Form:   form,
			Logger: logger.Named("http"),
			RefreshLimit: httpapi.RateLimit{
				RequestsPerMinute: cfg.Server.RefreshPerMin,
				Burst:             cfg.Server.RefreshBurst,
			},
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout.Std()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
