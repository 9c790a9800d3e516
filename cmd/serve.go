package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/event-cashless/internal/handler"
	"github.com/Shivanand-hulikatti/event-cashless/internal/repository"
	"github.com/Shivanand-hulikatti/event-cashless/internal/service"
	"github.com/Shivanand-hulikatti/event-cashless/internal/telemetry"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Configuration is read from the environment (PORT, DATABASE_URL or DB_*,
LOG_LEVEL, OTEL_EXPORTER_OTLP_ENDPOINT, CORS_ORIGIN, LOGIN_RATE_PER_MIN).

Examples:
  cashless serve
  cashless serve --addr 127.0.0.1:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides PORT")
	return cmd
}

func runServe(ctx context.Context, addrOverride string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if addrOverride != "" {
		cfg.Port = addrOverride
	}

	// Block until SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			slog.Warn("tracer shutdown", "err", err)
		}
	}()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// ── 2. Wire up layers ────────────────────────────────────────────────
	eventRepo := repository.NewEventRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	wristbandRepo := repository.NewWristbandRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	operatorRepo := repository.NewOperatorRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	h := handler.New(handler.Services{
		Events:     service.NewEventService(eventRepo, productRepo, reportRepo),
		Wristbands: service.NewWristbandService(eventRepo, wristbandRepo, ledgerRepo),
		Ledger:     service.NewLedgerService(eventRepo, wristbandRepo, ledgerRepo),
		Orders:     service.NewOrderService(orderRepo),
		Operators:  service.NewOperatorService(eventRepo, operatorRepo, cfg.LoginRatePerMin),
		Reports:    service.NewReportService(eventRepo, reportRepo),
	}, pool)

	// ── 3. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.NewRouter(h, cfg.CORSOrigin),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
