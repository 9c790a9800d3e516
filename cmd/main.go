// cmd/main.go is the application entry point.
// It wires together all layers behind a small cobra CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Shivanand-hulikatti/event-cashless/internal/config"
	"github.com/Shivanand-hulikatti/event-cashless/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "cashless",
		Short:         "Cashless NFC wristband backend for events",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(auditCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and installs the JSON logger.
func setup() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	return cfg, nil
}

// connect opens the pool and applies the schema.
func connect(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, cfg.DSN(), cfg.DB.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to PostgreSQL", "max_conns", pool.Config().MaxConns)
	return pool, nil
}
