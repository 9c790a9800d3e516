package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/event-cashless/internal/repository"
	"github.com/Shivanand-hulikatti/event-cashless/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func auditCmd() *cobra.Command {
	var (
		eventFlag string
		fix       bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare stored credit balances with a replay of the transaction log",
		Long: `Replay an event's transaction log and list every credit balance that
disagrees with it. Exits non-zero when discrepancies remain.

Examples:
  cashless audit --event 3f0c9a52-0d4e-4a57-9a43-5b0f1f0d8e21
  cashless audit --event 3f0c9a52-0d4e-4a57-9a43-5b0f1f0d8e21 --fix`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := uuid.Parse(eventFlag)
			if err != nil {
				return fmt.Errorf("--event must be a UUID: %w", err)
			}

			cfg, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			ledger := service.NewLedgerService(
				repository.NewEventRepository(pool),
				repository.NewWristbandRepository(pool),
				repository.NewLedgerRepository(pool),
			)

			diffs, err := ledger.Audit(ctx, eventID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(diffs); err != nil {
				return err
			}
			if len(diffs) == 0 {
				return nil
			}
			if !fix {
				return fmt.Errorf("%d credit balances disagree with the transaction log", len(diffs))
			}

			n, err := ledger.Rebuild(ctx, eventID)
			if err != nil {
				return err
			}
			slog.Info("credits rebuilt from transaction log", "event_id", eventID, "rows", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventFlag, "event", "", "event id to audit (required)")
	cmd.Flags().BoolVar(&fix, "fix", false, "rewrite credit balances from the log")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}
