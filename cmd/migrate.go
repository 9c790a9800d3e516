package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			pool, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			pool.Close()
			slog.Info("schema up to date")
			return nil
		},
	}
}
