package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vigil-gate/vigil/internal/audit"
	"github.com/vigil-gate/vigil/internal/cli"
	"github.com/vigil-gate/vigil/internal/config"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scans from the local audit spool",
		RunE:  runHistory,
	}

	cmd.Flags().IntP("limit", "n", 10, "Number of scans to show")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	dbPath := viper.GetString("audit.db")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/vigil/scans.db"
	}
	dbPath = config.ExpandPath(dbPath)

	rec, err := audit.NewSQLiteRecorder(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open audit spool: %w", err)
	}
	defer func() {
		if closeErr := rec.Close(); closeErr != nil {
			slog.Error("Failed to close audit spool", "error", closeErr)
		}
	}()

	records, err := rec.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderHistory(records))
	return nil
}
