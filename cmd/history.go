package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/usecase/internal/config"
	"github.com/papapumpkin/usecase/internal/history"
	"github.com/papapumpkin/usecase/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent translation runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.HistoryDB == "" {
			return errors.New("run history is disabled (history_db is empty)")
		}
		n, _ := cmd.Flags().GetInt("limit")

		store, err := history.Open(cmd.Context(), cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Recent(cmd.Context(), n)
		if err != nil {
			return err
		}
		ui.New(os.Stdout).HistoryTable(runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
