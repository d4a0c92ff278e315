package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/usecase/internal/config"
	"github.com/papapumpkin/usecase/internal/server"
	"github.com/papapumpkin/usecase/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the translation API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		printer := ui.New(os.Stderr)
		ctx, cancel := setupSignalContext(printer)
		defer cancel()

		ledger := openHistory(ctx, cfg, printer)
		if ledger != nil {
			defer ledger.Close()
		}

		srv, err := server.New(server.Config{
			Addr:          flagOr(cmd, "addr", cfg.Server.Addr),
			MaxUploadMB:   cfg.Server.MaxUploadMB,
			TemplateCache: cfg.Server.TemplateCache,
			Version:       version,
			Log:           os.Stderr,
			History:       ledger,
		})
		if err != nil {
			return err
		}
		if err := srv.Start(ctx); err != nil {
			return err
		}
		printer.Serving(srv.Addr().String())

		<-ctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		return srv.Stop(shutCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}
