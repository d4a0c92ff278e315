package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/usecase/internal/config"
	"github.com/papapumpkin/usecase/internal/convert"
	"github.com/papapumpkin/usecase/internal/history"
	"github.com/papapumpkin/usecase/internal/source"
	"github.com/papapumpkin/usecase/internal/ui"
	"github.com/papapumpkin/usecase/internal/watch"
)

// addTranslateFlags registers the flags shared by document and testsuite.
func addTranslateFlags(c *cobra.Command, templateHelp string) {
	c.Flags().StringP("output", "o", "", "output directory (default: the input file's directory)")
	c.Flags().StringP("template", "a", "", templateHelp)
	c.Flags().String("reference-dir", "", "directory searched for scenario sets not found next to the catalog")
	c.Flags().Bool("watch", false, "regenerate whenever the catalog or a scenario set changes")
}

// flagOr returns the named flag when the user set it, else fallback.
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

// buildRequest assembles a run from flags, falling back to configuration.
func buildRequest(cmd *cobra.Command, cfg config.Config, op convert.Operation, input string) convert.Request {
	req := convert.Request{
		Op:           op,
		Input:        input,
		OutputDir:    flagOr(cmd, "output", cfg.OutputDir),
		ReferenceDir: flagOr(cmd, "reference-dir", cfg.ReferenceDir),
		Delimiter:    cfg.Delimiter(),
	}
	switch op {
	case convert.OpDocument:
		req.Template = flagOr(cmd, "template", cfg.MarkdownTemplates)
	case convert.OpTestSuite:
		req.Template = flagOr(cmd, "template", cfg.ExcelTemplate)
	}
	return req
}

// runTranslate performs one run and, with --watch, keeps regenerating until
// interrupted.
func runTranslate(cmd *cobra.Command, op convert.Operation, input string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	printer := ui.New(os.Stderr)
	req := buildRequest(cmd, cfg, op, input)

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	ledger := openHistory(ctx, cfg, printer)
	if ledger != nil {
		defer ledger.Close()
	}

	res, err := runOnce(ctx, req, ledger, printer, cfg.Verbose)
	if watchMode, _ := cmd.Flags().GetBool("watch"); !watchMode {
		return err
	}
	if err != nil {
		printer.Error(err.Error())
	}

	return watchLoop(ctx, req, watchTargets(res, err, []string{input}), cfg, ledger, printer)
}

// runOnce runs req and records the outcome in the ledger when one is open.
func runOnce(ctx context.Context, req convert.Request, ledger *history.Store, printer *ui.Printer, verbose bool) (*convert.Result, error) {
	started := time.Now()
	res, err := convert.Run(req)
	if ledger != nil {
		run := history.Run{Op: req.Op.String(), Input: absPath(req.Input), StartedAt: started, FinishedAt: time.Now()}
		if err != nil {
			run.Error = err.Error()
		} else {
			run.Outputs = res.Files
		}
		if _, recErr := ledger.Record(ctx, run); recErr != nil && verbose {
			printer.Info(recErr.Error())
		}
	}
	if err != nil {
		return nil, err
	}
	if verbose {
		printer.CatalogSummary(res.Catalog)
	}
	printer.Wrote(res.Files)
	return res, nil
}

// watchLoop re-runs the full pipeline on every change to a tracked file and
// re-targets the watcher at the files the latest successful run read.
func watchLoop(ctx context.Context, req convert.Request, files []string, cfg config.Config, ledger *history.Store, printer *ui.Printer) error {
	w, err := watch.New(files, cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()
	printer.Watching(w.Files())

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			printer.Changed(change.Kind.String(), change.File)
			res, err := runOnce(ctx, req, ledger, printer, cfg.Verbose)
			if err != nil {
				printer.Error(err.Error())
			}
			if setErr := w.SetFiles(watchTargets(res, err, w.Files())); setErr != nil {
				printer.Error(setErr.Error())
			}
		}
	}
}

// watchTargets returns the files the next run depends on. A successful run
// names them itself. After a failure the tracked files are kept, and a
// missing scenario set adds every path it was looked up at whose directory
// exists, so creating the file triggers a rerun.
func watchTargets(res *convert.Result, runErr error, tracked []string) []string {
	if runErr == nil && res != nil {
		return res.Document.Files()
	}
	files := slices.Clone(tracked)
	var refErr *source.ReferenceError
	if errors.As(runErr, &refErr) {
		for _, c := range refErr.Candidates() {
			if info, err := os.Stat(filepath.Dir(c)); err == nil && info.IsDir() && !slices.Contains(files, c) {
				files = append(files, c)
			}
		}
	}
	return files
}

// openHistory opens the run ledger. Failures only disable recording.
func openHistory(ctx context.Context, cfg config.Config, printer *ui.Printer) *history.Store {
	if cfg.HistoryDB == "" {
		return nil
	}
	store, err := history.Open(ctx, cfg.HistoryDB)
	if err != nil {
		if cfg.Verbose {
			printer.Info(err.Error())
		}
		return nil
	}
	return store
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
