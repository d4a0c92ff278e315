package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/usecase/internal/config"
	"github.com/papapumpkin/usecase/internal/model"
	"github.com/papapumpkin/usecase/internal/source"
	"github.com/papapumpkin/usecase/internal/table"
	"github.com/papapumpkin/usecase/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate <catalog>",
	Short: "Load and check a catalog without writing any output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		printer := ui.New(os.Stderr)
		input := args[0]

		c, err := validateCatalog(input, flagOr(cmd, "reference-dir", cfg.ReferenceDir))
		printer.ValidateResult(input, err)
		if c != nil {
			printer.CatalogSummary(c)
		}
		if err != nil {
			return errors.New("validation failed")
		}
		return nil
	},
}

// validateCatalog loads and builds input, then applies the spreadsheet
// checks. The catalog is returned whenever it could be built.
func validateCatalog(input, referenceDir string) (*model.Catalog, error) {
	path, ok := source.NormalizedPath(input)
	if !ok {
		return nil, fmt.Errorf("%s: %w", input, source.ErrFileNotFound)
	}
	doc, err := source.LoadFile(path, source.Options{ReferenceDir: referenceDir})
	if err != nil {
		return nil, err
	}
	c, err := model.Build(doc)
	if err != nil {
		return nil, err
	}
	return c, table.CheckSheetTitles(c)
}

func init() {
	validateCmd.Flags().String("reference-dir", "", "directory searched for scenario sets not found next to the catalog")
	rootCmd.AddCommand(validateCmd)
}
