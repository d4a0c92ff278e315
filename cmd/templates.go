package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/usecase/internal/narrative"
	"github.com/papapumpkin/usecase/internal/table"
	"github.com/papapumpkin/usecase/internal/ui"
)

// workbookTemplateName is the file name of the exported spreadsheet template.
const workbookTemplateName = "TestSuiteTemplate.xlsx"

var templatesCmd = &cobra.Command{
	Use:   "templates <dir>",
	Short: "Export the built-in narrative and spreadsheet templates for customization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		files, err := exportTemplates(args[0], force)
		if err != nil {
			return err
		}
		ui.New(os.Stderr).Wrote(files)
		return nil
	},
}

// exportTemplates writes the built-in templates into dir, creating it.
// Existing files are kept unless force is set.
func exportTemplates(dir string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var written []string
	for _, name := range []string{narrative.CatalogTemplate, narrative.ScenarioSetTemplate} {
		data, err := narrative.DefaultTemplate(name)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, name)
		if err := writeNew(path, force, func(f *os.File) error {
			_, err := f.Write(data)
			return err
		}); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	path := filepath.Join(dir, workbookTemplateName)
	if err := writeNew(path, force, func(f *os.File) error {
		return table.WriteDefaultTemplate(f)
	}); err != nil {
		return written, err
	}
	return append(written, path), nil
}

func writeNew(path string, force bool, write func(*os.File) error) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	templatesCmd.Flags().Bool("force", false, "overwrite existing files")
	rootCmd.AddCommand(templatesCmd)
}
