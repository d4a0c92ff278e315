package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/usecase/internal/convert"
)

var documentCmd = &cobra.Command{
	Use:   "document <catalog>",
	Short: "Render Markdown narrative documents for a catalog and its scenario sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTranslate(cmd, convert.OpDocument, args[0])
	},
}

func init() {
	addTranslateFlags(documentCmd, `template pair "catalog.tmpl|scenario-set.tmpl" (default: built-in templates)`)
	rootCmd.AddCommand(documentCmd)
}
