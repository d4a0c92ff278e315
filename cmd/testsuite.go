package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/usecase/internal/convert"
)

var testsuiteCmd = &cobra.Command{
	Use:   "testsuite <catalog>",
	Short: "Write a spreadsheet test suite, or CSV test tables with --format csv",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		op, err := testsuiteOp(format)
		if err != nil {
			return err
		}
		return runTranslate(cmd, op, args[0])
	},
}

// testsuiteOp maps --format to the operation it selects.
func testsuiteOp(format string) (convert.Operation, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "xlsx":
		return convert.OpTestSuite, nil
	case "csv":
		return convert.OpTestSuiteCSV, nil
	}
	return 0, fmt.Errorf("unknown format %q (want xlsx or csv)", format)
}

func init() {
	addTranslateFlags(testsuiteCmd, "workbook template .xlsx (default: built-in template)")
	testsuiteCmd.Flags().String("format", "xlsx", "output format: xlsx or csv")
	rootCmd.AddCommand(testsuiteCmd)
}
