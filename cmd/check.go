package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/runestream/internal/charstream"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Parse BQL files and report syntax errors",
	Long: `Parse one or more BQL query files. Each file prints "ok" or its first
syntax error with the offending span underlined.

Examples:
  runestream check queries/*.bql`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reports := lexFiles(cmd.Context(), func(ctx context.Context, path string) (*charstream.CharStream, error) {
			return openStream(cmd, path)
		}, args)
		if failed := printCheckReports(cmd.OutOrStdout(), reports); failed > 0 {
			return fmt.Errorf("%d file(s) failed to parse", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func printCheckReports(out io.Writer, reports []lexReport) int {
	failed := 0
	for _, r := range reports {
		switch {
		case r.err != nil:
			fmt.Fprintf(out, "%s: %v\n", r.path, r.err)
			failed++
		case r.syntax != nil:
			fmt.Fprintf(out, "%s\n%s\n", r.syntax.Msg, r.lines.Caret(r.syntax.Span))
			failed++
		default:
			fmt.Fprintf(out, "%s: ok\n", r.path)
		}
	}
	return failed
}
