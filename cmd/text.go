package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/runestream/internal/charstream"
	"github.com/zjrosen/runestream/internal/diag"
)

var textCaret bool

var textCmd = &cobra.Command{
	Use:   "text FILE START STOP",
	Short: "Print the text between two code-point indices",
	Long: `Print the text covered by the inclusive code-point interval START..STOP.
STOP < START prints nothing. STOP equal to the stream size is clamped to the
last code point.

Examples:
  runestream text query.bql 8 10
  runestream text query.bql 8 10 --caret`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseIndex(args[1], "START")
		if err != nil {
			return err
		}
		stop, err := parseIndex(args[2], "STOP")
		if err != nil {
			return err
		}

		cs, err := openStream(cmd, args[0])
		if err != nil {
			return err
		}

		iv := charstream.Of(start, stop)
		text, err := cs.GetText(iv)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if textCaret {
			fmt.Fprintln(out, diag.NewLines(cs).Caret(iv))
			return nil
		}
		fmt.Fprintln(out, text)
		return nil
	},
}

func init() {
	textCmd.Flags().BoolVar(&textCaret, "caret", false, "show the interval underlined in its source line")
	rootCmd.AddCommand(textCmd)
}

func parseIndex(arg, name string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", name, arg)
	}
	return n, nil
}
