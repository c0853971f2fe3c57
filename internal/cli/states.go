package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/aspp/internal/ui/pretty"
	"github.com/yaklabco/aspp/pkg/config"
	"github.com/yaklabco/aspp/pkg/processor"
)

func newStatesCommand() *cobra.Command {
	var (
		format  string
		rewrite bool
	)

	cmd := &cobra.Command{
		Use:   "states",
		Short: "Show the scanner transition table",
		Long: `Show the transition table driving the scanner: for every state, which
characters select which transition, the state entered and the action taken.

Examples:
  aspp states                 Styled table
  aspp states --format json   Machine-readable table
  aspp states --rewrite       Table used by --rewrite`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStates(cmd, config.OutputFormat(format), rewrite)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(config.FormatText), "output format: text or json")
	cmd.Flags().BoolVar(&rewrite, "rewrite", false, "show the label rewriting table")

	return cmd
}

func runStates(cmd *cobra.Command, format config.OutputFormat, rewrite bool) error {
	proc := processor.Default()
	if rewrite {
		proc = processor.Rewriting()
	}
	states := proc.Table().Describe()
	out := cmd.OutOrStdout()

	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(states, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal states: %w", err)
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err

	case config.FormatText:
		styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), out))
		formatter := pretty.NewStateTableFormatter(styles, terminalWidth(out))
		_, err := fmt.Fprint(out, formatter.Format(states))
		return err

	default:
		return fmt.Errorf("%w: invalid format %q: must be text or json", ErrUsage, format)
	}
}

// terminalWidth returns the width of w if it is a terminal, or 0.
func terminalWidth(w any) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
