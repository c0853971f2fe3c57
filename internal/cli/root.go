// Package cli provides the Cobra command structure for aspp.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/aspp/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root aspp command with all subcommands.
// Invoked without a subcommand, aspp preprocesses its arguments.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := newProcessCommand()
	rootCmd.Use = "aspp [paths...]"
	rootCmd.Aliases = nil
	rootCmd.Short = "A table-driven assembler source preprocessor"
	rootCmd.Long = `aspp is a table-driven preprocessor for assembler source.

It scans each input with a finite-state machine, copies the text through
and emits C-preprocessor style line markers and scope blocks so an
assembler can report errors against the original file. Inputs are files or
directories; with no inputs, standard input is read.` + "\n\n" + processExamples
	rootCmd.Version = info.Version
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if debug {
			logging.SetLevel("debug")
		}
	}
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newProcessCommand())
	rootCmd.AddCommand(newStatesCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}

// noArgs rejects positional arguments with a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments, got %q", ErrUsage, cmd.CommandPath(), args)
	}
	return nil
}
