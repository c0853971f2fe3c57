package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/aspp/internal/configloader"
	"github.com/yaklabco/aspp/internal/logging"
	"github.com/yaklabco/aspp/internal/ui/pretty"
	"github.com/yaklabco/aspp/pkg/config"
	"github.com/yaklabco/aspp/pkg/fsutil"
	"github.com/yaklabco/aspp/pkg/runner"
)

const processExamples = `Examples:
  aspp boot.s                     Preprocess one file to stdout
  aspp < boot.s                   Preprocess standard input
  aspp --name boot.s < boot.s     Name standard input in line markers
  aspp -o all.i crt0.s main.s     Concatenate two files into all.i
  aspp --out-dir build src/       One .i file per source below src/
  aspp --sync --detect src/       Leading line markers, sniff extensionless files
  aspp --rewrite --preamble a.s   Scope labels and local symbols, with macros`

type processFlags struct {
	ignore     []string
	extensions []string
	summary    bool
}

func newProcessCommand() *cobra.Command {
	var cfg config.Config
	flags := &processFlags{}

	cmd := &cobra.Command{
		Use:     "process [paths...]",
		Aliases: []string{"pp"},
		Short:   "Preprocess assembler sources",
		Long: `Preprocess assembler sources.

Files are processed whatever their extension; directories are searched for
the configured assembler extensions (.s, .S, .asm, .inc by default). Output
is written in argument order to stdout, to a single file (-o), or to one
file per input (--out-dir).

` + processExamples,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args, &cfg, flags)
		},
	}

	addProcessFlags(cmd, &cfg, flags)

	return cmd
}

func addProcessFlags(cmd *cobra.Command, cfg *config.Config, flags *processFlags) {
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "write concatenated output to this file")
	cmd.Flags().StringVar(&cfg.OutputDir, "out-dir", "", "write one preprocessed file per input into this directory")
	cmd.Flags().StringVar(&cfg.OutputExt, "ext", "", "extension of files written to --out-dir (default \".i\")")
	cmd.Flags().StringVar(&cfg.Name, "name", "", "name of standard input in line markers (default \"<stdin>\")")
	cmd.Flags().IntVarP(&cfg.Jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().BoolVar(&cfg.Sync, "sync", false, "emit a leading line marker for each input")
	cmd.Flags().BoolVar(&cfg.Detect, "detect", false, "pick up extensionless files in directories that look like assembler")
	cmd.Flags().BoolVar(&cfg.Rewrite, "rewrite", false, "rewrite labels and .local symbols into scoped-symbol macros")
	cmd.Flags().BoolVar(&cfg.Preamble, "preamble", false, "emit the scoped-symbol macro definitions before each input")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.extensions, "extensions", nil, "assembler extensions searched for in directories")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "print a summary to stderr")
}

func runProcess(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *processFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cmd.Flags().Changed("ignore") {
		cliCfg.Ignore = flags.ignore
	}
	if cmd.Flags().Changed("extensions") {
		cliCfg.Extensions = flags.extensions
	}

	if cliCfg.Output != "" && cliCfg.OutputDir != "" {
		return fmt.Errorf("%w: --output and --out-dir are mutually exclusive", ErrUsage)
	}

	cfg, workDir, err := loadConfig(ctx, cmd, cliCfg)
	if err != nil {
		return err
	}

	logger := logging.Default()
	ctx = logging.WithLogger(ctx, logger)

	if len(args) == 0 {
		if cfg.OutputDir != "" {
			return fmt.Errorf("%w: --out-dir needs file or directory arguments", ErrUsage)
		}
		return processStdin(ctx, cmd, cfg)
	}

	opts := runner.OptionsFromConfig(cfg, args)
	opts.WorkingDir = workDir

	logger.Debug("starting run",
		logging.FieldPaths, opts.Paths,
		logging.FieldWorkingDir, workDir,
		logging.FieldJobs, opts.Jobs,
		logging.FieldSync, opts.Sync,
		logging.FieldDetect, opts.Detect,
		logging.FieldRewrite, cfg.Rewrite,
	)

	result, err := runner.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode(cmd), cmd.ErrOrStderr()))
	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprint(cmd.ErrOrStderr(), styles.FormatFailure(file))
		}
	}

	if cfg.OutputDir != "" {
		err = writeOutputDir(ctx, logger, result, cfg)
	} else {
		err = writeResult(ctx, cmd, result, cfg.Output)
	}
	if err != nil {
		return err
	}

	if flags.summary {
		fmt.Fprint(cmd.ErrOrStderr(), styles.FormatSummaryOneLine(result.Stats))
	}

	if result.HasFailures() {
		return ErrProcessingFailed
	}
	return nil
}

func loadConfig(ctx context.Context, cmd *cobra.Command, cliCfg *config.Config) (*config.Config, string, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, "", errors.Join(errors.New("failed to load configuration"), err)
	}

	logger := logging.Default()
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	return loadResult.Config, workDir, nil
}

func processStdin(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logging.FromContext(ctx).Warn("reading assembler source from the terminal; end input with Ctrl-D")
	}

	name := cfg.Name
	if name == "" {
		name = config.StdinName
	}

	content, err := fsutil.ReadAll(ctx, name, in)
	if err != nil {
		return err
	}

	out := runner.Preprocess(runner.ProcessorFor(cfg), name, string(content), runner.HeaderFor(cfg))

	logging.FromContext(ctx).Debug("processed standard input",
		logging.FieldName, name,
		logging.FieldBytes, len(content),
		logging.FieldLines, out.Line()-1,
	)

	if cfg.Output != "" {
		return fsutil.WriteAtomic(ctx, cfg.Output, []byte(out.String()), 0)
	}
	_, err = out.WriteTo(cmd.OutOrStdout())
	return err
}

func writeResult(ctx context.Context, cmd *cobra.Command, result *runner.Result, outputPath string) error {
	if outputPath == "" {
		if _, err := result.WriteTo(cmd.OutOrStdout()); err != nil {
			return err
		}
		return nil
	}

	var buf bytes.Buffer
	buf.Grow(result.Stats.BytesOut)
	if _, err := result.WriteTo(&buf); err != nil {
		return err
	}
	if err := fsutil.WriteAtomic(ctx, outputPath, buf.Bytes(), 0); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

func writeOutputDir(ctx context.Context, logger *log.Logger, result *runner.Result, cfg *config.Config) error {
	ext := cfg.OutputExt
	if ext == "" {
		ext = config.DefaultOutputExt
	}

	for _, file := range result.Files {
		if file.Error != nil {
			continue
		}

		target := OutputPath(cfg.OutputDir, file.Name, ext)
		written, err := fsutil.WriteAtomicIfChanged(ctx, target, []byte(file.Output), 0)
		if err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}

		if written {
			logger.Debug("wrote output", logging.FieldInput, file.Name, logging.FieldOutput, target)
		} else {
			logger.Debug("output unchanged", logging.FieldInput, file.Name, logging.FieldOutput, target)
		}
	}
	return nil
}

// OutputPath returns where the output for an input displayed as name goes
// below dir: the relative path is kept and the extension replaced by ext.
// Inputs outside the working directory keep only their base name.
func OutputPath(dir, name, ext string) string {
	if filepath.IsAbs(name) {
		name = filepath.Base(name)
	}
	return filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+ext)
}

func colorMode(cmd *cobra.Command) string {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return "auto"
	}
	return mode
}
