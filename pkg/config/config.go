// Package config defines core configuration types for aspp.
// These types are pure data structures with no dependency on the loaders
// that fill them in.
package config

// OutputFormat specifies how the states command renders transition tables.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Config is the root configuration structure for aspp.
type Config struct {
	// Extensions lists the file extensions (with leading dot) treated as
	// assembler source when a directory is given as input.
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`

	// Ignore contains glob patterns for files and directories to skip.
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`

	// Jobs is the number of files preprocessed in parallel (0 = auto).
	Jobs int `mapstructure:"jobs" yaml:"jobs"`

	// OutputDir, when set, receives one preprocessed file per input instead
	// of concatenated output.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// OutputExt is the extension given to files written to OutputDir.
	OutputExt string `mapstructure:"output_ext" yaml:"output_ext"`

	// Sync emits a leading line marker for each input.
	Sync bool `mapstructure:"sync" yaml:"sync"`

	// Detect enables content-based detection of assembler files whose
	// extension is not listed in Extensions.
	Detect bool `mapstructure:"detect" yaml:"detect"`

	// Rewrite turns labels and local symbols into scoped-symbol macros
	// instead of copying the source through.
	Rewrite bool `mapstructure:"rewrite" yaml:"rewrite"`

	// Preamble emits the macro definitions the rewritten output relies on
	// ahead of each input. It implies a leading line marker.
	Preamble bool `mapstructure:"preamble" yaml:"preamble"`

	// CLI-level options (not persisted to config files).

	// Name is the display name used in line markers for standard input.
	Name string `mapstructure:"-" yaml:"-"`

	// Output is a single file receiving the concatenated output.
	Output string `mapstructure:"-" yaml:"-"`
}

// StdinName is the display name used for standard input by default.
const StdinName = "<stdin>"

// DefaultOutputExt is the extension for files written to an output directory.
const DefaultOutputExt = ".i"

// DefaultExtensions returns the default set of assembler source extensions.
func DefaultExtensions() []string {
	return []string{".s", ".S", ".asm", ".inc"}
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Extensions: DefaultExtensions(),
		Ignore:     nil,
		Jobs:       0, // 0 means use runtime.NumCPU
		OutputExt:  DefaultOutputExt,
		Name:       StdinName,
	}
}
