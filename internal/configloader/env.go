package configloader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/aspp/pkg/config"
)

// EnvVarPrefix is the prefix for all aspp environment variables.
const EnvVarPrefix = "ASPP_"

// ErrInvalidEnv is returned when an environment variable cannot be parsed.
var ErrInvalidEnv = errors.New("invalid environment variable")

// envMapping binds one environment variable (without prefix) to a setter.
type envMapping struct {
	suffix      string
	description string
	apply       func(cfg *config.Config, value string) error
}

//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = []envMapping{
	{"EXTENSIONS", "Comma-separated assembler extensions for directory walks", func(cfg *config.Config, v string) error {
		cfg.Extensions = parseSliceValue(v)
		return nil
	}},
	{"IGNORE", "Comma-separated list of ignore patterns", func(cfg *config.Config, v string) error {
		cfg.Ignore = parseSliceValue(v)
		return nil
	}},
	{"JOBS", "Number of parallel workers (0 = auto)", func(cfg *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", v)
		}
		cfg.Jobs = n
		return nil
	}},
	{"OUTPUT_DIR", "Directory receiving one preprocessed file per input", func(cfg *config.Config, v string) error {
		cfg.OutputDir = v
		return nil
	}},
	{"OUTPUT_EXT", "Extension of files written to the output directory", func(cfg *config.Config, v string) error {
		cfg.OutputExt = v
		return nil
	}},
	{"SYNC", "Emit a leading line marker per input: true or false", func(cfg *config.Config, v string) error {
		return parseBool(v, &cfg.Sync)
	}},
	{"DETECT", "Detect assembler sources by content: true or false", func(cfg *config.Config, v string) error {
		return parseBool(v, &cfg.Detect)
	}},
	{"REWRITE", "Rewrite labels and local symbols: true or false", func(cfg *config.Config, v string) error {
		return parseBool(v, &cfg.Rewrite)
	}},
	{"PREAMBLE", "Emit the scoped-symbol macro preamble: true or false", func(cfg *config.Config, v string) error {
		return parseBool(v, &cfg.Preamble)
	}},
}

// LoadFromEnv applies ASPP_* environment variable overrides to cfg.
// Unset and empty variables are ignored.
func LoadFromEnv(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	for _, mapping := range envMappings {
		name := EnvVarPrefix + mapping.suffix
		value, ok := lookup(name)
		if !ok || value == "" {
			continue
		}

		if err := mapping.apply(cfg, value); err != nil {
			return fmt.Errorf("%w %s: %w", ErrInvalidEnv, name, err)
		}
	}

	return nil
}

func parseBool(value string, dst *bool) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("expected true/false/1/0, got %q", value)
	}
	*dst = b
	return nil
}

// parseSliceValue parses a comma-separated string into trimmed, non-empty
// elements.
func parseSliceValue(value string) []string {
	var result []string
	for part := range strings.SplitSeq(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns all supported environment variables in a stable order.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for _, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: EnvVarPrefix + mapping.suffix, Description: mapping.description})
	}
	return vars
}
