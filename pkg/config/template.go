package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a commented configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`# aspp configuration
# See: https://github.com/yaklabco/aspp

# Extensions treated as assembler source when walking directories
extensions:
`)
	for _, ext := range DefaultExtensions() {
		fmt.Fprintf(&buf, "  - %q\n", ext)
	}

	buf.WriteString(`
# File patterns to ignore (glob patterns)
# ignore:
#   - "vendor/**"
#   - "build/**"

# Number of files processed in parallel (0 = auto)
# jobs: 0

# Write one preprocessed file per input into this directory
# output_dir: build/pp

# Extension of files written to output_dir
output_ext: ".i"

# Emit a leading '# 1 "<file>"' line marker for each input
# sync: false

# Detect assembler sources by content when the extension is not listed
# detect: false

# Rewrite "name:" and "name::" labels into scope blocks and ".name"
# operands into L(name) references
# rewrite: false

# Emit the L() and .label macro definitions ahead of each input
# preamble: false
`)

	if strings.EqualFold(opts.Format, "json") {
		return templateToJSON(buf.Bytes())
	}

	return buf.Bytes(), nil
}

// templateToJSON converts the active settings of a YAML template to JSON.
// Comments are lost in the conversion.
func templateToJSON(yamlContent []byte) ([]byte, error) {
	var data map[string]any
	if err := yaml.Unmarshal(yamlContent, &data); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}

	return append(out, '\n'), nil
}
