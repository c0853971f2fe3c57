// Package runner preprocesses many assembler sources in one run: it expands
// directory arguments, scans files concurrently and hands the outputs back in
// argument order.
package runner

import (
	"github.com/yaklabco/aspp/pkg/config"
	"github.com/yaklabco/aspp/pkg/processor"
)

// Options controls a multi-file run.
type Options struct {
	// Paths are the user-specified files or directories, in the order their
	// output should appear. If empty, defaults to the working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths and
	// to shorten display names. If empty, the process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (with leading dot) picked up
	// when walking a directory. Defaults to config.DefaultExtensions().
	// Files named explicitly in Paths are processed whatever their extension.
	Extensions []string

	// ExcludeGlobs are glob patterns used to skip files or directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Detect also picks up extensionless files inside directories whose
	// content looks like assembler.
	Detect bool

	// Sync emits a leading line marker before each file's output.
	Sync bool

	// Preamble emits the scoped-symbol macro definitions before each file's
	// output. It implies Sync.
	Preamble bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Processor scans each file. Nil means processor.Default().
	Processor *processor.Processor
}

// Header selects what is written ahead of an input's text.
type Header uint8

const (
	// HeaderNone writes nothing.
	HeaderNone Header = iota
	// HeaderSync writes a line marker for the first line.
	HeaderSync
	// HeaderPreamble writes the macro preamble and then a line marker.
	HeaderPreamble
)

// OptionsFromConfig builds Options for paths from a resolved configuration.
func OptionsFromConfig(cfg *config.Config, paths []string) Options {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Options{
		Paths:        paths,
		Extensions:   cfg.Extensions,
		ExcludeGlobs: cfg.Ignore,
		Detect:       cfg.Detect,
		Sync:         cfg.Sync,
		Preamble:     cfg.Preamble,
		Jobs:         cfg.Jobs,
		Processor:    ProcessorFor(cfg),
	}
}

// ProcessorFor returns the processor a configuration asks for.
func ProcessorFor(cfg *config.Config) *processor.Processor {
	if cfg != nil && cfg.Rewrite {
		return processor.Rewriting()
	}
	return processor.Default()
}

// HeaderFor returns the header a configuration asks for.
func HeaderFor(cfg *config.Config) Header {
	if cfg == nil {
		return HeaderNone
	}
	return Options{Sync: cfg.Sync, Preamble: cfg.Preamble}.header()
}

func (o Options) header() Header {
	switch {
	case o.Preamble:
		return HeaderPreamble
	case o.Sync:
		return HeaderSync
	default:
		return HeaderNone
	}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return config.DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

func (o Options) effectiveProcessor() *processor.Processor {
	if o.Processor == nil {
		return processor.Default()
	}
	return o.Processor
}
