// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldJobs      = "jobs"
	FieldOutputDir = "output_dir"
	FieldSync      = "sync"
	FieldRewrite   = "rewrite"
	FieldDetect    = "detect"

	// Processing fields.
	FieldName  = "name"
	FieldBytes = "bytes"
	FieldLines = "lines"
	FieldState = "state"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesErrored    = "files_errored"
	FieldBytesIn         = "bytes_in"
	FieldBytesOut        = "bytes_out"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
