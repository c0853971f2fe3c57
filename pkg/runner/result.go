package runner

import (
	"fmt"
	"io"
)

// FileOutcome is the result of preprocessing one input.
type FileOutcome struct {
	// Path is the absolute path that was read.
	Path string

	// Name is the display name written into line markers.
	Name string

	// Output is the preprocessed text. Empty if Error is set.
	Output string

	// BytesIn is the size of the input.
	BytesIn int

	// Lines is the number of newline-terminated lines scanned.
	Lines int

	// Error is set if the file could not be read.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesErrored    int
	BytesIn         int
	BytesOut        int
	Lines           int
}

// Result is the overall runner result.
type Result struct {
	// Files holds one outcome per discovered file, in argument order.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasFailures reports whether any file could not be processed.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0
}

// WriteTo writes the outputs of all successful files to w, concatenated in
// argument order.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	if r == nil {
		return 0, nil
	}

	var total int64
	for _, file := range r.Files {
		if file.Error != nil {
			continue
		}
		n, err := io.WriteString(w, file.Output)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write output %s: %w", file.Name, err)
		}
	}
	return total, nil
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.BytesIn += outcome.BytesIn
	r.Stats.BytesOut += len(outcome.Output)
	r.Stats.Lines += outcome.Lines
}
