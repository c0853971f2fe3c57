package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/aspp/internal/logging"
	"github.com/yaklabco/aspp/pkg/fsutil"
	"github.com/yaklabco/aspp/pkg/output"
	"github.com/yaklabco/aspp/pkg/processor"
)

// Run discovers files under opts.Paths and preprocesses them concurrently.
// Outcomes come back in discovery order no matter which worker finished
// first, so concatenating them reproduces a sequential run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	logger.Debug("processing files",
		logging.FieldFilesDiscovered, len(files),
		logging.FieldJobs, jobs,
	)

	proc := opts.effectiveProcessor()

	type job struct {
		index int
		path  string
	}
	type done struct {
		index   int
		outcome FileOutcome
	}

	workCh := make(chan job)
	outCh := make(chan done)

	var wg sync.WaitGroup
	for range jobs {
		wg.Go(func() {
			for work := range workCh {
				outcome := processFile(ctx, proc, work.path, displayName(workDir, work.path), opts.header())
				select {
				case <-ctx.Done():
					return
				case outCh <- done{index: work.index, outcome: outcome}:
				}
			}
		})
	}

	go func() {
		defer close(workCh)
		for i, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- job{index: i, path: path}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make([]*FileOutcome, len(files))
	for d := range outCh {
		outcomes[d.index] = &d.outcome
	}

	for _, outcome := range outcomes {
		if outcome == nil {
			continue
		}
		if outcome.Error != nil {
			logger.Debug("file failed", logging.FieldPath, outcome.Path, logging.FieldError, outcome.Error)
		}
		result.accumulate(*outcome)
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	logger.Debug("processing complete",
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesErrored, result.Stats.FilesErrored,
		logging.FieldBytesIn, result.Stats.BytesIn,
		logging.FieldBytesOut, result.Stats.BytesOut,
	)

	return result, nil
}

func processFile(ctx context.Context, proc *processor.Processor, path, name string, header Header) FileOutcome {
	outcome := FileOutcome{Path: path, Name: name}
	ctx = logging.WithFields(ctx, logging.FieldPath, name)

	content, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	logging.FromContext(ctx).Debug("read input", logging.FieldBytesIn, len(content))

	outcome.BytesIn = len(content)
	out := Preprocess(proc, name, string(content), header)
	outcome.Output = out.String()
	outcome.Lines = out.Line() - 1

	return outcome
}

// Preprocess scans input into a fresh emitter named name, after the header.
// A nil proc means processor.Default().
func Preprocess(proc *processor.Processor, name, input string, header Header) *output.Output {
	if proc == nil {
		proc = processor.Default()
	}

	out := output.NewWithCapacity(name, len(input)+len(name)+8)
	switch header {
	case HeaderPreamble:
		out.Preamble()
	case HeaderSync:
		out.LineMarker()
	case HeaderNone:
	}
	proc.Process(input, out)

	return out
}
