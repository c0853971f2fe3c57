package runner_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/aspp/pkg/config"
	"github.com/yaklabco/aspp/pkg/fsutil"
	"github.com/yaklabco/aspp/pkg/output"
	"github.com/yaklabco/aspp/pkg/processor"
	"github.com/yaklabco/aspp/pkg/runner"
)

func TestRun_NoFiles(t *testing.T) {
	t.Parallel()

	result, err := runner.Run(context.Background(), runner.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)

	assert.Empty(t, result.Files)
	assert.Zero(t, result.Stats.FilesDiscovered)
	assert.False(t, result.HasFailures())
}

func TestRun_ConcatenatesInArgumentOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"c.s": "third\n",
		"a.s": "first ; one\n",
		"b.s": "second",
	})

	opts := runner.Options{
		Paths:      []string{"a.s", "b.s", "c.s"},
		WorkingDir: dir,
		Jobs:       3,
	}

	result, err := runner.Run(context.Background(), opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = result.WriteTo(&buf)
	require.NoError(t, err)

	assert.Equal(t, "first ; one\nsecondthird\n", buf.String())
	assert.Equal(t, 3, result.Stats.FilesProcessed)
	assert.Equal(t, len("first ; one\nsecondthird\n"), result.Stats.BytesIn)
	assert.Equal(t, result.Stats.BytesIn, result.Stats.BytesOut)
	assert.Equal(t, 2, result.Stats.Lines)
}

func TestRun_Sync(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.s":     "nop\n",
		"sub/b.s": "rts\n",
	})

	opts := runner.Options{
		Paths:      []string{"a.s", "sub"},
		WorkingDir: dir,
		Sync:       true,
	}

	result, err := runner.Run(context.Background(), opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = result.WriteTo(&buf)
	require.NoError(t, err)

	want := "# 1 \"a.s\"\nnop\n# 1 \"" + filepath.Join("sub", "b.s") + "\"\nrts\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, "a.s", result.Files[0].Name)
}

func TestRun_SerialVsParallelConsistency(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := make(map[string]string)
	for i := range 40 {
		name := filepath.Join("src", string(rune('a'+i%26))+strings.Repeat("x", i/26)+".s")
		files[name] = strings.Repeat("\tmove.l d0, d1 ; copy\n", i+1)
	}
	writeTree(t, dir, files)

	run := func(jobs int) string {
		result, err := runner.Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: jobs, Sync: true})
		require.NoError(t, err)
		require.Equal(t, 40, result.Stats.FilesProcessed)

		var buf bytes.Buffer
		_, err = result.WriteTo(&buf)
		require.NoError(t, err)
		return buf.String()
	}

	serial := run(1)
	for range 5 {
		assert.Equal(t, serial, run(8))
	}
}

func TestResult_FailedFilesAreSkipped(t *testing.T) {
	t.Parallel()

	result := &runner.Result{
		Files: []runner.FileOutcome{
			{Name: "ok.s", Output: "nop\n"},
			{Name: "gone.s", Error: fsutil.ErrNotFound},
			{Name: "tail.s", Output: "rts\n"},
		},
		Stats: runner.Stats{FilesProcessed: 2, FilesErrored: 1},
	}

	assert.True(t, result.HasFailures())

	var buf bytes.Buffer
	n, err := result.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "nop\nrts\n", buf.String())
	assert.Equal(t, int64(8), n)

	var nilResult *runner.Result
	assert.False(t, nilResult.HasFailures())
}

func TestRun_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.s": "nop\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, runner.Options{WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResult_WriteToError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.s": "nop\n"})

	result, err := runner.Run(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)

	errFull := errors.New("disk full")
	_, err = result.WriteTo(writerFunc(func([]byte) (int, error) { return 0, errFull }))
	require.ErrorIs(t, err, errFull)
	assert.Contains(t, err.Error(), "a.s")

	var nilResult *runner.Result
	n, err := nilResult.WriteTo(&bytes.Buffer{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	out := runner.Preprocess(nil, "<stdin>", "a\nb", runner.HeaderSync)
	assert.Equal(t, "# 1 \"<stdin>\"\na\nb", out.String())
	assert.Equal(t, 2, out.Line())

	out = runner.Preprocess(nil, "<stdin>", "a\n", runner.HeaderNone)
	assert.Equal(t, "a\n", out.String())
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Ignore = []string{"vendor/**"}
	cfg.Jobs = 4
	cfg.Sync = true
	cfg.Detect = true

	opts := runner.OptionsFromConfig(cfg, []string{"src"})
	assert.Equal(t, []string{"src"}, opts.Paths)
	assert.Equal(t, cfg.Extensions, opts.Extensions)
	assert.Equal(t, cfg.Ignore, opts.ExcludeGlobs)
	assert.Equal(t, 4, opts.Jobs)
	assert.True(t, opts.Sync)
	assert.True(t, opts.Detect)

	assert.Equal(t, config.DefaultExtensions(), runner.OptionsFromConfig(nil, nil).Extensions)
	assert.Same(t, processor.Default(), opts.Processor)
	assert.Equal(t, runner.HeaderSync, runner.HeaderFor(cfg))

	cfg.Rewrite = true
	cfg.Preamble = true
	opts = runner.OptionsFromConfig(cfg, nil)
	assert.Same(t, processor.Rewriting(), opts.Processor)
	assert.True(t, opts.Preamble)
	assert.Equal(t, runner.HeaderPreamble, runner.HeaderFor(cfg))
	assert.Equal(t, runner.HeaderNone, runner.HeaderFor(nil))
}

func TestRun_RewriteWithPreamble(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.s": ".top:\tbra .top\n",
	})

	opts := runner.Options{
		Paths:      []string{"a.s"},
		WorkingDir: dir,
		Preamble:   true,
		Processor:  processor.Rewriting(),
	}

	result, err := runner.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	out := output.New("a.s")
	out.Preamble()
	assert.Equal(t, out.String()+"L(top):\tbra L(top)\n", result.Files[0].Output)
	assert.Equal(t, 1, result.Stats.Lines)
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
