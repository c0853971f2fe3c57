package fsutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/aspp/pkg/fsutil"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("reads content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "boot.s")
		require.NoError(t, os.WriteFile(path, []byte("\tnop\n"), 0o644))

		content, err := fsutil.ReadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "\tnop\n", string(content))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.s"))
		require.ErrorIs(t, err, fsutil.ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.ReadFile(context.Background(), t.TempDir())
		require.ErrorIs(t, err, fsutil.ErrIsDirectory)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fsutil.ReadFile(ctx, "whatever.s")
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestReadAll(t *testing.T) {
	t.Parallel()

	content, err := fsutil.ReadAll(context.Background(), "<stdin>", strings.NewReader("rts"))
	require.NoError(t, err)
	assert.Equal(t, "rts", string(content))

	errBroken := errors.New("broken pipe")
	_, err = fsutil.ReadAll(context.Background(), "<stdin>", iotest.ErrReader(errBroken))
	require.ErrorIs(t, err, errBroken)
	assert.Contains(t, err.Error(), "<stdin>")
}
