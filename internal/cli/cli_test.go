package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/aspp/internal/cli"
	"github.com/yaklabco/aspp/internal/configloader"
	"github.com/yaklabco/aspp/pkg/fsutil"
	"github.com/yaklabco/aspp/pkg/processor"
)

var testInfo = cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-02"}

// project creates an isolated project directory, makes it the working
// directory and keeps user configuration out of the way.
func project(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(dir)

	return dir
}

type execution struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) execution {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCommand(testInfo)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--color", "never"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return execution{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo)

	assert.Equal(t, "aspp", cmd.Name())
	assert.Equal(t, "1.2.3", cmd.Version)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"process", "states", "init", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"output", "out-dir", "ext", "name", "jobs", "sync", "detect", "ignore", "extensions", "summary", "rewrite", "preamble"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "root flag %s", flag)
	}
	for _, flag := range []string{"debug", "config", "color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "persistent flag %s", flag)
	}

	process, _, err := cmd.Find([]string{"pp"})
	require.NoError(t, err)
	assert.Equal(t, "process", process.Name())
}

func TestHelp_ListsEnvironment(t *testing.T) {
	project(t, nil)

	res := execute(t, "", "--help")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "Usage:")
	assert.Contains(t, res.stdout, "Available Commands:")
	assert.Contains(t, res.stdout, "Environment:")
	for _, env := range configloader.ListEnvVars() {
		assert.Contains(t, res.stdout, env.Name)
	}
}

func TestVersionCommand(t *testing.T) {
	project(t, nil)

	res := execute(t, "", "version")
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "aspp")
	assert.Contains(t, res.stdout, "1.2.3")
	assert.Contains(t, res.stdout, "abc123")
	assert.Contains(t, res.stdout, "2026-01-02")
}

func TestVersionCommand_RejectsArguments(t *testing.T) {
	project(t, nil)

	res := execute(t, "", "version", "extra")
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(res.err))
}

func TestStatesCommand_JSON(t *testing.T) {
	project(t, nil)

	res := execute(t, "", "states", "--format", "json")
	require.NoError(t, res.err)

	var states []processor.StateDescription
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &states))
	assert.Equal(t, processor.Default().Table().Describe(), states)
}

func TestStatesCommand_Text(t *testing.T) {
	project(t, nil)

	res := execute(t, "", "states")
	require.NoError(t, res.err)

	for _, state := range processor.Default().Table().Describe() {
		assert.Contains(t, res.stdout, state.State)
	}
}

func TestStatesCommand_Rewrite(t *testing.T) {
	project(t, nil)

	res := execute(t, "", "states", "--rewrite", "--format", "json")
	require.NoError(t, res.err)

	var states []processor.StateDescription
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &states))
	assert.Equal(t, processor.RewriteTable().Describe(), states)
	assert.NotEqual(t, processor.DefaultTable().Describe(), states)
}

func TestStatesCommand_InvalidFormat(t *testing.T) {
	project(t, nil)

	res := execute(t, "", "states", "--format", "xml")
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(res.err))
}

func TestInitCommand(t *testing.T) {
	dir := project(t, nil)

	res := execute(t, "", "init")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "created configuration file")

	content, err := os.ReadFile(filepath.Join(dir, ".aspp.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "extensions:")

	res = execute(t, "", "init")
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(res.err))

	res = execute(t, "", "init", "--force")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "overwriting existing file")
}

func TestInitCommand_JSON(t *testing.T) {
	dir := project(t, nil)

	res := execute(t, "", "init", "--format", "json")
	require.NoError(t, res.err)

	content, err := os.ReadFile(filepath.Join(dir, ".aspp.json"))
	require.NoError(t, err)
	assert.True(t, json.Valid(content))
}

func TestProcess_FilesToStdout(t *testing.T) {
	project(t, map[string]string{
		"a.s": "nop ; first\n",
		"b.s": "rts\n",
	})

	res := execute(t, "", "b.s", "a.s")
	require.NoError(t, res.err)
	assert.Equal(t, "rts\nnop ; first\n", res.stdout)

	res = execute(t, "", "process", "--sync", "a.s")
	require.NoError(t, res.err)
	assert.Equal(t, "# 1 \"a.s\"\nnop ; first\n", res.stdout)
}

func TestProcess_Stdin(t *testing.T) {
	project(t, nil)

	res := execute(t, "mov r0, r1\n")
	require.NoError(t, res.err)
	assert.Equal(t, "mov r0, r1\n", res.stdout)

	res = execute(t, "mov r0, r1\n", "--sync", "--name", "boot.s")
	require.NoError(t, res.err)
	assert.Equal(t, "# 1 \"boot.s\"\nmov r0, r1\n", res.stdout)

	res = execute(t, "nop", "--sync")
	require.NoError(t, res.err)
	assert.Equal(t, "# 1 \"<stdin>\"\nnop", res.stdout)
}

func TestProcess_Rewrite(t *testing.T) {
	project(t, map[string]string{"a.s": ".top:\tbra .top\n"})

	res := execute(t, "", "a.s")
	require.NoError(t, res.err)
	assert.Equal(t, ".top:\tbra .top\n", res.stdout)

	res = execute(t, "", "--rewrite", "a.s")
	require.NoError(t, res.err)
	assert.Equal(t, "L(top):\tbra L(top)\n", res.stdout)

	res = execute(t, "", "--rewrite", "--preamble", "a.s")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "# 1 \"(aspp)\"\n"), res.stdout)
	assert.Contains(t, res.stdout, "#define L(name)")
	assert.True(t, strings.HasSuffix(res.stdout, "# 1 \"a.s\"\nL(top):\tbra L(top)\n"), res.stdout)
}

func TestProcess_RewriteFromEnvironment(t *testing.T) {
	project(t, nil)
	t.Setenv("ASPP_REWRITE", "true")

	res := execute(t, "\tjmp .out\n")
	require.NoError(t, res.err)
	assert.Equal(t, "\tjmp L(out)\n", res.stdout)
}

func TestProcess_OutputFile(t *testing.T) {
	dir := project(t, map[string]string{
		"a.s": "one\n",
		"b.s": "two\n",
	})

	res := execute(t, "", "-o", "out/all.i", "a.s", "b.s")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	content, err := os.ReadFile(filepath.Join(dir, "out", "all.i"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(content))
}

func TestProcess_OutputDir(t *testing.T) {
	dir := project(t, map[string]string{
		"src/a.s":       "one\n",
		"src/sub/b.asm": "two\n",
		"src/notes.txt": "skip\n",
	})

	res := execute(t, "", "--out-dir", "build", "src")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	content, err := os.ReadFile(filepath.Join(dir, "build", "src", "a.i"))
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(content))

	content, err = os.ReadFile(filepath.Join(dir, "build", "src", "sub", "b.i"))
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(content))

	assert.NoFileExists(t, filepath.Join(dir, "build", "src", "notes.i"))
}

func TestProcess_ProjectConfig(t *testing.T) {
	project(t, map[string]string{
		".aspp.yml": "sync: true\n",
		"a.s":       "nop\n",
	})

	res := execute(t, "", "a.s")
	require.NoError(t, res.err)
	assert.Equal(t, "# 1 \"a.s\"\nnop\n", res.stdout)
}

func TestProcess_InvalidConfig(t *testing.T) {
	project(t, map[string]string{
		".aspp.yml": "jobs: -3\n",
		"a.s":       "nop\n",
	})

	res := execute(t, "", "a.s")
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(res.err))
}

func TestProcess_Summary(t *testing.T) {
	project(t, map[string]string{"a.s": "nop\n"})

	res := execute(t, "", "--summary", "a.s")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Preprocessed 1 file")
}

func TestProcess_UsageErrors(t *testing.T) {
	project(t, map[string]string{"a.s": "nop\n"})

	tests := []struct {
		name string
		args []string
	}{
		{"output and out-dir", []string{"-o", "x.i", "--out-dir", "build", "a.s"}},
		{"out-dir with stdin", []string{"--out-dir", "build"}},
		{"unknown flag", []string{"--no-such-flag", "a.s"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			res := execute(t, "", testCase.args...)
			require.Error(t, res.err)
			assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(res.err))
		})
	}
}

func TestProcess_MissingInput(t *testing.T) {
	project(t, map[string]string{"a.s": "nop\n"})

	res := execute(t, "", "a.s", "missing.s")
	require.Error(t, res.err)
	assert.NotEqual(t, cli.ExitSuccess, cli.ExitCode(res.err))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"processing", cli.ErrProcessingFailed, cli.ExitProcessingErrors},
		{"usage", fmt.Errorf("%w: bad flag", cli.ErrUsage), cli.ExitInvalidUsage},
		{"config", fmt.Errorf("%w: jobs", configloader.ErrInvalidConfig), cli.ExitConfigError},
		{"env", fmt.Errorf("%w: ASPP_JOBS", configloader.ErrInvalidEnv), cli.ExitConfigError},
		{"not found", fmt.Errorf("read: %w", fsutil.ErrNotFound), cli.ExitIOError},
		{"permission", fmt.Errorf("read: %w", os.ErrPermission), cli.ExitIOError},
		{"other", errors.New("boom"), cli.ExitInternalError},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, cli.ExitCode(testCase.err))
		})
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("build", "src", "a.i"), cli.OutputPath("build", filepath.Join("src", "a.s"), ".i"))
	assert.Equal(t, filepath.Join("build", "boot.o.i"), cli.OutputPath("build", "boot.o.S", ".i"))
	assert.Equal(t, filepath.Join("build", "crt0.i"), cli.OutputPath("build", "/elsewhere/crt0.s", ".i"))
	assert.Equal(t, filepath.Join("build", "start.i"), cli.OutputPath("build", "start", ".i"))
}
