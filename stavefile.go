//go:build stave

package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":     Build,
	"t":     Test.Default,
	"tv":    Test.Verbose,
	"fuzz":  Test.Fuzz,
	"l":     Lint.Default,
	"c":     Check,
	"i":     Install,
	"fmt":   Lint.Fmt,
	"smoke": Bench.Smoke,
}

// Namespace types group related targets.
type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

const (
	binary  = "aspp"
	binPath = "bin/" + binary
	mainPkg = "./cmd/" + binary
)

// ---------------------------------------------------------------------------
// Top-level targets
// ---------------------------------------------------------------------------

// Build compiles bin/aspp with version info, unless it is newer than every
// source file.
func Build() error {
	rebuild, err := target.Dir(binPath, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println(binPath, "is up to date")
		return nil
	}
	fmt.Println("Building", binary+"...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binPath, mainPkg)
}

// Check formats, lints and tests, in that order.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes the binary and coverage reports.
func Clean() error {
	for _, path := range []string{"bin", "coverage.out", "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install runs go install for cmd/aspp.
func Install() error {
	fmt.Println("Installing", binary+"...")
	return sh.RunV("go", "install", "-ldflags", ldflags(), mainPkg)
}

// Uninstall deletes the binary go install produced.
func Uninstall() error {
	path, err := findInstalledBinary(binary)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Println(binary, "is not installed")
			return nil
		}
		return fmt.Errorf("remove binary: %w", err)
	}
	fmt.Println("Removed", path)
	return nil
}

// Deps downloads modules and tidies go.mod.
func Deps() error {
	if err := sh.RunV("go", "mod", "download"); err != nil {
		return err
	}
	return sh.RunV("go", "mod", "tidy")
}

// Coverage runs the tests and opens an HTML coverage report.
func Coverage() error {
	st.Deps(Test.Default)
	if err := sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html"); err != nil {
		return err
	}
	return sh.RunV("open", "coverage.html")
}

// ---------------------------------------------------------------------------
// Test namespace
// ---------------------------------------------------------------------------

// Default runs all tests under gotestsum with the race detector and coverage.
func (Test) Default() error {
	return gotestsum("pkgname-and-test-fails")
}

// Verbose is Default with every test name printed.
func (Test) Verbose() error {
	return gotestsum("standard-verbose")
}

// Fuzz fuzzes the label rewriting scanner for STAVE_FUZZTIME (default 30s).
func (Test) Fuzz() error {
	fuzztime := cmp.Or(os.Getenv("STAVE_FUZZTIME"), "30s")
	fmt.Printf("Fuzzing the rewriting scanner for %s...\n", fuzztime)
	return sh.RunV("go", "test",
		"-run", "^$",
		"-fuzz", "^FuzzRewrite_Totality$",
		"-fuzztime", fuzztime,
		"./pkg/processor",
	)
}

func gotestsum(format string) error {
	nCores := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	return sh.RunV("go",
		"tool", "gotestsum",
		"-f", format,
		"--",
		"-race",
		"-p", nCores,
		"-parallel", nCores,
		"./...",
		"-coverprofile=coverage.out",
		"-covermode=atomic",
	)
}

// ---------------------------------------------------------------------------
// Lint namespace
// ---------------------------------------------------------------------------

// Default runs golangci-lint and applies its fixes.
func (Lint) Default() error {
	return golangciLint("--fix")
}

// CI runs golangci-lint without touching the tree.
func (Lint) CI() error {
	return golangciLint()
}

// Fmt rewrites every Go file with gofmt.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// FmtCheck lists files gofmt would change and fails if there are any.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nrun 'stave fmt'", out)
	}
	return nil
}

// Vet runs go vet, including the stave build tag.
func (Lint) Vet() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "vet", "-tags", "stave", "stavefile.go")
}

func golangciLint(extra ...string) error {
	args := append([]string{"run"}, extra...)
	return sh.RunV("golangci-lint", append(args, "./...")...)
}

// ---------------------------------------------------------------------------
// CI namespace
// ---------------------------------------------------------------------------

// Gate runs every check a pull request must pass.
func (CI) Gate() error {
	st.SerialDeps(
		Lint.FmtCheck,
		Lint.Vet,
		Lint.CI,
		Build,
		Test.Default,
		CI.ModTidy,
		CI.Cross,
	)
	fmt.Println("\n✓ CI gate passed")
	return nil
}

// ModTidy fails when go mod tidy would change go.mod or go.sum.
func (CI) ModTidy() error {
	files := []string{"go.mod", "go.sum"}
	before := make(map[string][]byte, len(files))
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		before[name] = data
	}

	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}

	for _, name := range files {
		after, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s after tidy: %w", name, err)
		}
		if !bytes.Equal(before[name], after) {
			return fmt.Errorf("%s changed after 'go mod tidy'; commit the result", name)
		}
	}
	fmt.Println("✓ go.mod/go.sum are tidy")
	return nil
}

// releasePlatforms are the GOOS/GOARCH pairs aspp is released for.
var releasePlatforms = []string{
	"linux/amd64", "linux/arm64",
	"darwin/amd64", "darwin/arm64",
	"windows/amd64", "windows/arm64",
	"freebsd/amd64", "freebsd/arm64",
	"openbsd/amd64", "netbsd/amd64",
}

// Cross compiles cmd/aspp for every release platform with cgo disabled.
func (CI) Cross() error {
	for _, platform := range releasePlatforms {
		goos, goarch, _ := strings.Cut(platform, "/")
		fmt.Printf("  %s\n", platform)
		env := map[string]string{"GOOS": goos, "GOARCH": goarch, "CGO_ENABLED": "0"}
		if err := sh.RunWith(env, "go", "build", "-o", os.DevNull, mainPkg); err != nil {
			return fmt.Errorf("build %s: %w", platform, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Bench namespace
// ---------------------------------------------------------------------------

// Default runs the Go benchmarks.
func (Bench) Default() error {
	return sh.RunV("go", "test", "-run", "^$", "-bench", ".", "-benchmem", "./...")
}

// Smoke builds aspp and runs it over a generated corpus twice, once plain
// and once with --rewrite --preamble, printing each run summary.
func (Bench) Smoke() error {
	st.Deps(Build)
	dir, err := os.MkdirTemp("", "aspp-bench-")
	if err != nil {
		return fmt.Errorf("create corpus dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := writeCorpus(dir, smokeFiles, smokeLines); err != nil {
		return err
	}

	runs := [][]string{
		{"--sync"},
		{"--rewrite", "--preamble"},
	}
	for i, flags := range runs {
		fmt.Printf("aspp %s over %d files\n", strings.Join(flags, " "), smokeFiles)
		args := append([]string{"--summary", "--out-dir", filepath.Join(dir, fmt.Sprintf("out%d", i))}, flags...)
		if err := sh.RunV(binPath, append(args, dir)...); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers (unexported, not targets)
// ---------------------------------------------------------------------------

// git returns the trimmed output of a git command, or "" outside a checkout.
func git(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags stamps main.version, main.commit and main.date.
func ldflags() string {
	vars := []struct{ name, value string }{
		{"version", cmp.Or(git("describe", "--tags", "--always", "--dirty"), "dev")},
		{"commit", cmp.Or(git("rev-parse", "--short", "HEAD"), "none")},
		{"date", time.Now().UTC().Format(time.RFC3339)},
	}
	flags := make([]string, 0, len(vars))
	for _, v := range vars {
		flags = append(flags, fmt.Sprintf("-X main.%s=%s", v.name, v.value))
	}
	return strings.Join(flags, " ")
}

// findInstalledBinary mirrors where go install puts name: $GOBIN, else
// $GOPATH/bin, else ~/go/bin.
func findInstalledBinary(name string) (string, error) {
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		return filepath.Join(gobin, name), nil
	}
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate home directory: %w", err)
		}
		gopath = filepath.Join(home, "go")
	}
	return filepath.Join(gopath, "bin", name), nil
}

const (
	smokeFiles = 200
	smokeLines = 2000
)

// writeCorpus fills dir with generated sources, each one function split
// into local blocks every 16 lines.
func writeCorpus(dir string, files, lines int) error {
	for i := range files {
		var b strings.Builder
		fmt.Fprintf(&b, "\t.section @.text\nf%d::\n", i)
		for j := range lines {
			if j%16 == 0 {
				fmt.Fprintf(&b, ".b%d:\n", j/16)
			}
			fmt.Fprintf(&b, "\tmove.l d%d, d%d // step %d\n", j%8, (j+1)%8, j)
		}
		b.WriteString("\tdbra d0, .b0\n\trts\n")

		name := filepath.Join(dir, fmt.Sprintf("f%03d.s", i))
		if err := os.WriteFile(name, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
