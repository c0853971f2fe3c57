package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/aspp/internal/configloader"
	"github.com/yaklabco/aspp/pkg/fsutil"
)

// Exit codes for aspp.
const (
	// ExitSuccess indicates every input was preprocessed.
	ExitSuccess = 0

	// ExitProcessingErrors indicates at least one input could not be processed.
	ExitProcessingErrors = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrProcessingFailed is returned when some inputs could not be processed.
	// The failures have already been reported.
	ErrProcessingFailed = errors.New("one or more inputs could not be processed")

	// ErrUsage marks invalid command-line usage.
	ErrUsage = errors.New("invalid usage")
)

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrProcessingFailed):
		return ExitProcessingErrors
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, configloader.ErrInvalidConfig), errors.Is(err, configloader.ErrInvalidEnv):
		return ExitConfigError
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
