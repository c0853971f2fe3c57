package runner

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrBadPattern is returned by ValidateGlob for malformed patterns.
var ErrBadPattern = errors.New("malformed glob pattern")

// MatchGlob reports whether relPath matches pattern. Besides path.Match
// syntax it understands "**" for any number of path components:
// "vendor/**", "**/gen", "**/*.inc" and "src/**/boot.s". A pattern without a
// slash also matches against the base name.
func MatchGlob(relPath, pattern string) bool {
	relPath = filepath.ToSlash(relPath)
	pattern = filepath.ToSlash(pattern)

	if strings.Contains(pattern, "**") {
		return matchDoubleStar(strings.Split(relPath, "/"), strings.Split(pattern, "/"))
	}

	if matched, err := path.Match(pattern, relPath); err == nil && matched {
		return true
	}
	if strings.Contains(pattern, "/") {
		return false
	}
	matched, err := path.Match(pattern, path.Base(relPath))
	return err == nil && matched
}

// ValidateGlob reports whether pattern is well-formed.
func ValidateGlob(pattern string) error {
	for segment := range strings.SplitSeq(filepath.ToSlash(pattern), "/") {
		if segment == "**" {
			continue
		}
		if _, err := path.Match(segment, ""); err != nil {
			return fmt.Errorf("%w: %q", ErrBadPattern, pattern)
		}
	}
	return nil
}

// matchDoubleStar matches path components against pattern components, where
// a "**" component consumes zero or more path components.
func matchDoubleStar(parts, pattern []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]
		if head == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := range len(parts) + 1 {
				if matchDoubleStar(parts[i:], rest) {
					return true
				}
			}
			return false
		}

		if len(parts) == 0 {
			return false
		}
		if matched, err := path.Match(head, parts[0]); err != nil || !matched {
			return false
		}
		parts, pattern = parts[1:], pattern[1:]
	}
	return len(parts) == 0
}
