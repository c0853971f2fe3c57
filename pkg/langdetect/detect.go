// Package langdetect decides whether a file holds assembler source when its
// extension alone does not say so. It combines go-enry's shebang, extension
// and classifier strategies with a line-shape heuristic for assembler.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names returned by Detect.
const (
	LangAssembly = "assembly"
	LangText     = "text"
)

// minAssemblyLines is the number of directive or label lines needed before
// content is taken to be assembler.
const minAssemblyLines = 2

// Classifier candidates; enry's assembler dialects all contain "Assembly".
//
//nolint:gochecknoglobals // read-only candidate list
var candidates = []string{
	"Assembly", "Unix Assembly", "Motorola 68K Assembly",
	"C", "C++", "Go", "Python", "Shell", "Makefile", "Text",
}

// Detect returns a lower-case language name for content read from path.
// Any assembler dialect is reported as LangAssembly. LangText is returned
// when nothing matches with confidence.
func Detect(path string, content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return LangText
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if path != "" {
		if lang, safe := enry.GetLanguageByExtension(path); safe {
			return normalize(lang)
		}
	}

	if looksLikeAssembly(content) {
		return LangAssembly
	}

	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe && lang != "" {
		return normalize(lang)
	}

	return LangText
}

// IsAssembly reports whether content read from path is assembler source.
func IsAssembly(path string, content []byte) bool {
	return Detect(path, content) == LangAssembly
}

// looksLikeAssembly counts lines shaped like assembler directives
// (".section", ".byte") or labels ("loop:", "1:") and gives up on the first
// line that looks like a C-family block or statement.
func looksLikeAssembly(content []byte) bool {
	var hits int

	for line := range bytes.Lines(content) {
		if i := bytes.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '#' {
			continue
		}

		if isCFamily(trimmed) {
			return false
		}

		switch {
		case isDirective(trimmed):
			hits++
		case line[0] != ' ' && line[0] != '\t' && isLabel(trimmed):
			hits++
		}
	}

	return hits >= minAssemblyLines
}

func isCFamily(line []byte) bool {
	last := line[len(line)-1]
	return last == '{' || last == '}' || bytes.HasSuffix(line, []byte(");"))
}

func isDirective(line []byte) bool {
	return len(line) > 1 && line[0] == '.' && isLetter(line[1])
}

func isLabel(line []byte) bool {
	name, ok := bytes.CutSuffix(line, []byte(":"))
	if !ok || len(name) == 0 {
		return false
	}
	for _, c := range name {
		if !isLetter(c) && !isDigit(c) && c != '_' && c != '.' && c != '$' {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// normalize folds go-enry language names into Detect's vocabulary.
func normalize(lang string) string {
	lower := strings.ToLower(lang)
	if strings.Contains(lower, LangAssembly) {
		return LangAssembly
	}
	return lower
}
