// Package output provides the append-only text buffer that preprocessed
// assembler is written to. Besides raw text it knows how to emit the
// scoped-symbol macro protocol understood by the downstream assembler:
//
//	L(name)              reference to a symbol local to the current scope
//	L(name):             definition of a local label
//	#define scope <line> binding of the current scope, one per labeled block
//	# <line> "<file>"    line marker for diagnostic remapping
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Output accumulates preprocessed text. It tracks the display name of the
// source being processed and the current source line, both of which appear in
// emitted line markers.
//
// The zero value is not usable; create one with New.
type Output struct {
	text strings.Builder
	name string
	line int
}

// New creates an Output for the source with the given display name.
// The line counter starts at 1.
func New(name string) *Output {
	return &Output{name: name, line: 1}
}

// NewWithCapacity creates an Output whose buffer is pre-sized for capacity bytes.
func NewWithCapacity(name string, capacity int) *Output {
	out := New(name)
	if capacity > 0 {
		out.text.Grow(capacity)
	}
	return out
}

// Name returns the display name used in line markers.
func (o *Output) Name() string {
	return o.name
}

// Line returns the current source line number (1-based).
func (o *Output) Line() int {
	return o.line
}

// String returns the text accumulated so far.
func (o *Output) String() string {
	return o.text.String()
}

// Len returns the number of bytes accumulated so far.
func (o *Output) Len() int {
	return o.text.Len()
}

// AdvanceLine moves the line counter to the next source line.
func (o *Output) AdvanceLine() {
	o.line++
}

// WriteRawString appends s verbatim.
func (o *Output) WriteRawString(s string) {
	o.text.WriteString(s)
}

// WriteRawRune appends r verbatim.
func (o *Output) WriteRawRune(r rune) {
	o.text.WriteRune(r)
}

// Write implements io.Writer. It never fails.
func (o *Output) Write(p []byte) (int, error) {
	return o.text.Write(p)
}

// WriteString implements io.StringWriter. It never fails.
func (o *Output) WriteString(s string) (int, error) {
	return o.text.WriteString(s)
}

// WriteLocalSymbol emits a reference to a symbol local to the current scope.
func (o *Output) WriteLocalSymbol(name string) {
	o.text.WriteString("L(")
	o.text.WriteString(name)
	o.text.WriteString(")")
}

// WriteLocalLabel emits the definition of a label local to the current scope.
func (o *Output) WriteLocalLabel(name string) {
	o.text.WriteString("L(")
	o.text.WriteString(name)
	o.text.WriteString("):")
}

// Label enters a new labeled scope. The scope macro is rebound to the current
// line number, which makes every binding unique within a file, and the
// assembler's .label directive is applied to it. The block starts on a fresh
// line and ends without a newline so the instruction that follows lands on
// the .label line.
func (o *Output) Label(name string) {
	line := strconv.Itoa(o.line)

	o.text.WriteString("\n; SCOPE: ")
	o.text.WriteString(name)
	o.text.WriteString("\n#ifdef scope\n#undef scope\n#endif\n#define scope ")
	o.text.WriteString(line)
	o.text.WriteString("\n")
	o.writeMarker(line)
	o.text.WriteString(".label scope;")
}

// Global declares the current scope binding as a global symbol. The binding
// itself is left untouched.
func (o *Output) Global() {
	o.text.WriteString("\n")
	o.writeMarker(strconv.Itoa(o.line))
	o.text.WriteString(".global scope;")
}

// preamble defines the macros the scoped-symbol protocol relies on. L(name)
// pastes the current scope binding into a private assembler symbol, and the
// default .label macro turns a scope binding into a numeric label.
const preamble = `# 1 "(aspp)"
#define aspp_cat(a, b, c)  a##b##c
#define aspp_xcat(a, b, c) aspp_cat(a, b, c)
#define L(name)            .aspp_xcat(L, scope, $##name)

.macro .label name:req
\name\():
.endm

`

// Preamble emits the protocol macro definitions followed by a line marker
// for the current line.
func (o *Output) Preamble() {
	o.text.WriteString(preamble)
	o.LineMarker()
}

// LineMarker emits a standalone line marker for the current line, terminated
// by a newline.
func (o *Output) LineMarker() {
	o.writeMarker(strconv.Itoa(o.line))
}

func (o *Output) writeMarker(line string) {
	o.text.WriteString("# ")
	o.text.WriteString(line)
	o.text.WriteString(" ")
	o.text.WriteString(strconv.Quote(o.name))
	o.text.WriteString("\n")
}

// WriteTo writes the accumulated text to w.
func (o *Output) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, o.text.String())
	if err != nil {
		return int64(n), fmt.Errorf("write output %s: %w", o.name, err)
	}
	return int64(n), nil
}
