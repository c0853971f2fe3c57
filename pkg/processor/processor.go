// Package processor implements the table-driven scanner that feeds assembler
// source through an output.Output.
//
// The scanner makes a single pass over a fully materialized input. For each
// character, or end of input, it looks up a Transition in the current state's
// TransitionSet, adopts the next state and performs the transition's Action.
// DefaultTable never rewrites: whatever its actions flush is copied verbatim
// from the input, byte range by byte range. RewriteTable additionally turns
// labels and local symbols into the scoped-symbol macros of package output.
package processor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/aspp/pkg/output"
)

// Processor runs a transition table over assembler source.
// A Processor holds no per-scan state and may be shared between goroutines,
// provided each scan writes to its own Output.
type Processor struct {
	table Table
}

// New creates a Processor for the given table.
func New(table Table) (*Processor, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("new processor: %w", err)
	}
	return &Processor{table: table.Clone()}, nil
}

//nolint:gochecknoglobals // Stateless default instance over the static table.
var defaultProcessor = &Processor{table: defaultTable}

//nolint:gochecknoglobals // Stateless rewriting instance over the static table.
var rewritingProcessor = &Processor{table: rewriteTable}

// Default returns a Processor using DefaultTable.
func Default() *Processor {
	return defaultProcessor
}

// Rewriting returns a Processor using RewriteTable.
func Rewriting() *Processor {
	return rewritingProcessor
}

// Table returns a copy of the processor's transition table.
func (p *Processor) Table() Table {
	return p.table.Clone()
}

// Process scans input to completion, writing everything it recognizes to out.
func (p *Processor) Process(input string, out *output.Output) {
	sc := scanner{
		table: p.table,
		input: input,
		out:   out,
		state: StateInitial,
		prev:  StateInitial,
	}
	sc.run()
}

// Process scans input with the default table.
func Process(input string, out *output.Output) {
	defaultProcessor.Process(input, out)
}

// Run preprocesses input, naming it name in emitted line markers, and returns
// the result.
func Run(name, input string) string {
	out := output.NewWithCapacity(name, len(input))
	Process(input, out)
	return out.String()
}

// scanner is the mutable state of a single scan.
type scanner struct {
	table Table
	input string
	out   *output.Output

	state State
	prev  State // single-slot register for ActionPush / ActionPop

	pos   int // offset of the pending character
	start int // start of the not yet flushed token
	end   int // one past the last consumed byte
}

// run steps until the scan terminates.
func (s *scanner) run() {
	for s.step() {
	}
}

// step resolves exactly one transition and reports whether scanning goes on.
func (s *scanner) step() bool {
	r, width := s.peek()
	eof := width == 0
	tr := s.table.Lookup(s.state, r, eof)

	from := s.state
	s.state = tr.Next

	switch tr.Action {
	case ActionGo:
		s.consume(width)
	case ActionEndLine:
		s.consume(width)
		s.out.WriteRawString(s.yield())
		s.out.AdvanceLine()
	case ActionPush:
		s.push(from, tr.Next)
		s.consume(width)
	case ActionPop:
		s.pop()
		s.consume(width)
	case ActionMark:
		s.flush()
		s.consume(width)
	case ActionDrop:
		s.flush()
		s.consume(width)
		s.start = s.end
	case ActionAgain:
	case ActionLabel:
		s.label(s.yield())
	case ActionGlobal:
		s.consume(width)
		if s.label(s.yield()) {
			s.out.Global()
		}
	case ActionLocal:
		s.local(s.yield())
	case ActionReturn:
		s.flush()
		return false
	}

	// A consuming action on end of input cannot make progress; stop the
	// same way ActionReturn does.
	if eof && tr.Action.consumes() {
		s.flush()
		return false
	}
	return true
}

// peek decodes the pending character. width is zero at end of input. Bytes
// that are not valid UTF-8 decode as utf8.RuneError with width 1, so they
// travel the default path and are copied through unchanged.
func (s *scanner) peek() (rune, int) {
	if s.pos >= len(s.input) {
		return 0, 0
	}
	if c := s.input[s.pos]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRuneInString(s.input[s.pos:])
}

func (s *scanner) consume(width int) {
	s.pos += width
	s.end = s.pos
}

// flush writes out whatever has been consumed since the last flush.
func (s *scanner) flush() {
	if s.start < s.end {
		s.out.WriteRawString(s.yield())
	}
}

// yield returns the pending token and starts a new one.
func (s *scanner) yield() string {
	tok := s.input[s.start:s.end]
	s.start = s.end
	return tok
}

// push remembers from and enters to.
func (s *scanner) push(from, to State) {
	s.prev = from
	s.state = to
}

// label writes a "name:" or "name::" token. Names starting with a dot are
// local labels; the others open a new scope. It reports whether a scope was
// opened.
func (s *scanner) label(tok string) bool {
	name := strings.TrimRight(tok, ":")
	if local, ok := localName(name); ok {
		s.out.WriteLocalLabel(local)
		return false
	}
	if name == "" {
		s.out.WriteRawString(tok)
		return false
	}
	s.out.Label(name)
	return true
}

// local writes a ".name" token as a local symbol reference. A lone dot and
// the operand size suffixes are not symbols and are copied through.
func (s *scanner) local(tok string) {
	if name, ok := localName(tok); ok {
		s.out.WriteLocalSymbol(name)
		return
	}
	s.out.WriteRawString(tok)
}

func localName(tok string) (string, bool) {
	name, ok := strings.CutPrefix(tok, ".")
	if !ok {
		return "", false
	}
	switch name {
	case "", "s", "b", "w", "l":
		return "", false
	}
	return name, true
}

// pop resumes the state saved by the last push.
func (s *scanner) pop() {
	s.state = s.prev
}
