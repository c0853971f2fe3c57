package processor

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"
)

// State is a lexical context of the scanner.
type State uint8

const (
	// StateInitial handles top-level line content. In the rewriting table it
	// is the start of a statement.
	StateInitial State = iota
	// StateOther forwards characters not specially classified in StateInitial.
	StateOther
	// StateAtEOF is terminal; the only way out of it is ActionReturn.
	StateAtEOF
	// StateHead is the identifier at the start of a statement: a label,
	// an instruction or a directive.
	StateHead
	// StateColon follows "name:" and tells a label from a global label.
	StateColon
	// StateOperands is between the words of a statement's operands.
	StateOperands
	// StateWord is inside an operand word or number that is copied as is.
	StateWord
	// StateLocal is inside a ".name" operand.
	StateLocal
	// StateString is inside a double-quoted string.
	StateString
	// StateEscape follows a backslash inside a string.
	StateEscape
	// StateSlash follows a "/" that may start a "//" comment.
	StateSlash
	// StateRaw copies the rest of the line untouched.
	StateRaw
)

var stateNames = [...]string{
	StateInitial:  "Initial",
	StateOther:    "Other",
	StateAtEOF:    "AtEOF",
	StateHead:     "Head",
	StateColon:    "Colon",
	StateOperands: "Operands",
	StateWord:     "Word",
	StateLocal:    "Local",
	StateString:   "String",
	StateEscape:   "Escape",
	StateSlash:    "Slash",
	StateRaw:      "Raw",
}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Action is the work performed after a transition has been taken.
//
// The zero Action is invalid, so an entry left out of a keyed Transitions
// literal is caught by Validate.
type Action uint8

const (
	actionNone Action = iota
	// ActionGo consumes the pending character and keeps scanning.
	ActionGo
	// ActionEndLine consumes the pending character, flushes the accumulated
	// line as raw text and advances the output line counter.
	ActionEndLine
	// ActionReturn flushes any pending text and stops scanning.
	ActionReturn
	// ActionPush saves the state being left in the previous-state register,
	// then consumes the pending character.
	ActionPush
	// ActionPop restores the state saved by ActionPush, then consumes the
	// pending character.
	ActionPop
	// ActionMark flushes the pending text, then consumes the pending
	// character as the first of a new token.
	ActionMark
	// ActionDrop flushes the pending text, then consumes the pending
	// character without writing it.
	ActionDrop
	// ActionAgain only changes state. The pending character is looked up
	// again in the next state.
	ActionAgain
	// ActionLabel writes the pending "name:" token as a scope label, or
	// ".name:" as a local label. It does not consume.
	ActionLabel
	// ActionGlobal consumes the pending character, which ends a "name::"
	// token, and writes a scope label declared global.
	ActionGlobal
	// ActionLocal writes the pending ".name" token as a local symbol
	// reference. It does not consume.
	ActionLocal

	actionCount
)

var actionNames = [...]string{
	ActionGo:      "Go",
	ActionEndLine: "EndLine",
	ActionReturn:  "Return",
	ActionPush:    "Push",
	ActionPop:     "Pop",
	ActionMark:    "Mark",
	ActionDrop:    "Drop",
	ActionAgain:   "Again",
	ActionLabel:   "Label",
	ActionGlobal:  "Global",
	ActionLocal:   "Local",
}

// String returns the action name.
func (a Action) String() string {
	if a != actionNone && a < actionCount {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// consumes reports whether the action moves past the pending character.
// ActionReturn stops the scan instead.
func (a Action) consumes() bool {
	switch a {
	case ActionAgain, ActionLabel, ActionLocal, ActionReturn:
		return false
	default:
		return true
	}
}

// Reserved transition indices present in every TransitionSet.
const (
	ClassEOF   uint8 = 0
	ClassOther uint8 = 1
)

// asciiSize is the number of 7-bit character codes with their own class slot.
const asciiSize = 128

// Transition is the result of a table lookup.
type Transition struct {
	Next   State
	Action Action
}

// TransitionSet holds the transitions of a single state. Classes maps a 7-bit
// character code to an index into Transitions; everything at or above
// U+0080 uses ClassOther.
type TransitionSet struct {
	Classes     [asciiSize]uint8
	Transitions []Transition
}

// NewTransitionSet builds a TransitionSet. Characters missing from classes are
// assigned ClassOther.
func NewTransitionSet(transitions []Transition, classes map[byte]uint8) TransitionSet {
	set := TransitionSet{Transitions: transitions}
	for i := range set.Classes {
		set.Classes[i] = ClassOther
	}
	for ch, class := range classes {
		if ch < asciiSize {
			set.Classes[ch] = class
		}
	}
	return set
}

// Table is a complete transition table indexed by State.
type Table []TransitionSet

// Sentinel errors returned by Table.Validate.
var (
	// ErrEmptyTable is returned for a table without states.
	ErrEmptyTable = errors.New("transition table has no states")

	// ErrMissingEOF is returned when a state lacks the end-of-input transition.
	ErrMissingEOF = errors.New("missing end-of-input transition")

	// ErrMissingOther is returned when a state lacks the default transition.
	ErrMissingOther = errors.New("missing default transition")

	// ErrMissingTransition is returned for a transition slot left unset.
	ErrMissingTransition = errors.New("missing transition")

	// ErrUnknownAction is returned for an action outside the defined set.
	ErrUnknownAction = errors.New("unknown action")

	// ErrClassOutOfRange is returned when a character maps past the transitions.
	ErrClassOutOfRange = errors.New("character class out of range")

	// ErrUnknownState is returned when a transition targets a missing state.
	ErrUnknownState = errors.New("transition to unknown state")

	// ErrNoProgress is returned when transitions that do not consume lead
	// back to a state already visited for the same character.
	ErrNoProgress = errors.New("transitions loop without consuming input")
)

// Validate checks the structural invariants of the table: every state defines
// the end-of-input and default transitions, no transition slot is left unset,
// every character class resolves to a transition, every transition targets a
// state of the table, and no character can cycle through non-consuming
// transitions.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}

	for i, set := range t {
		state := State(i)

		if len(set.Transitions) <= int(ClassEOF) {
			return fmt.Errorf("state %s: %w", state, ErrMissingEOF)
		}
		if len(set.Transitions) <= int(ClassOther) {
			return fmt.Errorf("state %s: %w", state, ErrMissingOther)
		}

		for n, tr := range set.Transitions {
			switch {
			case tr.Action == actionNone && n == int(ClassEOF):
				return fmt.Errorf("state %s: %w", state, ErrMissingEOF)
			case tr.Action == actionNone && n == int(ClassOther):
				return fmt.Errorf("state %s: %w", state, ErrMissingOther)
			case tr.Action == actionNone:
				return fmt.Errorf("state %s: transition %d: %w", state, n, ErrMissingTransition)
			case tr.Action >= actionCount:
				return fmt.Errorf("state %s: transition %d: %s: %w", state, n, tr.Action, ErrUnknownAction)
			case int(tr.Next) >= len(t):
				return fmt.Errorf("state %s: transition %d -> %s: %w", state, n, tr.Next, ErrUnknownState)
			}
		}

		for ch, class := range set.Classes {
			if int(class) >= len(set.Transitions) {
				return fmt.Errorf("state %s: char %#02x -> %d: %w", state, ch, class, ErrClassOutOfRange)
			}
		}
	}

	return t.checkProgress()
}

// checkProgress follows the non-consuming transitions of every state for
// every distinct input: end of input, each 7-bit character, and one
// character standing for everything at or above U+0080.
func (t Table) checkProgress() error {
	visited := make([]bool, len(t))

	for i := range t {
		for input := -1; input <= asciiSize; input++ {
			r, eof := rune(input), input < 0

			clear(visited)
			state := State(i)
			for {
				visited[state] = true
				tr := t.Lookup(state, r, eof)
				if tr.Action.consumes() || tr.Action == ActionReturn {
					break
				}
				if visited[tr.Next] {
					return fmt.Errorf("state %s: %s -> %s: %w", State(i), describeInput(r, eof), tr.Next, ErrNoProgress)
				}
				state = tr.Next
			}
		}
	}

	return nil
}

func describeInput(r rune, eof bool) string {
	switch {
	case eof:
		return "EOF"
	case r >= asciiSize:
		return "non-ASCII"
	default:
		return describeChar(byte(r))
	}
}

// Clone returns a copy of t that shares no memory with it.
func (t Table) Clone() Table {
	clone := make(Table, len(t))
	for i, set := range t {
		clone[i] = TransitionSet{
			Classes:     set.Classes,
			Transitions: slices.Clone(set.Transitions),
		}
	}
	return clone
}

// MustTable returns t, panicking if it fails validation. It is meant for
// tables built at package initialization.
func MustTable(t Table) Table {
	if err := t.Validate(); err != nil {
		panic(fmt.Sprintf("processor: invalid transition table: %v", err))
	}
	return t
}

// Class returns the transition index for r in the given state. eof selects the
// end-of-input transition and r is ignored.
func (t Table) Class(state State, r rune, eof bool) uint8 {
	if eof {
		return ClassEOF
	}
	if r >= 0 && r < utf8.RuneSelf {
		return t[state].Classes[r]
	}
	return ClassOther
}

// Lookup returns the transition taken from state on r, or on end of input if
// eof is set.
func (t Table) Lookup(state State, r rune, eof bool) Transition {
	set := &t[state]
	return set.Transitions[t.Class(state, r, eof)]
}
