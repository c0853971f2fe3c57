package processor

import "fmt"

// StateDescription is a readable rendering of one state's transitions.
type StateDescription struct {
	State       string                  `json:"state"`
	Transitions []TransitionDescription `json:"transitions"`
}

// TransitionDescription lists the characters that select a transition.
// Class is "EOF", "other" or the numeric class index.
type TransitionDescription struct {
	Class  string   `json:"class"`
	Chars  []string `json:"chars,omitempty"`
	Next   string   `json:"next"`
	Action string   `json:"action"`
}

// Describe renders the table for display. The default class lists no
// characters: it covers everything not listed elsewhere, including all of
// U+0080 and above.
func (t Table) Describe() []StateDescription {
	states := make([]StateDescription, 0, len(t))

	for i, set := range t {
		desc := StateDescription{
			State:       State(i).String(),
			Transitions: make([]TransitionDescription, 0, len(set.Transitions)),
		}

		for n, tr := range set.Transitions {
			class := uint8(n) //nolint:gosec // bounded by Validate
			td := TransitionDescription{
				Class:  describeClass(class),
				Next:   tr.Next.String(),
				Action: tr.Action.String(),
			}
			if class != ClassEOF && class != ClassOther {
				for ch, c := range set.Classes {
					if c == class {
						td.Chars = append(td.Chars, describeChar(byte(ch)))
					}
				}
			}
			desc.Transitions = append(desc.Transitions, td)
		}

		states = append(states, desc)
	}

	return states
}

func describeClass(class uint8) string {
	switch class {
	case ClassEOF:
		return "EOF"
	case ClassOther:
		return "other"
	default:
		return fmt.Sprintf("%d", class)
	}
}

func describeChar(ch byte) string {
	switch ch {
	case '\t':
		return `\t`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case ' ':
		return "SP"
	}
	if ch < ' ' || ch == 0x7f {
		return fmt.Sprintf(`\x%02x`, ch)
	}
	return string(rune(ch))
}
