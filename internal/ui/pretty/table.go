package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/aspp/pkg/processor"
)

const (
	tablePadding    = 2
	minClassWidth   = 5
	minCharsWidth   = 10
	minNextWidth    = 7
	maxCharsShown   = 12
	heavySeparator  = "="
	lightSeparator  = "-"
	defaultTermWide = 100
)

// StateTableFormatter renders transition tables as styled text.
type StateTableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewStateTableFormatter creates a formatter. termWidth <= 0 selects a default.
func NewStateTableFormatter(styles *Styles, termWidth int) *StateTableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWide
	}
	return &StateTableFormatter{styles: styles, termWidth: termWidth}
}

type stateColumns struct {
	class int
	chars int
	next  int
}

// Format renders one block per state: a header naming the state and one row
// per transition (CLASS, CHARS, NEXT, ACTION).
func (f *StateTableFormatter) Format(states []processor.StateDescription) string {
	if len(states) == 0 {
		return ""
	}

	cols := f.columns(states)
	width := min(cols.class+cols.chars+cols.next+len("Return")+tablePadding*4, f.termWidth)

	var builder strings.Builder

	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %s",
		cols.class, "CLASS",
		cols.chars, "CHARS",
		cols.next, "NEXT",
		"ACTION",
	)
	builder.WriteString(f.styles.TableHeader.Render(header) + "\n")
	builder.WriteString(f.styles.TableSeparator.Render(strings.Repeat(heavySeparator, width)) + "\n")

	for i, state := range states {
		if i > 0 {
			builder.WriteString(f.styles.TableSeparator.Render(strings.Repeat(lightSeparator, width)) + "\n")
		}
		builder.WriteString(" " + f.styles.StateName.Render(state.State) + "\n")

		for _, tr := range state.Transitions {
			chars := fmt.Sprintf("%-*s", cols.chars, joinChars(tr.Chars))
			fmt.Fprintf(&builder, " %-*s  %s  %-*s  %s\n",
				cols.class, tr.Class,
				f.styles.Chars.Render(chars),
				cols.next, tr.Next,
				f.styles.Action.Render(tr.Action),
			)
		}
	}

	builder.WriteString(f.styles.TableSeparator.Render(strings.Repeat(heavySeparator, width)) + "\n")
	builder.WriteString(f.styles.Dim.Render(" EOF: end of input; other: every character not listed, including all non-ASCII input") + "\n")

	return builder.String()
}

func (f *StateTableFormatter) columns(states []processor.StateDescription) stateColumns {
	cols := stateColumns{class: minClassWidth, chars: minCharsWidth, next: minNextWidth}
	for _, state := range states {
		for _, tr := range state.Transitions {
			cols.class = max(cols.class, len(tr.Class))
			cols.chars = max(cols.chars, len(joinChars(tr.Chars)))
			cols.next = max(cols.next, len(tr.Next))
		}
	}
	return cols
}

// joinChars lists chars separated by spaces, eliding long runs.
func joinChars(chars []string) string {
	if len(chars) <= maxCharsShown {
		return strings.Join(chars, " ")
	}
	return strings.Join(chars[:maxCharsShown], " ") + fmt.Sprintf(" ... (+%d)", len(chars)-maxCharsShown)
}
