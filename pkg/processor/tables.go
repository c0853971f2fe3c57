package processor

// Class indices shared by the default states. Lower indices go to the
// structurally important characters.
const (
	classSpace   uint8 = 2
	classNewline uint8 = 3
	classComment uint8 = 4
)

// commentChar introduces an assembler comment.
const commentChar = ';'

//nolint:gochecknoglobals // Read-only lookup table shared by all scans.
var defaultTable = MustTable(Table{
	StateInitial: NewTransitionSet(
		[]Transition{
			ClassEOF:     {StateAtEOF, ActionReturn},
			ClassOther:   {StateOther, ActionGo},
			classSpace:   {StateInitial, ActionGo},
			classNewline: {StateInitial, ActionEndLine},
			classComment: {StateInitial, ActionGo},
		},
		map[byte]uint8{
			'\t':        classSpace,
			'\r':        classSpace,
			' ':         classSpace,
			'\n':        classNewline,
			commentChar: classComment,
		},
	),

	// Other never needs whitespace, so its newline and comment entries sit
	// one slot lower than in Initial.
	StateOther: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateOther, ActionGo},
			2:          {StateInitial, ActionEndLine},
			3:          {StateInitial, ActionGo},
		},
		map[byte]uint8{
			'\n':        2,
			commentChar: 3,
		},
	),

	StateAtEOF: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateAtEOF, ActionReturn},
		},
		nil,
	),
})

// DefaultTable returns a copy of the built-in pass-through table.
func DefaultTable() Table {
	return defaultTable.Clone()
}
