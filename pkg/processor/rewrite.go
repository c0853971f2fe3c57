package processor

// The rewriting table recognizes the statement shapes below and hands them to
// the scoped-symbol operations of package output:
//
//	foo:        scope label
//	foo::       scope label declared global
//	.foo:       local label, L(foo):
//	.foo        local symbol in an operand, L(foo)
//	@.foo       operand copied without the @ and never rewritten
//
// Strings, "//" comments and lines starting with "#" are copied untouched.
// Everything else passes through as with DefaultTable, and ";" separates
// statements so a label may follow it.

// classes assigns class to every character of chars.
func classes(dst map[byte]uint8, class uint8, chars ...string) map[byte]uint8 {
	for _, set := range chars {
		for i := range len(set) {
			dst[set[i]] = class
		}
	}
	return dst
}

const (
	letters    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"
	digits     = "0123456789"
	identChars = letters + digits + "."
	blanks     = " \t\r"
)

//nolint:gochecknoglobals // Read-only lookup table shared by all scans.
var rewriteTable = MustTable(Table{
	StateInitial: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateOperands, ActionGo},
			2:          {StateInitial, ActionGo},
			3:          {StateInitial, ActionEndLine},
			4:          {StateInitial, ActionGo},
			5:          {StateHead, ActionMark},
			6:          {StateWord, ActionGo},
			7:          {StateRaw, ActionGo},
			8:          {StateSlash, ActionGo},
			9:          {StateOperands, ActionAgain},
		},
		func() map[byte]uint8 {
			m := classes(map[byte]uint8{}, 2, blanks)
			m['\n'] = 3
			m[commentChar] = 4
			classes(m, 5, letters, ".")
			classes(m, 6, digits)
			m['#'] = 7
			m['/'] = 8
			m['"'] = 9
			return m
		}(),
	),

	// Reached only through DefaultTable's states; hand over to Operands.
	StateOther: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateOperands, ActionAgain},
		},
		nil,
	),

	StateAtEOF: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateAtEOF, ActionReturn},
		},
		nil,
	),

	StateHead: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateOperands, ActionAgain},
			2:          {StateHead, ActionGo},
			3:          {StateColon, ActionGo},
			4:          {StateOperands, ActionGo},
			5:          {StateInitial, ActionEndLine},
			6:          {StateInitial, ActionGo},
		},
		func() map[byte]uint8 {
			m := classes(map[byte]uint8{}, 2, identChars)
			m[':'] = 3
			classes(m, 4, blanks)
			m['\n'] = 5
			m[commentChar] = 6
			return m
		}(),
	),

	StateColon: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateInitial, ActionLabel},
			ClassOther: {StateInitial, ActionLabel},
			2:          {StateInitial, ActionGlobal},
		},
		map[byte]uint8{':': 2},
	),

	StateOperands: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateOperands, ActionGo},
			2:          {StateInitial, ActionEndLine},
			3:          {StateInitial, ActionGo},
			4:          {StateWord, ActionGo},
			5:          {StateLocal, ActionMark},
			6:          {StateString, ActionPush},
			7:          {StateSlash, ActionGo},
			8:          {StateWord, ActionDrop},
		},
		func() map[byte]uint8 {
			m := map[byte]uint8{'\n': 2, commentChar: 3}
			classes(m, 4, letters, digits)
			m['.'] = 5
			m['"'] = 6
			m['/'] = 7
			m['@'] = 8
			return m
		}(),
	),

	StateWord: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateOperands, ActionAgain},
			2:          {StateWord, ActionGo},
		},
		classes(map[byte]uint8{}, 2, identChars),
	),

	StateLocal: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateOperands, ActionLocal},
			ClassOther: {StateOperands, ActionLocal},
			2:          {StateLocal, ActionGo},
		},
		classes(map[byte]uint8{}, 2, identChars),
	),

	// Entered by push from Operands; the closing quote pops back.
	StateString: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateString, ActionGo},
			2:          {StateOperands, ActionPop},
			3:          {StateEscape, ActionGo},
			4:          {StateInitial, ActionEndLine},
		},
		map[byte]uint8{'"': 2, '\\': 3, '\n': 4},
	),

	StateEscape: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateString, ActionGo},
			2:          {StateString, ActionEndLine},
		},
		map[byte]uint8{'\n': 2},
	),

	StateSlash: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateOperands, ActionAgain},
			2:          {StateRaw, ActionGo},
		},
		map[byte]uint8{'/': 2},
	),

	StateRaw: NewTransitionSet(
		[]Transition{
			ClassEOF:   {StateAtEOF, ActionReturn},
			ClassOther: {StateRaw, ActionGo},
			2:          {StateInitial, ActionEndLine},
		},
		map[byte]uint8{'\n': 2},
	),
})

// RewriteTable returns a copy of the built-in rewriting table.
func RewriteTable() Table {
	return rewriteTable.Clone()
}
