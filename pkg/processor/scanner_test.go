package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/aspp/pkg/output"
)

func newTestScanner(table Table, input string) *scanner {
	return &scanner{
		table: table,
		input: input,
		out:   output.New("test"),
		state: StateInitial,
		prev:  StateInitial,
	}
}

func TestScanner_CursorInvariant(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "a", "ab\ncd", "λ;\n→", "\xff\n\xfe"}

	for _, input := range inputs {
		sc := newTestScanner(defaultTable, input)

		for {
			more := sc.step()

			require.LessOrEqual(t, 0, sc.start)
			require.LessOrEqual(t, sc.start, sc.end)
			require.LessOrEqual(t, sc.end, len(input))
			require.Equal(t, sc.pos, sc.end, "every consumed byte belongs to a token")

			if !more {
				break
			}
		}

		assert.Equal(t, StateAtEOF, sc.state)
		assert.Equal(t, sc.start, sc.end, "nothing left unflushed")
		assert.Equal(t, input, sc.out.String())
	}
}

func TestScanner_FlushAtNewline(t *testing.T) {
	t.Parallel()

	sc := newTestScanner(defaultTable, "ab\ncd")

	// a, b: accumulated but not written.
	require.True(t, sc.step())
	require.True(t, sc.step())
	assert.Empty(t, sc.out.String())
	assert.Equal(t, StateOther, sc.state)

	// newline: the whole line goes out at once.
	require.True(t, sc.step())
	assert.Equal(t, "ab\n", sc.out.String())
	assert.Equal(t, StateInitial, sc.state)
	assert.Equal(t, 2, sc.out.Line())

	require.True(t, sc.step())
	require.True(t, sc.step())
	assert.Equal(t, "ab\n", sc.out.String())

	// end of input: trailing partial line is flushed.
	require.False(t, sc.step())
	assert.Equal(t, "ab\ncd", sc.out.String())
}

func TestScanner_AtEOFIsIdempotent(t *testing.T) {
	t.Parallel()

	sc := newTestScanner(defaultTable, "x")
	sc.run()
	require.Equal(t, StateAtEOF, sc.state)

	written := sc.out.String()
	assert.False(t, sc.step())
	assert.False(t, sc.step())
	assert.Equal(t, StateAtEOF, sc.state)
	assert.Equal(t, written, sc.out.String())
}

func TestScanner_MultibyteAdvancesByWidth(t *testing.T) {
	t.Parallel()

	sc := newTestScanner(defaultTable, "é€😀")

	require.True(t, sc.step())
	assert.Equal(t, 2, sc.end)
	require.True(t, sc.step())
	assert.Equal(t, 5, sc.end)
	require.True(t, sc.step())
	assert.Equal(t, 9, sc.end)
	assert.Equal(t, StateOther, sc.state)
}

func TestScanner_PushPop(t *testing.T) {
	t.Parallel()

	const nested State = 3

	pushing := func() TransitionSet {
		return NewTransitionSet(
			[]Transition{
				{StateAtEOF, ActionReturn},
				{StateOther, ActionGo},
				{nested, ActionPush},
			},
			map[byte]uint8{'(': 2},
		)
	}

	table := MustTable(Table{
		StateInitial: pushing(),
		StateOther:   pushing(),
		StateAtEOF: NewTransitionSet(
			[]Transition{{StateAtEOF, ActionReturn}, {StateAtEOF, ActionReturn}},
			nil,
		),
		nested: NewTransitionSet(
			[]Transition{
				{StateAtEOF, ActionReturn},
				{nested, ActionGo},
				{nested, ActionPop},
			},
			map[byte]uint8{')': 2},
		),
	})

	// Pushed from Initial: pop returns to Initial.
	sc := newTestScanner(table, "(x)")
	require.True(t, sc.step())
	assert.Equal(t, nested, sc.state)
	assert.Equal(t, StateInitial, sc.prev)
	require.True(t, sc.step())
	assert.Equal(t, nested, sc.state)
	require.True(t, sc.step())
	assert.Equal(t, StateInitial, sc.state)

	// Pushed from Other: pop returns to Other.
	sc = newTestScanner(table, "a(x)b")
	require.True(t, sc.step())
	assert.Equal(t, StateOther, sc.state)
	require.True(t, sc.step())
	assert.Equal(t, nested, sc.state)
	assert.Equal(t, StateOther, sc.prev)
	require.True(t, sc.step())
	require.True(t, sc.step())
	assert.Equal(t, StateOther, sc.state)

	sc.run()
	assert.Equal(t, "a(x)b", sc.out.String())
}
