package matcher

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/lexre/pattern"
	"github.com/coregx/lexre/prefilter"
)

func compile(t *testing.T, pat string, tweak ...func(*pattern.Options)) (*pattern.Program, *prefilter.Tables) {
	t.Helper()
	opts := pattern.DefaultOptions()
	for _, f := range tweak {
		f(&opts)
	}
	prog, err := pattern.Compile(pat, opts)
	require.NoError(t, err, "compile %q", pat)
	return prog, prefilter.Build(prog)
}

// chunkReader hands out at most n bytes per Read, to exercise incremental
// buffering.
type chunkReader struct {
	s string
	n int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.s) == 0 {
		return 0, io.EOF
	}
	n := r.n
	if n > len(p) {
		n = len(p)
	}
	if n > len(r.s) {
		n = len(r.s)
	}
	copy(p, r.s[:n])
	r.s = r.s[n:]
	return n, nil
}

func TestScanTokens(t *testing.T) {
	prog, tab := compile(t, `[a-z]+|[0-9]+|[ \t]+`)
	m := NewString(prog, tab, "width 80")

	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "width", m.TextString())
	assert.Equal(t, 5, m.Size())

	require.Equal(t, 3, m.Scan())
	assert.Equal(t, " ", m.TextString())

	require.Equal(t, 2, m.Scan())
	assert.Equal(t, "80", m.TextString())

	assert.Equal(t, NoMatch, m.Scan())
}

func TestScanPrefersFirstAlternative(t *testing.T) {
	// A later alternative's longer match never beats an earlier one.
	prog, tab := compile(t, "a|ab")
	m := NewString(prog, tab, "ab")
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "a", m.TextString())

	// The first alternative still takes its full length even when a later
	// one accepts earlier on the path.
	prog, tab = compile(t, "ab|a")
	m = NewString(prog, tab, "ab")
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "ab", m.TextString())

	// Both alternatives accept the same text: the lowest index wins.
	prog, tab = compile(t, "foo|f.o")
	m = NewString(prog, tab, "foo")
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "foo", m.TextString())
}

func TestLazyQuantifierCutsShort(t *testing.T) {
	prog, tab := compile(t, "a.*?b")
	m := NewString(prog, tab, "aXbYb")
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "aXb", m.TextString())

	// Full matching is free to run past the first accept.
	m = NewString(prog, tab, "aXbYb")
	assert.True(t, m.Matches())
	assert.Equal(t, "aXbYb", m.TextString())
}

func TestFindRelocates(t *testing.T) {
	prog, tab := compile(t, "needle")
	m := NewString(prog, tab, "say needle twice: needle")

	require.Equal(t, 1, m.Find())
	assert.Equal(t, int64(4), m.First())
	assert.Equal(t, int64(10), m.Last())

	require.Equal(t, 1, m.Find())
	assert.Equal(t, int64(18), m.First())

	assert.Equal(t, NoMatch, m.Find())
}

func TestFindSkipsEmptyMatches(t *testing.T) {
	prog, tab := compile(t, "x*")
	m := NewString(prog, tab, "ab x")
	require.Equal(t, 1, m.Find())
	assert.Equal(t, "x", m.TextString())
	assert.Equal(t, NoMatch, m.Find())
}

func TestNullableFindReportsEmpty(t *testing.T) {
	prog, tab := compile(t, "x*", func(o *pattern.Options) { o.NullableFind = true })
	m := NewString(prog, tab, "ax")
	require.Equal(t, 1, m.Find())
	assert.Equal(t, "", m.TextString())
	// Progress is still guaranteed.
	require.Equal(t, 1, m.Find())
	assert.Equal(t, "x", m.TextString())
}

func TestMatchesWholeInput(t *testing.T) {
	prog, tab := compile(t, "ab+c")
	m := NewString(prog, tab, "abbbc")
	assert.True(t, m.Matches())

	m = NewString(prog, tab, "abbbcX")
	assert.False(t, m.Matches())

	m = NewString(prog, tab, "ab")
	assert.False(t, m.Matches())
}

func TestSplitFields(t *testing.T) {
	prog, tab := compile(t, ",")
	m := NewString(prog, tab, "a,b,,c")

	var fields []string
	var caps []int
	for {
		c := m.Split()
		if c == NoMatch {
			break
		}
		caps = append(caps, c)
		fields = append(fields, m.TextString())
	}
	assert.Equal(t, []string{"a", "b", "", "c"}, fields)
	// The final field is delimited by end of input and reports Subpatterns+1.
	assert.Equal(t, []int{1, 1, 1, 2}, caps)
}

func TestSplitRoundTrip(t *testing.T) {
	// Fields plus matched delimiters reconstruct the input exactly.
	prog, tab := compile(t, `[,;]`)
	input := "a;bb,,c;"
	m := NewString(prog, tab, input)

	var rebuilt strings.Builder
	for {
		c := m.Split()
		if c == NoMatch {
			break
		}
		rebuilt.WriteString(m.TextString())
		if c <= m.prog.Subpatterns {
			rebuilt.WriteString(input[m.cur-1 : m.cur])
		}
	}
	assert.Equal(t, input, rebuilt.String())
}

func TestSplitTrailingEmptyField(t *testing.T) {
	prog, tab := compile(t, ",")
	m := NewString(prog, tab, "a,")

	require.Equal(t, 1, m.Split())
	assert.Equal(t, "a", m.TextString())
	require.Equal(t, 2, m.Split())
	assert.Equal(t, "", m.TextString())
	assert.Equal(t, NoMatch, m.Split())
}

func TestLineAndColumn(t *testing.T) {
	prog, tab := compile(t, "^abc", func(o *pattern.Options) { o.Multiline = true })
	m := NewString(prog, tab, "x\nabc\n")

	require.Equal(t, 1, m.Find())
	assert.Equal(t, 2, m.Lineno())
	assert.Equal(t, 1, m.Columno())
	assert.Equal(t, 2, m.LinenoEnd())
	assert.Equal(t, 3, m.ColumnoEnd())
}

func TestColumnAccounting(t *testing.T) {
	prog, tab := compile(t, "x")

	// Tabs expand to the next tab stop.
	m := NewString(prog, tab, "\tx")
	require.Equal(t, 1, m.Find())
	assert.Equal(t, 9, m.Columno())

	// Multibyte sequences count as one column.
	m = NewString(prog, tab, "h\xc3\xa9llo x")
	require.Equal(t, 1, m.Find())
	assert.Equal(t, 7, m.Columno())
}

func TestWordBoundaries(t *testing.T) {
	prog, tab := compile(t, `\bcat\b`)
	m := NewString(prog, tab, "a cat.")
	require.Equal(t, 1, m.Find())
	assert.Equal(t, "cat", m.TextString())
	assert.Equal(t, int64(2), m.First())

	m = NewString(prog, tab, "concatenate")
	assert.Equal(t, NoMatch, m.Find())
}

func TestTrailingContext(t *testing.T) {
	prog, tab := compile(t, "ab/cd")
	m := NewString(prog, tab, "abcd")
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "ab", m.TextString())
	// The lookahead text stays unconsumed.
	assert.Equal(t, int('c'), m.Peek())
}

func TestNegativePattern(t *testing.T) {
	prog, tab := compile(t, "foo|(?^bar)")
	m := NewString(prog, tab, "barfoo")
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "foo", m.TextString())

	prog, tab = compile(t, "foo|(?^bar)", func(o *pattern.Options) { o.AcceptNegative = true })
	m = NewString(prog, tab, "barfoo")
	require.Equal(t, 2, m.Scan())
	assert.Equal(t, "bar", m.TextString())
}

func TestMoreAndLess(t *testing.T) {
	prog, tab := compile(t, "[a-z]+|[0-9]+")
	m := NewString(prog, tab, "abc123")

	require.Equal(t, 1, m.Scan())
	m.More()
	require.Equal(t, 2, m.Scan())
	assert.Equal(t, "abc123", m.TextString())

	m = NewString(prog, tab, "abcdef")
	require.Equal(t, 1, m.Scan())
	m.Less(2)
	assert.Equal(t, "ab", m.TextString())
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "cdef", m.TextString())
}

func TestPushPop(t *testing.T) {
	prog, tab := compile(t, "[a-z]+|[ ]+")
	m := NewString(prog, tab, "one two")

	require.Equal(t, 1, m.Scan())
	m.Push()
	require.Equal(t, 2, m.Scan())
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "two", m.TextString())

	require.True(t, m.Pop())
	require.Equal(t, 2, m.Scan())
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "two", m.TextString())

	assert.False(t, m.Pop())
}

func TestPushRestoresPendingMore(t *testing.T) {
	prog, tab := compile(t, "[a-z]+|,")
	m := NewString(prog, tab, "ab,cd")
	require.Equal(t, 1, m.Scan())
	m.More()
	m.Push()

	require.Equal(t, 2, m.Scan())
	assert.Equal(t, "ab,", m.TextString())

	// The pending More survives the round trip.
	require.True(t, m.Pop())
	require.Equal(t, 2, m.Scan())
	assert.Equal(t, "ab,", m.TextString())
	assert.Equal(t, int64(0), m.First())
}

func TestInRebinds(t *testing.T) {
	prog, tab := compile(t, "[a-z]+")
	m := NewString(prog, tab, "abc")
	require.Equal(t, 1, m.Scan())

	m.InString("xyz")
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "xyz", m.TextString())
	assert.Equal(t, int64(0), m.First())
}

func TestChunkedEqualsContiguous(t *testing.T) {
	input := strings.Repeat("word 42 more-words 7 ", 50)
	prog, tab := compile(t, "[0-9]+")

	var contiguous []string
	m := NewString(prog, tab, input)
	for m.Find() != NoMatch {
		contiguous = append(contiguous, m.TextString())
	}

	var chunked []string
	m = New(prog, tab, &chunkReader{s: input, n: 3})
	for m.Find() != NoMatch {
		chunked = append(chunked, m.TextString())
	}

	require.NotEmpty(t, contiguous)
	assert.Equal(t, contiguous, chunked)
}

func TestBufferShifting(t *testing.T) {
	input := strings.Repeat("a\n", 20) + "12\n" + strings.Repeat("b\n", 20) + "34"
	prog, tab := compile(t, "[0-9]+")

	m := New(prog, tab, &chunkReader{s: input, n: 7})
	m.SetMaxBufferSize(64)
	var discarded int64
	m.OnShift(func(n int64) { discarded += n })

	require.Equal(t, 1, m.Find())
	assert.Equal(t, "12", m.TextString())
	assert.Equal(t, int64(40), m.First())
	assert.Equal(t, 21, m.Lineno())

	require.Equal(t, 1, m.Find())
	assert.Equal(t, "34", m.TextString())
	assert.Equal(t, int64(83), m.First())
	assert.Equal(t, 42, m.Lineno())
	assert.Positive(t, discarded)
}

func TestBufferLimitPanics(t *testing.T) {
	prog, tab := compile(t, "z")
	m := New(prog, tab, &chunkReader{s: strings.Repeat("a\n", 64), n: 8})
	m.SetMaxBufferSize(16)
	assert.PanicsWithValue(t, ErrBufferLimit, func() { m.Rest() })
}

func TestFindBoundedBufferReleasesConsumed(t *testing.T) {
	// A matchless search over many short lines must shift consumed input
	// out of a bounded buffer rather than grow past the limit.
	prog, tab := compile(t, "z")
	m := New(prog, tab, &chunkReader{s: strings.Repeat("a\n", 4096), n: 96})
	m.SetMaxBufferSize(256)
	var discarded int64
	m.OnShift(func(n int64) { discarded += n })

	assert.Equal(t, NoMatch, m.Find())
	assert.NoError(t, m.Err())
	assert.Positive(t, discarded)
}

func TestRestAndPeek(t *testing.T) {
	prog, tab := compile(t, "[a-z]+")
	m := NewString(prog, tab, "abc def")
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, int(' '), m.Peek())
	assert.Equal(t, " def", string(m.Rest()))

	m = NewString(prog, tab, "")
	assert.Equal(t, -1, m.Peek())
}

func TestIndentScanning(t *testing.T) {
	prog, tab := compile(t, `^[ \t]*\i.+|^[ \t]*\j.+|^[ \t]*.+|\n+`,
		func(o *pattern.Options) {
			o.Multiline = true
			o.Indent = true
		})
	m := NewString(prog, tab, "a\n  b\n  c\nd")

	var caps []int
	for {
		c := m.Scan()
		if c == NoMatch {
			break
		}
		caps = append(caps, c)
	}
	// Plain, indent, same level, dedent; newlines in between.
	assert.Equal(t, []int{3, 4, 1, 4, 3, 4, 2}, caps)
	assert.Empty(t, m.Stops())
}

func TestIndentStops(t *testing.T) {
	prog, tab := compile(t, "x")
	m := NewString(prog, tab, "    x\nx")

	require.True(t, m.indentHolds(pattern.MetaInd, 4))
	assert.Equal(t, []int{4}, m.Stops())
	// Same column again: no new stop.
	assert.False(t, m.indentHolds(pattern.MetaInd, 4))
	// Undent realigns exactly.
	assert.True(t, m.indentHolds(pattern.MetaUnd, 4))
	// The next line retreats to column zero and pops the stop.
	assert.True(t, m.indentHolds(pattern.MetaDed, 6))
	assert.Empty(t, m.Stops())

	// Inside leading blanks no indent anchor holds.
	assert.False(t, m.indentHolds(pattern.MetaInd, 2))
}

func TestPendingDedents(t *testing.T) {
	prog, tab := compile(t, "x")
	m := NewString(prog, tab, "x")
	m.stops = []int{4, 8}

	// One dedent below both stops pops them all but reports one level per
	// evaluation.
	require.True(t, m.indentHolds(pattern.MetaDed, 0))
	assert.Empty(t, m.Stops())
	require.True(t, m.indentHolds(pattern.MetaDed, 0))
	assert.False(t, m.indentHolds(pattern.MetaDed, 0))
}

func TestReadErrorSurfaces(t *testing.T) {
	prog, tab := compile(t, "[a-z]+")
	m := New(prog, tab, io.MultiReader(strings.NewReader("ab"), iotestErrReader{}))
	require.Equal(t, 1, m.Scan())
	assert.Equal(t, "ab", m.TextString())
	assert.Error(t, m.Err())
}

type iotestErrReader struct{}

func (iotestErrReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestKernelDescribesBinding(t *testing.T) {
	prog, tab := compile(t, "needle")
	m := NewString(prog, tab, "")
	assert.Contains(t, m.Kernel(), "/")
}
