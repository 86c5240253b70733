package lexre

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/lexre/pattern"
)

func TestCompileAndMatch(t *testing.T) {
	p, err := Compile(`[a-z]+|[0-9]+`)
	require.NoError(t, err)

	assert.True(t, p.MatchString("abc"))
	assert.True(t, p.MatchString("123"))
	assert.False(t, p.MatchString("abc123"))
	assert.False(t, p.MatchString(""))
}

func TestCompileReportsParseError(t *testing.T) {
	_, err := Compile("(ab")
	require.Error(t, err)
	var perr *pattern.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pattern.ErrMismatchedParens, perr.Kind)
}

func TestMustCompilePanics(t *testing.T) {
	assert.NotPanics(t, func() { MustCompile(`\w+`) })
	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.Contains(t, r.(string), "lexre: Compile(`(ab`)")
	}()
	MustCompile("(ab")
}

func TestFindString(t *testing.T) {
	p := MustCompile(`[0-9]+`)

	s, ok := p.FindString("port 8080 open")
	require.True(t, ok)
	assert.Equal(t, "8080", s)

	_, ok = p.FindString("no digits here")
	assert.False(t, ok)
}

func TestScannerLoop(t *testing.T) {
	p := MustCompile(`[a-z]+|[0-9]+|[ \t]+`)
	m := p.Matcher(strings.NewReader("if x1 goto 10"))

	var kinds []int
	var texts []string
	for {
		k := m.Scan()
		if k == 0 {
			break
		}
		kinds = append(kinds, k)
		texts = append(texts, m.TextString())
	}
	assert.Equal(t, []int{1, 3, 1, 2, 3, 1, 3, 2}, kinds)
	assert.Equal(t, []string{"if", " ", "x", "1", " ", "goto", " ", "10"}, texts)
}

func TestPatternAccessors(t *testing.T) {
	p := MustCompile("foo|bar|baz")

	assert.Equal(t, "foo|bar|baz", p.String())
	assert.Equal(t, 3, p.Subpatterns())
	assert.False(t, p.Nullable())
	assert.Equal(t, 3, p.MinLength())

	needles, complete := p.Needles()
	assert.True(t, complete)
	assert.ElementsMatch(t, [][]byte{[]byte("foo"), []byte("bar"), []byte("baz")}, needles)

	p = MustCompile("hello[0-9]+")
	assert.Equal(t, []byte("hello"), p.Prefix())

	p = MustCompile("x*")
	assert.True(t, p.Nullable())
	assert.Equal(t, 0, p.MinLength())
}

func TestCompileOptionString(t *testing.T) {
	p, err := CompileOptionString("foo|(?^bar)", "A")
	require.NoError(t, err)
	m := p.MatcherString("bar")
	assert.Equal(t, 2, m.Scan())

	_, err = CompileOptionString("abc", "Q")
	assert.Error(t, err)
}

func TestStatsAndDump(t *testing.T) {
	p := MustCompile("ab|ac")
	st := p.Stats()
	assert.Positive(t, st.States)
	assert.NotEmpty(t, p.Dump())
}

func TestFuzzyFacade(t *testing.T) {
	p := MustCompile("kitten")
	f := p.FuzzyMatcherString("sitten", DefaultFuzzyConfig())
	require.True(t, f.Matches())
	assert.Equal(t, uint8(1), f.Edits())
}
