package prefilter

import (
	"bytes"
	"sort"
	"testing"

	"github.com/coregx/lexre/pattern"
)

func mustCompile(t *testing.T, pat string) *pattern.Program {
	t.Helper()
	prog, err := pattern.Compile(pat, pattern.DefaultOptions())
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", pat, err)
	}
	return prog
}

func TestMinLength(t *testing.T) {
	tests := []struct {
		pattern string
		min     int
	}{
		{pattern: "abc", min: 3},
		{pattern: "a|bc", min: 1},
		{pattern: "a*bc", min: 2},
		{pattern: "x?", min: 0},
		{pattern: `^foo$`, min: 3},
		{pattern: "[0-9]{4}-[0-9]{2}", min: 7},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			tab := Build(mustCompile(t, tt.pattern))
			if tab.Min != tt.min {
				t.Errorf("Min = %d, want %d", tab.Min, tt.min)
			}
		})
	}
}

func TestFixedPrefix(t *testing.T) {
	tests := []struct {
		pattern string
		prefix  string
	}{
		{pattern: "hello[0-9]+", prefix: "hello"},
		{pattern: "abc", prefix: "abc"},
		{pattern: "a|b", prefix: ""},
		{pattern: "[ab]cd", prefix: ""},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			tab := Build(mustCompile(t, tt.pattern))
			if string(tab.Prefix) != tt.prefix {
				t.Errorf("Prefix = %q, want %q", tab.Prefix, tt.prefix)
			}
		})
	}
}

func TestFixedNeedles(t *testing.T) {
	tab := Build(mustCompile(t, "foo|bar|baz"))
	if !tab.Complete {
		t.Fatal("finite disjunction not marked complete")
	}
	got := make(map[string]bool)
	for _, n := range tab.Needles {
		got[string(n)] = true
	}
	for _, want := range []string{"foo", "bar", "baz"} {
		if !got[want] {
			t.Errorf("needle %q missing from %q", want, tab.Needles)
		}
	}
	if tab.Kind() != KindNeedleSet {
		t.Errorf("Kind = %v, want %v", tab.Kind(), KindNeedleSet)
	}
}

func TestNeedlesRejectUnbounded(t *testing.T) {
	tab := Build(mustCompile(t, "ab+c"))
	if tab.Needles != nil {
		t.Errorf("unbounded pattern produced needles %q", tab.Needles)
	}
}

func TestNullablePatternDisablesFilter(t *testing.T) {
	tab := Build(mustCompile(t, "a*"))
	if tab.Kind() != KindNone {
		t.Errorf("Kind = %v, want %v for a nullable pattern", tab.Kind(), KindNone)
	}
	if got := tab.Find([]byte("zzza"), 0); got != 0 {
		t.Errorf("Find = %d, want 0 (no filtering)", got)
	}
}

// TestFindNoFalseNegatives is the contract test: for every strategy, Find
// must never skip past a position where the pattern truly matches.
func TestFindNoFalseNegatives(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		starts  []int // known true match starts
	}{
		{pattern: "needle", input: "say needle twice: needle", starts: []int{4, 18}},
		{pattern: "foo|bar", input: "xx foo yy bar", starts: []int{3, 10}},
		{pattern: "hello[0-9]", input: "oh hello7 there", starts: []int{3}},
		{pattern: "[0-9][0-9]:[0-9][0-9]", input: "t=12:45.", starts: []int{2}},
		{pattern: "zebra", input: "no such animal here", starts: nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			tab := Build(mustCompile(t, tt.pattern))
			buf := []byte(tt.input)
			for _, want := range tt.starts {
				got := tab.Find(buf, 0)
				for got >= 0 && got < want {
					got = tab.Find(buf, got+1)
				}
				if got != want {
					t.Errorf("Find skipped true match start %d, got %d", want, got)
				}
			}
		})
	}
}

func TestPredictReject(t *testing.T) {
	tab := Build(mustCompile(t, "[0-9][0-9][0-9][0-9]-[0-9][0-9]"))
	// A window that truly starts a match must never be rejected.
	if tab.Reject([]byte("2026-08 rest")) {
		t.Error("predict filter rejected a true match window")
	}
}

func TestFindBeyondBuffer(t *testing.T) {
	tab := Build(mustCompile(t, "abc"))
	if got := tab.Find([]byte("ab"), 5); got != -1 {
		t.Errorf("Find past end = %d, want -1", got)
	}
}

func TestOverlap(t *testing.T) {
	tab := Build(mustCompile(t, "longneedlehere"))
	if tab.Overlap() < len("longneedlehere") {
		t.Errorf("Overlap = %d, want >= needle length", tab.Overlap())
	}
}

func TestHorspoolAgainstIndex(t *testing.T) {
	haystack := []byte("the quick brown fox jumps over the lazy dog, quick!")
	tab := Build(mustCompile(t, "quick"))
	want := bytes.Index(haystack, []byte("quick"))
	if got := tab.Find(haystack, 0); got != want {
		t.Errorf("Find = %d, want %d", got, want)
	}
	next := tab.Find(haystack, want+1)
	want2 := bytes.Index(haystack[want+1:], []byte("quick")) + want + 1
	if next != want2 {
		t.Errorf("second Find = %d, want %d", next, want2)
	}
}

// windowHashes computes the per-level sorted window-hash sets an indexer
// would store for a block of text.
func windowHashes(text []byte, depth int) [][]uint16 {
	observed := make([][]uint16, depth)
	for i := range text {
		h := uint16(0)
		for k := 0; k < depth && i+k < len(text); k++ {
			h = IndexHash(h, text[i+k])
			observed[k] = append(observed[k], h)
		}
	}
	for k := range observed {
		sort.Slice(observed[k], func(i, j int) bool { return observed[k][i] < observed[k][j] })
	}
	return observed
}

func TestHFABlockFiltering(t *testing.T) {
	tab := Build(mustCompile(t, "foobar"))
	hfa := tab.HFA()
	if hfa == nil {
		t.Fatal("HFA = nil, want automaton")
	}

	hit := []byte("some text with foobar inside")
	if !hfa.Match(windowHashes(hit, hfa.Depth())) {
		t.Error("Match = false for a block containing the pattern")
	}

	miss := []byte("zzzz zz zzzzzz zzz")
	if hfa.Match(windowHashes(miss, hfa.Depth())) {
		t.Error("Match = true for a block that cannot contain the pattern")
	}

	// Shallower hash sets than the automaton depth are permissive, never a
	// false negative.
	if !hfa.Match(windowHashes(hit, 2)) {
		t.Error("Match = false with truncated observation")
	}
}

func TestHFANoFalseNegatives(t *testing.T) {
	tab := Build(mustCompile(t, "ab[0-9]x|cd"))
	hfa := tab.HFA()
	if hfa == nil {
		t.Fatal("HFA = nil, want automaton")
	}
	blocks := []string{"ab5x", "xxcdxx", "...ab0x...", "cd"}
	for _, b := range blocks {
		if !hfa.Match(windowHashes([]byte(b), hfa.Depth())) {
			t.Errorf("Match = false for matching block %q", b)
		}
	}
}

func TestHFANullableAlwaysMatches(t *testing.T) {
	tab := Build(mustCompile(t, "x*"))
	hfa := tab.HFA()
	if hfa == nil {
		t.Skip("no automaton for nullable pattern")
	}
	if !hfa.Match(windowHashes([]byte("anything"), hfa.Depth())) {
		t.Error("Match = false for a nullable pattern")
	}
}
