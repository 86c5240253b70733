// Package prefilter derives acceleration data from a compiled pattern: a
// deterministic prefix or needle set for exact vectorized search, a
// Boyer-Moore-Horspool skip table, a predict-match hash filter, and an
// optional indexing hash automaton for block-level pre-filtering.
//
// A prefilter is used by find to quickly reject positions in the input that
// cannot possibly start a match. All of it is purely an optimization: the
// tables are necessary-condition filters derived from reachable DFA
// transitions, so rejection is always safe (no false negatives) and
// acceptance merely hands the position to the exact interpreter.
package prefilter

import (
	"github.com/coregx/ahocorasick"

	"github.com/coregx/lexre/pattern"
	"github.com/coregx/lexre/simd"
)

// Limits on the exact-needle extraction: a pattern is treated as a fixed
// string disjunction only if it expands to at most maxNeedles strings of at
// most maxNeedleLen bytes.
const (
	maxNeedles   = 16
	maxNeedleLen = 64
)

// Kind identifies the candidate-search strategy selected at build time.
type Kind uint8

const (
	// KindNone means no acceleration applies; every position is a candidate.
	KindNone Kind = iota

	// KindNeedle means the pattern is a fixed string: exact substring search.
	KindNeedle

	// KindNeedleSet means the pattern is a small disjunction of fixed
	// strings, searched with an Aho-Corasick automaton.
	KindNeedleSet

	// KindPrefix means the pattern starts with a deterministic prefix that
	// every match must begin with.
	KindPrefix

	// KindFirstBytes means only a small set of bytes can start a match.
	KindFirstBytes

	// KindPredict means candidates are filtered by the predict-match hash
	// test alone.
	KindPredict
)

var kindNames = [...]string{
	KindNone:       "none",
	KindNeedle:     "needle",
	KindNeedleSet:  "needle-set",
	KindPrefix:     "prefix",
	KindFirstBytes: "first-bytes",
	KindPredict:    "predict",
}

// String returns the strategy name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Tables is the immutable acceleration artifact attached to a compiled
// pattern. It is built once per Program and shared read-only by all matchers.
type Tables struct {
	// Min is the minimum number of bytes any match consumes, capped at 255.
	Min int

	// Prefix is the deterministic prefix every match starts with, possibly
	// empty.
	Prefix []byte

	// Needles is the exact fixed-string expansion of the pattern, or nil
	// when the pattern is not a small disjunction of fixed strings.
	Needles [][]byte

	// Complete reports that Needles covers the pattern exactly: a needle hit
	// is a full match, not merely a candidate.
	Complete bool

	kind       Kind
	bmh        simd.HorspoolTable
	rare1      byte
	rare2      byte
	off1, off2 int
	firstBytes []byte // distinct possible first bytes, when few
	pm         *predictFilter
	hfa        *HFA
	ac         *ahocorasick.Automaton
}

// Build analyzes the compiled program and derives the acceleration tables.
func Build(prog *pattern.Program) *Tables {
	t := &Tables{}
	t.Min = minLength(prog)
	t.Prefix = fixedPrefix(prog)
	t.Needles, t.Complete = fixedNeedles(prog)
	t.pm = buildPredict(prog, t.Min)
	t.hfa = buildHFA(prog)
	t.firstBytes = startBytes(prog)

	if prog.Nullable || t.Min == 0 {
		// An empty match can start anywhere; every position is a candidate.
		return t
	}

	switch {
	case len(t.Needles) == 1:
		t.kind = KindNeedle
		t.Prefix = t.Needles[0]
	case len(t.Needles) > 1:
		builder := ahocorasick.NewBuilder()
		for _, n := range t.Needles {
			builder.AddPattern(n)
		}
		auto, err := builder.Build()
		if err == nil {
			t.kind = KindNeedleSet
			t.ac = auto
		} else {
			t.Needles = nil
			t.Complete = false
		}
	}
	if t.kind == KindNone && len(t.Prefix) > 0 {
		t.kind = KindPrefix
	}
	if t.kind == KindNone {
		switch {
		case len(t.firstBytes) > 0 && len(t.firstBytes) <= 3:
			t.kind = KindFirstBytes
		case t.pm != nil:
			t.kind = KindPredict
		}
	}
	if len(t.Prefix) >= 2 {
		t.bmh = simd.BuildHorspool(t.Prefix)
		t.rare1, t.off1, t.rare2, t.off2 = simd.RarePair(t.Prefix)
		if t.off2 < t.off1 {
			t.rare1, t.off1, t.rare2, t.off2 = t.rare2, t.off2, t.rare1, t.off1
		}
	}
	return t
}

// Kind returns the selected candidate-search strategy.
func (t *Tables) Kind() Kind { return t.kind }

// Overlap returns the number of trailing buffer bytes a streaming caller
// must rescan after extending the buffer: a candidate starting inside the
// old tail may only become findable once the bytes completing it arrive.
func (t *Tables) Overlap() int {
	n := pmMaxDepth
	if len(t.Prefix) > n {
		n = len(t.Prefix)
	}
	for _, needle := range t.Needles {
		if len(needle) > n {
			n = len(needle)
		}
	}
	return n
}

// HFA returns the indexing hash automaton, or nil if none was built.
func (t *Tables) HFA() *HFA { return t.hfa }

// Find returns the next candidate match start at or after 'start', or -1 if
// no candidate exists in buf. A candidate is a position the exact interpreter
// still has to verify, unless Complete is set and the strategy is a needle
// search.
//
// Find never skips a position at which the anchored interpreter would
// accept: every strategy below is a necessary condition on match starts.
func (t *Tables) Find(buf []byte, start int) int {
	if start > len(buf) {
		return -1
	}
	switch t.kind {
	case KindNeedle:
		pos := t.findPrefix(buf, start)
		return pos
	case KindNeedleSet:
		m := t.ac.Find(buf, start)
		if m == nil {
			return -1
		}
		return m.Start
	case KindPrefix:
		return t.findPrefix(buf, start)
	case KindFirstBytes:
		i := start
		for {
			var pos int
			switch len(t.firstBytes) {
			case 1:
				pos = simd.Memchr(buf[i:], t.firstBytes[0])
			case 2:
				pos = simd.Memchr2(buf[i:], t.firstBytes[0], t.firstBytes[1])
			default:
				pos = simd.Memchr3(buf[i:], t.firstBytes[0], t.firstBytes[1], t.firstBytes[2])
			}
			if pos < 0 {
				return -1
			}
			i += pos
			if t.pm == nil || !t.pm.reject(buf[i:]) {
				return i
			}
			i++
		}
	case KindPredict:
		return t.predictScan(buf, start)
	}
	return start
}

func (t *Tables) findPrefix(buf []byte, start int) int {
	switch {
	case len(t.Prefix) == 0:
		return start
	case len(t.Prefix) > 32:
		return simd.HorspoolSearch(buf, t.Prefix, &t.bmh, start)
	default:
		pos := simd.Memmem(buf[start:], t.Prefix)
		if pos < 0 {
			return -1
		}
		return start + pos
	}
}

// predictScan advances over positions rejected by the predict-match filter.
func (t *Tables) predictScan(buf []byte, start int) int {
	if t.pm == nil {
		return start
	}
	for i := start; i < len(buf); i++ {
		if !t.pm.reject(buf[i:]) {
			return i
		}
	}
	return -1
}

// Reject reports whether the predict-match filter proves no match can start
// at the head of window. False means "possible", never "certain".
func (t *Tables) Reject(window []byte) bool {
	if t.pm == nil {
		return false
	}
	return t.pm.reject(window)
}
