// Package matcher implements the matching engine: a bytecode interpreter
// over a self-managing, incrementally buffered input, with the scan, find,
// split and full-match protocols, line/column and indent bookkeeping, and
// acceleration-guided cursor advancing for find.
//
// A Matcher is bound to one compiled pattern and one input source. It is not
// safe for concurrent use; the compiled pattern it references is immutable
// and may be shared freely across matchers.
package matcher

import (
	"io"

	"github.com/coregx/lexre/pattern"
	"github.com/coregx/lexre/prefilter"
)

// NoMatch is the capture index reported when no match is found. It is a
// first-class result, not an error.
const NoMatch = 0

// Matcher interprets a compiled pattern over a buffered input stream.
//
// Match text returned by Text is a view into the internal buffer and is
// valid only until the next call that advances or rebinds the matcher.
type Matcher struct {
	prog *pattern.Program
	tab  *prefilter.Tables

	in  io.Reader
	err error // first read error other than io.EOF

	buf []byte
	txt int // start of the current match (or split field)
	cur int // next unread byte
	end int // end of buffered data
	eof bool

	base  int64 // stream offset of buf[0]
	lines int   // newlines discarded before buf[0]
	hold  int64 // stream offset shifting must not discard, -1 = none

	max int // maximum buffer size, 0 = unlimited

	cap  uint16 // capture index of the last match
	mlen int    // length of the current match

	// Indent machinery: the ordered stack of indent-stop columns and the
	// count of pending synthetic dedents. Persists across calls.
	stops []int
	ded   int

	tails []int // per-trailing-context recorded cursor, -1 = unset

	advanceFn func(buf []byte, from int) int
	overlap   int

	// runFn performs one anchored interpreter run, reporting the capture,
	// match start and end, and redo flag. The fuzzy matcher swaps in its
	// edit-tolerant variant, which may move the start past 'at' when an
	// exact occurrence overlaps an edited one.
	runFn func(at int, full bool) (cap uint16, start, end int, redo bool)

	shiftHandler func(discarded int64)

	// noShift pins the buffer while interpreter-held offsets are live; fills
	// grow instead of shifting until it clears.
	noShift bool

	stack []saved

	more       bool
	moreAnchor int

	splitEnd bool // the final split field has been returned
}

// saved is one entry of the push/pop matcher stack: a full state snapshot
// for nested scanning.
type saved struct {
	in         io.Reader
	err        error
	buf        []byte
	txt        int
	cur        int
	end        int
	eof        bool
	base       int64
	lines      int
	hold       int64
	cap        uint16
	mlen       int
	stops      []int
	ded        int
	tails      []int
	more       bool
	moreAnchor int
	splitEnd   bool
}

// New binds a compiled program and its acceleration tables to an input
// stream. The advance strategy is selected here, once per binding.
func New(prog *pattern.Program, tab *prefilter.Tables, in io.Reader) *Matcher {
	m := &Matcher{
		prog:  prog,
		tab:   tab,
		in:    in,
		hold:  -1,
		tails: make([]int, prog.Looks+1),
	}
	m.runFn = m.run
	m.bindAdvance()
	return m
}

// NewBytes binds the pattern to an in-memory input. The buffer is used
// directly without copying; the caller must not mutate it while matching.
func NewBytes(prog *pattern.Program, tab *prefilter.Tables, input []byte) *Matcher {
	m := New(prog, tab, nil)
	m.buf = input
	m.end = len(input)
	m.eof = true
	return m
}

// NewString binds the pattern to a string input.
func NewString(prog *pattern.Program, tab *prefilter.Tables, input string) *Matcher {
	return NewBytes(prog, tab, []byte(input))
}

// In rebinds the matcher to a new input source, resetting all cursor, line
// and indent state.
func (m *Matcher) In(in io.Reader) {
	m.in = in
	m.err = nil
	m.buf = nil
	m.txt, m.cur, m.end = 0, 0, 0
	m.eof = in == nil
	m.base, m.lines = 0, 0
	m.hold = -1
	m.cap, m.mlen = 0, 0
	m.stops = m.stops[:0]
	m.ded = 0
	m.more = false
	m.splitEnd = false
	for i := range m.tails {
		m.tails[i] = -1
	}
}

// InBytes rebinds the matcher to an in-memory input.
func (m *Matcher) InBytes(input []byte) {
	m.In(nil)
	m.buf = input
	m.end = len(input)
	m.eof = true
}

// InString rebinds the matcher to a string input.
func (m *Matcher) InString(input string) {
	m.InBytes([]byte(input))
}

// SetMaxBufferSize bounds the internal buffer. Exceeding the bound during
// matching panics with ErrBufferLimit; zero means unlimited.
func (m *Matcher) SetMaxBufferSize(n int) {
	m.max = n
}

// OnShift registers a handler observing the number of bytes discarded from
// the front of the buffer whenever it is shifted. Long-lived consumers use
// this to re-base any stream offsets they hold.
func (m *Matcher) OnShift(fn func(discarded int64)) {
	m.shiftHandler = fn
}

// Err returns the first non-EOF error reported by the input source. Matching
// treats such errors as end of input.
func (m *Matcher) Err() error { return m.err }

// Accept returns the capture index of the last match, or NoMatch.
func (m *Matcher) Accept() int { return int(m.cap) }

// Text returns the matched bytes (for Split, the field before the matched
// delimiter). The slice is a view into the internal buffer, valid only until
// the next matching call.
func (m *Matcher) Text() []byte {
	return m.buf[m.txt : m.txt+m.mlen]
}

// TextString returns the matched text as an owned string.
func (m *Matcher) TextString() string {
	return string(m.Text())
}

// Size returns the length of the current match in bytes.
func (m *Matcher) Size() int { return m.mlen }

// First returns the stream offset of the match start. Offsets are monotonic
// across buffer shifting.
func (m *Matcher) First() int64 {
	return m.base + int64(m.txt)
}

// Last returns the stream offset one past the match end.
func (m *Matcher) Last() int64 {
	return m.base + int64(m.txt+m.mlen)
}

// Rest buffers all remaining input and returns it without consuming the
// current match state. The slice is valid only until the next matching call.
func (m *Matcher) Rest() []byte {
	for !m.eof {
		m.fill()
	}
	return m.buf[m.cur:m.end]
}

// More makes the next match include the current match's text: the next
// accepted match will report a start at the current match's start.
func (m *Matcher) More() {
	m.more = true
	m.moreAnchor = m.txt
}

// Less truncates the current match to n bytes and rewinds the cursor so the
// truncated tail is matched again by the next call.
func (m *Matcher) Less(n int) {
	if n < 0 || n > m.mlen {
		return
	}
	m.mlen = n
	m.cur = m.txt + n
}

// Peek returns the next unread byte without consuming it, or -1 at end of
// input.
func (m *Matcher) Peek() int {
	b, ok := m.fetch(m.cur)
	if !ok {
		return -1
	}
	return int(b)
}

// Stops returns the current indent-stop columns, outermost first. The slice
// is a view into matcher state; callers must not mutate it.
func (m *Matcher) Stops() []int { return m.stops }

// Push saves the complete matcher state, including a snapshot of the
// buffer, for nested scanning. Restore it with Pop.
func (m *Matcher) Push() {
	m.stack = append(m.stack, saved{
		in:         m.in,
		err:        m.err,
		buf:        append([]byte(nil), m.buf[:m.end]...),
		txt:        m.txt,
		cur:        m.cur,
		end:        m.end,
		eof:        m.eof,
		base:       m.base,
		lines:      m.lines,
		hold:       m.hold,
		cap:        m.cap,
		mlen:       m.mlen,
		stops:      append([]int(nil), m.stops...),
		ded:        m.ded,
		tails:      append([]int(nil), m.tails...),
		more:       m.more,
		moreAnchor: m.moreAnchor,
		splitEnd:   m.splitEnd,
	})
}

// Pop restores the most recently pushed matcher state. Reports whether a
// saved state existed.
func (m *Matcher) Pop() bool {
	if len(m.stack) == 0 {
		return false
	}
	s := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.in = s.in
	m.err = s.err
	m.buf = s.buf
	m.txt, m.cur, m.end = s.txt, s.cur, s.end
	m.eof = s.eof
	m.base, m.lines = s.base, s.lines
	m.hold = s.hold
	m.cap, m.mlen = s.cap, s.mlen
	m.stops = s.stops
	m.ded = s.ded
	m.tails = s.tails
	m.more, m.moreAnchor = s.more, s.moreAnchor
	m.splitEnd = s.splitEnd
	return true
}

// bindAdvance selects the advance strategy once per pattern-to-matcher
// binding: the prefilter tables drive candidate search, and the simd package
// has already probed CPU features to pick its kernel width.
func (m *Matcher) bindAdvance() {
	for i := range m.tails {
		m.tails[i] = -1
	}
	tab := m.tab
	if tab == nil {
		m.advanceFn = func(_ []byte, from int) int { return from }
		m.overlap = 1
		return
	}
	m.advanceFn = tab.Find
	m.overlap = tab.Overlap()
}
