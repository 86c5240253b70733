package matcher

import (
	"github.com/coregx/lexre/pattern"
)

// maxHops bounds consecutive zero-width transitions so degenerate assertion
// cycles cannot hang the interpreter.
const maxHops = 1000

// Scan attempts an anchored match at the cursor and returns the capture
// index, or NoMatch. The cursor advances past an accepted match; on failure
// it stays put. Matches of negative subpatterns are consumed and ignored
// unless the pattern was compiled with AcceptNegative.
func (m *Matcher) Scan() int {
	m.compact()
	for {
		cap, start, end, redo := m.runFn(m.cur, false)
		if cap == NoMatch {
			return NoMatch
		}
		if redo && !m.prog.Opts.AcceptNegative {
			// A shift inside atEOF re-bases m.cur, so bump it rather than
			// assigning from the stale local.
			m.cur = end
			if end == start {
				if m.atEOF(m.cur) {
					return NoMatch
				}
				m.cur++
			}
			continue
		}
		m.settle(start, end, cap)
		return int(cap)
	}
}

// Find searches forward for the leftmost match, using the acceleration
// tables to advance over positions that cannot start one. Returns the
// capture index, or NoMatch when the rest of the input holds no match.
//
// Empty matches are skipped unless the pattern was compiled with
// NullableFind; an accepted empty match still advances the search position
// so repeated calls make progress.
func (m *Matcher) Find() int {
	m.compact()
	for {
		cap, start, end, redo := m.runFn(m.cur, false)
		ok := cap != NoMatch
		if ok && redo && !m.prog.Opts.AcceptNegative {
			ok = false
		}
		if ok && end == start && !m.prog.Opts.NullableFind {
			ok = false
		}
		if ok {
			m.settle(start, end, cap)
			// A shift inside atEOF re-bases m.cur, so bump it rather than
			// assigning from the stale local.
			if end == start && !m.atEOF(m.cur) {
				m.cur++
			}
			return int(cap)
		}
		if !m.relocate() {
			m.cur = m.end
			return NoMatch
		}
	}
}

// Matches reports whether the pattern matches the entire remaining input.
// Lazy quantifiers are allowed to run long here, since only acceptance at
// end of input counts.
func (m *Matcher) Matches() bool {
	m.compact()
	// The whole remaining input is the match span, so it stays buffered.
	pinned := m.noShift
	m.noShift = true
	defer func() { m.noShift = pinned }()

	cap, start, end, redo := m.runFn(m.cur, true)
	if cap == NoMatch {
		return false
	}
	if redo && !m.prog.Opts.AcceptNegative {
		return false
	}
	if !m.atEOF(end) {
		return false
	}
	m.settle(start, end, cap)
	return true
}

// Split returns the next field: the text between the previous match end and
// the next occurrence of the pattern, with the pattern acting as the field
// delimiter. The return value is the capture index of the delimiter; the
// final field, delimited by end of input, reports Subpatterns+1. After the
// final field Split returns NoMatch.
//
// When the input ends exactly on a delimiter the final field is empty.
func (m *Matcher) Split() int {
	if m.splitEnd {
		return NoMatch
	}
	m.compact()
	// The field start survives buffer shifts as a stream offset. Holding it
	// also keeps the field bytes resident while the search runs ahead.
	absField := m.base + int64(m.cur)
	m.hold = absField
	defer func() { m.hold = -1 }()
	for {
		cap, start, end, redo := m.runFn(m.cur, false)
		ok := cap != NoMatch
		if ok && redo && !m.prog.Opts.AcceptNegative {
			ok = false
		}
		if ok && end == start && !m.prog.Opts.NullableFind {
			ok = false
		}
		if ok {
			m.txt = int(absField - m.base)
			m.mlen = start - m.txt
			m.cap = cap
			m.cur = end
			if end == start {
				if m.atEOF(m.cur) {
					m.splitEnd = true
				} else {
					m.cur++
				}
			}
			return int(cap)
		}
		if !m.relocate() {
			for !m.eof {
				m.fill()
			}
			m.txt = int(absField - m.base)
			m.mlen = m.end - m.txt
			m.cur = m.end
			m.cap = uint16(m.prog.Subpatterns + 1)
			m.splitEnd = true
			return int(m.cap)
		}
	}
}

// settle records an accepted match.
func (m *Matcher) settle(start, end int, cap uint16) {
	m.txt = start
	if m.more {
		m.txt = m.moreAnchor
		m.more = false
	}
	m.mlen = end - m.txt
	m.cur = end
	m.cap = cap
}

// run interprets the bytecode anchored at buffer offset 'at' and returns the
// capture index, match start and end, and redo flag of the best acceptance
// on the path, or NoMatch. The first-declared alternative wins over any
// longer acceptance of a later alternative; within one alternative the
// longest acceptance wins. The start is always 'at' here; the fuzzy variant
// may move it. With full set, lazy accepts do not cut the run short.
//
// Each state block is prescanned for its take before assertions are hopped,
// so the recorded match end reflects state entry. Trailing-context ends
// recorded by OpHead override the cursor at acceptance.
func (m *Matcher) run(at int, full bool) (uint16, int, int, bool) {
	// Buffer offsets held in locals must stay valid across fills.
	pinned := m.noShift
	m.noShift = true
	defer func() { m.noShift = pinned }()

	ops := m.prog.Ops
	pc := uint32(0)
	cur := at
	acc := uint16(NoMatch)
	accEnd := at
	accRedo := false
	for i := range m.tails {
		m.tails[i] = -1
	}
	hops := 0

	for {
		// Acceptance prescan over the whole block.
		tail := -1
		cut := false
		for i := pc; ops[i].Kind != pattern.OpHalt; i++ {
			switch op := ops[i]; op.Kind {
			case pattern.OpTail:
				tail = int(op.Capture)
			case pattern.OpTake, pattern.OpRedo:
				end := cur
				if tail >= 0 && m.tails[tail] >= 0 {
					end = m.tails[tail]
				}
				if acc == NoMatch || op.Capture < acc || (op.Capture == acc && end > accEnd) {
					acc = op.Capture
					accEnd = end
					accRedo = op.Kind == pattern.OpRedo
				}
				cut = op.Kind == pattern.OpTake && op.Lazy
			}
		}
		if cut && !full {
			break
		}

		// Zero-width control: head bookkeeping and assertions precede the
		// consuming ranges in a block.
		i := pc
		hopped := false
		for ; ; i++ {
			op := ops[i]
			if op.Kind == pattern.OpHead {
				m.tails[op.Capture] = cur
				pc = op.Target
				hopped = true
				break
			}
			if op.Kind != pattern.OpMeta {
				break
			}
			if m.metaHolds(op.Meta, cur) {
				pc = op.Target
				hopped = true
				break
			}
		}
		if hopped {
			hops++
			if hops > maxHops {
				break
			}
			continue
		}

		// Byte dispatch over the sorted, disjoint ranges.
		c, ok := m.fetch(cur)
		if !ok {
			break
		}
		next := uint32(0)
		found := false
		for ; ops[i].Kind == pattern.OpRange; i++ {
			op := ops[i]
			if c < op.Lo {
				break
			}
			if c <= op.Hi {
				next = op.Target
				found = true
				break
			}
		}
		if !found {
			break
		}
		cur++
		pc = next
		hops = 0
	}
	if acc == NoMatch {
		return NoMatch, at, at, false
	}
	return acc, at, accEnd, accRedo
}

// metaHolds evaluates one zero-width assertion at buffer offset cur. Indent
// assertions mutate the indent-stop stack as a side effect; that state
// persists across matching calls.
func (m *Matcher) metaHolds(kind pattern.MetaKind, cur int) bool {
	switch kind {
	case pattern.MetaBOB:
		return m.base == 0 && cur == 0
	case pattern.MetaEOB:
		return m.atEOF(cur)
	case pattern.MetaBOL:
		// A shift boundary always falls on a line start, so offset zero is a
		// line start whether or not bytes were discarded before it.
		return cur == 0 || m.buf[cur-1] == '\n'
	case pattern.MetaEOL:
		if m.atEOF(cur) {
			return true
		}
		return m.buf[cur] == '\n'
	case pattern.MetaWB:
		return m.wordBefore(cur) != m.wordAt(cur)
	case pattern.MetaNWB:
		return m.wordBefore(cur) == m.wordAt(cur)
	case pattern.MetaBWB:
		return !m.wordBefore(cur) && m.wordAt(cur)
	case pattern.MetaEWB:
		return m.wordBefore(cur) && !m.wordAt(cur)
	case pattern.MetaInd, pattern.MetaDed, pattern.MetaUnd:
		return m.indentHolds(kind, cur)
	}
	return false
}

func (m *Matcher) wordBefore(cur int) bool {
	if cur == 0 {
		return false
	}
	return isWordByte(m.buf[cur-1])
}

func (m *Matcher) wordAt(cur int) bool {
	b, ok := m.fetch(cur)
	return ok && isWordByte(b)
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z')
}
