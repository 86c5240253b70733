package matcher

import (
	"github.com/coregx/lexre/simd"
)

// relocate moves the cursor to the next candidate match start after the
// failed attempt at the cursor, filling the buffer as the search runs off
// the buffered end. Reports false when the input is exhausted without a
// candidate.
//
// After the buffer is extended the search resumes far enough back that a
// candidate straddling the old buffer end is not missed.
func (m *Matcher) relocate() bool {
	from := m.cur + 1
	for {
		if from <= m.end {
			if cand := m.advanceFn(m.buf[:m.end], from); cand >= 0 {
				m.cur = cand
				return true
			}
		}
		if m.eof {
			return false
		}
		old := m.end
		base := m.base
		// No match can start before the resume point anymore; release those
		// bytes so a bounded buffer can shift instead of growing.
		if safe := old - m.overlap + 1; safe > 0 {
			if m.cur < safe {
				m.cur = safe
			}
			if m.txt < m.cur {
				m.txt = m.cur
				m.mlen = 0
			}
		}
		m.fill()
		// Re-base the search window if the fill shifted the buffer.
		if d := int(m.base - base); d > 0 {
			old -= d
			from -= d
			if from < 0 {
				from = 0
			}
		}
		if resume := old - m.overlap + 1; resume > from {
			from = resume
		}
	}
}

// Kernel describes the advance machinery bound to this matcher: the SIMD
// kernel width selected at startup and the candidate-search strategy
// selected when the pattern was bound.
func (m *Matcher) Kernel() string {
	if m.tab == nil {
		return simd.KernelName() + "/none"
	}
	return simd.KernelName() + "/" + m.tab.Kind().String()
}
