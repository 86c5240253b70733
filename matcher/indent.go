package matcher

import "github.com/coregx/lexre/pattern"

// indentHolds evaluates the indent assertions against the indent-stop stack.
//
// An indent holds when the column at cur opens a new, deeper stop; it is
// pushed. A dedent holds when the column retreats below the innermost stop;
// all deeper stops are popped and one dedent is reported per call, with the
// surplus reported by subsequent dedent evaluations at the same position. An
// undent holds when the column realigns exactly with the innermost stop; it
// clears any pending dedents without push or pop.
func (m *Matcher) indentHolds(kind pattern.MetaKind, cur int) bool {
	// Indent state is defined at the first non-blank column of a line: a
	// position still inside leading blanks is not an indent point, and blank
	// lines leave the stop stack untouched.
	if b, ok := m.fetch(cur); ok && (b == ' ' || b == '\t' || b == '\n' || b == '\r') {
		return false
	}
	switch kind {
	case pattern.MetaInd:
		col := m.colAt(cur)
		if col == 0 {
			return false
		}
		if len(m.stops) > 0 && col <= m.stops[len(m.stops)-1] {
			return false
		}
		m.stops = append(m.stops, col)
		return true

	case pattern.MetaDed:
		if m.ded > 0 {
			m.ded--
			return true
		}
		if len(m.stops) == 0 {
			return false
		}
		col := m.colAt(cur)
		if col >= m.stops[len(m.stops)-1] {
			return false
		}
		n := 0
		for len(m.stops) > 0 && m.stops[len(m.stops)-1] > col {
			m.stops = m.stops[:len(m.stops)-1]
			n++
		}
		m.ded = n - 1
		return true

	case pattern.MetaUnd:
		if len(m.stops) == 0 {
			return false
		}
		if m.colAt(cur) != m.stops[len(m.stops)-1] {
			return false
		}
		m.ded = 0
		return true
	}
	return false
}
