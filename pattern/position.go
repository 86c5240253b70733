package pattern

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Pos is an encoded position in the parsed pattern: one point of the
// Thompson construction generalized with lazy and anchor metadata.
//
// A position is identified by its location in the normalized pattern text plus
// an iteration index that disambiguates copies of positions inside expanded
// bounded repeats. The remaining bits carry quantifier and assertion metadata:
//
//	bits  0-15  location (or capture index when the accept bit is set)
//	bits 16-31  iteration index
//	bits 32-39  lazy quantifier id (0 = greedy)
//	bits 40-47  lookahead id (0 = none)
//	bit  48     negate (position belongs to a negative subpattern)
//	bit  49     ticked (position sits inside a trailing context)
//	bit  50     anchor (zero-width assertion, consumes no input)
//	bit  51     accept (pattern acceptance marker, not a character test)
//
// Positions are immutable values; the with* methods return modified copies.
type Pos uint64

const (
	posIterShift = 16
	posLazyShift = 32
	posLookShift = 40

	posNegate Pos = 1 << 48
	posTicked Pos = 1 << 49
	posAnchor Pos = 1 << 50
	posAccept Pos = 1 << 51
)

// newPos returns a character-consuming position at the given location.
func newPos(loc int) Pos {
	return Pos(uint64(loc) & 0xFFFF)
}

// newAnchorPos returns a zero-width assertion position at the given location.
func newAnchorPos(loc int) Pos {
	return newPos(loc) | posAnchor
}

// newAcceptPos returns an accept marker for the given capture index.
func newAcceptPos(capture int) Pos {
	return Pos(uint64(capture)&0xFFFF) | posAccept
}

// Loc returns the location of the position in the pattern text, or the
// capture index if the position is an accept marker.
func (p Pos) Loc() int { return int(p & 0xFFFF) }

// Iter returns the iteration index of the position.
func (p Pos) Iter() int { return int(p>>posIterShift) & 0xFFFF }

// Lazy returns the lazy quantifier id, or 0 for greedy positions.
func (p Pos) Lazy() uint8 { return uint8(p >> posLazyShift) }

// Look returns the lookahead id, or 0 when the position is not part of a
// trailing context.
func (p Pos) Look() uint8 { return uint8(p >> posLookShift) }

// Negated reports whether the position belongs to a negative subpattern.
func (p Pos) Negated() bool { return p&posNegate != 0 }

// Ticked reports whether the position sits inside a trailing context.
func (p Pos) Ticked() bool { return p&posTicked != 0 }

// Anchor reports whether the position is a zero-width assertion.
func (p Pos) Anchor() bool { return p&posAnchor != 0 }

// Accepting reports whether the position is an accept marker.
func (p Pos) Accepting() bool { return p&posAccept != 0 }

func (p Pos) withIter(n int) Pos {
	return (p &^ (Pos(0xFFFF) << posIterShift)) | Pos(uint64(n)&0xFFFF)<<posIterShift
}

func (p Pos) withLazy(id uint8) Pos {
	return (p &^ (Pos(0xFF) << posLazyShift)) | Pos(id)<<posLazyShift
}

func (p Pos) withLook(id uint8) Pos {
	return (p &^ (Pos(0xFF) << posLookShift)) | Pos(id)<<posLookShift
}

func (p Pos) withNegate() Pos { return p | posNegate }

func (p Pos) withTicked() Pos { return p | posTicked }

// String returns a debug representation such as "12.3" or "#1".
func (p Pos) String() string {
	switch {
	case p.Accepting():
		return fmt.Sprintf("#%d", p.Loc())
	case p.Anchor():
		return fmt.Sprintf("^%d.%d", p.Loc(), p.Iter())
	default:
		return fmt.Sprintf("%d.%d", p.Loc(), p.Iter())
	}
}

// Positions is a set of positions identifying one DFA state. The slice is
// kept sorted and deduplicated so that sets compare by value.
type Positions []Pos

// insert adds p keeping the set sorted, and reports whether it was added.
func (ps *Positions) insert(p Pos) bool {
	s := *ps
	i := sort.Search(len(s), func(i int) bool { return s[i] >= p })
	if i < len(s) && s[i] == p {
		return false
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = p
	*ps = s
	return true
}

// union inserts all positions of other into the set.
func (ps *Positions) union(other Positions) {
	for _, p := range other {
		ps.insert(p)
	}
}

// contains reports whether p is in the set.
func (ps Positions) contains(p Pos) bool {
	i := sort.Search(len(ps), func(i int) bool { return ps[i] >= p })
	return i < len(ps) && ps[i] == p
}

// clone returns an independent copy of the set.
func (ps Positions) clone() Positions {
	out := make(Positions, len(ps))
	copy(out, ps)
	return out
}

// key returns a byte-string identity usable as a map key. Two position sets
// have equal keys exactly when they contain the same positions.
func (ps Positions) key() string {
	buf := make([]byte, 8*len(ps))
	for i, p := range ps {
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(p))
	}
	return string(buf)
}

// String returns a debug representation such as "{1.0 4.0 #1}".
func (ps Positions) String() string {
	out := "{"
	for i, p := range ps {
		if i > 0 {
			out += " "
		}
		out += p.String()
	}
	return out + "}"
}
