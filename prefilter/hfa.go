package prefilter

import (
	"sort"

	"github.com/coregx/lexre/pattern"
)

// HFA is the indexing hash automaton: a bounded-depth automaton over hashes
// of the byte windows a match must begin with. An external index that stores
// the window hashes present in each block of a corpus can ask the HFA
// whether a block can possibly contain a match, without running the matcher.
//
// Contract: Match returns false only if no DFA path can be taken given the
// observed hash sets; it never rules out a block that contains a match.
const (
	hfaDepth     = 8
	hfaMaxStates = 64
	hfaMaxWork   = 1 << 14
)

// HFAEdge is one level transition labelled with the window hashes under
// which it can be taken.
type HFAEdge struct {
	From, To uint16
	Hashes   []uint16 // sorted
}

// HFA levels hold the edges from depth k to depth k+1; acceptAt marks depths
// at which the pattern may already have matched completely.
type HFA struct {
	depth    int
	levels   [][]HFAEdge
	acceptAt []bool
}

// IndexHash folds one byte into the rolling window hash used by the HFA.
// Indexers must use the same fold to produce comparable hash sets.
func IndexHash(h uint16, b byte) uint16 {
	return h<<5 ^ uint16(b)
}

// buildHFA derives the hash automaton from the compiled program. Returns nil
// when the pattern's reachable prefix space exceeds the automaton bounds; an
// absent HFA simply means index pre-filtering is unavailable.
func buildHFA(prog *pattern.Program) *HFA {
	// id is the level-state a position belongs to; a zero-width hop stays in
	// the state of the position that entered it, so edges always connect ids
	// assigned by the previous level's targets.
	type item struct {
		off uint32
		h   uint16
		id  uint16
	}
	h := &HFA{depth: hfaDepth}

	nextID := func(m map[uint32]uint16, off uint32) (uint16, bool) {
		if id, ok := m[off]; ok {
			return id, true
		}
		if len(m) >= hfaMaxStates {
			return 0, false
		}
		id := uint16(len(m))
		m[off] = id
		return id, true
	}

	closure := func(items []item, seen map[uint64]bool) ([]item, bool) {
		var out []item
		stack := items
		accepts := false
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			key := uint64(it.id)<<48 | uint64(it.off)<<16 | uint64(it.h)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, it)
			b := readBlock(prog.Ops, it.off)
			if b.take || b.redo {
				accepts = true
			}
			for _, z := range b.zeros {
				stack = append(stack, item{off: z, h: it.h, id: it.id})
			}
		}
		return out, accepts
	}

	frontier, accepts := closure([]item{{off: 0, h: 0, id: 0}}, make(map[uint64]bool))
	work := 0
	for k := 0; k < hfaDepth; k++ {
		h.acceptAt = append(h.acceptAt, accepts)
		nextStates := map[uint32]uint16{}
		edgeHashes := map[uint32]map[uint16]bool{} // from<<16|to -> hash set
		var next []item
		for _, it := range frontier {
			for _, r := range readBlock(prog.Ops, it.off).ranges {
				for c := int(r.Lo); c <= int(r.Hi); c++ {
					if work++; work > hfaMaxWork {
						return nil
					}
					h2 := IndexHash(it.h, byte(c))
					to, ok := nextID(nextStates, r.Target)
					if !ok {
						return nil
					}
					ek := uint32(it.id)<<16 | uint32(to)
					if edgeHashes[ek] == nil {
						edgeHashes[ek] = make(map[uint16]bool)
					}
					edgeHashes[ek][h2] = true
					next = append(next, item{off: r.Target, h: h2, id: to})
				}
			}
		}
		var edges []HFAEdge
		for ek, hs := range edgeHashes {
			e := HFAEdge{From: uint16(ek >> 16), To: uint16(ek & 0xFFFF)}
			for v := range hs {
				e.Hashes = append(e.Hashes, v)
			}
			sort.Slice(e.Hashes, func(i, j int) bool { return e.Hashes[i] < e.Hashes[j] })
			edges = append(edges, e)
		}
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].From != edges[j].From {
				return edges[i].From < edges[j].From
			}
			return edges[i].To < edges[j].To
		})
		h.levels = append(h.levels, edges)
		frontier, accepts = closure(next, make(map[uint64]bool))
		if len(frontier) == 0 {
			h.depth = k + 1
			break
		}
	}
	return h
}

// Depth returns the number of levels of the automaton.
func (h *HFA) Depth() int { return h.depth }

// Match reports whether a block with the observed window-hash sets can
// possibly contain a match start. observed[k] must be the sorted set of
// IndexHash values of all (k+1)-byte windows present in the block. Missing
// levels (len(observed) < depth) are treated as unknown, i.e. permissive.
func (h *HFA) Match(observed [][]uint16) bool {
	if len(h.levels) == 0 {
		return true
	}
	reachable := map[uint16]bool{}
	for _, e := range h.levels[0] {
		reachable[e.From] = true
	}
	if len(reachable) == 0 {
		// Degenerate automaton: nothing to rule out.
		return true
	}
	for k := 0; k < len(h.levels); k++ {
		if h.acceptAt[k] {
			return true
		}
		if k >= len(observed) {
			return true
		}
		next := map[uint16]bool{}
		for _, e := range h.levels[k] {
			if !reachable[e.From] {
				continue
			}
			if hashesIntersect(e.Hashes, observed[k]) {
				next[e.To] = true
			}
		}
		if len(next) == 0 {
			return false
		}
		reachable = next
	}
	return true
}

// hashesIntersect reports whether two sorted uint16 slices share a value.
func hashesIntersect(a, b []uint16) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			return true
		}
	}
	return false
}
