package prefilter

import "github.com/coregx/lexre/pattern"

// The predict-match filter: for each of the first min (at most 8) byte
// positions of a candidate window, a rolling hash of the preceding bytes is
// folded and a per-depth bit is looked up in a fixed-size array. A bit was
// set at build time for every byte sequence reachable in the DFA, so an
// unset bit proves no match starts at the window head. The filter has no
// false negatives by construction; its hash width and depth are performance
// knobs only.
const (
	pmBits        = 14
	pmMask        = 1<<pmBits - 1
	pmMaxDepth    = 8
	pmMaxFrontier = 1 << 15
)

type predictFilter struct {
	bits  []uint8 // 1<<pmBits entries; bit k set = some match prefix of length k+1 hashes here
	depth int
}

// PredictHash folds one byte into the rolling predict-match hash.
func PredictHash(h uint32, b byte) uint32 {
	return (h<<3 ^ uint32(b)) & pmMask
}

// buildPredict walks every DFA path of length up to min(minLen, 8) and sets
// the hash bit of each reachable byte sequence. Returns nil when the pattern
// can match empty input or when the reachable prefix space is too dense for
// the filter to pay off.
func buildPredict(prog *pattern.Program, minLen int) *predictFilter {
	depth := minLen
	if depth > pmMaxDepth {
		depth = pmMaxDepth
	}
	if depth == 0 {
		return nil
	}

	type item struct {
		off uint32
		h   uint32
	}
	bits := make([]uint8, 1<<pmBits)
	seen := make(map[uint64]bool)
	closure := func(items []item) []item {
		var out []item
		stack := items
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			key := uint64(it.off)<<32 | uint64(it.h)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, it)
			for _, z := range readBlock(prog.Ops, it.off).zeros {
				stack = append(stack, item{off: z, h: it.h})
			}
		}
		return out
	}

	frontier := closure([]item{{off: 0, h: 0}})
	for k := 0; k < depth; k++ {
		var next []item
		for _, it := range frontier {
			for _, r := range readBlock(prog.Ops, it.off).ranges {
				for c := int(r.Lo); c <= int(r.Hi); c++ {
					h2 := PredictHash(it.h, byte(c))
					bits[h2] |= 1 << k
					next = append(next, item{off: r.Target, h: h2})
				}
			}
		}
		seen = make(map[uint64]bool)
		frontier = closure(next)
		if len(frontier) > pmMaxFrontier {
			return nil
		}
	}
	return &predictFilter{bits: bits, depth: depth}
}

// reject reports that no match can start at the head of window. Windows
// shorter than the filter depth are tested over their available bytes, which
// keeps rejection safe near the end of the buffer.
func (f *predictFilter) reject(window []byte) bool {
	n := f.depth
	if len(window) < n {
		n = len(window)
	}
	h := uint32(0)
	for k := 0; k < n; k++ {
		h = PredictHash(h, window[k])
		if f.bits[h]&(1<<k) == 0 {
			return true
		}
	}
	return false
}
