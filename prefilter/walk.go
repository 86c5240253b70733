package prefilter

import (
	"github.com/coregx/lexre/internal/sparse"
	"github.com/coregx/lexre/pattern"
)

// block is the decoded instruction block of one DFA state.
type block struct {
	ranges []pattern.Op // OpRange instructions, sorted and disjoint
	zeros  []uint32     // zero-width jump targets (OpMeta, OpHead)
	take   bool
	redo   bool
}

// readBlock decodes the state block starting at off.
func readBlock(ops []pattern.Op, off uint32) block {
	var b block
	for i := off; int(i) < len(ops); i++ {
		op := ops[i]
		switch op.Kind {
		case pattern.OpHalt:
			return b
		case pattern.OpRange:
			b.ranges = append(b.ranges, op)
		case pattern.OpMeta, pattern.OpHead:
			b.zeros = append(b.zeros, op.Target)
		case pattern.OpTake:
			b.take = true
		case pattern.OpRedo:
			b.redo = true
		}
	}
	return b
}

// zeroClosure expands a set of offsets over zero-width edges: the result
// contains every block reachable without consuming a byte.
func zeroClosure(ops []pattern.Op, offsets []uint32, visited *sparse.Set) []uint32 {
	var out []uint32
	stack := append([]uint32(nil), offsets...)
	for len(stack) > 0 {
		off := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visited.Insert(off) {
			continue
		}
		out = append(out, off)
		stack = append(stack, readBlock(ops, off).zeros...)
	}
	return out
}

const minLenCap = 255

// minLength computes the minimum number of bytes any match consumes:
// a breadth-first walk over the DFA where zero-width edges cost nothing,
// capped at 255. Patterns with no reachable accept also report the cap.
func minLength(prog *pattern.Program) int {
	visited := sparse.New(uint32(len(prog.Ops)))
	frontier := []uint32{0}
	for depth := 0; depth <= minLenCap; depth++ {
		layer := zeroClosure(prog.Ops, frontier, visited)
		var next []uint32
		for _, off := range layer {
			b := readBlock(prog.Ops, off)
			if b.take || b.redo {
				return depth
			}
			for _, r := range b.ranges {
				next = append(next, r.Target)
			}
		}
		if len(next) == 0 {
			return minLenCap
		}
		frontier = next
	}
	return minLenCap
}

// fixedPrefix extracts the deterministic prefix of the pattern: the bytes
// consumed while each state has exactly one single-byte transition and no
// assertion or accept.
func fixedPrefix(prog *pattern.Program) []byte {
	var prefix []byte
	seen := sparse.New(uint32(len(prog.Ops)))
	seen.Insert(0)
	off := uint32(0)
	for len(prefix) < minLenCap {
		b := readBlock(prog.Ops, off)
		if b.take || b.redo || len(b.zeros) > 0 {
			break
		}
		if len(b.ranges) != 1 || b.ranges[0].Lo != b.ranges[0].Hi {
			break
		}
		prefix = append(prefix, b.ranges[0].Lo)
		off = b.ranges[0].Target
		if !seen.Insert(off) {
			break
		}
	}
	return prefix
}

// fixedNeedles expands the pattern into its exact fixed-string disjunction,
// if it is one: no assertions, no negative subpatterns, at most maxNeedles
// strings of at most maxNeedleLen bytes. The second result reports whether
// the expansion is complete, i.e. a needle hit is a full match.
func fixedNeedles(prog *pattern.Program) ([][]byte, bool) {
	const maxSteps = 4096
	var (
		needles [][]byte
		steps   int
		onStack = make(map[uint32]bool)
	)
	var walk func(off uint32, cur []byte) bool
	walk = func(off uint32, cur []byte) bool {
		if steps++; steps > maxSteps {
			return false
		}
		if onStack[off] {
			return false
		}
		b := readBlock(prog.Ops, off)
		if b.redo || len(b.zeros) > 0 {
			return false
		}
		if b.take {
			if len(cur) == 0 || len(needles) >= maxNeedles {
				return false
			}
			needles = append(needles, append([]byte(nil), cur...))
		}
		onStack[off] = true
		defer delete(onStack, off)
		for _, r := range b.ranges {
			if len(cur)+1 > maxNeedleLen {
				return false
			}
			for c := int(r.Lo); c <= int(r.Hi); c++ {
				if !walk(r.Target, append(cur, byte(c))) {
					return false
				}
			}
		}
		return true
	}
	if !walk(0, nil) || len(needles) == 0 {
		return nil, false
	}
	return needles, true
}

// startBytes collects the distinct bytes that can begin a match, following
// zero-width edges from the start state. Returns nil when more than eight
// bytes qualify, as a wide set accelerates nothing.
func startBytes(prog *pattern.Program) []byte {
	var present [256]bool
	visited := sparse.New(uint32(len(prog.Ops)))
	for _, off := range zeroClosure(prog.Ops, []uint32{0}, visited) {
		for _, r := range readBlock(prog.Ops, off).ranges {
			for c := int(r.Lo); c <= int(r.Hi); c++ {
				present[c] = true
			}
		}
	}
	var out []byte
	for c := 0; c < 256; c++ {
		if present[c] {
			if len(out) == 8 {
				return nil
			}
			out = append(out, byte(c))
		}
	}
	return out
}
