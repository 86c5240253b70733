package matcher

import (
	"io"

	"github.com/coregx/lexre/pattern"
	"github.com/coregx/lexre/prefilter"
)

// FuzzyConfig tunes approximate matching. Max is the edit-distance budget;
// the three kind flags select which edit operations count toward it.
type FuzzyConfig struct {
	Max           uint8
	Insertions    bool
	Deletions     bool
	Substitutions bool
}

// DefaultFuzzyConfig allows one edit of any kind.
func DefaultFuzzyConfig() FuzzyConfig {
	return FuzzyConfig{Max: 1, Insertions: true, Deletions: true, Substitutions: true}
}

// FuzzyMatcher matches with a bounded edit distance: input bytes may be
// substituted, inserted or deleted relative to the pattern, up to the
// configured budget. Exact matches are always preferred over edited ones,
// and matches with fewer edits over matches with more.
//
// All Matcher protocols and accessors apply; Edits reports the cost of the
// last match.
type FuzzyMatcher struct {
	*Matcher
	cfg   FuzzyConfig
	edits uint8
}

// NewFuzzy binds a compiled program to an input stream with an edit budget.
// A zero Max is promoted to one; a config with no edit kinds enabled
// degenerates to exact matching.
func NewFuzzy(prog *pattern.Program, tab *prefilter.Tables, in io.Reader, cfg FuzzyConfig) *FuzzyMatcher {
	if cfg.Max == 0 {
		cfg.Max = 1
	}
	f := &FuzzyMatcher{Matcher: New(prog, tab, in), cfg: cfg}
	f.Matcher.runFn = f.frun
	// The acceleration tables describe exact occurrences only; an edited
	// match may start where no exact candidate does, so find must probe
	// every position.
	f.advanceFn = func(_ []byte, from int) int { return from }
	f.overlap = 1
	return f
}

// NewFuzzyBytes binds the fuzzy matcher to an in-memory input.
func NewFuzzyBytes(prog *pattern.Program, tab *prefilter.Tables, input []byte, cfg FuzzyConfig) *FuzzyMatcher {
	f := NewFuzzy(prog, tab, nil, cfg)
	f.buf = input
	f.end = len(input)
	f.eof = true
	return f
}

// NewFuzzyString binds the fuzzy matcher to a string input.
func NewFuzzyString(prog *pattern.Program, tab *prefilter.Tables, input string, cfg FuzzyConfig) *FuzzyMatcher {
	return NewFuzzyBytes(prog, tab, []byte(input), cfg)
}

// Edits returns an upper bound on the number of edits used by the last
// match. It is zero after an exact match and never exceeds the budget.
func (f *FuzzyMatcher) Edits() uint8 { return f.edits }

// Alternative enumeration stages at a backtrack point.
const (
	stageSub = iota
	stageDel
	stageIns
	stageDone
)

// fuzzyAlt is one backtrack point: a dead-ended interpreter configuration
// plus a cursor over the edit alternatives still to try from it.
type fuzzyAlt struct {
	pc    uint32
	cur   int
	err   uint8
	op    uint32 // next OpRange to try for substitution or deletion
	stage uint8
}

// frun is the edit-tolerant anchored run. It follows the exact path
// greedily and, wherever that path dead-ends with budget to spare, branches
// over the enabled edits: substitution consumes the mismatching byte along
// a range edge, deletion follows a range edge without consuming, insertion
// consumes the byte without changing state. The best acceptance across all
// explored paths wins, fewest edits first, then the first-declared
// alternative, then longest. An edited acceptance is verified against the
// exact interpreter over its span before it is reported.
func (f *FuzzyMatcher) frun(at int, full bool) (uint16, int, int, bool) {
	m := f.Matcher
	// Locals and the backtrack stack hold raw buffer offsets.
	pinned := m.noShift
	m.noShift = true
	defer func() { m.noShift = pinned }()

	ops := m.prog.Ops
	pc := uint32(0)
	cur := at
	err := uint8(0)

	acc := uint16(NoMatch)
	accEnd := at
	accErr := uint8(0)
	accRedo := false
	var stack []fuzzyAlt

	for i := range m.tails {
		m.tails[i] = -1
	}
	hops := 0

	record := func(cap uint16, end int, e uint8, redo bool) {
		if acc == NoMatch || e < accErr ||
			(e == accErr && (cap < acc || (cap == acc && end > accEnd))) {
			acc, accEnd, accErr, accRedo = cap, end, e, redo
		}
	}

	// backtrack pops the next pending alternative into pc/cur/err. Reports
	// false when the search space is exhausted.
	backtrack := func() bool {
		for len(stack) > 0 {
			a := &stack[len(stack)-1]
			switch a.stage {
			case stageSub, stageDel:
				consuming := a.stage == stageSub
				enabled := f.cfg.Substitutions
				if !consuming {
					enabled = f.cfg.Deletions
				}
				if enabled && (!consuming || !m.atEOF(a.cur)) && ops[a.op].Kind == pattern.OpRange {
					pc = ops[a.op].Target
					cur = a.cur
					if consuming {
						cur++
					}
					err = a.err + 1
					a.op++
					return true
				}
				if a.stage == stageSub {
					a.stage = stageDel
					a.op = firstRange(ops, a.pc)
				} else {
					a.stage = stageIns
				}
			case stageIns:
				a.stage = stageDone
				if f.cfg.Insertions && !m.atEOF(a.cur) {
					pc = a.pc
					cur = a.cur + 1
					err = a.err + 1
					return true
				}
			default:
				stack = stack[:len(stack)-1]
			}
		}
		return false
	}

	// deadEnd queues the edit alternatives for the failed configuration and
	// resumes from the next pending one.
	deadEnd := func(rangeStart uint32) bool {
		if err < f.cfg.Max {
			stack = append(stack, fuzzyAlt{pc: pc, cur: cur, err: err, op: rangeStart, stage: stageSub})
		}
		hops = 0
		return backtrack()
	}

	for {
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
				record(op.Capture, end, err, op.Kind == pattern.OpRedo)
				cut = op.Kind == pattern.OpTake && op.Lazy
			}
		}
		if cut && !full {
			if !backtrack() {
				break
			}
			continue
		}

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
				if !backtrack() {
					break
				}
				hops = 0
			}
			continue
		}

		rangeStart := i
		c, ok := m.fetch(cur)
		if !ok {
			if !deadEnd(rangeStart) {
				break
			}
			continue
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
			if !deadEnd(rangeStart) {
				break
			}
			continue
		}
		cur++
		pc = next
		hops = 0
	}

	if acc == NoMatch {
		f.edits = 0
		return NoMatch, at, at, false
	}
	// An edited match must not shadow an exact occurrence inside its span:
	// rerun the exact interpreter over the span and report the leftmost
	// exact match found there instead. Full matching is anchored to the
	// whole remaining input, so its start cannot move. The buffer is pinned
	// for the whole call, so the recorded offsets stay valid here.
	if accErr > 0 && !full {
		for p := at + 1; p <= accEnd; p++ {
			if cap, start, end, redo := m.run(p, full); cap != NoMatch {
				f.edits = 0
				return cap, start, end, redo
			}
		}
	}
	f.edits = accErr
	return acc, at, accEnd, accRedo
}

// firstRange returns the offset of the first consuming instruction of the
// block at pc, or the offset of its halt when the block consumes nothing.
func firstRange(ops []pattern.Op, pc uint32) uint32 {
	i := pc
	for ops[i].Kind == pattern.OpHead || ops[i].Kind == pattern.OpMeta {
		i++
	}
	return i
}
