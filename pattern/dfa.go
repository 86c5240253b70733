package pattern

// state is one DFA state produced by subset construction: a set of positions
// plus its resolved transitions. States are uniquely identified by their
// position-set value; the builder merges states with identical sets.
type state struct {
	index  int
	pos    Positions
	accept uint16 // capture index, 0 when not accepting
	redo   bool   // accepting state of a negative subpattern
	cut    bool   // lazy accept: stop at first take instead of running longest
	look   uint8  // trailing-context id attached to the accept, 0 if none

	heads []headEdge
	metas []metaEdge
	edges []edge

	offset uint32 // opcode offset, assigned during assembly
}

// headEdge is the unconditional zero-width edge over a trailing-context
// marker: taking it records the current cursor as the retained match end.
type headEdge struct {
	look   uint8
	target *state
}

// metaEdge is a conditional zero-width edge: taken only when the assertion
// holds at the current cursor.
type metaEdge struct {
	kind   MetaKind
	target *state
}

// edge is a consuming transition over an inclusive byte range.
type edge struct {
	lo, hi byte
	target *state
}

type builder struct {
	par       *parsed
	opts      Options
	states    []*state
	index     map[string]*state
	edgeCount int
}

// buildDFA runs subset construction: starting from the firstpos set of the
// whole pattern, repeatedly partition the outgoing byte space of each state
// into maximal ranges inducing the same follow union, reusing target states
// by position-set equality.
func buildDFA(par *parsed, opts Options) ([]*state, int, error) {
	b := &builder{
		par:   par,
		opts:  opts,
		index: make(map[string]*state),
	}
	b.state(par.root.first)
	for i := 0; i < len(b.states); i++ {
		if len(b.states) > opts.maxStates() {
			return nil, 0, &ParseError{Kind: ErrExceedsLimits, Offset: 0}
		}
		b.transitions(b.states[i])
	}
	return b.states, b.edgeCount, nil
}

// state returns the DFA state for the given position set, creating it if the
// set has not been seen.
func (b *builder) state(ps Positions) *state {
	key := ps.key()
	if s, ok := b.index[key]; ok {
		return s
	}
	s := &state{index: len(b.states), pos: ps}
	b.resolveAccept(s)
	b.states = append(b.states, s)
	b.index[key] = s
	return s
}

// resolveAccept picks the accept of a state: the lowest capture index wins,
// mirroring leftmost-first disambiguation over declaration order.
func (b *builder) resolveAccept(s *state) {
	for _, p := range s.pos {
		if !p.Accepting() {
			continue
		}
		cap16 := uint16(p.Loc())
		if s.accept == 0 || cap16 < s.accept {
			s.accept = cap16
			s.redo = p.Negated()
			s.look = b.par.lookOf[int(cap16)]
		}
	}
	if s.accept == 0 {
		return
	}
	// A lazy accept cuts the longest-match loop. Continuations reached
	// through a lazily quantified subexpression carry its lazy id, so any
	// live lazy position means the shorter match is preferred.
	for _, p := range s.pos {
		if !p.Accepting() && p.Lazy() != 0 {
			s.cut = true
			return
		}
	}
}

func (b *builder) transitions(s *state) {
	b.headEdges(s)
	b.metaEdges(s)
	b.charEdges(s)
}

// headEdges resolves trailing-context marker positions: each becomes an
// unconditional bookkeeping edge to the state where the marker is replaced by
// its follow set.
func (b *builder) headEdges(s *state) {
	for _, p := range s.pos {
		if !p.Anchor() || !p.Ticked() {
			continue
		}
		target := b.advancePast(s.pos, Positions{p})
		if target.key() == s.pos.key() {
			continue
		}
		s.heads = append(s.heads, headEdge{look: p.Look(), target: b.state(target)})
	}
}

// metaEdges groups the zero-width assertion positions of a state by kind and
// emits one conditional edge per kind. The edge target keeps all other live
// positions, so failing or passing an assertion never drops alternatives.
func (b *builder) metaEdges(s *state) {
	var kinds []MetaKind
	byKind := make(map[MetaKind]Positions)
	for _, p := range s.pos {
		if !p.Anchor() || p.Ticked() {
			continue
		}
		kind, ok := b.par.metas[p.Loc()]
		if !ok {
			continue
		}
		if _, seen := byKind[kind]; !seen {
			kinds = append(kinds, kind)
		}
		set := byKind[kind]
		set.insert(p)
		byKind[kind] = set
	}
	for _, kind := range kinds {
		target := b.advancePast(s.pos, byKind[kind])
		if target.key() == s.pos.key() {
			continue
		}
		s.metas = append(s.metas, metaEdge{kind: kind, target: b.state(target)})
	}
}

// advancePast returns the position set reached by consuming the given
// zero-width positions: they are removed and replaced by their follow sets.
func (b *builder) advancePast(ps Positions, consumed Positions) Positions {
	var out Positions
	for _, p := range ps {
		if consumed.contains(p) {
			continue
		}
		out.insert(p)
	}
	for _, p := range consumed {
		out.union(b.par.follow[p])
	}
	return out
}

// charEdges partitions the byte space of a state into maximal ranges that
// induce the same follow union and emits one consuming edge per range.
func (b *builder) charEdges(s *state) {
	type consuming struct {
		pos Pos
		cls class
	}
	var cons []consuming
	for _, p := range s.pos {
		if p.Accepting() || p.Anchor() {
			continue
		}
		cls, ok := b.par.chars[p.Loc()]
		if !ok {
			continue
		}
		cons = append(cons, consuming{pos: p, cls: cls})
	}
	if len(cons) == 0 {
		return
	}

	var (
		runStart  = -1
		runKey    string
		runTarget Positions
	)
	flush := func(endExclusive int) {
		if runStart < 0 || len(runTarget) == 0 {
			return
		}
		s.edges = append(s.edges, edge{
			lo:     byte(runStart),
			hi:     byte(endExclusive - 1),
			target: b.state(runTarget),
		})
		b.edgeCount++
	}
	for c := 0; c < 256; c++ {
		var target Positions
		for _, cc := range cons {
			if cc.cls.contains(byte(c)) {
				target.union(b.par.follow[cc.pos])
			}
		}
		key := target.key()
		if runStart >= 0 && key == runKey {
			continue
		}
		flush(c)
		if len(target) == 0 {
			runStart = -1
			runKey = ""
			runTarget = nil
			continue
		}
		runStart = c
		runKey = key
		runTarget = target
	}
	flush(256)
}
