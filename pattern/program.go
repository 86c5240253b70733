package pattern

import "time"

// Stats summarizes one compilation: node and edge counts plus phase timings.
type Stats struct {
	Positions int
	States    int
	Edges     int

	ParseTime    time.Duration
	CompileTime  time.Duration
	AssembleTime time.Duration
}

// Program is the immutable compiled artifact: the opcode table plus the
// summary data the matching engine and the acceleration builder consume.
//
// A Program is constructed once by Compile and never mutated afterward, so it
// is safe to share by reference across any number of matchers running on
// independent goroutines.
type Program struct {
	// Ops is the flat opcode table. The initial state block starts at
	// offset 0.
	Ops []Op

	// Subpatterns is the number of top-level alternatives; capture indexes
	// returned by matching run from 1 to Subpatterns.
	Subpatterns int

	// Looks is the number of trailing contexts in the pattern.
	Looks int

	// Nullable reports whether the pattern accepts the empty string.
	Nullable bool

	// Opts are the options the pattern was compiled with.
	Opts Options

	// Source is the original pattern text.
	Source string

	// Stats carries node/edge counts and compile timings.
	Stats Stats
}

// Compile parses a pattern, runs subset construction and assembles the
// opcode table. It returns a *ParseError on malformed patterns; a failed
// compile yields no usable Program.
func Compile(pat string, opts Options) (*Program, error) {
	t0 := time.Now()
	par, err := parse(pat, opts)
	if err != nil {
		return nil, err
	}
	t1 := time.Now()
	states, edges, err := buildDFA(par, opts)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Pattern = pat
		}
		return nil, err
	}
	t2 := time.Now()
	ops := assemble(states)
	t3 := time.Now()

	return &Program{
		Ops:         ops,
		Subpatterns: par.captures,
		Looks:       par.looks,
		Nullable:    states[0].accept != 0,
		Opts:        opts,
		Source:      pat,
		Stats: Stats{
			Positions:    len(par.root.all),
			States:       len(states),
			Edges:        edges,
			ParseTime:    t1.Sub(t0),
			CompileTime:  t2.Sub(t1),
			AssembleTime: t3.Sub(t2),
		},
	}, nil
}

// DumpString renders the opcode table for debugging.
func (p *Program) DumpString() string {
	return dumpOps(p.Ops)
}
