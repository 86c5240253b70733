// Package lexre compiles lexer-style regular expression patterns into
// deterministic bytecode and matches them over buffered, streamed input.
//
// lexre is built for tokenizers and scanners rather than one-shot string
// search: a pattern is a set of alternatives, matching reports which
// alternative matched, and the matcher keeps line, column and indent state
// across calls so a scanner loop can be written directly against it.
//
//   - Patterns compile to a DFA via position-set construction; matching is
//     a single forward interpreter pass, never backtracking.
//   - Find is accelerated by tables built at compile time: extracted
//     needles, Boyer-Moore style skipping and predictive hashing.
//   - Input is read incrementally from any io.Reader; the buffer grows and
//     shifts on its own, and match offsets stay stable across shifts.
//   - Approximate matching within a bounded edit distance is available
//     through FuzzyMatcher.
//
// Basic usage:
//
//	p, err := lexre.Compile(`\w+|\d+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m := p.MatcherString("width 80")
//	for m.Find() != 0 {
//	    fmt.Printf("%d: %s\n", m.Accept(), m.TextString())
//	}
//
// Scanner usage, with one token kind per alternative:
//
//	p := lexre.MustCompile(`[a-z]+|[0-9]+|[ \t]+`)
//	m := p.Matcher(os.Stdin)
//	for {
//	    switch m.Scan() {
//	    case 1: // identifier
//	    case 2: // number
//	    case 3: // whitespace
//	    default:
//	        return
//	    }
//	}
package lexre

import (
	"io"

	"github.com/coregx/lexre/matcher"
	"github.com/coregx/lexre/pattern"
	"github.com/coregx/lexre/prefilter"
)

// Options is the compile-time configuration; see the pattern package for
// the individual knobs.
type Options = pattern.Options

// FuzzyConfig tunes approximate matching; see matcher.FuzzyConfig.
type FuzzyConfig = matcher.FuzzyConfig

// DefaultOptions returns the default compile configuration.
func DefaultOptions() Options {
	return pattern.DefaultOptions()
}

// DefaultFuzzyConfig allows one edit of any kind.
func DefaultFuzzyConfig() FuzzyConfig {
	return matcher.DefaultFuzzyConfig()
}

// Pattern is a compiled pattern: the bytecode program plus the acceleration
// tables derived from it. A Pattern is immutable and safe to share across
// goroutines; each goroutine binds its own matcher.
type Pattern struct {
	prog *pattern.Program
	tab  *prefilter.Tables
}

// Compile compiles a pattern with default options.
//
// A pattern is one or more alternatives; matching reports the 1-based index
// of the alternative that matched. Compile returns a *pattern.ParseError
// describing the offending position on malformed patterns.
func Compile(pat string) (*Pattern, error) {
	return CompileOptions(pat, pattern.DefaultOptions())
}

// CompileOptions compiles a pattern with explicit options.
func CompileOptions(pat string, opts Options) (*Pattern, error) {
	prog, err := pattern.Compile(pat, opts)
	if err != nil {
		return nil, err
	}
	return &Pattern{prog: prog, tab: prefilter.Build(prog)}, nil
}

// CompileOptionString compiles a pattern with options given in compact
// string form, such as "A;N;T=4". See pattern.ParseOptionString.
func CompileOptionString(pat, optstr string) (*Pattern, error) {
	opts, err := pattern.ParseOptionString(optstr)
	if err != nil {
		return nil, err
	}
	return CompileOptions(pat, opts)
}

// MustCompile is Compile for patterns known to be valid; it panics on error.
//
//	var word = lexre.MustCompile(`\w+`)
func MustCompile(pat string) *Pattern {
	p, err := Compile(pat)
	if err != nil {
		panic("lexre: Compile(`" + pat + "`): " + err.Error())
	}
	return p
}

// Matcher binds the pattern to an input stream.
func (p *Pattern) Matcher(in io.Reader) *matcher.Matcher {
	return matcher.New(p.prog, p.tab, in)
}

// MatcherBytes binds the pattern to an in-memory input without copying.
func (p *Pattern) MatcherBytes(input []byte) *matcher.Matcher {
	return matcher.NewBytes(p.prog, p.tab, input)
}

// MatcherString binds the pattern to a string input.
func (p *Pattern) MatcherString(input string) *matcher.Matcher {
	return matcher.NewString(p.prog, p.tab, input)
}

// FuzzyMatcher binds the pattern to an input stream with an edit-distance
// budget.
func (p *Pattern) FuzzyMatcher(in io.Reader, cfg FuzzyConfig) *matcher.FuzzyMatcher {
	return matcher.NewFuzzy(p.prog, p.tab, in, cfg)
}

// FuzzyMatcherString binds the fuzzy matcher to a string input.
func (p *Pattern) FuzzyMatcherString(input string, cfg FuzzyConfig) *matcher.FuzzyMatcher {
	return matcher.NewFuzzyString(p.prog, p.tab, input, cfg)
}

// MatchString reports whether the pattern matches all of s.
func (p *Pattern) MatchString(s string) bool {
	return p.MatcherString(s).Matches()
}

// FindString returns the leftmost match in s, or "" and false.
func (p *Pattern) FindString(s string) (string, bool) {
	m := p.MatcherString(s)
	if m.Find() == matcher.NoMatch {
		return "", false
	}
	return m.TextString(), true
}

// String returns the pattern source text.
func (p *Pattern) String() string {
	return p.prog.Source
}

// Subpatterns returns the number of top-level alternatives; capture indexes
// reported by matching run from 1 to Subpatterns.
func (p *Pattern) Subpatterns() int {
	return p.prog.Subpatterns
}

// Nullable reports whether the pattern accepts the empty string.
func (p *Pattern) Nullable() bool {
	return p.prog.Nullable
}

// MinLength returns the length in bytes of the shortest possible match,
// capped at 255.
func (p *Pattern) MinLength() int {
	return p.tab.Min
}

// Prefix returns the fixed byte prefix every match starts with, if any.
func (p *Pattern) Prefix() []byte {
	return p.tab.Prefix
}

// Needles returns the extracted finite match set when the pattern denotes
// one, and whether that set is complete. A complete needle set means find
// candidates need no interpreter confirmation.
func (p *Pattern) Needles() ([][]byte, bool) {
	return p.tab.Needles, p.tab.Complete
}

// Stats returns compile-time statistics: position, state and edge counts
// plus per-phase timings.
func (p *Pattern) Stats() pattern.Stats {
	return p.prog.Stats
}

// Dump renders the compiled bytecode for debugging.
func (p *Pattern) Dump() string {
	return p.prog.DumpString()
}
