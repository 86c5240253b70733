package pattern

import "fmt"

// Options controls pattern compilation.
//
// The zero value compiles case-sensitive, single-line, byte-oriented patterns
// with a tab width of 8.
type Options struct {
	// CaseInsensitive folds ASCII letter case in literals and classes.
	CaseInsensitive bool

	// Multiline makes ^ and $ match at line boundaries instead of buffer
	// boundaries only.
	Multiline bool

	// DotAll makes '.' match newline as well.
	DotAll bool

	// FreeSpacing ignores unescaped whitespace and '#' comments in the
	// pattern, outside character classes.
	FreeSpacing bool

	// Unicode expands literal non-ASCII runes into their UTF-8 byte
	// sequences, so the byte-oriented DFA matches them exactly.
	Unicode bool

	// Indent enables the \i \j \k indent, dedent and undent anchors.
	Indent bool

	// AcceptNegative makes negative subpatterns, written (?^...), accepting:
	// their final states emit a redo instruction instead of a take.
	AcceptNegative bool

	// NullableFind allows find to report empty matches instead of skipping
	// them (the cursor still advances to guarantee progress).
	NullableFind bool

	// TabWidth is the tab stop distance used for column and indent
	// accounting. Zero means 8.
	TabWidth int

	// MaxStates bounds DFA subset construction. Zero means DefaultMaxStates.
	MaxStates int
}

// Default compilation limits.
const (
	// DefaultMaxStates bounds the number of DFA states produced by subset
	// construction before compilation fails with ErrExceedsLimits.
	DefaultMaxStates = 1 << 16

	// MaxPatternLength bounds the pattern text length; positions store
	// 16-bit locations.
	MaxPatternLength = 1<<16 - 1

	// maxRepeat bounds a single {n,m} repeat.
	maxRepeat = 255
)

// DefaultOptions returns the default compilation options.
func DefaultOptions() Options {
	return Options{TabWidth: 8, MaxStates: DefaultMaxStates}
}

func (o Options) tabWidth() int {
	if o.TabWidth <= 0 {
		return 8
	}
	return o.TabWidth
}

func (o Options) maxStates() int {
	if o.MaxStates <= 0 {
		return DefaultMaxStates
	}
	return o.MaxStates
}

// ParseOptionString parses the compact option-string form accepted alongside
// a pattern. The grammar is (A|N|T=digit|;)*:
//
//	A        enable accept-any-negative-pattern mode
//	N        enable nullable find (empty matches reported)
//	T=digit  set the tab width (1-9)
//	;        separator, ignored
//
// Unknown letters are rejected so that option typos do not silently change
// matching behavior.
func ParseOptionString(s string) (Options, error) {
	opts := DefaultOptions()
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A':
			opts.AcceptNegative = true
		case 'N':
			opts.NullableFind = true
		case 'T':
			if i+2 >= len(s) || s[i+1] != '=' || s[i+2] < '1' || s[i+2] > '9' {
				return opts, fmt.Errorf("pattern: malformed option %q: T requires =digit", s)
			}
			opts.TabWidth = int(s[i+2] - '0')
			i += 2
		case ';':
			// separator
		default:
			return opts, fmt.Errorf("pattern: unknown option %q in %q", s[i], s)
		}
	}
	return opts, nil
}
