// Package pattern implements the regex pattern compiler.
//
// The compiler parses a pattern string into sets of positions (the classic
// firstpos/lastpos/followpos construction, generalized with lazy-quantifier
// and anchor metadata), performs subset construction to obtain a DFA, and
// assembles the DFA into a flat opcode table that the matching engine
// interprets. The compiled Program is immutable and safe for concurrent use.
package pattern

import "fmt"

// ErrorKind classifies pattern compilation failures.
type ErrorKind uint8

const (
	// ErrNone is the zero value and never appears in a returned error.
	ErrNone ErrorKind = iota

	// ErrMismatchedParens indicates unbalanced ( ).
	ErrMismatchedParens

	// ErrMismatchedBraces indicates unbalanced { }.
	ErrMismatchedBraces

	// ErrMismatchedBrackets indicates unbalanced [ ].
	ErrMismatchedBrackets

	// ErrMismatchedQuotation indicates an unterminated \Q...\E quotation.
	ErrMismatchedQuotation

	// ErrEmptyExpression indicates an empty subexpression where one is required.
	ErrEmptyExpression

	// ErrEmptyClass indicates an empty character class [].
	ErrEmptyClass

	// ErrInvalidClass indicates an unknown class name, as in [[:foo:]].
	ErrInvalidClass

	// ErrInvalidClassRange indicates a reversed class range such as [z-a].
	ErrInvalidClassRange

	// ErrInvalidEscape indicates an unrecognized escape sequence.
	ErrInvalidEscape

	// ErrInvalidAnchor indicates an anchor that is not valid in the current mode.
	ErrInvalidAnchor

	// ErrInvalidRepeat indicates a malformed or reversed repeat such as {10,1}.
	ErrInvalidRepeat

	// ErrInvalidQuantifier indicates a quantifier with nothing to repeat.
	ErrInvalidQuantifier

	// ErrInvalidModifier indicates an unknown (?...) mode modifier.
	ErrInvalidModifier

	// ErrInvalidBackreference indicates a backreference, which this engine
	// does not support (the compiled form is a DFA).
	ErrInvalidBackreference

	// ErrInvalidSyntax indicates a syntax error not covered by a more
	// specific kind.
	ErrInvalidSyntax

	// ErrExceedsLength indicates the pattern text exceeds internal length limits.
	ErrExceedsLength

	// ErrExceedsLimits indicates the pattern exceeds internal complexity
	// limits (too many positions or DFA states).
	ErrExceedsLimits
)

var errorKindNames = map[ErrorKind]string{
	ErrMismatchedParens:     "mismatched ( )",
	ErrMismatchedBraces:     "mismatched { }",
	ErrMismatchedBrackets:   "mismatched [ ]",
	ErrMismatchedQuotation:  "mismatched \\Q...\\E quotation",
	ErrEmptyExpression:      "empty expression",
	ErrEmptyClass:           "empty character class",
	ErrInvalidClass:         "invalid character class name",
	ErrInvalidClassRange:    "invalid character class range",
	ErrInvalidEscape:        "invalid escape sequence",
	ErrInvalidAnchor:        "invalid anchor",
	ErrInvalidRepeat:        "invalid repeat bounds",
	ErrInvalidQuantifier:    "invalid quantifier",
	ErrInvalidModifier:      "invalid mode modifier",
	ErrInvalidBackreference: "backreferences are not supported",
	ErrInvalidSyntax:        "invalid syntax",
	ErrExceedsLength:        "pattern exceeds length limit",
	ErrExceedsLimits:        "pattern exceeds complexity limits",
}

// String returns a human-readable description of the error kind.
func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return "unknown error"
}

// ParseError is the single error type raised by pattern compilation. It
// carries the error kind and the byte offset of the offending construct in
// the pattern string. A failed compile yields no usable Program.
type ParseError struct {
	Kind    ErrorKind
	Offset  int
	Pattern string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("pattern: %s at offset %d in %q", e.Kind, e.Offset, e.Pattern)
}

func (p *parser) errorAt(kind ErrorKind, offset int) *ParseError {
	return &ParseError{Kind: kind, Offset: offset, Pattern: p.pat}
}
