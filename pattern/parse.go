package pattern

import (
	"unicode/utf8"
)

// parsed is the output of the parsing phase: the position sets of the whole
// pattern, the follow map consumed by subset construction, and the per-location
// character tests and anchor kinds.
type parsed struct {
	root     ast
	follow   map[Pos]Positions
	chars    map[int]class
	metas    map[int]MetaKind
	captures int // number of top-level alternatives, 1-based capture indexes
	looks    int // number of trailing contexts
	lookOf   map[int]uint8
}

// ast carries the classic firstpos/lastpos/nullable attributes of one
// subexpression, plus the set of every position created inside it. The "all"
// set is what makes bounded-repeat expansion and lazy marking possible: a
// subtree can be copied or re-tagged by remapping exactly those positions in
// the follow map.
type ast struct {
	first    Positions
	last     Positions
	all      Positions
	nullable bool
}

type parser struct {
	pat   string
	opts  Options // compile-wide options
	flags Options // current inline-modifiable flags (i, m, s, x, u)
	i     int

	follow map[Pos]Positions
	chars  map[int]class
	metas  map[int]MetaKind

	captures int
	lookOf   map[int]uint8
	lastLook uint8 // look id of the alternative just parsed, 0 if none
	lazyNext uint8
	lookNext uint8
	iterNext int
}

// parse runs the parsing phase over the whole pattern.
func parse(pat string, opts Options) (*parsed, error) {
	if len(pat) > MaxPatternLength {
		return nil, &ParseError{Kind: ErrExceedsLength, Offset: 0, Pattern: pat}
	}
	p := &parser{
		pat:    pat,
		opts:   opts,
		flags:  opts,
		follow: make(map[Pos]Positions),
		chars:  make(map[int]class),
		metas:  make(map[int]MetaKind),
		lookOf: make(map[int]uint8),
	}
	root, err := p.parseTop()
	if err != nil {
		return nil, err
	}
	return &parsed{
		root:     root,
		follow:   p.follow,
		chars:    p.chars,
		metas:    p.metas,
		captures: p.captures,
		looks:    int(p.lookNext),
		lookOf:   p.lookOf,
	}, nil
}

func (p *parser) eof() bool { return p.i >= len(p.pat) }

func (p *parser) at() byte { return p.pat[p.i] }

// skipSpace consumes insignificant whitespace and # comments in free-spacing
// mode. No-op otherwise.
func (p *parser) skipSpace() {
	if !p.flags.FreeSpacing {
		return
	}
	for !p.eof() {
		switch c := p.at(); {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.i++
		case c == '#':
			for !p.eof() && p.at() != '\n' {
				p.i++
			}
		default:
			return
		}
	}
}

// parseTop parses the top-level alternation. Each alternative becomes one
// subpattern with its own accept marker; the first-declared alternative gets
// capture index 1, mirroring leftmost-first disambiguation.
func (p *parser) parseTop() (ast, error) {
	p.skipSpace()
	if p.eof() {
		return ast{}, p.errorAt(ErrEmptyExpression, 0)
	}
	var root ast
	first := true
	for {
		p.lastLook = 0
		a, err := p.parseAlternative()
		if err != nil {
			return ast{}, err
		}
		p.captures++
		if p.lastLook != 0 {
			p.lookOf[p.captures] = p.lastLook
		}
		acc := newAcceptPos(p.captures)
		// An alternative wholly inside a negative (?^...) group yields a
		// negated accept: its final states redo instead of take.
		if len(a.last) > 0 {
			neg := true
			for _, q := range a.last {
				if !q.Negated() {
					neg = false
					break
				}
			}
			if neg {
				acc = acc.withNegate()
			}
		}
		for _, q := range a.last {
			p.insertFollow(q, acc)
		}
		a.last = Positions{acc}
		if a.nullable {
			a.first.insert(acc)
		}
		a.all.insert(acc)
		if first {
			root = a
			first = false
		} else {
			root.first.union(a.first)
			root.last.union(a.last)
			root.all.union(a.all)
			root.nullable = root.nullable || a.nullable
		}
		p.skipSpace()
		if p.eof() {
			return root, nil
		}
		if p.at() == ')' {
			return ast{}, p.errorAt(ErrMismatchedParens, p.i)
		}
		if p.at() != '|' {
			return ast{}, p.errorAt(ErrInvalidSyntax, p.i)
		}
		p.i++
	}
}

// parseAlternative parses one top-level alternative, handling an optional
// trailing context written with '/'. The positions after the slash are ticked
// so that bytecode assembly can emit head/tail bookkeeping for them.
func (p *parser) parseAlternative() (ast, error) {
	a, _, err := p.parseConcat(true)
	if err != nil {
		return ast{}, err
	}
	p.skipSpace()
	if p.eof() || p.at() != '/' {
		return a, nil
	}
	// Trailing context: A/B matches like AB but reports the match end at the
	// start of B.
	slash := p.i
	p.i++
	if p.lookNext == 0xFF {
		return ast{}, p.errorAt(ErrExceedsLimits, slash)
	}
	p.lookNext++
	look := p.lookNext
	tickAST := p.anchorAST(slash, MetaNone)
	tick := tickAST.first[0].withTicked().withLook(look)
	p.retag(&tickAST, tickAST.first[0], tick)
	b, _, err := p.parseConcat(true)
	if err != nil {
		return ast{}, err
	}
	if len(b.all) == 0 {
		return ast{}, p.errorAt(ErrEmptyExpression, slash)
	}
	p.remapAll(&b, func(q Pos) Pos { return q.withLook(look) })
	a = p.concat(a, p.concat(tickAST, b))
	p.lastLook = look
	return a, nil
}

// parseConcat parses a concatenation until '|', ')', end of pattern, or, when
// topLevel is set, a '/' trailing-context separator.
func (p *parser) parseConcat(topLevel bool) (ast, bool, error) {
	var out ast
	out.nullable = true
	zero := true
	for {
		p.skipSpace()
		if p.eof() {
			return out, zero, nil
		}
		switch p.at() {
		case '|', ')':
			return out, zero, nil
		case '/':
			if topLevel {
				return out, zero, nil
			}
			// '/' only separates a trailing context at the top level;
			// elsewhere it is a literal.
		}
		a, zeroWidth, err := p.parsePostfix()
		if err != nil {
			return ast{}, false, err
		}
		out = p.concat(out, a)
		zero = zero && zeroWidth
	}
}

// parsePostfix parses one atom followed by any run of quantifiers.
func (p *parser) parsePostfix() (ast, bool, error) {
	a, zeroWidth, err := p.parseAtom()
	if err != nil {
		return ast{}, false, err
	}
	for {
		p.skipSpace()
		if p.eof() {
			return a, zeroWidth, nil
		}
		var err error
		switch p.at() {
		case '*':
			if zeroWidth {
				return ast{}, false, p.errorAt(ErrInvalidQuantifier, p.i)
			}
			p.i++
			a = p.star(a)
			a = p.maybeLazy(a)
		case '+':
			if zeroWidth {
				return ast{}, false, p.errorAt(ErrInvalidQuantifier, p.i)
			}
			p.i++
			a = p.plus(a)
			a = p.maybeLazy(a)
		case '?':
			if zeroWidth {
				return ast{}, false, p.errorAt(ErrInvalidQuantifier, p.i)
			}
			p.i++
			a.nullable = true
			a = p.maybeLazy(a)
		case '{':
			if zeroWidth {
				return ast{}, false, p.errorAt(ErrInvalidQuantifier, p.i)
			}
			a, err = p.parseRepeat(a)
			if err != nil {
				return ast{}, false, err
			}
			a = p.maybeLazy(a)
		default:
			return a, zeroWidth, nil
		}
	}
}

// maybeLazy consumes a trailing '?' and tags the subexpression lazy.
func (p *parser) maybeLazy(a ast) ast {
	if p.eof() || p.at() != '?' {
		return a
	}
	p.i++
	if p.lazyNext == 0xFF {
		return a // out of lazy ids; degrade to greedy
	}
	p.lazyNext++
	id := p.lazyNext
	p.remapAll(&a, func(q Pos) Pos {
		if q.Lazy() != 0 {
			return q
		}
		return q.withLazy(id)
	})
	return a
}

// parseRepeat parses {n}, {n,} and {n,m} and expands the repeat into copies
// of the subexpression, each copy's positions distinguished by a fresh
// iteration index.
func (p *parser) parseRepeat(a ast) (ast, error) {
	brace := p.i
	p.i++ // '{'
	n, okN := p.parseInt()
	m, okM := -1, false
	if !p.eof() && p.at() == ',' {
		p.i++
		m, okM = p.parseInt()
	} else {
		m, okM = n, okN
	}
	if p.eof() || p.at() != '}' {
		return ast{}, p.errorAt(ErrMismatchedBraces, brace)
	}
	p.i++
	if !okN {
		return ast{}, p.errorAt(ErrInvalidRepeat, brace)
	}
	unbounded := !okM
	if !unbounded && m < n {
		return ast{}, p.errorAt(ErrInvalidRepeat, brace)
	}
	if n > maxRepeat || (!unbounded && m > maxRepeat) {
		return ast{}, p.errorAt(ErrExceedsLimits, brace)
	}

	switch {
	case unbounded && n == 0: // {0,} == *
		return p.star(a), nil
	case unbounded && n == 1: // {1,} == +
		return p.plus(a), nil
	case !unbounded && n == 0 && m == 0: // {0}: matches empty
		p.detach(a)
		return ast{nullable: true}, nil
	}

	// The parsed subexpression is the first copy; bounded-repeat expansion
	// appends iteration-tagged copies: n required in total, then either a
	// looping tail for {n,} or m-n optional copies for {n,m}.
	out := a
	if unbounded { // n >= 2 here
		for k := 1; k < n-1; k++ {
			out = p.concat(out, p.copyAST(a))
		}
		return p.concat(out, p.plus(p.copyAST(a))), nil
	}
	if n == 0 { // {0,m}: the first copy is itself optional
		out.nullable = true
	}
	req := n
	if req == 0 {
		req = 1
	}
	for k := 1; k < req; k++ {
		out = p.concat(out, p.copyAST(a))
	}
	for k := req; k < m; k++ {
		c := p.copyAST(a)
		c.nullable = true
		out = p.concat(out, c)
	}
	return out, nil
}

func (p *parser) parseInt() (int, bool) {
	start := p.i
	v := 0
	for !p.eof() && p.at() >= '0' && p.at() <= '9' {
		v = v*10 + int(p.at()-'0')
		if v > 1<<20 {
			return v, false
		}
		p.i++
	}
	return v, p.i > start
}

// parseAtom parses one atom: a literal, class, dot, anchor or group.
// The second result reports whether the atom is zero-width (anchors), which
// makes a following quantifier invalid.
func (p *parser) parseAtom() (ast, bool, error) {
	loc := p.i
	switch c := p.at(); c {
	case '(':
		a, err := p.parseGroup()
		return a, false, err
	case '[':
		cls, err := p.parseClass()
		if err != nil {
			return ast{}, false, err
		}
		return p.charAST(loc, cls), false, nil
	case '.':
		p.i++
		return p.charAST(loc, classDot(p.flags.DotAll)), false, nil
	case '^':
		p.i++
		if p.flags.Multiline {
			return p.anchorAST(loc, MetaBOL), true, nil
		}
		return p.anchorAST(loc, MetaBOB), true, nil
	case '$':
		p.i++
		if p.flags.Multiline {
			return p.anchorAST(loc, MetaEOL), true, nil
		}
		return p.anchorAST(loc, MetaEOB), true, nil
	case '*', '+', '?':
		return ast{}, false, p.errorAt(ErrInvalidQuantifier, loc)
	case '{':
		return ast{}, false, p.errorAt(ErrInvalidQuantifier, loc)
	case ')':
		return ast{}, false, p.errorAt(ErrMismatchedParens, loc)
	case ']':
		return ast{}, false, p.errorAt(ErrMismatchedBrackets, loc)
	case '\\':
		return p.parseEscapeAtom()
	default:
		return p.parseLiteral()
	}
}

// parseLiteral parses one literal character. In Unicode mode a multibyte rune
// is expanded into the concatenation of its UTF-8 bytes, each byte a
// position of its own, so the byte-oriented DFA matches it exactly.
func (p *parser) parseLiteral() (ast, bool, error) {
	loc := p.i
	c := p.at()
	if c < 0x80 || !p.flags.Unicode {
		p.i++
		cls := classByte(c)
		if p.flags.CaseInsensitive {
			cls.foldCase()
		}
		return p.charAST(loc, cls), false, nil
	}
	r, size := utf8.DecodeRuneInString(p.pat[p.i:])
	if r == utf8.RuneError && size == 1 {
		return ast{}, false, p.errorAt(ErrInvalidSyntax, loc)
	}
	p.i += size
	out := ast{nullable: true}
	for k := 0; k < size; k++ {
		out = p.concat(out, p.charAST(loc+k, classByte(p.pat[loc+k])))
	}
	return out, false, nil
}

// parseGroup parses (...) and the (?...) modifier forms.
func (p *parser) parseGroup() (ast, error) {
	open := p.i
	p.i++ // '('
	negate := false
	savedFlags := p.flags
	restore := false
	if !p.eof() && p.at() == '?' {
		p.i++
		if p.eof() {
			return ast{}, p.errorAt(ErrMismatchedParens, open)
		}
		switch p.at() {
		case ':':
			p.i++
		case '^':
			p.i++
			negate = true
		case '=', '!', '<', '#':
			return ast{}, p.errorAt(ErrInvalidModifier, p.i)
		default:
			if err := p.parseFlags(open); err != nil {
				return ast{}, err
			}
			restore = true
			if p.eof() {
				return ast{}, p.errorAt(ErrMismatchedParens, open)
			}
			if p.at() == ')' { // (?i) form: flags apply to end of scope
				p.i++
				return ast{nullable: true}, nil
			}
			p.i++ // ':'
		}
	}
	a, err := p.parseGroupBody(open)
	if restore {
		p.flags = savedFlags
	}
	if err != nil {
		return ast{}, err
	}
	if negate {
		if p.lookNext == 0 && len(a.all) == 0 {
			return ast{}, p.errorAt(ErrEmptyExpression, open)
		}
		p.remapAll(&a, func(q Pos) Pos { return q.withNegate() })
	}
	return a, nil
}

// parseFlags parses the imsux flag letters of a (?flags:...) or (?flags)
// group, up to the ':' or ')'.
func (p *parser) parseFlags(open int) error {
	clear := false
	for !p.eof() {
		switch c := p.at(); c {
		case ':', ')':
			return nil
		case '-':
			clear = true
			p.i++
		case 'i':
			p.flags.CaseInsensitive = !clear
			p.i++
		case 'm':
			p.flags.Multiline = !clear
			p.i++
		case 's':
			p.flags.DotAll = !clear
			p.i++
		case 'x':
			p.flags.FreeSpacing = !clear
			p.i++
		case 'u':
			p.flags.Unicode = !clear
			p.i++
		default:
			return p.errorAt(ErrInvalidModifier, p.i)
		}
	}
	return p.errorAt(ErrMismatchedParens, open)
}

func (p *parser) parseGroupBody(open int) (ast, error) {
	var out ast
	first := true
	empty := true
	for {
		a, zero, err := p.parseConcat(false)
		if err != nil {
			return ast{}, err
		}
		if len(a.all) > 0 || !zero {
			empty = false
		}
		if first {
			out = a
			first = false
		} else {
			empty = false // an alternation is not an empty group
			out.first.union(a.first)
			out.last.union(a.last)
			out.all.union(a.all)
			out.nullable = out.nullable || a.nullable
		}
		p.skipSpace()
		if p.eof() {
			return ast{}, p.errorAt(ErrMismatchedParens, open)
		}
		switch p.at() {
		case ')':
			p.i++
			if empty && len(out.all) == 0 {
				return ast{}, p.errorAt(ErrEmptyExpression, open)
			}
			return out, nil
		case '|':
			p.i++
		default:
			return ast{}, p.errorAt(ErrInvalidSyntax, p.i)
		}
	}
}

// parseEscapeAtom parses an atom introduced by a backslash.
func (p *parser) parseEscapeAtom() (ast, bool, error) {
	loc := p.i
	p.i++ // '\'
	if p.eof() {
		return ast{}, false, p.errorAt(ErrInvalidEscape, loc)
	}
	c := p.at()
	switch c {
	case 'A':
		p.i++
		return p.anchorAST(loc, MetaBOB), true, nil
	case 'Z', 'z':
		p.i++
		return p.anchorAST(loc, MetaEOB), true, nil
	case 'b':
		p.i++
		return p.anchorAST(loc, MetaWB), true, nil
	case 'B':
		p.i++
		return p.anchorAST(loc, MetaNWB), true, nil
	case '<':
		p.i++
		return p.anchorAST(loc, MetaBWB), true, nil
	case '>':
		p.i++
		return p.anchorAST(loc, MetaEWB), true, nil
	case 'i', 'j', 'k':
		if !p.flags.Indent {
			return ast{}, false, p.errorAt(ErrInvalidAnchor, loc)
		}
		p.i++
		switch c {
		case 'i':
			return p.anchorAST(loc, MetaInd), true, nil
		case 'j':
			return p.anchorAST(loc, MetaDed), true, nil
		default:
			return p.anchorAST(loc, MetaUnd), true, nil
		}
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return ast{}, false, p.errorAt(ErrInvalidBackreference, loc)
	case 'Q':
		p.i++
		return p.parseQuoted(loc)
	case 'E':
		return ast{}, false, p.errorAt(ErrMismatchedQuotation, loc)
	}
	cls, isClass, b, err := p.parseEscapeChar(loc, false)
	if err != nil {
		return ast{}, false, err
	}
	if !isClass {
		cls = classByte(b)
		if p.flags.CaseInsensitive {
			cls.foldCase()
		}
	}
	return p.charAST(loc, cls), false, nil
}

// parseQuoted parses a \Q...\E literal run.
func (p *parser) parseQuoted(loc int) (ast, bool, error) {
	out := ast{nullable: true}
	for {
		if p.eof() {
			return ast{}, false, p.errorAt(ErrMismatchedQuotation, loc)
		}
		if p.at() == '\\' && p.i+1 < len(p.pat) && p.pat[p.i+1] == 'E' {
			p.i += 2
			return out, len(out.all) == 0, nil
		}
		cloc := p.i
		cls := classByte(p.at())
		if p.flags.CaseInsensitive {
			cls.foldCase()
		}
		p.i++
		out = p.concat(out, p.charAST(cloc, cls))
	}
}

// parseEscapeChar handles escapes that denote a class or a single byte.
// Shared between atom context and class context.
func (p *parser) parseEscapeChar(loc int, inClass bool) (cls class, isClass bool, b byte, err error) {
	c := p.at()
	p.i++
	switch c {
	case 'd':
		return classDigit(), true, 0, nil
	case 'D':
		cls = classDigit()
		cls.negate()
		return cls, true, 0, nil
	case 'w':
		return classWord(), true, 0, nil
	case 'W':
		cls = classWord()
		cls.negate()
		return cls, true, 0, nil
	case 's':
		return classSpace(), true, 0, nil
	case 'S':
		cls = classSpace()
		cls.negate()
		return cls, true, 0, nil
	case 'h':
		return classHorizSpace(), true, 0, nil
	case 'l':
		return classLower(), true, 0, nil
	case 'u':
		return classUpper(), true, 0, nil
	case 'n':
		return class{}, false, '\n', nil
	case 'r':
		return class{}, false, '\r', nil
	case 't':
		return class{}, false, '\t', nil
	case 'f':
		return class{}, false, '\f', nil
	case 'v':
		return class{}, false, '\v', nil
	case 'a':
		return class{}, false, 0x07, nil
	case 'e':
		return class{}, false, 0x1B, nil
	case '0':
		return class{}, false, 0x00, nil
	case 'x':
		b, err = p.parseHex(loc)
		return class{}, false, b, err
	case 'c':
		if p.eof() || p.at() < '@' || p.at() > '_' {
			return class{}, false, 0, p.errorAt(ErrInvalidEscape, loc)
		}
		b = p.at() - '@'
		p.i++
		return class{}, false, b, nil
	case 'b':
		if inClass { // backspace inside a class only
			return class{}, false, 0x08, nil
		}
	}
	// Punctuation and metacharacter escapes stand for themselves.
	if c >= 0x20 && c < 0x80 && !isAlnumByte(c) {
		return class{}, false, c, nil
	}
	return class{}, false, 0, p.errorAt(ErrInvalidEscape, loc)
}

func isAlnumByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

// parseHex parses \xHH or \x{HH}.
func (p *parser) parseHex(loc int) (byte, error) {
	braced := false
	if !p.eof() && p.at() == '{' {
		braced = true
		p.i++
	}
	v, n := 0, 0
	for !p.eof() && n < 2 {
		d := hexDigit(p.at())
		if d < 0 {
			break
		}
		v = v*16 + d
		p.i++
		n++
	}
	if n == 0 {
		return 0, p.errorAt(ErrInvalidEscape, loc)
	}
	if braced {
		if p.eof() || p.at() != '}' {
			return 0, p.errorAt(ErrInvalidEscape, loc)
		}
		p.i++
	}
	return byte(v), nil
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// parseClass parses a [...] character class.
func (p *parser) parseClass() (class, error) {
	open := p.i
	p.i++ // '['
	var cls class
	negated := false
	if !p.eof() && p.at() == '^' {
		negated = true
		p.i++
	}
	first := true
	for {
		if p.eof() {
			return class{}, p.errorAt(ErrMismatchedBrackets, open)
		}
		c := p.at()
		if c == ']' && !first {
			p.i++
			break
		}
		first = false
		// POSIX class [[:name:]]
		if c == '[' && p.i+1 < len(p.pat) && p.pat[p.i+1] == ':' {
			name, err := p.parsePosixClass()
			if err != nil {
				return class{}, err
			}
			cls.addClass(name)
			continue
		}
		lo, isCls, sub, err := p.parseClassChar(open)
		if err != nil {
			return class{}, err
		}
		if isCls {
			cls.addClass(sub)
			continue
		}
		// Possible range lo-hi
		if !p.eof() && p.at() == '-' && p.i+1 < len(p.pat) && p.pat[p.i+1] != ']' {
			dash := p.i
			p.i++
			hi, hiCls, _, err := p.parseClassChar(open)
			if err != nil {
				return class{}, err
			}
			if hiCls {
				return class{}, p.errorAt(ErrInvalidClassRange, dash)
			}
			if hi < lo {
				return class{}, p.errorAt(ErrInvalidClassRange, dash)
			}
			cls.add(lo, hi)
			continue
		}
		cls.addByte(lo)
	}
	if cls.empty() {
		return class{}, p.errorAt(ErrEmptyClass, open)
	}
	if p.flags.CaseInsensitive {
		cls.foldCase()
	}
	if negated {
		cls.negate()
	}
	return cls, nil
}

// parseClassChar parses one class member: a literal byte or an escape.
func (p *parser) parseClassChar(open int) (byte, bool, class, error) {
	if p.eof() {
		return 0, false, class{}, p.errorAt(ErrMismatchedBrackets, open)
	}
	c := p.at()
	if c != '\\' {
		if c >= 0x80 && p.flags.Unicode {
			// Multibyte members would need per-byte expansion; classes are
			// byte-oriented.
			return 0, false, class{}, p.errorAt(ErrInvalidClass, p.i)
		}
		p.i++
		return c, false, class{}, nil
	}
	loc := p.i
	p.i++
	if p.eof() {
		return 0, false, class{}, p.errorAt(ErrInvalidEscape, loc)
	}
	cls, isCls, b, err := p.parseEscapeChar(loc, true)
	return b, isCls, cls, err
}

// parsePosixClass parses [:name:] inside a class; the cursor sits on the
// leading '['.
func (p *parser) parsePosixClass() (class, error) {
	open := p.i
	p.i += 2 // "[:"
	start := p.i
	for !p.eof() && p.at() != ':' {
		p.i++
	}
	if p.eof() || p.i+1 >= len(p.pat) || p.pat[p.i+1] != ']' {
		return class{}, p.errorAt(ErrInvalidClass, open)
	}
	name := p.pat[start:p.i]
	p.i += 2 // ":]"
	ctor, ok := posixClasses[name]
	if !ok {
		return class{}, p.errorAt(ErrInvalidClass, open)
	}
	return ctor(), nil
}

// --- position set algebra ---------------------------------------------------

// charAST creates the ast of a single consuming position at loc with the
// given character test.
func (p *parser) charAST(loc int, cls class) ast {
	pos := newPos(loc)
	p.chars[loc] = cls
	return ast{
		first: Positions{pos},
		last:  Positions{pos},
		all:   Positions{pos},
	}
}

// anchorAST creates the ast of a single zero-width position at loc.
func (p *parser) anchorAST(loc int, kind MetaKind) ast {
	pos := newAnchorPos(loc)
	if kind != MetaNone {
		p.metas[loc] = kind
	}
	return ast{
		first: Positions{pos},
		last:  Positions{pos},
		all:   Positions{pos},
	}
}

// concat joins a and b in sequence, updating the follow map.
func (p *parser) concat(a, b ast) ast {
	if len(a.all) == 0 && a.nullable {
		return b
	}
	if len(b.all) == 0 && b.nullable {
		return a
	}
	for _, q := range a.last {
		for _, f := range b.first {
			p.insertFollow(q, f)
		}
	}
	out := ast{nullable: a.nullable && b.nullable}
	out.first = a.first.clone()
	if a.nullable {
		out.first.union(b.first)
	}
	out.last = b.last.clone()
	if b.nullable {
		out.last.union(a.last)
	}
	out.all = a.all.clone()
	out.all.union(b.all)
	return out
}

// star loops a onto itself and makes it nullable.
func (p *parser) star(a ast) ast {
	a = p.plus(a)
	a.nullable = true
	return a
}

// plus loops a onto itself: followpos(lastpos(a)) gains firstpos(a).
func (p *parser) plus(a ast) ast {
	for _, q := range a.last {
		for _, f := range a.first {
			p.insertFollow(q, f)
		}
	}
	return a
}

func (p *parser) insertFollow(from, to Pos) {
	set := p.follow[from]
	set.insert(to)
	p.follow[from] = set
}

// copyAST duplicates a subtree for bounded-repeat expansion. Every position
// of the copy gets a fresh iteration index, and the follow entries internal
// to the subtree are replicated under the remapped positions.
func (p *parser) copyAST(a ast) ast {
	base := p.iterNext + 1
	maxIter := 0
	for _, q := range a.all {
		if it := q.Iter(); it > maxIter {
			maxIter = it
		}
	}
	p.iterNext = base + maxIter
	mapping := make(map[Pos]Pos, len(a.all))
	for _, q := range a.all {
		mapping[q] = q.withIter(q.Iter() + base)
	}
	out := ast{nullable: a.nullable}
	for _, q := range a.first {
		out.first.insert(mapping[q])
	}
	for _, q := range a.last {
		out.last.insert(mapping[q])
	}
	for _, q := range a.all {
		out.all.insert(mapping[q])
	}
	for _, q := range a.all {
		set, ok := p.follow[q]
		if !ok {
			continue
		}
		var remapped Positions
		for _, f := range set {
			if nf, ok := mapping[f]; ok {
				remapped.insert(nf)
			} else {
				remapped.insert(f)
			}
		}
		nq := mapping[q]
		dst := p.follow[nq]
		dst.union(remapped)
		p.follow[nq] = dst
	}
	return out
}

// remapAll rewrites every position of a subtree in place, both in the ast
// sets and in the follow map entries internal to the subtree. Used to apply
// lazy, negate, ticked and look tags after the subtree has been parsed.
func (p *parser) remapAll(a *ast, f func(Pos) Pos) {
	mapping := make(map[Pos]Pos, len(a.all))
	for _, q := range a.all {
		mapping[q] = f(q)
	}
	rewrite := func(set Positions) Positions {
		var out Positions
		for _, q := range set {
			if nq, ok := mapping[q]; ok {
				out.insert(nq)
			} else {
				out.insert(q)
			}
		}
		return out
	}
	a.first = rewrite(a.first)
	a.last = rewrite(a.last)
	for old, nq := range mapping {
		if old == nq {
			continue
		}
		if set, ok := p.follow[old]; ok {
			dst := p.follow[nq]
			dst.union(rewrite(set))
			p.follow[nq] = dst
			delete(p.follow, old)
		}
	}
	for key, set := range p.follow {
		p.follow[key] = rewrite(set)
	}
	a.all = rewrite(a.all)
}

// retag replaces a single position of a subtree.
func (p *parser) retag(a *ast, old, nu Pos) {
	p.remapAll(a, func(q Pos) Pos {
		if q == old {
			return nu
		}
		return q
	})
}

// detach drops the follow entries of a discarded subtree, as for X{0}.
func (p *parser) detach(a ast) {
	for _, q := range a.all {
		delete(p.follow, q)
	}
}
