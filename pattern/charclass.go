package pattern

import "sort"

// byteRange is an inclusive range of byte values.
type byteRange struct {
	lo, hi byte
}

// class is a set of byte values represented as sorted, non-overlapping,
// non-adjacent inclusive ranges. It is the character test attached to each
// consuming position; the DFA builder partitions the byte space by
// intersecting the classes of all live positions.
type class struct {
	ranges []byteRange
}

func classByte(b byte) class {
	return class{ranges: []byteRange{{b, b}}}
}

func classRange(lo, hi byte) class {
	return class{ranges: []byteRange{{lo, hi}}}
}

// add inserts the range [lo,hi], merging overlapping and adjacent ranges.
func (c *class) add(lo, hi byte) {
	if lo > hi {
		lo, hi = hi, lo
	}
	c.ranges = append(c.ranges, byteRange{lo, hi})
	c.normalize()
}

func (c *class) addByte(b byte) { c.add(b, b) }

func (c *class) addClass(other class) {
	c.ranges = append(c.ranges, other.ranges...)
	c.normalize()
}

func (c *class) normalize() {
	if len(c.ranges) < 2 {
		return
	}
	sort.Slice(c.ranges, func(i, j int) bool {
		if c.ranges[i].lo != c.ranges[j].lo {
			return c.ranges[i].lo < c.ranges[j].lo
		}
		return c.ranges[i].hi < c.ranges[j].hi
	})
	out := c.ranges[:1]
	for _, r := range c.ranges[1:] {
		last := &out[len(out)-1]
		if int(r.lo) <= int(last.hi)+1 {
			if r.hi > last.hi {
				last.hi = r.hi
			}
			continue
		}
		out = append(out, r)
	}
	c.ranges = out
}

// negate replaces the class with its complement over the full byte space.
func (c *class) negate() {
	out := make([]byteRange, 0, len(c.ranges)+1)
	next := 0
	for _, r := range c.ranges {
		if int(r.lo) > next {
			out = append(out, byteRange{byte(next), r.lo - 1})
		}
		next = int(r.hi) + 1
	}
	if next <= 0xFF {
		out = append(out, byteRange{byte(next), 0xFF})
	}
	c.ranges = out
}

// contains reports whether the class accepts byte b.
func (c class) contains(b byte) bool {
	lo, hi := 0, len(c.ranges)
	for lo < hi {
		mid := (lo + hi) / 2
		r := c.ranges[mid]
		switch {
		case b < r.lo:
			hi = mid
		case b > r.hi:
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}

// empty reports whether the class accepts no byte at all.
func (c class) empty() bool { return len(c.ranges) == 0 }

// foldCase adds the opposite-case counterpart of every ASCII letter in the
// class. Used by the case-insensitive option.
func (c *class) foldCase() {
	var extra []byteRange
	for _, r := range c.ranges {
		for b := int(r.lo); b <= int(r.hi); b++ {
			switch {
			case b >= 'A' && b <= 'Z':
				extra = append(extra, byteRange{byte(b + 32), byte(b + 32)})
			case b >= 'a' && b <= 'z':
				extra = append(extra, byteRange{byte(b - 32), byte(b - 32)})
			}
		}
	}
	c.ranges = append(c.ranges, extra...)
	c.normalize()
}

// Predefined escape classes. Byte-oriented, matching the ASCII portion of the
// usual Perl classes; \D \W \S are complements over the byte space.
func classDigit() class { return classRange('0', '9') }

func classWord() class {
	var c class
	c.add('0', '9')
	c.add('A', 'Z')
	c.add('a', 'z')
	c.addByte('_')
	return c
}

func classSpace() class {
	var c class
	c.add('\t', '\r') // \t \n \v \f \r
	c.addByte(' ')
	return c
}

func classHorizSpace() class {
	var c class
	c.addByte('\t')
	c.addByte(' ')
	return c
}

func classLower() class { return classRange('a', 'z') }
func classUpper() class { return classRange('A', 'Z') }

// classDot returns the class for '.': any byte except newline, or any byte at
// all in dot-all mode.
func classDot(dotAll bool) class {
	if dotAll {
		return classRange(0x00, 0xFF)
	}
	c := classByte('\n')
	c.negate()
	return c
}

// posixClasses maps POSIX class names, as in [[:alpha:]], to constructors.
var posixClasses = map[string]func() class{
	"alnum": func() class {
		var c class
		c.add('0', '9')
		c.add('A', 'Z')
		c.add('a', 'z')
		return c
	},
	"alpha": func() class {
		var c class
		c.add('A', 'Z')
		c.add('a', 'z')
		return c
	},
	"blank": classHorizSpace,
	"cntrl": func() class {
		var c class
		c.add(0x00, 0x1F)
		c.addByte(0x7F)
		return c
	},
	"digit": classDigit,
	"graph": func() class { return classRange(0x21, 0x7E) },
	"lower": classLower,
	"print": func() class { return classRange(0x20, 0x7E) },
	"punct": func() class {
		var c class
		c.add(0x21, 0x2F)
		c.add(0x3A, 0x40)
		c.add(0x5B, 0x60)
		c.add(0x7B, 0x7E)
		return c
	},
	"space": classSpace,
	"upper": classUpper,
	"word":  classWord,
	"xdigit": func() class {
		var c class
		c.add('0', '9')
		c.add('A', 'F')
		c.add('a', 'f')
		return c
	},
}
