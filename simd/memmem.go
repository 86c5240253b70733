package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack, or
// -1 if needle is not present.
//
// Equivalent to bytes.Index. Short needles use a rare-pair scan: the two
// least frequent needle bytes are located first and only aligned candidates
// are verified. Long needles fall back to a Boyer-Moore-Horspool skip loop,
// which keeps the scan sublinear without quadratic worst cases on typical
// inputs.
func Memmem(haystack, needle []byte) int {
	switch {
	case len(needle) == 0:
		return 0
	case len(needle) > len(haystack):
		return -1
	case len(needle) == 1:
		return Memchr(haystack, needle[0])
	case len(needle) <= 32:
		return memmemRarePair(haystack, needle)
	}
	return memmemHorspool(haystack, needle)
}

func memmemRarePair(haystack, needle []byte) int {
	b1, off1, b2, off2 := RarePair(needle)
	if off2 < off1 {
		b1, off1, b2, off2 = b2, off2, b1, off1
	}
	delta := off2 - off1
	start := 0
	for {
		var cand int
		if delta == 0 {
			cand = Memchr(haystack[start:], b1)
		} else {
			cand = IndexPair(haystack[start:], b1, b2, delta)
		}
		if cand < 0 {
			return -1
		}
		cand += start
		begin := cand - off1
		if begin >= 0 && begin+len(needle) <= len(haystack) &&
			bytes.Equal(haystack[begin:begin+len(needle)], needle) {
			return begin
		}
		start = cand + 1
		if start >= len(haystack) {
			return -1
		}
	}
}

// HorspoolTable is the bad-character skip table of Boyer-Moore-Horspool: for
// each byte, how far the window may shift when that byte is the last of the
// current window.
type HorspoolTable [256]int

// BuildHorspool fills the skip table for needle.
func BuildHorspool(needle []byte) HorspoolTable {
	var t HorspoolTable
	for i := range t {
		t[i] = len(needle)
	}
	for i := 0; i < len(needle)-1; i++ {
		t[needle[i]] = len(needle) - 1 - i
	}
	return t
}

func memmemHorspool(haystack, needle []byte) int {
	t := BuildHorspool(needle)
	return HorspoolSearch(haystack, needle, &t, 0)
}

// HorspoolSearch runs a Boyer-Moore-Horspool scan with a prebuilt table,
// starting at the given offset. Returns the match index or -1.
func HorspoolSearch(haystack, needle []byte, t *HorspoolTable, start int) int {
	n := len(needle)
	i := start
	for i+n <= len(haystack) {
		if haystack[i+n-1] == needle[n-1] && bytes.Equal(haystack[i:i+n-1], needle[:n-1]) {
			return i
		}
		i += t[haystack[i+n-1]]
	}
	return -1
}
