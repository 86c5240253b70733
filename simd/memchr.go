package simd

// Memchr returns the index of the first instance of needle in haystack, or
// -1 if needle is not present.
//
// Equivalent to bytes.IndexByte; implemented as a SWAR scan so the matching
// engine does not depend on the stdlib's per-platform assembly behaving
// identically across the advance kernels.
func Memchr(haystack []byte, needle byte) int {
	if len(haystack) == 0 {
		return -1
	}
	if kernelWide && len(haystack) >= 32 {
		return memchrWide(haystack, needle)
	}
	return memchrSWAR(haystack, needle)
}

func memchrSWAR(haystack []byte, needle byte) int {
	n := broadcast(needle)
	i := 0
	for ; i+8 <= len(haystack); i += 8 {
		if mask := zeroLanes(load64(haystack[i:]) ^ n); mask != 0 {
			return i + trailingLane(mask)
		}
	}
	for ; i < len(haystack); i++ {
		if haystack[i] == needle {
			return i
		}
	}
	return -1
}

// memchrWide processes 32 bytes per iteration with four independent word
// probes, letting the CPU overlap the loads.
func memchrWide(haystack []byte, needle byte) int {
	n := broadcast(needle)
	i := 0
	for ; i+32 <= len(haystack); i += 32 {
		m0 := zeroLanes(load64(haystack[i:]) ^ n)
		m1 := zeroLanes(load64(haystack[i+8:]) ^ n)
		m2 := zeroLanes(load64(haystack[i+16:]) ^ n)
		m3 := zeroLanes(load64(haystack[i+24:]) ^ n)
		if m0|m1|m2|m3 == 0 {
			continue
		}
		switch {
		case m0 != 0:
			return i + trailingLane(m0)
		case m1 != 0:
			return i + 8 + trailingLane(m1)
		case m2 != 0:
			return i + 16 + trailingLane(m2)
		default:
			return i + 24 + trailingLane(m3)
		}
	}
	if pos := memchrSWAR(haystack[i:], needle); pos >= 0 {
		return i + pos
	}
	return -1
}

// Memchr2 returns the index of the first byte equal to either n1 or n2, or
// -1 if neither occurs. Used when a pattern can start with two distinct bytes.
func Memchr2(haystack []byte, n1, n2 byte) int {
	a, b := broadcast(n1), broadcast(n2)
	i := 0
	for ; i+8 <= len(haystack); i += 8 {
		w := load64(haystack[i:])
		if mask := zeroLanes(w^a) | zeroLanes(w^b); mask != 0 {
			return i + trailingLane(mask)
		}
	}
	for ; i < len(haystack); i++ {
		if haystack[i] == n1 || haystack[i] == n2 {
			return i
		}
	}
	return -1
}

// Memchr3 returns the index of the first byte equal to n1, n2 or n3, or -1.
func Memchr3(haystack []byte, n1, n2, n3 byte) int {
	a, b, c := broadcast(n1), broadcast(n2), broadcast(n3)
	i := 0
	for ; i+8 <= len(haystack); i += 8 {
		w := load64(haystack[i:])
		if mask := zeroLanes(w^a) | zeroLanes(w^b) | zeroLanes(w^c); mask != 0 {
			return i + trailingLane(mask)
		}
	}
	for ; i < len(haystack); i++ {
		if haystack[i] == n1 || haystack[i] == n2 || haystack[i] == n3 {
			return i
		}
	}
	return -1
}

// IndexPair returns the lowest i such that haystack[i] == b1 and
// haystack[i+delta] == b2, or -1. It scans for the rarer first byte and
// confirms the pair, which rejects most candidate positions with two loads.
// delta must be >= 0; positions with i+delta beyond the haystack are not
// candidates.
func IndexPair(haystack []byte, b1, b2 byte, delta int) int {
	i := 0
	for {
		if i+delta >= len(haystack) {
			return -1
		}
		pos := Memchr(haystack[i:len(haystack)-delta], b1)
		if pos < 0 {
			return -1
		}
		i += pos
		if haystack[i+delta] == b2 {
			return i
		}
		i++
	}
}
