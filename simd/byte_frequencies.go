package simd

// ByteFrequencies contains empirical byte frequency ranks derived from
// English text and source code corpora. Lower rank = rarer byte, which makes
// it a better candidate to scan for: the fewer candidate positions a search
// byte produces, the less verification work per window.
var ByteFrequencies = [256]byte{
	// 0x00-0x0F: control characters, rare outside binary data
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 1, 0, 0,
	// 0x10-0x1F
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x20-0x2F: space and punctuation
	255, 60, 140, 50, 40, 35, 30, 160, 130, 130, 80, 55, 200, 140, 210, 100,
	// 0x30-0x3F: digits and punctuation
	180, 190, 170, 150, 140, 140, 130, 120, 120, 120, 150, 100, 70, 160, 70, 50,
	// 0x40-0x4F: '@' and A-O
	25, 120, 80, 90, 85, 130, 75, 70, 80, 115, 30, 35, 90, 85, 100, 105,
	// 0x50-0x5F: P-Z and brackets
	80, 15, 100, 110, 115, 70, 45, 55, 20, 50, 10, 90, 60, 90, 20, 110,
	// 0x60-0x6F: backtick and a-o
	30, 225, 140, 170, 165, 245, 135, 130, 150, 200, 25, 65, 175, 155, 195, 205,
	// 0x70-0x7F: p-z and braces
	145, 15, 195, 200, 215, 150, 75, 95, 45, 120, 20, 85, 40, 85, 15, 0,
	// 0x80-0xFF: UTF-8 continuation and lead bytes, rare in ASCII-heavy text
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
}

// RarePair returns the two rarest bytes of needle by frequency rank, with
// their offsets. When the needle has a single distinct byte both results
// refer to it. The pair biases scanning toward bytes that produce the fewest
// candidates.
func RarePair(needle []byte) (b1 byte, off1 int, b2 byte, off2 int) {
	b1, off1 = needle[0], 0
	for i := 1; i < len(needle); i++ {
		if ByteFrequencies[needle[i]] < ByteFrequencies[b1] {
			b1, off1 = needle[i], i
		}
	}
	b2, off2 = b1, off1
	for i := 0; i < len(needle); i++ {
		if i == off1 {
			continue
		}
		if b2 == b1 && off2 == off1 || ByteFrequencies[needle[i]] < ByteFrequencies[b2] {
			b2, off2 = needle[i], i
		}
	}
	return b1, off1, b2, off2
}
