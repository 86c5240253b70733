// Package conv provides checked narrowing conversions for bytecode
// assembly. Overflow panics: a pattern large enough to overflow these
// widths is rejected during compilation, so hitting a bound here is a
// programming error, not an input error.
package conv

import "math"

// IntToUint32 converts n to uint32, panicking when it does not fit.
func IntToUint32(n int) uint32 {
	// Compare as uint so the bound is representable on 32-bit platforms.
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("conv: int value out of uint32 range")
	}
	return uint32(n)
}
