// Package simd provides the accelerated byte-search primitives used by the
// matching engine's advance routines. The kernels are portable SWAR
// implementations (8 or 32 bytes per step); the step width is selected once
// at package initialization from a CPU feature probe, so dispatch cost is not
// paid per call.
//
// All kernels are functionally equivalent to their scalar counterparts: they
// never skip a position a byte-by-byte scan would report, which is what the
// advance contract requires.
package simd

import "golang.org/x/sys/cpu"

// kernelWide reports whether the wide (32 bytes per iteration) kernels were
// selected at initialization. Wide kernels pay off on cores with fast
// unaligned 64-bit loads and deep pipelines, which the AVX2/NEON feature bits
// are a reasonable proxy for.
var kernelWide = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// KernelName returns the name of the selected kernel family, for diagnostics
// and tests.
func KernelName() string {
	if kernelWide {
		return "swar-wide"
	}
	return "swar"
}

const (
	lowBits  = 0x0101010101010101
	highBits = 0x8080808080808080
)

// broadcast replicates b into all eight lanes of a word.
func broadcast(b byte) uint64 {
	return lowBits * uint64(b)
}

// zeroLanes returns a nonzero value with the high bit set in every lane of v
// that is zero.
func zeroLanes(v uint64) uint64 {
	return (v - lowBits) &^ v & highBits
}

func load64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// trailingLane returns the index of the lowest lane with its high bit set.
func trailingLane(mask uint64) int {
	n := 0
	for mask&0x80 == 0 {
		mask >>= 8
		n++
	}
	return n
}
