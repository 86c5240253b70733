package simd

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/segmentio/asm/ascii"
)

// TestMemchrAgainstIndexByte cross-checks the SWAR kernels against the
// standard library over inputs that exercise every alignment and tail size.
func TestMemchrAgainstIndexByte(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for size := 0; size < 200; size++ {
		buf := make([]byte, size)
		for i := range buf {
			buf[i] = byte(rng.Intn(8)) + 'a'
		}
		for _, needle := range []byte{'a', 'c', 'h', 'z'} {
			want := bytes.IndexByte(buf, needle)
			if got := Memchr(buf, needle); got != want {
				t.Fatalf("Memchr(%q, %q) = %d, want %d", buf, needle, got, want)
			}
		}
	}
}

func TestMemchr2And3(t *testing.T) {
	buf := []byte("the quick brown fox jumps over the lazy dog")
	tests := []struct {
		n1, n2, n3 byte
		use3       bool
		want       int
	}{
		{n1: 'q', n2: 'z', want: 4},
		{n1: 'z', n2: 'q', want: 4},
		{n1: 'x', n2: 'j', want: 18},
		{n1: '!', n2: '?', want: -1},
		{n1: '!', n2: '?', n3: 'd', use3: true, want: 40},
		{n1: '!', n2: '?', n3: '0', use3: true, want: -1},
	}
	for _, tt := range tests {
		var got int
		if tt.use3 {
			got = Memchr3(buf, tt.n1, tt.n2, tt.n3)
		} else {
			got = Memchr2(buf, tt.n1, tt.n2)
		}
		if got != tt.want {
			t.Errorf("Memchr(%q,%q,%q) = %d, want %d", tt.n1, tt.n2, tt.n3, got, tt.want)
		}
	}
}

func TestIndexPair(t *testing.T) {
	buf := []byte("abxaby_ab_aby")
	// 'a' then 'y' two bytes later: first at "aby" offset 3.
	if got := IndexPair(buf, 'a', 'y', 2); got != 3 {
		t.Errorf("IndexPair = %d, want 3", got)
	}
	if got := IndexPair(buf, 'a', 'q', 2); got != -1 {
		t.Errorf("IndexPair no-match = %d, want -1", got)
	}
	// delta reaching past the end never matches.
	if got := IndexPair([]byte("aa"), 'a', 'a', 5); got != -1 {
		t.Errorf("IndexPair past end = %d, want -1", got)
	}
}

// TestMemmemAgainstIndex cross-checks every needle-length regime: empty,
// single byte, rare-pair and Horspool.
func TestMemmemAgainstIndex(t *testing.T) {
	haystack := []byte(strings.Repeat("abcabd", 40) + "needle in the haystack at last")
	needles := [][]byte{
		{},
		[]byte("a"),
		[]byte("bd"),
		[]byte("needle"),
		[]byte("haystack at last"),
		[]byte(strings.Repeat("abcabd", 6)), // > 32 bytes, Horspool path
		[]byte("missing-entirely"),
		[]byte("last!"), // near-miss at the very end
	}
	for _, needle := range needles {
		want := bytes.Index(haystack, needle)
		if got := Memmem(haystack, needle); got != want {
			t.Errorf("Memmem(%q) = %d, want %d", needle, got, want)
		}
	}
}

func TestHorspoolSearchFromOffset(t *testing.T) {
	haystack := []byte("xx sample xx sample xx")
	needle := []byte("sample")
	tab := BuildHorspool(needle)
	if got := HorspoolSearch(haystack, needle, &tab, 0); got != 3 {
		t.Errorf("first = %d, want 3", got)
	}
	if got := HorspoolSearch(haystack, needle, &tab, 4); got != 13 {
		t.Errorf("second = %d, want 13", got)
	}
	if got := HorspoolSearch(haystack, needle, &tab, 14); got != -1 {
		t.Errorf("third = %d, want -1", got)
	}
}

func TestRarePair(t *testing.T) {
	b1, off1, b2, off2 := RarePair([]byte("eeeqe"))
	if off1 == off2 {
		t.Fatal("rare pair offsets collide")
	}
	// 'q' is far rarer than 'e' and must be picked.
	if b1 != 'q' && b2 != 'q' {
		t.Errorf("RarePair = %q@%d %q@%d, want q picked", b1, off1, b2, off2)
	}
}

// TestKernelName just pins that dispatch was decided at init.
func TestKernelName(t *testing.T) {
	switch KernelName() {
	case "swar", "swar-wide":
	default:
		t.Errorf("unexpected kernel %q", KernelName())
	}
}

// The ascii helper from segmentio/asm backs the matcher's column fast path;
// pin the property the matcher relies on: Valid means one column per byte.
func TestASCIIValidOracle(t *testing.T) {
	if !ascii.Valid([]byte("plain text\t123")) {
		t.Error("ascii.Valid rejected plain ASCII")
	}
	if ascii.Valid([]byte("caf\xc3\xa9")) {
		t.Error("ascii.Valid accepted UTF-8 input")
	}
}
