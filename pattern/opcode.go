package pattern

import (
	"fmt"
	"strings"

	"github.com/coregx/lexre/internal/conv"
)

// MetaKind identifies a zero-width assertion tested by an OpMeta instruction.
type MetaKind uint8

const (
	// MetaNone marks a bookkeeping position with no assertion attached.
	MetaNone MetaKind = iota

	// MetaBOB asserts the beginning of the buffer (\A, or ^ outside
	// multiline mode).
	MetaBOB

	// MetaEOB asserts the end of the buffered input (\Z, or $ outside
	// multiline mode).
	MetaEOB

	// MetaBOL asserts the beginning of a line (^ in multiline mode).
	MetaBOL

	// MetaEOL asserts the end of a line ($ in multiline mode).
	MetaEOL

	// MetaWB asserts a word boundary (\b).
	MetaWB

	// MetaNWB asserts a non-word-boundary (\B).
	MetaNWB

	// MetaBWB asserts the beginning of a word (\<).
	MetaBWB

	// MetaEWB asserts the end of a word (\>).
	MetaEWB

	// MetaInd asserts an indent: the current column opens a new indent stop (\i).
	MetaInd

	// MetaDed asserts a dedent: the current column closes indent stops (\j).
	MetaDed

	// MetaUnd asserts an undent: the current column realigns to an existing
	// stop without push or pop (\k).
	MetaUnd
)

var metaKindNames = [...]string{
	MetaNone: "none",
	MetaBOB:  "bob",
	MetaEOB:  "eob",
	MetaBOL:  "bol",
	MetaEOL:  "eol",
	MetaWB:   "wb",
	MetaNWB:  "nwb",
	MetaBWB:  "bwb",
	MetaEWB:  "ewb",
	MetaInd:  "ind",
	MetaDed:  "ded",
	MetaUnd:  "und",
}

// String returns a short mnemonic for the assertion kind.
func (k MetaKind) String() string {
	if int(k) < len(metaKindNames) {
		return metaKindNames[k]
	}
	return "?"
}

// OpKind identifies a bytecode instruction.
type OpKind uint8

const (
	// OpHalt terminates a state block: no transition matched.
	OpHalt OpKind = iota

	// OpRange consumes one byte in [Lo,Hi] and jumps to Target.
	OpRange

	// OpMeta tests the zero-width assertion Meta and jumps to Target when it
	// holds, consuming nothing.
	OpMeta

	// OpTake records acceptance with capture index Capture. When Lazy is
	// set the interpreter stops immediately instead of running on for a
	// longer match.
	OpTake

	// OpRedo records acceptance of a negative subpattern: the match is to be
	// consumed and ignored.
	OpRedo

	// OpHead records the current cursor as the retained match end for
	// trailing context Capture, then jumps to Target. Unconditional.
	OpHead

	// OpTail instructs the matcher to end the reported match at the cursor
	// recorded by the matching OpHead for trailing context Capture.
	OpTail
)

// Op is one 32-bit-class bytecode instruction in tagged-struct form. Within
// one state block the OpRange instructions are sorted by Lo and mutually
// disjoint; a block is terminated by OpHalt.
type Op struct {
	Kind    OpKind
	Lo, Hi  byte     // OpRange bounds
	Meta    MetaKind // OpMeta assertion
	Lazy    bool     // OpTake: first accept wins
	Capture uint16   // OpTake/OpRedo capture; OpHead/OpTail look id
	Target  uint32   // OpRange/OpMeta/OpHead jump offset
}

// String returns a debug rendering such as "range 61-7a -> 12".
func (op Op) String() string {
	switch op.Kind {
	case OpHalt:
		return "halt"
	case OpRange:
		return fmt.Sprintf("range %02x-%02x -> %d", op.Lo, op.Hi, op.Target)
	case OpMeta:
		return fmt.Sprintf("meta %s -> %d", op.Meta, op.Target)
	case OpTake:
		if op.Lazy {
			return fmt.Sprintf("take %d lazy", op.Capture)
		}
		return fmt.Sprintf("take %d", op.Capture)
	case OpRedo:
		return fmt.Sprintf("redo %d", op.Capture)
	case OpHead:
		return fmt.Sprintf("head %d -> %d", op.Capture, op.Target)
	case OpTail:
		return fmt.Sprintf("tail %d", op.Capture)
	}
	return "?"
}

// assemble walks the DFA in state-creation order and emits one instruction
// block per state: head bookkeeping and assertions first, so zero-width
// conditions are tested before a byte is consumed, then consuming ranges in
// ascending byte order, then tail/take/redo, then the halt sentinel.
func assemble(states []*state) []Op {
	offset := uint32(0)
	for _, s := range states {
		s.offset = offset
		n := len(s.heads) + len(s.metas) + len(s.edges) + 1
		if s.accept != 0 {
			n++
			if s.look != 0 {
				n++
			}
		}
		offset += conv.IntToUint32(n)
	}
	ops := make([]Op, 0, offset)
	for _, s := range states {
		for _, h := range s.heads {
			ops = append(ops, Op{Kind: OpHead, Capture: uint16(h.look), Target: h.target.offset})
		}
		for _, m := range s.metas {
			ops = append(ops, Op{Kind: OpMeta, Meta: m.kind, Target: m.target.offset})
		}
		for _, e := range s.edges {
			ops = append(ops, Op{Kind: OpRange, Lo: e.lo, Hi: e.hi, Target: e.target.offset})
		}
		if s.accept != 0 {
			if s.look != 0 {
				ops = append(ops, Op{Kind: OpTail, Capture: uint16(s.look)})
			}
			if s.redo {
				ops = append(ops, Op{Kind: OpRedo, Capture: s.accept})
			} else {
				ops = append(ops, Op{Kind: OpTake, Capture: s.accept, Lazy: s.cut})
			}
		}
		ops = append(ops, Op{Kind: OpHalt})
	}
	return ops
}

// dumpOps renders an opcode table with offsets, one instruction per line.
func dumpOps(ops []Op) string {
	var sb strings.Builder
	for i, op := range ops {
		fmt.Fprintf(&sb, "%5d  %s\n", i, op)
	}
	return sb.String()
}
