package matcher

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/segmentio/asm/ascii"
)

// ErrBufferLimit is the panic value raised when matching would grow the
// buffer past the limit set with SetMaxBufferSize.
var ErrBufferLimit = fmt.Errorf("matcher: buffer limit exceeded")

const initialBufSize = 4096

// fetch returns the byte at buffer offset i, filling from the input as
// needed. Reports false at end of input.
func (m *Matcher) fetch(i int) (byte, bool) {
	for i >= m.end {
		if m.eof {
			return 0, false
		}
		m.fill()
	}
	return m.buf[i], true
}

// atEOF reports whether buffer offset i is one past the last input byte.
func (m *Matcher) atEOF(i int) bool {
	_, ok := m.fetch(i)
	return !ok
}

// fill reads at least one more byte from the input, shifting out or growing
// the buffer when it is full. Sets eof on end of input or read error.
func (m *Matcher) fill() {
	if m.eof {
		return
	}
	if m.end == len(m.buf) {
		m.makeRoom()
	}
	n, err := m.in.Read(m.buf[m.end:])
	m.end += n
	if err != nil {
		m.eof = true
		if err != io.EOF {
			m.err = err
		}
	}
}

// compact shifts consumed input out of a mostly full buffer before a
// protocol call pins it, so bounded buffers stay usable across long scans.
func (m *Matcher) compact() {
	if m.eof || m.noShift || len(m.buf) == 0 || 2*m.end < len(m.buf) {
		return
	}
	if m.lineStartOf(m.keepPoint()) > 0 {
		m.makeRoom()
	}
}

// keepPoint returns the lowest buffer offset that must stay resident: the
// match start, the cursor, and the held split-field start if one is set.
func (m *Matcher) keepPoint() int {
	keep := m.txt
	if m.cur < keep {
		keep = m.cur
	}
	if m.hold >= 0 {
		if h := int(m.hold - m.base); h < keep {
			keep = h
		}
	}
	if keep < 0 {
		keep = 0
	}
	return keep
}

// makeRoom frees buffer space, preferring to shift out consumed bytes
// before the current line of the match start, growing only when nothing can
// be shifted. Growth past the configured limit panics with ErrBufferLimit.
func (m *Matcher) makeRoom() {
	// Hold on to the full current line so column accounting stays exact.
	keep := m.lineStartOf(m.keepPoint())
	if keep > 0 && !m.noShift {
		m.lines += bytes.Count(m.buf[:keep], []byte{'\n'})
		copy(m.buf, m.buf[keep:m.end])
		m.txt -= keep
		m.cur -= keep
		m.end -= keep
		m.base += int64(keep)
		if m.more {
			m.moreAnchor -= keep
			if m.moreAnchor < 0 {
				m.moreAnchor = 0
			}
		}
		for i, t := range m.tails {
			if t >= 0 {
				m.tails[i] = t - keep
			}
		}
		if m.shiftHandler != nil {
			m.shiftHandler(int64(keep))
		}
		if m.end < len(m.buf) {
			return
		}
	}
	n := len(m.buf) * 2
	if n == 0 {
		n = initialBufSize
	}
	if m.max > 0 && n > m.max {
		if len(m.buf) >= m.max {
			panic(ErrBufferLimit)
		}
		n = m.max
	}
	grown := make([]byte, n)
	copy(grown, m.buf[:m.end])
	m.buf = grown
}

// lineStartOf returns the buffer offset of the start of the line containing
// offset i. A shift boundary always falls on a line start, so the result is
// exact even after shifting.
func (m *Matcher) lineStartOf(i int) int {
	return bytes.LastIndexByte(m.buf[:i], '\n') + 1
}

// colAt returns the zero-based display column of buffer offset i, expanding
// tabs to the configured tab width and counting UTF-8 sequences as single
// columns.
func (m *Matcher) colAt(i int) int {
	seg := m.buf[m.lineStartOf(i):i]
	tw := m.prog.Opts.TabWidth
	if tw <= 0 {
		tw = 8
	}
	col := 0
	if ascii.Valid(seg) {
		for _, b := range seg {
			if b == '\t' {
				col = (col/tw + 1) * tw
			} else {
				col++
			}
		}
		return col
	}
	for j := 0; j < len(seg); {
		if seg[j] == '\t' {
			col = (col/tw + 1) * tw
			j++
			continue
		}
		_, sz := utf8.DecodeRune(seg[j:])
		col++
		j += sz
	}
	return col
}

// Lineno returns the 1-based line number of the match start.
func (m *Matcher) Lineno() int {
	return 1 + m.lines + bytes.Count(m.buf[:m.txt], []byte{'\n'})
}

// LinenoEnd returns the 1-based line number of the match end.
func (m *Matcher) LinenoEnd() int {
	return m.Lineno() + bytes.Count(m.Text(), []byte{'\n'})
}

// Columno returns the 1-based column of the match start, with tabs expanded
// to the configured tab width.
func (m *Matcher) Columno() int {
	return m.colAt(m.txt) + 1
}

// ColumnoEnd returns the 1-based column of the last byte of the match. For
// an empty match it equals Columno.
func (m *Matcher) ColumnoEnd() int {
	if m.mlen == 0 {
		return m.Columno()
	}
	return m.colAt(m.txt+m.mlen-1) + 1
}
