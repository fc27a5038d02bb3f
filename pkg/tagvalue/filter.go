// ABOUTME: Comment-stripping byte filter for tag-value documents
// ABOUTME: Collapses comment lines, normalizes terminators, passes <text> blocks verbatim

package tagvalue

import (
	"bufio"
	"io"
)

const (
	openText  = "<text>"
	closeText = "</text>"
)

// Filter removes comment lines from a tag-value byte stream. Outside text
// blocks every line terminator (\n, \r or \r\n) is emitted as a single \n,
// and is only emitted once the following line is known not to be a comment.
// Inside <text>...</text> every byte is copied unchanged.
type Filter struct {
	src    *bufio.Reader
	closer io.Closer

	inText      bool
	pending     bool // a terminator is held back
	pendingLine int
	skipped     bool // a comment line was dropped while pending
	atLineStart bool
	openMatch   int // bytes of "<text>" matched so far
	closeMatch  int // bytes of "</text>" matched so far

	held     byte
	hasHeld  bool
	heldLine int

	rawLine  int // source line of the next raw byte
	lastLine int // source line of the last returned byte
	err      error
}

// NewFilter wraps r. Closing the filter closes r when it is an io.Closer.
func NewFilter(r io.Reader) *Filter {
	f := &Filter{src: bufio.NewReader(r), atLineStart: true, rawLine: 1}
	if c, ok := r.(io.Closer); ok {
		f.closer = c
	}
	return f
}

// ReadByte returns the next filtered byte, or io.EOF at end of stream.
func (f *Filter) ReadByte() (byte, error) {
	if f.hasHeld {
		f.hasHeld = false
		f.lastLine = f.heldLine
		return f.content(f.held), nil
	}
	for {
		b, line, err := f.readRaw()
		if err != nil {
			return f.end(err)
		}

		if f.inText {
			f.matchClose(b)
			f.lastLine = line
			return b, nil
		}

		if b == '\n' || b == '\r' {
			if b == '\r' {
				f.swallowLF()
			}
			f.openMatch = 0
			f.atLineStart = true
			if f.pending {
				// blank line: release the held terminator, hold this one
				f.lastLine = f.pendingLine
				f.pendingLine = line
				f.skipped = false
				return '\n', nil
			}
			f.pending = true
			f.pendingLine = line
			f.skipped = false
			continue
		}

		if f.atLineStart && b == '#' {
			f.skipped = f.pending
			if err := f.skipLine(); err != nil {
				return f.end(err)
			}
			continue
		}

		f.atLineStart = false
		if f.pending {
			f.pending = false
			f.held, f.hasHeld, f.heldLine = b, true, line
			f.lastLine = f.pendingLine
			return '\n', nil
		}
		f.lastLine = line
		return f.content(b), nil
	}
}

// end releases a pending terminator at end of input unless comment lines
// followed it
func (f *Filter) end(err error) (byte, error) {
	if f.pending && !f.skipped && err == io.EOF {
		f.pending = false
		f.lastLine = f.pendingLine
		return '\n', nil
	}
	f.pending = false
	return 0, err
}

// Read fills p through the same state machine as ReadByte.
func (f *Filter) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := f.ReadByte()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

// Skip discards n filtered bytes and reports how many were skipped.
func (f *Filter) Skip(n int64) (int64, error) {
	var skipped int64
	for skipped < n {
		if _, err := f.ReadByte(); err != nil {
			if err == io.EOF {
				return skipped, nil
			}
			return skipped, err
		}
		skipped++
	}
	return skipped, nil
}

// Line returns the 1-based source line of the last byte returned.
func (f *Filter) Line() int {
	return f.lastLine
}

// Close closes the underlying source.
func (f *Filter) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// content tracks "<text>" on a normal line and returns b
func (f *Filter) content(b byte) byte {
	switch {
	case b == openText[f.openMatch]:
		f.openMatch++
		if f.openMatch == len(openText) {
			f.inText = true
			f.openMatch = 0
			f.closeMatch = 0
		}
	case b == openText[0]:
		f.openMatch = 1
	default:
		f.openMatch = 0
	}
	return b
}

// matchClose tracks "</text>" inside a text block
func (f *Filter) matchClose(b byte) {
	switch {
	case b == closeText[f.closeMatch]:
		f.closeMatch++
		if f.closeMatch == len(closeText) {
			f.inText = false
			f.closeMatch = 0
			f.atLineStart = false
		}
	case b == closeText[0]:
		f.closeMatch = 1
	default:
		f.closeMatch = 0
	}
}

// skipLine discards a comment line and its terminator
func (f *Filter) skipLine() error {
	for {
		b, _, err := f.readRaw()
		if err != nil {
			return err
		}
		switch b {
		case '\n':
			return nil
		case '\r':
			f.swallowLF()
			return nil
		}
	}
}

// swallowLF consumes the \n of a \r\n pair outside text blocks
func (f *Filter) swallowLF() {
	if next, err := f.src.Peek(1); err == nil && next[0] == '\n' {
		f.src.ReadByte()
		f.rawLine++
	}
}

// readRaw reads one source byte and the line it belongs to
func (f *Filter) readRaw() (byte, int, error) {
	if f.err != nil {
		return 0, f.rawLine, f.err
	}
	b, err := f.src.ReadByte()
	if err != nil {
		f.err = err
		return 0, f.rawLine, err
	}
	line := f.rawLine
	switch b {
	case '\n':
		f.rawLine++
	case '\r':
		// a \r\n pair counts once, at the \n
		if next, err := f.src.Peek(1); err != nil || next[0] != '\n' {
			f.rawLine++
		}
	}
	return b, line, nil
}
