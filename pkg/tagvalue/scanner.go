// ABOUTME: Tag-value record scanner over the comment-filtered byte stream
// ABOUTME: Yields (tag, value, line) records, including multi-line <text> values

package tagvalue

import (
	"bytes"
	"errors"
	"io"
	"iter"

	"github.com/nainya/spdxtv/pkg/mapping"
)

// Record is one "Tag: value" record.
type Record struct {
	Tag   string
	Value string
	Line  int  // source line of the tag
	Text  bool // value was a <text> block
	Entry mapping.Entry
}

// Scanner turns a tag-value document into records.
type Scanner struct {
	f   *Filter
	m   *mapping.Mapping
	err error
}

// NewScanner reads r through a Filter unless r already is one.
func NewScanner(r io.Reader, m *mapping.Mapping) *Scanner {
	f, ok := r.(*Filter)
	if !ok {
		f = NewFilter(r)
	}
	return &Scanner{f: f, m: m}
}

// Next returns the next record, io.EOF at end of input, or a *Error.
// After an error every call returns the same error.
func (s *Scanner) Next() (Record, error) {
	if s.err != nil {
		return Record{}, s.err
	}
	rec, err := s.next()
	if err != nil {
		s.err = err
	}
	return rec, err
}

// Records yields every record in order. A failure is yielded once as the
// final element.
func (s *Scanner) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Close closes the underlying source.
func (s *Scanner) Close() error {
	return s.f.Close()
}

func (s *Scanner) next() (Record, error) {
	for {
		line, start, err := s.readLine()
		if err == io.EOF && len(line) == 0 {
			return Record{}, io.EOF
		}
		if err != nil && err != io.EOF {
			return Record{}, err
		}
		if len(bytes.TrimSpace(line)) == 0 {
			if err == io.EOF {
				return Record{}, io.EOF
			}
			continue
		}
		return s.record(line, start)
	}
}

func (s *Scanner) record(line []byte, start int) (Record, error) {
	colon := bytes.IndexByte(line, ':')
	if colon <= 0 {
		return Record{}, &Error{Kind: Syntax, Line: start, Msg: "expected \"Tag: value\"", Text: string(line)}
	}
	tag := string(bytes.TrimSpace(line[:colon]))
	if tag == "" || bytes.ContainsAny([]byte(tag), " \t") {
		return Record{}, &Error{Kind: Syntax, Line: start, Msg: "malformed tag", Text: string(line)}
	}
	entry, ok := s.m.Lookup(tag)
	if !ok {
		return Record{}, &Error{Kind: Syntax, Line: start, Msg: "unknown tag " + tag, Text: string(line)}
	}

	rest := bytes.TrimLeft(line[colon+1:], " \t")
	rec := Record{Tag: tag, Line: start, Entry: entry}
	if !bytes.HasPrefix(rest, []byte(openText)) {
		if bytes.Contains(rest, []byte(openText)) {
			return Record{}, &Error{Kind: Syntax, Line: start, Msg: "text block must start the value", Text: string(line)}
		}
		rec.Value = string(bytes.TrimRight(rest, " \t\r"))
		return rec, nil
	}

	value, err := s.readText(rest[len(openText):], start)
	if err != nil {
		return Record{}, err
	}
	rec.Value = value
	rec.Text = true
	return rec, nil
}

// readText collects a text block value. head is what followed <text> on
// the record's first line.
func (s *Scanner) readText(head []byte, start int) (string, error) {
	buf := append([]byte(nil), head...)
	closing := []byte(closeText)
	for {
		if i := bytes.Index(buf, closing); i >= 0 {
			tail := buf[i+len(closing):]
			if len(bytes.TrimSpace(tail)) != 0 {
				return "", &Error{Kind: Syntax, Line: s.f.Line(), Msg: "unexpected text after </text>", Text: string(tail)}
			}
			return string(buf[:i]), nil
		}
		// lines inside the block are split on \n only, so rejoining with
		// \n restores the bytes verbatim
		line, _, err := s.readLine()
		if err == io.EOF && len(line) == 0 {
			return "", &Error{Kind: Syntax, Line: start, Msg: "unterminated text block"}
		}
		if err != nil && err != io.EOF {
			return "", err
		}
		buf = append(buf, '\n')
		buf = append(buf, line...)
		if err == io.EOF && !bytes.Contains(buf, closing) {
			return "", &Error{Kind: Syntax, Line: start, Msg: "unterminated text block"}
		}
	}
}

// readLine reads up to and excluding the next \n. start is the source line
// of the first byte.
func (s *Scanner) readLine() (line []byte, start int, err error) {
	for {
		b, err := s.f.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return line, start, io.EOF
			}
			return line, start, err
		}
		if start == 0 {
			start = s.f.Line()
		}
		if b == '\n' {
			return line, start, nil
		}
		line = append(line, b)
	}
}
