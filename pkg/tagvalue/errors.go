package tagvalue

import "fmt"

// ErrorKind classifies a recognition failure
type ErrorKind uint8

const (
	// Syntax: malformed record, unknown tag, unterminated text block
	Syntax ErrorKind = iota + 1
	// Scope: property record with no open scope of its kind
	Scope
	// Reference: reference never defined by end of input
	Reference
	// Completeness: a mandatory part of the document is absent
	Completeness
)

func (k ErrorKind) String() string {
	switch k {
	case Syntax:
		return "syntax"
	case Scope:
		return "scope"
	case Reference:
		return "reference"
	case Completeness:
		return "completeness"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText renders the kind for JSON error bodies
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a fatal recognition failure. Line is the 1-based source line,
// or 0 when the failure is not tied to one line.
type Error struct {
	Kind ErrorKind
	Line int
	Msg  string
	Text string // offending source text, if any
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s error at line %d: %s", e.Kind, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

// Errorf builds an Error
func Errorf(kind ErrorKind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Warning is a non-fatal issue found while building
type Warning struct {
	Line int
	Msg  string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Msg)
	}
	return w.Msg
}
