package license

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty indicates an empty expression
var ErrEmpty = errors.New("license: empty expression")

// SyntaxError describes a malformed expression
type SyntaxError struct {
	Expr string
	Pos  int // token index
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("license: %s in %q (token %d)", e.Msg, e.Expr, e.Pos)
}

// Parser turns license expression strings into Expression handles.
type Parser interface {
	Parse(expr string) (Expression, error)
}

// ParserFunc adapts a function to Parser
type ParserFunc func(string) (Expression, error)

func (f ParserFunc) Parse(expr string) (Expression, error) { return f(expr) }

// Default is the package parser
var Default Parser = ParserFunc(Parse)

const (
	licenseRefPrefix  = "LicenseRef-"
	documentRefPrefix = "DocumentRef-"
)

// Parse parses a license expression. Operators are case-insensitive; WITH
// binds tighter than AND, which binds tighter than OR.
func Parse(expr string) (Expression, error) {
	tokens := tokenize(expr)
	if len(tokens) == 0 {
		return nil, ErrEmpty
	}
	p := &parser{expr: expr, tokens: tokens}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, p.errorf("unexpected %q", p.tokens[p.pos])
	}
	return e, nil
}

// tokenize splits on whitespace and parentheses
func tokenize(expr string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, string(r))
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

type parser struct {
	expr   string
	tokens []string
	pos    int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Expr: p.expr, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peekKeyword(kw string) bool {
	return p.pos < len(p.tokens) && strings.EqualFold(p.tokens[p.pos], kw)
}

func (p *parser) parseOr() (Expression, error) {
	return p.parseBinary("OR", p.parseAnd)
}

func (p *parser) parseAnd() (Expression, error) {
	return p.parseBinary("AND", p.parseWith)
}

// parseBinary parses operand (op operand)* and flattens chains of the
// same operator
func (p *parser) parseBinary(op string, operand func() (Expression, error)) (Expression, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	if !p.peekKeyword(op) {
		return first, nil
	}
	out := Operator{Op: op}
	out.Operands = appendFlat(out.Operands, op, first)
	for p.peekKeyword(op) {
		p.pos++
		next, err := operand()
		if err != nil {
			return nil, err
		}
		out.Operands = appendFlat(out.Operands, op, next)
	}
	return out, nil
}

func appendFlat(list []Expression, op string, e Expression) []Expression {
	if inner, ok := e.(Operator); ok && inner.Op == op {
		return append(list, inner.Operands...)
	}
	return append(list, e)
}

func (p *parser) parseWith() (Expression, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.peekKeyword("WITH") {
		return e, nil
	}
	if _, ok := e.(License); !ok {
		return nil, p.errorf("WITH must follow a license identifier")
	}
	p.pos++
	if p.pos >= len(p.tokens) || isReserved(p.tokens[p.pos]) {
		return nil, p.errorf("missing exception after WITH")
	}
	exception := p.tokens[p.pos]
	p.pos++
	return With{License: e, Exception: exception}, nil
}

func (p *parser) parsePrimary() (Expression, error) {
	if p.pos >= len(p.tokens) {
		return nil, p.errorf("unexpected end of expression")
	}
	tok := p.tokens[p.pos]
	switch {
	case tok == "(":
		p.pos++
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos] != ")" {
			return nil, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return e, nil
	case tok == ")" || isReserved(tok):
		return nil, p.errorf("unexpected %q", tok)
	}
	p.pos++
	return term(tok, p)
}

func term(tok string, p *parser) (Expression, error) {
	switch strings.ToUpper(tok) {
	case string(None):
		return None, nil
	case string(NoAssertion):
		return NoAssertion, nil
	}
	if strings.HasPrefix(tok, documentRefPrefix) {
		docRef, id, ok := strings.Cut(tok, ":")
		if !ok || !strings.HasPrefix(id, licenseRefPrefix) || !validID(docRef) || !validID(id) {
			return nil, p.errorf("malformed external license reference %q", tok)
		}
		return LicenseRef{Ref{DocumentRef: docRef, ID: id}}, nil
	}
	if strings.HasPrefix(tok, licenseRefPrefix) {
		if !validID(tok) {
			return nil, p.errorf("malformed license reference %q", tok)
		}
		return LicenseRef{Ref{ID: tok}}, nil
	}
	orLater := strings.HasSuffix(tok, "+")
	id := strings.TrimSuffix(tok, "+")
	if !validID(id) {
		return nil, p.errorf("malformed license identifier %q", tok)
	}
	return License{ID: id, OrLater: orLater}, nil
}

func isReserved(tok string) bool {
	switch strings.ToUpper(tok) {
	case "AND", "OR", "WITH":
		return true
	}
	return false
}

// validID accepts letters, digits, '.' and '-'
func validID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}
