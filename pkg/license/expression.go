// Package license parses SPDX license expressions into an opaque
// Expression handle.
package license

import (
	"sort"
	"strings"
)

// Expression is a parsed license expression.
type Expression interface {
	// String renders the expression in canonical form.
	String() string
	// LicenseRefs returns the LicenseRef ids the expression mentions,
	// including document-qualified ones, in order of first appearance.
	LicenseRefs() []Ref
}

// Ref is a LicenseRef id, optionally qualified by an external document ref.
type Ref struct {
	DocumentRef string // "DocumentRef-x", empty for local refs
	ID          string // "LicenseRef-y"
}

func (r Ref) String() string {
	if r.DocumentRef == "" {
		return r.ID
	}
	return r.DocumentRef + ":" + r.ID
}

// License is a single license identifier.
type License struct {
	ID      string
	OrLater bool
}

// LicenseRef is a reference to an extracted license.
type LicenseRef struct {
	Ref
}

// Special is NONE or NOASSERTION.
type Special string

const (
	None        Special = "NONE"
	NoAssertion Special = "NOASSERTION"
)

// With attaches an exception to a license.
type With struct {
	License   Expression
	Exception string
}

// Operator joins two or more operands.
type Operator struct {
	Op       string // "AND" or "OR"
	Operands []Expression
}

func (l License) String() string {
	if l.OrLater {
		return l.ID + "+"
	}
	return l.ID
}

func (s Special) String() string { return string(s) }

func (w With) String() string { return w.License.String() + " WITH " + w.Exception }

func (o Operator) String() string {
	parts := make([]string, len(o.Operands))
	for i, operand := range o.Operands {
		// OR binds looser than AND
		if inner, ok := operand.(Operator); ok && inner.Op == "OR" && o.Op == "AND" {
			parts[i] = "(" + inner.String() + ")"
			continue
		}
		parts[i] = operand.String()
	}
	return strings.Join(parts, " "+o.Op+" ")
}

func (License) LicenseRefs() []Ref      { return nil }
func (Special) LicenseRefs() []Ref      { return nil }
func (r LicenseRef) LicenseRefs() []Ref { return []Ref{r.Ref} }
func (w With) LicenseRefs() []Ref       { return w.License.LicenseRefs() }

func (o Operator) LicenseRefs() []Ref {
	seen := make(map[Ref]bool)
	var out []Ref
	for _, operand := range o.Operands {
		for _, r := range operand.LicenseRefs() {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// IDs returns the sorted set of plain license identifiers in e.
func IDs(e Expression) []string {
	set := make(map[string]struct{})
	collect(e, set)
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func collect(e Expression, set map[string]struct{}) {
	switch x := e.(type) {
	case License:
		set[x.ID] = struct{}{}
	case With:
		collect(x.License, set)
	case Operator:
		for _, operand := range x.Operands {
			collect(operand, set)
		}
	}
}
