// ABOUTME: Property value model for the graph store
// ABOUTME: Scalars, element references and ordered collections

package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is an immutable property value. Nil is not a valid value.
type Value interface {
	isValue()
	String() string
}

// String is a text value.
type String string

// Int is a signed integer value.
type Int int64

// Bool is a boolean value.
type Bool bool

// Ref points at another element. A bare id refers to the same namespace;
// "DocumentRef-x:id" refers to an element of an external document.
type Ref string

// List is an ordered collection built by Append.
type List []Value

func (String) isValue() {}
func (Int) isValue()    {}
func (Bool) isValue()   {}
func (Ref) isValue()    {}
func (List) isValue()   {}

func (s String) String() string { return string(s) }
func (i Int) String() string    { return strconv.FormatInt(int64(i), 10) }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (r Ref) String() string    { return "#" + string(r) }

func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Equal compares two values structurally.
func Equal(a, b Value) bool {
	la, aList := a.(List)
	lb, bList := b.(List)
	if aList || bList {
		if !aList || !bList || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

// AsString returns the text of a String value.
func AsString(v Value, ok bool) (string, bool) {
	if !ok {
		return "", false
	}
	s, isString := v.(String)
	return string(s), isString
}

// AsList returns v as a list; a scalar becomes a one-element list.
func AsList(v Value, ok bool) List {
	if !ok {
		return nil
	}
	if l, isList := v.(List); isList {
		return l
	}
	return List{v}
}

func mustScalar(v Value) error {
	if v == nil {
		return fmt.Errorf("graph: nil value")
	}
	if _, isList := v.(List); isList {
		return fmt.Errorf("graph: nested list values are not supported")
	}
	return nil
}
