package builder

import (
	"github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/spdx"
)

// Scope holds the element currently open for each kind. Opening an element
// replaces the current one of the same kind only.
type Scope struct {
	current [spdx.KindElement]*node
	// last is the most recently opened document, package, file or snippet;
	// SPDXID applies to it.
	last *node
}

// Open makes n current for its kind.
func (s *Scope) Open(n *node) {
	s.current[n.kind] = n
	if n.kind.IsElement() {
		s.last = n
	}
}

// Current returns the open element of a kind, or nil.
func (s *Scope) Current(kind spdx.ElementKind) *node {
	if int(kind) >= len(s.current) {
		return nil
	}
	return s.current[kind]
}

// Close clears the current element of a kind.
func (s *Scope) Close(kind spdx.ElementKind) {
	if int(kind) < len(s.current) {
		s.current[kind] = nil
	}
}

type prop struct {
	name  string
	value graph.Value
	multi bool
}

// node is an element or value object waiting to be written.
type node struct {
	kind  spdx.ElementKind
	typ   string
	id    string
	idSet bool // id came from the document rather than a default
	line  int
	props []prop

	children  map[string]*node // dotted value-object nodes (creationInfo)
	checksums map[common.ChecksumAlgorithm]int
}

func (n *node) set(name string, v graph.Value) {
	for i := range n.props {
		if n.props[i].name == name && !n.props[i].multi {
			n.props[i].value = v
			return
		}
	}
	n.props = append(n.props, prop{name: name, value: v})
}

func (n *node) append(name string, v graph.Value) {
	n.props = append(n.props, prop{name: name, value: v, multi: true})
}

func (n *node) get(name string) (graph.Value, bool) {
	for _, p := range n.props {
		if p.name == name {
			return p.value, true
		}
	}
	return nil, false
}

func (n *node) has(name string) bool {
	_, ok := n.get(name)
	return ok
}

// filesAnalyzed reports the package flag; absent means true
func (n *node) filesAnalyzed() bool {
	v, ok := n.get(spdx.PropFilesAnalyzed)
	if !ok {
		return true
	}
	b, isBool := v.(graph.Bool)
	return !isBool || bool(b)
}
