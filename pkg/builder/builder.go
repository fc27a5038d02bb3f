// ABOUTME: Graph builder applying tag-value records to a graph store
// ABOUTME: Tracks element scope, defers references and writes only after every check passes

// Package builder interprets the ordered record stream of a tag-value
// document: it maintains the current element of each kind, collects
// forward references and resolves them when the input ends.
package builder

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/license"
	"github.com/nainya/spdxtv/pkg/spdx"
	"github.com/nainya/spdxtv/pkg/tagvalue"
)

var (
	// ErrSpent is returned by Apply and Complete after Complete has run
	ErrSpent = errors.New("builder: already completed")

	// ErrWarnings is returned by Complete in strict mode when the document
	// produced warnings; nothing is written
	ErrWarnings = errors.New("builder: document has warnings")
)

// Result describes a successfully built document
type Result struct {
	Namespace  string
	DocumentID string
	Warnings   []tagvalue.Warning
	// Counts is the number of nodes written per store type
	Counts map[string]int
}

// Option configures a Builder
type Option func(*Builder)

// WithLogger sets the logger scope transitions are written to
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithLicenseParser replaces the license expression parser
func WithLicenseParser(p license.Parser) Option {
	return func(b *Builder) { b.licenses = p }
}

// WithStrictWarnings makes Complete reject a document that produced warnings
func WithStrictWarnings() Option {
	return func(b *Builder) { b.strict = true }
}

// WithIDGenerator replaces the generator for anonymous node ids
func WithIDGenerator(gen func() string) Option {
	return func(b *Builder) { b.newID = gen }
}

type obligationKind uint8

const (
	needLicenseRef obligationKind = iota + 1
	needDocumentRef
	needFromFile
)

// obligation is a reference that must be defined by end of input
type obligation struct {
	kind obligationKind
	id   string
	line int
}

type containment struct {
	pkg, file *node
	line      int
}

type edge struct {
	rel    *node
	source string
	typ    string
	target graph.Value // Ref, or String for NONE and NOASSERTION
	line   int
}

type annotationBlock struct {
	n      *node
	target string
	seen   map[string]bool
}

// Builder applies records to a graph store. It is not safe for concurrent
// use; one Builder builds one document.
type Builder struct {
	store    graph.Store
	log      zerolog.Logger
	licenses license.Parser
	newID    func() string

	scope       Scope
	doc         *node
	namespace   string
	nodes       []*node
	byID        map[string]*node
	licenseRefs map[string]*node
	docRefs     map[string]string // DocumentRef name -> namespace URI
	obligations []obligation
	contains    []containment
	edges       []*edge
	edgeKeys    map[string]*edge
	annotation  *annotationBlock
	annotations []*annotationBlock
	reviews     []*node
	snippets    []*node
	warnings    []tagvalue.Warning

	strict bool
	err    error
	spent  bool
}

// New creates a builder writing into store
func New(store graph.Store, opts ...Option) *Builder {
	b := &Builder{
		store:       store,
		log:         zerolog.Nop(),
		licenses:    license.Default,
		newID:       uuid.NewString,
		byID:        make(map[string]*node),
		licenseRefs: make(map[string]*node),
		docRefs:     make(map[string]string),
		edgeKeys:    make(map[string]*edge),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.doc = b.newNode(spdx.KindDocument, spdx.TypeDocument, spdx.DefaultDocumentID, 0)
	b.scope.Open(b.doc)
	return b
}

// Warnings returns the warnings collected so far
func (b *Builder) Warnings() []tagvalue.Warning {
	return slices.Clone(b.warnings)
}

// Apply applies one record. A fatal failure is returned as *tagvalue.Error
// and every later call returns it again.
func (b *Builder) Apply(rec tagvalue.Record) error {
	if b.spent {
		return ErrSpent
	}
	if b.err != nil {
		return b.err
	}
	if err := b.apply(rec); err != nil {
		b.err = err
		return err
	}
	return nil
}

func (b *Builder) apply(rec tagvalue.Record) error {
	e := rec.Entry
	if e.Opens && e.Kind != spdx.KindAnnotation {
		if err := b.closeAnnotation(); err != nil {
			return err
		}
	}

	switch {
	case e.Kind == spdx.KindAnnotation:
		return b.annotate(rec)
	case e.Kind == spdx.KindElement:
		return b.applyID(rec)
	case e.Opens:
		if rec.Value == "" {
			return b.fatal(tagvalue.Syntax, rec, "%s requires a value", rec.Tag)
		}
		return b.open(rec)
	}

	target := b.scope.Current(e.Kind)
	if target == nil {
		return b.fatal(tagvalue.Scope, rec, "%s outside of any %s", rec.Tag, e.Kind)
	}
	if e.Kind == spdx.KindFile {
		if pkg := b.scope.Current(spdx.KindPackage); pkg != nil && !pkg.filesAnalyzed() {
			return b.fatal(tagvalue.Scope, rec, "%s after package %s which has FilesAnalyzed: false", rec.Tag, describe(pkg))
		}
	}
	return b.setProperty(target, rec)
}

// open handles a scope-opening record
func (b *Builder) open(rec tagvalue.Record) error {
	e := rec.Entry
	switch e.Kind {
	case spdx.KindDocument:
		b.scope.Open(b.doc)
		if e.Property == spdx.PropNamespace {
			return b.setNamespace(rec)
		}
		return b.setProperty(b.doc, rec)

	case spdx.KindPackage:
		n := b.newNode(spdx.KindPackage, spdx.TypePackage, "", rec.Line)
		b.opened(n, rec)
		return b.setProperty(n, rec)

	case spdx.KindFile:
		pkg := b.scope.Current(spdx.KindPackage)
		if pkg != nil && !pkg.filesAnalyzed() {
			return b.fatal(tagvalue.Scope, rec, "file %q in package %s which has FilesAnalyzed: false", rec.Value, describe(pkg))
		}
		n := b.newNode(spdx.KindFile, spdx.TypeFile, "", rec.Line)
		b.opened(n, rec)
		if pkg != nil {
			b.contains = append(b.contains, containment{pkg: pkg, file: n, line: rec.Line})
		}
		return b.setProperty(n, rec)

	case spdx.KindSnippet:
		if err := tagvalue.ParseID(rec.Value); err != nil {
			return b.fatal(tagvalue.Syntax, rec, "%v", err)
		}
		n := b.newNode(spdx.KindSnippet, spdx.TypeSnippet, rec.Value, rec.Line)
		if err := b.register(n, rec); err != nil {
			return err
		}
		b.snippets = append(b.snippets, n)
		b.opened(n, rec)
		return nil

	case spdx.KindLicenseRef:
		return b.openLicense(rec)

	case spdx.KindExternalDocumentRef:
		return b.openExternalDocumentRef(rec)

	case spdx.KindExternalRef:
		return b.openExternalRef(rec)

	case spdx.KindRelationship:
		return b.openRelationship(rec)

	case spdx.KindReview:
		agent, err := tagvalue.ParseAgent(rec.Value, false)
		if err != nil {
			return b.fatal(tagvalue.Syntax, rec, "%v", err)
		}
		n := b.newNode(spdx.KindReview, spdx.TypeAnnotation, b.newID(), rec.Line)
		n.set(spdx.PropAnnotator, graph.String(agent.String()))
		n.set(spdx.PropAnnotationType, graph.String("REVIEW"))
		b.reviews = append(b.reviews, n)
		b.opened(n, rec)
		return nil
	}
	return b.fatal(tagvalue.Syntax, rec, "%s cannot open a %s scope", rec.Tag, e.Kind)
}

func (b *Builder) opened(n *node, rec tagvalue.Record) {
	b.scope.Open(n)
	b.log.Debug().Str("kind", n.kind.String()).Str("tag", rec.Tag).Int("line", rec.Line).Msg("scope opened")
}

// applyID handles SPDXID, which names the most recently opened element
func (b *Builder) applyID(rec tagvalue.Record) error {
	if rec.Value == "" {
		return b.fatal(tagvalue.Syntax, rec, "SPDXID requires a value")
	}
	if err := tagvalue.ParseID(rec.Value); err != nil {
		return b.fatal(tagvalue.Syntax, rec, "%v", err)
	}
	n := b.scope.last
	if n == nil {
		return b.fatal(tagvalue.Scope, rec, "SPDXID before any document, package or file")
	}
	if n.idSet {
		if n.id == rec.Value {
			return nil
		}
		return b.fatal(tagvalue.Syntax, rec, "%s already has SPDXID %s", n.kind, n.id)
	}
	n.id = rec.Value
	if err := b.register(n, rec); err != nil {
		return err
	}
	return nil
}

// register records a named element id
func (b *Builder) register(n *node, rec tagvalue.Record) error {
	if other, dup := b.byID[n.id]; dup && other != n {
		return b.fatal(tagvalue.Syntax, rec, "duplicate SPDXID %s (first used at line %d)", n.id, other.line)
	}
	b.byID[n.id] = n
	n.idSet = true
	return nil
}

func (b *Builder) setNamespace(rec tagvalue.Record) error {
	ns := rec.Value
	if b.namespace != "" {
		if b.namespace == ns {
			b.warnf(rec.Line, "DocumentNamespace repeated")
			return nil
		}
		return b.fatal(tagvalue.Syntax, rec, "second DocumentNamespace %s (already %s)", ns, b.namespace)
	}
	if slices.Contains(b.store.Namespaces(), ns) {
		return b.fatal(tagvalue.Reference, rec, "namespace %s is already in the store", ns)
	}
	b.namespace = ns
	return nil
}

func (b *Builder) newNode(kind spdx.ElementKind, typ, id string, line int) *node {
	n := &node{kind: kind, typ: typ, id: id, line: line}
	b.nodes = append(b.nodes, n)
	return n
}

// valueNode creates an anonymous value object such as a checksum. It
// belongs to no element kind.
func (b *Builder) valueNode(typ string, line int) *node {
	return b.newNode(spdx.KindNone, typ, b.newID(), line)
}

// child returns the value-object node hanging off n under name
func (b *Builder) child(n *node, name string) *node {
	if c, ok := n.children[name]; ok {
		return c
	}
	typ, ok := childTypes[name]
	if !ok {
		typ = name
	}
	c := b.valueNode(typ, n.line)
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	n.children[name] = c
	n.set(name, graph.Ref(c.id))
	return c
}

var childTypes = map[string]string{
	spdx.PropCreationInfo: spdx.TypeCreationInfo,
}

func (b *Builder) warnf(line int, format string, args ...any) {
	b.warnings = append(b.warnings, tagvalue.Warning{Line: line, Msg: fmt.Sprintf(format, args...)})
}

func (b *Builder) fatal(kind tagvalue.ErrorKind, rec tagvalue.Record, format string, args ...any) error {
	err := tagvalue.Errorf(kind, rec.Line, format, args...)
	err.Text = rec.Tag + ": " + rec.Value
	return err
}

func describe(n *node) string {
	if n.id != "" {
		return n.id
	}
	return fmt.Sprintf("%s opened at line %d", n.kind, n.line)
}
