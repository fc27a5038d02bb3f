package builder

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/spdx"
	"github.com/nainya/spdxtv/pkg/tagvalue"
)

// Complete finalizes the document: it closes open blocks, resolves every
// deferred reference and only then writes the whole element arena into the
// store. A failure leaves the store untouched.
func (b *Builder) Complete() (Result, error) {
	if b.spent {
		return Result{}, ErrSpent
	}
	if b.err != nil {
		return Result{}, b.err
	}
	if err := b.finalize(); err != nil {
		b.err = err
		return Result{}, err
	}
	if b.strict && len(b.warnings) > 0 {
		b.err = fmt.Errorf("%w: %d warnings", ErrWarnings, len(b.warnings))
		return Result{Namespace: b.namespace, DocumentID: b.doc.id, Warnings: b.Warnings()}, b.err
	}
	counts, err := b.write()
	b.spent = true
	if err != nil {
		return Result{}, err
	}

	b.log.Debug().Str("namespace", b.namespace).Int("nodes", len(b.nodes)).Int("warnings", len(b.warnings)).Msg("document complete")
	return Result{
		Namespace:  b.namespace,
		DocumentID: b.doc.id,
		Warnings:   b.Warnings(),
		Counts:     counts,
	}, nil
}

func (b *Builder) finalize() error {
	if err := b.closeAnnotation(); err != nil {
		return err
	}
	if b.namespace == "" {
		return tagvalue.Errorf(tagvalue.Completeness, 0, "document has no DocumentNamespace")
	}
	if !b.doc.idSet {
		if other, dup := b.byID[b.doc.id]; dup {
			return tagvalue.Errorf(tagvalue.Syntax, other.line, "%s is reserved for the document", b.doc.id)
		}
		b.byID[b.doc.id] = b.doc
	}

	for _, n := range b.nodes {
		if (n.kind == spdx.KindPackage || n.kind == spdx.KindFile) && !n.idSet {
			name, _ := graph.AsString(n.get(spdx.PropName))
			return tagvalue.Errorf(tagvalue.Completeness, n.line, "%s %q has no SPDXID", n.kind, name)
		}
	}

	for _, r := range b.reviews {
		if !r.has(spdx.PropAnnotationDate) {
			return tagvalue.Errorf(tagvalue.Scope, r.line, "review is missing ReviewDate")
		}
		r.set(spdx.PropSpdxElementID, graph.Ref(b.doc.id))
		b.doc.append(spdx.PropAnnotations, graph.Ref(r.id))
	}

	if err := b.resolveObligations(); err != nil {
		return err
	}

	for _, s := range b.snippets {
		if !s.has(spdx.PropSnippetFromFile) {
			b.warnf(s.line, "snippet %s has no SnippetFromFileSPDXID", s.id)
		}
	}
	for _, id := range sortedKeys(b.licenseRefs) {
		if n := b.licenseRefs[id]; !n.has(spdx.PropExtractedText) {
			b.warnf(n.line, "%s has no ExtractedText", id)
		}
	}

	b.implicitContains()
	if err := b.resolveEdges(); err != nil {
		return err
	}
	return b.resolveAnnotations()
}

func (b *Builder) resolveObligations() error {
	for _, o := range b.obligations {
		switch o.kind {
		case needLicenseRef:
			if _, ok := b.licenseRefs[o.id]; !ok {
				return tagvalue.Errorf(tagvalue.Reference, o.line, "%s is used but never declared with LicenseID", o.id)
			}
		case needDocumentRef:
			if _, ok := b.docRefs[o.id]; !ok {
				return tagvalue.Errorf(tagvalue.Reference, o.line, "%s is used but never declared with ExternalDocumentRef", o.id)
			}
		case needFromFile:
			n, ok := b.byID[o.id]
			if !ok {
				return tagvalue.Errorf(tagvalue.Reference, o.line, "snippet file %s is not defined", o.id)
			}
			if n.kind != spdx.KindFile {
				return tagvalue.Errorf(tagvalue.Reference, o.line, "snippet file %s is a %s, not a file", o.id, n.kind)
			}
		}
	}
	return nil
}

// implicitContains adds one CONTAINS edge per file opened inside a package
// unless the document states the same edge itself.
func (b *Builder) implicitContains() {
	for _, c := range b.contains {
		e := &edge{source: c.pkg.id, typ: "CONTAINS", target: graph.Ref(c.file.id), line: c.line}
		key := e.key()
		if _, dup := b.edgeKeys[key]; dup {
			continue
		}
		e.rel = b.newNode(spdx.KindRelationship, spdx.TypeRelationship, b.newID(), c.line)
		e.rel.set(spdx.PropSpdxElementID, graph.Ref(e.source))
		e.rel.set(spdx.PropRelationshipType, graph.String(e.typ))
		e.rel.set(spdx.PropRelatedElement, e.target)
		b.edges = append(b.edges, e)
		b.edgeKeys[key] = e
	}
}

func (b *Builder) resolveEdges() error {
	namespaces := b.store.Namespaces()
	external := func(id string, line int) bool {
		docRef, elem, ok := strings.Cut(id, ":")
		if !ok {
			return false
		}
		uri := b.docRefs[docRef]
		if slices.Contains(namespaces, uri) && !b.store.Exists(uri, elem) {
			b.warnf(line, "%s has no element %s", uri, elem)
		}
		return true
	}

	for _, e := range b.edges {
		// an edge from another document hangs off this document
		src := b.doc
		if !external(e.source, e.line) {
			var ok bool
			if src, ok = b.byID[e.source]; !ok {
				return tagvalue.Errorf(tagvalue.Reference, e.line, "relationship source %s is not defined", e.source)
			}
		}

		ref, isRef := e.target.(graph.Ref)
		if isRef {
			id := string(ref)
			if !external(id, e.line) {
				dst, ok := b.byID[id]
				if !ok {
					return tagvalue.Errorf(tagvalue.Reference, e.line, "relationship target %s is not defined", id)
				}
				if e.typ == "CONTAINS" && src.kind == spdx.KindPackage && dst.kind == spdx.KindFile && !src.filesAnalyzed() {
					return tagvalue.Errorf(tagvalue.Scope, e.line, "package %s has FilesAnalyzed: false but CONTAINS file %s", src.id, dst.id)
				}
			}
		}
		src.append(spdx.PropRelationships, graph.Ref(e.rel.id))
	}
	return nil
}

func (b *Builder) resolveAnnotations() error {
	for _, blk := range b.annotations {
		if strings.HasPrefix(blk.target, spdx.DocumentRefPrefix) {
			continue
		}
		n, ok := b.byID[blk.target]
		if !ok {
			return tagvalue.Errorf(tagvalue.Reference, blk.n.line, "annotation target %s is not defined", blk.target)
		}
		n.append(spdx.PropAnnotations, graph.Ref(blk.n.id))
	}
	return nil
}

// write creates every node before setting any property so references never
// point at missing elements.
func (b *Builder) write() (map[string]int, error) {
	counts := make(map[string]int)
	for _, n := range b.nodes {
		if err := b.store.Create(b.namespace, n.id, n.typ); err != nil {
			return nil, fmt.Errorf("builder: create %s: %w", n.id, err)
		}
		counts[n.typ]++
	}
	for _, n := range b.nodes {
		for _, p := range n.props {
			var err error
			if p.multi {
				err = b.store.Append(b.namespace, n.id, p.name, p.value)
			} else {
				err = b.store.Set(b.namespace, n.id, p.name, p.value)
			}
			if err != nil {
				return nil, fmt.Errorf("builder: write %s.%s: %w", n.id, p.name, err)
			}
		}
	}
	return counts, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
