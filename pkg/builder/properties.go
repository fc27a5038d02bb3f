package builder

import (
	"strings"

	"github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/license"
	"github.com/nainya/spdxtv/pkg/mapping"
	"github.com/nainya/spdxtv/pkg/spdx"
	"github.com/nainya/spdxtv/pkg/tagvalue"
)

// setProperty applies a property record to n according to its value grammar
func (b *Builder) setProperty(n *node, rec tagvalue.Record) error {
	e := rec.Entry
	v := rec.Value
	if v == "" {
		if e.Value.Composite() {
			return b.fatal(tagvalue.Syntax, rec, "%s requires a value", rec.Tag)
		}
		// an empty scalar leaves the property unset
		return nil
	}

	prop := e.Property
	if head, tail, dotted := strings.Cut(prop, "."); dotted {
		n = b.child(n, head)
		prop = tail
	}

	var val graph.Value
	switch e.Value {
	case mapping.Text, mapping.URI:
		val = graph.String(v)

	case mapping.Date:
		if _, err := tagvalue.ParseDate(v); err != nil {
			b.warnf(rec.Line, "%s %q is not an ISO-8601 date (YYYY-MM-DDThh:mm:ssZ)", rec.Tag, v)
		}
		val = graph.String(v)

	case mapping.Bool:
		flag, err := tagvalue.ParseBool(v)
		if err != nil {
			return b.fatal(tagvalue.Syntax, rec, "%v", err)
		}
		val = graph.Bool(flag)

	case mapping.Agent:
		noAssertion := prop == spdx.PropSupplier || prop == spdx.PropOriginator
		agent, err := tagvalue.ParseAgent(v, noAssertion)
		if err != nil {
			return b.fatal(tagvalue.Syntax, rec, "%v", err)
		}
		val = graph.String(agent.String())

	case mapping.License, mapping.LicenseSet:
		expr, err := b.parseLicense(rec)
		if err != nil {
			return err
		}
		val = graph.String(expr.String())

	case mapping.Checksum:
		sum, err := tagvalue.ParseChecksum(v)
		if err != nil {
			return b.fatal(tagvalue.Syntax, rec, "%v", err)
		}
		b.addChecksum(n, sum, rec)
		return nil

	case mapping.Range:
		start, end, err := tagvalue.ParseRange(v)
		if err != nil {
			return b.fatal(tagvalue.Syntax, rec, "%v", err)
		}
		r := b.valueNode(spdx.TypeRange, rec.Line)
		r.set(spdx.PropStartPointer, graph.Int(start))
		r.set(spdx.PropEndPointer, graph.Int(end))
		val = graph.Ref(r.id)

	case mapping.VerificationCode:
		code, err := tagvalue.ParseVerificationCode(v)
		if err != nil {
			return b.fatal(tagvalue.Syntax, rec, "%v", err)
		}
		c := b.valueNode(spdx.TypeVerificationCode, rec.Line)
		c.set(spdx.PropVerificationValue, graph.String(code.Value))
		for _, f := range code.ExcludedFiles {
			c.append(spdx.PropVerificationExclude, graph.String(f))
		}
		val = graph.Ref(c.id)

	case mapping.FileType:
		if val = enumValue(spdx.FileTypes, strings.ToUpper(v)); val == nil {
			return b.fatal(tagvalue.Syntax, rec, "unknown file type %s", v)
		}

	case mapping.AnnotationType:
		if val = enumValue(spdx.AnnotationTypes, strings.ToUpper(v)); val == nil {
			return b.fatal(tagvalue.Syntax, rec, "unknown annotation type %s", v)
		}

	case mapping.Purpose:
		if val = enumValue(spdx.PackagePurposes, strings.ReplaceAll(strings.ToUpper(v), "_", "-")); val == nil {
			return b.fatal(tagvalue.Syntax, rec, "unknown package purpose %s", v)
		}

	case mapping.Ref:
		ref, err := tagvalue.ParseElementRef(v, false)
		if err != nil {
			return b.fatal(tagvalue.Syntax, rec, "%v", err)
		}
		if prop == spdx.PropSnippetFromFile {
			if ref.DocumentRefID != "" {
				return b.fatal(tagvalue.Reference, rec, "snippet file %s must be in this document", v)
			}
			b.obligations = append(b.obligations, obligation{kind: needFromFile, id: v, line: rec.Line})
		}
		val = graph.Ref(v)

	default:
		return b.fatal(tagvalue.Syntax, rec, "%s cannot be used as a property of %s", rec.Tag, n.kind)
	}

	if e.Multi {
		n.append(prop, val)
	} else {
		n.set(prop, val)
	}
	return nil
}

func enumValue(set spdx.Enum, v string) graph.Value {
	if !set.Has(v) {
		return nil
	}
	return graph.String(v)
}

// parseLicense parses an expression and records its LicenseRef obligations
func (b *Builder) parseLicense(rec tagvalue.Record) (license.Expression, error) {
	expr, err := b.licenses.Parse(rec.Value)
	if err != nil {
		return nil, b.fatal(tagvalue.Syntax, rec, "%v", err)
	}
	for _, id := range license.Unlisted(expr) {
		b.warnf(rec.Line, "%s is not on the SPDX license list", id)
	}
	for _, ref := range expr.LicenseRefs() {
		if ref.DocumentRef != "" {
			b.obligations = append(b.obligations, obligation{kind: needDocumentRef, id: ref.DocumentRef, line: rec.Line})
			continue
		}
		b.obligations = append(b.obligations, obligation{kind: needLicenseRef, id: ref.ID, line: rec.Line})
	}
	return expr, nil
}

// addChecksum adds a checksum, replacing an earlier one with the same algorithm
func (b *Builder) addChecksum(n *node, sum common.Checksum, rec tagvalue.Record) {
	c := b.valueNode(spdx.TypeChecksum, rec.Line)
	c.set(spdx.PropAlgorithm, graph.String(sum.Algorithm))
	c.set(spdx.PropChecksumValue, graph.String(sum.Value))

	if n.checksums == nil {
		n.checksums = make(map[common.ChecksumAlgorithm]int)
	}
	if i, dup := n.checksums[sum.Algorithm]; dup {
		b.warnf(rec.Line, "duplicate %s checksum on %s replaces the earlier one", sum.Algorithm, describe(n))
		b.drop(n.props[i].value)
		n.props[i].value = graph.Ref(c.id)
		return
	}
	n.append(rec.Entry.Property, graph.Ref(c.id))
	n.checksums[sum.Algorithm] = len(n.props) - 1
}

// drop removes a replaced anonymous node from the arena
func (b *Builder) drop(v graph.Value) {
	ref, ok := v.(graph.Ref)
	if !ok {
		return
	}
	for i, n := range b.nodes {
		if n.id == string(ref) {
			b.nodes = append(b.nodes[:i], b.nodes[i+1:]...)
			return
		}
	}
}

func (b *Builder) openLicense(rec tagvalue.Record) error {
	if err := tagvalue.ParseLicenseID(rec.Value); err != nil {
		return b.fatal(tagvalue.Syntax, rec, "%v", err)
	}
	if n, dup := b.licenseRefs[rec.Value]; dup {
		b.warnf(rec.Line, "%s declared again (first at line %d); merging", rec.Value, n.line)
		b.opened(n, rec)
		return nil
	}
	n := b.newNode(spdx.KindLicenseRef, spdx.TypeExtractedLicense, rec.Value, rec.Line)
	n.set(spdx.PropLicenseID, graph.String(rec.Value))
	b.licenseRefs[rec.Value] = n
	b.opened(n, rec)
	return nil
}

func (b *Builder) openExternalDocumentRef(rec tagvalue.Record) error {
	ref, err := tagvalue.ParseExternalDocumentRef(rec.Value)
	if err != nil {
		return b.fatal(tagvalue.Syntax, rec, "%v", err)
	}
	if uri, dup := b.docRefs[ref.Name]; dup {
		if uri != ref.URI {
			return b.fatal(tagvalue.Reference, rec, "%s redeclared with namespace %s (was %s)", ref.Name, ref.URI, uri)
		}
		b.warnf(rec.Line, "%s declared twice", ref.Name)
		return nil
	}
	b.docRefs[ref.Name] = ref.URI

	n := b.newNode(spdx.KindExternalDocumentRef, spdx.TypeExternalDocumentRef, ref.Name, rec.Line)
	n.set(spdx.PropExternalDocumentID, graph.String(ref.Name))
	n.set(spdx.PropSpdxDocument, graph.String(ref.URI))
	sum := b.valueNode(spdx.TypeChecksum, rec.Line)
	sum.set(spdx.PropAlgorithm, graph.String(ref.Checksum.Algorithm))
	sum.set(spdx.PropChecksumValue, graph.String(ref.Checksum.Value))
	n.set(spdx.PropChecksum, graph.Ref(sum.id))

	b.doc.append(rec.Entry.Property, graph.Ref(n.id))
	b.opened(n, rec)
	return nil
}

func (b *Builder) openExternalRef(rec tagvalue.Record) error {
	pkg := b.scope.Current(spdx.KindPackage)
	if pkg == nil {
		return b.fatal(tagvalue.Scope, rec, "ExternalRef outside of any package")
	}
	ref, err := tagvalue.ParseExternalRef(rec.Value)
	if err != nil {
		return b.fatal(tagvalue.Syntax, rec, "%v", err)
	}
	if ref.Category != "OTHER" && !spdx.ListedReferenceTypes.Has(ref.Type) {
		b.warnf(rec.Line, "external reference type %s is not a listed type for category %s", ref.Type, ref.Category)
	}

	n := b.newNode(spdx.KindExternalRef, spdx.TypeExternalRef, b.newID(), rec.Line)
	n.set(spdx.PropReferenceCategory, graph.String(ref.Category))
	n.set(spdx.PropReferenceType, graph.String(ref.Type))
	n.set(spdx.PropReferenceLocator, graph.String(ref.Locator))
	if ref.Comment != "" {
		n.set(spdx.PropComment, graph.String(ref.Comment))
	}
	pkg.append(rec.Entry.Property, graph.Ref(n.id))
	b.opened(n, rec)
	return nil
}

func (b *Builder) openRelationship(rec tagvalue.Record) error {
	rel, err := tagvalue.ParseRelationship(rec.Value)
	if err != nil {
		return b.fatal(tagvalue.Syntax, rec, "%v", err)
	}
	for _, end := range []common.DocElementID{rel.Source, rel.Target} {
		if end.DocumentRefID != "" {
			b.obligations = append(b.obligations, obligation{kind: needDocumentRef, id: end.DocumentRefID, line: rec.Line})
		}
	}

	e := &edge{source: elementID(rel.Source), typ: rel.Type, target: targetValue(rel.Target), line: rec.Line}
	key := e.key()
	if prev, dup := b.edgeKeys[key]; dup {
		b.warnf(rec.Line, "duplicate relationship %s (first at line %d)", rec.Value, prev.line)
		b.opened(prev.rel, rec)
		return nil
	}

	e.rel = b.newNode(spdx.KindRelationship, spdx.TypeRelationship, b.newID(), rec.Line)
	e.rel.set(spdx.PropSpdxElementID, graph.Ref(e.source))
	e.rel.set(spdx.PropRelationshipType, graph.String(e.typ))
	e.rel.set(spdx.PropRelatedElement, e.target)
	b.edges = append(b.edges, e)
	b.edgeKeys[key] = e
	b.opened(e.rel, rec)
	return nil
}

func targetValue(id common.DocElementID) graph.Value {
	if id.SpecialID != "" {
		return graph.String(id.SpecialID)
	}
	return graph.Ref(elementID(id))
}

// elementID renders a bare id, or DocumentRef-x:id for another document
func elementID(id common.DocElementID) string {
	if id.DocumentRefID != "" {
		return id.DocumentRefID + ":" + string(id.ElementRefID)
	}
	return string(id.ElementRefID)
}

func (e *edge) key() string {
	return e.source + " " + e.typ + " " + e.target.String()
}
