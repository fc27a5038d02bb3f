package builder

import (
	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/spdx"
	"github.com/nainya/spdxtv/pkg/tagvalue"
)

// annotationFields are the properties every annotation block must carry
var annotationFields = []string{
	spdx.PropAnnotator,
	spdx.PropAnnotationDate,
	spdx.PropComment,
	spdx.PropAnnotationType,
	spdx.PropAnnotationTarget,
}

// annotate adds one field to the open annotation block. A field seen twice
// starts a new block.
func (b *Builder) annotate(rec tagvalue.Record) error {
	prop := rec.Entry.Property
	if b.annotation != nil && b.annotation.seen[prop] {
		if err := b.closeAnnotation(); err != nil {
			return err
		}
	}
	if b.annotation == nil {
		n := b.newNode(spdx.KindAnnotation, spdx.TypeAnnotation, b.newID(), rec.Line)
		b.annotation = &annotationBlock{n: n, seen: make(map[string]bool, len(annotationFields))}
		b.opened(n, rec)
	}
	blk := b.annotation
	blk.seen[prop] = true

	if prop != spdx.PropAnnotationTarget {
		return b.setProperty(blk.n, rec)
	}

	if rec.Value == "" {
		return b.fatal(tagvalue.Syntax, rec, "SPDXREF requires a value")
	}
	ref, err := tagvalue.ParseElementRef(rec.Value, false)
	if err != nil {
		return b.fatal(tagvalue.Syntax, rec, "%v", err)
	}
	if ref.DocumentRefID != "" {
		b.obligations = append(b.obligations, obligation{kind: needDocumentRef, id: ref.DocumentRefID, line: rec.Line})
	}
	blk.target = rec.Value
	blk.n.set(spdx.PropSpdxElementID, graph.Ref(rec.Value))
	return nil
}

// closeAnnotation checks the open block is complete and queues it
func (b *Builder) closeAnnotation() error {
	blk := b.annotation
	if blk == nil {
		return nil
	}
	b.annotation = nil
	b.scope.Close(spdx.KindAnnotation)

	for _, f := range annotationFields {
		var ok bool
		if f == spdx.PropAnnotationTarget {
			ok = blk.target != ""
		} else {
			ok = blk.n.has(f)
		}
		if !ok {
			return tagvalue.Errorf(tagvalue.Scope, blk.n.line, "annotation is missing %s", f)
		}
	}
	b.annotations = append(b.annotations, blk)
	return nil
}
