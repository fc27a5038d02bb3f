package builder

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/mapping"
	"github.com/nainya/spdxtv/pkg/spdx"
	"github.com/nainya/spdxtv/pkg/tagvalue"
)

const exampleNS = "http://spdx.org/spdxdocs/spdx-example-444504E0-4F89-41D3-9A0C-0305E82C3301"

const header = "SPDXVersion: SPDX-2.3\n" +
	"DataLicense: CC0-1.0\n" +
	"DocumentNamespace: http://example.com/ns\n"

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("anon-%d", n)
	}
}

// build runs in through the scanner and a fresh builder
func build(t *testing.T, store graph.Store, in string) (Result, error) {
	t.Helper()
	b := New(store, WithIDGenerator(sequentialIDs()))
	s := tagvalue.NewScanner(strings.NewReader(in), mapping.Default())
	for rec, err := range s.Records() {
		if err != nil {
			return Result{}, err
		}
		if err := b.Apply(rec); err != nil {
			return Result{}, err
		}
	}
	return b.Complete()
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func requireKind(t *testing.T, err error, kind tagvalue.ErrorKind) *tagvalue.Error {
	t.Helper()
	var perr *tagvalue.Error
	require.True(t, errors.As(err, &perr), "expected *tagvalue.Error, got %v", err)
	assert.Equal(t, kind, perr.Kind, perr.Error())
	return perr
}

func str(t *testing.T, store graph.Reader, ns, id, prop string) string {
	t.Helper()
	s, ok := graph.AsString(store.Get(ns, id, prop))
	require.True(t, ok, "%s.%s is not a string", id, prop)
	return s
}

// relationships returns "TYPE target" for every relationship of id
func relationships(t *testing.T, store graph.Reader, ns, id string) []string {
	t.Helper()
	var out []string
	for _, v := range graph.AsList(store.Get(ns, id, spdx.PropRelationships)) {
		rel := string(v.(graph.Ref))
		typ := str(t, store, ns, rel, spdx.PropRelationshipType)
		target, _ := store.Get(ns, rel, spdx.PropRelatedElement)
		out = append(out, typ+" "+strings.TrimPrefix(target.String(), "#"))
	}
	return out
}

func TestBuildExampleDocument(t *testing.T) {
	store := graph.NewMemory()
	res, err := build(t, store, readFixture(t, "glibc.spdx"))
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, exampleNS, res.Namespace)
	assert.Equal(t, "SPDXRef-DOCUMENT", res.DocumentID)
	assert.Equal(t, 1, res.Counts[spdx.TypePackage])
	assert.Equal(t, 1, res.Counts[spdx.TypeFile])
	assert.Equal(t, 1, res.Counts[spdx.TypeSnippet])
	assert.Equal(t, 2, res.Counts[spdx.TypeExtractedLicense])
	assert.Equal(t, 4, res.Counts[spdx.TypeRelationship])

	doc := res.DocumentID
	assert.Equal(t, "SPDX-Tools-v2.1", str(t, store, exampleNS, doc, spdx.PropName))
	assert.Equal(t, "Test document\ncomment", str(t, store, exampleNS, doc, spdx.PropComment))
	assert.Len(t, graph.AsList(store.Get(exampleNS, doc, spdx.PropExternalDocumentRefs)), 2)
	assert.Len(t, graph.AsList(store.Get(exampleNS, doc, spdx.PropAnnotations)), 1)

	info, ok := store.Get(exampleNS, doc, spdx.PropCreationInfo)
	require.True(t, ok)
	infoID := string(info.(graph.Ref))
	assert.Equal(t, graph.List{
		graph.String("Tool: LicenseFind-1.0"),
		graph.String("Organization: ExampleCodeInspect ()"),
		graph.String("Person: Jane Doe ()"),
	}, graph.AsList(store.Get(exampleNS, infoID, spdx.PropCreators)))
	assert.Equal(t, "2010-01-29T18:30:22Z", str(t, store, exampleNS, infoID, spdx.PropCreated))

	pkg := "SPDXRef-Package"
	assert.Equal(t, spdx.TypePackage, mustType(t, store, pkg))
	assert.Equal(t, "LicenseRef-1 OR LGPL-2.0-only", str(t, store, exampleNS, pkg, spdx.PropLicenseConcluded))
	assert.Equal(t, "LicenseRef-2 AND LGPL-2.0-only", str(t, store, exampleNS, pkg, spdx.PropLicenseDeclared))
	assert.Len(t, graph.AsList(store.Get(exampleNS, pkg, spdx.PropLicenseInfoFromFiles)), 3)
	assert.Len(t, graph.AsList(store.Get(exampleNS, pkg, spdx.PropChecksums)), 3)
	_, hasFileName := store.Get(exampleNS, pkg, spdx.PropPackageFileName)
	assert.False(t, hasFileName, "empty PackageFileName leaves the property unset")

	code, ok := store.Get(exampleNS, pkg, spdx.PropVerificationCode)
	require.True(t, ok)
	codeID := string(code.(graph.Ref))
	assert.Equal(t, "d6a770ba38583ed4bb4525bd96e50461655d2758", str(t, store, exampleNS, codeID, spdx.PropVerificationValue))
	assert.Equal(t, graph.List{graph.String("./package.spdx")},
		graph.AsList(store.Get(exampleNS, codeID, spdx.PropVerificationExclude)))

	refs := graph.AsList(store.Get(exampleNS, pkg, spdx.PropExternalRefs))
	require.Len(t, refs, 2)
	security := string(refs[0].(graph.Ref))
	assert.Equal(t, "cpe23Type", str(t, store, exampleNS, security, spdx.PropReferenceType))
	assert.Equal(t, "external ref comment for security", str(t, store, exampleNS, security, spdx.PropComment))

	file := "SPDXRef-CommonsLangSrc"
	assert.Equal(t, "./lib-source/commons-lang3-3.1-sources.jar", str(t, store, exampleNS, file, spdx.PropName))
	assert.Equal(t, graph.List{graph.String("ARCHIVE")}, graph.AsList(store.Get(exampleNS, file, spdx.PropFileTypes)))

	snip := "SPDXRef-Snippet"
	from, _ := store.Get(exampleNS, snip, spdx.PropSnippetFromFile)
	assert.Equal(t, graph.Ref(file), from)
	byteRange, _ := store.Get(exampleNS, snip, spdx.PropByteRange)
	rangeID := string(byteRange.(graph.Ref))
	start, _ := store.Get(exampleNS, rangeID, spdx.PropStartPointer)
	end, _ := store.Get(exampleNS, rangeID, spdx.PropEndPointer)
	assert.Equal(t, graph.Int(310), start)
	assert.Equal(t, graph.Int(420), end)

	assert.Equal(t, []string{"LicenseRef-1", "LicenseRef-2"}, store.Elements(exampleNS, spdx.TypeExtractedLicense))
	assert.Contains(t, str(t, store, exampleNS, "LicenseRef-1", spdx.PropExtractedText), "Hewlett-Packard")

	assert.Equal(t, []string{
		"COPY_OF DocumentRef-spdx-tool-1.2:SPDXRef-ToolsElement",
		"CONTAINS SPDXRef-Package",
		"DESCRIBES SPDXRef-Package",
	}, relationships(t, store, exampleNS, doc))
}

func mustType(t *testing.T, store graph.Reader, id string) string {
	t.Helper()
	typ, ok := store.TypeOf(exampleNS, id)
	require.True(t, ok, "%s does not exist", id)
	return typ
}

func TestPackageFilesOnlyThroughContains(t *testing.T) {
	store := graph.NewMemory()
	_, err := build(t, store, readFixture(t, "glibc.spdx"))
	require.NoError(t, err)

	for _, p := range store.Properties(exampleNS, "SPDXRef-Package") {
		assert.NotEqual(t, "files", p)
		assert.NotEqual(t, "hasFiles", p)
	}
	assert.Equal(t, []string{"CONTAINS SPDXRef-CommonsLangSrc"}, relationships(t, store, exampleNS, "SPDXRef-Package"))
}

func TestExplicitContainsIsNotDuplicated(t *testing.T) {
	store := graph.NewMemory()
	in := header +
		"PackageName: p\nSPDXID: SPDXRef-P\n" +
		"FileName: ./a.c\nSPDXID: SPDXRef-A\n" +
		"Relationship: SPDXRef-P CONTAINS SPDXRef-A\n"
	res, err := build(t, store, in)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counts[spdx.TypeRelationship])
	assert.Equal(t, []string{"CONTAINS SPDXRef-A"}, relationships(t, store, "http://example.com/ns", "SPDXRef-P"))
}

func TestBuildWithoutFiles(t *testing.T) {
	store := graph.NewMemory()
	res, err := build(t, store, readFixture(t, "glibc-nofiles.spdx"))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	v, ok := store.Get(exampleNS, "SPDXRef-Package", spdx.PropFilesAnalyzed)
	require.True(t, ok)
	assert.Equal(t, graph.Bool(false), v)
	assert.Empty(t, store.Elements(exampleNS, spdx.TypeFile))
}

func TestFilesAnalyzedFalseRejectsFiles(t *testing.T) {
	in := header +
		"PackageName: p\nSPDXID: SPDXRef-P\nFilesAnalyzed: false\n" +
		"FileName: ./a.c\nSPDXID: SPDXRef-A\n"
	store := graph.NewMemory()
	_, err := build(t, store, in)
	perr := requireKind(t, err, tagvalue.Scope)
	assert.Equal(t, 7, perr.Line)
	assert.Empty(t, store.Namespaces())

	in = header +
		"PackageName: p\nSPDXID: SPDXRef-P\nFilesAnalyzed: false\n" +
		"PackageName: q\nSPDXID: SPDXRef-Q\n" +
		"FileName: ./a.c\nSPDXID: SPDXRef-A\n" +
		"Relationship: SPDXRef-P CONTAINS SPDXRef-A\n"
	_, err = build(t, graph.NewMemory(), in)
	requireKind(t, err, tagvalue.Scope)
}

func TestFileRecordAfterUnanalyzedPackage(t *testing.T) {
	in := header +
		"PackageName: a\nSPDXID: SPDXRef-A\n" +
		"FileName: ./a.c\nSPDXID: SPDXRef-AC\n" +
		"PackageName: b\nSPDXID: SPDXRef-B\nFilesAnalyzed: false\n" +
		"FileComment: <text>which file?</text>\n"
	store := graph.NewMemory()
	_, err := build(t, store, in)
	perr := requireKind(t, err, tagvalue.Scope)
	assert.Equal(t, 11, perr.Line)
	assert.Empty(t, store.Namespaces())
}

func TestChecksumsOnPackageAndFile(t *testing.T) {
	in := header +
		"PackageName: p\nSPDXID: SPDXRef-P\n" +
		"PackageVerificationCode: d6a770ba38583ed4bb4525bd96e50461655d2758 (excludes: ./p.spdx)\n" +
		"PackageChecksum: SHA1: 85ed0817af83a24ad8da68c2b5094de69833983c\n" +
		"PackageChecksum: MD5: 624c1abb3664f4b35547e7c73864ad24\n" +
		"FileName: ./a.c\nSPDXID: SPDXRef-A\n" +
		"FileChecksum: SHA1: c2b4e1c67a2d28fced849ee1bb76e7391b93f125\n"
	store := graph.NewMemory()
	res, err := build(t, store, in)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Counts[spdx.TypeChecksum])
	assert.Equal(t, 1, res.Counts[spdx.TypeVerificationCode])
	assert.Equal(t, 1, res.Counts[spdx.TypePackage])
	assert.Equal(t, 1, res.Counts[spdx.TypeFile])

	ns := "http://example.com/ns"
	sums := graph.AsList(store.Get(ns, "SPDXRef-A", spdx.PropChecksums))
	require.Len(t, sums, 1)
	assert.Equal(t, "c2b4e1c67a2d28fced849ee1bb76e7391b93f125",
		str(t, store, ns, string(sums[0].(graph.Ref)), spdx.PropChecksumValue))
	assert.Len(t, graph.AsList(store.Get(ns, "SPDXRef-P", spdx.PropChecksums)), 2)
}

func TestMinimalDocument(t *testing.T) {
	store := graph.NewMemory()
	res, err := build(t, store, header+"PackageName: p\nSPDXID: SPDXRef-P\nFilesAnalyzed: false\n")
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	ns := "http://example.com/ns"
	assert.Equal(t, []string{spdx.DefaultDocumentID}, store.Elements(ns, spdx.TypeDocument))
	assert.Equal(t, []string{"SPDXRef-P"}, store.Elements(ns, spdx.TypePackage))
	v, _ := store.Get(ns, "SPDXRef-P", spdx.PropFilesAnalyzed)
	assert.Equal(t, graph.Bool(false), v)
}

func TestForwardLicenseReference(t *testing.T) {
	in := header +
		"PackageName: p\nSPDXID: SPDXRef-P\n" +
		"PackageLicenseConcluded: LicenseRef-X\n" +
		"LicenseID: LicenseRef-X\nExtractedText: <text>x</text>\n"
	store := graph.NewMemory()
	res, err := build(t, store, in)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "LicenseRef-X", str(t, store, "http://example.com/ns", "SPDXRef-P", spdx.PropLicenseConcluded))

	_, err = build(t, graph.NewMemory(), header+"PackageName: p\nSPDXID: SPDXRef-P\nPackageLicenseConcluded: LicenseRef-X\n")
	perr := requireKind(t, err, tagvalue.Reference)
	assert.Equal(t, 6, perr.Line)
}

func TestUnresolvedTargetFailsAtComplete(t *testing.T) {
	in := header +
		"PackageName: p\nSPDXID: SPDXRef-P\n" +
		"Relationship: SPDXRef-P DEPENDS_ON SPDXRef-Missing\n"
	store := graph.NewMemory()
	b := New(store)
	s := tagvalue.NewScanner(strings.NewReader(in), mapping.Default())
	for rec, err := range s.Records() {
		require.NoError(t, err)
		require.NoError(t, b.Apply(rec))
	}
	_, err := b.Complete()
	perr := requireKind(t, err, tagvalue.Reference)
	assert.Equal(t, 6, perr.Line)
	assert.Zero(t, store.Len(), "nothing is written on failure")
}

func TestSpecialRelationshipTargets(t *testing.T) {
	in := header +
		"PackageName: p\nSPDXID: SPDXRef-P\n" +
		"Relationship: SPDXRef-P DEPENDS_ON NOASSERTION\n" +
		"Relationship: SPDXRef-P DEPENDS_ON NONE\n" +
		"Relationship: SPDXRef-P DEPENDS_ON NONE\n"
	store := graph.NewMemory()
	res, err := build(t, store, in)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Msg, "duplicate relationship")
	assert.Equal(t, []string{"DEPENDS_ON NOASSERTION", "DEPENDS_ON NONE"},
		relationships(t, store, "http://example.com/ns", "SPDXRef-P"))
}

func TestExternalTargetNeedsDocumentRef(t *testing.T) {
	in := header + "Relationship: SPDXRef-DOCUMENT COPY_OF DocumentRef-x:SPDXRef-Y\n"
	_, err := build(t, graph.NewMemory(), in)
	requireKind(t, err, tagvalue.Reference)
}

func TestExternalTargetCheckedAgainstStore(t *testing.T) {
	store := graph.NewMemory()
	require.NoError(t, store.Create("http://example.com/other", "SPDXRef-Z", spdx.TypePackage))

	in := header +
		"ExternalDocumentRef: DocumentRef-other http://example.com/other SHA1: d6a770ba38583ed4bb4525bd96e50461655d2759\n" +
		"Relationship: SPDXRef-DOCUMENT COPY_OF DocumentRef-other:SPDXRef-Y\n"
	res, err := build(t, store, in)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Msg, "SPDXRef-Y")
}

func TestExternalRelationshipSource(t *testing.T) {
	in := header +
		"ExternalDocumentRef: DocumentRef-other http://example.com/other SHA1: d6a770ba38583ed4bb4525bd96e50461655d2759\n" +
		"PackageName: p\nSPDXID: SPDXRef-P\nFilesAnalyzed: false\n" +
		"Relationship: DocumentRef-other:SPDXRef-Y DEPENDS_ON SPDXRef-P\n"
	store := graph.NewMemory()
	res, err := build(t, store, in)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	ns := "http://example.com/ns"
	rels := graph.AsList(store.Get(ns, spdx.DefaultDocumentID, spdx.PropRelationships))
	require.Len(t, rels, 1)
	src, _ := store.Get(ns, string(rels[0].(graph.Ref)), spdx.PropSpdxElementID)
	assert.Equal(t, graph.Ref("DocumentRef-other:SPDXRef-Y"), src)

	doc, err := spdx.LoadDocument(store, ns)
	require.NoError(t, err)
	require.Len(t, doc.Relationships, 1)
	assert.Equal(t, "DocumentRef-other:SPDXRef-Y", doc.Relationships[0].Source)
	assert.Equal(t, "SPDXRef-P", doc.Relationships[0].Target)

	in = header +
		"PackageName: p\nSPDXID: SPDXRef-P\n" +
		"Relationship: DocumentRef-x:SPDXRef-Y DEPENDS_ON SPDXRef-P\n"
	_, err = build(t, graph.NewMemory(), in)
	perr := requireKind(t, err, tagvalue.Reference)
	assert.Equal(t, 6, perr.Line)
}

func TestAnnotationBlocks(t *testing.T) {
	block := "Annotator: Person: A\nAnnotationDate: 2010-01-29T18:30:22Z\n" +
		"AnnotationComment: c\nAnnotationType: REVIEW\nSPDXREF: SPDXRef-P\n"
	in := header + "PackageName: p\nSPDXID: SPDXRef-P\n" + block + block
	store := graph.NewMemory()
	res, err := build(t, store, in)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Counts[spdx.TypeAnnotation])
	assert.Len(t, graph.AsList(store.Get("http://example.com/ns", "SPDXRef-P", spdx.PropAnnotations)), 2)

	in = header + "PackageName: p\nSPDXID: SPDXRef-P\n" +
		"Annotator: Person: A\nAnnotationType: OTHER\nSPDXREF: SPDXRef-P\n" +
		"FileName: ./a.c\n"
	_, err = build(t, graph.NewMemory(), in)
	perr := requireKind(t, err, tagvalue.Scope)
	assert.Contains(t, perr.Msg, "annotation is missing")
	assert.Equal(t, 6, perr.Line)
}

func TestReviewBecomesAnnotation(t *testing.T) {
	in := header + "Reviewer: Person: R\nReviewDate: 2011-01-29T18:30:22Z\nReviewComment: ok\n"
	store := graph.NewMemory()
	res, err := build(t, store, in)
	require.NoError(t, err)

	ns := "http://example.com/ns"
	anns := graph.AsList(store.Get(ns, res.DocumentID, spdx.PropAnnotations))
	require.Len(t, anns, 1)
	id := string(anns[0].(graph.Ref))
	assert.Equal(t, "REVIEW", str(t, store, ns, id, spdx.PropAnnotationType))
	assert.Equal(t, "Person: R", str(t, store, ns, id, spdx.PropAnnotator))

	_, err = build(t, graph.NewMemory(), header+"Reviewer: Person: R\n")
	requireKind(t, err, tagvalue.Scope)
}

func TestBuilderWarnings(t *testing.T) {
	in := header +
		"PackageName: p\nSPDXID: SPDXRef-P\n" +
		"ReleaseDate: yesterday\n" +
		"PackageChecksum: SHA1: 85ed0817af83a24ad8da68c2b5094de69833983c\n" +
		"PackageChecksum: SHA1: 85ed0817af83a24ad8da68c2b5094de69833983d\n" +
		"PackageLicenseDeclared: MIT OR Made-Up-1.0\n" +
		"ExternalRef: SECURITY made-up-type loc\n" +
		"LicenseID: LicenseRef-A\n"
	store := graph.NewMemory()
	res, err := build(t, store, in)
	require.NoError(t, err)

	var lines []int
	for _, w := range res.Warnings {
		lines = append(lines, w.Line)
	}
	assert.Equal(t, []int{6, 8, 9, 10, 11}, lines)
	assert.Contains(t, res.Warnings[2].Msg, "Made-Up-1.0")

	ns := "http://example.com/ns"
	sums := graph.AsList(store.Get(ns, "SPDXRef-P", spdx.PropChecksums))
	require.Len(t, sums, 1)
	assert.Equal(t, "85ed0817af83a24ad8da68c2b5094de69833983d", str(t, store, ns, string(sums[0].(graph.Ref)), spdx.PropChecksumValue))
	assert.Equal(t, "yesterday", str(t, store, ns, "SPDXRef-P", spdx.PropReleaseDate))
}

func TestBuilderFailures(t *testing.T) {
	cases := []struct {
		name string
		in   string
		kind tagvalue.ErrorKind
		line int
	}{
		{"property outside scope", header + "FileComment: x\n", tagvalue.Scope, 4},
		{"duplicate id", header + "PackageName: a\nSPDXID: SPDXRef-A\nPackageName: b\nSPDXID: SPDXRef-A\n", tagvalue.Syntax, 7},
		{"id already set", header + "PackageName: a\nSPDXID: SPDXRef-A\nSPDXID: SPDXRef-B\n", tagvalue.Syntax, 6},
		{"empty opening value", header + "PackageName: \n", tagvalue.Syntax, 4},
		{"empty composite value", header + "PackageName: a\nPackageChecksum: \n", tagvalue.Syntax, 5},
		{"package without id", header + "PackageName: a\n", tagvalue.Completeness, 4},
		{"no namespace", "SPDXVersion: SPDX-2.3\n", tagvalue.Completeness, 0},
		{"second namespace", header + "DocumentNamespace: http://example.com/other\n", tagvalue.Syntax, 4},
		{"unknown file type", header + "FileName: a\nSPDXID: SPDXRef-A\nFileType: WEIRD\n", tagvalue.Syntax, 6},
		{"bad license", header + "PackageName: a\nPackageLicenseConcluded: MIT AND\n", tagvalue.Syntax, 5},
		{"external ref without package", header + "ExternalRef: OTHER t l\n", tagvalue.Scope, 4},
		{"snippet file missing", header + "SnippetSPDXID: SPDXRef-S\nSnippetFromFileSPDXID: SPDXRef-F\n", tagvalue.Reference, 5},
		{"external source", header + "Relationship: DocumentRef-x:SPDXRef-A CONTAINS SPDXRef-DOCUMENT\n", tagvalue.Reference, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := build(t, graph.NewMemory(), tc.in)
			perr := requireKind(t, err, tc.kind)
			assert.Equal(t, tc.line, perr.Line)
		})
	}
}

func TestNamespaceAlreadyStored(t *testing.T) {
	store := graph.NewMemory()
	_, err := build(t, store, header+"PackageName: p\nSPDXID: SPDXRef-P\n")
	require.NoError(t, err)

	_, err = build(t, store, header)
	requireKind(t, err, tagvalue.Reference)
}

func TestBuilderIsSpentAfterComplete(t *testing.T) {
	b := New(graph.NewMemory())
	rec := tagvalue.Record{Tag: "DocumentNamespace", Value: "http://example.com/ns", Line: 1}
	rec.Entry, _ = mapping.Default().Lookup("DocumentNamespace")
	require.NoError(t, b.Apply(rec))
	_, err := b.Complete()
	require.NoError(t, err)

	assert.ErrorIs(t, b.Apply(rec), ErrSpent)
	_, err = b.Complete()
	assert.ErrorIs(t, err, ErrSpent)
}

func TestFatalErrorIsSticky(t *testing.T) {
	b := New(graph.NewMemory())
	rec := tagvalue.Record{Tag: "FileComment", Value: "x", Line: 3}
	rec.Entry, _ = mapping.Default().Lookup("FileComment")
	err := b.Apply(rec)
	require.Error(t, err)

	ok := tagvalue.Record{Tag: "DocumentNamespace", Value: "http://example.com/ns", Line: 4}
	ok.Entry, _ = mapping.Default().Lookup("DocumentNamespace")
	assert.Equal(t, err, b.Apply(ok))
	_, cerr := b.Complete()
	assert.Equal(t, err, cerr)
}

func TestStrictWarningsWriteNothing(t *testing.T) {
	store := graph.NewMemory()
	b := New(store, WithStrictWarnings())
	s := tagvalue.NewScanner(strings.NewReader(header+"LicenseID: LicenseRef-A\n"), mapping.Default())
	for rec, err := range s.Records() {
		require.NoError(t, err)
		require.NoError(t, b.Apply(rec))
	}
	res, err := b.Complete()
	assert.ErrorIs(t, err, ErrWarnings)
	assert.Len(t, res.Warnings, 1)
	assert.Zero(t, store.Len())
}
