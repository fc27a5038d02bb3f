package spdx_test

import (
	"os"
	"testing"

	"github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nainya/spdxtv/pkg/builder"
	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/mapping"
	"github.com/nainya/spdxtv/pkg/spdx"
	"github.com/nainya/spdxtv/pkg/tagvalue"
)

const exampleNS = "http://spdx.org/spdxdocs/spdx-example-444504E0-4F89-41D3-9A0C-0305E82C3301"

func loadFixture(t *testing.T) graph.Reader {
	t.Helper()
	f, err := os.Open("../builder/testdata/glibc.spdx")
	require.NoError(t, err)
	defer f.Close()

	store := graph.NewMemory()
	b := builder.New(store)
	for rec, err := range tagvalue.NewScanner(f, mapping.Default()).Records() {
		require.NoError(t, err)
		require.NoError(t, b.Apply(rec))
	}
	_, err = b.Complete()
	require.NoError(t, err)
	return store
}

func TestLoadDocument(t *testing.T) {
	doc, err := spdx.LoadDocument(loadFixture(t), exampleNS)
	require.NoError(t, err)

	assert.Equal(t, "SPDXRef-DOCUMENT", doc.ID)
	assert.Equal(t, "SPDX-2.3", doc.SpecVersion)
	assert.Equal(t, "2010-01-29T18:30:22Z", doc.CreationInfo.Created)
	assert.Len(t, doc.CreationInfo.Creators, 3)
	require.Len(t, doc.ExternalDocumentRefs, 2)
	assert.Equal(t, common.Checksum{Algorithm: common.SHA1, Value: "aaa770ba38583ed4bb4525bd96e50461655d2759"},
		doc.ExternalDocumentRefs[1].Checksum)

	require.Len(t, doc.Packages, 1)
	pkg := doc.Packages[0]
	assert.Equal(t, "glibc", pkg.Name)
	assert.True(t, pkg.FilesAnalyzed)
	assert.Equal(t, []string{"SPDXRef-CommonsLangSrc"}, pkg.Files)
	require.NotNil(t, pkg.VerificationCode)
	assert.Equal(t, []string{"./package.spdx"}, pkg.VerificationCode.ExcludedFiles)
	assert.Len(t, pkg.Checksums, 3)
	require.Len(t, pkg.ExternalRefs, 2)
	assert.Equal(t, "OTHER", pkg.ExternalRefs[1].Category)

	require.Len(t, doc.Snippets, 1)
	assert.Equal(t, &spdx.Range{Start: 5, End: 23}, doc.Snippets[0].LineRange)
	assert.Equal(t, "SPDXRef-CommonsLangSrc", doc.Snippets[0].FromFile)

	require.Len(t, doc.Annotations, 1)
	assert.Equal(t, common.Annotator{AnnotatorType: "Person", Annotator: "Jane Doe ()"}, doc.Annotations[0].Annotator)
	assert.Equal(t, "SPDXRef-DOCUMENT", doc.Annotations[0].Target)

	assert.Contains(t, doc.Relationships, spdx.Relationship{
		Source: "SPDXRef-DOCUMENT",
		Type:   "COPY_OF",
		Target: "DocumentRef-spdx-tool-1.2:SPDXRef-ToolsElement",
	})
	assert.Len(t, doc.Relationships, 4)
	assert.Len(t, doc.Licenses, 2)
}

func TestLoadDocumentMissing(t *testing.T) {
	_, err := spdx.LoadDocument(graph.NewMemory(), "http://nowhere")
	assert.ErrorIs(t, err, spdx.ErrNoDocument)
}

func TestLoadDocumentTypeMismatch(t *testing.T) {
	store := graph.NewMemory()
	require.NoError(t, store.Create("ns", "SPDXRef-DOCUMENT", spdx.TypeDocument))
	require.NoError(t, store.Set("ns", "SPDXRef-DOCUMENT", spdx.PropName, graph.Int(3)))

	_, err := spdx.LoadDocument(store, "ns")
	assert.Error(t, err)
}
