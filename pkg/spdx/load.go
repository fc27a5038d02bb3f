// ABOUTME: Typed read-back of a built document from the graph store
// ABOUTME: Walks element properties into plain structs for JSON output and callers

package spdx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/nainya/spdxtv/pkg/graph"
)

// ErrNoDocument indicates a namespace holding no SpdxDocument element
var ErrNoDocument = errors.New("spdx: no document in namespace")

// Document is the typed view of one namespace.
type Document struct {
	Namespace            string                `json:"namespace"`
	ID                   string                `json:"spdxId"`
	Name                 string                `json:"name,omitempty"`
	SpecVersion          string                `json:"specVersion,omitempty"`
	DataLicense          string                `json:"dataLicense,omitempty"`
	Comment              string                `json:"comment,omitempty"`
	CreationInfo         CreationInfo          `json:"creationInfo"`
	ExternalDocumentRefs []ExternalDocumentRef `json:"externalDocumentRefs,omitempty"`
	Packages             []Package             `json:"packages,omitempty"`
	Files                []File                `json:"files,omitempty"`
	Snippets             []Snippet             `json:"snippets,omitempty"`
	Licenses             []ExtractedLicense    `json:"hasExtractedLicensingInfos,omitempty"`
	Relationships        []Relationship        `json:"relationships,omitempty"`
	Annotations          []Annotation          `json:"annotations,omitempty"`
}

type CreationInfo struct {
	Creators           []string `json:"creators,omitempty"`
	Created            string   `json:"created,omitempty"`
	Comment            string   `json:"comment,omitempty"`
	LicenseListVersion string   `json:"licenseListVersion,omitempty"`
}

type ExternalDocumentRef struct {
	ID       string          `json:"externalDocumentId"`
	URI      string          `json:"spdxDocument"`
	Checksum common.Checksum `json:"checksum"`
}

type ExternalRef struct {
	Category string `json:"referenceCategory"`
	Type     string `json:"referenceType"`
	Locator  string `json:"referenceLocator"`
	Comment  string `json:"comment,omitempty"`
}

// Package is a package element. Files lists the ids the package CONTAINS.
type Package struct {
	ID                   string                          `json:"spdxId"`
	Name                 string                          `json:"name"`
	Version              string                          `json:"versionInfo,omitempty"`
	FileName             string                          `json:"packageFileName,omitempty"`
	Supplier             string                          `json:"supplier,omitempty"`
	Originator           string                          `json:"originator,omitempty"`
	DownloadLocation     string                          `json:"downloadLocation,omitempty"`
	FilesAnalyzed        bool                            `json:"filesAnalyzed"`
	VerificationCode     *common.PackageVerificationCode `json:"packageVerificationCode,omitempty"`
	Checksums            []common.Checksum               `json:"checksums,omitempty"`
	HomePage             string                          `json:"homepage,omitempty"`
	SourceInfo           string                          `json:"sourceInfo,omitempty"`
	LicenseConcluded     string                          `json:"licenseConcluded,omitempty"`
	LicenseInfoFromFiles []string                        `json:"licenseInfoFromFiles,omitempty"`
	LicenseDeclared      string                          `json:"licenseDeclared,omitempty"`
	LicenseComments      string                          `json:"licenseComments,omitempty"`
	CopyrightText        string                          `json:"copyrightText,omitempty"`
	Summary              string                          `json:"summary,omitempty"`
	Description          string                          `json:"description,omitempty"`
	Comment              string                          `json:"comment,omitempty"`
	AttributionTexts     []string                        `json:"attributionTexts,omitempty"`
	PrimaryPurpose       string                          `json:"primaryPackagePurpose,omitempty"`
	ReleaseDate          string                          `json:"releaseDate,omitempty"`
	BuiltDate            string                          `json:"builtDate,omitempty"`
	ValidUntilDate       string                          `json:"validUntilDate,omitempty"`
	ExternalRefs         []ExternalRef                   `json:"externalRefs,omitempty"`
	Files                []string                        `json:"hasFiles,omitempty"`
}

type File struct {
	ID                 string            `json:"spdxId"`
	Name               string            `json:"fileName"`
	Types              []string          `json:"fileTypes,omitempty"`
	Checksums          []common.Checksum `json:"checksums,omitempty"`
	LicenseConcluded   string            `json:"licenseConcluded,omitempty"`
	LicenseInfoInFiles []string          `json:"licenseInfoInFiles,omitempty"`
	LicenseComments    string            `json:"licenseComments,omitempty"`
	CopyrightText      string            `json:"copyrightText,omitempty"`
	Comment            string            `json:"comment,omitempty"`
	Notice             string            `json:"noticeText,omitempty"`
	Contributors       []string          `json:"fileContributors,omitempty"`
	AttributionTexts   []string          `json:"attributionTexts,omitempty"`
}

// Range is an inclusive start:end pointer pair
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type Snippet struct {
	ID                    string   `json:"spdxId"`
	Name                  string   `json:"name,omitempty"`
	FromFile              string   `json:"snippetFromFile,omitempty"`
	ByteRange             *Range   `json:"byteRange,omitempty"`
	LineRange             *Range   `json:"lineRange,omitempty"`
	LicenseConcluded      string   `json:"licenseConcluded,omitempty"`
	LicenseInfoInSnippets []string `json:"licenseInfoInSnippets,omitempty"`
	LicenseComments       string   `json:"licenseComments,omitempty"`
	CopyrightText         string   `json:"copyrightText,omitempty"`
	Comment               string   `json:"comment,omitempty"`
	AttributionTexts      []string `json:"attributionTexts,omitempty"`
}

type ExtractedLicense struct {
	ID            string   `json:"licenseId"`
	Name          string   `json:"name,omitempty"`
	ExtractedText string   `json:"extractedText,omitempty"`
	SeeAlso       []string `json:"seeAlsos,omitempty"`
	Comment       string   `json:"comment,omitempty"`
}

// Relationship targets are element ids, DocumentRef-x:id, NONE or NOASSERTION.
type Relationship struct {
	Source  string `json:"spdxElementId"`
	Type    string `json:"relationshipType"`
	Target  string `json:"relatedSpdxElement"`
	Comment string `json:"comment,omitempty"`
}

type Annotation struct {
	Target    string           `json:"spdxElementId"`
	Annotator common.Annotator `json:"annotator"`
	Date      string           `json:"annotationDate"`
	Type      string           `json:"annotationType"`
	Comment   string           `json:"comment"`
}

// LoadDocument reads the document stored under namespace.
func LoadDocument(r graph.Reader, namespace string) (*Document, error) {
	docs := r.Elements(namespace, TypeDocument)
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocument, namespace)
	}
	l := &loader{r: r, ns: namespace}
	id := docs[0]

	doc := &Document{
		Namespace:   namespace,
		ID:          id,
		Name:        l.str(id, PropName),
		SpecVersion: l.str(id, PropSpecVersion),
		DataLicense: l.str(id, PropDataLicense),
		Comment:     l.str(id, PropComment),
	}
	if info := l.ref(id, PropCreationInfo); info != "" {
		doc.CreationInfo = CreationInfo{
			Creators:           l.strs(info, PropCreators),
			Created:            l.str(info, PropCreated),
			Comment:            l.str(info, PropComment),
			LicenseListVersion: l.str(info, PropLicenseListVer),
		}
	}
	for _, ref := range l.refs(id, PropExternalDocumentRefs) {
		doc.ExternalDocumentRefs = append(doc.ExternalDocumentRefs, ExternalDocumentRef{
			ID:       l.str(ref, PropExternalDocumentID),
			URI:      l.str(ref, PropSpdxDocument),
			Checksum: l.checksum(l.ref(ref, PropChecksum)),
		})
	}

	sources := []string{id}
	for _, pid := range r.Elements(namespace, TypePackage) {
		doc.Packages = append(doc.Packages, l.pkg(pid))
		sources = append(sources, pid)
	}
	for _, fid := range r.Elements(namespace, TypeFile) {
		doc.Files = append(doc.Files, l.file(fid))
		sources = append(sources, fid)
	}
	for _, sid := range r.Elements(namespace, TypeSnippet) {
		doc.Snippets = append(doc.Snippets, l.snippet(sid))
		sources = append(sources, sid)
	}
	for _, lid := range r.Elements(namespace, TypeExtractedLicense) {
		doc.Licenses = append(doc.Licenses, ExtractedLicense{
			ID:            lid,
			Name:          l.str(lid, PropName),
			ExtractedText: l.str(lid, PropExtractedText),
			SeeAlso:       l.strs(lid, PropSeeAlso),
			Comment:       l.str(lid, PropComment),
		})
	}

	files := make(map[string]bool, len(doc.Files))
	for _, f := range doc.Files {
		files[f.ID] = true
	}
	contained := make(map[string][]string)
	for _, src := range sources {
		for _, rel := range l.refs(src, PropRelationships) {
			from := l.ref(rel, PropSpdxElementID)
			if from == "" {
				from = src
			}
			rs := Relationship{
				Source:  from,
				Type:    l.str(rel, PropRelationshipType),
				Target:  l.target(rel),
				Comment: l.str(rel, PropComment),
			}
			doc.Relationships = append(doc.Relationships, rs)
			if rs.Type == "CONTAINS" && files[rs.Target] {
				contained[src] = append(contained[src], rs.Target)
			}
		}
		for _, ann := range l.refs(src, PropAnnotations) {
			doc.Annotations = append(doc.Annotations, l.annotation(src, ann))
		}
	}
	for i := range doc.Packages {
		doc.Packages[i].Files = contained[doc.Packages[i].ID]
	}
	return doc, l.err
}

func (l *loader) pkg(id string) Package {
	p := Package{
		ID:                   id,
		Name:                 l.str(id, PropName),
		Version:              l.str(id, PropVersionInfo),
		FileName:             l.str(id, PropPackageFileName),
		Supplier:             l.str(id, PropSupplier),
		Originator:           l.str(id, PropOriginator),
		DownloadLocation:     l.str(id, PropDownloadLocation),
		FilesAnalyzed:        l.bool(id, PropFilesAnalyzed, true),
		HomePage:             l.str(id, PropHomepage),
		SourceInfo:           l.str(id, PropSourceInfo),
		LicenseConcluded:     l.str(id, PropLicenseConcluded),
		LicenseInfoFromFiles: l.strs(id, PropLicenseInfoFromFiles),
		LicenseDeclared:      l.str(id, PropLicenseDeclared),
		LicenseComments:      l.str(id, PropLicenseComments),
		CopyrightText:        l.str(id, PropCopyrightText),
		Summary:              l.str(id, PropSummary),
		Description:          l.str(id, PropDescription),
		Comment:              l.str(id, PropComment),
		AttributionTexts:     l.strs(id, PropAttributionText),
		PrimaryPurpose:       l.str(id, PropPrimaryPurpose),
		ReleaseDate:          l.str(id, PropReleaseDate),
		BuiltDate:            l.str(id, PropBuiltDate),
		ValidUntilDate:       l.str(id, PropValidUntilDate),
	}
	if code := l.ref(id, PropVerificationCode); code != "" {
		p.VerificationCode = &common.PackageVerificationCode{
			Value:         l.str(code, PropVerificationValue),
			ExcludedFiles: l.strs(code, PropVerificationExclude),
		}
	}
	for _, sum := range l.refs(id, PropChecksums) {
		p.Checksums = append(p.Checksums, l.checksum(sum))
	}
	for _, ref := range l.refs(id, PropExternalRefs) {
		p.ExternalRefs = append(p.ExternalRefs, ExternalRef{
			Category: l.str(ref, PropReferenceCategory),
			Type:     l.str(ref, PropReferenceType),
			Locator:  l.str(ref, PropReferenceLocator),
			Comment:  l.str(ref, PropComment),
		})
	}
	return p
}

func (l *loader) file(id string) File {
	f := File{
		ID:                 id,
		Name:               l.str(id, PropName),
		Types:              l.strs(id, PropFileTypes),
		LicenseConcluded:   l.str(id, PropLicenseConcluded),
		LicenseInfoInFiles: l.strs(id, PropLicenseInfoInFiles),
		LicenseComments:    l.str(id, PropLicenseComments),
		CopyrightText:      l.str(id, PropCopyrightText),
		Comment:            l.str(id, PropComment),
		Notice:             l.str(id, PropNoticeText),
		Contributors:       l.strs(id, PropFileContributors),
		AttributionTexts:   l.strs(id, PropAttributionText),
	}
	for _, sum := range l.refs(id, PropChecksums) {
		f.Checksums = append(f.Checksums, l.checksum(sum))
	}
	return f
}

func (l *loader) snippet(id string) Snippet {
	return Snippet{
		ID:                    id,
		Name:                  l.str(id, PropName),
		FromFile:              l.ref(id, PropSnippetFromFile),
		ByteRange:             l.rng(l.ref(id, PropByteRange)),
		LineRange:             l.rng(l.ref(id, PropLineRange)),
		LicenseConcluded:      l.str(id, PropLicenseConcluded),
		LicenseInfoInSnippets: l.strs(id, PropLicenseInfoInSnippets),
		LicenseComments:       l.str(id, PropLicenseComments),
		CopyrightText:         l.str(id, PropCopyrightText),
		Comment:               l.str(id, PropComment),
		AttributionTexts:      l.strs(id, PropAttributionText),
	}
}

func (l *loader) annotation(target, id string) Annotation {
	a := Annotation{
		Target:  target,
		Date:    l.str(id, PropAnnotationDate),
		Type:    l.str(id, PropAnnotationType),
		Comment: l.str(id, PropComment),
	}
	typ, name, _ := strings.Cut(l.str(id, PropAnnotator), ": ")
	a.Annotator = common.Annotator{AnnotatorType: typ, Annotator: name}
	return a
}

// loader reads typed values; the first type mismatch is kept in err
type loader struct {
	r   graph.Reader
	ns  string
	err error
}

func (l *loader) fail(id, prop string, v graph.Value) {
	if l.err == nil {
		l.err = fmt.Errorf("spdx: %s.%s has unexpected value %s", id, prop, v)
	}
}

func (l *loader) str(id, prop string) string {
	v, ok := l.r.Get(l.ns, id, prop)
	if !ok {
		return ""
	}
	s, isString := v.(graph.String)
	if !isString {
		l.fail(id, prop, v)
	}
	return string(s)
}

func (l *loader) strs(id, prop string) []string {
	var out []string
	for _, v := range graph.AsList(l.r.Get(l.ns, id, prop)) {
		s, isString := v.(graph.String)
		if !isString {
			l.fail(id, prop, v)
			continue
		}
		out = append(out, string(s))
	}
	return out
}

func (l *loader) ref(id, prop string) string {
	v, ok := l.r.Get(l.ns, id, prop)
	if !ok {
		return ""
	}
	r, isRef := v.(graph.Ref)
	if !isRef {
		l.fail(id, prop, v)
	}
	return string(r)
}

func (l *loader) refs(id, prop string) []string {
	var out []string
	for _, v := range graph.AsList(l.r.Get(l.ns, id, prop)) {
		r, isRef := v.(graph.Ref)
		if !isRef {
			l.fail(id, prop, v)
			continue
		}
		out = append(out, string(r))
	}
	return out
}

func (l *loader) bool(id, prop string, def bool) bool {
	v, ok := l.r.Get(l.ns, id, prop)
	if !ok {
		return def
	}
	b, isBool := v.(graph.Bool)
	if !isBool {
		l.fail(id, prop, v)
		return def
	}
	return bool(b)
}

func (l *loader) int(id, prop string) int {
	v, ok := l.r.Get(l.ns, id, prop)
	if !ok {
		return 0
	}
	i, isInt := v.(graph.Int)
	if !isInt {
		l.fail(id, prop, v)
	}
	return int(i)
}

func (l *loader) checksum(id string) common.Checksum {
	return common.Checksum{
		Algorithm: common.ChecksumAlgorithm(l.str(id, PropAlgorithm)),
		Value:     l.str(id, PropChecksumValue),
	}
}

func (l *loader) rng(id string) *Range {
	if id == "" {
		return nil
	}
	return &Range{Start: l.int(id, PropStartPointer), End: l.int(id, PropEndPointer)}
}

// target renders a relationship's related element
func (l *loader) target(rel string) string {
	v, ok := l.r.Get(l.ns, rel, PropRelatedElement)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case graph.Ref:
		return string(t)
	case graph.String:
		return string(t)
	}
	l.fail(rel, PropRelatedElement, v)
	return ""
}
