// Package spdx defines the SPDX element vocabulary shared by the tag-value
// front end, the graph builder and the typed read-back of built documents.
package spdx

import "fmt"

// ElementKind is the closed set of element kinds a tag can apply to.
type ElementKind uint8

const (
	KindNone ElementKind = iota
	KindDocument
	KindPackage
	KindFile
	KindSnippet
	KindRelationship
	KindAnnotation
	KindLicenseRef
	KindExternalDocumentRef

	// Sub-scopes that hang off one of the kinds above.
	KindExternalRef // package external reference, target of ExternalRefComment
	KindReview      // legacy review block, stored as a REVIEW annotation

	// KindElement marks tags (SPDXID) that apply to the most recently
	// opened document, package or file.
	KindElement
)

var kindNames = map[ElementKind]string{
	KindNone:                "none",
	KindDocument:            "document",
	KindPackage:             "package",
	KindFile:                "file",
	KindSnippet:             "snippet",
	KindRelationship:        "relationship",
	KindAnnotation:          "annotation",
	KindLicenseRef:          "license",
	KindExternalDocumentRef: "externalDocumentRef",
	KindExternalRef:         "externalRef",
	KindReview:              "review",
	KindElement:             "element",
}

func (k ElementKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind resolves the mapping-file spelling of a kind.
func ParseKind(s string) (ElementKind, error) {
	for k, name := range kindNames {
		if name == s && k != KindNone {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("spdx: unknown element kind %q", s)
}

// UnmarshalText lets kinds be decoded directly from YAML and JSON.
func (k *ElementKind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText renders the mapping-file spelling.
func (k ElementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// TypeName is the store type a kind is persisted as. Sub-scope kinds have
// their own store types and KindElement has none.
func (k ElementKind) TypeName() string {
	switch k {
	case KindDocument:
		return TypeDocument
	case KindPackage:
		return TypePackage
	case KindFile:
		return TypeFile
	case KindSnippet:
		return TypeSnippet
	case KindRelationship:
		return TypeRelationship
	case KindAnnotation, KindReview:
		return TypeAnnotation
	case KindLicenseRef:
		return TypeExtractedLicense
	case KindExternalDocumentRef:
		return TypeExternalDocumentRef
	case KindExternalRef:
		return TypeExternalRef
	}
	return ""
}

// IsElement reports whether the kind carries an SPDXID of its own.
func (k ElementKind) IsElement() bool {
	switch k {
	case KindDocument, KindPackage, KindFile, KindSnippet:
		return true
	}
	return false
}
