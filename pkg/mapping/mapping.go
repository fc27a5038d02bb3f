// ABOUTME: Tag name to semantic property table driving the graph builder
// ABOUTME: Loaded from YAML; the SPDX 2.3 tag set is embedded as the default

// Package mapping holds the ReferenceMapping: the static table that tells
// the builder which element kind a tag applies to, which property it sets
// and how its value is interpreted.
package mapping

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/nainya/spdxtv/pkg/spdx"
)

// ValueType selects the grammar a tag's value is parsed with.
type ValueType string

const (
	Text                ValueType = "text"
	Bool                ValueType = "bool"
	Date                ValueType = "date"
	URI                 ValueType = "uri"
	Agent               ValueType = "agent"
	License             ValueType = "license"
	LicenseSet          ValueType = "licenseSet"
	LicenseID           ValueType = "licenseId"
	Checksum            ValueType = "checksum"
	Range               ValueType = "range"
	ExternalRef         ValueType = "externalRef"
	ExternalDocumentRef ValueType = "externalDocumentRef"
	VerificationCode    ValueType = "verificationCode"
	Relationship        ValueType = "relationship"
	FileType            ValueType = "fileType"
	AnnotationType      ValueType = "annotationType"
	Purpose             ValueType = "purpose"
	ID                  ValueType = "id"
	Ref                 ValueType = "ref"
)

var valueTypes = map[ValueType]bool{
	Text: true, Bool: true, Date: true, URI: true, Agent: true, License: true,
	LicenseSet: true, LicenseID: true, Checksum: true, Range: true,
	ExternalRef: true, ExternalDocumentRef: true, VerificationCode: true,
	Relationship: true, FileType: true, AnnotationType: true, Purpose: true,
	ID: true, Ref: true,
}

// Composite reports whether the value has an inner grammar; an empty value
// is then malformed rather than merely absent.
func (v ValueType) Composite() bool {
	switch v {
	case Text, Date, URI, Agent, License, LicenseSet:
		return false
	}
	return true
}

// Entry describes one tag.
type Entry struct {
	Tag      string           `yaml:"tag"`
	Kind     spdx.ElementKind `yaml:"kind"`
	Property string           `yaml:"property"`
	Value    ValueType        `yaml:"value"`
	// Opens marks scope-opening tags.
	Opens bool `yaml:"opens,omitempty"`
	// Multi marks collection properties; each record appends.
	Multi bool `yaml:"multi,omitempty"`
}

// Mapping is an immutable tag table.
type Mapping struct {
	entries map[string]Entry
}

var (
	// ErrDuplicateTag indicates a tag listed twice
	ErrDuplicateTag = errors.New("mapping: duplicate tag")

	// ErrInvalidEntry indicates an entry missing a field or with an unknown value type
	ErrInvalidEntry = errors.New("mapping: invalid entry")
)

type file struct {
	Tags []Entry `yaml:"tags"`
}

// Load reads a mapping from YAML.
func Load(r io.Reader) (*Mapping, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("mapping: decode: %w", err)
	}
	return New(f.Tags)
}

// New builds a mapping from entries.
func New(entries []Entry) (*Mapping, error) {
	m := &Mapping{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if e.Tag == "" || e.Kind == spdx.KindNone || e.Property == "" || !valueTypes[e.Value] {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidEntry, e)
		}
		if strings.ContainsAny(e.Tag, ": \t") {
			return nil, fmt.Errorf("%w: tag %q contains a separator", ErrInvalidEntry, e.Tag)
		}
		if _, dup := m.entries[e.Tag]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTag, e.Tag)
		}
		m.entries[e.Tag] = e
	}
	return m, nil
}

// Lookup returns the entry for a tag. Tags are case-sensitive.
func (m *Mapping) Lookup(tag string) (Entry, bool) {
	e, ok := m.entries[tag]
	return e, ok
}

// Entries returns every entry ordered by kind, then tag.
func (m *Mapping) Entries() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Len returns the number of tags.
func (m *Mapping) Len() int { return len(m.entries) }

//go:embed tags.yaml
var defaultTags []byte

var (
	defaultOnce    sync.Once
	defaultMapping *Mapping
)

// Default returns the embedded SPDX 2.3 mapping.
func Default() *Mapping {
	defaultOnce.Do(func() {
		m, err := Load(bytes.NewReader(defaultTags))
		if err != nil {
			panic(err)
		}
		defaultMapping = m
	})
	return defaultMapping
}
