package graph

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestKeyRoundTrip(t *testing.T) {
	parts := []string{"http://example.com/doc", "SPDXRef-\x00odd\xfe", "name"}
	key := EncodeKey(PREFIX_PROPERTY, parts...)

	prefix, decoded, err := DecodeKey(key)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if prefix != PREFIX_PROPERTY {
		t.Errorf("expected prefix %d, got %d", PREFIX_PROPERTY, prefix)
	}
	if !reflect.DeepEqual(decoded, parts) {
		t.Errorf("expected %q, got %q", parts, decoded)
	}
}

func TestMemoryCreateAndTypes(t *testing.T) {
	m := NewMemory()
	if err := m.Create("ns", "SPDXRef-A", "Package"); err != nil {
		t.Fatal(err)
	}
	if err := m.Create("ns", "SPDXRef-A", "Package"); err != nil {
		t.Errorf("re-creating with the same type should be a no-op, got %v", err)
	}
	if err := m.Create("ns", "SPDXRef-A", "File"); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}

	m.Create("ns", "SPDXRef-B", "File")
	m.Create("ns", "SPDXRef-C", "Package")
	m.Create("other", "SPDXRef-A", "Package")

	if got := m.Elements("ns", "Package"); !reflect.DeepEqual(got, []string{"SPDXRef-A", "SPDXRef-C"}) {
		t.Errorf("unexpected packages: %v", got)
	}
	if got := m.Elements("ns", ""); len(got) != 3 {
		t.Errorf("expected 3 elements in ns, got %v", got)
	}
	if got := m.Namespaces(); !reflect.DeepEqual(got, []string{"ns", "other"}) {
		t.Errorf("unexpected namespaces: %v", got)
	}
	if typ, ok := m.TypeOf("ns", "SPDXRef-B"); !ok || typ != "File" {
		t.Errorf("expected File, got %q %v", typ, ok)
	}
	if m.Exists("ns", "SPDXRef-missing") {
		t.Error("unexpected element")
	}
}

func TestMemorySetAndAppend(t *testing.T) {
	m := NewMemory()
	if err := m.Set("ns", "SPDXRef-A", "name", String("x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	m.Create("ns", "SPDXRef-A", "Package")

	if err := m.Set("ns", "SPDXRef-A", "name", String("glibc")); err != nil {
		t.Fatal(err)
	}
	if err := m.Append("ns", "SPDXRef-A", "checksums", Ref("c1")); err != nil {
		t.Fatal(err)
	}
	if err := m.Append("ns", "SPDXRef-A", "checksums", Ref("c2")); err != nil {
		t.Fatal(err)
	}
	if err := m.Append("ns", "SPDXRef-A", "name", String("y")); !errors.Is(err, ErrNotList) {
		t.Errorf("expected ErrNotList, got %v", err)
	}

	name, ok := AsString(m.Get("ns", "SPDXRef-A", "name"))
	if !ok || name != "glibc" {
		t.Errorf("expected glibc, got %q", name)
	}
	list := AsList(m.Get("ns", "SPDXRef-A", "checksums"))
	if !Equal(list, List{Ref("c1"), Ref("c2")}) {
		t.Errorf("unexpected list: %v", list)
	}
	if got := m.Properties("ns", "SPDXRef-A"); !reflect.DeepEqual(got, []string{"checksums", "name"}) {
		t.Errorf("unexpected properties: %v", got)
	}
}

func TestValueCodec(t *testing.T) {
	values := []Value{
		String("Apache-2.0"),
		String(""),
		Int(-310),
		Bool(true),
		Ref("DocumentRef-spdx-tool:SPDXRef-ToolsElement"),
		List{String("a"), Int(2), List{Bool(false)}},
	}
	for _, v := range values {
		got, err := DecodeValue(EncodeValue(v))
		if err != nil {
			t.Fatalf("decode %v: %v", v, err)
		}
		if !Equal(got, v) {
			t.Errorf("expected %v, got %v", v, got)
		}
	}
	if _, err := DecodeValue([]byte{'x'}); err == nil {
		t.Error("expected error for unknown tag")
	}
}

func TestDurableReplaysCommittedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.journal")

	d, err := OpenDurable(path)
	if err != nil {
		t.Fatal(err)
	}
	d.Create("ns", "SPDXRef-A", "Package")
	d.Set("ns", "SPDXRef-A", "name", String("glibc"))
	d.Append("ns", "SPDXRef-A", "licenseInfoFromFiles", String("MIT"))
	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}
	d.Create("ns", "SPDXRef-B", "File")
	d.Abandon()
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}

	d2, err := OpenDurable(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d2.Close()

	if !d2.Exists("ns", "SPDXRef-A") {
		t.Fatal("committed element missing after replay")
	}
	if d2.Exists("ns", "SPDXRef-B") {
		t.Error("abandoned element replayed")
	}
	if name, _ := AsString(d2.Get("ns", "SPDXRef-A", "name")); name != "glibc" {
		t.Errorf("expected glibc, got %q", name)
	}
	if list := AsList(d2.Get("ns", "SPDXRef-A", "licenseInfoFromFiles")); !Equal(list, List{String("MIT")}) {
		t.Errorf("unexpected list after replay: %v", list)
	}
}
