// ABOUTME: In-memory graph store backed by an ordered B-tree of encoded keys
// ABOUTME: Secondary type and namespace indexes are kept in the same tree

package graph

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/google/btree"
)

const treeDegree = 32

type item struct {
	key   []byte
	value Value
}

func lessItem(a, b item) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// Memory is a Store held entirely in memory. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[item]
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{tree: btree.NewG[item](treeDegree, lessItem)}
}

// Create creates an element
func (m *Memory) Create(namespace, id, typ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(namespace, id, typ)
}

func (m *Memory) create(namespace, id, typ string) error {
	if namespace == "" || id == "" || typ == "" {
		return fmt.Errorf("graph: create requires namespace, id and type")
	}
	if existing, ok := m.tree.Get(item{key: EncodeKey(PREFIX_ELEMENT, namespace, id)}); ok {
		if string(existing.value.(String)) == typ {
			return nil
		}
		return fmt.Errorf("%w: %s:%s is %s, not %s", ErrExists, namespace, id, existing.value, typ)
	}
	m.tree.ReplaceOrInsert(item{key: EncodeKey(PREFIX_ELEMENT, namespace, id), value: String(typ)})
	m.tree.ReplaceOrInsert(item{key: EncodeKey(PREFIX_TYPE, namespace, typ, id)})
	m.tree.ReplaceOrInsert(item{key: EncodeKey(PREFIX_NAMESPACE, namespace)})
	return nil
}

// Set overwrites a property value
func (m *Memory) Set(namespace, id, property string, v Value) error {
	if v == nil {
		return fmt.Errorf("graph: nil value for %s", property)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(namespace, id, property, v)
}

func (m *Memory) set(namespace, id, property string, v Value) error {
	if !m.exists(namespace, id) {
		return fmt.Errorf("%w: %s:%s", ErrNotFound, namespace, id)
	}
	m.tree.ReplaceOrInsert(item{key: EncodeKey(PREFIX_PROPERTY, namespace, id, property), value: v})
	return nil
}

// Append adds a value to a collection property
func (m *Memory) Append(namespace, id, property string, v Value) error {
	if err := mustScalar(v); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.append(namespace, id, property, v)
}

func (m *Memory) append(namespace, id, property string, v Value) error {
	if !m.exists(namespace, id) {
		return fmt.Errorf("%w: %s:%s", ErrNotFound, namespace, id)
	}
	key := EncodeKey(PREFIX_PROPERTY, namespace, id, property)
	var list List
	if existing, ok := m.tree.Get(item{key: key}); ok {
		l, isList := existing.value.(List)
		if !isList {
			return fmt.Errorf("%w: %s on %s:%s", ErrNotList, property, namespace, id)
		}
		list = l
	}
	// copy so readers holding the previous slice never observe the append
	next := make(List, len(list), len(list)+1)
	copy(next, list)
	m.tree.ReplaceOrInsert(item{key: key, value: append(next, v)})
	return nil
}

// Exists reports whether an element exists
func (m *Memory) Exists(namespace, id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exists(namespace, id)
}

func (m *Memory) exists(namespace, id string) bool {
	return m.tree.Has(item{key: EncodeKey(PREFIX_ELEMENT, namespace, id)})
}

// TypeOf returns the element's type
func (m *Memory) TypeOf(namespace, id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.tree.Get(item{key: EncodeKey(PREFIX_ELEMENT, namespace, id)})
	if !ok {
		return "", false
	}
	return string(it.value.(String)), true
}

// Get returns a property value
func (m *Memory) Get(namespace, id, property string) (Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.tree.Get(item{key: EncodeKey(PREFIX_PROPERTY, namespace, id, property)})
	if !ok {
		return nil, false
	}
	return it.value, true
}

// Properties lists an element's property names
func (m *Memory) Properties(namespace, id string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanLast(EncodeKey(PREFIX_PROPERTY, namespace, id))
}

// Elements lists element ids of a type within a namespace
func (m *Memory) Elements(namespace, typ string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if typ == "" {
		return m.scanLast(EncodeKey(PREFIX_ELEMENT, namespace))
	}
	return m.scanLast(EncodeKey(PREFIX_TYPE, namespace, typ))
}

// Namespaces lists every namespace in the store
func (m *Memory) Namespaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanLast(EncodeKey(PREFIX_NAMESPACE))
}

// Len returns the number of stored keys, indexes included
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.Len()
}

// scanLast returns the final key part of every key under prefix
func (m *Memory) scanLast(prefix []byte) []string {
	var out []string
	m.tree.AscendGreaterOrEqual(item{key: prefix}, func(it item) bool {
		if !bytes.HasPrefix(it.key, prefix) {
			return false
		}
		_, parts, err := DecodeKey(it.key)
		if err != nil || len(parts) == 0 {
			return true
		}
		out = append(out, parts[len(parts)-1])
		return true
	})
	return out
}
