// Package graph implements the key/value graph store the SPDX builder
// writes into: elements addressed by (namespace, id) carrying properties
// addressed by name.
package graph

import "errors"

var (
	// ErrNotFound indicates an element that does not exist
	ErrNotFound = errors.New("graph: element not found")

	// ErrExists indicates an element created twice with different types
	ErrExists = errors.New("graph: element already exists")

	// ErrNotList indicates an append to a property holding a scalar
	ErrNotList = errors.New("graph: property is not a collection")
)

// Reader is the read side of a store.
type Reader interface {
	// Exists reports whether the element exists.
	Exists(namespace, id string) bool
	// TypeOf returns the type the element was created with.
	TypeOf(namespace, id string) (string, bool)
	// Get returns a property value. Collections come back as List.
	Get(namespace, id, property string) (Value, bool)
	// Properties returns the names of the element's properties, sorted.
	Properties(namespace, id string) []string
	// Elements returns the ids of all elements of the given type, sorted.
	// An empty type returns every element of the namespace.
	Elements(namespace, typ string) []string
	// Namespaces returns every namespace holding at least one element.
	Namespaces() []string
}

// Store is a mutable graph store.
type Store interface {
	Reader
	// Create creates an element. Creating an existing element with the
	// same type is a no-op.
	Create(namespace, id, typ string) error
	// Set overwrites a property value on an existing element.
	Set(namespace, id, property string, v Value) error
	// Append adds v to a collection property, creating it if absent.
	Append(namespace, id, property string, v Value) error
}

// Committer is implemented by stores that group mutations into durable
// transactions.
type Committer interface {
	Commit() error
	Abandon()
}
