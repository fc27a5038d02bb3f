// Package journal implements the append-only mutation journal behind the
// durable graph store.
package journal

import "errors"

var (
	// ErrCorrupted indicates a journal entry whose CRC does not match
	ErrCorrupted = errors.New("journal: corrupted entry")

	// ErrTruncated indicates a partially written entry
	ErrTruncated = errors.New("journal: truncated entry")

	// ErrClosed indicates an operation on a closed journal
	ErrClosed = errors.New("journal: closed")

	// ErrUnknownOp indicates an entry with an op code this build does not know
	ErrUnknownOp = errors.New("journal: unknown op")
)
