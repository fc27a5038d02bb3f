// ABOUTME: Journaled graph store: an in-memory store rebuilt from a journal
// ABOUTME: Every mutation is logged; Commit makes a batch of mutations durable

package graph

import (
	"fmt"

	"github.com/nainya/spdxtv/pkg/journal"
)

// Durable is a Memory store whose mutations are journaled to disk.
// Mutations become durable on Commit. Abandon drops the journal
// transaction but does not roll back the in-memory state.
type Durable struct {
	*Memory
	j *journal.Journal
}

// OpenDurable opens the journal at path, replays its committed
// transactions and returns the resulting store.
func OpenDurable(path string) (*Durable, error) {
	mem := NewMemory()
	_, err := journal.Replay(path, func(op journal.Op, key, value []byte) error {
		return mem.applyEntry(op, key, value)
	})
	if err != nil {
		return nil, err
	}

	j := &journal.Journal{Path: path}
	if err := j.Open(); err != nil {
		return nil, err
	}
	return &Durable{Memory: mem, j: j}, nil
}

// Create creates an element and journals it
func (d *Durable) Create(namespace, id, typ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.exists(namespace, id) {
		return d.create(namespace, id, typ)
	}
	if err := d.create(namespace, id, typ); err != nil {
		return err
	}
	return d.j.Append(journal.OpCreate, EncodeKey(PREFIX_ELEMENT, namespace, id), []byte(typ))
}

// Set overwrites a property and journals it
func (d *Durable) Set(namespace, id, property string, v Value) error {
	if v == nil {
		return fmt.Errorf("graph: nil value for %s", property)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.set(namespace, id, property, v); err != nil {
		return err
	}
	return d.j.Append(journal.OpSet, EncodeKey(PREFIX_PROPERTY, namespace, id, property), EncodeValue(v))
}

// Append adds to a collection property and journals it
func (d *Durable) Append(namespace, id, property string, v Value) error {
	if err := mustScalar(v); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.append(namespace, id, property, v); err != nil {
		return err
	}
	return d.j.Append(journal.OpAppend, EncodeKey(PREFIX_PROPERTY, namespace, id, property), EncodeValue(v))
}

// Commit makes every mutation since the last commit durable
func (d *Durable) Commit() error {
	return d.j.Commit()
}

// Abandon discards the pending journal transaction
func (d *Durable) Abandon() {
	d.j.Abandon()
}

// Close closes the journal
func (d *Durable) Close() error {
	return d.j.Close()
}

// applyEntry applies one replayed journal mutation
func (m *Memory) applyEntry(op journal.Op, key, value []byte) error {
	prefix, parts, err := DecodeKey(key)
	if err != nil {
		return err
	}
	switch op {
	case journal.OpCreate:
		if prefix != PREFIX_ELEMENT || len(parts) != 2 {
			return fmt.Errorf("graph: bad create key")
		}
		return m.create(parts[0], parts[1], string(value))
	case journal.OpSet, journal.OpAppend:
		if prefix != PREFIX_PROPERTY || len(parts) != 3 {
			return fmt.Errorf("graph: bad property key")
		}
		v, err := DecodeValue(value)
		if err != nil {
			return err
		}
		if op == journal.OpSet {
			return m.set(parts[0], parts[1], parts[2], v)
		}
		return m.append(parts[0], parts[1], parts[2], v)
	}
	return fmt.Errorf("%w: %s", journal.ErrUnknownOp, op)
}
