// Package engine wraps a Pebble instance as a durable ordered byte-keyed
// map: the black-box storage primitive the rest of the store is built on.
//
// Callers get/put/delete single keys, apply an atomic batch, or open a
// forward iterator over an ordered range. Put, Delete and Batch commit
// with pebble.Sync. The store Facade does not depend on that: it layers
// its own write-ahead log on top of the engine.
package engine

import (
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Engine is a durable, ordered, byte-keyed map.
type Engine struct {
	db *pebble.DB
}

// Open creates or opens the engine at dir.
func Open(dir string) (*Engine, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open engine at %s: %w", dir, err)
	}
	return &Engine{db: db}, nil
}

// Close releases the underlying Pebble handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Get returns the value for key and whether it was present.
func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	v, closer, err := e.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("engine get: %w", err)
	}
	// Copy out — the slice returned by Get is only valid until closer.Close.
	out := append([]byte(nil), v...)
	if cerr := closer.Close(); cerr != nil {
		return nil, false, fmt.Errorf("engine get: %w", cerr)
	}
	return out, true, nil
}

// Put commits a single mutation.
func (e *Engine) Put(key, value []byte) error {
	if err := e.db.Set(key, value, pebble.Sync); err != nil {
		return fmt.Errorf("engine put: %w", err)
	}
	return nil
}

// Delete removes any mapping for key. Idempotent.
func (e *Engine) Delete(key []byte) error {
	if err := e.db.Delete(key, pebble.Sync); err != nil {
		return fmt.Errorf("engine delete: %w", err)
	}
	return nil
}

// BatchOp is one operation within an atomic Batch call.
type BatchOp struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// Batch applies ops atomically with respect to concurrent readers, in the
// given order (last write wins within the batch).
func (e *Engine) Batch(ops []BatchOp) error {
	b := e.db.NewBatch()
	defer b.Close()

	for _, op := range ops {
		var err error
		if op.Delete {
			err = b.Delete(op.Key, nil)
		} else {
			err = b.Set(op.Key, op.Value, nil)
		}
		if err != nil {
			return fmt.Errorf("engine batch stage: %w", err)
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("engine batch commit: %w", err)
	}
	return nil
}

// Iterator yields (key, value) pairs in ascending key order. Not
// restartable; the consumer must call Close when done.
type Iterator struct {
	it       *pebble.Iterator
	advanced bool
}

// Iterate opens a lazy, finite, forward iterator starting at the first
// key >= start.
func (e *Engine) Iterate(start []byte) (*Iterator, error) {
	it, err := e.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("engine iterate: %w", err)
	}
	it.SeekGE(start)
	return &Iterator{it: it}, nil
}

// Next advances the iterator and reports whether a pair is available.
func (it *Iterator) Next() bool {
	if !it.it.Valid() {
		return false
	}
	// The first Next call should observe the position SeekGE left us at;
	// subsequent calls advance.
	valid := it.it.Valid()
	if it.advanced {
		valid = it.it.Next()
	}
	it.advanced = true
	return valid
}

// Key returns the current key. Only valid after Next returns true.
func (it *Iterator) Key() []byte {
	return append([]byte(nil), it.it.Key()...)
}

// Value returns the current value. Only valid after Next returns true.
func (it *Iterator) Value() []byte {
	return append([]byte(nil), it.it.Value()...)
}

// Close releases the iterator.
func (it *Iterator) Close() error {
	return it.it.Close()
}
