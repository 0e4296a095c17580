// Package store implements the Facade: the orchestration point tying the
// ordered-map engine, the hot cache, and the write-ahead log together
// under one ordering contract.
//
// Ordering rationale (deliberate, not accidental): every mutating
// operation commits to the engine, then updates the cache, then appends
// to the WAL. A crash between engine commit and WAL append loses that
// single record's WAL durability — but the mutation IS already in the
// engine. A crash before the engine commit loses the write entirely.
// Either way, replaying a WAL record that was already applied to the
// engine is harmless, because engine puts and deletes are idempotent.
// An implementation could legitimately flip this to WAL-first for
// stronger durability; that's a different, equally valid design and out
// of scope here.
package store

import (
	"fmt"

	"kvstore/internal/cache"
	"kvstore/internal/engine"
	"kvstore/internal/wal"
)

// Facade orchestrates the engine, cache, and WAL for one node.
type Facade struct {
	engine *engine.Engine
	cache  *cache.Cache
	wal    *wal.WAL
}

// New builds a Facade over already-open components.
func New(e *engine.Engine, c *cache.Cache, w *wal.WAL) *Facade {
	return &Facade{engine: e, cache: c, wal: w}
}

// Put stores key→value. Steps, in order: engine commit, cache update,
// WAL append. Returns nil on success.
func (f *Facade) Put(key, value string) error {
	if err := validateKey(key, true); err != nil {
		return err
	}
	if err := validateValue(value); err != nil {
		return err
	}

	if err := f.engine.Put([]byte(key), []byte(value)); err != nil {
		return &IoError{Op: "engine put", Err: err}
	}
	f.cache.Put(key, value)
	if err := f.wal.AppendAdd(key, value); err != nil {
		return &IoError{Op: "wal append", Err: err}
	}
	return nil
}

// BatchPut applies an engine-atomic batch of puts, then updates the
// cache for each pair, then appends one Add record per pair to the WAL
// as a single append call, all in input order.
func (f *Facade) BatchPut(keys, values []string) error {
	if len(keys) != len(values) {
		return &ValidationError{Reason: "keys and values must be lists of the same length"}
	}
	if len(keys) == 0 {
		return &ValidationError{Reason: "batch must contain at least one pair"}
	}
	for i := range keys {
		if err := validateKey(keys[i], true); err != nil {
			return err
		}
		if err := validateValue(values[i]); err != nil {
			return err
		}
	}

	ops := make([]engine.BatchOp, len(keys))
	for i := range keys {
		ops[i] = engine.BatchOp{Key: []byte(keys[i]), Value: []byte(values[i])}
	}
	if err := f.engine.Batch(ops); err != nil {
		return &IoError{Op: "engine batch", Err: err}
	}

	pairs := make([]wal.Pair, len(keys))
	for i := range keys {
		f.cache.Put(keys[i], values[i])
		pairs[i] = wal.Pair{Key: keys[i], Value: values[i]}
	}
	if err := f.wal.AppendBatchAdd(pairs); err != nil {
		return &IoError{Op: "wal append batch", Err: err}
	}
	return nil
}

// Read looks up key: cache first, falling back to the engine on a miss
// and populating the cache from it. Returns ErrNotFound if absent from
// both. Reads never touch the WAL.
func (f *Facade) Read(key string) (string, error) {
	if err := validateKey(key, false); err != nil {
		return "", err
	}

	if v, ok := f.cache.Get(key); ok {
		return v, nil
	}

	v, ok, err := f.engine.Get([]byte(key))
	if err != nil {
		return "", &IoError{Op: "engine get", Err: err}
	}
	if !ok {
		return "", ErrNotFound
	}
	value := string(v)
	f.cache.Put(key, value)
	return value, nil
}

// ReadRange returns the inclusive [start, end] set of pairs. If
// start > end lexicographically, the result is empty. The cache is
// neither consulted nor populated — range scans serve cold analytical
// access, and populating a bounded LRU from a scan would thrash the hot
// set.
func (f *Facade) ReadRange(start, end string) (map[string]string, error) {
	if start == "" || end == "" {
		return nil, &ValidationError{Reason: "start_key and end_key are required"}
	}
	result := make(map[string]string)
	if start > end {
		return result, nil
	}

	it, err := f.engine.Iterate([]byte(start))
	if err != nil {
		return nil, &IoError{Op: "engine iterate", Err: err}
	}
	defer it.Close()

	for it.Next() {
		key := string(it.Key())
		if key > end {
			break
		}
		result[key] = string(it.Value())
	}
	return result, nil
}

// Delete removes key: engine delete, then cache evict, then a Remove
// WAL record. Idempotent at the engine level.
func (f *Facade) Delete(key string) error {
	if err := validateKey(key, false); err != nil {
		return err
	}

	if err := f.engine.Delete([]byte(key)); err != nil {
		return &IoError{Op: "engine delete", Err: err}
	}
	f.cache.Evict(key)
	if err := f.wal.AppendRemove(key); err != nil {
		return &IoError{Op: "wal append", Err: err}
	}
	return nil
}

// Close releases the underlying engine handle.
func (f *Facade) Close() error {
	if err := f.engine.Close(); err != nil {
		return fmt.Errorf("close engine: %w", err)
	}
	return nil
}
