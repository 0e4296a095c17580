package store

import (
	"fmt"
	"log"

	"kvstore/internal/engine"
	"kvstore/internal/wal"
)

// Recover replays w on top of e, restoring mutations accepted between the
// last engine commit and a crash. It is invoked once at process start,
// before the Facade begins serving traffic, and never touches the cache
// (which starts cold). Replay is idempotent: running it twice against the
// same (engine, WAL) pair leaves the engine in the same state.
func Recover(e *engine.Engine, w *wal.WAL) (int, error) {
	if !w.Exists() {
		return 0, nil
	}

	applied := 0
	err := w.Replay(func(rec wal.Record) error {
		switch rec.Op {
		case wal.OpAdd:
			if err := e.Put([]byte(rec.Key), []byte(rec.Value)); err != nil {
				return fmt.Errorf("recovery apply add %q: %w", rec.Key, err)
			}
		case wal.OpRemove:
			if err := e.Delete([]byte(rec.Key)); err != nil {
				return fmt.Errorf("recovery apply remove %q: %w", rec.Key, err)
			}
		}
		applied++
		return nil
	}, func(line string) {
		log.Printf("recovery: skipping malformed WAL record: %q", line)
	})
	if err != nil {
		return applied, fmt.Errorf("recovery: %w", err)
	}
	return applied, nil
}
