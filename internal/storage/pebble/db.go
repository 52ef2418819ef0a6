package pebblestore

import (
	"context"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
)

// SyncMode defines durability behavior for committed writes.
type SyncMode int

const (
	SyncModeUnspecified SyncMode = iota
	// SyncModeAlways requests a WAL fsync on every committed batch. Slowest,
	// safest; a crash loses nothing that was acknowledged.
	SyncModeAlways
	// SyncModeInterval lets Pebble coalesce WAL syncs for writes landing
	// within the configured interval (group commit).
	SyncModeInterval
	// SyncModeNever leaves syncing entirely to Pebble's own policies. A
	// crash may lose the most recent acknowledged messages.
	SyncModeNever
)

// Options configures the Pebble wrapper.
type Options struct {
	// DataDir is the path to the Pebble database directory. Required.
	DataDir string
	// Sync determines when the WAL is fsynced.
	Sync SyncMode
	// SyncInterval controls group commit when Sync=SyncModeInterval.
	SyncInterval time.Duration
}

// DB wraps a Pebble database with a fixed sync policy and small helpers.
// All multi-key mutations in loglet go through batches so the append and
// its eviction sweep commit as one unit.
type DB struct {
	inner     *pebble.DB
	writeSync bool
}

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = pebble.ErrNotFound

// Open creates or opens a Pebble database at opts.DataDir.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebblestore: Options.DataDir is required")
	}

	po := &pebble.Options{}
	switch opts.Sync {
	case SyncModeAlways:
		// Sync per commit; WALMinSyncInterval stays at zero.
	case SyncModeInterval:
		if opts.SyncInterval <= 0 {
			opts.SyncInterval = 5 * time.Millisecond
		}
		iv := opts.SyncInterval
		po.WALMinSyncInterval = func() time.Duration { return iv }
	case SyncModeNever:
	default:
		// Small group-commit window as the default latency/durability tradeoff.
		po.WALMinSyncInterval = func() time.Duration { return 5 * time.Millisecond }
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, err
	}
	return &DB{inner: inner, writeSync: opts.Sync == SyncModeAlways}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// NewBatch creates a batch for atomic multi-key updates.
func (db *DB) NewBatch() *pebble.Batch {
	return db.inner.NewBatch()
}

// CommitBatch commits b under the configured sync policy. The batch either
// applies completely or not at all.
func (db *DB) CommitBatch(ctx context.Context, b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebblestore: nil batch")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	syncMode := pebble.NoSync
	if db.writeSync {
		syncMode = pebble.Sync
	}
	return b.Commit(syncMode)
}

// Set writes a single key through an internal batch respecting sync policy.
func (db *DB) Set(key, value []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Set(key, value, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Delete removes a single key through an internal batch.
func (db *DB) Delete(key []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Delete(key, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Get returns a copy of the value for key, or ErrNotFound.
func (db *DB) Get(key []byte) ([]byte, error) {
	val, closer, err := db.inner.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

// NewIter creates a raw Pebble iterator with the provided options.
func (db *DB) NewIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return db.inner.NewIter(opts)
}
