package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/sampsyo/loglet/internal/config"
	"github.com/sampsyo/loglet/internal/logstore"
	"github.com/sampsyo/loglet/internal/notify"
	pebblestore "github.com/sampsyo/loglet/internal/storage/pebble"
)

// Options for building the Runtime.
type Options struct {
	DataDir      string
	Sync         pebblestore.SyncMode
	SyncInterval time.Duration
	Config       cfgpkg.Config
	// Clock overrides the store's unix-seconds clock. Tests use it.
	Clock func() int64
}

// Runtime wires storage, the bounded log store, the notifier, and config
// for a single-node instance. Handlers acquire the store through the
// Runtime rather than any process-wide shared handle.
type Runtime struct {
	db       *pebblestore.DB
	store    *logstore.Store
	notifier notify.Notifier
	config   cfgpkg.Config
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Sync: opts.Sync, SyncInterval: opts.SyncInterval})
	if err != nil {
		return nil, err
	}
	cfg := opts.Config
	store := logstore.Open(db, logstore.Options{Clock: opts.Clock, Limits: logstore.Limits{
		MaxMessages:    cfg.MaxMessages,
		MinLevel:       cfg.MinLevel,
		MaxLevel:       cfg.MaxLevel,
		MaxBodyBytes:   cfg.MaxMessageLength,
		MaxTitleBytes:  cfg.MaxTitleLength,
		MaxNotifyBytes: cfg.MaxNotifyLength,
	}})

	var notifier notify.Notifier = notify.Disabled{}
	if cfg.Notifo.User != "" {
		notifier = notify.New(notify.Options{
			APIURL: cfg.Notifo.APIURL,
			User:   cfg.Notifo.User,
			Secret: cfg.Notifo.Secret,
		})
	}

	return &Runtime{db: db, store: store, notifier: notifier, config: cfg}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple storage round-trip check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// Store returns the bounded log store.
func (r *Runtime) Store() *logstore.Store { return r.store }

// Notifier returns the configured push-notification client.
func (r *Runtime) Notifier() notify.Notifier { return r.notifier }

// SetNotifier swaps the notifier; tests install fakes through this.
func (r *Runtime) SetNotifier(n notify.Notifier) { r.notifier = n }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
