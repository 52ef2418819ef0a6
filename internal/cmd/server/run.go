package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	cfgpkg "github.com/sampsyo/loglet/internal/config"
	"github.com/sampsyo/loglet/internal/runtime"
	httpserver "github.com/sampsyo/loglet/internal/server/http"
	pebblestore "github.com/sampsyo/loglet/internal/storage/pebble"
)

// Options configures a server run.
type Options struct {
	DataDir      string
	Addr         string
	Sync         pebblestore.SyncMode
	SyncInterval time.Duration
	Config       cfgpkg.Config
	Logger       *logrus.Logger
}

// Run opens the runtime and serves HTTP until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Layer a local signal context over the provided one so a bare
	// context.Background() caller still gets clean shutdown.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.DataDir == "" {
		opts.DataDir = opts.Config.DataDir
	}
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.Addr == "" {
		opts.Addr = opts.Config.Addr
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{
		DataDir:      storeDir,
		Sync:         opts.Sync,
		SyncInterval: opts.SyncInterval,
		Config:       opts.Config,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	srv, err := httpserver.New(rt, logger)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"addr":     opts.Addr,
		"data_dir": opts.DataDir,
	}).Info("starting loglet server")

	return srv.ListenAndServe(sctx, opts.Addr)
}
