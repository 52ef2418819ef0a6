package serverrun

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	cfgpkg "github.com/sampsyo/loglet/internal/config"
	pebblestore "github.com/sampsyo/loglet/internal/storage/pebble"
)

func TestRunStopsOnCancel(t *testing.T) {
	cfg := cfgpkg.Default()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			DataDir: t.TempDir(),
			Addr:    "127.0.0.1:0",
			Sync:    pebblestore.SyncModeNever,
			Config:  cfg,
			Logger:  logger,
		})
	}()

	// Give the server a moment to open the store and bind.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestRunBadAddr(t *testing.T) {
	cfg := cfgpkg.Default()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	err := Run(context.Background(), Options{
		DataDir: t.TempDir(),
		Addr:    "not-an-addr",
		Sync:    pebblestore.SyncModeNever,
		Config:  cfg,
		Logger:  logger,
	})
	if err == nil {
		t.Fatal("expected listen error")
	}
}
