package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/sampsyo/loglet/internal/config"
	"github.com/sampsyo/loglet/internal/notify"
)

func TestOpenAndHealth(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if rt.Store() == nil {
		t.Fatal("nil store")
	}
	if _, disabled := rt.Notifier().(notify.Disabled); !disabled {
		t.Fatal("notifier should be disabled without credentials")
	}
}

func TestOpenWithNotifoCredentials(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Notifo.User = "svc"
	cfg.Notifo.Secret = "hush"
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	if _, disabled := rt.Notifier().(notify.Disabled); disabled {
		t.Fatal("notifier should be enabled with credentials")
	}
}

func TestStoreLimitsFromConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.MaxMessages = 7
	cfg.MaxLevel = 50
	rt, err := Open(Options{DataDir: t.TempDir(), Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })

	limits := rt.Store().Limits()
	if limits.MaxMessages != 7 || limits.MaxLevel != 50 {
		t.Fatalf("limits %+v not taken from config", limits)
	}
}
