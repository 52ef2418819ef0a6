package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MaxMessages != 512 {
		t.Fatalf("default MaxMessages = %d", cfg.MaxMessages)
	}
	if cfg.MinLevel != 0 || cfg.MaxLevel != 100 {
		t.Fatalf("default level range [%d, %d]", cfg.MinLevel, cfg.MaxLevel)
	}
	if cfg.NotificationThreshold != 50 {
		t.Fatalf("default threshold = %d", cfg.NotificationThreshold)
	}
	if cfg.Addr == "" || cfg.BaseURL == "" || cfg.DataDir == "" {
		t.Fatalf("empty default addr/baseURL/dataDir: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "loglet.json")
	data := []byte(`{"addr":":9000","maxMessages":64,"notifo":{"user":"svc"}}`)
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.MaxMessages != 64 || cfg.Notifo.User != "svc" {
		t.Fatalf("loaded %+v", cfg)
	}
	// Untouched fields keep their defaults.
	if cfg.MaxLevel != 100 {
		t.Fatalf("MaxLevel lost its default: %d", cfg.MaxLevel)
	}
}

func TestLoadYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "loglet.yaml")
	data := []byte("addr: \":9001\"\nmaxMessages: 32\nnotifo:\n  user: svc\n  secret: hush\n")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9001" || cfg.MaxMessages != 32 || cfg.Notifo.Secret != "hush" {
		t.Fatalf("loaded %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOGLET_ADDR", ":7070")
	t.Setenv("LOGLET_MAX_MESSAGES", "9")
	t.Setenv("LOGLET_NOTIFICATION_THRESHOLD", "not-a-number")
	t.Setenv("LOGLET_NOTIFO_USER", "envuser")

	cfg := Default()
	FromEnv(&cfg)
	if cfg.Addr != ":7070" {
		t.Fatalf("addr %q", cfg.Addr)
	}
	if cfg.MaxMessages != 9 {
		t.Fatalf("maxMessages %d", cfg.MaxMessages)
	}
	// Unparsable numeric env values are ignored.
	if cfg.NotificationThreshold != 50 {
		t.Fatalf("threshold %d", cfg.NotificationThreshold)
	}
	if cfg.Notifo.User != "envuser" {
		t.Fatalf("notifo user %q", cfg.Notifo.User)
	}
}
