package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	dir := DefaultDataDir()
	if filepath.Base(dir) != "loglet" {
		t.Fatalf("XDG data dir %q does not end in loglet", dir)
	}
}

func TestDefaultDataDirNonEmpty(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	dir := DefaultDataDir()
	if dir == "" {
		t.Fatal("empty data dir")
	}
	if base := filepath.Base(dir); base != "loglet" && base != "Loglet" && base != ".loglet" && base != "data" {
		t.Fatalf("unexpected data dir %q", dir)
	}
}
