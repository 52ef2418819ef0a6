package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultDataDir picks the data directory for the message store when no
// flag or config value names one. Precedence: $XDG_DATA_HOME/loglet,
// then the platform convention, then ~/.loglet.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "loglet")
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data"
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Loglet")
	case "windows":
		if local := os.Getenv("LocalAppData"); local != "" {
			return filepath.Join(local, "Loglet")
		}
		return filepath.Join(home, "AppData", "Local", "Loglet")
	default:
		if st, err := os.Stat("/var/lib"); err == nil && st.IsDir() {
			return filepath.Join("/var/lib", "loglet")
		}
		return filepath.Join(home, ".loglet")
	}
}
