package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr" yaml:"addr"`
	// DataDir is where the Pebble store lives.
	DataDir string `json:"dataDir" yaml:"dataDir"`
	// BaseURL is the externally visible root of the service, used for
	// redirect targets, feed links, and notification URIs.
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// MaxMessages is the per-log retention cap.
	MaxMessages int `json:"maxMessages" yaml:"maxMessages"`
	// MinLevel and MaxLevel bound message severity levels.
	MinLevel int `json:"minLevel" yaml:"minLevel"`
	MaxLevel int `json:"maxLevel" yaml:"maxLevel"`
	// LevelWarn and LevelError are display thresholds for styling.
	LevelWarn  int `json:"levelWarn" yaml:"levelWarn"`
	LevelError int `json:"levelError" yaml:"levelError"`
	// MaxMessageLength, MaxTitleLength, MaxNotifyLength truncate input.
	MaxMessageLength int `json:"maxMessageLength" yaml:"maxMessageLength"`
	MaxTitleLength   int `json:"maxTitleLength" yaml:"maxTitleLength"`
	MaxNotifyLength  int `json:"maxNotifyLength" yaml:"maxNotifyLength"`

	// NotificationThreshold is the minimum stored level that triggers an
	// external push notification.
	NotificationThreshold int `json:"notificationThreshold" yaml:"notificationThreshold"`
	// RefreshDelaySeconds drives the HTML view's auto-refresh meta tag.
	RefreshDelaySeconds int `json:"refreshDelaySeconds" yaml:"refreshDelaySeconds"`

	Notifo NotifoConfig `json:"notifo" yaml:"notifo"`
}

// NotifoConfig holds the service credentials for the Notifo push provider.
// Leaving User empty disables notifications entirely.
type NotifoConfig struct {
	User   string `json:"user" yaml:"user"`
	Secret string `json:"secret" yaml:"secret"`
	// APIURL overrides the provider endpoint; tests point it at a fake.
	APIURL string `json:"apiUrl" yaml:"apiUrl"`
}

// Default returns built-in defaults matching the hosted service.
func Default() Config {
	return Config{
		Addr:                  ":8080",
		DataDir:               DefaultDataDir(),
		BaseURL:               "http://localhost:8080",
		MaxMessages:           512,
		MinLevel:              0,
		MaxLevel:              100,
		LevelWarn:             30,
		LevelError:            40,
		MaxMessageLength:      4096,
		MaxTitleLength:        256,
		MaxNotifyLength:       128,
		NotificationThreshold: 50,
		RefreshDelaySeconds:   60,
	}
}

// Load reads configuration from a JSON or YAML file (by extension),
// starting from defaults. An empty path returns defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
