package config

import (
	"os"
	"strconv"
)

// FromEnv overlays LOGLET_* environment variables onto cfg. Environment
// values win over file values.
func FromEnv(cfg *Config) {
	if v := os.Getenv("LOGLET_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("LOGLET_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LOGLET_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	setInt(&cfg.MaxMessages, "LOGLET_MAX_MESSAGES")
	setInt(&cfg.MinLevel, "LOGLET_MIN_LEVEL")
	setInt(&cfg.MaxLevel, "LOGLET_MAX_LEVEL")
	setInt(&cfg.LevelWarn, "LOGLET_LEVEL_WARN")
	setInt(&cfg.LevelError, "LOGLET_LEVEL_ERROR")
	setInt(&cfg.MaxMessageLength, "LOGLET_MAX_MESSAGE_LENGTH")
	setInt(&cfg.MaxTitleLength, "LOGLET_MAX_TITLE_LENGTH")
	setInt(&cfg.MaxNotifyLength, "LOGLET_MAX_NOTIFY_LENGTH")
	setInt(&cfg.NotificationThreshold, "LOGLET_NOTIFICATION_THRESHOLD")
	setInt(&cfg.RefreshDelaySeconds, "LOGLET_REFRESH_DELAY_SECONDS")
	if v := os.Getenv("LOGLET_NOTIFO_USER"); v != "" {
		cfg.Notifo.User = v
	}
	if v := os.Getenv("LOGLET_NOTIFO_SECRET"); v != "" {
		cfg.Notifo.Secret = v
	}
	if v := os.Getenv("LOGLET_NOTIFO_API_URL"); v != "" {
		cfg.Notifo.APIURL = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
