// Package config loads loglet configuration from defaults, an optional
// JSON or YAML file, and LOGLET_* environment variable overlays, in that
// precedence order (env wins).
package config
