package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	clientcmd "github.com/sampsyo/loglet/internal/cmd/client"
	serverrun "github.com/sampsyo/loglet/internal/cmd/server"
	cfgpkg "github.com/sampsyo/loglet/internal/config"
	pebblestore "github.com/sampsyo/loglet/internal/storage/pebble"
)

func main() {
	// Respect LOGLET_LOG_LEVEL for both CLI and server output.
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOGLET_LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	rootCmd := &cobra.Command{
		Use:   "loglet",
		Short: "Loglet hosted logging CLI",
		Long:  "Loglet is a tiny hosted logging service. This CLI runs the server and posts to logs.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the loglet server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			addr, _ := cmd.Flags().GetString("http")
			cfgPath, _ := cmd.Flags().GetString("config")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")

			mode := pebblestore.SyncModeAlways
			switch fsyncMode {
			case "never":
				mode = pebblestore.SyncModeNever
			case "interval":
				mode = pebblestore.SyncModeInterval
			case "always":
				mode = pebblestore.SyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			if logLevel != "" {
				lvl, err := logrus.ParseLevel(logLevel)
				if err != nil {
					return fmt.Errorf("invalid --log-level: %w", err)
				}
				logger.SetLevel(lvl)
			}

			cfg := cfgpkg.Default()
			if cfgPath != "" {
				var err error
				cfg, err = cfgpkg.Load(cfgPath)
				if err != nil {
					return err
				}
			}
			cfgpkg.FromEnv(&cfg)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:      dataDir,
				Addr:         addr,
				Sync:         mode,
				SyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:       cfg,
				Logger:       logger,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (default: OS-specific application data directory)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default from config, :8080)")
	serverStartCmd.Flags().String("config", os.Getenv("LOGLET_CONFIG"), "Config file (JSON or YAML)")
	serverStartCmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms")
	serverStartCmd.Flags().String("log-level", os.Getenv("LOGLET_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// client commands: create, post, dump. The process delivery mode in
	// pkg/loglet spawns `loglet post`, so these live at the root.
	clientcmd.Register(rootCmd, baseURL)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func baseURL() string {
	if v := os.Getenv("LOGLET_URL"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
