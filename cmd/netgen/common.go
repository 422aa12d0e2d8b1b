package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nvandessel/netgen/internal/config"
	"github.com/nvandessel/netgen/internal/logging"
	"github.com/nvandessel/netgen/internal/snapshot"
	"github.com/nvandessel/netgen/internal/store"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file named by --config, or the default
// locations, then applies the global --log-level flag.
func loadConfig(cmd *cobra.Command) (*config.NetgenConfig, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.NetgenConfig
	var err error
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the operational logger. Logs go to stderr so stdout
// stays parseable.
func newLogger(cmd *cobra.Command, cfg *config.NetgenConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

// resolveUnder joins a relative path onto root.
func resolveUnder(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// dbPathFor returns the --db-path flag or the configured database path.
func dbPathFor(cmd *cobra.Command, cfg *config.NetgenConfig, root string) string {
	if p, _ := cmd.Flags().GetString("db-path"); p != "" {
		return resolveUnder(root, p)
	}
	return cfg.DBPath(root)
}

// openStoredRun opens the topology to read from: a snapshot file restored
// into memory when --snapshot is set, otherwise the SQLite store.
func openStoredRun(ctx context.Context, cmd *cobra.Command, cfg *config.NetgenConfig) (store.GraphStore, error) {
	root, _ := cmd.Flags().GetString("root")

	if snapPath, _ := cmd.Flags().GetString("snapshot"); snapPath != "" {
		snap, err := snapshot.Read(resolveUnder(root, snapPath))
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		gs := store.NewInMemoryGraphStore()
		if _, err := snapshot.Restore(ctx, gs, snap); err != nil {
			gs.Close()
			return nil, err
		}
		return gs, nil
	}

	dbPath := dbPathFor(cmd, cfg, root)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("no stored topology at %s: run 'netgen generate --store sqlite' or pass --snapshot", dbPath)
	}
	return store.NewSQLiteGraphStore(dbPath)
}

// writeJSON encodes v as indented JSON on the command's stdout.
func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// commandContext returns a context cancelled on SIGINT or SIGTERM.
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
