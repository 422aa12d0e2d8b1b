package main

import (
	"fmt"

	"github.com/nvandessel/netgen/internal/mcp"
	"github.com/nvandessel/netgen/internal/store"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run an MCP server over stdio",
		Long: `Serve the netgen_generate, netgen_graph, netgen_validate and netgen_events
tools over stdio. Model paths are resolved relative to --root and may not
leave it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			gs, err := store.NewStore(cfg.Store.Backend, dbPathFor(cmd, cfg, root))
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "netgen",
				Version: version,
				Root:    root,
				Seed:    cfg.Generation.Seed,
				Strict:  cfg.Generation.Strict,
				Store:   gs,
				Logger:  newLogger(cmd, cfg),
			})
			if err != nil {
				gs.Close()
				return fmt.Errorf("create MCP server: %w", err)
			}
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().String("db-path", "", "SQLite database path (default .netgen/netgen.db)")
	return cmd
}
