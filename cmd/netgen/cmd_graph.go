package main

import (
	"fmt"

	"github.com/nvandessel/netgen/internal/visualization"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Visualize a stored topology",
		Long: `Output a stored topology in DOT (Graphviz) or JSON format. The topology is
read from the SQLite store, or from a snapshot file with --snapshot.

Examples:
  netgen graph | dot -Tsvg > network.svg
  netgen graph --snapshot runs/bg.snap --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			gs, err := openStoredRun(ctx, cmd, cfg)
			if err != nil {
				return err
			}
			defer gs.Close()

			switch visualization.Format(format) {
			case visualization.FormatDOT:
				dot, err := visualization.RenderDOT(ctx, gs)
				if err != nil {
					return fmt.Errorf("render DOT: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), dot)

			case visualization.FormatJSON:
				result, err := visualization.RenderJSON(ctx, gs)
				if err != nil {
					return fmt.Errorf("render JSON: %w", err)
				}
				if err := writeJSON(cmd, result); err != nil {
					return fmt.Errorf("encode JSON: %w", err)
				}

			default:
				return fmt.Errorf("unsupported format %q (use 'dot' or 'json')", format)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "dot", "Output format: dot or json")
	cmd.Flags().String("db-path", "", "SQLite database path (default .netgen/netgen.db)")
	cmd.Flags().String("snapshot", "", "Read the topology from a snapshot file")
	return cmd
}
