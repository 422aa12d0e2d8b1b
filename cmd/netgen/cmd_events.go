package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/nvandessel/netgen/internal/store"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the event sequence of a stored topology",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

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

			info, err := store.LoadRunInfo(ctx, gs)
			if err != nil {
				return err
			}
			events, err := gs.Events(ctx)
			if err != nil {
				return fmt.Errorf("read events: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd, map[string]interface{}{
					"run_id": info.ID,
					"events": events,
					"count":  len(events),
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%s): %d events\n\n", info.ID, info.Model, len(events))
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tTYPE\tPOPULATION\tRECEPTOR\tFREQ\tLABEL")
			for _, ev := range events {
				freq := ""
				if ev.Freq != 0 {
					freq = fmt.Sprintf("%g", ev.Freq)
				}
				fmt.Fprintf(tw, "%g\t%s\t%s\t%s\t%s\t%s\n", ev.Time, ev.Type, ev.Population, ev.Receptor, freq, ev.Label)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().String("db-path", "", "SQLite database path (default .netgen/netgen.db)")
	cmd.Flags().String("snapshot", "", "Read the topology from a snapshot file")
	return cmd
}
