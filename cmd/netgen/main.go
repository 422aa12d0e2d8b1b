package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by the release build.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "netgen",
		Short: "Network topology generator for spiking neural network simulations",
		Long: `netgen expands a hierarchical network model into population instances,
connection tracts and stimulus events, and writes them in the formats the
simulator reads.

The model is a YAML file describing replication dimensions, a channel tree
of population templates, connection statements, stimulus handles and
transforms.`,
		SilenceUsage: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		newVersionCmd(),
		newGenerateCmd(),
		newValidateCmd(),
		newGraphCmd(),
		newEventsCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	cmd.PersistentFlags().String("root", ".", "Project root directory")
	cmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug, trace (default from config)")
	cmd.PersistentFlags().String("config", "", "Config file (default ~/.netgen/config.yaml)")
}
