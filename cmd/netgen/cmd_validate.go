package main

import (
	"fmt"

	"github.com/nvandessel/netgen/internal/models"
	"github.com/nvandessel/netgen/internal/topology"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate MODEL.yaml",
		Short: "Check a model file without generating",
		Long: `Report unknown population, handle and receptor names, missing dimensions,
invalid patterns and transforms, and syn/anti patterns across dimensions of
different cardinality. Exits non-zero if any issue would abort generation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			strict := cfg.Generation.Strict
			if cmd.Flags().Changed("strict") {
				strict, _ = cmd.Flags().GetBool("strict")
			}

			m, err := models.LoadModel(resolveUnder(root, args[0]))
			if err != nil {
				return err
			}

			issues := topology.Validate(m)
			fatal := 0
			for _, is := range issues {
				if is.Fatal(strict) {
					fatal++
				}
			}

			if jsonOut {
				if issues == nil {
					issues = []topology.Issue{}
				}
				if err := writeJSON(cmd, map[string]interface{}{
					"model":  args[0],
					"valid":  fatal == 0,
					"errors": fatal,
					"issues": issues,
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				if len(issues) == 0 {
					fmt.Fprintf(out, "%s: no issues found\n", args[0])
				}
				for _, is := range issues {
					fmt.Fprintln(out, is.String())
				}
			}

			if fatal > 0 {
				return fmt.Errorf("%s: %d issue(s) would abort generation", args[0], fatal)
			}
			return nil
		},
	}

	cmd.Flags().Bool("strict", false, "Treat unknown names as errors")
	return cmd
}
