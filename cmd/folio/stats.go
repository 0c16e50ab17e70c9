package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show diagnose counters from the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath, appOptions{quiet: true})
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.svc.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read stats: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Database:\t%s\n", a.store.Path())
			fmt.Fprintf(w, "Diagnoses:\t%d\n", stats.DiagRuns)
			fmt.Fprintf(w, "Matched:\t%d\n", stats.PatternsMatched)
			fmt.Fprintf(w, "Patterns:\t%d\n", stats.Patterns)
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
