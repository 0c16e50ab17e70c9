package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load curated issue patterns",
		Long: `Load curated issue patterns into the store.

Patterns whose id already exists are left untouched, so seeding is safe to
repeat. Without --file the built-in catalog is used.

Examples:
  # Load the built-in catalog
  folio seed

  # Load a custom catalog
  folio seed --file ./patterns.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath, appOptions{quiet: true})
			if err != nil {
				return err
			}
			defer a.Close()

			added, total, err := a.seed(cmd.Context(), file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d of %d patterns (%d already present)\n", added, total, total-added)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed catalog YAML (default: built-in catalog)")
	return cmd
}
