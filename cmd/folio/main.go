// Folio serves the portfolio diagnostic matcher over HTTP.
//
// Usage:
//
//	# Start the server with defaults (~/.config/folio/config.yaml if present)
//	folio serve
//
//	# Configure via environment
//	FOLIO_SERVER_HTTP_PORT=9090 FOLIO_ADMIN_TOKEN=s3cret folio serve
//
//	# Load curated patterns and print counters
//	folio seed --file patterns.yaml
//	folio stats
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "folio",
		Short: "Diagnostic matcher for the portfolio help desk",
		Long: `folio answers "what is wrong with my app?" questions with likely causes,
debugging steps and the service that fits, and records every question asked.`,
		SilenceUsage: true,
		Version:      version,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/folio/config.yaml)")

	root.AddCommand(
		newServeCmd(&configPath),
		newSeedCmd(&configPath),
		newStatsCmd(&configPath),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "folio by Fyrsmith Labs\n")
	fmt.Fprintf(w, "Version:    %s\n", version)
	fmt.Fprintf(w, "Commit:     %s\n", gitCommit)
	fmt.Fprintf(w, "Build Date: %s\n", buildDate)
}
