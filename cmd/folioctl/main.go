// Package main implements the folioctl CLI for manual operations against the folio HTTP server.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version information
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &client{}

	root := &cobra.Command{
		Use:   "folioctl",
		Short: "CLI for folio HTTP server operations",
		Long: `folioctl is a command-line interface for interacting with the folio HTTP server.
It submits diagnose requests and reads server stats and health.`,
		SilenceUsage: true,
		Version:      version,
	}
	root.PersistentFlags().StringVar(&c.serverURL, "server", "http://localhost:8080", "folio server URL")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", defaultTimeout, "request timeout")

	root.AddCommand(
		newDiagnoseCmd(c),
		newStatsCmd(c),
		newHealthCmd(c),
	)
	return root
}
