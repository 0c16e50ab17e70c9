package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/folio/internal/diagnose"
)

func newDiagnoseCmd(c *client) *cobra.Command {
	var (
		req    diagnose.Request
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "diagnose <description>",
		Short: "Diagnose a problem description",
		Long: `Submit a problem description and print likely causes, debugging steps,
complexity and the recommended service.

Examples:
  # Describe the problem
  folioctl diagnose "Getting a CORS error when calling the API"

  # Add context
  folioctl diagnose "page is blank after deploy" --tech-stack "Next.js" --env production

  # Raw JSON
  folioctl diagnose "login loops back to the sign-in page" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Description = strings.Join(args, " ")

			var res diagnose.Result
			if err := c.do(cmd.Context(), http.MethodPost, "/api/diagnose", req, &res); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), &res)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.TechStack, "tech-stack", "", "technologies involved")
	cmd.Flags().StringVar(&req.ErrorMessage, "error", "", "error message text")
	cmd.Flags().StringVar(&req.Environment, "env", "", "environment where the problem occurs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func printResult(w io.Writer, res *diagnose.Result) {
	fmt.Fprintf(w, "Match:       %s\n", res.Outcome())
	fmt.Fprintf(w, "Complexity:  %s\n", res.Complexity)
	fmt.Fprintf(w, "Service:     %s\n", res.RecommendedService)
	if res.ID != "" {
		fmt.Fprintf(w, "Reference:   %s\n", res.ID)
	}

	fmt.Fprintln(w, "\nPossible causes:")
	for i, cause := range res.PossibleCauses {
		fmt.Fprintf(w, "  %d. %s\n", i+1, cause)
	}
	fmt.Fprintln(w, "\nDebug steps:")
	for i, step := range res.DebugSteps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
}

func newStatsCmd(c *client) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show server diagnose counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var stats diagnose.Stats
			if err := c.do(cmd.Context(), http.MethodGet, "/api/stats", nil, &stats); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Diagnoses:\t%d\n", stats.DiagRuns)
			fmt.Fprintf(w, "Matched:\t%d\n", stats.PatternsMatched)
			fmt.Fprintf(w, "Patterns:\t%d\n", stats.Patterns)
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// healthResponse matches internal/http HealthResponse.
type healthResponse struct {
	Status string `json:"status"`
}

func newHealthCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check folio server health",
		Long: `Check the health status of the folio HTTP server.

Examples:
  # Check health
  folioctl health

  # Check health on a different server
  folioctl health --server http://localhost:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var health healthResponse
			if err := c.do(cmd.Context(), http.MethodGet, "/health", nil, &health); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server Status: %s\n", health.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "Server URL: %s\n", c.serverURL)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
