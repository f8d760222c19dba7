package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the prediction service is reachable",
	Long: `Call the service health endpoint and report the round trip time.

Examples:
  xrdthermo ping
  xrdthermo ping --api-url http://lab-server:8000`,
	RunE: runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx, cancel := requestContext(cmd)
	defer cancel()

	start := time.Now()
	if err := apiClient.Health(ctx); err != nil {
		return fmt.Errorf("%s is not reachable: %w", apiClient.BaseURL(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is healthy (%s)\n", apiClient.BaseURL(), time.Since(start).Round(time.Millisecond))
	return nil
}
