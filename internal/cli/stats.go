package cli

import (
	"fmt"

	"github.com/raphaelgruber/xrdthermo/internal/metrics"
	"github.com/spf13/cobra"
)

// printClientStats displays request statistics for this invocation on stderr.
func printClientStats(cmd *cobra.Command, stats metrics.Snapshot) {
	if stats.Predict == nil && stats.Simulate == nil && stats.EstimateFWHM == nil {
		return
	}

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "\nClient Statistics\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(w, "Uptime: %.1f seconds\n", stats.UptimeSeconds)

	ops := []struct {
		name string
		op   *metrics.OperationSnapshot
	}{
		{"Predict", stats.Predict},
		{"Simulate", stats.Simulate},
		{"Estimate FWHM", stats.EstimateFWHM},
	}
	for _, o := range ops {
		if o.op == nil {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", o.name)
		fmt.Fprintf(w, "  Calls: %d, Failures: %d, Total: %dms\n", o.op.Count, o.op.Failures, o.op.TotalTimeMs)
		fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n", o.op.AvgTimeMs, o.op.MinTimeMs, o.op.MaxTimeMs)
	}
}
