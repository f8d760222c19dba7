package cli

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/xrdthermo/internal/state"
	"github.com/raphaelgruber/xrdthermo/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// snapshotWidth is the plot width used when stdout is not a terminal.
const snapshotWidth = 80

var consoleCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive console",
	Long: `Open the interactive console with the temperature predictor and the
FWHM estimator.

When stdout is not a terminal a single snapshot of the predictor is printed
instead.

Examples:
  xrdthermo
  xrdthermo tui --api-url http://lab-server:8000
  xrdthermo tui | cat`,
	RunE: runConsole,
}

func newController() *state.Controller {
	return state.New(apiClient, state.Config{
		Params:      cfg.Params,
		Temperature: cfg.Temperature,
		AutoSync:    cfg.AutoSync,
		Timeout:     cfg.RequestTimeout,
	}, logger)
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctrl := newController()
	defer ctrl.Close()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return printSnapshot(cmd, ctrl)
	}
	return tui.Run(ctrl, apiClient.Metrics())
}

// printSnapshot runs the initial exchange synchronously and prints the result.
func printSnapshot(cmd *cobra.Command, ctrl *state.Controller) error {
	if ex := ctrl.Start(); ex != nil {
		ctrl.Resolve(ex.Run())
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), tui.Snapshot(ctrl.Snapshot(), snapshotWidth))
	return err
}
