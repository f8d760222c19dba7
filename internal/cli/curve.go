package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/raphaelgruber/xrdthermo/internal/peak"
	"github.com/raphaelgruber/xrdthermo/internal/render"
	"github.com/raphaelgruber/xrdthermo/internal/state"
	"github.com/spf13/cobra"
)

var (
	curveTemp    string
	curvePNG     string
	curveWidth   int
	curveHeight  int
	exportOutput string
	exportFetch  bool
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Plot the synthesized peak",
	Long: `Plot the Gaussian peak for the given parameters in the terminal, or
render it to a PNG file.

Examples:
  xrdthermo curve --pos 25.64 --fwhm 0.22 --intensity 270
  xrdthermo curve --intensity 800 --png peak.png --width 1200 --height 600`,
	RunE: runCurve,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the synthesized peak to an Excel workbook",
	Long: `Export the peak parameters, axis range and all samples to an .xlsx file.
With --predict the temperature is fetched from the prediction service first.

Examples:
  xrdthermo export -o peak.xlsx
  xrdthermo export --pos 25.41 --predict -o hot.xlsx`,
	RunE: runExport,
}

func init() {
	addPeakFlags(curveCmd)
	curveCmd.Flags().StringVarP(&curveTemp, "temp", "t", "", "temperature shown with the curve (°C)")
	curveCmd.Flags().StringVar(&curvePNG, "png", "", "write a PNG chart to this file")
	curveCmd.Flags().IntVar(&curveWidth, "width", 0, "plot width (cells, or pixels with --png)")
	curveCmd.Flags().IntVar(&curveHeight, "height", 0, "plot height (cells, or pixels with --png)")

	addPeakFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output .xlsx file (required)")
	exportCmd.Flags().BoolVar(&exportFetch, "predict", false, "predict the temperature before exporting")
	_ = exportCmd.MarkFlagRequired("output")
}

func runCurve(cmd *cobra.Command, args []string) error {
	params, err := peakFromFlags()
	if err != nil {
		return err
	}
	temp := cfg.Temperature
	if curveTemp != "" {
		if temp, err = state.ParseNumber("temperature", curveTemp); err != nil {
			return err
		}
	}
	curve := peak.Synthesize(params, temp)

	if curvePNG != "" {
		if err := writePNG(curvePNG, curve); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", curvePNG)
		return nil
	}

	width, height := curveWidth, curveHeight
	if width <= 0 {
		width = snapshotWidth - 10
	}
	if height <= 0 {
		height = 12
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, render.ASCII(curve, width, height))
	fmt.Fprintf(out, "%s  Peak shift %+.4f°  Temperature %.2f °C\n", render.Badge(curve.Axis), params.Shift(), temp)
	return nil
}

func writePNG(path string, curve peak.Curve) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return render.PNG(f, curve, curveWidth, curveHeight)
}

func runExport(cmd *cobra.Command, args []string) error {
	params, err := peakFromFlags()
	if err != nil {
		return err
	}

	temp := cfg.Temperature
	if exportFetch {
		ctx, cancel := requestContext(cmd)
		defer cancel()
		if temp, err = apiClient.Predict(ctx, params); err != nil {
			return err
		}
	}

	if err := render.XLSX(exportOutput, peak.Synthesize(params, temp)); err != nil {
		return err
	}
	logger.Info("exported workbook", "file", exportOutput, "temperature", temp)
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d samples to %s\n", peak.SampleCount, exportOutput)
	return nil
}
