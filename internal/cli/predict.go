package cli

import (
	"fmt"

	"github.com/raphaelgruber/xrdthermo/internal/peak"
	"github.com/raphaelgruber/xrdthermo/internal/render"
	"github.com/raphaelgruber/xrdthermo/internal/state"
	"github.com/spf13/cobra"
)

var (
	peakPos       string
	peakFWHM      string
	peakIntensity string
	simulateTemp  string

	estimatePos       string
	estimateIntensity string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the temperature for a diffraction peak",
	Long: `Predict the sample temperature from peak position, FWHM and intensity.
Omitted values fall back to the configured peak.

Examples:
  xrdthermo predict --pos 25.64 --fwhm 0.22 --intensity 270
  xrdthermo predict --pos 25.41`,
	RunE: runPredict,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate the diffraction peak for a temperature",
	Long: `Simulate the peak parameters expected at a temperature in °C.

Examples:
  xrdthermo simulate --temp 150`,
	RunE: runSimulate,
}

var estimateCmd = &cobra.Command{
	Use:   "estimate-fwhm",
	Short: "Estimate the baseline FWHM for a peak",
	Long: `Estimate the baseline width of a peak from its position and maximum intensity.

Examples:
  xrdthermo estimate-fwhm --pos 30.0 --intensity 500`,
	RunE: runEstimate,
}

func init() {
	addPeakFlags(predictCmd)
	simulateCmd.Flags().StringVarP(&simulateTemp, "temp", "t", "", "temperature in °C (required)")
	_ = simulateCmd.MarkFlagRequired("temp")

	estimateCmd.Flags().StringVar(&estimatePos, "pos", state.DefaultEstimatorPosition, "peak position (2θ°)")
	estimateCmd.Flags().StringVar(&estimateIntensity, "intensity", state.DefaultEstimatorIntensity, "max intensity")
}

func addPeakFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&peakPos, "pos", "", "peak position (2θ°)")
	cmd.Flags().StringVar(&peakFWHM, "fwhm", "", "peak FWHM (°)")
	cmd.Flags().StringVar(&peakIntensity, "intensity", "", "peak intensity (a.u.)")
}

// peakFromFlags overlays the peak flags that were given on the configured peak.
func peakFromFlags() (peak.Parameters, error) {
	p := cfg.Params
	fields := []struct {
		name string
		text string
		dst  *float64
	}{
		{"position", peakPos, &p.Position},
		{"fwhm", peakFWHM, &p.Width},
		{"intensity", peakIntensity, &p.Height},
	}
	for _, f := range fields {
		if f.text == "" {
			continue
		}
		v, err := state.ParseNumber(f.name, f.text)
		if err != nil {
			return peak.Parameters{}, err
		}
		*f.dst = v
	}
	return p, nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	params, err := peakFromFlags()
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()

	temp, err := apiClient.Predict(ctx, params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Predicted temperature: %.2f °C\n", temp)
	fmt.Fprintf(out, "Peak shift: %+.4f°\n", params.Shift())
	if verbose {
		fmt.Fprintf(out, "Position: %.4f  FWHM: %.4f  Intensity: %.1f\n", params.Position, params.Width, params.Height)
	}
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	temp, err := state.ParseNumber("temperature", simulateTemp)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()

	params, err := apiClient.Simulate(ctx, temp)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Temperature: %.2f °C\n", temp)
	fmt.Fprintf(out, "Position:  %.4f°\n", params.Position)
	fmt.Fprintf(out, "FWHM:      %.4f°\n", params.Width)
	fmt.Fprintf(out, "Intensity: %.1f\n", params.Height)
	fmt.Fprintf(out, "Range:     %s\n", render.Badge(peak.Axis(params)))
	return nil
}

func runEstimate(cmd *cobra.Command, args []string) error {
	pos, err := state.ParseNumber("peak position", estimatePos)
	if err != nil {
		return err
	}
	intensity, err := state.ParseNumber("max intensity", estimateIntensity)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(cmd)
	defer cancel()

	est, err := apiClient.EstimateFWHM(ctx, pos, intensity)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Baseline FWHM: %.4f°\n", est.FWHM)
	fmt.Fprintf(out, "Peak shift:    %+.4f°\n", est.PeakShift)
	if verbose && est.Status != "" {
		fmt.Fprintf(out, "Status: %s\n", est.Status)
	}
	return nil
}
