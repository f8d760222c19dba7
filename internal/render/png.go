package render

import (
	"fmt"
	"io"

	"github.com/raphaelgruber/xrdthermo/internal/peak"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default PNG dimensions in pixels.
const (
	DefaultPNGWidth  = 1000
	DefaultPNGHeight = 500
)

var (
	traceColor = drawing.ColorFromHex("06b6d4")
	gridColor  = drawing.ColorFromHex("334155")
)

// PNG renders curve as a line chart and writes the encoded image to w.
func PNG(w io.Writer, curve peak.Curve, width, height int) error {
	if len(curve.Samples) == 0 {
		return fmt.Errorf("render png: curve has no samples")
	}
	if width <= 0 {
		width = DefaultPNGWidth
	}
	if height <= 0 {
		height = DefaultPNGHeight
	}

	series := chart.ContinuousSeries{
		Name:    "Diffraction Peak",
		XValues: curve.Angles(),
		YValues: curve.Intensities(),
		Style: chart.Style{
			StrokeColor: traceColor,
			StrokeWidth: 3,
			FillColor:   traceColor.WithAlpha(48),
		},
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("X-Ray Diffraction Analysis (%s, %.2f °C)", curve.Axis.Label, temperatureOf(curve)),
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "2θ (degrees)",
			Range: &chart.ContinuousRange{Min: curve.Axis.XMin, Max: curve.Axis.XMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
			GridMajorStyle: chart.Style{StrokeColor: gridColor, StrokeWidth: 0.5},
		},
		YAxis: chart.YAxis{
			Name:  "Intensity (a.u.)",
			Range: &chart.ContinuousRange{Min: 0, Max: curve.Axis.YMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
			GridMajorStyle: chart.Style{StrokeColor: gridColor, StrokeWidth: 0.5},
		},
		Series: []chart.Series{series},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

func temperatureOf(curve peak.Curve) float64 {
	if len(curve.Samples) == 0 {
		return 0
	}
	return curve.Samples[0].Temperature
}
