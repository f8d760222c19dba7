package peak

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		height   float64
		yMax     float64
		label    string
		severity Severity
	}{
		{"zero", 0, 300, "Low Range (0-300)", SeverityInfo},
		{"low boundary", 300, 300, "Low Range (0-300)", SeverityInfo},
		{"just above low", 300.001, 500, "Mid Range (0-500)", SeverityWarning},
		{"mid boundary", 500, 500, "Mid Range (0-500)", SeverityWarning},
		{"just above mid", 500.001, 1000, "Full Scale (0-1000)", SeverityCritical},
		{"full", 1000, 1000, "Full Scale (0-1000)", SeverityCritical},
		{"beyond full", 5000, 1000, "Full Scale (0-1000)", SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.height)
			assert.Equal(t, tt.yMax, got.YMax)
			assert.Equal(t, tt.label, got.Label)
			assert.Equal(t, tt.severity, got.Severity)
		})
	}
}

func TestBounds(t *testing.T) {
	xMin, xMax := Bounds(25.64)
	assert.Equal(t, 24.5, xMin)
	assert.Equal(t, 26.5, xMax)

	for _, pos := range []float64{20, 24.99, 25, 25.25, 25.5, 25.751, 26.5, 33.3, 39.9} {
		xMin, xMax := Bounds(pos)
		assert.LessOrEqual(t, xMin, pos, "xMin for %v", pos)
		assert.GreaterOrEqual(t, xMax, pos, "xMax for %v", pos)
		assert.GreaterOrEqual(t, xMax-xMin, 1.5, "span for %v", pos)
		assert.Equal(t, 0.0, math.Mod(xMin*2, 1), "xMin snapped for %v", pos)
		assert.Equal(t, 0.0, math.Mod(xMax*2, 1), "xMax snapped for %v", pos)
	}
}

func TestSynthesizeShape(t *testing.T) {
	params := Parameters{Position: 25.64, Width: 0.22, Height: 270}
	curve := Synthesize(params, 42)

	require.Len(t, curve.Samples, SampleCount)
	assert.Equal(t, 24.5, curve.Samples[0].Angle)
	assert.InDelta(t, 26.5, curve.Samples[SampleCount-1].Angle, 1e-9)
	assert.InDelta(t, 0.01, curve.Step, 1e-12)

	for i := 1; i < len(curve.Samples); i++ {
		assert.Greater(t, curve.Samples[i].Angle, curve.Samples[i-1].Angle)
	}
	for _, s := range curve.Samples {
		assert.Equal(t, 42.0, s.Temperature)
		assert.False(t, math.IsNaN(s.Intensity))
	}

	assert.Equal(t, "Low Range (0-300)", curve.Axis.Label)
	assert.Equal(t, 300.0, curve.Axis.YMax)

	top := curve.Peak()
	assert.InDelta(t, 25.64, top.Angle, curve.Step)
	assert.InDelta(t, 270, top.Intensity, 2)
}

func TestSynthesizeHalfMaximum(t *testing.T) {
	// Position on a sample so the half-maximum points land on the grid.
	params := Parameters{Position: 25.5, Width: 0.2, Height: 400}
	curve := Synthesize(params, 0)

	var left, right float64
	for _, s := range curve.Samples {
		if math.Abs(s.Angle-(25.5-0.1)) < 1e-9 {
			left = s.Intensity
		}
		if math.Abs(s.Angle-(25.5+0.1)) < 1e-9 {
			right = s.Intensity
		}
	}
	// 2.355 is a rounded constant, so half maximum is only approximate.
	assert.InDelta(t, 200, left, 1)
	assert.InDelta(t, 200, right, 1)
}

func TestSynthesizePeakNearPosition(t *testing.T) {
	for _, pos := range []float64{25.0, 25.123, 25.64, 26.01, 26.5} {
		for _, width := range []float64{0.1, 0.22, 0.5} {
			curve := Synthesize(Parameters{Position: pos, Width: width, Height: 600}, 0)
			top := curve.Peak()
			assert.LessOrEqual(t, math.Abs(top.Angle-pos), curve.Step, "pos=%v width=%v", pos, width)
			assert.LessOrEqual(t, top.Intensity, 600.0)
			assert.Equal(t, "Full Scale (0-1000)", curve.Axis.Label)
		}
	}
}

func TestSynthesizeDegenerateWidth(t *testing.T) {
	for _, width := range []float64{0, 1e-12, -1e-12} {
		curve := Synthesize(Parameters{Position: 25.64, Width: width, Height: 270}, 0)

		var nonZero int
		for _, s := range curve.Samples {
			require.False(t, math.IsNaN(s.Intensity), "width=%v", width)
			if s.Intensity != 0 {
				nonZero++
			}
		}
		assert.Equal(t, 1, nonZero, "width=%v", width)

		top := curve.Peak()
		assert.Equal(t, 270.0, top.Intensity)
		assert.InDelta(t, 25.64, top.Angle, curve.Step/2+1e-9)
	}
}

func TestSynthesizeSubStepWidthOffGrid(t *testing.T) {
	for _, width := range []float64{1e-4, 1e-6} {
		curve := Synthesize(Parameters{Position: 25.6453, Width: width, Height: 270}, 0)

		top := curve.Peak()
		assert.Equal(t, 270.0, top.Intensity, "width=%v", width)
		assert.InDelta(t, 25.6453, top.Angle, curve.Step, "width=%v", width)
	}
}

func TestSynthesizeNarrowWidthKeepsGaussian(t *testing.T) {
	curve := Synthesize(Parameters{Position: 25.6453, Width: 0.001, Height: 270}, 0)

	var nonZero int
	for _, s := range curve.Samples {
		if s.Intensity != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 1)
	assert.InDelta(t, 25.6453, curve.Peak().Angle, curve.Step)
}

func TestSynthesizeNegativeWidth(t *testing.T) {
	pos := Synthesize(Parameters{Position: 25.64, Width: 0.3, Height: 500}, 0)
	neg := Synthesize(Parameters{Position: 25.64, Width: -0.3, Height: 500}, 0)
	assert.Equal(t, pos.Intensities(), neg.Intensities())
}

func TestPeakEmptyCurve(t *testing.T) {
	assert.Equal(t, Sample{}, Curve{}.Peak())
}

func TestShift(t *testing.T) {
	assert.InDelta(t, 0.36, Parameters{Position: 26.0}.Shift(), 1e-9)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "critical", SeverityCritical.String())
	assert.Equal(t, "unknown", Severity(9).String())
}
