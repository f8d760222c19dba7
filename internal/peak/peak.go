// Package peak synthesizes the Gaussian diffraction peak and its display axes.
package peak

import "math"

const (
	// SampleCount is the number of points in every synthesized curve.
	SampleCount = 201

	// AxisBuffer is the angular margin kept on each side of the peak position.
	AxisBuffer = 0.75

	// FWHMToSigma converts a full width at half maximum into a Gaussian sigma.
	FWHMToSigma = 2.355

	// RoomTemperaturePeak is the 2θ position of the reference peak at room temperature.
	RoomTemperaturePeak = 25.64

	// sigmaEpsilon is the sigma below which the peak always collapses to an indicator.
	sigmaEpsilon = 1e-9
)

// Parameters describes a single diffraction peak.
type Parameters struct {
	Position float64 `json:"pos" yaml:"position"`
	Width    float64 `json:"fwhm" yaml:"width"`
	Height   float64 `json:"intensity" yaml:"height"`
}

// Shift returns the displacement of the peak from its room temperature position.
func (p Parameters) Shift() float64 {
	return p.Position - RoomTemperaturePeak
}

// Sample is one point of a synthesized curve.
// Temperature is the prediction displayed alongside the curve.
type Sample struct {
	Angle       float64 `json:"two_theta"`
	Intensity   float64 `json:"intensity"`
	Temperature float64 `json:"temperature"`
}

// AxisRange holds the viewport derived from a set of parameters.
type AxisRange struct {
	XMin     float64
	XMax     float64
	YMax     float64
	Label    string
	Severity Severity
}

// Curve is a fully synthesized peak ready for rendering.
type Curve struct {
	Params  Parameters
	Axis    AxisRange
	Step    float64
	Samples []Sample
}

// Bounds returns the x-axis viewport for a peak at position, snapped outward
// to the nearest half degree.
func Bounds(position float64) (xMin, xMax float64) {
	xMin = math.Floor((position-AxisBuffer)*2) / 2
	xMax = math.Ceil((position+AxisBuffer)*2) / 2
	return xMin, xMax
}

// Axis computes the full viewport for params.
func Axis(params Parameters) AxisRange {
	xMin, xMax := Bounds(params.Position)
	tier := Classify(params.Height)
	return AxisRange{
		XMin:     xMin,
		XMax:     xMax,
		YMax:     tier.YMax,
		Label:    tier.Label,
		Severity: tier.Severity,
	}
}

// Synthesize samples the Gaussian described by params across its viewport.
// The curve is regenerated in full; temperature is attached to every sample.
func Synthesize(params Parameters, temperature float64) Curve {
	axis := Axis(params)
	step := (axis.XMax - axis.XMin) / float64(SampleCount-1)
	sigma := params.Width / FWHMToSigma

	samples := make([]Sample, SampleCount)
	for i := range samples {
		samples[i] = Sample{
			Angle:       axis.XMin + float64(i)*step,
			Temperature: temperature,
		}
	}

	nearest := min(max(int(math.Round((params.Position-axis.XMin)/step)), 0), SampleCount-1)
	twoSigmaSq := 2 * sigma * sigma
	if math.Abs(sigma) < sigmaEpsilon || underflows(samples[nearest].Angle-params.Position, twoSigmaSq) {
		// Indicator peak: all of the height sits on the sample nearest the position.
		samples[nearest].Intensity = params.Height
	} else {
		for i := range samples {
			d := samples[i].Angle - params.Position
			samples[i].Intensity = params.Height * math.Exp(-(d*d)/twoSigmaSq)
		}
	}

	return Curve{
		Params:  params,
		Axis:    axis,
		Step:    step,
		Samples: samples,
	}
}

// underflows reports whether the Gaussian is already zero at distance d,
// which happens when the peak is much narrower than the sampling step.
func underflows(d, twoSigmaSq float64) bool {
	return math.Exp(-(d*d)/twoSigmaSq) == 0
}

// Peak returns the sample with the highest intensity.
// Ties keep the first occurrence.
func (c Curve) Peak() Sample {
	if len(c.Samples) == 0 {
		return Sample{}
	}
	best := c.Samples[0]
	for _, s := range c.Samples[1:] {
		if s.Intensity > best.Intensity {
			best = s
		}
	}
	return best
}

// Angles returns the x values of the curve.
func (c Curve) Angles() []float64 {
	xs := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		xs[i] = s.Angle
	}
	return xs
}

// Intensities returns the y values of the curve.
func (c Curve) Intensities() []float64 {
	ys := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		ys[i] = s.Intensity
	}
	return ys
}
