package server

import (
	"math"

	"github.com/raphaelgruber/xrdthermo/internal/peak"
)

// Model answers the three questions the console asks the service.
type Model interface {
	Predict(params peak.Parameters) float64
	Simulate(temperature float64) peak.Parameters
	EstimateFWHM(position, intensity float64) float64
}

// Linear is a surrogate with a linear thermal response around room
// temperature. Predict inverts Simulate exactly.
type Linear struct {
	// RoomTemperature is the reference temperature in °C.
	RoomTemperature float64
	// Peak holds the parameters at RoomTemperature.
	Peak peak.Parameters

	// Per-degree drift of each parameter.
	PositionSlope  float64
	WidthSlope     float64
	IntensitySlope float64

	// PositionWeight is the share of the prediction taken from the position
	// shift; the rest comes from the broadening.
	PositionWeight float64
}

// DefaultLinear approximates the CdSe reference peak.
func DefaultLinear() *Linear {
	return &Linear{
		RoomTemperature: 25,
		Peak:            peak.Parameters{Position: peak.RoomTemperaturePeak, Width: 0.22, Height: 270},
		PositionSlope:   -0.0012,
		WidthSlope:      0.0002,
		IntensitySlope:  -0.4,
		PositionWeight:  0.8,
	}
}

// Predict estimates the temperature from the position shift and broadening.
func (l *Linear) Predict(p peak.Parameters) float64 {
	fromPos := (p.Position - l.Peak.Position) / l.PositionSlope
	fromWidth := (p.Width - l.Peak.Width) / l.WidthSlope
	return l.RoomTemperature + l.PositionWeight*fromPos + (1-l.PositionWeight)*fromWidth
}

// Simulate returns the parameters expected at temperature. The intensity
// does not drop below the smallest value the console accepts.
func (l *Linear) Simulate(temperature float64) peak.Parameters {
	dt := temperature - l.RoomTemperature
	return peak.Parameters{
		Position: l.Peak.Position + l.PositionSlope*dt,
		Width:    l.Peak.Width + l.WidthSlope*dt,
		Height:   math.Max(100, l.Peak.Height+l.IntensitySlope*dt),
	}
}

// EstimateFWHM grows the baseline width with the distance from the reference
// position and shrinks it with intensity. Intensities below 1 count as 1.
func (l *Linear) EstimateFWHM(position, intensity float64) float64 {
	shift := math.Abs(position - peak.RoomTemperaturePeak)
	return 0.2 + 0.15*shift + 10/math.Max(intensity, 1)
}
