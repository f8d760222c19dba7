package state

import (
	"fmt"
	"math"
)

// Mode selects which side of the prediction is user input.
type Mode int

const (
	// ModeForward takes peak parameters as input and predicts a temperature.
	ModeForward Mode = iota
	// ModeInverse takes a temperature as input and simulates peak parameters.
	ModeInverse
)

func (m Mode) String() string {
	if m == ModeInverse {
		return "Inverse Mode"
	}
	return "Forward Mode"
}

// Description is the one-line explanation shown under the mode switch.
func (m Mode) Description() string {
	if m == ModeInverse {
		return "Simulate XRD from Temp"
	}
	return "Predict Temp from XRD"
}

// Tab is the active view.
type Tab int

const (
	TabPredictor Tab = iota
	TabFWHM
)

func (t Tab) String() string {
	if t == TabFWHM {
		return "FWHM Estimator"
	}
	return "Temperature Predictor"
}

// Next returns the other tab.
func (t Tab) Next() Tab {
	if t == TabPredictor {
		return TabFWHM
	}
	return TabPredictor
}

// Slider describes the range and resolution of one input control.
type Slider struct {
	Name      string
	Unit      string
	Min       float64
	Max       float64
	Step      float64
	Precision int
}

// Input controls of the predictor panel.
var (
	PositionSlider    = Slider{Name: "Position (2θ)", Unit: "°", Min: 25.0, Max: 26.5, Step: 0.001, Precision: 3}
	WidthSlider       = Slider{Name: "FWHM (Width)", Min: 0.1, Max: 0.5, Step: 0.005, Precision: 3}
	HeightSlider      = Slider{Name: "Intensity", Min: 100, Max: 1000, Step: 10, Precision: 0}
	TemperatureSlider = Slider{Name: "Target Temp", Unit: "°C", Min: 25, Max: 400, Step: 1, Precision: 1}
)

// Clamp limits v to the slider range.
func (s Slider) Clamp(v float64) float64 {
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Nudge snaps v onto the slider grid, moves it by steps and clamps the result.
func (s Slider) Nudge(v float64, steps int) float64 {
	n := math.Round((s.Clamp(v) - s.Min) / s.Step)
	return s.round(s.Clamp(s.Min + (n+float64(steps))*s.Step))
}

// Fraction positions v within the range, 0 at Min and 1 at Max.
func (s Slider) Fraction(v float64) float64 {
	if s.Max <= s.Min {
		return 0
	}
	return (s.Clamp(v) - s.Min) / (s.Max - s.Min)
}

// Format renders v with the slider's precision and unit.
func (s Slider) Format(v float64) string {
	return fmt.Sprintf("%.*f%s", s.Precision, v, s.Unit)
}

func (s Slider) round(v float64) float64 {
	p := math.Pow(10, float64(s.Precision))
	return math.Round(v*p) / p
}
