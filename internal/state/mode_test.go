package state

import "testing"

func TestSliderNudge(t *testing.T) {
	tests := []struct {
		name   string
		slider Slider
		value  float64
		steps  int
		want   float64
	}{
		{"position up", PositionSlider, 25.64, 1, 25.641},
		{"position down ten", PositionSlider, 25.64, -10, 25.63},
		{"position clamps high", PositionSlider, 26.5, 5, 26.5},
		{"position clamps low", PositionSlider, 25.0, -1, 25.0},
		{"width snaps then moves", WidthSlider, 0.22, 1, 0.225},
		{"width off grid", WidthSlider, 0.2234, 1, 0.23},
		{"height", HeightSlider, 270, 1, 280},
		{"height out of range", HeightSlider, 40, 0, 100},
		{"temperature", TemperatureSlider, 25, 10, 35},
		{"temperature top", TemperatureSlider, 399, 5, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.slider.Nudge(tt.value, tt.steps)
			if got != tt.want {
				t.Errorf("Nudge(%v, %d) = %v, want %v", tt.value, tt.steps, got, tt.want)
			}
		})
	}
}

func TestSliderFraction(t *testing.T) {
	if got := HeightSlider.Fraction(100); got != 0 {
		t.Errorf("Fraction(min) = %v", got)
	}
	if got := HeightSlider.Fraction(1000); got != 1 {
		t.Errorf("Fraction(max) = %v", got)
	}
	if got := HeightSlider.Fraction(5000); got != 1 {
		t.Errorf("Fraction(above max) = %v", got)
	}
	if got := (Slider{Min: 1, Max: 1}).Fraction(1); got != 0 {
		t.Errorf("Fraction(empty range) = %v", got)
	}
}

func TestSliderFormat(t *testing.T) {
	if got := PositionSlider.Format(25.64); got != "25.640°" {
		t.Errorf("got %q", got)
	}
	if got := HeightSlider.Format(270); got != "270" {
		t.Errorf("got %q", got)
	}
	if got := TemperatureSlider.Format(25); got != "25.0°C" {
		t.Errorf("got %q", got)
	}
}

func TestModeAndTabNames(t *testing.T) {
	if ModeForward.String() != "Forward Mode" || ModeInverse.String() != "Inverse Mode" {
		t.Error("unexpected mode names")
	}
	if ModeForward.Description() != "Predict Temp from XRD" {
		t.Error("unexpected forward description")
	}
	if TabPredictor.Next() != TabFWHM || TabFWHM.Next() != TabPredictor {
		t.Error("Next should alternate tabs")
	}
	if KindEstimate.String() != "estimate-fwhm" || Kind(42).String() != "unknown" {
		t.Error("unexpected kind names")
	}
}
