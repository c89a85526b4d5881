package units

import (
	"math"
	"testing"
	"time"
)

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name      string
		speedMMPS float64
		units     string
		expected  float64
	}{
		{"6500 mm/s to mps", 6500, MPS, 6.5},
		{"6500 mm/s to kmph", 6500, KMPH, 23.4},
		{"6500 mm/s to mmps", 6500, MMPS, 6500},
		{"unknown units default to mmps", 1000, "unknown", 1000},
		{"zero", 0, KMPH, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertSpeed(tt.speedMMPS, tt.units)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ConvertSpeed(%f, %s) = %f, want %f", tt.speedMMPS, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	for _, u := range ValidUnits {
		if !IsValid(u) {
			t.Errorf("IsValid(%q) = false", u)
		}
	}
	if IsValid("mph") {
		t.Error("IsValid(\"mph\") = true")
	}
	if GetValidUnitsString() == "" {
		t.Error("GetValidUnitsString() is empty")
	}
}

func TestTimeConversions(t *testing.T) {
	if got := SecondsToNanos(1.5); got != 1_500_000_000 {
		t.Errorf("SecondsToNanos(1.5) = %d", got)
	}
	if got := SecondsToNanos(1e-9 * 0.6); got != 1 {
		t.Errorf("SecondsToNanos rounds: got %d, want 1", got)
	}
	if got := NanosToSeconds(250_000_000); got != 0.25 {
		t.Errorf("NanosToSeconds(250ms) = %f", got)
	}
	if got := DurationSeconds(16 * time.Millisecond); got != 0.016 {
		t.Errorf("DurationSeconds(16ms) = %f", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{0.1 + 4*math.Pi, 0.1},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}
