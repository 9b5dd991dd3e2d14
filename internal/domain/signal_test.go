package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		rain      float64
		threshold float64
		strength  float64
		noise     float64
		amplitude float64
		detected  bool
	}{
		{"dry", 0, 30, 100, 0, 80, true},
		{"moderate rain", 50, 30, 50, 40, 80, true},
		{"storm", 51, 30, 49, 40.8, 40, true},
		{"downpour", 100, 30, 0, 80, 40, true},
		{"threshold above dry amplitude", 0, 85, 100, 0, 80, false},
		{"threshold above storm amplitude", 80, 45, 20, 64, 40, false},
		{"threshold equal to amplitude", 0, 80, 100, 0, 80, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Evaluate(tt.rain, tt.threshold)
			assert.InDelta(t, tt.strength, f.SignalStrengthPercent, 1e-9)
			assert.InDelta(t, tt.noise, f.NoiseFloor, 1e-9)
			assert.InDelta(t, tt.amplitude, f.Amplitude, 1e-9)
			assert.Equal(t, tt.detected, f.Detected)
		})
	}
}

func TestEvaluate_StrengthClamped(t *testing.T) {
	for rain := 0.0; rain <= 100; rain += 5 {
		s := Evaluate(rain, 0).SignalStrengthPercent
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 100.0)
	}
}
