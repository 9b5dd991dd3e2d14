package domain

const (
	noisePerRainPercent = 0.8
	clearAmplitude      = 80.0
	stormAmplitude      = 40.0
	stormRainLevel      = 50.0
)

// Evaluate derives the signal frame from rain intensity and applies the
// detection gate against threshold.
func Evaluate(rainLevel, threshold float64) SignalFrame {
	amplitude := clearAmplitude
	if rainLevel > stormRainLevel {
		amplitude = stormAmplitude
	}
	return SignalFrame{
		SignalStrengthPercent: clampPercent(100 - rainLevel),
		NoiseFloor:            rainLevel * noisePerRainPercent,
		Amplitude:             amplitude,
		Detected:              amplitude >= threshold,
	}
}

func clampPercent(v float64) float64 {
	return clamp(v, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
