package domain

import "math"

const (
	heavyJitterSpan = 4.0
	cleanJitterSpan = 0.02

	// rainSignalPenalty is taken off the reported signal strength while the
	// rain-degraded branch is engaged.
	rainSignalPenalty = 50.0
)

// Rand is the random source used for measurement jitter. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// Estimate is the velocity estimator's output.
type Estimate struct {
	Velocity float64
	Degraded bool // rain noise floor exceeded the threshold
}

// EstimateVelocity projects flowSpeed onto the beam and adds jitter sized by
// the noise floor. Only WATER hits consume the random source.
func EstimateVelocity(hit HitType, flowSpeed, angleRad float64, frame SignalFrame, threshold float64, rng Rand) Estimate {
	var est Estimate
	switch hit {
	case HitWater:
		measured := flowSpeed * math.Cos(angleRad)
		if frame.NoiseFloor > threshold {
			measured += (rng.Float64() - 0.5) * heavyJitterSpan
			est.Degraded = true
		} else {
			measured += (rng.Float64() - 0.5) * cleanJitterSpan
		}
		est.Velocity = math.Abs(measured)
	case HitStationary, HitAir:
		// A fixed target has no Doppler shift and AIR returns no echo.
	}

	if frame.Amplitude < threshold {
		est.Velocity = 0
	}
	return est
}

// ReportedStrength applies the rain penalty to the frame's signal strength.
func ReportedStrength(frame SignalFrame, est Estimate) float64 {
	if !est.Degraded {
		return frame.SignalStrengthPercent
	}
	return clampPercent(frame.SignalStrengthPercent - rainSignalPenalty)
}
