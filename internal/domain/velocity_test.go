package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed values and counts draws.
type scriptedRand struct {
	vals  []float64
	calls int
}

func (r *scriptedRand) Float64() float64 {
	v := r.vals[r.calls%len(r.vals)]
	r.calls++
	return v
}

func constRand(v float64) *scriptedRand {
	return &scriptedRand{vals: []float64{v}}
}

var cos30 = math.Cos(math.Pi / 6)

func TestEstimateVelocity_CleanSignal(t *testing.T) {
	frame := Evaluate(0, 30)

	est := EstimateVelocity(HitWater, 0.5, DegToRad(30), frame, 30, constRand(0.5))
	assert.InDelta(t, 0.5*cos30, est.Velocity, 1e-12)
	assert.False(t, est.Degraded)

	for _, r := range []float64{0, 0.1, 0.25, 0.75, 0.999999} {
		est := EstimateVelocity(HitWater, 0.5, DegToRad(30), frame, 30, constRand(r))
		assert.InDelta(t, 0.5*cos30, est.Velocity, 0.01+1e-12, "r=%v", r)
	}
}

func TestEstimateVelocity_HeavyRain(t *testing.T) {
	frame := Evaluate(100, 30)
	require.InDelta(t, 80.0, frame.NoiseFloor, 1e-12)

	for _, r := range []float64{0, 0.2, 0.5, 0.8, 0.999999} {
		est := EstimateVelocity(HitWater, 4.0, DegToRad(30), frame, 30, constRand(r))
		assert.True(t, est.Degraded)
		assert.InDelta(t, 4.0*cos30, est.Velocity, 2.0+1e-12, "r=%v", r)
	}

	est := EstimateVelocity(HitWater, 4.0, DegToRad(30), frame, 30, constRand(0))
	assert.InDelta(t, 4.0*cos30-2.0, est.Velocity, 1e-12)
	assert.Zero(t, ReportedStrength(frame, est))
}

func TestEstimateVelocity_HeavyBranchEngagedBelowNoiseFloor(t *testing.T) {
	// Threshold 60 sits under the noise floor (80) but above the storm
	// amplitude (40): the heavy branch runs and the gate still zeroes the output.
	frame := Evaluate(100, 60)
	est := EstimateVelocity(HitWater, 4.0, DegToRad(30), frame, 60, constRand(0.9))

	assert.True(t, est.Degraded)
	assert.Zero(t, est.Velocity)
}

func TestEstimateVelocity_NoDopplerTargets(t *testing.T) {
	frame := Evaluate(0, 30)
	for _, hit := range []HitType{HitStationary, HitAir} {
		rng := constRand(0.9)
		est := EstimateVelocity(hit, 3.0, DegToRad(2), frame, 30, rng)

		assert.Zero(t, est.Velocity, string(hit))
		assert.Zero(t, rng.calls, "%s must not draw jitter", hit)
	}
}

func TestEstimateVelocity_DetectionGate(t *testing.T) {
	frame := Evaluate(0, 90)
	est := EstimateVelocity(HitWater, 2.0, DegToRad(45), frame, 90, constRand(0.5))
	assert.Zero(t, est.Velocity)
}

func TestEstimateVelocity_ReportsMagnitude(t *testing.T) {
	frame := Evaluate(100, 30)
	// 0.1*cos(30°) - 2.0 is negative before abs
	est := EstimateVelocity(HitWater, 0.1, DegToRad(30), frame, 30, constRand(0))
	assert.InDelta(t, 2.0-0.1*cos30, est.Velocity, 1e-12)
}

func TestReportedStrength(t *testing.T) {
	frame := SignalFrame{SignalStrengthPercent: 70}
	assert.InDelta(t, 70.0, ReportedStrength(frame, Estimate{}), 1e-12)
	assert.InDelta(t, 20.0, ReportedStrength(frame, Estimate{Degraded: true}), 1e-12)

	frame.SignalStrengthPercent = 30
	assert.Zero(t, ReportedStrength(frame, Estimate{Degraded: true}))
}

func TestDischarge_MonotonicInFlowSpeed(t *testing.T) {
	frame := Evaluate(0, 30)
	for _, r := range []float64{0, 0.5, 0.99} {
		prev := -1.0
		for flow := 0.1; flow <= 4.0; flow += 0.1 {
			est := EstimateVelocity(HitWater, flow, DegToRad(30), frame, 30, constRand(r))
			_, q := Discharge(est.Velocity, 5, 2)
			assert.GreaterOrEqual(t, q, prev, "r=%v flow=%v", r, flow)
			prev = q
		}
	}
}

func TestScenario_ClearSkyAtThirtyDegrees(t *testing.T) {
	frame := Evaluate(0, 30)
	hit := Cast(testHead, 30, 300, 800, DefaultMaxRange)
	require.Equal(t, HitWater, hit.Type)

	est := EstimateVelocity(hit.Type, 0.5, DegToRad(30), frame, 30, constRand(0.73))
	area, q := Discharge(est.Velocity, 5.0, 2.0)

	assert.InDelta(t, 0.433, est.Velocity, 0.01)
	assert.InDelta(t, 10.0, area, 1e-12)
	assert.InDelta(t, 4.33, q, 0.1)
}
