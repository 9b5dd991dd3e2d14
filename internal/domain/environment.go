package domain

import "math"

const (
	BaseLevelPx     = 100.0
	MaxRisePx       = 80.0
	SmoothingFactor = 0.05
	TimeStep        = 0.05

	rainSpeedRange    = 3.5
	organicFreq       = 0.5
	organicAmplitude  = 0.1
	baseDepthM        = 2.0
	pxPerMetreOfRise  = 20.0
	settleTolerancePx = 0.01
)

// NewEnvironment returns a river at rest at the base level.
func NewEnvironment(in Inputs) EnvironmentState {
	env := EnvironmentState{
		WaterLevelPx: BaseLevelPx,
	}
	env.apply(in)
	return env
}

func (e *EnvironmentState) apply(in Inputs) {
	e.RainLevel = in.RainLevel
	e.RiverWidthM = in.RiverWidthM
	e.BaseFlowSpeed = in.BaseFlowSpeed
	e.TargetLevelPx = TargetLevel(in.RainLevel)
}

// TargetLevel is the water level the river relaxes towards for a rain level.
func TargetLevel(rainLevel float64) float64 {
	return BaseLevelPx + rainLevel/100*MaxRisePx
}

// Advance moves the environment one tick forward: the clock steps, the water
// level relaxes toward its rain-derived target and the flow speed is
// recomputed from the new clock.
func (e *EnvironmentState) Advance() EnvironmentState {
	e.Time += TimeStep
	e.TargetLevelPx = TargetLevel(e.RainLevel)
	e.WaterLevelPx += (e.TargetLevelPx - e.WaterLevelPx) * SmoothingFactor
	e.FlowSpeed = FlowSpeed(e.BaseFlowSpeed, e.RainLevel, e.Time)
	return *e
}

// FlowSpeed returns the true surface velocity in m/s.
func FlowSpeed(base, rainLevel, t float64) float64 {
	v := base + rainLevel/100*rainSpeedRange
	if v == 0 {
		return 0
	}
	v += math.Sin(t*organicFreq) * organicAmplitude
	return math.Max(0, v)
}

// RisePx is how far the water has risen above the base level.
func (e EnvironmentState) RisePx() float64 {
	return e.WaterLevelPx - BaseLevelPx
}

// DepthM converts the current water level to a depth in metres.
func (e EnvironmentState) DepthM() float64 {
	return baseDepthM + e.RisePx()/pxPerMetreOfRise
}

// SurfaceY is the scene y coordinate of the water surface.
func (e EnvironmentState) SurfaceY(scene Scene) float64 {
	return scene.Height - e.WaterLevelPx
}

// Settled reports whether the water level has converged on its target.
func (e EnvironmentState) Settled() bool {
	return math.Abs(e.TargetLevelPx-e.WaterLevelPx) < settleTolerancePx
}
