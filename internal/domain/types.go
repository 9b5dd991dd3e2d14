package domain

import "time"

// HitType classifies what the simulated beam intersects on a tick.
type HitType string

const (
	HitAir        HitType = "AIR"        // no return within range
	HitWater      HitType = "WATER"      // moving water surface
	HitStationary HitType = "STATIONARY" // fixed object such as the far bank
)

// Point is a position in scene coordinates (pixels, y grows downwards).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Scene holds the dimensions of the simulated cross-section view.
type Scene struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Inputs are the operator-controlled values. They must pass Validate and
// Clamp at the input boundary before reaching the engine.
type Inputs struct {
	RainLevel     float64 `json:"rain_level"`     // 0–100
	RiverWidthM   float64 `json:"river_width_m"`  // metres
	BeamAngleDeg  float64 `json:"beam_angle_deg"` // 0–90
	Threshold     float64 `json:"threshold"`      // detection floor
	BaseFlowSpeed float64 `json:"base_flow_speed"`
}

// EnvironmentState is the river model advanced once per tick.
type EnvironmentState struct {
	RainLevel     float64 `json:"rain_level"`
	BaseFlowSpeed float64 `json:"base_flow_speed"`
	FlowSpeed     float64 `json:"flow_speed"`
	RiverWidthM   float64 `json:"river_width_m"`
	WaterLevelPx  float64 `json:"water_level_px"`
	TargetLevelPx float64 `json:"target_level_px"`
	Time          float64 `json:"time"`
}

// RadarConfig describes the sensor mount and its operator settings.
type RadarConfig struct {
	MountX       float64 `json:"mount_x"`
	MountY       float64 `json:"mount_y"`
	PoleHeight   float64 `json:"pole_height"`
	HeadOffsetX  float64 `json:"head_offset_x"`
	BeamAngleDeg float64 `json:"beam_angle_deg"`
	Threshold    float64 `json:"threshold"`
	MaxRange     float64 `json:"max_range"`
}

// Head returns the position of the radar head at the top of the pole.
func (c RadarConfig) Head() Point {
	return Point{X: c.MountX + c.HeadOffsetX, Y: c.MountY - c.PoleHeight}
}

// BeamHit is the result of casting the beam against the scene.
type BeamHit struct {
	Type     HitType `json:"type"`
	Distance float64 `json:"distance"`
	HitPoint Point   `json:"hit_point"`
}

// SignalFrame is the rain-derived signal model for one tick.
type SignalFrame struct {
	SignalStrengthPercent float64 `json:"signal_strength_percent"`
	NoiseFloor            float64 `json:"noise_floor"`
	Amplitude             float64 `json:"amplitude"`
	Detected              bool    `json:"detected"`
}

// Reading is the engine output for a single tick. It is created fresh on
// every tick and never mutated by the engine afterwards.
type Reading struct {
	Tick                  uint64    `json:"tick"`
	Timestamp             time.Time `json:"timestamp"`
	Velocity              float64   `json:"velocity"`
	FlowSpeed             float64   `json:"flow_speed"`
	HitType               HitType   `json:"hit_type"`
	BeamLength            float64   `json:"beam_length"`
	HitPoint              Point     `json:"hit_point"`
	SignalStrengthPercent float64   `json:"signal_strength_percent"`
	NoiseFloor            float64   `json:"noise_floor"`
	Amplitude             float64   `json:"amplitude"`
	Detected              bool      `json:"detected"`
	DepthM                float64   `json:"depth_m"`
	AreaM2                float64   `json:"area_m2"`
	DischargeM3s          float64   `json:"discharge_m3s"`
	Moving                bool      `json:"moving"`
	Status                Status    `json:"status"`
}

// ReadingRecord is a sampled reading tagged with the publishing session.
type ReadingRecord struct {
	SessionID string  `json:"session_id"`
	Reading   Reading `json:"reading"`
}
