package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when an operator value is not a finite number.
var ErrInvalidInput = errors.New("invalid input")

const minRiverWidthM = 0.1

// DefaultInputs are the operator values used when nothing else is configured.
func DefaultInputs() Inputs {
	return Inputs{
		RainLevel:     0,
		RiverWidthM:   5.0,
		BeamAngleDeg:  35,
		Threshold:     30,
		BaseFlowSpeed: 0.5,
	}
}

// Validate rejects NaN and infinite values.
func (in Inputs) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"rain_level", in.RainLevel},
		{"river_width_m", in.RiverWidthM},
		{"beam_angle_deg", in.BeamAngleDeg},
		{"threshold", in.Threshold},
		{"base_flow_speed", in.BaseFlowSpeed},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, f.name)
		}
	}
	return nil
}

// Clamp bounds every value to the range the engine is defined over.
func (in Inputs) Clamp() Inputs {
	in.RainLevel = clamp(in.RainLevel, 0, 100)
	in.RiverWidthM = math.Max(in.RiverWidthM, minRiverWidthM)
	in.BeamAngleDeg = clamp(in.BeamAngleDeg, 0, 90)
	in.Threshold = clamp(in.Threshold, 0, 100)
	in.BaseFlowSpeed = math.Max(in.BaseFlowSpeed, 0)
	return in
}

// Sanitize validates and clamps in one step. This is the input boundary:
// values that leave it are safe to hand to the engine.
func (in Inputs) Sanitize() (Inputs, error) {
	if err := in.Validate(); err != nil {
		return Inputs{}, err
	}
	return in.Clamp(), nil
}

// InputPatch is a partial update; nil fields keep their current value.
type InputPatch struct {
	RainLevel     *float64 `json:"rain_level,omitempty"`
	RiverWidthM   *float64 `json:"river_width_m,omitempty"`
	BeamAngleDeg  *float64 `json:"beam_angle_deg,omitempty"`
	Threshold     *float64 `json:"threshold,omitempty"`
	BaseFlowSpeed *float64 `json:"base_flow_speed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p InputPatch) Empty() bool {
	return p.RainLevel == nil && p.RiverWidthM == nil && p.BeamAngleDeg == nil &&
		p.Threshold == nil && p.BaseFlowSpeed == nil
}

// Validate rejects NaN and infinite values among the fields the patch sets.
func (p InputPatch) Validate() error {
	_, err := p.ApplyTo(DefaultInputs())
	return err
}

// ApplyTo merges the patch onto in and sanitizes the result.
func (p InputPatch) ApplyTo(in Inputs) (Inputs, error) {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&in.RainLevel, p.RainLevel)
	set(&in.RiverWidthM, p.RiverWidthM)
	set(&in.BeamAngleDeg, p.BeamAngleDeg)
	set(&in.Threshold, p.Threshold)
	set(&in.BaseFlowSpeed, p.BaseFlowSpeed)
	return in.Sanitize()
}
