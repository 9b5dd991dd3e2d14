package domain

import "math"

const (
	// MinElevationDeg is the beam elevation at or below which the beam runs
	// flat enough to hit the far bank instead of the water.
	MinElevationDeg = 5.0
	DefaultMaxRange = 800.0
)

// Cast traces the beam from head at angleDeg below horizontal and reports
// what it hits. The near-horizontal branch never divides by sin(angle).
func Cast(head Point, angleDeg, waterSurfaceY, sceneWidth, maxRange float64) BeamHit {
	rad := DegToRad(angleDeg)

	if angleDeg <= MinElevationDeg {
		length := (sceneWidth - head.X) / math.Cos(rad)
		return beamHit(HitStationary, head, rad, length)
	}

	dy := waterSurfaceY - head.Y
	if dy > 0 {
		if length := dy / math.Sin(rad); length < maxRange {
			return beamHit(HitWater, head, rad, length)
		}
	}
	return beamHit(HitAir, head, rad, maxRange)
}

func beamHit(t HitType, head Point, rad, length float64) BeamHit {
	return BeamHit{
		Type:     t,
		Distance: length,
		HitPoint: Point{
			X: head.X + math.Cos(rad)*length,
			Y: head.Y + math.Sin(rad)*length,
		},
	}
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
