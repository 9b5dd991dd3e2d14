// Package domain models a bridge-mounted Doppler radar measuring river
// discharge, as a discrete-time simulation.
//
// # Coordinates
//
// Geometry works in scene pixels with the origin at the top-left corner and
// y growing downwards, matching the dashboard canvas the readings are drawn
// on. The radar head sits at (MountX+HeadOffsetX, MountY-PoleHeight); with the
// defaults that is (120, 90). The water surface is WaterLevelPx above the
// bottom of the scene, i.e. at y = Scene.Height - WaterLevelPx.
//
// # Constants
//
// Water level:
//
//	target  = 100 px + rain/100 * 80 px
//	level  += (target - level) * 0.05        first-order lag, no overshoot
//
// Depth: 2.0 m at the base level plus 1 m per 20 px of rise, so heavy rain
// (80 px rise) gives 6.0 m.
//
// Flow speed (m/s):
//
//	base + rain/100 * 3.5 + sin(t * 0.5) * 0.1
//
// where t advances 0.05 per tick. The oscillation is dropped when the base
// and rain terms are both zero.
//
// Beam: elevations at or below 5° hit a fixed object (STATIONARY); steeper
// beams hit WATER when the slant range dy/sin(a) is under 800 px, otherwise
// the echo is lost (AIR).
//
// Signal:
//
//	strength   = clamp(100 - rain, 0, 100) %
//	noiseFloor = rain * 0.8
//	amplitude  = 80 when rain <= 50, else 40
//
// The detection gate zeroes velocity when amplitude < threshold. A noise
// floor above the threshold engages ±2.0 m/s jitter and costs 50 points of
// reported signal strength; otherwise jitter is ±0.01 m/s.
//
// Flood status follows the public dashboard thresholds: above 10 m³/s is
// "alert", above 20 m³/s is "danger".
package domain
