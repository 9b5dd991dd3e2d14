package fixture

import (
	"fmt"
	"math"

	"github.com/couchcryptid/river-radar-sim/internal/domain"
)

const tolerance = 1e-9

// Violation describes one broken invariant in a fixture.
type Violation struct {
	Tick uint64
	Rule string
	Msg  string
}

func (v Violation) String() string {
	return fmt.Sprintf("tick %d: %s: %s", v.Tick, v.Rule, v.Msg)
}

// Check verifies every step of a fixture and returns the violations found.
// An empty result means the run is consistent.
func Check(fx Fixture) []Violation {
	var out []Violation
	add := func(tick uint64, rule, format string, args ...any) {
		out = append(out, Violation{Tick: tick, Rule: rule, Msg: fmt.Sprintf(format, args...)})
	}

	for i, st := range fx.Steps {
		r := st.Reading

		if want := uint64(i + 1); r.Tick != want {
			add(r.Tick, "tick-sequence", "expected tick %d", want)
		}
		if i > 0 && r.Timestamp.Before(fx.Steps[i-1].Reading.Timestamp) {
			add(r.Tick, "timestamp-order", "timestamp %s precedes previous reading", r.Timestamp)
		}
		if r.Velocity < 0 || math.IsNaN(r.Velocity) {
			add(r.Tick, "velocity-non-negative", "velocity %g", r.Velocity)
		}
		if r.HitType != domain.HitWater && r.Velocity != 0 {
			add(r.Tick, "no-doppler-off-water", "%s hit reported velocity %g", r.HitType, r.Velocity)
		}
		if r.SignalStrengthPercent < 0 || r.SignalStrengthPercent > 100 {
			add(r.Tick, "signal-bounds", "signal strength %g outside [0,100]", r.SignalStrengthPercent)
		}
		if area := st.Inputs.RiverWidthM * r.DepthM; math.Abs(area-r.AreaM2) > tolerance {
			add(r.Tick, "area", "area %g, width x depth is %g", r.AreaM2, area)
		}
		if q := r.AreaM2 * r.Velocity; math.Abs(q-r.DischargeM3s) > tolerance {
			add(r.Tick, "discharge", "discharge %g, area x velocity is %g", r.DischargeM3s, q)
		}
		if want := domain.ClassifyDischarge(r.DischargeM3s); r.Status != want {
			add(r.Tick, "status", "status %s, discharge implies %s", r.Status, want)
		}
		if want := domain.IsMoving(r.Velocity); r.Moving != want {
			add(r.Tick, "moving", "moving=%t for velocity %g", r.Moving, r.Velocity)
		}
		if r.FlowSpeed < 0 {
			add(r.Tick, "flow-non-negative", "flow speed %g", r.FlowSpeed)
		}
	}
	return out
}

// Summary counts readings by hit type and status.
type Summary struct {
	Readings    int
	ByHitType   map[domain.HitType]int
	ByStatus    map[domain.Status]int
	PeakQ       float64
	LostSignals int
}

// Summarize aggregates a fixture for reporting.
func Summarize(fx Fixture) Summary {
	s := Summary{
		Readings:  len(fx.Steps),
		ByHitType: map[domain.HitType]int{},
		ByStatus:  map[domain.Status]int{},
	}
	for _, st := range fx.Steps {
		r := st.Reading
		s.ByHitType[r.HitType]++
		s.ByStatus[r.Status]++
		s.PeakQ = math.Max(s.PeakQ, r.DischargeM3s)
		if !r.Detected {
			s.LostSignals++
		}
	}
	return s
}
