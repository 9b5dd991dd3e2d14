// Command validate checks recorded simulation fixtures against the engine
// invariants: non-negative velocity, discharge equal to area times
// velocity, zero velocity off water, bounded signal strength, and a
// contiguous tick sequence. It can also regenerate a fixture from its seed
// and confirm the run is reproducible.
//
// Usage:
//
//	go run ./cmd/validate -fixture testdata/storm_run.json [-replay]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/river-radar-sim/internal/fixture"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("fixture", "", "path to a fixture written by genfixture")
	replay := flag.Bool("replay", false, "regenerate the run from its seed and compare")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*path, *replay); code != 0 {
		os.Exit(code)
	}
}

func run(path string, replay bool) int {
	fmt.Println("=== Radar Fixture Validation ===")
	fmt.Println()

	fx, err := fixture.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	phases := []*phase{validateInvariants(fx)}
	if replay {
		phases = append(phases, validateReplay(fx))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	sum := fixture.Summarize(fx)
	fmt.Println()
	fmt.Printf("Readings: %d, lost signal: %d, peak discharge: %.2f m3/s\n", sum.Readings, sum.LostSignals, sum.PeakQ)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateInvariants(fx fixture.Fixture) *phase {
	p := &phase{name: "Reading invariants"}
	if len(fx.Steps) == 0 {
		p.errorf("fixture has no readings")
		return p
	}
	for _, v := range fixture.Check(fx) {
		p.errorf("%s", v)
	}
	return p
}

// validateReplay regenerates the run with the recorded seed and the default
// script and requires an identical result.
func validateReplay(fx fixture.Fixture) *phase {
	p := &phase{name: "Deterministic replay"}
	again, err := fixture.Generate(fx.Seed, fx.TickRate, fixture.DefaultScript())
	if err != nil {
		p.errorf("regenerate: %v", err)
		return p
	}
	if len(again.Steps) != len(fx.Steps) {
		p.errorf("step count %d, replay produced %d", len(fx.Steps), len(again.Steps))
		return p
	}
	for i := range fx.Steps {
		if diff := cmp.Diff(fx.Steps[i], again.Steps[i]); diff != "" {
			p.errorf("step %d differs (-recorded +replay):\n%s", i, diff)
			if len(p.errors) >= 5 {
				break
			}
		}
	}
	return p
}
