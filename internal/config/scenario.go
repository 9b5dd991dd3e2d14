package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/couchcryptid/river-radar-sim/internal/domain"
)

// LoadScenario reads initial operator inputs from a TOML, YAML or JSON file.
// Keys live under a [scenario] table; keys the file leaves out keep their
// value from base.
//
//	[scenario]
//	rain_level = 40
//	river_width_m = 6.5
//	beam_angle_deg = 35
//	threshold = 30
//	base_flow_speed = 0.5
func LoadScenario(path string, base domain.Inputs) (domain.Inputs, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return domain.Inputs{}, fmt.Errorf("read scenario %s: %w", path, err)
	}

	in := base
	fields := []struct {
		key string
		dst *float64
	}{
		{"scenario.rain_level", &in.RainLevel},
		{"scenario.river_width_m", &in.RiverWidthM},
		{"scenario.beam_angle_deg", &in.BeamAngleDeg},
		{"scenario.threshold", &in.Threshold},
		{"scenario.base_flow_speed", &in.BaseFlowSpeed},
	}
	for _, f := range fields {
		if v.IsSet(f.key) {
			*f.dst = v.GetFloat64(f.key)
		}
	}
	return in, nil
}
