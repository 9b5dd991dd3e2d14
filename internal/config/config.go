package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/river-radar-sim/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Simulation settings.
	TickRate     int
	Seed         uint64
	Scene        domain.Scene
	Inputs       domain.Inputs
	ScenarioFile string

	// Reading publication.
	PublishInterval  time.Duration
	PublishBatchSize int

	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	SQLitePath string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	tickRate, err := parsePositiveInt("TICK_RATE", 45, 1, 240)
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("SIM_SEED", "0"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid SIM_SEED")
	}

	publishInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("PUBLISH_INTERVAL", "1s"))
	if err != nil || publishInterval <= 0 {
		return nil, errors.New("invalid PUBLISH_INTERVAL")
	}

	batchSize, err := parsePositiveInt("PUBLISH_BATCH_SIZE", 10, 1, 1000)
	if err != nil {
		return nil, err
	}

	scene, err := parseScene()
	if err != nil {
		return nil, err
	}

	scenarioFile := os.Getenv("SCENARIO_FILE")
	inputs, err := parseInputs(scenarioFile)
	if err != nil {
		return nil, err
	}

	_, brokersSet := os.LookupEnv("KAFKA_BROKERS")
	kafkaEnabled := brokersSet
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		TickRate:     tickRate,
		Seed:         seed,
		Scene:        scene,
		Inputs:       inputs,
		ScenarioFile: scenarioFile,

		PublishInterval:  publishInterval,
		PublishBatchSize: batchSize,

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "sim-data"),
		KafkaEnabled: kafkaEnabled,

		SQLitePath: os.Getenv("SQLITE_PATH"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// TickInterval is the wall-clock period between engine ticks.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func parsePositiveInt(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseScene() (domain.Scene, error) {
	w, err := parseFloat("SCENE_WIDTH", domain.DefaultScene.Width)
	if err != nil {
		return domain.Scene{}, err
	}
	h, err := parseFloat("SCENE_HEIGHT", domain.DefaultScene.Height)
	if err != nil {
		return domain.Scene{}, err
	}
	if w <= 0 || h <= 0 {
		return domain.Scene{}, errors.New("SCENE_WIDTH and SCENE_HEIGHT must be positive")
	}
	return domain.Scene{Width: w, Height: h}, nil
}

// parseInputs layers initial operator inputs: defaults, then the scenario
// file, then individual environment variables. The result is sanitized.
func parseInputs(scenarioFile string) (domain.Inputs, error) {
	in := domain.DefaultInputs()
	if scenarioFile != "" {
		var err error
		in, err = LoadScenario(scenarioFile, in)
		if err != nil {
			return domain.Inputs{}, err
		}
	}

	fields := []struct {
		key string
		dst *float64
	}{
		{"RAIN_LEVEL", &in.RainLevel},
		{"RIVER_WIDTH", &in.RiverWidthM},
		{"BEAM_ANGLE", &in.BeamAngleDeg},
		{"THRESHOLD", &in.Threshold},
		{"BASE_FLOW_SPEED", &in.BaseFlowSpeed},
	}
	for _, f := range fields {
		v, err := parseFloat(f.key, *f.dst)
		if err != nil {
			return domain.Inputs{}, err
		}
		*f.dst = v
	}

	in, err := in.Sanitize()
	if err != nil {
		return domain.Inputs{}, fmt.Errorf("initial inputs: %w", err)
	}
	return in, nil
}
