package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SINK_TIMEOUT bounds a single event delivery in the scenario run
	SinkTimeout time.Duration `envconfig:"E2E_SINK_TIMEOUT" default:"2s"`
	// E2E_SCENARIO_TIMEOUT bounds the whole scenario
	ScenarioTimeout time.Duration `envconfig:"E2E_SCENARIO_TIMEOUT" default:"30s"`
	BufferSize      int           `envconfig:"E2E_BUFFER_SIZE" default:"256"`
	TokenDuration   time.Duration `envconfig:"E2E_TOKEN_DURATION" default:"1h"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
