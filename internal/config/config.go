// Package config provides environment-based configuration following 12-factor principles.
// All configuration is loaded from environment variables with the RISK_ prefix.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/branched-services/go-risk/pkg/quantile"
)

// Config holds all service configuration.
// All fields are loaded from environment variables with the RISK_ prefix.
type Config struct {
	// Server addresses
	HTTPAddr   string `envconfig:"HTTP_ADDR" default:":8080"`
	HealthAddr string `envconfig:"HEALTH_ADDR" default:":8081"`

	// Scenario input (Factor IV: Backing Services)
	ScenarioFile string `envconfig:"SCENARIO_FILE" required:"true"`
	PortfolioID  string `envconfig:"PORTFOLIO_ID" default:"default"`
	BatchSize    int    `envconfig:"BATCH_SIZE" default:"250"`

	// Engine tuning
	Method         string        `envconfig:"METHOD" default:"sample-interpolation"`
	Levels         []float64     `envconfig:"LEVELS" default:"0.95,0.975,0.99"`
	WindowSize     int           `envconfig:"WINDOW_SIZE" default:"20"`
	RecalcInterval time.Duration `envconfig:"RECALC_INTERVAL" default:"1s"`

	// Observability
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads configuration from environment variables.
// All variables are prefixed with RISK_ (e.g., RISK_SCENARIO_FILE).
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("risk", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := quantile.MethodByName(c.Method); err != nil {
		return fmt.Errorf("RISK_METHOD: %w", err)
	}

	if len(c.Levels) == 0 {
		return errors.New("RISK_LEVELS must name at least one probability level")
	}
	for _, level := range c.Levels {
		if !(level > 0 && level < 1) {
			return fmt.Errorf("RISK_LEVELS entry %v must be in (0, 1)", level)
		}
	}

	if c.WindowSize < 1 || c.WindowSize > 1000 {
		return errors.New("RISK_WINDOW_SIZE must be between 1 and 1000")
	}

	if c.BatchSize < 1 || c.BatchSize > 100000 {
		return errors.New("RISK_BATCH_SIZE must be between 1 and 100000")
	}

	if c.RecalcInterval < 10*time.Millisecond {
		return errors.New("RISK_RECALC_INTERVAL must be at least 10ms")
	}

	return nil
}

// QuantileMethod resolves the configured method name. Call after Load,
// which has already validated the name.
func (c *Config) QuantileMethod() quantile.Method {
	m, err := quantile.MethodByName(c.Method)
	if err != nil {
		panic(err)
	}
	return m
}
