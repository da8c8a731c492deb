// Package config loads the heuristics service configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Search struct {
		// MaxEval caps the evaluation budget a request may ask for. It also
		// caps population sizes.
		MaxEval int `env:"SEARCH_MAX_EVAL" envDefault:"1000000"`
		// MaxTrials caps the number of trials of one request.
		MaxTrials int `env:"SEARCH_MAX_TRIALS" envDefault:"1000"`
		// MaxCities caps the city count A*B of a TSP grid.
		MaxCities int `env:"SEARCH_MAX_CITIES" envDefault:"1024"`
		// MaxDimension caps the dimension of real-domain objectives.
		MaxDimension int `env:"SEARCH_MAX_DIMENSION" envDefault:"1000"`
		// Workers bounds concurrently running jobs and trial workers.
		Workers int `env:"SEARCH_WORKERS" envDefault:"4"`
		// TraceLimit is the number of trailing trace entries a status
		// response includes.
		TraceLimit int `env:"SEARCH_TRACE_LIMIT" envDefault:"1000"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Logging.Level == "" {
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the ranges of the numeric settings.
func (c *Config) Validate() error {
	switch {
	case c.HTTP.Port < 0 || c.HTTP.Port > 65535:
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTP.Port)
	case c.Search.MaxEval < 1:
		return fmt.Errorf("SEARCH_MAX_EVAL must be positive, got %d", c.Search.MaxEval)
	case c.Search.MaxTrials < 1:
		return fmt.Errorf("SEARCH_MAX_TRIALS must be positive, got %d", c.Search.MaxTrials)
	case c.Search.MaxCities < 4:
		return fmt.Errorf("SEARCH_MAX_CITIES must be at least 4, got %d", c.Search.MaxCities)
	case c.Search.MaxDimension < 1:
		return fmt.Errorf("SEARCH_MAX_DIMENSION must be positive, got %d", c.Search.MaxDimension)
	case c.Search.Workers < 1:
		return fmt.Errorf("SEARCH_WORKERS must be positive, got %d", c.Search.Workers)
	case c.Search.TraceLimit < 0:
		return fmt.Errorf("SEARCH_TRACE_LIMIT must not be negative, got %d", c.Search.TraceLimit)
	}
	return nil
}

// GetEnv returns the value of the environment variable or the default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
