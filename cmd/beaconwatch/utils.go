package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/jihwankim/beaconwatch/pkg/config"
	"github.com/jihwankim/beaconwatch/pkg/logging"
)

// loadConfig loads the configuration from file, falling back to defaults
// when the file doesn't exist.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = "beaconwatch.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	lcfg := cfg.Logging
	if verbose {
		lcfg.Level = "debug"
	}
	return logging.New(lcfg)
}
