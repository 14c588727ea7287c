// Package config loads and validates BeaconWatch's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level BeaconWatch configuration.
type Config struct {
	Detection DetectionConfig `yaml:"detection"`
	Forest    ForestConfig    `yaml:"forest"`
	Training  TrainingConfig  `yaml:"training"`
	Logging   LoggingConfig   `yaml:"logging"`
	Explainer ExplainerConfig `yaml:"explainer"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DetectionConfig holds the Tier 1 / Tier 2 thresholds.
type DetectionConfig struct {
	GroupMin            int     `yaml:"group_min"`
	MinRequests         int     `yaml:"min_requests"`
	ZScoreThreshold     float64 `yaml:"z_score_threshold"`
	IntervalMaxAvgS     float64 `yaml:"interval_max_avg_s"`
	IntervalMaxJitterS  float64 `yaml:"interval_max_jitter_s"`
	IQRMax              float64 `yaml:"iqr_max"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	TopFeaturesN        int     `yaml:"top_features_n"`
}

// ForestConfig holds isolation-forest hyperparameters.
type ForestConfig struct {
	NEstimators   int     `yaml:"n_estimators"`
	Contamination float64 `yaml:"contamination"`
	RandomState   int64   `yaml:"random_state"`
	SubsampleSize int     `yaml:"subsample_size"`
}

// TrainingConfig holds trainer-only settings.
type TrainingConfig struct {
	KnownBadDomains []string `yaml:"known_bad_domains"`
	ModelDir        string   `yaml:"model_dir"`
}

// LoggingConfig configures the zerolog-backed logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ExplainerConfig selects and configures the Tier 3 Explainer.
type ExplainerConfig struct {
	Kind      string `yaml:"kind"` // "rule" or "llm"
	ModelName string `yaml:"model_name"`
}

// MetricsConfig configures the optional Prometheus exporter.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the compile-time default configuration, matching the
// constants named in the detection design.
func Default() *Config {
	return &Config{
		Detection: DetectionConfig{
			GroupMin:            30,
			MinRequests:         10,
			ZScoreThreshold:     3.0,
			IntervalMaxAvgS:     360,
			IntervalMaxJitterS:  10,
			IQRMax:              15,
			ConfidenceThreshold: 0.70,
			TopFeaturesN:        3,
		},
		Forest: ForestConfig{
			NEstimators:   100,
			Contamination: 0.01,
			RandomState:   42,
			SubsampleSize: 256,
		},
		Training: TrainingConfig{
			KnownBadDomains: nil,
			ModelDir:        "models",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Explainer: ExplainerConfig{
			Kind:      "rule",
			ModelName: "googleai/gemini-2.5-flash",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// Load reads a YAML configuration file, merging it over Default(). A missing
// file is not an error: the defaults are returned unchanged. "${VAR}"
// references in the file are expanded from the environment before parsing,
// so checked-in templates can carry secrets like an LLM API key.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = "beaconwatch.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration back out as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks required fields and positivity invariants.
func (c *Config) Validate() error {
	if c.Detection.GroupMin < 1 {
		return fmt.Errorf("detection.group_min must be at least 1")
	}
	if c.Detection.MinRequests < 1 {
		return fmt.Errorf("detection.min_requests must be at least 1")
	}
	if c.Detection.ConfidenceThreshold < 0 || c.Detection.ConfidenceThreshold > 1 {
		return fmt.Errorf("detection.confidence_threshold must be in [0, 1]")
	}
	if c.Detection.TopFeaturesN < 1 {
		return fmt.Errorf("detection.top_features_n must be at least 1")
	}
	if c.Forest.NEstimators < 1 {
		return fmt.Errorf("forest.n_estimators must be at least 1")
	}
	if c.Forest.SubsampleSize < 2 {
		return fmt.Errorf("forest.subsample_size must be at least 2")
	}
	if c.Training.ModelDir == "" {
		return fmt.Errorf("training.model_dir is required")
	}
	if c.Explainer.Kind != "rule" && c.Explainer.Kind != "llm" {
		return fmt.Errorf("explainer.kind must be \"rule\" or \"llm\"")
	}
	return nil
}
