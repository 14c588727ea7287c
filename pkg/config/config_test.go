package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beaconwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
detection:
  group_min: 50
explainer:
  kind: llm
  model_name: ${TEST_MODEL_NAME}
`), 0o644))
	t.Setenv("TEST_MODEL_NAME", "googleai/gemini-2.5-flash")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Detection.GroupMin)
	assert.Equal(t, "llm", cfg.Explainer.Kind)
	assert.Equal(t, "googleai/gemini-2.5-flash", cfg.Explainer.ModelName)
	// Untouched fields keep their defaults.
	assert.Equal(t, 10, cfg.Detection.MinRequests)
}

func TestValidate_RejectsBadFields(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
	}{
		{"group_min too low", func(c *Config) { c.Detection.GroupMin = 0 }},
		{"confidence out of range", func(c *Config) { c.Detection.ConfidenceThreshold = 1.5 }},
		{"top_features_n zero", func(c *Config) { c.Detection.TopFeaturesN = 0 }},
		{"n_estimators zero", func(c *Config) { c.Forest.NEstimators = 0 }},
		{"subsample too small", func(c *Config) { c.Forest.SubsampleSize = 1 }},
		{"model_dir empty", func(c *Config) { c.Training.ModelDir = "" }},
		{"bad explainer kind", func(c *Config) { c.Explainer.Kind = "magic" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSave_RoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Detection.GroupMin = 99
	path := filepath.Join(t.TempDir(), "out.yaml")

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 99, loaded.Detection.GroupMin)
}
