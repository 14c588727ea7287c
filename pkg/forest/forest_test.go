package forest

import (
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/beaconwatch/pkg/config"
)

func clusteredData(n int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec
	x := make([][]float64, n)
	for i := range x {
		x[i] = []float64{rng.NormFloat64(), rng.NormFloat64()}
	}
	return x
}

func TestFit_RejectsEmptyMatrix(t *testing.T) {
	_, err := Fit(nil, config.Default().Forest)
	assert.Error(t, err)
}

func TestFit_IsDeterministicForFixedSeed(t *testing.T) {
	x := clusteredData(200, 1)
	cfg := config.ForestConfig{NEstimators: 20, Contamination: 0.05, RandomState: 7, SubsampleSize: 64}

	m1, err := Fit(x, cfg)
	require.NoError(t, err)
	m2, err := Fit(x, cfg)
	require.NoError(t, err)

	assert.Equal(t, m1.ScoreSamples(x), m2.ScoreSamples(x))
}

func TestScoreSamples_OutlierScoresLowerThanCluster(t *testing.T) {
	x := clusteredData(200, 2)
	cfg := config.ForestConfig{NEstimators: 50, Contamination: 0.05, RandomState: 42, SubsampleSize: 128}

	m, err := Fit(x, cfg)
	require.NoError(t, err)

	outlier := []float64{50, -50}
	scores := m.ScoreSamples([][]float64{x[0], outlier})

	assert.Less(t, scores[1], scores[0], "an extreme outlier should score more anomalous (more negative)")
}

func TestSaveLoad_RoundTrips(t *testing.T) {
	x := clusteredData(100, 3)
	cfg := config.Default().Forest
	cfg.SubsampleSize = 64
	m, err := Fit(x, cfg)
	require.NoError(t, err)

	art := &Artifact{FeatureNames: []string{"a", "b"}, Forest: m}
	path := t.TempDir() + "/model.bin"
	require.NoError(t, Save(path, art))

	loaded, err := Load(path, 2)
	require.NoError(t, err)
	assert.Equal(t, art.FeatureNames, loaded.FeatureNames)
	assert.Equal(t, m.ScoreSamples(x), loaded.Forest.ScoreSamples(x))
}

func TestLoad_RejectsFeatureCountMismatch(t *testing.T) {
	cfg := config.Default().Forest
	cfg.SubsampleSize = 16
	m, err := Fit(clusteredData(50, 4), cfg)
	require.NoError(t, err)

	art := &Artifact{FeatureNames: []string{"a", "b"}, Forest: m}
	path := t.TempDir() + "/model.bin"
	require.NoError(t, Save(path, art))

	_, err = Load(path, 3)
	assert.Error(t, err)
}

func TestLoad_RejectsBadMagic(t *testing.T) {
	path := t.TempDir() + "/garbage.bin"
	require.NoError(t, os.WriteFile(path, []byte("not a model artifact"), 0o644))

	_, err := Load(path, 0)
	assert.Error(t, err)
}
