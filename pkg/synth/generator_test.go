package synth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_IsDeterministicForFixedSeed(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	cfg := DefaultConfig(start)

	r1 := New(cfg).Generate()
	r2 := New(cfg).Generate()

	require.Equal(t, len(r1.Log), len(r2.Log))
	assert.Equal(t, r1.Log, r2.Log)
	assert.Equal(t, r1.GroundTruth, r2.GroundTruth)
}

func TestGenerate_InjectsOneGroundTruthRowPerBeaconTick(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	cfg := Config{
		Seed:      1,
		NumUsers:  1,
		NumDays:   0,
		StartDate: start,
		Departments: []DepartmentProfile{DefaultDepartments[0]},
		BeaconProfiles: []BeaconProfile{
			{Name: "obvious", IntervalSeconds: 300, JitterSeconds: 4, NumDays: 5},
		},
		C2Domains: []string{"malware-c2.ru"},
	}

	result := New(cfg).Generate()

	// ~5 days / 300s, give jitter some slack.
	expected := int(5 * 86400 / 300)
	assert.InDelta(t, expected, len(result.GroundTruth), float64(expected)*0.05)

	for _, row := range result.GroundTruth {
		assert.True(t, row.IsAnomaly)
		assert.Equal(t, "beaconing_obvious", row.AnomalyType)
		assert.True(t, strings.HasSuffix(row.URL, "/beacon"))
	}
}

func TestGenerate_GroundTruthIsSubsetOfLog(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	cfg := DefaultConfig(start)
	result := New(cfg).Generate()

	logURLs := make(map[string]int)
	for _, r := range result.Log {
		logURLs[r.SrcIP+"|"+r.URL]++
	}
	for _, g := range result.GroundTruth {
		assert.Greater(t, logURLs[g.SrcIP+"|"+g.URL], 0)
	}
}

func TestGenerate_SortedByTimestamp(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	result := New(DefaultConfig(start)).Generate()

	for i := 1; i < len(result.Log); i++ {
		assert.False(t, result.Log[i].Timestamp.Before(result.Log[i-1].Timestamp))
	}
}
