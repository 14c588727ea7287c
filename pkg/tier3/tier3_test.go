package tier3

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/beaconwatch/pkg/ingest/grouper"
	"github.com/jihwankim/beaconwatch/pkg/logrecord"
	"github.com/jihwankim/beaconwatch/pkg/tier1"
	"github.com/jihwankim/beaconwatch/pkg/tier2"
)

func key(ip, domain string) grouper.Key { return grouper.Key{SrcIP: ip, Domain: domain} }

func TestFuse_OuterJoinsByKey(t *testing.T) {
	t1 := []tier1.Finding{{Key: key("10.0.0.1", "a.com"), MethodsFired: []string{"zscore", "iqr"}, Severity: "high", Sample: logrecord.Record{Username: "alice"}}}
	t2 := []tier2.Finding{{Key: key("10.0.0.2", "b.com"), Confidence: 0.8, Sample: logrecord.Record{Username: "bob"}}}

	findings, err := Fuse(context.Background(), t1, t2, NewRuleTemplateExplainer())
	require.NoError(t, err)
	require.Len(t, findings, 2)

	byIP := map[string]Finding{}
	for _, f := range findings {
		byIP[f.Key.SrcIP] = f
	}
	assert.True(t, byIP["10.0.0.1"].Tier1Fired)
	assert.False(t, byIP["10.0.0.1"].Tier2Fired)
	assert.Equal(t, 1.0, byIP["10.0.0.1"].Confidence)
	assert.True(t, byIP["10.0.0.2"].Tier2Fired)
	assert.Equal(t, 0.8, byIP["10.0.0.2"].Confidence)
}

func TestFuse_SortsByConfidenceDescendingThenKey(t *testing.T) {
	t2 := []tier2.Finding{
		{Key: key("10.0.0.1", "a.com"), Confidence: 0.5},
		{Key: key("10.0.0.2", "a.com"), Confidence: 0.9},
	}
	findings, err := Fuse(context.Background(), nil, t2, NewRuleTemplateExplainer())
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "10.0.0.2", findings[0].Key.SrcIP)
	assert.Equal(t, "10.0.0.1", findings[1].Key.SrcIP)
}

func TestFuse_EmptyInputsYieldNoFindings(t *testing.T) {
	findings, err := Fuse(context.Background(), nil, nil, NewRuleTemplateExplainer())
	require.NoError(t, err)
	assert.Empty(t, findings)
}

type erroringExplainer struct{ err error }

func (e erroringExplainer) Explain(context.Context, *tier1.Finding, *tier2.Finding) (Narrative, error) {
	return Narrative{}, e.err
}

func TestFuse_PropagatesBareExplainerError(t *testing.T) {
	t2 := []tier2.Finding{{Key: key("10.0.0.1", "a.com"), Confidence: 0.5}}
	_, err := Fuse(context.Background(), nil, t2, erroringExplainer{err: errors.New("model down")})
	assert.Error(t, err)
}

func TestFallbackExplainer_DowngradesOnPrimaryError(t *testing.T) {
	t2 := []tier2.Finding{{Key: key("10.0.0.1", "a.com"), Confidence: 0.5, TopFeatures: []string{"cv"}}}

	fallback := WithFallback(erroringExplainer{err: errors.New("model down")}, zerolog.Nop())

	findings, err := Fuse(context.Background(), nil, t2, fallback)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.NotEmpty(t, findings[0].Narrative.ThreatSummary)
}

func TestRuleTemplateExplainer_NeverErrors(t *testing.T) {
	e := NewRuleTemplateExplainer()
	f1 := &tier1.Finding{Key: key("10.0.0.1", "a.com"), MethodsFired: []string{"zscore", "iqr"}, Severity: "high"}
	f2 := &tier2.Finding{Key: key("10.0.0.1", "a.com"), Confidence: 0.9, TopFeatures: []string{"cv"}}

	n, err := e.Explain(context.Background(), f1, f2)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ThreatSummary)

	n, err = e.Explain(context.Background(), f1, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, n.RecommendedAction)

	n, err = e.Explain(context.Background(), nil, f2)
	require.NoError(t, err)
	assert.NotEmpty(t, n.WhySuspicious)
}
