package tier3

import (
	"context"
	"fmt"
	"strings"

	"github.com/jihwankim/beaconwatch/pkg/tier1"
	"github.com/jihwankim/beaconwatch/pkg/tier2"
)

// RuleTemplateExplainer is the deterministic, built-in Explainer. It is a
// pure function of its inputs and is the reference implementation used by
// tests.
type RuleTemplateExplainer struct{}

// NewRuleTemplateExplainer returns the default Explainer.
func NewRuleTemplateExplainer() *RuleTemplateExplainer {
	return &RuleTemplateExplainer{}
}

// Explain never returns an error.
func (e *RuleTemplateExplainer) Explain(_ context.Context, f1 *tier1.Finding, f2 *tier2.Finding) (Narrative, error) {
	switch {
	case f1 != nil && f2 != nil:
		return explainBoth(f1, f2), nil
	case f1 != nil:
		return explainTier1Only(f1), nil
	default:
		return explainTier2Only(f2), nil
	}
}

func explainBoth(f1 *tier1.Finding, f2 *tier2.Finding) Narrative {
	return Narrative{
		ThreatSummary: fmt.Sprintf(
			"Host %s is beaconing to %s: %d statistical rules fired and the anomaly model scored it %.0f%% confident.",
			f1.Key.SrcIP, f1.Key.Domain, len(f1.MethodsFired), f2.Confidence*100,
		),
		WhatHappened: fmt.Sprintf(
			"%d requests from %s to %s over the observation window, flagged by both the rule engine (%s) and the anomaly model (top deviating features: %s).",
			f1.RequestCount, f1.Key.SrcIP, f1.Key.Domain, strings.Join(f1.MethodsFired, ", "), strings.Join(f2.TopFeatures, ", "),
		),
		WhySuspicious:     whySuspicious(f1),
		RecommendedAction: recommendedAction(f1.Severity),
	}
}

func explainTier1Only(f1 *tier1.Finding) Narrative {
	return Narrative{
		ThreatSummary: fmt.Sprintf(
			"Host %s shows regular, machine-like traffic to %s (%s).",
			f1.Key.SrcIP, f1.Key.Domain, strings.Join(f1.MethodsFired, ", "),
		),
		WhatHappened: fmt.Sprintf(
			"%d requests from %s to %s matched %d of 3 statistical beaconing rules.",
			f1.RequestCount, f1.Key.SrcIP, f1.Key.Domain, len(f1.MethodsFired),
		),
		WhySuspicious:     whySuspicious(f1),
		RecommendedAction: recommendedAction(f1.Severity),
	}
}

func explainTier2Only(f2 *tier2.Finding) Narrative {
	return Narrative{
		ThreatSummary: fmt.Sprintf(
			"The anomaly model flagged %s → %s at %.0f%% confidence.",
			f2.Key.SrcIP, f2.Key.Domain, f2.Confidence*100,
		),
		WhatHappened: fmt.Sprintf(
			"%d requests from %s to %s deviated most on: %s.",
			f2.Vector.RequestCnt, f2.Key.SrcIP, f2.Key.Domain, strings.Join(f2.TopFeatures, ", "),
		),
		WhySuspicious: fmt.Sprintf(
			"No single statistical rule fired, but the combination of features (%s) falls outside the range seen in clean baseline traffic.",
			strings.Join(f2.TopFeatures, ", "),
		),
		RecommendedAction: recommendedAction(severityFromConfidence(f2.Confidence)),
	}
}

func whySuspicious(f1 *tier1.Finding) string {
	var parts []string
	if f1.Evidence.HasZScore {
		parts = append(parts, fmt.Sprintf("request volume is a %.1f-sigma outlier against the population", f1.Evidence.ZScore))
	}
	if f1.Evidence.HasInterval {
		parts = append(parts, fmt.Sprintf("requests repeat every ~%.0fs with only %.0fs of jitter", f1.Evidence.AvgInterval, f1.Evidence.Jitter))
	}
	if f1.Evidence.HasIQR {
		parts = append(parts, fmt.Sprintf("the interquartile range of inter-arrival times is a tight %.0fs", f1.Evidence.IQR))
	}
	if len(parts) == 0 {
		return "multiple statistical rules agreed this traffic pattern is anomalous."
	}
	return strings.Join(parts, "; ") + "."
}

func recommendedAction(severity string) string {
	switch severity {
	case "critical":
		return "Isolate the host immediately and escalate to incident response."
	case "high":
		return "Block the destination domain and investigate the host within this shift."
	default:
		return "Add the host to the watchlist and review traffic at the next triage pass."
	}
}

func severityFromConfidence(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "critical"
	case confidence >= 0.7:
		return "high"
	default:
		return "medium"
	}
}
