// Package tier3 fuses Tier 1 and Tier 2 findings into the system's final
// ranked, explained output.
package tier3

import (
	"context"
	"sort"

	"github.com/jihwankim/beaconwatch/pkg/ingest/grouper"
	"github.com/jihwankim/beaconwatch/pkg/logrecord"
	"github.com/jihwankim/beaconwatch/pkg/tier1"
	"github.com/jihwankim/beaconwatch/pkg/tier2"
)

// Narrative is the four human-readable fields an Explainer produces.
type Narrative struct {
	ThreatSummary     string
	WhatHappened      string
	WhySuspicious     string
	RecommendedAction string
}

// Explainer is the pluggable capability that turns Tier 1/Tier 2 evidence
// into a Narrative. The built-in rule-template implementation is a pure
// function of its inputs; an LLM-backed implementation may perform a
// blocking network call and must never fail the pipeline — callers are
// expected to wrap it with a fallback (see WithFallback).
type Explainer interface {
	Explain(ctx context.Context, tier1 *tier1.Finding, tier2 *tier2.Finding) (Narrative, error)
}

// Finding is one fused, explained result — the system's final output unit.
type Finding struct {
	Key        grouper.Key
	Username   string
	Narrative  Narrative
	Confidence float64
	Severity   string
	Tier1Fired bool
	Tier2Fired bool
	Sample     logrecord.Record
}

// Fuse outer-joins Tier 1 and Tier 2 findings by key and calls explainer for
// each union member, producing exactly one Finding per key present in
// either input. Output is ranked descending by confidence, ties by key.
func Fuse(ctx context.Context, t1 []tier1.Finding, t2 []tier2.Finding, explainer Explainer) ([]Finding, error) {
	t1ByKey := make(map[grouper.Key]*tier1.Finding, len(t1))
	for i := range t1 {
		t1ByKey[t1[i].Key] = &t1[i]
	}
	t2ByKey := make(map[grouper.Key]*tier2.Finding, len(t2))
	for i := range t2 {
		t2ByKey[t2[i].Key] = &t2[i]
	}

	seen := make(map[grouper.Key]struct{}, len(t1)+len(t2))
	var keys []grouper.Key
	for _, f := range t1 {
		if _, ok := seen[f.Key]; !ok {
			seen[f.Key] = struct{}{}
			keys = append(keys, f.Key)
		}
	}
	for _, f := range t2 {
		if _, ok := seen[f.Key]; !ok {
			seen[f.Key] = struct{}{}
			keys = append(keys, f.Key)
		}
	}

	var findings []Finding
	for _, key := range keys {
		f1 := t1ByKey[key]
		f2 := t2ByKey[key]

		confidence := 1.0
		if f2 != nil {
			confidence = f2.Confidence
		}

		severity := severityFor(f1, f2, confidence)

		narrative, err := explainer.Explain(ctx, f1, f2)
		if err != nil {
			return nil, err
		}

		sample := sampleRecord(f1, f2)
		username := usernameFor(f1, f2)

		findings = append(findings, Finding{
			Key:        key,
			Username:   username,
			Narrative:  narrative,
			Confidence: confidence,
			Severity:   severity,
			Tier1Fired: f1 != nil,
			Tier2Fired: f2 != nil,
			Sample:     sample,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Confidence != findings[j].Confidence {
			return findings[i].Confidence > findings[j].Confidence
		}
		return keyLess(findings[i].Key, findings[j].Key)
	})

	return findings, nil
}

func severityFor(f1 *tier1.Finding, f2 *tier2.Finding, confidence float64) string {
	if f1 != nil {
		return f1.Severity
	}
	switch {
	case confidence >= 0.9:
		return "critical"
	case confidence >= 0.7:
		return "high"
	default:
		return "medium"
	}
}

func sampleRecord(f1 *tier1.Finding, f2 *tier2.Finding) logrecord.Record {
	if f1 != nil {
		return f1.Sample
	}
	return f2.Sample
}

func usernameFor(f1 *tier1.Finding, f2 *tier2.Finding) string {
	if f1 != nil {
		return f1.Sample.Username
	}
	return f2.Vector.Username
}

func keyLess(a, b grouper.Key) bool {
	if a.SrcIP != b.SrcIP {
		return a.SrcIP < b.SrcIP
	}
	return a.Domain < b.Domain
}
