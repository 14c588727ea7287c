// Package tier2 scores feature vectors with a fitted isolation forest and
// turns the scores into confidence-ranked findings.
package tier2

import (
	"fmt"
	"math"
	"sort"

	"github.com/jihwankim/beaconwatch/pkg/config"
	"github.com/jihwankim/beaconwatch/pkg/feature"
	"github.com/jihwankim/beaconwatch/pkg/forest"
	"github.com/jihwankim/beaconwatch/pkg/ingest/grouper"
	"github.com/jihwankim/beaconwatch/pkg/logrecord"
)

// Finding is one Tier 2 result for a key.
type Finding struct {
	Key          grouper.Key
	Confidence   float64
	AnomalyScore float64
	Vector       feature.Vector
	TopFeatures  []string
	Sample       logrecord.Record
}

// Detect extracts features, scales and scores them against the artifact,
// and returns findings for every group whose confidence clears the
// threshold. skipKeys (Tier 1's "critical" keys) are dropped before scoring.
func Detect(
	groups map[grouper.Key][]logrecord.Record,
	artifact *forest.Artifact,
	skipKeys map[grouper.Key]struct{},
	cfg config.DetectionConfig,
	groupMin int,
) ([]Finding, error) {
	vectors := feature.Extract(groups, groupMin)
	if len(vectors) == 0 {
		return nil, nil
	}

	kept := make([]feature.Vector, 0, len(vectors))
	for _, v := range vectors {
		key := grouper.Key{SrcIP: v.SrcIP, Domain: v.Domain}
		if _, skip := skipKeys[key]; skip {
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	matrix := make([][]float64, len(kept))
	for i, v := range kept {
		matrix[i] = v.Values
	}

	scaled, err := artifact.Scaler.Transform(matrix)
	if err != nil {
		return nil, fmt.Errorf("tier2: scale features: %w", err)
	}

	raw := artifact.Forest.ScoreSamples(scaled)
	confidences := confidenceFromScores(raw)

	var findings []Finding
	for i, v := range kept {
		conf := confidences[i]
		if conf < cfg.ConfidenceThreshold {
			continue
		}
		findings = append(findings, Finding{
			Key:          grouper.Key{SrcIP: v.SrcIP, Domain: v.Domain},
			Confidence:   conf,
			AnomalyScore: raw[i],
			Vector:       v,
			TopFeatures:  topFeatures(scaled[i], cfg.TopFeaturesN),
			Sample:       v.Sample,
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

// confidenceFromScores flips the sign of the raw scores (so more anomalous
// is a larger number) then min-max normalises within the batch. If every row
// has the same flipped score, all confidences are 0.
func confidenceFromScores(raw []float64) []float64 {
	flipped := make([]float64, len(raw))
	for i, s := range raw {
		flipped[i] = -s
	}

	min, max := flipped[0], flipped[0]
	for _, v := range flipped[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	conf := make([]float64, len(flipped))
	if max == min {
		return conf
	}
	for i, v := range flipped {
		conf[i] = (v - min) / (max - min)
	}
	return conf
}

// topFeatures picks the n feature names whose scaled (training-sigma units)
// deviation from zero is largest, breaking ties by feature.Names order.
func topFeatures(scaledRow []float64, n int) []string {
	type dev struct {
		idx int
		abs float64
	}
	devs := make([]dev, len(scaledRow))
	for i, v := range scaledRow {
		devs[i] = dev{idx: i, abs: math.Abs(v)}
	}
	sort.SliceStable(devs, func(i, j int) bool {
		return devs[i].abs > devs[j].abs
	})

	if n > len(devs) {
		n = len(devs)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = feature.Names[devs[i].idx]
	}
	return out
}

func keyLess(a, b grouper.Key) bool {
	if a.SrcIP != b.SrcIP {
		return a.SrcIP < b.SrcIP
	}
	return a.Domain < b.Domain
}
