// Package tier1 implements the three population/interval statistical rules
// and their fusion into Tier 1 findings.
package tier1

import (
	"sort"

	"github.com/jihwankim/beaconwatch/pkg/config"
	"github.com/jihwankim/beaconwatch/pkg/ingest/grouper"
	"github.com/jihwankim/beaconwatch/pkg/logrecord"
	"github.com/jihwankim/beaconwatch/pkg/statsutil"
)

// Method names, in fusion-evidence order.
const (
	MethodZScore            = "zscore"
	MethodIntervalThreshold = "interval_threshold"
	MethodIQR               = "iqr"
)

// Evidence carries the numeric quantities behind every method, whether or
// not it fired, so downstream consumers can inspect the numbers.
type Evidence struct {
	PopulationMean float64
	PopulationStd  float64
	ZScore         float64
	HasZScore      bool

	AvgInterval float64
	Jitter      float64
	HasInterval bool

	Q1        float64
	Q3        float64
	IQR       float64
	HasIQR    bool
}

// Finding is one Tier 1 result for a key.
type Finding struct {
	Key          grouper.Key
	MethodsFired []string
	Descriptions []string
	Severity     string // "low" (never emitted), "high", "critical"
	RequestCount int
	Evidence     Evidence
	Sample       logrecord.Record
}

// Detect runs the three Tier 1 methods over every group (no GROUP_MIN
// filter — only MinRequests applies to the interval-based methods) and
// fuses them. Only keys where at least two methods fired are returned.
func Detect(groups map[grouper.Key][]logrecord.Record, cfg config.DetectionConfig) []Finding {
	keys := make([]grouper.Key, 0, len(groups))
	counts := make([]float64, 0, len(groups))
	for k, recs := range groups {
		keys = append(keys, k)
		counts = append(counts, float64(len(recs)))
	}

	popMean := statsutil.Mean(counts)
	popStd := statsutil.PopStddev(counts, popMean)

	var findings []Finding
	for i, key := range keys {
		records := groups[key]
		n := len(records)

		ev := Evidence{PopulationMean: popMean, PopulationStd: popStd}
		var methods []string
		var descriptions []string

		if popStd > 0 {
			z := (counts[i] - popMean) / popStd
			ev.ZScore = z
			ev.HasZScore = true
			if z >= cfg.ZScoreThreshold {
				methods = append(methods, MethodZScore)
				descriptions = append(descriptions, zScoreDescription(z, popMean, popStd))
			}
		}

		if n >= cfg.MinRequests {
			intervals := interArrivalSeconds(records)
			avgInterval := statsutil.Mean(intervals)
			jitter := statsutil.PopStddev(intervals, avgInterval)
			ev.AvgInterval = avgInterval
			ev.Jitter = jitter
			ev.HasInterval = true

			if avgInterval <= cfg.IntervalMaxAvgS && jitter <= cfg.IntervalMaxJitterS {
				methods = append(methods, MethodIntervalThreshold)
				descriptions = append(descriptions, intervalDescription(avgInterval, jitter))
			}

			q1 := statsutil.Percentile(intervals, 25)
			q3 := statsutil.Percentile(intervals, 75)
			iqr := q3 - q1
			ev.Q1, ev.Q3, ev.IQR = q1, q3, iqr
			ev.HasIQR = true

			if iqr <= cfg.IQRMax {
				methods = append(methods, MethodIQR)
				descriptions = append(descriptions, iqrDescription(q1, q3, iqr))
			}
		}

		if len(methods) < 2 {
			continue
		}

		findings = append(findings, Finding{
			Key:          key,
			MethodsFired: methods,
			Descriptions: descriptions,
			Severity:     severityFor(len(methods)),
			RequestCount: n,
			Evidence:     ev,
			Sample:       records[n/2],
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if len(findings[i].MethodsFired) != len(findings[j].MethodsFired) {
			return len(findings[i].MethodsFired) > len(findings[j].MethodsFired)
		}
		return keyLess(findings[i].Key, findings[j].Key)
	})

	return findings
}

func severityFor(n int) string {
	switch n {
	case 3:
		return "critical"
	case 2:
		return "high"
	default:
		return "low"
	}
}

func interArrivalSeconds(records []logrecord.Record) []float64 {
	intervals := make([]float64, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		intervals = append(intervals, records[i].Timestamp.Sub(records[i-1].Timestamp).Seconds())
	}
	return intervals
}

func keyLess(a, b grouper.Key) bool {
	if a.SrcIP != b.SrcIP {
		return a.SrcIP < b.SrcIP
	}
	return a.Domain < b.Domain
}
