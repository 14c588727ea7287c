// Package feature extracts per-group numeric feature vectors from grouped
// log records.
package feature

import (
	"math"
	"sort"

	"github.com/jihwankim/beaconwatch/pkg/ingest/grouper"
	"github.com/jihwankim/beaconwatch/pkg/logrecord"
	"github.com/jihwankim/beaconwatch/pkg/statsutil"
)

// Names is the fixed, positional feature column order. Every matrix built
// for scaling, training, or scoring must use this order.
var Names = []string{
	"avg_interval_s",
	"cv",
	"bytes_sent_cv",
	"unique_paths_ratio",
	"night_ratio",
	"request_count",
}

// Vector is one group's feature row plus identity fields for downstream
// context.
type Vector struct {
	SrcIP      string
	Domain     string
	Username   string
	Values     []float64 // positional, matches Names
	Sample     logrecord.Record
	RequestCnt int
}

// Round4 rounds a value to 4 decimal places for stable serialisation. Full
// precision is retained in Values; this is a display helper only.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Extract builds a Vector for every group whose request count is at least
// groupMin. Groups with zero average inter-arrival interval are dropped
// (cv is undefined there).
func Extract(groups map[grouper.Key][]logrecord.Record, groupMin int) []Vector {
	var vectors []Vector
	for key, records := range groups {
		if len(records) < groupMin {
			continue
		}
		v, ok := extractOne(key, records)
		if !ok {
			continue
		}
		vectors = append(vectors, v)
	}
	sort.Slice(vectors, func(i, j int) bool {
		if vectors[i].SrcIP != vectors[j].SrcIP {
			return vectors[i].SrcIP < vectors[j].SrcIP
		}
		return vectors[i].Domain < vectors[j].Domain
	})
	return vectors
}

func extractOne(key grouper.Key, records []logrecord.Record) (Vector, bool) {
	n := len(records)

	intervals := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		intervals = append(intervals, records[i].Timestamp.Sub(records[i-1].Timestamp).Seconds())
	}

	avgInterval := statsutil.Mean(intervals)
	if avgInterval == 0 {
		return Vector{}, false
	}
	cv := statsutil.PopStddev(intervals, avgInterval) / avgInterval

	bytesSent := make([]float64, n)
	paths := make(map[string]struct{}, n)
	nightCount := 0
	for i, r := range records {
		bytesSent[i] = float64(r.BytesSent)
		paths[logrecord.Path(r.URL)] = struct{}{}
		hour := r.Timestamp.Hour()
		if hour < 8 || hour >= 20 {
			nightCount++
		}
	}

	meanBytes := statsutil.Mean(bytesSent)
	var bytesSentCV float64
	if meanBytes != 0 {
		bytesSentCV = statsutil.PopStddev(bytesSent, meanBytes) / meanBytes
	}

	uniquePathsRatio := float64(len(paths)) / float64(n)
	nightRatio := float64(nightCount) / float64(n)

	return Vector{
		SrcIP:    key.SrcIP,
		Domain:   key.Domain,
		Username: records[0].Username,
		Values: []float64{
			avgInterval,
			cv,
			bytesSentCV,
			uniquePathsRatio,
			nightRatio,
			float64(n),
		},
		Sample:     records[n/2],
		RequestCnt: n,
	}, true
}
