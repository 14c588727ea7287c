// Package evaluate scores pipeline output against ground-truth labels at
// IP-level granularity.
package evaluate

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jihwankim/beaconwatch/pkg/pipeline"
)

// Report is precision/recall/F1 for one detector variant.
type Report struct {
	Variant   string
	TP        int
	FP        int
	FN        int
	Precision float64
	Recall    float64
	F1        float64
}

// Evaluator runs the pipeline against ground truth and reports Tier 1,
// Tier 2, and combined accuracy.
type Evaluator struct {
	Pipeline *pipeline.Pipeline
}

// New returns an Evaluator wrapping an already-configured Pipeline.
func New(p *pipeline.Pipeline) *Evaluator {
	return &Evaluator{Pipeline: p}
}

// Run reads groundTruthPath for the positive set, runs the pipeline on
// logPath, and computes TP/FP/FN/precision/recall/F1 at the src_ip level
// for each of "tier1", "tier2", and "combined".
func (e *Evaluator) Run(ctx context.Context, logPath, groundTruthPath string) ([]Report, error) {
	positives, err := readBeaconingIPs(groundTruthPath)
	if err != nil {
		return nil, fmt.Errorf("evaluate: read ground truth: %w", err)
	}

	result, err := e.Pipeline.Run(ctx, logPath)
	if err != nil {
		return nil, fmt.Errorf("evaluate: run pipeline: %w", err)
	}

	tier1IPs := make(map[string]struct{})
	tier2IPs := make(map[string]struct{})
	for _, f := range result.Findings {
		if f.Tier1Fired {
			tier1IPs[f.Key.SrcIP] = struct{}{}
		}
		if f.Tier2Fired {
			tier2IPs[f.Key.SrcIP] = struct{}{}
		}
	}
	combinedIPs := make(map[string]struct{}, len(tier1IPs)+len(tier2IPs))
	for ip := range tier1IPs {
		combinedIPs[ip] = struct{}{}
	}
	for ip := range tier2IPs {
		combinedIPs[ip] = struct{}{}
	}

	return []Report{
		score("tier1", tier1IPs, positives),
		score("tier2", tier2IPs, positives),
		score("combined", combinedIPs, positives),
	}, nil
}

func score(variant string, flagged, positives map[string]struct{}) Report {
	var tp, fp int
	for ip := range flagged {
		if _, ok := positives[ip]; ok {
			tp++
		} else {
			fp++
		}
	}
	fn := 0
	for ip := range positives {
		if _, ok := flagged[ip]; !ok {
			fn++
		}
	}

	var precision, recall, f1 float64
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return Report{Variant: variant, TP: tp, FP: fp, FN: fn, Precision: precision, Recall: recall, F1: f1}
}

func readBeaconingIPs(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	srcIPIdx, ok := index["src_ip"]
	if !ok {
		return nil, fmt.Errorf("ground truth CSV missing src_ip column")
	}
	typeIdx, ok := index["anomaly_type"]
	if !ok {
		return nil, fmt.Errorf("ground truth CSV missing anomaly_type column")
	}

	ips := make(map[string]struct{})
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(row[typeIdx], "beaconing") {
			ips[row[srcIPIdx]] = struct{}{}
		}
	}
	return ips, nil
}
