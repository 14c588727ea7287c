// Package pipeline orchestrates the end-to-end run: parse, Tier 1, Tier 2,
// Tier 3, timing each stage.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jihwankim/beaconwatch/pkg/config"
	"github.com/jihwankim/beaconwatch/pkg/forest"
	"github.com/jihwankim/beaconwatch/pkg/ingest/grouper"
	"github.com/jihwankim/beaconwatch/pkg/ingest/parser"
	"github.com/jihwankim/beaconwatch/pkg/metrics"
	"github.com/jihwankim/beaconwatch/pkg/tier1"
	"github.com/jihwankim/beaconwatch/pkg/tier2"
	"github.com/jihwankim/beaconwatch/pkg/tier3"
)

// Result is the structured value a pipeline run returns.
type Result struct {
	RunID          uuid.UUID
	TotalLogs      int
	ParseTimeMS    int64
	Tier1Flagged   int
	Tier2Flagged   int
	Tier3Explained int
	TotalTimeMS    int64
	Findings       []tier3.Finding
	StageDurations map[string]time.Duration
}

// Pipeline wires together the parser, detectors, and fusion stage. It is
// synchronous and single-threaded: no stage observes a partially-computed
// prior stage.
type Pipeline struct {
	Config    config.DetectionConfig
	GroupMin  int
	Artifact  *forest.Artifact
	Explainer tier3.Explainer
	Metrics   *metrics.Registry
}

// New builds a Pipeline. artifact may be nil only if the caller never
// intends to run Tier 2 (e.g. Tier-1-only diagnostics); Run will fail if
// Tier 2 is reached without one. metricsReg may be nil; every Metrics call
// site is nil-safe, so collection stays entirely optional.
func New(cfg config.Config, artifact *forest.Artifact, explainer tier3.Explainer, metricsReg *metrics.Registry) *Pipeline {
	return &Pipeline{
		Config:    cfg.Detection,
		GroupMin:  cfg.Detection.GroupMin,
		Artifact:  artifact,
		Explainer: explainer,
		Metrics:   metricsReg,
	}
}

// Run executes one job: parse the log file at path, run Tier 1, Tier 2
// (skipping Tier 1's critical keys), and Tier 3, in order.
func (p *Pipeline) Run(ctx context.Context, logPath string) (Result, error) {
	durations := make(map[string]time.Duration, 4)
	start := time.Now()

	parseStart := time.Now()
	records, stats, err := parser.New().ParseFile(logPath)
	durations["parse"] = time.Since(parseStart)
	p.Metrics.ObserveStage("parse", durations["parse"])
	if err != nil {
		return Result{}, fmt.Errorf("stage parse: %w", err)
	}
	if p.Metrics != nil {
		p.Metrics.RowsParsed.Add(float64(stats.Parsed))
		p.Metrics.RowsDropped.Add(float64(stats.Dropped))
	}

	groups := grouper.Group(records)

	tier1Start := time.Now()
	t1 := tier1.Detect(groups, p.Config)
	durations["tier1"] = time.Since(tier1Start)
	p.Metrics.ObserveStage("tier1", durations["tier1"])
	if p.Metrics != nil {
		p.Metrics.Tier1Flagged.Add(float64(len(t1)))
	}

	criticalKeys := make(map[grouper.Key]struct{})
	for _, f := range t1 {
		if len(f.MethodsFired) == 3 {
			criticalKeys[f.Key] = struct{}{}
		}
	}

	tier2Start := time.Now()
	t2Findings, err := p.runTier2(groups, criticalKeys)
	durations["tier2"] = time.Since(tier2Start)
	p.Metrics.ObserveStage("tier2", durations["tier2"])
	if err != nil {
		return Result{}, fmt.Errorf("stage tier2: %w", err)
	}
	if p.Metrics != nil {
		p.Metrics.Tier2Flagged.Add(float64(len(t2Findings)))
	}

	tier3Start := time.Now()
	findings, err := tier3.Fuse(ctx, t1, t2Findings, p.Explainer)
	durations["tier3"] = time.Since(tier3Start)
	p.Metrics.ObserveStage("tier3", durations["tier3"])
	if err != nil {
		return Result{}, fmt.Errorf("stage tier3: %w", err)
	}
	if p.Metrics != nil {
		p.Metrics.Tier3Flagged.Add(float64(len(findings)))
	}

	runID, err := newRunID(logPath)
	if err != nil {
		return Result{}, fmt.Errorf("stage finalize: %w", err)
	}

	return Result{
		RunID:          runID,
		TotalLogs:      len(records),
		ParseTimeMS:    durations["parse"].Milliseconds(),
		Tier1Flagged:   len(t1),
		Tier2Flagged:   len(t2Findings),
		Tier3Explained: len(findings),
		TotalTimeMS:    time.Since(start).Milliseconds(),
		Findings:       findings,
		StageDurations: durations,
	}, nil
}
