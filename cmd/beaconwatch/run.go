package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jihwankim/beaconwatch/pkg/forest"
	"github.com/jihwankim/beaconwatch/pkg/metrics"
	"github.com/jihwankim/beaconwatch/pkg/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run the detection pipeline against a log file",
	Long:  `Parses a proxy log, runs Tier 1, Tier 2, and Tier 3, and prints the fused findings.`,
	RunE:  runPipeline,
}

func init() {
	runCmd.Flags().String("logs", "", "path to the proxy log CSV")
	runCmd.Flags().String("model", "", "path to the trained model artifact (default <model_dir>/model.bin)")
	runCmd.Flags().String("out", "", "path to write the PipelineResult as JSON (optional; findings always print to stdout)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	logPath, _ := cmd.Flags().GetString("logs")
	if logPath == "" {
		return fmt.Errorf("--logs flag is required")
	}
	modelPath, _ := cmd.Flags().GetString("model")
	outPath, _ := cmd.Flags().GetString("out")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	if modelPath == "" {
		modelPath = filepath.Join(cfg.Training.ModelDir, "model.bin")
	}
	artifact, err := forest.Load(modelPath, 0)
	if err != nil {
		return fmt.Errorf("failed to load model artifact: %w", err)
	}

	explainer, err := buildExplainer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build explainer: %w", err)
	}

	var metricsReg *metrics.Registry
	if cfg.Metrics.Enabled {
		metricsReg = metrics.New()
		go serveMetrics(cfg.Metrics.Addr, metricsReg, logger)
	}

	p := pipeline.New(*cfg, artifact, explainer, metricsReg)

	logger.Info().Str("log", logPath).Msg("starting pipeline run")
	result, err := p.Run(context.Background(), logPath)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	logger.Info().
		Str("run_id", result.RunID.String()).
		Int("total_logs", result.TotalLogs).
		Int("tier1_flagged", result.Tier1Flagged).
		Int("tier2_flagged", result.Tier2Flagged).
		Int("tier3_explained", result.Tier3Explained).
		Int64("total_time_ms", result.TotalTimeMS).
		Msg("pipeline run complete")

	for _, f := range result.Findings {
		fmt.Printf("[%s] %s -> %s (confidence %.2f)\n  %s\n  %s\n  %s\n  %s\n\n",
			f.Severity, f.Key.SrcIP, f.Key.Domain, f.Confidence,
			f.Narrative.ThreatSummary, f.Narrative.WhatHappened, f.Narrative.WhySuspicious, f.Narrative.RecommendedAction,
		)
	}

	if outPath != "" {
		if err := writeResultJSON(outPath, result); err != nil {
			return fmt.Errorf("failed to write result JSON: %w", err)
		}
	}

	return nil
}

func writeResultJSON(path string, result pipeline.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// serveMetrics exposes reg on /metrics. It blocks, so callers run it in its
// own goroutine; a listener failure is logged, not fatal, since metrics are
// always optional.
func serveMetrics(addr string, reg *metrics.Registry, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{}))
	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
