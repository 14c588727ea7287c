package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jihwankim/beaconwatch/pkg/evaluate"
	"github.com/jihwankim/beaconwatch/pkg/forest"
	"github.com/jihwankim/beaconwatch/pkg/pipeline"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Args:  cobra.NoArgs,
	Short: "Score pipeline output against labelled ground truth",
	Long:  `Runs the full pipeline against a log and reports Tier 1, Tier 2, and combined precision/recall/F1 at the src_ip level.`,
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().String("logs", "", "path to the proxy log CSV")
	evaluateCmd.Flags().String("ground-truth", "", "path to the ground-truth CSV")
	evaluateCmd.Flags().String("model", "", "path to the trained model artifact (default <model_dir>/model.bin)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	logPath, _ := cmd.Flags().GetString("logs")
	groundTruthPath, _ := cmd.Flags().GetString("ground-truth")
	if logPath == "" || groundTruthPath == "" {
		return fmt.Errorf("--logs and --ground-truth flags are required")
	}
	modelPath, _ := cmd.Flags().GetString("model")

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

	p := pipeline.New(*cfg, artifact, explainer, nil)
	reports, err := evaluate.New(p).Run(context.Background(), logPath, groundTruthPath)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	for _, r := range reports {
		fmt.Printf("%-10s tp=%-4d fp=%-4d fn=%-4d precision=%.3f recall=%.3f f1=%.3f\n",
			r.Variant, r.TP, r.FP, r.FN, r.Precision, r.Recall, r.F1)
	}
	return nil
}
