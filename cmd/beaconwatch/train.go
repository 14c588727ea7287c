package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jihwankim/beaconwatch/pkg/train"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Args:  cobra.NoArgs,
	Short: "Fit a model artifact from a clean baseline log",
	Long:  `Parses a clean proxy log, extracts features, fits the scaler and isolation forest, and writes the model artifact.`,
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().String("logs", "", "path to the clean baseline log CSV")
	trainCmd.Flags().String("out", "", "output path for the model artifact (default <model_dir>/model.bin)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	logPath, _ := cmd.Flags().GetString("logs")
	if logPath == "" {
		return fmt.Errorf("--logs flag is required")
	}
	outPath, _ := cmd.Flags().GetString("out")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg)

	if outPath == "" {
		outPath = filepath.Join(cfg.Training.ModelDir, "model.bin")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	trainer := train.New(*cfg, logger)
	if err := trainer.Run(logPath, outPath); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	logger.Info().Str("artifact", outPath).Msg("training complete")
	return nil
}
