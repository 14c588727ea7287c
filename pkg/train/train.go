// Package train builds the baseline feature matrix from clean logs and
// fits the scaler and isolation forest artifact Tier 2 loads.
package train

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jihwankim/beaconwatch/pkg/config"
	"github.com/jihwankim/beaconwatch/pkg/feature"
	"github.com/jihwankim/beaconwatch/pkg/forest"
	"github.com/jihwankim/beaconwatch/pkg/ingest/grouper"
	"github.com/jihwankim/beaconwatch/pkg/ingest/parser"
	"github.com/jihwankim/beaconwatch/pkg/scaler"
)

// Trainer fits a model artifact from a clean log file.
type Trainer struct {
	Config config.Config
	Logger zerolog.Logger
}

// New returns a Trainer.
func New(cfg config.Config, logger zerolog.Logger) *Trainer {
	return &Trainer{Config: cfg, Logger: logger}
}

// Run parses logPath, drops vectors whose domain is in the configured
// known-bad-domain set, fits the scaler and forest, and persists the
// combined artifact to outPath.
func (t *Trainer) Run(logPath, outPath string) error {
	records, stats, err := parser.New().ParseFile(logPath)
	if err != nil {
		return fmt.Errorf("train: parse logs: %w", err)
	}
	t.Logger.Info().
		Int("total_rows", stats.TotalRows).
		Int("parsed", stats.Parsed).
		Int("dropped", stats.Dropped).
		Msg("parsed training logs")

	groups := grouper.Group(records)
	vectors := feature.Extract(groups, t.Config.Detection.GroupMin)

	badDomains := make(map[string]struct{}, len(t.Config.Training.KnownBadDomains))
	for _, d := range t.Config.Training.KnownBadDomains {
		badDomains[d] = struct{}{}
	}

	clean := make([]feature.Vector, 0, len(vectors))
	for _, v := range vectors {
		if _, bad := badDomains[v.Domain]; bad {
			continue
		}
		clean = append(clean, v)
	}
	t.Logger.Info().
		Int("vectors_in", len(vectors)).
		Int("vectors_out", len(clean)).
		Msg("dropped known-bad-domain vectors")

	if len(clean) == 0 {
		return fmt.Errorf("train: no clean feature vectors to fit on")
	}

	matrix := make([][]float64, len(clean))
	for i, v := range clean {
		matrix[i] = v.Values
	}

	fittedScaler, scaled, err := scaler.FitTransform(matrix)
	if err != nil {
		return fmt.Errorf("train: fit scaler: %w", err)
	}

	fittedForest, err := forest.Fit(scaled, t.Config.Forest)
	if err != nil {
		return fmt.Errorf("train: fit forest: %w", err)
	}

	scores := fittedForest.ScoreSamples(scaled)
	minScore, maxScore := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}
	t.Logger.Info().
		Float64("min_score", minScore).
		Float64("max_score", maxScore).
		Float64("threshold", fittedForest.Threshold).
		Msg("fitted isolation forest")

	artifact := &forest.Artifact{
		FeatureNames: feature.Names,
		Scaler:       fittedScaler,
		Forest:       fittedForest,
	}
	if err := forest.Save(outPath, artifact); err != nil {
		return fmt.Errorf("train: save artifact: %w", err)
	}

	return nil
}
