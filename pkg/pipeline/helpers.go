package pipeline

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jihwankim/beaconwatch/pkg/ingest/grouper"
	"github.com/jihwankim/beaconwatch/pkg/logrecord"
	"github.com/jihwankim/beaconwatch/pkg/tier2"
)

func (p *Pipeline) runTier2(groups map[grouper.Key][]logrecord.Record, skipKeys map[grouper.Key]struct{}) ([]tier2.Finding, error) {
	if p.Artifact == nil {
		return nil, fmt.Errorf("no model artifact loaded")
	}
	return tier2.Detect(groups, p.Artifact, skipKeys, p.Config, p.GroupMin)
}

// runIDNamespace scopes the RunID UUIDv5 space to this pipeline so it never
// collides with an unrelated UUIDv5 derived from the same bytes elsewhere.
var runIDNamespace = uuid.MustParse("b7e8c9c2-2a3e-4c1d-9a7f-9e4e6f2d5c10")

// newRunID derives a RunID deterministically from the raw log bytes, so two
// runs over byte-identical input produce the same RunID and the full Result
// (not just Findings/counts) is directly comparable for idempotence.
func newRunID(logPath string) (uuid.UUID, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("read log for run id: %w", err)
	}
	return uuid.NewSHA1(runIDNamespace, data), nil
}
