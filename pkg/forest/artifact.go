package forest

import (
	"bufio"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/jihwankim/beaconwatch/pkg/scaler"
)

// artifactMagic identifies a BeaconWatch model file; artifactVersion allows
// the on-disk layout to evolve without silently misreading an old file.
const (
	artifactMagic   uint32 = 0xBEAC04E5
	artifactVersion uint16 = 1
)

// Artifact bundles a fitted forest with the scaler it was trained against
// and the feature names it expects, in order.
type Artifact struct {
	FeatureNames []string
	Scaler       *scaler.Scaler
	Forest       *Model
}

// Save persists the artifact: a fixed magic/version/feature-count header
// followed by a gob-encoded body.
func Save(path string, a *Artifact) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("forest: create artifact: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.BigEndian, artifactMagic); err != nil {
		return fmt.Errorf("forest: write magic: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, artifactVersion); err != nil {
		return fmt.Errorf("forest: write version: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(a.FeatureNames))); err != nil {
		return fmt.Errorf("forest: write feature count: %w", err)
	}

	if err := gob.NewEncoder(w).Encode(a); err != nil {
		return fmt.Errorf("forest: encode artifact body: %w", err)
	}
	return w.Flush()
}

// Load reads and validates an artifact written by Save. A magic mismatch or
// a feature-count mismatch with wantFeatureCount is a fatal configuration
// error, never a silent degradation. A wantFeatureCount of 0 or less skips
// the feature-count check.
func Load(path string, wantFeatureCount int) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("forest: open artifact: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("forest: read magic: %w", err)
	}
	if magic != artifactMagic {
		return nil, fmt.Errorf("forest: not a beaconwatch model artifact (bad magic)")
	}

	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("forest: read version: %w", err)
	}
	if version != artifactVersion {
		return nil, fmt.Errorf("forest: unsupported artifact version %d", version)
	}

	var featureCount uint32
	if err := binary.Read(r, binary.BigEndian, &featureCount); err != nil {
		return nil, fmt.Errorf("forest: read feature count: %w", err)
	}
	if wantFeatureCount > 0 && int(featureCount) != wantFeatureCount {
		return nil, fmt.Errorf("forest: artifact has %d features, pipeline expects %d", featureCount, wantFeatureCount)
	}

	var a Artifact
	if err := gob.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("forest: decode artifact body: %w", err)
	}
	return &a, nil
}
