// Package forest implements an isolation forest: an ensemble of random
// partition trees used to score how anomalous a feature row is relative to
// a training distribution.
package forest

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/jihwankim/beaconwatch/pkg/config"
	"github.com/jihwankim/beaconwatch/pkg/statsutil"
)

// Node is one node of an isolation tree. Leaves carry the depth they were
// isolated at and the number of samples that reached them; internal nodes
// carry the random split that was chosen.
type Node struct {
	IsLeaf       bool
	FeatureIndex int
	SplitValue   float64
	Left         *Node
	Right        *Node
	Depth        int
	Size         int
}

// Tree is one isolation tree plus the subsample size it was built from.
type Tree struct {
	Root       *Node
	SampleSize int
}

// Model is a fitted isolation forest.
type Model struct {
	Trees         []*Tree
	SubsampleSize int
	NEstimators   int
	Contamination float64
	RandomState   int64
	// Threshold is the score at the contamination quantile of training
	// scores: the -1/+1 predict boundary. Predict itself is not required by
	// the pipeline; only ScoreSamples is.
	Threshold float64
}

// Fit trains an isolation forest on X (rows are samples, columns are
// features). Each estimator gets its own seeded PRNG, derived deterministically
// from RandomState + estimator index, so fitting is reproducible and each
// tree's construction is independent of the others (safe to parallelise).
func Fit(x [][]float64, cfg config.ForestConfig) (*Model, error) {
	n := len(x)
	if n == 0 {
		return nil, fmt.Errorf("forest: cannot fit on an empty matrix")
	}

	subsampleSize := cfg.SubsampleSize
	if subsampleSize > n {
		subsampleSize = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(subsampleSize))))
	if maxDepth < 1 {
		maxDepth = 1
	}

	trees := make([]*Tree, cfg.NEstimators)
	for i := 0; i < cfg.NEstimators; i++ {
		rng := rand.New(rand.NewSource(cfg.RandomState + int64(i))) //nolint:gosec
		rows := sampleRows(rng, x, subsampleSize)
		trees[i] = &Tree{
			Root:       buildNode(rng, rows, 0, maxDepth),
			SampleSize: subsampleSize,
		}
	}

	m := &Model{
		Trees:         trees,
		SubsampleSize: subsampleSize,
		NEstimators:   cfg.NEstimators,
		Contamination: cfg.Contamination,
		RandomState:   cfg.RandomState,
	}

	trainScores := m.ScoreSamples(x)
	m.Threshold = statsutil.Percentile(trainScores, cfg.Contamination*100)

	return m, nil
}

// sampleRows draws k rows from x uniformly without replacement, via a
// partial Fisher-Yates shuffle of the index set.
func sampleRows(rng *rand.Rand, x [][]float64, k int) [][]float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	rows := make([][]float64, k)
	for i := 0; i < k; i++ {
		rows[i] = x[idx[i]]
	}
	return rows
}

// buildNode recursively partitions rows: at each internal node a feature is
// picked uniformly at random and a split value uniformly within that
// feature's range across the node's rows. Recursion stops when the node
// holds at most one sample, at maxDepth, or when the chosen feature is
// constant across the node (no split is possible).
func buildNode(rng *rand.Rand, rows [][]float64, depth, maxDepth int) *Node {
	if len(rows) <= 1 || depth >= maxDepth {
		return &Node{IsLeaf: true, Depth: depth, Size: len(rows)}
	}

	d := len(rows[0])
	featureIdx := rng.Intn(d)
	min, max := columnRange(rows, featureIdx)
	if min == max {
		return &Node{IsLeaf: true, Depth: depth, Size: len(rows)}
	}

	splitValue := min + rng.Float64()*(max-min)

	var left, right [][]float64
	for _, row := range rows {
		if row[featureIdx] < splitValue {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &Node{IsLeaf: true, Depth: depth, Size: len(rows)}
	}

	return &Node{
		FeatureIndex: featureIdx,
		SplitValue:   splitValue,
		Left:         buildNode(rng, left, depth+1, maxDepth),
		Right:        buildNode(rng, right, depth+1, maxDepth),
	}
}

func columnRange(rows [][]float64, col int) (min, max float64) {
	min, max = rows[0][col], rows[0][col]
	for _, row := range rows[1:] {
		v := row[col]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// ScoreSamples returns the scikit-learn score_samples convention: more
// negative is more anomalous.
func (m *Model) ScoreSamples(x [][]float64) []float64 {
	c := statsutil.PathLengthNormalizer(m.SubsampleSize)
	scores := make([]float64, len(x))
	for i, row := range x {
		var hSum float64
		for _, t := range m.Trees {
			depth, size := pathLength(t.Root, row)
			hSum += float64(depth) + statsutil.PathLengthNormalizer(size)
		}
		hbar := hSum / float64(len(m.Trees))
		if c == 0 {
			scores[i] = -1
			continue
		}
		scores[i] = -math.Pow(2, -hbar/c)
	}
	return scores
}

func pathLength(node *Node, row []float64) (depth, size int) {
	for !node.IsLeaf {
		if row[node.FeatureIndex] < node.SplitValue {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Depth, node.Size
}
