// Package statsutil holds the small numeric kernels (mean, population
// standard deviation, linear-interpolated percentile) shared by Tier 1,
// feature extraction, and the isolation forest.
package statsutil

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// PopStddev returns the population standard deviation of xs about mean m.
func PopStddev(xs []float64, m float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// Percentile returns the pth percentile (0-100) of xs using linear
// interpolation between closest ranks. xs is not mutated.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Harmonic returns H(k), the kth harmonic number, H(0) = 0. Computed as the
// exact partial sum rather than an asymptotic approximation, since isolation
// forest subsample sizes stay well within the range where the O(k) sum costs
// nothing.
func Harmonic(k int) float64 {
	if k <= 0 {
		return 0
	}
	var sum float64
	for i := 1; i <= k; i++ {
		sum += 1 / float64(i)
	}
	return sum
}

// PathLengthNormalizer returns c(k): the average path length of an
// unsuccessful BST search with k nodes, used to normalise isolation-tree
// leaf depths. c(1) = 0 per definition.
func PathLengthNormalizer(k int) float64 {
	if k <= 1 {
		return 0
	}
	return 2*Harmonic(k-1) - 2*float64(k-1)/float64(k)
}
