package gapr

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// pairComplete restricts x and y to the positions where both are present.
// When nothing is missing the inputs are returned as-is, so the common case
// allocates nothing.
func pairComplete(x, y []float64) ([]float64, []float64) {
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			return filterPair(x, y)
		}
	}
	return x, y
}

func filterPair(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// pearsonPair is the Pearson product-moment correlation over paired-complete
// variables. Fewer than two shared variables, or a zero-variance item, gives
// NaN.
func pearsonPair(x, y []float64) float64 {
	xs, ys := pairComplete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// kendallPair is Kendall's tau over paired-complete variables. Ties are not
// corrected for (Tau-a), matching stat.Kendall.
func kendallPair(x, y []float64) float64 {
	xs, ys := pairComplete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Kendall(xs, ys, nil)
}

// spearmanPair is the Pearson correlation of average ranks over
// paired-complete variables.
func spearmanPair(x, y []float64) float64 {
	xs, ys := pairComplete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(averageRanks(xs), averageRanks(ys), nil)
}

// averageRanks assigns 1-based ranks to v, with tied values sharing the mean
// of the ranks they span.
func averageRanks(v []float64) []float64 {
	n := len(v)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		// Positions i..j (0-based) share the mean of ranks i+1..j+1.
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// uncenteredPair is the uncentered correlation (cosine similarity) over
// paired-complete variables. A zero vector gives NaN through the 0/0
// denominator.
func uncenteredPair(x, y []float64) float64 {
	xs, ys := pairComplete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	dot := floats.Dot(xs, ys)
	return dot / math.Sqrt(floats.Dot(xs, xs)*floats.Dot(ys, ys))
}

// adjustedTangentPair maps the angle theta between the two vectors to the
// similarity 1 - 2*theta/pi, so parallel vectors score 1, orthogonal 0, and
// opposite -1. Zero vectors have no direction and give NaN.
func adjustedTangentPair(x, y []float64) float64 {
	xs, ys := pairComplete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	dot := floats.Dot(xs, ys)
	xx := floats.Dot(xs, xs)
	yy := floats.Dot(ys, ys)
	if xx == 0 || yy == 0 {
		return math.NaN()
	}
	cross := xx*yy - dot*dot
	if cross < 0 {
		cross = 0
	}
	theta := math.Atan2(math.Sqrt(cross), dot)
	return 1 - 2*theta/math.Pi
}
