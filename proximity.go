package gapr

import (
	"fmt"
	"math"
)

// ProximityType selects the pairwise proximity measure.
type ProximityType string

const (
	// Distance family: true dissimilarities, zero diagonal.
	ProximityEuclidean ProximityType = "euclidean"
	ProximityCityBlock ProximityType = "cityblock"

	// Correlation family: similarity scores. Pearson, Kendall, Spearman,
	// and adjusted tangent lie in [-1, 1]; the absolute variants in [0, 1].
	ProximityPearson         ProximityType = "pearson"
	ProximityKendall         ProximityType = "kendall"
	ProximitySpearman        ProximityType = "spearman"
	ProximityAdjustedTangent ProximityType = "adjusted_tangent"
	ProximityAbsPearson      ProximityType = "abs_pearson"
	ProximityUncentered      ProximityType = "uncentered"
	ProximityAbsUncentered   ProximityType = "abs_uncentered"

	// Binary association family: similarity scores over 0/1 data.
	ProximityHamman         ProximityType = "hamman"
	ProximityJaccard        ProximityType = "jaccard"
	ProximityPhi            ProximityType = "phi"
	ProximityRao            ProximityType = "rao"
	ProximityRogersTanimoto ProximityType = "rogers_tanimoto"
	ProximitySimpleMatching ProximityType = "simple_matching"
	ProximitySneath         ProximityType = "sneath"
	ProximityYuleQ          ProximityType = "yule_q"
)

// IsDistance reports whether p produces dissimilarities. All other families
// produce similarities; callers feeding a distance-consuming stage convert
// with SimilarityToDistance first.
func (p ProximityType) IsDistance() bool {
	return p == ProximityEuclidean || p == ProximityCityBlock
}

// IsCorrelation reports whether p belongs to the correlation family.
func (p ProximityType) IsCorrelation() bool {
	switch p {
	case ProximityPearson, ProximityKendall, ProximitySpearman,
		ProximityAdjustedTangent, ProximityAbsPearson,
		ProximityUncentered, ProximityAbsUncentered:
		return true
	}
	return false
}

// IsBinary reports whether p belongs to the binary association family,
// which requires 0/1 data.
func (p ProximityType) IsBinary() bool {
	switch p {
	case ProximityHamman, ProximityJaccard, ProximityPhi, ProximityRao,
		ProximityRogersTanimoto, ProximitySimpleMatching,
		ProximitySneath, ProximityYuleQ:
		return true
	}
	return false
}

// Valid reports whether p names a supported proximity type.
func (p ProximityType) Valid() bool {
	return p.IsDistance() || p.IsCorrelation() || p.IsBinary()
}

// Side selects which axis of the data matrix holds the items to compare.
type Side string

const (
	// SideRows treats each row as an item and each column as a variable.
	SideRows Side = "rows"
	// SideColumns treats each column as an item and each row as a variable.
	SideColumns Side = "columns"
)

// Valid reports whether s names a supported side.
func (s Side) Valid() bool { return s == SideRows || s == SideColumns }

// pairFunc computes one proximity entry from two item vectors of equal
// length. NaN entries are treated as missing under the pairwise-complete
// policy; an entry with no usable information is NaN.
type pairFunc func(x, y []float64) float64

// proximityFunc resolves the pair computation for a proximity type.
func proximityFunc(t ProximityType) (pairFunc, error) {
	switch t {
	case ProximityEuclidean:
		return euclideanPair, nil
	case ProximityCityBlock:
		return cityBlockPair, nil
	case ProximityPearson:
		return pearsonPair, nil
	case ProximityKendall:
		return kendallPair, nil
	case ProximitySpearman:
		return spearmanPair, nil
	case ProximityAdjustedTangent:
		return adjustedTangentPair, nil
	case ProximityAbsPearson:
		return absPair(pearsonPair), nil
	case ProximityUncentered:
		return uncenteredPair, nil
	case ProximityAbsUncentered:
		return absPair(uncenteredPair), nil
	case ProximityHamman:
		return hammanPair, nil
	case ProximityJaccard:
		return jaccardPair, nil
	case ProximityPhi:
		return phiPair, nil
	case ProximityRao:
		return raoPair, nil
	case ProximityRogersTanimoto:
		return rogersTanimotoPair, nil
	case ProximitySimpleMatching:
		return simpleMatchingPair, nil
	case ProximitySneath:
		return sneathPair, nil
	case ProximityYuleQ:
		return yuleQPair, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidProximity, t)
	}
}

// absPair wraps a pair computation with an absolute value. NaN passes through.
func absPair(f pairFunc) pairFunc {
	return func(x, y []float64) float64 { return math.Abs(f(x, y)) }
}

// euclideanPair is the Euclidean distance over pairwise-complete variables,
// with the sum of squares rescaled by p/used before the root so that skipped
// variables do not shrink the distance.
func euclideanPair(x, y []float64) float64 {
	var sum float64
	used := 0
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		d := x[i] - y[i]
		sum += d * d
		used++
	}
	if used == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum * float64(len(x)) / float64(used))
}

// cityBlockPair is the Manhattan distance over pairwise-complete variables,
// rescaled by p/used.
func cityBlockPair(x, y []float64) float64 {
	var sum float64
	used := 0
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		sum += math.Abs(x[i] - y[i])
		used++
	}
	if used == 0 {
		return math.NaN()
	}
	return sum * float64(len(x)) / float64(used)
}

// orientItems validates the data matrix and lays the items out flat
// row-major: n items of p variables each. SideColumns transposes.
func orientItems(data [][]float64, side Side) (items []float64, n, p int, err error) {
	rows, cols, err := checkRectangular(data)
	if err != nil {
		return nil, 0, 0, err
	}
	switch side {
	case SideRows:
		n, p = rows, cols
		items = make([]float64, n*p)
		for i, row := range data {
			copy(items[i*p:], row)
		}
	case SideColumns:
		n, p = cols, rows
		items = make([]float64, n*p)
		for i, row := range data {
			for j, v := range row {
				items[j*p+i] = v
			}
		}
	default:
		return nil, 0, 0, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	return items, n, p, nil
}

// checkProximityData enforces the engine's data preconditions: NaN entries
// only when the missing flag is set, and strictly 0/1 values for the binary
// family.
func checkProximityData(items []float64, p int, proxType ProximityType, missing bool) error {
	binary := proxType.IsBinary()
	for k, v := range items {
		if math.IsNaN(v) {
			if !missing {
				return fmt.Errorf("%w: item %d, variable %d", ErrMissingValues, k/p, k%p)
			}
			continue
		}
		if binary && v != 0 && v != 1 {
			return fmt.Errorf("%w: item %d, variable %d = %v", ErrNonBinaryData, k/p, k%p, v)
		}
	}
	return nil
}

// fillProximity fills result rows [startRow, endRow) of the n x n proximity
// matrix, mirroring each computed entry across the diagonal. The distance
// family keeps a zero diagonal; similarity families store the computed
// self-proximity, which is NaN for degenerate items (for example a
// zero-variance row under Pearson).
func fillProximity(result, items []float64, n, p int, pair pairFunc, diagZero bool, startRow, endRow int) {
	for i := startRow; i < endRow; i++ {
		xi := items[i*p : (i+1)*p]
		if !diagZero {
			result[i*n+i] = pair(xi, xi)
		}
		for j := i + 1; j < n; j++ {
			v := pair(xi, items[j*p:(j+1)*p])
			result[i*n+j] = v
			result[j*n+i] = v
		}
	}
}

// ComputeProximity computes the items x items proximity matrix of data.
// Items are the rows or the columns of data according to side; the matrix is
// returned flat row-major together with the item count.
//
// The distance family returns true dissimilarities with a zero diagonal; the
// correlation and binary families return similarities. When missing is true,
// NaN data entries are treated as missing under a pairwise-complete policy:
// distance sums are rescaled by p/used, correlation-family entries need at
// least two shared variables, and binary tables count only positions present
// in both items. Pairs left with no usable information produce a NaN entry,
// not an error. When missing is false, any NaN entry is rejected with
// ErrMissingValues.
func ComputeProximity(data [][]float64, proxType ProximityType, side Side, missing bool) ([]float64, int, error) {
	pair, err := proximityFunc(proxType)
	if err != nil {
		return nil, 0, err
	}
	items, n, p, err := orientItems(data, side)
	if err != nil {
		return nil, 0, err
	}
	if err := checkProximityData(items, p, proxType, missing); err != nil {
		return nil, 0, err
	}

	result := make([]float64, n*n)
	fillProximity(result, items, n, p, pair, proxType.IsDistance(), 0, n)
	return result, n, nil
}

// SimilarityToDistance converts a similarity matrix to the dissimilarity
// d = 1 - s expected by the clustering builder. Computed correlations can
// round a hair above one on perfectly correlated pairs, so results within
// numTol below zero snap to exactly zero; larger negative results are left
// for the distance checks to reject. NaN entries pass through. The input is
// not modified.
func SimilarityToDistance(prox []float64) []float64 {
	out := make([]float64, len(prox))
	for i, s := range prox {
		d := 1 - s
		if d < 0 && d >= -numTol {
			d = 0
		}
		out[i] = d
	}
	return out
}
