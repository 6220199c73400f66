package gapr

import (
	"errors"
	"fmt"
	"math"
)

// Precondition violations are reported through these sentinel errors, wrapped
// with the offending parameter via fmt.Errorf("%w: ...", Err). Callers match
// with errors.Is. Undefined numeric results are never errors; they appear as
// NaN entries and are documented on the operation that produces them.
var (
	// ErrNonRectangular reports a data matrix whose rows differ in length.
	ErrNonRectangular = errors.New("gapr: non-rectangular data matrix")

	// ErrInvalidProximity reports an unknown proximity type.
	ErrInvalidProximity = errors.New("gapr: invalid proximity type")

	// ErrInvalidSide reports an unknown orientation side.
	ErrInvalidSide = errors.New("gapr: invalid side")

	// ErrInvalidLinkage reports an unknown linkage method.
	ErrInvalidLinkage = errors.New("gapr: invalid linkage")

	// ErrInvalidFlip reports an unknown flip policy.
	ErrInvalidFlip = errors.New("gapr: invalid flip policy")

	// ErrNonBinaryData reports a binary proximity applied to data outside {0, 1}.
	ErrNonBinaryData = errors.New("gapr: binary proximity requires 0/1 data")

	// ErrMissingValues reports NaN data entries without the missing-value flag.
	ErrMissingValues = errors.New("gapr: data contains missing values")

	// ErrMatrixSize reports a flat matrix whose length does not match n*n,
	// or an item count below 1.
	ErrMatrixSize = errors.New("gapr: bad matrix size")

	// ErrNotSymmetric reports an asymmetric proximity or distance matrix.
	ErrNotSymmetric = errors.New("gapr: matrix is not symmetric")

	// ErrNegativeDistance reports a negative entry in a distance matrix.
	ErrNegativeDistance = errors.New("gapr: negative distance")

	// ErrNotFinite reports a NaN or infinite entry where a finite one is required.
	ErrNotFinite = errors.New("gapr: matrix entry is not finite")

	// ErrNotPermutation reports an ordering that is not a permutation of 1..n.
	ErrNotPermutation = errors.New("gapr: order is not a permutation of 1..n")

	// ErrExternalOrderRequired reports the external flip policy invoked
	// without an external order.
	ErrExternalOrderRequired = errors.New("gapr: external flip policy requires an external order")
)

// numTol absorbs floating-point noise in matrix entries: off-diagonal
// mismatches within it pass the symmetry check, and computed similarities
// within it above one still convert to distance zero.
const numTol = 1e-8

// checkRectangular verifies data is a non-empty rectangular matrix and
// returns its dimensions.
func checkRectangular(data [][]float64) (rows, cols int, err error) {
	rows = len(data)
	if rows == 0 {
		return 0, 0, fmt.Errorf("%w: data has no rows", ErrMatrixSize)
	}
	cols = len(data[0])
	if cols == 0 {
		return 0, 0, fmt.Errorf("%w: data has no columns", ErrMatrixSize)
	}
	for i, row := range data {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("%w: row %d has %d columns, want %d",
				ErrNonRectangular, i, len(row), cols)
		}
	}
	return rows, cols, nil
}

// checkMatrixSize verifies m holds a flat row-major n x n matrix.
func checkMatrixSize(m []float64, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: n = %d, want at least 1", ErrMatrixSize, n)
	}
	if len(m) != n*n {
		return fmt.Errorf("%w: got %d entries, want %d for n = %d",
			ErrMatrixSize, len(m), n*n, n)
	}
	return nil
}

// checkFinite verifies every entry of the n x n matrix is a finite number.
func checkFinite(m []float64, n int) error {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := m[i*n+j]; math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: entry (%d, %d) = %v", ErrNotFinite, i, j, v)
			}
		}
	}
	return nil
}

// checkSymmetric verifies off-diagonal entries match their transpose within
// numTol. Entries are assumed finite.
func checkSymmetric(m []float64, n int) error {
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if d := m[i*n+j] - m[j*n+i]; d > numTol || d < -numTol {
				return fmt.Errorf("%w: entries (%d, %d) = %v and (%d, %d) = %v",
					ErrNotSymmetric, i, j, m[i*n+j], j, i, m[j*n+i])
			}
		}
	}
	return nil
}

// checkNonNegative verifies no off-diagonal entry of a distance matrix is
// negative. The diagonal is ignored.
func checkNonNegative(m []float64, n int) error {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && m[i*n+j] < 0 {
				return fmt.Errorf("%w: entry (%d, %d) = %v",
					ErrNegativeDistance, i, j, m[i*n+j])
			}
		}
	}
	return nil
}

// checkPermutation verifies order is a permutation of 1..n.
func checkPermutation(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("%w: got %d entries, want %d", ErrNotPermutation, len(order), n)
	}
	seen := make([]bool, n)
	for pos, v := range order {
		if v < 1 || v > n {
			return fmt.Errorf("%w: entry %d at position %d is outside [1, %d]",
				ErrNotPermutation, v, pos, n)
		}
		if seen[v-1] {
			return fmt.Errorf("%w: entry %d appears more than once", ErrNotPermutation, v)
		}
		seen[v-1] = true
	}
	return nil
}

// checkDistanceMatrix bundles the builder's preconditions on a flat distance
// matrix: size, finite entries, symmetry, and non-negativity.
func checkDistanceMatrix(m []float64, n int) error {
	if err := checkMatrixSize(m, n); err != nil {
		return err
	}
	if err := checkFinite(m, n); err != nil {
		return err
	}
	if err := checkSymmetric(m, n); err != nil {
		return err
	}
	return checkNonNegative(m, n)
}
