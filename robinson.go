package gapr

// A dissimilarity matrix is in Robinson form when, within every row, values
// never decrease while moving away from the diagonal. The functions here
// count how far a reordered matrix is from that form by checking row-wise
// gradients: for an arrangement of n items, each position triple j < k < i
// contributes an event left of the diagonal (violated when m[i,j] < m[i,k])
// and each triple i < j < k an event right of it (violated when
// m[i,j] > m[i,k]). Ties are never violations, and comparisons against NaN
// entries never fire even though the event is still evaluated.

// AR counts the anti-Robinson events of dist under order across all
// position triples. The matrix is flat row-major n x n and order is a
// 1-based permutation of the items.
func AR(dist []float64, n int, order []int) (int, error) {
	return GAR(dist, n, order, 0)
}

// GAR counts anti-Robinson events restricted to a window: only triples
// whose outer span (i-j left of the diagonal, k-i right of it) is at most
// window positions are examined. A window of zero or anything at least n
// means no restriction, which makes GAR coincide with AR.
func GAR(dist []float64, n int, order []int, window int) (int, error) {
	violations, _, err := garCounts(dist, n, order, window)
	return violations, err
}

// RGAR is the windowed violation rate: GAR divided by the number of events
// the window admits. It reports 0 when no events exist, which covers
// fewer than three items as well as windows too narrow to hold a triple.
func RGAR(dist []float64, n int, order []int, window int) (float64, error) {
	violations, evaluated, err := garCounts(dist, n, order, window)
	if err != nil {
		return 0, err
	}
	if evaluated == 0 {
		return 0, nil
	}
	return float64(violations) / float64(evaluated), nil
}

func garCounts(dist []float64, n int, order []int, window int) (violations, evaluated int, err error) {
	if n == 0 && len(dist) == 0 && len(order) == 0 {
		return 0, 0, nil
	}
	if err := checkMatrixSize(dist, n); err != nil {
		return 0, 0, err
	}
	if err := checkSymmetric(dist, n); err != nil {
		return 0, 0, err
	}
	if err := checkPermutation(order, n); err != nil {
		return 0, 0, err
	}
	if window <= 0 || window >= n {
		window = n - 1
	}

	// Entry (i, j) of the reordered matrix.
	at := func(i, j int) float64 {
		return dist[(order[i]-1)*n+(order[j]-1)]
	}

	for i := 0; i < n; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		for j := lo; j < i; j++ {
			for k := j + 1; k < i; k++ {
				evaluated++
				if at(i, j) < at(i, k) {
					violations++
				}
			}
		}

		hi := i + window
		if hi > n-1 {
			hi = n - 1
		}
		for k := i + 2; k <= hi; k++ {
			for j := i + 1; j < k; j++ {
				evaluated++
				if at(i, j) > at(i, k) {
					violations++
				}
			}
		}
	}
	return violations, evaluated, nil
}
