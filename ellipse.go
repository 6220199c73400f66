package gapr

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// EllipseSort orders items by their angular position on the rank-2 ellipse
// of a flat row-major n x n proximity matrix: the matrix is double-centered,
// its two leading eigenvectors are taken as 2-D loadings, and items are
// sorted by the angle of their loading around the loading centroid.
//
// The matrix must be symmetric and finite, and oriented as a similarity
// (larger means closer); negate a distance matrix before calling. The
// returned order is 1-based. Uniformly scaling the input by a positive
// factor does not change the order. With n <= 2 every arrangement is
// equivalent, so the identity order is returned.
func EllipseSort(prox []float64, n int) ([]int, error) {
	if n == 0 && len(prox) == 0 {
		return []int{}, nil
	}
	if err := checkMatrixSize(prox, n); err != nil {
		return nil, err
	}
	if err := checkFinite(prox, n); err != nil {
		return nil, err
	}
	if err := checkSymmetric(prox, n); err != nil {
		return nil, err
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i + 1
	}
	if n <= 2 {
		return order, nil
	}

	// Double-center: C = J M J with J = I - 11'/n. This removes the
	// constant component so the leading eigenvectors describe shape, not
	// overall magnitude.
	centered := make([]float64, n*n)
	rowMean := make([]float64, n)
	var grand float64
	for i := 0; i < n; i++ {
		s := floats.Sum(prox[i*n : (i+1)*n])
		rowMean[i] = s / float64(n)
		grand += s
	}
	grand /= float64(n * n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			centered[i*n+j] = prox[i*n+j] - rowMean[i] - rowMean[j] + grand
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(n, centered), true) {
		return nil, errors.New("gapr: eigendecomposition did not converge")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues come back ascending: the last two columns are the two
	// leading components.
	u := make([]float64, n)
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		u[i] = vecs.At(i, n-1)
		v[i] = vecs.At(i, n-2)
	}
	canonicalizeSign(u)
	canonicalizeSign(v)

	cu := floats.Sum(u) / float64(n)
	cv := floats.Sum(v) / float64(n)

	type loading struct {
		angle  float64
		radius float64
		item   int
	}
	pts := make([]loading, n)
	for i := range pts {
		du, dv := u[i]-cu, v[i]-cv
		pts[i] = loading{math.Atan2(dv, du), math.Hypot(du, dv), i}
	}
	sort.Slice(pts, func(a, b int) bool {
		if pts[a].angle != pts[b].angle {
			return pts[a].angle < pts[b].angle
		}
		if pts[a].radius != pts[b].radius {
			return pts[a].radius < pts[b].radius
		}
		return pts[a].item < pts[b].item
	})
	for i, p := range pts {
		order[i] = p.item + 1
	}
	return order, nil
}

// canonicalizeSign fixes an eigenvector's sign ambiguity by making its
// largest-magnitude entry positive, breaking magnitude ties on the first
// such index.
func canonicalizeSign(v []float64) {
	best := 0
	for i := 1; i < len(v); i++ {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}
	if v[best] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}
