package gapr

import (
	"fmt"
	"log"
	"math"
	"runtime"
)

// Config controls the seriation pipeline.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Proximity selects the pairwise measure computed between items.
	// Distance measures feed the clustering directly; correlation and
	// binary measures are converted with d = 1 - s first.
	// Default: euclidean.
	Proximity ProximityType

	// Side selects whether the rows or the columns of the input are the
	// items being ordered. Default: rows.
	Side Side

	// MissingValues enables NaN-aware proximity computation: NaN entries
	// are treated as missing and each pair is measured over its shared
	// observed positions. When false, any NaN in the input is an error.
	// Default: false.
	MissingValues bool

	// Linkage selects the Lance-Williams update used when merging
	// clusters. Default: single.
	Linkage Linkage

	// Flip selects how the two children of each dendrogram node are
	// ordered. "external" follows a target order, "uncle" and "grandpa"
	// orient by similarity to nearby subtrees. Default: external.
	Flip FlipPolicy

	// ExternalOrder is the caller-supplied 1-based target order for the
	// external flip policy. Leave nil to derive one from the rank-2
	// ellipse of the proximity matrix. Ignored by the other policies.
	ExternalOrder []int

	// Workers controls the number of goroutines used for the proximity
	// stage. 0 means use runtime.NumCPU(). Default: 0 (auto).
	Workers int
}

// Result contains the output of a seriation run.
type Result struct {
	// N is the number of items ordered.
	N int

	// Proximity is the flat row-major N x N proximity matrix the
	// pipeline computed (or was given).
	Proximity []float64

	// Distance is the dissimilarity matrix the tree was built from. It
	// is Proximity itself for distance measures and the 1 - s conversion
	// for similarity measures.
	Distance []float64

	// Left and Right hold the flip-resolved children of each internal
	// node as 1-based ids: leaves are 1..N and internal nodes are
	// N+1..2N-1 in merge order, so entry k describes node N+1+k.
	Left  []int
	Right []int

	// Height is the merge distance of each internal node.
	Height []float64

	// Order is the resulting 1-based left-to-right leaf order.
	Order []int

	// ExternalOrder is the 1-based target order the external flip policy
	// followed: the caller-supplied one, or the rank-2 ellipse order
	// derived when none was supplied. Nil for the other policies.
	ExternalOrder []int
}

// HCTree is the flip-resolved dendrogram of a single clustering run in
// 1-based form: leaves are 1..n and internal nodes n+1..2n-1 in merge
// order, with entry k of each slice describing internal node n+1+k.
type HCTree struct {
	Left   []int
	Right  []int
	Height []float64
	Order  []int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Proximity: ProximityEuclidean,
		Side:      SideRows,
		Linkage:   LinkageSingle,
		Flip:      FlipExternal,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if !cfg.Proximity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProximity, cfg.Proximity)
	}
	if !cfg.Side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, cfg.Side)
	}
	if !cfg.Linkage.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLinkage, cfg.Linkage)
	}
	if !cfg.Flip.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFlip, cfg.Flip)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Proximity == "" {
		cfg.Proximity = ProximityEuclidean
	}
	if cfg.Side == "" {
		cfg.Side = SideRows
	}
	if cfg.Linkage == "" {
		cfg.Linkage = LinkageSingle
	}
	if cfg.Flip == "" {
		cfg.Flip = FlipExternal
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// emptyResult returns a Result with empty, non-nil slices.
func emptyResult() *Result {
	return &Result{
		Proximity: []float64{},
		Distance:  []float64{},
		Left:      []int{},
		Right:     []int{},
		Height:    []float64{},
		Order:     []int{},
	}
}

// Seriate computes a proximity matrix for data and orders its items by
// hierarchical clustering with flip resolution. Each element of data is one
// row (float64 slice); all rows must have the same length, and Config.Side
// decides whether the rows or the columns are the ordered items. Returns an
// error if the config is invalid or the data violates the selected
// measure's preconditions.
func Seriate(data [][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return emptyResult(), nil
	}

	prox, n, err := ComputeProximityParallel(data, cfg.Proximity, cfg.Side, cfg.MissingValues, cfg.Workers)
	if err != nil {
		return nil, err
	}
	return seriateFromProximity(prox, n, cfg)
}

// SeriatePrecomputed runs the pipeline on a precomputed proximity matrix.
// prox is a flat []float64 of length n*n in row-major order. Config.Side
// and Config.MissingValues are ignored since the proximity is already
// computed; Config.Proximity still decides whether entries are read as
// distances or as similarities.
func SeriatePrecomputed(prox []float64, n int, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	if n == 0 && len(prox) == 0 {
		return emptyResult(), nil
	}
	if err := checkMatrixSize(prox, n); err != nil {
		return nil, err
	}
	return seriateFromProximity(prox, n, cfg)
}

// seriateFromProximity runs the pipeline from a proximity matrix onward
// (distance conversion → external order → tree → flip resolution).
func seriateFromProximity(prox []float64, n int, cfg Config) (*Result, error) {
	undefined := 0
	for _, p := range prox {
		if math.IsNaN(p) {
			undefined++
		}
	}
	if undefined > 0 {
		log.Printf("gapr: proximity matrix has %d undefined (NaN) entries", undefined)
	}

	dist := prox
	if !cfg.Proximity.IsDistance() {
		dist = SimilarityToDistance(prox)
	}

	var external []int
	if cfg.Flip == FlipExternal {
		external = cfg.ExternalOrder
		if external == nil {
			// The ellipse reads larger as closer, so distances are
			// negated; double centering makes that equivalent to any
			// constant-minus-distance conversion.
			sim := prox
			if cfg.Proximity.IsDistance() {
				sim = make([]float64, len(prox))
				for i, d := range prox {
					sim[i] = -d
				}
			}
			var err error
			external, err = EllipseSort(sim, n)
			if err != nil {
				return nil, err
			}
		}
	}

	tree, err := BuildTree(dist, n, cfg.Linkage)
	if err != nil {
		return nil, err
	}
	order, err := ResolveFlips(tree, dist, cfg.Flip, external)
	if err != nil {
		return nil, err
	}

	left, right := orientedChildren(tree)
	return &Result{
		N:             n,
		Proximity:     prox,
		Distance:      dist,
		Left:          left,
		Right:         right,
		Height:        tree.Height,
		Order:         order,
		ExternalOrder: external,
	}, nil
}

// HCTreeSort builds a dendrogram from a precomputed dissimilarity matrix
// and resolves its flips in one call. dist is a flat []float64 of length
// n*n in row-major order. The external policy requires a 1-based
// externalOrder permutation; the uncle and grandpa policies ignore it.
func HCTreeSort(dist []float64, n int, externalOrder []int, linkage Linkage, flip FlipPolicy) (*HCTree, error) {
	tree, err := BuildTree(dist, n, linkage)
	if err != nil {
		return nil, err
	}
	order, err := ResolveFlips(tree, dist, flip, externalOrder)
	if err != nil {
		return nil, err
	}

	left, right := orientedChildren(tree)
	return &HCTree{
		Left:   left,
		Right:  right,
		Height: tree.Height,
		Order:  order,
	}, nil
}

// orientedChildren translates the flip-resolved children of t's internal
// nodes to 1-based ids (leaves 1..n, internal nodes n+1..2n-1). ResolveFlips
// must have annotated t first.
func orientedChildren(t *Tree) (left, right []int) {
	m := len(t.ChildA)
	left = make([]int, m)
	right = make([]int, m)
	for k := 0; k < m; k++ {
		left[k] = t.Left[t.N+k] + 1
		right[k] = t.Right[t.N+k] + 1
	}
	return left, right
}
