package gapr

import (
	"fmt"
	"math"
)

// Linkage selects the inter-cluster distance rule used when merging.
type Linkage string

const (
	// LinkageSingle merges on the minimum pairwise distance between members.
	LinkageSingle Linkage = "single"
	// LinkageComplete merges on the maximum pairwise distance between members.
	LinkageComplete Linkage = "complete"
	// LinkageAverage merges on the mean pairwise distance between members.
	LinkageAverage Linkage = "average"
)

// Valid reports whether l names a supported linkage.
func (l Linkage) Valid() bool {
	return l == LinkageSingle || l == LinkageComplete || l == LinkageAverage
}

// Tree is the merge tree produced by BuildTree. Nodes are numbered with
// leaves 0..n-1 and internal nodes n..2n-2 in merge order, so the root is
// 2n-2 and every internal node's children carry smaller ids than it does.
//
// ChildA and ChildB record each internal node's children in canonical
// construction order: ChildA is the child whose cluster contains the smaller
// minimum original item index. Left and Right hold the display orientation
// and stay nil until ResolveFlips annotates the tree.
type Tree struct {
	N      int
	ChildA []int
	ChildB []int
	// Height is the merge distance of each internal node, indexed like
	// ChildA/ChildB by merge order.
	Height []float64
	// Parent maps every node to its parent id, -1 at the root.
	Parent []int
	// Left and Right map every node to its oriented children, -1 for
	// leaves. Set by ResolveFlips.
	Left  []int
	Right []int
}

// Root returns the root node id, or -1 for an empty tree.
func (t *Tree) Root() int {
	if t.N == 0 {
		return -1
	}
	return 2*t.N - 2
}

// IsLeaf reports whether id is a leaf node.
func (t *Tree) IsLeaf(id int) bool { return id < t.N }

// Children returns the canonical children of the internal node id.
func (t *Tree) Children(id int) (int, int) {
	k := id - t.N
	return t.ChildA[k], t.ChildB[k]
}

// BuildTree runs agglomerative clustering over a flat row-major n x n
// distance matrix and returns the unoriented merge tree. The matrix must be
// symmetric with finite, non-negative entries (the diagonal is ignored).
//
// Inter-cluster distances are maintained with Lance-Williams updates. Each
// cluster slot caches its nearest higher-numbered neighbor, so a merge step
// scans the n caches instead of all pairs and rescans only the rows whose
// cached neighbor the merge consumed. When several pairs tie on distance,
// the pair with the lowest sum of the two clusters' minimum original item
// indices wins, then the lower minimum index; this makes tree shape
// deterministic on degenerate inputs. Typical running time is O(n^2) with
// O(n^2) memory.
func BuildTree(dist []float64, n int, linkage Linkage) (*Tree, error) {
	if !linkage.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLinkage, linkage)
	}
	if n == 0 && len(dist) == 0 {
		return &Tree{}, nil
	}
	if err := checkDistanceMatrix(dist, n); err != nil {
		return nil, err
	}

	t := &Tree{
		N:      n,
		ChildA: make([]int, n-1),
		ChildB: make([]int, n-1),
		Height: make([]float64, n-1),
		Parent: make([]int, 2*n-1),
	}
	for i := range t.Parent {
		t.Parent[i] = -1
	}
	if n == 1 {
		return t, nil
	}

	// Slot a holds the cluster whose minimum original item index is a.
	// Merging slots a < b into a preserves that invariant, which is what
	// makes the tie-break and the ChildA convention line up.
	work := make([]float64, n*n)
	copy(work, dist)
	size := make([]int, n)
	node := make([]int, n)
	active := make([]bool, n)
	for i := 0; i < n; i++ {
		size[i] = 1
		node[i] = i
		active[i] = true
	}

	// Per-slot nearest-neighbor cache over higher-numbered active slots,
	// distance ties broken toward the lowest index. nnIdx is -1 for the
	// highest active slot, which has no candidates of its own.
	nnIdx := make([]int, n)
	nnDist := make([]float64, n)
	for a := 0; a < n; a++ {
		nnIdx[a], nnDist[a] = nearestSlot(work, active, n, a)
	}

	for k := 0; k < n-1; k++ {
		bestA := -1
		for a := 0; a < n; a++ {
			if !active[a] || nnIdx[a] < 0 {
				continue
			}
			if bestA < 0 || nnDist[a] < nnDist[bestA] ||
				(nnDist[a] == nnDist[bestA] && a+nnIdx[a] < bestA+nnIdx[bestA]) {
				bestA = a
			}
		}
		bestB := nnIdx[bestA]

		id := n + k
		t.ChildA[k] = node[bestA]
		t.ChildB[k] = node[bestB]
		t.Height[k] = nnDist[bestA]
		t.Parent[node[bestA]] = id
		t.Parent[node[bestB]] = id

		sa, sb := float64(size[bestA]), float64(size[bestB])
		for j := 0; j < n; j++ {
			if !active[j] || j == bestA || j == bestB {
				continue
			}
			daj := work[bestA*n+j]
			dbj := work[bestB*n+j]
			var d float64
			switch linkage {
			case LinkageSingle:
				d = math.Min(daj, dbj)
			case LinkageComplete:
				d = math.Max(daj, dbj)
			default:
				d = (sa*daj + sb*dbj) / (sa + sb)
			}
			work[bestA*n+j] = d
			work[j*n+bestA] = d
		}

		size[bestA] += size[bestB]
		node[bestA] = id
		active[bestB] = false

		// Refresh caches: the merged row changed wholesale, other rows go
		// stale only when their neighbor was bestA or bestB, and rows below
		// bestA may gain a closer neighbor from the updated bestA column.
		nnIdx[bestA], nnDist[bestA] = nearestSlot(work, active, n, bestA)
		for j := 0; j < n; j++ {
			if !active[j] || j == bestA {
				continue
			}
			switch {
			case nnIdx[j] == bestA || nnIdx[j] == bestB:
				nnIdx[j], nnDist[j] = nearestSlot(work, active, n, j)
			case j < bestA:
				d := work[j*n+bestA]
				if nnIdx[j] < 0 || d < nnDist[j] || (d == nnDist[j] && bestA < nnIdx[j]) {
					nnIdx[j], nnDist[j] = bestA, d
				}
			}
		}
	}

	return t, nil
}

// nearestSlot finds the closest active slot after a, breaking distance ties
// toward the lowest index. Returns (-1, 0) when no active slot follows a.
func nearestSlot(work []float64, active []bool, n, a int) (int, float64) {
	best, bestD := -1, 0.0
	for b := a + 1; b < n; b++ {
		if !active[b] {
			continue
		}
		if d := work[a*n+b]; best < 0 || d < bestD {
			best, bestD = b, d
		}
	}
	return best, bestD
}
