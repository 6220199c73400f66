package gapr

import "fmt"

// FlipPolicy selects how each internal node orients its children. Every
// policy leaves the tree topology untouched and only decides left versus
// right, so the final leaf order changes but merges and heights do not.
type FlipPolicy string

const (
	// FlipExternal orients each node so the child whose leaves have the
	// lower mean rank under a caller-supplied external order goes left.
	// Requires ExternalOrder.
	FlipExternal FlipPolicy = "external"
	// FlipUncle orients each node by comparing its children to the node's
	// sibling: the child more similar to the sibling's leaves is placed on
	// the sibling's side.
	FlipUncle FlipPolicy = "uncle"
	// FlipGrandpa orients each node by comparing its children to the
	// grandparent's other subtree, with a second top-down pass once the
	// ancestors' orientations are final.
	FlipGrandpa FlipPolicy = "grandpa"
)

// Valid reports whether f names a supported flip policy.
func (f FlipPolicy) Valid() bool {
	return f == FlipExternal || f == FlipUncle || f == FlipGrandpa
}

// ResolveFlips decides the left/right orientation of every internal node of
// t under the given policy, annotates t.Left and t.Right, and returns the
// resulting 1-based leaf order.
//
// dist is the distance matrix the tree was built from; it is required by the
// uncle and grandpa policies and ignored by external. externalOrder must be a
// permutation of 1..n for the external policy and is ignored otherwise.
// Decision ties, and nodes whose policy context does not exist (the root has
// no sibling, the root's children have no grandparent), keep the canonical
// construction orientation with ChildA on the left; the grandpa policy falls
// back to the uncle rule where only the grandparent is missing.
func ResolveFlips(t *Tree, dist []float64, policy FlipPolicy, externalOrder []int) ([]int, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFlip, policy)
	}
	n := t.N
	if n == 0 {
		return []int{}, nil
	}

	var rank []int
	switch policy {
	case FlipExternal:
		if externalOrder == nil {
			return nil, fmt.Errorf("%w: policy %q", ErrExternalOrderRequired, policy)
		}
		if err := checkPermutation(externalOrder, n); err != nil {
			return nil, err
		}
		rank = make([]int, n)
		for pos, item := range externalOrder {
			rank[item-1] = pos + 1
		}
	default:
		if err := checkDistanceMatrix(dist, n); err != nil {
			return nil, err
		}
	}

	left := make([]int, 2*n-1)
	right := make([]int, 2*n-1)
	for i := range left {
		left[i], right[i] = -1, -1
	}

	if n > 1 {
		leaves := leafSets(t)
		switch policy {
		case FlipExternal:
			resolveExternal(t, rank, leaves, left, right)
		case FlipUncle:
			resolveUncle(t, dist, leaves, left, right)
		case FlipGrandpa:
			resolveGrandpa(t, dist, leaves, left, right)
		}
	}

	t.Left, t.Right = left, right
	return assembleOrder(t, left, right), nil
}

// leafSets collects the 0-based leaf indices under every node. Children have
// smaller ids than their parents, so one ascending pass suffices.
func leafSets(t *Tree) [][]int {
	n := t.N
	leaves := make([][]int, 2*n-1)
	for i := 0; i < n; i++ {
		leaves[i] = []int{i}
	}
	for k := 0; k < n-1; k++ {
		a, b := t.ChildA[k], t.ChildB[k]
		s := make([]int, 0, len(leaves[a])+len(leaves[b]))
		s = append(s, leaves[a]...)
		s = append(s, leaves[b]...)
		leaves[n+k] = s
	}
	return leaves
}

// meanExternalRank averages the external ranks of a leaf set.
func meanExternalRank(rank []int, set []int) float64 {
	sum := 0
	for _, i := range set {
		sum += rank[i]
	}
	return float64(sum) / float64(len(set))
}

// meanLeafDistance is the mean pairwise distance between two leaf sets.
func meanLeafDistance(dist []float64, n int, xs, ys []int) float64 {
	var sum float64
	for _, x := range xs {
		row := dist[x*n : (x+1)*n]
		for _, y := range ys {
			sum += row[y]
		}
	}
	return sum / float64(len(xs)*len(ys))
}

// orientTowardSet returns (a, b) flipped if needed so that the child whose
// leaves are nearer to the reference set sits on the reference's side.
// Ties keep the given order.
func orientTowardSet(dist []float64, n int, leaves [][]int, a, b int, ref []int, refOnLeft bool) (int, int) {
	da := meanLeafDistance(dist, n, leaves[a], ref)
	db := meanLeafDistance(dist, n, leaves[b], ref)
	if refOnLeft {
		if db < da {
			return b, a
		}
	} else if da < db {
		return b, a
	}
	return a, b
}

func resolveExternal(t *Tree, rank []int, leaves [][]int, left, right []int) {
	n := t.N
	for k := 0; k < n-1; k++ {
		id := n + k
		a, b := t.ChildA[k], t.ChildB[k]
		if meanExternalRank(rank, leaves[b]) < meanExternalRank(rank, leaves[a]) {
			a, b = b, a
		}
		left[id], right[id] = a, b
	}
}

// siblingOf returns the sibling of id under its parent's canonical
// orientation and whether that sibling lies on the left.
func siblingOf(t *Tree, id, parent int) (sib int, onLeft bool) {
	pa, pb := t.Children(parent)
	if pa == id {
		return pb, false
	}
	return pa, true
}

func resolveUncle(t *Tree, dist []float64, leaves [][]int, left, right []int) {
	n := t.N
	for k := 0; k < n-1; k++ {
		id := n + k
		a, b := t.ChildA[k], t.ChildB[k]
		if p := t.Parent[id]; p >= 0 {
			sib, onLeft := siblingOf(t, id, p)
			a, b = orientTowardSet(dist, n, leaves, a, b, leaves[sib], onLeft)
		}
		left[id], right[id] = a, b
	}
}

func resolveGrandpa(t *Tree, dist []float64, leaves [][]int, left, right []int) {
	n := t.N

	// Bottom-up pass under canonical ancestor orientation.
	for k := 0; k < n-1; k++ {
		id := n + k
		a, b := t.ChildA[k], t.ChildB[k]
		p := t.Parent[id]
		if p >= 0 {
			if g := t.Parent[p]; g >= 0 {
				// The grand-uncle's subtree lies on the side of the
				// grandparent opposite the parent.
				guncle, onLeft := siblingOf(t, p, g)
				a, b = orientTowardSet(dist, n, leaves, a, b, leaves[guncle], onLeft)
			} else {
				sib, onLeft := siblingOf(t, id, p)
				a, b = orientTowardSet(dist, n, leaves, a, b, leaves[sib], onLeft)
			}
		}
		left[id], right[id] = a, b
	}

	// Top-down re-check in preorder: ancestors are re-oriented before their
	// descendants, so each node sees its grand-uncle's final side.
	st := NewStack[int]()
	st.Push(t.Root())
	for !st.Empty() {
		id, _ := st.Pop()
		if t.IsLeaf(id) {
			continue
		}
		p := t.Parent[id]
		if p >= 0 {
			if g := t.Parent[p]; g >= 0 {
				guncle, onLeft := left[g], true
				if left[g] == p {
					guncle, onLeft = right[g], false
				}
				a, b := orientTowardSet(dist, n, leaves, left[id], right[id], leaves[guncle], onLeft)
				left[id], right[id] = a, b
			}
		}
		st.Push(right[id])
		st.Push(left[id])
	}
}

// assembleOrder splices per-node membership lists bottom-up, left before
// right, and reads the root's list. Lists share one arena so each splice is
// O(1); child lists are emptied into their parent, never copied.
func assembleOrder(t *Tree, left, right []int) []int {
	n := t.N
	if n == 1 {
		return []int{1}
	}
	arena := NewListArena[int](3 * n)
	seqs := make([]*List[int], 2*n-1)
	for i := 0; i < n; i++ {
		seqs[i] = arena.NewList()
		seqs[i].Append(i + 1)
	}
	for k := 0; k < n-1; k++ {
		id := n + k
		l := arena.NewList()
		l.AppendList(seqs[left[id]])
		l.AppendList(seqs[right[id]])
		seqs[id] = l
	}
	return seqs[t.Root()].Values()
}
