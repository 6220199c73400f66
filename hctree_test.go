package gapr

import (
	"errors"
	"math"
	"testing"
)

// handTreeDist is a 4-item distance matrix whose single-linkage merges are
// easy to follow by hand: items 1 and 2 join at height 1, items 3 and 4 at
// height 2, and the root joins the two pairs at height 3.
func handTreeDist() []float64 {
	return []float64{
		0, 1, 4, 9,
		1, 0, 3, 8,
		4, 3, 0, 2,
		9, 8, 2, 0,
	}
}

func TestBuildTree_SingleLinkageHandComputed(t *testing.T) {
	tree, err := BuildTree(handTreeDist(), 4, LinkageSingle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.N != 4 {
		t.Fatalf("N = %d, want 4", tree.N)
	}
	// Merge 0: leaves 0,1 at height 1. Merge 1: leaves 2,3 at height 2.
	// Merge 2: nodes 4,5 at height min(3,8) = 3.
	wantA := []int{0, 2, 4}
	wantB := []int{1, 3, 5}
	wantH := []float64{1, 2, 3}
	for k := range wantA {
		if tree.ChildA[k] != wantA[k] || tree.ChildB[k] != wantB[k] {
			t.Errorf("merge %d children = (%d, %d), want (%d, %d)",
				k, tree.ChildA[k], tree.ChildB[k], wantA[k], wantB[k])
		}
		if !almostEqual(tree.Height[k], wantH[k], floatTol) {
			t.Errorf("merge %d height = %v, want %v", k, tree.Height[k], wantH[k])
		}
	}
	if tree.Root() != 6 {
		t.Errorf("Root = %d, want 6", tree.Root())
	}
}

func TestBuildTree_ParentLinks(t *testing.T) {
	tree, err := BuildTree(handTreeDist(), 4, LinkageSingle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantParent := []int{4, 4, 5, 5, 6, 6, -1}
	for id, want := range wantParent {
		if tree.Parent[id] != want {
			t.Errorf("Parent[%d] = %d, want %d", id, tree.Parent[id], want)
		}
	}

	// Children and Parent agree for every internal node.
	for k := 0; k < tree.N-1; k++ {
		id := tree.N + k
		a, b := tree.Children(id)
		if tree.Parent[a] != id || tree.Parent[b] != id {
			t.Errorf("node %d: children (%d, %d) do not point back", id, a, b)
		}
	}
}

func TestBuildTree_CompleteLinkageTieBreak(t *testing.T) {
	// Points (0,0), (3,4), (0,8): d(0,1) = d(1,2) = 5, d(0,2) = 8.
	// Both ties involve item 1; the pair with the lower index sum, (0,1),
	// must merge first.
	dist := []float64{
		0, 5, 8,
		5, 0, 5,
		8, 5, 0,
	}

	tree, err := BuildTree(dist, 3, LinkageComplete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.ChildA[0] != 0 || tree.ChildB[0] != 1 {
		t.Errorf("first merge = (%d, %d), want (0, 1)", tree.ChildA[0], tree.ChildB[0])
	}
	if !almostEqual(tree.Height[0], 5, floatTol) {
		t.Errorf("first height = %v, want 5", tree.Height[0])
	}
	// Complete linkage: d({0,1}, 2) = max(8, 5) = 8.
	if !almostEqual(tree.Height[1], 8, floatTol) {
		t.Errorf("root height = %v, want 8", tree.Height[1])
	}
}

func TestBuildTree_AverageLinkageHandComputed(t *testing.T) {
	dist := []float64{
		0, 2, 6,
		2, 0, 4,
		6, 4, 0,
	}

	tree, err := BuildTree(dist, 3, LinkageAverage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// d({0,1}, 2) = (6 + 4)/2 = 5.
	if !almostEqual(tree.Height[0], 2, floatTol) {
		t.Errorf("first height = %v, want 2", tree.Height[0])
	}
	if !almostEqual(tree.Height[1], 5, floatTol) {
		t.Errorf("root height = %v, want 5", tree.Height[1])
	}
}

func TestBuildTree_SingleLinkageChain(t *testing.T) {
	// Items on a line at 0, 1, 3, 7, 15: single linkage peels them off
	// left to right at heights 1, 2, 4, 8.
	xs := []float64{0, 1, 3, 7, 15}
	n := len(xs)
	dist := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dist[i*n+j] = math.Abs(xs[i] - xs[j])
		}
	}

	tree, err := BuildTree(dist, n, LinkageSingle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantA := []int{0, 5, 6, 7}
	wantB := []int{1, 2, 3, 4}
	wantH := []float64{1, 2, 4, 8}
	for k := range wantA {
		if tree.ChildA[k] != wantA[k] || tree.ChildB[k] != wantB[k] {
			t.Errorf("merge %d children = (%d, %d), want (%d, %d)",
				k, tree.ChildA[k], tree.ChildB[k], wantA[k], wantB[k])
		}
		if !almostEqual(tree.Height[k], wantH[k], floatTol) {
			t.Errorf("merge %d height = %v, want %v", k, tree.Height[k], wantH[k])
		}
	}
}

func TestBuildTree_CanonicalChildOrder(t *testing.T) {
	// ChildA always holds the smaller minimum original item index.
	tree, err := BuildTree(handTreeDist(), 4, LinkageAverage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	minLeaf := make([]int, 2*tree.N-1)
	for i := 0; i < tree.N; i++ {
		minLeaf[i] = i
	}
	for k := 0; k < tree.N-1; k++ {
		id := tree.N + k
		a, b := tree.Children(id)
		if minLeaf[a] > minLeaf[b] {
			t.Errorf("node %d: ChildA min %d > ChildB min %d", id, minLeaf[a], minLeaf[b])
		}
		minLeaf[id] = minLeaf[a]
		if minLeaf[b] < minLeaf[id] {
			minLeaf[id] = minLeaf[b]
		}
	}
}

func TestBuildTree_SingleItem(t *testing.T) {
	tree, err := BuildTree([]float64{0}, 1, LinkageSingle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.N != 1 || len(tree.ChildA) != 0 || len(tree.Height) != 0 {
		t.Errorf("single-leaf tree has internal nodes: %+v", tree)
	}
	if tree.Root() != 0 {
		t.Errorf("Root = %d, want 0", tree.Root())
	}
	if tree.Parent[0] != -1 {
		t.Errorf("Parent[0] = %d, want -1", tree.Parent[0])
	}
}

func TestBuildTree_Empty(t *testing.T) {
	tree, err := BuildTree(nil, 0, LinkageSingle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.N != 0 || tree.Root() != -1 {
		t.Errorf("empty tree: N = %d, Root = %d", tree.N, tree.Root())
	}
}

func TestBuildTree_Preconditions(t *testing.T) {
	cases := []struct {
		name    string
		dist    []float64
		n       int
		linkage Linkage
		want    error
	}{
		{"invalid linkage", handTreeDist(), 4, Linkage("ward"), ErrInvalidLinkage},
		{"wrong size", []float64{0, 1, 1}, 2, LinkageSingle, ErrMatrixSize},
		{"asymmetric", []float64{0, 1, 2, 0}, 2, LinkageSingle, ErrNotSymmetric},
		{"negative", []float64{0, -1, -1, 0}, 2, LinkageSingle, ErrNegativeDistance},
		{"NaN", []float64{0, math.NaN(), math.NaN(), 0}, 2, LinkageSingle, ErrNotFinite},
		{"Inf", []float64{0, math.Inf(1), math.Inf(1), 0}, 2, LinkageSingle, ErrNotFinite},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := BuildTree(c.dist, c.n, c.linkage)
			if !errors.Is(err, c.want) {
				t.Errorf("err = %v, want %v", err, c.want)
			}
		})
	}
}

func TestBuildTree_HeightsNondecreasing(t *testing.T) {
	// Single, complete, and average linkage are monotone: each merge is at
	// least as high as the previous one.
	for _, linkage := range []Linkage{LinkageSingle, LinkageComplete, LinkageAverage} {
		tree, err := BuildTree(handTreeDist(), 4, linkage)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", linkage, err)
		}
		for k := 1; k < len(tree.Height); k++ {
			if tree.Height[k] < tree.Height[k-1] {
				t.Errorf("%s: height[%d] = %v < height[%d] = %v",
					linkage, k, tree.Height[k], k-1, tree.Height[k-1])
			}
		}
	}
}

// exhaustiveMerges replays agglomeration with a full pairwise scan per step
// and the same tie-break, as a reference for the cached-neighbor path.
func exhaustiveMerges(dist []float64, n int, linkage Linkage) (childA, childB []int, height []float64) {
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

	for k := 0; k < n-1; k++ {
		bestA, bestB := -1, -1
		var bestD float64
		for a := 0; a < n; a++ {
			if !active[a] {
				continue
			}
			for b := a + 1; b < n; b++ {
				if !active[b] {
					continue
				}
				d := work[a*n+b]
				better := bestA < 0 || d < bestD
				if !better && d == bestD {
					if s, bs := a+b, bestA+bestB; s < bs || (s == bs && a < bestA) {
						better = true
					}
				}
				if better {
					bestA, bestB, bestD = a, b, d
				}
			}
		}

		childA = append(childA, node[bestA])
		childB = append(childB, node[bestB])
		height = append(height, bestD)

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
		node[bestA] = n + k
		active[bestB] = false
	}
	return childA, childB, height
}

func TestBuildTree_MatchesExhaustiveScan(t *testing.T) {
	prox, n, err := ComputeProximity(parallelTestData(16, 3), ProximityEuclidean, SideRows, false)
	if err != nil {
		t.Fatalf("ComputeProximity: %v", err)
	}
	// Flooring the distances produces heavy exact ties, which is where the
	// cached path and the full scan could drift apart.
	tied := make([]float64, len(prox))
	for i, d := range prox {
		tied[i] = math.Floor(d)
	}

	matrices := []struct {
		name string
		dist []float64
		n    int
	}{
		{"generic", prox, n},
		{"quantized ties", tied, n},
		{"duplicate points", lineDistances([]float64{0, 0, 1, 1, 2, 2, 5, 5}), 8},
	}

	for _, m := range matrices {
		for _, linkage := range []Linkage{LinkageSingle, LinkageComplete, LinkageAverage} {
			t.Run(m.name+"/"+string(linkage), func(t *testing.T) {
				tree, err := BuildTree(m.dist, m.n, linkage)
				if err != nil {
					t.Fatalf("BuildTree: %v", err)
				}
				childA, childB, height := exhaustiveMerges(m.dist, m.n, linkage)
				if !intsEqual(tree.ChildA, childA) || !intsEqual(tree.ChildB, childB) {
					t.Errorf("merges differ:\n got A %v B %v\nwant A %v B %v",
						tree.ChildA, tree.ChildB, childA, childB)
				}
				for k := range height {
					if tree.Height[k] != height[k] {
						t.Errorf("height[%d] = %v, want %v", k, tree.Height[k], height[k])
					}
				}
			})
		}
	}
}

func TestLinkage_Valid(t *testing.T) {
	for _, l := range []Linkage{LinkageSingle, LinkageComplete, LinkageAverage} {
		if !l.Valid() {
			t.Errorf("%q should be valid", l)
		}
	}
	if Linkage("ward").Valid() {
		t.Error("ward should not be valid")
	}
}
