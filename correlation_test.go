package gapr

import (
	"math"
	"testing"
)

// --- Pearson ---

func TestPearsonPair_HandComputed(t *testing.T) {
	// means 2.5 and 4.5; cov = 8/3, sd product = sqrt(5/3 * 13/3),
	// r = 8/sqrt(65).
	r := pearsonPair([]float64{1, 2, 3, 4}, []float64{2, 4, 5, 7})
	if !almostEqual(r, 8/math.Sqrt(65), floatTol) {
		t.Errorf("expected %v, got %v", 8/math.Sqrt(65), r)
	}
}

func TestPearsonPair_PerfectCorrelation(t *testing.T) {
	if r := pearsonPair([]float64{1, 2, 3}, []float64{2, 4, 6}); !almostEqual(r, 1, floatTol) {
		t.Errorf("expected 1, got %v", r)
	}
	if r := pearsonPair([]float64{1, 2, 3}, []float64{3, 2, 1}); !almostEqual(r, -1, floatTol) {
		t.Errorf("expected -1, got %v", r)
	}
}

func TestPearsonPair_ZeroVariance(t *testing.T) {
	if r := pearsonPair([]float64{5, 5, 5}, []float64{1, 2, 3}); !math.IsNaN(r) {
		t.Errorf("expected NaN for a constant item, got %v", r)
	}
}

func TestPearsonPair_TooFewSharedVariables(t *testing.T) {
	// Only position 2 is present in both.
	x := []float64{1, math.NaN(), 3}
	y := []float64{math.NaN(), 2, 4}
	if r := pearsonPair(x, y); !math.IsNaN(r) {
		t.Errorf("expected NaN with one shared variable, got %v", r)
	}
}

func TestPearsonPair_MissingUsesSharedVariables(t *testing.T) {
	// Shared positions 0..2 carry y = 2x: r = 1.
	x := []float64{1, 2, 3, math.NaN()}
	y := []float64{2, 4, 6, 8}
	if r := pearsonPair(x, y); !almostEqual(r, 1, floatTol) {
		t.Errorf("expected 1, got %v", r)
	}
}

// --- Kendall ---

func TestKendallPair_MonotoneAgreement(t *testing.T) {
	if tau := kendallPair([]float64{1, 2, 3}, []float64{10, 20, 30}); !almostEqual(tau, 1, floatTol) {
		t.Errorf("expected 1, got %v", tau)
	}
	if tau := kendallPair([]float64{1, 2, 3}, []float64{30, 20, 10}); !almostEqual(tau, -1, floatTol) {
		t.Errorf("expected -1, got %v", tau)
	}
}

func TestKendallPair_HandComputed(t *testing.T) {
	// Pairs (0,1) and (0,2) concordant, (1,2) discordant:
	// tau = (2-1)/3 = 1/3.
	tau := kendallPair([]float64{1, 2, 3}, []float64{1, 3, 2})
	if !almostEqual(tau, 1.0/3.0, floatTol) {
		t.Errorf("expected 1/3, got %v", tau)
	}
}

// --- Spearman ---

func TestSpearmanPair_MonotoneNonlinear(t *testing.T) {
	// Rank sequences agree exactly, so rho = 1 despite the nonlinearity.
	rho := spearmanPair([]float64{1, 2, 3, 4}, []float64{1, 4, 9, 100})
	if !almostEqual(rho, 1, floatTol) {
		t.Errorf("expected 1, got %v", rho)
	}
}

func TestSpearmanPair_WithTies(t *testing.T) {
	// Ranks x = (1, 2.5, 2.5, 4), y = (1, 2, 3, 4):
	// rho = 4.5/sqrt(4.5*5) = sqrt(0.9).
	rho := spearmanPair([]float64{1, 2, 2, 3}, []float64{1, 2, 3, 4})
	if !almostEqual(rho, math.Sqrt(0.9), floatTol) {
		t.Errorf("expected sqrt(0.9), got %v", rho)
	}
}

func TestAverageRanks(t *testing.T) {
	cases := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"no ties", []float64{30, 10, 20}, []float64{3, 1, 2}},
		{"one tie pair", []float64{10, 20, 20, 30}, []float64{1, 2.5, 2.5, 4}},
		{"all tied", []float64{5, 5, 5}, []float64{2, 2, 2}},
		{"single", []float64{7}, []float64{1}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := averageRanks(c.in)
			if len(got) != len(c.want) {
				t.Fatalf("length %d, want %d", len(got), len(c.want))
			}
			for i := range got {
				if !almostEqual(got[i], c.want[i], floatTol) {
					t.Errorf("rank[%d] = %v, want %v", i, got[i], c.want[i])
				}
			}
		})
	}
}

// --- uncentered ---

func TestUncenteredPair_Cosines(t *testing.T) {
	if s := uncenteredPair([]float64{1, 2}, []float64{2, 4}); !almostEqual(s, 1, floatTol) {
		t.Errorf("parallel: expected 1, got %v", s)
	}
	if s := uncenteredPair([]float64{1, 0}, []float64{0, 1}); !almostEqual(s, 0, floatTol) {
		t.Errorf("orthogonal: expected 0, got %v", s)
	}
	// dot = 1, norms 1 and sqrt(2).
	if s := uncenteredPair([]float64{1, 0, 0}, []float64{1, 1, 0}); !almostEqual(s, 1/math.Sqrt(2), floatTol) {
		t.Errorf("expected 1/sqrt(2), got %v", s)
	}
}

func TestUncenteredPair_ZeroVector(t *testing.T) {
	if s := uncenteredPair([]float64{0, 0}, []float64{1, 2}); !math.IsNaN(s) {
		t.Errorf("expected NaN for a zero vector, got %v", s)
	}
}

// --- adjusted tangent ---

func TestAdjustedTangentPair_Angles(t *testing.T) {
	cases := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"parallel", []float64{1, 2}, []float64{2, 4}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"45 degrees", []float64{1, 0}, []float64{1, 1}, 0.5},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := adjustedTangentPair(c.x, c.y)
			if !almostEqual(got, c.want, floatTol) {
				t.Errorf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestAdjustedTangentPair_ZeroVector(t *testing.T) {
	if s := adjustedTangentPair([]float64{0, 0}, []float64{1, 0}); !math.IsNaN(s) {
		t.Errorf("expected NaN for a zero vector, got %v", s)
	}
}

// --- absolute variants ---

func TestAbsPearson_FoldsSign(t *testing.T) {
	data := [][]float64{
		{1, 2, 3},
		{3, 2, 1},
	}

	prox, _, err := ComputeProximity(data, ProximityAbsPearson, SideRows, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// r = -1 folds to 1.
	if !almostEqual(prox[1], 1, floatTol) {
		t.Errorf("prox[0,1] = %v, want 1", prox[1])
	}
}

func TestAbsUncentered_FoldsSign(t *testing.T) {
	data := [][]float64{
		{1, 0},
		{-1, 0},
	}

	prox, _, err := ComputeProximity(data, ProximityAbsUncentered, SideRows, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// cosine = -1 folds to 1.
	if !almostEqual(prox[1], 1, floatTol) {
		t.Errorf("prox[0,1] = %v, want 1", prox[1])
	}
}

// --- pairComplete ---

func TestPairComplete_NoMissingReturnsInputs(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{4, 5, 6}

	xs, ys := pairComplete(x, y)

	if &xs[0] != &x[0] || &ys[0] != &y[0] {
		t.Error("pairComplete should return the inputs unchanged when nothing is missing")
	}
}

func TestPairComplete_FiltersEitherSide(t *testing.T) {
	x := []float64{1, math.NaN(), 3, 4}
	y := []float64{5, 6, math.NaN(), 8}

	xs, ys := pairComplete(x, y)

	if len(xs) != 2 || len(ys) != 2 {
		t.Fatalf("lengths %d/%d, want 2/2", len(xs), len(ys))
	}
	if xs[0] != 1 || xs[1] != 4 || ys[0] != 5 || ys[1] != 8 {
		t.Errorf("got %v / %v, want [1 4] / [5 8]", xs, ys)
	}
}
