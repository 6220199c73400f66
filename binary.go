package gapr

import "math"

// binaryTable counts the 2x2 contingency table of two 0/1 items over
// paired-complete variables: a = both 1, b = x only, c = y only, d = both 0.
func binaryTable(x, y []float64) (a, b, c, d float64) {
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		switch {
		case x[i] == 1 && y[i] == 1:
			a++
		case x[i] == 1:
			b++
		case y[i] == 1:
			c++
		default:
			d++
		}
	}
	return a, b, c, d
}

// The binary family returns NaN whenever the defining denominator is zero,
// which happens when the table carries no information for that measure (for
// example Jaccard over two all-zero items).

// jaccardPair is a / (a + b + c): matches among positions where either item
// is 1.
func jaccardPair(x, y []float64) float64 {
	a, b, c, _ := binaryTable(x, y)
	if den := a + b + c; den > 0 {
		return a / den
	}
	return math.NaN()
}

// simpleMatchingPair is (a + d) / m: agreement over all positions.
func simpleMatchingPair(x, y []float64) float64 {
	a, b, c, d := binaryTable(x, y)
	if m := a + b + c + d; m > 0 {
		return (a + d) / m
	}
	return math.NaN()
}

// hammanPair is ((a + d) - (b + c)) / m: agreements minus disagreements,
// in [-1, 1].
func hammanPair(x, y []float64) float64 {
	a, b, c, d := binaryTable(x, y)
	if m := a + b + c + d; m > 0 {
		return ((a + d) - (b + c)) / m
	}
	return math.NaN()
}

// phiPair is the phi coefficient (ad - bc) / sqrt((a+b)(c+d)(a+c)(b+d)),
// the Pearson correlation of the two 0/1 items. Any zero margin gives NaN.
func phiPair(x, y []float64) float64 {
	a, b, c, d := binaryTable(x, y)
	den := math.Sqrt((a + b) * (c + d) * (a + c) * (b + d))
	if den > 0 {
		return (a*d - b*c) / den
	}
	return math.NaN()
}

// raoPair is a / m: Russell-Rao, joint presence over all positions.
func raoPair(x, y []float64) float64 {
	a, b, c, d := binaryTable(x, y)
	if m := a + b + c + d; m > 0 {
		return a / m
	}
	return math.NaN()
}

// rogersTanimotoPair is (a + d) / (a + d + 2(b + c)): agreement with
// disagreements double-weighted.
func rogersTanimotoPair(x, y []float64) float64 {
	a, b, c, d := binaryTable(x, y)
	if den := a + d + 2*(b+c); den > 0 {
		return (a + d) / den
	}
	return math.NaN()
}

// sneathPair is a / (a + 2(b + c)): Sneath-Sokal, joint presence with
// disagreements double-weighted and joint absence ignored.
func sneathPair(x, y []float64) float64 {
	a, b, c, _ := binaryTable(x, y)
	if den := a + 2*(b+c); den > 0 {
		return a / den
	}
	return math.NaN()
}

// yuleQPair is (ad - bc) / (ad + bc): Yule's Q association in [-1, 1].
func yuleQPair(x, y []float64) float64 {
	a, b, c, d := binaryTable(x, y)
	if den := a*d + b*c; den > 0 {
		return (a*d - b*c) / den
	}
	return math.NaN()
}
