package features

import "math"

// safeDiv returns 0 when the denominator is 0.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func span(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return hi - lo
}

func last(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}

// deltas returns consecutive differences xs[i]-xs[i-1].
func deltas(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

// trend is the mean consecutive delta, 0 for fewer than two points.
func trend(xs []float64) float64 {
	return mean(deltas(xs))
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// signFlips counts indices whose sign differs from the previous one and
// returns the first such index, or 0 when the sign never changes.
func signFlips(xs []float64) (flips, first int) {
	for i := 1; i < len(xs); i++ {
		if sign(xs[i]) != sign(xs[i-1]) {
			if flips == 0 {
				first = i
			}
			flips++
		}
	}
	return flips, first
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return safeDiv(dot, math.Sqrt(na)*math.Sqrt(nb))
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
