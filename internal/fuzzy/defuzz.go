package fuzzy

// centroid computes Σ y·μ(y) / Σ μ(y) over the sample points.
func centroid(ys, mu []float64) (float64, bool) {
	var num, den float64
	for i, y := range ys {
		num += y * mu[i]
		den += mu[i]
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// bisector returns the first sample at which the accumulated mass reaches half
// of the total.
func bisector(ys, mu []float64) (float64, bool) {
	var total float64
	for _, m := range mu {
		total += m
	}
	if total == 0 {
		return 0, false
	}
	var acc float64
	for i, m := range mu {
		acc += m
		if acc >= total/2 {
			return ys[i], true
		}
	}
	return ys[len(ys)-1], true
}

func maxDegree(mu []float64) float64 {
	var peak float64
	for _, m := range mu {
		if m > peak {
			peak = m
		}
	}
	return peak
}

func meanOfMaximum(ys, mu []float64) (float64, bool) {
	peak := maxDegree(mu)
	if peak == 0 {
		return 0, false
	}
	var sum float64
	var n int
	for i, m := range mu {
		if m == peak {
			sum += ys[i]
			n++
		}
	}
	return sum / float64(n), true
}

func smallestOfMaximum(ys, mu []float64) (float64, bool) {
	peak := maxDegree(mu)
	if peak == 0 {
		return 0, false
	}
	for i, m := range mu {
		if m == peak {
			return ys[i], true
		}
	}
	return 0, false
}

func largestOfMaximum(ys, mu []float64) (float64, bool) {
	peak := maxDegree(mu)
	if peak == 0 {
		return 0, false
	}
	for i := len(mu) - 1; i >= 0; i-- {
		if mu[i] == peak {
			return ys[i], true
		}
	}
	return 0, false
}
