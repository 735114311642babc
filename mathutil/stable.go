// Package mathutil provides numerically stable arithmetic over probability
// vectors whose entries can span hundreds of orders of magnitude.
package mathutil

import "math"

// StableSum sums vals by factoring the maximum out in log space. A vector
// whose maximum is zero sums to zero.
func StableSum(vals []float64) float64 {
	return StableSumRange(vals, 0, len(vals))
}

// StableSumRange sums vals[start:end) the same way.
func StableSumRange(vals []float64, start, end int) float64 {
	max := vals[start]
	for i := start; i < end; i++ {
		if vals[i] > max {
			max = vals[i]
		}
	}

	if max == 0 {
		return 0
	}

	lmax := math.Log(max)
	p := 0.0
	for i := start; i < end; i++ {
		p += math.Exp(math.Log(vals[i]) - lmax)
	}
	return math.Exp(lmax + math.Log(p))
}

// StableAdd adds two probabilities in log space.
func StableAdd(a, b float64) float64 {
	return math.Exp(StableLogSum(math.Log(a), math.Log(b)))
}

// StableProd multiplies probabilities in log space.
func StableProd(vals ...float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += math.Log(v)
	}
	return math.Exp(sum)
}

// StableDiv divides two probabilities in log space.
func StableDiv(a, b float64) float64 {
	return math.Exp(math.Log(a) - math.Log(b))
}

// StableLogSum returns log(exp(la) + exp(lb)). Two zero probabilities stay
// at log zero.
func StableLogSum(la, lb float64) float64 {
	if math.IsInf(la, -1) && math.IsInf(lb, -1) {
		return la
	}
	if la > lb {
		return la + math.Log(1+math.Exp(lb-la))
	}
	return lb + math.Log(1+math.Exp(la-lb))
}

// CumSum returns the running sum of v.
func CumSum(v []float64) []float64 {
	cs := make([]float64, len(v))
	cs[0] = v[0]
	for i := 1; i < len(v); i++ {
		cs[i] = cs[i-1] + v[i]
	}
	return cs
}

// StableCumProb returns the running sum of a probability vector, capping
// each entry at 1 so that accumulated rounding error cannot push a
// cumulative probability past unity.
func StableCumProb(v []float64) []float64 {
	cs := make([]float64, len(v))
	cs[0] = v[0]
	for i := 1; i < len(v); i++ {
		val := StableAdd(cs[i-1], v[i])
		if val > 1 {
			cs[i] = 1
		} else {
			cs[i] = val
		}
	}
	return cs
}

// InverseCumSum accumulates v backwards: out[i] = v[i] + v[i+1] + ... .
func InverseCumSum(v []int) []int {
	return InverseCumSumRange(v, 0, len(v))
}

// InverseCumSumRange accumulates v[begin:end) backwards. Inclusive of
// begin, exclusive of end.
func InverseCumSumRange(v []int, begin, end int) []int {
	n := end - begin
	cs := make([]int, n)
	cs[n-1] = v[begin+n-1]
	for i := n - 2; i >= 0; i-- {
		cs[i] = cs[i+1] + v[begin+i]
	}
	return cs
}
