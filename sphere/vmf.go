package sphere

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Density evaluates the von Mises-Fisher density of the unit vector x under
// mean direction mu and concentration kappa. Above kappa = 5 the
// exp(-kappa)-scaled asymptotic form replaces the exact normalizer, whose
// sinh term overflows for large concentrations.
func Density(x, mu []float64, kappa float64) float64 {
	if kappa > 5 {
		return 0.5 * kappa / math.Pi * math.Exp(kappa*floats.Dot(x, mu)-kappa)
	}
	return kappa * math.Exp(kappa*floats.Dot(x, mu)) / (4 * math.Pi * math.Sinh(kappa))
}

// LogDensity is the log of Density, evaluated directly in log space on the
// large-kappa branch.
func LogDensity(x, mu []float64, kappa float64) float64 {
	if kappa > 5 {
		return math.Log(0.5*kappa/math.Pi) + kappa*floats.Dot(x, mu) - kappa
	}
	return math.Log(Density(x, mu, kappa))
}
