package sphere

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDensityPeaksAtMean(t *testing.T) {
	mu := GeographicToCartesian(40, -74)
	far := GeographicToCartesian(-33, 151)

	for _, kappa := range []float64{0.5, 2, 10, 100} {
		assert.Greater(t, Density(mu, mu, kappa), Density(far, mu, kappa), "kappa %v", kappa)
	}
}

func TestLogDensityMatchesDensity(t *testing.T) {
	x := GeographicToCartesian(10, 20)
	mu := GeographicToCartesian(12, 22)

	for _, kappa := range []float64{0.5, 4.9, 5.1, 50, 500} {
		assert.InDelta(t, math.Log(Density(x, mu, kappa)), LogDensity(x, mu, kappa), 1e-9, "kappa %v", kappa)
	}
}

func TestDensityLargeKappaFinite(t *testing.T) {
	x := GeographicToCartesian(0, 0)
	mu := GeographicToCartesian(0, 1)

	d := Density(x, mu, 5000)
	assert.False(t, math.IsInf(d, 0))
	assert.False(t, math.IsNaN(d))
	assert.Greater(t, d, 0.0)
}
