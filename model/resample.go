package model

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/utcompling/textgrounder/mathutil"
	"github.com/utcompling/textgrounder/sphere"
)

// resample refreshes every parameter the sweep conditions on: the
// concentrations, both stick-breaking weight sets, the region means and
// kappas, and the two Dirichlet tables.
func (m *SphericalModel) resample() {
	m.alphaH = m.globalAlphaUpdate()
	m.alpha = m.alphaUpdate()
	m.globalDishWeights = m.globalStickBreakingWeightsUpdate()
	m.localDishWeights = m.restaurantStickBreakingWeightsUpdate()
	m.regionMeans = m.regionMeansUpdate()
	m.kappa = m.kappaUpdate()

	// Posterior rows of the non-toponym table are drawn as unnormalized
	// gammas and normalized per word in log space.
	dsum := make([]float64, m.W)
	for w := 0; w < m.W; w++ {
		wordoff := w * m.L
		for l := 0; l < m.L; l++ {
			val := m.rnd.Gamma(m.params.PhiDirichletHyper+float64(m.nonToponymByDishCounts[wordoff+l]), 1)
			m.nonToponymByDish[wordoff+l] = val
			dsum[w] += val
		}
	}
	for w := 0; w < m.W; w++ {
		wordoff := w * m.L
		lsum := math.Log(dsum[w])
		for l := 0; l < m.L; l++ {
			m.nonToponymByDish[wordoff+l] = math.Exp(math.Log(m.nonToponymByDish[wordoff+l]) - lsum)
		}
	}

	for t := 0; t < m.T; t++ {
		if len(m.toponymCoordinateCounts[t]) > 0 {
			m.toponymCoordinate[t] = m.rnd.DirichletCounts(m.params.EhtaDirichletHyper, m.toponymCoordinateCounts[t])
		}
	}
}

// globalAlphaUpdate resamples the global stick-breaking concentration with
// the auxiliary-variable scheme: a Beta auxiliary draw, a Bernoulli
// indicator, and a Gamma posterior draw over the occupied dish count.
func (m *SphericalModel) globalAlphaUpdate() float64 {
	occupied := 0
	for _, n := range m.globalDishCounts {
		if n > 0 {
			occupied++
		}
	}

	n := float64(m.data.NonStopwordN)
	q, err := m.rnd.Beta(m.alphaH+1, n)
	if err != nil {
		q = 1
	}

	pq := (m.params.AlphaHD + float64(occupied) - 1) / (n * (m.params.AlphaHF - math.Log(q)))
	s := m.rnd.Bernoulli(math.Min(pq, 1))
	return m.rnd.Gamma(m.params.AlphaHD+float64(occupied)+s-1, m.params.AlphaHF-math.Log(q))
}

// alphaUpdate resamples each document's concentration from its occupied
// dish count. A document with no occupancy yet keeps its current value.
func (m *SphericalModel) alphaUpdate() []float64 {
	newAlpha := make([]float64, m.D)
	for d := 0; d < m.D; d++ {
		docoff := d * m.L
		occupied := 0
		for l := 0; l < m.L; l++ {
			if m.dishByRestaurantCounts[docoff+l] > 0 {
				occupied++
			}
		}
		if occupied == 0 {
			newAlpha[d] = m.alpha[d]
			continue
		}

		q, err := m.rnd.Beta(m.alpha[d]+1, float64(occupied))
		if err != nil {
			q = 1
		}
		s := m.rnd.Bernoulli(q)
		newAlpha[d] = m.rnd.Gamma(m.params.AlphaShapeA+float64(occupied)-s, m.params.AlphaScaleB-math.Log(q))
	}
	return newAlpha
}

// globalStickBreakingWeightsUpdate redraws the global dish weights from
// count-conditioned Beta breaks. A degenerate break pins its stick to one,
// truncating the remainder.
func (m *SphericalModel) globalStickBreakingWeightsUpdate() []float64 {
	v := make([]float64, m.L)
	incs := mathutil.InverseCumSum(m.globalDishCounts)

	for l := 0; l < m.L-1; l++ {
		a := 1 + float64(m.globalDishCounts[l])
		b := m.alphaH + float64(incs[l+1])
		val, err := m.rnd.Beta(a, b)
		if err != nil {
			v[l] = 1
			break
		}
		v[l] = val
	}
	v[m.L-1] = 1
	return stickWeights(v)
}

// restaurantStickBreakingWeightsUpdate redraws each document's local dish
// weights, shrunk toward the global weights by the document concentration.
func (m *SphericalModel) restaurantStickBreakingWeightsUpdate() []float64 {
	weights := make([]float64, m.D*m.L)
	wcs := mathutil.StableCumProb(m.globalDishWeights)

	for d := 0; d < m.D; d++ {
		docoff := d * m.L
		ai := m.alpha[d]
		incs := mathutil.InverseCumSumRange(m.dishByRestaurantCounts, docoff, docoff+m.L)

		vl := make([]float64, m.L)
		for l := 0; l < m.L-1; l++ {
			a := mathutil.StableProd(ai, m.globalDishWeights[l]) + float64(m.dishByRestaurantCounts[docoff+l])
			b := mathutil.StableProd(ai, 1-wcs[l]) + float64(incs[l+1])
			val, err := m.rnd.Beta(a, b)
			if err != nil {
				vl[l] = 1
				break
			}
			vl[l] = val
		}
		vl[m.L-1] = 1
		copy(weights[docoff:docoff+m.L], stickWeights(vl))
	}
	return weights
}

// evalMuLogLikelihood is the mean-dependent part of the vMF log likelihood
// of the toponym tokens assigned to dish l.
func (m *SphericalModel) evalMuLogLikelihood(mu []float64, l int) float64 {
	logLikelihood := 0.0
	for _, i := range m.data.ToponymIdx {
		if m.dishVector[i] == l {
			coord := m.lex.Coordinates[m.data.Words[i]][m.coordinateVector[i]]
			logLikelihood += floats.Dot(coord, mu)
		}
	}
	return logLikelihood
}

// evalKappaLogLikelihood is the full vMF log likelihood of dish l's
// toponym tokens, switching normalizer forms at kappa = 5.
func (m *SphericalModel) evalKappaLogLikelihood(kappa float64, mu []float64, l int) float64 {
	dots := 0.0
	for _, i := range m.data.ToponymIdx {
		if m.dishVector[i] == l {
			coord := m.lex.Coordinates[m.data.Words[i]][m.coordinateVector[i]]
			dots += floats.Dot(coord, mu)
		}
	}
	// evaluating the density at the mean itself isolates the log
	// normalizer, so both branch forms come from one place
	count := float64(m.toponymByDishCounts[l])
	return count*(sphere.LogDensity(mu, mu, kappa)-kappa) + kappa*dots
}

// regionMeansUpdate proposes a vMF perturbation of each region mean and
// accepts by Metropolis. The proposal is symmetric, so no Hastings
// correction appears.
func (m *SphericalModel) regionMeansUpdate() [][]float64 {
	newMeans := make([][]float64, m.L)
	for l := 0; l < m.L; l++ {
		oldmean := m.regionMeans[l]
		newmean := m.rnd.VMF(oldmean, m.params.VMFProposalKappa)

		u := m.evalMuLogLikelihood(newmean, l) - m.evalMuLogLikelihood(oldmean, l)
		if u > 0 || m.rnd.Float64() < math.Exp(u) {
			newMeans[l] = newmean
		} else {
			newMeans[l] = oldmean
		}
	}
	return newMeans
}

// kappaUpdate proposes a Gaussian perturbation of each region kappa,
// redrawn until non-negative, and accepts by Metropolis.
func (m *SphericalModel) kappaUpdate() []float64 {
	newKappa := make([]float64, m.L)
	for l := 0; l < m.L; l++ {
		oldk := m.kappa[l]
		newk := m.rnd.Normal(oldk, m.params.VMFProposalSigma)
		for newk < 0 {
			newk = m.rnd.Normal(oldk, m.params.VMFProposalSigma)
		}

		u := m.evalKappaLogLikelihood(newk, m.regionMeans[l], l) - m.evalKappaLogLikelihood(oldk, m.regionMeans[l], l)
		if u > 0 || m.rnd.Float64() < math.Exp(u) {
			newKappa[l] = newk
		} else {
			newKappa[l] = oldk
		}
	}
	return newKappa
}
