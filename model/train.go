package model

import (
	"math"

	"github.com/cheggaaa/pb/v3"
	"github.com/golang/glog"

	"github.com/utcompling/textgrounder/annealer"
	"github.com/utcompling/textgrounder/mathutil"
)

// stickWeights converts stick-breaking draws to dish weights,
// w[l] = v[l] * prod_{l'<l}(1 - v[l']), composing the running product in
// log space.
func stickWeights(v []float64) []float64 {
	ilvl := make([]float64, len(v))
	for i := range v {
		ilvl[i] = math.Log(1 - v[i])
	}
	ivl := mathutil.CumSum(ilvl)

	weights := make([]float64, len(v))
	weights[0] = v[0]
	for l := 1; l < len(v); l++ {
		weights[l] = math.Exp(math.Log(v[l]) + ivl[l-1])
	}
	return weights
}

// RandomInitialize draws the stick-breaking weights, region parameters and
// Dirichlet tables from their priors, then runs one assignment pass at
// temperature one to seed the count statistics.
func (m *SphericalModel) RandomInitialize() {
	{
		v := make([]float64, m.L)
		for l := 0; l < m.L-1; l++ {
			val, err := m.rnd.Beta(1, m.alphaH)
			if err != nil {
				v[l] = 1
				break
			}
			v[l] = val
		}
		v[m.L-1] = 1
		m.globalDishWeights = stickWeights(v)
	}

	{
		wcs := mathutil.StableCumProb(m.globalDishWeights)
		for d := 0; d < m.D; d++ {
			docoff := d * m.L
			ai := m.alpha[d]

			vl := make([]float64, m.L)
			for l := 0; l < m.L-1; l++ {
				val, err := m.rnd.Beta(ai*m.globalDishWeights[l], ai*(1-wcs[l]))
				if err != nil {
					vl[l] = 1
					break
				}
				if math.IsNaN(val) {
					vl[l] = 0
				} else {
					vl[l] = val
				}
			}
			vl[m.L-1] = 1
			copy(m.localDishWeights[docoff:docoff+m.L], stickWeights(vl))
		}
	}

	for l := 0; l < m.L; l++ {
		m.regionMeans[l] = m.rnd.UnitVMF()
		m.kappa[l] = m.rnd.Gamma(m.params.KappaHyperShape, m.params.KappaHyperScale)
	}

	for l := 0; l < m.L; l++ {
		dir := m.rnd.DirichletFlat(m.params.PhiDirichletHyper, m.W)
		for i := 0; i < m.W; i++ {
			m.nonToponymByDish[i*m.L+l] = dir[i]
		}
	}

	for t := 0; t < m.T; t++ {
		if n := len(m.lex.Coordinates[t]); n > 0 {
			m.toponymCoordinate[t] = m.rnd.DirichletFlat(m.params.EhtaDirichletHyper, n)
		}
	}

	seed := annealer.NewEmpty(annealer.Config{
		InitialTemperature:   1,
		TargetTemperature:    1,
		TemperatureDecrement: m.params.TemperatureDecrement,
		BurnInIterations:     m.params.BurnInIterations,
	})
	m.sweep(seed, m.liveParams(), true)
	m.checkTableOccupancy()
}

// Train runs the annealing schedule to completion, collecting posterior
// samples after burn-in and exposing their averages.
func (m *SphericalModel) Train() {
	glog.Infof("randomly initializing with %d tokens, %d words, %d documents, and %d dishes", m.N, m.W, m.D, m.L)
	m.RandomInitialize()

	glog.Infof("beginning training with %d tokens, %d words, %d documents, and %d dishes", m.N, m.W, m.D, m.L)
	bar := pb.StartNew(m.ann.PlannedIterations())
	for m.ann.NextIter() {
		m.sweep(m.ann, m.liveParams(), true)
		m.checkTableOccupancy()

		m.ann.CollectSamples(m.globalDishWeights, m.localDishWeights, m.regionMeans,
			m.kappa, m.nonToponymByDish, m.toponymCoordinate)
		m.resample()
		bar.Increment()
	}
	bar.Finish()

	if m.ann.Samples() != 0 {
		m.globalDishWeightsFM = m.ann.GlobalDishWeightsFM()
		m.localDishWeightsFM = m.ann.LocalDishWeightsFM()
		m.regionMeansFM = m.ann.RegionMeansFM()
		m.kappaFM = m.ann.KappaFM()
		m.nonToponymByDishFM = m.ann.NonToponymByDishFM()
		m.toponymCoordinateFM = m.ann.ToponymCoordinateFM()
		glog.Infof("training finished with %d collected samples", m.ann.SampleCount())
	}
}

// Decode runs one maximum-posterior pass over the tokens, assigning each
// its arg-max dish and coordinate under the averaged parameters. With no
// collected samples it decodes against the live parameters.
func (m *SphericalModel) Decode() {
	p := paramSet{
		localDishWeights:  m.localDishWeightsFM,
		regionMeans:       m.regionMeansFM,
		kappa:             m.kappaFM,
		nonToponymByDish:  m.nonToponymByDishFM,
		toponymCoordinate: m.toponymCoordinateFM,
	}
	if p.localDishWeights == nil {
		p = m.liveParams()
	}
	m.sweep(annealer.NewMaximumPosteriorDecoder(), p, false)
}

// Assignments returns the per-token dish and coordinate candidate vectors.
func (m *SphericalModel) Assignments() (dish, coordinate []int) {
	return m.dishVector, m.coordinateVector
}

// Posterior returns the averaged posterior point estimates; nil slices
// before sampling has finished.
func (m *SphericalModel) Posterior() (global, local []float64, means [][]float64, kappa, phi []float64, ehta [][]float64) {
	return m.globalDishWeightsFM, m.localDishWeightsFM, m.regionMeansFM,
		m.kappaFM, m.nonToponymByDishFM, m.toponymCoordinateFM
}
