// Package model implements the spherical toponym resolution sampler: a
// hierarchical Dirichlet process over region dishes, truncated at L, with
// von Mises-Fisher region distributions over candidate coordinates.
package model

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/utcompling/textgrounder/annealer"
	"github.com/utcompling/textgrounder/corpus"
	"github.com/utcompling/textgrounder/mathutil"
	"github.com/utcompling/textgrounder/sampler"
	"github.com/utcompling/textgrounder/sphere"
)

// SphericalModel owns the latent assignment vectors, their sufficient
// statistics, and the continuous region parameters. Counts are mutated
// incrementally during sweeps and must only be touched through the sweep
// and resample paths.
type SphericalModel struct {
	params Parameters
	rnd    *sampler.Source
	ann    annealer.Annealer

	data *corpus.Corpus
	lex  *corpus.Lexicon

	L        int
	N        int
	W        int
	D        int
	T        int
	maxCoord int

	dishVector       []int
	coordinateVector []int

	globalDishCounts        []int
	dishByRestaurantCounts  []int // D x L
	toponymByDishCounts     []int
	nonToponymByDishCounts  []int // W x L
	toponymCoordinateCounts [][]int

	alphaH float64
	alpha  []float64

	globalDishWeights []float64
	localDishWeights  []float64 // D x L
	regionMeans       [][]float64
	kappa             []float64
	nonToponymByDish  []float64 // W x L
	toponymCoordinate [][]float64

	// averaged posterior estimates, populated once sampling finishes
	globalDishWeightsFM []float64
	localDishWeightsFM  []float64
	regionMeansFM       [][]float64
	kappaFM             []float64
	nonToponymByDishFM  []float64
	toponymCoordinateFM [][]float64
}

// New validates the corpus against the lexicon and allocates the model
// state. The annealer is selected from the temperature schedule: a flat
// schedule gets the pass-through annealer.
func New(data *corpus.Corpus, lex *corpus.Lexicon, params Parameters) (*SphericalModel, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	for _, i := range data.ToponymIdx {
		w := data.Words[i]
		if w >= lex.T || len(lex.Coordinates[w]) == 0 {
			return nil, errors.Errorf("toponym token %d (word %d) has no candidate coordinates", i, w)
		}
	}

	m := &SphericalModel{
		params:   params,
		rnd:      sampler.New(params.RandomSeed),
		data:     data,
		lex:      lex,
		L:        params.L,
		N:        data.N,
		W:        data.W,
		D:        data.D,
		T:        lex.T,
		maxCoord: lex.MaxCoord,
		alphaH:   params.AlphaH,
	}
	m.ann = annealer.Select(annealer.Config{
		InitialTemperature:   params.InitialTemperature,
		TargetTemperature:    params.TargetTemperature,
		TemperatureDecrement: params.TemperatureDecrement,
		BurnInIterations:     params.BurnInIterations,
		Samples:              params.Samples,
		Lag:                  params.Lag,
	})

	m.dishVector = make([]int, m.N)
	m.coordinateVector = make([]int, m.N)
	for i := range m.dishVector {
		m.dishVector[i] = -1
		m.coordinateVector[i] = -1
	}

	m.globalDishCounts = make([]int, m.L)
	m.dishByRestaurantCounts = make([]int, m.D*m.L)
	m.toponymByDishCounts = make([]int, m.L)
	m.nonToponymByDishCounts = make([]int, m.W*m.L)
	m.toponymCoordinateCounts = make([][]int, m.T)
	for t := 0; t < m.T; t++ {
		m.toponymCoordinateCounts[t] = make([]int, len(lex.Coordinates[t]))
	}

	m.alpha = make([]float64, m.D)
	for d := range m.alpha {
		m.alpha[d] = params.AlphaInit
	}

	m.globalDishWeights = make([]float64, m.L)
	m.localDishWeights = make([]float64, m.D*m.L)
	m.regionMeans = make([][]float64, m.L)
	m.kappa = make([]float64, m.L)
	m.nonToponymByDish = make([]float64, m.W*m.L)
	m.toponymCoordinate = make([][]float64, m.T)

	return m, nil
}

// paramSet bundles the parameter arrays a sweep conditions on, so the
// same sweep serves training (live parameters) and decoding (averaged
// parameters).
type paramSet struct {
	localDishWeights  []float64
	regionMeans       [][]float64
	kappa             []float64
	nonToponymByDish  []float64
	toponymCoordinate [][]float64
}

func (m *SphericalModel) liveParams() paramSet {
	return paramSet{
		localDishWeights:  m.localDishWeights,
		regionMeans:       m.regionMeans,
		kappa:             m.kappa,
		nonToponymByDish:  m.nonToponymByDish,
		toponymCoordinate: m.toponymCoordinate,
	}
}

// sweep reassigns every non-stopword token once: decrement the counts the
// token currently occupies, build its conditional, reshape it through the
// annealer, draw by inverse CDF, and increment the counts for the new
// assignment. Tokens with no assignment yet skip the decrement, which
// makes the same code path serve random initialization.
func (m *SphericalModel) sweep(ann annealer.Annealer, p paramSet, updateCounts bool) {
	regionProbs := make([]float64, m.L*m.maxCoord)
	dishProbs := make([]float64, m.L)

	for i := 0; i < m.N; i++ {
		if m.data.Stopwords[i] {
			continue
		}
		wordid := m.data.Words[i]
		docid := m.data.Documents[i]
		docoff := docid * m.L

		if m.data.Toponyms[i] {
			if updateCounts && m.dishVector[i] >= 0 {
				dishid := m.dishVector[i]
				coordid := m.coordinateVector[i]
				m.globalDishCounts[dishid]--
				m.toponymByDishCounts[dishid]--
				m.dishByRestaurantCounts[docoff+dishid]--
				m.toponymCoordinateCounts[wordid][coordid]--
			}

			curCoords := m.lex.Coordinates[wordid]
			curCoordCount := len(curCoords)
			coordinateWeights := p.toponymCoordinate[wordid]

			for j := range regionProbs {
				regionProbs[j] = 0
			}
			for j := 0; j < m.L; j++ {
				regoff := j * m.maxCoord
				regionmean := p.regionMeans[j]
				ldw := p.localDishWeights[docoff+j]
				for k := 0; k < curCoordCount; k++ {
					regionProbs[regoff+k] = mathutil.StableProd(ldw, coordinateWeights[k],
						sphere.Density(curCoords[k], regionmean, p.kappa[j]))
				}
			}

			totalprob := ann.AnnealProbsBlocked(regionProbs, m.L, curCoordCount, m.maxCoord)
			if totalprob == 0 {
				panic(fmt.Sprintf("token %d (word %d): toponym conditional normalized to zero", i, wordid))
			}

			r := mathutil.StableProd(m.rnd.Float64(), totalprob)
			max := regionProbs[0]
			dishid, coordid := 0, 0
			for r > max {
				coordid++
				if coordid == curCoordCount {
					dishid++
					coordid = 0
				}
				max = mathutil.StableAdd(max, regionProbs[dishid*m.maxCoord+coordid])
			}
			m.dishVector[i] = dishid
			m.coordinateVector[i] = coordid

			if updateCounts {
				m.globalDishCounts[dishid]++
				m.toponymByDishCounts[dishid]++
				m.dishByRestaurantCounts[docoff+dishid]++
				m.toponymCoordinateCounts[wordid][coordid]++
			}
		} else {
			wordoff := wordid * m.L
			if updateCounts && m.dishVector[i] >= 0 {
				dishid := m.dishVector[i]
				m.globalDishCounts[dishid]--
				m.dishByRestaurantCounts[docoff+dishid]--
				m.nonToponymByDishCounts[wordoff+dishid]--
			}

			for j := 0; j < m.L; j++ {
				dishProbs[j] = mathutil.StableProd(p.localDishWeights[docoff+j], p.nonToponymByDish[wordoff+j])
			}

			totalprob := ann.AnnealProbs(dishProbs)
			if totalprob == 0 {
				panic(fmt.Sprintf("token %d (word %d): dish conditional normalized to zero", i, wordid))
			}

			r := mathutil.StableProd(m.rnd.Float64(), totalprob)
			max := dishProbs[0]
			dishid := 0
			for r > max {
				dishid++
				max = mathutil.StableAdd(max, dishProbs[dishid])
			}
			m.dishVector[i] = dishid

			if updateCounts {
				m.globalDishCounts[dishid]++
				m.dishByRestaurantCounts[docoff+dishid]++
				m.nonToponymByDishCounts[wordoff+dishid]++
			}
		}
	}
}

// checkTableOccupancy aborts when a document has occupied every dish: the
// truncation level no longer bounds the process and L must be raised.
func (m *SphericalModel) checkTableOccupancy() {
	for d := 0; d < m.D; d++ {
		docoff := d * m.L
		occupied := 0
		for l := 0; l < m.L; l++ {
			if m.dishByRestaurantCounts[docoff+l] == 0 {
				break
			}
			occupied++
		}
		if occupied == m.L {
			glog.Exitf("all %d dishes occupied in document %d, raise the truncation level", m.L, d)
		}
	}
}
