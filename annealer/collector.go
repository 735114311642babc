package annealer

import (
	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"

	"github.com/utcompling/textgrounder/mathutil"
	"github.com/utcompling/textgrounder/sphere"
)

// collector accumulates first moments of the sampled parameters. Arrays
// are allocated lazily on the first qualifying sweep, sized to whatever
// the model passes in. lastMeans keeps the most recent sampled region
// directions as the fallback for dishes whose mean vectors cancel.
type collector struct {
	globalDishWeightsFM []float64
	localDishWeightsFM  []float64
	regionMeansFM       [][]float64
	kappaFM             []float64
	nonToponymByDishFM  []float64
	toponymCoordFM      [][]float64

	lastMeans [][]float64
}

func (c *collector) initialize(global, local []float64, means [][]float64, kappa, phi []float64, ehta [][]float64) {
	c.globalDishWeightsFM = make([]float64, len(global))
	c.localDishWeightsFM = make([]float64, len(local))
	c.kappaFM = make([]float64, len(kappa))
	c.nonToponymByDishFM = make([]float64, len(phi))

	c.regionMeansFM = make([][]float64, len(means))
	c.lastMeans = make([][]float64, len(means))
	for i := range means {
		c.regionMeansFM[i] = make([]float64, len(means[i]))
		c.lastMeans[i] = make([]float64, len(means[i]))
	}

	c.toponymCoordFM = make([][]float64, len(ehta))
	for i := range ehta {
		c.toponymCoordFM[i] = make([]float64, len(ehta[i]))
	}
}

func addToFirstMoment(target, source []float64) {
	for i := range target {
		target[i] = mathutil.StableAdd(target[i], source[i])
	}
}

func (c *collector) add(global, local []float64, means [][]float64, kappa, phi []float64, ehta [][]float64) {
	addToFirstMoment(c.globalDishWeightsFM, global)
	addToFirstMoment(c.localDishWeightsFM, local)
	for l := range means {
		floats.Add(c.regionMeansFM[l], means[l])
		copy(c.lastMeans[l], means[l])
	}
	addToFirstMoment(c.kappaFM, kappa)
	addToFirstMoment(c.nonToponymByDishFM, phi)
	for t := range ehta {
		addToFirstMoment(c.toponymCoordFM[t], ehta[t])
	}
}

// average finalizes the accumulators. Every array is divided by the sample
// count except the region means, whose vector sums are renormalized to
// unit length; a zero-length sum falls back to the last sampled direction.
func (c *collector) average(sampleCount int) {
	n := float64(sampleCount)
	divide := func(v []float64) {
		for i := range v {
			v[i] /= n
		}
	}

	divide(c.globalDishWeightsFM)
	divide(c.localDishWeightsFM)
	for l := range c.regionMeansFM {
		if floats.Norm(c.regionMeansFM[l], 2) == 0 {
			copy(c.regionMeansFM[l], c.lastMeans[l])
			continue
		}
		c.regionMeansFM[l] = sphere.Normalize(c.regionMeansFM[l])
	}
	divide(c.kappaFM)
	divide(c.nonToponymByDishFM)
	for t := range c.toponymCoordFM {
		divide(c.toponymCoordFM[t])
	}
}

// collect implements the sample gate: post-burn-in sweeps at multiples of
// the lag, until the target sample count is reached, at which point the
// accumulators are averaged in place.
func (s *schedule) collect(c *collector, global, local []float64, means [][]float64, kappa, phi []float64, ehta [][]float64) {
	if s.sampleCount >= s.samples {
		return
	}
	if s.sampleIteration && s.innerIter%s.lag == 0 {
		s.sampleCount++
		if s.sampleCount == s.samples {
			s.finishedCollection = true
		}

		glog.V(1).Infof("collected sample %d of %d", s.sampleCount, s.samples)
		if c.localDishWeightsFM == nil {
			c.initialize(global, local, means, kappa, phi, ehta)
		}
		c.add(global, local, means, kappa, phi, ehta)
	}
	if s.finishedCollection {
		c.average(s.sampleCount)
	}
}

func (c *collector) GlobalDishWeightsFM() []float64   { return c.globalDishWeightsFM }
func (c *collector) LocalDishWeightsFM() []float64    { return c.localDishWeightsFM }
func (c *collector) RegionMeansFM() [][]float64       { return c.regionMeansFM }
func (c *collector) KappaFM() []float64               { return c.kappaFM }
func (c *collector) NonToponymByDishFM() []float64    { return c.nonToponymByDishFM }
func (c *collector) ToponymCoordinateFM() [][]float64 { return c.toponymCoordFM }
