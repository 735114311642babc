// Package annealer controls the sampler's temperature schedule and, after
// burn-in, accumulates posterior samples of the model parameters.
package annealer

import (
	"math"

	"github.com/golang/glog"
)

// Epsilon bounds floating point comparison of temperatures.
const Epsilon = 1e-6

// Config carries the schedule portion of the experiment parameters.
type Config struct {
	InitialTemperature   float64
	TargetTemperature    float64
	TemperatureDecrement float64
	BurnInIterations     int
	Samples              int
	Lag                  int
}

// An Annealer reshapes one token's unnormalized conditional distribution
// in place and returns its normalizing constant. AnnealProbsBlocked
// operates on the populated subC-wide prefix of each of rows stride-wide
// rows, for blocked dish-and-coordinate draws.
type Annealer interface {
	NextIter() bool
	AnnealProbs(classes []float64) float64
	AnnealProbsRange(classes []float64, start, end int) float64
	AnnealProbsBlocked(classes []float64, rows, subC, stride int) float64

	CollectSamples(global, local []float64, means [][]float64, kappa, phi []float64, ehta [][]float64)
	Samples() int
	SampleCount() int
	FinishedCollection() bool
	PlannedIterations() int

	GlobalDishWeightsFM() []float64
	LocalDishWeightsFM() []float64
	RegionMeansFM() [][]float64
	KappaFM() []float64
	NonToponymByDishFM() []float64
	ToponymCoordinateFM() [][]float64
}

// schedule is the iteration state machine shared by every annealer. The
// burn-in phase runs outerIterationsMax outer iterations of
// innerIterationsMax sweeps, decrementing the temperature once per outer
// iteration; it then converts itself into a single sampling pass of
// samples*lag sweeps at the target temperature.
type schedule struct {
	temperatureReciprocal float64
	initialTemperature    float64
	temperatureDecrement  float64
	targetTemperature     float64
	temperature           float64

	innerIter          int
	outerIter          int
	innerIterationsMax int
	outerIterationsMax int

	samples int
	lag     int

	sampleIteration    bool
	finishedCollection bool
	sampleCount        int
}

func newSchedule(c Config) schedule {
	s := schedule{
		initialTemperature:   c.InitialTemperature,
		temperature:          c.InitialTemperature,
		temperatureDecrement: c.TemperatureDecrement,
		targetTemperature:    c.TargetTemperature,
		innerIterationsMax:   c.BurnInIterations,
		samples:              c.Samples,
		lag:                  c.Lag,
	}
	s.temperatureReciprocal = 1 / s.temperature
	s.outerIterationsMax = int(math.Round((c.InitialTemperature-c.TargetTemperature)/c.TemperatureDecrement)) + 1
	return s
}

// stabilizeTemperature pins the reciprocal to exactly one once the
// schedule has decremented within Epsilon of it.
func (s *schedule) stabilizeTemperature() {
	if math.Abs(s.temperatureReciprocal-1) < Epsilon {
		glog.V(1).Info("temperature stabilized to 1")
		s.temperatureReciprocal = 1
	}
}

func (s *schedule) NextIter() bool {
	if s.outerIter == s.outerIterationsMax {
		if s.samples != 0 && !s.finishedCollection {
			glog.Infof("burn in complete, beginning sampling")

			s.outerIter = 0
			s.innerIter = 1
			s.temperatureReciprocal = 1 / s.targetTemperature
			s.innerIterationsMax = s.samples * s.lag
			s.outerIterationsMax = 1
			s.sampleIteration = true
			return true
		}
		return false
	}

	if s.innerIter == s.innerIterationsMax {
		s.outerIter++
		if s.outerIter == s.outerIterationsMax {
			return s.NextIter()
		}
		s.innerIter = 0
		s.temperature -= s.temperatureDecrement
		s.temperatureReciprocal = 1 / s.temperature
		s.stabilizeTemperature()
		glog.Infof("outer iteration %d (temperature %.2f)", s.outerIter, s.temperature)
	}
	s.innerIter++
	return true
}

// PlannedIterations is the number of sweeps a full run will perform.
func (s *schedule) PlannedIterations() int {
	return s.outerIterationsMax*s.innerIterationsMax + s.samples*s.lag
}

func (s *schedule) Samples() int             { return s.samples }
func (s *schedule) SampleCount() int         { return s.sampleCount }
func (s *schedule) FinishedCollection() bool { return s.finishedCollection }

// blockStableSum sums the populated block of a row-strided matrix the same
// way mathutil.StableSum treats a flat vector.
func blockStableSum(classes []float64, rows, subC, stride int) float64 {
	max := classes[0]
	for r := 0; r < rows; r++ {
		off := r * stride
		for c := 0; c < subC; c++ {
			if classes[off+c] > max {
				max = classes[off+c]
			}
		}
	}

	if max == 0 {
		return 0
	}

	lmax := math.Log(max)
	p := 0.0
	for r := 0; r < rows; r++ {
		off := r * stride
		for c := 0; c < subC; c++ {
			p += math.Exp(math.Log(classes[off+c]) - lmax)
		}
	}
	return math.Exp(lmax + math.Log(p))
}
