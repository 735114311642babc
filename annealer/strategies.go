package annealer

import (
	"math"

	"github.com/utcompling/textgrounder/mathutil"
)

// Select returns the empty annealer when the schedule has nowhere to go
// and the simulated annealer otherwise.
func Select(c Config) Annealer {
	if math.Abs(c.InitialTemperature-c.TargetTemperature) < Epsilon {
		return NewEmpty(c)
	}
	return NewSimulated(c)
}

// Empty runs the schedule at a fixed temperature of one: probabilities
// pass through untouched and only their stable sum is computed.
type Empty struct {
	schedule
	collector
}

func NewEmpty(c Config) *Empty {
	return &Empty{schedule: newSchedule(c)}
}

func (a *Empty) AnnealProbs(classes []float64) float64 {
	return mathutil.StableSum(classes)
}

func (a *Empty) AnnealProbsRange(classes []float64, start, end int) float64 {
	return mathutil.StableSumRange(classes, start, end)
}

func (a *Empty) AnnealProbsBlocked(classes []float64, rows, subC, stride int) float64 {
	return blockStableSum(classes, rows, subC, stride)
}

func (a *Empty) CollectSamples(global, local []float64, means [][]float64, kappa, phi []float64, ehta [][]float64) {
	a.schedule.collect(&a.collector, global, local, means, kappa, phi, ehta)
}

// Simulated normalizes each conditional and raises it to the reciprocal of
// the current temperature. High temperatures flatten the distribution;
// once the schedule reaches temperature one the conditionals pass through
// unchanged.
type Simulated struct {
	schedule
	collector
}

func NewSimulated(c Config) *Simulated {
	return &Simulated{schedule: newSchedule(c)}
}

func (a *Simulated) AnnealProbs(classes []float64) float64 {
	return a.AnnealProbsRange(classes, 0, len(classes))
}

func (a *Simulated) AnnealProbsRange(classes []float64, start, end int) float64 {
	sum := mathutil.StableSumRange(classes, start, end)
	if a.temperatureReciprocal == 1 {
		return sum
	}
	for i := start; i < end; i++ {
		classes[i] = math.Pow(mathutil.StableDiv(classes[i], sum), a.temperatureReciprocal)
	}
	return mathutil.StableSumRange(classes, start, end)
}

func (a *Simulated) AnnealProbsBlocked(classes []float64, rows, subC, stride int) float64 {
	sum := blockStableSum(classes, rows, subC, stride)
	if a.temperatureReciprocal == 1 {
		return sum
	}
	for r := 0; r < rows; r++ {
		off := r * stride
		for c := 0; c < subC; c++ {
			classes[off+c] = math.Pow(mathutil.StableDiv(classes[off+c], sum), a.temperatureReciprocal)
		}
	}
	return blockStableSum(classes, rows, subC, stride)
}

func (a *Simulated) CollectSamples(global, local []float64, means [][]float64, kappa, phi []float64, ehta [][]float64) {
	a.schedule.collect(&a.collector, global, local, means, kappa, phi, ehta)
}

// MaximumPosteriorDecoder deterministically selects the arg-max of each
// conditional: the winner gets probability one and everything else zero.
// It drives a single decode pass, never training.
type MaximumPosteriorDecoder struct {
	schedule
	collector
	done bool
}

func NewMaximumPosteriorDecoder() *MaximumPosteriorDecoder {
	return &MaximumPosteriorDecoder{}
}

func (a *MaximumPosteriorDecoder) NextIter() bool {
	if a.done {
		return false
	}
	a.done = true
	return true
}

func (a *MaximumPosteriorDecoder) AnnealProbs(classes []float64) float64 {
	return a.AnnealProbsRange(classes, 0, len(classes))
}

func (a *MaximumPosteriorDecoder) AnnealProbsRange(classes []float64, start, end int) float64 {
	maxIdx := start
	for i := start; i < end; i++ {
		if classes[i] > classes[maxIdx] {
			maxIdx = i
		}
	}
	for i := start; i < end; i++ {
		classes[i] = 0
	}
	classes[maxIdx] = 1
	return 1
}

func (a *MaximumPosteriorDecoder) AnnealProbsBlocked(classes []float64, rows, subC, stride int) float64 {
	maxIdx := 0
	for r := 0; r < rows; r++ {
		off := r * stride
		for c := 0; c < subC; c++ {
			if classes[off+c] > classes[maxIdx] {
				maxIdx = off + c
			}
		}
	}
	for r := 0; r < rows; r++ {
		off := r * stride
		for c := 0; c < subC; c++ {
			classes[off+c] = 0
		}
	}
	classes[maxIdx] = 1
	return 1
}

func (a *MaximumPosteriorDecoder) CollectSamples(global, local []float64, means [][]float64, kappa, phi []float64, ehta [][]float64) {
}
