// Package sampler draws every random variate the model needs from one
// seeded stream, so a fixed seed reproduces a training run exactly.
package sampler

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/utcompling/textgrounder/mathutil"
	"github.com/utcompling/textgrounder/sphere"
)

// ErrBetaEdge signals that a Beta draw with shape parameters on the
// degenerate boundary landed on one. Callers recover by pinning the
// corresponding stick break to one instead of failing.
var ErrBetaEdge = errors.New("beta draw degenerated to one")

// Source is a single-stream variate generator. Seed 0 selects a time-based
// seed; any other value is used as-is.
type Source struct {
	rng *rand.Rand
	src rand.Source
}

func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := rand.NewSource(uint64(seed))
	return &Source{rng: rand.New(src), src: src}
}

// Float64 returns a uniform draw in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Normal returns a draw from N(loc, scale).
func (s *Source) Normal(loc, scale float64) float64 {
	n := distuv.Normal{Mu: loc, Sigma: scale, Src: s.src}
	return n.Rand()
}

// Bernoulli returns 1 with probability p and 0 otherwise.
func (s *Source) Bernoulli(p float64) float64 {
	b := distuv.Bernoulli{P: p, Src: s.src}
	return b.Rand()
}

// Gamma returns a draw from the Gamma distribution with the given shape
// and scale.
func (s *Source) Gamma(shape, scale float64) float64 {
	if shape <= 0 {
		panic(fmt.Sprintf("gamma shape must be positive, got %v", shape))
	}
	g := distuv.Gamma{Alpha: shape, Beta: 1, Src: s.src}
	return scale * g.Rand()
}

// Beta returns a draw from Beta(a, b). Parameters near the degenerate
// boundary use Johnk's algorithm in log space; a draw indistinguishable
// from one returns ErrBetaEdge alongside the value 1.
func (s *Source) Beta(a, b float64) (float64, error) {
	if a <= 0.1 || b <= 0.1 {
		for {
			u := s.rng.Float64()
			v := s.rng.Float64()
			x := math.Log(u) / a
			y := math.Log(v) / b
			z := mathutil.StableLogSum(x, y)

			if math.Exp(z) <= 1.0 {
				val := math.Exp(x - z)
				if 1-val < 1e-10 {
					return 1, ErrBetaEdge
				}
				return val, nil
			}
		}
	}
	if a <= 1.0 && b <= 1.0 {
		for {
			x := math.Pow(s.rng.Float64(), 1/a)
			y := math.Pow(s.rng.Float64(), 1/b)
			if x+y <= 1.0 {
				return x / (x + y), nil
			}
		}
	}
	d := distuv.Beta{Alpha: a, Beta: b, Src: s.src}
	return d.Rand(), nil
}

// Dirichlet draws from the Dirichlet distribution with the given parameter
// vector via normalized Gamma draws, normalizing in log space so that tiny
// hyperparameters do not underflow.
func (s *Source) Dirichlet(hyper []float64) []float64 {
	vals := make([]float64, len(hyper))
	sum := 0.0
	for i := range hyper {
		vals[i] = s.Gamma(hyper[i], 1)
		sum += vals[i]
	}
	lsum := math.Log(sum)
	for i := range vals {
		vals[i] = math.Exp(math.Log(vals[i]) - lsum)
	}
	return vals
}

// DirichletCounts draws from the posterior Dirichlet with a uniform
// pseudo-count hyper plus the observed counts.
func (s *Source) DirichletCounts(hyper float64, counts []int) []float64 {
	h := make([]float64, len(counts))
	for i, n := range counts {
		h[i] = hyper + float64(n)
	}
	return s.Dirichlet(h)
}

// DirichletFlat draws from the symmetric Dirichlet of dimension n.
func (s *Source) DirichletFlat(hyper float64, n int) []float64 {
	h := make([]float64, n)
	for i := range h {
		h[i] = hyper
	}
	return s.Dirichlet(h)
}

// UnitVMF returns a unit vector drawn uniformly from the sphere.
func (s *Source) UnitVMF() []float64 {
	z := s.rng.Float64()*2 - 1
	t := s.rng.Float64() * 2 * math.Pi
	z2 := math.Sqrt(1 - z*z)
	return []float64{z2 * math.Cos(t), z2 * math.Sin(t), z}
}

// VMF returns a von Mises-Fisher draw concentrated around mu with
// parameter kappa, built by inverting the marginal CDF of the polar
// component and rotating the tangent frame onto mu.
func (s *Source) VMF(mu []float64, kappa float64) []float64 {
	theta, phi := sphere.CartesianToSpherical(mu)

	y := s.rng.Float64()
	c := 2 / math.Sinh(kappa)
	w := 1 / kappa * math.Log(math.Exp(-kappa)+c*y)
	v := 2 * math.Pi * s.rng.Float64()

	rot := rotateVector([]float64{math.Cos(v), math.Sin(v), w}, theta, phi)
	return sphere.SphericalToCartesian(rot[0], rot[1])
}

// rotateVector rotates a vector clockwise around the y axis by theta and
// then clockwise around the z axis by phi.
func rotateVector(vec []float64, theta, phi float64) []float64 {
	st, ct := math.Sin(theta), math.Cos(theta)
	sp, cp := math.Sin(phi), math.Cos(phi)

	x, y, z := vec[0], vec[1], vec[2]
	return []float64{
		x*ct*cp - y*st + z*ct*sp,
		x*st*cp + y*ct + z*st*sp,
		-x*sp + z*cp,
	}
}
