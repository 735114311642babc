package sampler

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/utcompling/textgrounder/sphere"
)

func TestSameSeedSameStream(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 20; i++ {
		x, y := a.Float64(), b.Float64()
		if x != y {
			t.Error("uniform draws diverged at", i, ":", x, "!=", y)
		}
	}
	for i := 0; i < 10; i++ {
		x, y := a.Gamma(2, 1), b.Gamma(2, 1)
		if x != y {
			t.Error("gamma draws diverged at", i, ":", x, "!=", y)
		}
	}
	for i := 0; i < 10; i++ {
		x, errx := a.Beta(2, 3)
		y, erry := b.Beta(2, 3)
		if x != y || errx != erry {
			t.Error("beta draws diverged at", i, ":", x, "!=", y)
		}
	}
}

func TestBetaInUnitInterval(t *testing.T) {
	s := New(7)
	sum := 0.0
	for i := 0; i < 500; i++ {
		v, err := s.Beta(2, 3)
		if err != nil {
			t.Fatal("unexpected beta error:", err)
		}
		if v <= 0 || v >= 1 {
			t.Fatal("beta draw out of range:", v)
		}
		sum += v
	}
	mean := sum / 500
	if math.Abs(mean-0.4) > 0.05 {
		t.Error("beta(2,3) mean off:", mean)
	}
}

func TestBetaMidRangeShapes(t *testing.T) {
	s := New(11)
	for i := 0; i < 200; i++ {
		v, err := s.Beta(0.5, 0.5)
		if err != nil {
			t.Fatal("unexpected beta error:", err)
		}
		if v < 0 || v > 1 {
			t.Fatal("beta draw out of range:", v)
		}
	}
}

func TestBetaSmallShapes(t *testing.T) {
	s := New(13)
	for i := 0; i < 200; i++ {
		v, err := s.Beta(0.05, 10)
		if err != nil {
			t.Fatal("unexpected beta error:", err)
		}
		if v < 0 || v > 1 {
			t.Fatal("beta draw out of range:", v)
		}
	}
}

func TestBetaEdge(t *testing.T) {
	s := New(3)
	v, err := s.Beta(1, 0)
	if err != ErrBetaEdge {
		t.Error("expected ErrBetaEdge, got", err)
	}
	if v != 1 {
		t.Error("edge draw should be pinned to 1, got", v)
	}
}

func TestGammaMoments(t *testing.T) {
	s := New(17)
	sum := 0.0
	for i := 0; i < 3000; i++ {
		v := s.Gamma(3, 2)
		if v <= 0 {
			t.Fatal("gamma draw not positive:", v)
		}
		sum += v
	}
	mean := sum / 3000
	if math.Abs(mean-6) > 0.3 {
		t.Error("gamma(3,2) mean off:", mean)
	}
}

func TestGammaPanicsOnZeroShape(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-positive gamma shape")
		}
	}()
	New(1).Gamma(0, 1)
}

func TestNormalMoments(t *testing.T) {
	s := New(19)
	sum := 0.0
	for i := 0; i < 3000; i++ {
		sum += s.Normal(2, 0.5)
	}
	mean := sum / 3000
	if math.Abs(mean-2) > 0.1 {
		t.Error("normal(2,0.5) mean off:", mean)
	}
}

func TestDirichletSimplex(t *testing.T) {
	s := New(23)

	v := s.DirichletCounts(0.1, []int{5, 1, 0})
	sum := 0.0
	for _, x := range v {
		if x < 0 {
			t.Fatal("negative dirichlet entry:", x)
		}
		sum += x
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Error("dirichlet counts draw does not sum to 1:", sum)
	}

	v = s.DirichletFlat(0.1, 8)
	sum = 0
	for _, x := range v {
		sum += x
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Error("flat dirichlet draw does not sum to 1:", sum)
	}
}

func TestUnitVMFOnSphere(t *testing.T) {
	s := New(29)
	mean := make([]float64, 3)
	for i := 0; i < 200; i++ {
		v := s.UnitVMF()
		if math.Abs(floats.Norm(v, 2)-1) > 1e-9 {
			t.Fatal("unit draw not on the sphere:", v)
		}
		floats.Add(mean, v)
	}
	floats.Scale(1.0/200, mean)
	if floats.Norm(mean, 2) > 0.25 {
		t.Error("uniform sphere draws have a preferred direction:", mean)
	}
}

func TestVMFOnSphere(t *testing.T) {
	s := New(31)
	mu := sphere.GeographicToCartesian(40, -74)
	for i := 0; i < 100; i++ {
		v := s.VMF(mu, 50)
		if math.Abs(floats.Norm(v, 2)-1) > 1e-9 {
			t.Fatal("vmf draw not on the sphere:", v)
		}
	}
}

func TestVMFReproducible(t *testing.T) {
	mu := sphere.GeographicToCartesian(51.5, -0.1)
	a := New(37)
	b := New(37)
	for i := 0; i < 20; i++ {
		x := a.VMF(mu, 50)
		y := b.VMF(mu, 50)
		for j := range x {
			if x[j] != y[j] {
				t.Fatal("vmf draws diverged at", i, ":", x, "!=", y)
			}
		}
	}
}
