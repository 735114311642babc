package model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/utcompling/textgrounder/corpus"
	"github.com/utcompling/textgrounder/sphere"
)

// toyData builds a three document corpus with two toponyms (words 0 and
// 1), eight regular words and one stopword token.
func toyData() (*corpus.Corpus, *corpus.Lexicon) {
	words := []int{0, 1, 2, 3, 4, 0, 1, 5, 6, 2, 0, 1, 7, 8, 9}
	docs := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2}
	const stopTok = 4

	c := &corpus.Corpus{Words: words, Documents: docs, N: len(words), W: 10, D: 3}
	for i, w := range words {
		top := w <= 1
		c.Toponyms = append(c.Toponyms, top)
		c.Stopwords = append(c.Stopwords, i == stopTok)
		if i != stopTok {
			c.NonStopwordN++
			if top {
				c.ToponymIdx = append(c.ToponymIdx, i)
			}
		}
	}

	lex := &corpus.Lexicon{
		Coordinates: [][][]float64{
			{sphere.GeographicToCartesian(40, -74), sphere.GeographicToCartesian(-33, 151)},
			{sphere.GeographicToCartesian(51.5, -0.1), sphere.GeographicToCartesian(35, 139.7)},
		},
		T:        2,
		MaxCoord: 3,
	}
	return c, lex
}

func toyParams() Parameters {
	p := DefaultParameters()
	p.L = 8
	p.BurnInIterations = 30
	p.Samples = 5
	p.Lag = 2
	p.RandomSeed = 42
	return p
}

func TestNewRejectsUncoveredToponym(t *testing.T) {
	data, lex := toyData()
	lex.Coordinates = lex.Coordinates[:1]
	lex.T = 1
	if _, err := New(data, lex, toyParams()); err == nil {
		t.Error("expected an error for a toponym without candidate coordinates")
	}
}

func TestTrainDecodeDeterministic(t *testing.T) {
	run := func() ([]int, []int) {
		data, lex := toyData()
		m, err := New(data, lex, toyParams())
		if err != nil {
			t.Fatal(err)
		}
		m.Train()
		m.Decode()
		dish, coordinate := m.Assignments()
		return dish, coordinate
	}

	dish1, coord1 := run()
	dish2, coord2 := run()
	for i := range dish1 {
		if dish1[i] != dish2[i] || coord1[i] != coord2[i] {
			t.Fatal("seeded runs diverged at token", i, ":",
				dish1[i], coord1[i], "!=", dish2[i], coord2[i])
		}
	}

	data, _ := toyData()
	for i := 0; i < data.N; i++ {
		switch {
		case data.Stopwords[i]:
			if dish1[i] != -1 || coord1[i] != -1 {
				t.Error("stopword token", i, "was assigned:", dish1[i], coord1[i])
			}
		case data.Toponyms[i]:
			if dish1[i] < 0 || dish1[i] >= 8 {
				t.Error("dish out of range at token", i, ":", dish1[i])
			}
			if coord1[i] < 0 || coord1[i] >= 2 {
				t.Error("coordinate out of range at token", i, ":", coord1[i])
			}
		default:
			if dish1[i] < 0 || dish1[i] >= 8 {
				t.Error("dish out of range at token", i, ":", dish1[i])
			}
			if coord1[i] != -1 {
				t.Error("non-toponym token", i, "has a coordinate:", coord1[i])
			}
		}
	}
}

func TestTrainAveragedPosterior(t *testing.T) {
	data, lex := toyData()
	m, err := New(data, lex, toyParams())
	if err != nil {
		t.Fatal(err)
	}
	m.Train()

	global, local, means, kappa, phi, ehta := m.Posterior()
	if global == nil {
		t.Fatal("no averaged posterior after sampling")
	}

	if s := floats.Sum(global); math.Abs(s-1) > 1e-6 {
		t.Error("averaged global dish weights sum to", s)
	}
	for d := 0; d < m.D; d++ {
		if s := floats.Sum(local[d*m.L : (d+1)*m.L]); math.Abs(s-1) > 1e-6 {
			t.Error("averaged local dish weights of document", d, "sum to", s)
		}
	}
	for l, mean := range means {
		if math.Abs(floats.Norm(mean, 2)-1) > 1e-9 {
			t.Error("averaged mean of dish", l, "not unit length:", mean)
		}
		if kappa[l] <= 0 {
			t.Error("averaged kappa of dish", l, "not positive:", kappa[l])
		}
	}
	for w := 0; w < m.W; w++ {
		if s := floats.Sum(phi[w*m.L : (w+1)*m.L]); math.Abs(s-1) > 1e-6 {
			t.Error("averaged dish distribution of word", w, "sums to", s)
		}
	}
	for tp, weights := range ehta {
		if s := floats.Sum(weights); math.Abs(s-1) > 1e-6 {
			t.Error("averaged coordinate weights of toponym", tp, "sum to", s)
		}
	}
}

func TestDecodeWithoutSamplesIsRepeatable(t *testing.T) {
	data, lex := toyData()
	p := toyParams()
	p.Samples = 0
	m, err := New(data, lex, p)
	if err != nil {
		t.Fatal(err)
	}
	m.Train()

	if global, _, _, _, _, _ := m.Posterior(); global != nil {
		t.Error("posterior averages should be nil without sampling")
	}

	m.Decode()
	dish, coordinate := m.Assignments()
	dish1 := append([]int(nil), dish...)
	coord1 := append([]int(nil), coordinate...)

	m.Decode()
	dish2, coord2 := m.Assignments()
	for i := range dish1 {
		if dish1[i] != dish2[i] || coord1[i] != coord2[i] {
			t.Fatal("repeated decode diverged at token", i)
		}
	}
}
