package model

import (
	"compress/gzip"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

const snapshotVersion = 1

// Snapshot is the versioned serialized form of a finished run: the
// averaged posterior point estimates plus the final assignments. Transient
// state (RNG, schedule, count tables) is deliberately excluded.
type Snapshot struct {
	Version int

	L int
	W int
	D int
	N int
	T int

	AlphaH float64
	Alpha  []float64

	GlobalDishWeights []float64
	LocalDishWeights  []float64
	RegionMeans       [][]float64
	Kappa             []float64
	NonToponymByDish  []float64
	ToponymCoordinate [][]float64

	Dish                []int
	CoordinateCandidate []int
}

// Snapshot captures the model's output state, preferring the averaged
// posterior when sampling has finished.
func (m *SphericalModel) Snapshot() *Snapshot {
	s := &Snapshot{
		Version:             snapshotVersion,
		L:                   m.L,
		W:                   m.W,
		D:                   m.D,
		N:                   m.N,
		T:                   m.T,
		AlphaH:              m.alphaH,
		Alpha:               m.alpha,
		GlobalDishWeights:   m.globalDishWeightsFM,
		LocalDishWeights:    m.localDishWeightsFM,
		RegionMeans:         m.regionMeansFM,
		Kappa:               m.kappaFM,
		NonToponymByDish:    m.nonToponymByDishFM,
		ToponymCoordinate:   m.toponymCoordinateFM,
		Dish:                m.dishVector,
		CoordinateCandidate: m.coordinateVector,
	}
	if s.LocalDishWeights == nil {
		s.GlobalDishWeights = m.globalDishWeights
		s.LocalDishWeights = m.localDishWeights
		s.RegionMeans = m.regionMeans
		s.Kappa = m.kappa
		s.NonToponymByDish = m.nonToponymByDish
		s.ToponymCoordinate = m.toponymCoordinate
	}
	return s
}

// SaveSnapshot writes the snapshot as gzipped JSON.
func (m *SphericalModel) SaveSnapshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	gz := gzip.NewWriter(f)

	if err := json.NewEncoder(gz).Encode(m.Snapshot()); err != nil {
		gz.Close()
		f.Close()
		return errors.Wrapf(err, "encoding snapshot %s", path)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return errors.Wrapf(err, "closing %s", path)
	}
	return f.Close()
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "opening gzip stream %s", path)
	}
	defer gz.Close()

	s := &Snapshot{}
	if err := json.NewDecoder(gz).Decode(s); err != nil {
		return nil, errors.Wrapf(err, "decoding snapshot %s", path)
	}
	if s.Version != snapshotVersion {
		return nil, errors.Errorf("unsupported snapshot version %d", s.Version)
	}
	return s, nil
}
