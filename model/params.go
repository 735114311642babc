package model

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Parameters configures a training run. Field defaults follow the values
// the sampler was tuned with; a TOML experiment file overrides them.
type Parameters struct {
	// Global stick-breaking concentration and the fixed intermediates of
	// its auxiliary-variable update.
	AlphaH  float64 `toml:"alpha_H"`
	AlphaHD float64 `toml:"alpha_h_d"`
	AlphaHF float64 `toml:"alpha_h_f"`

	// Per-document concentration: initial value and the Gamma posterior
	// shape/scale of its update.
	AlphaInit   float64 `toml:"alpha_init"`
	AlphaShapeA float64 `toml:"alpha_shape_a"`
	AlphaScaleB float64 `toml:"alpha_scale_b"`

	// Gamma prior on region concentrations.
	KappaHyperShape float64 `toml:"kappa_hyper_shape"`
	KappaHyperScale float64 `toml:"kappa_hyper_scale"`

	// Dirichlet pseudo-counts for the non-toponym word-by-dish table and
	// the per-toponym coordinate candidate weights.
	PhiDirichletHyper  float64 `toml:"phi_dirichlet_hyper"`
	EhtaDirichletHyper float64 `toml:"ehta_dirichlet_hyper"`

	// Metropolis-Hastings proposal scales for region means and kappas.
	VMFProposalKappa float64 `toml:"vmf_proposal_kappa"`
	VMFProposalSigma float64 `toml:"vmf_proposal_sigma"`

	// L truncates the hierarchical Dirichlet process.
	L int `toml:"L"`

	BurnInIterations int `toml:"burn_in_iterations"`
	Samples          int `toml:"samples"`
	Lag              int `toml:"lag"`

	// RandomSeed 0 requests a time-based seed.
	RandomSeed int64 `toml:"random_seed"`

	InitialTemperature   float64 `toml:"initial_temperature"`
	TargetTemperature    float64 `toml:"target_temperature"`
	TemperatureDecrement float64 `toml:"temperature_decrement"`
}

func DefaultParameters() Parameters {
	return Parameters{
		AlphaH:               10,
		AlphaHD:              1,
		AlphaHF:              1,
		AlphaInit:            10,
		AlphaShapeA:          0.1,
		AlphaScaleB:          0.1,
		KappaHyperShape:      50,
		KappaHyperScale:      1,
		PhiDirichletHyper:    0.1,
		EhtaDirichletHyper:   0.1,
		VMFProposalKappa:     50,
		VMFProposalSigma:     1,
		L:                    1000,
		BurnInIterations:     100,
		Samples:              100,
		Lag:                  10,
		RandomSeed:           1,
		InitialTemperature:   1,
		TargetTemperature:    1,
		TemperatureDecrement: 0.1,
	}
}

// LoadParameters decodes a TOML experiment file over the defaults.
func LoadParameters(path string) (Parameters, error) {
	p := DefaultParameters()
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return p, errors.Wrapf(err, "decoding parameters %s", path)
	}
	return p, p.Validate()
}

func (p Parameters) Validate() error {
	switch {
	case p.L < 1:
		return errors.Errorf("L must be at least 1, got %d", p.L)
	case p.BurnInIterations < 1:
		return errors.Errorf("burn_in_iterations must be at least 1, got %d", p.BurnInIterations)
	case p.Samples < 0 || p.Lag < 1:
		return errors.Errorf("invalid sampling schedule: samples %d, lag %d", p.Samples, p.Lag)
	case p.InitialTemperature < p.TargetTemperature:
		return errors.Errorf("initial temperature %v below target %v", p.InitialTemperature, p.TargetTemperature)
	case p.TemperatureDecrement <= 0:
		return errors.Errorf("temperature decrement must be positive, got %v", p.TemperatureDecrement)
	case p.AlphaH <= 0 || p.AlphaInit <= 0:
		return errors.Errorf("concentrations must be positive: alpha_H %v, alpha_init %v", p.AlphaH, p.AlphaInit)
	case p.PhiDirichletHyper <= 0 || p.EhtaDirichletHyper <= 0:
		return errors.Errorf("dirichlet hypers must be positive: phi %v, ehta %v", p.PhiDirichletHyper, p.EhtaDirichletHyper)
	}
	return nil
}
