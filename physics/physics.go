// Package physics contains implementations of model.Physics.
package physics

import (
	"fmt"

	"github.com/phil-mansfield/gosage/model"
)

// Null does nothing to baryons. Every satellite will merge as soon as its
// clock is checked, since none of them ever contain any baryons.
type Null struct{}

func (Null) Infall(g *model.Group) float64               { return 0 }
func (Null) Step(g *model.Group, p int, s model.Substep) {}
func (Null) Disrupt(g *model.Group, p, target int)       {}
func (Null) Finish(g *model.Group, deltaT float64)       {}

func (Null) Merge(
	g *model.Group, p, target int, s model.Substep,
) model.MergeStatus {
	return model.MinorMerger
}

// Params are the parameters used by Baryons.
type Params struct {
	BaryonFrac            float64
	SfrEfficiency         float64
	RecycleFraction       float64
	Yield                 float64
	ThreshMajorMerger     float64
	ReIncorporationFactor float64
}

// DefaultParams returns the standard parameter values.
func DefaultParams() Params {
	return Params{
		BaryonFrac:            0.17,
		SfrEfficiency:         0.05,
		RecycleFraction:       0.43,
		Yield:                 0.025,
		ThreshMajorMerger:     0.3,
		ReIncorporationFactor: 0.15,
	}
}

// New returns the Physics with the given name.
func New(name string, p Params) (model.Physics, error) {
	switch name {
	case "null":
		return Null{}, nil
	case "baryons":
		return &Baryons{Params: p}, nil
	}
	return nil, fmt.Errorf("Unrecognized physics '%s'.", name)
}

// metallicity returns the metal fraction of a reservoir.
func metallicity(gas, metals float64) float64 {
	if gas <= 0 || metals <= 0 {
		return 0
	}
	z := metals / gas
	if z > 1 {
		return 1
	}
	return z
}
