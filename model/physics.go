package model

import (
	"github.com/phil-mansfield/gosage/cosmo"
)

// Group is a joined FOF group that is being evolved to the snapshot of its
// head halo.
type Group struct {
	Tree    *Tree
	Head    int      // Index of the FOF group head halo.
	Central int      // Index of the group's central galaxy in Gals.
	Gals    []Galaxy // The group's working galaxies.
	Z       float64  // Redshift of the head's snapshot.
}

// Cosmo returns the run's cosmology.
func (g *Group) Cosmo() *cosmo.Cosmology { return g.Tree.env.Cosmo }

// Substep describes one integration substep of one galaxy.
type Substep struct {
	Step, Steps int
	DT          float64 // Length of the substep.
	Time        float64 // Time to present at the middle of the substep.
	// Infall is the gas that falls onto the central during this substep.
	// It is zero for every other galaxy.
	Infall float64
}

// Physics is the set of baryonic recipes applied to a joined group.
// Implementations may change any baryonic field of a galaxy, but must not
// touch its Type, CentralGal, HaloNr, MergeStatus or MergeIntoID. The tree
// owns those and panics with a *FatalError if any of them change.
type Physics interface {
	// Infall returns the gas that falls onto the central galaxy over the
	// whole snapshot step.
	Infall(g *Group) float64
	// Step evolves galaxy p through one substep.
	Step(g *Group, p int, s Substep)
	// Merge folds galaxy p into galaxy target and reports what kind of
	// merger it was: MinorMerger, MajorMerger, or DiskInstability.
	Merge(g *Group, p, target int, s Substep) MergeStatus
	// Disrupt dissolves galaxy p into the intracluster stars of target.
	Disrupt(g *Group, p, target int)
	// Finish converts the quantities accumulated over the snapshot step
	// to rates. deltaT is the length of the step for the central.
	Finish(g *Group, deltaT float64)
}
