/*
Package model builds galaxies on top of a halo merger tree.

A Tree is walked depth-first so that every halo is processed only after all
of its progenitors (and all the progenitors of the rest of its FOF group)
have been. For each FOF group, the galaxies of every progenitor are copied
into a working set, updated to their new halo, evolved through a fixed
number of substeps by a Physics implementation, and finally appended to the
tree's permanent galaxy list. Galaxies which merge during the evolution are
not appended again; instead, their previous record is patched to point at
the galaxy they merged into.

All broken invariants result in a panic with a *FatalError.
*/
package model

import (
	"github.com/phil-mansfield/gosage/cosmo"
	"github.com/phil-mansfield/gosage/halo"
)

// GroupState tracks which stage a halo's FOF group has reached.
type GroupState int

const (
	GroupUnvisited GroupState = iota
	// GroupWalking means that the progenitors of the group are being built.
	GroupWalking
	// GroupJoined means that the group's galaxies have been joined.
	GroupJoined
)

// HaloAux is the per-halo bookkeeping used while building a tree.
type HaloAux struct {
	Done  bool
	State GroupState

	// The galaxies of the halo are Gals[FirstGalaxy: FirstGalaxy+NGalaxies].
	NGalaxies, FirstGalaxy int
}

// Params are the numerical parameters the core needs.
type Params struct {
	PartMass               float64 // Mass of a simulation particle.
	Steps                  int     // Number of substeps per snapshot.
	ThresholdSatDisruption float64 // Mvir/baryon ratio below which satellites merge.

	WorkingInitial int
	Growth         GrowthPolicy
}

// DefaultParams returns Params with the values used by the usual
// Millennium-like runs.
func DefaultParams() Params {
	return Params{
		PartMass:               0.0860657,
		Steps:                  10,
		ThresholdSatDisruption: 1.0,
		WorkingInitial:         DefaultWorkingInitial,
		Growth:                 DefaultGrowthPolicy(),
	}
}

// Env is everything that is shared between all the trees of a run and is
// never modified by them.
type Env struct {
	Cosmo   *cosmo.Cosmology
	Snaps   *cosmo.Snapshots
	Physics Physics
	Params  Params
}

// Stats counts what happened while building a tree.
type Stats struct {
	Groups      int // FOF groups joined.
	NewGalaxies int
	Orphans     int // Galaxies which lost their subhalo.
	Mergers     [mergeStatusNum]int
	Grows       int // Working set reallocations.
}

// Add adds the counts in s2 to s.
func (s *Stats) Add(s2 *Stats) {
	s.Groups += s2.Groups
	s.NewGalaxies += s2.NewGalaxies
	s.Orphans += s2.Orphans
	for i := range s.Mergers {
		s.Mergers[i] += s2.Mergers[i]
	}
	s.Grows += s2.Grows
}

// Tree is the construction context for the galaxies of a single merger
// tree.
type Tree struct {
	File, Index int

	Halos []halo.Halo
	Aux   []HaloAux

	// Gals is the permanent galaxy list. It is append-only except for the
	// merger fields of galaxies that merged in a later snapshot.
	Gals    []Galaxy
	MaxGals int

	Stats Stats

	env     *Env
	work    *WorkingSet
	counter int64
}

// NewTree creates a construction context for the given halos.
func NewTree(env *Env, file, index int, halos []halo.Halo) *Tree {
	maxGals := maxGalFactor * len(halos)
	if maxGals < minMaxGals {
		maxGals = minMaxGals
	}

	initial := env.Params.WorkingInitial
	if initial <= 0 {
		initial = DefaultWorkingInitial
	}

	return &Tree{
		File: file, Index: index,
		Halos:   halos,
		Aux:     make([]HaloAux, len(halos)),
		MaxGals: maxGals,
		env:     env,
		work:    NewWorkingSet(initial, env.Params.Growth),
	}
}

// Build constructs galaxies for every halo in the tree. Trees can contain
// more than one root, so every halo is used as a starting point.
func (t *Tree) Build() {
	for h := range t.Halos {
		if !t.Aux[h].Done {
			t.BuildHalo(h)
		}
	}
	t.Stats.Grows = t.work.Grows()
}

// Galaxies returns the galaxies attached to halo h.
func (t *Tree) Galaxies(h int) []Galaxy {
	aux := &t.Aux[h]
	return t.Gals[aux.FirstGalaxy : aux.FirstGalaxy+aux.NGalaxies]
}

// WorkingCap returns the current capacity of the tree's working set.
func (t *Tree) WorkingCap() int { return t.work.Cap() }
