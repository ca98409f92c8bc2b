package model

import (
	"fmt"
)

// Type is a galaxy's role within its host halo.
type Type int

const (
	// Central galaxies sit at the center of a FOF group's main subhalo.
	Central Type = iota
	// Satellite galaxies still have an identifiable subhalo.
	Satellite
	// Orphan galaxies have lost their subhalo and are waiting to merge.
	Orphan
	// Removed galaxies already merged in an earlier step. They occupy a
	// working slot only until it is overwritten and are never written out.
	Removed
)

// HasSubhalo returns true for the two types which own their halo.
func (t Type) HasSubhalo() bool { return t == Central || t == Satellite }

func (t Type) String() string {
	switch t {
	case Central:
		return "Central"
	case Satellite:
		return "Satellite"
	case Orphan:
		return "Orphan"
	case Removed:
		return "Removed"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// MergeStatus records whether and how a galaxy stopped existing.
type MergeStatus int

const (
	Active MergeStatus = iota
	MinorMerger
	MajorMerger
	DiskInstability
	Disrupted

	mergeStatusNum
)

func (m MergeStatus) String() string {
	switch m {
	case Active:
		return "Active"
	case MinorMerger:
		return "MinorMerger"
	case MajorMerger:
		return "MajorMerger"
	case DiskInstability:
		return "DiskInstability"
	case Disrupted:
		return "Disrupted"
	}
	return fmt.Sprintf("MergeStatus(%d)", int(m))
}

const (
	// MergTimeUnset is the MergTime of a galaxy without a running merger
	// clock.
	MergTimeUnset = 999.9
	// mergTimeCut is the threshold used to recognize MergTimeUnset.
	mergTimeCut = 999.0
	// NeverInfell is the value of the infall fields of galaxies that have
	// always been centrals.
	NeverInfell = -1.0
)

// Galaxy is a galaxy together with the (sub)halo properties it has
// inherited. The same type is used for the working set and for the tree's
// permanent galaxy list.
type Galaxy struct {
	SnapNum int
	Type    Type

	GalaxyNr    int64 // Unique within a tree. Carried across snapshots.
	CentralGal  int   // Index of the halo's Type 0/1 galaxy.
	HaloNr      int
	MostBoundID int64

	MergeStatus      MergeStatus
	MergeIntoID      int
	MergeIntoSnapNum int
	DT               float64

	// (Sub)halo properties.
	Pos, Vel  [3]float64
	Len       int
	Mvir      float64
	DeltaMvir float64
	Rvir      float64
	Vvir      float64
	Vmax      float64

	// Baryonic reservoirs.
	ColdGas, StellarMass, BulgeMass float64
	HotGas, EjectedMass             float64
	BlackHoleMass, ICS              float64

	// Metals.
	MetalsColdGas, MetalsStellarMass, MetalsBulgeMass float64
	MetalsHotGas, MetalsEjectedMass, MetalsICS        float64

	// Star formation rates accumulated during the current snapshot step.
	SfrDisk, SfrBulge float64

	DiskScaleRadius float64
	MergTime        float64

	Cooling, Heating          float64
	QuasarModeBHAccretionMass float64
	OutflowRate               float64
	TotalSatelliteBaryons     float64

	TimeOfLastMajorMerger float64
	TimeOfLastMinorMerger float64

	// Infall properties, captured when a central becomes a satellite.
	InfallMvir, InfallVvir, InfallVmax float64
}

// MergerClockSet returns true if the galaxy's merger clock is running.
func (g *Galaxy) MergerClockSet() bool { return g.MergTime <= mergTimeCut }

// Baryons returns the galaxy's stellar plus cold gas mass.
func (g *Galaxy) Baryons() float64 { return g.StellarMass + g.ColdGas }

// resetRates zeroes the quantities which are accumulated over one snapshot
// step and converted to rates at the end of it.
func (g *Galaxy) resetRates() {
	g.Cooling, g.Heating = 0, 0
	g.QuasarModeBHAccretionMass = 0
	g.OutflowRate = 0
	g.SfrDisk, g.SfrBulge = 0, 0
}

// captureInfall records the halo properties a galaxy had at infall.
func (g *Galaxy) captureInfall(mvir, vvir, vmax float64) {
	g.InfallMvir, g.InfallVvir, g.InfallVmax = mvir, vvir, vmax
}
