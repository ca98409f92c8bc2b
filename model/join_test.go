package model

import (
	"testing"

	"github.com/phil-mansfield/gosage/halo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGalaxy(t *testing.T) {
	b := &halo.Builder{}
	a := b.Add(1, 100, 10)
	c := b.Add(1, 200, 20)
	sub := b.Add(1, 50, 5)
	b.Subhalo(c, sub)
	b.Halos[a].Spin = [3]float32{1, 2, 2}

	tree := NewTree(testEnv(&nopPhysics{}), 0, 0, b.Halos)

	assert.Equal(t, 1, tree.JoinProgenitors(a, 0))
	g := tree.work.gals[0]
	assert.Equal(t, Central, g.Type)
	assert.Equal(t, int64(0), g.GalaxyNr)
	assert.Equal(t, 0, g.SnapNum)
	assert.Equal(t, a, g.HaloNr)
	assert.Equal(t, 0, g.CentralGal)
	assert.Equal(t, Active, g.MergeStatus)
	assert.Equal(t, -1, g.MergeIntoID)
	assert.Equal(t, 10.0, g.Mvir)
	assert.Equal(t, tree.VirialRadius(a), g.Rvir)
	assert.Equal(t, tree.VirialVelocity(a), g.Vvir)
	assert.Equal(t, 0.0, g.DeltaMvir)
	assert.Equal(t, MergTimeUnset, g.MergTime)
	assert.False(t, g.MergerClockSet())
	assert.Equal(t, NeverInfell, g.InfallMvir)
	assert.Equal(t, NeverInfell, g.InfallVvir)
	assert.Equal(t, NeverInfell, g.InfallVmax)
	for _, x := range []float64{
		g.ColdGas, g.StellarMass, g.BulgeMass, g.HotGas, g.EjectedMass,
		g.BlackHoleMass, g.ICS, g.MetalsColdGas, g.MetalsStellarMass,
		g.MetalsBulgeMass, g.MetalsHotGas, g.MetalsEjectedMass, g.MetalsICS,
	} {
		assert.Equal(t, 0.0, x)
	}
	// |Spin| = 3
	assert.InDelta(t, 3/(1.414*g.Vvir*g.Rvir)/1.414*g.Rvir,
		g.DiskScaleRadius, 1e-12)

	assert.Equal(t, 2, tree.JoinProgenitors(c, 1))
	assert.Equal(t, int64(1), tree.work.gals[1].GalaxyNr)
	assert.Equal(t, 1, tree.work.gals[1].CentralGal)

	// Subhalos without occupied progenitors get nothing.
	assert.Equal(t, 2, tree.JoinProgenitors(sub, 2))
	assert.Equal(t, 2, tree.Stats.NewGalaxies)

	err := recoverFatal(func() { tree.initGalaxy(2, sub) })
	require.NotNil(t, err)
	assert.Equal(t, sub, err.Halo)
}

func TestJoinTwoSnapshots(t *testing.T) {
	b := &halo.Builder{}
	a := b.Add(0, 100, 10)
	bb := b.Add(1, 150, 15)
	b.Progenitor(bb, a)
	b.Halos[bb].Pos = [3]float32{1, 2, 3}
	b.Halos[bb].Vmax = 200

	tree := NewTree(testEnv(&nopPhysics{}), 0, 0, b.Halos)
	tree.Build()

	require.Len(t, tree.Gals, 2)
	g0, g1 := tree.Gals[0], tree.Gals[1]

	assert.Equal(t, Central, g0.Type)
	assert.Equal(t, 0, g0.SnapNum)
	assert.Equal(t, 10.0, g0.Mvir)

	assert.Equal(t, Central, g1.Type)
	assert.Equal(t, 1, g1.SnapNum)
	assert.Equal(t, g0.GalaxyNr, g1.GalaxyNr)
	assert.Equal(t, 15.0, g1.Mvir)
	assert.Equal(t, 15.0-10.0, g1.DeltaMvir)
	assert.Equal(t, [3]float64{1, 2, 3}, g1.Pos)
	assert.Equal(t, 200.0, g1.Vmax)
	assert.Equal(t, tree.VirialRadius(bb), g1.Rvir)
	assert.Greater(t, g1.DT, 0.0)

	assert.Equal(t, HaloAux{true, GroupJoined, 1, 0}, tree.Aux[a])
	assert.Equal(t, HaloAux{true, GroupJoined, 1, 1}, tree.Aux[bb])
}

func TestJoinMonotonicRvir(t *testing.T) {
	table := []struct {
		m0, m1 float32
		grows  bool
	}{
		{20, 10, false},
		{10, 20, true},
		{10, 10, false},
	}

	for i, test := range table {
		b := &halo.Builder{}
		a := b.Add(0, 100, test.m0)
		d := b.Add(1, 100, test.m1)
		b.Progenitor(d, a)

		tree := NewTree(testEnv(&nopPhysics{}), 0, 0, b.Halos)
		tree.Build()
		require.Len(t, tree.Gals, 2)
		g0, g1 := tree.Gals[0], tree.Gals[1]

		assert.Equal(t, float64(test.m1), g1.Mvir, "%d) Mvir", i+1)
		assert.Equal(t, float64(test.m1)-float64(test.m0), g1.DeltaMvir,
			"%d) DeltaMvir", i+1)
		if test.grows {
			assert.Equal(t, tree.VirialRadius(d), g1.Rvir, "%d) Rvir", i+1)
			assert.Equal(t, tree.VirialVelocity(d), g1.Vvir, "%d) Vvir", i+1)
		} else {
			assert.Equal(t, g0.Rvir, g1.Rvir, "%d) Rvir", i+1)
			assert.Equal(t, g0.Vvir, g1.Vvir, "%d) Vvir", i+1)
		}
		assert.GreaterOrEqual(t, g1.Rvir, g0.Rvir, "%d) Rvir", i+1)
	}
}

func TestJoinOrphans(t *testing.T) {
	b := &halo.Builder{}
	d := b.Add(1, 500, 50)
	small := b.Add(0, 50, 5)
	big := b.Add(0, 300, 30)
	b.Progenitor(d, small)
	b.Progenitor(d, big)

	tree := NewTree(testEnv(&nopPhysics{}), 0, 0, b.Halos)
	tree.BuildHalo(small)
	tree.BuildHalo(big)
	prevSmall, prevBig := tree.Gals[0], tree.Gals[1]

	ngal := tree.JoinProgenitors(d, 0)
	require.Equal(t, 2, ngal)
	orphan, central := tree.work.gals[0], tree.work.gals[1]

	assert.Equal(t, Orphan, orphan.Type)
	assert.Equal(t, 0.0, orphan.Mvir)
	assert.Equal(t, -prevSmall.Mvir, orphan.DeltaMvir)
	assert.Equal(t, 0.0, orphan.MergTime)
	assert.Equal(t, prevSmall.Mvir, orphan.InfallMvir)
	assert.Equal(t, prevSmall.Vvir, orphan.InfallVvir)
	assert.Equal(t, prevSmall.Vmax, orphan.InfallVmax)
	assert.Equal(t, d, orphan.HaloNr)
	assert.Equal(t, -1.0, orphan.DT)

	assert.Equal(t, Central, central.Type)
	assert.Equal(t, 50.0-prevBig.Mvir, central.DeltaMvir)
	assert.Equal(t, NeverInfell, central.InfallMvir)

	assert.Equal(t, 1, orphan.CentralGal)
	assert.Equal(t, 1, central.CentralGal)
	assert.Equal(t, 1, tree.Stats.Orphans)
}

func TestJoinSatellite(t *testing.T) {
	b := &halo.Builder{}
	head := b.Add(1, 500, 50)
	sub := b.Add(1, 100, 10)
	b.Subhalo(head, sub)
	prog := b.Add(0, 120, 12)
	b.Progenitor(sub, prog)

	tree := NewTree(testEnv(&nopPhysics{}), 0, 0, b.Halos)
	tree.BuildHalo(prog)
	prev := tree.Gals[0]

	ngal := tree.JoinProgenitors(sub, 0)
	require.Equal(t, 1, ngal)
	g := tree.work.gals[0]

	assert.Equal(t, Satellite, g.Type)
	assert.Equal(t, tree.VirialMass(sub), g.Mvir)
	assert.Equal(t, tree.VirialMass(sub)-prev.Mvir, g.DeltaMvir)
	assert.Equal(t, prev.Mvir, g.InfallMvir)
	assert.Equal(t, MergTimeUnset, g.MergTime)

	// A satellite whose clock is already running keeps it.
	tree.Gals[0].Type = Satellite
	tree.Gals[0].MergTime = 2.5
	tree.Gals[0].InfallMvir = 99
	tree.JoinProgenitors(sub, 0)
	g = tree.work.gals[0]
	assert.Equal(t, 2.5, g.MergTime)
	assert.Equal(t, 99.0, g.InfallMvir)

	// Merged galaxies are dropped.
	tree.Gals[0].MergeStatus = MajorMerger
	assert.Equal(t, 0, tree.JoinProgenitors(sub, 0))
	assert.Equal(t, Removed, tree.work.gals[0].Type)
}

func TestSetCentralsFatal(t *testing.T) {
	b := &halo.Builder{}
	h := b.Add(0, 100, 10)
	tree := NewTree(testEnv(&nopPhysics{}), 3, 4, b.Halos)

	tree.work.gals[0].Type = Central
	tree.work.gals[1].Type = Satellite
	err := recoverFatal(func() { tree.setCentrals(h, 0, 2) })
	require.NotNil(t, err)
	assert.Equal(t, h, err.Halo)
	assert.Equal(t, 3, err.File)
	assert.Equal(t, 4, err.Tree)

	tree.work.gals[0].Type = Orphan
	tree.work.gals[1].Type = Orphan
	assert.NotNil(t, recoverFatal(func() { tree.setCentrals(h, 0, 2) }))

	tree.work.gals[1].Type = Central
	assert.Nil(t, recoverFatal(func() { tree.setCentrals(h, 0, 2) }))
	assert.Equal(t, 1, tree.work.gals[0].CentralGal)
}
