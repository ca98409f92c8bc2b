package model

import (
	"math"
)

// VirialMass returns the mass used for halo h: the tree's Mvir for FOF group
// heads and the bound particle mass for everything else.
func (t *Tree) VirialMass(h int) float64 {
	hh := &t.Halos[h]
	if t.isHead(h) && hh.Mvir >= 0 {
		return float64(hh.Mvir)
	}
	return float64(hh.Len) * t.env.Params.PartMass
}

// VirialRadius returns the radius enclosing 200 times the critical density at
// the snapshot of halo h.
func (t *Tree) VirialRadius(h int) float64 {
	z := t.env.Snaps.RedshiftAt(int(t.Halos[h].SnapNum))
	rhoCrit := t.env.Cosmo.RhoCritical(z)
	fac := 1 / (200 * 4 * math.Pi / 3 * rhoCrit)
	return math.Cbrt(t.VirialMass(h) * fac)
}

// VirialVelocity returns the circular velocity at the virial radius of h.
func (t *Tree) VirialVelocity(h int) float64 {
	r := t.VirialRadius(h)
	if r <= 0 {
		return 0
	}
	return math.Sqrt(t.env.Cosmo.G * t.VirialMass(h) / r)
}

// DiskRadius returns the scale radius of the disk of galaxy g given the spin
// of halo h (Mo, Mao & White 1998 with Bullock et al. 2001 spin).
func (t *Tree) DiskRadius(h int, g *Galaxy) float64 {
	if g.Vvir <= 0 || g.Rvir <= 0 {
		return 0.1 * g.Rvir
	}
	s := &t.Halos[h].Spin
	spin := math.Sqrt(float64(s[0]*s[0] + s[1]*s[1] + s[2]*s[2]))
	lambda := spin / (1.414 * g.Vvir * g.Rvir)
	return lambda / 1.414 * g.Rvir
}

// MergingTime estimates the dynamical friction timescale of a satellite in
// halo sat orbiting in halo mother (Binney & Tremaine 1987). The galaxy at
// index p of the working set is the satellite.
func (t *Tree) MergingTime(sat, mother, p int) float64 {
	if sat == mother {
		t.fatalf(sat, "a halo can't be its own merger host.")
	}
	g := &t.work.gals[p]
	hs := t.Halos

	satLen := float64(hs[sat].Len)
	if satLen <= 0 {
		return -1
	}
	coulomb := math.Log(float64(hs[mother].Len)/satLen + 1)

	satMass := t.VirialMass(sat) + g.StellarMass + g.ColdGas
	satRadius := t.VirialRadius(mother)
	if satMass <= 0 || coulomb <= 0 {
		return -1
	}

	return 2 * 1.17 * satRadius * satRadius * t.VirialVelocity(mother) /
		(coulomb * t.env.Cosmo.G * satMass)
}
