/*
Package cosmo contains the handful of cosmological quantities that the model
needs: the unit system, the expansion rate, the critical density, and cosmic
time as a function of redshift.

All quantities are in internal units unless a name says otherwise. Masses are
in UnitMass, lengths in UnitLength, and so on.
*/
package cosmo

import (
	"math"
)

const (
	// Gravity is Newton's constant in cgs.
	Gravity = 6.672e-8
	// Hubble100 is H0 for h = 1 in units of h/s.
	Hubble100 = 3.2407789e-18
	// SecPerMegayear is the number of seconds in a megayear.
	SecPerMegayear = 3.155e13
	// SecPerYear is the number of seconds in a year.
	SecPerYear = 3.155e7
	// SolarMass is the mass of the sun in grams.
	SolarMass = 1.989e33

	// startZ is the redshift used as the age of the universe before the
	// first snapshot.
	startZ = 1000.0
)

// Units describes the internal unit system. The three base units are set by
// the user, everything else is derived.
type Units struct {
	LengthInCm, MassInG, VelocityInCmPerS float64

	TimeInS, TimeInMegayears float64
	EnergyInCGS              float64

	G      float64 // Newton's constant
	Hubble float64 // H0 for h = 1
}

// NewUnits derives the full unit system from the three base units.
func NewUnits(lengthInCm, massInG, velocityInCmPerS float64) Units {
	u := Units{
		LengthInCm:       lengthInCm,
		MassInG:          massInG,
		VelocityInCmPerS: velocityInCmPerS,
	}

	u.TimeInS = lengthInCm / velocityInCmPerS
	u.TimeInMegayears = u.TimeInS / SecPerMegayear
	u.G = Gravity / math.Pow(lengthInCm, 3) * massInG * u.TimeInS * u.TimeInS
	u.EnergyInCGS = massInG * lengthInCm * lengthInCm / (u.TimeInS * u.TimeInS)
	u.Hubble = Hubble100 * u.TimeInS

	return u
}

// Cosmology is a FRW background with matter, curvature, and a cosmological
// constant.
type Cosmology struct {
	OmegaM, OmegaL, H100 float64
	Units
}

// HubbleSq returns H(z)^2 in internal units. The internal Hubble constant is
// per unit h, as in the input trees.
func (c *Cosmology) HubbleSq(z float64) float64 {
	zp1 := 1 + z
	return c.Hubble * c.Hubble * (c.OmegaM*zp1*zp1*zp1 +
		(1-c.OmegaM-c.OmegaL)*zp1*zp1 + c.OmegaL)
}

// RhoCritical returns the critical density at redshift z.
func (c *Cosmology) RhoCritical(z float64) float64 {
	return 3 * c.HubbleSq(z) / (8 * math.Pi * c.G)
}

// TimeToPresent returns the cosmic time elapsed between redshift z and z = 0.
func (c *Cosmology) TimeToPresent(z float64) float64 {
	f := func(a float64) float64 {
		return 1 / math.Sqrt(c.OmegaM/a+(1-c.OmegaM-c.OmegaL)+c.OmegaL*a*a)
	}
	return Integrate(f, 1/(z+1), 1, 1e-8) / c.Hubble
}

// Integrate computes the integral of f over [lo, hi] with adaptive Simpson
// quadrature to the given relative tolerance.
func Integrate(f func(float64) float64, lo, hi, tol float64) float64 {
	if lo == hi {
		return 0
	}
	flo, fhi, fmid := f(lo), f(hi), f((lo+hi)/2)
	whole := (hi - lo) / 6 * (flo + 4*fmid + fhi)
	eps := tol * math.Abs(whole)
	if eps == 0 {
		eps = tol
	}
	return simpson(f, lo, hi, flo, fmid, fhi, whole, eps, 50)
}

func simpson(
	f func(float64) float64, lo, hi, flo, fmid, fhi, whole, eps float64,
	depth int,
) float64 {
	mid := (lo + hi) / 2
	lmid, rmid := (lo+mid)/2, (mid+hi)/2
	flmid, frmid := f(lmid), f(rmid)

	left := (mid - lo) / 6 * (flo + 4*flmid + fmid)
	right := (hi - mid) / 6 * (fmid + 4*frmid + fhi)
	delta := left + right - whole

	if depth <= 0 || math.Abs(delta) <= 15*eps {
		return left + right + delta/15
	}

	return simpson(f, lo, mid, flo, flmid, fmid, left, eps/2, depth-1) +
		simpson(f, mid, hi, fmid, frmid, fhi, right, eps/2, depth-1)
}
