package physics

import (
	"github.com/phil-mansfield/gosage/model"
)

const (
	// reincorporationVel is the escape velocity of supernova winds, in km/s.
	reincorporationVel = 445.48
	// minHotGas is the smallest hot gas reservoir that can cool.
	minHotGas = 1e-6
	// minorMergerRatio is the smallest mass ratio recorded as a merger.
	minorMergerRatio = 0.1
)

// Baryons is a compact set of baryonic recipes: infall onto the central,
// reincorporation of ejected gas, cooling, quiescent star formation with
// instantaneous recycling, stripping of satellites, and mergers.
type Baryons struct {
	Params
}

// Infall collects the ejected gas and intracluster stars of the whole group
// into the central and returns the mass needed to bring the group up to the
// cosmic baryon fraction.
func (b *Baryons) Infall(g *model.Group) float64 {
	c := &g.Gals[g.Central]

	var total, ejected, ejectedMetals, ics, icsMetals float64
	for p := range g.Gals {
		gal := &g.Gals[p]
		total += gal.StellarMass + gal.ColdGas + gal.HotGas +
			gal.EjectedMass + gal.BlackHoleMass + gal.ICS
		ejected += gal.EjectedMass
		ejectedMetals += gal.MetalsEjectedMass
		ics += gal.ICS
		icsMetals += gal.MetalsICS

		if p != g.Central {
			gal.EjectedMass, gal.MetalsEjectedMass = 0, 0
			gal.ICS, gal.MetalsICS = 0, 0
		}
	}

	c.EjectedMass, c.MetalsEjectedMass = clampMetals(ejected, ejectedMetals)
	c.ICS, c.MetalsICS = clampMetals(ics, icsMetals)

	return b.BaryonFrac*c.Mvir - total
}

// clampMetals keeps a reservoir and its metals physical.
func clampMetals(mass, metals float64) (float64, float64) {
	if mass < 0 {
		return 0, 0
	}
	if metals > mass {
		metals = mass
	}
	if metals < 0 {
		metals = 0
	}
	return mass, metals
}

func (b *Baryons) Step(g *model.Group, p int, s model.Substep) {
	gal := &g.Gals[p]

	if p == g.Central {
		addInfall(gal, s.Infall)
		b.reincorporate(gal, s.DT)
	} else if gal.Type == model.Satellite {
		b.strip(g, p, s)
	}

	cool(gal, s.DT)
	b.formStars(gal, s)
}

// addInfall adds infalling gas to the hot reservoir. Negative infall is
// taken from the ejected reservoir first.
func addInfall(gal *model.Galaxy, infall float64) {
	if infall < 0 && gal.EjectedMass > 0 {
		z := metallicity(gal.EjectedMass, gal.MetalsEjectedMass)
		gal.MetalsEjectedMass += infall * z
		if gal.MetalsEjectedMass < 0 {
			gal.MetalsEjectedMass = 0
		}
		gal.EjectedMass += infall
		if gal.EjectedMass < 0 {
			infall = gal.EjectedMass
			gal.EjectedMass, gal.MetalsEjectedMass = 0, 0
		} else {
			infall = 0
		}
	}

	if infall < 0 && gal.MetalsHotGas > 0 {
		z := metallicity(gal.HotGas, gal.MetalsHotGas)
		gal.MetalsHotGas += infall * z
		if gal.MetalsHotGas < 0 {
			gal.MetalsHotGas = 0
		}
	}

	gal.HotGas += infall
	if gal.HotGas < 0 {
		gal.HotGas, gal.MetalsHotGas = 0, 0
	}
}

// reincorporate returns ejected gas to the hot halo of centrals which are
// deep enough to hold onto supernova winds.
func (b *Baryons) reincorporate(gal *model.Galaxy, dt float64) {
	vCrit := reincorporationVel * b.ReIncorporationFactor
	if gal.Vvir <= vCrit || gal.Rvir <= 0 {
		return
	}

	mass := (gal.Vvir/vCrit - 1) * gal.EjectedMass /
		(gal.Rvir / gal.Vvir) * dt
	if mass > gal.EjectedMass {
		mass = gal.EjectedMass
	}

	z := metallicity(gal.EjectedMass, gal.MetalsEjectedMass)
	gal.EjectedMass -= mass
	gal.MetalsEjectedMass -= z * mass
	gal.HotGas += mass
	gal.MetalsHotGas += z * mass
}

// strip moves the hot gas a satellite can no longer hold onto to the central.
func (b *Baryons) strip(g *model.Group, p int, s model.Substep) {
	gal, c := &g.Gals[p], &g.Gals[g.Central]

	baryons := gal.StellarMass + gal.ColdGas + gal.HotGas +
		gal.EjectedMass + gal.BlackHoleMass + gal.ICS
	stripped := -(b.BaryonFrac*gal.Mvir - baryons) / float64(s.Steps)
	if stripped <= 0 {
		return
	}

	z := metallicity(gal.HotGas, gal.MetalsHotGas)
	if stripped > gal.HotGas {
		stripped = gal.HotGas
	}
	metals := stripped * z
	if metals > gal.MetalsHotGas {
		metals = gal.MetalsHotGas
	}

	gal.HotGas -= stripped
	gal.MetalsHotGas -= metals
	c.HotGas += stripped
	c.MetalsHotGas += metals
}

// cool moves hot gas onto the disk on the dynamical time of the halo.
func cool(gal *model.Galaxy, dt float64) {
	if gal.HotGas <= minHotGas || gal.Vvir <= 0 || gal.Rvir <= 0 {
		return
	}

	cooled := gal.HotGas / (gal.Rvir / gal.Vvir) * dt
	if cooled > gal.HotGas {
		cooled = gal.HotGas
	} else if cooled < 0 {
		cooled = 0
	}
	gal.Cooling += 0.5 * cooled * gal.Vvir * gal.Vvir

	z := metallicity(gal.HotGas, gal.MetalsHotGas)
	gal.HotGas -= cooled
	gal.MetalsHotGas -= z * cooled
	gal.ColdGas += cooled
	gal.MetalsColdGas += z * cooled
}

// formStars forms stars from cold gas above the Kauffmann (1996) threshold.
func (b *Baryons) formStars(gal *model.Galaxy, s model.Substep) {
	if s.DT <= 0 || gal.Vvir <= 0 {
		return
	}

	reff := 3 * gal.DiskScaleRadius
	tdyn := reff / gal.Vvir
	crit := 0.19 * gal.Vvir * reff
	if gal.ColdGas <= crit || tdyn <= 0 {
		return
	}

	stars := b.SfrEfficiency * (gal.ColdGas - crit) / tdyn * s.DT
	if stars > gal.ColdGas {
		stars = gal.ColdGas
	}
	gal.SfrDisk += stars / s.DT / float64(s.Steps)

	z := metallicity(gal.ColdGas, gal.MetalsColdGas)
	kept := (1 - b.RecycleFraction) * stars
	gal.ColdGas -= kept
	gal.MetalsColdGas -= z * kept
	gal.StellarMass += kept
	gal.MetalsStellarMass += z * kept

	gal.MetalsColdGas += b.Yield * stars
	if gal.MetalsColdGas > gal.ColdGas {
		gal.MetalsColdGas = gal.ColdGas
	}
}

// Merge adds galaxy p to target. Mergers with a baryonic mass ratio above
// ThreshMajorMerger turn the remnant's stars into a bulge.
func (b *Baryons) Merge(
	g *model.Group, p, target int, s model.Substep,
) model.MergeStatus {
	gal, t := &g.Gals[p], &g.Gals[target]

	mi, ma := gal.Baryons(), t.Baryons()
	if mi > ma {
		mi, ma = ma, mi
	}
	ratio := 1.0
	if ma > 0 {
		ratio = mi / ma
	}

	t.ColdGas += gal.ColdGas
	t.MetalsColdGas += gal.MetalsColdGas
	t.StellarMass += gal.StellarMass
	t.MetalsStellarMass += gal.MetalsStellarMass
	t.HotGas += gal.HotGas
	t.MetalsHotGas += gal.MetalsHotGas
	t.EjectedMass += gal.EjectedMass
	t.MetalsEjectedMass += gal.MetalsEjectedMass
	t.ICS += gal.ICS
	t.MetalsICS += gal.MetalsICS
	t.BlackHoleMass += gal.BlackHoleMass
	t.BulgeMass += gal.StellarMass
	t.MetalsBulgeMass += gal.MetalsStellarMass
	t.SfrBulge += gal.SfrDisk + gal.SfrBulge

	if ratio > minorMergerRatio {
		t.TimeOfLastMinorMerger = s.Time
	}
	if ratio > b.ThreshMajorMerger {
		t.BulgeMass = t.StellarMass
		t.MetalsBulgeMass = t.MetalsStellarMass
		t.SfrBulge += t.SfrDisk
		t.SfrDisk = 0
		t.TimeOfLastMajorMerger = s.Time
		return model.MajorMerger
	}
	return model.MinorMerger
}

// Disrupt moves the stars of galaxy p into the intracluster stars of target
// and its gas into target's hot halo.
func (b *Baryons) Disrupt(g *model.Group, p, target int) {
	gal, t := &g.Gals[p], &g.Gals[target]

	t.HotGas += gal.ColdGas + gal.HotGas
	t.MetalsHotGas += gal.MetalsColdGas + gal.MetalsHotGas
	t.EjectedMass += gal.EjectedMass
	t.MetalsEjectedMass += gal.MetalsEjectedMass
	t.ICS += gal.ICS + gal.StellarMass
	t.MetalsICS += gal.MetalsICS + gal.MetalsStellarMass
}

// Finish turns the energies accumulated over the snapshot step into rates and
// counts the baryons in the central's satellites.
func (b *Baryons) Finish(g *model.Group, deltaT float64) {
	c := &g.Gals[g.Central]
	c.TotalSatelliteBaryons = 0

	for p := range g.Gals {
		gal := &g.Gals[p]
		if deltaT > 0 {
			gal.Cooling /= deltaT
			gal.Heating /= deltaT
			gal.OutflowRate /= deltaT
		}
		if p != g.Central && gal.MergeStatus == model.Active {
			c.TotalSatelliteBaryons += gal.StellarMass + gal.BlackHoleMass +
				gal.ColdGas + gal.HotGas
		}
	}
}
