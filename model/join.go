package model

// JoinProgenitors writes the galaxies of halo h into the working set,
// starting at index start, and returns the index one past the last one
// written. Galaxies are carried over from every progenitor of h: those of the
// most massive occupied progenitor keep their subhalo, all others become
// orphans. If no galaxies are carried over and h is the head of its FOF
// group, a new galaxy is created for it.
func (t *Tree) JoinProgenitors(h, start int) int {
	main := t.mostMassiveProgenitor(h)

	ngal := start
	hs := t.Halos
	for p := int(hs[h].FirstProgenitor); p >= 0; p = int(hs[p].NextProgenitor) {
		ngal = t.copyProgenitor(h, p, p == main, ngal)
	}

	if ngal == start && t.isHead(h) {
		t.reserve(h, ngal)
		t.initGalaxy(ngal, h)
		ngal++
	}

	t.setCentrals(h, start, ngal)
	return ngal
}

// copyProgenitor copies the galaxies of progenitor prog into the working set
// at index ngal onwards and updates them for their new halo, h.
func (t *Tree) copyProgenitor(h, prog int, isMain bool, ngal int) int {
	aux := &t.Aux[prog]
	for i := 0; i < aux.NGalaxies; i++ {
		t.reserve(h, ngal)
		w := t.work.gals

		w[ngal] = t.Gals[aux.FirstGalaxy+i]
		g := &w[ngal]
		g.HaloNr = h
		g.DT = -1

		if !g.Type.HasSubhalo() {
			ngal++
			continue
		}

		// Merged in an earlier step. The slot gets overwritten.
		if g.MergeStatus != Active {
			g.Type = Removed
			continue
		}

		prevMvir, prevVvir, prevVmax := g.Mvir, g.Vvir, g.Vmax
		if isMain {
			t.updateMainBranch(g, h, prevMvir, prevVvir, prevVmax)
		} else {
			g.DeltaMvir = -g.Mvir
			g.Mvir = 0
			if !g.MergerClockSet() || g.Type == Central {
				g.MergTime = 0
				g.captureInfall(prevMvir, prevVvir, prevVmax)
			}
			g.Type = Orphan
			t.Stats.Orphans++
		}

		ngal++
	}
	return ngal
}

// updateMainBranch moves a galaxy onto the descendant of its halo.
func (t *Tree) updateMainBranch(
	g *Galaxy, h int, prevMvir, prevVvir, prevVmax float64,
) {
	hh := &t.Halos[h]

	g.MostBoundID = hh.MostBoundID
	for k := 0; k < 3; k++ {
		g.Pos[k] = float64(hh.Pos[k])
		g.Vel[k] = float64(hh.Vel[k])
	}
	g.Len = int(hh.Len)
	g.Vmax = float64(hh.Vmax)

	mvir := t.VirialMass(h)
	g.DeltaMvir = mvir - g.Mvir
	// Rvir and Vvir keep the largest values the galaxy has ever had.
	if mvir > g.Mvir {
		g.Rvir = t.VirialRadius(h)
		g.Vvir = t.VirialVelocity(h)
	}
	g.Mvir = mvir

	g.resetRates()
	g.MergeStatus = Active
	g.MergeIntoID = -1

	if t.isHead(h) {
		g.MergTime = MergTimeUnset
		g.DiskScaleRadius = t.DiskRadius(h, g)
		g.Type = Central
		return
	}

	if g.Type == Central {
		g.captureInfall(prevMvir, prevVvir, prevVmax)
	}
	// The merger clock starts once per infall, in evolve.
	if g.Type == Central || !g.MergerClockSet() {
		g.MergTime = MergTimeUnset
	}
	g.Type = Satellite
}

// setCentrals points every galaxy in w[start:end] at the one galaxy in that
// range which owns halo h.
func (t *Tree) setCentrals(h, start, end int) {
	w := t.work.gals

	central := -1
	for i := start; i < end; i++ {
		if !w[i].Type.HasSubhalo() {
			continue
		}
		if central != -1 {
			t.fatalf(h, "galaxies %d and %d (GalaxyNr %d and %d) both own "+
				"the halo.", central, i, w[central].GalaxyNr, w[i].GalaxyNr)
		}
		central = i
	}

	if central == -1 && end > start {
		t.fatalf(h, "none of the %d galaxies in the halo own it.", end-start)
	}

	for i := start; i < end; i++ {
		w[i].CentralGal = central
	}
}

// reserve grows the working set so that index i can be written to.
func (t *Tree) reserve(h, i int) {
	if err := t.work.Reserve(i); err != nil {
		t.fatalf(h, "%s", err.Error())
	}
}

// initGalaxy creates a new central galaxy for FOF group head h at index p of
// the working set.
func (t *Tree) initGalaxy(p, h int) {
	if !t.isHead(h) {
		t.fatalf(h, "new galaxies can only be created in FOF group heads.")
	}
	hh := &t.Halos[h]

	g := Galaxy{
		Type:        Central,
		GalaxyNr:    t.counter,
		CentralGal:  -1,
		HaloNr:      h,
		MostBoundID: hh.MostBoundID,
		SnapNum:     int(hh.SnapNum) - 1,

		MergeStatus:      Active,
		MergeIntoID:      -1,
		MergeIntoSnapNum: -1,
		DT:               -1,

		Len:  int(hh.Len),
		Vmax: float64(hh.Vmax),
		Mvir: t.VirialMass(h),
		Rvir: t.VirialRadius(h),
		Vvir: t.VirialVelocity(h),

		MergTime:              MergTimeUnset,
		TimeOfLastMajorMerger: -1,
		TimeOfLastMinorMerger: -1,

		InfallMvir: NeverInfell,
		InfallVvir: NeverInfell,
		InfallVmax: NeverInfell,
	}
	for k := 0; k < 3; k++ {
		g.Pos[k] = float64(hh.Pos[k])
		g.Vel[k] = float64(hh.Vel[k])
	}
	g.DiskScaleRadius = t.DiskRadius(h, &g)

	t.work.gals[p] = g
	t.counter++
	t.Stats.NewGalaxies++
}
