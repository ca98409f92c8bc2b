package model

// owned is the part of a galaxy that Physics isn't allowed to change.
type owned struct {
	typ         Type
	centralGal  int
	haloNr      int
	mergeStatus MergeStatus
	mergeIntoID int
}

func ownedBy(g *Galaxy) owned {
	return owned{g.Type, g.CentralGal, g.HaloNr, g.MergeStatus, g.MergeIntoID}
}

// checkOwned fatals if a Physics call changed the owned fields of any
// galaxy in the group.
func (t *Tree) checkOwned(g *Group, before []owned, call string) {
	for p := range g.Gals {
		if ownedBy(&g.Gals[p]) != before[p] {
			t.fatalf(g.Head, "physics modified the ownership of galaxy %d "+
				"during %s.", p, call)
		}
	}
}

// evolve evolves the ngal joined galaxies of the FOF group headed by head
// to the head's snapshot, then attaches the survivors to the tree.
func (t *Tree) evolve(head, ngal int) {
	if ngal == 0 {
		return
	}

	w := t.work.gals[:ngal]
	central := w[0].CentralGal
	if central < 0 || w[central].Type != Central || w[central].HaloNr != head {
		t.fatalf(head, "galaxy %d is not the central of the group.", central)
	}

	snap := int(t.Halos[head].SnapNum)
	snaps := t.env.Snaps
	haloAge := snaps.AgeAt(snap)

	g := &Group{
		Tree: t, Head: head, Central: central, Gals: w,
		Z: snaps.RedshiftAt(snap),
	}

	// Satellites get their merger clock the first step after infall.
	for p := range w {
		if w[p].Type == Satellite && !w[p].MergerClockSet() {
			mother := int(t.Halos[w[p].HaloNr].FirstHaloInFOFGroup)
			w[p].MergTime = t.MergingTime(w[p].HaloNr, mother, p)
		}
	}

	before := make([]owned, ngal)
	for p := range w {
		before[p] = ownedBy(&w[p])
	}

	phys := t.env.Physics
	steps := t.env.Params.Steps
	infall := phys.Infall(g)
	t.checkOwned(g, before, "Infall")

	for step := 0; step < steps; step++ {
		for p := range w {
			if w[p].MergeStatus != Active {
				continue
			}
			s := t.substep(&w[p], haloAge, step)
			if w[p].DT < 0 {
				w[p].DT = s.DT * float64(steps)
			}
			if p == central {
				s.Infall = infall / float64(steps)
			}
			phys.Step(g, p, s)
		}
		t.checkOwned(g, before, "Step")

		t.mergeSatellites(g, before, haloAge, step)
	}

	phys.Finish(g, snaps.AgeAt(w[central].SnapNum)-haloAge)
	t.checkOwned(g, before, "Finish")

	t.attach(ngal)
}

// substep returns the timing of one substep of galaxy g, which is being
// evolved to a halo with time-to-present haloAge.
func (t *Tree) substep(g *Galaxy, haloAge float64, step int) Substep {
	steps := t.env.Params.Steps
	galAge := t.env.Snaps.AgeAt(g.SnapNum)
	dt := (galAge - haloAge) / float64(steps)
	return Substep{
		Step: step, Steps: steps,
		DT:   dt,
		Time: galAge - (float64(step)+0.5)*dt,
	}
}

// mergeSatellites advances the merger clocks of the group's satellites and
// orphans, merging the ones whose halos can no longer hold them. before
// holds the owned fields of every galaxy and is updated for each merger.
func (t *Tree) mergeSatellites(
	g *Group, before []owned, haloAge float64, step int,
) {
	w := g.Gals
	steps := t.env.Params.Steps
	thresh := t.env.Params.ThresholdSatDisruption

	for p := range w {
		if w[p].MergeStatus != Active ||
			(w[p].Type != Satellite && w[p].Type != Orphan) {
			continue
		}
		if !w[p].MergerClockSet() {
			t.fatalf(g.Head, "satellite %d (GalaxyNr %d) has no merger clock.",
				p, w[p].GalaxyNr)
		}

		s := t.substep(&w[p], haloAge, step)
		w[p].MergTime -= s.DT

		// Subhalo mass is interpolated across the snapshot step.
		frac := 1 - float64(step+1)/float64(steps)
		currentMvir := w[p].Mvir - w[p].DeltaMvir*frac
		baryons := w[p].Baryons()
		if baryons != 0 && !(baryons > 0 && currentMvir/baryons <= thresh) {
			continue
		}

		target := g.Central
		if w[p].Type == Orphan {
			target = w[p].CentralGal
		}
		if w[target].MergeStatus != Active {
			target = w[target].CentralGal
		}
		target = t.survivor(g.Head, w, target)
		w[p].MergeIntoID = target
		before[p] = ownedBy(&w[p])

		if w[p].MergTime > 0 {
			t.env.Physics.Disrupt(g, p, target)
			t.checkOwned(g, before, "Disrupt")
			w[p].MergeStatus = Disrupted
		} else {
			kind := t.env.Physics.Merge(g, p, target, s)
			t.checkOwned(g, before, "Merge")
			if kind == Active || kind == Disrupted || kind >= mergeStatusNum {
				t.fatalf(g.Head, "physics returned merger kind %s.", kind)
			}
			w[p].MergeStatus = kind
		}
		before[p] = ownedBy(&w[p])
		t.Stats.Mergers[w[p].MergeStatus]++
	}
}
