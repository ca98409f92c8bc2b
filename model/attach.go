package model

// attach appends the surviving galaxies of the first ngal entries of the
// working set to the tree's permanent galaxy list. Galaxies which merged
// during the step aren't appended; instead, their record from the previous
// snapshot is updated to point at the galaxy they merged into.
func (t *Tree) attach(ngal int) {
	w := t.work.gals[:ngal]
	base := len(t.Gals)

	// Merged galaxies leave holes, so merger targets need to be shifted down
	// by the number of merged galaxies that come before them. holes[i] is the
	// number of merged galaxies in w[:i].
	holes := make([]int, ngal+1)
	for i := range w {
		holes[i+1] = holes[i]
		if w[i].MergeStatus != Active {
			holes[i+1]++
		}
	}

	current := -1
	for p := range w {
		g := &w[p]
		if g.HaloNr != current {
			current = g.HaloNr
			t.Aux[current].FirstGalaxy = len(t.Gals)
			t.Aux[current].NGalaxies = 0
		}

		if g.MergeStatus == Active {
			if len(t.Gals) >= t.MaxGals {
				t.fatalf(current, "tree needs more than %d galaxies.", t.MaxGals)
			}
			g.SnapNum = int(t.Halos[current].SnapNum)
			t.Gals = append(t.Gals, *g)
			t.Aux[current].NGalaxies++
			continue
		}

		prev := t.findPrevious(current, g.GalaxyNr)
		target := t.survivor(current, w, g.MergeIntoID)

		pg := &t.Gals[prev]
		pg.MergeStatus = g.MergeStatus
		pg.MergeIntoID = base + target - holes[target]
		pg.MergeIntoSnapNum = int(t.Halos[current].SnapNum)
	}
}

// findPrevious returns the permanent index of the most recent record of the
// galaxy with the given GalaxyNr that was written before halo h's galaxies.
func (t *Tree) findPrevious(h int, galaxyNr int64) int {
	for i := t.Aux[h].FirstGalaxy - 1; i >= 0; i-- {
		if t.Gals[i].GalaxyNr == galaxyNr {
			return i
		}
	}
	t.fatalf(h, "no earlier record of merged galaxy %d.", galaxyNr)
	return -1
}

// survivor follows merger targets starting at w[i] until it reaches a galaxy
// that hasn't merged.
func (t *Tree) survivor(h int, w []Galaxy, i int) int {
	for n := 0; w[i].MergeStatus != Active; n++ {
		if n >= len(w) {
			t.fatalf(h, "merger targets starting at galaxy %d form a cycle.", i)
		}
		i = w[i].MergeIntoID
	}
	return i
}
