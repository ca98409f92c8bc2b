package model

import (
	"github.com/phil-mansfield/gosage/halo"
)

// BuildHalo constructs the galaxies of halo h, first building everything h
// depends on: its own progenitors and the progenitors of every other halo in
// its FOF group. The FOF group of h is joined and evolved exactly once, no
// matter how many of its members BuildHalo is called on.
func (t *Tree) BuildHalo(h int) {
	hs := t.Halos
	t.Aux[h].Done = true

	for p := int(hs[h].FirstProgenitor); p >= 0; p = int(hs[p].NextProgenitor) {
		if !t.Aux[p].Done {
			t.BuildHalo(p)
		}
	}

	// The progenitors of h don't cover the progenitors of the rest of its
	// group, so those need to be built here, too.
	head := int(hs[h].FirstHaloInFOFGroup)
	if t.Aux[head].State == GroupUnvisited {
		t.Aux[head].State = GroupWalking
		for f := head; f >= 0; f = int(hs[f].NextHaloInFOFGroup) {
			for p := int(hs[f].FirstProgenitor); p >= 0; p = int(hs[p].NextProgenitor) {
				if !t.Aux[p].Done {
					t.BuildHalo(p)
				}
			}
		}
	}

	// A sibling's recursion may have already joined the group.
	if t.Aux[head].State != GroupWalking {
		return
	}
	t.Aux[head].State = GroupJoined

	ngal := 0
	for f := head; f >= 0; f = int(hs[f].NextHaloInFOFGroup) {
		ngal = t.JoinProgenitors(f, ngal)
	}
	t.Stats.Groups++

	t.evolve(head, ngal)
}

// mostMassiveProgenitor returns the progenitor of h with the largest
// particle count among those which host galaxies. Ties go to the progenitor
// which comes first in the list. If no progenitor hosts galaxies, the first
// progenitor is returned (which might be halo.None).
func (t *Tree) mostMassiveProgenitor(h int) int {
	hs := t.Halos
	first := int(hs[h].FirstProgenitor)

	main, maxLen := first, int32(-1)
	for p := first; p >= 0; p = int(hs[p].NextProgenitor) {
		if t.Aux[p].NGalaxies > 0 && hs[p].Len > maxLen {
			main, maxLen = p, hs[p].Len
		}
	}
	return main
}

// isHead is shorthand for halo.IsFOFHead on the tree's halos.
func (t *Tree) isHead(h int) bool { return halo.IsFOFHead(t.Halos, h) }
