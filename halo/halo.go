/*
Package halo contains the halo records that make up a merger tree and a few
helpers for walking the links between them.

All links are indices into the tree's halo slice. A value of -1 means that the
link doesn't exist.
*/
package halo

import (
	"fmt"
)

// None is the value of a link which doesn't point to any halo.
const None = -1

// Halo is a single node in an LHaloTree-style merger tree. The field layout
// matches the on-disk record exactly (104 bytes), so slices of Halos can be
// read and written with encoding/binary.
type Halo struct {
	// Merger tree pointers.
	Descendant          int32
	FirstProgenitor     int32
	NextProgenitor      int32
	FirstHaloInFOFGroup int32
	NextHaloInFOFGroup  int32

	// Properties of halo.
	Len                    int32
	MMean200, Mvir, MTopHat float32 // Mvir is M_crit200 for Millennium.
	Pos                    [3]float32
	Vel                    [3]float32
	VelDisp                float32
	Vmax                   float32
	Spin                   [3]float32
	MostBoundID            int64

	// Original position in the simulation's tree files.
	SnapNum      int32
	FileNr       int32
	SubhaloIndex int32
	SubHalfMass  float32
}

// RecordSize is the size in bytes of a binary Halo record.
const RecordSize = 104

// IsFOFHead returns true if the halo at index i is the first halo in its
// friends-of-friends group.
func IsFOFHead(hs []Halo, i int) bool {
	return int(hs[i].FirstHaloInFOFGroup) == i
}

// Progenitors returns the indices of every progenitor of halo i in list order.
func Progenitors(hs []Halo, i int) []int {
	out := []int{}
	for p := int(hs[i].FirstProgenitor); p >= 0; p = int(hs[p].NextProgenitor) {
		out = append(out, p)
	}
	return out
}

// FOFGroup returns the indices of every halo in the FOF group containing
// halo i, starting with the group head.
func FOFGroup(hs []Halo, i int) []int {
	out := []int{}
	for f := int(hs[i].FirstHaloInFOFGroup); f >= 0; f = int(hs[f].NextHaloInFOFGroup) {
		out = append(out, f)
	}
	return out
}

// Check makes sure that every link in the tree points inside the tree and that
// every FOF group head points to itself. It does not check for cycles.
func Check(hs []Halo) error {
	n := int32(len(hs))
	inRange := func(x int32) bool { return x == None || (x >= 0 && x < n) }

	for i := range hs {
		h := &hs[i]
		switch {
		case !inRange(h.Descendant):
			return fmt.Errorf("Halo %d has Descendant %d out of range [0, %d).",
				i, h.Descendant, n)
		case !inRange(h.FirstProgenitor):
			return fmt.Errorf("Halo %d has FirstProgenitor %d out of range [0, %d).",
				i, h.FirstProgenitor, n)
		case !inRange(h.NextProgenitor):
			return fmt.Errorf("Halo %d has NextProgenitor %d out of range [0, %d).",
				i, h.NextProgenitor, n)
		case !inRange(h.NextHaloInFOFGroup):
			return fmt.Errorf("Halo %d has NextHaloInFOFGroup %d out of range [0, %d).",
				i, h.NextHaloInFOFGroup, n)
		case h.FirstHaloInFOFGroup < 0 || h.FirstHaloInFOFGroup >= n:
			return fmt.Errorf("Halo %d has FirstHaloInFOFGroup %d out of range [0, %d).",
				i, h.FirstHaloInFOFGroup, n)
		}

		head := h.FirstHaloInFOFGroup
		if hs[head].FirstHaloInFOFGroup != head {
			return fmt.Errorf(
				"Halo %d points to FOF head %d, but that halo's head is %d.",
				i, head, hs[head].FirstHaloInFOFGroup,
			)
		}
	}

	return nil
}
