package halo

// Builder assembles small merger trees in memory. It's mostly useful for
// tests and for converting tree formats which describe links by ID.
type Builder struct {
	Halos []Halo
}

// Add appends a halo which is the head of its own FOF group and has no links.
// Its index is returned.
func (b *Builder) Add(snap int, length int, mvir float32) int {
	i := len(b.Halos)
	b.Halos = append(b.Halos, Halo{
		Descendant:          None,
		FirstProgenitor:     None,
		NextProgenitor:      None,
		FirstHaloInFOFGroup: int32(i),
		NextHaloInFOFGroup:  None,
		Len:                 int32(length),
		Mvir:                mvir,
		SnapNum:             int32(snap),
		MostBoundID:         int64(i),
	})
	return i
}

// Progenitor appends prog to the end of desc's progenitor list.
func (b *Builder) Progenitor(desc, prog int) {
	hs := b.Halos
	hs[prog].Descendant = int32(desc)
	hs[prog].NextProgenitor = None

	if hs[desc].FirstProgenitor == None {
		hs[desc].FirstProgenitor = int32(prog)
		return
	}

	p := int(hs[desc].FirstProgenitor)
	for hs[p].NextProgenitor != None {
		p = int(hs[p].NextProgenitor)
	}
	hs[p].NextProgenitor = int32(prog)
}

// Subhalo moves sub into the FOF group headed by head, appending it to the
// end of the group.
func (b *Builder) Subhalo(head, sub int) {
	hs := b.Halos
	hs[sub].FirstHaloInFOFGroup = int32(head)
	hs[sub].NextHaloInFOFGroup = None

	f := head
	for hs[f].NextHaloInFOFGroup != None {
		f = int(hs[f].NextHaloInFOFGroup)
	}
	hs[f].NextHaloInFOFGroup = int32(sub)
}
