package io

import (
	"fmt"

	"github.com/phil-mansfield/gosage/halo"
	"github.com/phil-mansfield/table"
)

// Columns of an ASCII tree file.
const (
	colTree = iota
	colDescendant
	colFirstProgenitor
	colNextProgenitor
	colFirstHaloInFOFGroup
	colNextHaloInFOFGroup
	colLen
	colMvir
	colX
	colY
	colZ
	colVx
	colVy
	colVz
	colVmax
	colSpinX
	colSpinY
	colSpinZ
	colMostBoundID
	colSnapNum

	asciiColumns
)

// ASCIITrees is a tree file stored as whitespace-separated columns, one halo
// per row. Rows of the same tree must be contiguous. The whole file is read
// into memory.
type ASCIITrees struct {
	trees [][]halo.Halo
}

// ReadASCIITrees reads an ASCII tree file.
func ReadASCIITrees(fname string) (*ASCIITrees, error) {
	colIdxs := make([]int, asciiColumns)
	for i := range colIdxs {
		colIdxs[i] = i
	}

	cols, err := table.ReadTable(fname, colIdxs, nil)
	if err != nil {
		return nil, err
	}

	at := &ASCIITrees{}
	treeIDs := cols[colTree]
	for i := range treeIDs {
		if i == 0 || treeIDs[i] != treeIDs[i-1] {
			at.trees = append(at.trees, nil)
		}
		t := len(at.trees) - 1
		at.trees[t] = append(at.trees[t], asciiHalo(cols, i))
	}

	for t := range at.trees {
		if err := halo.Check(at.trees[t]); err != nil {
			return nil, fmt.Errorf("%s, tree %d: %w", fname, t, err)
		}
	}

	return at, nil
}

func asciiHalo(cols [][]float64, i int) halo.Halo {
	link := func(col int) int32 { return int32(cols[col][i]) }
	f32 := func(col int) float32 { return float32(cols[col][i]) }

	return halo.Halo{
		Descendant:          link(colDescendant),
		FirstProgenitor:     link(colFirstProgenitor),
		NextProgenitor:      link(colNextProgenitor),
		FirstHaloInFOFGroup: link(colFirstHaloInFOFGroup),
		NextHaloInFOFGroup:  link(colNextHaloInFOFGroup),
		Len:                 link(colLen),
		Mvir:                f32(colMvir),
		Pos:                 [3]float32{f32(colX), f32(colY), f32(colZ)},
		Vel:                 [3]float32{f32(colVx), f32(colVy), f32(colVz)},
		Vmax:                f32(colVmax),
		Spin:                [3]float32{f32(colSpinX), f32(colSpinY), f32(colSpinZ)},
		// IDs above 2^53 lose precision.
		MostBoundID: int64(cols[colMostBoundID][i]),
		SnapNum:     link(colSnapNum),
	}
}

func (at *ASCIITrees) NTrees() int       { return len(at.trees) }
func (at *ASCIITrees) TreeLen(i int) int { return len(at.trees[i]) }
func (at *ASCIITrees) Close() error      { return nil }

func (at *ASCIITrees) ReadTree(i int) ([]halo.Halo, error) {
	if i < 0 || i >= len(at.trees) {
		return nil, fmt.Errorf("Tree %d out of range [0, %d).", i, len(at.trees))
	}
	return at.trees[i], nil
}

// ReadSnapList reads the scale factor of every snapshot from the first
// column of fname.
func ReadSnapList(fname string) ([]float64, error) {
	cols, err := table.ReadTable(fname, []int{0}, nil)
	if err != nil {
		return nil, err
	}
	if len(cols[0]) == 0 {
		return nil, fmt.Errorf("%s contains no snapshots.", fname)
	}
	return cols[0], nil
}
