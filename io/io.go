/*
Package io reads and writes the files used by a run: the parameter file, the
snapshot list, the merger tree files, and the galaxy catalogs.

The binary LHalo tree format is as follows:
    |-- 1 --||-- 2 --||-- ... 3 ... --||-- ... 4 ... --|

    1 - (int32) Number of trees in the file.
    2 - (int32) Total number of halos in the file.
    3 - ([]int32) Number of halos in each tree.
    4 - ([]halo.Halo) Contiguous block of halo records, one tree after
        another. Links are indices within the halo's own tree.

Files can be either endianness. The header is read as little endian first and
re-read as big endian if it doesn't make sense.
*/
package io

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/phil-mansfield/gosage/halo"
)

const (
	maxTrees      = 1000 * 1000
	maxTotalHalos = 100 * 1000 * 1000
)

// TreeFile is a source of merger trees. Trees can be read in any order.
type TreeFile interface {
	NTrees() int
	TreeLen(i int) int
	// ReadTree returns the halos of tree i.
	ReadTree(i int) ([]halo.Halo, error)
	Close() error
}

// OpenTrees opens tree file fileNr with the loader named by con.TreeType.
func OpenTrees(con *ModelConfig, fileNr int) (TreeFile, error) {
	fname := con.TreeFile(fileNr)
	switch con.TreeType {
	case "lhalo_binary":
		return OpenBinaryTrees(fname)
	case "lhalo_ascii":
		return ReadASCIITrees(fname)
	}
	return nil, fmt.Errorf("Unrecognized tree type '%s'.", con.TreeType)
}

// BinaryTrees is an open binary LHalo tree file.
type BinaryTrees struct {
	f     *os.File
	order binary.ByteOrder

	counts  []int32
	offsets []int64 // Byte offset of each tree.
}

// readInt32 returns a single int32 from the given reader using the given
// endianness.
func readInt32(r io.Reader, order binary.ByteOrder) (int32, error) {
	var n int32
	err := binary.Read(r, order, &n)
	return n, err
}

// plausibleHeader returns true if a tree table header could have come from a
// real file.
func plausibleHeader(nTrees, totHalos int32) bool {
	return nTrees > 0 && nTrees <= maxTrees &&
		totHalos > 0 && totHalos <= maxTotalHalos
}

// detectEndianness returns the byte order of a binary tree file's header.
func detectEndianness(f io.ReadSeeker) (binary.ByteOrder, error) {
	for _, order := range []binary.ByteOrder{
		binary.LittleEndian, binary.BigEndian,
	} {
		if _, err := f.Seek(0, 0); err != nil {
			return nil, err
		}
		nTrees, err := readInt32(f, order)
		if err != nil {
			return nil, err
		}
		totHalos, err := readInt32(f, order)
		if err != nil {
			return nil, err
		}
		if plausibleHeader(nTrees, totHalos) {
			return order, nil
		}
	}
	return nil, fmt.Errorf("Implausible tree table header.")
}

// OpenBinaryTrees opens a binary LHalo tree file and reads its tree table.
func OpenBinaryTrees(fname string) (*BinaryTrees, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}

	bt, err := readTreeTable(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return bt, nil
}

func readTreeTable(f *os.File) (*BinaryTrees, error) {
	order, err := detectEndianness(f)
	if err != nil {
		return nil, err
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	nTrees, _ := readInt32(f, order)
	totHalos, _ := readInt32(f, order)

	counts := make([]int32, nTrees)
	if err := binary.Read(f, order, counts); err != nil {
		return nil, fmt.Errorf("reading tree table: %w", err)
	}

	offsets := make([]int64, nTrees)
	off := int64(8 + 4*int64(nTrees))
	sum := int64(0)
	for i, n := range counts {
		if n < 0 {
			return nil, fmt.Errorf("Tree %d has %d halos.", i, n)
		}
		offsets[i] = off
		off += int64(n) * halo.RecordSize
		sum += int64(n)
	}
	if sum != int64(totHalos) {
		return nil, fmt.Errorf("Tree table contains %d halos, but the "+
			"header says there are %d.", sum, totHalos)
	}

	return &BinaryTrees{f: f, order: order, counts: counts, offsets: offsets}, nil
}

func (bt *BinaryTrees) NTrees() int       { return len(bt.counts) }
func (bt *BinaryTrees) TreeLen(i int) int { return int(bt.counts[i]) }
func (bt *BinaryTrees) Close() error      { return bt.f.Close() }

// Order returns the byte order of the file.
func (bt *BinaryTrees) Order() binary.ByteOrder { return bt.order }

func (bt *BinaryTrees) ReadTree(i int) ([]halo.Halo, error) {
	if i < 0 || i >= len(bt.counts) {
		return nil, fmt.Errorf("Tree %d out of range [0, %d).", i, len(bt.counts))
	}

	hs := make([]halo.Halo, bt.counts[i])
	if _, err := bt.f.Seek(bt.offsets[i], 0); err != nil {
		return nil, err
	}
	if err := binary.Read(bt.f, bt.order, hs); err != nil {
		return nil, fmt.Errorf("reading tree %d: %w", i, err)
	}
	if err := halo.Check(hs); err != nil {
		return nil, fmt.Errorf("tree %d: %w", i, err)
	}
	return hs, nil
}

// WriteBinaryTrees writes the given trees to fname in the binary LHalo
// format with the given byte order.
func WriteBinaryTrees(
	fname string, trees [][]halo.Halo, order binary.ByteOrder,
) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	counts := make([]int32, len(trees))
	tot := int32(0)
	for i := range trees {
		counts[i] = int32(len(trees[i]))
		tot += counts[i]
	}

	if err = binary.Write(f, order, int32(len(trees))); err != nil {
		return err
	}
	if err = binary.Write(f, order, tot); err != nil {
		return err
	}
	if err = binary.Write(f, order, counts); err != nil {
		return err
	}
	for i := range trees {
		if err = binary.Write(f, order, trees[i]); err != nil {
			return err
		}
	}

	return f.Close()
}
