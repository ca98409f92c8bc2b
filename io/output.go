package io

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/phil-mansfield/gosage/cosmo"
	"github.com/phil-mansfield/gosage/model"
)

// Output files are always little endian.
var end = binary.LittleEndian

const (
	// treeMulFac and fileMulFac make GalaxyIndex unique across a run.
	treeMulFac = 1000 * 1000
	fileMulFac = 1000 * 1000 * 1000 * 1000
)

// GalaxyOutput is the on-disk record of a single galaxy. Masses are in
// internal units, times are in Myr, and star formation rates are in
// Msun/yr.
type GalaxyOutput struct {
	SnapNum int32
	Type    int32

	GalaxyIndex         int64
	CentralGalaxyIndex  int64
	SAGEHaloIndex       int32
	SAGETreeIndex       int32
	SimulationHaloIndex int64

	MergeType        int32
	MergeIntoID      int32
	MergeIntoSnapNum int32
	DT               float32

	// (Sub)halo properties.
	Pos         [3]float32
	Vel         [3]float32
	Spin        [3]float32
	Len         int32
	Mvir        float32
	CentralMvir float32
	Rvir        float32
	Vvir        float32
	Vmax        float32
	VelDisp     float32

	// Baryonic reservoirs.
	ColdGas       float32
	StellarMass   float32
	BulgeMass     float32
	HotGas        float32
	EjectedMass   float32
	BlackHoleMass float32
	ICS           float32

	// Metals.
	MetalsColdGas     float32
	MetalsStellarMass float32
	MetalsBulgeMass   float32
	MetalsHotGas      float32
	MetalsEjectedMass float32
	MetalsICS         float32

	// To calculate magnitudes.
	SfrDisk                   float32
	SfrBulge                  float32
	SfrDiskZ                  float32
	SfrBulgeZ                 float32
	DiskRadius                float32
	Cooling                   float32
	Heating                   float32
	QuasarModeBHAccretionMass float32

	TimeOfLastMajorMerger float32
	TimeOfLastMinorMerger float32
	OutflowRate           float32

	// Infall properties.
	InfallMvir float32
	InfallVvir float32
	InfallVmax float32
}

// Renumber assigns every permanent galaxy whose SnapNum is one of snaps an
// index within its snapshot's output, in permanent order. order[i] lists the
// permanent indices written for snaps[i], and outIdx maps permanent indices
// to output indices (-1 for galaxies which aren't written).
func Renumber(gals []model.Galaxy, snaps []int) (order [][]int, outIdx []int) {
	slot := map[int]int{}
	for i, snap := range snaps {
		slot[snap] = i
	}

	order = make([][]int, len(snaps))
	outIdx = make([]int, len(gals))
	for i := range gals {
		s, ok := slot[gals[i].SnapNum]
		if !ok {
			outIdx[i] = -1
			continue
		}
		outIdx[i] = len(order[s])
		order[s] = append(order[s], i)
	}

	return order, outIdx
}

// Catalog is the output of a single tree: one slice of records per output
// snapshot.
type Catalog struct {
	Tree  int
	Snaps []int
	Gals  [][]GalaxyOutput
}

// NewCatalog converts the galaxies of a finished tree to output records.
func NewCatalog(t *model.Tree, snaps []int, u *cosmo.Units) *Catalog {
	order, outIdx := Renumber(t.Gals, snaps)

	c := &Catalog{Tree: t.Index, Snaps: snaps, Gals: make([][]GalaxyOutput, len(snaps))}
	for s := range snaps {
		c.Gals[s] = make([]GalaxyOutput, len(order[s]))
		for j, i := range order[s] {
			prepareGalaxy(t, i, outIdx, u, &c.Gals[s][j])
		}
	}
	return c
}

// Len returns the number of galaxies in the catalog.
func (c *Catalog) Len() int {
	n := 0
	for _, gals := range c.Gals {
		n += len(gals)
	}
	return n
}

// GalaxyIndex returns a run-wide identifier for galaxy number galaxyNr of
// the given tree.
func GalaxyIndex(galaxyNr int64, tree, fileNr int) int64 {
	return galaxyNr + treeMulFac*int64(tree) + fileMulFac*int64(fileNr)
}

func prepareGalaxy(
	t *model.Tree, i int, outIdx []int, u *cosmo.Units, o *GalaxyOutput,
) {
	g := &t.Gals[i]
	h := &t.Halos[g.HaloNr]
	head := int(h.FirstHaloInFOFGroup)
	central := &t.Gals[t.Aux[head].FirstGalaxy]

	o.SnapNum = int32(g.SnapNum)
	o.Type = int32(g.Type)
	o.GalaxyIndex = GalaxyIndex(g.GalaxyNr, t.Index, t.File)
	o.CentralGalaxyIndex = GalaxyIndex(central.GalaxyNr, t.Index, t.File)
	o.SAGEHaloIndex = int32(g.HaloNr)
	o.SAGETreeIndex = int32(t.Index)
	o.SimulationHaloIndex = h.MostBoundID
	if o.SimulationHaloIndex < 0 {
		o.SimulationHaloIndex = -o.SimulationHaloIndex
	}

	o.MergeType = int32(g.MergeStatus)
	o.MergeIntoID = -1
	if g.MergeIntoID >= 0 {
		o.MergeIntoID = int32(outIdx[g.MergeIntoID])
	}
	o.MergeIntoSnapNum = int32(g.MergeIntoSnapNum)
	o.DT = float32(g.DT * u.TimeInMegayears)

	for k := 0; k < 3; k++ {
		o.Pos[k] = float32(g.Pos[k])
		o.Vel[k] = float32(g.Vel[k])
		o.Spin[k] = h.Spin[k]
	}
	o.Len = int32(g.Len)
	o.Mvir = float32(g.Mvir)
	o.CentralMvir = float32(t.VirialMass(head))
	o.Rvir = float32(g.Rvir)
	o.Vvir = float32(g.Vvir)
	o.Vmax = float32(g.Vmax)
	o.VelDisp = h.VelDisp

	o.ColdGas = float32(g.ColdGas)
	o.StellarMass = float32(g.StellarMass)
	o.BulgeMass = float32(g.BulgeMass)
	o.HotGas = float32(g.HotGas)
	o.EjectedMass = float32(g.EjectedMass)
	o.BlackHoleMass = float32(g.BlackHoleMass)
	o.ICS = float32(g.ICS)

	o.MetalsColdGas = float32(g.MetalsColdGas)
	o.MetalsStellarMass = float32(g.MetalsStellarMass)
	o.MetalsBulgeMass = float32(g.MetalsBulgeMass)
	o.MetalsHotGas = float32(g.MetalsHotGas)
	o.MetalsEjectedMass = float32(g.MetalsEjectedMass)
	o.MetalsICS = float32(g.MetalsICS)

	sfrUnit := u.MassInG / u.TimeInS * cosmo.SecPerYear / cosmo.SolarMass
	o.SfrDisk = float32(g.SfrDisk * sfrUnit)
	o.SfrBulge = float32(g.SfrBulge * sfrUnit)
	if g.ColdGas > 0 {
		z := float32(g.MetalsColdGas / g.ColdGas)
		o.SfrDiskZ, o.SfrBulgeZ = z, z
	}

	o.DiskRadius = float32(g.DiskScaleRadius)
	o.Cooling = logRate(g.Cooling, u)
	o.Heating = logRate(g.Heating, u)
	o.QuasarModeBHAccretionMass = float32(g.QuasarModeBHAccretionMass)

	o.TimeOfLastMajorMerger = float32(g.TimeOfLastMajorMerger * u.TimeInMegayears)
	o.TimeOfLastMinorMerger = float32(g.TimeOfLastMinorMerger * u.TimeInMegayears)
	o.OutflowRate = float32(g.OutflowRate * sfrUnit)

	o.InfallMvir = float32(g.InfallMvir)
	o.InfallVvir = float32(g.InfallVvir)
	o.InfallVmax = float32(g.InfallVmax)
}

// logRate converts an energy rate to log10(erg/s).
func logRate(x float64, u *cosmo.Units) float32 {
	if x <= 0 {
		return 0
	}
	return float32(math.Log10(x * u.EnergyInCGS / u.TimeInS))
}

// Writer writes the catalogs of the trees in a single tree file.
type Writer interface {
	WriteTree(c *Catalog) error
	Close() error
}

// NewWriter opens the writer named by con.OutputFormat for tree file fileNr,
// which contains nTrees trees.
func NewWriter(
	con *ModelConfig, fileNr, nTrees int, snaps *cosmo.Snapshots,
) (Writer, error) {
	switch con.OutputFormat {
	case "binary":
		return NewBinaryWriter(con, fileNr, nTrees, snaps)
	case "sqlite":
		return NewSQLiteWriter(SQLiteFile(con, fileNr), fileNr)
	}
	return nil, fmt.Errorf("Unrecognized output format '%s'.", con.OutputFormat)
}

// OutputFiles returns the files written for tree file fileNr.
func OutputFiles(con *ModelConfig, fileNr int, snaps *cosmo.Snapshots) []string {
	if con.OutputFormat == "sqlite" {
		return []string{SQLiteFile(con, fileNr)}
	}

	out := make([]string, len(con.OutputSnapshots))
	for i, snap := range con.OutputSnapshots {
		out[i] = BinaryFile(con, fileNr, snaps.RedshiftAt(snap))
	}
	return out
}

// BinaryFile returns the name of the binary catalog for the given file and
// redshift.
func BinaryFile(con *ModelConfig, fileNr int, z float64) string {
	return filepath.Join(con.OutputDir,
		fmt.Sprintf("%s_z%.3f_%d", con.FileNameGalaxies, z, fileNr))
}

/*
BinaryWriter writes one file per output snapshot. The format is as follows:
    |-- 1 --||-- 2 --||-- ... 3 ... --||-- ... 4 ... --|

    1 - (int32) Number of trees.
    2 - (int32) Total number of galaxies.
    3 - ([]int32) Number of galaxies in each tree.
    4 - ([]GalaxyOutput) Galaxy records, one tree after another.

The header is only known once every tree has been written, so it is
written twice: zeroed when the file is opened and for real on Close.
*/
type BinaryWriter struct {
	files  []*os.File
	counts [][]int32
}

// NewBinaryWriter creates the catalog files of tree file fileNr.
func NewBinaryWriter(
	con *ModelConfig, fileNr, nTrees int, snaps *cosmo.Snapshots,
) (*BinaryWriter, error) {
	if err := os.MkdirAll(con.OutputDir, 0o750); err != nil {
		return nil, err
	}

	w := &BinaryWriter{}
	for _, snap := range con.OutputSnapshots {
		f, err := os.Create(BinaryFile(con, fileNr, snaps.RedshiftAt(snap)))
		if err != nil {
			w.closeFiles()
			return nil, err
		}
		w.files = append(w.files, f)
		w.counts = append(w.counts, make([]int32, nTrees))

		if err := w.writeHeader(len(w.files) - 1); err != nil {
			w.closeFiles()
			return nil, err
		}
	}
	return w, nil
}

func (w *BinaryWriter) writeHeader(i int) error {
	f, counts := w.files[i], w.counts[i]
	tot := int32(0)
	for _, n := range counts {
		tot += n
	}

	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if err := binary.Write(f, end, int32(len(counts))); err != nil {
		return err
	}
	if err := binary.Write(f, end, tot); err != nil {
		return err
	}
	return binary.Write(f, end, counts)
}

func (w *BinaryWriter) WriteTree(c *Catalog) error {
	if len(c.Gals) != len(w.files) {
		return fmt.Errorf("Catalog has %d snapshots, but writer has %d.",
			len(c.Gals), len(w.files))
	}
	for i, gals := range c.Gals {
		if c.Tree < 0 || c.Tree >= len(w.counts[i]) {
			return fmt.Errorf("Tree %d out of range [0, %d).",
				c.Tree, len(w.counts[i]))
		}
		if err := binary.Write(w.files[i], end, gals); err != nil {
			return err
		}
		w.counts[i][c.Tree] += int32(len(gals))
	}
	return nil
}

func (w *BinaryWriter) Close() error {
	var err error
	for i := range w.files {
		if hErr := w.writeHeader(i); hErr != nil && err == nil {
			err = hErr
		}
	}
	if cErr := w.closeFiles(); cErr != nil && err == nil {
		err = cErr
	}
	return err
}

func (w *BinaryWriter) closeFiles() error {
	var err error
	for _, f := range w.files {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}
	return err
}

// ReadGalaxies reads a binary catalog, returning the number of galaxies in
// each tree and the galaxy records.
func ReadGalaxies(fname string) (counts []int32, gals []GalaxyOutput, err error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	nTrees, err := readInt32(f, end)
	if err != nil {
		return nil, nil, err
	}
	tot, err := readInt32(f, end)
	if err != nil {
		return nil, nil, err
	}
	if nTrees < 0 || tot < 0 {
		return nil, nil, fmt.Errorf("%s has an invalid header.", fname)
	}

	counts = make([]int32, nTrees)
	if err = binary.Read(f, end, counts); err != nil {
		return nil, nil, err
	}
	gals = make([]GalaxyOutput, tot)
	if err = binary.Read(f, end, gals); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", fname, err)
	}
	return counts, gals, nil
}
