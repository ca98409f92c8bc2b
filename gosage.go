/*
Package gosage runs the galaxy model over a set of merger tree files.

A Manager loads everything that is shared between trees once, then processes
tree files independently, possibly several at a time. Within a file, trees
are built one after another and written as soon as they're finished.
*/
package gosage

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phil-mansfield/gosage/cosmo"
	"github.com/phil-mansfield/gosage/halo"
	"github.com/phil-mansfield/gosage/io"
	"github.com/phil-mansfield/gosage/model"
	"github.com/phil-mansfield/gosage/physics"
)

const (
	// logTrees is the number of trees between progress messages.
	logTrees = 10000
)

type Manager struct {
	con     *io.ModelConfig
	env     *model.Env
	Metrics *Metrics
}

// NewManager reads the snapshot list and sets up the cosmology and physics
// described by con.
func NewManager(con *io.ModelConfig) (*Manager, error) {
	scales, err := io.ReadSnapList(con.FileWithSnapList)
	if err != nil {
		return nil, err
	}
	if len(scales) <= con.LastSnapShotNr {
		return nil, fmt.Errorf("%s contains %d snapshots, but "+
			"LastSnapShotNr is %d.", con.FileWithSnapList, len(scales),
			con.LastSnapShotNr)
	}
	scales = scales[:con.LastSnapShotNr+1]

	c := &cosmo.Cosmology{
		OmegaM: con.Omega, OmegaL: con.OmegaLambda, H100: con.HubbleH,
		Units: cosmo.NewUnits(
			con.UnitLengthInCm, con.UnitMassInG, con.UnitVelocityInCmPerS,
		),
	}
	snaps, err := cosmo.NewSnapshots(c, scales)
	if err != nil {
		return nil, err
	}

	phys, err := physics.New(con.Physics, physics.Params{
		BaryonFrac:            con.BaryonFrac,
		SfrEfficiency:         con.SfrEfficiency,
		RecycleFraction:       con.RecycleFraction,
		Yield:                 con.Yield,
		ThreshMajorMerger:     con.ThreshMajorMerger,
		ReIncorporationFactor: con.ReIncorporationFactor,
	})
	if err != nil {
		return nil, err
	}

	env := &model.Env{
		Cosmo: c, Snaps: snaps, Physics: phys,
		Params: model.Params{
			PartMass:               con.PartMass,
			Steps:                  con.Steps,
			ThresholdSatDisruption: con.ThresholdSatDisruption,
			WorkingInitial:         con.WorkingSetInitial,
			Growth: model.GrowthPolicy{
				Factor: con.WorkingSetGrowthFactor,
				Min:    con.WorkingSetMinGrowth,
				Max:    con.WorkingSetMax,
			},
		},
	}

	return &Manager{con: con, env: env, Metrics: NewMetrics()}, nil
}

// Run processes every tree file in [FirstFile, LastFile], Workers files at a
// time. Model invariant violations panic and are not recovered.
func (man *Manager) Run() error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(man.con.Workers)

	for fileNr := man.con.FirstFile; fileNr <= man.con.LastFile; fileNr++ {
		fileNr := fileNr
		g.Go(func() error { return man.RunFile(ctx, fileNr) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if man.con.ValidMetricsFile() {
		return man.Metrics.WriteFile(man.con.MetricsFile)
	}
	return nil
}

// RunFile builds and writes every tree in a single file. Missing tree files
// are skipped, as are files whose output already exists, unless Overwrite is
// set.
func (man *Manager) RunFile(ctx context.Context, fileNr int) error {
	con := man.con

	treeFile := con.TreeFile(fileNr)
	if _, err := os.Stat(treeFile); os.IsNotExist(err) {
		log.Printf("Missing tree file %s. Skipping.", treeFile)
		return nil
	}
	out := io.OutputFiles(con, fileNr, man.env.Snaps)
	if _, err := os.Stat(out[0]); err == nil && !con.Overwrite {
		log.Printf("Output %s already exists. Skipping.", out[0])
		return nil
	}

	trees, err := io.OpenTrees(con, fileNr)
	if err != nil {
		return err
	}
	defer trees.Close()

	w, err := io.NewWriter(con, fileNr, trees.NTrees(), man.env.Snaps)
	if err != nil {
		return err
	}

	stats := &model.Stats{}
	for i := 0; i < trees.NTrees(); i++ {
		if err := ctx.Err(); err != nil {
			w.Close()
			return err
		}
		if i%logTrees == 0 {
			log.Printf("file %d tree %d of %d", fileNr, i, trees.NTrees())
		}

		tree, err := man.buildTree(trees, fileNr, i)
		if err != nil {
			w.Close()
			return fmt.Errorf("file %d: %w", fileNr, err)
		}
		stats.Add(&tree.Stats)

		cat := io.NewCatalog(tree, con.OutputSnapshots, &man.env.Cosmo.Units)
		if err := w.WriteTree(cat); err != nil {
			w.Close()
			return fmt.Errorf("file %d, tree %d: %w", fileNr, i, err)
		}
	}

	log.Printf("file %d done: %d trees, %d groups, %d new galaxies, "+
		"%d orphans, %d working set grows.", fileNr, trees.NTrees(),
		stats.Groups, stats.NewGalaxies, stats.Orphans, stats.Grows)

	return w.Close()
}

// buildTree reads and builds tree i of the given file.
func (man *Manager) buildTree(
	trees io.TreeFile, fileNr, i int,
) (*model.Tree, error) {
	hs, err := trees.ReadTree(i)
	if err != nil {
		return nil, err
	}
	if err := checkSnapNums(hs, man.env.Snaps.Len()); err != nil {
		return nil, fmt.Errorf("tree %d: %w", i, err)
	}

	start := time.Now()
	tree := model.NewTree(man.env, fileNr, i, hs)
	tree.Build()
	man.Metrics.Observe(tree, time.Since(start))

	return tree, nil
}

// checkSnapNums makes sure that every halo is in one of the first n
// snapshots.
func checkSnapNums(hs []halo.Halo, n int) error {
	for i := range hs {
		if hs[i].SnapNum < 0 || int(hs[i].SnapNum) >= n {
			return fmt.Errorf("Halo %d has SnapNum %d, which is out of "+
				"range [0, %d).", i, hs[i].SnapNum, n)
		}
	}
	return nil
}
