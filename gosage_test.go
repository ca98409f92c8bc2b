package gosage

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gosage/halo"
	"github.com/phil-mansfield/gosage/io"
	"github.com/phil-mansfield/gosage/model"
)

// mergerTree returns a tree in which two halos merge at snapshot 1 and the
// result grows until snapshot 2.
func mergerTree() []halo.Halo {
	b := &halo.Builder{}
	root := b.Add(2, 800, 80)
	mid := b.Add(1, 500, 50)
	b.Progenitor(root, mid)
	b.Progenitor(mid, b.Add(0, 300, 30))
	b.Progenitor(mid, b.Add(0, 50, 5))
	return b.Halos
}

// groupTree returns a tree with a satellite subhalo at the final snapshot.
func groupTree() []halo.Halo {
	b := &halo.Builder{}
	head := b.Add(2, 1000, 100)
	sub := b.Add(2, 200, 20)
	b.Subhalo(head, sub)
	b.Progenitor(head, b.Add(1, 600, 60))
	b.Progenitor(sub, b.Add(1, 250, 25))
	for i := range b.Halos {
		b.Halos[i].Spin = [3]float32{0.5, 0, 0}
	}
	return b.Halos
}

func testConfig(t *testing.T, files int, physics, format string) *io.ModelConfig {
	dir := t.TempDir()
	sim := filepath.Join(dir, "sim")
	require.NoError(t, os.MkdirAll(sim, 0o750))

	snapList := filepath.Join(dir, "a_list")
	require.NoError(t, os.WriteFile(snapList, []byte("0.25\n0.5\n1.0\n"), 0o644))

	con := io.DefaultModelWrapper().Model
	con.FileNameGalaxies = "model"
	con.OutputDir = filepath.Join(dir, "out")
	con.OutputFormat = format
	con.TreeName = "trees"
	con.SimulationDir = sim
	con.FileWithSnapList = snapList
	con.LastSnapShotNr = 2
	con.FirstFile, con.LastFile = 0, files-1
	con.Omega, con.OmegaLambda, con.HubbleH = 0.25, 0.75, 0.73
	con.PartMass = 0.1
	con.Physics = physics
	con.Workers = 2
	con.MetricsFile = filepath.Join(dir, "metrics.prom")
	require.NoError(t, con.CheckInit())

	for fileNr := 0; fileNr < files; fileNr++ {
		require.NoError(t, io.WriteBinaryTrees(con.TreeFile(fileNr),
			[][]halo.Halo{mergerTree(), groupTree()}, binary.LittleEndian))
	}
	return &con
}

func TestRun(t *testing.T) {
	con := testConfig(t, 2, "baryons", "binary")
	con.OutputSnapshots = []int{2, 1}

	man, err := NewManager(con)
	require.NoError(t, err)
	require.NoError(t, man.Run())

	for fileNr := 0; fileNr < 2; fileNr++ {
		files := io.OutputFiles(con, fileNr, man.env.Snaps)

		counts, gals, err := io.ReadGalaxies(files[0])
		require.NoError(t, err)
		assert.Equal(t, []int32{1, 2}, counts)
		require.Len(t, gals, 3)
		assert.Equal(t, int32(model.Central), gals[0].Type)
		assert.Equal(t, int32(model.Central), gals[1].Type)
		assert.Equal(t, int32(model.Satellite), gals[2].Type)
		assert.Equal(t, gals[1].GalaxyIndex, gals[2].CentralGalaxyIndex)
		assert.Equal(t, io.GalaxyIndex(0, 1, fileNr), gals[1].GalaxyIndex)
		for i := range gals {
			assert.Equal(t, int32(2), gals[i].SnapNum)
			assert.Greater(t, gals[i].StellarMass+gals[i].HotGas+
				gals[i].ColdGas, float32(0), "galaxy %d", i)
		}

		counts, gals, err = io.ReadGalaxies(files[1])
		require.NoError(t, err)
		assert.Equal(t, []int32{1, 2}, counts)
		assert.Equal(t, int32(-1), gals[0].MergeIntoID)
	}

	assert.Equal(t, 4.0, testutil.ToFloat64(man.Metrics.Trees))
	assert.Equal(t, 2.0*(4+4), testutil.ToFloat64(man.Metrics.Halos))
	// The small halo's galaxy merges once per file.
	mergers := 0.0
	for _, kind := range []model.MergeStatus{model.MinorMerger, model.MajorMerger} {
		mergers += testutil.ToFloat64(man.Metrics.Mergers.WithLabelValues(kind.String()))
	}
	assert.Equal(t, 2.0, mergers)

	text, err := os.ReadFile(con.MetricsFile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(text), "gosage_trees_total 4"))
}

func TestRunSQLite(t *testing.T) {
	con := testConfig(t, 1, "null", "sqlite")

	man, err := NewManager(con)
	require.NoError(t, err)
	require.NoError(t, man.Run())

	files := io.OutputFiles(con, 0, man.env.Snaps)
	require.Len(t, files, 1)
	_, err = os.Stat(files[0])
	assert.NoError(t, err)
}

func TestRunFileSkip(t *testing.T) {
	con := testConfig(t, 1, "null", "binary")
	man, err := NewManager(con)
	require.NoError(t, err)
	ctx := context.Background()

	// Missing tree files are skipped.
	assert.NoError(t, man.RunFile(ctx, 5))
	assert.Equal(t, 0.0, testutil.ToFloat64(man.Metrics.Trees))

	require.NoError(t, man.RunFile(ctx, 0))
	assert.Equal(t, 2.0, testutil.ToFloat64(man.Metrics.Trees))

	// Existing output is skipped unless Overwrite is set.
	require.NoError(t, man.RunFile(ctx, 0))
	assert.Equal(t, 2.0, testutil.ToFloat64(man.Metrics.Trees))

	con.Overwrite = true
	require.NoError(t, man.RunFile(ctx, 0))
	assert.Equal(t, 4.0, testutil.ToFloat64(man.Metrics.Trees))
}

func TestNewManagerErrors(t *testing.T) {
	con := testConfig(t, 1, "null", "binary")
	con.LastSnapShotNr = 3
	_, err := NewManager(con)
	assert.Error(t, err)

	con = testConfig(t, 1, "null", "binary")
	con.FileWithSnapList = filepath.Join(t.TempDir(), "missing")
	_, err = NewManager(con)
	assert.Error(t, err)
}

func TestCheckSnapNums(t *testing.T) {
	hs := mergerTree()
	assert.NoError(t, checkSnapNums(hs, 3))
	assert.Error(t, checkSnapNums(hs, 2))
}
