package model

import (
	"testing"

	"github.com/phil-mansfield/gosage/halo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// attachTree returns a tree with a progenitor halo at snapshot 0 whose n
// galaxies are already permanent and a descendant at snapshot 1.
func attachTree(n int) (tree *Tree, desc int) {
	b := &halo.Builder{}
	prog := b.Add(0, 100, 10)
	desc = b.Add(1, 100, 10)
	b.Progenitor(desc, prog)

	tree = NewTree(testEnv(&nopPhysics{}), 0, 0, b.Halos)
	for i := 0; i < n; i++ {
		tree.Gals = append(tree.Gals, Galaxy{
			GalaxyNr: int64(i), HaloNr: prog, MergeIntoID: -1,
		})
	}
	tree.Aux[prog].NGalaxies = n
	return tree, desc
}

func TestAttachCompaction(t *testing.T) {
	table := []struct {
		merged  map[int]int // merged galaxy -> target
		targets map[int]int // merged galaxy -> expected permanent target
	}{
		{map[int]int{}, map[int]int{}},
		{map[int]int{1: 0, 3: 4}, map[int]int{1: 5, 3: 7}},
		{map[int]int{0: 4, 1: 4, 2: 4}, map[int]int{0: 6, 1: 6, 2: 6}},
		{map[int]int{3: 1, 4: 1}, map[int]int{3: 6, 4: 6}},
		{map[int]int{2: 0, 4: 3}, map[int]int{2: 5, 4: 7}},
		// Merging into a galaxy that merged later in the same step.
		{map[int]int{1: 2, 2: 0}, map[int]int{1: 5, 2: 5}},
	}

	for i, test := range table {
		n := 5
		tree, desc := attachTree(n)
		base := len(tree.Gals)

		require.NoError(t, tree.work.Reserve(n))
		for j := 0; j < n; j++ {
			tree.work.gals[j] = tree.Gals[j]
			tree.work.gals[j].HaloNr = desc
		}
		for j, target := range test.merged {
			tree.work.gals[j].MergeStatus = MinorMerger
			tree.work.gals[j].MergeIntoID = target
		}

		tree.attach(n)

		require.Len(t, tree.Gals, base+n-len(test.merged), "%d)", i+1)
		assert.Equal(t, base, tree.Aux[desc].FirstGalaxy, "%d)", i+1)
		assert.Equal(t, n-len(test.merged), tree.Aux[desc].NGalaxies, "%d)", i+1)

		for j := 0; j < n; j++ {
			prev := tree.Gals[j]
			target, ok := test.targets[j]
			if !ok {
				assert.Equal(t, Active, prev.MergeStatus, "%d) galaxy %d", i+1, j)
				assert.Equal(t, -1, prev.MergeIntoID, "%d) galaxy %d", i+1, j)
				continue
			}

			assert.Equal(t, MinorMerger, prev.MergeStatus, "%d) galaxy %d", i+1, j)
			assert.Equal(t, target, prev.MergeIntoID, "%d) galaxy %d", i+1, j)
			assert.Equal(t, 1, prev.MergeIntoSnapNum, "%d) galaxy %d", i+1, j)

			// The target is the same galaxy one snapshot later.
			survivor := test.merged[j]
			for tree.work.gals[survivor].MergeStatus != Active {
				survivor = tree.work.gals[survivor].MergeIntoID
			}
			assert.Equal(t, int64(survivor), tree.Gals[target].GalaxyNr,
				"%d) galaxy %d", i+1, j)
			assert.Equal(t, 1, tree.Gals[target].SnapNum, "%d) galaxy %d", i+1, j)
		}
	}
}

func TestAttachFatal(t *testing.T) {
	// No earlier record.
	tree, desc := attachTree(0)
	tree.work.gals[0] = Galaxy{
		GalaxyNr: 10, HaloNr: desc, MergeStatus: MajorMerger,
	}
	tree.work.gals[1] = Galaxy{GalaxyNr: 11, HaloNr: desc, MergeIntoID: -1}
	tree.work.gals[0].MergeIntoID = 1
	err := recoverFatal(func() { tree.attach(2) })
	require.NotNil(t, err)
	assert.Equal(t, desc, err.Halo)

	// Permanent list overflow.
	tree, desc = attachTree(0)
	tree.MaxGals = 1
	tree.work.gals[0] = Galaxy{GalaxyNr: 0, HaloNr: desc}
	tree.work.gals[1] = Galaxy{GalaxyNr: 1, HaloNr: desc}
	err = recoverFatal(func() { tree.attach(2) })
	require.NotNil(t, err)
	assert.Len(t, tree.Gals, 1)
}

func TestMergerBookkeeping(t *testing.T) {
	// Two heads merge. The smaller one becomes an orphan and merges into the
	// central within the step.
	b := &halo.Builder{}
	big := b.Add(0, 300, 30)
	small := b.Add(0, 50, 5)
	d := b.Add(1, 500, 50)
	b.Progenitor(d, small)
	b.Progenitor(d, big)

	tree := NewTree(testEnv(&nopPhysics{}), 0, 0, b.Halos)
	tree.Build()

	require.Len(t, tree.Gals, 3)
	assert.Equal(t, MinorMerger, tree.Gals[small].MergeStatus)
	assert.Equal(t, 2, tree.Gals[small].MergeIntoID)
	assert.Equal(t, 1, tree.Gals[small].MergeIntoSnapNum)
	assert.Equal(t, Active, tree.Gals[big].MergeStatus)
	assert.Equal(t, tree.Gals[big].GalaxyNr, tree.Gals[2].GalaxyNr)
	assert.Equal(t, 1, tree.Stats.Mergers[MinorMerger])
	assert.Equal(t, 1, tree.Stats.Orphans)
}
