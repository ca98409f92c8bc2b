package model

import (
	"testing"

	"github.com/phil-mansfield/gosage/halo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthPolicyNext(t *testing.T) {
	p := GrowthPolicy{Factor: 1.5, Min: 1000, Max: 100000}

	table := []struct {
		current, next int
	}{
		{0, 1000},
		{1000, 2000},
		{2000, 3000},
		{10000, 15000},
		{80000, 100000},
		{99999, 100000},
	}

	for i, test := range table {
		next, err := p.Next(test.current)
		require.NoError(t, err, "%d) Next(%d)", i+1, test.current)
		assert.Equal(t, test.next, next, "%d) Next(%d)", i+1, test.current)
	}

	_, err := p.Next(100000)
	assert.Error(t, err)
}

func TestWorkingSetReserve(t *testing.T) {
	policy := GrowthPolicy{Factor: 1.5, Min: 10, Max: 100}
	ws := NewWorkingSet(10, policy)

	for i := 0; i < 10; i++ {
		ws.gals[i].GalaxyNr = int64(i)
	}

	prev := ws.Cap()
	for ws.Cap() < policy.Max {
		require.NoError(t, ws.Reserve(ws.Cap()))
		assert.GreaterOrEqual(t, ws.Cap(), prev+policy.Min)
		prev = ws.Cap()
	}
	assert.Equal(t, policy.Max, ws.Cap())

	for i := 0; i < 10; i++ {
		assert.Equal(t, int64(i), ws.gals[i].GalaxyNr, "galaxy %d lost", i)
	}

	// Large jumps grow several times in one call.
	ws = NewWorkingSet(10, policy)
	require.NoError(t, ws.Reserve(55))
	assert.Greater(t, ws.Cap(), 55)
	assert.Equal(t, 1, ws.Grows())

	assert.Error(t, ws.Reserve(policy.Max))
	assert.Error(t, ws.Reserve(policy.Max+1000))
}

func TestWorkingSetCap(t *testing.T) {
	// Four heads at snapshot 0 all merge into one halo at snapshot 1, which
	// needs a working set of four galaxies.
	b := &halo.Builder{}
	desc := b.Add(1, 500, 50)
	for i := 0; i < 4; i++ {
		b.Progenitor(desc, b.Add(0, 100+i, 10))
	}

	env := testEnv(&nopPhysics{})
	env.Params.WorkingInitial = 2
	env.Params.Growth = GrowthPolicy{Factor: 1.5, Min: 1, Max: 3}

	tree := NewTree(env, 7, 3, b.Halos)
	err := recoverFatal(tree.Build)
	require.NotNil(t, err)
	assert.Equal(t, desc, err.Halo)
	assert.Equal(t, 7, err.File)
	assert.Equal(t, 3, err.Tree)
	assert.Contains(t, err.Msg, "maximum is 3")

	env.Params.Growth.Max = 4
	tree = NewTree(env, 7, 3, b.Halos)
	assert.Nil(t, recoverFatal(tree.Build))
	assert.Equal(t, 4, tree.WorkingCap())
	assert.Equal(t, 2, tree.Stats.Grows)
}
