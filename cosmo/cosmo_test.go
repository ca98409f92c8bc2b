package cosmo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func millennium() *Cosmology {
	return &Cosmology{
		OmegaM: 0.25, OmegaL: 0.75, H100: 0.73,
		Units: NewUnits(3.08568e24, 1.989e43, 100000),
	}
}

func TestIntegrate(t *testing.T) {
	table := []struct {
		f      func(float64) float64
		lo, hi float64
		res    float64
	}{
		{func(x float64) float64 { return 1 }, 0, 2, 2},
		{func(x float64) float64 { return x * x }, 0, 3, 9},
		{math.Sin, 0, math.Pi, 2},
		{math.Exp, 0, 1, math.E - 1},
		{math.Sqrt, 1, 1, 0},
	}

	for i, test := range table {
		res := Integrate(test.f, test.lo, test.hi, 1e-10)
		assert.InDelta(t, test.res, res, 1e-8, "%d) integral", i+1)
	}
}

func TestUnits(t *testing.T) {
	u := NewUnits(3.08568e24, 1.989e43, 100000)

	// One Mpc / (km/s) is about 978 Gyr.
	assert.InDelta(t, 978028, u.TimeInMegayears, 10)
	assert.InDelta(t, 43.0, u.G, 0.1)
	assert.InDelta(t, 100, u.Hubble, 1e-3)
}

func TestTimeToPresent(t *testing.T) {
	c := millennium()

	assert.Equal(t, 0.0, c.TimeToPresent(0))

	// Einstein-de Sitter has an analytic age: 2/(3 H0).
	eds := &Cosmology{OmegaM: 1, OmegaL: 0, Units: c.Units}
	assert.InDelta(t, 2/(3*eds.Hubble), eds.TimeToPresent(1e6), 1e-5)

	prev := 0.0
	for _, z := range []float64{0.5, 1, 2, 5, 10} {
		age := c.TimeToPresent(z)
		assert.Greater(t, age, prev, "time to present must grow with z")
		prev = age
	}
}

func TestRhoCritical(t *testing.T) {
	c := millennium()
	rho0 := 3 * c.Hubble * c.Hubble / (8 * math.Pi * c.G)
	assert.InDelta(t, rho0, c.RhoCritical(0), rho0*1e-12)
	assert.Greater(t, c.RhoCritical(1), c.RhoCritical(0))
}

func TestSnapshots(t *testing.T) {
	c := millennium()
	s, err := NewSnapshots(c, []float64{0.25, 0.5, 1})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.InDelta(t, 3, s.RedshiftAt(0), 1e-12)
	assert.InDelta(t, 0, s.RedshiftAt(2), 1e-12)
	assert.Equal(t, 0.0, s.AgeAt(2))
	assert.Greater(t, s.AgeAt(-1), s.AgeAt(0))
	assert.Greater(t, s.AgeAt(0), s.AgeAt(1))

	_, err = NewSnapshots(c, nil)
	assert.Error(t, err)
	_, err = NewSnapshots(c, []float64{0.5, 0})
	assert.Error(t, err)
}
