package cosmo

import (
	"fmt"
)

// Snapshots is the time table of a simulation: the scale factor, redshift,
// and time-to-present of every snapshot.
type Snapshots struct {
	A, Z, Age []float64

	// startAge is the age used for snapshot -1, which galaxies created in
	// the first snapshot start out in.
	startAge float64
}

// NewSnapshots computes redshifts and ages for the given scale factors.
func NewSnapshots(c *Cosmology, scales []float64) (*Snapshots, error) {
	if len(scales) == 0 {
		return nil, fmt.Errorf("Empty snapshot list.")
	}

	s := &Snapshots{
		A:   make([]float64, len(scales)),
		Z:   make([]float64, len(scales)),
		Age: make([]float64, len(scales)),
	}

	for i, a := range scales {
		if a <= 0 {
			return nil, fmt.Errorf(
				"Snapshot %d has non-positive scale factor %g.", i, a,
			)
		}
		s.A[i] = a
		s.Z[i] = 1/a - 1
		s.Age[i] = c.TimeToPresent(s.Z[i])
	}
	s.startAge = c.TimeToPresent(startZ)

	return s, nil
}

// Len returns the number of snapshots.
func (s *Snapshots) Len() int { return len(s.A) }

// AgeAt returns the time to present at the given snapshot. Snapshot -1 is
// valid and refers to the beginning of the simulation.
func (s *Snapshots) AgeAt(snap int) float64 {
	if snap == -1 {
		return s.startAge
	}
	return s.Age[snap]
}

// RedshiftAt returns the redshift of the given snapshot.
func (s *Snapshots) RedshiftAt(snap int) float64 { return s.Z[snap] }
