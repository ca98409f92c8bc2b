package model

import (
	"fmt"
)

const (
	// Defaults for the working set.
	DefaultGrowthFactor   = 1.5
	DefaultMinGrowth      = 1000
	DefaultMaxGalaxies    = 1000 * 1000 * 1000
	DefaultWorkingInitial = 1000

	// The permanent galaxy list of a tree holds at most maxGalFactor galaxies
	// per halo, and never fewer than minMaxGals.
	maxGalFactor = 5
	minMaxGals   = 10000
)

// GrowthPolicy decides how the working set grows when it fills up.
type GrowthPolicy struct {
	Factor   float64 // Multiplicative growth factor.
	Min, Max int     // Smallest increment, largest capacity.
}

// DefaultGrowthPolicy returns the policy used unless one is configured.
func DefaultGrowthPolicy() GrowthPolicy {
	return GrowthPolicy{DefaultGrowthFactor, DefaultMinGrowth, DefaultMaxGalaxies}
}

// Next returns the capacity that should follow current. An error is
// returned if current is already at the maximum.
func (p GrowthPolicy) Next(current int) (int, error) {
	if current >= p.Max {
		return current, fmt.Errorf(
			"working set would need to grow past %d galaxies, but the "+
				"maximum is %d", current, p.Max,
		)
	}

	next := int(float64(current) * p.Factor)
	if next-current < p.Min {
		next = current + p.Min
	}
	if next > p.Max {
		next = p.Max
	}
	return next, nil
}

// WorkingSet is the scratch buffer holding the galaxies of the FOF group
// that is currently being joined. Galaxies are always referred to by index:
// growing reallocates the buffer.
type WorkingSet struct {
	gals   []Galaxy
	policy GrowthPolicy
	grows  int
}

// NewWorkingSet creates a working set with the given initial capacity.
func NewWorkingSet(initial int, policy GrowthPolicy) *WorkingSet {
	return &WorkingSet{gals: make([]Galaxy, initial), policy: policy}
}

// Cap returns the number of galaxies the set can hold without growing.
func (ws *WorkingSet) Cap() int { return len(ws.gals) }

// Grows returns the number of times the set has been reallocated.
func (ws *WorkingSet) Grows() int { return ws.grows }

// Reserve makes sure that index i can be written to, growing the set as
// many times as needed. Previously written galaxies are preserved.
func (ws *WorkingSet) Reserve(i int) error {
	if i < len(ws.gals) {
		return nil
	}

	n := len(ws.gals)
	for n <= i {
		next, err := ws.policy.Next(n)
		if err != nil {
			return fmt.Errorf("requested index %d: %w", i, err)
		}
		n = next
	}

	gals := make([]Galaxy, n)
	copy(gals, ws.gals)
	ws.gals = gals
	ws.grows++
	return nil
}
