package phase

import (
	"context"
	"math"

	"github.com/turtacn/phdg/pkg/errors"
)

// ClassifyPointwise evaluates every combination's bounds-checked free energy
// at every grid point and keeps the minimum.  It is the slow reference for
// Classify and produces identical cells.
func ClassifyPointwise(ctx context.Context, combos []*Combination, spec GridSpec) (*Classification, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	out := newClassification(spec, combos)
	for ti, t := range out.Temperatures {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCancelled, "classification interrupted")
		}
		for pi, p := range out.Pressures {
			out.set(ti, pi, pointArgmin(combos, p, t))
		}
	}
	return out, nil
}

func pointArgmin(combos []*Combination, p, t float64) int {
	best, bestE := NoCombination, math.Inf(1)
	for i, cb := range combos {
		e := cb.FreeEnergy(p, t)
		if math.IsNaN(e) {
			return Undetermined
		}
		if e < bestE {
			best, bestE = i, e
		}
	}
	return best
}

//Personal.AI order the ending
