package phase

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/phdg/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phdg/pkg/errors"
)

// Classifier assigns each point of a grid to its minimum-energy combination
// by tiling the grid into patches whose covering-combination set is constant
// and evaluating each patch densely.
type Classifier struct {
	workers int
	logger  logging.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithWorkers bounds the number of patches evaluated concurrently.  Values
// below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *Classifier) { c.workers = n }
}

// WithLogger sets the logger used for per-patch debug output.
func WithLogger(l logging.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClassifier returns a Classifier with the given options applied.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{workers: 1, logger: logging.NewNopLogger()}
	for _, o := range opts {
		o(c)
	}
	if c.workers < 1 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Classify tiles spec into patches and fills each with the index of its
// minimum-energy combination.  combos is the global combination list; cell
// values index into it.  The result is identical to ClassifyPointwise.
func (c *Classifier) Classify(ctx context.Context, combos []*Combination, spec GridSpec) (*Classification, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCancelled, "classification interrupted")
	}
	out := newClassification(spec, combos)

	pBounds := boundaryIndices(spec.Pressure, combos, func(cb *Combination) Range { return cb.PressureRange() })
	tBounds := boundaryIndices(spec.Temperature, combos, func(cb *Combination) Range { return cb.TemperatureRange() })
	out.PressureBounds = boundaryCoordinates(spec.Pressure, pBounds)
	out.TemperatureBounds = boundaryCoordinates(spec.Temperature, tBounds)
	out.Patches = buildPatches(spec, combos, pBounds, tBounds)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range out.Patches {
		patch := out.Patches[i]
		if patch.P.Len() <= 0 || patch.T.Len() <= 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fillPatch(out, combos, patch)
			c.logger.Debug("patch classified",
				logging.Floats("p", []float64{patch.PressureMin, patch.PressureMax}),
				logging.Floats("t", []float64{patch.TemperatureMin, patch.TemperatureMax}),
				logging.Int("candidates", len(patch.Candidates)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCancelled, "classification interrupted")
	}
	return out, nil
}

// boundaryIndices returns the sorted, de-duplicated grid indices that split
// an axis: 0, the snapped rectangle maximum, the closing edge Count(), and
// every combination bound that snaps strictly inside the grid.
func boundaryIndices(axis Axis, combos []*Combination, rangeOf func(*Combination) Range) []int {
	n := axis.Count()
	set := map[int]struct{}{0: {}, n: {}}
	add := func(x float64) {
		if i := axis.indexAtOrAbove(x); i > 0 && i < n {
			set[i] = struct{}{}
		}
	}
	add(axis.AlignedMax())
	for _, cb := range combos {
		r := rangeOf(cb)
		add(r.Min)
		add(r.Max)
	}
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func boundaryCoordinates(axis Axis, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, v := range idx {
		out[i] = axis.Coordinate(v)
	}
	return out
}

// buildPatches pairs adjacent boundaries on both axes and selects, for each
// patch, the combinations covering its first grid point.  Because every
// combination bound is a boundary, coverage of the first point holds for the
// whole patch.
func buildPatches(spec GridSpec, combos []*Combination, pBounds, tBounds []int) []Patch {
	var patches []Patch
	for a := 0; a+1 < len(pBounds); a++ {
		for b := 0; b+1 < len(tBounds); b++ {
			p := Patch{
				P:              Span{Lo: pBounds[a], Hi: pBounds[a+1]},
				T:              Span{Lo: tBounds[b], Hi: tBounds[b+1]},
				PressureMin:    spec.Pressure.Coordinate(pBounds[a]),
				PressureMax:    spec.Pressure.Coordinate(pBounds[a+1]),
				TemperatureMin: spec.Temperature.Coordinate(tBounds[b]),
				TemperatureMax: spec.Temperature.Coordinate(tBounds[b+1]),
			}
			for gi, cb := range combos {
				if cb.Covers(p.PressureMin, p.TemperatureMin) {
					p.Candidates = append(p.Candidates, gi)
				}
			}
			patches = append(patches, p)
		}
	}
	return patches
}

// fillPatch evaluates every candidate over the patch sub-grid and writes the
// per-cell argmin, remapped to global indices, into out.  Patches cover
// disjoint cells, so concurrent calls never write the same cell.
func fillPatch(out *Classification, combos []*Combination, patch Patch) {
	if len(patch.Candidates) == 0 {
		return // cells are pre-filled with NoCombination
	}
	ps := out.Pressures[patch.P.Lo:patch.P.Hi]
	ts := out.Temperatures[patch.T.Lo:patch.T.Hi]

	energies := make([]*mat.Dense, len(patch.Candidates))
	for local, global := range patch.Candidates {
		energies[local] = combos[global].FreeEnergyGrid(ps, ts)
	}

	for i := range ts {
		for j := range ps {
			v := argmin(energies, i, j)
			if v == nanOrdinal {
				out.set(patch.T.Lo+i, patch.P.Lo+j, Undetermined)
				continue
			}
			out.set(patch.T.Lo+i, patch.P.Lo+j, patch.Global(v))
		}
	}
}

// argmin returns the patch-local ordinal of the smallest energy at (i, j).
// The first candidate wins ties.  It returns -1 when every value is +Inf and
// nanOrdinal when any value is NaN.
func argmin(energies []*mat.Dense, i, j int) int {
	best, bestE := -1, math.Inf(1)
	for k, e := range energies {
		v := e.At(i, j)
		if math.IsNaN(v) {
			return nanOrdinal
		}
		if v < bestE {
			best, bestE = k, v
		}
	}
	return best
}

const nanOrdinal = -2

//Personal.AI order the ending
