package phase

import (
	"math"
	"sort"

	"github.com/turtacn/phdg/pkg/errors"
)

// Sentinel classification values.  Valid cells hold a non-negative index into
// the combination list.
const (
	// NoCombination marks a cell covered by no combination's domain, or whose
	// covering candidates all evaluate to +Inf.
	NoCombination = -1

	// Undetermined marks a cell where a covering candidate's free energy is
	// NaN; NaN is never treated as a minimum or a maximum.
	Undetermined = -2
)

// snapTolerance absorbs floating-point noise when snapping to step
// multiples, so that 0.3/0.1 counts as 3 steps rather than 4.
const snapTolerance = 1e-9

func ceilSnap(x float64) float64 {
	return math.Ceil(x - snapTolerance*math.Max(1, math.Abs(x)))
}

// Axis is one dimension of a requested classification grid.
type Axis struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Validate checks that the axis is finite, ordered and has a positive step.
func (a Axis) Validate(name string) error {
	for _, v := range []float64{a.Min, a.Max, a.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrCodeGridSpecInvalid, "%s axis has a non-finite bound", name)
		}
	}
	if !(a.Step > 0) {
		return errors.Newf(errors.ErrCodeGridSpecInvalid, "%s step must be positive, got %g", name, a.Step)
	}
	if a.Max < a.Min {
		return errors.Newf(errors.ErrCodeGridSpecInvalid, "%s max %g is below min %g", name, a.Max, a.Min)
	}
	return nil
}

// origin is the step multiple of the first grid coordinate.
func (a Axis) origin() float64 { return ceilSnap(a.Min / a.Step) }

// Count is the number of grid cells, ceil((Max-Min)/Step).
func (a Axis) Count() int {
	n := ceilSnap((a.Max - a.Min) / a.Step)
	if n < 0 {
		return 0
	}
	return int(n)
}

// Coordinate returns the i-th grid coordinate: the snapped minimum plus i
// steps.  i may equal Count(), which is the closing edge of the last cell.
func (a Axis) Coordinate(i int) float64 {
	return (a.origin() + float64(i)) * a.Step
}

// Coordinates returns the Count() grid coordinates.
func (a Axis) Coordinates() []float64 {
	out := make([]float64, a.Count())
	for i := range out {
		out[i] = a.Coordinate(i)
	}
	return out
}

// AlignedMin is Min snapped up to a step multiple.
func (a Axis) AlignedMin() float64 { return a.Coordinate(0) }

// AlignedMax is Max snapped up to a step multiple.
func (a Axis) AlignedMax() float64 { return ceilSnap(a.Max/a.Step) * a.Step }

// indexAtOrAbove returns the first grid index whose coordinate is ≥ x, or
// Count() when there is none.  This is x snapped up to the grid, computed on
// the same coordinates the classifier evaluates.
func (a Axis) indexAtOrAbove(x float64) int {
	n := a.Count()
	return sort.Search(n, func(i int) bool { return a.Coordinate(i) >= x })
}

// GridSpec is a rectangular (P, T) classification grid.
type GridSpec struct {
	Pressure    Axis `json:"pressure"`
	Temperature Axis `json:"temperature"`
}

// Validate checks both axes.
func (g GridSpec) Validate() error {
	if err := g.Pressure.Validate("pressure"); err != nil {
		return err
	}
	return g.Temperature.Validate("temperature")
}

// Span is a half-open range of grid indices [Lo, Hi).
type Span struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Len returns Hi-Lo.
func (s Span) Len() int { return s.Hi - s.Lo }

// Patch is an axis-aligned block of the grid within which the set of
// covering combinations is constant.
type Patch struct {
	P Span `json:"p"`
	T Span `json:"t"`

	// PressureMin/Max and TemperatureMin/Max are the boundary coordinates of
	// the patch; the max values are exclusive.
	PressureMin    float64 `json:"pressure_min"`
	PressureMax    float64 `json:"pressure_max"`
	TemperatureMin float64 `json:"temperature_min"`
	TemperatureMax float64 `json:"temperature_max"`

	// Candidates maps a patch-local ordinal to its global combination index.
	Candidates []int `json:"candidates"`
}

// Global translates a patch-local candidate ordinal to the global
// combination index.  Out-of-range ordinals map to NoCombination.
func (p Patch) Global(local int) int {
	if local < 0 || local >= len(p.Candidates) {
		return NoCombination
	}
	return p.Candidates[local]
}

// Classification is the result of classifying a grid.  Cells are stored
// row-major with temperature as the row and pressure as the column.
type Classification struct {
	RunID string   `json:"run_id,omitempty"`
	Spec  GridSpec `json:"spec"`

	Pressures    []float64 `json:"pressures"`
	Temperatures []float64 `json:"temperatures"`

	// PressureBounds and TemperatureBounds are the sorted patch boundary
	// coordinates, including the closing edge one step past the last cell.
	PressureBounds    []float64 `json:"pressure_bounds"`
	TemperatureBounds []float64 `json:"temperature_bounds"`

	Patches      []Patch        `json:"patches"`
	Combinations []*Combination `json:"-"`

	cells []int
}

func newClassification(spec GridSpec, combos []*Combination) *Classification {
	c := &Classification{
		Spec:         spec,
		Pressures:    spec.Pressure.Coordinates(),
		Temperatures: spec.Temperature.Coordinates(),
		Combinations: append([]*Combination(nil), combos...),
	}
	c.cells = make([]int, len(c.Pressures)*len(c.Temperatures))
	for i := range c.cells {
		c.cells[i] = NoCombination
	}
	return c
}

// Rows is the number of temperature samples.
func (c *Classification) Rows() int { return len(c.Temperatures) }

// Cols is the number of pressure samples.
func (c *Classification) Cols() int { return len(c.Pressures) }

// At returns the classification at temperature index ti and pressure index pi.
func (c *Classification) At(ti, pi int) int { return c.cells[ti*len(c.Pressures)+pi] }

func (c *Classification) set(ti, pi, v int) { c.cells[ti*len(c.Pressures)+pi] = v }

// Row returns a copy of one temperature row.
func (c *Classification) Row(ti int) []int {
	cols := len(c.Pressures)
	return append([]int(nil), c.cells[ti*cols:(ti+1)*cols]...)
}

// Cells returns a copy of the row-major cell values.
func (c *Classification) Cells() []int { return append([]int(nil), c.cells...) }

// Counts returns the number of cells per value, sentinels included.
func (c *Classification) Counts() map[int]int {
	out := make(map[int]int)
	for _, v := range c.cells {
		out[v]++
	}
	return out
}

// Present returns the combination indices that occur in the grid, ascending.
func (c *Classification) Present() []int {
	seen := make([]bool, len(c.Combinations))
	for _, v := range c.cells {
		if v >= 0 && v < len(seen) {
			seen[v] = true
		}
	}
	var out []int
	for i, ok := range seen {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// Combination returns the combination for a cell value, or nil for sentinels.
func (c *Classification) Combination(v int) *Combination {
	if v < 0 || v >= len(c.Combinations) {
		return nil
	}
	return c.Combinations[v]
}

//Personal.AI order the ending
