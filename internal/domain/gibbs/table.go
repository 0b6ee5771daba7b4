// Package gibbs holds tabulated Gibbs free-energy surfaces.  A Table is a
// dense matrix of energies indexed by a temperature axis (rows) and a pressure
// axis (columns); lookups snap to the nearest tabulated sample on each axis
// independently and never interpolate.
package gibbs

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/phdg/pkg/errors"
)

// Table is an immutable Gibbs free-energy grid.
type Table struct {
	pressures    []float64
	temperatures []float64
	values       *mat.Dense // rows: temperature, cols: pressure
}

// NewTable validates the axes and wraps values.  Both axes must be non-empty
// and strictly increasing, and values must be len(temperatures) × len(pressures).
// The slices are copied.
func NewTable(pressures, temperatures []float64, values *mat.Dense) (*Table, error) {
	if err := checkAxis("pressure", pressures); err != nil {
		return nil, err
	}
	if err := checkAxis("temperature", temperatures); err != nil {
		return nil, err
	}
	if values == nil {
		return nil, errors.New(errors.ErrCodeTableAxisInvalid, "table values are nil")
	}
	r, c := values.Dims()
	if r != len(temperatures) || c != len(pressures) {
		return nil, errors.Newf(errors.ErrCodeTableAxisInvalid,
			"table is %dx%d but axes are %d temperatures x %d pressures", r, c, len(temperatures), len(pressures))
	}
	return &Table{
		pressures:    append([]float64(nil), pressures...),
		temperatures: append([]float64(nil), temperatures...),
		values:       mat.DenseCopyOf(values),
	}, nil
}

func checkAxis(name string, axis []float64) error {
	if len(axis) == 0 {
		return errors.Newf(errors.ErrCodeTableAxisInvalid, "%s axis is empty", name)
	}
	for i, v := range axis {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrCodeTableAxisInvalid, "%s axis value %d is not finite", name, i)
		}
		if i > 0 && !(v > axis[i-1]) {
			return errors.Newf(errors.ErrCodeTableAxisInvalid,
				"%s axis is not strictly increasing at index %d (%g after %g)", name, i, v, axis[i-1])
		}
	}
	return nil
}

// Pressures returns a copy of the pressure axis.
func (t *Table) Pressures() []float64 { return append([]float64(nil), t.pressures...) }

// Temperatures returns a copy of the temperature axis.
func (t *Table) Temperatures() []float64 { return append([]float64(nil), t.temperatures...) }

// PressureRange returns the bounds of the pressure axis.
func (t *Table) PressureRange() (float64, float64) {
	return floats.Min(t.pressures), floats.Max(t.pressures)
}

// TemperatureRange returns the bounds of the temperature axis.
func (t *Table) TemperatureRange() (float64, float64) {
	return floats.Min(t.temperatures), floats.Max(t.temperatures)
}

// At returns the tabulated value nearest to (p, t).  A NaN coordinate yields
// NaN.
func (t *Table) At(p, temp float64) float64 {
	if math.IsNaN(p) || math.IsNaN(temp) {
		return math.NaN()
	}
	return t.values.At(NearestIndex(t.temperatures, temp), NearestIndex(t.pressures, p))
}

// Grid evaluates the table on the outer product of ps and ts.  The result has
// len(ts) rows and len(ps) columns; an empty input yields an empty matrix.
// Nearest indices are resolved once per axis value rather than once per cell.
func (t *Table) Grid(ps, ts []float64) *mat.Dense {
	if len(ps) == 0 || len(ts) == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(len(ts), len(ps), nil)
	cols := make([]int, len(ps))
	for j, p := range ps {
		cols[j] = -1
		if !math.IsNaN(p) {
			cols[j] = NearestIndex(t.pressures, p)
		}
	}
	for i, temp := range ts {
		row := -1
		if !math.IsNaN(temp) {
			row = NearestIndex(t.temperatures, temp)
		}
		for j, col := range cols {
			if row < 0 || col < 0 {
				out.Set(i, j, math.NaN())
				continue
			}
			out.Set(i, j, t.values.At(row, col))
		}
	}
	return out
}

// NearestIndex returns the index of the sample in the ascending axis closest
// to x.  Equidistant ties resolve to the lower index.  An empty axis is a
// broken table invariant and panics.
func NearestIndex(axis []float64, x float64) int {
	if len(axis) == 0 {
		panic(errors.New(errors.ErrCodeTableAxisInvalid, "nearest-index lookup on an empty axis"))
	}
	i := sort.SearchFloat64s(axis, x)
	switch {
	case i == 0:
		return 0
	case i == len(axis):
		return len(axis) - 1
	case x-axis[i-1] <= axis[i]-x:
		return i - 1
	default:
		return i
	}
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	pmin, pmax := t.PressureRange()
	tmin, tmax := t.TemperatureRange()
	return fmt.Sprintf("Table[P %g..%g (%d), T %g..%g (%d)]",
		pmin, pmax, len(t.pressures), tmin, tmax, len(t.temperatures))
}

//Personal.AI order the ending
