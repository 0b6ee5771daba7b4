// Package phase implements the phase-stability engine: substances with
// tabulated free-energy surfaces, the combinations of substances that a
// stoichiometric manifest admits, and the classifier that assigns every
// point of a (P, T) grid to its minimum-energy combination.
package phase

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/phdg/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Range
// ─────────────────────────────────────────────────────────────────────────────

// Range is a closed interval of pressure or temperature as reported by a
// table.  Coverage tests treat it as half-open, [Min, Max).
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Valid reports whether Max ≥ Min.  A NaN bound is never valid.
func (r Range) Valid() bool { return r.Max >= r.Min }

// Contains reports whether Min ≤ x < Max.
func (r Range) Contains(x float64) bool { return r.Min <= x && x < r.Max }

// Intersect returns the overlap of r and o.  The result may be invalid.
func (r Range) Intersect(o Range) Range {
	return Range{Min: math.Max(r.Min, o.Min), Max: math.Min(r.Max, o.Max)}
}

// Clip returns the part of r that lies within [lo, hi].
func (r Range) Clip(lo, hi float64) Range {
	return r.Intersect(Range{Min: lo, Max: hi})
}

func (r Range) String() string { return fmt.Sprintf("[%g, %g]", r.Min, r.Max) }

// unboundedRange is the identity element of Intersect.
var unboundedRange = Range{Min: math.Inf(-1), Max: math.Inf(1)}

// ─────────────────────────────────────────────────────────────────────────────
// Substance
// ─────────────────────────────────────────────────────────────────────────────

// EnergyTable is the lookup capability a Substance needs from its tabulated
// free-energy surface.  *gibbs.Table satisfies it.
type EnergyTable interface {
	PressureRange() (float64, float64)
	TemperatureRange() (float64, float64)
	At(p, t float64) float64
	Grid(ps, ts []float64) *mat.Dense
}

// Substance is a single phase: a name, a type used for manifest matching,
// a free-energy table and the number of formula units the table is
// tabulated for.  Substances are immutable after construction.
type Substance struct {
	name         string
	kind         string
	table        EnergyTable
	formulaUnits float64
}

// NewSubstance validates its arguments and builds a Substance.
func NewSubstance(name, kind string, table EnergyTable, formulaUnits float64) (*Substance, error) {
	switch {
	case name == "":
		return nil, errors.New(errors.ErrCodeSubstanceInvalid, "substance name is empty")
	case kind == "":
		return nil, errors.New(errors.ErrCodeSubstanceInvalid, "substance type is empty").WithDetail(name)
	case table == nil:
		return nil, errors.New(errors.ErrCodeSubstanceInvalid, "substance has no free-energy table").WithDetail(name)
	case !(formulaUnits > 0) || math.IsInf(formulaUnits, 1):
		return nil, errors.Newf(errors.ErrCodeSubstanceInvalid,
			"formula units must be positive and finite, got %g", formulaUnits).WithDetail(name)
	}
	return &Substance{name: name, kind: kind, table: table, formulaUnits: formulaUnits}, nil
}

// Name returns the substance name, unique within its type.
func (s *Substance) Name() string { return s.name }

// Type returns the chemical category used for manifest matching.
func (s *Substance) Type() string { return s.kind }

// FormulaUnits returns the normalisation divisor applied to table values.
func (s *Substance) FormulaUnits() float64 { return s.formulaUnits }

// PressureRange returns the bounds of the table's pressure axis.
func (s *Substance) PressureRange() Range {
	lo, hi := s.table.PressureRange()
	return Range{Min: lo, Max: hi}
}

// TemperatureRange returns the bounds of the table's temperature axis.
func (s *Substance) TemperatureRange() Range {
	lo, hi := s.table.TemperatureRange()
	return Range{Min: lo, Max: hi}
}

// FreeEnergy returns the nearest tabulated free energy per formula unit.
func (s *Substance) FreeEnergy(p, t float64) float64 {
	return s.table.At(p, t) / s.formulaUnits
}

// FreeEnergyGrid evaluates FreeEnergy on the outer product of ps and ts.  The
// result has len(ts) rows and len(ps) columns.
func (s *Substance) FreeEnergyGrid(ps, ts []float64) *mat.Dense {
	g := s.table.Grid(ps, ts)
	if g.IsEmpty() {
		return g
	}
	// Divide rather than scale by the reciprocal so grid values stay
	// bit-identical to FreeEnergy.
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return v / s.formulaUnits }, g)
	return &out
}

func (s *Substance) String() string {
	return fmt.Sprintf("<Substance %s (%s)>", s.kind, s.name)
}

//Personal.AI order the ending
