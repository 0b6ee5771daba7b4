package phase

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Term is one (coefficient, substance) member of a Combination.  The
// substance is owned by the System; a Term only refers to it.
type Term struct {
	Coefficient float64
	Substance   *Substance
}

// Combination is a weighted set of substances forming one candidate product
// of a reaction.  Its valid domain is the intersection of its members'
// domains.
type Combination struct {
	terms       []Term
	pressure    Range
	temperature Range
}

// NewCombination builds a Combination and derives its domain.  A combination
// with no terms has an invalid domain.
func NewCombination(terms []Term) *Combination {
	c := &Combination{terms: append([]Term(nil), terms...)}
	if len(c.terms) == 0 {
		c.pressure = Range{Min: math.Inf(1), Max: math.Inf(-1)}
		c.temperature = c.pressure
		return c
	}
	c.pressure, c.temperature = unboundedRange, unboundedRange
	for _, t := range c.terms {
		c.pressure = c.pressure.Intersect(t.Substance.PressureRange())
		c.temperature = c.temperature.Intersect(t.Substance.TemperatureRange())
	}
	return c
}

// Terms returns a copy of the combination's members in manifest order.
func (c *Combination) Terms() []Term { return append([]Term(nil), c.terms...) }

// PressureRange returns [max of member minima, min of member maxima].
func (c *Combination) PressureRange() Range { return c.pressure }

// TemperatureRange returns the temperature analogue of PressureRange.
func (c *Combination) TemperatureRange() Range { return c.temperature }

// IsValid reports whether both derived ranges are non-degenerate.
func (c *Combination) IsValid() bool {
	return c.pressure.Valid() && c.temperature.Valid()
}

// Covers reports whether (p, t) lies in the combination's domain under the
// half-open convention pmin ≤ p < pmax, tmin ≤ t < tmax.
func (c *Combination) Covers(p, t float64) bool {
	return c.pressure.Contains(p) && c.temperature.Contains(t)
}

// FreeEnergy returns the total free energy at (p, t), or +Inf when the point
// is outside the combination's domain.
func (c *Combination) FreeEnergy(p, t float64) float64 {
	if !c.Covers(p, t) {
		return math.Inf(1)
	}
	return c.FreeEnergyUnchecked(p, t)
}

// FreeEnergyUnchecked returns Σ coefficient × substance energy at (p, t)
// without a domain check.  Outside the domain the value is an edge-clamped
// table lookup with no physical meaning.
func (c *Combination) FreeEnergyUnchecked(p, t float64) float64 {
	var g float64
	for _, term := range c.terms {
		g += term.Coefficient * term.Substance.FreeEnergy(p, t)
	}
	return g
}

// FreeEnergyGrid is the vectorised FreeEnergyUnchecked over the outer
// product of ps and ts (len(ts) rows, len(ps) columns).
func (c *Combination) FreeEnergyGrid(ps, ts []float64) *mat.Dense {
	if len(ps) == 0 || len(ts) == 0 {
		return &mat.Dense{}
	}
	acc := mat.NewDense(len(ts), len(ps), nil)
	var scaled mat.Dense
	for _, term := range c.terms {
		scaled.Scale(term.Coefficient, term.Substance.FreeEnergyGrid(ps, ts))
		acc.Add(acc, &scaled)
	}
	return acc
}

// Name joins the member substance names with " + ", as used in legends.
func (c *Combination) Name() string {
	names := make([]string, len(c.terms))
	for i, t := range c.terms {
		names[i] = t.Substance.Name()
	}
	return strings.Join(names, " + ")
}

// Formula renders the combination with its coefficients, e.g. "1 Cor + 1 Ice VII".
func (c *Combination) Formula() string {
	parts := make([]string, len(c.terms))
	for i, t := range c.terms {
		parts[i] = fmt.Sprintf("%g %s", t.Coefficient, t.Substance.Name())
	}
	return strings.Join(parts, " + ")
}

func (c *Combination) String() string {
	parts := make([]string, len(c.terms))
	for i, t := range c.terms {
		parts[i] = fmt.Sprintf("(%g, %s)", t.Coefficient, t.Substance)
	}
	return "Combination [" + strings.Join(parts, ", ") + "]"
}

//Personal.AI order the ending
