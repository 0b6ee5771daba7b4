package testutil

import (
	"math"

	"github.com/turtacn/phdg/internal/domain/gibbs"
	"gonum.org/v1/gonum/mat"
)

// ConstTable returns a two-by-two table spanning [pmin, pmax] × [tmin, tmax]
// whose every value is g.
func ConstTable(pmin, pmax, tmin, tmax, g float64) *gibbs.Table {
	v := mat.NewDense(2, 2, []float64{g, g, g, g})
	t, err := gibbs.NewTable([]float64{pmin, pmax}, []float64{tmin, tmax}, v)
	if err != nil {
		panic(err)
	}
	return t
}

// LinearTable returns a table over the given axes whose value at (p, t) is
// a + bp*p + bt*t.
func LinearTable(ps, ts []float64, a, bp, bt float64) *gibbs.Table {
	v := mat.NewDense(len(ts), len(ps), nil)
	for i, t := range ts {
		for j, p := range ps {
			v.Set(i, j, a+bp*p+bt*t)
		}
	}
	t, err := gibbs.NewTable(ps, ts, v)
	if err != nil {
		panic(err)
	}
	return t
}

// Steps returns lo, lo+step, ... up to and including hi.
func Steps(lo, hi, step float64) []float64 {
	n := int(math.Floor((hi-lo)/step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// TableText renders a table in the whitespace text format.
const TableText = `P/T 0 5 10
0 -10 -11 -12
50 -20 -21 -22
100 -30 -31 -32
`

//Personal.AI order the ending
