package phase

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/phdg/internal/domain/gibbs"
	"github.com/turtacn/phdg/internal/testutil"
	"github.com/turtacn/phdg/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func spec(pmin, pmax, pstep, tmin, tmax, tstep float64) GridSpec {
	return GridSpec{
		Pressure:    Axis{Min: pmin, Max: pmax, Step: pstep},
		Temperature: Axis{Min: tmin, Max: tmax, Step: tstep},
	}
}

// twoRegion has c0 over P [0,10) at -1 and c1 over P [5,10) at -2.
func twoRegion(t *testing.T) []*Combination {
	wide := mustSubstance(t, "wide", "X", testutil.ConstTable(0, 10, 0, 100, -1), 1)
	narrow := mustSubstance(t, "narrow", "X", testutil.ConstTable(5, 10, 0, 100, -2), 1)
	sys, err := NewSystem([]*Substance{wide, narrow}, []Manifest{{{1, "X"}}})
	require.NoError(t, err)
	return sys.FindCombinations()
}

func TestClassify_TwoRegions(t *testing.T) {
	combos := twoRegion(t)
	got, err := NewClassifier().Classify(context.Background(), combos, spec(0, 12, 1, 0, 100, 50))
	require.NoError(t, err)

	require.Equal(t, 2, got.Rows())
	require.Equal(t, 12, got.Cols())
	want := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, NoCombination, NoCombination}
	assert.Equal(t, want, got.Row(0))
	assert.Equal(t, want, got.Row(1))

	assert.Equal(t, []float64{0, 5, 10, 12}, got.PressureBounds)
	assert.Equal(t, []float64{0, 100}, got.TemperatureBounds)
	require.Len(t, got.Patches, 3)
	assert.Equal(t, []int{0}, got.Patches[0].Candidates)
	assert.Equal(t, []int{0, 1}, got.Patches[1].Candidates)
	assert.Empty(t, got.Patches[2].Candidates)

	assert.Equal(t, map[int]int{0: 10, 1: 10, NoCombination: 4}, got.Counts())
	assert.Equal(t, []int{0, 1}, got.Present())
	assert.Same(t, combos[1], got.Combination(1))
	assert.Nil(t, got.Combination(NoCombination))
}

func TestClassify_CellCountRoundsUp(t *testing.T) {
	combos := twoRegion(t)
	got, err := NewClassifier().Classify(context.Background(), combos, spec(0, 10, 3, 0, 100, 30))
	require.NoError(t, err)
	assert.Equal(t, 4, got.Cols())
	assert.Equal(t, 4, got.Rows())
	assert.Len(t, got.Cells(), 16)
}

func TestClassify_NoCombinations(t *testing.T) {
	a := mustSubstance(t, "a", "X", testutil.ConstTable(0, 5, 0, 100, -1), 1)
	b := mustSubstance(t, "b", "Y", testutil.ConstTable(6, 10, 0, 100, -1), 1)
	sys, err := NewSystem([]*Substance{a, b}, []Manifest{{{1, "X"}, {1, "Y"}}})
	require.NoError(t, err)
	combos := sys.FindCombinations()
	require.Empty(t, combos)

	got, err := NewClassifier().Classify(context.Background(), combos, spec(-5, 300, 5, 0, 3000, 30))
	require.NoError(t, err)
	assert.Equal(t, 61, got.Cols())
	assert.Equal(t, 100, got.Rows())
	assert.Equal(t, map[int]int{NoCombination: 61 * 100}, got.Counts())
	assert.Empty(t, got.Present())
}

func TestClassify_TieKeepsFirstCandidate(t *testing.T) {
	tbl := testutil.ConstTable(0, 10, 0, 100, -3)
	a := mustSubstance(t, "a", "X", tbl, 1)
	b := mustSubstance(t, "b", "X", tbl, 1)
	sys, err := NewSystem([]*Substance{a, b}, []Manifest{{{1, "X"}}})
	require.NoError(t, err)

	got, err := NewClassifier().Classify(context.Background(), sys.FindCombinations(), spec(0, 10, 2, 0, 100, 25))
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 20}, got.Counts())
}

func TestClassify_NaNPropagates(t *testing.T) {
	// t ≤ 50 and p > 5 look up the NaN cell.
	vals := mat.NewDense(2, 2, []float64{1, math.NaN(), 1, 1})
	nanTable, err := gibbs.NewTable([]float64{0, 10}, []float64{0, 100}, vals)
	require.NoError(t, err)

	holey := mustSubstance(t, "holey", "X", nanTable, 1)
	low := mustSubstance(t, "low", "X", testutil.ConstTable(0, 10, 0, 100, -50), 1)
	sys, err := NewSystem([]*Substance{holey, low}, []Manifest{{{1, "X"}}})
	require.NoError(t, err)
	combos := sys.FindCombinations()

	s := spec(0, 10, 1, 0, 100, 25)
	got, err := NewClassifier().Classify(context.Background(), combos, s)
	require.NoError(t, err)
	ref, err := ClassifyPointwise(context.Background(), combos, s)
	require.NoError(t, err)
	assert.Equal(t, ref.Cells(), got.Cells())

	for ti, temp := range got.Temperatures {
		for pi, p := range got.Pressures {
			if temp <= 50 && p > 5 {
				assert.Equal(t, Undetermined, got.At(ti, pi), "p=%g t=%g", p, temp)
			} else {
				assert.Equal(t, 1, got.At(ti, pi), "p=%g t=%g", p, temp)
			}
		}
	}
}

func TestClassify_InvalidSpec(t *testing.T) {
	_, err := NewClassifier().Classify(context.Background(), nil, spec(0, 10, 0, 0, 10, 1))
	assert.True(t, errors.IsCode(err, errors.ErrCodeGridSpecInvalid))

	_, err = ClassifyPointwise(context.Background(), nil, spec(10, 0, 1, 0, 10, 1))
	assert.True(t, errors.IsCode(err, errors.ErrCodeGridSpecInvalid))
}

func TestClassify_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClassifier(WithWorkers(4)).Classify(ctx, twoRegion(t), spec(0, 12, 1, 0, 100, 10))
	assert.True(t, errors.IsCode(err, errors.ErrCodeCancelled))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = ClassifyPointwise(ctx, twoRegion(t), spec(0, 12, 1, 0, 100, 10))
	assert.True(t, errors.IsCode(err, errors.ErrCodeCancelled))
}

func TestClassify_LogsPatches(t *testing.T) {
	logger := testutil.NewMockLogger()
	_, err := NewClassifier(WithLogger(logger)).Classify(context.Background(), twoRegion(t), spec(0, 12, 1, 0, 100, 50))
	require.NoError(t, err)

	n := 0
	for _, m := range logger.GetMessages() {
		if m.Message == "patch classified" {
			n++
		}
	}
	assert.Equal(t, 3, n)
}

// ─────────────────────────────────────────────────────────────────────────────
// Equivalence with the pointwise reference
// ─────────────────────────────────────────────────────────────────────────────

// polymorphs builds a small aluminium-water style system whose domains
// overlap partially on both axes and whose bounds are not step multiples.
func polymorphs(t *testing.T) []*Combination {
	t.Helper()
	mk := func(name, kind string, ps, ts []float64, a, bp, bt, fu float64) *Substance {
		return mustSubstance(t, name, kind, testutil.LinearTable(ps, ts, a, bp, bt), fu)
	}
	subs := []*Substance{
		mk("cor", "Al2O3", []float64{0, 5, 10}, []float64{0, 50, 100}, -10, 0.30, -0.020, 1),
		mk("dsp", "AlOOH", []float64{3, 8, 13}, []float64{20, 70, 120}, -12, 0.10, 0.010, 2),
		mk("gbs", "AlOOH", []float64{-2, 2.5, 7.3}, []float64{-10, 40, 90}, -11, -0.20, 0.015, 2),
		mk("ice", "H2O", []float64{0, 6, 12}, []float64{0, 60, 120}, -3, 0.05, -0.030, 1),
		mk("liq", "H2O", []float64{1.1, 9.9}, []float64{33.3, 140}, -2, -0.15, -0.010, 1),
	}
	sys, err := NewSystem(subs, []Manifest{
		{{1, "AlOOH"}},
		{{0.5, "Al2O3"}, {0.5, "H2O"}},
		{{1, "Al2O3"}, {1, "H2O"}},
	})
	require.NoError(t, err)
	combos := sys.FindCombinations()
	require.NotEmpty(t, combos)
	return combos
}

func TestClassify_SmallSystemMatchesPointwise(t *testing.T) {
	a := mustSubstance(t, "a", "X",
		testutil.LinearTable([]float64{0, 5, 10}, []float64{0, 50, 100}, -10, 0.3, -0.02), 1)
	b := mustSubstance(t, "b", "X",
		testutil.LinearTable([]float64{3, 8, 13}, []float64{20, 70, 120}, -12, 0.1, 0.01), 1)
	sys, err := NewSystem([]*Substance{a, b}, []Manifest{{{1, "X"}}})
	require.NoError(t, err)
	combos := sys.FindCombinations()
	require.Len(t, combos, 2)

	s := spec(-2, 15, 1, -10, 130, 10)
	got, err := NewClassifier().Classify(context.Background(), combos, s)
	require.NoError(t, err)
	ref, err := ClassifyPointwise(context.Background(), combos, s)
	require.NoError(t, err)
	assert.Equal(t, ref.Cells(), got.Cells())
	assert.Contains(t, got.Counts(), 0)
	assert.Contains(t, got.Counts(), 1)
	assert.Contains(t, got.Counts(), NoCombination)
}

func TestClassify_MatchesPointwiseAcrossGrids(t *testing.T) {
	combos := polymorphs(t)
	specs := []GridSpec{
		// coordinates land exactly on integer domain bounds
		spec(-3, 15, 1, -20, 150, 10),
		spec(-3, 15, 0.5, -20, 150, 5),
		// decimal steps with rounding noise
		spec(0, 13, 0.1, 0, 140, 3.3),
		spec(-2.3, 15.1, 0.7, -11.1, 141.7, 6.9),
		// coarse steps that skip whole domains
		spec(-5, 300, 5, 0, 3000, 30),
		// misaligned minimum
		spec(1.05, 12.95, 0.35, 17, 133, 2.2),
		// single cell
		spec(4, 4.5, 1, 50, 51, 10),
		// empty axis
		spec(4, 4, 1, 0, 100, 10),
	}
	for i, s := range specs {
		t.Run(fmt.Sprintf("grid_%d", i), func(t *testing.T) {
			ref, err := ClassifyPointwise(context.Background(), combos, s)
			require.NoError(t, err)
			for _, workers := range []int{1, 4} {
				got, err := NewClassifier(WithWorkers(workers)).Classify(context.Background(), combos, s)
				require.NoError(t, err)
				assert.Equal(t, ref.Pressures, got.Pressures)
				assert.Equal(t, ref.Temperatures, got.Temperatures)
				assert.Equal(t, ref.Cells(), got.Cells(), "workers=%d", workers)
			}
		})
	}
}

// randomAxis returns n strictly increasing samples starting in [lo, lo+span/4)
// with gaps of up to span/n.
func randomAxis(rng *rand.Rand, lo, span float64, n int) []float64 {
	out := make([]float64, n)
	out[0] = lo + rng.Float64()*span/4
	for i := 1; i < n; i++ {
		out[i] = out[i-1] + (0.05+rng.Float64())*span/float64(n)
	}
	return out
}

// randomSystem builds two types with two substances each over linear tables
// whose domains start and end at arbitrary fractional coordinates.
func randomSystem(t *testing.T, rng *rand.Rand) []*Combination {
	var subs []*Substance
	for _, kind := range []string{"X", "Y"} {
		for k := 0; k < 2; k++ {
			table := testutil.LinearTable(
				randomAxis(rng, -1.5, 6, 3),
				randomAxis(rng, -10, 340, 4),
				-20+10*rng.Float64(), rng.NormFloat64(), 0.05*rng.NormFloat64())
			subs = append(subs, mustSubstance(t, fmt.Sprintf("%s%d", kind, k), kind, table, 1+rng.Float64()))
		}
	}
	sys, err := NewSystem(subs, []Manifest{{{1, "X"}, {1, "Y"}}, {{2, "X"}}})
	require.NoError(t, err)
	return sys.FindCombinations()
}

func TestClassify_MatchesPointwiseOnRandomSystems(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := spec(-1.03, 4.1, 0.1, -7, 320, 7.3)
	clf := NewClassifier(WithWorkers(4))
	for i := 0; i < 200; i++ {
		combos := randomSystem(t, rng)
		ref, err := ClassifyPointwise(context.Background(), combos, s)
		require.NoError(t, err)
		got, err := clf.Classify(context.Background(), combos, s)
		require.NoError(t, err)
		require.Equal(t, ref.Cells(), got.Cells(), "system %d", i)
	}
}

func TestClassify_PatchesTileGrid(t *testing.T) {
	combos := polymorphs(t)
	got, err := NewClassifier(WithWorkers(0)).Classify(context.Background(), combos, spec(-3, 15, 0.5, -20, 150, 5))
	require.NoError(t, err)

	covered := make([]int, got.Rows()*got.Cols())
	for _, p := range got.Patches {
		assert.Greater(t, p.P.Len(), 0)
		assert.Greater(t, p.T.Len(), 0)
		for ti := p.T.Lo; ti < p.T.Hi; ti++ {
			for pi := p.P.Lo; pi < p.P.Hi; pi++ {
				covered[ti*got.Cols()+pi]++
				// every candidate covers every point of its patch
				for _, gi := range p.Candidates {
					assert.True(t, combos[gi].Covers(got.Pressures[pi], got.Temperatures[ti]))
				}
			}
		}
		for i := 1; i < len(p.Candidates); i++ {
			assert.Less(t, p.Candidates[i-1], p.Candidates[i])
		}
	}
	for i, n := range covered {
		assert.Equal(t, 1, n, "cell %d", i)
	}
	assert.IsIncreasing(t, got.PressureBounds)
	assert.IsIncreasing(t, got.TemperatureBounds)
}

//Personal.AI order the ending
