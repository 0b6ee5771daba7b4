package phase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/phdg/internal/testutil"
	"github.com/turtacn/phdg/pkg/errors"
)

func combinationNames(combos []*Combination) []string {
	out := make([]string, len(combos))
	for i, c := range combos {
		out[i] = c.Name()
	}
	return out
}

func TestSystem_ScenarioWater(t *testing.T) {
	h2 := mustSubstance(t, "H2", "H2", testutil.ConstTable(0, 10, 0, 100, -1), 1)
	o2 := mustSubstance(t, "O2", "O2", testutil.ConstTable(0, 10, 0, 100, -2), 1)
	h2o := mustSubstance(t, "H2O", "H2O", testutil.ConstTable(0, 10, 0, 100, -5), 1)

	sys, err := NewSystem([]*Substance{h2, o2, h2o}, []Manifest{{{2, "H2"}, {1, "O2"}}})
	require.NoError(t, err)

	combos := sys.FindCombinations()
	require.Len(t, combos, 1)
	assert.Equal(t, Range{Min: 0, Max: 10}, combos[0].PressureRange())
	assert.Equal(t, Range{Min: 0, Max: 100}, combos[0].TemperatureRange())
	assert.Equal(t, "H2 + O2", combos[0].Name())
}

func TestSystem_DisjointPolymorphsStayValid(t *testing.T) {
	low := mustSubstance(t, "low", "X", testutil.ConstTable(0, 5, 0, 100, -1), 1)
	high := mustSubstance(t, "high", "X", testutil.ConstTable(6, 10, 0, 100, -1), 1)
	partner := mustSubstance(t, "partner", "Y", testutil.ConstTable(0, 10, 0, 100, -1), 1)

	sys, err := NewSystem([]*Substance{low, high, partner}, []Manifest{{{1, "X"}, {1, "Y"}}})
	require.NoError(t, err)

	combos := sys.FindCombinations()
	require.Len(t, combos, 2)
	assert.Equal(t, Range{Min: 0, Max: 5}, combos[0].PressureRange())
	assert.Equal(t, Range{Min: 6, Max: 10}, combos[1].PressureRange())
	assert.True(t, combos[1].IsValid())
}

func TestSystem_FiltersDegenerateCombinations(t *testing.T) {
	a := mustSubstance(t, "a", "X", testutil.ConstTable(0, 5, 0, 100, -1), 1)
	b := mustSubstance(t, "b", "Y", testutil.ConstTable(6, 10, 0, 100, -1), 1)
	c := mustSubstance(t, "c", "Y", testutil.ConstTable(0, 10, 200, 300, -1), 1)
	d := mustSubstance(t, "d", "Y", testutil.ConstTable(2, 4, 50, 60, -1), 1)

	sys, err := NewSystem([]*Substance{a, b, c, d}, []Manifest{{{1, "X"}, {1, "Y"}}})
	require.NoError(t, err)

	combos := sys.FindCombinations()
	assert.Equal(t, []string{"a + d"}, combinationNames(combos))
	for _, comb := range combos {
		assert.GreaterOrEqual(t, comb.PressureRange().Max, comb.PressureRange().Min)
		assert.GreaterOrEqual(t, comb.TemperatureRange().Max, comb.TemperatureRange().Min)
	}
}

func TestSystem_EnumerationOrder(t *testing.T) {
	tbl := testutil.ConstTable(0, 10, 0, 100, -1)
	x1 := mustSubstance(t, "x1", "X", tbl, 1)
	y1 := mustSubstance(t, "y1", "Y", tbl, 1)
	x2 := mustSubstance(t, "x2", "X", tbl, 1)
	y2 := mustSubstance(t, "y2", "Y", tbl, 1)
	z := mustSubstance(t, "z", "Z", tbl, 1)

	sys, err := NewSystem(
		[]*Substance{x1, y1, x2, y2, z},
		[]Manifest{
			{{1, "X"}, {2, "Y"}},
			{{1, "Z"}},
			{{1, "Y"}, {1, "Z"}},
		})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"x1 + y1", "x1 + y2", "x2 + y1", "x2 + y2",
		"z",
		"y1 + z", "y2 + z",
	}, combinationNames(sys.FindCombinations()))

	assert.Equal(t, []*Substance{x1, x2}, sys.SubstancesOfType("X"))
	assert.Empty(t, sys.SubstancesOfType("W"))
}

func TestSystem_FindCombinationsIsIdempotent(t *testing.T) {
	tbl := testutil.ConstTable(0, 10, 0, 100, -1)
	var subs []*Substance
	for _, n := range []string{"a", "b", "c"} {
		subs = append(subs, mustSubstance(t, n, "X", tbl, 1))
	}
	subs = append(subs, mustSubstance(t, "w", "W", testutil.ConstTable(3, 7, 0, 50, -1), 2))

	sys, err := NewSystem(subs, []Manifest{{{1, "X"}, {1, "W"}}, {{2, "X"}}})
	require.NoError(t, err)

	first := sys.FindCombinations()
	second := sys.FindCombinations()
	require.Len(t, first, 6)
	assert.Equal(t, combinationNames(first), combinationNames(second))
	for i := range first {
		assert.Equal(t, first[i].PressureRange(), second[i].PressureRange())
		assert.Equal(t, first[i].TemperatureRange(), second[i].TemperatureRange())
		assert.Equal(t, first[i].Terms(), second[i].Terms())
	}
}

func TestSystem_UnmatchedManifestTypes(t *testing.T) {
	tbl := testutil.ConstTable(0, 10, 0, 100, -1)
	a := mustSubstance(t, "a", "X", tbl, 1)

	sys, err := NewSystem([]*Substance{a}, []Manifest{{{1, "X"}, {1, "Missing"}}, {{1, "X"}}, {{1, "Other"}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, combinationNames(sys.FindCombinations()))
	assert.Equal(t, []string{"Missing", "Other"}, sys.UnmatchedTypes())
}

func TestNewSystem_Validation(t *testing.T) {
	tbl := testutil.ConstTable(0, 10, 0, 100, -1)
	a := mustSubstance(t, "a", "X", tbl, 1)
	aDup := mustSubstance(t, "a", "X", tbl, 2)
	aOtherType := mustSubstance(t, "a", "Y", tbl, 1)

	tests := []struct {
		name       string
		substances []*Substance
		manifests  []Manifest
		code       errors.ErrorCode
	}{
		{name: "nil_substance", substances: []*Substance{a, nil}, code: errors.ErrCodeSubstanceInvalid},
		{name: "duplicate", substances: []*Substance{a, aDup}, code: errors.ErrCodeSubstanceDuplicate},
		{name: "empty_manifest", substances: []*Substance{a}, manifests: []Manifest{{}}, code: errors.ErrCodeManifestInvalid},
		{name: "empty_slot_type", substances: []*Substance{a}, manifests: []Manifest{{{1, ""}}}, code: errors.ErrCodeManifestInvalid},
		{name: "nan_coefficient", substances: []*Substance{a}, manifests: []Manifest{{{math.NaN(), "X"}}}, code: errors.ErrCodeManifestInvalid},
		{name: "inf_coefficient", substances: []*Substance{a}, manifests: []Manifest{{{math.Inf(-1), "X"}}}, code: errors.ErrCodeManifestInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, err := NewSystem(tt.substances, tt.manifests)
			assert.Nil(t, sys)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}

	sys, err := NewSystem([]*Substance{a, aOtherType}, nil)
	require.NoError(t, err)
	assert.Len(t, sys.Substances(), 2)
	assert.Empty(t, sys.FindCombinations())
}

func TestSystem_ManifestsAreCopied(t *testing.T) {
	a := mustSubstance(t, "a", "X", testutil.ConstTable(0, 10, 0, 100, -1), 1)
	m := Manifest{{1, "X"}}
	sys, err := NewSystem([]*Substance{a}, []Manifest{m})
	require.NoError(t, err)

	m[0].Type = "Y"
	assert.Equal(t, "X", sys.Manifests()[0][0].Type)
	assert.Equal(t, "1 X", sys.Manifests()[0].String())
}

//Personal.AI order the ending
