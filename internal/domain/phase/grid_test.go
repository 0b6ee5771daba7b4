package phase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/phdg/pkg/errors"
)

func TestAxis_Count(t *testing.T) {
	tests := []struct {
		name string
		axis Axis
		want int
	}{
		{name: "even", axis: Axis{Min: 0, Max: 10, Step: 5}, want: 2},
		{name: "uneven_rounds_up", axis: Axis{Min: 0, Max: 10, Step: 3}, want: 4},
		{name: "decimal_noise", axis: Axis{Min: 0, Max: 0.3, Step: 0.1}, want: 3},
		{name: "empty", axis: Axis{Min: 5, Max: 5, Step: 1}, want: 0},
		{name: "negative_min", axis: Axis{Min: -5, Max: 300, Step: 5}, want: 61},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.axis.Count())
			assert.Len(t, tt.axis.Coordinates(), tt.want)
		})
	}
}

func TestAxis_Coordinates(t *testing.T) {
	assert.Equal(t, []float64{0, 3, 6, 9}, Axis{Min: 0, Max: 10, Step: 3}.Coordinates())

	// The minimum snaps up to a step multiple.
	a := Axis{Min: -5, Max: 20, Step: 3}
	assert.Equal(t, -3.0, a.AlignedMin())
	assert.Equal(t, 21.0, a.AlignedMax())
	assert.Equal(t, []float64{-3, 0, 3, 6, 9, 12, 15, 18, 21}, a.Coordinates())
}

func TestAxis_IndexAtOrAbove(t *testing.T) {
	a := Axis{Min: 0, Max: 10, Step: 1}
	assert.Equal(t, 0, a.indexAtOrAbove(-1))
	assert.Equal(t, 0, a.indexAtOrAbove(0))
	assert.Equal(t, 3, a.indexAtOrAbove(2.5))
	assert.Equal(t, 3, a.indexAtOrAbove(3))
	assert.Equal(t, 10, a.indexAtOrAbove(9.5))
	assert.Equal(t, 10, a.indexAtOrAbove(100))
}

func TestAxis_Validate(t *testing.T) {
	bad := []Axis{
		{Min: 0, Max: 10, Step: 0},
		{Min: 0, Max: 10, Step: -1},
		{Min: 10, Max: 0, Step: 1},
		{Min: math.NaN(), Max: 10, Step: 1},
		{Min: 0, Max: math.Inf(1), Step: 1},
		{Min: 0, Max: 10, Step: math.NaN()},
	}
	for _, a := range bad {
		err := a.Validate("pressure")
		assert.True(t, errors.IsCode(err, errors.ErrCodeGridSpecInvalid), "axis %+v", a)
	}
	assert.NoError(t, Axis{Min: 0, Max: 0, Step: 1}.Validate("pressure"))
}

func TestPatch_Global(t *testing.T) {
	p := Patch{Candidates: []int{2, 5, 7}}
	assert.Equal(t, 5, p.Global(1))
	assert.Equal(t, NoCombination, p.Global(-1))
	assert.Equal(t, NoCombination, p.Global(3))
	assert.Equal(t, 4, Span{Lo: 3, Hi: 7}.Len())
}

//Personal.AI order the ending
