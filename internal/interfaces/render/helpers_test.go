package render

import (
	"context"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/phdg/internal/application/diagram"
	"github.com/turtacn/phdg/internal/domain/phase"
	"github.com/turtacn/phdg/internal/testutil"
)

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

// twoRegionSystem has "wide" over P [0,10] at -1 and "narrow" over P [5,10]
// at -2, both over T [0,100] and of the same type.
func twoRegionSystem(t *testing.T) *phase.System {
	t.Helper()
	wide, err := phase.NewSubstance("wide", "X", testutil.ConstTable(0, 10, 0, 100, -1), 1)
	require.NoError(t, err)
	narrow, err := phase.NewSubstance("narrow", "X", testutil.ConstTable(5, 10, 0, 100, -2), 1)
	require.NoError(t, err)
	sys, err := phase.NewSystem([]*phase.Substance{wide, narrow}, []phase.Manifest{{{Coefficient: 1, Type: "X"}}})
	require.NoError(t, err)
	return sys
}

func testDiagramOptions() PhaseDiagramOptions {
	return PhaseDiagramOptions{
		PRange: phase.Range{Min: 0, Max: 12},
		PStep:  1,
		TRange: phase.Range{Min: 0, Max: 100},
		TStep:  50,
		Colors: FixedColors([]color.RGBA{red, blue}),
		Mode:   diagram.ModePatch,
		Width:  400,
		Height: 300,
	}
}

func newTestClassifier() Classifier {
	return diagram.NewService(nil, nil)
}

// MockClassifier is a mock implementation of Classifier.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, input *diagram.ClassifyInput) (*phase.Classification, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*phase.Classification), args.Error(1)
}

// MockHandler is a mock implementation of Handler.
type MockHandler struct {
	mock.Mock
}

func (m *MockHandler) Extension() string { return ".txt" }

func (m *MockHandler) Render(ctx context.Context, sys *phase.System, w io.Writer) error {
	args := m.Called(ctx, sys, w)
	return args.Error(0)
}

//Personal.AI order the ending
