package render

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/turtacn/phdg/internal/domain/phase"
	"github.com/turtacn/phdg/pkg/errors"
)

const (
	pressureLabel    = "P / GPa"
	temperatureLabel = "T / K"
)

// field is a labelled domain rectangle.
type field struct {
	label    string
	pressure phase.Range
	temp     phase.Range
}

// fieldPlot draws each field as a translucent rectangle labelled at its
// top-right and bottom-left corners.
type fieldPlot struct {
	opts   FieldOptions
	colors ColorStrategy
	fields func(sys *phase.System) []field
}

func (p *fieldPlot) Extension() string { return ".png" }

func (p *fieldPlot) Render(ctx context.Context, sys *phase.System, w io.Writer) error {
	if sys == nil {
		return errors.InvalidParam("plot needs a system")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCancelled, "plot interrupted")
	}
	c := NewCanvas(p.opts.Width, p.opts.Height, p.opts.PRange, p.opts.TRange)
	ascent := c.face.Metrics().Ascent.Round()
	for i, f := range p.fields(sys) {
		col := p.colors(i)
		c.FillRect(f.pressure, f.temp, withAlpha(col, 0.1))
		c.StrokeRect(f.pressure, f.temp, withAlpha(col, 0.7))
		if f.label == "" {
			continue
		}
		area := c.PlotArea()
		hi := c.Point(f.pressure.Max, f.temp.Max)
		lo := c.Point(f.pressure.Min, f.temp.Min)
		if hi.In(area.Inset(-1)) {
			c.Text(image.Pt(hi.X-c.TextWidth(f.label)-2, hi.Y+ascent+1), f.label, withAlpha(col, 0.9))
		}
		if lo.In(area.Inset(-1)) {
			c.Text(image.Pt(lo.X+2, lo.Y-3), f.label, withAlpha(col, 0.9))
		}
	}
	c.Axes(pressureLabel, temperatureLabel)
	return c.EncodePNG(w)
}

// SubstanceFieldHandler plots the tabulated domain of every substance.
type SubstanceFieldHandler struct{ fieldPlot }

// NewSubstanceFieldHandler validates opts and returns the handler.
func NewSubstanceFieldHandler(opts FieldOptions) (*SubstanceFieldHandler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &SubstanceFieldHandler{fieldPlot{opts: opts, colors: DefaultPalette(), fields: substanceFields}}, nil
}

func substanceFields(sys *phase.System) []field {
	subs := sys.Substances()
	out := make([]field, len(subs))
	for i, s := range subs {
		out[i] = field{
			label:    fmt.Sprintf("%s (%s)", s.Type(), s.Name()),
			pressure: s.PressureRange(),
			temp:     s.TemperatureRange(),
		}
	}
	return out
}

// CombinationFieldHandler plots the domain of every valid combination.
type CombinationFieldHandler struct{ fieldPlot }

// NewCombinationFieldHandler validates opts and returns the handler.
func NewCombinationFieldHandler(opts FieldOptions) (*CombinationFieldHandler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &CombinationFieldHandler{fieldPlot{opts: opts, colors: DefaultPalette(), fields: combinationFields}}, nil
}

func combinationFields(sys *phase.System) []field {
	combos := sys.FindCombinations()
	out := make([]field, len(combos))
	for i, c := range combos {
		out[i] = field{
			label:    c.Name(),
			pressure: c.PressureRange(),
			temp:     c.TemperatureRange(),
		}
	}
	return out
}

//Personal.AI order the ending
