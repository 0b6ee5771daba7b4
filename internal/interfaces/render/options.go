package render

import (
	"math"

	"github.com/turtacn/phdg/internal/application/diagram"
	"github.com/turtacn/phdg/internal/config"
	"github.com/turtacn/phdg/internal/domain/phase"
	"github.com/turtacn/phdg/pkg/errors"
)

// Smallest canvas that leaves room for axes and labels.
const (
	MinWidth  = 160
	MinHeight = 120
)

// FieldOptions configures the substance and combination field plots.
type FieldOptions struct {
	PRange phase.Range // default −5..500 GPa
	TRange phase.Range // default 0..3000 K
	Width  int
	Height int
}

// GibbsDifferenceOptions configures the free-energy difference table.  Each
// combination's series is reported relative to the combination at Base.
type GibbsDifferenceOptions struct {
	PRange phase.Range // default −5..500
	TRange phase.Range // default 0..3000
	PStep  float64     // default 1
	TStep  float64     // default 300
	Base   int
}

// PhaseDiagramOptions configures the classified phase-diagram raster.
type PhaseDiagramOptions struct {
	PRange phase.Range // default −5..300
	PStep  float64     // default 5
	TRange phase.Range // default 0..3000
	TStep  float64     // default 30

	Colors           ColorStrategy
	BoundaryLine     bool
	HighlightOverlay bool    // default on
	HighlightAlpha   float64 // default 0.5
	Mode             diagram.Mode

	Width  int
	Height int
}

// DefaultFieldOptions returns the field-plot defaults.
func DefaultFieldOptions() FieldOptions {
	return FieldOptionsFromConfig(config.FieldPlotConfig{})
}

// DefaultGibbsDifferenceOptions returns the difference-table defaults.
func DefaultGibbsDifferenceOptions() GibbsDifferenceOptions {
	return GibbsDifferenceOptionsFromConfig(config.GibbsDifferencePlotConfig{})
}

// DefaultPhaseDiagramOptions returns the phase-diagram defaults.
func DefaultPhaseDiagramOptions() PhaseDiagramOptions {
	opts, _ := PhaseDiagramOptionsFromConfig(config.PhaseDiagramPlotConfig{})
	return opts
}

// FieldOptionsFromConfig converts configuration, filling unset values with
// defaults.
func FieldOptionsFromConfig(c config.FieldPlotConfig) FieldOptions {
	cfg := config.Config{Plots: config.PlotsConfig{Fields: c}}
	config.ApplyDefaults(&cfg)
	c = cfg.Plots.Fields
	return FieldOptions{
		PRange: rangeOf(c.PressureRange),
		TRange: rangeOf(c.TemperatureRange),
		Width:  c.Width,
		Height: c.Height,
	}
}

// GibbsDifferenceOptionsFromConfig converts configuration, filling unset
// values with defaults.
func GibbsDifferenceOptionsFromConfig(c config.GibbsDifferencePlotConfig) GibbsDifferenceOptions {
	cfg := config.Config{Plots: config.PlotsConfig{GibbsDifference: c}}
	config.ApplyDefaults(&cfg)
	c = cfg.Plots.GibbsDifference
	return GibbsDifferenceOptions{
		PRange: rangeOf(c.PressureRange),
		TRange: rangeOf(c.TemperatureRange),
		PStep:  c.PressureStep,
		TStep:  c.TemperatureStep,
		Base:   c.Base,
	}
}

// PhaseDiagramOptionsFromConfig converts configuration, filling unset values
// with defaults.  It fails only on an unparseable colour list or mode.
func PhaseDiagramOptionsFromConfig(c config.PhaseDiagramPlotConfig) (PhaseDiagramOptions, error) {
	cfg := config.Config{Plots: config.PlotsConfig{PhaseDiagram: c}}
	config.ApplyDefaults(&cfg)
	c = cfg.Plots.PhaseDiagram

	colors, err := ColorsFromConfig(c.Colors, c.ColorSeed)
	if err != nil {
		return PhaseDiagramOptions{}, err
	}
	mode, err := diagram.ParseMode(c.Mode)
	if err != nil {
		return PhaseDiagramOptions{}, errors.Wrap(err, errors.ErrCodePlotOptionsInvalid, "invalid phase diagram mode")
	}
	return PhaseDiagramOptions{
		PRange:           rangeOf(c.PressureRange),
		PStep:            c.PressureStep,
		TRange:           rangeOf(c.TemperatureRange),
		TStep:            c.TemperatureStep,
		Colors:           colors,
		BoundaryLine:     c.BoundaryLine,
		HighlightOverlay: *c.HighlightOverlay,
		HighlightAlpha:   c.HighlightAlpha,
		Mode:             mode,
		Width:            c.Width,
		Height:           c.Height,
	}, nil
}

// rangeOf maps a [min, max] pair to a Range.  Any other length yields a NaN
// range that fails validation.
func rangeOf(v []float64) phase.Range {
	if len(v) != 2 {
		return phase.Range{Min: math.NaN(), Max: math.NaN()}
	}
	return phase.Range{Min: v[0], Max: v[1]}
}

func invalidOptions(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrCodePlotOptionsInvalid, format, args...)
}

func checkWindow(name string, r phase.Range) error {
	if math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) || !(r.Max > r.Min) {
		return invalidOptions("%s range %v must be finite with max > min", name, r)
	}
	return nil
}

func checkStep(name string, s float64) error {
	if !(s > 0) || math.IsInf(s, 1) {
		return invalidOptions("%s step must be positive and finite, got %g", name, s)
	}
	return nil
}

func checkSize(w, h int) error {
	if w < MinWidth || h < MinHeight {
		return invalidOptions("plot size %dx%d is below the minimum %dx%d", w, h, MinWidth, MinHeight)
	}
	return nil
}

// Validate checks the plot window and canvas size.
func (o FieldOptions) Validate() error {
	if err := checkWindow("pressure", o.PRange); err != nil {
		return err
	}
	if err := checkWindow("temperature", o.TRange); err != nil {
		return err
	}
	return checkSize(o.Width, o.Height)
}

// Validate checks the window and sampling steps.  Base is checked against
// the system at render time.
func (o GibbsDifferenceOptions) Validate() error {
	if err := checkWindow("pressure", o.PRange); err != nil {
		return err
	}
	if err := checkWindow("temperature", o.TRange); err != nil {
		return err
	}
	if err := checkStep("pressure", o.PStep); err != nil {
		return err
	}
	if err := checkStep("temperature", o.TStep); err != nil {
		return err
	}
	if o.Base < 0 {
		return invalidOptions("base combination index must not be negative, got %d", o.Base)
	}
	return nil
}

// Validate checks the grid, overlay and canvas settings.
func (o PhaseDiagramOptions) Validate() error {
	if err := checkWindow("pressure", o.PRange); err != nil {
		return err
	}
	if err := checkWindow("temperature", o.TRange); err != nil {
		return err
	}
	if err := checkStep("pressure", o.PStep); err != nil {
		return err
	}
	if err := checkStep("temperature", o.TStep); err != nil {
		return err
	}
	if !(o.HighlightAlpha >= 0 && o.HighlightAlpha <= 1) {
		return invalidOptions("highlight alpha must be within [0, 1], got %g", o.HighlightAlpha)
	}
	if _, err := diagram.ParseMode(string(o.Mode)); err != nil {
		return invalidOptions("unknown classification mode %q", o.Mode)
	}
	return checkSize(o.Width, o.Height)
}

// Spec is the classification grid the options describe.
func (o PhaseDiagramOptions) Spec() phase.GridSpec {
	return phase.GridSpec{
		Pressure:    phase.Axis{Min: o.PRange.Min, Max: o.PRange.Max, Step: o.PStep},
		Temperature: phase.Axis{Min: o.TRange.Min, Max: o.TRange.Max, Step: o.TStep},
	}
}

//Personal.AI order the ending
