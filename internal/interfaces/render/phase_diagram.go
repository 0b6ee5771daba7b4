package render

import (
	"context"
	"image/color"
	"io"
	"sync"

	"github.com/turtacn/phdg/internal/application/diagram"
	"github.com/turtacn/phdg/internal/domain/phase"
	"github.com/turtacn/phdg/pkg/errors"
)

// Classifier produces the classification a phase diagram draws.
// diagram.Service satisfies it.
type Classifier interface {
	Classify(ctx context.Context, input *diagram.ClassifyInput) (*phase.Classification, error)
}

// Hook is called with the classification after a phase diagram has been
// written.
type Hook func(ctx context.Context, result *phase.Classification) error

type namedHook struct {
	name string
	fn   Hook
}

// PhaseDiagramHandler classifies the system on the configured grid and draws
// the result as a colour raster.
type PhaseDiagramHandler struct {
	opts PhaseDiagramOptions
	clf  Classifier

	mu    sync.RWMutex
	hooks []namedHook
}

// NewPhaseDiagramHandler validates opts and returns the handler.
func NewPhaseDiagramHandler(opts PhaseDiagramOptions, clf Classifier) (*PhaseDiagramHandler, error) {
	if clf == nil {
		return nil, errors.InvalidParam("phase diagram needs a classifier")
	}
	if opts.Colors == nil {
		opts.Colors = DefaultPalette()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &PhaseDiagramHandler{opts: opts, clf: clf}, nil
}

func (h *PhaseDiagramHandler) Extension() string { return ".png" }

// Options returns the handler's options.
func (h *PhaseDiagramHandler) Options() PhaseDiagramOptions { return h.opts }

// AddHook registers fn under name.  Hooks run in registration order.
func (h *PhaseDiagramHandler) AddHook(name string, fn Hook) error {
	if name == "" || fn == nil {
		return errors.New(errors.ErrCodePlotOptionsInvalid, "hook name and function are required")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, nh := range h.hooks {
		if nh.name == name {
			return errors.Newf(errors.ErrCodeConflict, "hook %q is already registered", name)
		}
	}
	h.hooks = append(h.hooks, namedHook{name: name, fn: fn})
	return nil
}

// RemoveHook unregisters name.  It reports whether the hook existed.
func (h *PhaseDiagramHandler) RemoveHook(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, nh := range h.hooks {
		if nh.name == name {
			h.hooks = append(h.hooks[:i], h.hooks[i+1:]...)
			return true
		}
	}
	return false
}

func (h *PhaseDiagramHandler) Render(ctx context.Context, sys *phase.System, w io.Writer) error {
	if sys == nil {
		return errors.InvalidParam("plot needs a system")
	}
	result, err := h.clf.Classify(ctx, &diagram.ClassifyInput{System: sys, Spec: h.opts.Spec(), Mode: h.opts.Mode})
	if err != nil {
		return err
	}
	if err := h.Draw(result).EncodePNG(w); err != nil {
		return err
	}

	h.mu.RLock()
	hooks := append([]namedHook(nil), h.hooks...)
	h.mu.RUnlock()
	for _, nh := range hooks {
		if err := nh.fn(ctx, result); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "render hook failed").WithDetail(nh.name)
		}
	}
	return nil
}

// window is the data extent of the raster: each cell is centred on its
// grid coordinate.
func (h *PhaseDiagramHandler) window(result *phase.Classification) (phase.Range, phase.Range) {
	x, y := h.opts.PRange, h.opts.TRange
	if n := len(result.Pressures); n > 0 {
		x = phase.Range{Min: result.Pressures[0] - h.opts.PStep/2, Max: result.Pressures[n-1] + h.opts.PStep/2}
	}
	if n := len(result.Temperatures); n > 0 {
		y = phase.Range{Min: result.Temperatures[0] - h.opts.TStep/2, Max: result.Temperatures[n-1] + h.opts.TStep/2}
	}
	return x, y
}

// CellColor is the raster colour of a cell value.  Sentinels are white.
func (h *PhaseDiagramHandler) CellColor(v int) color.RGBA {
	if v < 0 {
		return white
	}
	return h.opts.Colors(v)
}

// Draw renders result onto a new canvas.
func (h *PhaseDiagramHandler) Draw(result *phase.Classification) *Canvas {
	x, y := h.window(result)
	c := NewCanvas(h.opts.Width, h.opts.Height, x, y)
	hp, ht := h.opts.PStep/2, h.opts.TStep/2

	for ti, t := range result.Temperatures {
		tr := phase.Range{Min: t - ht, Max: t + ht}
		for pi, p := range result.Pressures {
			v := result.At(ti, pi)
			if v < 0 {
				continue
			}
			c.FillRect(phase.Range{Min: p - hp, Max: p + hp}, tr, h.CellColor(v))
		}
	}

	if h.opts.HighlightOverlay && h.opts.HighlightAlpha > 0 {
		c.VerticalGradient(x, y, h.opts.HighlightAlpha)
	}

	if h.opts.BoundaryLine {
		line := withAlpha(white, 0.3)
		for _, b := range result.PressureBounds {
			c.VLine(b-hp, line)
		}
		for _, b := range result.TemperatureBounds {
			c.HLine(b-ht, line)
		}
	}

	present := result.Present()
	entries := make([]LegendEntry, 0, len(present))
	for _, v := range present {
		entries = append(entries, LegendEntry{Color: h.CellColor(v), Label: result.Combination(v).Name()})
	}
	c.Legend(entries)
	c.Axes(pressureLabel, temperatureLabel)
	return c
}

//Personal.AI order the ending
