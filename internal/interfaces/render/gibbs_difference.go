package render

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/turtacn/phdg/internal/domain/phase"
	"github.com/turtacn/phdg/pkg/errors"
)

// GibbsDifferenceHeader is the column layout of the difference table.
var GibbsDifferenceHeader = []string{"combination", "temperature", "pressure", "delta_g"}

// GibbsDifferenceHandler writes, as CSV, the free energy of every combination
// relative to a base combination along pressure, one series per sampled
// temperature inside the combination's domain.
type GibbsDifferenceHandler struct {
	opts GibbsDifferenceOptions
}

// NewGibbsDifferenceHandler validates opts and returns the handler.
func NewGibbsDifferenceHandler(opts GibbsDifferenceOptions) (*GibbsDifferenceHandler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &GibbsDifferenceHandler{opts: opts}, nil
}

func (h *GibbsDifferenceHandler) Extension() string { return ".csv" }

// arange returns lo, lo+step, ... strictly below hi.
func arange(lo, hi, step float64) []float64 {
	n := int(math.Ceil((hi - lo) / step))
	if n <= 0 {
		return nil
	}
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if v := lo + float64(i)*step; v < hi {
			out = append(out, v)
		}
	}
	return out
}

// Combinations returns the combinations whose pressure domain overlaps the
// configured window, in enumeration order.  Base indexes this list.
func (h *GibbsDifferenceHandler) Combinations(sys *phase.System) []*phase.Combination {
	var out []*phase.Combination
	for _, c := range sys.FindCombinations() {
		pr := c.PressureRange()
		if pr.Max < h.opts.PRange.Min || pr.Min > h.opts.PRange.Max {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (h *GibbsDifferenceHandler) Render(ctx context.Context, sys *phase.System, w io.Writer) error {
	if sys == nil {
		return errors.InvalidParam("plot needs a system")
	}
	combos := h.Combinations(sys)
	if len(combos) == 0 {
		return errors.New(errors.ErrCodePlotOptionsInvalid, "no combination overlaps the pressure window")
	}
	if h.opts.Base >= len(combos) {
		return errors.Newf(errors.ErrCodePlotOptionsInvalid,
			"base combination %d out of range, %d combinations overlap the window", h.opts.Base, len(combos))
	}
	base := combos[h.opts.Base]
	temps := arange(h.opts.TRange.Min, h.opts.TRange.Max, h.opts.TStep)

	cw := csv.NewWriter(w)
	if err := cw.Write(GibbsDifferenceHeader); err != nil {
		return errors.Wrap(err, errors.ErrCodePlotWriteFailed, "failed to write csv header")
	}
	for _, c := range combos {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCodeCancelled, "plot interrupted")
		}
		pr, tr := c.PressureRange(), c.TemperatureRange()
		ps := arange(math.Max(pr.Min, h.opts.PRange.Min), math.Min(pr.Max, h.opts.PRange.Max), h.opts.PStep)
		if len(ps) == 0 {
			continue
		}
		name := c.Name()
		for _, t := range temps {
			if t > tr.Max || t < tr.Min {
				continue
			}
			for _, p := range ps {
				dg := c.FreeEnergyUnchecked(p, t) - base.FreeEnergyUnchecked(p, t)
				record := []string{name, formatValue(t), formatValue(p), formatValue(dg)}
				if err := cw.Write(record); err != nil {
					return errors.Wrap(err, errors.ErrCodePlotWriteFailed, "failed to write csv row")
				}
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrCodePlotWriteFailed, "failed to flush csv")
	}
	return nil
}

func formatValue(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

//Personal.AI order the ending
