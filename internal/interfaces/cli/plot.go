package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/turtacn/phdg/internal/domain/phase"
	"github.com/turtacn/phdg/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phdg/internal/interfaces/render"
	"github.com/turtacn/phdg/pkg/errors"
)

// DumpFile is the classification summary written by plot --dump.
const DumpFile = "phase_diagram.json"

type plotOptions struct {
	dir  string
	dump bool
}

// NewPlotCmd creates the plot command.
func NewPlotCmd() *cobra.Command {
	opts := &plotOptions{}
	cmd := &cobra.Command{
		Use:   "plot [kind...]",
		Short: "Render plots into the output directory",
		Long: "Render the named plot kinds, or all of them when none is given:\n" +
			"  substances, combinations  domain rectangles (PNG)\n" +
			"  gibbs_difference          free energy relative to a base combination (CSV)\n" +
			"  phase_diagram             classified P-T raster (PNG)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return renderOnce(cmd.Context(), cmd, cc, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", "", "output directory (default: plots.output_dir)")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "also write the phase-diagram classification as "+DumpFile)
	return cmd
}

func (o *plotOptions) outputDir(cc *CLIContext) string {
	if o.dir != "" {
		return o.dir
	}
	return cc.Config.Plots.OutputDir
}

// newRegistry builds the plot registry for cc, attaching the dump hook when
// requested.
func newRegistry(cc *CLIContext, dir string, dump bool) (*render.Registry, error) {
	reg, err := render.NewDefaultRegistry(cc.Config.Plots, cc.Service,
		render.WithRegistryLogger(cc.Logger.Named("render")),
		render.WithRegistryMetrics(cc.Metrics))
	if err != nil {
		return nil, err
	}
	if !dump {
		return reg, nil
	}
	h, err := reg.Lookup(render.KindPhaseDiagram)
	if err != nil {
		return nil, err
	}
	pd, ok := h.(*render.PhaseDiagramHandler)
	if !ok {
		return nil, errors.Internal("phase diagram handler has unexpected type")
	}
	mode := pd.Options().Mode
	err = pd.AddHook("dump", func(_ context.Context, r *phase.Classification) error {
		return writeJSON(filepath.Join(dir, DumpFile), summarize(r, mode, true))
	})
	return reg, err
}

// renderPlots renders kinds (all registered kinds when empty) and returns the
// files written.
func renderPlots(ctx context.Context, cc *CLIContext, sys *phase.System, kinds []string, opts *plotOptions) ([]string, error) {
	dir := opts.outputDir(cc)
	reg, err := newRegistry(cc, dir, opts.dump)
	if err != nil {
		return nil, err
	}
	selected := reg.Kinds()
	if len(kinds) > 0 {
		selected = make([]render.Kind, len(kinds))
		for i, k := range kinds {
			selected[i] = render.Kind(k)
			if _, err := reg.Lookup(selected[i]); err != nil {
				return nil, err
			}
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePlotWriteFailed, "cannot create output directory").WithDetail(dir)
	}

	var written []string
	for _, kind := range selected {
		h, _ := reg.Lookup(kind)
		path := filepath.Join(dir, string(kind)+h.Extension())
		if err := renderFile(ctx, reg, kind, sys, path); err != nil {
			return written, err
		}
		written = append(written, path)
		if kind == render.KindPhaseDiagram && opts.dump {
			written = append(written, filepath.Join(dir, DumpFile))
		}
	}
	cc.Logger.Info("plots written", logging.Int("count", len(written)), logging.String("dir", dir))
	return written, nil
}

// renderFile renders into a temporary file beside path and renames it into
// place, so a failed render never leaves a truncated plot.
func renderFile(ctx context.Context, reg *render.Registry, kind render.Kind, sys *phase.System, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePlotWriteFailed, "cannot create plot file").WithDetail(path)
	}
	defer os.Remove(tmp.Name())

	if err := reg.Render(ctx, kind, sys, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodePlotWriteFailed, "cannot write plot file").WithDetail(path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, errors.ErrCodePlotWriteFailed, "cannot move plot file into place").WithDetail(path)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePlotWriteFailed, "cannot create file").WithDetail(path)
	}
	if err := encodeJSON(f, v); err != nil {
		f.Close()
		return errors.Wrap(err, errors.ErrCodePlotWriteFailed, "cannot encode json").WithDetail(path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodePlotWriteFailed, "cannot write file").WithDetail(path)
	}
	return nil
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

//Personal.AI order the ending
