// Package render draws phase-diagram artefacts for a phase.System: domain
// field plots, free-energy difference tables and classified phase diagrams.
package render

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/phdg/internal/config"
	"github.com/turtacn/phdg/internal/domain/phase"
	"github.com/turtacn/phdg/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/phdg/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/phdg/pkg/errors"
)

// Kind names a plot type.
type Kind string

const (
	KindSubstances      Kind = "substances"
	KindCombinations    Kind = "combinations"
	KindGibbsDifference Kind = "gibbs_difference"
	KindPhaseDiagram    Kind = "phase_diagram"
)

// Handler renders one kind of plot.
type Handler interface {
	// Extension is the output file extension including the dot.
	Extension() string
	Render(ctx context.Context, sys *phase.System, w io.Writer) error
}

// Registry maps plot kinds to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
	logger   logging.Logger
	metrics  *prom.PhaseMetrics
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for render events.
func WithRegistryLogger(l logging.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// WithRegistryMetrics records render counts and durations.
func WithRegistryMetrics(m *prom.PhaseMetrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		handlers: make(map[Kind]Handler),
		logger:   logging.NewNopLogger(),
		metrics:  prom.NewPhaseMetrics(prom.NewNopCollector()),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// NewDefaultRegistry registers the four built-in plot kinds configured from
// cfg.  Phase diagrams are classified through clf.
func NewDefaultRegistry(cfg config.PlotsConfig, clf Classifier, opts ...RegistryOption) (*Registry, error) {
	r := NewRegistry(opts...)

	fields := FieldOptionsFromConfig(cfg.Fields)
	substances, err := NewSubstanceFieldHandler(fields)
	if err != nil {
		return nil, err
	}
	combinations, err := NewCombinationFieldHandler(fields)
	if err != nil {
		return nil, err
	}
	gibbs, err := NewGibbsDifferenceHandler(GibbsDifferenceOptionsFromConfig(cfg.GibbsDifference))
	if err != nil {
		return nil, err
	}
	pdOpts, err := PhaseDiagramOptionsFromConfig(cfg.PhaseDiagram)
	if err != nil {
		return nil, err
	}
	phaseDiagram, err := NewPhaseDiagramHandler(pdOpts, clf)
	if err != nil {
		return nil, err
	}

	for kind, h := range map[Kind]Handler{
		KindSubstances:      substances,
		KindCombinations:    combinations,
		KindGibbsDifference: gibbs,
		KindPhaseDiagram:    phaseDiagram,
	} {
		if err := r.Register(kind, h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds h under kind.  A kind can be registered once.
func (r *Registry) Register(kind Kind, h Handler) error {
	if kind == "" || h == nil {
		return errors.New(errors.ErrCodePlotOptionsInvalid, "plot kind and handler are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[kind]; ok {
		return errors.Newf(errors.ErrCodePlotKindConflict, "plot kind %q is already registered", kind)
	}
	r.handlers[kind] = h
	return nil
}

// Unregister removes kind.  It reports whether kind was registered.
func (r *Registry) Unregister(kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handlers[kind]
	delete(r.handlers, kind)
	return ok
}

// Lookup returns the handler for kind.
func (r *Registry) Lookup(kind Kind) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	if !ok {
		return nil, errors.Newf(errors.ErrCodePlotKindUnknown, "unknown plot kind %q", kind)
	}
	return h, nil
}

// Kinds returns the registered kinds in lexical order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kind, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Render draws kind for sys into w.
func (r *Registry) Render(ctx context.Context, kind Kind, sys *phase.System, w io.Writer) error {
	h, err := r.Lookup(kind)
	if err != nil {
		return err
	}
	start := time.Now()
	err = h.Render(ctx, sys, w)
	elapsed := time.Since(start)
	prom.RecordPlot(r.metrics, string(kind), elapsed, err)
	if err != nil {
		r.logger.Error("plot failed", logging.String("kind", string(kind)), logging.Err(err))
		return err
	}
	r.logger.Info("plot rendered", logging.String("kind", string(kind)), logging.Duration("elapsed", elapsed))
	return nil
}

//Personal.AI order the ending
