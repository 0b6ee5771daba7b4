// Package diagram provides the application-level service that turns a
// configured chemical system into classified phase diagrams.
package diagram

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/phdg/internal/config"
	"github.com/turtacn/phdg/internal/domain/gibbs"
	"github.com/turtacn/phdg/internal/domain/phase"
	"github.com/turtacn/phdg/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/phdg/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/phdg/pkg/errors"
)

// Mode selects the classification algorithm.
type Mode string

const (
	ModePatch     Mode = "patch"
	ModePointwise Mode = "pointwise"
)

// ParseMode converts a case-insensitive string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePatch, ModePointwise:
		return m, nil
	case "":
		return ModePatch, nil
	default:
		return "", errors.Newf(errors.ErrCodeBadRequest, "unknown classification mode %q", s)
	}
}

// Service defines the phase-diagram application operations.
type Service interface {
	BuildSystem(ctx context.Context, cfg config.SystemConfig) (*phase.System, error)
	ListSubstances(sys *phase.System) []*SubstanceInfo
	ListCombinations(sys *phase.System) []*CombinationInfo
	Classify(ctx context.Context, input *ClassifyInput) (*phase.Classification, error)
}

// ClassifyInput contains input for a classification run.
type ClassifyInput struct {
	System *phase.System
	Spec   phase.GridSpec
	Mode   Mode
}

// SubstanceInfo is the listing view of a substance.
type SubstanceInfo struct {
	Name             string      `json:"name"`
	Type             string      `json:"type"`
	FormulaUnits     float64     `json:"formula_units"`
	PressureRange    phase.Range `json:"pressure_range"`
	TemperatureRange phase.Range `json:"temperature_range"`
}

// CombinationInfo is the listing view of a combination.  Index is the value
// used for it in classification grids.
type CombinationInfo struct {
	Index            int         `json:"index"`
	Name             string      `json:"name"`
	Formula          string      `json:"formula"`
	PressureRange    phase.Range `json:"pressure_range"`
	TemperatureRange phase.Range `json:"temperature_range"`
}

// Option configures the service.
type Option func(*serviceImpl)

// WithMetrics records table loads and classifications.
func WithMetrics(m *prom.PhaseMetrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// WithWorkers bounds concurrent table loads and patch evaluation.
func WithWorkers(n int) Option {
	return func(s *serviceImpl) { s.workers = n }
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	loader  TableLoader
	logger  logging.Logger
	metrics *prom.PhaseMetrics
	workers int
	newID   func() string
}

// NewService creates a new phase-diagram application service.
func NewService(loader TableLoader, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		loader:  loader,
		logger:  logger,
		metrics: prom.NewPhaseMetrics(prom.NewNopCollector()),
		workers: 1,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// BuildSystem loads every distinct table source once, concurrently, then
// assembles the substances in declaration order.
func (s *serviceImpl) BuildSystem(ctx context.Context, cfg config.SystemConfig) (*phase.System, error) {
	var (
		mu     sync.Mutex
		tables = make(map[string]*gibbs.Table)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	seen := make(map[string]bool)
	for _, sc := range cfg.Substances {
		src := sc.Table
		if seen[src] {
			continue
		}
		seen[src] = true
		g.Go(func() error {
			start := time.Now()
			t, err := s.loader.Load(gctx, src)
			if err == nil && t == nil {
				err = errors.New(errors.ErrCodeTableSourceNotFound, "loader returned no table").WithDetail(src)
			}
			prom.RecordTableLoad(s.metrics, Scheme(src), time.Since(start), err)
			if err != nil {
				s.logger.Error("table load failed", logging.String("source", src), logging.Err(err))
				return err
			}
			s.logger.Debug("table loaded", logging.String("source", src), logging.String("table", t.String()))
			mu.Lock()
			tables[src] = t
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	subs := make([]*phase.Substance, 0, len(cfg.Substances))
	for _, sc := range cfg.Substances {
		sub, err := phase.NewSubstance(sc.Name, sc.Type, tables[sc.Table], sc.FormulaUnits)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	manifests := make([]phase.Manifest, len(cfg.Manifests))
	for i, m := range cfg.Manifests {
		manifests[i] = make(phase.Manifest, len(m))
		for j, slot := range m {
			manifests[i][j] = phase.Slot{Coefficient: slot.Coefficient, Type: slot.Type}
		}
	}

	sys, err := phase.NewSystem(subs, manifests)
	if err != nil {
		return nil, err
	}
	for _, missing := range sys.UnmatchedTypes() {
		s.logger.Warn("manifest type has no substances", logging.String("type", missing))
	}
	s.logger.Info("system built",
		logging.Int("substances", len(subs)),
		logging.Int("manifests", len(manifests)),
		logging.Int("tables", len(tables)))
	return sys, nil
}

func (s *serviceImpl) ListSubstances(sys *phase.System) []*SubstanceInfo {
	subs := sys.Substances()
	out := make([]*SubstanceInfo, len(subs))
	for i, sub := range subs {
		out[i] = &SubstanceInfo{
			Name:             sub.Name(),
			Type:             sub.Type(),
			FormulaUnits:     sub.FormulaUnits(),
			PressureRange:    sub.PressureRange(),
			TemperatureRange: sub.TemperatureRange(),
		}
	}
	return out
}

func (s *serviceImpl) ListCombinations(sys *phase.System) []*CombinationInfo {
	combos := sys.FindCombinations()
	out := make([]*CombinationInfo, len(combos))
	for i, c := range combos {
		out[i] = combinationInfo(i, c)
	}
	return out
}

func combinationInfo(i int, c *phase.Combination) *CombinationInfo {
	return &CombinationInfo{
		Index:            i,
		Name:             c.Name(),
		Formula:          c.Formula(),
		PressureRange:    c.PressureRange(),
		TemperatureRange: c.TemperatureRange(),
	}
}

func (s *serviceImpl) Classify(ctx context.Context, input *ClassifyInput) (*phase.Classification, error) {
	if input == nil || input.System == nil {
		return nil, errors.InvalidParam("classification needs a system")
	}
	mode := input.Mode
	if mode == "" {
		mode = ModePatch
	}
	runID := s.newID()
	log := s.logger.With(logging.String("run_id", runID), logging.String("mode", string(mode)))

	combos := input.System.FindCombinations()
	start := time.Now()
	var (
		result *phase.Classification
		err    error
	)
	switch mode {
	case ModePatch:
		clf := phase.NewClassifier(phase.WithWorkers(s.workers), phase.WithLogger(log.Named("classifier")))
		result, err = clf.Classify(ctx, combos, input.Spec)
	case ModePointwise:
		result, err = phase.ClassifyPointwise(ctx, combos, input.Spec)
	default:
		err = errors.Newf(errors.ErrCodeBadRequest, "unknown classification mode %q", mode)
	}
	elapsed := time.Since(start)

	outcome := prom.ClassificationOutcome{Mode: string(mode), Combinations: len(combos)}
	if err != nil {
		prom.RecordClassification(s.metrics, outcome, elapsed, err)
		log.Error("classification failed", logging.Err(err))
		return nil, err
	}

	result.RunID = runID
	counts := result.Counts()
	outcome.Patches = len(result.Patches)
	outcome.Empty = counts[phase.NoCombination]
	outcome.Undetermined = counts[phase.Undetermined]
	outcome.Assigned = len(result.Cells()) - outcome.Empty - outcome.Undetermined
	prom.RecordClassification(s.metrics, outcome, elapsed, nil)

	log.Info("classification complete",
		logging.Int("rows", result.Rows()),
		logging.Int("cols", result.Cols()),
		logging.Int("combinations", len(combos)),
		logging.Int("patches", outcome.Patches),
		logging.Int("empty_cells", outcome.Empty),
		logging.Int("undetermined_cells", outcome.Undetermined),
		logging.Duration("elapsed", elapsed))
	return result, nil
}

//Personal.AI order the ending
