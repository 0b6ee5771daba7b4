package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/phdg/internal/application/diagram"
	"github.com/turtacn/phdg/internal/config"
	"github.com/turtacn/phdg/internal/domain/phase"
	"github.com/turtacn/phdg/pkg/errors"
)

type classifyOptions struct {
	mode            string
	pressure        []float64
	pressureStep    float64
	temperature     []float64
	temperatureStep float64
	cells           bool
}

// NewClassifyCmd creates the classify command.  Unset grid flags fall back
// to plots.phase_diagram.
func NewClassifyCmd() *cobra.Command {
	opts := &classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a P-T grid by the combination of lowest free energy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, sys, err := loadSystem(cmd)
			if err != nil {
				return err
			}
			input, err := opts.input(cmd, cc.Config.Plots.PhaseDiagram, sys)
			if err != nil {
				return err
			}
			result, err := cc.Service.Classify(cmd.Context(), input)
			if err != nil {
				return err
			}
			return PrintResult(cmd, summarize(result, input.Mode, opts.cells))
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.mode, "mode", "", "classification mode: patch|pointwise")
	f.Float64SliceVar(&opts.pressure, "pressure", nil, "pressure window min,max in GPa")
	f.Float64Var(&opts.pressureStep, "pressure-step", 0, "pressure step in GPa")
	f.Float64SliceVar(&opts.temperature, "temperature", nil, "temperature window min,max in K")
	f.Float64Var(&opts.temperatureStep, "temperature-step", 0, "temperature step in K")
	f.BoolVar(&opts.cells, "cells", false, "include the cell grid in the output")
	return cmd
}

func (o *classifyOptions) input(cmd *cobra.Command, pd config.PhaseDiagramPlotConfig, sys *phase.System) (*diagram.ClassifyInput, error) {
	f := cmd.Flags()
	mode := pd.Mode
	if f.Changed("mode") {
		mode = o.mode
	}
	m, err := diagram.ParseMode(mode)
	if err != nil {
		return nil, err
	}

	pr, tr := pd.PressureRange, pd.TemperatureRange
	ps, ts := pd.PressureStep, pd.TemperatureStep
	if f.Changed("pressure") {
		pr = o.pressure
	}
	if f.Changed("temperature") {
		tr = o.temperature
	}
	if f.Changed("pressure-step") {
		ps = o.pressureStep
	}
	if f.Changed("temperature-step") {
		ts = o.temperatureStep
	}
	if len(pr) != 2 || len(tr) != 2 {
		return nil, errors.New(errors.ErrCodeBadRequest, "--pressure and --temperature take exactly two values: min,max")
	}
	return &diagram.ClassifyInput{
		System: sys,
		Mode:   m,
		Spec: phase.GridSpec{
			Pressure:    phase.Axis{Min: pr[0], Max: pr[1], Step: ps},
			Temperature: phase.Axis{Min: tr[0], Max: tr[1], Step: ts},
		},
	}, nil
}

type phaseCount struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Cells int    `json:"cells"`
}

// classificationSummary is the printable view of a classification.
type classificationSummary struct {
	RunID        string         `json:"run_id"`
	Mode         diagram.Mode   `json:"mode"`
	Spec         phase.GridSpec `json:"spec"`
	Rows         int            `json:"rows"`
	Cols         int            `json:"cols"`
	Patches      int            `json:"patches"`
	Phases       []phaseCount   `json:"phases"`
	Empty        int            `json:"empty_cells"`
	Undetermined int            `json:"undetermined_cells"`
	Grid         [][]int        `json:"grid,omitempty"`
}

func summarize(r *phase.Classification, mode diagram.Mode, cells bool) *classificationSummary {
	counts := r.Counts()
	s := &classificationSummary{
		RunID:        r.RunID,
		Mode:         mode,
		Spec:         r.Spec,
		Rows:         r.Rows(),
		Cols:         r.Cols(),
		Patches:      len(r.Patches),
		Empty:        counts[phase.NoCombination],
		Undetermined: counts[phase.Undetermined],
		Phases:       []phaseCount{},
	}
	for _, v := range r.Present() {
		s.Phases = append(s.Phases, phaseCount{Index: v, Name: r.Combination(v).Name(), Cells: counts[v]})
	}
	if cells {
		s.Grid = make([][]int, r.Rows())
		for ti := range s.Grid {
			s.Grid[ti] = r.Row(ti)
		}
	}
	return s
}

func (s *classificationSummary) TableHeaders() []string { return []string{"INDEX", "NAME", "CELLS"} }

func (s *classificationSummary) TableRows() [][]string {
	rows := make([][]string, 0, len(s.Phases)+2)
	for _, p := range s.Phases {
		rows = append(rows, []string{strconv.Itoa(p.Index), p.Name, strconv.Itoa(p.Cells)})
	}
	if s.Empty > 0 {
		rows = append(rows, []string{strconv.Itoa(phase.NoCombination), "(none)", strconv.Itoa(s.Empty)})
	}
	if s.Undetermined > 0 {
		rows = append(rows, []string{strconv.Itoa(phase.Undetermined), "(undetermined)", strconv.Itoa(s.Undetermined)})
	}
	return rows
}

func (s *classificationSummary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s: %d x %d cells (T x P), %d patches, mode %s\n", s.RunID, s.Rows, s.Cols, s.Patches, s.Mode)
	for _, p := range s.Phases {
		fmt.Fprintf(&sb, " - %s: %d cells\n", p.Name, p.Cells)
	}
	if s.Empty > 0 {
		fmt.Fprintf(&sb, " - no combination: %d cells\n", s.Empty)
	}
	if s.Undetermined > 0 {
		fmt.Fprintf(&sb, " - undetermined: %d cells\n", s.Undetermined)
	}
	for _, row := range s.Grid {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = strconv.Itoa(v)
		}
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

//Personal.AI order the ending
