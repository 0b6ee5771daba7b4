package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/phdg/internal/application/diagram"
	"github.com/turtacn/phdg/internal/domain/phase"
)

// loadSystem builds the configured system for the running command.
func loadSystem(cmd *cobra.Command) (*CLIContext, *phase.System, error) {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	sys, err := cc.Service.BuildSystem(cmd.Context(), cc.Config.System)
	if err != nil {
		return nil, nil, err
	}
	return cc, sys, nil
}

// NewSubstancesCmd creates the substances command.
func NewSubstancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "substances",
		Short: "List substances and their tabulated P-T domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, sys, err := loadSystem(cmd)
			if err != nil {
				return err
			}
			return PrintResult(cmd, substanceList(cc.Service.ListSubstances(sys)))
		},
	}
}

// NewCombinationsCmd creates the combinations command.
func NewCombinationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combinations",
		Short: "List valid combinations in enumeration order",
		Long: "List every combination allowed by the manifests whose pressure and temperature\n" +
			"domains intersect.  The index is the value used for it in classification grids.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, sys, err := loadSystem(cmd)
			if err != nil {
				return err
			}
			return PrintResult(cmd, combinationList(cc.Service.ListCombinations(sys)))
		},
	}
}

func formatRange(r phase.Range) string { return r.String() }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

type substanceList []*diagram.SubstanceInfo

func (l substanceList) TableHeaders() []string {
	return []string{"NAME", "TYPE", "FORMULA UNITS", "PRESSURE", "TEMPERATURE"}
}

func (l substanceList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, s := range l {
		rows[i] = []string{s.Name, s.Type, formatFloat(s.FormulaUnits), formatRange(s.PressureRange), formatRange(s.TemperatureRange)}
	}
	return rows
}

func (l substanceList) String() string {
	var sb strings.Builder
	for _, s := range l {
		fmt.Fprintf(&sb, " - %s (%s) with P in %s and T in %s\n", s.Type, s.Name, s.PressureRange, s.TemperatureRange)
	}
	return sb.String()
}

type combinationList []*diagram.CombinationInfo

func (l combinationList) TableHeaders() []string {
	return []string{"INDEX", "NAME", "FORMULA", "PRESSURE", "TEMPERATURE"}
}

func (l combinationList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, c := range l {
		rows[i] = []string{strconv.Itoa(c.Index), c.Name, c.Formula, formatRange(c.PressureRange), formatRange(c.TemperatureRange)}
	}
	return rows
}

func (l combinationList) String() string {
	var sb strings.Builder
	for _, c := range l {
		fmt.Fprintf(&sb, "%3d  %s with P in %s and T in %s\n", c.Index, c.Formula, c.PressureRange, c.TemperatureRange)
	}
	return sb.String()
}

//Personal.AI order the ending
