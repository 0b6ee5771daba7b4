// Package config defines all configuration structures for the phase-diagram
// toolkit.  Only plain data types and validation live here;
// loading is in loader.go.
package config

import (
	"fmt"
	"math"
	"regexp"

	"github.com/turtacn/phdg/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"` // "stderr", "stdout" or a file path
}

// MetricsConfig controls the classifier metrics registry.  When Textfile is
// set the registry is written there in the Prometheus text format on exit.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Textfile  string `mapstructure:"textfile"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters for
// minio://bucket/key table sources.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// StorageConfig groups remote table sources.
type StorageConfig struct {
	MinIO MinIOConfig `mapstructure:"minio"`
}

// ClassifierConfig tunes the patch classifier.
type ClassifierConfig struct {
	Workers int `mapstructure:"workers"`
}

// SubstanceConfig declares one substance.  Table is a file path (relative
// paths resolve against SystemConfig.BaseDir), a file:// URL or a
// minio://bucket/key object.
type SubstanceConfig struct {
	Name         string  `mapstructure:"name"`
	Type         string  `mapstructure:"type"`
	Table        string  `mapstructure:"table"`
	FormulaUnits float64 `mapstructure:"formula_units"`
}

// SlotConfig is one (coefficient, type) entry of a manifest.
type SlotConfig struct {
	Coefficient float64 `mapstructure:"coefficient"`
	Type        string  `mapstructure:"type"`
}

// SystemConfig declares the chemical system.
type SystemConfig struct {
	BaseDir    string            `mapstructure:"base_dir"`
	Substances []SubstanceConfig `mapstructure:"substances"`
	Manifests  [][]SlotConfig    `mapstructure:"manifests"`
}

// FieldPlotConfig configures the substance and combination domain plots.
// Ranges are [min, max] pairs.
type FieldPlotConfig struct {
	PressureRange    []float64 `mapstructure:"pressure_range"`
	TemperatureRange []float64 `mapstructure:"temperature_range"`
	Width            int       `mapstructure:"width"`
	Height           int       `mapstructure:"height"`
}

// GibbsDifferencePlotConfig configures the free-energy difference table.
type GibbsDifferencePlotConfig struct {
	PressureRange    []float64 `mapstructure:"pressure_range"`
	TemperatureRange []float64 `mapstructure:"temperature_range"`
	PressureStep     float64   `mapstructure:"pressure_step"`
	TemperatureStep  float64   `mapstructure:"temperature_step"`
	Base             int       `mapstructure:"base"`
}

// PhaseDiagramPlotConfig configures the classified phase-diagram raster.
type PhaseDiagramPlotConfig struct {
	PressureRange    []float64 `mapstructure:"pressure_range"`
	TemperatureRange []float64 `mapstructure:"temperature_range"`
	PressureStep     float64   `mapstructure:"pressure_step"`
	TemperatureStep  float64   `mapstructure:"temperature_step"`
	Mode             string    `mapstructure:"mode"` // "patch" | "pointwise"
	Colors           []string  `mapstructure:"colors"`
	ColorSeed        int64     `mapstructure:"color_seed"`
	BoundaryLine     bool      `mapstructure:"boundary_line"`
	HighlightOverlay *bool     `mapstructure:"highlight_overlay"`
	HighlightAlpha   float64   `mapstructure:"highlight_alpha"`
	Width            int       `mapstructure:"width"`
	Height           int       `mapstructure:"height"`
}

// PlotsConfig groups per-kind plot options.
type PlotsConfig struct {
	OutputDir       string                    `mapstructure:"output_dir"`
	Fields          FieldPlotConfig           `mapstructure:"fields"`
	GibbsDifference GibbsDifferencePlotConfig `mapstructure:"gibbs_difference"`
	PhaseDiagram    PhaseDiagramPlotConfig    `mapstructure:"phase_diagram"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	System     SystemConfig     `mapstructure:"system"`
	Plots      PlotsConfig      `mapstructure:"plots"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

var hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

func invalid(format string, args ...interface{}) error {
	return errors.Wrap(ErrConfigValidation, errors.ErrCodeConfigInvalid, fmt.Sprintf(format, args...))
}

func validRange(r []float64) bool {
	if len(r) != 2 {
		return false
	}
	for _, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r[1] >= r[0]
}

func validStep(s float64) bool { return s > 0 && !math.IsInf(s, 0) }

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.
func (c *Config) Validate() error {
	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return invalid("metrics.namespace is required when metrics are enabled")
	}

	// Classifier
	if c.Classifier.Workers < 1 {
		return invalid("classifier.workers must be ≥ 1, got %d", c.Classifier.Workers)
	}

	// System
	for i, s := range c.System.Substances {
		if s.Name == "" || s.Type == "" || s.Table == "" {
			return invalid("system.substances[%d] needs name, type and table", i)
		}
		if !(s.FormulaUnits > 0) || math.IsInf(s.FormulaUnits, 0) {
			return invalid("system.substances[%d] (%s) formula_units must be positive, got %g", i, s.Name, s.FormulaUnits)
		}
	}
	for i, m := range c.System.Manifests {
		if len(m) == 0 {
			return invalid("system.manifests[%d] is empty", i)
		}
		for j, slot := range m {
			if slot.Type == "" {
				return invalid("system.manifests[%d][%d] has no type", i, j)
			}
		}
	}

	// Plots
	for _, dim := range []int{c.Plots.Fields.Width, c.Plots.Fields.Height, c.Plots.PhaseDiagram.Width, c.Plots.PhaseDiagram.Height} {
		if dim < 1 {
			return invalid("plot width and height must be ≥ 1, got %d", dim)
		}
	}
	f := c.Plots.Fields
	if !validRange(f.PressureRange) || !validRange(f.TemperatureRange) {
		return invalid("plots.fields ranges must be [min, max] pairs")
	}
	g := c.Plots.GibbsDifference
	if !validRange(g.PressureRange) || !validRange(g.TemperatureRange) {
		return invalid("plots.gibbs_difference ranges must be [min, max] pairs")
	}
	if !validStep(g.PressureStep) || !validStep(g.TemperatureStep) {
		return invalid("plots.gibbs_difference steps must be positive")
	}
	if g.Base < 0 {
		return invalid("plots.gibbs_difference.base must be ≥ 0, got %d", g.Base)
	}
	p := c.Plots.PhaseDiagram
	if !validRange(p.PressureRange) || !validRange(p.TemperatureRange) {
		return invalid("plots.phase_diagram ranges must be [min, max] pairs")
	}
	if !validStep(p.PressureStep) || !validStep(p.TemperatureStep) {
		return invalid("plots.phase_diagram steps must be positive")
	}
	switch p.Mode {
	case "patch", "pointwise":
	default:
		return invalid("plots.phase_diagram.mode %q is invalid; expected patch|pointwise", p.Mode)
	}
	for _, col := range p.Colors {
		if !hexColor.MatchString(col) {
			return invalid("plots.phase_diagram.colors entry %q is not a #rrggbb colour", col)
		}
	}
	if p.HighlightAlpha < 0 || p.HighlightAlpha > 1 {
		return invalid("plots.phase_diagram.highlight_alpha must be in [0, 1], got %g", p.HighlightAlpha)
	}

	return nil
}

//Personal.AI order the ending
