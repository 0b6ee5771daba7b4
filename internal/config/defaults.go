package config

import "runtime"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	DefaultLogOutput = "stderr"

	DefaultMetricsNamespace = "phdg"

	DefaultMinIORegion = "us-east-1"

	DefaultPlotOutputDir = "."
	DefaultPlotWidth     = 800
	DefaultPlotHeight    = 600

	DefaultGibbsPressureStep    = 1.0
	DefaultGibbsTemperatureStep = 300.0

	DefaultPhasePressureStep    = 5.0
	DefaultPhaseTemperatureStep = 30.0
	DefaultPhaseMode            = "patch"
	DefaultHighlightAlpha       = 0.5
)

// Default plot windows, [min, max] in GPa and K.
var (
	DefaultFieldPressureRange    = []float64{-5, 500}
	DefaultFieldTemperatureRange = []float64{0, 3000}
	DefaultPhasePressureRange    = []float64{-5, 300}
	DefaultPhaseTemperatureRange = []float64{0, 3000}
)

// ApplyDefaults fills every zero-value field in cfg with the default.
// Fields that have already been set (non-zero values) are left unchanged so
// that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.MinIO.Region == "" {
		cfg.Storage.MinIO.Region = DefaultMinIORegion
	}

	// ── Classifier ────────────────────────────────────────────────────────────
	if cfg.Classifier.Workers == 0 {
		cfg.Classifier.Workers = runtime.NumCPU()
	}

	// ── Plots ─────────────────────────────────────────────────────────────────
	pl := &cfg.Plots
	if pl.OutputDir == "" {
		pl.OutputDir = DefaultPlotOutputDir
	}

	defaultRange(&pl.Fields.PressureRange, DefaultFieldPressureRange)
	defaultRange(&pl.Fields.TemperatureRange, DefaultFieldTemperatureRange)
	defaultInt(&pl.Fields.Width, DefaultPlotWidth)
	defaultInt(&pl.Fields.Height, DefaultPlotHeight)

	defaultRange(&pl.GibbsDifference.PressureRange, DefaultFieldPressureRange)
	defaultRange(&pl.GibbsDifference.TemperatureRange, DefaultFieldTemperatureRange)
	defaultFloat(&pl.GibbsDifference.PressureStep, DefaultGibbsPressureStep)
	defaultFloat(&pl.GibbsDifference.TemperatureStep, DefaultGibbsTemperatureStep)

	pd := &pl.PhaseDiagram
	defaultRange(&pd.PressureRange, DefaultPhasePressureRange)
	defaultRange(&pd.TemperatureRange, DefaultPhaseTemperatureRange)
	defaultFloat(&pd.PressureStep, DefaultPhasePressureStep)
	defaultFloat(&pd.TemperatureStep, DefaultPhaseTemperatureStep)
	if pd.Mode == "" {
		pd.Mode = DefaultPhaseMode
	}
	if pd.HighlightOverlay == nil {
		on := true
		pd.HighlightOverlay = &on
	}
	defaultFloat(&pd.HighlightAlpha, DefaultHighlightAlpha)
	defaultInt(&pd.Width, DefaultPlotWidth)
	defaultInt(&pd.Height, DefaultPlotHeight)
}

func defaultRange(dst *[]float64, def []float64) {
	if len(*dst) == 0 {
		*dst = append([]float64(nil), def...)
	}
}

func defaultFloat(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}

func defaultInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

//Personal.AI order the ending
