package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
	assert.Equal(t, runtime.NumCPU(), cfg.Classifier.Workers)
	assert.Equal(t, []float64{-5, 500}, cfg.Plots.Fields.PressureRange)
	assert.Equal(t, []float64{-5, 300}, cfg.Plots.PhaseDiagram.PressureRange)
	assert.Equal(t, 5.0, cfg.Plots.PhaseDiagram.PressureStep)
	assert.Equal(t, 30.0, cfg.Plots.PhaseDiagram.TemperatureStep)
	assert.Equal(t, 300.0, cfg.Plots.GibbsDifference.TemperatureStep)
	require.NotNil(t, cfg.Plots.PhaseDiagram.HighlightOverlay)
	assert.True(t, *cfg.Plots.PhaseDiagram.HighlightOverlay)
	assert.Equal(t, 0.5, cfg.Plots.PhaseDiagram.HighlightAlpha)
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	off := false
	cfg := &Config{}
	cfg.Classifier.Workers = 3
	cfg.Plots.PhaseDiagram.PressureRange = []float64{0, 50}
	cfg.Plots.PhaseDiagram.HighlightOverlay = &off
	ApplyDefaults(cfg)

	assert.Equal(t, 3, cfg.Classifier.Workers)
	assert.Equal(t, []float64{0, 50}, cfg.Plots.PhaseDiagram.PressureRange)
	assert.False(t, *cfg.Plots.PhaseDiagram.HighlightOverlay)
}

func TestApplyDefaults_DoesNotAliasDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Plots.Fields.PressureRange[0] = 42

	assert.Equal(t, -5.0, DefaultFieldPressureRange[0])
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

//Personal.AI order the ending
