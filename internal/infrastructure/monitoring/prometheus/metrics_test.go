package prometheus

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/phdg/pkg/errors"
)

func TestNewPhaseMetrics_AllMetricsRegistered(t *testing.T) {
	m := NewPhaseMetrics(newTestCollector(t))
	require.NotNil(t, m)

	assert.NotNil(t, m.ClassificationsTotal)
	assert.NotNil(t, m.ClassificationDuration)
	assert.NotNil(t, m.PatchesLast)
	assert.NotNil(t, m.CellsLast)
	assert.NotNil(t, m.CombinationsLast)
	assert.NotNil(t, m.TableLoadsTotal)
	assert.NotNil(t, m.PlotsRenderedTotal)
}

func TestRecordClassification(t *testing.T) {
	c := newTestCollector(t)
	m := NewPhaseMetrics(c)

	RecordClassification(m, ClassificationOutcome{
		Mode: "patch", Patches: 12, Assigned: 90, Empty: 8, Undetermined: 2, Combinations: 4,
	}, 20*time.Millisecond, nil)
	RecordClassification(m, ClassificationOutcome{Mode: "patch"}, time.Millisecond, errors.New(errors.ErrCodeCancelled, "stop"))

	expected := `
# HELP test_unit_classification_cells Cells by outcome in the last classification
# TYPE test_unit_classification_cells gauge
test_unit_classification_cells{outcome="assigned"} 90
test_unit_classification_cells{outcome="empty"} 8
test_unit_classification_cells{outcome="undetermined"} 2
# HELP test_unit_classifications_total Classification runs
# TYPE test_unit_classifications_total counter
test_unit_classifications_total{mode="patch",status="failure"} 1
test_unit_classifications_total{mode="patch",status="success"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(c.Gatherer(), strings.NewReader(expected),
		"test_unit_classification_cells", "test_unit_classifications_total"))

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_classification_patches{mode="patch"} 12`)
	assert.Contains(t, output, "test_unit_combinations 4")
	assert.Contains(t, output, `test_unit_classification_duration_seconds_count{mode="patch"} 2`)
}

func TestRecordTableLoadAndPlot(t *testing.T) {
	c := newTestCollector(t)
	m := NewPhaseMetrics(c)

	RecordTableLoad(m, "file", time.Millisecond, nil)
	RecordTableLoad(m, "minio", time.Millisecond, errors.New(errors.ErrCodeTableSourceNotFound, "gone"))
	RecordPlot(m, "phase_diagram", 3*time.Millisecond, nil)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_table_loads_total{scheme="file",status="success"} 1`)
	assert.Contains(t, output, `test_unit_table_loads_total{scheme="minio",status="failure"} 1`)
	assert.Contains(t, output, `test_unit_plots_rendered_total{kind="phase_diagram",status="success"} 1`)
}

//Personal.AI order the ending
