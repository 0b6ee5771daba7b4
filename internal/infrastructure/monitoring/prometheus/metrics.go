package prometheus

import "time"

// PhaseMetrics holds the metrics recorded by a phase-diagram run.
type PhaseMetrics struct {
	// Classification
	ClassificationsTotal   CounterVec
	ClassificationDuration HistogramVec
	PatchesLast            GaugeVec
	CellsLast              GaugeVec
	CombinationsLast       GaugeVec

	// Tables
	TableLoadsTotal   CounterVec
	TableLoadDuration HistogramVec

	// Rendering
	PlotsRenderedTotal CounterVec
	PlotRenderDuration HistogramVec
}

// Default Buckets
var (
	DefaultClassifyDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30}
	DefaultIODurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewPhaseMetrics registers all metrics and returns the PhaseMetrics struct.
func NewPhaseMetrics(collector MetricsCollector) *PhaseMetrics {
	m := &PhaseMetrics{}

	m.ClassificationsTotal = collector.RegisterCounter("classifications_total", "Classification runs", "mode", "status")
	m.ClassificationDuration = collector.RegisterHistogram("classification_duration_seconds", "Classification wall time", DefaultClassifyDurationBuckets, "mode")
	m.PatchesLast = collector.RegisterGauge("classification_patches", "Patches in the last classification", "mode")
	m.CellsLast = collector.RegisterGauge("classification_cells", "Cells by outcome in the last classification", "outcome")
	m.CombinationsLast = collector.RegisterGauge("combinations", "Valid combinations in the system")

	m.TableLoadsTotal = collector.RegisterCounter("table_loads_total", "Free-energy table loads", "scheme", "status")
	m.TableLoadDuration = collector.RegisterHistogram("table_load_duration_seconds", "Free-energy table load time", DefaultIODurationBuckets, "scheme")

	m.PlotsRenderedTotal = collector.RegisterCounter("plots_rendered_total", "Rendered plots", "kind", "status")
	m.PlotRenderDuration = collector.RegisterHistogram("plot_render_duration_seconds", "Plot render time", DefaultIODurationBuckets, "kind")

	return m
}

// ClassificationOutcome summarises one classification for RecordClassification.
type ClassificationOutcome struct {
	Mode         string
	Patches      int
	Assigned     int
	Empty        int
	Undetermined int
	Combinations int
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// Helpers

func RecordClassification(metrics *PhaseMetrics, o ClassificationOutcome, duration time.Duration, err error) {
	metrics.ClassificationsTotal.WithLabelValues(o.Mode, status(err)).Inc()
	metrics.ClassificationDuration.WithLabelValues(o.Mode).Observe(duration.Seconds())
	if err != nil {
		return
	}
	metrics.PatchesLast.WithLabelValues(o.Mode).Set(float64(o.Patches))
	metrics.CellsLast.WithLabelValues("assigned").Set(float64(o.Assigned))
	metrics.CellsLast.WithLabelValues("empty").Set(float64(o.Empty))
	metrics.CellsLast.WithLabelValues("undetermined").Set(float64(o.Undetermined))
	metrics.CombinationsLast.WithLabelValues().Set(float64(o.Combinations))
}

func RecordTableLoad(metrics *PhaseMetrics, scheme string, duration time.Duration, err error) {
	metrics.TableLoadsTotal.WithLabelValues(scheme, status(err)).Inc()
	metrics.TableLoadDuration.WithLabelValues(scheme).Observe(duration.Seconds())
}

func RecordPlot(metrics *PhaseMetrics, kind string, duration time.Duration, err error) {
	metrics.PlotsRenderedTotal.WithLabelValues(kind, status(err)).Inc()
	metrics.PlotRenderDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

//Personal.AI order the ending
