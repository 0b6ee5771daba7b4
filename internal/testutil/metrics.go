package testutil

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// MetricValue returns the current value of a counter or gauge obtained from
// a registry-backed metric vector.  Metrics from a nop collector fail the test.
func MetricValue(t testing.TB, m interface{}) float64 {
	t.Helper()
	c, ok := m.(prometheus.Collector)
	require.True(t, ok, "metric %T is not backed by a prometheus registry", m)
	return promtest.ToFloat64(c)
}

//Personal.AI order the ending
