package metrics

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/isnet/core/metrics"
)

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry("", reg, reg)
	require.NoError(t, err)

	ev := coremetrics.RunEvent{
		RunID:     "r1",
		Status:    "Optimal",
		Objective: 250.5,
		HasValues: true,
		Terms:     map[string]float64{"heat_operation": 12},
		Pathways:  2,
		Area:      40,
		Variables: 72,
		Rows:      75,
		Nodes:     9,
		Duration:  2 * time.Second,
		Time:      time.Unix(1700000000, 0),
	}
	require.NoError(t, sink.RecordRun(ev))

	assert.Equal(t, 250.5, testutil.ToFloat64(sink.objective))
	assert.Equal(t, 12.0, testutil.ToFloat64(sink.terms.WithLabelValues("heat_operation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.status.WithLabelValues("Optimal")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.status.WithLabelValues("Infeasible")))
	assert.Equal(t, 72.0, testutil.ToFloat64(sink.size.WithLabelValues("variables")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.duration))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(sink.lastRun))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.runs.WithLabelValues("Optimal")))

	ev2 := coremetrics.RunEvent{RunID: "r2", Status: "Infeasible", Objective: math.NaN()}
	require.NoError(t, sink.RecordRun(ev2))
	assert.True(t, math.IsNaN(testutil.ToFloat64(sink.objective)))
	assert.Equal(t, 0, testutil.CollectAndCount(sink.terms))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.status.WithLabelValues("Infeasible")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.status.WithLabelValues("Optimal")))
}

func TestPromSink_Textfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isnet.prom")
	sink, err := NewPromSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{RunID: "r", Status: "Optimal", Objective: 3, Nodes: 4}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "isnet_objective_chf 3")
	assert.Contains(t, out, "isnet_solver_nodes 4")
	assert.True(t, strings.Contains(out, `isnet_run_status{status="Optimal"} 1`))
}

func TestPromSink_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry("", reg, nil)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry("", reg, nil)
	require.NoError(t, err)
	require.NoError(t, b.RecordRun(coremetrics.RunEvent{Status: "Optimal", Objective: 7}))
	assert.Equal(t, 7.0, testutil.ToFloat64(a.objective))
}

func TestPromSink_TextfileError(t *testing.T) {
	sink, err := NewPromSink(filepath.Join(t.TempDir(), "missing", "isnet.prom"))
	require.NoError(t, err)
	assert.Error(t, sink.RecordRun(coremetrics.RunEvent{Status: "Optimal"}))
}
