package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStage(t *testing.T) {
	m := New()
	m.ObserveStage("merge", time.Now())
	m.ObserveStage("merge", time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveStage("merge", time.Now()) })
}

func TestRuns(t *testing.T) {
	m := New()
	m.Runs.WithLabelValues("run", "ok").Inc()
	m.Runs.WithLabelValues("run", "error").Inc()
	m.Runs.WithLabelValues("run", "ok").Inc()

	want := `
# HELP settlement_pipeline_runs_total Pipeline runs by command and outcome.
# TYPE settlement_pipeline_runs_total counter
settlement_pipeline_runs_total{command="run",status="error"} 1
settlement_pipeline_runs_total{command="run",status="ok"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(want), "settlement_pipeline_runs_total"))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RowsMerged.Set(42)
	path := filepath.Join(t.TempDir(), "pipeline.prom")

	require.NoError(t, m.WriteTextfile(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "settlement_pipeline_rows_merged 42")
}
