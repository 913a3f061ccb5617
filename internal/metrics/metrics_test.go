package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CountersPerCollection(t *testing.T) {
	m := NewRegistry()
	m.DocumentsInserted.WithLabelValues("bronze_sales").Add(3)
	m.DocumentsInserted.WithLabelValues("silver_sales").Inc()
	m.ProvisionFailures.WithLabelValues("gold_top_performers").Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.DocumentsInserted.WithLabelValues("bronze_sales")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsInserted.WithLabelValues("silver_sales")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProvisionFailures.WithLabelValues("gold_top_performers")))
}

func TestRegistry_WriteTextfile(t *testing.T) {
	m := NewRegistry()
	m.RowsRead.Add(100)
	m.StageDurationSec.WithLabelValues("ingest").Observe(0.25)

	path := filepath.Join(t.TempDir(), "textfile", "medallion.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "medallion_source_rows_read_total 100")
	assert.Contains(t, string(data), `medallion_stage_duration_seconds_count{stage="ingest"} 1`)
}

func TestRegistry_WriteTextfileDisabled(t *testing.T) {
	assert.NoError(t, NewRegistry().WriteTextfile(""))
}

func TestRegistry_GathererSeesLabelledSeries(t *testing.T) {
	m := NewRegistry()
	m.StageFailures.WithLabelValues("clean").Inc()
	m.StageFailures.WithLabelValues("ingest").Inc()

	n, err := testutil.GatherAndCount(m.Gatherer(), "medallion_stage_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
