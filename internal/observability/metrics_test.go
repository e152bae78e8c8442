package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/athletics-records-etl/internal/config"
)

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RowsExtracted.WithLabelValues("men").Add(48)
	m.RecordsLoaded.WithLabelValues("csv").Add(96)
	m.ChartsRendered.Inc()

	path := filepath.Join(t.TempDir(), "records.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `records_etl_rows_extracted_total{sex="men"} 48`)
	assert.Contains(t, string(data), `records_etl_records_loaded_total{sink="csv"} 96`)
	assert.Contains(t, string(data), "records_etl_charts_rendered_total 1")
}

func TestNewMetrics_Independent(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.ChartsRendered.Inc()
	assert.InDelta(t, 1.0, testutil.ToFloat64(a.ChartsRendered), 1e-9)
	assert.InDelta(t, 0.0, testutil.ToFloat64(b.ChartsRendered), 1e-9)

	c := NewMetricsForTesting()
	c.RowsFlagged.WithLabelValues("women").Add(3)
	assert.InDelta(t, 3.0, testutil.ToFloat64(c.RowsFlagged.WithLabelValues("women")), 1e-9)
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(t.Context(), -4))
}
