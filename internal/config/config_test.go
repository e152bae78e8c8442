package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://en.wikipedia.org/wiki/List_of_world_records_in_athletics", cfg.SourceURL)
	assert.Equal(t, "athletics-records-etl/1.0 (+research)", cfg.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.RobotsCheck)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, filepath.Join("results", "figures"), cfg.FiguresDir)
	assert.Equal(t, filepath.Join("results", "tables"), cfg.TablesDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Zero(t, cfg.ReferenceYear)
	assert.Equal(t, "Keely Hodgkinson", cfg.HistoryAthlete)
	assert.InDelta(t, 113.28, cfg.HistoryRecord, 1e-9)
	assert.InDelta(t, 0.94, cfg.NameMatchThreshold, 1e-9)
	assert.Empty(t, cfg.SQLitePath)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "world-records", cfg.KafkaTopic)
	assert.Empty(t, cfg.XLSXPath)
	assert.Empty(t, cfg.MetricsFile)
	assert.Equal(t, filepath.Join("data", "dobs.csv"), cfg.DOBPath())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SOURCE_URL", "http://localhost:8080/wiki/Records")
	t.Setenv("USER_AGENT", "test-agent")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("ROBOTS_CHECK", "false")
	t.Setenv("DATA_DIR", "/tmp/data")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("REFERENCE_YEAR", "2025")
	t.Setenv("HISTORY_RECORD", "1:54.61")
	t.Setenv("NAME_MATCH_THRESHOLD", "0")
	t.Setenv("SQLITE_PATH", "records.db")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-records")
	t.Setenv("XLSX_PATH", "records.xlsx")
	t.Setenv("METRICS_FILE", "records.prom")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/wiki/Records", cfg.SourceURL)
	assert.Equal(t, "test-agent", cfg.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.RobotsCheck)
	assert.Equal(t, filepath.Join("/tmp/data", ContinentsFile), cfg.ContinentsPath())
	assert.Equal(t, filepath.Join("/tmp/data", HistoryFile), cfg.HistoryPath())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2025, cfg.ReferenceYear)
	assert.InDelta(t, 114.61, cfg.HistoryRecord, 1e-9)
	assert.Zero(t, cfg.NameMatchThreshold)
	assert.Equal(t, "records.db", cfg.SQLitePath)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-records", cfg.KafkaTopic)
	assert.Equal(t, "records.xlsx", cfg.XLSXPath)
	assert.Equal(t, "records.prom", cfg.MetricsFile)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"HTTP_TIMEOUT", "soon", "HTTP_TIMEOUT"},
		{"HTTP_TIMEOUT", "-1s", "HTTP_TIMEOUT"},
		{"ROBOTS_CHECK", "maybe", "ROBOTS_CHECK"},
		{"REFERENCE_YEAR", "next", "REFERENCE_YEAR"},
		{"HISTORY_RECORD", "fast", "HISTORY_RECORD"},
		{"NAME_MATCH_THRESHOLD", "1.5", "NAME_MATCH_THRESHOLD"},
	}
	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
