package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// Reference file names looked up in DataDir.
const (
	ContinentsFile = "country-and-continent-codes-list-csv.csv"
	DOBFile        = "dobs.csv"
	HistoryFile    = "keely_data.csv"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	SourceURL   string
	UserAgent   string
	HTTPTimeout time.Duration
	RobotsCheck bool

	DataDir    string
	FiguresDir string
	TablesDir  string

	LogLevel  string
	LogFormat string

	// ReferenceYear anchors "years since" figures; 0 means the current year.
	ReferenceYear      int
	HistoryAthlete     string
	HistoryRecord      float64 // seconds
	NameMatchThreshold float64

	// Optional sinks, disabled when empty.
	SQLitePath   string
	KafkaBrokers []string
	KafkaTopic   string
	XLSXPath     string
	MetricsFile  string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	timeout, err := parseDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	robots, err := parseBool("ROBOTS_CHECK", "true")
	if err != nil {
		return nil, err
	}
	refYear, err := strconv.Atoi(sharedcfg.EnvOrDefault("REFERENCE_YEAR", "0"))
	if err != nil || refYear < 0 {
		return nil, fmt.Errorf("invalid REFERENCE_YEAR %q", sharedcfg.EnvOrDefault("REFERENCE_YEAR", "0"))
	}
	recordStr := sharedcfg.EnvOrDefault("HISTORY_RECORD", "1:53.28")
	record, ok := domain.ParsePerformanceSeconds(recordStr)
	if !ok || record <= 0 {
		return nil, fmt.Errorf("invalid HISTORY_RECORD %q", recordStr)
	}
	thresholdStr := sharedcfg.EnvOrDefault("NAME_MATCH_THRESHOLD", "0.94")
	threshold, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("invalid NAME_MATCH_THRESHOLD %q", thresholdStr)
	}

	cfg := &Config{
		SourceURL:   sharedcfg.EnvOrDefault("SOURCE_URL", "https://en.wikipedia.org/wiki/List_of_world_records_in_athletics"),
		UserAgent:   sharedcfg.EnvOrDefault("USER_AGENT", "athletics-records-etl/1.0 (+research)"),
		HTTPTimeout: timeout,
		RobotsCheck: robots,

		DataDir:    sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		FiguresDir: sharedcfg.EnvOrDefault("FIGURES_DIR", filepath.Join("results", "figures")),
		TablesDir:  sharedcfg.EnvOrDefault("TABLES_DIR", filepath.Join("results", "tables")),

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),

		ReferenceYear:      refYear,
		HistoryAthlete:     sharedcfg.EnvOrDefault("HISTORY_ATHLETE", "Keely Hodgkinson"),
		HistoryRecord:      record,
		NameMatchThreshold: threshold,

		SQLitePath:   sharedcfg.EnvOrDefault("SQLITE_PATH", ""),
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "world-records"),
		XLSXPath:     sharedcfg.EnvOrDefault("XLSX_PATH", ""),
		MetricsFile:  sharedcfg.EnvOrDefault("METRICS_FILE", ""),
	}

	if cfg.SourceURL == "" {
		return nil, fmt.Errorf("SOURCE_URL is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return cfg, nil
}

// ContinentsPath is the country and continent reference file.
func (c *Config) ContinentsPath() string { return filepath.Join(c.DataDir, ContinentsFile) }

// DOBPath is the athlete birth date reference file.
func (c *Config) DOBPath() string { return filepath.Join(c.DataDir, DOBFile) }

// HistoryPath is the single-athlete performance history file.
func (c *Config) HistoryPath() string { return filepath.Join(c.DataDir, HistoryFile) }

func parseDuration(key, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func parseBool(key, def string) (bool, error) {
	s := strings.TrimSpace(sharedcfg.EnvOrDefault(key, def))
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, s)
	}
	return b, nil
}
