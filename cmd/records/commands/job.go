package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/athletics-records-etl/internal/adapter/kafka"
	"github.com/couchcryptid/athletics-records-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/athletics-records-etl/internal/adapter/wikipedia"
	"github.com/couchcryptid/athletics-records-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/athletics-records-etl/internal/config"
	"github.com/couchcryptid/athletics-records-etl/internal/observability"
	"github.com/couchcryptid/athletics-records-etl/internal/pipeline"
)

// job is one configured pipeline run and the resources it holds open.
type job struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *pipeline.Pipeline
	closers  []io.Closer
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	return cfg, nil
}

func newJob(ctx context.Context, cmd *cobra.Command, opts *options) (*job, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	j := &job{cfg: cfg, logger: logger}

	var src pipeline.Source
	if opts.offline != "" {
		logger.Info("reading saved page", "path", opts.offline)
		src = wikipedia.File(opts.offline)
	} else {
		src = wikipedia.NewClient(cfg.SourceURL, cfg.UserAgent, cfg.HTTPTimeout, cfg.RobotsCheck, logger)
	}

	var loaders []pipeline.Loader
	if cfg.SQLitePath != "" {
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, store)
		j.closers = append(j.closers, store)
		logger.Info("sqlite sink enabled", "path", cfg.SQLitePath)
	}
	if len(cfg.KafkaBrokers) > 0 {
		w := kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		loaders = append(loaders, w)
		j.closers = append(j.closers, w)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	pipeOpts := []pipeline.Option{pipeline.WithOutput(cmd.OutOrStdout())}
	if cfg.XLSXPath != "" {
		wb := xlsx.NewWorkbook(cfg.XLSXPath)
		loaders = append(loaders, wb)
		pipeOpts = append(pipeOpts, pipeline.WithAgeSheet(wb))
		logger.Info("xlsx export enabled", "path", cfg.XLSXPath)
	}
	pipeOpts = append(pipeOpts, pipeline.WithLoaders(loaders...))

	j.pipeline = pipeline.New(src, cfg, logger, metrics, pipeOpts...)
	return j, nil
}

// close writes the metrics textfile and releases the sinks.
func (j *job) close() {
	if err := j.pipeline.WriteMetrics(); err != nil {
		j.logger.Error("metrics textfile", "error", err)
	}
	for _, c := range j.closers {
		if err := c.Close(); err != nil {
			j.logger.Error("close sink", "error", err)
		}
	}
}

// withJob runs fn against a configured job and always closes it.
func withJob(cmd *cobra.Command, opts *options, fn func(ctx context.Context, p *pipeline.Pipeline) error) error {
	ctx := cmd.Context()
	j, err := newJob(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer j.close()
	return fn(ctx, j.pipeline)
}
