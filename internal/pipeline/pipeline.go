package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"

	"github.com/couchcryptid/athletics-records-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/athletics-records-etl/internal/adapter/wikipedia"
	"github.com/couchcryptid/athletics-records-etl/internal/analysis"
	"github.com/couchcryptid/athletics-records-etl/internal/config"
	"github.com/couchcryptid/athletics-records-etl/internal/domain"
	"github.com/couchcryptid/athletics-records-etl/internal/extract"
	"github.com/couchcryptid/athletics-records-etl/internal/observability"
)

// Source provides the parsed records page.
type Source interface {
	Fetch(ctx context.Context) (*goquery.Document, error)
}

// Loader writes the extracted record sets to a destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, sets []domain.RecordSet) error
}

// AgeSheetWriter receives the age summaries alongside the HTML table.
type AgeSheetWriter interface {
	AddAgeSummary(summaries ...analysis.AgeSummary) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLoaders adds sinks after the CSV store.
func WithLoaders(loaders ...Loader) Option {
	return func(p *Pipeline) { p.loaders = append(p.loaders, loaders...) }
}

// WithAgeSheet writes the age summaries to w during Report.
func WithAgeSheet(w AgeSheetWriter) Option {
	return func(p *Pipeline) { p.ageSheet = w }
}

// WithOutput sets where the console age table is printed.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithRetry sets how often a failing loader is attempted and the backoff
// between attempts.
func WithRetry(attempts int, initial, maxBackoff time.Duration) Option {
	return func(p *Pipeline) {
		p.attempts = attempts
		p.initialBackoff = initial
		p.maxBackoff = maxBackoff
	}
}

// Pipeline runs the scrape and report stages.
type Pipeline struct {
	source   Source
	store    *csvfile.Store
	loaders  []Loader
	ageSheet AgeSheetWriter
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	out      io.Writer

	attempts       int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New creates a Pipeline reading from src. The CSV store in cfg.DataDir is
// always the first loader, since Report reads the record sets back from it.
func New(src Source, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	store := csvfile.NewStore(cfg.DataDir)
	p := &Pipeline{
		source:  src,
		store:   store,
		loaders: []Loader{store},
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		out:     os.Stdout,
		// Exponential backoff: start at 200ms, double each retry, cap at 5s.
		attempts:       3,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes Scrape then Report.
func (p *Pipeline) Run(ctx context.Context) error {
	if _, err := p.Scrape(ctx); err != nil {
		return err
	}
	return p.Report(ctx)
}

// Scrape fetches the page, extracts both record tables and writes them to
// every loader. Every loader is attempted; their errors are joined.
func (p *Pipeline) Scrape(ctx context.Context) ([]domain.RecordSet, error) {
	start := time.Now()
	doc, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	p.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	menTable, womenTable, err := wikipedia.RecordTables(doc)
	if err != nil {
		return nil, err
	}

	scrapedAt := domain.Now().UTC()
	runID := uuid.NewString()
	sets := []domain.RecordSet{
		p.extract(domain.SexMen, menTable),
		p.extract(domain.SexWomen, womenTable),
	}
	for i := range sets {
		sets[i].ScrapedAt = scrapedAt
		sets[i].RunID = runID
	}

	var errs []error
	for _, l := range p.loaders {
		if err := p.load(ctx, l, sets); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return sets, err
	}

	p.metrics.LastSuccess.WithLabelValues("scrape").Set(float64(domain.Now().Unix()))
	p.logger.Info("scrape complete",
		"run_id", runID,
		"men", len(sets[0].Records),
		"women", len(sets[1].Records),
		"sinks", len(p.loaders),
	)
	return sets, nil
}

func (p *Pipeline) extract(sex domain.Sex, table *goquery.Selection) domain.RecordSet {
	records, stats := extract.Table(table)
	label := string(sex)
	p.metrics.RowsExtracted.WithLabelValues(label).Add(float64(len(records)))
	p.metrics.RowsFlagged.WithLabelValues(label).Add(float64(stats.Flagged))
	p.metrics.RowsEmpty.WithLabelValues(label).Add(float64(stats.EmptyRows))

	p.logger.Info("table extracted",
		"sex", label,
		"rows", len(records),
		"flagged", stats.Flagged,
		"empty", stats.EmptyRows,
	)
	if stats.Placeholder > 0 {
		p.logger.Warn("table wider than its header",
			"sex", label,
			"placeholders", stats.Placeholder,
			"columns", stats.RawColumns,
		)
	}
	return domain.RecordSet{Sex: sex, Records: records}
}

// load writes the sets to one loader, retrying with exponential backoff.
func (p *Pipeline) load(ctx context.Context, l Loader, sets []domain.RecordSet) error {
	sink := l.Name()
	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		start := time.Now()
		if err = l.Load(ctx, sets); err == nil {
			p.metrics.LoadDuration.WithLabelValues(sink).Observe(time.Since(start).Seconds())
			p.metrics.RecordsLoaded.WithLabelValues(sink).Add(float64(countRecords(sets)))
			return nil
		}
		p.metrics.LoadErrors.WithLabelValues(sink).Inc()
		p.logger.Error("load failed", "sink", sink, "attempt", attempt, "error", err)

		if attempt == p.attempts || ctx.Err() != nil {
			break
		}
		if !sharedretry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = sharedretry.NextBackoff(backoff, p.maxBackoff)
	}
	return fmt.Errorf("load %s: %w", sink, err)
}

// WriteMetrics writes the metrics textfile when one is configured.
func (p *Pipeline) WriteMetrics() error {
	if p.cfg.MetricsFile == "" {
		return nil
	}
	return p.metrics.WriteTextfile(p.cfg.MetricsFile)
}

func countRecords(sets []domain.RecordSet) int {
	n := 0
	for _, s := range sets {
		n += len(s.Records)
	}
	return n
}
