package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/athletics-records-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/athletics-records-etl/internal/analysis"
	"github.com/couchcryptid/athletics-records-etl/internal/domain"
	"github.com/couchcryptid/athletics-records-etl/internal/report"
)

// trendSeries is the meeting category the history trend is fitted on.
const trendSeries = "Diamond League"

// Report reads the stored record sets, enriches them and renders every
// chart and table. Charts with nothing to plot are skipped with a warning.
func (p *Pipeline) Report(ctx context.Context) error {
	data, err := p.enrich()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.recordCharts(data); err != nil {
		return err
	}
	if err := p.ageTables(data); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.history(); err != nil {
		return err
	}
	p.metrics.LastSuccess.WithLabelValues("report").Set(float64(domain.Now().Unix()))
	p.logger.Info("report complete", "figures_dir", p.cfg.FiguresDir, "tables_dir", p.cfg.TablesDir)
	return nil
}

func (p *Pipeline) recordCharts(data enriched) error {
	menSplit := analysis.OlympicYears(domain.SexMen, data.men)
	womenSplit := analysis.OlympicYears(domain.SexWomen, data.women)
	p.logger.Info("olympic year split",
		"men_olympic_pct", menSplit.OlympicPct,
		"women_olympic_pct", womenSplit.OlympicPct,
		"undated", menSplit.Undated+womenSplit.Undated,
	)

	gaps, skipped := analysis.GenderGap(data.men, data.women)
	if len(skipped) > 0 {
		p.logger.Warn("gender gap events missing a performance", "events", skipped)
	}

	charts := []struct {
		file   string
		render func(path string) error
	}{
		{report.OlympicYearsChart, func(path string) error {
			return report.OlympicYears(path, menSplit, womenSplit)
		}},
		{report.GenderGapChart, func(path string) error {
			return report.GenderGap(path, gaps)
		}},
		{report.AgesDistChart, func(path string) error {
			return report.AgeDistribution(path, analysis.AllAges(data.men), analysis.AllAges(data.women))
		}},
		{report.AgesBoxChart, func(path string) error {
			return report.AgeBoxes(path, analysis.AgesByGroup(data.men), analysis.AgesByGroup(data.women))
		}},
		{report.LongestRecordsChart, func(path string) error {
			return report.LongestRecords(path, analysis.LongestStanding(data.men), analysis.LongestStanding(data.women))
		}},
	}
	for _, c := range charts {
		if err := p.chart(c.file, c.render); err != nil {
			return err
		}
	}
	return nil
}

// chart renders one chart into the figures directory.
func (p *Pipeline) chart(file string, render func(path string) error) error {
	path := filepath.Join(p.cfg.FiguresDir, file)
	if err := render(path); err != nil {
		if errors.Is(err, report.ErrNoData) {
			p.logger.Warn("chart skipped", "chart", file, "error", err)
			return nil
		}
		return fmt.Errorf("render %s: %w", file, err)
	}
	p.metrics.ChartsRendered.Inc()
	p.logger.Debug("chart written", "path", path)
	return nil
}

func (p *Pipeline) ageTables(data enriched) error {
	men := analysis.SummarizeAges(domain.SexMen, data.men)
	women := analysis.SummarizeAges(domain.SexWomen, data.women)

	report.PrintAgeTable(p.out, men, women)
	path := filepath.Join(p.cfg.TablesDir, report.AgeTableFile)
	if err := report.WriteAgeTable(path, men, women); err != nil {
		return err
	}
	p.metrics.TablesRendered.Inc()

	if p.ageSheet != nil {
		if err := p.ageSheet.AddAgeSummary(men, women); err != nil {
			return fmt.Errorf("write age sheet: %w", err)
		}
	}
	return nil
}

// history renders the athlete history charts and the trend model summary.
// A missing history file skips the section.
func (p *Pipeline) history() error {
	rows, err := csvfile.ReadHistory(p.cfg.HistoryPath())
	if errors.Is(err, os.ErrNotExist) {
		p.logger.Warn("history file not found, skipping", "path", p.cfg.HistoryPath())
		return nil
	}
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	athlete := p.cfg.HistoryAthlete
	perfs := domain.ParseHistory(rows)
	counts, groups := analysis.ByCategory(perfs)
	for _, c := range counts {
		p.logger.Info("history category", "category", c.Category, "count", c.Count, "best", domain.FormatMinutes(c.Best))
	}

	if err := p.chart(report.HistoryAllChart, func(path string) error {
		return report.HistoryAll(path, athlete, counts, groups)
	}); err != nil {
		return err
	}

	trend, err := analysis.FitTrend(domain.FilterCategory(perfs, trendSeries), p.cfg.HistoryRecord)
	if errors.Is(err, analysis.ErrTooFewPoints) {
		p.logger.Warn("trend skipped", "series", trendSeries, "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fit trend: %w", err)
	}
	if err := p.chart(report.HistoryTrendChart, func(path string) error {
		return report.HistoryTrend(path, athlete, trendSeries, trend)
	}); err != nil {
		return err
	}

	path := filepath.Join(p.cfg.TablesDir, report.ModelSummaryFile)
	if err := report.WriteModelSummary(path, trend, "Performance"); err != nil {
		return err
	}
	p.metrics.TablesRendered.Inc()

	attrs := []any{"series", trendSeries, "points", trend.N, "r2", trend.R2}
	if trend.Reaches {
		attrs = append(attrs, "predicted", trend.Predicted.Format("2006-01-02"))
	}
	p.logger.Info("trend fitted", attrs...)
	return nil
}
