package report

import (
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/athletics-records-etl/internal/analysis"
	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// trendStart and trendEnd bound the plotted trend line.
var (
	trendStart = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	trendEnd   = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func unixX(t time.Time) float64 { return float64(t.Unix()) }

func performanceXYs(perfs []domain.Performance) plotter.XYs {
	var xys plotter.XYs
	for _, p := range perfs {
		if p.Date.IsZero() {
			continue
		}
		xys = append(xys, plotter.XY{X: unixX(p.Date), Y: p.Seconds})
	}
	return xys
}

func scatter(xys plotter.XYs, colour color.Color) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = colour
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(4)
	return s, nil
}

// HistoryAll draws every dated outdoor performance coloured by meeting
// category, taking the grouping from analysis.ByCategory.
func HistoryAll(path, athlete string, counts []analysis.CategoryCount, groups map[string][]domain.Performance) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s's 800m Performances by Meeting", athlete)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Performance (Minutes:Seconds)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2006"}
	p.Y.Tick.Marker = minutesTicks{}
	addGrid(p, true, true)

	plotted := 0
	for _, c := range counts {
		xys := performanceXYs(groups[c.Category])
		if len(xys) == 0 {
			continue
		}
		s, err := scatter(xys, meetingColours[c.Category])
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		p.Add(s)
		p.Legend.Add(c.Category, s)
		plotted += len(xys)
	}
	if plotted == 0 {
		return fmt.Errorf("history: %w", ErrNoData)
	}
	p.Legend.Top = true
	return save(p, 12, 7, path)
}

// HistoryTrend draws the series performances with the fitted trend line,
// the target record and the predicted date the trend reaches it.
func HistoryTrend(path, athlete, series string, trend analysis.Trend) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s's %s 800m Performances", athlete, series)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Performance (Minutes:Seconds)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Y.Tick.Marker = minutesTicks{}
	addGrid(p, true, true)

	s, err := scatter(performanceXYs(trend.Points), meetingColours["Diamond League"])
	if err != nil {
		return fmt.Errorf("trend: %w", err)
	}
	p.Add(s)
	p.Legend.Add(series, s)

	var line plotter.XYs
	for t := trendStart; !t.After(trendEnd); t = t.AddDate(0, 1, 0) {
		line = append(line, plotter.XY{X: unixX(t), Y: trend.Predict(analysis.DaysSinceEpoch(t))})
	}
	l, err := plotter.NewLine(line)
	if err != nil {
		return fmt.Errorf("trend: %w", err)
	}
	l.Color = colourBlack
	l.Dashes = dashed
	p.Add(l)
	p.Legend.Add("Trend Line", l)

	record := plotter.NewFunction(func(float64) float64 { return trend.Target })
	record.Color = colourRed
	record.Dashes = dotted
	p.Add(record)
	p.Legend.Add(fmt.Sprintf("World Record (%s)", domain.FormatMinutes(trend.Target)), record)

	if trend.Reaches {
		note, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: unixX(trend.Predicted), Y: trend.Target + 0.1}},
			Labels: []string{"Predicted WR:\n" + trend.Predicted.Format(time.DateOnly)},
		})
		if err != nil {
			return fmt.Errorf("trend: %w", err)
		}
		p.Add(note)
	}

	p.Legend.Top = true
	return save(p, 12, 7, path)
}
