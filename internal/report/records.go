package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/athletics-records-etl/internal/analysis"
)

// ErrNoData is returned when a chart has nothing to plot.
var ErrNoData = errors.New("no data to plot")

// OlympicYears draws grouped bars of records set in Olympic and non-Olympic
// years, annotated with counts and percentages.
func OlympicYears(path string, men, women analysis.OlympicSplit) error {
	if men.Total()+women.Total() == 0 {
		return fmt.Errorf("olympic years: %w", ErrNoData)
	}
	p := plot.New()
	p.Title.Text = "World Records Set in Olympic Years vs Non-Olympic Years (Men vs Women)"
	p.Y.Label.Text = "Count"
	addGrid(p, false, true)

	width := vg.Points(60)
	series := []struct {
		name   string
		split  analysis.OlympicSplit
		colour color.Color
		offset vg.Length
	}{
		{"Men", men, colourMen, -width / 2},
		{"Women", women, colourWomen, width / 2},
	}

	maxCount := 0
	for _, s := range series {
		counts := plotter.Values{float64(s.split.Olympic), float64(s.split.NonOlympic)}
		bars, err := plotter.NewBarChart(counts, width)
		if err != nil {
			return fmt.Errorf("olympic years: %w", err)
		}
		bars.Color = s.colour
		bars.LineStyle.Width = 0
		bars.Offset = s.offset
		p.Add(bars)
		p.Legend.Add(s.name, bars)

		labels, err := centredLabels(
			plotter.XYs{{X: 0, Y: counts[0] + 1}, {X: 1, Y: counts[1] + 1}},
			[]string{
				fmt.Sprintf("%d (%.1f%%)", s.split.Olympic, s.split.OlympicPct),
				fmt.Sprintf("%d (%.1f%%)", s.split.NonOlympic, s.split.NonOlympicPct),
			},
			vg.Point{X: s.offset},
		)
		if err != nil {
			return fmt.Errorf("olympic years: %w", err)
		}
		p.Add(labels)
		maxCount = max(maxCount, s.split.Olympic, s.split.NonOlympic)
	}

	p.NominalX("Olympic Year", "Non-Olympic Year")
	p.Y.Min = 0
	p.Y.Max = float64(maxCount + 5)
	p.Legend.Top = true
	return save(p, 10, 7, path)
}

// GenderGap draws the per-event gap between men's and women's records,
// coloured by whether the event is timed or measured.
func GenderGap(path string, gaps []analysis.Gap) error {
	if len(gaps) == 0 {
		return fmt.Errorf("gender gap: %w", ErrNoData)
	}
	p := plot.New()
	p.Title.Text = "Gender Gap in Athletics World Records (Track & Field Events)"
	p.X.Label.Text = "Event"
	p.Y.Label.Text = "Performance Gap of Men's Record\nBettering Women's Record (%)"

	names := make([]string, len(gaps))
	byKind := map[analysis.GapKind]plotter.Values{
		analysis.Timed:    make(plotter.Values, len(gaps)),
		analysis.Measured: make(plotter.Values, len(gaps)),
	}
	xys := make(plotter.XYs, len(gaps))
	labels := make([]string, len(gaps))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, g := range gaps {
		names[i] = g.Event
		byKind[g.Kind][i] = g.Percent
		xys[i] = plotter.XY{X: float64(i), Y: math.Max(g.Percent, 0) + 0.01}
		labels[i] = fmt.Sprintf("%.2f%%", g.Percent)
		lo, hi = math.Min(lo, g.Percent), math.Max(hi, g.Percent)
	}

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = colourRed
	zero.Dashes = dashed
	p.Add(zero)
	p.Legend.Add("Equal Performance", zero)

	for _, kind := range []analysis.GapKind{analysis.Timed, analysis.Measured} {
		bars, err := plotter.NewBarChart(byKind[kind], vg.Points(30))
		if err != nil {
			return fmt.Errorf("gender gap: %w", err)
		}
		bars.LineStyle.Width = 0
		bars.Color = colourTimed
		if kind == analysis.Measured {
			bars.Color = colourMeasured
		}
		p.Add(bars)
		p.Legend.Add(kind.String(), bars)
	}

	l, err := centredLabels(xys, labels, vg.Point{})
	if err != nil {
		return fmt.Errorf("gender gap: %w", err)
	}
	p.Add(l)

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = math.Min(lo, 0) - 10
	p.Y.Max = hi + 10
	p.Legend.Top = true
	return save(p, 14, 6, path)
}

// AgeDistribution draws overlaid 15-bin histograms of men's and women's ages.
func AgeDistribution(path string, men, women []float64) error {
	if len(men)+len(women) == 0 {
		return fmt.Errorf("age distribution: %w", ErrNoData)
	}
	p := plot.New()
	p.Title.Text = "Distribution of Ages at Record Breaking for Men and Women"
	p.X.Label.Text = "Age at Time of Record (Years)"
	p.Y.Label.Text = "Frequency"
	addGrid(p, false, true)

	for _, s := range []struct {
		name   string
		ages   []float64
		colour color.RGBA
	}{
		{"Men", men, colourMen},
		{"Women", women, colourWomen},
	} {
		if len(s.ages) == 0 {
			continue
		}
		h, err := plotter.NewHist(plotter.Values(s.ages), 15)
		if err != nil {
			return fmt.Errorf("age distribution: %w", err)
		}
		fill := s.colour
		fill.A = 128
		h.FillColor = fill
		h.LineStyle.Width = 0
		p.Add(h)
		p.Legend.Add(s.name, h)
	}
	p.Legend.Top = true
	return save(p, 12, 7, path)
}

// AgeBoxes draws side-by-side box plots of ages per event group for men and
// women.
func AgeBoxes(path string, men, women map[string][]float64) error {
	groups := sortedGroups(men, women)
	if len(groups) == 0 {
		return fmt.Errorf("age boxes: %w", ErrNoData)
	}
	p := plot.New()
	p.Title.Text = "Age Distribution by Event Group and Gender"
	p.X.Label.Text = "Group"
	p.Y.Label.Text = "Age"

	width := vg.Points(24)
	for _, s := range []struct {
		name   string
		ages   map[string][]float64
		colour color.Color
		offset vg.Length
	}{
		{"Men", men, color.RGBA{R: 102, G: 194, B: 165, A: 255}, -width / 2},
		{"Women", women, color.RGBA{R: 252, G: 141, B: 98, A: 255}, width / 2},
	} {
		drawn := false
		for i, g := range groups {
			if len(s.ages[g]) == 0 {
				continue
			}
			box, err := plotter.NewBoxPlot(width, float64(i), plotter.Values(s.ages[g]))
			if err != nil {
				return fmt.Errorf("age boxes: %w", err)
			}
			box.FillColor = s.colour
			box.Offset = s.offset
			p.Add(box)
			drawn = true
		}
		if drawn {
			p.Legend.Add(s.name, swatch{s.colour})
		}
	}
	p.NominalX(groups...)
	p.Legend.Top = true
	return save(p, 12, 6, path)
}

// LongestRecords draws two horizontal bar panels of years since each record
// was set, oldest at the top, coloured by event group.
func LongestRecords(path string, men, women []analysis.Standing) error {
	if len(men)+len(women) == 0 {
		return fmt.Errorf("longest records: %w", ErrNoData)
	}
	groups := analysis.StandingGroups(men, women)
	colours := make(map[string]color.Color, len(groups))
	for i, g := range groups {
		colours[g] = cycleColour(i)
	}

	longest := 0
	for _, set := range [][]analysis.Standing{men, women} {
		for _, s := range set {
			longest = max(longest, s.YearsSince)
		}
	}

	var panels []*plot.Plot
	for _, s := range []struct {
		title string
		rows  []analysis.Standing
	}{
		{"Men's Longest Standing World Records", men},
		{"Women's Longest Standing World Records", women},
	} {
		p, err := standingPanel(s.title, s.rows, groups, colours)
		if err != nil {
			return fmt.Errorf("longest records: %w", err)
		}
		p.X.Max = float64(longest) + 1
		panels = append(panels, p)
	}

	img := vgimg.New(18*vg.Inch, 10*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Millimeter * 8, PadTop: vg.Millimeter * 4, PadBottom: vg.Millimeter * 2, PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2}
	canvases := plot.Align([][]*plot.Plot{panels}, tiles, dc)
	for i, p := range panels {
		p.Draw(canvases[0][i])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("longest records: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("longest records: %w", err)
	}
	return f.Close()
}

func standingPanel(title string, rows []analysis.Standing, groups []string, colours map[string]color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Years Since Record Was Set"
	addGrid(p, true, false)

	// Nominal Y counts upward, so the oldest record goes last to sit on top.
	n := len(rows)
	names := make([]string, n)
	for i, r := range rows {
		names[n-1-i] = r.Event
	}

	for _, g := range groups {
		vals := make(plotter.Values, n)
		found := false
		for i, r := range rows {
			if r.Group == g {
				vals[n-1-i] = float64(r.YearsSince)
				found = true
			}
		}
		if !found {
			continue
		}
		bars, err := plotter.NewBarChart(vals, vg.Points(8))
		if err != nil {
			return nil, err
		}
		bars.Horizontal = true
		bars.Color = colours[g]
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.Legend.Add(g, bars)
	}
	if n > 0 {
		p.NominalY(names...)
	}
	p.X.Min = 0
	p.Legend.Top = true
	return p, nil
}

func sortedGroups(sets ...map[string][]float64) []string {
	seen := map[string]bool{}
	for _, set := range sets {
		for g, ages := range set {
			if len(ages) > 0 {
				seen[g] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
