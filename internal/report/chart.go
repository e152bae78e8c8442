// Package report renders the analysis results as PNG charts and HTML tables.
package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// Chart file names written by the report stage.
const (
	OlympicYearsChart   = "olympic_years.png"
	GenderGapChart      = "gender_gap.png"
	AgesDistChart       = "ages_dist.png"
	AgesBoxChart        = "ages_box.png"
	LongestRecordsChart = "longest_records.png"
	HistoryAllChart     = "keely_all.png"
	HistoryTrendChart   = "keely_DL.png"
)

var (
	colourMen      = color.RGBA{R: 0, G: 0, B: 255, A: 204}
	colourWomen    = color.RGBA{R: 255, G: 192, B: 203, A: 230}
	colourTimed    = color.RGBA{R: 123, G: 104, B: 238, A: 255}
	colourMeasured = color.RGBA{R: 46, G: 139, B: 87, A: 255}
	colourRed      = color.RGBA{R: 255, A: 255}
	colourBlack    = color.RGBA{A: 255}
	colourGrid     = color.RGBA{R: 200, G: 200, B: 200, A: 255}

	// colourCycle follows the matplotlib tab10 palette.
	colourCycle = []color.RGBA{
		{R: 31, G: 119, B: 180, A: 204},
		{R: 255, G: 127, B: 14, A: 204},
		{R: 44, G: 160, B: 44, A: 204},
		{R: 214, G: 39, B: 40, A: 204},
		{R: 148, G: 103, B: 189, A: 204},
		{R: 140, G: 86, B: 75, A: 204},
		{R: 227, G: 119, B: 194, A: 204},
		{R: 127, G: 127, B: 127, A: 204},
		{R: 188, G: 189, B: 34, A: 204},
		{R: 23, G: 190, B: 207, A: 204},
	}

	// meetingColours colours performances by meeting category.
	meetingColours = map[string]color.RGBA{
		"Olympic Games":                 {R: 255, G: 215, A: 255},
		"World Athletics Championships": {B: 255, A: 255},
		"Diamond League":                {G: 128, A: 255},
		"European Athletics":            {R: 128, B: 128, A: 255},
		"UK Athletics":                  {R: 255, G: 105, B: 180, A: 255},
		"Commonwealth Games":            {R: 255, A: 255},
		domain.OtherMeetings:            {R: 128, G: 128, B: 128, A: 255},
	}

	dashed = []vg.Length{vg.Points(5), vg.Points(5)}
	dotted = []vg.Length{vg.Points(1), vg.Points(3)}
)

func cycleColour(i int) color.RGBA {
	return colourCycle[i%len(colourCycle)]
}

// save writes p as a PNG of the given size in inches, creating the directory.
func save(p *plot.Plot, w, h float64, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := p.Save(vg.Length(w)*vg.Inch, vg.Length(h)*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	return nil
}

// addGrid adds a dashed background grid; horizontal or vertical lines can
// be switched off.
func addGrid(p *plot.Plot, vertical, horizontal bool) {
	g := plotter.NewGrid()
	g.Vertical.Color = colourGrid
	g.Vertical.Dashes = dashed
	g.Horizontal.Color = colourGrid
	g.Horizontal.Dashes = dashed
	if !vertical {
		g.Vertical.Color = nil
	}
	if !horizontal {
		g.Horizontal.Color = nil
	}
	p.Add(g)
}

// centredLabels builds bar annotations centred on their anchor points.
func centredLabels(xys plotter.XYs, labels []string, offset vg.Point) (*plotter.Labels, error) {
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YBottom
	}
	l.Offset = offset
	return l, nil
}

// minutesTicks labels a seconds axis as m:ss.ss.
type minutesTicks struct{}

func (minutesTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = domain.FormatMinutes(ticks[i].Value)
		}
	}
	return ticks
}

// swatch is a legend entry drawn as a filled square.
type swatch struct {
	colour color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.colour, pts)
}
