package report

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/couchcryptid/athletics-records-etl/internal/analysis"
)

// Table file names written by the report stage.
const (
	AgeTableFile     = "avg_ages.html"
	ModelSummaryFile = "keely_summary.html"
)

var ageStatistics = []string{"Mean", "Median", "Min", "Max"}

// AgeTable lays the age summaries out with one column per event group and a
// Mean/Median/Min/Max row per sex.
func AgeTable(summaries ...analysis.AgeSummary) table.Writer {
	groups := ageGroups(summaries)

	header := table.Row{"Sex", "Statistic"}
	for _, g := range groups {
		header = append(header, g)
	}
	header = append(header, analysis.OverallGroup)

	t := table.NewWriter()
	t.AppendHeader(header)
	for _, s := range summaries {
		byGroup := make(map[string]analysis.AgeStats, len(s.Groups))
		for _, g := range s.Groups {
			byGroup[g.Group] = g
		}
		for _, stat := range ageStatistics {
			row := table.Row{titleSex(string(s.Sex)), stat}
			for _, g := range groups {
				row = append(row, ageCell(byGroup[g], stat))
			}
			row = append(row, ageCell(s.Overall, stat))
			t.AppendRow(row)
		}
		t.AppendSeparator()
	}
	setStyle(t, table.StyleDefault)
	return t
}

// setStyle applies s keeping header labels as written.
func setStyle(t table.Writer, s table.Style) {
	t.SetStyle(s)
	t.Style().Format.Header = text.FormatDefault
	t.Style().HTML.CSSClass = "dataframe"
}

// PrintAgeTable renders the age table as text to w.
func PrintAgeTable(w io.Writer, summaries ...analysis.AgeSummary) {
	t := AgeTable(summaries...)
	setStyle(t, table.StyleRounded)
	t.SetOutputMirror(w)
	t.Render()
}

// WriteAgeTable writes the age table as an HTML page.
func WriteAgeTable(path string, summaries ...analysis.AgeSummary) error {
	body := AgeTable(summaries...).RenderHTML()
	return writeHTML(path, "Average Ages of Record Breakers", body)
}

func ageGroups(summaries []analysis.AgeSummary) []string {
	seen := map[string]bool{}
	var groups []string
	for _, s := range summaries {
		for _, g := range s.Groups {
			if g.Count > 0 && !seen[g.Group] {
				seen[g.Group] = true
				groups = append(groups, g.Group)
			}
		}
	}
	sort.Strings(groups)
	return groups
}

func ageCell(s analysis.AgeStats, stat string) string {
	if s.Count == 0 {
		return "-"
	}
	var v float64
	switch stat {
	case "Mean":
		v = s.Mean
	case "Median":
		v = s.Median
	case "Min":
		v = s.Min
	default:
		v = s.Max
	}
	return fmt.Sprintf("%.2f", v)
}

func titleSex(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ModelSummary renders an OLS trend as a plain-text regression report.
func ModelSummary(trend analysis.Trend, dependent string) string {
	r := trend.Regression

	info := table.NewWriter()
	info.SetTitle("OLS Regression Results")
	info.AppendRows([]table.Row{
		{"Dep. Variable:", dependent, "R-squared:", fmt.Sprintf("%.3f", r.R2)},
		{"Model:", "OLS", "Adj. R-squared:", fmt.Sprintf("%.3f", r.AdjR2)},
		{"Method:", "Least Squares", "F-statistic:", fmt.Sprintf("%.4g", r.F)},
		{"No. Observations:", r.N, "Prob (F-statistic):", fmt.Sprintf("%.3g", r.FProb)},
		{"Df Residuals:", r.DFResidual, "Residual SS:", fmt.Sprintf("%.4g", r.RSS)},
		{"Df Model:", 1, "Covariance Type:", "nonrobust"},
	})
	setStyle(info, table.StyleLight)

	coefs := table.NewWriter()
	coefs.AppendHeader(table.Row{"", "coef", "std err", "t", "P>|t|", "[0.025", "0.975]"})
	for _, c := range []analysis.Coefficient{r.Intercept, r.Slope} {
		coefs.AppendRow(table.Row{
			c.Name,
			fmt.Sprintf("%.4f", c.Value),
			fmt.Sprintf("%.3f", c.StdErr),
			fmt.Sprintf("%.3f", c.T),
			fmt.Sprintf("%.3f", c.P),
			fmt.Sprintf("%.3f", c.Lower),
			fmt.Sprintf("%.3f", c.Upper),
		})
	}
	setStyle(coefs, table.StyleLight)

	var b strings.Builder
	b.WriteString(info.Render())
	b.WriteString("\n")
	b.WriteString(coefs.Render())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "x1: days since %s\n", time.Unix(0, 0).UTC().Format(time.DateOnly))
	if trend.Reaches {
		fmt.Fprintf(&b, "Trend reaches %.2f s on %s\n", trend.Target, trend.Predicted.Format(time.DateOnly))
	} else {
		fmt.Fprintf(&b, "Trend never reaches %.2f s\n", trend.Target)
	}
	return b.String()
}

// WriteModelSummary writes the regression report as a preformatted HTML page.
func WriteModelSummary(path string, trend analysis.Trend, dependent string) error {
	body := "<pre>\n" + html.EscapeString(ModelSummary(trend, dependent)) + "\n</pre>"
	return writeHTML(path, "Model Summary", body)
}

func writeHTML(path, title, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	doc := fmt.Sprintf("<html>\n<head><title>%s</title></head>\n<body>\n%s\n</body>\n</html>\n", html.EscapeString(title), body)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
